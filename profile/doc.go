// Package profile wraps [github.com/pkg/profile] for optional runtime
// profiling of the stylec command.
//
// Profiling is compiled in only with the "pprof" build tag. Without it,
// [Profiler.Start] returns a no-op and [Modes] is empty.
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// The command exposes the same settings as flags:
//
//	go build -tags pprof -o stylec .
//	./stylec --pprof-mode heap --pprof-dir ./profiles style.yaml
//
// Profiles are written as <mode>.pprof (cpu.pprof, mem.pprof, ...) and read
// with go tool pprof. The pprof build also registers the net/http/pprof
// handlers for programs that serve HTTP.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
