// Package cli contains the command line interface for stylec.
//
// # Usage
//
// Transform is the default command; style documents may be given without
// naming it:
//
//	stylec button.yaml border.yaml
//	stylec transform --format=il --watch styles/*.yaml
//	stylec types --type=Grid --inherited
//	stylec repl --target=Button
//	stylec init
//
// # Configuration
//
// Flag values are resolved from, in increasing precedence:
//
//   - runtime defaults (the number of CPUs for --jobs)
//   - the user configuration file, config.yaml in the user configuration
//     directory (written by the init command)
//   - stylec.yaml in the working directory
//   - STYLEC_* environment variables, for example STYLEC_LOG_LEVEL
//   - the command line
//
// Configuration keys are flag names without the leading dashes. Hyphens
// may be written as underscores.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o stylec .
//
//   - --pprof-mode: Enable profiling (cpu, mem, mutex, block, ...)
//   - --pprof-dir: Set profile output directory
package cli
