package profile

// Profiler configures a profiling session.
type Profiler struct {
	// Mode is one of [Modes]. Empty disables profiling.
	Mode string
	// Path is the directory profile data is written to.
	Path  string
	Quiet bool
}

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Start begins profiling and returns its stopper. Without the pprof build
// tag, or with an empty or unknown Mode, Start returns a no-op. Both Start
// and Stop are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
