package timetable

// ProgressObserver receives stage and fractional-completion callbacks
// from Build, replacing the source's global progress_tracker singleton
// with an explicit optional collaborator (§9 Design Notes). Build never
// requires one: a nil ProgressObserver (or NoopProgressObserver, its
// default) is always safe to pass.
type ProgressObserver interface {
	// Stage announces the start of a named construction stage, mirroring
	// the source's progress_tracker->status(...) calls (e.g. "Add
	// Stations", "Add Services", "Connect Reverse", "Sort Bitfields",
	// "Sort Trips").
	Stage(name string)

	// Progress reports stage completion as a value in [0, 1].
	Progress(fraction float64)
}

// NoopProgressObserver discards every callback.
type NoopProgressObserver struct{}

func (NoopProgressObserver) Stage(string)     {}
func (NoopProgressObserver) Progress(float64) {}

func progressObserverOrNoop(p ProgressObserver) ProgressObserver {
	if p == nil {
		return NoopProgressObserver{}
	}
	return p
}
