package phase

// ModulePhase tracks how far a module has progressed through a pipeline run.
//
// Progression is sequential:
// NotStarted -> Loaded -> Verified -> Optimized -> Written
//
// Transitions are checked by CanAdvance against the Prerequisites map.
type ModulePhase int

const (
	PhaseNotStarted ModulePhase = iota // Nothing done yet
	PhaseLoaded                        // Decoded or handed in by the caller
	PhaseVerified                      // Passed the safety checker
	PhaseOptimized                     // Every configured pass ran
	PhaseWritten                       // Encoded back to disk
)

// Prerequisites maps each phase to the phase a module must be in before it
// can enter it.
var Prerequisites = map[ModulePhase]ModulePhase{
	PhaseLoaded:    PhaseNotStarted,
	PhaseVerified:  PhaseLoaded,
	PhaseOptimized: PhaseVerified,
	PhaseWritten:   PhaseOptimized,
}

// CanAdvance reports whether a module in phase from may move to phase to.
func CanAdvance(from, to ModulePhase) bool {
	req, ok := Prerequisites[to]
	return ok && req == from
}

func (p ModulePhase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseLoaded:
		return "Loaded"
	case PhaseVerified:
		return "Verified"
	case PhaseOptimized:
		return "Optimized"
	case PhaseWritten:
		return "Written"
	default:
		return "Unknown"
	}
}
