package diagnostics

// Error codes for the seoggi optimizer
const (
	// Pass manager errors (O00xx)
	ErrMissingPassDependency = "O0001"
	ErrCyclicPassDependency  = "O0002"
	ErrDuplicatePass         = "O0003"

	// Transformation safety errors (O01xx)
	ErrUnsafeElimination       = "O0101"
	ErrUnsafeBlockElimination  = "O0102"
	ErrUnsafeFolding           = "O0103"
	ErrTypeMismatch            = "O0104"
	ErrUnsafeInlining          = "O0105"
	ErrUnsafeExceptionHandling = "O0106"

	// IR integrity errors (O02xx)
	ErrVerificationFailed     = "O0201"
	ErrMalformedIR            = "O0202"
	ErrUnreportedModification = "O0203"

	// Warnings (W prefix)
	WarnIterationLimit   = "W0002"
	WarnInlineIneligible = "W0003"
)
