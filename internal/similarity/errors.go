package similarity

// ServiceError is the single externally visible failure type of the engine.
// It wraps the embedding-provider or storage cause; callers branch on the
// wrapped sentinel via errors.Is when they need to.
type ServiceError struct {
	Stage string // "embed" or "search"
	Err   error
}

func (e *ServiceError) Error() string { return "similarity " + e.Stage + ": " + e.Err.Error() }
func (e *ServiceError) Unwrap() error { return e.Err }
