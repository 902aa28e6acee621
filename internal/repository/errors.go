package repository

// Error is a constant repository error.
type Error string

func (err Error) Error() string { return string(err) }

const (
	ErrNotFound        Error = "record not found"
	ErrPatientNotFound Error = "patient not found"
)
