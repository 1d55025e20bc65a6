package foam

import "fmt"

// CaseNotFoundError reports a case directory that does not exist.
type CaseNotFoundError struct {
	Dir string
}

func (e *CaseNotFoundError) Error() string {
	return fmt.Sprintf("case directory does not exist: %s", e.Dir)
}

// NoTimeStepsError reports a case with no solver-written time directories.
type NoTimeStepsError struct {
	Dir string
}

func (e *NoTimeStepsError) Error() string {
	return fmt.Sprintf("no time steps found in case: %s", e.Dir)
}
