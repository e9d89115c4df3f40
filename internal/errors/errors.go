// internal/errors/errors.go
package errors

import "fmt"

// FetchError is returned when the GitHub API answers with a non-success
// status. A sync cycle treats any FetchError as fatal and aborts before
// writing anything.
type FetchError struct {
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("github api %d: %s", e.StatusCode, e.Status)
}
