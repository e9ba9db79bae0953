package api

import (
	"errors"
	"fmt"
)

// StatusUnknown is recorded when the provider never produced an HTTP response
const StatusUnknown = 0

// RemoteCallFailure is returned by the provider client for any unsuccessful call:
// transport failure, a non-200 status, or a missing or malformed body.
type RemoteCallFailure struct {
	StatusCode int
	Err        error
}

func (e *RemoteCallFailure) Error() string {
	status := "unknown"
	if e.StatusCode != StatusUnknown {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	if e.Err == nil {
		return "remote call failed (status " + status + ")"
	}
	return "remote call failed (status " + status + "): " + e.Err.Error()
}

func (e *RemoteCallFailure) Unwrap() error {
	return e.Err
}

// AsRemoteCallFailure extracts a RemoteCallFailure from anywhere in err's chain
func AsRemoteCallFailure(err error) (*RemoteCallFailure, bool) {
	var failure *RemoteCallFailure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
