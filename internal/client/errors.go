package client

import "fmt"

// NetworkError reports a transport failure or a non-2xx upstream status.
type NetworkError struct {
	Upstream   string
	StatusCode int // zero when the request never completed
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned %d: %v", e.Upstream, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Upstream, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DataFormatError reports a response body that does not have the expected shape.
type DataFormatError struct {
	Upstream string
	Reason   string
	Err      error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid data format: %s: %v", e.Upstream, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: invalid data format: %s", e.Upstream, e.Reason)
}

func (e *DataFormatError) Unwrap() error { return e.Err }
