package datagov

import "fmt"

// UpstreamError reports a transport, status, or body-decoding failure talking to the API.
// StatusCode is zero when no response was received.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("data.gov.in status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("data.gov.in request: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// RecordError reports a record that lacks a field the summary needs.
type RecordError struct {
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record field %q: %s", e.Field, e.Reason)
}

// ShapeError reports a response body that is valid JSON but not shaped like a
// records listing. An empty Path means the document root.
type ShapeError struct {
	Path string
	Got  string
}

func (e *ShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("response body: expected object, got %s", e.Got)
	}
	return fmt.Sprintf("response field %q: expected array, got %s", e.Path, e.Got)
}
