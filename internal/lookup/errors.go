package lookup

import "net/http"

// Kind classifies why a lookup did not produce a price summary.
type Kind int

const (
	// InvalidRequestFormat: body absent, not JSON, or lacking call.arguments.
	InvalidRequestFormat Kind = iota + 1
	// MissingParameters: state, district or commodity absent or empty.
	MissingParameters
	// UpstreamCallFailure: the price API could not be reached or answered non-2xx.
	UpstreamCallFailure
	// UnexpectedProcessingFailure: the API answered but a record could not be used.
	UnexpectedProcessingFailure
)

const (
	msgInvalidRequestFormat = "Invalid request format. Expected Vertex AI tool call format."
	msgMissingParameters    = "Missing required parameters: state, district, or commodity."
	msgUpstreamCallFailure  = "Failed to call external API"
	msgUnexpectedFailure    = "An unexpected error occurred"
)

func (k Kind) String() string {
	switch k {
	case InvalidRequestFormat:
		return "invalid_request_format"
	case MissingParameters:
		return "missing_parameters"
	case UpstreamCallFailure:
		return "upstream_call_failure"
	case UnexpectedProcessingFailure:
		return "unexpected_processing_failure"
	}
	return "unknown"
}

// Status is the HTTP status the tool endpoint answers with for k.
// Upstream and processing failures stay 200 with the error in the body;
// the calling agent reads the payload, not the status line.
func (k Kind) Status() int {
	switch k {
	case InvalidRequestFormat, MissingParameters:
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// Error is a classified lookup failure. Its message is the text returned to the caller.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidRequestFormat:
		return msgInvalidRequestFormat
	case MissingParameters:
		return msgMissingParameters
	case UpstreamCallFailure:
		return msgUpstreamCallFailure + ": " + errText(e.Err)
	}
	return msgUnexpectedFailure + ": " + errText(e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
