// Package lookup turns a tool-call request into a mandi price summary.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"mandi-price/internal/datagov"
)

// PriceSource fetches price records for a set of filters. *datagov.Client satisfies it.
type PriceSource interface {
	Prices(ctx context.Context, f datagov.Filters) ([]datagov.PriceRecord, error)
}

var _ PriceSource = (*datagov.Client)(nil)

// Response is the JSON payload returned to the agent: exactly one of the fields is set.
type Response struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Service answers price lookups against a PriceSource. It holds no per-request state.
type Service struct {
	source PriceSource
}

// NewService returns a Service backed by source.
func NewService(source PriceSource) *Service {
	return &Service{source: source}
}

// Lookup queries the source once and summarises the first record returned.
// The source is trusted to list the most recent arrival first.
func (s *Service) Lookup(ctx context.Context, a Arguments) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	records, err := s.source.Prices(ctx, datagov.Filters{
		State:     a.State,
		District:  a.District,
		Commodity: a.Commodity,
	})
	if err != nil {
		var shape *datagov.ShapeError
		if errors.As(err, &shape) {
			return "", &Error{Kind: UnexpectedProcessingFailure, Err: err}
		}
		return "", &Error{Kind: UpstreamCallFailure, Err: err}
	}
	if len(records) == 0 {
		return fmt.Sprintf("No recent mandi price data found for %s in %s, %s.", a.Commodity, a.District, a.State), nil
	}
	q, err := records[0].Quote()
	if err != nil {
		return "", &Error{Kind: UnexpectedProcessingFailure, Err: err}
	}
	return q.String(), nil
}

// Run parses body, performs the lookup and returns the payload with its HTTP status.
// The returned error, when non-nil, is always a *Error and is already reflected in the payload.
func (s *Service) Run(ctx context.Context, body []byte) (resp Response, status int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: UnexpectedProcessingFailure, Err: fmt.Errorf("panic: %v", r)}
			resp, status = failure(err)
		}
	}()

	args, err := ParseToolCall(body)
	if err == nil {
		var text string
		text, err = s.Lookup(ctx, args)
		if err == nil {
			return Response{Result: text}, http.StatusOK, nil
		}
	}
	var lerr *Error
	if !errors.As(err, &lerr) {
		err = &Error{Kind: UnexpectedProcessingFailure, Err: err}
	}
	resp, status = failure(err)
	return resp, status, err
}

func failure(err error) (Response, int) {
	return Response{Error: err.Error()}, KindOf(err).Status()
}

// KindOf returns the Kind carried by err, or zero if err is not a lookup error.
func KindOf(err error) Kind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return 0
}
