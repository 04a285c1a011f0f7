// Package datagov provides a minimal client for the data.gov.in commodity price resource.
package datagov

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the data.gov.in resource endpoint root.
	DefaultBaseURL = "https://api.data.gov.in/resource"
	// DefaultResourceID identifies the daily mandi price dataset.
	DefaultResourceID = "9ef84268-d588-465a-a308-a864a43d0070"
	// DefaultLimit is the number of records requested per lookup.
	DefaultLimit = 10
)

// Client is a minimal HTTP client for one data.gov.in resource.
type Client struct {
	BaseURL    string
	ResourceID string
	APIKey     string
	HTTP       *http.Client
}

// New returns a new client. Empty baseURL or resourceID select the defaults.
// If httpClient is nil, http.DefaultClient is used.
func New(baseURL, resourceID, apiKey string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if resourceID == "" {
		resourceID = DefaultResourceID
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ResourceID: resourceID,
		APIKey:     apiKey,
		HTTP:       httpClient,
	}
}

// Filters narrows the resource to one commodity in one district.
type Filters struct {
	State     string
	District  string
	Commodity string
}

// Prices fetches up to DefaultLimit records matching f.
// The order of the returned records is the order the API sent them in.
func (c *Client) Prices(ctx context.Context, f Filters) ([]PriceRecord, error) {
	if c.APIKey == "" {
		return nil, &UpstreamError{Err: errors.New("api key missing")}
	}
	reqURL, err := c.buildPricesURL(f)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: redactKey(err, c.APIKey)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if !gjson.ValidBytes(body) {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: errors.New("response body is not valid JSON")}
	}
	return extractRecords(body)
}

// buildPricesURL composes the resource URL with query params.
func (c *Client) buildPricesURL(f Filters) (string, error) {
	u, err := url.Parse(c.BaseURL + "/" + url.PathEscape(c.ResourceID))
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("api-key", c.APIKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(DefaultLimit))
	q.Set("filters[state]", f.State)
	q.Set("filters[district]", f.District)
	q.Set("filters[commodity]", f.Commodity)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// extractRecords reads the records array. A missing or null array yields no records;
// any other shape is a *ShapeError.
func extractRecords(body []byte) ([]PriceRecord, error) {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, &ShapeError{Path: "", Got: jsonKind(root)}
	}
	arr := root.Get("records")
	switch {
	case !arr.Exists(), arr.Type == gjson.Null:
		return nil, nil
	case !arr.IsArray():
		return nil, &ShapeError{Path: "records", Got: jsonKind(arr)}
	}
	items := arr.Array()
	out := make([]PriceRecord, 0, len(items))
	for _, it := range items {
		out = append(out, PriceRecord{raw: it})
	}
	return out, nil
}

func jsonKind(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.IsObject():
		return "object"
	}
	switch r.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	}
	return "null"
}

// redactedError hides the api key in the message of a transport error, which
// echoes the request URL, while keeping the original error in the chain.
type redactedError struct {
	err error
	key string
}

func (e *redactedError) Error() string {
	return strings.ReplaceAll(e.err.Error(), e.key, "REDACTED")
}

func (e *redactedError) Unwrap() error { return e.err }

func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), url.QueryEscape(key)) {
		return err
	}
	return &redactedError{err: err, key: url.QueryEscape(key)}
}
