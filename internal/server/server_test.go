package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"mandi-price/internal/datagov"
	"mandi-price/internal/lookup"
)

func newTestServer(t *testing.T, upstream http.HandlerFunc) (*Server, *int) {
	t.Helper()
	calls := new(int)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		upstream(w, r)
	}))
	t.Cleanup(ts.Close)
	client := datagov.New(ts.URL, "", "test-key", ts.Client())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(lookup.NewService(client), logger), calls
}

func post(s *Server, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	s := New(lookup.NewService(datagov.New("", "", "k", nil)), nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestListToolsSchema(t *testing.T) {
	s, _ := newTestServer(t, func(http.ResponseWriter, *http.Request) {})
	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Tools []struct {
			Name        string          `json:"name"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Tools) != 1 || resp.Tools[0].Name != ToolName {
		t.Fatalf("tools = %+v", resp.Tools)
	}

	schema, err := jsonschema.CompileString("tool.json", string(resp.Tools[0].InputSchema))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	var good, missing interface{}
	_ = json.Unmarshal([]byte(`{"state":"Punjab","district":"Ludhiana","commodity":"Wheat"}`), &good)
	_ = json.Unmarshal([]byte(`{"state":"Punjab","district":"Ludhiana"}`), &missing)
	if err := schema.Validate(good); err != nil {
		t.Fatalf("valid arguments rejected: %v", err)
	}
	if err := schema.Validate(missing); err == nil {
		t.Fatal("arguments without commodity accepted")
	}
}

func TestPricesExample(t *testing.T) {
	s, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("filters[state]") != "Punjab" || q.Get("filters[district]") != "Ludhiana" || q.Get("filters[commodity]") != "Wheat" {
			t.Errorf("unexpected filters: %v", q)
		}
		_, _ = w.Write([]byte(`{"records":[{"commodity":"Wheat","variety":"PBW-343","market":"Ludhiana Mandi","arrival_date":"2024-01-15","modal_price":"2100"}]}`))
	})

	for _, path := range []string{"/", "/mandi-prices"} {
		rr := post(s, path, `{"call":{"arguments":{"state":"Punjab","district":"Ludhiana","commodity":"Wheat"}}}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content type = %q", ct)
		}
		resp := decode(t, rr)
		want := "Latest price for Wheat (PBW-343) in Ludhiana Mandi market on 2024-01-15: Modal Price is ₹2100 per Quintal."
		if resp["result"] != want {
			t.Fatalf("%s: result = %q", path, resp["result"])
		}
		if _, ok := resp["error"]; ok {
			t.Fatalf("%s: unexpected error key: %v", path, resp)
		}
	}
	if *calls != 2 {
		t.Fatalf("upstream calls = %d, want 2", *calls)
	}
}

func TestPricesBadRequests(t *testing.T) {
	s, calls := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"records":[]}`))
	})
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", ``, "Invalid request format. Expected Vertex AI tool call format."},
		{"malformed", `{"call":{`, "Invalid request format. Expected Vertex AI tool call format."},
		{"no call", `{"state":"Punjab"}`, "Invalid request format. Expected Vertex AI tool call format."},
		{"no arguments", `{"call":{}}`, "Invalid request format. Expected Vertex AI tool call format."},
		{"missing commodity", `{"call":{"arguments":{"state":"Punjab","district":"Ludhiana"}}}`, "Missing required parameters: state, district, or commodity."},
		{"empty state", `{"call":{"arguments":{"state":"","district":"Ludhiana","commodity":"Wheat"}}}`, "Missing required parameters: state, district, or commodity."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(s, "/", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if got := decode(t, rr)["error"]; got != tt.want {
				t.Fatalf("error = %q, want %q", got, tt.want)
			}
		})
	}
	if *calls != 0 {
		t.Fatalf("upstream called %d times for rejected requests", *calls)
	}
}

func TestPricesNoData(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"records":[]}`))
	})
	rr := post(s, "/", `{"call":{"arguments":{"state":"Kerala","district":"Ernakulam","commodity":"Coconut"}}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode(t, rr)["result"]; got != "No recent mandi price data found for Coconut in Ernakulam, Kerala." {
		t.Fatalf("result = %q", got)
	}
}

func TestPricesUpstreamErrorKeeps200(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	rr := post(s, "/", `{"call":{"arguments":{"state":"Punjab","district":"Ludhiana","commodity":"Wheat"}}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decode(t, rr)
	if !strings.HasPrefix(resp["error"], "Failed to call external API: ") {
		t.Fatalf("error = %q", resp["error"])
	}
	if strings.Contains(resp["error"], "test-key") {
		t.Fatalf("api key leaked: %q", resp["error"])
	}
}

func TestPricesMalformedRecord(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"records":[{"commodity":"Wheat","variety":"PBW-343"}]}`))
	})
	rr := post(s, "/", `{"call":{"arguments":{"state":"Punjab","district":"Ludhiana","commodity":"Wheat"}}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode(t, rr)["error"]; !strings.HasPrefix(got, "An unexpected error occurred: ") {
		t.Fatalf("error = %q", got)
	}
}

func TestPricesMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, func(http.ResponseWriter, *http.Request) {})
	req := httptest.NewRequest(http.MethodGet, "/mandi-prices", bytes.NewReader(nil))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestPricesMalformedResponse(t *testing.T) {
	for _, body := range []string{
		`{"records":{"commodity":"Wheat"}}`,
		`{"records":"oops"}`,
		`null`,
		`[{"commodity":"Wheat"}]`,
	} {
		t.Run(body, func(t *testing.T) {
			s, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			rr := post(s, "/", `{"call":{"arguments":{"state":"Punjab","district":"Ludhiana","commodity":"Wheat"}}}`)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			resp := decode(t, rr)
			if !strings.HasPrefix(resp["error"], "An unexpected error occurred: ") {
				t.Fatalf("error = %q", resp["error"])
			}
			if _, ok := resp["result"]; ok {
				t.Fatalf("unexpected result key: %v", resp)
			}
		})
	}
}

func TestAccessLogUsesConfiguredHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	s := New(lookup.NewService(datagov.New("", "", "k", nil)), logger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatal("no access log written")
	}
	for _, line := range lines {
		var rec map[string]interface{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("access log line is not JSON: %q", line)
		}
		if msg, _ := rec["msg"].(string); !strings.Contains(msg, "/health") {
			t.Fatalf("access log msg = %q", msg)
		}
	}
}
