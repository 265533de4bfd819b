package greeting

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/labstack/echo/v5"
	"golang.org/x/sync/errgroup"

	applog "github.com/janisto/echo-greeting/internal/platform/logging"
	appmiddleware "github.com/janisto/echo-greeting/internal/platform/middleware"
	"github.com/janisto/echo-greeting/internal/platform/respond"
	greetingsvc "github.com/janisto/echo-greeting/internal/service/greeting"
)

func setupEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = respond.NewHTTPErrorHandler()
	Register(e.Group(""), greetingsvc.NewCounter())
	return e
}

func get(t *testing.T, e *echo.Echo, target string) greetingsvc.Greeting {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}

	var g greetingsvc.Greeting
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	return g
}

func TestGetGreeting_Default(t *testing.T) {
	e := setupEcho()

	req := httptest.NewRequest(http.MethodGet, "/greeting", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected application/json, got %q", ct)
	}

	want := `{"id":1,"content":"Hello, World!"}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Fatalf("expected body %s, got %s", want, got)
	}
}

func TestGetGreeting_Scenarios(t *testing.T) {
	e := setupEcho()

	first := get(t, e, "/greeting")
	if first.ID != 1 || first.Content != "Hello, World!" {
		t.Fatalf("unexpected first greeting: %+v", first)
	}

	second := get(t, e, "/greeting?name=User")
	if second.ID != 2 || second.Content != "Hello, User!" {
		t.Fatalf("unexpected second greeting: %+v", second)
	}

	third := get(t, e, "/greeting?name=")
	if third.ID != 3 || third.Content != "Hello, !" {
		t.Fatalf("unexpected third greeting: %+v", third)
	}
}

func TestGetGreeting_Names(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"simple", "Alice", "Hello, Alice!"},
		{"space", "John Doe", "Hello, John Doe!"},
		{"ampersand", "A & B", "Hello, A & B!"},
		{"quotes", `say "hi"`, `Hello, say "hi"!`},
		{"angle brackets", "<b>", "Hello, <b>!"},
		{"unicode", "Jyväskylä", "Hello, Jyväskylä!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupEcho()
			q := url.Values{nameParam: {tt.value}}
			g := get(t, e, "/greeting?"+q.Encode())
			if g.Content != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, g.Content)
			}
		})
	}
}

func TestGetGreeting_BareNameParam(t *testing.T) {
	e := setupEcho()

	g := get(t, e, "/greeting?name")
	if g.Content != "Hello, !" {
		t.Fatalf("expected 'Hello, !', got %q", g.Content)
	}
}

func TestGetGreeting_FirstValueWins(t *testing.T) {
	e := setupEcho()

	g := get(t, e, "/greeting?name=first&name=second")
	if g.Content != "Hello, first!" {
		t.Fatalf("expected 'Hello, first!', got %q", g.Content)
	}
}

func TestGetGreeting_MalformedEncoding(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/greeting?name=%zz", "Hello, World!"},
		{"/greeting?name=%zz&name=Bob", "Hello, Bob!"},
		{"/greeting?other=%zz&name=Bob", "Hello, Bob!"},
		{"/greeting?name=J%C3%BCrgen", "Hello, Jürgen!"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			g := get(t, setupEcho(), tt.target)
			if g.Content != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, g.Content)
			}
		})
	}
}

func TestGetGreeting_LogCarriesRequestContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(
		appmiddleware.RequestID(),
		applog.RequestLoggerWithConfig(applog.RequestLoggerConfig{Logger: base, ProjectID: "greeting-prod"}),
	)
	Register(e.Group(""), greetingsvc.NewCounter())

	get(t, e, "/greeting")

	req := httptest.NewRequest(http.MethodGet, "/greeting?name=User", nil)
	req.Header.Set(appmiddleware.HeaderXRequestID, "req-7")
	req.Header.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected two log entries, got %d: %s", len(lines), buf.String())
	}

	var first, second map[string]any
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("failed to unmarshal log: %v", err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatalf("failed to unmarshal log: %v", err)
	}

	if first["msg"] != "greeting issued" || first["id"] != float64(1) || first["named"] != false {
		t.Fatalf("unexpected first entry: %v", first)
	}
	if id, _ := first["requestId"].(string); len(id) != 36 {
		t.Fatalf("expected a generated requestId, got %v", first["requestId"])
	}

	if second["id"] != float64(2) || second["named"] != true {
		t.Fatalf("unexpected second entry: %v", second)
	}
	if second["requestId"] != "req-7" {
		t.Fatalf("expected requestId req-7, got %v", second["requestId"])
	}
	if second["logging.googleapis.com/trace"] != "projects/greeting-prod/traces/0af7651916cd43dd8448eb211c80319c" {
		t.Fatalf("unexpected trace: %v", second["logging.googleapis.com/trace"])
	}
	if second["logging.googleapis.com/spanId"] != "b7ad6b7169203331" {
		t.Fatalf("unexpected spanId: %v", second["logging.googleapis.com/spanId"])
	}
}

func TestGetGreeting_SequentialIDs(t *testing.T) {
	e := setupEcho()

	for want := int64(1); want <= 20; want++ {
		g := get(t, e, "/greeting")
		if g.ID != want {
			t.Fatalf("request %d: expected id %d, got %d", want, want, g.ID)
		}
	}
}

func TestGetGreeting_ConcurrentIDsUnique(t *testing.T) {
	e := setupEcho()

	const requests = 200
	ids := make([]int64, requests)

	var g errgroup.Group
	g.SetLimit(32)
	for i := range requests {
		g.Go(func() error {
			req := httptest.NewRequest(http.MethodGet, "/greeting?name=load", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			var out greetingsvc.Greeting
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				return err
			}
			ids[i] = out.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	seen := make(map[int64]struct{}, requests)
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
	if len(seen) != requests {
		t.Fatalf("expected %d distinct ids, got %d", requests, len(seen))
	}
	for id := int64(1); id <= requests; id++ {
		if _, ok := seen[id]; !ok {
			t.Fatalf("missing id %d", id)
		}
	}
}

func TestGetGreeting_CBOR(t *testing.T) {
	e := setupEcho()

	req := httptest.NewRequest(http.MethodGet, "/greeting?name=Bob", nil)
	req.Header.Set("Accept", "application/cbor")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/cbor" {
		t.Fatalf("expected application/cbor, got %q", ct)
	}

	var g greetingsvc.Greeting
	if err := cbor.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("failed to unmarshal CBOR: %v", err)
	}
	if g.ID != 1 || g.Content != "Hello, Bob!" {
		t.Fatalf("unexpected greeting: %+v", g)
	}
}

func TestGetGreeting_MethodNotAllowed(t *testing.T) {
	e := setupEcho()

	req := httptest.NewRequest(http.MethodPost, "/greeting", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	var problem respond.ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if problem.Status != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", problem.Status)
	}
}

func TestGetGreeting_RejectedRequestDoesNotConsumeID(t *testing.T) {
	e := setupEcho()

	req := httptest.NewRequest(http.MethodDelete, "/greeting", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	g := get(t, e, "/greeting")
	if g.ID != 1 {
		t.Fatalf("expected id 1 after rejected request, got %d", g.ID)
	}
}
