package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/labstack/echo/v5"
)

const (
	mimeCBOR        = "application/cbor"
	mimeProblemJSON = "application/problem+json"
	mimeProblemCBOR = "application/problem+cbor"
)

// mediaRange is one entry of an Accept header.
type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept parses an Accept header value into media ranges per RFC 9110.
// Entries without a subtype are treated as type/*.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		mr := mediaRange{q: 1.0}
		mediaType, params, _ := strings.Cut(part, ";")
		for param := range strings.SplitSeq(params, ";") {
			param = strings.TrimSpace(param)
			if len(param) < 2 || !strings.EqualFold(param[:2], "q=") {
				continue
			}
			if q, err := strconv.ParseFloat(param[2:], 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
		}

		typ, subtype, ok := strings.Cut(mediaType, "/")
		if !ok {
			subtype = "*"
		}
		mr.typ = strings.ToLower(strings.TrimSpace(typ))
		mr.subtype = strings.ToLower(strings.TrimSpace(subtype))
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity reports how precisely mr names CBOR and JSON (0 means no match).
func specificity(mr mediaRange) (cborSpec, jsonSpec int) {
	switch {
	case mr.typ == "*" && mr.subtype == "*":
		return 1, 1
	case mr.typ != "application":
		return 0, 0
	case mr.subtype == "*":
		return 2, 2
	case mr.subtype == "problem+cbor":
		return 4, 0
	case mr.subtype == "problem+json":
		return 0, 4
	case mr.subtype == "cbor", strings.HasSuffix(mr.subtype, "+cbor"):
		return 3, 0
	case mr.subtype == "json", strings.HasSuffix(mr.subtype, "+json"):
		return 0, 3
	}
	return 0, 0
}

// preferCBOR reports whether the Accept header prefers CBOR over JSON.
// The most specific matching range decides each format's q-value; the higher q
// wins and specificity breaks ties. JSON is the default.
func preferCBOR(header string) bool {
	cborQ, jsonQ := -1.0, -1.0
	cborBest, jsonBest := 0, 0

	for _, mr := range parseAccept(header) {
		if mr.q == 0 {
			continue
		}
		cs, js := specificity(mr)
		if cs > 0 && (cs > cborBest || (cs == cborBest && mr.q > cborQ)) {
			cborQ, cborBest = mr.q, cs
		}
		if js > 0 && (js > jsonBest || (js == jsonBest && mr.q > jsonQ)) {
			jsonQ, jsonBest = mr.q, js
		}
	}

	switch {
	case cborQ <= 0:
		return false
	case cborQ != jsonQ:
		return cborQ > jsonQ
	default:
		return cborBest > jsonBest
	}
}

// ensureVary adds values to the Vary header without duplicating existing entries.
func ensureVary(h http.Header, values ...string) {
	existing := make(map[string]struct{})
	for _, v := range h.Values("Vary") {
		for part := range strings.SplitSeq(v, ",") {
			existing[strings.TrimSpace(part)] = struct{}{}
		}
	}
	for _, v := range values {
		if _, ok := existing[v]; !ok {
			h.Add("Vary", v)
			existing[v] = struct{}{}
		}
	}
}

// writeProblem writes problem as application/problem+json, or
// application/problem+cbor when the client prefers CBOR.
func writeProblem(w http.ResponseWriter, r *http.Request, problem ProblemDetails) {
	ensureVary(w.Header(), "Origin", "Accept")

	if preferCBOR(r.Header.Get("Accept")) {
		w.Header().Set("Content-Type", mimeProblemCBOR)
		w.WriteHeader(problem.Status)
		_ = cbor.NewEncoder(w).Encode(problem)
		return
	}

	w.Header().Set("Content-Type", mimeProblemJSON)
	w.WriteHeader(problem.Status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(problem)
}

// Negotiate writes data as JSON, or CBOR when the Accept header prefers it.
// The response varies on Accept either way.
func Negotiate(c *echo.Context, status int, data any) error {
	ensureVary(c.Response().Header(), "Accept")
	if preferCBOR(c.Request().Header.Get("Accept")) {
		b, err := cbor.Marshal(data)
		if err != nil {
			return err
		}
		return c.Blob(status, mimeCBOR, b)
	}
	return c.JSON(status, data)
}

func committed(c *echo.Context) bool {
	resp, err := echo.UnwrapResponse(c.Response())
	return err == nil && resp.Committed
}

// Recoverer returns Echo middleware that recovers from panics with Problem Details.
// Re-panics on http.ErrAbortHandler to preserve net/http abort semantics.
func Recoverer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				slog.ErrorContext(c.Request().Context(), "panic recovered",
					slog.Any("error", rec),
					slog.String("stack", string(debug.Stack())),
				)

				if committed(c) {
					return
				}
				writeProblem(c.Response(), c.Request(), *Problem(http.StatusInternalServerError, "internal server error"))
			}()
			return next(c)
		}
	}
}

// problemFor maps a handler or router error to Problem Details.
func problemFor(c *echo.Context, err error) ProblemDetails {
	var pd *ProblemDetails
	var he *echo.HTTPError

	switch {
	case errors.As(err, &pd):
		return *pd
	case errors.Is(err, echo.ErrNotFound):
		return *Problem(http.StatusNotFound, "resource not found")
	case errors.Is(err, echo.ErrMethodNotAllowed):
		return *Problem(http.StatusMethodNotAllowed,
			fmt.Sprintf("method %s not allowed", c.Request().Method))
	case errors.As(err, &he):
		return *Problem(he.Code, he.Message)
	default:
		return *Problem(http.StatusInternalServerError, "internal server error")
	}
}

// NewHTTPErrorHandler returns an Echo HTTPErrorHandler that produces RFC 9457 Problem Details.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(c *echo.Context, err error) {
		if committed(c) {
			return
		}
		problem := problemFor(c, err)
		if problem.Instance == "" {
			problem.Instance = c.Request().URL.Path
		}
		writeProblem(c.Response(), c.Request(), problem)
	}
}
