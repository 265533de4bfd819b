package logging

import (
	"cmp"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

const traceparentHeader = "traceparent"

// Cloud Logging keys that link an entry to a Cloud Trace span.
const (
	keyTrace        = "logging.googleapis.com/trace"
	keySpanID       = "logging.googleapis.com/spanId"
	keyTraceSampled = "logging.googleapis.com/trace_sampled"
)

// traceparent holds the fields of a W3C Trace Context header
// ({version}-{trace-id}-{parent-id}-{trace-flags}) that Cloud Logging uses.
type traceparent struct {
	traceID string
	spanID  string
	sampled bool
}

func parseTraceparent(header string) (traceparent, bool) {
	version, rest, _ := strings.Cut(header, "-")
	traceID, rest, _ := strings.Cut(rest, "-")
	spanID, flags, _ := strings.Cut(rest, "-")

	if !isHex(version, 2) || version == "ff" || !isHex(traceID, 32) || !isHex(spanID, 16) || !isHex(flags, 2) {
		return traceparent{}, false
	}
	if allZero(traceID) || allZero(spanID) {
		return traceparent{}, false
	}
	bits, _ := strconv.ParseUint(flags, 16, 8)
	return traceparent{traceID: traceID, spanID: spanID, sampled: bits&1 == 1}, true
}

func (t traceparent) attrs(projectID string) []any {
	return []any{
		slog.String(keyTrace, "projects/"+projectID+"/traces/"+t.traceID),
		slog.String(keySpanID, t.spanID),
		slog.Bool(keyTraceSampled, t.sampled),
	}
}

func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := range len(s) {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func allZero(s string) bool {
	return strings.Trim(s, "0") == ""
}

// projectIDFromEnv resolves the Google Cloud project once per process.
var projectIDFromEnv = sync.OnceValue(func() string {
	return cmp.Or(
		os.Getenv("GOOGLE_CLOUD_PROJECT"),
		os.Getenv("GCP_PROJECT"),
		os.Getenv("GCLOUD_PROJECT"),
		os.Getenv("PROJECT_ID"),
	)
})
