package logging

import (
	"log/slog"
	"testing"
)

func TestParseTraceparent(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		ok      bool
		sampled bool
	}{
		{"sampled", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", true, true},
		{"not sampled", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-00", true, false},
		{"sampled with other flags", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-03", true, true},
		{"uppercase hex", "00-0AF7651916CD43DD8448EB211C80319C-B7AD6B7169203331-01", true, true},
		{"empty", "", false, false},
		{"garbage", "not-a-trace", false, false},
		{"short trace id", "00-0af7651916cd43dd-b7ad6b7169203331-01", false, false},
		{"zero trace id", "00-00000000000000000000000000000000-b7ad6b7169203331-01", false, false},
		{"zero span id", "00-0af7651916cd43dd8448eb211c80319c-0000000000000000-01", false, false},
		{"forbidden version", "ff-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", false, false},
		{"non-hex flags", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-zz", false, false},
		{"extra field", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01-xx", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, ok := parseTraceparent(tt.header)
			if ok != tt.ok {
				t.Fatalf("parseTraceparent(%q) ok = %v, want %v", tt.header, ok, tt.ok)
			}
			if ok && tp.sampled != tt.sampled {
				t.Fatalf("sampled = %v, want %v", tp.sampled, tt.sampled)
			}
		})
	}
}

func TestTraceparentAttrs(t *testing.T) {
	tp, ok := parseTraceparent("00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	if !ok {
		t.Fatal("expected valid traceparent")
	}

	got := map[string]slog.Value{}
	for _, a := range tp.attrs("greeting-prod") {
		attr := a.(slog.Attr)
		got[attr.Key] = attr.Value
	}

	if v := got[keyTrace].String(); v != "projects/greeting-prod/traces/0af7651916cd43dd8448eb211c80319c" {
		t.Fatalf("unexpected trace resource %q", v)
	}
	if v := got[keySpanID].String(); v != "b7ad6b7169203331" {
		t.Fatalf("unexpected span id %q", v)
	}
	if !got[keyTraceSampled].Bool() {
		t.Fatal("expected trace_sampled true")
	}
}
