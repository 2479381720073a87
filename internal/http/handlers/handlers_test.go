package handlers

import (
	"net"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
)

func newRequestCtx(uri string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(uri)

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 54012}, nil)
	return ctx
}

func TestParseDays(t *testing.T) {
	cases := []struct {
		query   string
		want    int // -1 means all time (nil)
		wantErr bool
	}{
		{"", 1, false}, // absent defaults to a 1-day window
		{"days=all", -1, false},
		{"days=1", 1, false},
		{"days=30", 30, false},
		{"days=365", 365, false},
		{"days=0", 0, true},
		{"days=366", 0, true},
		{"days=400", 0, true},
		{"days=-5", 0, true},
		{"days=abc", 0, true},
		{"days=7.5", 0, true},
	}
	for _, tc := range cases {
		ctx := newRequestCtx("http://internal/v1/analytics?" + tc.query)
		got, err := parseDays(ctx)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.query)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.query, err)
		}
		if tc.want == -1 {
			if got != nil {
				t.Fatalf("%q: expected all time (nil), got %d", tc.query, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Fatalf("%q: expected %d, got %v", tc.query, tc.want, got)
		}
	}
}

func TestAnalytics_InvalidDaysIs400(t *testing.T) {
	// Validation runs before any dependency is touched, so a nil catalog
	// handle is safe here.
	h := Analytics(nil, nil)

	ctx := newRequestCtx("http://internal/v1/analytics?days=400")
	h(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ctx.Response.StatusCode())
	}
	body := string(ctx.Response.Body())
	if !strings.Contains(body, `"error":"Invalid days parameter"`) {
		t.Fatalf("expected invalid-days envelope, got %s", body)
	}
	if !strings.Contains(body, "365") {
		t.Fatalf("message must state the accepted range, got %s", body)
	}
}
