package daemon

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestNewClientAddr(t *testing.T) {
	tests := []struct{ in, want string }{
		{"127.0.0.1:8788", "http://127.0.0.1:8788"},
		{"http://localhost:9000/", "http://localhost:9000"},
		{" https://example.test ", "https://example.test"},
	}
	for _, tt := range tests {
		if got := NewClient(tt.in).base; got != tt.want {
			t.Errorf("NewClient(%q).base = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientAgainstRouter(t *testing.T) {
	src := &memSource{}
	src.set(ledger(150, 1200))
	s := newTestService(src, 10)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	if _, err := c.Projection(ctx, -1); !errors.Is(err, ErrNotReady) {
		t.Fatalf("before first poll: err = %v, want ErrNotReady", err)
	}

	s.pollOnce()

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.PollCount != 1 || st.Summary.MonthsToPayoff != 8 {
		t.Errorf("status = %+v", st)
	}

	pr, err := c.Projection(ctx, 2)
	if err != nil {
		t.Fatalf("Projection: %v", err)
	}
	if len(pr.Months) != 2 || pr.MonthsToPayoff != 8 {
		t.Errorf("projection months = %d, payoff = %d", len(pr.Months), pr.MonthsToPayoff)
	}

	events, err := c.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].Type != EventSnapshot {
		t.Errorf("events = %+v, want one snapshot", events)
	}
}
