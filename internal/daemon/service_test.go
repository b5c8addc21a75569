package daemon

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type memSource struct {
	mu       sync.Mutex
	ledger   model.Ledger
	revision int64
}

func (m *memSource) LoadLedger() (model.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger, nil
}

func (m *memSource) Revision() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision, nil
}

func (m *memSource) set(l model.Ledger) {
	m.mu.Lock()
	m.ledger = l
	m.revision++
	m.mu.Unlock()
}

func ledger(income, principal int64) model.Ledger {
	return model.Ledger{
		Incomes: []model.Income{{Source: "Salary", Amount: decimal.NewFromInt(income)}},
		Debts: []model.Debt{{
			Name:         "Card",
			Principal:    decimal.NewFromInt(principal),
			Installments: 12,
		}},
	}
}

func quietLogger() *logrus.Logger {
	lg := logrus.New()
	lg.SetOutput(io.Discard)
	return lg
}

func newTestService(src *memSource, buffer int) *Service {
	return New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: buffer,
		Logger:       quietLogger(),
		Source:       src,
	})
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		MonthlyBudget:  decimal.NewFromInt(150),
		TotalDebt:      decimal.NewFromInt(1200),
		MonthsToPayoff: 8,
		TotalInterest:  decimal.Zero,
		Status:         model.StatusComplete,
	}
	curr := Snapshot{
		MonthlyBudget:  decimal.NewFromInt(300),
		TotalDebt:      decimal.NewFromInt(1200),
		MonthsToPayoff: 4,
		TotalInterest:  decimal.Zero,
		Status:         model.StatusComplete,
	}

	delta := diffSnapshots(prev, curr)
	if !delta.MonthlyBudget.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("budget delta = %s, want 150", delta.MonthlyBudget)
	}
	if delta.MonthsToPayoff != -4 {
		t.Fatalf("months delta = %d, want -4", delta.MonthsToPayoff)
	}
	if !delta.TotalDebt.IsZero() {
		t.Fatalf("debt delta = %s, want 0", delta.TotalDebt)
	}
	if delta.StatusChanged {
		t.Fatal("status unexpectedly changed")
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("self diff should be zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := newTestService(&memSource{}, 2)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollEmitsSnapshotThenChanges(t *testing.T) {
	src := &memSource{}
	src.set(ledger(150, 1200))
	s := newTestService(src, 10)

	s.pollOnce()
	s.pollOnce() // no revision change, no event

	src.set(ledger(300, 1200))
	s.pollOnce()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events = %d, want 2", len(s.events))
	}
	first, second := s.events[0], s.events[1]
	if first.Type != EventSnapshot || first.Snapshot.MonthsToPayoff != 8 {
		t.Errorf("first event = %s months %d, want snapshot months 8", first.Type, first.Snapshot.MonthsToPayoff)
	}
	if second.Type != EventProjectionChanged {
		t.Errorf("second event type = %s, want %s", second.Type, EventProjectionChanged)
	}
	if second.Delta.MonthsToPayoff != -4 {
		t.Errorf("months delta = %d, want -4", second.Delta.MonthsToPayoff)
	}
	if s.pollCount != 3 {
		t.Errorf("pollCount = %d, want 3", s.pollCount)
	}
}

func TestHandleProjection(t *testing.T) {
	src := &memSource{}
	src.set(ledger(150, 1200))
	s := newTestService(src, 10)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/projection")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("before first poll: status = %d, want 503", resp.StatusCode)
	}

	s.pollOnce()

	resp, err = http.Get(srv.URL + "/v1/projection?months=3")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body ProjectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.MonthsToPayoff != 8 {
		t.Errorf("months_to_payoff = %d, want 8", body.MonthsToPayoff)
	}
	if len(body.Months) != 3 {
		t.Errorf("months len = %d, want 3", len(body.Months))
	}
	if len(body.Payoffs) != 1 || body.Payoffs[0].Name != "Card" || body.Payoffs[0].Month != 8 {
		t.Errorf("payoffs = %+v, want Card in month 8", body.Payoffs)
	}
	if !body.Summary.MonthlyBudget.Equal(decimal.NewFromInt(150)) {
		t.Errorf("budget = %s, want 150", body.Summary.MonthlyBudget)
	}
}

func TestHandleProjectionBadQuery(t *testing.T) {
	s := newTestService(&memSource{}, 10)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/projection?months=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleStatusAndHealth(t *testing.T) {
	src := &memSource{}
	src.set(ledger(150, 1200))
	s := newTestService(src, 10)
	s.pollOnce()

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.PollCount != 1 || st.EventCount != 1 {
		t.Errorf("status = %+v, want 1 poll and 1 event", st)
	}
	if st.Summary.Status != model.StatusComplete || st.Summary.Debts != 1 {
		t.Errorf("summary = %+v", st.Summary)
	}
	if st.Summary.DebtFreeBy == "" {
		t.Error("debt_free_by should be set for a complete projection")
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}
