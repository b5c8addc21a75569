package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// ProjectionResponse is served at /v1/projection.
type ProjectionResponse struct {
	Summary        model.BudgetSummary    `json:"summary"`
	Status         model.ProjectionStatus `json:"status"`
	MonthsToPayoff int                    `json:"months_to_payoff"`
	TotalPaid      decimal.Decimal        `json:"total_paid"`
	TotalInterest  decimal.Decimal        `json:"total_interest"`
	Payoffs        []model.Payoff         `json:"payoffs"`
	Months         []model.MonthRecord    `json:"months"`
}

// Router returns the HTTP routes served by the daemon.
func (s *Service) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/projection", s.handleProjection).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// handleProjection serves the latest projection. ?months=N trims the month
// list to the first N entries.
func (s *Service) handleProjection(w http.ResponseWriter, r *http.Request) {
	limit := -1
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "months must be a non-negative integer"})
			return
		}
		limit = n
	}

	s.mu.RLock()
	ready := s.hasSnapshot
	res := s.result
	s.mu.RUnlock()

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no projection yet"})
		return
	}

	months := res.Projection.Months
	if limit >= 0 && limit < len(months) {
		months = months[:limit]
	}
	if months == nil {
		months = []model.MonthRecord{}
	}

	writeJSON(w, http.StatusOK, ProjectionResponse{
		Summary:        res.Summary,
		Status:         res.Projection.Status,
		MonthsToPayoff: res.Projection.MonthsToPayoff(),
		TotalPaid:      res.Projection.TotalPaid,
		TotalInterest:  res.Projection.TotalInterest,
		Payoffs:        res.Projection.PayoffOrder(),
		Months:         months,
	})
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
