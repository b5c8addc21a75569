// Package daemon provides the long-running background projection service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/pipeline"
	"github.com/theirongolddev/snowball/internal/snowball"
	"github.com/theirongolddev/snowball/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Event types.
const (
	EventSnapshot          = "snapshot"
	EventProjectionChanged = "projection_changed"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	MaxMonths    int
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *logrus.Logger

	// Source overrides the store opened from DBPath.
	Source pipeline.RevisionedSource
}

// Snapshot is a compact projection state for status/event payloads.
type Snapshot struct {
	At             time.Time              `json:"at"`
	Revision       int64                  `json:"revision"`
	Incomes        int                    `json:"incomes"`
	Expenses       int                    `json:"expenses"`
	Debts          int                    `json:"debts"`
	MonthlyBudget  decimal.Decimal        `json:"monthly_budget"`
	TotalDebt      decimal.Decimal        `json:"total_debt"`
	Status         model.ProjectionStatus `json:"status"`
	MonthsToPayoff int                    `json:"months_to_payoff"`
	TotalInterest  decimal.Decimal        `json:"total_interest"`
	DebtFreeBy     string                 `json:"debt_free_by,omitempty"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	MonthlyBudget  decimal.Decimal `json:"monthly_budget"`
	TotalDebt      decimal.Decimal `json:"total_debt"`
	MonthsToPayoff int             `json:"months_to_payoff"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	StatusChanged  bool            `json:"status_changed,omitempty"`
}

func (d Delta) isZero() bool {
	return d.MonthlyBudget.IsZero() &&
		d.TotalDebt.IsZero() &&
		d.MonthsToPayoff == 0 &&
		d.TotalInterest.IsZero() &&
		!d.StatusChanged
}

// Event is emitted whenever the projection changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	MaxMonths       int       `json:"max_months"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg       Config
	log       *logrus.Logger
	projector *pipeline.Projector

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	result      pipeline.Result
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 5 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logrus.StandardLogger()
	}

	s := &Service{
		cfg:       cfg,
		log:       lg,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	if cfg.Source != nil {
		s.projector = pipeline.NewProjector(cfg.Source, snowball.Options{MaxMonths: cfg.MaxMonths})
	}
	return s
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.projector == nil {
		st, err := store.Open(s.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer func() { _ = st.Close() }()
		s.projector = pipeline.NewProjector(st, snowball.Options{MaxMonths: s.cfg.MaxMonths})
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.WithFields(logrus.Fields{"addr": s.cfg.Addr, "db": s.cfg.DBPath}).Info("daemon listening")

	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("daemon shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	res, changed, err := s.projector.Refresh()
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.WithError(err).Warn("poll failed")
		return
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if changed || !s.hasSnapshot {
		snap := snapshotFromResult(res, s.projector.Revision(), now)
		prev := s.snapshot
		prevExists := s.hasSnapshot

		s.hasSnapshot = true
		s.snapshot = snap
		s.result = res

		if !prevExists {
			s.nextEventID++
			ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
			publish = true
		} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
			s.nextEventID++
			ev = Event{ID: s.nextEventID, Type: EventProjectionChanged, Timestamp: now, Snapshot: snap, Delta: delta}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.log.WithFields(logrus.Fields{
			"event":    ev.Type,
			"revision": ev.Snapshot.Revision,
			"months":   ev.Snapshot.MonthsToPayoff,
			"status":   ev.Snapshot.Status,
		}).Debug("projection updated")
		s.publishEvent(ev)
	}
}

func snapshotFromResult(res pipeline.Result, revision int64, at time.Time) Snapshot {
	snap := Snapshot{
		At:             at,
		Revision:       revision,
		Incomes:        res.Summary.IncomeCount,
		Expenses:       res.Summary.ExpenseCount,
		Debts:          res.Summary.DebtCount,
		MonthlyBudget:  res.Summary.MonthlyBudget,
		TotalDebt:      res.Summary.TotalDebt,
		Status:         res.Projection.Status,
		MonthsToPayoff: res.Projection.MonthsToPayoff(),
		TotalInterest:  res.Projection.TotalInterest,
	}
	if snap.MonthsToPayoff > 0 {
		snap.DebtFreeBy = at.AddDate(0, snap.MonthsToPayoff, 0).Format("2006-01")
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		MonthlyBudget:  curr.MonthlyBudget.Sub(prev.MonthlyBudget),
		TotalDebt:      curr.TotalDebt.Sub(prev.TotalDebt),
		MonthsToPayoff: curr.MonthsToPayoff - prev.MonthsToPayoff,
		TotalInterest:  curr.TotalInterest.Sub(prev.TotalInterest),
		StatusChanged:  curr.Status != prev.Status,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		MaxMonths:       s.cfg.MaxMonths,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
