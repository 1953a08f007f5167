package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/JaimeStill/inspector/internal/catalog"
	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/internal/results"
	"github.com/JaimeStill/inspector/pkg/lifecycle"
)

type manager struct {
	cache       *cache.Cache
	ttl         time.Duration
	cleanup     time.Duration
	inspections inspections.System
	catalog     catalog.System
	results     results.System
	logger      *slog.Logger
}

// New creates a session manager backed by a TTL cache.
func New(
	cfg *Config,
	insp inspections.System,
	cat catalog.System,
	res results.System,
	logger *slog.Logger,
) System {
	m := &manager{
		cache:       cache.New(cfg.TTLDuration(), 0),
		ttl:         cfg.TTLDuration(),
		cleanup:     cfg.CleanupIntervalDuration(),
		inspections: insp,
		catalog:     cat,
		results:     res,
		logger:      logger.With("system", "sessions"),
	}

	m.cache.OnEvicted(func(key string, _ any) {
		m.logger.Debug("session evicted", "id", key)
	})

	return m
}

func (m *manager) Handler() *Handler {
	return NewHandler(m, m.logger)
}

// Start sweeps expired sessions every cleanup interval until shutdown, then
// drops whatever is left. The cache runs no janitor of its own, so a manager
// that is never started holds no goroutine.
func (m *manager) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown("sessions", func() {
		ticker := time.NewTicker(m.cleanup)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.cache.DeleteExpired()
			case <-lc.Context().Done():
				n := m.cache.ItemCount()
				m.cache.Flush()
				m.logger.Info("sessions dropped", "count", n)
				return
			}
		}
	})
	return nil
}

func (m *manager) Open(ctx context.Context, cmd StartCommand) (*Session, error) {
	if !cmd.Check.Valid() {
		return nil, checks.ErrInvalidType
	}

	insp, err := m.inspections.Find(ctx, cmd.InspectionID)
	if err != nil {
		return nil, err
	}
	if insp.Completed() {
		return nil, inspections.ErrCompleted
	}

	questions, err := m.catalog.Questions(ctx, cmd.Check, insp.Series)
	if err != nil {
		return nil, fmt.Errorf("load %s questions: %w", cmd.Check, err)
	}

	s := &state{Session: Session{
		ID:           uuid.New(),
		InspectionID: insp.ID,
		Check:        cmd.Check,
		Series:       insp.Series,
		SampleSize:   1,
		Current:      1,
		Inspector:    strings.TrimSpace(cmd.Inspector),
		Questions:    questions,
		Samples:      make(map[int]map[string]results.Entry),
		CreatedAt:    time.Now().UTC(),
	}}
	if cmd.Check.Sampled() {
		s.SampleSize = insp.SampleQty
	}
	if s.Inspector == "" {
		s.Inspector = insp.Inspector
	}
	if len(questions) == 0 {
		s.Notice = fmt.Sprintf("no active %s questions for series %q; nothing to check", cmd.Check, insp.Series)
	}

	working, err := m.load(ctx, s, 1)
	if err != nil {
		return nil, err
	}
	s.Working = working

	m.cache.Set(s.ID.String(), s, cache.DefaultExpiration)

	m.logger.Info(
		"session opened",
		"id", s.ID,
		"inspection_id", s.InspectionID,
		"check", s.Check,
		"sample_size", s.SampleSize,
		"questions", len(s.Questions),
	)
	return s.snapshot(), nil
}

func (m *manager) Get(id uuid.UUID) (*Session, error) {
	s, err := m.find(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

func (m *manager) Answer(id uuid.UUID, cmd AnswerCommand) (*Session, error) {
	s, err := m.find(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.question(cmd.QuestionID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, cmd.QuestionID)
	}

	apply(s.Working, cmd)
	s.Done = false
	return s.snapshot(), nil
}

func (m *manager) Next(ctx context.Context, id uuid.UUID) (*Session, error) {
	s, err := m.find(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Done {
		return s.snapshot(), nil
	}
	if err := m.commit(s); err != nil {
		return nil, err
	}

	if s.Current == s.SampleSize {
		s.Done = true
		return s.snapshot(), nil
	}

	if err := m.move(ctx, s, s.Current+1); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

func (m *manager) Previous(ctx context.Context, id uuid.UUID) (*Session, error) {
	s, err := m.find(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Done {
		s.Done = false
		return s.snapshot(), nil
	}
	if err := m.commit(s); err != nil {
		return nil, err
	}

	if s.Current > 1 {
		if err := m.move(ctx, s, s.Current-1); err != nil {
			return nil, err
		}
	}
	return s.snapshot(), nil
}

func (m *manager) Complete(ctx context.Context, id uuid.UUID) (*CompleteResult, error) {
	s, err := m.find(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := m.commit(s); err != nil {
		return nil, err
	}

	if missing := s.missing(); len(missing) > 0 {
		return nil, &ValidationError{Reason: ReasonMissingSamples, Missing: missing}
	}

	saved, err := m.results.Upsert(ctx, s.Check, s.InspectionID, s.command())
	if err != nil {
		return nil, fmt.Errorf("save %s results: %w", s.Check, err)
	}

	m.cache.Delete(s.ID.String())

	m.logger.Info(
		"session completed",
		"id", s.ID,
		"inspection_id", s.InspectionID,
		"check", s.Check,
		"inserted", saved.Inserted,
		"updated", saved.Updated,
	)
	return &CompleteResult{
		SessionID:    s.ID,
		InspectionID: s.InspectionID,
		Check:        s.Check,
		Saved:        *saved,
	}, nil
}

func (m *manager) Discard(id uuid.UUID) error {
	if _, err := m.find(id); err != nil {
		return err
	}
	m.cache.Delete(id.String())
	m.logger.Info("session discarded", "id", id)
	return nil
}

// find returns the cached state and refreshes its expiration.
func (m *manager) find(id uuid.UUID) (*state, error) {
	v, ok := m.cache.Get(id.String())
	if !ok {
		return nil, ErrNotFound
	}
	s := v.(*state)
	m.cache.Set(id.String(), s, cache.DefaultExpiration)
	return s, nil
}

// commit validates the working answers and snapshots them for the current sample.
func (m *manager) commit(s *state) error {
	sampleNo := s.Current
	if !s.Check.Sampled() {
		sampleNo = 0
	}
	if err := Validate(s.Questions, s.Working, sampleNo); err != nil {
		return err
	}
	s.Samples[s.Current] = maps.Clone(s.Working)
	return nil
}

// move positions the session on sample n, restoring cached or stored answers.
func (m *manager) move(ctx context.Context, s *state, n int) error {
	working, err := m.load(ctx, s, n)
	if err != nil {
		return err
	}
	s.Current = n
	s.Working = working
	return nil
}

// load returns the answers for sample n from the session cache, falling back
// to the result store. Absence of both yields an empty answer set.
func (m *manager) load(ctx context.Context, s *state, n int) (map[string]results.Entry, error) {
	if cached, ok := s.Samples[n]; ok {
		return maps.Clone(cached), nil
	}

	stored, err := m.results.Read(ctx, s.Check, s.InspectionID)
	if err != nil {
		return nil, fmt.Errorf("read stored %s results: %w", s.Check, err)
	}

	if entries := stored.Sample(n); entries != nil {
		return entries, nil
	}
	return make(map[string]results.Entry), nil
}

// command converts the sample cache into a result store batch.
func (s *state) command() results.UpsertCommand {
	cmd := results.UpsertCommand{Inspector: s.Inspector}
	if !s.Check.Sampled() {
		cmd.Results = maps.Clone(s.Samples[1])
		return cmd
	}
	cmd.Samples = make(map[string]map[string]results.Entry, len(s.Samples))
	for n, entries := range s.Samples {
		cmd.Samples[results.SampleLabel(n)] = maps.Clone(entries)
	}
	return cmd
}
