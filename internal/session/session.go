// Package session owns one strategy draft through an editing session:
// catalog loading, preset application, previews and submission.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ducminhle1904/bot-builder/internal/backtest"
	"github.com/ducminhle1904/bot-builder/internal/catalog"
	builderrors "github.com/ducminhle1904/bot-builder/internal/errors"
	"github.com/ducminhle1904/bot-builder/internal/logger"
	"github.com/ducminhle1904/bot-builder/internal/monitoring"
	"github.com/ducminhle1904/bot-builder/internal/persistence"
	"github.com/ducminhle1904/bot-builder/pkg/dca"
	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

// Session is the single-writer editing session. All draft mutations are
// synchronous in-memory transformations; the only asynchronous operation
// is backtest submission, which the backtest client keeps to one in
// flight.
type Session struct {
	log      *logger.Logger
	catalogs *catalog.Client
	backtest *backtest.Client
	persist  *persistence.Client
	drafts   *persistence.DraftStore
	health   *monitoring.HealthChecker

	mu               sync.RWMutex
	draft            strategy.StrategyConfig
	indicatorCatalog *strategy.Catalog
	presets          []strategy.Preset
}

// Options wires the session's collaborators. Any nil collaborator
// disables the corresponding operation; the catalog falls back to
// builtins when its client is nil.
type Options struct {
	Logger     *logger.Logger
	Catalogs   *catalog.Client
	Backtest   *backtest.Client
	Persist    *persistence.Client
	DraftStore *persistence.DraftStore
	Health     *monitoring.HealthChecker
}

// New creates a session with no draft. The indicator catalog starts as
// the built-in fallback so editing is possible before (or without) a
// successful fetch.
func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Session{
		log:              log,
		catalogs:         opts.Catalogs,
		backtest:         opts.Backtest,
		persist:          opts.Persist,
		drafts:           opts.DraftStore,
		health:           opts.Health,
		indicatorCatalog: strategy.BuiltinCatalog(),
	}
}

// Start fetches the indicator and preset catalogs concurrently. The two
// fetches are independent and unordered; either may fail without
// blocking the session, which keeps the built-in fallback in that case.
// Start never returns an error for catalog failures.
func (s *Session) Start(ctx context.Context) {
	if s.catalogs == nil {
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		cat, err := s.catalogs.FetchIndicators(ctx)
		if err != nil {
			s.log.Warn("indicator catalog fetch failed, using builtins", zap.Error(err))
			monitoring.RecordCatalogFallback("indicators")
			if s.health != nil {
				s.health.SetCatalogLoaded(false)
			}
			return
		}
		s.mu.Lock()
		s.indicatorCatalog = cat
		s.mu.Unlock()
		if s.health != nil {
			s.health.SetCatalogLoaded(true)
		}
	}()

	go func() {
		defer wg.Done()
		presets, err := s.catalogs.FetchPresets(ctx)
		if err != nil {
			s.log.Warn("preset catalog fetch failed, presets unavailable", zap.Error(err))
			monitoring.RecordCatalogFallback("presets")
			return
		}
		s.mu.Lock()
		s.presets = presets
		s.mu.Unlock()
	}()

	wg.Wait()
}

// Catalog returns the current indicator catalog (fetched or builtin).
func (s *Session) Catalog() *strategy.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indicatorCatalog
}

// Draft returns the current draft, nil when none has been created.
func (s *Session) Draft() strategy.StrategyConfig {
	return s.draft
}

// NewSignalDraft replaces the session's draft with a fresh signal
// config.
func (s *Session) NewSignalDraft(pair, timeframe string) *strategy.SignalConfig {
	cfg := strategy.NewSignalConfig(pair, timeframe)
	s.setDraft(cfg)
	return cfg
}

// NewDCADraft replaces the session's draft with a fresh DCA config.
func (s *Session) NewDCADraft(pair string) *strategy.DCAConfig {
	cfg := strategy.NewDCAConfig(pair)
	s.setDraft(cfg)
	return cfg
}

// NewGridDraft replaces the session's draft with a fresh grid config.
func (s *Session) NewGridDraft(pair string) *strategy.GridConfig {
	cfg := strategy.NewGridConfig(pair)
	s.setDraft(cfg)
	return cfg
}

// SetDraft seeds the session from an existing config, e.g. one loaded
// from a persisted record.
func (s *Session) SetDraft(cfg strategy.StrategyConfig) {
	s.setDraft(cfg)
}

func (s *Session) setDraft(cfg strategy.StrategyConfig) {
	if s.draft != nil {
		monitoring.SetActiveDrafts(string(s.draft.Type()), 0)
	}
	s.draft = cfg
	if cfg != nil {
		monitoring.SetActiveDrafts(string(cfg.Type()), 1)
	}
}

// PresetsForDraft returns the catalog presets matching the current
// draft's bot type.
func (s *Session) PresetsForDraft() []strategy.Preset {
	if s.draft == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strategy.FilterPresets(s.presets, s.draft.Type())
}

// ApplyPreset merges the named preset onto the draft.
func (s *Session) ApplyPreset(id string) error {
	if s.draft == nil {
		return fmt.Errorf("no draft to apply preset to")
	}

	s.mu.RLock()
	presets := s.presets
	s.mu.RUnlock()

	for i := range presets {
		if presets[i].ID == id {
			return strategy.ApplyPreset(s.draft, &presets[i])
		}
	}
	return fmt.Errorf("preset %q not found", id)
}

// GridPreview derives the price ladder and per-level amount from the
// current grid draft. Deterministic and synchronous; cheap enough to run
// on every edit.
func (s *Session) GridPreview() ([]float64, float64, error) {
	cfg, ok := s.draft.(*strategy.GridConfig)
	if !ok {
		return nil, 0, fmt.Errorf("current draft is not a grid strategy")
	}
	levels, err := cfg.Spec.Levels()
	if err != nil {
		return nil, 0, err
	}
	return levels, cfg.Spec.AmountPerGrid(), nil
}

// DCAPreview derives the safety-order ladder and worst-case capital
// requirement from the current DCA draft.
func (s *Session) DCAPreview() ([]dca.SafetyOrder, float64, error) {
	cfg, ok := s.draft.(*strategy.DCAConfig)
	if !ok {
		return nil, 0, fmt.Errorf("current draft is not a DCA strategy")
	}
	plan, err := dca.Plan(cfg.Spec)
	if err != nil {
		return nil, 0, err
	}
	return plan, dca.RequiredCapital(cfg.Spec, plan, len(plan)), nil
}

// Validate runs the full submission validation: structural invariants
// plus catalog-dependent checks against the session's catalog.
func (s *Session) Validate() []strategy.Violation {
	if s.draft == nil {
		return []strategy.Violation{{Field: "draft", Constraint: "no draft to validate"}}
	}

	violations := s.draft.ValidateForSubmission()
	violations = append(violations, strategy.ValidateAgainstCatalog(s.draft, s.Catalog())...)

	if len(violations) > 0 {
		monitoring.RecordValidationFailure(string(s.draft.Type()))
	}
	return violations
}

// SubmitBacktest validates the draft and hands a snapshot to the
// backtest collaborator. Validation violations abort the submission
// before any request is made.
func (s *Session) SubmitBacktest(ctx context.Context, initialBalance, feeRate float64) (*backtest.Result, error) {
	if s.backtest == nil {
		return nil, builderrors.New(builderrors.CategoryConfig, "session", "submit_backtest",
			"no backtest collaborator configured")
	}
	if violations := s.Validate(); len(violations) > 0 {
		return nil, fmt.Errorf("draft is not submittable: %s", violations[0])
	}

	req, err := backtest.BuildRequest(s.draft, initialBalance, feeRate)
	if err != nil {
		return nil, err
	}

	if s.health != nil {
		s.health.RecordSubmission()
	}
	result, err := s.backtest.Submit(ctx, req)
	if s.health != nil {
		if err != nil {
			s.health.RecordError(err.Error())
		} else {
			s.health.ClearErrors()
		}
	}
	return result, err
}

// CancelBacktest aborts a pending submission, e.g. when the user edits
// the draft or navigates away before a response arrives.
func (s *Session) CancelBacktest() {
	if s.backtest != nil {
		s.backtest.Cancel()
	}
}

// SaveStrategy validates the draft and hands a snapshot to the
// persistence collaborator.
func (s *Session) SaveStrategy(ctx context.Context) error {
	if s.persist == nil {
		return builderrors.New(builderrors.CategoryConfig, "session", "save_strategy",
			"no persistence collaborator configured")
	}
	if violations := s.Validate(); len(violations) > 0 {
		return fmt.Errorf("draft is not submittable: %s", violations[0])
	}
	err := s.persist.Save(ctx, s.draft)
	if s.health != nil && err != nil {
		s.health.RecordError(err.Error())
	}
	return err
}

// SaveDraftLocal writes the draft to the local draft store under the
// given name, regardless of validity.
func (s *Session) SaveDraftLocal(name string) error {
	if s.drafts == nil {
		return fmt.Errorf("no draft store configured")
	}
	if s.draft == nil {
		return fmt.Errorf("no draft to save")
	}
	return s.drafts.SaveDraft(name, s.draft)
}

// LoadDraftLocal seeds the session from a locally saved draft.
func (s *Session) LoadDraftLocal(name string) error {
	if s.drafts == nil {
		return fmt.Errorf("no draft store configured")
	}
	cfg, err := s.drafts.LoadDraft(name)
	if err != nil {
		return err
	}
	s.setDraft(cfg)
	return nil
}
