package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	domsvc "LimesMS/internal/domain/service"
	"LimesMS/internal/services/signal"
	applogger "LimesMS/pkg/logger"
	"LimesMS/pkg/util"
)

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrInvalidSymbol  = errors.New("invalid symbol")
	ErrInvalidHuman   = errors.New("human override must be within [0,5]")
)

// ComputeParams describes one pipeline invocation.
type ComputeParams struct {
	Symbol   string
	Profile  string
	Human    *float64 // nil: use the client's stored override, if any
	ClientID string
	Chart    bool
}

// SignalService loads series, runs the engine and fans the result out to
// metrics, history and the signal topic.
type SignalService struct {
	series    domrepo.SeriesStore
	overrides domrepo.OverrideStore
	history   domrepo.SignalHistory
	publisher domrepo.SignalPublisher
	catalog   domrepo.AssetCatalog
	metrics   domrepo.Metrics
	profiles  *signal.Registry
	engine    func(signal.Config) domsvc.SignalEngine
	timeout   time.Duration
	now       func() time.Time
	l         *applogger.Logger
}

type SignalServiceDeps struct {
	Series    domrepo.SeriesStore
	Overrides domrepo.OverrideStore
	History   domrepo.SignalHistory
	Publisher domrepo.SignalPublisher
	Catalog   domrepo.AssetCatalog
	Metrics   domrepo.Metrics
	Profiles  *signal.Registry
	Timeout   time.Duration
	Logger    *applogger.Logger
}

func NewSignalService(d SignalServiceDeps) *SignalService {
	s := &SignalService{
		series:    d.Series,
		overrides: d.Overrides,
		history:   d.History,
		publisher: d.Publisher,
		catalog:   d.Catalog,
		metrics:   d.Metrics,
		profiles:  d.Profiles,
		engine:    func(c signal.Config) domsvc.SignalEngine { return signal.New(c) },
		timeout:   d.Timeout,
		now:       time.Now,
		l:         d.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = 20 * time.Second
	}
	if s.l == nil {
		s.l = applogger.Nop()
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	return s
}

// Compute runs the full pipeline for p.Symbol. A missing intraday series is
// not an error: the monitor then reports every window as unknown.
func (s *SignalService) Compute(ctx context.Context, p ComputeParams) (*models.Result, error) {
	symbol := s.canonical(p.Symbol)
	if symbol == "" || util.Slugify(symbol) == "" {
		return nil, fmt.Errorf("%q: %w", p.Symbol, ErrInvalidSymbol)
	}
	cfg, ok := s.profiles.Get(p.Profile)
	if !ok {
		return nil, fmt.Errorf("%q: %w", p.Profile, ErrUnknownProfile)
	}
	if p.Human != nil && (*p.Human < 0 || *p.Human > 5) {
		return nil, ErrInvalidHuman
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()

	var daily, intraday *models.Series
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		daily, err = s.series.Load(gctx, symbol, domrepo.KindDaily)
		if err != nil {
			return fmt.Errorf("load daily %s: %w", symbol, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		intraday, err = s.series.Load(gctx, symbol, domrepo.KindIntraday)
		if errors.Is(err, domrepo.ErrSeriesNotFound) {
			s.l.Debug("no intraday series", applogger.String("symbol", symbol))
			intraday, err = &models.Series{Symbol: symbol, Kind: string(domrepo.KindIntraday)}, nil
		}
		if err != nil {
			return fmt.Errorf("load intraday %s: %w", symbol, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.RecordError("load")
		return nil, err
	}

	human := p.Human
	if human == nil {
		human = s.storedOverride(ctx, p.ClientID)
	}
	cfg = cfg.WithHuman(human)
	cfg.Chart = p.Chart

	res := s.engine(cfg).Compute(symbol, daily.Points, intraday.Points)
	s.metrics.RecordLatency("compute", time.Since(start))

	if res.Status == models.OutcomeInsufficientData {
		s.metrics.RecordInsufficient(symbol, res.Insufficient.Series)
		s.l.Info("insufficient data",
			applogger.String("symbol", symbol),
			applogger.Int("have", res.Insufficient.Have),
			applogger.Int("need", res.Insufficient.Need),
		)
		return &res, nil
	}

	sig := res.Signal
	sig.ComputedAt = s.now().UTC()
	sig.Reference = daily.Reference
	s.metrics.RecordSignal(symbol, cfg.Name, sig.Advice, sig.RiskScore)
	s.metrics.RecordLastPrice(symbol, sig.Last)
	s.fanOut(ctx, sig)

	s.l.Debug("signal computed",
		applogger.String("symbol", symbol),
		applogger.String("profile", cfg.Name),
		applogger.Float64("risk", sig.RiskScore),
		applogger.String("advice", string(sig.Advice)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return &res, nil
}

func (s *SignalService) canonical(symbol string) string {
	if s.catalog != nil {
		if a, ok := s.catalog.Resolve(symbol); ok {
			return a.Symbol
		}
	}
	return util.NormalizeSymbol(symbol)
}

func (s *SignalService) storedOverride(ctx context.Context, clientID string) *float64 {
	if s.overrides == nil || clientID == "" {
		return nil
	}
	v, err := s.overrides.Get(ctx, clientID)
	if err != nil {
		if !errors.Is(err, domrepo.ErrOverrideNotFound) {
			s.metrics.RecordError("override")
			s.l.Warn("override lookup failed", applogger.String("client", clientID), applogger.Error(err))
		}
		return nil
	}
	return &v
}

// fanOut appends history and publishes; neither failure fails the request.
func (s *SignalService) fanOut(ctx context.Context, sig *models.Signal) {
	if s.history != nil {
		if err := s.history.Append(ctx, models.RecordOf(sig)); err != nil {
			s.metrics.RecordError("history")
			s.l.Warn("history append failed", applogger.String("symbol", sig.Symbol), applogger.Error(err))
		}
	}
	if err := s.publisher.Publish(ctx, sig); err != nil {
		s.metrics.RecordError("publish")
		s.l.Warn("signal publish failed", applogger.String("symbol", sig.Symbol), applogger.Error(err))
	}
}

// History returns up to limit recent signals for symbol, newest first.
func (s *SignalService) History(ctx context.Context, symbol string, limit int) ([]models.SignalRecord, error) {
	if s.history == nil {
		return []models.SignalRecord{}, nil
	}
	recs, err := s.history.Recent(ctx, s.canonical(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", symbol, err)
	}
	return recs, nil
}

// Profiles returns every registered profile keyed by name.
func (s *SignalService) Profiles() map[string]signal.Config {
	return s.profiles.All()
}

func (s *SignalService) DefaultProfile() string { return s.profiles.Default() }

func (s *SignalService) Assets(query string, limit int) []models.Asset {
	if s.catalog == nil {
		return []models.Asset{}
	}
	return s.catalog.Search(query, limit)
}

func (s *SignalService) GetOverride(ctx context.Context, clientID string) (float64, error) {
	if s.overrides == nil {
		return 0, domrepo.ErrOverrideNotFound
	}
	return s.overrides.Get(ctx, clientID)
}

func (s *SignalService) SetOverride(ctx context.Context, clientID string, v float64) error {
	if v < 0 || v > 5 {
		return ErrInvalidHuman
	}
	if s.overrides == nil {
		return errors.New("override store disabled")
	}
	return s.overrides.Set(ctx, clientID, v)
}

func (s *SignalService) DeleteOverride(ctx context.Context, clientID string) error {
	if s.overrides == nil {
		return domrepo.ErrOverrideNotFound
	}
	return s.overrides.Delete(ctx, clientID)
}

type nopMetrics struct{}

func (nopMetrics) RecordSignal(string, string, models.Advice, float64) {}
func (nopMetrics) RecordInsufficient(string, string)                   {}
func (nopMetrics) RecordError(string)                                  {}
func (nopMetrics) RecordLastPrice(string, float64)                     {}
func (nopMetrics) RecordLatency(string, time.Duration)                 {}
func (nopMetrics) SetSessions(int)                                     {}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *models.Signal) error { return nil }
func (nopPublisher) Close() error                                  { return nil }
