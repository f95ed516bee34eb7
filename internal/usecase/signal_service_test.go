package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	"LimesMS/internal/repository"
	"LimesMS/internal/services/signal"
	pkgcache "LimesMS/pkg/cache"
)

type fakeSeries struct {
	m     map[string]*models.Series
	fail  error
	calls int
	mu    sync.Mutex
}

func (f *fakeSeries) Load(_ context.Context, symbol string, kind domrepo.SeriesKind) (*models.Series, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	s, ok := f.m[symbol+"/"+string(kind)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, domrepo.ErrSeriesNotFound)
	}
	return s, nil
}

type capturePublisher struct {
	mu   sync.Mutex
	sent []*models.Signal
	err  error
}

func (p *capturePublisher) Publish(_ context.Context, s *models.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, s)
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

type captureMetrics struct {
	nopMetrics
	mu           sync.Mutex
	signals      int
	insufficient int
	errs         []string
}

func (m *captureMetrics) RecordSignal(string, string, models.Advice, float64) {
	m.mu.Lock()
	m.signals++
	m.mu.Unlock()
}

func (m *captureMetrics) RecordInsufficient(string, string) {
	m.mu.Lock()
	m.insufficient++
	m.mu.Unlock()
}

func (m *captureMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errs = append(m.errs, kind)
	m.mu.Unlock()
}

var day0 = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func series(symbol string, kind domrepo.SeriesKind, step time.Duration, closes ...float64) *models.Series {
	pts := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = models.PricePoint{Time: day0.Add(time.Duration(i) * step), Close: c}
	}
	return &models.Series{Symbol: symbol, Kind: string(kind), Reference: "14 Feb 2025 04:00", Points: pts}
}

func ramp(from float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)
	}
	return out
}

func flat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

type fixture struct {
	svc     *SignalService
	store   *fakeSeries
	pub     *capturePublisher
	metrics *captureMetrics
	history *repository.MemorySignalHistory
	ovr     domrepo.OverrideStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := signal.NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := repository.ParseAssetCatalog([]byte(`{"tickers":["SPY",{"symbol":"GOLD","name":"Gold"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	f := &fixture{
		store: &fakeSeries{m: map[string]*models.Series{
			"SPY/daily":    series("SPY", domrepo.KindDaily, 24*time.Hour, ramp(100, 41)...),
			"SPY/intraday": series("SPY", domrepo.KindIntraday, 15*time.Minute, flat(50, 12)...),
			"GOLD/daily":   series("GOLD", domrepo.KindDaily, 24*time.Hour, flat(10, 22)...),
			"SHORT/daily":  series("SHORT", domrepo.KindDaily, 24*time.Hour, ramp(1, 5)...),
		}},
		pub:     &capturePublisher{},
		metrics: &captureMetrics{},
		history: repository.NewMemorySignalHistory(10),
		ovr:     repository.NewCacheOverrideStore(mem, 0),
	}
	f.svc = NewSignalService(SignalServiceDeps{
		Series:    f.store,
		Overrides: f.ovr,
		History:   f.history,
		Publisher: f.pub,
		Catalog:   catalog,
		Metrics:   f.metrics,
		Profiles:  reg,
	})
	f.svc.now = func() time.Time { return day0.Add(48 * time.Hour) }
	return f
}

func TestComputeFansOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Compute(ctx, ComputeParams{Symbol: " spy "})
	if err != nil {
		t.Fatal(err)
	}
	s := res.Signal
	if res.Status != models.OutcomeOK || s.Symbol != "SPY" || s.Advice != models.AdviceSell {
		t.Fatalf("unexpected result %+v", res)
	}
	if s.Reference != "14 Feb 2025 04:00" || !s.ComputedAt.Equal(day0.Add(48*time.Hour)) {
		t.Fatalf("metadata not attached: %q %v", s.Reference, s.ComputedAt)
	}
	if s.Profile != signal.ProfileStandard {
		t.Fatalf("expected default profile, got %s", s.Profile)
	}
	if len(f.pub.sent) != 1 || f.metrics.signals != 1 {
		t.Fatalf("expected one publish and one metric, got %d %d", len(f.pub.sent), f.metrics.signals)
	}
	hist, err := f.svc.History(ctx, "spy", 5)
	if err != nil || len(hist) != 1 || hist[0].Advice != models.AdviceSell {
		t.Fatalf("expected history record, got %+v %v", hist, err)
	}
}

func TestComputeMissingIntradayIsEmpty(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Compute(context.Background(), ComputeParams{Symbol: "gold"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.Signal.MonitorRows {
		if r.Flag != models.FlagUnknown || r.PctChange != nil {
			t.Fatalf("expected unknown monitor rows, got %+v", r)
		}
	}
	if res.Signal.Symbol != "GOLD" {
		t.Fatalf("expected catalog symbol, got %s", res.Signal.Symbol)
	}
}

func TestComputeErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	human := 7.0

	cases := []struct {
		name string
		p    ComputeParams
		want error
	}{
		{"unknown symbol", ComputeParams{Symbol: "IWM"}, domrepo.ErrSeriesNotFound},
		{"unknown profile", ComputeParams{Symbol: "SPY", Profile: "yolo"}, ErrUnknownProfile},
		{"empty symbol", ComputeParams{Symbol: "  "}, ErrInvalidSymbol},
		{"symbol without slug", ComputeParams{Symbol: "^^"}, ErrInvalidSymbol},
		{"human out of range", ComputeParams{Symbol: "SPY", Human: &human}, ErrInvalidHuman},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Compute(ctx, tc.p); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(f.pub.sent) != 0 {
		t.Fatal("failed computations must not publish")
	}
}

func TestComputeStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.fail = errors.New("disk on fire")
	if _, err := f.svc.Compute(context.Background(), ComputeParams{Symbol: "SPY"}); err == nil {
		t.Fatal("expected load error")
	}
	if len(f.metrics.errs) == 0 || f.metrics.errs[0] != "load" {
		t.Fatalf("expected load error metric, got %v", f.metrics.errs)
	}
}

func TestComputeInsufficientData(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Compute(context.Background(), ComputeParams{Symbol: "SHORT"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != models.OutcomeInsufficientData || res.Insufficient.Have != 5 {
		t.Fatalf("expected insufficient data, got %+v", res)
	}
	if f.metrics.insufficient != 1 || len(f.pub.sent) != 0 {
		t.Fatal("insufficient data is recorded but never published")
	}
}

func TestComputeUsesStoredOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.SetOverride(ctx, "c1", 5); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.Compute(ctx, ComputeParams{Symbol: "GOLD", ClientID: "c1"})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Signal.RiskScore-1.85) > 1e-9 || res.Signal.Advice != models.AdviceHold {
		t.Fatalf("expected stored override blended to 1.85 HOLD, got %v %s", res.Signal.RiskScore, res.Signal.Advice)
	}

	zero := 0.0
	res, _ = f.svc.Compute(ctx, ComputeParams{Symbol: "GOLD", ClientID: "c1", Human: &zero})
	if *res.Signal.HumanOverride != 0 {
		t.Fatalf("explicit human must win over the stored one, got %v", *res.Signal.HumanOverride)
	}

	if err := f.svc.DeleteOverride(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	res, _ = f.svc.Compute(ctx, ComputeParams{Symbol: "GOLD", ClientID: "c1"})
	if res.Signal.HumanOverride != nil || res.Signal.RiskScore != 0.5 {
		t.Fatalf("expected no override after delete, got %+v", res.Signal)
	}
	if err := f.svc.SetOverride(ctx, "c1", 5.5); !errors.Is(err, ErrInvalidHuman) {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestPublishFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	res, err := f.svc.Compute(context.Background(), ComputeParams{Symbol: "SPY"})
	if err != nil || res.Signal == nil {
		t.Fatalf("publish failure must not fail compute: %v", err)
	}
	if len(f.metrics.errs) != 1 || f.metrics.errs[0] != "publish" {
		t.Fatalf("expected publish error metric, got %v", f.metrics.errs)
	}
}

func TestAssetsAndProfiles(t *testing.T) {
	f := newFixture(t)
	if got := f.svc.Assets("go", 5); len(got) != 1 || got[0].Symbol != "GOLD" {
		t.Fatalf("unexpected assets %+v", got)
	}
	if p := f.svc.Profiles(); len(p) != 3 || f.svc.DefaultProfile() != signal.ProfileStandard {
		t.Fatalf("unexpected profiles %v", p)
	}
}
