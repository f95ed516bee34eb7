package signal

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Monitor reference modes.
const (
	ReferencePoint = "point" // single sample at now-window
	ReferenceMean  = "mean"  // mean of the samples inside the window
)

// MonitorConfig drives the intraday percentage-change monitor.
type MonitorConfig struct {
	Windows   []int   `yaml:"windows" json:"windows" default:"[15,30,60,90,120]" validate:"min=1,dive,gte=1"`
	OK        float64 `yaml:"ok_threshold_pct" json:"ok_threshold_pct" default:"0.4" validate:"gt=0"`
	Watch     float64 `yaml:"watch_threshold_pct" json:"watch_threshold_pct" default:"1.0" validate:"gtfield=OK"`
	Reference string  `yaml:"reference" json:"reference" default:"point" validate:"oneof=point mean"`
}

// RiskConfig holds the bucket tiers and weights of the risk score.
// Slope tiers are in percent per period; z tiers are in standard deviations.
type RiskConfig struct {
	SlopeTiers      []float64 `yaml:"slope_tiers" json:"slope_tiers" default:"[0.05,0.15,0.3]" validate:"len=3"`
	ZTiers          []float64 `yaml:"z_tiers" json:"z_tiers" default:"[0.5,1.0,1.8]" validate:"len=3"`
	TierScores      []float64 `yaml:"tier_scores" json:"tier_scores" default:"[0.5,1.5,3.0,4.5]" validate:"len=4,dive,gte=0,lte=5"`
	SlopeWeight     float64   `yaml:"slope_weight" json:"slope_weight" default:"0.5" validate:"gte=0"`
	ZWeight         float64   `yaml:"z_weight" json:"z_weight" default:"0.5" validate:"gte=0"`
	EscalationFloor float64   `yaml:"escalation_floor" json:"escalation_floor" default:"4.2" validate:"gte=0,lte=5"`
	HumanWeight     float64   `yaml:"human_weight" json:"human_weight" default:"0.3" validate:"gte=0,lte=1"`
}

// AdviceThresholds are the inclusive upper bounds of BUY, HOLD and WATCH.
// Anything above Watch is SELL.
type AdviceThresholds struct {
	Buy   float64 `yaml:"buy" json:"buy" default:"1.5" validate:"gte=0,lte=5"`
	Hold  float64 `yaml:"hold" json:"hold" default:"2.5" validate:"gtefield=Buy,lte=5"`
	Watch float64 `yaml:"watch" json:"watch" default:"3.5" validate:"gtefield=Hold,lte=5"`
}

// Config is one named parameter set of the engine.
type Config struct {
	Name             string           `yaml:"-" json:"-"`
	BandWindow       int              `yaml:"band_window" json:"band_window" default:"40" validate:"gte=1"`
	BandK            float64          `yaml:"band_k" json:"band_k" default:"2" validate:"gt=0"`
	MAWindow         int              `yaml:"ma_window" json:"ma_window" default:"3" validate:"gte=1"`
	SlopeLookback    int              `yaml:"slope_lookback" json:"slope_lookback" default:"10" validate:"gte=1"`
	TrendWindow      int              `yaml:"trend_window" json:"trend_window" default:"20" validate:"gte=2"`
	MinPoints        int              `yaml:"min_points" json:"min_points" default:"20" validate:"gte=2"`
	IntradayInterval time.Duration    `yaml:"intraday_interval" json:"intraday_interval" default:"15m" validate:"gt=0"`
	Monitor          MonitorConfig    `yaml:"monitor" json:"monitor"`
	Risk             RiskConfig       `yaml:"risk" json:"risk"`
	Advice           AdviceThresholds `yaml:"advice" json:"advice"`

	// Per-call options, never read from profile files.
	HumanOverride *float64 `yaml:"-" json:"-" validate:"omitempty,gte=0,lte=5"`
	Chart         bool     `yaml:"-" json:"-"`
}

// DefaultConfig returns the standard profile with every default applied.
func DefaultConfig() Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("signal: default tags: %v", err))
	}
	c.Name = ProfileStandard
	return c
}

// Validate checks ranges and threshold ordering.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("profile %q: %w", c.Name, err)
	}
	return nil
}

// WithHuman returns a copy of c carrying the given human override.
func (c Config) WithHuman(v *float64) Config {
	c.HumanOverride = v
	return c
}

// Clone deep-copies the slices so profile edits never leak between copies.
func (c Config) Clone() Config {
	c.Monitor.Windows = append([]int(nil), c.Monitor.Windows...)
	c.Risk.SlopeTiers = append([]float64(nil), c.Risk.SlopeTiers...)
	c.Risk.ZTiers = append([]float64(nil), c.Risk.ZTiers...)
	c.Risk.TierScores = append([]float64(nil), c.Risk.TierScores...)
	return c
}
