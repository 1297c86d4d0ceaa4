package risk

import (
	"time"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/config"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store/schema"
)

// Label is the trust verdict derived from a score
type Label string

const (
	LabelAuthentic  Label = "Authentic"
	LabelReview     Label = "Review"
	LabelSuspicious Label = "Suspicious"
)

const (
	ReasonOriginMissing = "Origin missing"
	ReasonNoHandoffs    = "No custody transfers recorded"
	ReasonNoSensors     = "No sensor readings"
	ReasonStaleSensors  = "Sensor data stale"
)

// Config holds rule weights and label thresholds
type Config struct {
	OriginMissing int
	NoHandoffs    int
	NoSensors     int
	Stale         int
	// StaleAfter is how old the latest anchored reading may be before it counts as stale
	StaleAfter time.Duration
	// SuspiciousAbove and ReviewAbove are exclusive lower bounds
	SuspiciousAbove int
	ReviewAbove     int
}

// DefaultConfig returns the standard weights: 60/20/10/10, stale after a day,
// Suspicious above 40 and Review above 10
func DefaultConfig() Config {
	return Config{
		OriginMissing:   60,
		NoHandoffs:      20,
		NoSensors:       10,
		Stale:           10,
		StaleAfter:      domain.STALE_SENSOR_WINDOW_SECONDS * time.Second,
		SuspiciousAbove: 40,
		ReviewAbove:     10,
	}
}

// ConfigFrom converts loaded settings, keeping the default for every zero field
func ConfigFrom(c config.RiskConfig) Config {
	cfg := DefaultConfig()
	if c.OriginMissing != 0 {
		cfg.OriginMissing = c.OriginMissing
	}
	if c.NoHandoffs != 0 {
		cfg.NoHandoffs = c.NoHandoffs
	}
	if c.NoSensors != 0 {
		cfg.NoSensors = c.NoSensors
	}
	if c.Stale != 0 {
		cfg.Stale = c.Stale
	}
	if c.StaleAfter > 0 {
		cfg.StaleAfter = c.StaleAfter
	}
	if c.SuspiciousAbove != 0 {
		cfg.SuspiciousAbove = c.SuspiciousAbove
	}
	if c.ReviewAbove != 0 {
		cfg.ReviewAbove = c.ReviewAbove
	}
	return cfg
}

// Assessment is the scored result for one batch
type Assessment struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
	Label   Label    `json:"label"`
}

// Scorer applies the additive rules. It holds no state beyond its config.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with cfg
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score evaluates the rules in fixed order against the reconciled records
func (s *Scorer) Score(batch *schema.Batch, handoffs []schema.Handoff, sensors []schema.SensorReading, now time.Time) Assessment {
	a := Assessment{Reasons: make([]string, 0, 3)}

	if batch == nil {
		a.add(s.cfg.OriginMissing, ReasonOriginMissing)
	}
	if len(handoffs) == 0 {
		a.add(s.cfg.NoHandoffs, ReasonNoHandoffs)
	}
	if len(sensors) == 0 {
		a.add(s.cfg.NoSensors, ReasonNoSensors)
	} else if now.Unix()-latestAnchor(sensors) > int64(s.cfg.StaleAfter/time.Second) {
		a.add(s.cfg.Stale, ReasonStaleSensors)
	}

	a.Label = s.label(a.Score)
	return a
}

func (s *Scorer) label(score int) Label {
	switch {
	case score > s.cfg.SuspiciousAbove:
		return LabelSuspicious
	case score > s.cfg.ReviewAbove:
		return LabelReview
	default:
		return LabelAuthentic
	}
}

func (a *Assessment) add(delta int, reason string) {
	a.Score += delta
	a.Reasons = append(a.Reasons, reason)
}

// latestAnchor returns the newest anchor time, 0 when no reading is anchored
func latestAnchor(sensors []schema.SensorReading) int64 {
	var latest int64
	for _, s := range sensors {
		if s.Time != nil && *s.Time > latest {
			latest = *s.Time
		}
	}
	return latest
}
