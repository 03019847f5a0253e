package scheduler

import (
	"time"

	"wordweave/backend/internal/lexicon"
	"wordweave/backend/internal/synth"
)

// Metrics only ever grow.
type Metrics struct {
	LearnedPatterns int     `json:"learned_patterns"`
	LearnedRules    int     `json:"learned_rules"`
	Confidence      float64 `json:"confidence"`
	SelfAwareness   float64 `json:"self_awareness"`
}

// Metric increments
const (
	confidenceStep    = 0.01
	selfAwarenessStep = 0.005
)

// State is the persisted scheduler state
type State struct {
	Active          bool                      `json:"active"`
	LastCycle       time.Time                 `json:"last_cycle"`
	IntervalSeconds int                       `json:"interval_seconds"`
	Metrics         Metrics                   `json:"metrics"`
	Personality     map[synth.Emotion]float64 `json:"personality"`
	Cycles          int                       `json:"cycles"`
	GenerationRound int                       `json:"generation_round"`
}

// DefaultPersonality weights the emotion used by the emotion walk.
func DefaultPersonality() map[synth.Emotion]float64 {
	return map[synth.Emotion]float64{
		synth.Happy:   0.35,
		synth.Curious: 0.35,
		synth.Neutral: 0.2,
		synth.Sad:     0.1,
	}
}

// Cycle modes
const (
	ModeIdle = "idle"
	ModeData = "data"
)

// CycleReport describes one call to Cycle
type CycleReport struct {
	Ran          bool          `json:"ran"`
	SkipReason   string        `json:"skip_reason,omitempty"`
	Mode         string        `json:"mode,omitempty"`
	Records      int           `json:"records"`
	Failures     int           `json:"failures"`
	Strengthened int           `json:"strengthened"`
	Generated    []string      `json:"generated,omitempty"`
	Cursor       int64         `json:"cursor"`
	Duration     time.Duration `json:"duration"`
}

// ActivityEntry is one line of the rolling activity log
type ActivityEntry struct {
	Time      time.Time `json:"time"`
	Mode      string    `json:"mode"`
	Records   int       `json:"records"`
	Failures  int       `json:"failures"`
	Generated int       `json:"generated"`
}

// Status is the read-only snapshot handed to callers
type Status struct {
	Active          bool                  `json:"active"`
	IntervalSeconds int                   `json:"interval"`
	LastCycle       *time.Time            `json:"last_cycle,omitempty"`
	NextCycle       *time.Time            `json:"next_cycle,omitempty"`
	ConnectionCount int                   `json:"connection_count"`
	RelationStats   lexicon.RelationStats `json:"relation_stats"`
	Metrics         Metrics               `json:"metrics"`
	Cycles          int                   `json:"cycles"`
	Cursor          int64                 `json:"cursor"`
}
