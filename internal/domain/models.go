package domain

import (
	"time"
)

// AdvancedStats are the slow-moving player attributes consumed by the
// rating math. Values are on a 0-100 scale except the shot averages.
type AdvancedStats struct {
	Consistency float64
	Pressure    float64
	Aggression  float64
	WinnersAvg  float64
	UEAvg       float64
}

type Player struct {
	ID            string
	Name          string
	Level         float64 // [1.0, 7.0]
	Points        int
	MatchesPlayed int
	Wins          int
	Streak        int // sign is win/loss direction, magnitude is consecutive count
	LastMatchAt   *time.Time
	Stats         AdvancedStats
	SubRatings    map[string]int // keyed by lowercase position/surface tag
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type MatchStatus string

const (
	StatusPending MatchStatus = "pending"
	StatusSettled MatchStatus = "settled"
)

type MatchKind string

const (
	KindCasual      MatchKind = "casual"
	KindCompetitive MatchKind = "competitive"
)

type Match struct {
	ID              string
	Kind            MatchKind
	Seats           [4]Seat
	Status          MatchStatus
	Result          string
	ProcessedResult string
	ProcessedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RankingLogEntry is the immutable per-player audit record of one settlement.
type RankingLogEntry struct {
	ID          string // nanoid
	MatchID     string
	PlayerID    string
	Delta       int
	PointsAfter int
	LevelAfter  float64
	DidWin      bool
	Rule        string // fairness rule that fired, or "none"
	Breakdown   []BreakdownItem
	Factors     []Factor
	CreatedAt   time.Time
}

// BreakdownItem is one additive component of an applied delta. Components
// always sum exactly to the delta; the trailing "fairness_adjustment" item
// absorbs rounding and guard clamping.
type BreakdownItem struct {
	Label        string `json:"label"`
	Contribution int    `json:"contribution"`
}

// Factor is one named multiplier from the rating pipeline, kept for audit.
type Factor struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MatchPointDetail is the per-match estimated point attribution, derived
// once from the result string and never mutated.
type MatchPointDetail struct {
	ID        string // nanoid
	MatchID   string
	Points    []PointAttribution
	CreatedAt time.Time
}

type PointAttribution struct {
	Set    int    `json:"set"`
	Point  int    `json:"point"`
	Winner string `json:"winner"` // "home" or "away"
}
