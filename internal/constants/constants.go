package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Dynamic K-factor tiers. RookieK doubles as the low-experience fallback
// inside the rating math when no dynamic K is supplied.
const (
	RookieK = 40.0
	NormalK = 32.0
	ProK    = 24.0

	RookieMatchCount   = 20
	ProPointsThreshold = 2000

	InactiveAfter  = 30 * 24 * time.Hour
	InactiveKBoost = 1.5
	RustyAfterDays = 21
)

// Level domain and registration defaults. Points baseline:
// 1000 + (level - 2.5) * 400.
const (
	MinLevel       = 1.0
	MaxLevel       = 7.0
	DefaultLevel   = 2.5
	BasePoints     = 1000
	PointsPerLevel = 400
)

const (
	TxRetryAttempts  = 5
	TxRetryBaseDelay = 25 * time.Millisecond
)

const (
	LeaderboardDefaultLimit = 50
	HistoryDefaultLimit     = 30
)
