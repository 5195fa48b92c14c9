package service

import (
	"context"
	"path/filepath"
	"testing"

	"padel-league/internal/config"
	"padel-league/internal/database"
	"padel-league/internal/domain"
	"padel-league/internal/kfactor"
	"padel-league/internal/rating"
	"padel-league/internal/repository"
	"padel-league/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	players   *repository.PlayerRepository
	matches   *repository.MatchRepository
	logs      *repository.RankingLogRepository
	details   *repository.PointDetailRepository
	processor *Processor
	playerSvc *PlayerService
	matchSvc  *MatchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "league.db")}
	db, err := database.New(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	players := repository.NewPlayerRepository(db, log)
	matches := repository.NewMatchRepository(db, log)
	logs := repository.NewRankingLogRepository(db, log)
	details := repository.NewPointDetailRepository(db, log)

	return &testEnv{
		players:   players,
		matches:   matches,
		logs:      logs,
		details:   details,
		processor: NewProcessor(players, matches, logs, details, kfactor.NewProvider(log), store.NewTxRunner(db, log), log),
		playerSvc: NewPlayerService(players, logs, log),
		matchSvc:  NewMatchService(matches, details, log),
	}
}

func fptr(v float64) *float64 { return &v }

func (e *testEnv) registerFour(t *testing.T, level float64) [4]*domain.Player {
	t.Helper()
	names := [4]string{"Ana", "Bea", "Carla", "Diana"}
	var out [4]*domain.Player
	for i, name := range names {
		player, err := e.playerSvc.Register(context.Background(), name, fptr(level))
		require.NoError(t, err)
		out[i] = player
	}
	return out
}

func (e *testEnv) createMatch(t *testing.T, kind string, seats [4]string) *domain.Match {
	t.Helper()
	match, err := e.matchSvc.Create(context.Background(), kind, seats)
	require.NoError(t, err)
	return match
}

func TestRegisterDerivesPointsFromLevel(t *testing.T) {
	env := newTestEnv(t)

	player, err := env.playerSvc.Register(context.Background(), "Ana", fptr(3.0))
	require.NoError(t, err)
	assert.Equal(t, 1200, player.Points)

	defaulted, err := env.playerSvc.Register(context.Background(), "Bea", nil)
	require.NoError(t, err)
	assert.Equal(t, 2.5, defaulted.Level)
	assert.Equal(t, 1000, defaulted.Points)
}

func TestSettlementHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ps := env.registerFour(t, 3.0)
	match := env.createMatch(t, "casual", [4]string{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID})

	res, err := env.processor.ProcessMatchResults(ctx, match.ID, "", "6-4 6-3", MatchContext{Surface: "Indoor"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.False(t, res.Skipped)
	require.Len(t, res.Changes, 4)

	for i, change := range res.Changes {
		assert.Equal(t, i, change.Seat)
		assert.False(t, change.IsGuest)
		if i < 2 {
			assert.True(t, change.DidWin)
			assert.Greater(t, change.Delta, 0)
		} else {
			assert.False(t, change.DidWin)
			assert.Less(t, change.Delta, 0)
		}
	}

	winner, err := env.players.Get(ctx, ps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, res.Changes[0].NewPoints, winner.Points)
	assert.Equal(t, 1, winner.MatchesPlayed)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 1, winner.Streak)
	assert.Greater(t, winner.Level, 3.0)
	require.NotNil(t, winner.LastMatchAt)
	assert.Contains(t, winner.SubRatings, "drive")
	assert.Contains(t, winner.SubRatings, "indoor")

	loser, err := env.players.Get(ctx, ps[3].ID)
	require.NoError(t, err)
	assert.Equal(t, -1, loser.Streak)
	assert.Zero(t, loser.Wins)
	assert.Less(t, loser.Level, 3.0)
	assert.GreaterOrEqual(t, loser.Points, 0)
	assert.Contains(t, loser.SubRatings, "reves")

	count, err := env.logs.CountByMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	settled, err := env.matches.Get(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSettled, settled.Status)
	assert.Equal(t, "6-4 6-3", settled.ProcessedResult)
	require.NotNil(t, settled.ProcessedAt)

	detail, err := env.details.GetByMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Points, 76)
}

func TestSettlementLevelsStayInDomain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	low, err := env.playerSvc.Register(ctx, "Rook", fptr(1.0))
	require.NoError(t, err)
	partner, err := env.playerSvc.Register(ctx, "Mate", fptr(1.0))
	require.NoError(t, err)
	s1, err := env.playerSvc.Register(ctx, "Star", fptr(7.0))
	require.NoError(t, err)
	s2, err := env.playerSvc.Register(ctx, "Shine", fptr(7.0))
	require.NoError(t, err)

	match := env.createMatch(t, "competitive", [4]string{low.ID, partner.ID, s1.ID, s2.ID})
	res, err := env.processor.ProcessMatchResults(ctx, match.ID, "", "0-6 0-6", MatchContext{})
	require.NoError(t, err)
	require.True(t, res.Success)

	for _, id := range []string{low.ID, partner.ID, s1.ID, s2.ID} {
		p, err := env.players.Get(ctx, id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.Level, 1.0)
		assert.LessOrEqual(t, p.Level, 7.0)
		assert.GreaterOrEqual(t, p.Points, 0)
	}
}

func TestSettlementIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ps := env.registerFour(t, 3.0)
	match := env.createMatch(t, "casual", [4]string{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID})

	first, err := env.processor.ProcessMatchResults(ctx, match.ID, "", "6-4 6-3", MatchContext{})
	require.NoError(t, err)
	require.True(t, first.Success)
	require.False(t, first.Skipped)

	var pointsAfter [4]int
	var levelsAfter [4]float64
	var streaksAfter [4]int
	for i, p := range ps {
		got, err := env.players.Get(ctx, p.ID)
		require.NoError(t, err)
		pointsAfter[i] = got.Points
		levelsAfter[i] = got.Level
		streaksAfter[i] = got.Streak
	}

	second, err := env.processor.ProcessMatchResults(ctx, match.ID, "", "6-4 6-3", MatchContext{Surface: "outdoor"})
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.True(t, second.Skipped)
	assert.Empty(t, second.Changes)

	for i, p := range ps {
		got, err := env.players.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, pointsAfter[i], got.Points)
		assert.Equal(t, levelsAfter[i], got.Level)
		assert.Equal(t, streaksAfter[i], got.Streak)
		assert.Equal(t, 1, got.MatchesPlayed)
	}

	count, err := env.logs.CountByMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSettlementRejectsIncompleteTeams(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ps := env.registerFour(t, 3.0)
	match := env.createMatch(t, "casual", [4]string{ps[0].ID, ps[1].ID, ps[2].ID, ""})

	res, err := env.processor.ProcessMatchResults(ctx, match.ID, "", "6-0 6-0", MatchContext{})
	require.ErrorIs(t, err, ErrIncompleteTeams)
	require.NotNil(t, res)
	assert.False(t, res.Success)

	// no transactional write happened
	count, err := env.logs.CountByMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	pending, err := env.matches.Get(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, pending.Status)
	assert.Nil(t, pending.ProcessedAt)

	untouched, err := env.players.Get(ctx, ps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1200, untouched.Points)
	assert.Zero(t, untouched.MatchesPlayed)
}

func TestSettlementRejectsBadResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ps := env.registerFour(t, 3.0)
	match := env.createMatch(t, "casual", [4]string{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID})

	_, err := env.processor.ProcessMatchResults(ctx, match.ID, "", "6-0", MatchContext{})
	assert.ErrorIs(t, err, ErrMalformedResult)

	_, err = env.processor.ProcessMatchResults(ctx, match.ID, "", "garbage more-garbage", MatchContext{})
	assert.ErrorIs(t, err, ErrMalformedResult)

	_, err = env.processor.ProcessMatchResults(ctx, match.ID, "", "6-4 4-6", MatchContext{})
	assert.ErrorIs(t, err, ErrNoSetWinner)

	_, err = env.processor.ProcessMatchResults(ctx, "missing-match", "", "6-4 6-3", MatchContext{})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSettlementWithGuestSeat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ps := env.registerFour(t, 3.0)
	match := env.createMatch(t, "casual", [4]string{ps[0].ID, ps[1].ID, "guest:Marta:5.0", ps[3].ID})

	res, err := env.processor.ProcessMatchResults(ctx, match.ID, "", "4-6 2-6", MatchContext{})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Changes, 4)

	guest := res.Changes[2]
	assert.True(t, guest.IsGuest)
	assert.Empty(t, guest.PlayerID)
	assert.Equal(t, "Marta", guest.Name)
	assert.True(t, guest.DidWin)
	assert.Zero(t, guest.Delta)

	// only the three registered players were rated
	count, err := env.logs.CountByMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// the guest's 5.0 still weighs into the losers' opponent average,
	// so their loss stays inside the underdog bounds
	for _, change := range res.Changes[:2] {
		assert.False(t, change.DidWin)
		assert.Less(t, change.Delta, 0)
		assert.GreaterOrEqual(t, change.Delta, -5)
	}

	winner, err := env.players.Get(ctx, ps[3].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, winner.Wins)
	assert.Greater(t, winner.Points, 1200)
}

func TestSettlementPersistsAuditLogs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ana, err := env.playerSvc.Register(ctx, "Ana", fptr(3.0))
	require.NoError(t, err)
	bea, err := env.playerSvc.Register(ctx, "Bea", fptr(3.0))
	require.NoError(t, err)
	carla, err := env.playerSvc.Register(ctx, "Carla", fptr(4.0))
	require.NoError(t, err)
	diana, err := env.playerSvc.Register(ctx, "Diana", fptr(4.0))
	require.NoError(t, err)

	match := env.createMatch(t, "casual", [4]string{ana.ID, bea.ID, carla.ID, diana.ID})

	res, err := env.processor.ProcessMatchResults(ctx, match.ID, "", "6-4 6-3", MatchContext{})
	require.NoError(t, err)
	require.True(t, res.Success)

	// the underdog pair's raw gain blows through the casual ceiling
	winnerLogs, err := env.logs.GetByPlayer(ctx, ana.ID, 10)
	require.NoError(t, err)
	require.Len(t, winnerLogs, 1)

	winner := winnerLogs[0]
	assert.Equal(t, match.ID, winner.MatchID)
	assert.True(t, winner.DidWin)
	assert.Equal(t, rating.RuleAbsoluteCap, winner.Rule)
	assert.Equal(t, 24, winner.Delta)
	assert.NotEmpty(t, winner.Factors)

	// the beaten favorites bottom out at the casual floor
	loserLogs, err := env.logs.GetByPlayer(ctx, diana.ID, 10)
	require.NoError(t, err)
	require.Len(t, loserLogs, 1)

	loser := loserLogs[0]
	assert.False(t, loser.DidWin)
	assert.Equal(t, rating.RuleAbsoluteFloor, loser.Rule)
	assert.Equal(t, -20, loser.Delta)

	for _, entry := range []domain.RankingLogEntry{winner, loser} {
		sum := 0
		for _, item := range entry.Breakdown {
			sum += item.Contribution
		}
		assert.Equal(t, entry.Delta, sum, "breakdown components sum to the applied delta")

		player, err := env.players.Get(ctx, entry.PlayerID)
		require.NoError(t, err)
		assert.Equal(t, player.Points, entry.PointsAfter)
		assert.Equal(t, player.Level, entry.LevelAfter)
	}
}

func TestSettlementKindArgumentUpgradesLegacyRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ps := env.registerFour(t, 3.0)
	match := env.createMatch(t, "casual", [4]string{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID})

	res, err := env.processor.ProcessMatchResults(ctx, match.ID, domain.KindCompetitive, "6-0 6-0", MatchContext{})
	require.NoError(t, err)
	require.True(t, res.Success)

	// competitive bounds and no casual scale-down, resolved inside the
	// transaction from the re-read row plus the upgrade argument
	for _, change := range res.Changes[:2] {
		assert.Equal(t, 32, change.Delta)
		assert.Equal(t, rating.RuleAbsoluteCap, change.Rule)
	}
	for _, change := range res.Changes[2:] {
		assert.Equal(t, -24, change.Delta)
		assert.Equal(t, rating.RuleAbsoluteFloor, change.Rule)
	}
}

func TestSettlementCompetitiveBeatsKindArgument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ps := env.registerFour(t, 3.0)
	match := env.createMatch(t, "competitive", [4]string{ps[0].ID, ps[1].ID, ps[2].ID, ps[3].ID})

	res, err := env.processor.ProcessMatchResults(ctx, match.ID, domain.KindCasual, "6-0 6-0", MatchContext{})
	require.NoError(t, err)
	require.True(t, res.Success)

	// competitive scaling: no 0.7 casual scale-down on the winners
	for _, change := range res.Changes[:2] {
		assert.Greater(t, change.Delta, 0)
		assert.LessOrEqual(t, change.Delta, 32)
	}
}
