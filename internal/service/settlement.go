package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"padel-league/internal/constants"
	"padel-league/internal/domain"
	"padel-league/internal/kfactor"
	"padel-league/internal/rating"
	"padel-league/internal/repository"
	"padel-league/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// nonCompetitiveScale shrinks deltas of casual matches before the
// fairness guard runs.
const nonCompetitiveScale = 0.7

// MatchContext carries the caller-supplied contextual signals of one
// settlement: court conditions plus optional per-player moods.
type MatchContext struct {
	Surface string
	Weather string
	Outdoor bool
	Moods   map[string]string // player id -> mood
}

// SeatChange is one seat's outcome in a settlement response.
type SeatChange struct {
	Seat      int     `json:"seat"`
	PlayerID  string  `json:"playerId,omitempty"`
	Name      string  `json:"name"`
	IsGuest   bool    `json:"isGuest"`
	DidWin    bool    `json:"didWin"`
	Delta     int     `json:"delta"`
	NewPoints int     `json:"newPoints"`
	NewLevel  float64 `json:"newLevel"`
	Rule      string  `json:"rule"`
}

// SettlementResult is the structured outcome of ProcessMatchResults.
// Skipped settlements are successes with zero side effects.
type SettlementResult struct {
	Success bool         `json:"success"`
	Skipped bool         `json:"skipped"`
	Error   string       `json:"error,omitempty"`
	Changes []SeatChange `json:"changes,omitempty"`
}

// Processor settles matches: it validates the result, recomputes every
// seated player's rating inside one transaction, and applies the whole
// settlement atomically and exactly once.
type Processor struct {
	players *repository.PlayerRepository
	matches *repository.MatchRepository
	logs    *repository.RankingLogRepository
	details *repository.PointDetailRepository
	kfactor *kfactor.Provider
	tx      *store.TxRunner
	logger  zerolog.Logger
	now     func() time.Time
}

func NewProcessor(
	players *repository.PlayerRepository,
	matches *repository.MatchRepository,
	logs *repository.RankingLogRepository,
	details *repository.PointDetailRepository,
	kprovider *kfactor.Provider,
	tx *store.TxRunner,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		players: players,
		matches: matches,
		logs:    logs,
		details: details,
		kfactor: kprovider,
		tx:      tx,
		logger:  logger,
		now:     time.Now,
	}
}

// seatRecord is a resolved seat: a full player row, or a guest stub that
// only contributes a level.
type seatRecord struct {
	seat   domain.Seat
	player *domain.Player
	level  float64
	name   string
}

// ProcessMatchResults settles one match. The kind argument covers match
// rows created before kind tagging; a stored competitive kind always wins.
func (p *Processor) ProcessMatchResults(ctx context.Context, matchID string, kind domain.MatchKind, result string, extra MatchContext) (*SettlementResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	sets, err := p.precheck(ctx, matchID, result)
	if err != nil {
		p.logger.Warn().Err(err).Str("match_id", matchID).Str("result", result).Msg("settlement rejected")
		return &SettlementResult{Success: false, Error: err.Error()}, err
	}

	var res SettlementResult
	err = p.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		res = SettlementResult{}
		return p.settle(ctx, tx, matchID, kind, result, sets, extra, &res)
	})
	if err != nil {
		p.logger.Error().Err(err).Str("match_id", matchID).Msg("settlement failed")
		return &SettlementResult{Success: false, Error: err.Error()}, err
	}

	p.logger.Info().
		Str("match_id", matchID).
		Bool("skipped", res.Skipped).
		Int("changes", len(res.Changes)).
		Msg("settlement finished")
	return &res, nil
}

// precheck runs the non-transactional validation: four filled seats, a
// parseable result with a winning side, and resolvable seat ids. Nothing
// here mutates state.
func (p *Processor) precheck(ctx context.Context, matchID, result string) ([]domain.SetScore, error) {
	match, err := p.matches.Get(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}

	for _, seat := range match.Seats {
		if seat.IsEmpty() {
			return nil, ErrIncompleteTeams
		}
	}

	sets := domain.ParseResult(result)
	if len(sets) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedResult, result)
	}
	home, away := domain.CountSets(sets)
	if home == away {
		return nil, fmt.Errorf("%w: %q", ErrNoSetWinner, result)
	}

	// confirm every registered seat resolves before opening the transaction
	g, gctx := errgroup.WithContext(ctx)
	for _, seat := range match.Seats {
		if seat.IsGuest() {
			continue
		}
		id := seat.PlayerID
		g.Go(func() error {
			if _, err := p.players.Get(gctx, id); err != nil {
				return fmt.Errorf("failed to resolve seat player %s: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sets, nil
}

// settle is the transactional body. It re-reads all state, including the
// match kind, so the runner may execute it any number of times with no
// input beyond the match id and result string.
func (p *Processor) settle(ctx context.Context, tx *sql.Tx, matchID string, kind domain.MatchKind, result string, sets []domain.SetScore, extra MatchContext, res *SettlementResult) error {
	matches := p.matches.WithTx(tx)
	players := p.players.WithTx(tx)
	logs := p.logs.WithTx(tx)
	details := p.details.WithTx(tx)

	match, err := matches.Get(ctx, matchID)
	if err != nil {
		return fmt.Errorf("failed to re-read match %s: %w", matchID, err)
	}

	// idempotency: a result that already settled is a successful no-op.
	// Keying on the result string alone mirrors the original behavior;
	// resubmitting the same score with different context is absorbed here.
	if match.ProcessedAt != nil && match.ProcessedResult == result {
		res.Success = true
		res.Skipped = true
		return nil
	}

	// the stored kind wins; the argument only upgrades legacy rows that
	// predate kind tagging
	isCompetitive := match.Kind == domain.KindCompetitive || kind == domain.KindCompetitive

	var records [4]seatRecord
	for i, seat := range match.Seats {
		rec := seatRecord{seat: seat}
		if seat.IsGuest() {
			rec.level = seat.Guest.Level
			rec.name = seat.Guest.Name
		} else {
			player, err := players.Get(ctx, seat.PlayerID)
			if err != nil {
				return fmt.Errorf("failed to read seat player %s: %w", seat.PlayerID, err)
			}
			rec.player = player
			rec.level = player.Level
			rec.name = player.Name
		}
		records[i] = rec
	}

	home, away := domain.CountSets(sets)
	homeWon := home > away
	setsDiff := home - away
	if setsDiff < 0 {
		setsDiff = -setsDiff
	}
	closeMatch := setsDiff == 1
	gameDiffHome := domain.GameDifferential(sets)
	firstSetWinner := sets[0].Winner()
	now := p.now()

	for i := range records {
		rec := records[i]
		isHome := i < 2
		didWin := isHome == homeWon

		if rec.player == nil {
			res.Changes = append(res.Changes, SeatChange{
				Seat:    i,
				Name:    rec.name,
				IsGuest: true,
				DidWin:  didWin,
				Rule:    rating.RuleNone,
			})
			continue
		}

		partner := records[i^1]
		var opp1, opp2 seatRecord
		if isHome {
			opp1, opp2 = records[2], records[3]
		} else {
			opp1, opp2 = records[0], records[1]
		}
		oppAvg := (opp1.level + opp2.level) / 2

		gameDiff := gameDiffHome
		if !isHome {
			gameDiff = -gameDiff
		}
		comeback := didWin &&
			((isHome && firstSetWinner == "away") || (!isHome && firstSetWinner == "home"))

		change, entry, err := p.ratePlayer(rec.player, ratingContext{
			partner:       partner,
			oppAvg:        oppAvg,
			rivals:        [2]seatRecord{opp1, opp2},
			didWin:        didWin,
			isCompetitive: isCompetitive,
			closeMatch:    closeMatch,
			comeback:      comeback,
			setsDiff:      setsDiff,
			gameDiff:      gameDiff,
			seatIndex:     i,
			surface:       strings.ToLower(extra.Surface),
			weather:       extra.Weather,
			outdoor:       extra.Outdoor,
			mood:          extra.Moods[rec.player.ID],
			now:           now,
			matchID:       matchID,
		})
		if err != nil {
			return err
		}

		if err := players.Update(ctx, rec.player); err != nil {
			return err
		}
		if err := logs.Insert(ctx, entry); err != nil {
			return err
		}
		res.Changes = append(res.Changes, change)
	}

	if err := details.Insert(ctx, &domain.MatchPointDetail{
		MatchID:   matchID,
		Points:    rating.EstimatePointDetails(result),
		CreatedAt: now,
	}); err != nil {
		return err
	}
	if err := matches.MarkSettled(ctx, matchID, result, now); err != nil {
		return err
	}

	res.Success = true
	return nil
}

type ratingContext struct {
	partner       seatRecord
	oppAvg        float64
	rivals        [2]seatRecord
	didWin        bool
	isCompetitive bool
	closeMatch    bool
	comeback      bool
	setsDiff      int
	gameDiff      int
	seatIndex     int
	surface       string
	weather       string
	outdoor       bool
	mood          string
	now           time.Time
	matchID       string
}

// ratePlayer computes and applies one seat's delta, mutating the player
// record in place and returning the change plus its audit entry.
func (p *Processor) ratePlayer(player *domain.Player, rc ratingContext) (SeatChange, *domain.RankingLogEntry, error) {
	var partnerPlayer *domain.Player
	var partnerPoints *float64
	if rc.partner.player != nil {
		partnerPlayer = rc.partner.player
		pts := float64(rc.partner.player.Points)
		partnerPoints = &pts
	}
	chemistry := rating.EstimateTeamChemistry(player, partnerPlayer)

	var rivalPoints *float64
	rivalSum, rivalCount := 0.0, 0
	for _, rival := range rc.rivals {
		if rival.player != nil {
			rivalSum += float64(rival.player.Points)
			rivalCount++
		}
	}
	if rivalCount > 0 {
		avg := rivalSum / float64(rivalCount)
		rivalPoints = &avg
	}

	var days *float64
	if player.LastMatchAt != nil {
		d := rc.now.Sub(*player.LastMatchAt).Hours() / 24
		days = &d
	}

	dynamicK := p.kfactor.GetDynamicK(player)

	impact := rating.PredictImpact(rating.ImpactInput{
		MyLevel:          player.Level,
		MyPoints:         &player.Points,
		PartnerLevel:     &rc.partner.level,
		RivalLevels:      [2]float64{rc.rivals[0].level, rc.rivals[1].level},
		Streak:           player.Streak,
		MatchesPlayed:    player.MatchesPlayed,
		SetsDifference:   rc.setsDiff,
		GameDiff:         rc.gameDiff,
		DynamicK:         &dynamicK,
		DidWin:           rc.didWin,
		IsCompetitive:    rc.isCompetitive,
		IsCloseMatch:     rc.closeMatch,
		IsComeback:       rc.comeback,
		Surface:          rc.surface,
		Weather:          rc.weather,
		Outdoor:          rc.outdoor,
		Mood:             rc.mood,
		DaysSinceLast:    days,
		Consistency:      &player.Stats.Consistency,
		Pressure:         &player.Stats.Pressure,
		Aggression:       &player.Stats.Aggression,
		WinnersAvg:       &player.Stats.WinnersAvg,
		UEAvg:            &player.Stats.UEAvg,
		TeamChemistry:    &chemistry,
		RivalPointsAvg:   rivalPoints,
		PartnerPointsAvg: partnerPoints,
	})

	delta := impact.WinPoints
	score := 1.0
	if !rc.didWin {
		delta = impact.LossPoints
		score = 0
	}
	if !rc.isCompetitive {
		delta = int(math.Round(float64(delta) * nonCompetitiveScale))
	}

	guarded := rating.ApplyFairness(delta, rc.didWin, player.Level, rc.oppAvg, rc.isCompetitive, impact.Expected)

	newPoints := player.Points + guarded.Delta
	if newPoints < 0 {
		newPoints = 0
	}
	newLevel := rating.ClampLevel(player.Level + rating.CalculateLevelChange(player.Level, rc.oppAvg, rc.didWin))

	breakdown := buildBreakdown(impact, score, guarded.Delta)

	entry := &domain.RankingLogEntry{
		MatchID:     rc.matchID,
		PlayerID:    player.ID,
		Delta:       guarded.Delta,
		PointsAfter: newPoints,
		LevelAfter:  newLevel,
		DidWin:      rc.didWin,
		Rule:        guarded.Rule,
		Breakdown:   breakdown,
		Factors:     impact.Factors,
		CreatedAt:   rc.now,
	}

	applyPlayerMutation(player, rc, guarded.Delta, newPoints, newLevel)

	return SeatChange{
		Seat:      rc.seatIndex,
		PlayerID:  player.ID,
		Name:      player.Name,
		DidWin:    rc.didWin,
		Delta:     guarded.Delta,
		NewPoints: newPoints,
		NewLevel:  newLevel,
		Rule:      guarded.Rule,
	}, entry, nil
}

// buildBreakdown decomposes an applied delta into additive components.
// The trailing fairness_adjustment absorbs rounding and guard clamps so
// components always sum exactly to the delta.
func buildBreakdown(impact rating.ImpactResult, score float64, applied int) []domain.BreakdownItem {
	base := int(math.Round(impact.K * (score - impact.Expected)))
	scaleOf := func(mult float64) int {
		return int(math.Round(float64(base) * (mult - 1)))
	}

	difficulty := scaleOf(impact.Factor("level_gap"))
	streak := scaleOf(impact.Factor("streak"))
	setsMult := impact.Factor("set_dominance") * impact.Factor("game_dominance")
	setsComp := scaleOf(setsMult)

	adjustment := applied - base - difficulty - streak - setsComp

	return []domain.BreakdownItem{
		{Label: "base", Contribution: base},
		{Label: "difficulty", Contribution: difficulty},
		{Label: "streak", Contribution: streak},
		{Label: "sets", Contribution: setsComp},
		{Label: "fairness_adjustment", Contribution: adjustment},
	}
}

// seat parity fixes court position: even seats play drive, odd seats
// play reves.
func positionKey(seatIndex int) string {
	if seatIndex%2 == 0 {
		return "drive"
	}
	return "reves"
}

func applyPlayerMutation(player *domain.Player, rc ratingContext, delta, newPoints int, newLevel float64) {
	player.Points = newPoints
	player.Level = newLevel
	player.MatchesPlayed++
	if rc.didWin {
		player.Wins++
		if player.Streak > 0 {
			player.Streak++
		} else {
			player.Streak = 1
		}
	} else {
		if player.Streak < 0 {
			player.Streak--
		} else {
			player.Streak = -1
		}
	}

	if player.SubRatings == nil {
		player.SubRatings = map[string]int{}
	}
	keys := []string{positionKey(rc.seatIndex)}
	if rc.surface != "" {
		keys = append(keys, rc.surface)
	}
	for _, key := range keys {
		current, ok := player.SubRatings[key]
		if !ok {
			current = rating.SuggestedPoints(player.Level)
		}
		player.SubRatings[key] = current + delta
	}

	driftStats(&player.Stats, rc.didWin, rc.closeMatch)

	t := rc.now
	player.LastMatchAt = &t
	player.UpdatedAt = rc.now
}

// driftStats nudges the slow-moving attributes after each match.
func driftStats(stats *domain.AdvancedStats, didWin, closeMatch bool) {
	if didWin {
		stats.Consistency += 0.4
		if closeMatch {
			stats.Pressure += 0.6
		} else {
			stats.Pressure += 0.2
		}
	} else {
		stats.Consistency -= 0.3
		if closeMatch {
			stats.Pressure += 0.3
		} else {
			stats.Pressure -= 0.4
		}
	}
	stats.Consistency = clampStat(stats.Consistency)
	stats.Pressure = clampStat(stats.Pressure)
}

func clampStat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
