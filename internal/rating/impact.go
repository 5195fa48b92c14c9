package rating

import (
	"math"

	"padel-league/internal/constants"
	"padel-league/internal/domain"
)

// Moods and weather tags recognized by the contextual multipliers.
const (
	MoodAdverse    = "adverse"
	WeatherExtreme = "extreme"
	WeatherWindy   = "windy"
)

// ImpactInput carries everything PredictImpact needs. Optional fields are
// pointers resolved once by withDefaults at the entry boundary; absent
// values never default inline inside the pipeline.
type ImpactInput struct {
	MyLevel        float64
	MyPoints       *int     // default: SuggestedPoints(MyLevel)
	PartnerLevel   *float64 // default: MyLevel (solo estimation)
	RivalLevels    [2]float64
	Streak         int
	MatchesPlayed  int
	SetsDifference int // winner's set margin, 1 or 2 in best-of-three
	GameDiff       int
	DynamicK       *float64 // default: tiered fallback

	DidWin        bool
	IsCompetitive bool
	IsCloseMatch  bool
	IsComeback    bool // lost the first set, won the match

	Surface       string
	Weather       string
	Outdoor       bool
	Mood          string
	DaysSinceLast *float64 // default 7

	Consistency      *float64 // 0-100, default 50
	Pressure         *float64 // 0-100, default 50
	Aggression       *float64 // 0-100, default 50
	WinnersAvg       *float64 // default 10
	UEAvg            *float64 // default 10
	TeamChemistry    *float64 // [0.2, 1], default 0.5
	RivalPointsAvg   *float64 // default: own points
	PartnerPointsAvg *float64 // default: own points
}

// resolved holds the input after one defaulting-and-clamping pass.
type resolved struct {
	ImpactInput
	myPoints      float64
	partnerLevel  float64
	k             float64
	days          float64
	consistency   float64
	pressure      float64
	aggression    float64
	winnersAvg    float64
	ueAvg         float64
	chemistry     float64
	rivalPoints   float64
	partnerPoints float64
}

func (in ImpactInput) withDefaults() resolved {
	r := resolved{ImpactInput: in}

	r.myPoints = float64(SuggestedPoints(in.MyLevel))
	if in.MyPoints != nil {
		r.myPoints = float64(*in.MyPoints)
	}
	r.partnerLevel = in.MyLevel
	if in.PartnerLevel != nil {
		r.partnerLevel = *in.PartnerLevel
	}
	r.k = fallbackK(in.MyLevel, in.MatchesPlayed)
	if in.DynamicK != nil {
		r.k = *in.DynamicK
	}
	r.days = 7
	if in.DaysSinceLast != nil {
		r.days = math.Max(*in.DaysSinceLast, 0)
	}
	r.consistency = deref(in.Consistency, 50)
	r.pressure = deref(in.Pressure, 50)
	r.aggression = deref(in.Aggression, 50)
	r.winnersAvg = deref(in.WinnersAvg, 10)
	r.ueAvg = deref(in.UEAvg, 10)
	r.chemistry = clamp(deref(in.TeamChemistry, 0.5), 0.2, 1)
	r.rivalPoints = deref(in.RivalPointsAvg, r.myPoints)
	r.partnerPoints = deref(in.PartnerPointsAvg, r.myPoints)

	r.consistency = clamp(r.consistency, 0, 100)
	r.pressure = clamp(r.pressure, 0, 100)
	r.aggression = clamp(r.aggression, 0, 100)

	// rust slows the whole player down, and K opens back up
	if r.days > constants.RustyAfterDays {
		r.k *= constants.InactiveKBoost
	}

	return r
}

func deref(p *float64, fallback float64) float64 {
	if p != nil {
		return *p
	}
	return fallback
}

// fallbackK mirrors the tiered K used before dynamic K-factors existed.
func fallbackK(level float64, matches int) float64 {
	switch {
	case level < 3.0:
		return 40
	case level >= 4.5:
		return 20
	case matches < 10:
		return 64
	default:
		return 32
	}
}

// ImpactResult is the full outcome of one impact prediction: both signed
// magnitudes plus the named multiplier vector for audit logging.
type ImpactResult struct {
	WinPoints  int // >= 6
	LossPoints int // <= -3
	Expected   float64
	K          float64
	Factors    []domain.Factor
}

// accumulator folds an ordered chain of named multipliers and records each
// one, applied or not, so the audit vector is always complete.
type accumulator struct {
	value   float64
	factors []domain.Factor
}

func (a *accumulator) apply(name string, mult float64) {
	a.value *= mult
	a.factors = append(a.factors, domain.Factor{Name: name, Value: mult})
}

// PredictImpact runs the full multiplier pipeline over a match outcome and
// returns the win and loss magnitudes. Pure and deterministic; out-of-range
// inputs are clamped, never rejected.
func PredictImpact(in ImpactInput) ImpactResult {
	r := in.withDefaults()

	myAvg := (in.MyLevel + r.partnerLevel) / 2
	rivalAvg := (in.RivalLevels[0] + in.RivalLevels[1]) / 2
	expected := ExpectedScore(RatingForLevel(myAvg), RatingForLevel(rivalAvg))
	levelGap := rivalAvg - myAvg

	suggested := float64(SuggestedPoints(in.MyLevel))
	recoveryActive := suggested-r.myPoints > 150

	win := computeGain(r, expected, levelGap)
	loss := computeLoss(r, expected, levelGap, recoveryActive)

	return ImpactResult{
		WinPoints:  win.points,
		LossPoints: loss.points,
		Expected:   expected,
		K:          r.k,
		Factors:    append(win.factors, loss.factors...),
	}
}

// Factor returns the recorded multiplier by name, or 1 if it never ran.
func (r ImpactResult) Factor(name string) float64 {
	for _, f := range r.Factors {
		if f.Name == name {
			return f.Value
		}
	}
	return 1
}

type side struct {
	points  int
	factors []domain.Factor
}

func computeGain(r resolved, expected, levelGap float64) side {
	acc := &accumulator{value: r.k * (1 - expected)}

	acc.apply("recovery", recoveryMult(r.myPoints, float64(SuggestedPoints(r.MyLevel))))
	acc.apply("set_dominance", setDominanceMult(r.SetsDifference))
	acc.apply("game_dominance", gameDominanceMult(r.GameDiff))
	acc.apply("clutch", clutchWinMult(r.SetsDifference))
	acc.apply("competitive", boolMult(r.IsCompetitive, 1.08))
	acc.apply("comeback", boolMult(r.IsComeback && r.DidWin, 1.25))
	acc.apply("streak", streakMult(r.Streak))
	acc.apply("level_gap", levelGapMult(levelGap))
	acc.apply("inactivity", boolMult(r.days > constants.RustyAfterDays, 0.9))
	acc.apply("resilience", boolMult(r.Mood == MoodAdverse && r.DidWin, 1.15))
	acc.apply("consistency", steadinessMult(r.consistency))
	acc.apply("pressure", steadinessMult(r.pressure))
	acc.apply("discipline", disciplineMult(r.winnersAvg, r.ueAvg))
	acc.apply("chemistry", chemistryMult(r.chemistry))
	acc.apply("rival_strength", rivalStrengthMult(r.rivalPoints, r.myPoints))
	acc.apply("partner_strength", partnerStrengthMult(r.partnerLevel, r.MyLevel))
	acc.apply("rest", restMult(r.days))
	acc.apply("aggression", 1+r.aggression/2500)

	gain := acc.value + conditionBonus(r.Weather, r.Outdoor)
	points := int(math.Round(gain))
	if points < 6 {
		points = 6
	}
	return side{points: points, factors: acc.factors}
}

func computeLoss(r resolved, expected, levelGap float64, recoveryActive bool) side {
	acc := &accumulator{value: r.k * (0 - expected)}

	acc.apply("loss_margin", lossMarginMult(r.GameDiff, r.IsCloseMatch))
	acc.apply("loss_clutch", clutchLossMult(r.SetsDifference))
	acc.apply("loss_aggression", 1+r.aggression/1000)

	shield := stabilityShield(r.consistency, r.pressure, r.winnersAvg, r.ueAvg)
	acc.apply("stability_shield", 1/shield)
	acc.apply("underdog_protection", boolMult(levelGap >= 0.8, 0.6))
	acc.apply("recovery_relief", boolMult(recoveryActive, 0.75))

	points := int(math.Round(acc.value))
	if points > -3 {
		points = -3
	}
	return side{points: points, factors: acc.factors}
}

func boolMult(active bool, mult float64) float64 {
	if active {
		return mult
	}
	return 1.0
}

// recoveryMult boosts gains while a player's points trail the level
// baseline by more than 150, and dampens farming once they run more than
// 300 ahead of it.
func recoveryMult(points, suggested float64) float64 {
	switch {
	case suggested-points > 150:
		return 1.35
	case points-suggested > 300:
		return 0.85
	default:
		return 1.0
	}
}

func setDominanceMult(setsDiff int) float64 {
	if setsDiff >= 2 {
		return 1.18
	}
	return 1.0
}

func gameDominanceMult(gameDiff int) float64 {
	diff := gameDiff
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff >= 12:
		return 1.28
	case diff >= 10:
		return 1.18
	case diff >= 6:
		return 1.08
	default:
		return 1.0
	}
}

// clutch rewards three-setters decided by a single set
func clutchWinMult(setsDiff int) float64 {
	if setsDiff == 1 {
		return 1.12
	}
	return 1.0
}

// lossMarginMult scales a loss with the margin of defeat; a tight match
// hurts less than a rout.
func lossMarginMult(gameDiff int, closeMatch bool) float64 {
	diff := gameDiff
	if diff < 0 {
		diff = -diff
	}
	mult := 1.0
	switch {
	case diff >= 10:
		mult = 1.25
	case diff >= 6:
		mult = 1.12
	}
	if closeMatch {
		mult *= 0.9
	}
	return mult
}

func clutchLossMult(setsDiff int) float64 {
	if setsDiff == 1 {
		return 0.96
	}
	return 1.0
}

func streakMult(streak int) float64 {
	switch {
	case streak >= 10:
		return 2.5
	case streak >= 6:
		return 1.6
	case streak >= 3:
		return 1.25
	default:
		return 1.0
	}
}

// levelGapMult amplifies gains against stronger opposition and dampens
// farming of weaker opposition, floored at 0.3.
func levelGapMult(gap float64) float64 {
	if gap > 0 {
		return 1 + math.Min(gap, 1.5)*0.4
	}
	return math.Max(0.3, 1+gap*0.5)
}

func steadinessMult(stat float64) float64 {
	return 0.96 + stat/1250
}

// disciplineMult rewards a winner/unforced-error ratio above 1.
func disciplineMult(winners, errs float64) float64 {
	ratio := winners / math.Max(errs, 1)
	return clamp(0.9+ratio*0.1, 0.92, 1.08)
}

func chemistryMult(chem float64) float64 {
	return 0.99 + chem*0.04
}

func rivalStrengthMult(rivalPoints, myPoints float64) float64 {
	return clamp(1+(rivalPoints-myPoints)/4000, 0.95, 1.08)
}

// partnerStrengthMult trims gains carried by a stronger partner.
func partnerStrengthMult(partnerLevel, myLevel float64) float64 {
	return clamp(1-(partnerLevel-myLevel)*0.05, 0.92, 1.05)
}

// restMult: fatigued on short turnaround, rusty after a long layoff. The
// long-layoff tier stops where the inactivity multiplier takes over.
func restMult(days float64) float64 {
	switch {
	case days <= 1:
		return 0.95
	case days <= 3:
		return 0.98
	case days >= 10 && days <= constants.RustyAfterDays:
		return 0.97
	default:
		return 1.0
	}
}

func conditionBonus(weather string, outdoor bool) float64 {
	if weather == WeatherExtreme || (weather == WeatherWindy && outdoor) {
		return 2.0
	}
	return 0
}

// stabilityShield averages the steadiness and discipline multipliers into
// a divisor that softens losses for consistent players, clamped so it can
// never dominate the delta.
func stabilityShield(consistency, pressure, winners, errs float64) float64 {
	avg := (steadinessMult(consistency) + steadinessMult(pressure) + disciplineMult(winners, errs)) / 3
	return clamp(avg, 0.86, 1.15)
}
