package progression

import (
	"math"
	"time"

	"github.com/ericogr/elemental-cards/internal/catalog"
)

// BattleResult is the outcome of a battle for one card.
type BattleResult string

const (
	Win  BattleResult = "win"
	Draw BattleResult = "draw"
	Loss BattleResult = "loss"
)

// BattleOutcome is what RecordBattle needs to know about a finished battle.
type BattleOutcome struct {
	Result        BattleResult  `json:"result"`
	OpponentLevel int           `json:"opponent_level"`
	Duration      time.Duration `json:"duration"`
}

const baseExperience = 10.0

// MilestoneBonus is granted on every fifth level.
var MilestoneBonus = catalog.StatBlock{Attack: 1, Health: 2, Defense: 1, Speed: 1}

var resultMultiplier = map[BattleResult]float64{Win: 1.5, Draw: 1.0, Loss: 0.7}

// ExperienceGain is the experience a card of the given level earns.
func ExperienceGain(o BattleOutcome, level int) int {
	rm, ok := resultMultiplier[o.Result]
	if !ok {
		return 0
	}
	levelDiff := math.Max(0.5, 1+0.1*float64(o.OpponentLevel-level))
	duration := math.Min(2.0, 1+o.Duration.Minutes()/10)
	penalty := math.Max(0.1, 1-0.02*float64(level-1))
	// The epsilon keeps products like 10*0.7 from flooring one short.
	return int(math.Floor(baseExperience*rm*levelDiff*duration*penalty + 1e-9))
}

// ExperienceForLevel is the cumulative experience needed to leave level L.
func ExperienceForLevel(level int) int {
	l := float64(level)
	return int(math.Floor(100*math.Pow(l, 1.5) + 50*l))
}

// LevelForExperience returns the level a card with xp total experience has.
func LevelForExperience(xp int) int {
	level := 1
	for level < MaxLevel && xp >= ExperienceForLevel(level) {
		level++
	}
	return level
}

// LevelUp describes what ApplyExperience changed.
type LevelUp struct {
	From   int               `json:"from"`
	To     int               `json:"to"`
	Gained int               `json:"gained"`
	Bonus  catalog.StatBlock `json:"bonus"`
}

// ApplyExperience adds experience and levels up as many times as the new
// total allows. Negative gains are ignored so experience never drops.
func ApplyExperience(p *CardProgression, gained int) LevelUp {
	if gained < 0 {
		gained = 0
	}
	up := LevelUp{From: p.Level, To: p.Level, Gained: gained}
	p.Experience += gained
	for p.Level < MaxLevel && p.Experience >= ExperienceForLevel(p.Level) {
		p.Level++
		if p.Level%5 == 0 {
			up.Bonus = up.Bonus.Add(MilestoneBonus)
		}
	}
	p.StatBonuses = p.StatBonuses.Add(up.Bonus)
	up.To = p.Level
	return up
}

// RecordBattle updates battle counters and streaks and grants experience.
func RecordBattle(p *CardProgression, o BattleOutcome, now time.Time) LevelUp {
	p.Battles++
	if o.Result == Win {
		p.Victories++
		p.WinStreak++
		if p.WinStreak > p.BestWinStreak {
			p.BestWinStreak = p.WinStreak
		}
	} else {
		p.WinStreak = 0
	}
	up := ApplyExperience(p, ExperienceGain(o, p.Level))
	p.UpdatedAt = now
	return up
}
