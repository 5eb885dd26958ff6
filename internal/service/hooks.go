package service

import (
	"math"
	"time"

	"github.com/ericogr/elemental-cards/internal/progression"
)

const (
	synodicMonth = 2551442877 * time.Millisecond // 29.530588853 days
	// TriggerFullMoon is satisfied within a day of a full moon.
	TriggerFullMoon = "full_moon"
	// TriggerVeteran is satisfied by cards with 50 battles and a best
	// streak of 5.
	TriggerVeteran = "veteran"
)

// a known new moon
var newMoonEpoch = time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC)

// DefaultBranchHooks registers the branch conditions used by the bundled
// catalog. now is read on every evaluation.
func DefaultBranchHooks(now func() time.Time) *progression.BranchHooks {
	hooks := progression.NewBranchHooks()
	hooks.Register(TriggerFullMoon, func(*progression.CardProgression) bool {
		return IsFullMoon(now())
	})
	hooks.Register(TriggerVeteran, func(p *progression.CardProgression) bool {
		return p.Battles >= 50 && p.BestWinStreak >= 5
	})
	return hooks
}

// IsFullMoon reports whether t is within a day of a full moon.
func IsFullMoon(t time.Time) bool {
	age := math.Mod(float64(t.Sub(newMoonEpoch)), float64(synodicMonth))
	if age < 0 {
		age += float64(synodicMonth)
	}
	return math.Abs(age-float64(synodicMonth)/2) <= float64(24*time.Hour)
}
