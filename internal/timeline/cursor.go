package timeline

import (
	"math"

	"github.com/meltforce/shotcaller/internal/models"
)

// patternCursor tracks one pattern instance while the scheduler pulls
// entries from it. Counters cover the whole instance across runs; only the
// available entries are rebuilt when a run restarts.
type patternCursor struct {
	pattern   *models.Pattern
	limits    LimitSpec
	iteration models.IterationType
	totalRuns int

	hasShots        bool
	minShotInterval float64

	available     []models.Entry
	placed        map[string]bool
	takenInRun    int
	shotsPlayed   int
	timeElapsed   float64
	runsCompleted int
	lastPlayed    *models.Entry

	// exhausted is set when the scheduler cuts the pattern short on a
	// predictive limit check.
	exhausted bool
}

func newPatternCursor(w *models.Workout, p *models.Pattern, totalRuns int, src Source) *patternCursor {
	c := &patternCursor{
		pattern:   p,
		limits:    ResolveLimits(p.Config),
		iteration: ResolveIteration(p.Config),
		totalRuns: totalRuns,
	}

	c.minShotInterval = math.Inf(1)
	for _, e := range p.Entries {
		if !e.IsShot() {
			continue
		}
		eff := Resolve(w.Config, p.Config, e.Config)
		iv := eff.Interval
		if eff.Offset != nil {
			if eff.OffsetType == models.OffsetRandom {
				iv += math.Min(eff.Offset.Min, eff.Offset.Max)
			} else {
				iv += eff.Offset.Min
			}
		}
		c.hasShots = true
		c.minShotInterval = math.Min(c.minShotInterval, math.Max(iv, 0))
	}
	if !c.hasShots {
		c.minShotInterval = 0
	}

	c.reset(src)
	return c
}

func (c *patternCursor) reset(src Source) {
	c.available = OrderEntries(c.pattern.Entries, c.iteration, src)
	c.takenInRun = 0

	// Only locks that landed on their slot count. Groups demoted on a
	// collision were placed as unlocked entries.
	c.placed = make(map[string]bool)
	for i, e := range c.available {
		if e.Position.Kind == models.PositionFixed && e.Position.Slot == i+1 {
			c.placed[e.ID] = true
		}
	}
}

// IsFinished reports whether the pattern instance has nothing left to play.
func (c *patternCursor) IsFinished() bool {
	if c.exhausted || c.totalRuns == 0 {
		return true
	}
	if c.limitReached() {
		return true
	}
	return len(c.available) == 0 && !c.canRestart()
}

func (c *patternCursor) limitReached() bool {
	switch c.limits.Type {
	case models.LimitShotCount:
		return float64(c.shotsPlayed) >= c.limits.Value
	case models.LimitTime:
		return c.timeElapsed >= c.limits.Value-epsilon
	}
	return false
}

// ShouldContinueExtendedSet reports whether a limited pattern should start
// another pass once its repeat runs are used up. A time-limited pattern only
// extends while its shortest shot still fits in the remaining budget.
func (c *patternCursor) ShouldContinueExtendedSet() bool {
	if !c.hasShots {
		return false
	}
	switch c.limits.Type {
	case models.LimitShotCount:
		return float64(c.shotsPlayed) < c.limits.Value
	case models.LimitTime:
		return c.timeElapsed+c.minShotInterval <= c.limits.Value+extensionTolerance
	}
	return false
}

func (c *patternCursor) canRestart() bool {
	if c.runsCompleted < c.totalRuns-1 {
		return true
	}
	return c.ShouldContinueExtendedSet()
}

// Next pops the next entry, restarting the run when the current pass is
// used up and the pattern may continue.
func (c *patternCursor) Next(src Source) (models.Entry, bool) {
	if c.IsFinished() {
		return models.Entry{}, false
	}
	if len(c.available) == 0 {
		c.runsCompleted++
		c.reset(src)
		if len(c.available) == 0 {
			return models.Entry{}, false
		}
	}

	i := c.applyPositionalConstraints(c.available)
	e := c.available[i]
	c.available = append(c.available[:i:i], c.available[i+1:]...)
	c.takenInRun++
	c.lastPlayed = &e
	return e, true
}

// applyPositionalConstraints picks the index of the candidate to play next.
// The candidates are already ordered, so this only overrides the head when a
// lock placed by the orderer targets the current position. A linked head is
// never displaced: it must follow the entry just played.
func (c *patternCursor) applyPositionalConstraints(candidates []models.Entry) int {
	if len(candidates) <= 1 || candidates[0].Position.Kind == models.PositionLinked {
		return 0
	}
	want := c.takenInRun + 1
	for i, e := range candidates {
		if e.Position.Kind == models.PositionFixed && e.Position.Slot == want && c.placed[e.ID] {
			return i
		}
	}
	return 0
}

// wouldExceed reports whether playing an event of duration d would break
// the pattern's own limit.
func (c *patternCursor) wouldExceed(isShot bool, d float64) bool {
	switch c.limits.Type {
	case models.LimitShotCount:
		return isShot && float64(c.shotsPlayed+1) > c.limits.Value
	case models.LimitTime:
		return c.timeElapsed+d > c.limits.Value+epsilon
	}
	return false
}

func (c *patternCursor) record(isShot bool, d float64) {
	if isShot {
		c.shotsPlayed++
	}
	c.timeElapsed += d
}

// endsAfterCurrent reports whether the entry just taken is the last one this
// instance will play.
func (c *patternCursor) endsAfterCurrent() bool {
	if c.limitReached() {
		return true
	}
	return len(c.available) == 0 && !c.canRestart()
}

func (c *patternCursor) repeatNumber() int { return c.runsCompleted + 1 }

func (c *patternCursor) totalRepeats() int { return max(c.totalRuns, c.runsCompleted+1) }
