package timeline

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/meltforce/shotcaller/internal/models"
)

// ErrIterationLimit is returned when generation exceeds Options.MaxEvents
// loop iterations.
var ErrIterationLimit = errors.New("timeline: iteration limit exceeded")

const (
	DefaultMaxEvents     = 1000
	DefaultMaxNoProgress = 10

	epsilon            = 1e-9
	extensionTolerance = 0.1
)

// Options controls a generation run.
type Options struct {
	// Seed makes every random draw reproducible. Nil uses a process source.
	Seed *int64
	// MaxEvents bounds loop iterations (emitted or skipped entries).
	MaxEvents int
	// MaxNoProgress bounds consecutive iterations that do not advance time.
	MaxNoProgress int
	Logger        *slog.Logger
}

type pendingRepeat struct {
	entry  models.Entry
	eff    Effective
	number int
	total  int
}

type indexedPattern struct {
	idx int
	pos models.Position
}

func (p indexedPattern) PositionLock() models.Position { return p.pos }

// generator is the mutable state of one Generate call.
type generator struct {
	w   *models.Workout
	log *slog.Logger
	rnd *Randomizer

	limit     LimitSpec
	iteration models.IterationType

	now        float64
	totalShots int
	superset   int
	progressed bool

	// idleSupersets counts consecutive supersets that emitted nothing
	// counting toward the workout limit.
	idleSupersets int
	maxNoProgress int

	order       []int
	orderPos    int
	cursor      *patternCursor
	pending     []pendingRepeat
	repeatCache map[int]int
	processed   int64

	events    []models.TimelineEvent
	truncated bool
}

// Generate expands a workout into its ordered timeline.
func Generate(w *models.Workout, opts Options) (*models.Timeline, error) {
	if opts.MaxEvents <= 0 {
		opts.MaxEvents = DefaultMaxEvents
	}
	if opts.MaxNoProgress <= 0 {
		opts.MaxNoProgress = DefaultMaxNoProgress
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	g := &generator{
		w:         w,
		log:       log,
		rnd:       NewRandomizer(opts.Seed),
		limit:     ResolveLimits(w.Config),
		iteration: ResolveIteration(w.Config),

		maxNoProgress: opts.MaxNoProgress,
	}
	if err := g.run(opts.MaxEvents, opts.MaxNoProgress); err != nil {
		return nil, err
	}

	stats := Summarize(g.events)
	stats.Truncated = g.truncated
	return &models.Timeline{Seed: g.rnd.Seed(), Events: g.events, Stats: stats}, nil
}

func (g *generator) run(maxEvents, maxNoProgress int) error {
	if len(g.w.Patterns) == 0 {
		return nil
	}
	g.startSuperset()
	if !g.advancePattern() {
		return nil
	}

	iterations := 0
	noProgress := 0
	step := func(advanced bool) bool {
		if advanced {
			noProgress = 0
			return true
		}
		noProgress++
		if noProgress >= maxNoProgress {
			g.truncated = true
			g.log.Warn("no progress, stopping generation", "iterations", iterations, "time", g.now)
			return false
		}
		return true
	}

	for {
		if g.workoutLimitReached() {
			return nil
		}

		if len(g.pending) > 0 {
			iterations++
			if iterations > maxEvents {
				return fmt.Errorf("%w: more than %d iterations", ErrIterationLimit, maxEvents)
			}
			ev, isShot := g.buildEvent(g.pending[0])
			if g.cursor.wouldExceed(isShot, ev.Duration) {
				g.log.Debug("pattern limit reached during repeats", "pattern", g.cursor.pattern.ID, "dropped", len(g.pending))
				g.cursor.exhausted = true
				if !g.advancePattern() {
					return nil
				}
				continue
			}
			if g.workoutWouldExceed(isShot, ev.Duration) {
				return nil
			}
			g.pending = g.pending[1:]
			g.emit(ev, isShot)
			if !step(ev.Duration > epsilon) {
				return nil
			}
			continue
		}

		if g.cursor.IsFinished() {
			if !g.advancePattern() {
				return nil
			}
			continue
		}

		entry, ok := g.cursor.Next(g.rnd.Next())
		if !ok {
			if !g.advancePattern() {
				return nil
			}
			continue
		}

		iterations++
		if iterations > maxEvents {
			return fmt.Errorf("%w: more than %d iterations", ErrIterationLimit, maxEvents)
		}
		g.processed++

		p := g.cursor.pattern
		eff := Resolve(g.w.Config, p.Config, entry.Config)

		if entry.IsMessage() && eff.SkipAtEnd && g.isFinalEntry(eff) {
			g.log.Debug("skipping end-of-workout message", "entry", entry.ID)
			if !step(false) {
				return nil
			}
			continue
		}

		count := ResolveRepeat(eff.Repeat, g.rnd.Seed(), g.processed)
		if count == 0 {
			if !step(false) {
				return nil
			}
			continue
		}

		first := pendingRepeat{entry: entry, eff: eff, number: 1, total: count}
		ev, isShot := g.buildEvent(first)
		if g.cursor.wouldExceed(isShot, ev.Duration) {
			g.cursor.exhausted = true
			if !g.advancePattern() {
				return nil
			}
			continue
		}
		if g.workoutWouldExceed(isShot, ev.Duration) {
			return nil
		}

		g.emit(ev, isShot)
		for i := 2; i <= count; i++ {
			g.pending = append(g.pending, pendingRepeat{entry: entry, eff: eff, number: i, total: count})
		}
		if !step(ev.Duration > epsilon) {
			return nil
		}
	}
}

// startSuperset begins a new pass over the pattern list. Pattern repeat
// counts are cached per superset, so random counts are stable within one
// superset and redrawn in the next.
func (g *generator) startSuperset() {
	g.superset++
	g.progressed = false
	g.repeatCache = make(map[int]int)

	items := make([]indexedPattern, len(g.w.Patterns))
	for i, p := range g.w.Patterns {
		items[i] = indexedPattern{idx: i, pos: p.Position}
	}
	ordered := Order(items, g.iteration, g.rnd.Next())

	g.order = g.order[:0]
	for _, it := range ordered {
		g.order = append(g.order, it.idx)
	}
	g.orderPos = -1
	g.log.Debug("superset started", "superset", g.superset, "patterns", len(g.order))
}

// endSuperset closes the current superset. Random pattern repeats can leave
// a superset empty, so generation only stops after MaxNoProgress idle
// supersets in a row.
func (g *generator) endSuperset() bool {
	if g.progressed {
		g.idleSupersets = 0
		return true
	}
	g.idleSupersets++
	if g.idleSupersets >= g.maxNoProgress {
		g.truncated = true
		g.log.Warn("supersets made no progress, stopping generation", "superset", g.superset, "idle", g.idleSupersets)
		return false
	}
	return true
}

// advancePattern moves to the next pattern, wrapping into a new superset
// when the workout has a shot or time limit. It returns false when the
// workout is over.
func (g *generator) advancePattern() bool {
	g.pending = nil
	for {
		g.orderPos++
		if g.orderPos >= len(g.order) {
			if g.limit.Type == models.LimitAllShots {
				return false
			}
			if !g.endSuperset() {
				return false
			}
			g.startSuperset()
			continue
		}

		idx := g.order[g.orderPos]
		p := &g.w.Patterns[idx]
		runs := g.patternRuns(idx)
		g.cursor = newPatternCursor(g.w, p, runs, g.rnd.Next())
		g.log.Debug("pattern started", "pattern", p.ID, "superset", g.superset, "runs", runs)
		return true
	}
}

func (g *generator) patternRuns(idx int) int {
	if n, ok := g.repeatCache[idx]; ok {
		return n
	}
	spec := ResolveRepeatSpec(g.w.Patterns[idx].Config)
	key := -(int64(g.superset)<<16 + int64(idx) + 1)
	n := ResolveRepeat(spec, g.rnd.Seed(), key)
	g.repeatCache[idx] = n
	return n
}

func (g *generator) workoutLimitReached() bool {
	switch g.limit.Type {
	case models.LimitShotCount:
		return float64(g.totalShots) >= g.limit.Value
	case models.LimitTime:
		return g.now >= g.limit.Value-epsilon
	}
	return false
}

func (g *generator) workoutWouldExceed(isShot bool, d float64) bool {
	switch g.limit.Type {
	case models.LimitShotCount:
		return isShot && float64(g.totalShots+1) > g.limit.Value
	case models.LimitTime:
		return g.now+d > g.limit.Value+epsilon
	}
	return false
}

// isFinalEntry guesses whether the message just taken would be the last
// thing played. It is exact for single-pass workouts and approximate once
// supersets wrap under a time limit.
func (g *generator) isFinalEntry(eff Effective) bool {
	switch g.limit.Type {
	case models.LimitShotCount:
		// Generation stops on the shot that reaches the limit, so a message
		// is never the last event of a shot-limited workout.
		return false
	case models.LimitTime:
		d := math.Max(TTSDuration(eff.Message, eff.SpeechRate), eff.Interval)
		if eff.IntervalType == models.IntervalAdditional {
			d = TTSDuration(eff.Message, eff.SpeechRate) + eff.Interval
		}
		return g.now+d+g.cursor.minShotInterval > g.limit.Value+epsilon
	}

	if !g.cursor.endsAfterCurrent() {
		return false
	}
	for _, idx := range g.order[g.orderPos+1:] {
		if g.patternRuns(idx) > 0 && len(g.w.Patterns[idx].Entries) > 0 {
			return false
		}
	}
	return true
}

func (g *generator) buildEvent(p pendingRepeat) (models.TimelineEvent, bool) {
	src := g.rnd.Next()
	var t timing
	typ := models.EventShot
	if p.entry.IsShot() {
		t = shotTiming(p.eff, g.now, src)
	} else {
		typ = models.EventMessage
		t = messageTiming(p.eff, g.now, src)
	}

	c := g.cursor
	ev := models.TimelineEvent{
		Name:                p.entry.Name,
		Type:                typ,
		ID:                  p.entry.ID,
		PatternID:           c.pattern.ID,
		PatternName:         c.pattern.Name,
		StartTime:           g.now,
		EndTime:             g.now + t.duration,
		Duration:            t.duration,
		SubEvents:           t.subEvents,
		SupersetNumber:      g.superset,
		PatternRepeatNumber: c.repeatNumber(),
		TotalPatternRepeats: c.totalRepeats(),
		ShotRepeatNumber:    p.number,
		TotalShotRepeats:    p.total,
	}
	if !p.entry.IsShot() {
		ev.Message = p.eff.Message
	}
	return ev, p.entry.IsShot()
}

func (g *generator) emit(ev models.TimelineEvent, isShot bool) {
	g.events = append(g.events, ev)
	g.now = ev.EndTime
	g.cursor.record(isShot, ev.Duration)
	if isShot {
		g.totalShots++
	}

	switch g.limit.Type {
	case models.LimitShotCount:
		if isShot {
			g.progressed = true
		}
	default:
		if ev.Duration > epsilon {
			g.progressed = true
		}
	}
}
