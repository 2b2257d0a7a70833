// Package validate is the structural gate every surface runs before handing
// a workout document to the timeline generator.
package validate

import (
	"fmt"
	"math"

	"github.com/meltforce/shotcaller/internal/models"
)

// Error is a single problem found in a workout document.
type Error struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Result is the outcome of validating one document.
type Result struct {
	IsValid bool    `json:"isValid"`
	Errors  []Error `json:"errors"`
}

// Validate decodes a JSON or YAML workout document and checks its structure.
func Validate(data []byte) Result {
	_, res := Parse(data)
	return res
}

// Parse decodes and validates in one pass. The workout is nil when the
// document could not be decoded at all; otherwise it is returned even when
// invalid so callers can report on it.
func Parse(data []byte) (*models.Workout, Result) {
	w, err := models.DecodeWorkout(data)
	if err != nil {
		return nil, Result{Errors: []Error{{Message: err.Error()}}}
	}
	return w, Workout(w)
}

// Workout checks an already decoded workout.
func Workout(w *models.Workout) Result {
	c := &checker{ids: make(map[string]string)}
	c.workout(w)
	return Result{IsValid: len(c.errs) == 0, Errors: c.errs}
}

type checker struct {
	errs []Error
	ids  map[string]string // entry id -> first path
}

func (c *checker) addf(path, format string, args ...any) {
	c.errs = append(c.errs, Error{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) workout(w *models.Workout) {
	if w.Name == "" {
		c.addf("name", "is required")
	}
	c.config("config", w.Config)
	if len(w.Patterns) == 0 {
		c.addf("patterns", "at least one pattern is required")
		return
	}

	patternIDs := make(map[string]bool, len(w.Patterns))
	for i, p := range w.Patterns {
		path := fmt.Sprintf("patterns[%d]", i)
		if p.ID == "" {
			c.addf(path+".id", "is required")
		} else if patternIDs[p.ID] {
			c.addf(path+".id", "duplicate pattern id %q", p.ID)
		}
		patternIDs[p.ID] = true

		c.position(path+".positionType", p.Position, i, len(w.Patterns))
		c.config(path+".config", p.Config)
		for j, e := range p.Entries {
			c.entry(fmt.Sprintf("%s.entries[%d]", path, j), e, j, len(p.Entries))
		}
	}
}

func (c *checker) entry(path string, e models.Entry, idx, n int) {
	switch e.Kind {
	case models.EntryShot, models.EntryMessage:
	case "":
		c.addf(path+".type", "is required")
	default:
		c.addf(path+".type", "must be %q or %q, got %q", models.EntryShot, models.EntryMessage, e.Kind)
	}

	if e.ID == "" {
		c.addf(path+".id", "is required")
	} else if first, dup := c.ids[e.ID]; dup {
		c.addf(path+".id", "duplicate entry id %q (first at %s)", e.ID, first)
	} else {
		c.ids[e.ID] = path
	}

	if e.IsMessage() && (e.Config == nil || e.Config.Message == nil || *e.Config.Message == "") {
		c.addf(path+".config.message", "message entries need text")
	}
	c.position(path+".positionType", e.Position, idx, n)
	c.config(path+".config", e.Config)
}

func (c *checker) position(path string, p models.Position, idx, n int) {
	if !p.Valid() {
		c.addf(path, "must be normal, linked, last or a positive slot number, got %q", p.Raw)
		return
	}
	switch p.Kind {
	case models.PositionLinked:
		if idx == 0 {
			c.addf(path, "the first item cannot be linked")
		}
	case models.PositionFixed:
		if p.Slot > n {
			c.addf(path, "slot %d is beyond the %d available", p.Slot, n)
		}
	}
}

func (c *checker) config(path string, cfg *models.Config) {
	if cfg == nil {
		return
	}
	nonNegative(c, path+".interval", cfg.Interval)
	nonNegative(c, path+".shotAnnouncementLeadTime", cfg.ShotAnnouncementLeadTime)
	if cfg.SpeechRate != nil && !(*cfg.SpeechRate > 0) {
		c.addf(path+".speechRate", "must be positive")
	}

	if o := cfg.IntervalOffset; o != nil {
		if o.Min != nil && o.Max != nil && *o.Min > *o.Max {
			c.addf(path+".intervalOffset", "min %v exceeds max %v", *o.Min, *o.Max)
		}
	}
	if v := cfg.IntervalOffsetType; v != nil {
		oneOf(c, path+".intervalOffsetType", string(*v), models.OffsetFixed, models.OffsetRandom)
	}
	if v := cfg.SplitStepSpeed; v != nil {
		oneOf(c, path+".splitStepSpeed", string(*v),
			models.SplitStepAuto, models.SplitStepSlow, models.SplitStepMedium,
			models.SplitStepFast, models.SplitStepRandom, models.SplitStepNone)
	}
	if v := cfg.IterationType; v != nil {
		oneOf(c, path+".iterationType", string(*v), models.IterationInOrder, models.IterationShuffle)
	}
	if v := cfg.IntervalType; v != nil {
		oneOf(c, path+".intervalType", string(*v), models.IntervalFixed, models.IntervalAdditional)
	}

	if l := cfg.Limits; l != nil && l.Type != nil {
		oneOf(c, path+".limits.type", string(*l.Type), models.LimitAllShots, models.LimitShotCount, models.LimitTime)
		if *l.Type == models.LimitShotCount || *l.Type == models.LimitTime {
			if l.Value == nil || !(*l.Value > 0) {
				c.addf(path+".limits.value", "%s needs a positive value", *l.Type)
			}
		}
	}

	if r := cfg.RepeatCount; r != nil {
		switch r.Kind {
		case models.RepeatFixed:
			if r.Count < 1 {
				c.addf(path+".repeatCount.count", "must be at least 1")
			}
		case models.RepeatRandom:
			if r.Min < 0 {
				c.addf(path+".repeatCount.min", "must not be negative")
			}
			if r.Max < r.Min {
				c.addf(path+".repeatCount", "max %d is below min %d", r.Max, r.Min)
			}
		}
	}
}

func nonNegative(c *checker, path string, v *float64) {
	if v == nil {
		return
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		c.addf(path, "must be a non-negative number")
	}
}

func oneOf[T ~string](c *checker, path, got string, allowed ...T) {
	for _, a := range allowed {
		if string(a) == got {
			return
		}
	}
	c.addf(path, "unknown value %q", got)
}
