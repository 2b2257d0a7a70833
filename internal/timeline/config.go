package timeline

import "github.com/meltforce/shotcaller/internal/models"

// Defaults applied when no level of the hierarchy sets a field.
const (
	DefaultInterval     = 5.0
	DefaultLeadTime     = 2.5
	DefaultSpeechRate   = 1.0
	DefaultSplitStep    = models.SplitStepAuto
	DefaultIntervalType = models.IntervalFixed
)

// Effective is a fully resolved entry configuration.
type Effective struct {
	Interval     float64
	Offset       *Offset
	OffsetType   models.OffsetType
	LeadTime     float64
	SplitStep    models.SplitStepSpeed
	SpeechRate   float64
	Repeat       models.RepeatCount
	Message      string
	IntervalType models.IntervalType
	Countdown    bool
	SkipAtEnd    bool
}

// Offset is a resolved interval offset range.
type Offset struct {
	Min float64
	Max float64
}

// LimitSpec is a resolved workout or pattern limit.
type LimitSpec struct {
	Type  models.LimitType
	Value float64
}

// Merge deep-merges configs in override order. A later layer's non-nil field
// wins; intervalOffset and limits merge field by field. repeatCount is a
// normalized union and replaces as a whole.
func Merge(layers ...*models.Config) models.Config {
	var out models.Config
	for _, c := range layers {
		if c == nil {
			continue
		}
		setIf(&out.Interval, c.Interval)
		setIf(&out.IntervalOffsetType, c.IntervalOffsetType)
		setIf(&out.ShotAnnouncementLeadTime, c.ShotAnnouncementLeadTime)
		setIf(&out.SplitStepSpeed, c.SplitStepSpeed)
		setIf(&out.SpeechRate, c.SpeechRate)
		setIf(&out.RepeatCount, c.RepeatCount)
		setIf(&out.IterationType, c.IterationType)
		setIf(&out.Message, c.Message)
		setIf(&out.IntervalType, c.IntervalType)
		setIf(&out.Countdown, c.Countdown)
		setIf(&out.SkipAtEndOfWorkout, c.SkipAtEndOfWorkout)

		if c.IntervalOffset != nil {
			if out.IntervalOffset == nil {
				out.IntervalOffset = &models.IntervalOffset{}
			} else {
				cp := *out.IntervalOffset
				out.IntervalOffset = &cp
			}
			setIf(&out.IntervalOffset.Min, c.IntervalOffset.Min)
			setIf(&out.IntervalOffset.Max, c.IntervalOffset.Max)
		}
		if c.Limits != nil {
			if out.Limits == nil {
				out.Limits = &models.Limits{}
			} else {
				cp := *out.Limits
				out.Limits = &cp
			}
			setIf(&out.Limits.Type, c.Limits.Type)
			setIf(&out.Limits.Value, c.Limits.Value)
		}
	}
	return out
}

func setIf[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// Resolve computes the effective configuration of an entry. Timing fields
// inherit workout -> pattern -> entry. repeatCount, limits and iterationType
// are scoped to the level that declares them, so only the entry's own
// repeatCount applies here.
func Resolve(workout, pattern, entry *models.Config) Effective {
	merged := Merge(timingOnly(workout), timingOnly(pattern), entry)

	eff := Effective{
		Interval:     orDefault(merged.Interval, DefaultInterval),
		OffsetType:   models.OffsetFixed,
		LeadTime:     orDefault(merged.ShotAnnouncementLeadTime, DefaultLeadTime),
		SplitStep:    normalizeSplitStep(merged.SplitStepSpeed),
		SpeechRate:   orDefault(merged.SpeechRate, DefaultSpeechRate),
		Repeat:       models.FixedRepeat(1),
		IntervalType: DefaultIntervalType,
	}
	if merged.IntervalOffsetType != nil && *merged.IntervalOffsetType == models.OffsetRandom {
		eff.OffsetType = models.OffsetRandom
	}
	if merged.IntervalOffset != nil {
		mn := orDefault(merged.IntervalOffset.Min, 0)
		eff.Offset = &Offset{Min: mn, Max: orDefault(merged.IntervalOffset.Max, mn)}
	}
	if merged.RepeatCount != nil {
		eff.Repeat = *merged.RepeatCount
	}
	if merged.Message != nil {
		eff.Message = *merged.Message
	}
	if merged.IntervalType != nil && *merged.IntervalType == models.IntervalAdditional {
		eff.IntervalType = models.IntervalAdditional
	}
	if merged.Countdown != nil {
		eff.Countdown = *merged.Countdown
	}
	if merged.SkipAtEndOfWorkout != nil {
		eff.SkipAtEnd = *merged.SkipAtEndOfWorkout
	}
	if eff.LeadTime < 0 {
		eff.LeadTime = 0
	}
	if eff.SpeechRate <= 0 {
		eff.SpeechRate = DefaultSpeechRate
	}
	return eff
}

// ResolveLimits reads the limit declared directly on one level.
func ResolveLimits(c *models.Config) LimitSpec {
	spec := LimitSpec{Type: models.LimitAllShots}
	if c == nil || c.Limits == nil || c.Limits.Type == nil {
		return spec
	}
	switch *c.Limits.Type {
	case models.LimitShotCount, models.LimitTime:
		if c.Limits.Value != nil && *c.Limits.Value > 0 {
			spec.Type = *c.Limits.Type
			spec.Value = *c.Limits.Value
		}
	}
	return spec
}

// ResolveIteration reads the iteration type declared directly on one level.
func ResolveIteration(c *models.Config) models.IterationType {
	if c != nil && c.IterationType != nil && *c.IterationType == models.IterationShuffle {
		return models.IterationShuffle
	}
	return models.IterationInOrder
}

// ResolveRepeatSpec reads the repeat count declared directly on one level.
func ResolveRepeatSpec(c *models.Config) models.RepeatCount {
	if c == nil || c.RepeatCount == nil {
		return models.FixedRepeat(1)
	}
	return *c.RepeatCount
}

func timingOnly(c *models.Config) *models.Config {
	if c == nil {
		return nil
	}
	cp := *c
	cp.RepeatCount = nil
	cp.Limits = nil
	cp.IterationType = nil
	cp.Message = nil
	return &cp
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func normalizeSplitStep(v *models.SplitStepSpeed) models.SplitStepSpeed {
	if v == nil {
		return DefaultSplitStep
	}
	switch *v {
	case models.SplitStepAuto, models.SplitStepSlow, models.SplitStepMedium,
		models.SplitStepFast, models.SplitStepRandom, models.SplitStepNone:
		return *v
	}
	return DefaultSplitStep
}
