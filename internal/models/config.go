package models

// Enumerated config values. Unknown strings are tolerated on decode and
// coerced to defaults by the resolver; the validator reports them.
type (
	OffsetType     string
	SplitStepSpeed string
	LimitType      string
	IterationType  string
	IntervalType   string
)

const (
	OffsetFixed  OffsetType = "fixed"
	OffsetRandom OffsetType = "random"

	SplitStepAuto   SplitStepSpeed = "auto-scale"
	SplitStepSlow   SplitStepSpeed = "slow"
	SplitStepMedium SplitStepSpeed = "medium"
	SplitStepFast   SplitStepSpeed = "fast"
	SplitStepRandom SplitStepSpeed = "random"
	SplitStepNone   SplitStepSpeed = "none"

	LimitAllShots  LimitType = "all-shots"
	LimitShotCount LimitType = "shot-limit"
	LimitTime      LimitType = "time-limit"

	IterationInOrder IterationType = "in-order"
	IterationShuffle IterationType = "shuffle"

	IntervalFixed      IntervalType = "fixed"
	IntervalAdditional IntervalType = "additional"
)

// Config holds the inheritable settings of a workout, pattern or entry.
// Every field is a pointer: nil means "not set at this level".
type Config struct {
	Interval                 *float64        `json:"interval,omitempty"`
	IntervalOffset           *IntervalOffset `json:"intervalOffset,omitempty"`
	IntervalOffsetType       *OffsetType     `json:"intervalOffsetType,omitempty"`
	ShotAnnouncementLeadTime *float64        `json:"shotAnnouncementLeadTime,omitempty"`
	SplitStepSpeed           *SplitStepSpeed `json:"splitStepSpeed,omitempty"`
	SpeechRate               *float64        `json:"speechRate,omitempty"`
	RepeatCount              *RepeatCount    `json:"repeatCount,omitempty"`
	Limits                   *Limits         `json:"limits,omitempty"`
	IterationType            *IterationType  `json:"iterationType,omitempty"`

	Message            *string       `json:"message,omitempty"`
	IntervalType       *IntervalType `json:"intervalType,omitempty"`
	Countdown          *bool         `json:"countdown,omitempty"`
	SkipAtEndOfWorkout *bool         `json:"skipAtEndOfWorkout,omitempty"`
}

// IntervalOffset bounds the offset added to an interval.
type IntervalOffset struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Limits bounds a workout or pattern run.
type Limits struct {
	Type  *LimitType `json:"type,omitempty"`
	Value *float64   `json:"value,omitempty"`
}

// Ptr returns a pointer to v. Handy for building configs in code and tests.
func Ptr[T any](v T) *T { return &v }
