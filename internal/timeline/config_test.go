package timeline

import (
	"testing"

	"github.com/meltforce/shotcaller/internal/models"
)

// TestMergeOverrideOrder verifies that later layers win field by field and
// nil fields never override.
func TestMergeOverrideOrder(t *testing.T) {
	workout := &models.Config{Interval: models.Ptr(5.0), ShotAnnouncementLeadTime: models.Ptr(3.0)}
	pattern := &models.Config{Interval: models.Ptr(4.0)}
	entry := &models.Config{Interval: nil, SplitStepSpeed: models.Ptr(models.SplitStepSlow)}

	got := Merge(workout, pattern, entry)
	if *got.Interval != 4.0 {
		t.Errorf("interval = %v, want 4.0", *got.Interval)
	}
	if *got.ShotAnnouncementLeadTime != 3.0 {
		t.Errorf("lead time = %v, want 3.0", *got.ShotAnnouncementLeadTime)
	}
	if *got.SplitStepSpeed != models.SplitStepSlow {
		t.Errorf("split step = %v, want slow", *got.SplitStepSpeed)
	}
}

// TestMergeNestedObjects verifies that intervalOffset and limits merge
// recursively instead of replacing the whole object.
func TestMergeNestedObjects(t *testing.T) {
	parent := &models.Config{
		IntervalOffset: &models.IntervalOffset{Min: models.Ptr(-1.0), Max: models.Ptr(1.0)},
		Limits:         &models.Limits{Type: models.Ptr(models.LimitTime), Value: models.Ptr(60.0)},
	}
	child := &models.Config{
		IntervalOffset: &models.IntervalOffset{Max: models.Ptr(2.0)},
		Limits:         &models.Limits{Value: models.Ptr(30.0)},
	}

	got := Merge(parent, child)
	if *got.IntervalOffset.Min != -1 || *got.IntervalOffset.Max != 2 {
		t.Errorf("offset = {%v,%v}, want {-1,2}", *got.IntervalOffset.Min, *got.IntervalOffset.Max)
	}
	if *got.Limits.Type != models.LimitTime || *got.Limits.Value != 30 {
		t.Errorf("limits = {%v,%v}, want {time-limit,30}", *got.Limits.Type, *got.Limits.Value)
	}
	if *parent.IntervalOffset.Max != 1 {
		t.Error("merge mutated its input")
	}
}

// TestResolveDefaults verifies documented defaults when nothing is set.
func TestResolveDefaults(t *testing.T) {
	eff := Resolve(nil, nil, nil)
	if eff.Interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", eff.Interval, DefaultInterval)
	}
	if eff.LeadTime != DefaultLeadTime {
		t.Errorf("lead = %v, want %v", eff.LeadTime, DefaultLeadTime)
	}
	if eff.SplitStep != models.SplitStepAuto {
		t.Errorf("split step = %v, want auto-scale", eff.SplitStep)
	}
	if eff.Offset != nil {
		t.Errorf("offset = %+v, want nil", eff.Offset)
	}
	if eff.Repeat.Kind != models.RepeatFixed || eff.Repeat.Count != 1 {
		t.Errorf("repeat = %+v, want Fixed{1}", eff.Repeat)
	}
	if eff.IntervalType != models.IntervalFixed {
		t.Errorf("interval type = %v, want fixed", eff.IntervalType)
	}
}

// TestResolveScopedFields verifies that a pattern's repeatCount does not
// leak into its entries while timing fields do.
func TestResolveScopedFields(t *testing.T) {
	pattern := &models.Config{
		Interval:    models.Ptr(3.0),
		RepeatCount: models.Ptr(models.FixedRepeat(4)),
	}
	eff := Resolve(nil, pattern, &models.Config{})
	if eff.Interval != 3.0 {
		t.Errorf("interval = %v, want inherited 3.0", eff.Interval)
	}
	if eff.Repeat.Count != 1 {
		t.Errorf("repeat = %d, want entry default 1", eff.Repeat.Count)
	}
}

// TestResolveUnknownEnums verifies lenient coercion of unknown enum values.
func TestResolveUnknownEnums(t *testing.T) {
	eff := Resolve(nil, nil, &models.Config{
		SplitStepSpeed:     models.Ptr(models.SplitStepSpeed("turbo")),
		IntervalOffsetType: models.Ptr(models.OffsetType("weird")),
		SpeechRate:         models.Ptr(-2.0),
	})
	if eff.SplitStep != models.SplitStepAuto {
		t.Errorf("split step = %v, want auto-scale", eff.SplitStep)
	}
	if eff.OffsetType != models.OffsetFixed {
		t.Errorf("offset type = %v, want fixed", eff.OffsetType)
	}
	if eff.SpeechRate != DefaultSpeechRate {
		t.Errorf("speech rate = %v, want %v", eff.SpeechRate, DefaultSpeechRate)
	}
}

// TestResolveLimits verifies that limits without a positive value fall back
// to all-shots.
func TestResolveLimits(t *testing.T) {
	if got := ResolveLimits(nil); got.Type != models.LimitAllShots {
		t.Errorf("nil = %v, want all-shots", got.Type)
	}
	c := &models.Config{Limits: &models.Limits{Type: models.Ptr(models.LimitShotCount)}}
	if got := ResolveLimits(c); got.Type != models.LimitAllShots {
		t.Errorf("no value = %v, want all-shots", got.Type)
	}
	c.Limits.Value = models.Ptr(12.0)
	if got := ResolveLimits(c); got.Type != models.LimitShotCount || got.Value != 12 {
		t.Errorf("shot-limit = %+v", got)
	}
}
