package timeline

import (
	"math"
	"testing"

	"github.com/meltforce/shotcaller/internal/models"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// TestEffectiveIntervalFixedOffset verifies that a fixed offset adds min.
func TestEffectiveIntervalFixedOffset(t *testing.T) {
	got := EffectiveInterval(5.0, &Offset{Min: 1, Max: 1}, models.OffsetFixed, nil)
	if got != 6.0 {
		t.Errorf("EffectiveInterval = %v, want 6.0", got)
	}
}

// TestEffectiveIntervalRandomOffset verifies that a random offset is drawn
// uniformly from [min, max].
func TestEffectiveIntervalRandomOffset(t *testing.T) {
	off := &Offset{Min: -1, Max: 1}
	if got := EffectiveInterval(5, off, models.OffsetRandom, fixedSource(0)); !almost(got, 4) {
		t.Errorf("draw 0 = %v, want 4", got)
	}
	if got := EffectiveInterval(5, off, models.OffsetRandom, fixedSource(0.5)); !almost(got, 5) {
		t.Errorf("draw 0.5 = %v, want 5", got)
	}
	if got := EffectiveInterval(5, off, models.OffsetRandom, fixedSource(1)); !almost(got, 6) {
		t.Errorf("draw 1 = %v, want 6", got)
	}
}

// TestEffectiveIntervalEdgeCases verifies the no-offset and invalid-base paths.
func TestEffectiveIntervalEdgeCases(t *testing.T) {
	if got := EffectiveInterval(4.2, nil, models.OffsetFixed, nil); got != 4.2 {
		t.Errorf("no offset = %v, want 4.2", got)
	}
	if got := EffectiveInterval(-1, &Offset{Min: 3}, models.OffsetFixed, nil); got != 0 {
		t.Errorf("negative base = %v, want 0", got)
	}
	if got := EffectiveInterval(math.NaN(), nil, models.OffsetFixed, nil); got != 0 {
		t.Errorf("NaN base = %v, want 0", got)
	}
	if got := EffectiveInterval(1, &Offset{Min: -3}, models.OffsetFixed, nil); got != 0 {
		t.Errorf("offset below zero = %v, want 0", got)
	}
}

// TestTTSDuration verifies the word-count estimate at 150 words per minute.
func TestTTSDuration(t *testing.T) {
	if got := TTSDuration("one two three", 1); !almost(got, 1.2) {
		t.Errorf("3 words = %v, want 1.2", got)
	}
	if got := TTSDuration("one two three", 2); !almost(got, 0.6) {
		t.Errorf("3 words at 2x = %v, want 0.6", got)
	}
	if got := TTSDuration("   ", 1); got != 0 {
		t.Errorf("blank = %v, want 0", got)
	}
	if got := TTSDuration("a b", 0); !almost(got, 0.8) {
		t.Errorf("rate 0 falls back to 1.0: got %v, want 0.8", got)
	}
}

// TestSplitStepAutoScale verifies the interval thresholds of auto-scale.
func TestSplitStepAutoScale(t *testing.T) {
	cases := []struct {
		interval float64
		want     float64
	}{
		{3.0, 0.32},
		{4.0, 0.32},
		{4.5, 0.48},
		{5.0, 0.48},
		{5.01, 0.64},
	}
	for _, c := range cases {
		got, ok := SplitStepDuration(models.SplitStepAuto, c.interval, nil)
		if !ok || got != c.want {
			t.Errorf("auto-scale(%v) = %v,%v, want %v", c.interval, got, ok, c.want)
		}
	}
	if _, ok := SplitStepDuration(models.SplitStepNone, 5, nil); ok {
		t.Error("none should not produce a split step")
	}
}

// TestSplitStepRandom verifies each bucket of the random split step draw.
func TestSplitStepRandom(t *testing.T) {
	want := map[float64]float64{0.1: 0.32, 0.5: 0.48, 0.9: 0.64}
	for draw, w := range want {
		got, ok := SplitStepDuration(models.SplitStepRandom, 5, fixedSource(draw))
		if !ok || got != w {
			t.Errorf("random draw %v = %v, want %v", draw, got, w)
		}
	}
}

// TestShotTimingSubEvents verifies the announcement, split-step and beep offsets.
func TestShotTimingSubEvents(t *testing.T) {
	eff := Resolve(nil, nil, &models.Config{
		Interval:       models.Ptr(6.0),
		SplitStepSpeed: models.Ptr(models.SplitStepFast),
	})
	tm := shotTiming(eff, 10, nil)

	if tm.duration != 6 {
		t.Fatalf("duration = %v, want 6", tm.duration)
	}
	if got := tm.subEvents[models.SubBeep]; got != 16 {
		t.Errorf("beep = %v, want 16", got)
	}
	if got := tm.subEvents[models.SubAnnounced]; got != 13.5 {
		t.Errorf("announced = %v, want 13.5", got)
	}
	if got := tm.subEvents[models.SubSplitStep]; !almost(got, 15.68) {
		t.Errorf("split step = %v, want 15.68", got)
	}
}

// TestShotTimingNoSplitStep verifies that "none" omits the split step and
// a lead time longer than the interval announces before the shot starts.
func TestShotTimingNoSplitStep(t *testing.T) {
	eff := Resolve(nil, nil, &models.Config{
		Interval:                 models.Ptr(2.0),
		ShotAnnouncementLeadTime: models.Ptr(3.0),
		SplitStepSpeed:           models.Ptr(models.SplitStepNone),
	})
	tm := shotTiming(eff, 4, nil)
	if _, ok := tm.subEvents[models.SubSplitStep]; ok {
		t.Error("split step present for none")
	}
	if got := tm.subEvents[models.SubAnnounced]; got != 3 {
		t.Errorf("announced = %v, want 3", got)
	}
}

// TestShotTimingLeadExceedsInterval verifies that announcement and split
// step offsets follow end-lead even when that lands before the start.
func TestShotTimingLeadExceedsInterval(t *testing.T) {
	eff := Resolve(nil, nil, &models.Config{
		Interval:                 models.Ptr(2.0),
		ShotAnnouncementLeadTime: models.Ptr(2.5),
		SplitStepSpeed:           models.Ptr(models.SplitStepFast),
	})
	tm := shotTiming(eff, 10, nil)
	if got := tm.subEvents[models.SubAnnounced]; got != 9.5 {
		t.Errorf("announced = %v, want 9.5", got)
	}
	if got := tm.subEvents[models.SubSplitStep]; !almost(got, 11.68) {
		t.Errorf("split step = %v, want 11.68", got)
	}

	eff = Resolve(nil, nil, &models.Config{
		Interval:       models.Ptr(0.2),
		SplitStepSpeed: models.Ptr(models.SplitStepFast),
	})
	tm = shotTiming(eff, 4, nil)
	if got := tm.subEvents[models.SubSplitStep]; !almost(got, 3.88) {
		t.Errorf("split step = %v, want 3.88", got)
	}
}

// TestMessageTiming verifies fixed and additional interval types.
func TestMessageTiming(t *testing.T) {
	text := "rest for a moment now" // 5 words = 2s
	fixed := Resolve(nil, nil, &models.Config{Message: models.Ptr(text), Interval: models.Ptr(1.0)})
	tm := messageTiming(fixed, 0, nil)
	if !almost(tm.duration, 2) {
		t.Errorf("fixed duration = %v, want 2 (tts wins)", tm.duration)
	}
	if !almost(tm.subEvents[models.SubTTSEnd], 2) || !almost(tm.subEvents[models.SubMsgEnd], 2) {
		t.Errorf("fixed subs = %v", tm.subEvents)
	}

	add := Resolve(nil, nil, &models.Config{
		Message:      models.Ptr(text),
		Interval:     models.Ptr(10.0),
		IntervalType: models.Ptr(models.IntervalAdditional),
	})
	tm = messageTiming(add, 5, nil)
	if !almost(tm.duration, 12) {
		t.Errorf("additional duration = %v, want 12", tm.duration)
	}
	if tm.subEvents[models.SubMsgStart] != 5 || !almost(tm.subEvents[models.SubTTSEnd], 7) || !almost(tm.subEvents[models.SubMsgEnd], 17) {
		t.Errorf("additional subs = %v", tm.subEvents)
	}
}

// TestMessageCountdown verifies countdown offsets are added only after the
// speech has finished.
func TestMessageCountdown(t *testing.T) {
	eff := Resolve(nil, nil, &models.Config{
		Message:   models.Ptr("go go go go go"), // 2s
		Interval:  models.Ptr(4.5),
		Countdown: models.Ptr(true),
	})
	tm := messageTiming(eff, 0, nil)
	if _, ok := tm.subEvents[models.SubCountdown3]; ok {
		t.Error("countdown_3 at 1.5s overlaps speech and should be omitted")
	}
	if got := tm.subEvents[models.SubCountdown2]; !almost(got, 2.5) {
		t.Errorf("countdown_2 = %v, want 2.5", got)
	}
	if got := tm.subEvents[models.SubCountdown1]; !almost(got, 3.5) {
		t.Errorf("countdown_1 = %v, want 3.5", got)
	}
}
