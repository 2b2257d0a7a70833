package timeline

import (
	"math"
	"strings"

	"github.com/meltforce/shotcaller/internal/models"
)

// WordsPerMinute is the speech rate assumed when estimating how long a
// message takes to speak at speechRate 1.0.
const WordsPerMinute = 150.0

// Split-step lead times in seconds before the beep.
const (
	splitStepFast   = 0.32
	splitStepMedium = 0.48
	splitStepSlow   = 0.64
)

// EffectiveInterval applies an interval offset to base. A fixed offset adds
// Min, a random offset adds a uniform draw from [Min, Max].
func EffectiveInterval(base float64, offset *Offset, offsetType models.OffsetType, src Source) float64 {
	if base < 0 || math.IsNaN(base) || math.IsInf(base, 0) {
		return 0
	}
	if offset == nil {
		return base
	}

	v := base
	switch offsetType {
	case models.OffsetRandom:
		lo, hi := offset.Min, offset.Max
		if hi < lo {
			lo, hi = hi, lo
		}
		v += lo + src.Float64()*(hi-lo)
	default:
		v += offset.Min
	}
	return math.Max(v, 0)
}

// TTSDuration estimates speaking time in seconds from the word count.
func TTSDuration(text string, speechRate float64) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	if speechRate <= 0 {
		speechRate = DefaultSpeechRate
	}
	return float64(words) / (WordsPerMinute * speechRate) * 60
}

// SplitStepDuration returns the split-step lead for a speed setting, or
// false when no split step is played. auto-scale picks from the interval.
func SplitStepDuration(speed models.SplitStepSpeed, interval float64, src Source) (float64, bool) {
	switch speed {
	case models.SplitStepNone:
		return 0, false
	case models.SplitStepFast:
		return splitStepFast, true
	case models.SplitStepMedium:
		return splitStepMedium, true
	case models.SplitStepSlow:
		return splitStepSlow, true
	case models.SplitStepRandom:
		switch drawInt(src, 0, 2) {
		case 0:
			return splitStepFast, true
		case 1:
			return splitStepMedium, true
		default:
			return splitStepSlow, true
		}
	default:
		switch {
		case interval <= 4.0:
			return splitStepFast, true
		case interval <= 5.0:
			return splitStepMedium, true
		default:
			return splitStepSlow, true
		}
	}
}

// timing is the computed placement of one event.
type timing struct {
	duration  float64
	subEvents map[string]float64
}

// shotTiming lays out a shot starting at start.
func shotTiming(eff Effective, start float64, src Source) timing {
	interval := EffectiveInterval(eff.Interval, eff.Offset, eff.OffsetType, src)
	end := start + interval

	subs := map[string]float64{
		models.SubBeep:      end,
		models.SubAnnounced: end - eff.LeadTime,
	}
	if d, ok := SplitStepDuration(eff.SplitStep, interval, src); ok {
		subs[models.SubSplitStep] = end - d
	}
	return timing{duration: interval, subEvents: subs}
}

// messageTiming lays out a message starting at start.
func messageTiming(eff Effective, start float64, src Source) timing {
	interval := EffectiveInterval(eff.Interval, eff.Offset, eff.OffsetType, src)
	tts := TTSDuration(eff.Message, eff.SpeechRate)

	var d float64
	if eff.IntervalType == models.IntervalAdditional {
		d = tts + interval
	} else {
		d = math.Max(tts, interval)
	}
	end := start + d

	subs := map[string]float64{
		models.SubMsgStart: start,
		models.SubTTSEnd:   start + tts,
		models.SubMsgEnd:   end,
	}
	if eff.Countdown {
		for i, name := range []string{models.SubCountdown3, models.SubCountdown2, models.SubCountdown1} {
			at := end - float64(3-i)
			if at >= start+tts {
				subs[name] = at
			}
		}
	}
	return timing{duration: d, subEvents: subs}
}
