package timeline

import "github.com/meltforce/shotcaller/internal/models"

// ResolveRepeat turns a repeat spec into a concrete count. Random ranges are
// drawn from LCG(seed+callCount) when seed is set, so each occurrence of an
// entry gets its own reproducible draw. It never fails: a non-positive fixed
// count is treated as malformed and falls back to 1.
func ResolveRepeat(spec models.RepeatCount, seed *int64, callCount int64) int {
	switch spec.Kind {
	case models.RepeatRandom:
		lo := max(spec.Min, 0)
		hi := max(spec.Max, lo)
		if lo == hi {
			return lo
		}
		var src Source = systemSource{}
		if seed != nil {
			src = NewLCG(*seed + callCount)
		}
		return drawInt(src, lo, hi)
	default:
		if spec.Count < 1 {
			return 1
		}
		return spec.Count
	}
}
