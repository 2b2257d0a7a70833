package timeline

import "github.com/meltforce/shotcaller/internal/models"

// Positioned is anything carrying a positional lock: entries within a
// pattern, patterns within a workout.
type Positioned interface {
	PositionLock() models.Position
}

// Order produces the consumption order for one pass over items.
//
// Items are grouped so that each linked item travels with the item before
// it. Groups led by a numeric lock go to their 1-based slot, groups led by
// "last" are packed against the tail, and the rest fill the remaining gaps
// either in original order or shuffled with Fisher-Yates.
func Order[T Positioned](items []T, iteration models.IterationType, src Source) []T {
	n := len(items)
	if n == 0 {
		return nil
	}

	groups := groupLinked(items)
	slots := make([]*T, n)

	var fixed, last, rest [][]T
	for _, g := range groups {
		switch lead := g[0].PositionLock(); lead.Kind {
		case models.PositionFixed:
			fixed = append(fixed, g)
		case models.PositionLast:
			last = append(last, g)
		default:
			rest = append(rest, g)
		}
	}

	for _, g := range fixed {
		start := g[0].PositionLock().Slot - 1
		if start < 0 || start+len(g) > n {
			// Out of range slots drop the group.
			continue
		}
		if !free(slots, start, len(g)) {
			rest = append(rest, g)
			continue
		}
		place(slots, start, g)
	}

	tail := n - 1
	for i := len(last) - 1; i >= 0; i-- {
		g := last[i]
		for j := len(g) - 1; j >= 0; j-- {
			for tail >= 0 && slots[tail] != nil {
				tail--
			}
			if tail < 0 {
				break
			}
			item := g[j]
			slots[tail] = &item
			tail--
		}
	}

	if iteration == models.IterationShuffle && src != nil {
		shuffleGroups(rest, src)
	}

	for _, g := range rest {
		if start, ok := firstFit(slots, len(g)); ok {
			place(slots, start, g)
			continue
		}
		// No contiguous gap left: members are scattered over free slots,
		// which splits the linked group.
		k := 0
		for i := range slots {
			if k == len(g) {
				break
			}
			if slots[i] == nil {
				item := g[k]
				slots[i] = &item
				k++
			}
		}
	}

	out := make([]T, 0, n)
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// OrderEntries orders the entries of one pattern pass.
func OrderEntries(entries []models.Entry, iteration models.IterationType, src Source) []models.Entry {
	return Order(entries, iteration, src)
}

func groupLinked[T Positioned](items []T) [][]T {
	var groups [][]T
	for _, it := range items {
		if it.PositionLock().Kind == models.PositionLinked && len(groups) > 0 {
			groups[len(groups)-1] = append(groups[len(groups)-1], it)
			continue
		}
		groups = append(groups, []T{it})
	}
	return groups
}

func shuffleGroups[T any](groups [][]T, src Source) {
	for i := len(groups) - 1; i > 0; i-- {
		j := drawInt(src, 0, i)
		groups[i], groups[j] = groups[j], groups[i]
	}
}

func free[T any](slots []*T, start, size int) bool {
	for i := start; i < start+size; i++ {
		if slots[i] != nil {
			return false
		}
	}
	return true
}

func place[T any](slots []*T, start int, g []T) {
	for i := range g {
		item := g[i]
		slots[start+i] = &item
	}
}

func firstFit[T any](slots []*T, size int) (int, bool) {
	run := 0
	for i := range slots {
		if slots[i] != nil {
			run = 0
			continue
		}
		run++
		if run == size {
			return i - size + 1, true
		}
	}
	return 0, false
}
