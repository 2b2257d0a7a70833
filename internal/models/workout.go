package models

// EntryKind discriminates the two entry variants of a pattern.
type EntryKind string

const (
	EntryShot    EntryKind = "shot"
	EntryMessage EntryKind = "message"
)

// Workout is the root of a workout definition.
type Workout struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Config   *Config   `json:"config,omitempty"`
	Patterns []Pattern `json:"patterns"`
}

// Pattern is an ordered group of entries played as one drill block.
type Pattern struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Config   *Config  `json:"config,omitempty"`
	Position Position `json:"positionType"`
	Entries  []Entry  `json:"entries"`
}

// Entry is either a shot (timed drill) or a spoken message.
type Entry struct {
	Kind     EntryKind `json:"type"`
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Config   *Config   `json:"config,omitempty"`
	Position Position  `json:"positionType"`
}

// IsShot reports whether the entry is a shot.
func (e Entry) IsShot() bool { return e.Kind == EntryShot }

// IsMessage reports whether the entry is a message.
func (e Entry) IsMessage() bool { return e.Kind == EntryMessage }

// PositionLock implements the ordering constraint accessor for entries.
func (e Entry) PositionLock() Position { return e.Position }

// PositionLock implements the ordering constraint accessor for patterns.
func (p Pattern) PositionLock() Position { return p.Position }

// ShotCount returns the number of shot entries in the pattern definition.
func (p Pattern) ShotCount() int {
	n := 0
	for _, e := range p.Entries {
		if e.IsShot() {
			n++
		}
	}
	return n
}
