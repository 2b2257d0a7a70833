package models

// Event types.
const (
	EventShot    = "shot"
	EventMessage = "message"
)

// Sub-event names. Offsets are absolute seconds from workout start.
const (
	SubAnnounced  = "announced_time"
	SubSplitStep  = "split_step_time"
	SubBeep       = "beep_time"
	SubMsgStart   = "message_start"
	SubTTSEnd     = "tts_end"
	SubMsgEnd     = "message_end"
	SubCountdown3 = "countdown_3"
	SubCountdown2 = "countdown_2"
	SubCountdown1 = "countdown_1"
)

// TimelineEvent is one playable item of a generated timeline.
type TimelineEvent struct {
	Name        string             `json:"name"`
	Type        string             `json:"type"`
	ID          string             `json:"id"`
	PatternID   string             `json:"patternId"`
	PatternName string             `json:"patternName"`
	Message     string             `json:"message,omitempty"`
	StartTime   float64            `json:"startTime"`
	EndTime     float64            `json:"endTime"`
	Duration    float64            `json:"duration"`
	SubEvents   map[string]float64 `json:"subEvents"`

	SupersetNumber      int `json:"supersetNumber"`
	PatternRepeatNumber int `json:"patternRepeatNumber"`
	TotalPatternRepeats int `json:"totalPatternRepeats"`
	ShotRepeatNumber    int `json:"shotRepeatNumber"`
	TotalShotRepeats    int `json:"totalShotRepeats"`
}

// TimelineStats aggregates a timeline for previews and reports.
type TimelineStats struct {
	TotalDuration float64 `json:"totalDuration"`
	TotalShots    int     `json:"totalShots"`
	TotalMessages int     `json:"totalMessages"`
	TotalEvents   int     `json:"totalEvents"`
	Supersets     int     `json:"supersets"`
	// Truncated is set when generation stopped on the no-progress guard.
	Truncated bool `json:"truncated,omitempty"`
}

// Timeline is the result of a generation run.
type Timeline struct {
	Seed   *int64          `json:"seed,omitempty"`
	Events []TimelineEvent `json:"events"`
	Stats  TimelineStats   `json:"stats"`
}
