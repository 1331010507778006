package telemetry

import "time"

// ModeStats is the rollup for one mode kind.
type ModeStats struct {
	Attempts    int     `json:"attempts"`
	Correct     int     `json:"correct"`
	Completions int     `json:"completions"`
	ConfSum     float64 `json:"conf_sum"`
	TimeSumSec  float64 `json:"time_sum_sec"`
}

// TargetStats is the rollup bucket for one target within a mode, keyed
// "mcq/A" or "spelling/HELLO" in the stats document.
type TargetStats struct {
	Questions   int     `json:"questions,omitempty"`
	Attempts    int     `json:"attempts,omitempty"`
	Correct     int     `json:"correct,omitempty"`
	Completions int     `json:"completions,omitempty"`
	RTSumSec    float64 `json:"rt_sum_sec,omitempty"`
	TimeSumSec  float64 `json:"time_sum_sec,omitempty"`
}

// SnakeStats is the rollup for the game loop.
type SnakeStats struct {
	Sessions   int     `json:"sessions"`
	FoodEaten  int     `json:"food_eaten"`
	Deaths     int     `json:"deaths"`
	BestScore  int     `json:"best_score"`
	TimeSumSec float64 `json:"time_sum_sec"`
}

// Stats is the checkpointed statistics document derived from the event
// stream, recomputable by replaying the log.
type Stats struct {
	Version   int                     `json:"version"`
	UserID    string                  `json:"user"`
	Modes     map[string]*ModeStats   `json:"modes"`
	Targets   map[string]*TargetStats `json:"targets"`
	Snake     SnakeStats              `json:"snake"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// statsVersion is the current document schema version.
const statsVersion = 1

// NewStats creates an empty statistics document for the user.
func NewStats(userID string) *Stats {
	return &Stats{
		Version: statsVersion,
		UserID:  userID,
		Modes:   make(map[string]*ModeStats),
		Targets: make(map[string]*TargetStats),
	}
}

// Mode returns the rollup for a mode kind, creating it on first use.
func (s *Stats) Mode(kind string) *ModeStats {
	if s.Modes == nil {
		s.Modes = make(map[string]*ModeStats)
	}
	ms, ok := s.Modes[kind]
	if !ok {
		ms = &ModeStats{}
		s.Modes[kind] = ms
	}
	return ms
}

// Target returns the rollup bucket for mode/target, creating it on first use.
func (s *Stats) Target(kind, target string) *TargetStats {
	if s.Targets == nil {
		s.Targets = make(map[string]*TargetStats)
	}
	key := kind + "/" + target
	ts, ok := s.Targets[key]
	if !ok {
		ts = &TargetStats{}
		s.Targets[key] = ts
	}
	return ts
}

// Clone returns a deep copy safe to hand across goroutines.
func (s *Stats) Clone() *Stats {
	c := &Stats{
		Version:   s.Version,
		UserID:    s.UserID,
		Modes:     make(map[string]*ModeStats, len(s.Modes)),
		Targets:   make(map[string]*TargetStats, len(s.Targets)),
		Snake:     s.Snake,
		UpdatedAt: s.UpdatedAt,
	}
	for k, v := range s.Modes {
		cp := *v
		c.Modes[k] = &cp
	}
	for k, v := range s.Targets {
		cp := *v
		c.Targets[k] = &cp
	}
	return c
}
