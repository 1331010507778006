// Package game implements the gesture-controlled snake loop. The board
// is a fixed grid advanced once per tick; steering comes from the
// tracked fingertip inside a reserved lower hand-space band of the
// frame, so the playing hand never occludes the board.
package game

import (
	"errors"
	"math/rand"
	"time"

	"github.com/ayusman/mudra/internal/telemetry"
)

// State is the game loop state.
type State string

const (
	// StateRunning advances the snake every tick.
	StateRunning State = "running"
	// StatePaused suspends ticks until an explicit resume.
	StatePaused State = "paused"
	// StateGameOver is terminal.
	StateGameOver State = "game_over"
)

// Game-over causes.
const (
	CauseSelfCollision = "self-collision"
	CauseBoundary      = "boundary"
)

var (
	// ErrReversal rejects a direction request directly opposite the
	// current heading.
	ErrReversal = errors.New("game: direction reverses current heading")
	// ErrNotRunning rejects steering while paused or after game over.
	ErrNotRunning = errors.New("game: not running")
	// ErrBadDirection rejects an unknown direction name.
	ErrBadDirection = errors.New("game: unknown direction")
)

// HandPositionSample is one continuous fingertip position in normalized
// frame coordinates. InHandSpace is true when the point lies inside the
// reserved steering band at the bottom of the frame.
type HandPositionSample struct {
	Timestamp   time.Time `json:"ts"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	InHandSpace bool      `json:"in_hand_space"`
}

// Cell is a grid coordinate. It doubles as a unit direction vector.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Named directions for the override API. Y grows downward.
var (
	DirUp    = Cell{0, -1}
	DirDown  = Cell{0, 1}
	DirLeft  = Cell{-1, 0}
	DirRight = Cell{1, 0}
)

// ParseDirection maps an override command name to a direction vector.
func ParseDirection(name string) (Cell, error) {
	switch name {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return Cell{}, ErrBadDirection
}

// Config tunes the snake loop. The tick interval itself belongs to the
// caller driving Advance.
type Config struct {
	GridWidth    int           // board width in cells
	GridHeight   int           // board height in cells
	Growth       int           // cells gained per food
	NeutralBand  float64       // |dx| from hand-space center treated as straight
	TrackingWarn time.Duration // hand loss beyond this emits one warning per episode
}

// Snake owns the full game state and mutates it once per Advance call.
// It is not safe for concurrent use; the session orchestrator's event
// loop is its single caller.
type Snake struct {
	cfg   Config
	rec   telemetry.Recorder
	rng   *rand.Rand
	state State

	body    []Cell // head first
	dir     Cell
	pending Cell
	food    Cell
	score   int
	grow    int

	latest     HandPositionSample
	haveSteer  bool // an unconsumed steering sample is waiting
	lastSeen   time.Time
	lostWarned bool

	startedAt time.Time
	endedAt   time.Time
	cause     string
}

// New creates an idle game. Start arms it.
func New(cfg Config, rec telemetry.Recorder, rng *rand.Rand) *Snake {
	if rec == nil {
		rec = telemetry.RecorderFunc(func(string, time.Time, map[string]any) {})
	}
	return &Snake{cfg: cfg, rec: rec, rng: rng}
}

// Start places a three-cell snake heading right at the board center,
// drops the first food, and begins running.
func (g *Snake) Start(now time.Time) {
	if g.state != "" {
		return
	}
	cx, cy := g.cfg.GridWidth/2, g.cfg.GridHeight/2
	g.body = []Cell{{cx, cy}, {cx - 1, cy}, {cx - 2, cy}}
	g.dir = DirRight
	g.pending = DirRight
	g.placeFood()
	g.state = StateRunning
	g.startedAt = now
	g.lastSeen = now
}

// State returns the loop state.
func (g *Snake) State() State { return g.state }

// Done reports whether the game has ended.
func (g *Snake) Done() bool { return g.state == StateGameOver }

// Score returns the current score.
func (g *Snake) Score() int { return g.score }

// Pause suspends the loop. Only an explicit command pauses; tracking
// loss never does.
func (g *Snake) Pause() {
	if g.state == StateRunning {
		g.state = StatePaused
	}
}

// Resume continues a paused loop.
func (g *Snake) Resume() {
	if g.state == StatePaused {
		g.state = StateRunning
	}
}

// OnHandPosition stores the latest fingertip sample. Consumed by the
// next Advance; a sample steers at most once, so a stale reading holds
// the heading instead of turning forever.
func (g *Snake) OnHandPosition(s HandPositionSample) {
	g.lastSeen = s.Timestamp
	if g.lostWarned {
		g.lostWarned = false
	}
	if !s.InHandSpace {
		return
	}
	g.latest = s
	g.haveSteer = true
}

// RequestDirection applies a direction override, the same rule the
// hand-space steering obeys: rejected when directly opposite the
// current heading, applied on the next tick otherwise.
func (g *Snake) RequestDirection(d Cell) error {
	if g.state != StateRunning {
		return ErrNotRunning
	}
	if d.X == -g.dir.X && d.Y == -g.dir.Y {
		return ErrReversal
	}
	g.pending = d
	return nil
}

// Advance runs one tick: steer, move, eat, collide, in that order.
func (g *Snake) Advance(now time.Time) {
	if g.state != StateRunning {
		return
	}

	g.checkTracking(now)
	g.steer()
	g.dir = g.pending

	head := g.body[0]
	next := Cell{head.X + g.dir.X, head.Y + g.dir.Y}
	g.body = append([]Cell{next}, g.body...)

	if next == g.food {
		g.score++
		g.grow += g.cfg.Growth
		g.rec.Record(telemetry.KindSnakeFood, now, map[string]any{"score": g.score})
		g.placeFood()
	}

	for _, c := range g.body[1:] {
		if next == c {
			g.gameOver(now, CauseSelfCollision)
			return
		}
	}
	if next.X < 0 || next.Y < 0 || next.X >= g.cfg.GridWidth || next.Y >= g.cfg.GridHeight {
		g.gameOver(now, CauseBoundary)
		return
	}

	if g.grow > 0 {
		g.grow--
	} else {
		g.body = g.body[:len(g.body)-1]
	}
}

// steer maps the pending sample's horizontal displacement from the
// hand-space center to a relative turn: left of the neutral band turns
// 90° counterclockwise, right turns clockwise, inside it goes straight.
func (g *Snake) steer() {
	if !g.haveSteer {
		return
	}
	g.haveSteer = false

	dx := g.latest.X - 0.5
	switch {
	case dx < -g.cfg.NeutralBand:
		g.pending = Cell{g.dir.Y, -g.dir.X}
	case dx > g.cfg.NeutralBand:
		g.pending = Cell{-g.dir.Y, g.dir.X}
	}
}

// checkTracking emits one warning per loss episode once the hand has
// been gone longer than the configured threshold. The heading holds;
// the snake never stops for a lost hand.
func (g *Snake) checkTracking(now time.Time) {
	gone := now.Sub(g.lastSeen)
	if gone <= g.cfg.TrackingWarn || g.lostWarned {
		return
	}
	g.lostWarned = true
	g.rec.Record(telemetry.KindTrackingLost, now, map[string]any{
		"seconds": gone.Seconds(),
	})
}

// placeFood drops food on a uniformly random free cell. With no free
// cell left the food stays put; the next tick ends the game anyway.
func (g *Snake) placeFood() {
	occupied := make(map[Cell]bool, len(g.body))
	for _, c := range g.body {
		occupied[c] = true
	}
	free := make([]Cell, 0, g.cfg.GridWidth*g.cfg.GridHeight-len(g.body))
	for x := 0; x < g.cfg.GridWidth; x++ {
		for y := 0; y < g.cfg.GridHeight; y++ {
			if c := (Cell{x, y}); !occupied[c] {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return
	}
	g.food = free[g.rng.Intn(len(free))]
}

func (g *Snake) gameOver(now time.Time, cause string) {
	g.state = StateGameOver
	g.endedAt = now
	g.cause = cause
	g.rec.Record(telemetry.KindSnakeGameOver, now, map[string]any{
		"score":   g.score,
		"cause":   cause,
		"seconds": now.Sub(g.startedAt).Seconds(),
	})
}

// Finalize produces the terminal summary. A session abandoned before
// any collision carries no cause.
func (g *Snake) Finalize(now time.Time, status telemetry.Status) telemetry.SessionSummary {
	ended := g.endedAt
	if ended.IsZero() {
		ended = now
	}
	return telemetry.SessionSummary{
		Kind:      "snake",
		Status:    status,
		Score:     g.score,
		Cause:     g.cause,
		Duration:  ended.Sub(g.startedAt),
		StartedAt: g.startedAt,
		EndedAt:   ended,
	}
}

// Snapshot is the UI projection of the board.
type Snapshot struct {
	State      State  `json:"state"`
	GridWidth  int    `json:"grid_width"`
	GridHeight int    `json:"grid_height"`
	Body       []Cell `json:"body"`
	Direction  Cell   `json:"direction"`
	Food       Cell   `json:"food"`
	Score      int    `json:"score"`
	Cause      string `json:"cause,omitempty"`
}

// Snapshot returns a copy of the visible game state.
func (g *Snake) Snapshot() Snapshot {
	return Snapshot{
		State:      g.state,
		GridWidth:  g.cfg.GridWidth,
		GridHeight: g.cfg.GridHeight,
		Body:       append([]Cell{}, g.body...),
		Direction:  g.dir,
		Food:       g.food,
		Score:      g.score,
		Cause:      g.cause,
	}
}
