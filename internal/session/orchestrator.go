// Package session owns the single active learning session. One event
// loop goroutine routes sensor samples to the active mode machine or
// game loop, applies mode switches atomically, and records terminal
// summaries. At most one component is ever active; samples are never
// routed to more than one consumer.
package session

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/mode"
	"github.com/ayusman/mudra/internal/telemetry"
)

var (
	// ErrNoActiveSession rejects commands that need an active mode.
	ErrNoActiveSession = errors.New("session: no active session")
	// ErrNoActiveGame rejects game commands while no game is running.
	ErrNoActiveGame = errors.New("session: no active game")
	// ErrUnknownMode rejects a switch to an unrecognized mode name.
	ErrUnknownMode = errors.New("session: unknown mode")
	// ErrStopped rejects commands after the orchestrator has shut down.
	ErrStopped = errors.New("session: orchestrator stopped")
)

// KindSnake is the switch target for the game loop, alongside the four
// mode kinds.
const KindSnake = "snake"

// EventSink receives engine telemetry. *telemetry.Aggregator satisfies it.
type EventSink interface {
	Record(ev telemetry.Event)
}

// SummarySink archives terminal session summaries.
type SummarySink interface {
	SaveSummary(sum telemetry.SessionSummary) error
}

// Config wires the orchestrator. Sinks may be nil; the loop then only
// keeps in-memory state.
type Config struct {
	UserID        string
	Tick          time.Duration // drives game advance and feedback expiry
	SensorTimeout time.Duration // gap after which a no-hand sample is synthesized
	Smoother      gesture.SmootherConfig
	Learn         mode.LearnConfig
	Quiz          mode.QuizConfig
	MCQ           mode.MCQConfig
	Spelling      mode.SpellingConfig
	Game          game.Config

	Events    EventSink
	Summaries SummarySink
	Weak      mode.WeakFunc
	Now       func() time.Time // defaults to time.Now
	Seed      int64            // rng seed, 0 seeds from the clock
}

// Streak is the UI projection of the smoothing engine's progress toward
// the next confirmation.
type Streak struct {
	Class    string `json:"class,omitempty"`
	Count    int    `json:"count"`
	Required int    `json:"required"`
}

// Snapshot is the read-only projection of the whole session, served
// over HTTP and pushed over WebSocket.
type Snapshot struct {
	UserID      string                    `json:"user"`
	SessionID   string                    `json:"session,omitempty"`
	Active      string                    `json:"active,omitempty"`
	HandPresent bool                      `json:"hand_present"`
	Streak      Streak                    `json:"streak"`
	Mode        *mode.Snapshot            `json:"mode,omitempty"`
	Game        *game.Snapshot            `json:"game,omitempty"`
	LastSummary *telemetry.SessionSummary `json:"last_summary,omitempty"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

type commandKind int

const (
	cmdSwitch commandKind = iota
	cmdStopSession
	cmdPause
	cmdResume
	cmdDirection
	cmdInject
)

type command struct {
	kind   commandKind
	target string
	dir    game.Cell
	event  gesture.ConfirmedGestureEvent
	reply  chan error
}

// Orchestrator routes samples and commands to the single active
// component. All session state lives on the event loop goroutine;
// public methods communicate with it through channels only.
type Orchestrator struct {
	cfg    Config
	events EventSink
	now    func() time.Time
	rng    *rand.Rand

	// Sensor channels keep the latest value only: a slow loop reads
	// fresh data, never a backlog.
	predCh chan gesture.PredictionSample
	posCh  chan game.HandPositionSample
	selCh  chan gesture.SelectionSample
	// Commands are lossless and ordered.
	cmdCh chan command

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}

	// Loop-owned state. Only the run goroutine touches these.
	smoother    *gesture.Smoother
	machine     mode.Machine
	game        *game.Snake
	sessionID   string
	sumRecorded bool
	lastPred    time.Time
	handPresent bool
	lastSummary *telemetry.SessionSummary

	snapMu sync.RWMutex
	snap   Snapshot
}

// New creates a stopped orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Events == nil {
		cfg.Events = eventSinkFunc(func(telemetry.Event) {})
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Now().UnixNano()
	}
	o := &Orchestrator{
		cfg:      cfg,
		events:   cfg.Events,
		now:      cfg.Now,
		rng:      rand.New(rand.NewSource(seed)),
		predCh:   make(chan gesture.PredictionSample, 1),
		posCh:    make(chan game.HandPositionSample, 1),
		selCh:    make(chan gesture.SelectionSample, 1),
		cmdCh:    make(chan command, 16),
		smoother: gesture.NewSmoother(cfg.Smoother),
	}
	o.snap = Snapshot{UserID: cfg.UserID, Streak: Streak{Required: o.smoother.Required()}}
	return o
}

type eventSinkFunc func(ev telemetry.Event)

func (f eventSinkFunc) Record(ev telemetry.Event) { f(ev) }

// Start launches the event loop.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopCh != nil {
		return nil
	}
	o.stopCh = make(chan struct{})
	o.doneCh = make(chan struct{})
	go o.run(o.stopCh, o.doneCh)
	log.Println("session: orchestrator started")
	return nil
}

// Stop finalizes the active component and halts the loop.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	stopCh, doneCh := o.stopCh, o.doneCh
	o.stopCh = nil
	o.mu.Unlock()
	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
	log.Println("session: orchestrator stopped")
}

// OfferPrediction hands the loop the newest classifier sample. A stale
// unread sample is replaced, never queued.
func (o *Orchestrator) OfferPrediction(p gesture.PredictionSample) {
	select {
	case o.predCh <- p:
	default:
		select {
		case <-o.predCh:
		default:
		}
		select {
		case o.predCh <- p:
		default:
		}
	}
}

// OfferPosition hands the loop the newest fingertip sample.
func (o *Orchestrator) OfferPosition(h game.HandPositionSample) {
	select {
	case o.posCh <- h:
	default:
		select {
		case <-o.posCh:
		default:
		}
		select {
		case o.posCh <- h:
		default:
		}
	}
}

// OfferSelection hands the loop the newest pinch sample.
func (o *Orchestrator) OfferSelection(s gesture.SelectionSample) {
	select {
	case o.selCh <- s:
	default:
		select {
		case <-o.selCh:
		default:
		}
		select {
		case o.selCh <- s:
		default:
		}
	}
}

// SwitchMode finalizes the active component, if any, and starts the
// named mode or game. The handoff is atomic within the event loop.
func (o *Orchestrator) SwitchMode(target string) error {
	return o.do(command{kind: cmdSwitch, target: target})
}

// StopSession finalizes the active component and goes idle.
func (o *Orchestrator) StopSession() error {
	return o.do(command{kind: cmdStopSession})
}

// Pause suspends the running game.
func (o *Orchestrator) Pause() error {
	return o.do(command{kind: cmdPause})
}

// Resume continues a paused game.
func (o *Orchestrator) Resume() error {
	return o.do(command{kind: cmdResume})
}

// RequestDirection forwards a direction override to the game.
func (o *Orchestrator) RequestDirection(d game.Cell) error {
	return o.do(command{kind: cmdDirection, dir: d})
}

// InjectGesture feeds a confirmed gesture directly to the active mode,
// bypassing the smoothing engine. Used by the command API.
func (o *Orchestrator) InjectGesture(class string, confidence float64) error {
	ev := gesture.ConfirmedGestureEvent{Class: class, Confidence: confidence, Timestamp: o.now()}
	return o.do(command{kind: cmdInject, event: ev})
}

// Snapshot returns the latest published projection.
func (o *Orchestrator) Snapshot() Snapshot {
	o.snapMu.RLock()
	defer o.snapMu.RUnlock()
	return o.snap
}

// do submits one command and waits for the loop's answer.
func (o *Orchestrator) do(cmd command) error {
	o.mu.Lock()
	running := o.stopCh != nil
	doneCh := o.doneCh
	o.mu.Unlock()
	if !running {
		return ErrStopped
	}

	cmd.reply = make(chan error, 1)
	select {
	case o.cmdCh <- cmd:
	case <-doneCh:
		return ErrStopped
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-doneCh:
		return ErrStopped
	}
}
