package session

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/mode"
	"github.com/ayusman/mudra/internal/telemetry"
)

// run is the event loop. It is the only goroutine that touches the
// smoother, the active machine or game, and the session identity.
//
// Loop responsibilities:
//  1. Route prediction samples through the smoother to the active mode.
//  2. Route pinch samples to MCQ and fingertip samples to the game.
//  3. Apply queued commands in order: switches finalize the old
//     component (abandoned unless complete) before arming the new one.
//  4. On each tick, advance the game, expire mode feedback, and
//     synthesize a no-hand sample when the sensors have gone quiet.
func (o *Orchestrator) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(o.cfg.Tick)
	defer ticker.Stop()

	o.lastPred = o.now()
	o.publish()

	for {
		select {
		case <-stopCh:
			o.clearActive(o.now())
			o.publish()
			return

		case cmd := <-o.cmdCh:
			// Publish before replying so a caller that issues a command
			// and immediately reads the snapshot sees its effect.
			err := o.handleCommand(cmd)
			o.settle(o.now())
			o.publish()
			cmd.reply <- err
			continue

		case p := <-o.predCh:
			o.handlePrediction(p)

		case s := <-o.selCh:
			if m, ok := o.machine.(*mode.MCQ); ok {
				m.OnSelection(s)
			}

		case h := <-o.posCh:
			if o.game != nil {
				o.game.OnHandPosition(h)
			}

		case <-ticker.C:
			o.handleTick(o.now())
		}

		o.settle(o.now())
		o.publish()
	}
}

func (o *Orchestrator) handleCommand(cmd command) error {
	now := o.now()
	switch cmd.kind {
	case cmdSwitch:
		return o.handleSwitch(cmd.target, now)

	case cmdStopSession:
		if o.machine == nil && o.game == nil {
			return ErrNoActiveSession
		}
		o.clearActive(now)
		return nil

	case cmdPause:
		if o.game == nil {
			return ErrNoActiveGame
		}
		o.game.Pause()
		return nil

	case cmdResume:
		if o.game == nil {
			return ErrNoActiveGame
		}
		o.game.Resume()
		return nil

	case cmdDirection:
		if o.game == nil {
			return ErrNoActiveGame
		}
		return o.game.RequestDirection(cmd.dir)

	case cmdInject:
		if o.machine == nil {
			return ErrNoActiveSession
		}
		o.machine.OnConfirmedGesture(cmd.event)
		return nil
	}
	return nil
}

// handleSwitch builds the new component first so a construction error
// leaves the current session untouched, then performs the atomic
// handoff: finalize, flush the streak, arm.
func (o *Orchestrator) handleSwitch(target string, now time.Time) error {
	rec := o.sessionRecorder()

	var nextMachine mode.Machine
	var nextGame *game.Snake
	switch target {
	case string(mode.KindLearn):
		nextMachine = mode.NewLearn(o.cfg.Learn, rec)
	case string(mode.KindQuiz):
		nextMachine = mode.NewQuiz(o.cfg.Quiz, rec, o.rng)
	case string(mode.KindMCQ):
		nextMachine = mode.NewMCQ(o.cfg.MCQ, rec, o.rng, o.cfg.Weak)
	case string(mode.KindSpelling):
		sp, err := mode.NewSpelling(o.cfg.Spelling, rec)
		if err != nil {
			return err
		}
		nextMachine = sp
	case KindSnake:
		nextGame = game.New(o.cfg.Game, rec, o.rng)
	default:
		return ErrUnknownMode
	}

	o.clearActive(now)
	o.arm(nextMachine, nextGame, target, now)
	return nil
}

// arm installs and starts the new component. Both slots occupied at
// once would route sensors to two consumers, so that state is never
// allowed to stand.
func (o *Orchestrator) arm(m mode.Machine, g *game.Snake, target string, now time.Time) {
	if o.machine != nil || o.game != nil {
		log.Panicf("session: arming %s while another component is active", target)
	}
	o.machine = m
	o.game = g
	o.sessionID = uuid.NewString()
	o.sumRecorded = false

	if m != nil {
		m.Start(now)
	}
	if g != nil {
		g.Start(now)
	}
	o.events.Record(telemetry.NewEvent(telemetry.KindSessionStart, o.cfg.UserID, o.sessionID, now, map[string]any{
		"kind": target,
	}))
	log.Printf("session: started %s (%s)", target, o.sessionID)
}

// handlePrediction runs one classifier sample through the smoother and
// forwards a confirmation to the active mode. Samples are dropped when
// the game owns the sensors.
func (o *Orchestrator) handlePrediction(p gesture.PredictionSample) {
	o.lastPred = p.Timestamp
	o.handPresent = p.HandPresent
	if o.machine == nil {
		return
	}
	if ev, ok := o.smoother.Observe(p); ok {
		o.machine.OnConfirmedGesture(ev)
	}
}

// handleTick advances time-driven behavior for whichever component is
// active and synthesizes a no-hand sample after a sensor gap, so a
// stalled pipeline cannot leave a streak half-built forever.
func (o *Orchestrator) handleTick(now time.Time) {
	if o.machine != nil {
		o.machine.OnTick(now)
		if now.Sub(o.lastPred) > o.cfg.SensorTimeout {
			o.handlePrediction(gesture.PredictionSample{Timestamp: now, HandPresent: false})
		}
	}
	if o.game != nil {
		o.game.Advance(now)
	}
}

// settle records the terminal summary as soon as the active component
// reaches its natural end, so completion time is the machine's own.
func (o *Orchestrator) settle(now time.Time) {
	if o.sumRecorded {
		return
	}
	if (o.machine != nil && o.machine.Done()) || (o.game != nil && o.game.Done()) {
		o.recordSummary(now)
	}
}

// clearActive finalizes and discards the active component. Incomplete
// sessions are summarized as abandoned; the streak never survives a
// handoff.
func (o *Orchestrator) clearActive(now time.Time) {
	if o.machine == nil && o.game == nil {
		return
	}
	if !o.sumRecorded {
		o.recordSummary(now)
	}
	o.machine = nil
	o.game = nil
	o.sessionID = ""
	o.smoother.Reset()
}

// recordSummary finalizes the active component exactly once, stamps
// identity, and fans the summary out to telemetry and the archive.
func (o *Orchestrator) recordSummary(now time.Time) {
	var sum telemetry.SessionSummary
	switch {
	case o.machine != nil:
		sum = o.machine.Finalize(now, statusFor(o.machine.Done()))
	case o.game != nil:
		sum = o.game.Finalize(now, statusFor(o.game.Done()))
	default:
		return
	}
	o.sumRecorded = true

	sum.SessionID = o.sessionID
	sum.UserID = o.cfg.UserID
	o.lastSummary = &sum
	o.events.Record(telemetry.SummaryEvent(sum))
	if o.cfg.Summaries != nil {
		if err := o.cfg.Summaries.SaveSummary(sum); err != nil {
			log.Printf("session: archive summary %s: %v", sum.SessionID, err)
		}
	}
	log.Printf("session: %s %s (score %d, %d/%d correct)",
		sum.Kind, sum.Status, sum.Score, sum.Correct, sum.Attempts)
}

func statusFor(done bool) telemetry.Status {
	if done {
		return telemetry.StatusCompleted
	}
	return telemetry.StatusAbandoned
}

// sessionRecorder stamps user and session identity onto component
// events. The session id is read at record time, after arm has set it.
func (o *Orchestrator) sessionRecorder() telemetry.Recorder {
	return telemetry.RecorderFunc(func(kind string, ts time.Time, payload map[string]any) {
		o.events.Record(telemetry.NewEvent(kind, o.cfg.UserID, o.sessionID, ts, payload))
	})
}

// publish refreshes the snapshot read by the HTTP and WebSocket layers.
func (o *Orchestrator) publish() {
	snap := Snapshot{
		UserID:      o.cfg.UserID,
		SessionID:   o.sessionID,
		HandPresent: o.handPresent,
		LastSummary: o.lastSummary,
		UpdatedAt:   o.now(),
	}
	st := o.smoother.Streak()
	snap.Streak = Streak{Class: st.Class, Count: st.Count, Required: o.smoother.Required()}

	switch {
	case o.machine != nil:
		ms := o.machine.Snapshot()
		snap.Mode = &ms
		snap.Active = string(o.machine.Kind())
	case o.game != nil:
		gs := o.game.Snapshot()
		snap.Game = &gs
		snap.Active = KindSnake
	}

	o.snapMu.Lock()
	o.snap = snap
	o.snapMu.Unlock()
}
