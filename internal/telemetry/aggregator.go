package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/alphabet"
)

// AggregatorConfig tunes the aggregator. Dir and UserID are required.
type AggregatorConfig struct {
	Dir                string        // persistence directory
	UserID             string        // raw user id, sanitized internally
	QueueSize          int           // event queue capacity
	Checkpoint         time.Duration // rollup checkpoint interval
	SuggestMinAttempts int           // weak-letter minimum attempts
	SuggestAccuracy    float64       // weak-letter accuracy ceiling
}

// Aggregator is the single consumer of the engine's telemetry stream. It
// appends every event to a per-user JSONL log, applies rollups in event
// order, and checkpoints the derived documents so an unexpected
// termination loses at most the unflushed tail.
type Aggregator struct {
	cfg    AggregatorConfig
	userID string

	eventsPath   string
	progressPath string
	statsPath    string

	queue chan Event
	done  chan struct{}

	closeMu sync.RWMutex
	closed  bool

	// mu guards the persistence write path and the derived state below.
	mu        sync.Mutex
	events    *os.File
	progress  *ProgressRecord
	stats     *Stats
	lastErr   error
	writeErrs int
	dropped   int
}

// Open loads (or creates) the user's durable documents under cfg.Dir and
// starts the writer goroutine. The caller owns the aggregator for the
// lifetime of the user session and must Close it to flush the tail.
func Open(cfg AggregatorConfig) (*Aggregator, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("telemetry: data directory not set")
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 256
	}
	if cfg.Checkpoint <= 0 {
		cfg.Checkpoint = 5 * time.Second
	}

	user := SanitizeUserID(cfg.UserID)
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	a := &Aggregator{
		cfg:          cfg,
		userID:       user,
		eventsPath:   filepath.Join(cfg.Dir, "events_"+user+".jsonl"),
		progressPath: filepath.Join(cfg.Dir, "progress_"+user+".json"),
		statsPath:    filepath.Join(cfg.Dir, "stats_"+user+".json"),
		queue:        make(chan Event, cfg.QueueSize),
		done:         make(chan struct{}),
	}

	a.progress = NewProgressRecord(user)
	if err := loadJSON(a.progressPath, a.progress); err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	a.stats = NewStats(user)
	if err := loadJSON(a.statsPath, a.stats); err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	f, err := os.OpenFile(a.eventsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	a.events = f

	go a.run()
	return a, nil
}

// UserID returns the sanitized user id the documents are keyed by.
func (a *Aggregator) UserID() string {
	return a.userID
}

// Record appends one event to the durable log. The queue is lossless and
// ordered; Record blocks rather than dropping when the writer is behind.
// Recording on a closed aggregator is counted and logged, never silent.
func (a *Aggregator) Record(ev Event) {
	a.closeMu.RLock()
	defer a.closeMu.RUnlock()
	if a.closed {
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
		log.Printf("telemetry: event %s dropped, aggregator closed", ev.Kind)
		return
	}
	a.queue <- ev
}

// Close drains the queue, writes a final checkpoint, and releases the log
// file. Safe to call once.
func (a *Aggregator) Close() error {
	a.closeMu.Lock()
	if a.closed {
		a.closeMu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.closeMu.Unlock()

	<-a.done

	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.events.Close()
	a.events = nil
	if err != nil {
		return fmt.Errorf("close event log: %w", err)
	}
	return a.lastErr
}

// run is the single writer goroutine: events in order, checkpoints on a
// ticker, final flush on shutdown.
func (a *Aggregator) run() {
	ticker := time.NewTicker(a.cfg.Checkpoint)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-a.queue:
			if !ok {
				a.checkpoint()
				close(a.done)
				return
			}
			a.apply(ev)
		case <-ticker.C:
			a.checkpoint()
		}
	}
}

// apply writes one event to the log and folds it into the rollups.
func (a *Aggregator) apply(ev Event) {
	line, err := json.Marshal(ev)
	if err != nil {
		a.noteErr(fmt.Errorf("marshal event %s: %w", ev.Kind, err))
		return
	}
	line = append(line, '\n')

	a.mu.Lock()
	if a.events != nil {
		if _, err := a.events.Write(line); err != nil {
			a.noteErrLocked(fmt.Errorf("append event %s: %w", ev.Kind, err))
		}
	}
	a.rollup(ev)
	a.mu.Unlock()
}

// rollup updates the derived documents from one event. Unknown kinds are
// logged and otherwise ignored so new producers never corrupt old state.
// Callers hold mu.
func (a *Aggregator) rollup(ev Event) {
	p := ev.Payload
	switch ev.Kind {
	case KindSessionStart:
		if kind := payloadString(p, "kind"); kind == "snake" {
			a.stats.Snake.Sessions++
		} else if kind != "" {
			a.stats.Mode(kind) // materialize the bucket
		}
	case KindGestureAttempt:
		mode := payloadString(p, "mode")
		target := payloadString(p, "target")
		correct := payloadBool(p, "correct")
		ms := a.stats.Mode(mode)
		ms.Attempts++
		ms.ConfSum += payloadFloat(p, "confidence")
		if correct {
			ms.Correct++
		}
		if alphabet.IsLetter(target) {
			tp := a.progress.Letter(target)
			tp.Attempts++
			if correct {
				tp.Correct++
			}
		}
	case KindMCQQuestion:
		a.stats.Target("mcq", payloadString(p, "target")).Questions++
	case KindMCQAnswer:
		target := payloadString(p, "target")
		correct := payloadBool(p, "correct")
		ms := a.stats.Mode("mcq")
		ms.Attempts++
		if correct {
			ms.Correct++
		}
		ts := a.stats.Target("mcq", target)
		ts.Attempts++
		ts.RTSumSec += payloadFloat(p, "reaction_sec")
		if correct {
			ts.Correct++
		}
		if alphabet.IsLetter(target) {
			tp := a.progress.Letter(target)
			tp.Attempts++
			if correct {
				tp.Correct++
			}
		}
	case KindSpellingWord:
		word := payloadString(p, "word")
		wp := a.progress.Word(word)
		wp.Attempts++
		wp.Correct++
		wp.Completions++
		ts := a.stats.Target("spelling", word)
		ts.Completions++
		ts.TimeSumSec += payloadFloat(p, "seconds")
	case KindSnakeFood:
		a.stats.Snake.FoodEaten++
	case KindSnakeGameOver:
		a.stats.Snake.Deaths++
		a.stats.Snake.TimeSumSec += payloadFloat(p, "seconds")
		if score := int(payloadFloat(p, "score")); score > a.stats.Snake.BestScore {
			a.stats.Snake.BestScore = score
		}
	case KindSessionSummary:
		kind := payloadString(p, "kind")
		if kind == "" || kind == "snake" {
			return
		}
		ms := a.stats.Mode(kind)
		ms.TimeSumSec += payloadFloat(p, "seconds")
		if payloadString(p, "status") == string(StatusCompleted) {
			ms.Completions++
		}
	case KindTrackingLost:
		// Warning only; nothing to roll up.
	default:
		log.Printf("telemetry: no rollup for event kind %q", ev.Kind)
	}
}

// checkpoint atomically persists both derived documents.
func (a *Aggregator) checkpoint() {
	a.mu.Lock()
	now := time.Now()
	a.progress.UpdatedAt = now
	a.stats.UpdatedAt = now
	progressData, perr := json.MarshalIndent(a.progress, "", "  ")
	statsData, serr := json.MarshalIndent(a.stats, "", "  ")
	a.mu.Unlock()

	if perr != nil {
		a.noteErr(fmt.Errorf("marshal progress: %w", perr))
	} else if err := writeFileAtomic(a.progressPath, progressData); err != nil {
		a.noteErr(fmt.Errorf("checkpoint progress: %w", err))
	}
	if serr != nil {
		a.noteErr(fmt.Errorf("marshal stats: %w", serr))
	} else if err := writeFileAtomic(a.statsPath, statsData); err != nil {
		a.noteErr(fmt.Errorf("checkpoint stats: %w", err))
	}
}

// Progress returns a deep copy of the current progress document.
func (a *Aggregator) Progress() *ProgressRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress.Clone()
}

// Stats returns a deep copy of the current statistics document.
func (a *Aggregator) Stats() *Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats.Clone()
}

// WeakLetters returns up to k letters the user is struggling with, per
// the configured thresholds. Used to bias target selection.
func (a *Aggregator) WeakLetters(k int) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress.WeakLetters(a.cfg.SuggestMinAttempts, a.cfg.SuggestAccuracy, k)
}

// LastError returns the most recent persistence failure, if any. The
// session keeps running through write failures; this is how they surface.
func (a *Aggregator) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// WriteErrors returns how many persistence failures have occurred.
func (a *Aggregator) WriteErrors() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeErrs + a.dropped
}

func (a *Aggregator) noteErr(err error) {
	a.mu.Lock()
	a.noteErrLocked(err)
	a.mu.Unlock()
}

func (a *Aggregator) noteErrLocked(err error) {
	a.lastErr = err
	a.writeErrs++
	log.Printf("telemetry: %v", err)
}

// loadJSON reads a document if it exists; a missing file leaves v untouched.
func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// writeFileAtomic writes via a temp file and rename so readers never see a
// torn document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
