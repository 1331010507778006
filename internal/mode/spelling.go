package mode

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/alphabet"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/telemetry"
)

// SpellingConfig tunes the spelling mode.
type SpellingConfig struct {
	Words            []string      // targets, walked in order
	FeedbackDuration time.Duration // how long results stay on display
}

// Spelling decomposes each word into its letters and advances a cursor
// one correct confirmation at a time, like Learn. A wrong letter records
// an incorrect attempt without moving the cursor. Finishing a word emits
// a word-completion event; finishing the last word completes the session.
type Spelling struct {
	base
	words     []string
	wordIdx   int
	cursor    int
	wordBegan time.Time
}

// NewSpelling creates the spelling machine. A malformed word list (empty
// or containing anything outside A-Z) is fatal to starting this mode and
// reported before any session state exists.
func NewSpelling(cfg SpellingConfig, rec telemetry.Recorder) (*Spelling, error) {
	if len(cfg.Words) == 0 {
		return nil, fmt.Errorf("spelling: word list is empty")
	}
	words := make([]string, len(cfg.Words))
	for i, raw := range cfg.Words {
		w, ok := alphabet.ValidateWord(raw)
		if !ok {
			return nil, fmt.Errorf("spelling: invalid word %q at index %d", raw, i)
		}
		words[i] = w
	}
	return &Spelling{
		base:  newBase(KindSpelling, rec, cfg.FeedbackDuration),
		words: words,
	}, nil
}

// Start moves Idle to AwaitingGesture.
func (sp *Spelling) Start(now time.Time) {
	if sp.state != StateIdle {
		return
	}
	sp.start(now)
	sp.wordBegan = now
}

// Word returns the word currently being spelled.
func (sp *Spelling) Word() string {
	if sp.wordIdx >= len(sp.words) {
		return ""
	}
	return sp.words[sp.wordIdx]
}

// Target returns the letter the cursor is on.
func (sp *Spelling) Target() string {
	word := sp.Word()
	if word == "" || sp.cursor >= len(word) {
		return ""
	}
	return string(word[sp.cursor])
}

// OnConfirmedGesture scores one event against the cursor letter.
func (sp *Spelling) OnConfirmedGesture(ev gesture.ConfirmedGestureEvent) {
	if sp.state != StateAwaitingGesture {
		return
	}
	target := sp.Target()
	if target == "" {
		return
	}

	sp.state = StateEvaluating
	correct := ev.Class == target
	sp.recordAttempt(target, ev.Class, correct, ev.Confidence, ev.Timestamp)

	if correct {
		sp.cursor++
		if sp.cursor >= len(sp.Word()) {
			sp.completeWord(ev.Timestamp)
			if sp.wordIdx >= len(sp.words) {
				sp.state = StateComplete
				return
			}
		}
	}
	sp.enterFeedback(correct, target, ev.Class, ev.Timestamp)
}

// completeWord records the completion and moves to the next word.
func (sp *Spelling) completeWord(at time.Time) {
	word := sp.Word()
	sp.score++
	sp.rec.Record(telemetry.KindSpellingWord, at, map[string]any{
		"word":    word,
		"seconds": at.Sub(sp.wordBegan).Seconds(),
	})
	sp.wordIdx++
	sp.cursor = 0
	sp.wordBegan = at
}

// OnTick expires the feedback display.
func (sp *Spelling) OnTick(now time.Time) {
	sp.tickFeedback(now)
}

// Finalize produces the terminal summary.
func (sp *Spelling) Finalize(now time.Time, status telemetry.Status) telemetry.SessionSummary {
	return sp.finalize(now, status, sp.Word())
}

// Snapshot returns the UI projection.
func (sp *Spelling) Snapshot() Snapshot {
	s := sp.snapshot()
	s.Target = sp.Target()
	s.Word = sp.Word()
	s.Cursor = sp.cursor
	s.Round = sp.wordIdx + 1
	if s.Round > len(sp.words) {
		s.Round = len(sp.words)
	}
	s.Rounds = len(sp.words)
	return s
}
