package telemetry

import (
	"sort"
	"time"
)

// TargetProgress counts outcomes for one letter or word. Increments only.
type TargetProgress struct {
	Attempts    int `json:"attempts"`
	Correct     int `json:"correct"`
	Completions int `json:"completions,omitempty"`
}

// ProgressRecord is the durable per-user progress document. One per user,
// mutated only by the aggregator, persisted across sessions.
type ProgressRecord struct {
	Version   int                        `json:"version"`
	UserID    string                     `json:"user"`
	Letters   map[string]*TargetProgress `json:"letters"`
	Words     map[string]*TargetProgress `json:"words"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// progressVersion is the current document schema version.
const progressVersion = 1

// NewProgressRecord creates an empty progress document for the user.
func NewProgressRecord(userID string) *ProgressRecord {
	return &ProgressRecord{
		Version: progressVersion,
		UserID:  userID,
		Letters: make(map[string]*TargetProgress),
		Words:   make(map[string]*TargetProgress),
	}
}

// Letter returns the bucket for a letter, creating it on first use.
func (p *ProgressRecord) Letter(letter string) *TargetProgress {
	if p.Letters == nil {
		p.Letters = make(map[string]*TargetProgress)
	}
	tp, ok := p.Letters[letter]
	if !ok {
		tp = &TargetProgress{}
		p.Letters[letter] = tp
	}
	return tp
}

// Word returns the bucket for a word, creating it on first use.
func (p *ProgressRecord) Word(word string) *TargetProgress {
	if p.Words == nil {
		p.Words = make(map[string]*TargetProgress)
	}
	tp, ok := p.Words[word]
	if !ok {
		tp = &TargetProgress{}
		p.Words[word] = tp
	}
	return tp
}

// Clone returns a deep copy safe to hand across goroutines.
func (p *ProgressRecord) Clone() *ProgressRecord {
	c := &ProgressRecord{
		Version:   p.Version,
		UserID:    p.UserID,
		Letters:   make(map[string]*TargetProgress, len(p.Letters)),
		Words:     make(map[string]*TargetProgress, len(p.Words)),
		UpdatedAt: p.UpdatedAt,
	}
	for k, v := range p.Letters {
		cp := *v
		c.Letters[k] = &cp
	}
	for k, v := range p.Words {
		cp := *v
		c.Words[k] = &cp
	}
	return c
}

// WeakLetters ranks letters the user struggles with: at least minAttempts
// attempts and accuracy below maxAccuracy, lowest accuracy first, ties
// broken alphabetically. At most k letters are returned.
func (p *ProgressRecord) WeakLetters(minAttempts int, maxAccuracy float64, k int) []string {
	type ranked struct {
		letter   string
		accuracy float64
	}
	var candidates []ranked
	for letter, tp := range p.Letters {
		if tp.Attempts < minAttempts {
			continue
		}
		acc := float64(tp.Correct) / float64(tp.Attempts)
		if acc >= maxAccuracy {
			continue
		}
		candidates = append(candidates, ranked{letter: letter, accuracy: acc})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].accuracy != candidates[j].accuracy {
			return candidates[i].accuracy < candidates[j].accuracy
		}
		return candidates[i].letter < candidates[j].letter
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	letters := make([]string, len(candidates))
	for i, c := range candidates {
		letters[i] = c.letter
	}
	return letters
}
