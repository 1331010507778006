package telemetry

import "testing"

func TestProgressRecordBuckets(t *testing.T) {
	p := NewProgressRecord("guest")

	p.Letter("A").Attempts++
	p.Letter("A").Correct++
	p.Word("HELLO").Completions++

	if p.Letters["A"].Attempts != 1 || p.Letters["A"].Correct != 1 {
		t.Errorf("letter A = %+v, want attempts 1 correct 1", p.Letters["A"])
	}
	if p.Words["HELLO"].Completions != 1 {
		t.Errorf("word HELLO = %+v, want 1 completion", p.Words["HELLO"])
	}
}

func TestProgressCloneIsDeep(t *testing.T) {
	p := NewProgressRecord("guest")
	p.Letter("A").Attempts = 5

	c := p.Clone()
	c.Letter("A").Attempts = 99

	if p.Letters["A"].Attempts != 5 {
		t.Errorf("clone mutation leaked: original attempts = %d, want 5", p.Letters["A"].Attempts)
	}
}

func TestWeakLettersRanking(t *testing.T) {
	p := NewProgressRecord("guest")
	set := func(letter string, attempts, correct int) {
		tp := p.Letter(letter)
		tp.Attempts = attempts
		tp.Correct = correct
	}
	set("A", 10, 2) // 0.2
	set("B", 10, 2) // 0.2, tie with A
	set("C", 10, 5) // 0.5
	set("D", 2, 0)  // below attempt floor
	set("E", 10, 9) // 0.9, above accuracy ceiling

	got := p.WeakLetters(5, 0.7, 10)
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("WeakLetters = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("WeakLetters = %v, want %v", got, want)
		}
	}

	// k truncates.
	if got := p.WeakLetters(5, 0.7, 2); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("WeakLetters(k=2) = %v, want [A B]", got)
	}
}

func TestStatsBuckets(t *testing.T) {
	s := NewStats("guest")
	s.Mode("quiz").Attempts = 3
	s.Target("mcq", "A").Questions = 2

	if s.Modes["quiz"].Attempts != 3 {
		t.Errorf("quiz attempts = %d, want 3", s.Modes["quiz"].Attempts)
	}
	if s.Targets["mcq/A"].Questions != 2 {
		t.Errorf("mcq/A questions = %d, want 2", s.Targets["mcq/A"].Questions)
	}

	c := s.Clone()
	c.Mode("quiz").Attempts = 77
	if s.Modes["quiz"].Attempts != 3 {
		t.Error("Clone() shares mode bucket with original")
	}
}
