package alphabet

import "testing"

func TestLetters(t *testing.T) {
	ls := Letters()
	if len(ls) != 26 {
		t.Fatalf("Letters() returned %d letters, want 26", len(ls))
	}
	if ls[0] != "A" || ls[25] != "Z" {
		t.Errorf("Letters() = %q..%q, want A..Z", ls[0], ls[25])
	}

	// Mutating the copy must not affect subsequent calls.
	ls[0] = "mutated"
	if got := Letters()[0]; got != "A" {
		t.Errorf("Letters() after mutation = %q, want A", got)
	}
}

func TestClasses(t *testing.T) {
	cs := Classes()
	if len(cs) != 29 {
		t.Fatalf("Classes() returned %d classes, want 29", len(cs))
	}
	if NumClasses() != 29 {
		t.Errorf("NumClasses() = %d, want 29", NumClasses())
	}

	for _, want := range []string{ClassDelete, ClassNothing, ClassSpace} {
		found := false
		for _, c := range cs {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Classes() missing control class %q", want)
		}
	}
}

func TestIsLetter(t *testing.T) {
	tests := []struct {
		class string
		want  bool
	}{
		{"A", true},
		{"Z", true},
		{"a", false},
		{"del", false},
		{"nothing", false},
		{"", false},
		{"AB", false},
	}

	for _, tt := range tests {
		if got := IsLetter(tt.class); got != tt.want {
			t.Errorf("IsLetter(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestIsClass(t *testing.T) {
	for _, c := range []string{"A", "Q", "del", "nothing", "space"} {
		if !IsClass(c) {
			t.Errorf("IsClass(%q) = false, want true", c)
		}
	}
	for _, c := range []string{"", "1", "aa", "DEL"} {
		if IsClass(c) {
			t.Errorf("IsClass(%q) = true, want false", c)
		}
	}
}

func TestValidateWord(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"hello", "HELLO", true},
		{"  Yes ", "YES", true},
		{"LOVE", "LOVE", true},
		{"", "", false},
		{"   ", "", false},
		{"na me", "", false},
		{"no1", "", false},
	}

	for _, tt := range tests {
		got, ok := ValidateWord(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ValidateWord(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
