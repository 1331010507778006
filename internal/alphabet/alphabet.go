// Package alphabet defines the fixed gesture class set the engine operates on.
package alphabet

import "strings"

// Control classes emitted by the classifier alongside the letters.
const (
	// ClassDelete is the "erase last input" control gesture.
	ClassDelete = "del"
	// ClassNothing is the classifier's explicit no-gesture output.
	ClassNothing = "nothing"
	// ClassSpace is the word-separator control gesture.
	ClassSpace = "space"
)

// letters is the learnable subset, A through Z in teaching order.
var letters = func() []string {
	ls := make([]string, 26)
	for i := 0; i < 26; i++ {
		ls[i] = string(rune('A' + i))
	}
	return ls
}()

// classes is the full class set the classifier is trained on.
var classes = append(append([]string{}, letters...), ClassDelete, ClassNothing, ClassSpace)

// Letters returns the learnable letters A-Z in teaching order.
// The returned slice is a copy and safe to shuffle.
func Letters() []string {
	return append([]string{}, letters...)
}

// Classes returns every class the classifier can emit, letters first.
// The returned slice is a copy.
func Classes() []string {
	return append([]string{}, classes...)
}

// NumClasses is the size of the full class set.
func NumClasses() int {
	return len(classes)
}

// IsLetter reports whether class is one of the learnable letters A-Z.
func IsLetter(class string) bool {
	return len(class) == 1 && class[0] >= 'A' && class[0] <= 'Z'
}

// IsClass reports whether class belongs to the alphabet, letter or control.
func IsClass(class string) bool {
	if IsLetter(class) {
		return true
	}
	switch class {
	case ClassDelete, ClassNothing, ClassSpace:
		return true
	}
	return false
}

// ValidateWord checks that a spelling target decomposes into learnable
// letters. It returns the normalized (upper-cased, trimmed) word.
func ValidateWord(word string) (string, bool) {
	w := strings.ToUpper(strings.TrimSpace(word))
	if w == "" {
		return "", false
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return w, true
}
