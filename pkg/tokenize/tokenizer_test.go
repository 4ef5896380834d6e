package tokenize

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tk := Default()

	testCases := []struct {
		input       string
		expected    []string
		description string
	}{
		{"", []string{}, "Empty input"},
		{"   \t\n ", []string{}, "Whitespace only"},
		{"the cat sat", []string{"the", "cat", "sat"}, "Plain words"},
		{"The Cat SAT", []string{"the", "cat", "sat"}, "Case folding"},
		{"Hello, world!", []string{"hello", "world"}, "Trailing punctuation"},
		{"\"quoted\" (words)", []string{"quoted", "words"}, "Surrounding punctuation"},
		{"don't stop", []string{"don't", "stop"}, "Inner apostrophe kept"},
		{"e-mail me", []string{"e-mail", "me"}, "Inner hyphen kept"},
		{"--- ... !!!", []string{}, "Punctuation only"},
		{"a  b\tc\nd", []string{"a", "b", "c", "d"}, "Mixed whitespace"},
		{"ＡＢＣ def", []string{"abc", "def"}, "Full-width forms normalized"},
		{"price $5", []string{"price", "5"}, "Leading symbol stripped"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := tk.Tokenize(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Input '%s': expected %q, got %q", tc.input, tc.expected, got)
			}
		})
	}
}

func TestTokenizeKeepCase(t *testing.T) {
	tk := New(Options{KeepCase: true})
	got := tk.Tokenize("Hello World.")
	want := []string{"Hello", "World"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	tk := Default()
	input := "One two, THREE; four!"
	first := tk.Tokenize(input)
	for i := 0; i < 10; i++ {
		if got := tk.Tokenize(input); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: expected %q, got %q", i, first, got)
		}
	}
}

func TestTail(t *testing.T) {
	tk := Default()

	testCases := []struct {
		input       string
		n           int
		expected    []string
		description string
	}{
		{"the quick brown fox", 2, []string{"brown", "fox"}, "Last two"},
		{"fox", 2, []string{"fox"}, "Fewer tokens than requested"},
		{"the quick brown fox", 0, []string{}, "Zero"},
		{"", 3, []string{}, "Empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := tk.Tail(tc.input, tc.n)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Input '%s' n=%d: expected %q, got %q", tc.input, tc.n, tc.expected, got)
			}
		})
	}
}

func TestEndsWithSpace(t *testing.T) {
	testCases := map[string]bool{
		"":         true,
		"the cat ": true,
		"the cat":  false,
		"the\n":    true,
		"ca":       false,
	}
	for input, want := range testCases {
		if got := EndsWithSpace(input); got != want {
			t.Errorf("Input '%s': expected %v, got %v", input, want, got)
		}
	}
}
