package ingest

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \n\t \n ", ""},
		{
			"collapses space runs",
			"The   insured\tvehicle  was parked",
			"The insured vehicle was parked",
		},
		{
			"strips control characters",
			"front\x0cmatter\rleft over",
			"frontmatterleft over",
		},
		{
			"nfc composes combining marks",
			"Résumé attached",
			"Résumé attached",
		},
		{
			"rejoins hyphenated line break",
			"the insur-\nance carrier responded",
			"the insurance carrier responded",
		},
		{
			"joins lines within a paragraph",
			"The claimant reported\nthe loss by phone.",
			"The claimant reported the loss by phone.",
		},
		{
			"keeps blank-line paragraph breaks",
			"First paragraph here.\n\nSecond paragraph here.",
			"First paragraph here.\n\nSecond paragraph here.",
		},
		{
			"caps runs of blank lines",
			"First block.\n\n\n\n\nSecond block.",
			"First block.\n\nSecond block.",
		},
		{
			"drops whitespace-only blocks",
			"First block.\n\n \t \n\nSecond block.",
			"First block.\n\nSecond block.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFixLineBreaks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"dehyphenates across lines",
			"compre-\nhensive coverage",
			"comprehensive coverage",
		},
		{
			"trailing hyphen on last line stays",
			"see attach-",
			"see attach-",
		},
		{
			"joins mid-word break with lowercase continuation",
			"the adjuster\nreviewed the file",
			"the adjuster reviewed the file",
		},
		{
			"does not join after sentence end",
			"the file was closed.\nnext item",
			"the file was closed.\nnext item",
		},
		{
			"does not join before capitalized line",
			"the adjuster\nReviewed by management",
			"the adjuster\nReviewed by management",
		},
		{
			"preserves blank lines",
			"first\n\nsecond",
			"first\n\nsecond",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixLineBreaks(tt.in); got != tt.want {
				t.Errorf("fixLineBreaks(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEndsMidWord(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"stopped at the light", true},
		{"the loss occurred.", false},
		{"items as follows:", false},
		{"was it witnessed?", false},
		{"SECTION ONE", false},
		{"policy number 42", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := endsMidWord(tt.line); got != tt.want {
			t.Errorf("endsMidWord(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestStripControlChars(t *testing.T) {
	got := stripControlChars("a\tb\nc\x00\x0c\x1bd")
	want := "a\tb\ncd"
	if got != want {
		t.Errorf("stripControlChars = %q, want %q", got, want)
	}
}
