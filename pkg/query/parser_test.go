package query

import (
	"reflect"
	"testing"
)

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Expr
	}{
		{
			name:     "single term",
			raw:      "FBI",
			expected: Term{Text: "FBI"},
		},
		{
			name:     "implicit and between bare words",
			raw:      "FBI Birmingham",
			expected: And{Left: Term{Text: "FBI"}, Right: Term{Text: "Birmingham"}},
		},
		{
			name:     "explicit and",
			raw:      "FBI AND Birmingham",
			expected: And{Left: Term{Text: "FBI"}, Right: Term{Text: "Birmingham"}},
		},
		{
			name:     "lowercase operators",
			raw:      "FBI and Birmingham",
			expected: And{Left: Term{Text: "FBI"}, Right: Term{Text: "Birmingham"}},
		},
		{
			name: "quoted phrases joined by and",
			raw:  `"A" AND "B"`,
			expected: And{
				Left:  Phrase{Text: "A"},
				Right: Phrase{Text: "B"},
			},
		},
		{
			name: "and binds tighter than or",
			raw:  "A OR B AND C",
			expected: Or{
				Left:  Term{Text: "A"},
				Right: And{Left: Term{Text: "B"}, Right: Term{Text: "C"}},
			},
		},
		{
			name: "not binds to the following leaf only",
			raw:  "A NOT B",
			expected: And{
				Left:  Term{Text: "A"},
				Right: Not{Operand: Term{Text: "B"}},
			},
		},
		{
			name: "not with explicit and",
			raw:  "MLK AND NOT FBI",
			expected: And{
				Left:  Term{Text: "MLK"},
				Right: Not{Operand: Term{Text: "FBI"}},
			},
		},
		{
			name: "multiword phrase",
			raw:  `"Safe Deposit Box" Memphis`,
			expected: And{
				Left:  Phrase{Text: "Safe Deposit Box"},
				Right: Term{Text: "Memphis"},
			},
		},
		{
			name: "or chain",
			raw:  "A OR B OR C",
			expected: Or{
				Left:  Or{Left: Term{Text: "A"}, Right: Term{Text: "B"}},
				Right: Term{Text: "C"},
			},
		},
		{
			name: "unterminated phrase takes the rest of the string",
			raw:  `Galt "Eric S. Galt`,
			expected: And{
				Left:  Term{Text: "Galt"},
				Right: Phrase{Text: "Eric S. Galt"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Parse(%q):\n  expected %#v\n  got      %#v", tt.raw, tt.expected, got)
			}
		})
	}
}

func TestParseEmptyMatch(t *testing.T) {
	// Empty or operator-only input is the canonical empty-match expression:
	// nil, which the executor treats as matching nothing.
	for _, raw := range []string{"", "   ", "AND", "OR", "NOT", "AND OR", `""`, `"" AND ""`} {
		if got := Parse(raw); got != nil {
			t.Errorf("Parse(%q): expected nil, got %#v", raw, got)
		}
	}
}

func TestParseDanglingOperator(t *testing.T) {
	tests := []struct {
		raw      string
		expected Expr
	}{
		// A trailing operator with no right operand is dropped together
		// with the operator.
		{"A AND", Term{Text: "A"}},
		{"A OR", Term{Text: "A"}},
		{"A NOT", Term{Text: "A"}},
		{"A AND NOT", Term{Text: "A"}},
		// A leading operator with no left operand is likewise dropped.
		{"AND A", Term{Text: "A"}},
		{"OR A", Term{Text: "A"}},
	}

	for _, tt := range tests {
		got := Parse(tt.raw)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Parse(%q): expected %#v, got %#v", tt.raw, tt.expected, got)
		}
	}
}

func TestParseEmptyPhraseIgnored(t *testing.T) {
	got := Parse(`A "" B`)
	expected := And{Left: Term{Text: "A"}, Right: Term{Text: "B"}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %#v, got %#v", expected, got)
	}
}

func TestTerms(t *testing.T) {
	tests := []struct {
		raw      string
		expected []string
	}{
		{"FBI AND Birmingham", []string{"FBI", "Birmingham"}},
		{`"Eric S. Galt" OR Memphis`, []string{"Eric S. Galt", "Memphis"}},
		{"MLK NOT FBI", []string{"MLK", "FBI"}},
		{"FBI fbi FBI", []string{"FBI"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Terms(Parse(tt.raw))
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Terms(Parse(%q)): expected %v, got %v", tt.raw, tt.expected, got)
		}
	}
}
