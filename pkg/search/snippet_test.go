package search

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestSnippetWindowAroundMatch(t *testing.T) {
	// 200 words, the term at word index 50. With a window of 10 the
	// snippet must span words 40 through 60 inclusive.
	words := make([]string, 200)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	words[50] = "Birmingham"
	text := strings.Join(words, " ")

	snippet, matched := extractSnippet(text, []string{"Birmingham"}, 10)

	expected := strings.Join(words[40:61], " ")
	if snippet != expected {
		t.Errorf("snippet window:\n  expected %q\n  got      %q", expected, snippet)
	}
	if !reflect.DeepEqual(matched, []string{"Birmingham"}) {
		t.Errorf("matched: expected [Birmingham], got %v", matched)
	}
}

func TestSnippetClampedAtStart(t *testing.T) {
	text := "FBI agents were watching the office all week long"
	snippet, _ := extractSnippet(text, []string{"FBI"}, 3)
	if snippet != "FBI agents were watching" {
		t.Errorf("got %q", snippet)
	}
}

func TestSnippetClampedAtEnd(t *testing.T) {
	text := "the meeting took place in Memphis"
	snippet, _ := extractSnippet(text, []string{"Memphis"}, 4)
	if snippet != "the meeting took place in Memphis" {
		t.Errorf("got %q", snippet)
	}
}

func TestSnippetCaseInsensitive(t *testing.T) {
	text := "Agents reported on BIRMINGHAM meetings"
	snippet, matched := extractSnippet(text, []string{"birmingham"}, 2)
	if !strings.Contains(snippet, "BIRMINGHAM") {
		t.Errorf("expected original casing in snippet, got %q", snippet)
	}
	if len(matched) != 1 {
		t.Errorf("expected 1 matched term, got %v", matched)
	}
}

func TestSnippetPhraseAcrossLineBreak(t *testing.T) {
	text := "inventory of the safe\ndeposit box contents follows"
	snippet, matched := extractSnippet(text, []string{"safe deposit box"}, 2)
	if len(matched) != 1 {
		t.Fatalf("expected phrase to match across the line break, got %v", matched)
	}
	if !strings.Contains(snippet, "safe deposit box") {
		t.Errorf("expected snippet around the phrase, got %q", snippet)
	}
}

func TestSnippetEarliestMatchWins(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta"
	snippet, matched := extractSnippet(text, []string{"eta", "beta"}, 1)
	// "eta" first occurs inside "beta" at word 1, which is also where
	// "beta" matches; window centers on word 1.
	if snippet != "alpha beta gamma" {
		t.Errorf("got %q", snippet)
	}
	if len(matched) != 2 {
		t.Errorf("expected both terms matched, got %v", matched)
	}
}

func TestSnippetNoMatchDefaultsToOpening(t *testing.T) {
	words := make([]string, 50)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	text := strings.Join(words, " ")

	snippet, matched := extractSnippet(text, []string{"absent"}, 10)
	if snippet != strings.Join(words[:20], " ") {
		t.Errorf("expected first 20 words, got %q", snippet)
	}
	if len(matched) != 0 {
		t.Errorf("expected no matched terms, got %v", matched)
	}
}

func TestSnippetEmptyText(t *testing.T) {
	snippet, matched := extractSnippet("", []string{"FBI"}, 10)
	if snippet != "" || matched != nil {
		t.Errorf("expected empty snippet and no matches, got %q / %v", snippet, matched)
	}
}
