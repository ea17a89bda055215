package questionbank

import (
	"errors"
	"testing"

	"github.com/skillgate/screener/internal/interview"
)

const testBank = `
topics:
  - name: Python
    questions:
      easy:
        - How do you reverse a list in Python?
      medium:
        - What is a generator?
      hard:
        - Explain the GIL.
  - name: System Design
    questions:
      medium:
        - Design a URL shortener.
`

func TestBankGet(t *testing.T) {
	t.Parallel()

	bank, err := New([]byte(testBank))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for _, name := range []string{"Python", "python", "  PYTHON "} {
		q, err := bank.Get(name, interview.DifficultyEasy)
		if err != nil {
			t.Fatalf("get %q: %v", name, err)
		}
		if q != "How do you reverse a list in Python?" {
			t.Fatalf("unexpected question for %q: %q", name, q)
		}
	}

	if _, err := bank.Get("Rust", interview.DifficultyEasy); !errors.Is(err, interview.ErrUnknownTopic) {
		t.Fatalf("expected ErrUnknownTopic, got %v", err)
	}

	if _, err := bank.Get("Python", interview.Difficulty("brutal")); !errors.Is(err, interview.ErrUnknownDifficulty) {
		t.Fatalf("expected ErrUnknownDifficulty, got %v", err)
	}

	// A known topic with no questions at the requested level is also a miss.
	if _, err := bank.Get("System Design", interview.DifficultyHard); !errors.Is(err, interview.ErrUnknownDifficulty) {
		t.Fatalf("expected ErrUnknownDifficulty for an empty level, got %v", err)
	}
}

func TestBankTopicsOrder(t *testing.T) {
	t.Parallel()

	bank, err := New([]byte(testBank))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	topics := bank.Topics()
	if len(topics) != 2 || topics[0] != "Python" || topics[1] != "System Design" {
		t.Fatalf("unexpected topics: %v", topics)
	}

	// Callers get a copy, not the bank's backing slice.
	topics[0] = "Perl"
	if bank.Topics()[0] != "Python" {
		t.Fatal("Topics must not expose internal state")
	}
}

func TestBankRejectsBadFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "not yaml", data: "{{"},
		{name: "no topics", data: "topics: []"},
		{name: "unnamed topic", data: "topics:\n  - name: \"  \"\n"},
		{name: "duplicate topic", data: "topics:\n  - name: SQL\n  - name: sql\n"},
		{name: "unknown difficulty", data: "topics:\n  - name: SQL\n    questions:\n      expert:\n        - q\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New([]byte(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEmbeddedBank(t *testing.T) {
	t.Parallel()

	bank, err := Load("")
	if err != nil {
		t.Fatalf("load embedded bank: %v", err)
	}

	topics := bank.Topics()
	if len(topics) == 0 {
		t.Fatal("embedded bank has no topics")
	}

	difficulties := []interview.Difficulty{
		interview.DifficultyEasy,
		interview.DifficultyMedium,
		interview.DifficultyHard,
	}
	for _, name := range topics {
		for _, d := range difficulties {
			if _, err := bank.Get(name, d); err != nil {
				t.Fatalf("embedded bank: %s/%s: %v", name, d, err)
			}
		}
	}
}
