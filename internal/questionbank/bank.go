// Package questionbank holds the static topic × difficulty question lookup.
package questionbank

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	_ "embed"

	"github.com/skillgate/screener/internal/interview"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

type bankFile struct {
	Topics []topicEntry `yaml:"topics"`
}

type topicEntry struct {
	Name      string              `yaml:"name"`
	Questions map[string][]string `yaml:"questions"`
}

type topic struct {
	display   string
	questions map[interview.Difficulty][]string
}

// Bank answers question lookups. Selection among candidates is uniform-random
// and repeats across a session are allowed; nothing is tracked.
type Bank struct {
	order  []string
	topics map[string]topic
}

// Load reads the bank from path, or from the embedded default bank when path
// is empty.
func Load(path string) (*Bank, error) {
	data := defaultQuestions
	if strings.TrimSpace(path) != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading question bank %q: %w", path, err)
		}
	}
	return New(data)
}

// New parses a YAML question bank.
func New(data []byte) (*Bank, error) {
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing question bank: %w", err)
	}

	if len(file.Topics) == 0 {
		return nil, fmt.Errorf("question bank has no topics")
	}

	bank := &Bank{topics: make(map[string]topic, len(file.Topics))}
	for _, entry := range file.Topics {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("question bank topic without a name")
		}

		key := strings.ToLower(name)
		if _, ok := bank.topics[key]; ok {
			return nil, fmt.Errorf("duplicate question bank topic %q", name)
		}

		t := topic{display: name, questions: make(map[interview.Difficulty][]string)}
		for level, questions := range entry.Questions {
			difficulty, err := interview.ParseDifficulty(level)
			if err != nil {
				return nil, fmt.Errorf("topic %q: %w", name, err)
			}
			t.questions[difficulty] = questions
		}

		bank.order = append(bank.order, name)
		bank.topics[key] = t
	}

	return bank, nil
}

// Get returns one question for the topic at the given difficulty. The topic
// lookup is case-insensitive.
func (b *Bank) Get(topicName string, difficulty interview.Difficulty) (string, error) {
	t, ok := b.topics[strings.ToLower(strings.TrimSpace(topicName))]
	if !ok {
		return "", fmt.Errorf("topic %q: %w", topicName, interview.ErrUnknownTopic)
	}

	if !difficulty.Valid() {
		return "", fmt.Errorf("topic %q difficulty %q: %w", topicName, difficulty, interview.ErrUnknownDifficulty)
	}

	questions := t.questions[difficulty]
	if len(questions) == 0 {
		return "", fmt.Errorf("topic %q has no %s questions: %w", topicName, difficulty, interview.ErrUnknownDifficulty)
	}

	return questions[rand.IntN(len(questions))], nil
}

// Topics returns the canonical, display-cased topic names in file order.
// This doubles as the skill vocabulary the extraction adapter filters against.
func (b *Bank) Topics() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}
