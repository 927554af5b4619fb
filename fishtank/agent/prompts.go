package agent

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/libklein/llm-fishtank/fishtank/engine"
)

//go:embed prompts/clue_giver_prompt.txt
var defaultClueGiver string

//go:embed prompts/discuss_and_vote_prompt.txt
var defaultDiscussion string

var ErrUnknownPlaceholder = errors.New("unknown template placeholder")

// Placeholders each template is rendered with.
var (
	ClueGiverKeys = []string{
		"model", "coordinate", "row_word", "column_word",
		"row_words", "column_words", "revealed_words", "history_of_clues",
	}
	DiscussionKeys = []string{
		"model", "clue_word", "clue_giver_name",
		"row_words", "column_words", "revealed_words", "history_of_clues",
	}
)

// Prompts holds the two format-string templates. Placeholders look like
// {name}; {{ and }} stand for literal braces.
type Prompts struct {
	ClueGiver  string `yaml:"clue_giver"`
	Discussion string `yaml:"discuss_and_vote"`
}

func DefaultPrompts() Prompts {
	return Prompts{ClueGiver: defaultClueGiver, Discussion: defaultDiscussion}
}

// LoadPrompts reads a YAML file overriding one or both templates.
func LoadPrompts(path string) (Prompts, error) {
	p := DefaultPrompts()
	b, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("failed to read prompts file: %w", err)
	}
	var override Prompts
	if err := yaml.Unmarshal(b, &override); err != nil {
		return Prompts{}, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}
	if strings.TrimSpace(override.ClueGiver) != "" {
		p.ClueGiver = override.ClueGiver
	}
	if strings.TrimSpace(override.Discussion) != "" {
		p.Discussion = override.Discussion
	}
	if err := p.Validate(); err != nil {
		return Prompts{}, err
	}
	return p, nil
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func (p Prompts) Validate() error {
	if err := checkPlaceholders("clue_giver", p.ClueGiver, ClueGiverKeys); err != nil {
		return err
	}
	return checkPlaceholders("discuss_and_vote", p.Discussion, DiscussionKeys)
}

func checkPlaceholders(name, tmpl string, keys []string) error {
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	bare := strings.NewReplacer("{{", "", "}}", "").Replace(tmpl)
	for _, m := range placeholderRe.FindAllStringSubmatch(bare, -1) {
		if !allowed[m[1]] {
			return fmt.Errorf("%w {%s} in %s template (allowed: %s)", ErrUnknownPlaceholder, m[1], name, strings.Join(keys, ", "))
		}
	}
	return nil
}

// Render fills {name} placeholders. Unknown names are left as-is.
func Render(tmpl string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := []string{"{{", "{", "}}", "}"}
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", values[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Board is the read-only game context both prompts describe.
type Board struct {
	Grid    *engine.Grid
	Reveals *engine.RevealState
	History []engine.HistoryEntry
}

func (b Board) values(model string) map[string]string {
	return map[string]string{
		"model":            model,
		"row_words":        quoteList(b.Grid.RowWords()),
		"column_words":     quoteList(b.Grid.ColWords()),
		"revealed_words":   quoteList(b.Reveals.Clues()),
		"history_of_clues": FormatHistory(b.Grid, b.History),
	}
}

// ClueGiverPrompt renders the prompt asking model for a clue to target.
func (p Prompts) ClueGiverPrompt(model string, target engine.Coordinate, b Board) (string, error) {
	cell, ok := b.Grid.Cell(target)
	if !ok {
		return "", fmt.Errorf("target %s is not on the grid", target)
	}
	v := b.values(model)
	v["coordinate"] = target.String()
	v["row_word"] = cell.RowWord
	v["column_word"] = cell.ColWord
	return Render(p.ClueGiver, v), nil
}

// DiscussionPrompt renders the prompt asking model to vote on clue.
func (p Prompts) DiscussionPrompt(model, clue, clueGiver string, b Board) string {
	v := b.values(model)
	v["clue_word"] = clue
	v["clue_giver_name"] = clueGiver
	return Render(p.Discussion, v)
}

func quoteList(words []string) string {
	return "'" + strings.Join(words, ", ") + "'"
}

// FormatHistory renders one line per finished round.
func FormatHistory(g *engine.Grid, history []engine.HistoryEntry) string {
	lines := make([]string, len(history))
	for i, h := range history {
		cell, _ := g.Cell(h.Target)
		lines[i] = fmt.Sprintf("%s gave clue: %s for %s. Guessed: %s", h.ClueGiver, h.Clue, cell, h.Guess)
	}
	return strings.Join(lines, "\n")
}
