// Package segment splits markdown documents into ordered sections.
//
// Two strategies are supported. Title segmentation cuts at every line that
// starts with a level-two heading; window segmentation produces fixed-size,
// optionally overlapping character windows for documents without usable
// headings. Both are pure functions of their input.
package segment

import (
	"fmt"
	"strings"

	"github.com/poiesic/clausewise/core"
)

// Strategy selects a segmentation mode.
type Strategy string

const (
	StrategyTitle  Strategy = "title"
	StrategyWindow Strategy = "window"
)

const titlePrefix = "## "

// Default window parameters.
const (
	DefaultWindowSize = 1000
	DefaultOverlap    = 100
)

// Params configures Split.
type Params struct {
	Strategy   Strategy
	WindowSize int
	Overlap    int
}

// DefaultParams returns title segmentation with the default window settings.
func DefaultParams() Params {
	return Params{
		Strategy:   StrategyTitle,
		WindowSize: DefaultWindowSize,
		Overlap:    DefaultOverlap,
	}
}

// ArtifactName is the sections artifact name for base under this strategy.
func (p Params) ArtifactName(base string) string {
	return core.SectionsName(string(p.strategy()), base)
}

func (p Params) strategy() Strategy {
	if p.Strategy == "" {
		return StrategyTitle
	}
	return p.Strategy
}

// ParseStrategy accepts "title" or "window" (case-insensitive).
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyTitle, "":
		return StrategyTitle, nil
	case StrategyWindow:
		return StrategyWindow, nil
	}
	return "", fmt.Errorf("%w: unknown segmentation strategy %q", core.ErrInvalidInput, s)
}

// Split segments text according to p.
func Split(text string, p Params) ([]core.Section, error) {
	switch p.strategy() {
	case StrategyTitle:
		return ByTitle(text), nil
	case StrategyWindow:
		return ByWindow(text, p.WindowSize, p.Overlap)
	}
	return nil, fmt.Errorf("%w: unknown segmentation strategy %q", core.ErrInvalidInput, p.Strategy)
}

// ByTitle splits text at lines beginning with "## ". The heading text, trimmed,
// becomes the section title; every following line up to the next heading is
// appended to the content with trailing whitespace removed and a newline
// restored. Lines preceding the first heading are discarded. Returns nil
// when text contains no heading line.
func ByTitle(text string) []core.Section {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		sections []core.Section
		current  *core.Section
		content  strings.Builder
	)
	flush := func() {
		if current != nil {
			current.Content = content.String()
			sections = append(sections, *current)
			content.Reset()
		}
	}

	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		// a terminating newline does not open another line
		lines = lines[:len(lines)-1]
	}

	for _, line := range lines {
		if strings.HasPrefix(line, titlePrefix) {
			flush()
			current = &core.Section{Title: strings.TrimSpace(line[len(titlePrefix):])}
			continue
		}
		if current == nil {
			continue
		}
		content.WriteString(strings.TrimRight(line, " \t\r\n\f\v"))
		content.WriteByte('\n')
	}
	flush()

	return sections
}

// ByWindow splits text into windows of windowSize characters whose starts
// advance by windowSize-overlap. Offsets are measured in runes so multi-byte
// characters are never cut. Section i is titled "Section i+1".
func ByWindow(text string, windowSize, overlap int) ([]core.Section, error) {
	step := windowSize - overlap
	if windowSize <= 0 || overlap < 0 || step <= 0 {
		return nil, fmt.Errorf("%w: window %d, overlap %d", core.ErrInvalidWindow, windowSize, overlap)
	}

	runes := []rune(text)
	sections := make([]core.Section, 0, (len(runes)+step-1)/step)
	for off := 0; off < len(runes); off += step {
		end := min(off+windowSize, len(runes))
		sections = append(sections, core.Section{
			Title:   fmt.Sprintf("Section %d", off/step+1),
			Content: string(runes[off:end]),
		})
	}
	return sections, nil
}

// CountWordsAndTitles returns the number of whitespace-separated words and
// the number of occurrences of "## " anywhere in text.
func CountWordsAndTitles(text string) (words, titles int) {
	return len(strings.Fields(text)), strings.Count(text, titlePrefix)
}
