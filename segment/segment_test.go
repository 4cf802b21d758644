package segment

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/clausewise/core"
)

func TestByTitle(t *testing.T) {
	text := "Preamble dropped\n## Intro  \nHello   \nWorld\n## Scope\nAll staff.\n"
	want := []core.Section{
		{Title: "Intro", Content: "Hello\nWorld\n"},
		{Title: "Scope", Content: "All staff.\n"},
	}
	if diff := cmp.Diff(want, ByTitle(text)); diff != "" {
		t.Errorf("ByTitle() mismatch (-want +got):\n%s", diff)
	}
}

func TestByTitle_CRLF(t *testing.T) {
	got := ByTitle("## A\r\nline one\r\n## B\r\nline two")
	want := []core.Section{
		{Title: "A", Content: "line one\n"},
		{Title: "B", Content: "line two\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByTitle() mismatch (-want +got):\n%s", diff)
	}
}

func TestByTitle_NoHeadings(t *testing.T) {
	assert.Empty(t, ByTitle("just text\nno headings\n"))
	assert.Empty(t, ByTitle(""))
	assert.Empty(t, ByTitle("### Deeper heading\n"))
}

func TestByTitle_EmptySection(t *testing.T) {
	got := ByTitle("## A\n## B\nbody\n")
	require.Len(t, got, 2)
	assert.Equal(t, "", got[0].Content)
	assert.Equal(t, "body\n", got[1].Content)
}

func TestByTitle_Reconstruction(t *testing.T) {
	text := "## One\nalpha\nbeta\n## Two\ngamma\n## Three\n"
	sections := ByTitle(text)

	var b strings.Builder
	for _, s := range sections {
		b.WriteString("## " + s.Title + "\n" + s.Content)
	}
	assert.Equal(t, text, b.String())

	_, titles := CountWordsAndTitles(text)
	assert.Equal(t, titles, len(sections))
}

func TestByWindow(t *testing.T) {
	text := strings.Repeat("a", 2500)
	sections, err := ByWindow(text, 1000, 100)
	require.NoError(t, err)

	// ceil(2500 / 900) == 3
	require.Len(t, sections, 3)
	assert.Equal(t, "Section 1", sections[0].Title)
	assert.Equal(t, "Section 3", sections[2].Title)
	assert.Len(t, sections[0].Content, 1000)
	assert.Len(t, sections[1].Content, 1000)
	assert.Len(t, sections[2].Content, 2500-1800)
}

func TestByWindow_Overlap(t *testing.T) {
	text := "abcdefghij"
	sections, err := ByWindow(text, 4, 2)
	require.NoError(t, err)

	want := []string{"abcd", "cdef", "efgh", "ghij", "ij"}
	got := make([]string, len(sections))
	for i, s := range sections {
		got[i] = s.Content
	}
	assert.Equal(t, want, got)
	for i := 1; i < len(sections)-1; i++ {
		assert.Equal(t, sections[i-1].Content[2:], sections[i].Content[:2])
	}
}

func TestByWindow_Runes(t *testing.T) {
	sections, err := ByWindow("ééééé", 2, 0)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "éé", sections[0].Content)
	assert.Equal(t, "é", sections[2].Content)
}

func TestByWindow_InvalidParams(t *testing.T) {
	tests := []struct {
		name            string
		window, overlap int
	}{
		{"overlap equals window", 100, 100},
		{"overlap exceeds window", 100, 150},
		{"zero window", 0, 0},
		{"negative overlap", 10, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ByWindow("text", tt.window, tt.overlap)
			assert.ErrorIs(t, err, core.ErrInvalidWindow)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestByWindow_Empty(t *testing.T) {
	sections, err := ByWindow("", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestCountWordsAndTitles(t *testing.T) {
	words, titles := CountWordsAndTitles("## Intro\nHello world\n## Scope\nAll  staff\tnow\n")
	assert.Equal(t, 9, words)
	assert.Equal(t, 2, titles)
}

func TestSplit(t *testing.T) {
	text := "## A\nbody\n"

	sections, err := Split(text, DefaultParams())
	require.NoError(t, err)
	assert.Len(t, sections, 1)

	sections, err = Split(text, Params{Strategy: StrategyWindow, WindowSize: 4, Overlap: 0})
	require.NoError(t, err)
	assert.Len(t, sections, 3)

	_, err = Split(text, Params{Strategy: "paragraph"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestParams_ArtifactName(t *testing.T) {
	assert.Equal(t, "title_policy.json", Params{}.ArtifactName("policy"))
	assert.Equal(t, "window_policy.json", Params{Strategy: StrategyWindow}.ArtifactName("policy"))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("Window")
	require.NoError(t, err)
	assert.Equal(t, StrategyWindow, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyTitle, s)

	_, err = ParseStrategy("chapters")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
