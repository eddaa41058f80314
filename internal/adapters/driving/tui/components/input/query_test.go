package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(q *QueryInput, text string) {
	for _, r := range text {
		q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewQueryInput(t *testing.T) {
	q := NewQueryInput(nil)

	require.NotNil(t, q)
	assert.NotNil(t, q.styles)
	assert.Empty(t, q.Value())
	assert.True(t, q.Focused())
	assert.NotNil(t, q.Init())
}

func TestQueryInput_Typing(t *testing.T) {
	q := NewQueryInput(nil)

	typeText(q, "calc")
	assert.Equal(t, "calc", q.Value())

	q.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "cal", q.Value())
}

func TestQueryInput_BlurredIgnoresKeys(t *testing.T) {
	q := NewQueryInput(nil)
	q.Blur()

	typeText(q, "x")
	assert.Empty(t, q.Value())
	assert.False(t, q.Focused())
}

func TestQueryInput_Recall(t *testing.T) {
	q := NewQueryInput(nil)
	q.Remember("limits")
	q.Remember("year:2 genetics")

	typeText(q, "dra")

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	q.Update(up)
	assert.Equal(t, "year:2 genetics", q.Value())
	q.Update(up)
	assert.Equal(t, "limits", q.Value())
	q.Update(up)
	assert.Equal(t, "limits", q.Value(), "stops at the oldest entry")

	q.Update(down)
	q.Update(down)
	assert.Equal(t, "dra", q.Value(), "walking past the newest entry restores the draft")
}

func TestQueryInput_RecallWithoutHistory(t *testing.T) {
	q := NewQueryInput(nil)
	typeText(q, "abc")

	q.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "abc", q.Value())
}

func TestQueryInput_Remember(t *testing.T) {
	q := NewQueryInput(nil)
	q.Remember("a")
	q.Remember("a")
	q.Remember("")
	q.Remember("b")
	assert.Equal(t, []string{"a", "b"}, q.History())

	for i := 0; i < historySize+5; i++ {
		q.Remember(string(rune('A' + i%26)) + string(rune('0'+i%10)))
	}
	assert.Len(t, q.History(), historySize)
}

func TestQueryInput_SetWidth(t *testing.T) {
	q := NewQueryInput(nil)

	q.SetWidth(100)
	assert.Equal(t, 100, q.Width())
	assert.Equal(t, 100-labelWidth, q.field.Width)

	q.SetWidth(10)
	assert.Equal(t, minWidth, q.field.Width)
}

func TestQueryInput_View(t *testing.T) {
	assert.Contains(t, NewQueryInput(nil).View(), "Search")
}
