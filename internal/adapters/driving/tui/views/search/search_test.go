package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnbox/learnbox-search/internal/adapters/driving/tui/messages"
	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// mockSearchService records the last search and returns canned results.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	calls       int
	lastQuery   string
	lastFilters domain.SearchFilters
	lastLimit   int
}

func (m *mockSearchService) Search(_ context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchResult, error) {
	m.calls++
	m.lastQuery = query
	m.lastFilters = filters
	m.lastLimit = limit
	return m.results, m.err
}

func (m *mockSearchService) Status(context.Context) (*domain.IndexStatus, error) {
	return &domain.IndexStatus{Ready: true}, nil
}

func testResults() []domain.SearchResult {
	return []domain.SearchResult{
		{Document: domain.SourceDocument{ID: "calc", Title: "Calculus Notes", FacultyID: "science", Year: "1"}, RelevanceScore: 0.9, ChunkCount: 2},
		{Document: domain.SourceDocument{ID: "bio", Title: "Cell Biology", FacultyID: "science", Year: "2"}, RelevanceScore: 0.6, ChunkCount: 1},
	}
}

func typeText(v *View, text string) {
	for _, r := range text {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(v *View, k tea.KeyMsg) tea.Msg {
	_, cmd := v.Update(k)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newReadyView(svc *mockSearchService) *View {
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 40)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.False(t, v.Ready())
	assert.True(t, v.InputFocused())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_SubmitParsesFilters(t *testing.T) {
	svc := &mockSearchService{results: testResults()}
	v := newReadyView(svc)
	v.WithLimit(5)

	typeText(v, "derivatives faculty:science year:1")
	msg := press(v, tea.KeyMsg{Type: tea.KeyEnter})

	completed, ok := msg.(messages.SearchCompleted)
	require.True(t, ok, "expected SearchCompleted, got %T", msg)
	assert.Equal(t, "derivatives", svc.lastQuery)
	assert.Equal(t, domain.SearchFilters{FacultyID: "science", Year: "1"}, svc.lastFilters)
	assert.Equal(t, 5, svc.lastLimit)
	assert.Equal(t, "derivatives", completed.Query)

	v.Update(completed)
	assert.False(t, v.InputFocused())
	assert.Len(t, v.Results(), 2)

	view := v.View()
	assert.Contains(t, view, "Filters: ")
	assert.Contains(t, view, "year 1")
	assert.Contains(t, view, "Calculus Notes")
	assert.Contains(t, view, "2 results")
}

func TestView_EmptyInputDoesNothing(t *testing.T) {
	svc := &mockSearchService{}
	v := newReadyView(svc)

	assert.Nil(t, press(v, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Zero(t, svc.calls)
}

func TestView_SearchErrorKeepsInputFocused(t *testing.T) {
	svc := &mockSearchService{err: domain.ErrInvalidQuery}
	v := newReadyView(svc)

	typeText(v, "year:2")
	msg := press(v, tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(msg)

	assert.ErrorIs(t, v.Err(), domain.ErrInvalidQuery)
	assert.True(t, v.InputFocused())
	assert.Contains(t, v.View(), "Error: ")
}

func TestView_RecallsSubmittedQuery(t *testing.T) {
	svc := &mockSearchService{err: domain.ErrInvalidQuery}
	v := newReadyView(svc)

	typeText(v, "module:BIO200 cells")
	v.Update(press(v, tea.KeyMsg{Type: tea.KeyEnter}))
	require.True(t, v.InputFocused())

	v.SetQuery("")
	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "module:BIO200 cells", v.Query())
}

func TestView_NoSearchService(t *testing.T) {
	v := newReadyView(nil)
	v.searchService = nil

	typeText(v, "anything")
	msg := press(v, tea.KeyMsg{Type: tea.KeyEnter})

	errMsg, ok := msg.(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, ErrNoSearchService)
}

func TestView_ResultsNavigationAndOpen(t *testing.T) {
	v := newReadyView(&mockSearchService{})
	v.Update(messages.SearchCompleted{Results: testResults()})

	press(v, runes("j"))
	assert.Equal(t, 1, v.SelectedIndex())

	msg := press(v, tea.KeyMsg{Type: tea.KeyEnter})
	selected, ok := msg.(messages.ResultSelected)
	require.True(t, ok)
	assert.Equal(t, "bio", selected.Result.Document.ID)

	press(v, runes("k"))
	assert.Equal(t, 0, v.SelectedIndex())
}

func TestView_ResultsModeKeys(t *testing.T) {
	v := newReadyView(&mockSearchService{})
	v.Update(messages.SearchCompleted{Results: testResults()})

	assert.Equal(t, messages.Quit{}, press(v, runes("q")))
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, press(v, runes("?")))

	v.Update(runes("/"))
	assert.True(t, v.InputFocused())

	// Esc with results returns to the list instead of quitting.
	assert.Nil(t, press(v, tea.KeyMsg{Type: tea.KeyEsc}))
	assert.False(t, v.InputFocused())

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, v.InputFocused())
}

func TestView_EscWithoutResultsQuits(t *testing.T) {
	v := newReadyView(&mockSearchService{})

	assert.Equal(t, messages.Quit{}, press(v, tea.KeyMsg{Type: tea.KeyEsc}))
}

func TestView_TypingQDoesNotQuit(t *testing.T) {
	v := newReadyView(&mockSearchService{})

	v.Update(runes("q"))
	assert.Equal(t, "q", v.Query())
	assert.True(t, v.InputFocused())
}

func TestView_StatusMessages(t *testing.T) {
	v := newReadyView(&mockSearchService{})

	v.Update(messages.StatusLoaded{Status: &domain.IndexStatus{Ready: true, DocumentCount: 4, ItemCount: 9}})
	assert.Contains(t, v.View(), "4 docs · 9 items")

	v.Update(messages.RevectorizeQueued{ResourceID: "calc", Count: 1})
	assert.Contains(t, v.View(), "Queued 1 resource(s) for revectorization")

	v.Update(messages.ErrorOccurred{Err: errors.New("store closed")})
	assert.Contains(t, v.View(), "store closed")
}

func TestView_Reset(t *testing.T) {
	v := newReadyView(&mockSearchService{})
	v.SetQuery("module:BIO201 cells")
	v.Update(messages.SearchCompleted{Results: testResults()})
	v.filters = domain.SearchFilters{ModuleID: "BIO201"}

	v.Reset()

	assert.Empty(t, v.Query())
	assert.Empty(t, v.Results())
	assert.Equal(t, domain.SearchFilters{}, v.Filters())
	assert.NoError(t, v.Err())
	assert.True(t, v.InputFocused())
}
