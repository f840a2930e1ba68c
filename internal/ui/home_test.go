package ui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nlaurent/deckops/internal/session"
)

// newTestHome points GetDeckopsDir at a throwaway HOME so storage never
// touches a real profile directory, then seeds it with instances before
// constructing a Home over it.
func newTestHome(t *testing.T, instances []*session.Instance) *Home {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	storage, err := session.NewStorageWithProfile("_test")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	if instances != nil {
		require.NoError(t, storage.SaveWithGroups(instances, nil))
	}

	home, err := NewHome(storage, "_test")
	require.NoError(t, err)
	return home
}

func sessionsN(n int) []*session.Instance {
	instances := make([]*session.Instance, 0, n)
	for i := 0; i < n; i++ {
		instances = append(instances, session.NewInstance(fmt.Sprintf("session%d", i), fmt.Sprintf("/tmp/%d", i)))
	}
	return instances
}

func groupedSessions() []*session.Instance {
	return []*session.Instance{
		session.NewInstance("ungrouped", "/tmp/u"),
		session.NewInstanceWithGroup("work-project", "/tmp/work", "work"),
		session.NewInstanceWithGroup("personal-project", "/tmp/personal", "personal"),
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func keyType(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestHome_InitialCursorPosition(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	require.Equal(t, 0, home.cursor)
}

func TestHome_QReturnsQuitAction(t *testing.T) {
	home := newTestHome(t, nil)
	_, action := home.Update(keyRune('q'))
	require.IsType(t, session.ActionQuit{}, action)
}

func TestHome_QuestionMarkOpensHelp(t *testing.T) {
	home := newTestHome(t, nil)
	require.False(t, home.help.IsVisible())
	home.Update(keyRune('?'))
	require.True(t, home.help.IsVisible())
}

func TestHome_HasDialogTrueForHelp(t *testing.T) {
	home := newTestHome(t, nil)
	require.False(t, home.hasDialog())
	home.help.Show()
	require.True(t, home.hasDialog())
}

func TestHome_NOpensNewDialog(t *testing.T) {
	home := newTestHome(t, nil)
	require.False(t, home.newDialog.IsVisible())
	home.Update(keyRune('n'))
	require.True(t, home.newDialog.IsVisible())
}

func TestHome_CursorDownJ(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	require.Equal(t, 0, home.cursor)
	home.Update(keyRune('j'))
	require.Equal(t, 1, home.cursor)
}

func TestHome_CursorDownArrow(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.Update(keyType(tea.KeyDown))
	require.Equal(t, 1, home.cursor)
}

func TestHome_CursorUpK(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.setCursor(3)
	home.Update(keyRune('k'))
	require.Equal(t, 2, home.cursor)
}

func TestHome_CursorBoundsAtTop(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.setCursor(0)
	home.Update(keyRune('k'))
	require.Equal(t, 0, home.cursor)
}

func TestHome_CursorBoundsAtBottom(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.setCursor(4)
	home.Update(keyRune('j'))
	require.Equal(t, 4, home.cursor)
}

func TestHome_PageDown(t *testing.T) {
	home := newTestHome(t, sessionsN(20))
	home.setCursor(0)
	home.Update(keyType(tea.KeyPgDown))
	require.Equal(t, 10, home.cursor)
}

func TestHome_PageUp(t *testing.T) {
	home := newTestHome(t, sessionsN(20))
	home.setCursor(15)
	home.Update(keyType(tea.KeyPgUp))
	require.Equal(t, 5, home.cursor)
}

func TestHome_PageDownClampsToEnd(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.setCursor(0)
	home.Update(keyType(tea.KeyPgDown))
	require.Equal(t, 4, home.cursor)
}

func TestHome_PageUpClampsToStart(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.setCursor(3)
	home.Update(keyType(tea.KeyPgUp))
	require.Equal(t, 0, home.cursor)
}

func TestHome_HomeKey(t *testing.T) {
	home := newTestHome(t, sessionsN(10))
	home.setCursor(7)
	home.Update(keyType(tea.KeyHome))
	require.Equal(t, 0, home.cursor)
}

func TestHome_EndKey(t *testing.T) {
	home := newTestHome(t, sessionsN(10))
	home.setCursor(3)
	home.Update(keyType(tea.KeyEnd))
	require.Equal(t, 9, home.cursor)
}

func TestHome_GKeyGoesToStart(t *testing.T) {
	home := newTestHome(t, sessionsN(10))
	home.setCursor(7)
	home.Update(keyRune('g'))
	require.Equal(t, 0, home.cursor)
}

func TestHome_UppercaseGGoesToEnd(t *testing.T) {
	home := newTestHome(t, sessionsN(10))
	home.setCursor(3)
	home.Update(keyRune('G'))
	require.Equal(t, 9, home.cursor)
}

func TestHome_CursorMovementOnEmptyList(t *testing.T) {
	home := newTestHome(t, nil)
	home.Update(keyType(tea.KeyDown))
	require.Equal(t, 0, home.cursor)
	home.Update(keyType(tea.KeyUp))
	require.Equal(t, 0, home.cursor)
}

func TestHome_EnterOnSessionReturnsAttachAction(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	home.setCursor(1)
	_, action := home.Update(keyType(tea.KeyEnter))
	require.IsType(t, session.ActionAttachSession{}, action)
}

func TestHome_SlashEntersSearchMode(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	require.False(t, home.searchActive)
	home.Update(keyRune('/'))
	require.True(t, home.searchActive)
	require.Empty(t, home.searchQuery)
}

func TestHome_SearchModeCapturesChars(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	home.Update(keyRune('/'))
	for _, r := range "test" {
		home.Update(keyRune(r))
	}
	require.Equal(t, "test", home.searchQuery)
}

func TestHome_SearchModeBackspace(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	home.Update(keyRune('/'))
	home.Update(keyRune('a'))
	home.Update(keyRune('b'))
	home.Update(keyType(tea.KeyBackspace))
	require.Equal(t, "a", home.searchQuery)
}

func TestHome_SearchModeEscExitsAndClears(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	home.Update(keyRune('/'))
	home.Update(keyRune('x'))
	home.Update(keyType(tea.KeyEsc))
	require.False(t, home.searchActive)
	require.Empty(t, home.searchQuery)
	require.Empty(t, home.searchMatches)
}

func TestHome_SearchModeEnterExitsAndClearsState(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	home.Update(keyRune('/'))
	home.Update(keyRune('s'))
	home.Update(keyType(tea.KeyEnter))
	require.False(t, home.searchActive)
	require.Empty(t, home.searchQuery)
	require.Empty(t, home.searchMatches)
	require.Equal(t, 0, home.searchMatchIdx)
}

func TestHome_DOnSessionOpensDeleteDialog(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	require.False(t, home.confirmDlg.IsVisible())
	home.Update(keyRune('d'))
	require.True(t, home.confirmDlg.IsVisible())
}

func TestHome_DOnGroupWithSessionsOpensGroupDeleteOptionsDialog(t *testing.T) {
	home := newTestHome(t, groupedSessions())
	// flatItems[0] is the ungrouped session, followed by the two top-level
	// groups ("personal" and "work", order depending on sort); scan for the
	// first Group item instead of hardcoding an index.
	idx := -1
	for i, item := range home.flatItems {
		if item.Kind == session.ItemGroup {
			idx = i
			break
		}
	}
	require.NotEqual(t, -1, idx, "expected at least one group in flatItems")
	home.setCursor(idx)
	require.NotEmpty(t, home.selectedGroup)
	require.False(t, home.confirmDlg.IsVisible())
	home.Update(keyRune('d'))
	require.True(t, home.confirmDlg.IsVisible())
}

func TestHome_SelectedSessionUpdatesOnCursorMove(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	firstID := home.selectedSession
	home.Update(keyType(tea.KeyDown))
	require.NotEqual(t, firstID, home.selectedSession)
}

func TestHome_SelectedGroupSetWhenOnGroup(t *testing.T) {
	home := newTestHome(t, groupedSessions())
	found := false
	for i, item := range home.flatItems {
		home.setCursor(i)
		if item.Kind == session.ItemGroup {
			require.NotEmpty(t, home.selectedGroup)
			require.Empty(t, home.selectedSession)
			found = true
			break
		}
	}
	require.True(t, found, "expected at least one group in flatItems")
}

func TestHome_SearchMatchesSessionTitle(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.searchQuery = "session2"
	home.rerunSearch()
	require.NotEmpty(t, home.searchMatches)
}

func TestHome_SearchCaseInsensitive(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.searchQuery = "SESSION2"
	home.rerunSearch()
	require.NotEmpty(t, home.searchMatches)
}

func TestHome_SearchMatchesPath(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.searchQuery = "/tmp/3"
	home.rerunSearch()
	require.NotEmpty(t, home.searchMatches)
}

func TestHome_SearchMatchesGroupName(t *testing.T) {
	home := newTestHome(t, groupedSessions())
	home.searchQuery = "work"
	home.rerunSearch()
	require.NotEmpty(t, home.searchMatches)
}

func TestHome_SearchEmptyQueryClearsMatches(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.searchQuery = "session"
	home.rerunSearch()
	require.NotEmpty(t, home.searchMatches)

	home.searchQuery = ""
	home.rerunSearch()
	require.Empty(t, home.searchMatches)
}

func TestHome_SearchNoMatches(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.searchQuery = "zzzznonexistent"
	home.rerunSearch()
	require.Empty(t, home.searchMatches)
}

func TestHome_SearchKeepsFullList(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	originalLen := len(home.flatItems)
	home.searchQuery = "session2"
	home.rerunSearch()
	require.Len(t, home.flatItems, originalLen)
}

func TestHome_SearchNCyclesForward(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.searchQuery = "session"
	home.rerunSearch()
	matchCount := len(home.searchMatches)
	require.Greater(t, matchCount, 1)

	firstCursor := home.cursor
	home.Update(keyRune('n'))
	require.Equal(t, 1, home.searchMatchIdx)
	require.NotEqual(t, firstCursor, home.cursor)
}

func TestHome_SearchNWrapsAround(t *testing.T) {
	home := newTestHome(t, sessionsN(3))
	home.searchQuery = "session"
	home.rerunSearch()
	matchCount := len(home.searchMatches)

	for i := 0; i < matchCount; i++ {
		home.Update(keyRune('n'))
	}
	require.Equal(t, 0, home.searchMatchIdx)
}

func TestHome_SearchShiftNCyclesBackward(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.searchQuery = "session"
	home.rerunSearch()
	matchCount := len(home.searchMatches)
	require.Greater(t, matchCount, 1)

	home.Update(keyRune('N'))
	require.Equal(t, matchCount-1, home.searchMatchIdx)
}

func TestHome_EscClearsSearchMatches(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.Update(keyRune('/'))
	home.Update(keyRune('s'))
	require.NotEmpty(t, home.searchMatches)
	home.Update(keyType(tea.KeyEsc))
	require.Empty(t, home.searchMatches)
	require.Equal(t, 0, home.searchMatchIdx)
}

func TestHome_EnterClearsMatchesSoNOpensNewDialog(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.Update(keyRune('/'))
	home.Update(keyRune('s'))
	home.Update(keyType(tea.KeyEnter))
	require.False(t, home.searchActive)
	require.Empty(t, home.searchMatches)

	require.False(t, home.newDialog.IsVisible())
	home.Update(keyRune('n'))
	require.True(t, home.newDialog.IsVisible())
}

func TestHome_ReloadDoesNotSnapCursorAfterEnter(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.Update(keyRune('/'))
	home.Update(keyRune('s'))
	home.Update(keyType(tea.KeyEnter))
	require.False(t, home.searchActive)

	home.setCursor(4)
	require.NoError(t, home.Reload())
	require.Equal(t, 4, home.cursor)
}

func TestHome_EnterClearsMatchesAndResetsIndex(t *testing.T) {
	home := newTestHome(t, sessionsN(5))
	home.Update(keyRune('/'))
	home.Update(keyRune('s'))
	require.NotEmpty(t, home.searchMatches)

	home.Update(keyType(tea.KeyEnter))
	require.False(t, home.searchActive)
	require.Empty(t, home.searchMatches)
	require.Equal(t, 0, home.searchMatchIdx)
}

func TestHome_CursorMovesOverFullListDuringSearch(t *testing.T) {
	home := newTestHome(t, sessionsN(10))
	home.searchQuery = "session"
	home.rerunSearch()

	home.setCursor(0)
	for i := 0; i < 20; i++ {
		home.moveCursor(1)
	}
	require.Equal(t, 9, home.cursor)
}
