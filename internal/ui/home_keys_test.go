package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nlaurent/deckops/internal/session"
)

func TestHomeKeys_TTogglesViewMode(t *testing.T) {
	home := newTestHome(t, nil)
	if home.viewMode != ViewAgent {
		t.Fatalf("viewMode = %v, want ViewAgent initially", home.viewMode)
	}
	home.Update(keyRune('t'))
	if home.viewMode != ViewTerminal {
		t.Errorf("viewMode after t = %v, want ViewTerminal", home.viewMode)
	}
	home.Update(keyRune('t'))
	if home.viewMode != ViewAgent {
		t.Errorf("viewMode after second t = %v, want ViewAgent", home.viewMode)
	}
}

func TestHomeKeys_SOpensSettingsDialog(t *testing.T) {
	home := newTestHome(t, nil)
	if home.settingsDlg.IsVisible() {
		t.Fatal("settings dialog should start hidden")
	}
	home.Update(keyRune('s'))
	if !home.settingsDlg.IsVisible() {
		t.Error("expected settings dialog visible after 's'")
	}
}

func TestHomeKeys_OCyclesSortOrderForward(t *testing.T) {
	home := newTestHome(t, nil)
	home.sortOrder = session.SortNewest
	home.Update(keyRune('o'))
	if home.sortOrder != session.SortOldest {
		t.Errorf("sortOrder after o = %v, want SortOldest", home.sortOrder)
	}
}

func TestHomeKeys_CtrlOCyclesSortOrderBackward(t *testing.T) {
	home := newTestHome(t, nil)
	home.sortOrder = session.SortNewest
	home.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	if home.sortOrder != session.SortZA {
		t.Errorf("sortOrder after ctrl+o = %v, want SortZA", home.sortOrder)
	}
}

func TestHomeKeys_HShrinksListWidthClamped(t *testing.T) {
	home := newTestHome(t, nil)
	home.listWidth = minListWidth
	home.Update(keyRune('H'))
	if home.listWidth != minListWidth {
		t.Errorf("listWidth = %d, want clamped at %d", home.listWidth, minListWidth)
	}
}

func TestHomeKeys_LGrowsListWidthClamped(t *testing.T) {
	home := newTestHome(t, nil)
	home.listWidth = maxListWidth
	home.Update(keyRune('L'))
	if home.listWidth != maxListWidth {
		t.Errorf("listWidth = %d, want clamped at %d", home.listWidth, maxListWidth)
	}
}

func TestHomeKeys_HLAdjustWidthWithinBounds(t *testing.T) {
	home := newTestHome(t, nil)
	home.listWidth = defaultListWidth
	home.Update(keyRune('L'))
	if home.listWidth != defaultListWidth+listWidthStep {
		t.Errorf("listWidth after L = %d, want %d", home.listWidth, defaultListWidth+listWidthStep)
	}
	home.Update(keyRune('H'))
	if home.listWidth != defaultListWidth {
		t.Errorf("listWidth after H = %d, want %d", home.listWidth, defaultListWidth)
	}
}

func TestHomeKeys_PWithSingleProfileReturnsNoAction(t *testing.T) {
	home := newTestHome(t, nil)
	_, action := home.Update(keyRune('P'))
	if action != nil {
		t.Errorf("expected nil action with only one profile registered, got %#v", action)
	}
}

func TestHomeKeys_ROpensRenameDialogForSelectedSession(t *testing.T) {
	home := newTestHome(t, sessionsN(1))
	if home.renameDlg.IsVisible() {
		t.Fatal("rename dialog should start hidden")
	}
	home.Update(keyRune('r'))
	if !home.renameDlg.IsVisible() {
		t.Error("expected rename dialog visible after 'r' on a session")
	}
}

func TestHomeKeys_RNoOpOnGroup(t *testing.T) {
	home := newTestHome(t, groupedSessions())
	for i, item := range home.flatItems {
		if item.Kind == session.ItemGroup {
			home.setCursor(i)
			break
		}
	}
	home.Update(keyRune('r'))
	if home.renameDlg.IsVisible() {
		t.Error("expected rename dialog to stay hidden when cursor is on a group")
	}
}
