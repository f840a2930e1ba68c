package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nlaurent/deckops/internal/session"
)

// Update routes a key event to the active dialog, to search text-entry, or
// to the global bindings table (§4.4), returning an Action when the key
// triggers one. Home never performs the Action itself — the outer loop
// dispatches it and calls back into reload()/syncGroups() as needed.
func (h *Home) Update(msg tea.Msg) (tea.Cmd, session.Action) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, nil
	}

	if h.hasDialog() {
		return h.updateDialog(key)
	}

	if h.searchActive {
		return h.updateSearch(key)
	}

	return h.updateGlobal(key)
}

func (h *Home) updateGlobal(key tea.KeyMsg) (tea.Cmd, session.Action) {
	switch key.String() {
	case "q":
		return nil, session.ActionQuit{}
	case "?":
		h.help.Show()
	case "j", "down":
		h.moveCursor(1)
	case "k", "up":
		h.moveCursor(-1)
	case "pgdown":
		h.moveCursor(pageJump)
	case "pgup":
		h.moveCursor(-pageJump)
	case "home", "g":
		h.setCursor(0)
	case "end", "G":
		h.setCursor(len(h.flatItems) - 1)
	case "enter":
		return h.handleEnter()
	case "/":
		h.enterSearch()
	case "n":
		if len(h.searchMatches) > 0 {
			h.cycleMatch(1)
		} else {
			h.openNewSessionDialog()
		}
	case "N":
		if len(h.searchMatches) > 0 {
			h.cycleMatch(-1)
		}
	case "r":
		h.openRenameDialog()
	case "d":
		return h.handleDelete()
	case "t":
		if h.viewMode == ViewAgent {
			h.viewMode = ViewTerminal
		} else {
			h.viewMode = ViewAgent
		}
	case "s":
		h.settingsDlg.Show(h.profile, h.sortOrder, h.listWidth, h.viewMode)
	case "o":
		h.sortOrder = h.sortOrder.Cycle()
		h.syncGroups()
	case "ctrl+o":
		h.sortOrder = h.sortOrder.CycleBackward()
		h.syncGroups()
	case "H":
		h.listWidth -= listWidthStep
		if h.listWidth < minListWidth {
			h.listWidth = minListWidth
		}
	case "L":
		h.listWidth += listWidthStep
		if h.listWidth > maxListWidth {
			h.listWidth = maxListWidth
		}
	case "P":
		return h.switchProfile()
	}
	return nil, nil
}

// updateSearch handles keys while the search box has text-entry focus. Every
// typed rune appends to the query and re-ranks; Esc and Enter both leave
// text-entry and clear the matches (exitSearch).
func (h *Home) updateSearch(key tea.KeyMsg) (tea.Cmd, session.Action) {
	switch key.String() {
	case "esc":
		h.exitSearch()
		return nil, nil
	case "enter":
		h.exitSearch()
		return nil, nil
	case "backspace":
		if len(h.searchQuery) > 0 {
			h.searchQuery = h.searchQuery[:len(h.searchQuery)-1]
			h.rerunSearch()
		}
		return nil, nil
	}

	if len(key.Runes) == 1 {
		h.searchQuery += string(key.Runes)
		h.rerunSearch()
	}
	return nil, nil
}

// updateDialog routes a key to whichever dialog slot is currently occupied.
func (h *Home) updateDialog(key tea.KeyMsg) (tea.Cmd, session.Action) {
	switch {
	case h.help.IsVisible():
		var cmd tea.Cmd
		h.help, cmd = h.help.Update(key)
		return cmd, nil
	case h.newDialog.IsVisible():
		return h.updateNewDialog(key)
	case h.renameDlg.IsVisible():
		return h.updateRenameDialog(key)
	case h.confirmDlg.IsVisible():
		return h.updateConfirmDialog(key)
	case h.infoDlg.IsVisible():
		var cmd tea.Cmd
		h.infoDlg, cmd = h.infoDlg.Update(key)
		return cmd, nil
	case h.settingsDlg.IsVisible():
		var cmd tea.Cmd
		h.settingsDlg, cmd = h.settingsDlg.Update(key)
		return cmd, nil
	}
	return nil, nil
}
