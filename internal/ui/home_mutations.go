package ui

import (
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nlaurent/deckops/internal/session"
)

// moveCursor shifts cursor by delta, clamping, and recomputes selection.
func (h *Home) moveCursor(delta int) {
	h.setCursor(h.cursor + delta)
}

// setCursor sets cursor to an absolute position, clamping, and recomputes
// selection.
func (h *Home) setCursor(pos int) {
	h.cursor = pos
	h.clampCursor()
	h.updateSelected()
}

// handleEnter implements §4.5: toggling a Group's collapsed flag (persisted),
// or returning an attach Action for a Session per the current view_mode.
func (h *Home) handleEnter() (tea.Cmd, session.Action) {
	if h.cursor < 0 || h.cursor >= len(h.flatItems) {
		return nil, nil
	}
	item := h.flatItems[h.cursor]

	switch item.Kind {
	case session.ItemGroup:
		h.groupTree.ToggleCollapsed(item.GroupPath)
		if err := h.storage.SaveGroupsOnly(h.groupTree); err != nil {
			homeLog.Warn("collapse_persist_failed", slog.String("error", err.Error()))
		}
		h.syncGroups()
		return nil, nil
	case session.ItemSession:
		inst := h.instanceByID[item.SessionID]
		if inst == nil {
			return nil, nil
		}
		if h.viewMode == ViewTerminal {
			return nil, session.ActionAttachTerminal{ID: inst.ID, Path: inst.ProjectPath}
		}
		return nil, session.ActionAttachSession{ID: inst.ID}
	}
	return nil, nil
}

// handleDelete implements §4.4/§4.6's `d` branch: a Terminal-view guard, the
// unified session delete dialog, the group-delete-options dialog, or an
// immediate delete for an empty group.
func (h *Home) handleDelete() (tea.Cmd, session.Action) {
	if h.viewMode == ViewTerminal {
		h.infoDlg.Show("Delete unavailable", "Switch to Agent view (t) to delete sessions.")
		return nil, nil
	}

	if h.selectedSession != "" {
		inst := h.instanceByID[h.selectedSession]
		if inst == nil {
			return nil, nil
		}
		h.confirmDlg.ShowDeleteSession(inst.ID, inst.Title, inst.HasManagedWorktree(), inst.HasSandbox())
		return nil, nil
	}

	if h.selectedGroup != "" {
		item := h.flatItems[h.cursor]
		if item.SessionCount == 0 {
			h.groupTree.DeleteGroup(h.selectedGroup)
			if err := h.storage.SaveWithGroups(h.instances, h.groupTree); err != nil {
				homeLog.Warn("empty_group_delete_persist_failed", slog.String("error", err.Error()))
			}
			h.syncGroups()
			return nil, nil
		}

		hasWorktrees := session.GroupHasManagedWorktrees(h.selectedGroup, h.instances)
		hasContainers := session.GroupHasContainers(h.selectedGroup, h.instances)
		h.confirmDlg.ShowDeleteGroup(h.selectedGroup, item.GroupName, true, hasWorktrees, hasContainers)
		return nil, nil
	}

	return nil, nil
}

// openNewSessionDialog opens the new-session dialog, defaulting its group
// field to the group currently under the cursor (if any).
func (h *Home) openNewSessionDialog() {
	defaultGroup := h.selectedGroup
	if defaultGroup == "" && h.selectedSession != "" {
		if inst := h.instanceByID[h.selectedSession]; inst != nil {
			defaultGroup = inst.GroupPath
		}
	}
	h.newDialog.Show(h.instances, defaultGroup, "")
}

// updateNewDialog handles the new-session dialog's Enter/Esc and delegates
// everything else to the dialog's own field-focus handling.
func (h *Home) updateNewDialog(key tea.KeyMsg) (tea.Cmd, session.Action) {
	switch key.String() {
	case "esc":
		h.newDialog.Hide()
		return nil, nil
	case "enter":
		if errMsg := h.newDialog.Validate(); errMsg != "" {
			h.newDialog.SetError(errMsg)
			return nil, nil
		}
		return h.submitNewSession()
	}
	var cmd tea.Cmd
	h.newDialog, cmd = h.newDialog.Update(key)
	return cmd, nil
}

// submitNewSession implements the create-group side of §4.6 ("Create-group
// via dialog calls group_tree.create_group(path)... and persists") before
// handing the rest of session creation to the outer loop as an Action.
func (h *Home) submitNewSession() (tea.Cmd, session.Action) {
	params := h.newDialog.Params()
	if params.GroupPath != "" && !h.groupTree.GroupExists(params.GroupPath) {
		h.groupTree.CreateGroup(params.GroupPath)
		if err := h.storage.SaveWithGroups(h.instances, h.groupTree); err != nil {
			homeLog.Warn("group_create_persist_failed", slog.String("error", err.Error()))
		}
		h.syncGroups()
	}
	h.newDialog.Hide()
	return nil, session.ActionCreateSession{Params: params}
}

// openRenameDialog opens the rename dialog for the selected session; a
// no-op when the selection is a Group (rename only covers session titles).
func (h *Home) openRenameDialog() {
	if h.selectedSession == "" {
		return
	}
	inst := h.instanceByID[h.selectedSession]
	if inst == nil {
		return
	}
	h.renameDlg.ShowRenameSession(inst.ID, inst.Title)
}

func (h *Home) updateRenameDialog(key tea.KeyMsg) (tea.Cmd, session.Action) {
	switch key.String() {
	case "esc":
		h.renameDlg.Hide()
		return nil, nil
	case "enter":
		if errMsg := h.renameDlg.Validate(); errMsg != "" {
			h.renameDlg.SetError(errMsg)
			return nil, nil
		}
		id := h.renameDlg.GetSessionID()
		newTitle := h.renameDlg.GetValue()
		h.renameDlg.Hide()
		return nil, session.ActionRenameSession{ID: id, NewTitle: newTitle}
	}
	var cmd tea.Cmd
	h.renameDlg, cmd = h.renameDlg.Update(key)
	return cmd, nil
}

// updateConfirmDialog handles the unified delete confirmations: checkbox
// toggles pass through to the dialog; Enter commits the per-§4.6 status
// transition to Deleting and persists before returning the delete Action;
// Esc cancels without mutating anything.
func (h *Home) updateConfirmDialog(key tea.KeyMsg) (tea.Cmd, session.Action) {
	switch key.String() {
	case "esc":
		h.confirmDlg.Hide()
		return nil, nil
	case "enter":
		return h.submitConfirmDelete()
	}
	var cmd tea.Cmd
	h.confirmDlg, cmd = h.confirmDlg.Update(key)
	return cmd, nil
}

func (h *Home) submitConfirmDelete() (tea.Cmd, session.Action) {
	confirmType := h.confirmDlg.GetConfirmType()
	target := h.confirmDlg.GetTargetID()

	switch confirmType {
	case ConfirmDeleteSession:
		opts := h.confirmDlg.SessionDeleteOptions()
		if inst := h.instanceByID[target]; inst != nil {
			inst.Status = session.StatusDeleting
		}
		if err := h.storage.SaveWithGroups(h.instances, h.groupTree); err != nil {
			homeLog.Warn("session_delete_persist_failed", slog.String("error", err.Error()))
		}
		h.confirmDlg.Hide()
		h.syncGroups()
		return nil, session.ActionDeleteSession{ID: target, Options: opts}

	case ConfirmDeleteGroup:
		opts := h.confirmDlg.GroupDeleteOptions()
		prefix := target + "/"
		for _, inst := range h.instances {
			if inst.GroupPath == target || strings.HasPrefix(inst.GroupPath, prefix) {
				inst.Status = session.StatusDeleting
			}
		}
		h.groupTree.DeleteGroup(target)
		if err := h.storage.SaveWithGroups(h.instances, h.groupTree); err != nil {
			homeLog.Warn("group_delete_persist_failed", slog.String("error", err.Error()))
		}
		h.confirmDlg.Hide()
		// syncGroups refreshes the `groups` mirror so it no longer references
		// the removed paths — see §4.6's mirror-synchronization invariant.
		h.syncGroups()
		return nil, session.ActionDeleteGroup{Path: target, Options: opts}
	}
	return nil, nil
}

// switchProfile advances to the alphabetically next profile, per §4.4's `P`.
func (h *Home) switchProfile() (tea.Cmd, session.Action) {
	next, err := session.GetNextProfile(h.profile)
	if err != nil {
		homeLog.Warn("next_profile_failed", slog.String("error", err.Error()))
		return nil, nil
	}
	if next == "" {
		return nil, nil
	}
	return nil, session.ActionSwitchProfile{Name: next}
}

// enterSearch opens search text-entry (§4.3).
func (h *Home) enterSearch() {
	h.searchActive = true
	h.searchQuery = ""
	h.searchMatches = nil
	h.searchMatchIdx = 0
}

// exitSearch implements §4.3's Enter/Esc behavior: both clear search_active,
// search_query, search_matches, and search_match_index, and neither moves
// the cursor — so a subsequent periodic reload does not snap back to the
// former best match.
func (h *Home) exitSearch() {
	h.searchActive = false
	h.searchQuery = ""
	h.searchMatches = nil
	h.searchMatchIdx = 0
}

// rerunSearch re-ranks flatItems against the current query and jumps the
// cursor to the best match, if any.
func (h *Home) rerunSearch() {
	h.searchMatches = h.rankItems(h.searchQuery)
	h.searchMatchIdx = 0
	if len(h.searchMatches) > 0 {
		h.setCursor(h.searchMatches[0])
	}
}

// cycleMatch advances (or reverses) through the pending match set, wrapping,
// and moves the cursor to the newly selected match.
func (h *Home) cycleMatch(delta int) {
	n := len(h.searchMatches)
	if n == 0 {
		return
	}
	h.searchMatchIdx = ((h.searchMatchIdx+delta)%n + n) % n
	h.setCursor(h.searchMatches[h.searchMatchIdx])
}
