package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nlaurent/deckops/internal/session"
)

func TestHomeMutations_EnterTogglesGroupCollapseAndPersists(t *testing.T) {
	home := newTestHome(t, groupedSessions())
	idx := -1
	for i, item := range home.flatItems {
		if item.Kind == session.ItemGroup {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatal("expected at least one group")
	}
	path := home.flatItems[idx].GroupPath
	home.setCursor(idx)

	home.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !home.groupTree.Get(path).Collapsed {
		t.Fatal("expected group collapsed after Enter")
	}

	_, tree, err := home.storage.LoadWithGroups()
	if err != nil {
		t.Fatalf("LoadWithGroups failed: %v", err)
	}
	if !tree.Get(path).Collapsed {
		t.Error("expected collapse to persist to storage")
	}
}

func TestHomeMutations_SubmitNewSessionCreatesGroupAndReturnsAction(t *testing.T) {
	home := newTestHome(t, nil)
	home.newDialog.Show(nil, "brand-new-group", "/tmp/x")
	home.newDialog.titleInput.SetValue("my-session")

	require := func(cond bool, msg string) {
		if !cond {
			t.Fatal(msg)
		}
	}
	require(!home.groupTree.GroupExists("brand-new-group"), "group should not exist yet")

	_, action := home.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require(home.groupTree.GroupExists("brand-new-group"), "group should be created by submit")
	create, ok := action.(session.ActionCreateSession)
	if !ok {
		t.Fatalf("action = %#v, want ActionCreateSession", action)
	}
	if create.Params.GroupPath != "brand-new-group" {
		t.Errorf("Params.GroupPath = %q, want brand-new-group", create.Params.GroupPath)
	}
	if home.newDialog.IsVisible() {
		t.Error("expected new-session dialog hidden after submit")
	}
}

func TestHomeMutations_ConfirmDeleteSessionMarksDeletingAndReturnsAction(t *testing.T) {
	home := newTestHome(t, sessionsN(1))
	inst := home.instances[0]

	home.Update(keyRune('d'))
	if !home.confirmDlg.IsVisible() {
		t.Fatal("expected confirm dialog visible")
	}

	_, action := home.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if inst.Status != session.StatusDeleting {
		t.Errorf("instance status = %v, want StatusDeleting", inst.Status)
	}
	del, ok := action.(session.ActionDeleteSession)
	if !ok {
		t.Fatalf("action = %#v, want ActionDeleteSession", action)
	}
	if del.ID != inst.ID {
		t.Errorf("ActionDeleteSession.ID = %q, want %q", del.ID, inst.ID)
	}
	if home.confirmDlg.IsVisible() {
		t.Error("expected confirm dialog hidden after submit")
	}
}

func TestHomeMutations_ConfirmDeleteGroupMarksMembersDeletingAndReturnsAction(t *testing.T) {
	home := newTestHome(t, groupedSessions())
	idx := -1
	for i, item := range home.flatItems {
		if item.Kind == session.ItemGroup && item.SessionCount > 0 {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatal("expected a non-empty group")
	}
	path := home.flatItems[idx].GroupPath
	home.setCursor(idx)

	home.Update(keyRune('d'))
	if !home.confirmDlg.IsVisible() {
		t.Fatal("expected confirm dialog visible for non-empty group")
	}

	_, action := home.Update(tea.KeyMsg{Type: tea.KeyEnter})
	del, ok := action.(session.ActionDeleteGroup)
	if !ok {
		t.Fatalf("action = %#v, want ActionDeleteGroup", action)
	}
	if del.Path != path {
		t.Errorf("ActionDeleteGroup.Path = %q, want %q", del.Path, path)
	}
	for _, inst := range home.instances {
		if inst.InGroup(path) && inst.Status != session.StatusDeleting {
			t.Errorf("instance %q status = %v, want StatusDeleting", inst.ID, inst.Status)
		}
	}
	if home.groupTree.GroupExists(path) {
		t.Error("expected group removed from tree after confirm")
	}
}

func TestHomeMutations_DeleteEmptyGroupIsImmediate(t *testing.T) {
	home := newTestHome(t, nil)
	home.groupTree.CreateGroup("empty-group")
	home.syncGroups()

	idx := -1
	for i, item := range home.flatItems {
		if item.Kind == session.ItemGroup && item.GroupPath == "empty-group" {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatal("expected empty-group to appear in flatItems")
	}
	home.setCursor(idx)

	_, action := home.Update(keyRune('d'))
	if action != nil {
		t.Errorf("expected no Action for an immediate empty-group delete, got %#v", action)
	}
	if home.groupTree.GroupExists("empty-group") {
		t.Error("expected empty-group removed immediately without a confirm dialog")
	}
	if home.confirmDlg.IsVisible() {
		t.Error("expected no confirm dialog for an empty group")
	}
}

func TestHomeMutations_RenameSubmitReturnsAction(t *testing.T) {
	home := newTestHome(t, sessionsN(1))
	inst := home.instances[0]

	home.Update(keyRune('r'))
	if !home.renameDlg.IsVisible() {
		t.Fatal("expected rename dialog visible")
	}
	home.renameDlg.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	_, action := home.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rename, ok := action.(session.ActionRenameSession)
	if !ok {
		t.Fatalf("action = %#v, want ActionRenameSession", action)
	}
	if rename.ID != inst.ID {
		t.Errorf("ActionRenameSession.ID = %q, want %q", rename.ID, inst.ID)
	}
	if home.renameDlg.IsVisible() {
		t.Error("expected rename dialog hidden after submit")
	}
}

func TestHomeMutations_TerminalViewBlocksDelete(t *testing.T) {
	home := newTestHome(t, sessionsN(1))
	home.viewMode = ViewTerminal

	_, action := home.Update(keyRune('d'))
	if action != nil {
		t.Errorf("expected no Action while blocked in Terminal view, got %#v", action)
	}
	if home.confirmDlg.IsVisible() {
		t.Error("expected confirm dialog to stay hidden in Terminal view")
	}
	if !home.infoDlg.IsVisible() {
		t.Error("expected an info dialog explaining the Terminal-view block")
	}
}

func TestHomeMutations_TerminalViewReturnsAttachTerminalAction(t *testing.T) {
	home := newTestHome(t, sessionsN(1))
	home.viewMode = ViewTerminal

	_, action := home.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := action.(session.ActionAttachTerminal); !ok {
		t.Fatalf("action = %#v, want ActionAttachTerminal", action)
	}
}
