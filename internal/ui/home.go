package ui

import (
	"log/slog"

	"github.com/nlaurent/deckops/internal/logging"
	"github.com/nlaurent/deckops/internal/search"
	"github.com/nlaurent/deckops/internal/session"
)

var homeLog = logging.ForComponent(logging.CompUI)

// ViewMode controls which Action Enter returns for a Session and whether the
// unified-delete path (`d`) is permitted.
type ViewMode int

const (
	ViewAgent ViewMode = iota
	ViewTerminal
)

const (
	minListWidth     = 10
	maxListWidth     = 80
	defaultListWidth = 35
	listWidthStep    = 5

	pageJump = 10
)

// Home is the controller over the flattened session/group list: cursor
// motion, search, dialogs, sort order, and the mutation paths that keep
// storage, the group tree, and the projected list in sync. It never performs
// attach/delete/spawn itself — every side effect crosses the Action boundary
// to the outer event loop.
type Home struct {
	width  int
	height int

	storage *session.Storage

	instances    []*session.Instance
	instanceByID map[string]*session.Instance
	groupTree    *session.GroupTree
	groups       []*session.Group // mirrors groupTree.GetAllGroups(); load-bearing, see syncGroups
	flatItems    []session.Item

	sortOrder session.SortOrder
	viewMode  ViewMode
	listWidth int

	cursor          int
	selectedSession string // "" when cursor is on a Group
	selectedGroup   string // "" when cursor is on a Session

	searchActive    bool
	searchQuery     string
	searchMatches   []int
	searchMatchIdx  int
	searchJustTyped bool

	menu        *Menu
	help        *HelpOverlay
	newDialog   *NewSessionDialog
	renameDlg   *GroupDialog // used only in GroupDialogRenameSession mode
	confirmDlg  *ConfirmDialog
	infoDlg     *InfoDialog
	settingsDlg *SettingsDialog

	profile       string
	lastActionErr error
}

// NewHome constructs a HomeView bound to storage, loading its initial state.
func NewHome(storage *session.Storage, profile string) (*Home, error) {
	h := &Home{
		storage:     storage,
		profile:     profile,
		sortOrder:   session.SortNewest,
		viewMode:    ViewAgent,
		listWidth:   defaultListWidth,
		menu:        NewMenu(),
		help:        NewHelpOverlay(),
		newDialog:   NewNewSessionDialog(),
		renameDlg:   NewGroupDialog(),
		confirmDlg:  NewConfirmDialog(),
		infoDlg:     NewInfoDialog(),
		settingsDlg: NewSettingsDialog(),
	}
	if err := h.reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// SetSize updates the terminal dimensions used for dialog centering.
func (h *Home) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.menu.SetWidth(width)
	h.help.SetSize(width, height)
	h.newDialog.SetSize(width, height)
	h.renameDlg.SetSize(width, height)
	h.confirmDlg.SetSize(width, height)
	h.infoDlg.SetSize(width, height)
	h.settingsDlg.SetSize(width, height)
}

// reload re-reads storage, rebuilds instanceByID and groupTree, refreshes the
// groups mirror, re-projects flatItems, clamps cursor, and recomputes
// selection. Every mutation path ends by calling this (or syncGroups, for
// paths that only touch the tree) so storage, the tree, and the view never
// drift.
func (h *Home) reload() error {
	instances, tree, err := h.storage.LoadWithGroups()
	if err != nil {
		homeLog.Warn("reload_failed", slog.String("error", err.Error()))
		return err
	}

	h.instances = instances
	h.instanceByID = make(map[string]*session.Instance, len(instances))
	for _, inst := range instances {
		h.instanceByID[inst.ID] = inst
	}
	h.groupTree = tree
	h.syncGroups()
	return nil
}

// syncGroups re-projects flatItems from the current groupTree/instances,
// refreshes the cached groups mirror, clamps cursor, and recomputes
// selection. Called after every structural mutation, including ones that
// only touch the tree (collapse/create/delete) without a full storage reload.
func (h *Home) syncGroups() {
	h.groups = h.groupTree.GetAllGroups()
	h.flatItems = session.Flatten(h.groupTree, h.instances, h.sortOrder)
	h.clampCursor()
	h.updateSelected()
}

// clampCursor keeps cursor in [0, max(len-1, 0)].
func (h *Home) clampCursor() {
	if len(h.flatItems) == 0 {
		h.cursor = 0
		return
	}
	if h.cursor < 0 {
		h.cursor = 0
	}
	if h.cursor > len(h.flatItems)-1 {
		h.cursor = len(h.flatItems) - 1
	}
}

// updateSelected inspects flatItems[cursor] and sets selectedSession xor
// selectedGroup. Called whenever cursor moves or items are rebuilt.
func (h *Home) updateSelected() {
	if h.cursor < 0 || h.cursor >= len(h.flatItems) {
		h.selectedSession = ""
		h.selectedGroup = ""
		return
	}
	item := h.flatItems[h.cursor]
	switch item.Kind {
	case session.ItemGroup:
		h.selectedGroup = item.GroupPath
		h.selectedSession = ""
	case session.ItemSession:
		h.selectedSession = item.SessionID
		h.selectedGroup = ""
	}
}

// hasDialog reports whether any modal is currently occupied; while true, key
// events route to that dialog instead of the global bindings.
func (h *Home) hasDialog() bool {
	return h.help.IsVisible() ||
		h.newDialog.IsVisible() ||
		h.renameDlg.IsVisible() ||
		h.confirmDlg.IsVisible() ||
		h.infoDlg.IsVisible() ||
		h.settingsDlg.IsVisible()
}

// SelectedInstance returns the Instance backing the current cursor position,
// or nil if the cursor is on a Group or out of range.
func (h *Home) SelectedInstance() *session.Instance {
	if h.selectedSession == "" {
		return nil
	}
	return h.instanceByID[h.selectedSession]
}

// Instances returns the full loaded instance list, for the outer event loop
// to scan for a pending bulk operation (e.g. every StatusDeleting instance
// after a group delete).
func (h *Home) Instances() []*session.Instance {
	return h.instances
}

// InstanceByID looks up an Instance regardless of cursor position, for the
// outer event loop to resolve the target of an Action after the HomeView has
// already moved on (e.g. a delete confirmed after the selection changed).
func (h *Home) InstanceByID(id string) *session.Instance {
	return h.instanceByID[id]
}

// Reload re-reads storage and re-projects the view. The outer event loop
// calls this after dispatching an Action that mutated storage out from under
// the controller (create, external profile sync) and on the periodic refresh
// tick.
func (h *Home) Reload() error {
	return h.reload()
}

// Save persists the current in-memory instances and group tree, for the
// outer event loop after an Action it fulfills mutates an Instance field
// (e.g. a rename) directly rather than through a HomeView mutation path.
func (h *Home) Save() error {
	return h.storage.SaveWithGroups(h.instances, h.groupTree)
}

// Profile returns the profile name this HomeView was constructed with.
func (h *Home) Profile() string {
	return h.profile
}

// ViewMode reports the current Agent/Terminal display mode.
func (h *Home) ViewMode() ViewMode {
	return h.viewMode
}

// SelectSessionByID moves the cursor to a session's current position in
// flatItems, if present. Silent no-op if the session is absent.
func (h *Home) SelectSessionByID(id string) {
	for i, item := range h.flatItems {
		if item.Kind == session.ItemSession && item.SessionID == id {
			h.cursor = i
			h.updateSelected()
			return
		}
	}
}

// rankItems runs the search engine over the current flatItems.
func (h *Home) rankItems(query string) []int {
	return search.Rank(h.flatItems, h.instanceByID, query)
}
