package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewSessionDialog_ShowPrefillsTitleAndGroup(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "work", "/tmp/proj")

	if !d.IsVisible() {
		t.Fatal("expected dialog visible after Show")
	}
	if d.titleInput.Value() == "" {
		t.Error("expected a generated title")
	}
	if d.groupInput.Value() != "work" {
		t.Errorf("groupInput = %q, want work", d.groupInput.Value())
	}
	if d.pathInput.Value() != "/tmp/proj" {
		t.Errorf("pathInput = %q, want /tmp/proj", d.pathInput.Value())
	}
	if d.focus != focusTitle {
		t.Errorf("focus = %v, want focusTitle", d.focus)
	}
}

func TestNewSessionDialog_HideClearsVisibility(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "", "")
	d.Hide()
	if d.IsVisible() {
		t.Error("expected dialog hidden")
	}
}

func TestNewSessionDialog_ValidateEmptyTitle(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "", "")
	d.titleInput.SetValue("")
	d.pathInput.SetValue("/tmp/x")
	if msg := d.Validate(); msg == "" {
		t.Error("expected validation error for empty title")
	}
}

func TestNewSessionDialog_ValidateEmptyPath(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "", "")
	d.titleInput.SetValue("my-session")
	d.pathInput.SetValue("")
	if msg := d.Validate(); msg == "" {
		t.Error("expected validation error for empty path")
	}
}

func TestNewSessionDialog_ValidateOK(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "", "")
	d.titleInput.SetValue("my-session")
	d.pathInput.SetValue("/tmp/x")
	if msg := d.Validate(); msg != "" {
		t.Errorf("expected no validation error, got %q", msg)
	}
}

func TestNewSessionDialog_TabCyclesFocus(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "", "")
	if d.focus != focusTitle {
		t.Fatalf("focus = %v, want focusTitle", d.focus)
	}

	d.Update(tea.KeyMsg{Type: tea.KeyTab})
	if d.focus != focusPath {
		t.Errorf("focus after 1 tab = %v, want focusPath", d.focus)
	}
	d.Update(tea.KeyMsg{Type: tea.KeyTab})
	if d.focus != focusGroup {
		t.Errorf("focus after 2 tabs = %v, want focusGroup", d.focus)
	}
	d.Update(tea.KeyMsg{Type: tea.KeyTab})
	if d.focus != focusTool {
		t.Errorf("focus after 3 tabs = %v, want focusTool", d.focus)
	}
	d.Update(tea.KeyMsg{Type: tea.KeyTab})
	if d.focus != focusTitle {
		t.Errorf("focus after 4 tabs = %v, want focusTitle (wrapped)", d.focus)
	}
}

func TestNewSessionDialog_ShiftTabCyclesBackward(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "", "")
	d.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if d.focus != focusTool {
		t.Errorf("focus after shift+tab from title = %v, want focusTool (wrapped backward)", d.focus)
	}
}

func TestNewSessionDialog_ToolCursorCyclesOnLeftRight(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "", "")
	d.focus = focusTool
	start := d.toolCursor

	d.Update(tea.KeyMsg{Type: tea.KeyRight})
	if d.toolCursor == start {
		t.Error("expected toolCursor to advance on right")
	}
	d.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if d.toolCursor != start {
		t.Errorf("toolCursor after left = %d, want %d", d.toolCursor, start)
	}
}

func TestNewSessionDialog_ToolCursorWrapsAround(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "", "")
	d.focus = focusTool
	d.toolCursor = 0

	d.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if d.toolCursor != len(d.tools)-1 {
		t.Errorf("toolCursor after wrap-left = %d, want %d", d.toolCursor, len(d.tools)-1)
	}
}

func TestNewSessionDialog_ParamsReflectFields(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "work/frontend", "/tmp/proj")
	d.titleInput.SetValue("  my session  ")
	d.toolCursor = 0

	params := d.Params()
	if params.Title != "my session" {
		t.Errorf("Title = %q, want trimmed 'my session'", params.Title)
	}
	if params.ProjectPath != "/tmp/proj" {
		t.Errorf("ProjectPath = %q, want /tmp/proj", params.ProjectPath)
	}
	if params.GroupPath != "work/frontend" {
		t.Errorf("GroupPath = %q, want work/frontend", params.GroupPath)
	}
	if params.Tool != d.tools[0] {
		t.Errorf("Tool = %q, want %q", params.Tool, d.tools[0])
	}
}

func TestNewSessionDialog_SetErrorReflectedInView(t *testing.T) {
	d := NewNewSessionDialog()
	d.Show(nil, "", "")
	d.SetSize(100, 30)
	d.SetError("Session title cannot be empty")

	view := d.View()
	if !strings.Contains(view, "Session title cannot be empty") {
		t.Error("expected validation error to appear in rendered view")
	}
}

func TestNewSessionDialog_HiddenViewIsEmpty(t *testing.T) {
	d := NewNewSessionDialog()
	if view := d.View(); view != "" {
		t.Errorf("View() on hidden dialog = %q, want empty", view)
	}
}
