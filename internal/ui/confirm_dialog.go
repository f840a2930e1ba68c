package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nlaurent/deckops/internal/session"
)

// ConfirmType indicates what action is being confirmed.
type ConfirmType int

const (
	ConfirmDeleteSession ConfirmType = iota
	ConfirmDeleteGroup
)

// deleteCheckbox is one toggleable line in a delete-options dialog.
type deleteCheckbox struct {
	label    string
	key      rune
	checked  bool
	disabled bool // greyed out when the subtree has nothing of this kind
}

// ConfirmDialog handles confirmation for destructive actions: single-session
// delete and group delete, both of which can carry worktree/container
// cleanup options that the caller toggles before confirming.
type ConfirmDialog struct {
	visible     bool
	confirmType ConfirmType
	targetID    string // session ID or group path
	targetName  string
	width       int
	height      int

	sessionOpts session.SessionDeleteOptions
	groupOpts   session.GroupDeleteOptions
	checkboxes  []deleteCheckbox
}

// NewConfirmDialog creates a new confirmation dialog.
func NewConfirmDialog() *ConfirmDialog {
	return &ConfirmDialog{}
}

// ShowDeleteSession shows confirmation for session deletion. hasWorktree and
// hasContainer drive which option checkboxes are offered.
func (c *ConfirmDialog) ShowDeleteSession(sessionID, sessionName string, hasWorktree, hasContainer bool) {
	c.visible = true
	c.confirmType = ConfirmDeleteSession
	c.targetID = sessionID
	c.targetName = sessionName
	c.sessionOpts = session.SessionDeleteOptions{}

	c.checkboxes = []deleteCheckbox{
		{label: "Delete worktree", key: 'w', checked: hasWorktree, disabled: !hasWorktree},
		{label: "Delete branch", key: 'b', checked: false, disabled: !hasWorktree},
		{label: "Delete container", key: 'c', checked: hasContainer, disabled: !hasContainer},
		{label: "Force (worktree has uncommitted changes)", key: 'f', checked: false, disabled: !hasWorktree},
	}
}

// ShowDeleteGroup shows confirmation for group deletion.
func (c *ConfirmDialog) ShowDeleteGroup(groupPath, groupName string, hasSessions, hasWorktrees, hasContainers bool) {
	c.visible = true
	c.confirmType = ConfirmDeleteGroup
	c.targetID = groupPath
	c.targetName = groupName
	c.groupOpts = session.GroupDeleteOptions{}

	c.checkboxes = []deleteCheckbox{
		{label: "Delete sessions (otherwise moved to ungrouped)", key: 's', checked: hasSessions, disabled: !hasSessions},
		{label: "Delete worktrees", key: 'w', checked: hasWorktrees, disabled: !hasWorktrees},
		{label: "Delete branches", key: 'b', checked: false, disabled: !hasWorktrees},
		{label: "Delete containers", key: 'c', checked: hasContainers, disabled: !hasContainers},
		{label: "Force (worktrees have uncommitted changes)", key: 'f', checked: false, disabled: !hasWorktrees},
	}
}

// Hide hides the dialog.
func (c *ConfirmDialog) Hide() {
	c.visible = false
	c.targetID = ""
	c.targetName = ""
	c.checkboxes = nil
}

// IsVisible returns whether the dialog is visible.
func (c *ConfirmDialog) IsVisible() bool {
	return c.visible
}

// GetTargetID returns the session ID or group path being confirmed.
func (c *ConfirmDialog) GetTargetID() string {
	return c.targetID
}

// GetConfirmType returns the type of confirmation.
func (c *ConfirmDialog) GetConfirmType() ConfirmType {
	return c.confirmType
}

// SessionDeleteOptions returns the checkbox state as SessionDeleteOptions.
func (c *ConfirmDialog) SessionDeleteOptions() session.SessionDeleteOptions {
	opts := session.SessionDeleteOptions{}
	for _, cb := range c.checkboxes {
		switch cb.key {
		case 'w':
			opts.DeleteWorktree = cb.checked
		case 'b':
			opts.DeleteBranch = cb.checked
		case 'c':
			opts.DeleteContainer = cb.checked
		case 'f':
			opts.ForceDeleteWorktree = cb.checked
		}
	}
	return opts
}

// GroupDeleteOptions returns the checkbox state as GroupDeleteOptions.
func (c *ConfirmDialog) GroupDeleteOptions() session.GroupDeleteOptions {
	opts := session.GroupDeleteOptions{}
	for _, cb := range c.checkboxes {
		switch cb.key {
		case 's':
			opts.DeleteSessions = cb.checked
		case 'w':
			opts.DeleteWorktrees = cb.checked
		case 'b':
			opts.DeleteBranches = cb.checked
		case 'c':
			opts.DeleteContainers = cb.checked
		case 'f':
			opts.ForceDeleteWorktrees = cb.checked
		}
	}
	return opts
}

// SetSize updates dialog dimensions.
func (c *ConfirmDialog) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Update handles key events: a checkbox's key toggles it. Disabled
// checkboxes ignore their toggle key. Enter (confirm) and Esc (cancel) are
// handled by the caller, Home.updateConfirmDialog.
func (c *ConfirmDialog) Update(msg tea.KeyMsg) (*ConfirmDialog, tea.Cmd) {
	if !c.visible || len(msg.Runes) == 0 {
		return c, nil
	}
	r := msg.Runes[0]
	for i, cb := range c.checkboxes {
		if cb.key == r && !cb.disabled {
			c.checkboxes[i].checked = !c.checkboxes[i].checked
			return c, nil
		}
	}
	return c, nil
}

// View renders the confirmation dialog.
func (c *ConfirmDialog) View() string {
	if !c.visible {
		return ""
	}

	var title, warning string
	borderColor := ColorRed

	detailsStyle := lipgloss.NewStyle().
		Foreground(ColorTextDim).
		MarginBottom(1)

	switch c.confirmType {
	case ConfirmDeleteSession:
		title = "⚠️  Delete Session?"
		warning = fmt.Sprintf("This will PERMANENTLY KILL the tmux session:\n\n  \"%s\"", c.targetName)
	case ConfirmDeleteGroup:
		title = "⚠️  Delete Group?"
		warning = fmt.Sprintf("This will delete the group:\n\n  \"%s\"", c.targetName)
	}

	var checkboxLines []string
	for _, cb := range c.checkboxes {
		mark := " "
		if cb.checked {
			mark = "x"
		}
		style := lipgloss.NewStyle()
		if cb.disabled {
			style = style.Foreground(ColorTextDim)
		}
		checkboxLines = append(checkboxLines, style.Render(fmt.Sprintf("[%s] (%c) %s", mark, cb.key, cb.label)))
	}

	buttonYes := lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorRed).
		Padding(0, 2).
		Bold(true).
		Render("Enter Delete")
	buttonNo := lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorAccent).
		Padding(0, 2).
		Bold(true).
		Render("Esc Cancel")
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, buttonYes, "  ", buttonNo)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(borderColor).
		MarginBottom(1)

	warningStyle := lipgloss.NewStyle().
		Foreground(ColorYellow).
		MarginBottom(1)

	parts := []string{
		titleStyle.Render(title),
		warningStyle.Render(warning),
	}
	if len(checkboxLines) > 0 {
		parts = append(parts, detailsStyle.Render(strings.Join(checkboxLines, "\n")))
	}
	parts = append(parts, "", buttons)

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	dialogWidth := 56
	if c.width > 0 && c.width < dialogWidth+10 {
		dialogWidth = c.width - 10
	}

	dialogBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Width(dialogWidth).
		Render(content)

	if c.width > 0 && c.height > 0 {
		dialogHeight := lipgloss.Height(dialogBox)
		dialogBoxWidth := lipgloss.Width(dialogBox)

		padLeft := (c.width - dialogBoxWidth) / 2
		if padLeft < 0 {
			padLeft = 0
		}
		padTop := (c.height - dialogHeight) / 2
		if padTop < 0 {
			padTop = 0
		}

		var b strings.Builder
		for i := 0; i < padTop; i++ {
			b.WriteString("\n")
		}
		for _, line := range strings.Split(dialogBox, "\n") {
			b.WriteString(strings.Repeat(" ", padLeft))
			b.WriteString(line)
			b.WriteString("\n")
		}

		return b.String()
	}

	return dialogBox
}
