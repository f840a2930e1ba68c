package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nlaurent/deckops/internal/session"
)

// SettingsDialog is a read-only snapshot of the current view settings,
// opened by `s`. The configuration file schema beyond sort-order/list-width
// defaults is out of scope for this core; this dialog only reports the
// live HomeView state the operator just changed with o/H/L/t/P.
type SettingsDialog struct {
	visible bool
	width   int
	height  int

	profile   string
	sortOrder session.SortOrder
	listWidth int
	viewMode  ViewMode
}

// NewSettingsDialog creates a new settings dialog.
func NewSettingsDialog() *SettingsDialog {
	return &SettingsDialog{}
}

// Show displays the dialog with the current values.
func (d *SettingsDialog) Show(profile string, sortOrder session.SortOrder, listWidth int, viewMode ViewMode) {
	d.visible = true
	d.profile = profile
	d.sortOrder = sortOrder
	d.listWidth = listWidth
	d.viewMode = viewMode
}

// Hide hides the dialog.
func (d *SettingsDialog) Hide() {
	d.visible = false
}

// IsVisible returns whether the dialog is visible.
func (d *SettingsDialog) IsVisible() bool {
	return d.visible
}

// SetSize updates dialog dimensions.
func (d *SettingsDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Update closes the dialog on any key.
func (d *SettingsDialog) Update(msg tea.KeyMsg) (*SettingsDialog, tea.Cmd) {
	if d.visible {
		d.Hide()
	}
	return d, nil
}

// View renders the dialog.
func (d *SettingsDialog) View() string {
	if !d.visible {
		return ""
	}

	viewModeName := "Agent"
	if d.viewMode == ViewTerminal {
		viewModeName = "Terminal"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Foreground(ColorTextDim)
	hintStyle := lipgloss.NewStyle().Foreground(ColorComment).MarginTop(1)

	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Profile:"), d.profile),
		fmt.Sprintf("%s %s", labelStyle.Render("Sort order:"), d.sortOrder.String()),
		fmt.Sprintf("%s %d", labelStyle.Render("List width:"), d.listWidth),
		fmt.Sprintf("%s %s", labelStyle.Render("View mode:"), viewModeName),
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Settings"),
		lipgloss.JoinVertical(lipgloss.Left, lines...),
		hintStyle.Render("Press any key to close"),
	)

	dialogWidth := 40
	if d.width > 0 && d.width < dialogWidth+10 {
		dialogWidth = d.width - 10
	}

	box := DialogBoxStyle.Width(dialogWidth).Render(content)
	return centerInScreen(box, d.width, d.height)
}
