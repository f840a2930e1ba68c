package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nlaurent/deckops/internal/docker"
	"github.com/nlaurent/deckops/internal/git"
	"github.com/nlaurent/deckops/internal/logging"
	"github.com/nlaurent/deckops/internal/session"
	"github.com/nlaurent/deckops/internal/tmux"
	"github.com/nlaurent/deckops/internal/ui"
)

var appLog = logging.ForComponent(logging.CompSession)

const refreshInterval = 5 * time.Second // periodic status refresh

// model is the outer bubbletea.Model. It owns the terminal lifecycle and
// dispatches the Actions HomeView hands back — attaching tmux sessions,
// tearing down worktrees/containers on delete, and switching profiles —
// none of which the controller is allowed to do itself.
type model struct {
	storage *session.Storage
	home    *ui.Home
	watcher *ui.StorageWatcher

	width, height int
}

func newModel(storage *session.Storage, home *ui.Home) *model {
	m := &model{storage: storage, home: home}
	m.watcher = newWatcherFor(storage)
	return m
}

func newWatcherFor(storage *session.Storage) *ui.StorageWatcher {
	w, err := ui.NewStorageWatcher(storage.GetDB())
	if err != nil {
		appLog.Warn("storage_watcher_init_failed", slog.String("error", err.Error()))
		return nil
	}
	return w
}

// notifySave marks a write this process just made, so the watcher's next
// poll doesn't mistake our own save for an external change and reload.
func (m *model) notifySave() {
	if m.watcher != nil {
		m.watcher.NotifySave()
	}
}

type tickMsg struct{}
type reloadMsg struct{}
type attachDoneMsg struct{ err error }

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// waitForExternalReload blocks on the watcher's reload channel in its own
// goroutine and surfaces a reloadMsg when another process touches storage.
func waitForExternalReload(w *ui.StorageWatcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.ReloadChannel()
		return reloadMsg{}
	}
}

func (m *model) Init() tea.Cmd {
	if m.watcher != nil {
		m.watcher.Start()
	}
	return tea.Batch(refreshTick(), waitForExternalReload(m.watcher))
}

func (m *model) View() string {
	return m.home.View()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.home.SetSize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		if err := m.home.Reload(); err != nil {
			appLog.Warn("periodic_reload_failed", slog.String("error", err.Error()))
		}
		m.refreshSandboxStatuses()
		return m, refreshTick()

	case reloadMsg:
		if err := m.home.Reload(); err != nil {
			appLog.Warn("external_reload_failed", slog.String("error", err.Error()))
		}
		return m, waitForExternalReload(m.watcher)

	case attachDoneMsg:
		if msg.err != nil {
			appLog.Warn("attach_failed", slog.String("error", msg.err.Error()))
		}
		if err := m.home.Reload(); err != nil {
			appLog.Warn("post_attach_reload_failed", slog.String("error", err.Error()))
		}
		return m, nil

	case tea.KeyMsg:
		cmd, action := m.home.Update(msg)
		actionCmd := m.dispatch(action)
		return m, tea.Batch(cmd, actionCmd)
	}

	return m, nil
}

// dispatch performs the side effect an Action names and returns the tea.Cmd
// (if any) that carries it out. The HomeView has already updated its own
// in-memory projection and persisted whatever it owns; dispatch only handles
// what crosses outside the controller's boundary.
func (m *model) dispatch(action session.Action) tea.Cmd {
	switch a := action.(type) {
	case nil:
		return nil

	case session.ActionQuit:
		return tea.Quit

	case session.ActionAttachSession:
		return m.attach(a.ID, toolCommandFor)

	case session.ActionAttachTerminal:
		return m.attach(a.ID, func(*session.Instance) string { return shellCommand() })

	case session.ActionDeleteSession:
		m.teardownSession(a.ID, a.Options)
		return nil

	case session.ActionDeleteGroup:
		m.teardownGroup(a.Options)
		return nil

	case session.ActionCreateSession:
		m.createSession(a.Params)
		return nil

	case session.ActionRenameSession:
		if inst := m.home.InstanceByID(a.ID); inst != nil {
			inst.Title = a.NewTitle
			m.notifySave()
			if err := m.home.Save(); err != nil {
				appLog.Warn("rename_save_failed", slog.String("id", a.ID), slog.String("error", err.Error()))
			}
		}
		return nil

	case session.ActionRefreshStatuses:
		if err := m.home.Reload(); err != nil {
			appLog.Warn("refresh_statuses_failed", slog.String("error", err.Error()))
		}
		return nil

	case session.ActionSwitchProfile:
		m.switchProfile(a.Name)
		return waitForExternalReload(m.watcher)
	}
	return nil
}

// toolCommandFor resolves the shell command used to start an Instance's
// tmux session in Agent view: the explicit Command override if set, else the
// tool name itself (the tool binaries this deck manages are invoked by name:
// claude, gemini, opencode, codex).
func toolCommandFor(inst *session.Instance) string {
	if inst.Command != "" {
		return inst.Command
	}
	if inst.Tool == "" || inst.Tool == "shell" {
		return shellCommand()
	}
	return inst.Tool
}

func shellCommand() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// attach ensures the instance's tmux session exists (starting it with
// commandFor's result if this is its first attach) and suspends the TUI to
// hand the terminal to tmux via a PTY.
func (m *model) attach(id string, commandFor func(*session.Instance) string) tea.Cmd {
	inst := m.home.InstanceByID(id)
	if inst == nil {
		return nil
	}
	sess := inst.EnsureTmuxSession()
	if !sess.Exists() {
		if err := sess.Start(commandFor(inst)); err != nil {
			return func() tea.Msg { return attachDoneMsg{err: err} }
		}
	}
	return tea.Exec(attachCmd{session: sess}, func(err error) tea.Msg {
		return attachDoneMsg{err: err}
	})
}

type attachCmd struct {
	session *tmux.Session
}

func (a attachCmd) Run() error {
	return a.session.Attach(context.Background())
}
func (a attachCmd) SetStdin(io.Reader)  {}
func (a attachCmd) SetStdout(io.Writer) {}
func (a attachCmd) SetStderr(io.Writer) {}

// teardownSession kills the tmux session and, per the confirmed options,
// removes the managed worktree/container before the row itself is gone
// (HomeView already marked it StatusDeleting and saved).
func (m *model) teardownSession(id string, opts session.SessionDeleteOptions) {
	inst := m.home.InstanceByID(id)
	if inst == nil {
		return
	}
	m.destroyInstanceResources(inst, opts)
	m.notifySave()
	if err := m.storage.DeleteInstance(id); err != nil {
		appLog.Warn("delete_instance_failed", slog.String("id", id), slog.String("error", err.Error()))
	}
	if err := m.home.Reload(); err != nil {
		appLog.Warn("post_delete_reload_failed", slog.String("error", err.Error()))
	}
}

// teardownGroup tears down every instance the HomeView already flagged
// StatusDeleting (those under the deleted group's subtree) when the operator
// opted into cascading session deletion.
func (m *model) teardownGroup(opts session.GroupDeleteOptions) {
	if !opts.DeleteSessions {
		if err := m.home.Reload(); err != nil {
			appLog.Warn("group_delete_reload_failed", slog.String("error", err.Error()))
		}
		return
	}

	sessionOpts := session.SessionDeleteOptions{
		DeleteWorktree:      opts.DeleteWorktrees,
		DeleteBranch:        opts.DeleteBranches,
		DeleteContainer:     opts.DeleteContainers,
		ForceDeleteWorktree: opts.ForceDeleteWorktrees,
	}
	for _, inst := range m.home.Instances() {
		if inst.Status != session.StatusDeleting {
			continue
		}
		m.destroyInstanceResources(inst, sessionOpts)
		m.notifySave()
		if err := m.storage.DeleteInstance(inst.ID); err != nil {
			appLog.Warn("group_delete_instance_failed", slog.String("id", inst.ID), slog.String("error", err.Error()))
		}
	}
	if err := m.home.Reload(); err != nil {
		appLog.Warn("group_delete_reload_failed", slog.String("error", err.Error()))
	}
}

func (m *model) destroyInstanceResources(inst *session.Instance, opts session.SessionDeleteOptions) {
	sess := inst.EnsureTmuxSession()
	if err := sess.Kill(); err != nil {
		appLog.Debug("tmux_kill_failed", slog.String("id", inst.ID), slog.String("error", err.Error()))
	}

	if opts.DeleteWorktree && inst.HasManagedWorktree() {
		if err := git.RemoveWorktree(inst.Worktree.MainRepoPath, inst.ProjectPath, opts.ForceDeleteWorktree); err != nil {
			appLog.Warn("worktree_remove_failed", slog.String("id", inst.ID), slog.String("error", err.Error()))
		} else if opts.DeleteBranch {
			if err := git.DeleteBranch(inst.Worktree.MainRepoPath, inst.Worktree.Branch, opts.ForceDeleteWorktree); err != nil {
				appLog.Warn("branch_delete_failed", slog.String("id", inst.ID), slog.String("error", err.Error()))
			}
		}
	}

	if opts.DeleteContainer && inst.HasSandbox() {
		ctx := context.Background()
		if err := docker.FromName(inst.Sandbox.ContainerID).Remove(ctx, true); err != nil {
			appLog.Warn("container_remove_failed", slog.String("id", inst.ID), slog.String("error", err.Error()))
		}
	}
}

// refreshSandboxStatuses polls docker for every sandboxed instance's
// container state, copies the container image into the in-memory Sandbox
// info, and marks instances whose container is not running as idle.
func (m *model) refreshSandboxStatuses() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	names := make([]string, 0)
	for _, inst := range m.home.Instances() {
		if inst.HasSandbox() {
			names = append(names, inst.Sandbox.ContainerID)
		}
	}
	if len(names) == 0 {
		return
	}

	statuses, err := docker.InspectSandboxes(ctx, names)
	if err != nil {
		appLog.Debug("sandbox_inspect_failed", slog.String("error", err.Error()))
		return
	}
	for _, inst := range m.home.Instances() {
		if !inst.HasSandbox() {
			continue
		}
		if status, ok := statuses[inst.Sandbox.ContainerID]; ok {
			inst.Sandbox.Image = status.Image
			if !status.Running {
				inst.Status = session.StatusIdle
			}
		}
	}
}

// createSession builds a new Instance from the dialog's params and persists
// it — the group itself was already created (if new) by HomeView before
// this Action was returned.
func (m *model) createSession(params session.NewSessionParams) {
	var inst *session.Instance
	if params.GroupPath != "" {
		inst = session.NewInstanceWithGroup(params.Title, params.ProjectPath, params.GroupPath)
	} else {
		inst = session.NewInstance(params.Title, params.ProjectPath)
	}
	if params.Tool != "" {
		inst.Tool = params.Tool
	}
	if params.Command != "" {
		inst.Command = params.Command
	}

	instances, tree, err := m.storage.LoadWithGroups()
	if err != nil {
		appLog.Warn("create_session_load_failed", slog.String("error", err.Error()))
		return
	}
	instances = append(instances, inst)
	if inst.GroupPath != "" {
		tree.CreateGroup(inst.GroupPath)
	}
	m.notifySave()
	if err := m.storage.SaveWithGroups(instances, tree); err != nil {
		appLog.Warn("create_session_save_failed", slog.String("error", err.Error()))
		return
	}
	if err := m.home.Reload(); err != nil {
		appLog.Warn("create_session_reload_failed", slog.String("error", err.Error()))
		return
	}
	m.home.SelectSessionByID(inst.ID)
}

// switchProfile rebuilds storage and the HomeView against a different
// profile's database, in place of the current ones.
func (m *model) switchProfile(name string) {
	storage, err := session.NewStorageWithProfile(name)
	if err != nil {
		appLog.Warn("switch_profile_storage_failed", slog.String("profile", name), slog.String("error", err.Error()))
		return
	}
	home, err := ui.NewHome(storage, storage.Profile())
	if err != nil {
		appLog.Warn("switch_profile_home_failed", slog.String("profile", name), slog.String("error", err.Error()))
		return
	}
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	_ = m.storage.Close()
	m.storage = storage
	m.home = home
	m.home.SetSize(m.width, m.height)
	m.watcher = newWatcherFor(storage)
	if m.watcher != nil {
		m.watcher.Start()
	}
}
