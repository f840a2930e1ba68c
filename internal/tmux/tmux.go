// Package tmux is the attach transport this core uses to hand a terminal
// to a session's backing tmux process. Status detection, title parsing,
// and live output streaming are the process orchestrator's concern and
// live outside this core; this package only starts, finds, attaches to,
// and kills tmux sessions.
package tmux

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nlaurent/deckops/internal/logging"
)

var sessionLog = logging.ForComponent(logging.CompSession)

// SessionPrefix namespaces every tmux session this program creates, so
// ListAgentDeckSessions and cleanup routines can tell them apart from the
// operator's own unrelated tmux sessions.
const SessionPrefix = "deckops_"

// Session is a handle to a single tmux session backing one managed instance.
type Session struct {
	Name        string
	DisplayName string
	WorkDir     string
	Command     string
	Created     time.Time
	InstanceID  string

	mu sync.Mutex

	// OptionOverrides are caller-set tmux set-option overrides, applied
	// after the defaults in Start so they take precedence. Empty by default.
	OptionOverrides map[string]string
}

func sanitizeName(name string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9-]+`)
	return re.ReplaceAllString(name, "-")
}

// generateShortID generates a short random suffix for session-name uniqueness.
func generateShortID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano()%100000)
	}
	return fmt.Sprintf("%x", b)
}

// NewSession creates a new Session handle with a unique tmux session name.
func NewSession(name, workDir string) *Session {
	sanitized := sanitizeName(name)
	uniqueSuffix := generateShortID()
	return &Session{
		Name:        SessionPrefix + sanitized + "_" + uniqueSuffix,
		DisplayName: name,
		WorkDir:     workDir,
		Created:     time.Now(),
	}
}

// ReconnectSessionLazy builds a Session handle for an instance loaded from
// storage, without running any tmux commands. Status is reported by whatever
// caller tracks it; this package only needs the name to attach or kill later.
func ReconnectSessionLazy(tmuxName, displayName, workDir, command string, previousStatus string) *Session {
	return &Session{
		Name:        tmuxName,
		DisplayName: displayName,
		WorkDir:     workDir,
		Command:     command,
		Created:     time.Now(),
	}
}

// Start creates and starts the tmux session, sending command once ready.
func (s *Session) Start(command string) error {
	s.Command = command
	s.Created = time.Now()

	if s.Exists() {
		// Session with this exact name exists (shouldn't happen with unique
		// IDs) - regenerate with a new unique suffix.
		sanitized := sanitizeName(s.DisplayName)
		s.Name = SessionPrefix + sanitized + "_" + generateShortID()
	}

	workDir := s.WorkDir
	if workDir == "" {
		workDir = os.Getenv("HOME")
	}

	cmd := exec.Command("tmux", "new-session", "-d", "-s", s.Name, "-c", workDir)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create tmux session: %w (output: %s)", err, string(output))
	}

	// Batch session options into a single subprocess call.
	_ = exec.Command("tmux",
		"set-option", "-t", s.Name, "mouse", "on", ";",
		"set-option", "-t", s.Name, "-q", "allow-passthrough", "on", ";",
		"set-option", "-t", s.Name, "set-clipboard", "on", ";",
		"set-option", "-t", s.Name, "history-limit", "10000", ";",
		"set-option", "-t", s.Name, "escape-time", "10").Run()

	if len(s.OptionOverrides) > 0 {
		args := make([]string, 0, len(s.OptionOverrides)*6)
		first := true
		for key, value := range s.OptionOverrides {
			if !first {
				args = append(args, ";")
			}
			args = append(args, "set-option", "-t", s.Name, "-q", key, value)
			first = false
		}
		_ = exec.Command("tmux", args...).Run()
	}

	s.ConfigureStatusBar()

	if command != "" {
		cmdToSend := command
		// Commands containing bash-specific syntax must be wrapped in
		// `bash -c` for fish shell compatibility.
		if strings.Contains(command, "$(") || strings.Contains(command, "session_id=") {
			escapedCmd := strings.ReplaceAll(command, "'", "'\"'\"'")
			cmdToSend = fmt.Sprintf("bash -c '%s'", escapedCmd)
		}
		if err := s.SendKeysAndEnter(cmdToSend); err != nil {
			return fmt.Errorf("failed to send command: %w", err)
		}
	}

	return nil
}

// Exists checks if the tmux session exists.
func (s *Session) Exists() bool {
	cmd := exec.Command("tmux", "has-session", "-t", s.Name)
	return cmd.Run() == nil
}

// ConfigureStatusBar sets up the tmux status bar to show a detach hint and
// the session's display name/working directory.
func (s *Session) ConfigureStatusBar() {
	folderName := s.WorkDir
	if idx := strings.LastIndexByte(folderName, '/'); idx >= 0 {
		folderName = folderName[idx+1:]
	}
	if folderName == "" || folderName == "." {
		folderName = "~"
	}

	rightStatus := fmt.Sprintf("ctrl+q detach | %s | %s ", s.DisplayName, folderName)

	cmd := exec.Command("tmux",
		"set-option", "-t", s.Name, "status", "on", ";",
		"set-option", "-t", s.Name, "status-right", rightStatus, ";",
		"set-option", "-t", s.Name, "status-right-length", "80")
	_ = cmd.Run()
}

// Kill terminates the tmux session and ensures any processes it hosted are
// actually dead. tmux kill-session sends SIGHUP, which some CLI tools
// ignore, leaving orphan processes behind.
func (s *Session) Kill() error {
	_, oldPIDs := s.getPaneProcessTree()
	if len(oldPIDs) > 0 {
		sessionLog.Debug("pre_kill_process_tree", slog.String("session", s.Name), slog.Any("pids", oldPIDs))
	}

	cmd := exec.Command("tmux", "kill-session", "-t", s.Name)
	err := cmd.Run()

	if len(oldPIDs) > 0 {
		go s.ensureProcessesDead(oldPIDs)
	}

	return err
}

// getPaneProcessTree returns the pane's direct PID and all descendant PIDs,
// so Kill can verify they actually died.
func (s *Session) getPaneProcessTree() (panePID int, allPIDs []int) {
	out, err := exec.Command("tmux", "list-panes", "-t", s.Name+":", "-F", "#{pane_pid}").Output()
	if err != nil {
		return 0, nil
	}
	pidStr := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(pidStr, '\n'); idx >= 0 {
		pidStr = pidStr[:idx]
	}
	panePID, err = strconv.Atoi(pidStr)
	if err != nil {
		return 0, nil
	}

	allPIDs = []int{panePID}
	queue := []int{panePID}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		pgrepOut, err := exec.Command("pgrep", "-P", strconv.Itoa(parent)).Output()
		if err != nil {
			continue
		}
		for _, line := range strings.Split(strings.TrimSpace(string(pgrepOut)), "\n") {
			if pid, err := strconv.Atoi(strings.TrimSpace(line)); err == nil && pid > 0 {
				allPIDs = append(allPIDs, pid)
				queue = append(queue, pid)
			}
		}
	}
	return panePID, allPIDs
}

// isOurProcess checks if a PID still belongs to a process we'd plausibly
// have spawned, guarding against killing an unrelated process that reused
// the PID after the original exited.
func isOurProcess(pid int) bool {
	out, err := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "comm=").Output()
	if err != nil {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(string(out)))
	for _, known := range []string{"claude", "gemini", "node", "zsh", "bash", "sh"} {
		if strings.Contains(name, known) {
			return true
		}
	}
	return false
}

// ensureProcessesDead escalates to SIGKILL for any of oldPIDs still alive
// shortly after kill-session, since some CLI tools ignore the SIGHUP tmux sends.
func (s *Session) ensureProcessesDead(oldPIDs []int) {
	time.Sleep(500 * time.Millisecond)

	var survivors []int
	for _, pid := range oldPIDs {
		proc, err := os.FindProcess(pid)
		if err != nil {
			continue
		}
		if err := proc.Signal(syscall.Signal(0)); err != nil {
			continue // already dead
		}
		if !isOurProcess(pid) {
			sessionLog.Info("pid_not_ours_skipping", slog.Int("pid", pid))
			continue
		}
		survivors = append(survivors, pid)
	}

	for _, pid := range survivors {
		if proc, err := os.FindProcess(pid); err == nil {
			sessionLog.Info("escalating_to_sigkill", slog.Int("pid", pid), slog.String("session", s.Name))
			_ = proc.Signal(syscall.SIGKILL)
		}
	}
}

// SendKeys sends literal text to the tmux session, avoiding the treatment of
// special tmux key names.
func (s *Session) SendKeys(keys string) error {
	cmd := exec.Command("tmux", "send-keys", "-l", "-t", s.Name, "--", keys)
	return cmd.Run()
}

// SendEnter sends an Enter keypress to the tmux session.
func (s *Session) SendEnter() error {
	cmd := exec.Command("tmux", "send-keys", "-t", s.Name, "Enter")
	return cmd.Run()
}

// SendKeysAndEnter sends literal text followed by Enter as two separate tmux
// calls with a short delay between them. The delay matters because tmux 3.2+
// wraps send-keys -l in bracketed paste sequences; without it, Enter can
// arrive in the same PTY buffer as the paste-end marker and get swallowed by
// async TUI frameworks.
func (s *Session) SendKeysAndEnter(keys string) error {
	if err := s.SendKeysChunked(keys); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return s.SendEnter()
}

// SendKeysChunked sends large content to the tmux session in chunks to avoid
// tmux/OS buffer limits. Content under 4KB is sent directly via SendKeys.
func (s *Session) SendKeysChunked(content string) error {
	const chunkSize = 4096
	const chunkDelay = 50 * time.Millisecond

	if len(content) <= chunkSize {
		return s.SendKeys(content)
	}

	chunks := splitIntoChunks(content, chunkSize)
	for i, chunk := range chunks {
		if err := s.SendKeys(chunk); err != nil {
			return fmt.Errorf("failed to send chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if i < len(chunks)-1 {
			time.Sleep(chunkDelay)
		}
	}
	return nil
}

// splitIntoChunks splits content into chunks of at most maxSize bytes,
// preferring to split at newline boundaries.
func splitIntoChunks(content string, maxSize int) []string {
	if content == "" {
		return nil
	}
	if len(content) <= maxSize {
		return []string{content}
	}

	var chunks []string
	remaining := content
	for len(remaining) > 0 {
		if len(remaining) <= maxSize {
			chunks = append(chunks, remaining)
			break
		}
		cutPoint := strings.LastIndex(remaining[:maxSize], "\n")
		if cutPoint > 0 {
			chunks = append(chunks, remaining[:cutPoint+1])
			remaining = remaining[cutPoint+1:]
		} else {
			chunks = append(chunks, remaining[:maxSize])
			remaining = remaining[maxSize:]
		}
	}
	return chunks
}

// ListAgentDeckSessions returns the names of all tmux sessions this program
// created (identified by SessionPrefix).
func ListAgentDeckSessions() ([]string, error) {
	out, err := exec.Command("tmux", "list-sessions", "-F", "#{session_name}").Output()
	if err != nil {
		// No tmux server running is not an error: there are simply no sessions.
		return nil, nil
	}
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if strings.HasPrefix(line, SessionPrefix) {
			names = append(names, line)
		}
	}
	return names, nil
}
