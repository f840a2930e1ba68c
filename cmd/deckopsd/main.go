package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/nlaurent/deckops/internal/logging"
	"github.com/nlaurent/deckops/internal/session"
	"github.com/nlaurent/deckops/internal/statedb"
	"github.com/nlaurent/deckops/internal/ui"
)

// extractProfileFlag pulls -p/--profile out of the argument list before the
// flag package sees the rest, so it can be supplied ahead of any subcommand.
func extractProfileFlag(args []string) (string, []string) {
	var profile string
	var remaining []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case strings.HasPrefix(arg, "-p="):
			profile = strings.TrimPrefix(arg, "-p=")
		case strings.HasPrefix(arg, "--profile="):
			profile = strings.TrimPrefix(arg, "--profile=")
		case arg == "-p" || arg == "--profile":
			if i+1 < len(args) {
				profile = args[i+1]
				i++
			}
		default:
			remaining = append(remaining, arg)
		}
	}
	return profile, remaining
}

// initColorProfile configures lipgloss's color profile from the terminal
// environment, preferring TrueColor where the terminal advertises it.
func initColorProfile() {
	if override := os.Getenv("DECKOPS_COLOR"); override != "" {
		switch strings.ToLower(override) {
		case "truecolor", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
		case "none", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		return
	}

	if ct := os.Getenv("COLORTERM"); ct == "truecolor" || ct == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	term := os.Getenv("TERM")
	for _, t := range []string{"xterm-256color", "screen-256color", "tmux-256color", "alacritty", "kitty", "wezterm"} {
		if strings.Contains(term, t) {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	lipgloss.SetColorProfile(termenv.ANSI256)
}

func setupLogging(debugMode bool) func() {
	baseDir, err := session.GetDeckopsDir()
	if err != nil {
		return func() {}
	}
	logging.Init(logging.Config{
		Debug:                 debugMode,
		LogDir:                baseDir,
		Level:                 "debug",
		Format:                "json",
		MaxSizeMB:             10,
		MaxBackups:            5,
		MaxAgeDays:            10,
		Compress:              true,
		RingBufferSize:        10 * 1024 * 1024,
		AggregateIntervalSecs: 30,
	})
	if debugMode {
		logging.ForComponent(logging.CompUI).Info("instance_started", slog.Int("pid", os.Getpid()))
	}
	return logging.Shutdown
}

func main() {
	profile, args := extractProfileFlag(os.Args[1:])

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Println("deckopsd (dev build)")
			return
		case "help", "--help", "-h":
			fmt.Println("Usage: deckopsd [-p profile]")
			return
		}
	}

	initColorProfile()
	ui.InitTheme("dark")

	debugMode := os.Getenv("DECKOPS_DEBUG") != ""
	shutdown := setupLogging(debugMode)
	defer shutdown()

	storage, err := session.NewStorageWithProfile(profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer storage.Close()

	if db := storage.GetDB(); db != nil {
		statedb.SetGlobal(db)
		_ = db.RegisterInstance(false)
		if isFirst, electErr := db.ElectPrimary(30 * time.Second); electErr == nil && !isFirst {
			fmt.Fprintln(os.Stderr, "Error: deckopsd is already running for this profile")
			os.Exit(1)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		if db := statedb.GetGlobal(); db != nil {
			_ = db.ResignPrimary()
			_ = db.UnregisterInstance()
		}
		os.Exit(0)
	}()

	home, err := ui.NewHome(storage, storage.Profile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to build home view: %v\n", err)
		os.Exit(1)
	}

	model := newModel(storage, home)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
