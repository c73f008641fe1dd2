// Package main is the entry point for the Gemini model usage tracker TUI.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/app"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/config"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/logger"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/services"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/ui/tabs/history"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/ui/tabs/info"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/ui/tabs/usage"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	// Run the application
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.SetDebug(cfg.Debug)

	// 2. Initialize the service manager
	// This starts the event tail, the midnight rollover and the store watcher
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Initialize tabs with shared state and services
	state := model.GetState()
	tabs := []app.Tab{
		usage.New(state, svcManager, model.GetCommands()), // Tab 0: Usage - daily counters
		history.New(state, svcManager),                    // Tab 1: History - per-day totals
		info.New(state, svcManager),                       // Tab 2: Info - configuration and app info
	}
	model.SetTabs(tabs)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 6. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse support for selection
	)

	// 7. Handle signals in a separate goroutine
	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 8. Run the TUI program
	// This blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Gemini Model Usage Tracker - Per-day per-model prompt counter

Usage:
  gmut [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Usage, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  h/l, Left/Right Previous/next day
  j/k, Up/Down    Navigate counters
  t               Jump to today
  e               Toggle edit mode
  Enter           Edit the selected counter
  R               Reset the selected day (edit mode)
  v               Show/hide the panel
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  TRACKER_DATA_DIR         Base directory for store and events files
  TRACKER_STORE_BACKEND    Counter store backend: file or sqlite
  TRACKER_STORE_PATH       Counter store path
  TRACKER_EVENTS_PATH      Prompt events JSONL path
  TRACKER_REGISTRY_PATH    Model registry YAML override
  TRACKER_TIMEZONE         Day boundary timezone (default: UTC)
  TRACKER_OBSERVE_DELAY    Submit observation delay (default: 50ms)
  TRACKER_HISTORY_DAYS     History window in days (default: 30)
  TRACKER_ALERT_THRESHOLD  Daily prompt count that triggers a desktop alert
  TRACKER_DEBUG            Enable debug logging

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/gemini-usage-tracker/.env
  - ~/.gemini-usage-tracker/.env

For more information, visit: https://github.com/InvictusNavarchus/gemini-model-usage-tracker`)
}
