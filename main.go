// rookie TUI - a terminal chat companion for public health awareness.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/rookie-ai/rookie-tui/internal/backend"
	"github.com/rookie-ai/rookie-tui/internal/chat"
	"github.com/rookie-ai/rookie-tui/internal/config"
	"github.com/rookie-ai/rookie-tui/internal/inbox"
	"github.com/rookie-ai/rookie-tui/internal/kvstore"
	"github.com/rookie-ai/rookie-tui/internal/llm"
	"github.com/rookie-ai/rookie-tui/internal/resolver"
	"github.com/rookie-ai/rookie-tui/internal/ui/app"
	"github.com/rookie-ai/rookie-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("rookie %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`rookie - terminal chat companion for public health awareness

Usage:
  rookie            start the interactive interface
  rookie version    print version information
  rookie help       print this help

Configuration lives in ~/.rookie/config.toml (set ROOKIE_CONFIG to use
another file). Environment overrides:
  GROQ_API_KEY, ROOKIE_LLM_KEY, ROOKIE_LLM_URL, ROOKIE_MODEL,
  SUPABASE_URL, SUPABASE_ANON_KEY, ROOKIE_EMAIL, ROOKIE_PASSWORD,
  ROOKIE_ALERTS_FILE, ROOKIE_DB, ROOKIE_THEME, ROOKIE_LANGUAGE`)
}

func run() error {
	// A local .env is optional; absence is not an error.
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if path := os.Getenv("ROOKIE_CONFIG"); path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	closeLog, err := setupLogging()
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog()
	log.Printf("rookie %s starting", Version)

	kv, err := kvstore.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer kv.Close()

	backendClient := backend.NewClient(cfg.Backend.URL, cfg.Backend.AnonKey)
	llmClient := llm.NewClient(cfg.LLM.APIKey).
		WithBaseURL(cfg.LLM.BaseURL).
		WithModel(cfg.LLM.Model)
	if !llmClient.IsConfigured() {
		log.Printf("no completion API key configured; replies will fail politely")
	}

	res := resolver.New(kv, backendClient)
	chats := chat.NewStore(kv, llm.NewAssistant(llmClient))

	var secondary []inbox.Source
	var alertsCh <-chan struct{}
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if cfg.Inbox.AlertsFile != "" {
		fileSource := inbox.NewFileSource(cfg.Inbox.AlertsFile)
		secondary = append(secondary, fileSource)
		if ch, err := fileSource.Watch(watchCtx); err != nil {
			log.Printf("watching alerts file: %v", err)
		} else {
			alertsCh = ch
		}
	}
	in := inbox.New(kv, inbox.NewBackendSource(backendClient), secondary...)

	theme := styles.NewTheme()
	switch kv.GetDefault(kvstore.KeyTheme, cfg.UI.Theme) {
	case "light":
		theme.SetDark(false)
	case "dark":
		theme.SetDark(true)
	}

	initial := res.Resolve(context.Background())
	if initial.Route == resolver.RouteSplash && cfg.Backend.Email != "" && cfg.Backend.Password != "" {
		if signed, err := res.SignIn(context.Background(), cfg.Backend.Email, cfg.Backend.Password); err != nil {
			log.Printf("startup sign-in failed: %v", err)
		} else {
			initial = signed
		}
	}
	log.Printf("resolved startup route: %s", initial.Route)

	root := app.New(app.Deps{
		Theme:    theme,
		Resolver: res,
		Backend:  backendClient,
		KV:       kv,
		Chats:    chats,
		Inbox:    in,
		AlertsCh: alertsCh,
	}, initial)
	defer root.Close()

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

// setupLogging sends the standard logger to a file under the config dir so
// log lines never corrupt the alternate screen.
func setupLogging() (func(), error) {
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "rookie.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() { f.Close() }, nil
}
