package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/api"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/bootstrap"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/config"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/location"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/log"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/oauth"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/router"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/search"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/session"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/store"
	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	var setup bool
	var startPath string
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&setup, "setup", false, "run the interactive setup flow")
	flag.StringVar(&startPath, "open", "/", "path to open on startup (e.g. /sync)")
	flag.Parse()

	if showVersion {
		fmt.Printf("nodrake %s\n", Version)
		return
	}

	if err := run(setup, startPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(setup bool, startPath string) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting nodrake", "version", Version)

	if setup || !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	// API client carries the persisted token, if any
	client := api.NewClient(cfg.Server.URL, cfg.Server.Token, logger)

	// Local cache for offline reads
	cache, err := store.NewCache(config.GetCachePath())
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer cache.Close()

	// Location source, seeded with the startup path
	nav := location.NewProcessSource(startPath)

	// Route resolver
	resolver := router.NewResolver(nav, logger)

	// Session store
	sessions := session.NewStore(client, logger)

	// Local OAuth redirect listener feeds callback locations into nav
	listener := oauth.NewListener(cfg.OAuth.CallbackAddr, nav, logger)
	listener.Start()
	defer listener.Shutdown()

	// Bootstrap coordinator races the profile fetch against its timeout
	coordinator := bootstrap.NewCoordinator(resolver, sessions, bootstrap.DefaultTimeout, logger)

	searchSvc := search.NewService(client, logger)

	model := tui.NewModel(tui.Deps{
		Coordinator: coordinator,
		Sessions:    sessions,
		Resolver:    resolver,
		Nav:         nav,
		ListAPI:     client,
		Cache:       cache,
		SearchSvc:   searchSvc,
		Listener:    listener,
		APIBase:     cfg.Server.URL,
		SaveSession: func() error {
			return config.SaveToken(client.Token())
		},
		ClearSession: func() error {
			return config.ClearCredentials()
		},
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial terminal setup when not configured
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to nodrake!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Server URL [%s]: ", cfg.Server.URL)
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if url := strings.TrimSpace(input); url != "" {
		cfg.Server.URL = url
	}

	var email string
	for email == "" {
		fmt.Print("Email: ")
		input, err = reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		email = strings.TrimSpace(input)
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	client := api.NewClient(cfg.Server.URL, "", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := client.Login(ctx, domain.Credentials{Email: email, Password: string(raw)})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	cfg.Server.Token = client.Token()
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Printf("✓ Signed in as %s\n", user.Email)
	fmt.Println()
	fmt.Println("Run nodrake again to start the application.")

	return nil
}
