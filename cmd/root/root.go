// Package root contains the root command and the shared wiring every
// subcommand builds on.
package root

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"jianji/ledger-assistant/internal/assistant"
	"jianji/ledger-assistant/internal/config"
	"jianji/ledger-assistant/internal/logging"
	"jianji/ledger-assistant/internal/models"
	"jianji/ledger-assistant/internal/store"
)

var (
	// Log is the shared logger instance for commands.
	Log = logrus.New()

	// Cfg is the loaded application configuration, set in PersistentPreRunE.
	Cfg *config.Config

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "ledger-assistant",
		Short: "A conversational bookkeeping assistant.",
		Long: `ledger-assistant records income and expenses from natural language
descriptions like "今天吃饭花了50块". It parses locally with keyword rules and,
when configured, asks a remote language model for richer extraction.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to ledger-assistant!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg, err := config.InitializeConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			Cfg = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)
			return nil
		},
	}

	// Persistent identity and ledger selection flags.
	LedgerID string
	UserID   string
	UserName string
)

// Init initializes the root command flags.
func Init() {
	Cmd.PersistentFlags().StringVarP(&LedgerID, "ledger", "l", "", "Ledger id to operate on")
	Cmd.PersistentFlags().StringVarP(&UserID, "user", "u", "", "Acting user id")
	Cmd.PersistentFlags().StringVarP(&UserName, "name", "n", "", "Acting user display name")
}

// Logger returns the configured logger behind the logging interface.
func Logger() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// CurrentUser assembles the acting user from flags with environment
// fallbacks. Both values are opaque to the core.
func CurrentUser() models.User {
	id := UserID
	if id == "" {
		id = config.GetEnv("LEDGER_USER_ID", "local-user")
	}
	name := UserName
	if name == "" {
		name = config.GetEnv("LEDGER_USER_NAME", "我")
	}
	return models.User{ID: id, DisplayName: name}
}

// OpenStore opens the SQLite store at the configured location.
func OpenStore() (*store.Store, error) {
	path := filepath.Join(Cfg.Data.Directory, Cfg.Data.DatabaseFile)
	return store.Open(path, Logger())
}

// NewAssistantParser builds the remote parser from configuration, or nil
// when the assistant is disabled or misconfigured. A missing key only
// degrades to heuristic-only parsing, it never blocks the command.
func NewAssistantParser(ctx context.Context) *assistant.Parser {
	if !Cfg.AI.Enabled {
		return nil
	}

	var (
		completer assistant.Completer
		err       error
	)
	switch Cfg.AI.Provider {
	case config.ProviderGemini:
		completer, err = assistant.NewGeminiCompleter(ctx, Cfg.AI.APIKey, Cfg.AI.Model)
	default:
		completer, err = assistant.NewOpenAICompleter(Cfg.AI.APIKey, Cfg.AI.BaseURL, Cfg.AI.Model)
	}
	if err != nil {
		Log.WithError(err).Warn("Assistant unavailable, falling back to heuristic parsing")
		return nil
	}
	return assistant.NewParser(completer, Cfg.AI.HistoryWindow, Logger())
}
