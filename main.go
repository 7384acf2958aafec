package main

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/civic/internal/clock"
	"github.com/sadopc/civic/internal/config"
	"github.com/sadopc/civic/internal/domain"
	"github.com/sadopc/civic/internal/export"
	"github.com/sadopc/civic/internal/flow"
	"github.com/sadopc/civic/internal/logging"
	"github.com/sadopc/civic/internal/state"
	"github.com/sadopc/civic/internal/store"
	"github.com/sadopc/civic/internal/tui"
)

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "civic",
	Short: "Florești civic services portal",
	Long: `civic is a terminal portal for the citizens of Florești.

Follow city projects, top up the MetroCard, pay local taxes and utility
bills, and track social benefits. Run without arguments to open the portal.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPortal()
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Clear the remembered login",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.SetRemembered(false); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Remembered login cleared.")
		return nil
	},
}

var forceInit bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote "+path)
		return nil
	},
}

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the citizen statement as CSV or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, now := domain.Seed(), clock.Real{}.Now()

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}

		switch exportFormat {
		case "csv":
			return export.WriteCSV(w, data)
		case "json":
			return export.WriteJSON(w, data, now)
		default:
			return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/civic/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "settings database (overrides db_path)")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	initConfigCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(forgetCmd, exportCmd, initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.DBPath
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	s, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func runPortal() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(logging.Config{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Encoding,
		File:     cfg.Logging.File,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()
	defer log.Sync()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = os.TempDir()
	}

	c := clock.Real{}
	session := state.NewSession(s, log)
	session.SetMinCodeLength(cfg.Login.MinCodeLength)

	app := tui.NewApp(tui.Options{
		Store:        state.NewStore(domain.Seed, c, log),
		Session:      session,
		Runner:       flow.NewRunner(c, cfg.FlowDelays(), log),
		Clock:        c,
		Log:          log,
		LoadingDelay: cfg.LoadingDelay(),
		TopUpPresets: cfg.TopUp.Presets,
		TopUpDefault: cfg.TopUp.Default,
		DefaultEmail: cfg.Login.DefaultEmail,
		ExportDir:    exportDir,
		Copy:         clipboard.WriteAll,
	})
	defer app.Close()

	log.Info("portal started", zap.String("session", session.State().String()))
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
