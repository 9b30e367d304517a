package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	_ "go.uber.org/automaxprocs"

	"taskdesk/internal/app"
	"taskdesk/internal/clock"
	"taskdesk/internal/config"
	"taskdesk/internal/db"
	"taskdesk/internal/domain"
	"taskdesk/internal/engine"
	"taskdesk/internal/logger"
	"taskdesk/internal/repo"
)

const envSession = "TASKDESK_AS"

var rootCmd = &cobra.Command{
	Use:   "td",
	Short: "taskdesk CLI",
	Long: `taskdesk manages users, projects, tasks and notifications for a small team.
- Workspace: the .taskdesk directory holding the sqlite store (or a redis store named in taskdesk.yml).
- Session: every task command runs as a user; pass --as or persist one with 'td use <user-id>'.
- Projects move between ACTIVE, ON_HOLD and COMPLETED; ON_HOLD and COMPLETED freeze their tasks.
- Tasks: employees edit tasks assigned to them and delete tasks they created; admins do anything.
- Notifications: task assignment and the daily deadline sweep ('td notify sweep', 'td watch').
- Activity: every project and task change, view with 'td log tail'.
The first run fills the workspace with demo data; 'td seed reset' restores it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		// .env only fills variables the environment does not already set.
		if err := godotenv.Load(envPath(workspace)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("TASKDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("as", "", "user id to act as")
	rootCmd.PersistentFlags().String("config", "", "config file (default <workspace>/taskdesk.yml)")
	rootCmd.PersistentFlags().Bool("ephemeral", false, "use an in-memory store for this run")
	rootCmd.PersistentFlags().String("log-level", "", "override log level")
	for _, name := range []string{"workspace", "json", "as", "config", "ephemeral", "log-level"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(notifyCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(useCmd())
}

func useCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <user-id>",
		Short: "Persist the session user in the workspace .env",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			workspace := viper.GetString("workspace")
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				if _, err := e.Session(ctx, userID); err != nil {
					return err
				}
				path := envPath(workspace)
				env, err := godotenv.Read(path)
				if err != nil {
					if !errors.Is(err, os.ErrNotExist) {
						return err
					}
					env = map[string]string{}
				}
				env[envSession] = userID
				if err := godotenv.Write(env, path); err != nil {
					return err
				}
				fmt.Printf("Set %s=%s in %s\n", envSession, userID, path)
				return nil
			})
		},
	}
	return cmd
}

// --- helpers ---

func envPath(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ".env")
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := viper.GetString("config"); path != "" {
		cfg, err = config.FromFile(path)
	} else {
		cfg, err = config.LoadOptional(viper.GetString("workspace"))
	}
	if err != nil {
		return nil, err
	}
	if viper.GetBool("ephemeral") {
		cfg.Storage.Backend = config.BackendMemory
	}
	if lvl := viper.GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	return logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File != "",
			Filename:   cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		},
	})
}

func withEngine(ctx context.Context, fn func(context.Context, *engine.Engine) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, sync := newLogger(cfg)
	defer sync()
	e, err := app.Open(ctx, viper.GetString("workspace"), cfg, log)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(ctx, e)
}

// session resolves --as (or TASKDESK_AS) against the user store.
func session(ctx context.Context, e *engine.Engine) (domain.Session, error) {
	return e.Session(ctx, viper.GetString("as"))
}

type envelope struct {
	OK     bool   `json:"ok"`
	Record any    `json:"record,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// printResult prints a mutation outcome: the record, or an {"ok":true} envelope with --json.
func printResult(v any) error {
	if viper.GetBool("json") {
		return printJSON(envelope{OK: true, Record: v})
	}
	return printJSONOrTable(v)
}

func printError(err error) {
	if viper.GetBool("json") {
		_ = printJSON(envelope{OK: false, Error: err.Error(), Kind: errKind(err)})
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
}

func errKind(err error) string {
	switch {
	case errors.Is(err, repo.ErrValidation):
		return "validation"
	case errors.Is(err, repo.ErrNotFound):
		return "not_found"
	case errors.Is(err, repo.ErrConflict):
		return "conflict"
	case errors.Is(err, repo.ErrForbidden):
		return "forbidden"
	case errors.Is(err, engine.ErrNoSession):
		return "session"
	}
	return "error"
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// relTime renders an ISO timestamp as "3 hours ago"; unparsable values pass through.
func relTime(iso string) string {
	t, err := clock.Parse(iso)
	if err != nil {
		return iso
	}
	return humanize.Time(t)
}

// dueIn renders a deadline relative to today, in whole days.
func dueIn(iso string, now time.Time) string {
	d, err := clock.DaysUntil(iso, clock.ISO(now))
	if err != nil {
		return iso
	}
	switch {
	case d < 0:
		return fmt.Sprintf("overdue %dd", -d)
	case d == 0:
		return "today"
	}
	return fmt.Sprintf("in %dd", d)
}

// isoFlag normalizes a date flag to the stored timestamp layout; empty stays empty.
func isoFlag(name, v string) (string, error) {
	if v == "" {
		return "", nil
	}
	t, err := clock.Parse(v)
	if err != nil {
		return "", fmt.Errorf("--%s: %w", name, err)
	}
	return clock.ISO(t), nil
}

func optionalString(cmd *cobra.Command, name, v string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
