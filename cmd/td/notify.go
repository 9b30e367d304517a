package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"taskdesk/internal/domain"
	"taskdesk/internal/engine"
	"taskdesk/internal/metrics"
	"taskdesk/internal/scheduler"
)

func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "notify", Short: "Notifications for the session user"}
	cmd.AddCommand(notifyListCmd())
	cmd.AddCommand(notifyReadCmd())
	cmd.AddCommand(notifyReadAllCmd())
	cmd.AddCommand(notifySweepCmd())
	return cmd
}

func notifyListCmd() *cobra.Command {
	var unread bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, e *engine.Engine, s domain.Session) error {
				var items []domain.Notification
				for _, n := range e.Repo.Notifications.ListByUser(ctx, s.UserID) {
					if unread && n.Read {
						continue
					}
					items = append(items, n)
				}
				if viper.GetBool("json") {
					if items == nil {
						items = []domain.Notification{}
					}
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Type", "Message", "When", "Read"})
				for _, n := range items {
					tw.AppendRow(table.Row{n.ID, n.Type, n.Message, relTime(n.CreatedAt), n.Read})
				}
				tw.AppendFooter(table.Row{"", "", "unread", e.Repo.Notifications.UnreadCount(ctx, s.UserID), ""})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	return cmd
}

func notifyReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark one notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, e *engine.Engine, s domain.Session) error {
				n, err := e.Repo.Notifications.MarkRead(ctx, args[0], s.UserID)
				if err != nil {
					return err
				}
				return printResult(n)
			})
		},
	}
}

func notifyReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, e *engine.Engine, s domain.Session) error {
				changed := e.Repo.Notifications.MarkAllRead(ctx, s.UserID)
				return printResult(map[string]int{"changed": changed})
			})
		},
	}
}

func notifySweepCmd() *cobra.Command {
	var metricsFile string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Notify admins about overdue and soon-due projects (once per day each)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				sent, err := e.SweepDeadlines(ctx)
				if err != nil {
					return err
				}
				if err := writeMetrics(e, metricsFile); err != nil {
					return err
				}
				return printResult(map[string]int{"sent": sent})
			})
		},
	}
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus textfile metrics here")
	return cmd
}

// writeMetrics dumps the registry to path, falling back to metrics.textfile from config.
func writeMetrics(e *engine.Engine, path string) error {
	if path == "" {
		path = e.Config.Metrics.Textfile
	}
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func watchCmd() *cobra.Command {
	var schedule, metricsFile string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the deadline sweep on a schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withEngine(ctx, func(ctx context.Context, e *engine.Engine) error {
				spec := schedule
				if spec == "" {
					spec = e.Config.Deadlines.Schedule
				}
				sweep := func(ctx context.Context) {
					if _, err := e.SweepDeadlines(ctx); err != nil {
						e.Log.Error("deadline sweep failed", zap.Error(err))
						return
					}
					if err := writeMetrics(e, metricsFile); err != nil {
						e.Log.Warn("metrics not written", zap.Error(err))
					}
				}
				s := scheduler.New(e.Log.Named("cron"))
				if err := s.Add(spec, "deadline-sweep", sweep); err != nil {
					return fmt.Errorf("schedule %q: %w", spec, err)
				}
				sweep(ctx)
				s.Start()
				e.Log.Info("watching deadlines", zap.String("schedule", spec))
				<-ctx.Done()

				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return s.Stop(stopCtx)
			})
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron spec (default deadlines.schedule from config)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus textfile metrics after each sweep")
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Activity log",
		Long:  "Every project and task change, newest last. Reset with the demo data.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				var out []domain.Event
				for _, evt := range e.Events.Tail(ctx, 0) {
					if evtType != "" && evt.Type != evtType {
						continue
					}
					if entityKind != "" && evt.EntityKind != entityKind {
						continue
					}
					if entityID != "" && evt.EntityID != entityID {
						continue
					}
					out = append(out, evt)
				}
				if n > 0 && len(out) > n {
					out = out[len(out)-n:]
				}
				if viper.GetBool("json") {
					if out == nil {
						out = []domain.Event{}
					}
					return printJSON(out)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"#", "When", "Type", "Entity", "Actor"})
				for _, evt := range out {
					tw.AppendRow(table.Row{evt.ID, relTime(evt.TS), evt.Type, evt.EntityID, evt.ActorID})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}
