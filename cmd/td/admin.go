package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskdesk/internal/config"
	"taskdesk/internal/domain"
	"taskdesk/internal/engine"
	"taskdesk/internal/metrics"
	"taskdesk/internal/repo"
	"taskdesk/internal/store"
)

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Workspace configuration (taskdesk.yml)",
	}
	cfg.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default taskdesk.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefault(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	})
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			return printJSONOrTable(c)
		},
	})
	cfg.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			fmt.Println("config ok")
			return nil
		},
	})
	return cfg
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Demo data",
		Long:  "The workspace is seeded on first use and whenever the stored users look corrupt or outdated.",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the store is seeded and how much it holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				return printJSONOrTable(map[string]any{
					"seeded":        e.Seeder.IsSeeded(ctx),
					"users":         len(e.Repo.Users.List(ctx)),
					"projects":      len(e.Repo.Projects.List(ctx, repo.ProjectFilters{})),
					"tasks":         len(e.Repo.Tasks.List(ctx, repo.TaskFilters{})),
					"notifications": len(store.LoadArray(ctx, e.Store, store.KeyNotifications, []domain.Notification{})),
					"backend":       e.Config.Storage.Backend,
				})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Seed the store if it is empty or drifted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				return printResult(map[string]bool{"seeded": e.Seeder.SeedIfNeeded(ctx)})
			})
		},
	})
	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Replace all data with a fresh demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset discards every change; rerun with --yes")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				e.Seeder.ResetAllToSeed(ctx)
				e.Seeder.SeedIfNeeded(ctx)
				metrics.ObserveReseed("manual")
				return printResult(map[string]bool{"reset": true})
			})
		},
	}
	reset.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	cmd.AddCommand(reset)
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}
	cmd.AddCommand(userListCmd())
	cmd.AddCommand(userShowCmd())
	cmd.AddCommand(userCreateCmd())
	cmd.AddCommand(userUpdateCmd())
	cmd.AddCommand(userActiveCmd("activate", true))
	cmd.AddCommand(userActiveCmd("deactivate", false))
	cmd.AddCommand(userDeleteCmd())
	return cmd
}

func userListCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				users := e.Repo.Users.List(ctx)
				if role != "" {
					users = e.Repo.Users.ListByRole(ctx, domain.Role(upper(role)))
				}
				if viper.GetBool("json") {
					return printJSON(users)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Code", "Name", "Role", "Dept", "Active"})
				for _, u := range users {
					tw.AppendRow(table.Row{u.ID, u.EmployeeID, u.Name, u.Role, u.Department, u.IsActive})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "role filter (ADMIN|EMPLOYEE)")
	return cmd
}

func userShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				u, err := e.Repo.Users.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(u)
			})
		},
	}
}

func userCreateCmd() *cobra.Command {
	var in repo.UserInput
	var role string
	var inactive bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				if _, err := e.RequireAdmin(ctx, viper.GetString("as")); err != nil {
					return err
				}
				in.Role = domain.Role(upper(role))
				if inactive {
					active := false
					in.IsActive = &active
				}
				u, err := e.Repo.Users.Create(ctx, in)
				if err != nil {
					return err
				}
				return printResult(u)
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "", "ADMIN or EMPLOYEE (default EMPLOYEE)")
	cmd.Flags().StringVar(&in.Department, "department", "", "department code, e.g. DEV")
	cmd.Flags().StringVar(&in.EmployeeID, "employee-id", "", "employee code (generated when empty)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the user deactivated")
	return cmd
}

func userUpdateCmd() *cobra.Command {
	var name, email, role, department, employeeID string
	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update a user (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				if _, err := e.RequireAdmin(ctx, viper.GetString("as")); err != nil {
					return err
				}
				patch := repo.UserPatch{
					Name:       optionalString(cmd, "name", name),
					Email:      optionalString(cmd, "email", email),
					Department: optionalString(cmd, "department", department),
					EmployeeID: optionalString(cmd, "employee-id", employeeID),
				}
				if cmd.Flags().Changed("role") {
					r := domain.Role(upper(role))
					patch.Role = &r
				}
				u, err := e.Repo.Users.Update(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return printResult(u)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "", "ADMIN or EMPLOYEE")
	cmd.Flags().StringVar(&department, "department", "", "department code")
	cmd.Flags().StringVar(&employeeID, "employee-id", "", "employee code")
	return cmd
}

func userActiveCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: "Set whether a user is active (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				if _, err := e.RequireAdmin(ctx, viper.GetString("as")); err != nil {
					return err
				}
				u, err := e.Repo.Users.SetActive(ctx, args[0], active)
				if err != nil {
					return err
				}
				return printResult(u)
			})
		},
	}
}

func userDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user (admin only); tasks and projects keep their references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				if _, err := e.RequireAdmin(ctx, viper.GetString("as")); err != nil {
					return err
				}
				if err := e.Repo.Users.Remove(ctx, args[0]); err != nil {
					return err
				}
				return printResult(map[string]string{"deleted": args[0]})
			})
		},
	}
}
