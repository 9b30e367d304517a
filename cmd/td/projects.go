package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskdesk/internal/domain"
	"taskdesk/internal/engine"
	"taskdesk/internal/events"
	"taskdesk/internal/repo"
)

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectShowCmd())
	prj.AddCommand(projectCreateCmd())
	prj.AddCommand(projectUpdateCmd())
	prj.AddCommand(projectStatusCmd())
	prj.AddCommand(projectMembersCmd())
	prj.AddCommand(projectDeleteCmd())
	return prj
}

// withAdmin runs fn as the admin session, recording it as the actor of project events.
func withAdmin(ctx context.Context, fn func(context.Context, *engine.Engine) error) error {
	return withEngine(ctx, func(ctx context.Context, e *engine.Engine) error {
		s, err := e.RequireAdmin(ctx, viper.GetString("as"))
		if err != nil {
			return err
		}
		return fn(events.WithActor(ctx, s.UserID), e)
	})
}

func projectListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				projects := e.Repo.Projects.List(ctx, repo.ProjectFilters{Status: domain.ProjectStatus(upper(status))})
				if viper.GetBool("json") {
					return printJSON(projects)
				}
				now := e.Now()
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Status", "Ends", "Members"})
				for _, p := range projects {
					ends := ""
					if p.EndDate != "" {
						ends = dueIn(p.EndDate, now)
					}
					tw.AppendRow(table.Row{p.ID, p.Name, p.Status, ends, len(p.AssignedUserIDs)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter (ACTIVE|ON_HOLD|COMPLETED)")
	return cmd
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				p, err := e.Repo.Projects.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
}

func projectCreateCmd() *cobra.Command {
	var in repo.ProjectInput
	var start, end string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project (admin only); new projects start ACTIVE",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.StartDate, err = isoFlag("start", start); err != nil {
				return err
			}
			if in.EndDate, err = isoFlag("end", end); err != nil {
				return err
			}
			return withAdmin(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				p, err := e.Repo.Projects.Create(ctx, in)
				if err != nil {
					return err
				}
				return printResult(p)
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "project name")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringSliceVar(&in.AssignedUserIDs, "member", nil, "member user id (repeatable)")
	return cmd
}

func projectUpdateCmd() *cobra.Command {
	var name, description, start, end string
	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update project fields (admin only); ON_HOLD and COMPLETED projects ignore them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := repo.ProjectPatch{
				Name:        optionalString(cmd, "name", name),
				Description: optionalString(cmd, "description", description),
			}
			for _, f := range []struct {
				name string
				val  string
				dst  **string
			}{{"start", start, &patch.StartDate}, {"end", end, &patch.EndDate}} {
				if !cmd.Flags().Changed(f.name) {
					continue
				}
				v, err := isoFlag(f.name, f.val)
				if err != nil {
					return err
				}
				*f.dst = &v
			}
			return withAdmin(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				p, err := e.Repo.Projects.Update(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return printResult(p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&start, "start", "", "start date")
	cmd.Flags().StringVar(&end, "end", "", "end date (empty clears)")
	return cmd
}

func projectStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <project-id> <ACTIVE|ON_HOLD|COMPLETED>",
		Short: "Move a project through its lifecycle (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				p, err := e.Repo.Projects.SetStatus(ctx, args[0], domain.ProjectStatus(upper(args[1])))
				if err != nil {
					return err
				}
				return printResult(p)
			})
		},
	}
}

func projectMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members <project-id> [user-id...]",
		Short: "Replace the project's members (admin only); no ids clears the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				var ids []string
				for _, a := range args[1:] {
					ids = append(ids, strings.Split(a, ",")...)
				}
				p, err := e.Repo.Projects.AssignMembers(ctx, args[0], ids)
				if err != nil {
					return err
				}
				return printResult(p)
			})
		},
	}
}

func projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and all of its tasks (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				before := len(e.Repo.Tasks.List(ctx, repo.TaskFilters{ProjectID: args[0]}))
				if err := e.Repo.Projects.Remove(ctx, args[0]); err != nil {
					return err
				}
				if !viper.GetBool("json") {
					fmt.Printf("Deleted %s and %d task(s)\n", args[0], before)
					return nil
				}
				return printResult(map[string]any{"deleted": args[0], "tasksRemoved": before})
			})
		},
	}
}
