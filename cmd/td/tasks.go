package main

import (
	"context"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskdesk/internal/domain"
	"taskdesk/internal/engine"
	"taskdesk/internal/repo"
)

func taskCmd() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  "Task commands run as the session user (--as or TASKDESK_AS).",
	}
	task.AddCommand(taskListCmd())
	task.AddCommand(taskShowCmd())
	task.AddCommand(taskTodayCmd())
	task.AddCommand(taskCreateCmd())
	task.AddCommand(taskUpdateCmd())
	task.AddCommand(taskMoveCmd())
	task.AddCommand(taskDeleteCmd())
	return task
}

// withSession runs fn with the resolved session user.
func withSession(ctx context.Context, fn func(context.Context, *engine.Engine, domain.Session) error) error {
	return withEngine(ctx, func(ctx context.Context, e *engine.Engine) error {
		s, err := session(ctx, e)
		if err != nil {
			return err
		}
		return fn(ctx, e, s)
	})
}

func renderTasks(e *engine.Engine, tasks []domain.Task) error {
	if viper.GetBool("json") {
		return printJSON(tasks)
	}
	now := e.Now()
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Project", "Title", "Status", "Priority", "Assignee", "Assigned", "Due"})
	for _, t := range tasks {
		due := ""
		if t.Deadline != nil {
			due = dueIn(*t.Deadline, now)
		}
		tw.AppendRow(table.Row{t.ID, t.ProjectID, t.Title, t.Status, t.Priority, t.AssigneeID, relTime(t.AssignedAt), due})
	}
	tw.Render()
	return nil
}

func taskListCmd() *cobra.Command {
	var f repo.TaskFilters
	var status, priority string
	var mine bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				f.Status = domain.TaskStatus(upper(status))
				f.Priority = domain.Priority(upper(priority))
				if mine {
					s, err := session(ctx, e)
					if err != nil {
						return err
					}
					f.AssigneeID = s.UserID
				}
				return renderTasks(e, e.Repo.Tasks.List(ctx, f))
			})
		},
	}
	cmd.Flags().StringVar(&f.ProjectID, "project", "", "project id")
	cmd.Flags().StringVar(&f.AssigneeID, "assignee", "", "assignee user id")
	cmd.Flags().StringVar(&status, "status", "", "status filter (TODO|IN_PROGRESS|COMPLETED)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority filter (LOW|MEDIUM|HIGH)")
	cmd.Flags().BoolVar(&mine, "mine", false, "only tasks assigned to the session user")
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				t, err := e.Repo.Tasks.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
}

func taskTodayCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Tasks assigned today to the session user (or --user)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e *engine.Engine) error {
				if userID == "" {
					s, err := session(ctx, e)
					if err != nil {
						return err
					}
					userID = s.UserID
				}
				return renderTasks(e, e.Repo.Tasks.ListAssignedToday(ctx, userID, e.NowISO()))
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	return cmd
}

func taskCreateCmd() *cobra.Command {
	var in repo.TaskInput
	var priority, status, deadline, assignedAt string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task and notify its assignee",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Priority = domain.Priority(upper(priority))
			in.Status = domain.TaskStatus(upper(status))
			var err error
			if in.AssignedAt, err = isoFlag("assigned-at", assignedAt); err != nil {
				return err
			}
			if deadline != "" {
				d, err := isoFlag("deadline", deadline)
				if err != nil {
					return err
				}
				in.Deadline = &d
			}
			return withSession(cmd.Context(), func(ctx context.Context, e *engine.Engine, s domain.Session) error {
				t, err := e.Repo.Tasks.Create(ctx, in, s)
				if err != nil {
					return err
				}
				return printResult(t)
			})
		},
	}
	cmd.Flags().StringVar(&in.ProjectID, "project", "", "project id")
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&in.AssigneeID, "assignee", "", "assignee user id")
	cmd.Flags().StringVar(&priority, "priority", "", "LOW|MEDIUM|HIGH (default MEDIUM)")
	cmd.Flags().StringVar(&status, "status", "", "TODO|IN_PROGRESS|COMPLETED (default TODO)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline date")
	cmd.Flags().StringVar(&assignedAt, "assigned-at", "", "assignment time (default now)")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "tag (repeatable)")
	return cmd
}

func taskUpdateCmd() *cobra.Command {
	var title, description, assignee, priority, status, deadline string
	var tags []string
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task; only admins may reassign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := repo.TaskPatch{
				Title:       optionalString(cmd, "title", title),
				Description: optionalString(cmd, "description", description),
				AssigneeID:  optionalString(cmd, "assignee", assignee),
			}
			if cmd.Flags().Changed("priority") {
				p := domain.Priority(upper(priority))
				patch.Priority = &p
			}
			if cmd.Flags().Changed("status") {
				s := domain.TaskStatus(upper(status))
				patch.Status = &s
			}
			if cmd.Flags().Changed("deadline") {
				d, err := isoFlag("deadline", deadline)
				if err != nil {
					return err
				}
				patch.Deadline = &d
			}
			if cmd.Flags().Changed("tag") {
				var cleaned []string
				for _, t := range tags {
					if t = strings.TrimSpace(t); t != "" {
						cleaned = append(cleaned, t)
					}
				}
				patch.Tags = &cleaned
			}
			return withSession(cmd.Context(), func(ctx context.Context, e *engine.Engine, s domain.Session) error {
				t, err := e.Repo.Tasks.Update(ctx, args[0], patch, s)
				if err != nil {
					return err
				}
				return printResult(t)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&assignee, "assignee", "", "new assignee user id (admin only)")
	cmd.Flags().StringVar(&priority, "priority", "", "LOW|MEDIUM|HIGH")
	cmd.Flags().StringVar(&status, "status", "", "TODO|IN_PROGRESS|COMPLETED")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline date (empty clears)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replace tags (repeatable)")
	return cmd
}

func taskMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <TODO|IN_PROGRESS|COMPLETED>",
		Short: "Change a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, e *engine.Engine, s domain.Session) error {
				t, err := e.Repo.Tasks.MoveStatus(ctx, args[0], domain.TaskStatus(upper(args[1])), s)
				if err != nil {
					return err
				}
				return printResult(t)
			})
		},
	}
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task; employees may only delete tasks they created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(ctx context.Context, e *engine.Engine, s domain.Session) error {
				if err := e.Repo.Tasks.Remove(ctx, args[0], s); err != nil {
					return err
				}
				return printResult(map[string]string{"deleted": args[0]})
			})
		},
	}
}
