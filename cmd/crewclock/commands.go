// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/crewclock/internal/crewclock/client"
	"github.com/go-arcade/crewclock/internal/crewclock/config"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/taskform"
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

// apiClient resolves the daemon address from --api or the [http] section.
func apiClient() *client.Client {
	addr := apiAddr
	if addr == "" {
		if conf, err := config.Load(configFile); err == nil {
			addr = conf.Http.Addr()
		} else {
			def := http.Http{}
			def.SetDefaults()
			addr = def.Addr()
		}
	}
	return client.New(addr, requestTimeout)
}

// call runs fn with a bounded context against the daemon.
func call(fn func(ctx context.Context, c *client.Client) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return fn(ctx, apiClient())
}

func printJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func orgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "List, switch and join organizations",
	}

	printOrgs := func(w io.Writer, orgs client.Orgs) {
		if len(orgs.Memberships) == 0 {
			fmt.Fprintln(w, "no organizations")
			return
		}
		for _, m := range orgs.Memberships {
			marker := " "
			if m.OrgID == orgs.CurrentOrg {
				marker = "*"
			}
			line := fmt.Sprintf("%s %s  %s  %s", marker, m.OrgID, m.Organization.Name, m.Role)
			if m.ExpiresAt != nil {
				line += "  expires " + m.ExpiresAt.Local().Format(time.DateOnly)
				if m.ExpiringSoon {
					line += " (soon)"
				}
			}
			fmt.Fprintln(w, line)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List memberships; the current one is marked with *",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(func(ctx context.Context, c *client.Client) error {
					orgs, err := c.Orgs(ctx)
					if err != nil {
						return err
					}
					printOrgs(cmd.OutOrStdout(), orgs)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "switch <org-id>",
			Short: "Select the active organization",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(func(ctx context.Context, c *client.Client) error {
					orgs, err := c.SwitchOrg(ctx, args[0])
					if err != nil {
						return err
					}
					printOrgs(cmd.OutOrStdout(), orgs)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Reload memberships from the backend",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(func(ctx context.Context, c *client.Client) error {
					orgs, err := c.RefreshOrgs(ctx)
					if err != nil {
						return err
					}
					printOrgs(cmd.OutOrStdout(), orgs)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "accept <token>",
			Short: "Accept an organization invitation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(func(ctx context.Context, c *client.Client) error {
					out, err := c.AcceptInvite(ctx, args[0])
					if err != nil {
						return err
					}
					if !out.Success {
						return fmt.Errorf("invitation rejected: %s", out.Error)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "joined %s (%s)\n", out.OrgName, out.OrgID)
					return nil
				})
			},
		},
	)
	return cmd
}

func printStatus(w io.Writer, s worktrack.Status) {
	fmt.Fprintf(w, "state:   %s\n", s.State)
	if s.Shift != nil {
		fmt.Fprintf(w, "shift:   %s since %s (%s)\n", s.Shift.OrgID,
			s.Shift.StartTime.Local().Format(time.TimeOnly), s.Shift.SyncState)
		fmt.Fprintf(w, "elapsed: %s\n", s.ElapsedClock)
	}
	if s.Timer != nil {
		fmt.Fprintf(w, "timer:   project %s, %s\n", s.Timer.ProjectID, s.TimerClock)
	}
	fmt.Fprintf(w, "today:   %.2f hours\n", s.TodayHours)
	if s.LastSync != nil {
		fmt.Fprintf(w, "synced:  %s\n", s.LastSync.Local().Format(time.TimeOnly))
	}
}

func shiftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Start, end and inspect the work shift",
	}

	statusRun := func(fn func(c *client.Client, ctx context.Context) (worktrack.Status, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return call(func(ctx context.Context, c *client.Client) error {
				s, err := fn(c, ctx)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), s)
				return nil
			})
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the current shift and timer",
			RunE:  statusRun((*client.Client).ShiftStatus),
		},
		&cobra.Command{
			Use:   "start",
			Short: "Start a shift in the active organization",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(func(ctx context.Context, c *client.Client) error {
					shift, err := c.StartShift(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "shift started at %s\n", shift.StartTime.Local().Format(time.TimeOnly))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "end",
			Short: "End the shift and record the time sheet",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(func(ctx context.Context, c *client.Client) error {
					entry, err := c.EndShift(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "shift recorded: %.2f hours (%s)\n", entry.Hours, entry.Note)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Discard local shift state without recording a time sheet",
			RunE:  statusRun((*client.Client).ClearShift),
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Push the active shift to the backend now",
			RunE:  statusRun((*client.Client).SyncShift),
		},
	)
	return cmd
}

func timerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Track time against a project",
	}

	var req worktrack.TimerRequest
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a project timer inside the open shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(ctx context.Context, c *client.Client) error {
				entry, err := c.StartTimer(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "timer started on project %s\n", entry.ProjectID)
				return nil
			})
		},
	}
	start.Flags().StringVar(&req.ProjectID, "project", "", "project id (required)")
	start.Flags().StringVar(&req.TaskID, "task", "", "task id")
	start.Flags().StringVar(&req.Description, "desc", "", "what you are working on")
	_ = start.MarkFlagRequired("project")

	cmd.AddCommand(
		start,
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the running project timer",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(func(ctx context.Context, c *client.Client) error {
					entry, err := c.StopTimer(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "timer stopped on project %s\n", entry.ProjectID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "switch",
			Short: "Stop the running timer before moving to another project",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(func(ctx context.Context, c *client.Client) error {
					out, err := c.SwitchProject(ctx)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), out)
				})
			},
		},
	)
	return cmd
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create tasks",
	}

	form := taskform.Initial("")
	var priority string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a task in the active organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			form = taskform.Reduce(form, taskform.Action{Type: taskform.SetPriority, Value: priority})
			if res := taskform.Validate(form); !res.Valid {
				return fmt.Errorf("invalid task: %s", formatFieldErrors(res.Errors))
			}
			return call(func(ctx context.Context, c *client.Client) error {
				task, err := c.CreateTask(ctx, form)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "task created: %s %q\n", task.ID, task.Title)
				return nil
			})
		},
	}
	add.Flags().StringVar(&form.Title, "title", "", "task title (required)")
	add.Flags().StringVar(&form.Description, "desc", "", "task description")
	add.Flags().StringVar(&priority, "priority", string(model.PriorityMedium), "low, medium or high")
	add.Flags().StringVar(&form.AssigneeID, "assignee", "", "assignee user id (defaults to you)")
	add.Flags().StringVar(&form.ProjectID, "project", "", "project id")
	add.Flags().StringVar(&form.ListID, "list", "", "task list id")
	_ = add.MarkFlagRequired("title")

	cmd.AddCommand(add)
	return cmd
}

func formatFieldErrors(errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for field, msg := range errs {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show today's hours per project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(ctx context.Context, c *client.Client) error {
				d, err := c.TodaySummary(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s  total %s  regular %.2fh  overtime %.2fh\n",
					d.Date, d.TotalClock, d.RegularHours, d.OvertimeHours)
				for _, p := range d.Projects {
					fmt.Fprintf(w, "  %-30s %s\n", p.Name, p.Clock)
				}
				return nil
			})
		},
	}
}

func availabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show and edit your availability",
	}

	var available bool
	var note string
	setDate := &cobra.Command{
		Use:   "set-date <yyyy-mm-dd>...",
		Short: "Mark one or more dates as available or unavailable",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(ctx context.Context, c *client.Client) error {
				return c.SetDates(ctx, args, available, note)
			})
		},
	}
	setDate.Flags().BoolVar(&available, "available", false, "mark the dates as available")
	setDate.Flags().StringVar(&note, "note", "", "note stored with the dates")

	var all bool
	clearDate := &cobra.Command{
		Use:   "clear-date [yyyy-mm-dd]",
		Short: "Remove a date override, or all of them with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("give a date or --all")
			}
			return call(func(ctx context.Context, c *client.Client) error {
				if all {
					return c.ClearDates(ctx)
				}
				return c.RemoveDate(ctx, args[0])
			})
		},
	}
	clearDate.Flags().BoolVar(&all, "all", false, "remove every date override")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the weekly pattern and date overrides",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(func(ctx context.Context, c *client.Client) error {
					week, err := c.WeeklyAvailability(ctx)
					if err != nil {
						return err
					}
					dates, err := c.DateAvailability(ctx)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), map[string]any{"weekly": week, "dates": dates})
				})
			},
		},
		setDate,
		clearDate,
	)
	return cmd
}

func notificationsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show recent notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(ctx context.Context, c *client.Client) error {
				rows, err := c.Notifications(ctx, limit)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, n := range rows {
					mark := " "
					if n.Variant == "destructive" {
						mark = "!"
					}
					fmt.Fprintf(w, "%s %s  %s: %s\n", mark, n.At.Local().Format(time.TimeOnly), n.Title, n.Description)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of notifications to show")
	return cmd
}
