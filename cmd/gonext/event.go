package gonext

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/gonext/internal/app"
	"github.com/saadjs/gonext/internal/calendar"
	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/scheduler"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Manage mood calendar events",
}

var (
	eventDate     string
	eventMood     string
	eventNote     string
	eventUpcoming bool
	eventJSON     bool
	eventOut      string
	eventInterval time.Duration
)

var eventAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a mood event for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			ev, err := a.Events.AddEvent(ctx, eventDate, eventMood, eventNote)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added event %s on %s (%s)\n", ev.ID, ev.Date, ev.Mood)
			return nil
		})
	},
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			events := a.Events.Events()
			if eventUpcoming {
				events = a.Events.Upcoming()
			}
			if eventJSON {
				return printJSON(cmd, events)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tMOOD\tNOTIFIED\tNOTE")
			for _, e := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%t\t%s\n", e.ID, e.Date, e.Mood, e.Notified, oneLine(e.Note))
			}
			return nil
		})
	},
}

var eventDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Events.DeleteEvent(ctx, strings.TrimSpace(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", args[0])
			return nil
		})
	},
}

var eventCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one scan for today's events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			n, err := a.Events.CheckTodayEvents(ctx)
			if err != nil {
				return err
			}
			if n == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending events today.")
				return nil
			}
			printNotification(cmd.OutOrStdout(), *n)
			return nil
		})
	},
}

var eventWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scan for today's events on an interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			interval := a.Config.PollInterval
			if cmd.Flags().Changed("interval") {
				interval = eventInterval
			}
			out := cmd.OutOrStdout()
			a.Events.OnPublish(func(n model.Notification) { printNotification(out, n) })

			sched := scheduler.New(a.Log)
			if err := a.Events.StartNotifier(ctx, sched, interval); err != nil {
				return err
			}
			sched.Start()
			fmt.Fprintf(out, "Watching for today's events every %s (Ctrl+C to stop)\n", interval)
			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return sched.Stop(stopCtx)
		})
	},
}

var eventExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events as an iCalendar (.ics) file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			w := cmd.OutOrStdout()
			if eventOut != "" && eventOut != "-" {
				f, err := os.Create(eventOut)
				if err != nil {
					return fmt.Errorf("create %s: %w", eventOut, err)
				}
				defer f.Close()
				w = f
			}
			skipped, err := calendar.Write(w, a.Events.Events(), time.Now())
			if err != nil {
				return err
			}
			if skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d event(s) with invalid dates\n", skipped)
			}
			if eventOut != "" && eventOut != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", eventOut)
			}
			return nil
		})
	},
}

func printNotification(w io.Writer, n model.Notification) {
	fmt.Fprintf(w, "%s %s\n%s\n", n.Emoji, n.Title, n.Message)
	if n.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", n.Note)
	}
}

func init() {
	rootCmd.AddCommand(eventCmd)
	eventCmd.AddCommand(eventAddCmd, eventListCmd, eventDeleteCmd, eventCheckCmd, eventWatchCmd, eventExportCmd)

	eventAddCmd.Flags().StringVar(&eventDate, "date", "", "Event date YYYY-MM-DD")
	eventAddCmd.Flags().StringVar(&eventMood, "mood", "work", "Mood id")
	eventAddCmd.Flags().StringVar(&eventNote, "note", "", "Optional note (max 100 characters)")
	_ = eventAddCmd.MarkFlagRequired("date")

	eventListCmd.Flags().BoolVar(&eventUpcoming, "upcoming", false, "Only today and later, earliest first")
	eventListCmd.Flags().BoolVar(&eventJSON, "json", false, "Output JSON")

	eventWatchCmd.Flags().DurationVar(&eventInterval, "interval", time.Minute, "Scan interval (default: config poll_interval)")
	eventExportCmd.Flags().StringVar(&eventOut, "out", "", "Output .ics path (default: stdout)")
}
