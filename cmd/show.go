package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/calview/internal/config"
	"github.com/teemow/calview/internal/monthgrid"
	"github.com/teemow/calview/internal/view"
)

const cellWidth = 4

func newShowCmd() *cobra.Command {
	var (
		month       string
		user        string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a month calendar to the terminal",
		Long: `Print a month calendar to the terminal.

The grid always has whole weeks starting on Sunday. Days outside the viewed
month are shown in parentheses. Events are listed below the grid.

With --interactive, commands are read from stdin, one per line:
  p  previous month
  n  next month
  t  today
  q  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := appConfig
			if user == "" {
				user = cfg.DefaultUser
			}
			cal, err := newShowCalendar(cfg, user, appLogger)
			if err != nil {
				return err
			}
			return runShow(cmd.Context(), cal, month, interactive, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to show as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&user, "user", "", "CRM user id whose calendar to show (default: default_user from config)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read navigation commands from stdin")

	return cmd
}

func newShowCalendar(cfg *config.Config, user string, logger *slog.Logger) (*view.MonthCalendar, error) {
	formatter, err := newFormatter(cfg)
	if err != nil {
		return nil, err
	}
	auth := newAuthenticator(cfg, logger)
	src, err := newEventSource(cfg, auth, nil, logger)
	if err != nil {
		return nil, err
	}
	if cfg.EventSource == config.EventSourceGoogle && !auth.HasTokenForAccount(user) {
		return nil, fmt.Errorf("no Google token for %q, run 'calview auth --user %s' first", user, user)
	}
	return view.NewMonthCalendar(view.MonthCalendarConfig{
		Source:    src.EventSource,
		Formatter: formatter,
		UserID:    user,
		Logger:    logger,
	}), nil
}

func runShow(ctx context.Context, cal *view.MonthCalendar, month string, interactive bool, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var v view.MonthView
	if month != "" {
		ref, err := monthgrid.ParseYearMonth(month)
		if err != nil {
			return err
		}
		v = cal.LoadMonth(ctx, ref)
	} else {
		v = cal.Load(ctx)
	}
	renderMonthText(out, v)

	if !interactive {
		return nil
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "[p]rev [n]ext [t]oday [q]uit> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "p":
			v = cal.Prev(ctx)
		case "n":
			v = cal.Next(ctx)
		case "t":
			v = cal.Today(ctx)
		case "q":
			return nil
		case "":
			continue
		default:
			fmt.Fprintln(out, "unknown command")
			continue
		}
		renderMonthText(out, v)
	}
}

// renderMonthText writes v as a plain text grid followed by the events of
// the viewed month.
func renderMonthText(w io.Writer, v view.MonthView) {
	fmt.Fprintln(w, v.Label)
	if v.Failed {
		fmt.Fprintln(w, "Could not load events.")
	}

	for _, wd := range v.Weekdays {
		fmt.Fprintf(w, "%*s", cellWidth, abbreviate(wd, cellWidth-1))
	}
	fmt.Fprintln(w)

	for _, week := range v.Weeks {
		for _, day := range week {
			cell := fmt.Sprintf("%d", day.DayNumber)
			switch {
			case !day.IsCurrentMonth:
				cell = "(" + cell + ")"
			case len(day.Events) > 0:
				cell += "*"
			}
			fmt.Fprintf(w, "%*s", cellWidth, cell)
		}
		fmt.Fprintln(w)
	}

	for _, week := range v.Weeks {
		for _, day := range week {
			if !day.IsCurrentMonth {
				continue
			}
			for _, ev := range day.Events {
				fmt.Fprintf(w, "%s  %s\n", day.ISO, ev.Label)
			}
		}
	}
	if v.Skipped > 0 {
		fmt.Fprintf(w, "%d event(s) could not be shown.\n", v.Skipped)
	}
}

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
