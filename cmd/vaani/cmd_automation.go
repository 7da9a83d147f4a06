package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bdobrica/Vaani/common/environment"
	"github.com/bdobrica/Vaani/internal/vaani/automation"
	"github.com/bdobrica/Vaani/internal/vaani/store"
)

// withEngine opens the database and loads the stored definitions into an
// engine that is never started.
func withEngine(dbPath string, fn func(ctx context.Context, e *automation.Engine) error) error {
	st, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	e := automation.New(automation.Config{Repository: st})
	e.Load(ctx)
	return fn(ctx, e)
}

func newAutomationCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "automation",
		Short: "Inspect and import scheduled tasks and macros",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", environment.StringOr("VAANI_DB_PATH", "./vaani.db"), "SQLite database path")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print scheduler status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(dbPath, func(_ context.Context, e *automation.Engine) error {
				return printJSON(cmd.OutOrStdout(), e.Status())
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks and macros",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(dbPath, func(_ context.Context, e *automation.Engine) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TASK\tSCHEDULE\tCOMMAND\tENABLED\tRUNS\tLAST RUN")
				for _, t := range e.Tasks() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%s\n",
						t.Name, schedule(t), t.Command, t.Enabled, t.RunCount, when(t.LastRun))
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, "MACRO\tTRIGGER\tSTEPS\tENABLED\tRUNS")
				for _, m := range e.Macros() {
					fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%d\n",
						m.Name, trigger(m), len(m.Steps), m.Enabled, m.RunCount)
				}
				return w.Flush()
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or replace tasks and macros from a definitions file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(dbPath, func(ctx context.Context, e *automation.Engine) error {
				tasks, macros, err := e.LoadDefinitions(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks and %d macros.\n", tasks, macros)
				return nil
			})
		},
	}

	presets := &cobra.Command{
		Use:   "seed",
		Short: "Install the stock tasks and macros that are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(dbPath, func(ctx context.Context, e *automation.Engine) error {
				tasks, macros := e.SeedPresets(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d tasks and %d macros.\n", tasks, macros)
				return nil
			})
		},
	}

	cmd.AddCommand(status, list, importCmd, presets)
	return cmd
}

func schedule(t automation.Task) string {
	s := string(t.Kind) + " " + t.Value
	if len(t.Days) > 0 {
		s += " (" + strings.Join(t.Days, ",") + ")"
	}
	return s
}

func trigger(m automation.Macro) string {
	switch m.Trigger {
	case automation.TriggerVoice:
		return fmt.Sprintf("voice %q", m.TriggerPhrase)
	case automation.TriggerHotkey:
		return "hotkey " + m.Hotkey
	default:
		return string(m.Trigger)
	}
}

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
