package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bdobrica/Vaani/common/environment"
	"github.com/bdobrica/Vaani/internal/vaani/store"
)

func newLogCmd() *cobra.Command {
	var (
		dbPath  string
		limit   int
		traceID string
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recently handled commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.New(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			var rows []store.CommandLogEntry
			if traceID != "" {
				rows, err = st.CommandsByTrace(ctx, traceID)
			} else {
				rows, err = st.RecentCommands(ctx, limit)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tSENDER\tACTION\tLANG\tOK\tTEXT")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
					r.Timestamp.Local().Format(time.DateTime), r.Sender, r.Key, r.Language, r.Success, r.Text)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", environment.StringOr("VAANI_DB_PATH", "./vaani.db"), "SQLite database path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rows")
	cmd.Flags().StringVar(&traceID, "trace", "", "show only the commands of one trace")
	return cmd
}
