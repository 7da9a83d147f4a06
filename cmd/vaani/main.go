// Command vaani runs the bilingual command assistant and offers offline
// tools for parsing, automation definitions and the command log.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bdobrica/Vaani/common/version"
	"github.com/bdobrica/Vaani/internal/vaani/app"
	"github.com/bdobrica/Vaani/internal/vaani/observability"
	"github.com/bdobrica/Vaani/internal/vaani/router"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vaani",
		Short:         "Vaani - English/Hindi command assistant",
		Long:          "Vaani turns English and Hindi text into desktop actions, gates dangerous ones behind\nconfirmation, and runs scheduled tasks and macros.",
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newParseCmd(),
		newExecCmd(),
		newAutomationCmd(),
		newLogCmd(),
		newVersionCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant with its scheduler, HTTP and Matrix endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.LoadConfig()
			logs := observability.Setup(cfg.Log)
			defer logs.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
}

func newExecCmd() *cobra.Command {
	var sender string
	cmd := &cobra.Command{
		Use:   "exec <text>...",
		Short: "Handle one command, or an approve/deny decision, and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()
			cfg.HTTPAddr = ""
			cfg.Matrix.Homeserver = ""
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.Submit(context.Background(), router.Request{Text: joinArgs(args), Sender: sender})
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&sender, "sender", "cli", "sender recorded in the command log")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version: %s\n", version.Version)
			fmt.Fprintf(out, "Commit: %s\n", version.GitCommit)
			fmt.Fprintf(out, "Build Time: %s\n", version.BuildTime)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
