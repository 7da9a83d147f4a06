package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bdobrica/Vaani/common/environment"
	"github.com/bdobrica/Vaani/internal/vaani/lexicon"
	"github.com/bdobrica/Vaani/internal/vaani/parser"
)

func newParseCmd() *cobra.Command {
	var overlay string
	cmd := &cobra.Command{
		Use:     "parse <text>...",
		Short:   "Show how text resolves to an action without running it",
		Example: "  vaani parse chrome kholo\n  vaani parse \"open browser and search golang\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lx := lexicon.Default()
			if overlay != "" {
				extra, err := lexicon.LoadOverlay(overlay)
				if err != nil {
					return err
				}
				if lx, err = lx.Extend(extra...); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), parser.New(lx).Parse(joinArgs(args)))
		},
	}
	cmd.Flags().StringVar(&overlay, "lexicon", environment.StringOr("VAANI_LEXICON_FILE", ""), "YAML lexicon overlay")
	return cmd
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
