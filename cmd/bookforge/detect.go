package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maauso/bookforge/internal/chapters"
	"github.com/maauso/bookforge/internal/document"
)

func detectCmd() *cobra.Command {
	var (
		strategy      string
		minConfidence float64
		jsonOutput    bool
	)
	cmd := &cobra.Command{
		Use:   "detect <input>",
		Short: "Show the chapter boundaries found in a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := chapters.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			if _, _, err := loadConfig(); err != nil {
				return err
			}

			doc, err := document.NewFileLoader().Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			boundaries, err := chapters.Detect(doc.Lines, s, minConfidence)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(boundaries)
			}

			if len(boundaries) == 0 {
				fmt.Fprintln(out, "No chapter boundaries found; the document is one chapter.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "LINE\tCONFIDENCE\tSTRATEGY\tTITLE")
			for _, b := range boundaries {
				fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\n", b.LineIndex, b.Confidence, b.Strategy, b.Title)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&strategy, "strategy", string(chapters.StrategyAuto), "chapter detection strategy")
	f.Float64Var(&minConfidence, "min-confidence", 0.7, "minimum boundary confidence")
	f.BoolVar(&jsonOutput, "json", false, "print boundaries as JSON")
	return cmd
}
