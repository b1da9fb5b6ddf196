package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func chunksCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "chunks <project-dir>",
		Short: "List the chunks of a project and whether their audio exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(args[0])
			if err != nil {
				return err
			}
			entries, err := p.LoadIndex()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCHAPTER\tSECONDS\tAUDIO\tTEXT")
			var total float64
			for _, e := range entries {
				audio := "missing"
				if _, err := os.Stat(p.ChunkPath(e.AudioFile)); err == nil {
					audio = "ok"
				}
				total += e.EstimatedSeconds
				fmt.Fprintf(tw, "%d\t%d\t%.1f\t%s\t%s\n", e.ID, e.ChapterIndex, e.EstimatedSeconds, audio, preview(e.Text, 48))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d chunks, about %.0f minutes\n", len(entries), total/60)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the index as JSON")
	return cmd
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
