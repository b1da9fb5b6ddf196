package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/maauso/bookforge/internal/book"
)

func reviewCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "review <project-dir> <chunk-id>",
		Short: "Re-synthesize one chunk, optionally with new text, and rebuild the book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[1])
			if err != nil || id < 0 {
				return fmt.Errorf("invalid chunk id %q", args[1])
			}
			req := book.ReviewRequest{ChunkID: id}
			if cmd.Flags().Changed("text") {
				req.Text = &text
			}

			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			p, err := openProject(args[0])
			if err != nil {
				return err
			}

			res, err := rt.deps.Book.Review(cmd.Context(), p, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chunk %d re-synthesized.\n", id)
			printRebuild(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "replacement text for the chunk")
	return cmd
}
