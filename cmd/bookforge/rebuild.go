package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/bookforge/internal/book"
)

func rebuildCmd() *cobra.Command {
	var opts book.RebuildOptions
	cmd := &cobra.Command{
		Use:   "rebuild <project-dir>",
		Short: "Stitch chapter and book audio from the existing chunk audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.SkipFirstChunks < 0 {
				return fmt.Errorf("--skip-first-chunks must not be negative")
			}
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			p, err := openProject(args[0])
			if err != nil {
				return err
			}

			res, err := rt.deps.Book.Rebuild(cmd.Context(), p, opts)
			if err != nil {
				return err
			}
			printRebuild(cmd, res)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.SkipFirstChunks, "skip-first-chunks", 0, "leave out the first N chunks (in id order)")
	return cmd
}

func printRebuild(cmd *cobra.Command, res *book.RebuildResult) {
	out := cmd.OutOrStdout()
	if res.NothingToRebuild {
		fmt.Fprintln(out, "Nothing to rebuild: no chunk audio found.")
		return
	}
	fmt.Fprintf(out, "Chapters stitched: %d\nBook: %s\n", len(res.ChapterPaths), res.BookPath)
	if len(res.SkippedChunkIDs) > 0 {
		fmt.Fprintf(out, "Skipped chunks without audio: %v\n", res.SkippedChunkIDs)
	}
	if res.PublishedURL != "" {
		fmt.Fprintf(out, "Published: %s\n", res.PublishedURL)
	}
}
