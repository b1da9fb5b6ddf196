package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/bookforge/internal/book"
	"github.com/maauso/bookforge/internal/chapters"
	"github.com/maauso/bookforge/internal/config"
)

func processCmd() *cobra.Command {
	var (
		req      book.ProcessRequest
		strategy string
	)
	cmd := &cobra.Command{
		Use:   "process <input> <project-dir>",
		Short: "Derive chunks from a document, synthesize them and build the book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := chapters.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			req.Strategy = s
			req.InputPath = args[0]

			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			p, err := openProject(args[1])
			if err != nil {
				return err
			}

			res, err := rt.deps.Book.Process(cmd.Context(), p, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Chapters: %d\nChunks: %d (synthesized %d, resumed %d)\n",
				res.Chapters, res.Chunks, res.Synthesized, res.Resumed)
			if res.Rebuild != nil {
				printRebuild(cmd, res.Rebuild)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.PresetName, "preset", config.DefaultPresetName, "voice preset name")
	f.StringVar(&req.Voice, "voice", "", "override the preset voice")
	f.StringVar(&strategy, "strategy", string(chapters.StrategyAuto), "chapter detection strategy (auto|markdown|structured|heuristic|paragraph|none)")
	f.Float64Var(&req.MinConfidence, "min-confidence", 0.7, "minimum boundary confidence for structured and heuristic detection")
	f.BoolVar(&req.Resume, "resume", false, "skip chunks whose audio already exists")
	f.BoolVar(&req.SkipRebuild, "no-rebuild", false, "stop after synthesizing chunks")
	return cmd
}
