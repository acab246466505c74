package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/pivotree/internal/analysis"
	"github.com/KaramelBytes/pivotree/internal/dataset"
	"github.com/KaramelBytes/pivotree/internal/utils"
)

var (
	pbFlags       pivotFlags
	pbOutDir      string
	pbConcurrency int
	pbQuiet       bool
)

var pivotBatchCmd = &cobra.Command{
	Use:   "pivot-batch <files...>",
	Short: "Pivot multiple datasets concurrently with the same options",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}

		c := currentConfig()
		opt := pbFlags.options(cmd, c)
		out, numbers, err := pbFlags.renderer(c, opt)
		if err != nil {
			return err
		}
		dopt, err := pbFlags.datasetOptions(opt)
		if err != nil {
			return err
		}
		limit := c.BatchConcurrency
		if pbConcurrency > 0 {
			limit = pbConcurrency
		}

		// Output paths are assigned up front so basename collisions resolve
		// the same way regardless of completion order.
		var targets []string
		if pbOutDir != "" {
			if err := utils.EnsureDir(pbOutDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			assigned := map[string]bool{}
			for _, f := range files {
				p := utils.OutputPath(pbOutDir, f, extension(out), func(p string) bool {
					if assigned[p] {
						return true
					}
					_, err := os.Stat(p)
					return err == nil
				})
				assigned[p] = true
				targets = append(targets, p)
			}
		}

		var (
			mu      sync.Mutex
			done    int
			results = make([][]byte, len(files))
			w       = cmd.OutOrStdout()
		)
		total := len(files)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(limit)
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				ds, err := dataset.Load(path, dopt)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				rep, err := analysis.Run(ctx, ds, opt, log)
				if err != nil {
					return err
				}
				b, err := render(rep, out, numbers)
				if err != nil {
					return err
				}
				if targets != nil {
					if err := utils.SafeWriteFile(targets[i], b); err != nil {
						return fmt.Errorf("write %s: %w", targets[i], err)
					}
				} else {
					results[i] = b
				}
				mu.Lock()
				defer mu.Unlock()
				done++
				if !pbQuiet {
					fmt.Fprintf(w, "[%d/%d] Pivoted %s\n", done, total, filepath.Base(path))
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if targets != nil {
			if !pbQuiet {
				fmt.Fprintf(w, "✓ Wrote %d pivots to %s\n", total, pbOutDir)
			}
			return nil
		}
		for _, b := range results {
			fmt.Fprintln(w, string(b))
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(pivotBatchCmd)
	pbFlags.register(pivotBatchCmd)
	pivotBatchCmd.Flags().StringVar(&pbOutDir, "out-dir", "", "directory for one result file per input (stdout if omitted)")
	pivotBatchCmd.Flags().IntVarP(&pbConcurrency, "concurrency", "j", 0, "datasets processed in parallel (default from config)")
	pivotBatchCmd.Flags().BoolVar(&pbQuiet, "quiet", false, "suppress progress and non-essential output")
}
