package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/MeKo-Tech/photoblend/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Blend every job listed in the config file",
	Long: `Run the jobs listed under batch.jobs in the config file on a pool of workers.

Each job names a bottom and a top photo, their sliders and a blend mode:

  batch:
    jobs:
      - name: sunset
        mode: screen
        bottom: {path: beach.jpg, brightness: 1.1}
        top: {path: sky.png, alpha: 0.6, rotation: 90}

Relative paths are resolved against the config file's directory.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Show progress bar")
	batchCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some jobs fail")

	mustBind(batchCmd, "batch", map[string]string{
		"workers":        "workers",
		"progress":       "progress",
		"allow_failures": "allow-failures",
	})

	addOutputFlags(batchCmd, "batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	baseDir := ""
	if used := viper.ConfigFileUsed(); used != "" {
		baseDir = filepath.Dir(used)
	}

	jobs, err := decodeJobs(viper.GetViper(), "batch.jobs", baseDir)
	if err != nil {
		return err
	}

	workers := viper.GetInt("batch.workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	opts := readOutputOptions("batch")
	logger.Info("Starting batch",
		"jobs", len(jobs),
		"workers", workers,
		"format", opts.Format,
		"output_dir", opts.OutputDir,
	)

	store, err := openStore(opts)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	defer store.Close() // nolint:errcheck

	gen, err := newGenerator(store, "batch")
	if err != nil {
		return fmt.Errorf("failed to init generator: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var progress *worker.Progress
	if viper.GetBool("batch.progress") {
		progress = worker.NewProgress(len(jobs), "images", os.Stderr)
	} else {
		progress = worker.NewProgress(len(jobs), "images", nil)
	}

	pool := worker.New(worker.Config{
		Workers:    workers,
		Generator:  gen,
		OnProgress: progress.Callback(),
	})

	results := pool.Run(ctx, worker.Tasks(jobs))
	progress.Done()

	for _, r := range results {
		if r.Err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), r.Location)
		}
	}

	failed := worker.Failed(results)
	for _, r := range failed {
		logger.Error("Job failed", "job", r.Task.Job.String(), "index", r.Task.Index, "error", r.Err)
	}

	logger.Info(progress.Summary())

	if len(failed) > 0 {
		if viper.GetBool("batch.allow_failures") {
			logger.Warn("Some jobs failed, continuing due to --allow-failures", "failed_count", len(failed))
			return nil
		}
		return fmt.Errorf("%d of %d jobs failed", len(failed), len(jobs))
	}
	return nil
}
