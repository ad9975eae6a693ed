package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/MeKo-Tech/photoblend/internal/adjust"
	"github.com/MeKo-Tech/photoblend/internal/composite"
	"github.com/MeKo-Tech/photoblend/internal/export"
	"github.com/MeKo-Tech/photoblend/internal/imageio"
	"github.com/MeKo-Tech/photoblend/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// layerConfig is one layer as written in a config file. Unset sliders keep their defaults.
type layerConfig struct {
	Path       string   `mapstructure:"path"`
	Brightness *float64 `mapstructure:"brightness"`
	Contrast   *float64 `mapstructure:"contrast"`
	Saturation *float64 `mapstructure:"saturation"`
	Highlights *float64 `mapstructure:"highlights"`
	Shadows    *float64 `mapstructure:"shadows"`
	Rotation   *int     `mapstructure:"rotation"`
	Alpha      *float64 `mapstructure:"alpha"`
}

type jobConfig struct {
	Name   string      `mapstructure:"name"`
	Mode   string      `mapstructure:"mode"`
	Swap   bool        `mapstructure:"swap"`
	Bottom layerConfig `mapstructure:"bottom"`
	Top    layerConfig `mapstructure:"top"`
}

func (c layerConfig) layerSpec(baseDir string) pipeline.LayerSpec {
	p := adjust.DefaultParams()
	setIf(&p.Brightness, c.Brightness)
	setIf(&p.Contrast, c.Contrast)
	setIf(&p.Saturation, c.Saturation)
	setIf(&p.Highlights, c.Highlights)
	setIf(&p.Shadows, c.Shadows)
	setIf(&p.Rotation, c.Rotation)
	setIf(&p.Alpha, c.Alpha)

	path := c.Path
	if path != "" && baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return pipeline.LayerSpec{Path: path, Params: p}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (c jobConfig) job(baseDir string) (pipeline.Job, error) {
	mode := composite.Normal
	if c.Mode != "" {
		m, err := composite.ParseBlendMode(c.Mode)
		if err != nil {
			return pipeline.Job{}, err
		}
		mode = m
	}

	job := pipeline.Job{
		Name:   c.Name,
		Bottom: c.Bottom.layerSpec(baseDir),
		Top:    c.Top.layerSpec(baseDir),
		Mode:   mode,
		Swap:   c.Swap,
	}
	if job.Bottom.Path == "" || job.Top.Path == "" {
		return pipeline.Job{}, fmt.Errorf("job %q needs both a bottom and a top path", job.String())
	}
	if err := job.Bottom.Params.Validate(); err != nil {
		return pipeline.Job{}, fmt.Errorf("job %q bottom layer: %w", job.String(), err)
	}
	if err := job.Top.Params.Validate(); err != nil {
		return pipeline.Job{}, fmt.Errorf("job %q top layer: %w", job.String(), err)
	}
	return job, nil
}

// decodeJobs reads the job list under key. Relative paths resolve against baseDir.
func decodeJobs(v *viper.Viper, key, baseDir string) ([]pipeline.Job, error) {
	var configs []jobConfig
	if err := v.UnmarshalKey(key, &configs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no jobs configured under %s", key)
	}

	jobs := make([]pipeline.Job, 0, len(configs))
	for i, c := range configs {
		job, err := c.job(baseDir)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// outputOptions are shared by blend and batch.
type outputOptions struct {
	Format      string // folder or archive
	OutputDir   string
	ArchiveFile string
	Prefix      string
	Compression string
	Overwrite   bool
}

func addOutputFlags(cmd *cobra.Command, section string) {
	cmd.Flags().String("format", "folder", "Output format: folder or archive")
	cmd.Flags().String("archive-file", "", "Archive database for --format=archive (default: <output-dir>/photoblend.db)")
	cmd.Flags().String("prefix", export.DefaultPrefix, "Prefix for generated export names")
	cmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")
	cmd.Flags().Bool("overwrite", false, "Overwrite existing exports with the same name")
	cmd.Flags().Bool("keep-layers", false, "Also export the processed bottom and top layers")
	cmd.Flags().Int("max-edge", 0, "Downscale sources so their longest edge fits (0 = full size)")

	mustBind(cmd, section, map[string]string{
		"format":          "format",
		"archive_file":    "archive-file",
		"prefix":          "prefix",
		"png_compression": "png-compression",
		"overwrite":       "overwrite",
		"keep_layers":     "keep-layers",
		"max_edge":        "max-edge",
	})
}

func readOutputOptions(section string) outputOptions {
	return outputOptions{
		Format:      viper.GetString(section + ".format"),
		OutputDir:   viper.GetString("output-dir"),
		ArchiveFile: viper.GetString(section + ".archive_file"),
		Prefix:      viper.GetString(section + ".prefix"),
		Compression: viper.GetString(section + ".png_compression"),
		Overwrite:   viper.GetBool(section + ".overwrite"),
	}
}

func openStore(opts outputOptions) (export.Store, error) {
	level, err := imageio.ParseCompression(opts.Compression)
	if err != nil {
		return nil, err
	}

	switch opts.Format {
	case "", "folder":
		return export.NewFolderStore(opts.OutputDir, opts.Prefix, level, opts.Overwrite)
	case "archive":
		path := opts.ArchiveFile
		if path == "" {
			if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create output dir: %w", err)
			}
			path = filepath.Join(opts.OutputDir, "photoblend.db")
		}
		return export.OpenArchive(path, export.ArchiveInfo{
			Name:        "PhotoBlend",
			Description: "Blended photo exports",
			Version:     "1.0",
		}, opts.Prefix, level)
	default:
		return nil, fmt.Errorf("invalid format %q: must be 'folder' or 'archive'", opts.Format)
	}
}

func newGenerator(store export.Store, section string) (*pipeline.Generator, error) {
	renderer := pipeline.NewRenderer(logger, pipeline.Options{
		MaxEdge: viper.GetInt(section + ".max_edge"),
	})
	return pipeline.NewGenerator(renderer, store, viper.GetBool(section+".keep_layers"), logger)
}

// mustBind binds flags (by name) to section.key viper keys.
func mustBind(cmd *cobra.Command, section string, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(section+"."+key, cmd.Flags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
		}
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
