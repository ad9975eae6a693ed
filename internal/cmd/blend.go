package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/photoblend/internal/composite"
	"github.com/MeKo-Tech/photoblend/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var blendCmd = &cobra.Command{
	Use:   "blend",
	Short: "Blend two photos",
	Long: `Adjust a bottom and a top photo, rotate them, and blend the top over the bottom.

The top photo is scaled and cropped to cover the bottom photo's canvas.`,
	Example: `  photoblend blend --bottom beach.jpg --top sky.png --mode screen --top-alpha 0.6
  photoblend blend --bottom a.jpg --top b.jpg --bottom-rotation 90 --format archive`,
	RunE: runBlend,
}

var sliders = []struct {
	name  string
	def   float64
	usage string
}{
	{"brightness", 1, "brightness multiplier (1 = unchanged)"},
	{"contrast", 1, "contrast around mid-grey (1 = unchanged)"},
	{"saturation", 1, "saturation (0 = greyscale, 1 = unchanged)"},
	{"highlights", 0, "highlights lift"},
	{"shadows", 0, "shadows amount (positive darkens)"},
	{"alpha", 1, "layer opacity in [0,1]"},
}

func init() {
	rootCmd.AddCommand(blendCmd)

	blendCmd.Flags().String("bottom", "", "Bottom photo (defines the output canvas)")
	blendCmd.Flags().String("top", "", "Top photo")
	blendCmd.Flags().StringP("mode", "m", "normal", "Blend mode (see 'photoblend modes')")
	blendCmd.Flags().Bool("swap", false, "Swap the two photos before blending")
	blendCmd.Flags().String("name", "", "Export name (default: generated)")

	keys := map[string]string{
		"bottom.path": "bottom",
		"top.path":    "top",
		"mode":        "mode",
		"swap":        "swap",
		"name":        "name",
	}
	for _, layer := range []string{"bottom", "top"} {
		for _, s := range sliders {
			flag := layer + "-" + s.name
			blendCmd.Flags().Float64(flag, s.def, layer+" "+s.usage)
			keys[layer+"."+s.name] = flag
		}
		flag := layer + "-rotation"
		blendCmd.Flags().Int(flag, 0, layer+" rotation in degrees clockwise, multiple of 90")
		keys[layer+".rotation"] = flag
	}
	mustBind(blendCmd, "blend", keys)

	addOutputFlags(blendCmd, "blend")
}

// blendJob assembles the job from the blend.* keys.
func blendJob() (pipeline.Job, error) {
	layer := func(name string) layerConfig {
		get := func(slider string) *float64 {
			v := viper.GetFloat64("blend." + name + "." + slider)
			return &v
		}
		rotation := viper.GetInt("blend." + name + ".rotation")
		return layerConfig{
			Path:       viper.GetString("blend." + name + ".path"),
			Brightness: get("brightness"),
			Contrast:   get("contrast"),
			Saturation: get("saturation"),
			Highlights: get("highlights"),
			Shadows:    get("shadows"),
			Rotation:   &rotation,
			Alpha:      get("alpha"),
		}
	}

	cfg := jobConfig{
		Name:   viper.GetString("blend.name"),
		Mode:   viper.GetString("blend.mode"),
		Swap:   viper.GetBool("blend.swap"),
		Bottom: layer("bottom"),
		Top:    layer("top"),
	}
	if cfg.Bottom.Path == "" || cfg.Top.Path == "" {
		return pipeline.Job{}, fmt.Errorf("--bottom and --top are required")
	}
	return cfg.job("")
}

func runBlend(cmd *cobra.Command, args []string) error {
	job, err := blendJob()
	if err != nil {
		return err
	}

	opts := readOutputOptions("blend")
	logger.Info("Starting blend",
		"bottom", job.Bottom.Path,
		"top", job.Top.Path,
		"mode", job.Mode,
		"swap", job.Swap,
		"format", opts.Format,
		"output_dir", opts.OutputDir,
	)

	store, err := openStore(opts)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	defer store.Close() // nolint:errcheck

	gen, err := newGenerator(store, "blend")
	if err != nil {
		return fmt.Errorf("failed to init generator: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	loc, err := gen.Generate(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to blend: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), loc)
	return nil
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the available blend modes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, m := range composite.Modes() {
			fmt.Fprintln(cmd.OutOrStdout(), m.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
