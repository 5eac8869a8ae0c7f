package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/bubblex/internal/pipeline"
	"github.com/MeKo-Tech/bubblex/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// fileResult pairs an input path with its OCR result.
type fileResult struct {
	File    string           `json:"file"`
	Overlay string           `json:"overlay,omitempty"`
	Result  *pipeline.Result `json:"result"`
}

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image <file>...",
	Short: "Detect, read and translate the speech bubbles in images",
	Long: `Process one or more image files: detect the speech bubbles, read the
text in each one and translate it into the target language.

Supported formats: JPEG, PNG, GIF, BMP, WEBP, TIFF

Examples:
  bubblex image page.png
  bubblex image page1.png page2.jpg --format json --output result.json
  bubblex image chapter1/ --recursive --format json
  bubblex image page.png --overlay-dir out/ --target-lang Japanese`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runImage,
}

func runImage(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	format := cfg.Output.Format
	if format != outputFormatText && format != outputFormatJSON {
		return fmt.Errorf("invalid output format: %s (must be one of: %s, %s)", format, outputFormatText, outputFormatJSON)
	}
	boxColor, err := pipeline.ParseColor(cfg.Output.OverlayBoxColor)
	if err != nil {
		return err
	}
	overlayDir, _ := cmd.Flags().GetString("overlay-dir")
	outputFile, _ := cmd.Flags().GetString("output")
	showProgress, _ := cmd.Flags().GetBool("progress")
	recursive, _ := cmd.Flags().GetBool("recursive")

	files, err := utils.DiscoverImages(args, recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no image files found")
	}

	proc, err := newProcessor(cmd.Context(), cfg.ToPipelineConfig())
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer func() { _ = proc.Close() }()

	if overlayDir != "" {
		if err := os.MkdirAll(overlayDir, 0o750); err != nil {
			return fmt.Errorf("failed to create overlay directory: %w", err)
		}
	}

	results := make([]fileResult, 0, len(files))
	for _, path := range files {
		img, _, err := utils.LoadImage(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		opts := proc.Defaults()
		if showProgress {
			opts.Progress = pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), filepath.Base(path)+" ")
		}
		res, err := proc.Process(cmd.Context(), img, opts)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", path, err)
		}

		fr := fileResult{File: path, Result: res}
		if overlayDir != "" {
			fr.Overlay = overlayPath(overlayDir, path)
			overlay := pipeline.RenderOverlay(img, res, boxColor, cfg.Output.OverlayWidth)
			if err := utils.SavePNG(overlay, fr.Overlay); err != nil {
				return fmt.Errorf("failed to write overlay: %w", err)
			}
		}
		results = append(results, fr)
	}

	out := cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile) //nolint:gosec // G304: output path chosen by the user
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return writeResults(out, format, results)
}

func overlayPath(dir, input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+"_overlay.png")
}

func writeResults(w io.Writer, format string, results []fileResult) error {
	if format == outputFormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}

	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "== %s ==\n", r.File); err != nil {
				return err
			}
		}
		text := r.Result.Text()
		if text == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	return nil
}

func addImageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("overlay-dir", "", "directory to write overlay images (drawn boxes)")
	cmd.Flags().String("overlay-box-color", pipeline.DefaultOverlayColor, "overlay box colour (hex)")
	cmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories of directory arguments")
	cmd.Flags().Bool("progress", false, "show a progress bar per stage on stderr")
	cmd.Flags().StringP("target-lang", "t", "Korean", "translation target language (name or BCP 47 tag)")
	cmd.Flags().Float64("merge-threshold", 10, "merge boxes closer than this many pixels")
	cmd.Flags().Bool("tile", true, "split oversized images into overlapping tiles for detection")
	cmd.Flags().Int("workers", 1, "concurrent recognition/translation requests")
	cmd.Flags().String("det-model", "", "override detection model path (defaults to organized models path)")
	cmd.Flags().String("recognizer", "openai", "recognizer provider (openai, gemini, vision, tesseract)")
	cmd.Flags().String("translator", "openai", "translator provider (openai, gemini, none)")
	cmd.Flags().Bool("gpu", false, "enable GPU acceleration using CUDA")
}

func bindImageFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"output.format", "format"},
		{"output.overlay_box_color", "overlay-box-color"},
		{"pipeline.target_lang", "target-lang"},
		{"pipeline.merge_threshold", "merge-threshold"},
		{"pipeline.tiling", "tile"},
		{"pipeline.workers", "workers"},
		{"detector.model_path", "det-model"},
		{"recognizer.provider", "recognizer"},
		{"translator.provider", "translator"},
		{"detector.gpu.use_gpu", "gpu"},
	}
	for _, b := range flagBindings {
		if err := viper.BindPFlag(b.key, cmd.Flags().Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", b.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(imageCmd)

	addImageFlags(imageCmd)
	bindImageFlags(imageCmd)
}
