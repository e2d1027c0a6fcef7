package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"shotcraft/internal/i18n"
	"shotcraft/internal/infra"
	"shotcraft/internal/providers/image"
	"shotcraft/internal/storage"
	"shotcraft/internal/studio"
	"shotcraft/internal/upload"
)

// CLI flags
var (
	angleFlag     string
	shotFlag      string
	levelFlag     string
	promptFlag    string
	outFlag       string
	modelFlag     string
	overwriteFlag bool
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "generate [flags] IMAGE...",
	Short: "Render the given images from a new camera perspective",
	Long: `Generate combines one or more source images into a single image seen from
the chosen camera angle, shot and level, and writes the result to disk.

Examples:
  generate --angle "Front View" --shot "Medium Shot" --level "Low-angle" a.png b.jpg
  generate --shot "Drone Shot" --prompt "Make it golden hour." --out ./renders photo.webp`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.Flags().StringVar(&angleFlag, "angle", "", "Camera angle (Left Side, Right Side, Front View)")
	rootCmd.Flags().StringVar(&shotFlag, "shot", "", "Camera shot (Close-up Shot, Medium Shot, Full Shot, Drone Shot)")
	rootCmd.Flags().StringVar(&levelFlag, "level", "", "Camera level (Eye-level, Low-angle, High-angle)")
	rootCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "Additional instructions appended to the prompt")
	rootCmd.Flags().StringVarP(&outFlag, "out", "o", ".", "Directory the result is written to")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use (defaults to GEMINI_MODEL)")
	rootCmd.Flags().BoolVar(&overwriteFlag, "overwrite", false, "Replace an existing result file instead of adding a suffix")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	switch {
	case verboseFlag:
		level = "debug"
	case level == "":
		level = "info"
	}
	logger := infra.NewCLILogger(level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model := cfg.GeminiModel
	if modelFlag != "" {
		model = modelFlag
	}
	generator, err := image.NewGeminiGenerator(ctx, image.GeminiOptions{
		APIKey: cfg.GeminiAPIKey,
		Model:  model,
		Logger: &logger,
	})
	if err != nil {
		return err
	}

	store, err := storage.NewFileStore(outFlag)
	if err != nil {
		return err
	}

	sess := studio.NewSession(uuid.New(), studio.Deps{
		Collector: upload.NewCollector(cfg.MaxImageBytes, logger),
		Generator: generator,
		Logger:    &logger,
	})

	if err := applySelection(sess); err != nil {
		return err
	}
	sess.SetAdditionalPrompt(promptFlag)

	sources := make([]upload.Source, len(args))
	for i, path := range args {
		sources[i] = upload.FromPath(path)
	}
	if err := sess.Upload(ctx, sources); err != nil {
		return sessionError(sess, err)
	}

	view := sess.Snapshot()
	logger.Info().
		Int("images", len(view.Images)).
		Str("angle", string(view.Selection.Angle)).
		Str("shot", string(view.Selection.Shot)).
		Str("level", string(view.Selection.Level)).
		Str("model", generator.Model()).
		Msg("generating")

	result, err := sess.Generate(ctx)
	if err != nil {
		return sessionError(sess, err)
	}

	write := store.WriteNew
	if overwriteFlag {
		write = store.Write
	}
	path, err := write(ctx, result.FileName(), result.Data)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func applySelection(sess *studio.Session) error {
	steps := []struct {
		value string
		apply func(string) error
	}{
		{angleFlag, sess.SelectAngle},
		{shotFlag, sess.SelectShot},
		{levelFlag, sess.SelectLevel},
	}
	for _, step := range steps {
		if step.value == "" {
			continue
		}
		if err := step.apply(step.value); err != nil {
			return err
		}
	}
	return nil
}

// sessionError prefers the message the session shows its user.
func sessionError(sess *studio.Session, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if text := sess.Snapshot().Notice().Text(i18n.LocaleEnglish); text != "" {
		return errors.New(text)
	}
	return err
}
