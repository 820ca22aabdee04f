package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/outpaint-kit/internal/builder"
	"github.com/shouni/outpaint-kit/internal/config"
	"github.com/shouni/outpaint-kit/pkg/domain"
)

// generateCmd は、元画像から選んだフォーマットの画像をまとめて生成するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "元画像を複数のアスペクト比にアウトペイントするのだ。",
	Long: `元画像（ローカル / gs:// / https://）を読み込み、画像説明を取ってから
選んだフォーマットごとに並行して生成し、<output-dir>/<ID>.png に保存するのだ。
一部のフォーマットが失敗しても、成功した分は保存するのだよ。`,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&opts.Input, "input", "i", "", "元画像のパスまたはURLなのだ。")
	generateCmd.Flags().StringVarP(&opts.Formats, "formats", "f", config.DefaultFormats, "カンマ区切りのフォーマット（例: 1:1,16:9）か all なのだ。")
	generateCmd.Flags().StringVarP(&opts.Context, "context", "c", "", "画像説明を手動で与えるのだ。指定すると自動の画像説明は行わないのだ。")
	generateCmd.Flags().BoolVar(&opts.NoDescribe, "no-describe", false, "画像説明を取らずに生成するのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.Input == "" {
		return fmt.Errorf("元画像（--input）を指定してほしいのだ")
	}
	formats, err := domain.ParseFormats(opts.Formats)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := builder.BuildAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	src, err := app.Loader.Load(ctx, app.Options.Input)
	if err != nil {
		return fmt.Errorf("元画像の読み込みに失敗したのだ: %w", err)
	}

	session, err := app.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()
	session.SetSource(*src)

	switch {
	case app.Options.Context != "":
		session.SetDescription(app.Options.Context)
	case !app.Options.NoDescribe:
		session.Describe(ctx)
	}

	slog.Info("アウトペイント生成を開始するのだ！",
		"input", app.Options.Input,
		"formats", formats,
		"image_model", cfg.GeminiImageModel,
		"has_context", session.Description() != "")

	outcome, err := session.Generate(ctx, formats)
	if err != nil {
		return fmt.Errorf("生成中にエラーが発生したのだ: %w", err)
	}

	paths, err := app.Publisher.Publish(ctx, app.Options.OutputDir, outcome.Results)
	if err != nil {
		return err
	}

	if outcome.Partial {
		slog.Warn("一部のフォーマットは生成できなかったのだ", "failed_formats", outcome.FailedFormats(), "saved", len(paths))
		if len(outcome.Results) == 0 {
			return fmt.Errorf("全てのフォーマットの生成に失敗したのだ: %w", outcome.Err())
		}
		return nil
	}

	slog.Info("すべての生成が完了したのだ！", "saved", len(paths), "output_dir", app.Options.OutputDir)
	return nil
}
