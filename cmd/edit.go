package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/outpaint-kit/internal/builder"
	"github.com/shouni/outpaint-kit/pkg/domain"
	"github.com/shouni/outpaint-kit/pkg/outpaint"
)

// editCmd は、生成済みの画像をオーバーレイと指示で一回だけ編集するのだ。
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "ブラシで印を付けたオーバーレイ画像を指示どおりに編集するのだ。",
	Long: `印を付けたオーバーレイ画像（--overlay）と指示（--instruction）を Gemini に渡し、
印の部分だけを描き直した画像を保存するのだ。`,
	RunE: editCommand,
}

func init() {
	editCmd.Flags().StringVar(&opts.Overlay, "overlay", "", "印を付けたオーバーレイ画像のパスまたはURLなのだ。")
	editCmd.Flags().StringVar(&opts.Format, "format", "1:1", "編集する画像のフォーマットなのだ。")
	editCmd.Flags().StringVar(&opts.Instruction, "instruction", "", "編集の指示なのだ。")
	editCmd.Flags().StringVar(&opts.OutputFile, "output-file", "", "保存するファイル名なのだ。省略時はフォーマットから決めるのだ。")
}

func editCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.Overlay == "" || opts.Instruction == "" {
		return fmt.Errorf("オーバーレイ（--overlay）と指示（--instruction）を指定してほしいのだ")
	}
	format, err := domain.ParseFormat(opts.Format)
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

	overlay, err := app.Loader.Load(ctx, app.Options.Overlay)
	if err != nil {
		return fmt.Errorf("オーバーレイ画像の読み込みに失敗したのだ: %w", err)
	}

	target := domain.GeneratedResult{ID: format.Slug() + "-edit", Format: format}
	imageData, err := app.Coordinator.ApplyEdit(ctx, outpaint.EditRequest{
		Target:         target,
		OverlayDataURI: overlay.DataURI,
		Instruction:    app.Options.Instruction,
	})
	if err != nil {
		return fmt.Errorf("編集に失敗したのだ: %w", err)
	}
	target.ImageData = imageData
	target.Version = 1

	fileName := app.Options.OutputFile
	if fileName == "" {
		fileName = format.FileName()
	}
	path, err := app.Publisher.PublishOne(ctx, app.Options.OutputDir, fileName, target)
	if err != nil {
		return err
	}

	slog.Info("編集した画像を保存したのだ！", "path", path, "format", format)
	return nil
}
