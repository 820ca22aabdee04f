package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/outpaint-kit/internal/config"
)

var (
	opts    config.GenerateOptions
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "outpaint-kit",
	Short: "一枚の画像から複数のアスペクト比の画像をアウトペイントで作るのだ。",
	Long: `元画像を各アスペクト比のキャンバスに収め、余白を Gemini に描き足させるのだ。
生成した結果は、ブラシで印を付けたオーバーレイと指示で部分的に編集できるのだよ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、全サブコマンドに共通するフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "デバッグログを出すのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "生成画像の保存先ディレクトリ（ローカル or gs://...）なのだ。")
}

// preRunAppE は、ロガーを設定して必須の環境変数を確認するのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// loadConfig は環境変数の設定にフラグの値を重ねて検証するのだ。
func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	cfg.Options = opts
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(generateCmd, editCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
