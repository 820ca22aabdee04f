package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/outpaint-kit/internal/builder"
	"github.com/shouni/outpaint-kit/internal/server"
)

var requestTimeout time.Duration

// serveCmd は、セッション単位の生成 API を HTTP で提供するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "アウトペイントの HTTP API サーバーを起動するのだ。",
	RunE:  serveCommand,
}

func init() {
	serveCmd.Flags().DurationVar(&requestTimeout, "request-timeout", 5*time.Minute, "一つのリクエストに許す時間なのだ。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := builder.BuildAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := app.NewStore()
	if err != nil {
		return err
	}
	router := server.NewRouter(server.NewHandler(store, app.Loader), requestTimeout)
	return server.Run(ctx, cfg.ListenAddr, router)
}
