package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger はリクエストごとに slog でアクセスログを出すのだ。
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if c.Writer.Status() >= 500 {
			slog.ErrorContext(c.Request.Context(), "リクエストが失敗しました", attrs...)
		} else if c.Writer.Status() >= 400 {
			slog.WarnContext(c.Request.Context(), "リクエストが拒否されました", attrs...)
		} else {
			slog.InfoContext(c.Request.Context(), "リクエストを処理しました", attrs...)
		}
	}
}

// Timeout はリクエストのコンテキストに期限を付けるのだ。
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
