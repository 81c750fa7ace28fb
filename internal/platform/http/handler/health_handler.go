// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Check は依存先（DB、Redis、Mongo）の疎通を確認する関数です。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler は /healthz を処理します。
type HealthHandler struct {
	checks  []Check
	timeout time.Duration
}

// NewHealthHandler はHealthHandlerを生成します。checksが空なら常に200を返します。
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// 依存先が1つでも応答しなければ503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	failed := h.failedChecks(c.Request.Context())
	status := http.StatusOK
	if len(failed) > 0 {
		status = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	if len(failed) > 0 {
		c.JSON(status, gin.H{"status": "unavailable", "failed": failed})
		return
	}
	c.JSON(status, gin.H{"status": "ok"})
}

func (h *HealthHandler) failedChecks(parent context.Context) []string {
	var failed []string
	for _, chk := range h.checks {
		ctx, cancel := context.WithTimeout(parent, h.timeout)
		err := chk.Ping(ctx)
		cancel()
		if err != nil {
			zap.L().Warn("health check failed", zap.String("check", chk.Name), zap.Error(err))
			failed = append(failed, chk.Name)
		}
	}
	return failed
}
