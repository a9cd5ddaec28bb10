package handler

import (
	"context"
	"net/http"
	"time"

	"sheetpos/internal/infra"
	"sheetpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Health reports sheets API reachability, circuit breaker state and, when
// configured, Redis connectivity and dead-letter depth. Redis may be nil.
func Health(sheets *infra.SheetsClient, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		sheetsStatus := "connected"
		if _, err := sheets.Health(ctx); err != nil {
			sheetsStatus = "error"
		}

		body := gin.H{
			"sheets":  sheetsStatus,
			"breaker": sheets.Breaker().Snapshot(),
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else if n, err := worker.DLQLength(ctx, rdb, worker.QueueAudit); err == nil {
				body["dead_letters"] = n
			}
		}
		body["redis"] = redisStatus

		status := http.StatusOK
		if sheetsStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK

		c.JSON(status, body)
	}
}
