package handler

import (
	"net/http"
	"strconv"

	"sheetpos/internal/apierror"
	"sheetpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// DeadLetters lists the most recent failed audit jobs.
// GET /v1/admin/dead-letters?limit=20
func DeadLetters(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
		if err != nil || limit < 1 || limit > 200 {
			c.JSON(http.StatusBadRequest, apierror.New("limit must be between 1 and 200"))
			return
		}
		entries, err := worker.DLQPeek(c.Request.Context(), rdb, worker.QueueAudit, limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		total, err := worker.DLQLength(c.Request.Context(), rdb, worker.QueueAudit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
	}
}
