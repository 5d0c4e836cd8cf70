package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"go.uber.org/zap"
)

// Notifications installs a per-request notification collector. The
// response envelope reads it back when the handler writes its reply.
func Notifications(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("notify")
	return func(c *gin.Context) {
		collector := notify.NewCollector(log.With(zap.String("request_id", c.GetString("request_id"))))
		c.Request = c.Request.WithContext(notify.WithNotifier(c.Request.Context(), collector))
		c.Next()
	}
}
