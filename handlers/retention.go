package handlers

import (
	"github.com/thu-HZML/SmartPaste-sub000/utils"

	"github.com/gin-gonic/gin"
)

// TriggerCleanup runs the retention policies immediately instead of
// waiting for the worker's next tick.
func TriggerCleanup(c *gin.Context) {
	removed, err := getServices().Retention.RunCleanup(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "清理完成", gin.H{"removed": removed})
}
