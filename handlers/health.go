package handlers

import (
	"github.com/thu-HZML/SmartPaste-sub000/utils"

	"github.com/gin-gonic/gin"
)

func HealthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "smartpaste",
	})
}
