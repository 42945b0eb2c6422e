package handlers

import (
	"net/http"

	"github.com/thu-HZML/SmartPaste-sub000/models"
	"github.com/thu-HZML/SmartPaste-sub000/services"
	"github.com/thu-HZML/SmartPaste-sub000/utils"

	"github.com/gin-gonic/gin"
)

type MergeEncryptedRequest struct {
	Passphrase string `json:"passphrase" binding:"required"`
	Salt       string `json:"salt" binding:"required"`
	Payload    string `json:"payload" binding:"required"`
}

type ExportEncryptedRequest struct {
	Passphrase string `json:"passphrase" binding:"required"`
}

func ExportSnapshot(c *gin.Context) {
	snapshot, err := getServices().Sync.Export(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, snapshot)
}

func MergeSnapshot(c *gin.Context) {
	var snapshot models.SyncSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	stats, err := getServices().Sync.Merge(c.Request.Context(), snapshot)
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "合并完成", stats)
}

func ExportEncryptedSnapshot(c *gin.Context) {
	var req ExportEncryptedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	enc, err := getServices().Sync.ExportEncrypted(c.Request.Context(), req.Passphrase)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, enc)
}

func MergeEncryptedSnapshot(c *gin.Context) {
	var req MergeEncryptedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	stats, err := getServices().Sync.MergeEncrypted(c.Request.Context(), req.Passphrase, services.EncryptedSnapshot{
		Salt:    req.Salt,
		Payload: req.Payload,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "合并完成", stats)
}
