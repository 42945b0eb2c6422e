package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/thu-HZML/SmartPaste-sub000/utils"

	"github.com/gin-gonic/gin"
)

type SetOCRTextRequest struct {
	OCRText string `json:"ocr_text"`
}

type GenerateIconRequest struct {
	// ImageData carries base64 image bytes; omit it to read the item's
	// backing file instead.
	ImageData string `json:"image_data"`
}

func SetOCRText(c *gin.Context) {
	var req SetOCRTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	if err := getServices().Extensions.SetOCRText(c.Request.Context(), c.Param("id"), req.OCRText); respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "识别文本已保存", nil)
}

func GetExtension(c *gin.Context) {
	ext, err := getServices().Extensions.Get(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, ext)
}

func SearchByOCR(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.Error(c, http.StatusBadRequest, "搜索内容不能为空")
		return
	}

	items, err := getServices().Extensions.SearchByOCR(c.Request.Context(), query)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, items)
}

func GenerateIcon(c *gin.Context) {
	var req GenerateIconRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	svc := getServices().Icons
	itemID := c.Param("id")

	var icon string
	var err error
	if req.ImageData != "" {
		var data []byte
		data, err = base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "图片数据格式错误")
			return
		}
		icon, err = svc.GenerateFromBytes(c.Request.Context(), itemID, data)
	} else {
		icon, err = svc.GenerateForItem(c.Request.Context(), itemID)
	}
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"icon_data": icon})
}
