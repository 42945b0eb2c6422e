package handlers

import (
	"net/http"

	"github.com/thu-HZML/SmartPaste-sub000/database"
	"github.com/thu-HZML/SmartPaste-sub000/utils"

	"github.com/gin-gonic/gin"
)

var appStore *database.Store

func SetStore(store *database.Store) {
	appStore = store
}

type SwitchDatabaseRequest struct {
	Path string `json:"path" binding:"required"`
}

func GetDatabasePath(c *gin.Context) {
	utils.Success(c, gin.H{"path": appStore.Path()})
}

// SwitchDatabase moves the store to a new sqlite file, typically after
// the user relocates the data directory. Stored relative paths are
// rewritten separately via the path-prefix endpoint.
func SwitchDatabase(c *gin.Context) {
	var req SwitchDatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	if err := appStore.SwitchPath(req.Path); err != nil {
		utils.Error(c, http.StatusInternalServerError, "切换数据库失败: "+err.Error())
		return
	}
	utils.SuccessWithMessage(c, "数据库路径已切换", gin.H{"path": appStore.Path()})
}
