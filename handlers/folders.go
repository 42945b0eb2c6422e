package handlers

import (
	"net/http"

	"github.com/thu-HZML/SmartPaste-sub000/utils"

	"github.com/gin-gonic/gin"
)

type CreateFolderRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type RenameFolderRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type FolderMemberRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

func CreateFolder(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	folder, err := getServices().Folders.Create(c.Request.Context(), req.Name)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func ListFolders(c *gin.Context) {
	folders, err := getServices().Folders.List(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folders)
}

func GetFolder(c *gin.Context) {
	folder, err := getServices().Folders.Get(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func RenameFolder(c *gin.Context) {
	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	folder, err := getServices().Folders.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func DeleteFolder(c *gin.Context) {
	rows, err := getServices().Folders.Delete(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "收藏夹已删除", gin.H{"deleted": rows})
}

func AddFolderItem(c *gin.Context) {
	var req FolderMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	added, err := getServices().Folders.AddItem(c.Request.Context(), c.Param("id"), req.ItemID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"added": added})
}

func RemoveFolderItem(c *gin.Context) {
	removed, err := getServices().Folders.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("item_id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"removed": removed})
}

// ListFolderItems looks the folder up by name, matching how the UI
// addresses folders.
func ListFolderItems(c *gin.Context) {
	items, err := getServices().Folders.ListItems(c.Request.Context(), c.Param("name"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, items)
}

func ListFoldersByItem(c *gin.Context) {
	folders, err := getServices().Folders.ListByItem(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folders)
}

func CountFolderItems(c *gin.Context) {
	count, err := getServices().Folders.CountItems(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"count": count})
}
