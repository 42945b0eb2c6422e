package handlers

import (
	"net/http"

	"github.com/thu-HZML/SmartPaste-sub000/models"
	"github.com/thu-HZML/SmartPaste-sub000/repositories"
	"github.com/thu-HZML/SmartPaste-sub000/utils"

	"github.com/gin-gonic/gin"
)

type InsertItemRequest struct {
	ID         string `json:"id"`
	ItemType   string `json:"item_type" binding:"required,oneof=text image file folder"`
	Content    string `json:"content"`
	Size       *int64 `json:"size"`
	IsFavorite bool   `json:"is_favorite"`
	Notes      string `json:"notes"`
	Timestamp  int64  `json:"timestamp"`
}

type InsertTextRequest struct {
	Content string `json:"content" binding:"required"`
}

type UpdateContentRequest struct {
	Content string `json:"content" binding:"required"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

type SetFavoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

type SearchRequest struct {
	Query   string `json:"query"`
	Kind    string `json:"kind"`
	StartTS *int64 `json:"start_ts"`
	EndTS   *int64 `json:"end_ts"`
}

type ClearRequest struct {
	Kind          string `json:"kind"`
	KeepFavorites bool   `json:"keep_favorites"`
}

type RewritePathRequest struct {
	OldPrefix string `json:"old_prefix" binding:"required"`
	NewPrefix string `json:"new_prefix" binding:"required"`
}

func InsertItem(c *gin.Context) {
	var req InsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	item, err := getServices().Items.Insert(c.Request.Context(), models.ClipboardItem{
		ID:         req.ID,
		ItemType:   req.ItemType,
		Content:    req.Content,
		Size:       req.Size,
		IsFavorite: req.IsFavorite,
		Notes:      req.Notes,
		Timestamp:  req.Timestamp,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, item)
}

func InsertText(c *gin.Context) {
	var req InsertTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	item, err := getServices().Items.InsertText(c.Request.Context(), req.Content)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, item)
}

// ListItems returns the history newest first; ?type= and ?favorite=
// narrow the result.
func ListItems(c *gin.Context) {
	svc := getServices().Items

	if itemType := c.Query("type"); itemType != "" {
		if !models.IsStandardItemType(itemType) {
			utils.Error(c, http.StatusBadRequest, "无效的记录类型")
			return
		}
		items, err := svc.FilterByType(c.Request.Context(), itemType)
		if respondServiceError(c, err) {
			return
		}
		utils.Success(c, items)
		return
	}

	if favorite := c.Query("favorite"); favorite != "" {
		items, err := svc.FilterByFavorite(c.Request.Context(), favorite == "true")
		if respondServiceError(c, err) {
			return
		}
		utils.Success(c, items)
		return
	}

	items, err := svc.List(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, items)
}

func GetLatestItem(c *gin.Context) {
	item, err := getServices().Items.Latest(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, item)
}

func GetItem(c *gin.Context) {
	item, err := getServices().Items.Get(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, item)
}

func DeleteItem(c *gin.Context) {
	rows, err := getServices().Items.Delete(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "记录已删除", gin.H{"deleted": rows})
}

func UpdateItemContent(c *gin.Context) {
	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	item, err := getServices().Items.UpdateContent(c.Request.Context(), c.Param("id"), req.Content)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, item)
}

func UpdateItemNotes(c *gin.Context) {
	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	item, err := getServices().Items.UpdateNotes(c.Request.Context(), c.Param("id"), req.Notes)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, item)
}

func SetItemFavorite(c *gin.Context) {
	var req SetFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	rows, err := getServices().Items.SetFavorite(c.Request.Context(), c.Param("id"), *req.Favorite)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"updated": rows})
}

func ToggleItemFavorite(c *gin.Context) {
	status, err := getServices().Items.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"status": status})
}

func CountFavorites(c *gin.Context) {
	count, err := getServices().Items.FavoriteCount(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"count": count})
}

func TopItem(c *gin.Context) {
	item, err := getServices().Items.Top(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, item)
}

func SearchItems(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	items, err := getServices().Items.Search(c.Request.Context(), repositories.SearchInput{
		Query:   req.Query,
		Kind:    req.Kind,
		StartTS: req.StartTS,
		EndTS:   req.EndTS,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, items)
}

func ClearItems(c *gin.Context) {
	var req ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	rows, err := getServices().Items.Clear(c.Request.Context(), req.Kind, req.KeepFavorites)
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "批量删除完成", gin.H{"deleted": rows})
}

func RewritePathPrefix(c *gin.Context) {
	var req RewritePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	count, err := getServices().Items.RewritePathPrefix(c.Request.Context(), req.OldPrefix, req.NewPrefix)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"updated": count})
}
