package handlers

import (
	"net/http"

	"github.com/thu-HZML/SmartPaste-sub000/utils"

	"github.com/gin-gonic/gin"
)

type RunFilterRequest struct {
	// ToAdd marks matching items when true, unmarks them when false.
	ToAdd *bool `json:"to_add" binding:"required"`
}

func MarkItemPrivate(c *gin.Context) {
	if err := getServices().Privacy.Mark(c.Request.Context(), c.Param("id")); respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "已标记为隐私记录", nil)
}

func UnmarkItemPrivate(c *gin.Context) {
	if err := getServices().Privacy.Unmark(c.Request.Context(), c.Param("id")); respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "已取消隐私标记", nil)
}

func IsItemPrivate(c *gin.Context) {
	marked, err := getServices().Privacy.IsMarked(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"marked": marked})
}

func ListPrivateItems(c *gin.Context) {
	items, err := getServices().Privacy.ListMarked(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, items)
}

func ClearPrivateMarks(c *gin.Context) {
	rows, err := getServices().Privacy.ClearAll(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "隐私标记已清空", gin.H{"cleared": rows})
}

func runFilterHandler(c *gin.Context, run func(toAdd bool) (int64, error)) {
	var req RunFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	count, err := run(*req.ToAdd)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"matched": count})
}

func FilterPasswords(c *gin.Context) {
	runFilterHandler(c, func(toAdd bool) (int64, error) {
		return getServices().Privacy.FilterPasswords(c.Request.Context(), toAdd)
	})
}

func FilterBankCards(c *gin.Context) {
	runFilterHandler(c, func(toAdd bool) (int64, error) {
		return getServices().Privacy.FilterBankCards(c.Request.Context(), toAdd)
	})
}

func FilterIDNumbers(c *gin.Context) {
	runFilterHandler(c, func(toAdd bool) (int64, error) {
		return getServices().Privacy.FilterIDNumbers(c.Request.Context(), toAdd)
	})
}

func FilterPhoneNumbers(c *gin.Context) {
	runFilterHandler(c, func(toAdd bool) (int64, error) {
		return getServices().Privacy.FilterPhoneNumbers(c.Request.Context(), toAdd)
	})
}

func AutoMarkPrivacy(c *gin.Context) {
	count, err := getServices().Privacy.AutoMark(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"marked": count})
}

func CheckAndMarkItem(c *gin.Context) {
	marked, err := getServices().Privacy.CheckAndMarkSingleItem(c.Request.Context(), c.Param("id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"marked": marked})
}
