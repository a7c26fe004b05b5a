package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	pkgerrors "timeface/pkg/errors"
	"timeface/pkg/response"
)

// respondDomainError 按错误分类输出响应，模块错误码 = base + 分类偏移
//
//	NotFound → 404 (base+404)
//	Conflict → 409 (base+409)
//	Blocked  → 423 (base+423)，跨日未关闭时附带入场详情
//	Invalid  → 400 (base+400)
func respondDomainError(c *gin.Context, base int, err error) {
	if so, ok := pkgerrors.AsStaleOpen(err); ok {
		response.Locked(c, base+423, so.Error(), dto.StaleOpenDetails{
			CollaboratorID: so.CollaboratorID,
			EntryID:        so.EntryID,
			EntryAt:        dto.FormatTime(so.EntryAt),
			StaleDate:      so.StaleDate,
		})
		return
	}

	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, base+404, err.Error())
	case errors.Is(err, pkgerrors.ErrConflict):
		response.Conflict(c, base+409, err.Error())
	case errors.Is(err, pkgerrors.ErrBlocked):
		response.Locked(c, base+423, err.Error(), nil)
	case errors.Is(err, pkgerrors.ErrInvalid):
		response.BadRequest(c, base+400, err.Error())
	default:
		response.InternalError(c)
	}
}

// sendXLSX 以附件形式下发 Excel
func sendXLSX(c *gin.Context, filename string, data []byte) {
	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

// sendICS 以附件形式返回 iCalendar 文件
func sendICS(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}
