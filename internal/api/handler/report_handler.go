package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timeface/internal/dto"
	"timeface/internal/service"
	"timeface/pkg/response"
)

const codeReport = 26000

// ReportHandler 工时报表 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Hours 工时与加班汇总
// GET /api/v1/reports/hours?from=&to=&collaborator_id=
func (h *ReportHandler) Hours(c *gin.Context) {
	var req dto.HoursReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeReport+1, "参数校验失败")
		return
	}

	report, err := h.reportSvc.Hours(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.OK(c, report)
}

// ExportHours 导出工时报表 Excel
// GET /api/v1/reports/hours/export?from=&to=
func (h *ReportHandler) ExportHours(c *gin.Context) {
	var req dto.HoursReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeReport+1, "参数校验失败")
		return
	}

	buf, filename, err := h.reportSvc.ExportHours(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	sendXLSX(c, filename, buf.Bytes())
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExportGenerateFail) {
		response.InternalError(c)
		return
	}
	respondDomainError(c, codeReport, err)
}
