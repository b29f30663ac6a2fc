package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maikostudios/SustentaM-sub001/internal/certificate"
	"github.com/maikostudios/SustentaM-sub001/internal/dto"
	"github.com/maikostudios/SustentaM-sub001/internal/service"
	"github.com/maikostudios/SustentaM-sub001/pkg/response"
)

// CertificateHandler 证书模块 HTTP 处理器
type CertificateHandler struct {
	certSvc service.CertificateService
}

// NewCertificateHandler 创建 CertificateHandler
func NewCertificateHandler(certSvc service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certSvc: certSvc}
}

// ListTemplates 内置证书模板
// GET /api/v1/certificates/templates
func (h *CertificateHandler) ListTemplates(c *gin.Context) {
	response.OK(c, gin.H{"list": h.certSvc.Templates()})
}

// Download 下载单个学员的证书 PDF
// GET /api/v1/participants/:id/certificate?template=classic
func (h *CertificateHandler) Download(c *gin.Context) {
	var req dto.CertificateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	file, err := h.certSvc.RenderOne(c.Request.Context(), c.Param("id"), req.Template, caller)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.FileName, file.Data)
}

// DownloadBatch 下载课程已通过学员的证书压缩包
// GET /api/v1/courses/:id/certificates?template=classic&session_id=xxx
func (h *CertificateHandler) DownloadBatch(c *gin.Context) {
	var req dto.BatchCertificateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.certSvc.RenderBatch(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	// 被跳过的学员数通过响应头告知前端
	c.Header("X-Certificates-Generated", strconv.Itoa(len(result.Entries)))
	c.Header("X-Certificates-Skipped", strconv.Itoa(len(result.Skipped)))
	response.Attachment(c, "application/zip", result.FileName, result.Archive)
}

func (h *CertificateHandler) handleCertificateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, "场次不存在")
	case errors.Is(err, service.ErrParticipantNotFound):
		response.NotFound(c, 15001, "学员不存在")
	case errors.Is(err, service.ErrCompanyForbidden):
		response.Forbidden(c, 15005, "只能管理本公司的学员")
	case errors.Is(err, service.ErrParticipantNotApproved):
		response.UnprocessableEntity(c, 16001, "学员尚未通过，不能生成证书")
	case errors.Is(err, certificate.ErrNoApprovedParticipants):
		response.UnprocessableEntity(c, 16002, "没有已通过的学员")
	case errors.Is(err, certificate.ErrNothingRendered):
		response.UnprocessableEntity(c, 16005, "所有证书均生成失败")
	case errors.Is(err, certificate.ErrIncompleteInput):
		response.UnprocessableEntity(c, 16006, "证书信息不完整")
	case errors.Is(err, certificate.ErrInvalidTemplate):
		response.UnprocessableEntity(c, 16007, "证书模板参数无效")
	case errors.Is(err, certificate.ErrUnknownTemplate):
		response.BadRequest(c, 16003, "证书模板不存在")
	case errors.Is(err, service.ErrSessionNotInCourse):
		response.BadRequest(c, 16004, "场次不属于该课程")
	default:
		response.InternalError(c)
	}
}
