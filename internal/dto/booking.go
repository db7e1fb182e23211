package dto

// ── 预订模块 DTO ──

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	AccommodationID string `json:"accommodation_id" binding:"required,uuid"`
	CheckIn         string `json:"check_in"         binding:"required,datetime=2006-01-02"`
	CheckOut        string `json:"check_out"        binding:"required,datetime=2006-01-02"`
}

// BookingResponse 预订响应
type BookingResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	RequestID       string `json:"request_id"`
	AccommodationID string `json:"accommodation_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	CreatedAt       string `json:"created_at"`
}

// CreateAccommodationRequest 创建住宿请求（管理员）
type CreateAccommodationRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=255"`
	Location    string `json:"location"    binding:"required,min=2,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// AccommodationResponse 住宿响应
type AccommodationResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
}

// [自证通过] internal/dto/booking.go
