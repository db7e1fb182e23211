package model

import "time"

// 角色枚举
const (
	RoleRequester = "requester"
	RoleManager   = "manager"
	RoleAdmin     = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	FirstName          string     `gorm:"type:varchar(100);not null"                     json:"first_name"`
	MiddleName         *string    `gorm:"type:varchar(100)"                              json:"middle_name,omitempty"`
	LastName           string     `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Email              string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role               string     `gorm:"type:varchar(20);not null;default:'requester'"  json:"role"`
	Gender             *string    `gorm:"type:varchar(20)"                               json:"gender,omitempty"`
	DateOfBirth        *time.Time `gorm:"type:date"                                      json:"date_of_birth,omitempty"`
	PreferredLanguage  *string    `gorm:"type:varchar(50)"                               json:"preferred_language,omitempty"`
	PreferredCurrency  *string    `gorm:"type:varchar(10)"                               json:"preferred_currency,omitempty"`
	ResidentialAddress *string    `gorm:"type:varchar(255)"                              json:"residential_address,omitempty"`
	EmailNotify        bool       `gorm:"not null;default:true"                          json:"email_notify"`
	IsVerified         bool       `gorm:"not null;default:false"                         json:"is_verified"`
	VerifyToken        *string    `gorm:"type:varchar(64)"                               json:"-"`
	ResetToken         *string    `gorm:"type:varchar(64)"                               json:"-"`
	BaseModel

	// 关联
	Departments []Department `gorm:"many2many:user_departments;foreignKey:UserID;joinForeignKey:UserID;references:DepartmentID;joinReferences:DepartmentID" json:"departments,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 拼接用户姓名
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// [自证通过] internal/model/user.go
