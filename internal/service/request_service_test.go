package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/danoseun/iceman-backend/internal/dto"
	"github.com/danoseun/iceman-backend/internal/model"
)

func setupTestRequestService(t *testing.T) (RequestService, *testRepos, *NotificationDispatcher) {
	t.Helper()
	repo, mocks := newTestRepos()
	dispatcher, _, _ := newTestDispatcher(repo)
	svc := NewRequestService(repo, NewAuthorizer(repo), dispatcher, zap.NewNop())
	return svc, mocks, dispatcher
}

func oneWayRequest(travelDate string) *dto.CreateRequestRequest {
	return &dto.CreateRequestRequest{
		Source:      "上海",
		Destination: []string{"北京"},
		TravelDate:  travelDate,
		TripType:    model.TripOneWay,
		Reason:      "客户现场支持",
	}
}

func TestCreateOneWay_Success(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	resp, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("CreateOneWay 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.StatusOpen {
		t.Errorf("新建申请状态期望 open，实际: %s", resp.Status)
	}
	if resp.TravelDate != "2026-09-10" {
		t.Errorf("出行日期期望 2026-09-10，实际: %s", resp.TravelDate)
	}
	if resp.ReturnDate != nil {
		t.Errorf("单程申请不应有返程日期，实际: %v", *resp.ReturnDate)
	}
}

func TestCreateOneWay_DropsReturnDate(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	req := oneWayRequest("2026-09-10")
	rd := "2026-09-15"
	req.ReturnDate = &rd

	resp, err := svc.CreateOneWay(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("CreateOneWay 应成功，但返回错误: %v", err)
	}
	if resp.ReturnDate != nil {
		t.Errorf("单程申请的返程日期应被丢弃，实际: %v", *resp.ReturnDate)
	}
}

func TestCreateOneWay_TripTypeMismatch(t *testing.T) {
	svc, _, _ := setupTestRequestService(t)

	req := oneWayRequest("2026-09-10")
	req.TripType = model.TripMultiCity

	if _, err := svc.CreateOneWay(context.Background(), "user-1", req); !errors.Is(err, ErrTripTypeMismatch) {
		t.Errorf("期望 ErrTripTypeMismatch，实际: %v", err)
	}
}

func TestCreate_DuplicateTravelDate(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	if _, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10")); err != nil {
		t.Fatalf("首次创建应成功: %v", err)
	}
	if _, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10")); !errors.Is(err, ErrDuplicateTravelDate) {
		t.Errorf("同一出行日期重复创建，期望 ErrDuplicateTravelDate，实际: %v", err)
	}
}

func TestCreateMultiCity_DestinationTooFew(t *testing.T) {
	svc, _, _ := setupTestRequestService(t)

	req := &dto.CreateRequestRequest{
		Source:      "上海",
		Destination: []string{"北京"},
		TravelDate:  "2026-09-10",
		TripType:    model.TripMultiCity,
	}
	if _, err := svc.CreateMultiCity(context.Background(), "user-1", req); !errors.Is(err, ErrDestinationTooFew) {
		t.Errorf("期望 ErrDestinationTooFew，实际: %v", err)
	}
}

func TestCreateMultiCity_Success(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	req := &dto.CreateRequestRequest{
		Source:      "上海",
		Destination: []string{"北京", "深圳", "成都"},
		TravelDate:  "2026-09-10",
		TripType:    model.TripMultiCity,
	}
	resp, err := svc.CreateMultiCity(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("CreateMultiCity 应成功，但返回错误: %v", err)
	}
	if len(resp.Destination) != 3 {
		t.Errorf("目的地数量期望 3，实际: %d", len(resp.Destination))
	}
}

func TestCreate_NotifiesManagers(t *testing.T) {
	svc, mocks, dispatcher := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")
	seedUser(t, mocks.user, "mgr-1", "mgr@example.com", model.RoleManager, "password123")
	seedManagedDept(t, mocks.dept, "dept-eng", "mgr-1", "user-1")

	dispatcher.Start()
	if _, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10")); err != nil {
		t.Fatalf("CreateOneWay 应成功: %v", err)
	}
	dispatcher.Close()

	ns, err := mocks.notification.ListByReceiver(ctx, "mgr-1")
	if err != nil {
		t.Fatalf("查询经理通知失败: %v", err)
	}
	if len(ns) != 1 {
		t.Fatalf("经理应收到 1 条通知，实际: %d", len(ns))
	}
	if ns[0].Type != model.EventRequestCreated {
		t.Errorf("通知类型期望 %s，实际: %s", model.EventRequestCreated, ns[0].Type)
	}
}

func TestUpdate_Success(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	created, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	newReason := "行程变更"
	resp, err := svc.Update(ctx, "user-1", created.ID, &dto.UpdateRequestRequest{Reason: &newReason})
	if err != nil {
		t.Fatalf("Update 应成功，但返回错误: %v", err)
	}
	if resp.Reason != newReason {
		t.Errorf("事由期望 %q，实际: %q", newReason, resp.Reason)
	}
}

func TestUpdate_NotOwner(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")
	seedUser(t, mocks.user, "user-2", "bob@example.com", model.RoleRequester, "password123")

	created, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	src := "广州"
	if _, err := svc.Update(ctx, "user-2", created.ID, &dto.UpdateRequestRequest{Source: &src}); !errors.Is(err, ErrNotRequestOwner) {
		t.Errorf("期望 ErrNotRequestOwner，实际: %v", err)
	}
}

func TestUpdate_NotOpen(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	created, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}
	if _, err := mocks.request.UpdateStatusFrom(ctx, created.ID, []string{model.StatusOpen}, model.StatusRejected); err != nil {
		t.Fatalf("预置已驳回状态失败: %v", err)
	}

	src := "广州"
	_, err = svc.Update(ctx, "user-1", created.ID, &dto.UpdateRequestRequest{Source: &src})
	if !errors.Is(err, ErrRequestNotOpen) {
		t.Fatalf("期望 ErrRequestNotOpen，实际: %v", err)
	}
	if !strings.Contains(err.Error(), model.StatusRejected) {
		t.Errorf("错误信息应包含当前状态 %s，实际: %s", model.StatusRejected, err.Error())
	}
}

func TestUpdate_ReturnTripRequiresReturnDate(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	created, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	tripType := model.TripReturn
	if _, err := svc.Update(ctx, "user-1", created.ID, &dto.UpdateRequestRequest{TripType: &tripType}); !errors.Is(err, ErrReturnDateRequired) {
		t.Errorf("改为往返但未填返程日期，期望 ErrReturnDateRequired，实际: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := setupTestRequestService(t)

	src := "广州"
	if _, err := svc.Update(context.Background(), "user-1", "missing", &dto.UpdateRequestRequest{Source: &src}); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("期望 ErrRequestNotFound，实际: %v", err)
	}
}

func TestApprove_Success(t *testing.T) {
	svc, mocks, dispatcher := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")
	seedUser(t, mocks.user, "mgr-1", "mgr@example.com", model.RoleManager, "password123")
	seedManagedDept(t, mocks.dept, "dept-eng", "mgr-1", "user-1")

	created, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	dispatcher.Start()
	resp, err := svc.Approve(ctx, "mgr-1", created.ID)
	if err != nil {
		t.Fatalf("Approve 应成功，但返回错误: %v", err)
	}
	dispatcher.Close()

	if resp.Status != model.StatusApproved {
		t.Errorf("审批后状态期望 approved，实际: %s", resp.Status)
	}

	// 审批结果通知申请人
	ns, _ := mocks.notification.ListByReceiver(ctx, "user-1")
	if len(ns) != 1 || ns[0].Type != model.EventRequestApproved {
		t.Errorf("申请人应收到 1 条批准通知，实际: %+v", ns)
	}
}

func TestApprove_NotAuthorizedManager(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")
	seedUser(t, mocks.user, "mgr-2", "other@example.com", model.RoleManager, "password123")

	created, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	// mgr-2 不管辖 user-1 所在的任何部门
	if _, err := svc.Approve(ctx, "mgr-2", created.ID); !errors.Is(err, ErrNotAuthorizedManager) {
		t.Errorf("期望 ErrNotAuthorizedManager，实际: %v", err)
	}
}

func TestReject_ThenApprove_Conflict(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")
	seedUser(t, mocks.user, "mgr-1", "mgr@example.com", model.RoleManager, "password123")
	seedManagedDept(t, mocks.dept, "dept-eng", "mgr-1", "user-1")

	created, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	if _, err := svc.Reject(ctx, "mgr-1", created.ID); err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}

	// 终态申请二次审批报冲突，并带出实际状态
	_, err = svc.Approve(ctx, "mgr-1", created.ID)
	if !errors.Is(err, ErrRequestNotOpen) {
		t.Fatalf("期望 ErrRequestNotOpen，实际: %v", err)
	}
	if !strings.Contains(err.Error(), model.StatusRejected) {
		t.Errorf("错误信息应包含当前状态 rejected，实际: %s", err.Error())
	}
}

func TestListForUser_EmptyIsNotError(t *testing.T) {
	svc, _, _ := setupTestRequestService(t)

	list, err := svc.ListForUser(context.Background(), "user-nobody")
	if err != nil {
		t.Fatalf("ListForUser 应成功，但返回错误: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("无记录时应返回空列表，实际: %v", list)
	}
}

func TestListOpenForManager_OnlyManagedAndOpen(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")
	seedUser(t, mocks.user, "user-2", "bob@example.com", model.RoleRequester, "password123")
	seedUser(t, mocks.user, "mgr-1", "mgr@example.com", model.RoleManager, "password123")
	seedManagedDept(t, mocks.dept, "dept-eng", "mgr-1", "user-1")

	// user-1 受管辖：一条 open、一条已驳回；user-2 不受管辖
	created, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}
	rejected, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-20"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}
	if _, err := mocks.request.UpdateStatusFrom(ctx, rejected.ID, []string{model.StatusOpen}, model.StatusRejected); err != nil {
		t.Fatalf("预置已驳回状态失败: %v", err)
	}
	if _, err := svc.CreateOneWay(ctx, "user-2", oneWayRequest("2026-09-10")); err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	list, err := svc.ListOpenForManager(ctx, "mgr-1")
	if err != nil {
		t.Fatalf("ListOpenForManager 应成功，但返回错误: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("待审批列表长度期望 1，实际: %d", len(list))
	}
	if list[0].ID != created.ID {
		t.Errorf("待审批申请期望 %s，实际: %s", created.ID, list[0].ID)
	}
	if list[0].Requester == nil || list[0].Requester.FirstName != "测试" {
		t.Errorf("经理视角应附带申请人信息，实际: %+v", list[0].Requester)
	}
}

func TestListOpenForManager_MemberOfTwoDeptsAppearsOnce(t *testing.T) {
	svc, mocks, _ := setupTestRequestService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")
	seedUser(t, mocks.user, "mgr-1", "mgr@example.com", model.RoleManager, "password123")
	// user-1 同时隶属同一经理名下的两个部门，申请不得重复出现
	seedManagedDept(t, mocks.dept, "dept-eng", "mgr-1", "user-1")
	seedManagedDept(t, mocks.dept, "dept-ops", "mgr-1", "user-1")

	created, err := svc.CreateOneWay(ctx, "user-1", oneWayRequest("2026-09-10"))
	if err != nil {
		t.Fatalf("创建申请失败: %v", err)
	}

	list, err := svc.ListOpenForManager(ctx, "mgr-1")
	if err != nil {
		t.Fatalf("ListOpenForManager 应成功，但返回错误: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("待审批列表长度期望 1，实际: %d", len(list))
	}
	if list[0].ID != created.ID {
		t.Errorf("待审批申请期望 %s，实际: %s", created.ID, list[0].ID)
	}
}
