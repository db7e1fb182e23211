package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/danoseun/iceman-backend/config"
	"github.com/danoseun/iceman-backend/internal/model"
	"github.com/danoseun/iceman-backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByVerifyToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range m.users {
		if u.VerifyToken != nil && *u.VerifyToken == token {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByResetToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) UpdateEmailNotify(_ context.Context, id string, enabled bool) (int64, error) {
	u, ok := m.users[id]
	if !ok {
		return 0, nil
	}
	u.EmailNotify = enabled
	return 1, nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	departments map[string]*model.Department
	members     map[string]map[string]bool // deptID → userID 集合
	users       *mockUserRepo              // 解析经理用户
}

func newMockDeptRepo(users *mockUserRepo) *mockDeptRepo {
	return &mockDeptRepo{
		departments: make(map[string]*model.Department),
		members:     make(map[string]map[string]bool),
		users:       users,
	}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	for _, d := range m.departments {
		if d.Name == dept.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDeptRepo) AssignManager(_ context.Context, departmentID, managerID string) error {
	d, ok := m.departments[departmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.ManagerID = &managerID
	return nil
}

func (m *mockDeptRepo) AddMember(_ context.Context, departmentID, userID string) error {
	if m.members[departmentID] == nil {
		m.members[departmentID] = make(map[string]bool)
	}
	if m.members[departmentID][userID] {
		return gorm.ErrDuplicatedKey
	}
	m.members[departmentID][userID] = true
	return nil
}

func (m *mockDeptRepo) RemoveMember(_ context.Context, departmentID, userID string) (int64, error) {
	if m.members[departmentID] == nil || !m.members[departmentID][userID] {
		return 0, nil
	}
	delete(m.members[departmentID], userID)
	return 1, nil
}

func (m *mockDeptRepo) CountMembers(_ context.Context, departmentID string) (int64, error) {
	return int64(len(m.members[departmentID])), nil
}

func (m *mockDeptRepo) ManagesUser(_ context.Context, managerID, ownerID string) (bool, error) {
	for deptID, members := range m.members {
		if !members[ownerID] {
			continue
		}
		d := m.departments[deptID]
		if d != nil && d.ManagerID != nil && *d.ManagerID == managerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDeptRepo) ListManagersOf(_ context.Context, ownerID string) ([]model.User, error) {
	seen := make(map[string]bool)
	var managers []model.User
	for deptID, members := range m.members {
		if !members[ownerID] {
			continue
		}
		d := m.departments[deptID]
		if d == nil || d.ManagerID == nil || seen[*d.ManagerID] {
			continue
		}
		if u, ok := m.users.users[*d.ManagerID]; ok {
			seen[*d.ManagerID] = true
			managers = append(managers, *u)
		}
	}
	return managers, nil
}

// ── Mock RequestRepository ──

type mockRequestRepo struct {
	requests map[string]*model.Request
	dept     *mockDeptRepo // 解析经理管辖范围
	seq      int
}

func newMockRequestRepo(dept *mockDeptRepo) *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]*model.Request), dept: dept}
}

func (m *mockRequestRepo) Create(_ context.Context, req *model.Request) error {
	for _, r := range m.requests {
		if r.UserID == req.UserID && r.TravelDate.Equal(req.TravelDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	if req.RequestID == "" {
		m.seq++
		req.RequestID = fmt.Sprintf("req-%d", m.seq)
	}
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.Request, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequestRepo) CountByUserAndDate(_ context.Context, userID string, travelDate time.Time) (int64, error) {
	var count int64
	for _, r := range m.requests {
		if r.UserID == userID && r.TravelDate.Equal(travelDate) {
			count++
		}
	}
	return count, nil
}

func (m *mockRequestRepo) ListByUser(_ context.Context, userID string) ([]model.Request, error) {
	var result []model.Request
	for _, r := range m.requests {
		if r.UserID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRequestRepo) ListByUserAndStatuses(_ context.Context, userID string, statuses []string) ([]model.Request, error) {
	allowed := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}
	var result []model.Request
	for _, r := range m.requests {
		if r.UserID == userID && allowed[r.Status] {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRequestRepo) ListOpenByManager(ctx context.Context, managerID string) ([]model.Request, error) {
	var result []model.Request
	for _, r := range m.requests {
		if r.Status != model.StatusOpen {
			continue
		}
		ok, _ := m.dept.ManagesUser(ctx, managerID, r.UserID)
		if !ok {
			continue
		}
		cp := *r
		if u, uok := m.dept.users.users[r.UserID]; uok {
			cp.User = u
		}
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockRequestRepo) ListByManager(ctx context.Context, managerID string) ([]model.Request, error) {
	var result []model.Request
	for _, r := range m.requests {
		ok, _ := m.dept.ManagesUser(ctx, managerID, r.UserID)
		if !ok {
			continue
		}
		cp := *r
		if u, uok := m.dept.users.users[r.UserID]; uok {
			cp.User = u
		}
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockRequestRepo) Update(_ context.Context, req *model.Request) error {
	for id, r := range m.requests {
		if id == req.RequestID {
			continue
		}
		if r.UserID == req.UserID && r.TravelDate.Equal(req.TravelDate) {
			return gorm.ErrDuplicatedKey
		}
	}
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockRequestRepo) UpdateStatusFrom(_ context.Context, id string, from []string, to string) (bool, error) {
	r, ok := m.requests[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if r.Status == f {
			r.Status = to
			return true, nil
		}
	}
	return false, nil
}

// ── Mock BookingRepository ──

type mockBookingRepo struct {
	bookings map[string]*model.Booking
	seq      int
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	for _, b := range m.bookings {
		if b.UserID == booking.UserID && b.RequestID == booking.RequestID {
			return gorm.ErrDuplicatedKey
		}
	}
	if booking.BookingID == "" {
		m.seq++
		booking.BookingID = fmt.Sprintf("booking-%d", m.seq)
	}
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *mockBookingRepo) CountByUserAndRequest(_ context.Context, userID, requestID string) (int64, error) {
	var count int64
	for _, b := range m.bookings {
		if b.UserID == userID && b.RequestID == requestID {
			count++
		}
	}
	return count, nil
}

func (m *mockBookingRepo) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			result = append(result, *b)
		}
	}
	return result, nil
}

// ── Mock AccommodationRepository ──

type mockAccommodationRepo struct {
	accommodations map[string]*model.Accommodation
}

func newMockAccommodationRepo() *mockAccommodationRepo {
	return &mockAccommodationRepo{accommodations: make(map[string]*model.Accommodation)}
}

func (m *mockAccommodationRepo) Create(_ context.Context, acc *model.Accommodation) error {
	if acc.AccommodationID == "" {
		acc.AccommodationID = "acc-" + acc.Name
	}
	m.accommodations[acc.AccommodationID] = acc
	return nil
}

func (m *mockAccommodationRepo) GetByID(_ context.Context, id string) (*model.Accommodation, error) {
	if a, ok := m.accommodations[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccommodationRepo) List(_ context.Context) ([]model.Accommodation, error) {
	var result []model.Accommodation
	for _, a := range m.accommodations {
		result = append(result, *a)
	}
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
	failCreate    bool
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errors.New("mock: 数据库不可用")
	}
	m.seq++
	n.NotificationID = fmt.Sprintf("notif-%d", m.seq)
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepo) ListByReceiver(_ context.Context, receiverID string) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for _, n := range m.notifications {
		if n.ReceiverID == receiverID {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, receiverID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var marked int64
	for _, n := range m.notifications {
		if n.ReceiverID == receiverID && !n.IsRead {
			n.IsRead = true
			marked++
		}
	}
	return marked, nil
}

// ── 测试装配 ──

type testRepos struct {
	user          *mockUserRepo
	dept          *mockDeptRepo
	request       *mockRequestRepo
	booking       *mockBookingRepo
	accommodation *mockAccommodationRepo
	notification  *mockNotificationRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	user := newMockUserRepo()
	dept := newMockDeptRepo(user)
	mocks := &testRepos{
		user:          user,
		dept:          dept,
		request:       newMockRequestRepo(dept),
		booking:       newMockBookingRepo(),
		accommodation: newMockAccommodationRepo(),
		notification:  newMockNotificationRepo(),
	}
	repo := &repository.Repository{
		User:          mocks.user,
		Department:    mocks.dept,
		Request:       mocks.request,
		Booking:       mocks.booking,
		Accommodation: mocks.accommodation,
		Notification:  mocks.notification,
	}
	return repo, mocks
}

// seedUser 预置用户，密码为明文（MinCost 哈希后入库）
func seedUser(t *testing.T, users *mockUserRepo, id, email, role, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成测试密码哈希失败: %v", err)
	}
	u := &model.User{
		UserID:       id,
		FirstName:    "测试",
		LastName:     "用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		EmailNotify:  true,
	}
	users.users[id] = u
	return u
}

// seedManagedDept 预置部门，指派经理并加入成员
func seedManagedDept(t *testing.T, dept *mockDeptRepo, deptID, managerID string, memberIDs ...string) {
	t.Helper()
	ctx := context.Background()
	if err := dept.Create(ctx, &model.Department{DepartmentID: deptID, Name: deptID}); err != nil {
		t.Fatalf("预置部门失败: %v", err)
	}
	if err := dept.AssignManager(ctx, deptID, managerID); err != nil {
		t.Fatalf("指派经理失败: %v", err)
	}
	for _, id := range memberIDs {
		if err := dept.AddMember(ctx, deptID, id); err != nil {
			t.Fatalf("加入部门成员失败: %v", err)
		}
	}
}

func newTestDispatcher(repo *repository.Repository) (*NotificationDispatcher, *mockMailer, *mockPusher) {
	mail := &mockMailer{}
	push := &mockPusher{}
	d := NewNotificationDispatcher(
		&config.NotifyConfig{BufferSize: 16, ChannelPrefix: "notifications"},
		repo, mail, push, zap.NewNop(),
	)
	return d, mail, push
}

// ── Mock 通知通道 ──

type sentMail struct {
	To      string
	Subject string
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *mockMailer) Send(to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("mock: SMTP 连接失败")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

func (m *mockMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockPusher struct {
	mu       sync.Mutex
	channels []string
	fail     bool
}

func (m *mockPusher) Publish(_ context.Context, channel string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("mock: Redis 连接失败")
	}
	m.channels = append(m.channels, channel)
	return nil
}

func (m *mockPusher) publishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels)
}
