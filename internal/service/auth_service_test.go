package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/danoseun/iceman-backend/config"
	"github.com/danoseun/iceman-backend/internal/dto"
	"github.com/danoseun/iceman-backend/internal/model"
	"github.com/danoseun/iceman-backend/pkg/jwt"
)

func setupTestAuthService(t *testing.T) (AuthService, *testRepos, *mockMailer) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:8080"},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
	repo, mocks := newTestRepos()
	mail := &mockMailer{}
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, mail, zap.NewNop())
	return svc, mocks, mail
}

func signupRequest(email string) *dto.SignupRequest {
	return &dto.SignupRequest{
		FirstName: "三",
		LastName:  "张",
		Email:     email,
		Password:  "password123",
	}
}

func TestSignup_Success(t *testing.T) {
	svc, mocks, _ := setupTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, signupRequest("alice@example.com"))
	if err != nil {
		t.Fatalf("Signup 应成功，但返回错误: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("注册成功应颁发 Token 对")
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("ExpiresIn 期望 900，实际: %d", resp.ExpiresIn)
	}
	if resp.User.Role != model.RoleRequester {
		t.Errorf("新用户角色期望 requester，实际: %s", resp.User.Role)
	}

	u, err := mocks.user.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("注册后应能查到用户: %v", err)
	}
	if !u.EmailNotify {
		t.Error("新用户邮件通知应默认开启")
	}
	if u.IsVerified {
		t.Error("新用户应为未验证状态")
	}
	if u.VerifyToken == nil {
		t.Error("新用户应持有邮箱验证令牌")
	}
	if u.PasswordHash == "password123" {
		t.Error("密码不应明文入库")
	}
}

func TestSignup_EmailTaken(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupRequest("alice@example.com")); err != nil {
		t.Fatalf("首次注册应成功: %v", err)
	}
	if _, err := svc.Signup(ctx, signupRequest("alice@example.com")); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc, mocks, _ := setupTestAuthService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录成功应颁发 Token 对")
	}
	if resp.User.ID != "user-1" {
		t.Errorf("响应用户 ID 期望 user-1，实际: %s", resp.User.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mocks, _ := setupTestAuthService(t)
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未注册邮箱同样报 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestRefreshToken_Success(t *testing.T) {
	svc, mocks, _ := setupTestAuthService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	resp, err := svc.RefreshToken(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功，但返回错误: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("刷新成功应颁发新 Token 对")
	}
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	svc, mocks, _ := setupTestAuthService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	// 用 Access Token 冒充 Refresh Token
	if _, err := svc.RefreshToken(ctx, login.AccessToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestRefreshToken_Garbage(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	if _, err := svc.RefreshToken(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestLogout_NilRedisIsNoop(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	if err := svc.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("Redis 不可用时 Logout 应降级为空操作: %v", err)
	}
}

func TestVerify_Success(t *testing.T) {
	svc, mocks, _ := setupTestAuthService(t)
	ctx := context.Background()

	u := seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "password123")
	token := "verify-token-1"
	u.VerifyToken = &token

	if err := svc.Verify(ctx, token); err != nil {
		t.Fatalf("Verify 应成功，但返回错误: %v", err)
	}

	u, _ = mocks.user.GetByID(ctx, "user-1")
	if !u.IsVerified {
		t.Error("验证后 IsVerified 应为 true")
	}
	if u.VerifyToken != nil {
		t.Error("验证令牌应一次性失效")
	}
}

func TestVerify_InvalidToken(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	if err := svc.Verify(context.Background(), "no-such-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("期望 ErrInvalidToken，实际: %v", err)
	}
}

func TestForgotPassword_UnknownEmailSilent(t *testing.T) {
	svc, _, mail := setupTestAuthService(t)

	// 防账户枚举：未注册邮箱不报错也不发信
	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Errorf("未注册邮箱应静默成功，实际: %v", err)
	}
	if mail.sentCount() != 0 {
		t.Errorf("未注册邮箱不应发信，实际发送: %d", mail.sentCount())
	}
}

func TestResetPassword_Flow(t *testing.T) {
	svc, mocks, _ := setupTestAuthService(t)
	ctx := context.Background()
	seedUser(t, mocks.user, "user-1", "alice@example.com", model.RoleRequester, "old-password")

	if err := svc.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword 应成功: %v", err)
	}

	u, _ := mocks.user.GetByID(ctx, "user-1")
	if u.ResetToken == nil {
		t.Fatal("ForgotPassword 后应写入重置令牌")
	}

	if err := svc.ResetPassword(ctx, *u.ResetToken, "new-password"); err != nil {
		t.Fatalf("ResetPassword 应成功，但返回错误: %v", err)
	}

	u, _ = mocks.user.GetByID(ctx, "user-1")
	if u.ResetToken != nil {
		t.Error("重置令牌应一次性失效")
	}

	// 旧密码失效，新密码可登录
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "old-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效，实际: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "new-password"}); err != nil {
		t.Errorf("新密码应可登录: %v", err)
	}
}

func TestResetPassword_InvalidToken(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	if err := svc.ResetPassword(context.Background(), "no-such-token", "new-password"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("期望 ErrInvalidToken，实际: %v", err)
	}
}
