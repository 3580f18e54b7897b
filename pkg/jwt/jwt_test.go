package jwt

import (
	"errors"
	"testing"
	"time"

	"bookwise/backend/config"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-at-least-16-chars",
		AccessTokenTTL: ttl,
	})
}

func TestManager_GenerateAndParse(t *testing.T) {
	mgr := newTestManager(time.Hour)

	token, err := mgr.GenerateAccessToken("admin", "admin")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("期望Username=admin，实际=%s", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("期望Role=admin，实际=%s", claims.Role)
	}
	if claims.ID == "" {
		t.Error("期望 jti 非空")
	}
}

func TestManager_ParseExpired(t *testing.T) {
	mgr := newTestManager(-time.Minute) // 签发即过期

	token, err := mgr.GenerateAccessToken("admin", "admin")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	_, err = mgr.ParseToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestManager_ParseWrongSecret(t *testing.T) {
	mgr := newTestManager(time.Hour)
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-16-chars-min",
		AccessTokenTTL: time.Hour,
	})

	token, err := mgr.GenerateAccessToken("admin", "admin")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	_, err = other.ParseToken(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestManager_ParseGarbage(t *testing.T) {
	mgr := newTestManager(time.Hour)

	_, err := mgr.ParseToken("not-a-jwt")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
