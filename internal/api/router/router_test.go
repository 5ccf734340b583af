package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"shelter-caller/config"
	"shelter-caller/internal/api/handler"
	"shelter-caller/internal/authz"
	"shelter-caller/internal/model"
	"shelter-caller/internal/service"
	"shelter-caller/pkg/jwt"
)

func setupRouter(t *testing.T) (http.Handler, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "router-test-secret-32-bytes-long!!", AccessTokenTTL: time.Hour},
	}
	cfg.Server.CORS.AllowOrigins = []string{"*"}

	authorizer, err := authz.NewAuthorizer()
	if err != nil {
		t.Fatalf("NewAuthorizer 失败: %v", err)
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	// 受保护路由在中间件层即被拦截，不会触达 service
	h := handler.NewHandler(&service.Service{})
	return Setup(cfg, h, jwtMgr, nil, authorizer, zap.NewNop()), jwtMgr
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := setupRouter(t)

	if w := do(r, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("/health 期望 200，实际=%d", w.Code)
	}
	w := do(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics 期望 200，实际=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("/metrics 应输出 Prometheus 指标")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := setupRouter(t)

	for _, path := range []string{"/api/shelters/", "/api/counts/2019-05-21", "/api/prefs/", "/api/logs/1/"} {
		if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s 未认证期望 401，实际=%d", path, w.Code)
		}
	}
}

func TestCapabilityGate(t *testing.T) {
	r, jwtMgr := setupRouter(t)
	token, err := jwtMgr.GenerateAccessToken(2, "viewer", []string{model.RoleVisitor})
	if err != nil {
		t.Fatalf("签发 token 失败: %v", err)
	}

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/setcount/"},
		{http.MethodGet, "/api/shelters/"},
		{http.MethodGet, "/api/logs/1/"},
		{http.MethodPost, "/api/prefs/set/"},
		{http.MethodGet, "/api/export/counts"},
	}
	for _, tc := range cases {
		if w := do(r, tc.method, tc.path, token); w.Code != http.StatusForbidden {
			t.Errorf("visitor %s %s 期望 403，实际=%d", tc.method, tc.path, w.Code)
		}
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	r, _ := setupRouter(t)
	w := do(r, http.MethodGet, "/health", "")

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("应设置 X-Content-Type-Options")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("应设置 X-Request-ID")
	}
}
