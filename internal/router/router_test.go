package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/saltybytes-chef/internal/ai"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/service"
	"github.com/windoze95/saltybytes-chef/internal/testutil"
)

const testSecret = "test-secret-key-for-jwt-signing"

func init() {
	gin.SetMode(gin.TestMode)
}

func makeAccessToken(userID uint) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(15 * time.Minute).Unix(),
		"iat":     time.Now().Unix(),
		"type":    "access",
	}
	s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	return s
}

func setupTestRouter(debug bool) *gin.Engine {
	cfg := &config.Config{
		EnvVars: config.EnvVars{
			JwtSecretKey: testSecret,
			Debug:        debug,
			SuggestRate:  1,
			SuggestBurst: 5,
		},
		Suggest: testutil.TestSuggestConfig(),
	}
	gen := &testutil.MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (*ai.RecipeDraft, error) {
			return testutil.TestDraft(), nil
		},
	}
	suggestions := service.NewSuggestionService(cfg.Suggest, nil, &testutil.MockSearcher{}, gen, nil)
	return SetupRouter(cfg, testutil.NewMockChefRepo(), suggestions)
}

func serve(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r := setupTestRouter(false)
	w := serve(r, "GET", "/ping", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Header().Get(logger.RequestIDHeader) == "" {
		t.Error("response should carry a request ID")
	}
}

func TestMetrics(t *testing.T) {
	r := setupTestRouter(false)
	w := serve(r, "GET", "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestChefRoutes_RequireToken(t *testing.T) {
	r := setupTestRouter(false)
	if w := serve(r, "GET", "/v1/chef", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestChefRoutes_SuggestEndToEnd(t *testing.T) {
	r := setupTestRouter(false)
	token := makeAccessToken(7)

	w := serve(r, "POST", "/v1/chef/suggest", token, `{"prompt": "lemon chicken"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Lemon Herb Chicken") {
		t.Errorf("body = %s", w.Body.String())
	}

	w = serve(r, "GET", "/v1/chef", token, "")
	if w.Code != http.StatusOK {
		t.Errorf("GET /v1/chef status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestDiagnostic_DebugOnly(t *testing.T) {
	token := makeAccessToken(7)

	if w := serve(setupTestRouter(false), "GET", "/v1/chef/diagnostic", token, ""); w.Code != http.StatusForbidden {
		t.Errorf("non-debug status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if w := serve(setupTestRouter(true), "GET", "/v1/chef/diagnostic", token, ""); w.Code != http.StatusOK {
		t.Errorf("debug status = %d, want %d", w.Code, http.StatusOK)
	}
}
