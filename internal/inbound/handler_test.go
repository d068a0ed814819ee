package inbound

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"replify_backend/platform/logger"
)

type channelConfig struct {
	verifyToken string
}

func (c channelConfig) GetChannelAPIURL() string      { return "https://graph.facebook.com/v19.0" }
func (c channelConfig) GetWebhookVerifyToken() string { return c.verifyToken }

func newVerifyRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, channelConfig{verifyToken: token}, logger.New("test"))
	engine := gin.New()
	engine.GET("/webhook", h.Verify)
	return engine
}

func TestVerify_EchoesChallengeOnMatch(t *testing.T) {
	engine := newVerifyRouter("secret-token")

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "12345" {
		t.Fatalf("expected challenge echo, got %q", rec.Body.String())
	}
}

func TestVerify_RejectsBadToken(t *testing.T) {
	engine := newVerifyRouter("secret-token")

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestVerify_RejectsEmptyConfiguredToken(t *testing.T) {
	engine := newVerifyRouter("")

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("an unset verify token must never verify, got %d", rec.Code)
	}
}

func TestReceive_AlwaysAcknowledges(t *testing.T) {
	gin.SetMode(gin.TestMode)
	processor := newTestProcessor(&fakeBusinesses{}, &fakeConversations{seen: map[string]bool{}}, &fakeResolver{}, &fakeOut{}, nil, true)
	h := NewHandler(processor, channelConfig{verifyToken: "t"}, logger.New("test"))
	engine := gin.New()
	engine.POST("/webhook", h.Receive)

	// malformed body
	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("malformed body must still be acknowledged, got %d", rec.Code)
	}
}
