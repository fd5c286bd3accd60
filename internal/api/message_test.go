package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rubyruby/relay/internal/middleware"
	"github.com/rubyruby/relay/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMessageRepo struct {
	messages []models.Message
	// lastQuery records what the handler asked for.
	lastUsername string
	lastType     models.TargetType
	lastTarget   string
}

func (f *fakeMessageRepo) Append(ctx context.Context, sender string, targetType models.TargetType, target, text string) (*models.Message, error) {
	panic("not used by the history handler")
}

func (f *fakeMessageRepo) History(ctx context.Context, username string, targetType models.TargetType, target string) ([]models.Message, error) {
	f.lastUsername = username
	f.lastType = targetType
	f.lastTarget = target
	return f.messages, nil
}

func historyRouter(repo *fakeMessageRepo, as string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUsername, as)
	})
	h := NewMessageHandler(repo, zap.NewNop())
	r.GET("/v1/messages/:target_type/:target", h.History)
	return r
}

func TestHistory_ReturnsConversation(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeMessageRepo{messages: []models.Message{
		{ID: 1, Sender: "ana", TargetType: models.TargetUser, Target: "bob", Text: "oi", CreatedAt: at},
		{ID: 2, Sender: "bob", TargetType: models.TargetUser, Target: "ana", Text: "oi ana", CreatedAt: at.Add(time.Minute)},
	}}
	r := historyRouter(repo, "ana")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/messages/user/bob", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Messages []struct {
			Sender string `json:"sender"`
			Text   string `json:"text"`
			Ts     string `json:"ts"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Messages, 2)
	require.Equal(t, "ana", body.Messages[0].Sender)
	require.Equal(t, "oi", body.Messages[0].Text)
	require.Equal(t, "2026-03-01T12:00:00Z", body.Messages[0].Ts)

	// The caller's identity, not a path field, is the username side of
	// the query.
	require.Equal(t, "ana", repo.lastUsername)
	require.Equal(t, models.TargetUser, repo.lastType)
	require.Equal(t, "bob", repo.lastTarget)
}

func TestHistory_GroupTarget(t *testing.T) {
	repo := &fakeMessageRepo{}
	r := historyRouter(repo, "carol")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/messages/group/7", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.TargetGroup, repo.lastType)
	require.Equal(t, "7", repo.lastTarget)
}

func TestHistory_InvalidTargetType(t *testing.T) {
	repo := &fakeMessageRepo{}
	r := historyRouter(repo, "ana")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/messages/channel/7", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory_EmptyConversation(t *testing.T) {
	repo := &fakeMessageRepo{}
	r := historyRouter(repo, "ana")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/messages/user/bob", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// Empty list serializes as [], never null.
	require.JSONEq(t, `{"messages":[]}`, w.Body.String())
}
