package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/handler/http/requestid"
	"newsdesk/internal/infra/adapter/persistence/memory"
	authSvc "newsdesk/internal/service/auth"
	artUC "newsdesk/internal/usecase/article"
	catUC "newsdesk/internal/usecase/category"
	cmtUC "newsdesk/internal/usecase/comment"
	feedUC "newsdesk/internal/usecase/feed"
	userUC "newsdesk/internal/usecase/user"
)

type sentNotification struct {
	userID    string
	articleID string
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *captureNotifier) Notify(_ context.Context, userID string, art *entity.Article) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{userID, art.ID})
	return nil
}

// syncPublisher dispatches immediately so the test can observe notifications.
type syncPublisher struct{ engine *feedUC.Engine }

func (p syncPublisher) Publish(ctx context.Context, art *entity.Article) {
	_, _ = p.engine.NotifyAll(ctx, art)
}

func newTestRouter(t *testing.T) (http.Handler, *captureNotifier) {
	t.Helper()
	ctx := context.Background()

	users := &userUC.Service{Repo: memory.NewUserRepo(), Cost: bcrypt.MinCost}
	for _, in := range []userUC.RegisterInput{
		{Username: "root", Email: "root@example.com", Password: "rootpass", Role: "administrator"},
		{Username: "ed", Email: "ed@example.com", Password: "edpass12", Role: "editor"},
		{Username: "rita", Email: "rita@example.com", Password: "ritapass", Role: "reader"},
	} {
		_, err := users.Register(ctx, in)
		require.NoError(t, err)
	}

	articleRepo := memory.NewArticleRepo()
	commentRepo := memory.NewCommentRepo()
	notifier := &captureNotifier{}
	engine := &feedUC.Engine{Subs: memory.NewSubscriptionRepo(), Articles: articleRepo, Notifier: notifier}

	svc := Services{
		Auth:       &authSvc.Service{Users: users, Tokens: authSvc.NewSessionStore(time.Hour)},
		Users:      users,
		Articles:   &artUC.Service{Repo: articleRepo, Comments: commentRepo, Publisher: syncPublisher{engine}},
		Categories: &catUC.Service{Repo: memory.NewCategoryRepo()},
		Comments:   &cmtUC.Service{Repo: commentRepo, Articles: articleRepo},
		Feed:       engine,
	}
	router := NewRouter(svc, RouterConfig{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxBodyBytes: 4 << 10,
		LoginLimiter: NewRateLimiter(100, time.Minute),
		Health:       &HealthHandler{Storage: "memory", Version: "test"},
	})
	return router, notifier
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	r.RemoteAddr = "10.0.0.1:4000"
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
	rr := httptest.NewRecorder()
	c.router.ServeHTTP(rr, r)
	return rr
}

func loginAs(t *testing.T, router http.Handler, username, password string) *client {
	t.Helper()
	anon := &client{t: t, router: router}
	rr := anon.do(http.MethodPost, "/auth/login", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return &client{t: t, router: router, token: resp.Token}
}

func TestRouter_EndToEnd(t *testing.T) {
	router, notifier := newTestRouter(t)
	editor := loginAs(t, router, "ed", "edpass12")
	reader := loginAs(t, router, "rita", "ritapass")

	rr := reader.do(http.MethodPut, "/feed/preferences", `{"categories":["Technology"],"authors":["ed"],"countries":["US"]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = editor.do(http.MethodPost, "/articles", `{"title":"Go 1.25","content":"Released","category":"Technology","country":"US"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	assert.Equal(t, []sentNotification{{"rita", created.ID}}, notifier.sent)

	rr = reader.do(http.MethodPost, "/articles/"+created.ID+"/ratings", `{"value":4}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = reader.do(http.MethodPost, "/comments", `{"article_id":"`+created.ID+`","content":"nice"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = reader.do(http.MethodGet, "/feed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"average_rating":4`)

	// 記事削除でコメントも消える
	rr = editor.do(http.MethodDelete, "/articles/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = reader.do(http.MethodGet, "/articles/"+created.ID+"/comments", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestRouter_Middleware(t *testing.T) {
	router, _ := newTestRouter(t)
	anon := &client{t: t, router: router}

	rr := anon.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(requestid.Header))
	assert.NotEmpty(t, rr.Header().Get("X-Trace-Id"))

	rr = anon.do(http.MethodGet, "/articles", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = anon.do(http.MethodPost, "/auth/login", `{"username":"`+strings.Repeat("x", 8<<10)+`","password":"p"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rr = anon.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestRouter_RoleEnforcement(t *testing.T) {
	router, _ := newTestRouter(t)
	reader := loginAs(t, router, "rita", "ritapass")
	admin := loginAs(t, router, "root", "rootpass")

	assert.Equal(t, http.StatusForbidden, reader.do(http.MethodPost, "/articles", `{"title":"t","content":"c"}`).Code)
	assert.Equal(t, http.StatusForbidden, reader.do(http.MethodPost, "/categories", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusForbidden, reader.do(http.MethodPost, "/users", `{}`).Code)
	assert.Equal(t, http.StatusCreated, admin.do(http.MethodPost, "/articles", `{"title":"t","content":"c"}`).Code)
	assert.Equal(t, http.StatusCreated, admin.do(http.MethodPost, "/categories", `{"name":"x"}`).Code)
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	router, _ := newTestRouter(t)
	reader := loginAs(t, router, "rita", "ritapass")

	assert.Equal(t, http.StatusNotFound, reader.do(http.MethodGet, "/nowhere", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, reader.do(http.MethodPatch, "/articles", "").Code)
}
