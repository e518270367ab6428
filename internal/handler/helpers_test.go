package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"workflo/internal/auth"
	"workflo/internal/handler"
	"workflo/internal/mailer"
	"workflo/internal/server"
	"workflo/internal/service"
	"workflo/internal/service/servicetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSender запоминает письма вместо отправки
type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type testAPI struct {
	router *gin.Engine
	sender *fakeSender
}

type session struct {
	Token string
	ID    string
	Email string
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	store := servicetest.NewStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	signer := auth.NewInviteSigner("invite-secret", 24*time.Hour)
	sender := &fakeSender{}

	guard := service.NewGuard(store.Contributors)
	users := service.NewUserService(store.Users, tokens, logger)
	boards := service.NewBoardService(store.Boards, guard, logger)
	contributors := service.NewContributorService(store.Boards, store.Users, store.Contributors, guard, logger)
	tasks := service.NewTaskService(store.Boards, store.Tasks, store.Contributors, guard, logger)
	invites := service.NewInvitationService(
		store.Boards, store.Users, store.Contributors, guard,
		signer, sender, nil, "http://localhost:3000", logger,
	)

	r := server.NewRouter(logger, []string{"http://localhost:3000"}, tokens)
	r.Register(server.Handlers{
		Users:        handler.NewUserHandler(users, time.Hour, false),
		Boards:       handler.NewBoardHandler(boards),
		Contributors: handler.NewContributorHandler(contributors),
		Invites:      handler.NewInviteHandler(invites),
		Tasks:        handler.NewTaskHandler(tasks),
	})

	return &testAPI{router: r.Engine, sender: sender}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)
	return resp
}

// decode разбирает конверт ответа и кладёт data в out
func decode(t *testing.T, resp *httptest.ResponseRecorder, out interface{}) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	}
	return env.Message
}

func (a *testAPI) signUp(t *testing.T, username string) session {
	t.Helper()
	email := username + "@example.com"

	resp := a.do(t, http.MethodPost, "/api/auth/signup", "", handler.SignUpRequest{
		Username: username,
		Email:    email,
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = a.do(t, http.MethodPost, "/api/auth/signin", "", handler.SignInRequest{
		Login:    username,
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var signedIn handler.AuthResponse
	decode(t, resp, &signedIn)
	return session{Token: signedIn.Token, ID: signedIn.User.ID, Email: email}
}

func (a *testAPI) createBoard(t *testing.T, owner session, title string) handler.BoardResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/board/create", owner.Token, handler.BoardRequest{Title: title})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var board handler.BoardResponse
	decode(t, resp, &board)
	return board
}

// invite выдаёт приглашение и возвращает токен
func (a *testAPI) invite(t *testing.T, admin session, boardID, email, role string) service.IssuedInvite {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/invite/"+boardID, admin.Token, handler.InviteRequest{Email: email, Role: role})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var issued service.IssuedInvite
	decode(t, resp, &issued)
	return issued
}

// join adds user to the board with role through an accepted invitation.
func (a *testAPI) join(t *testing.T, admin, user session, boardID, role string) handler.ContributorResponse {
	t.Helper()
	issued := a.invite(t, admin, boardID, user.Email, role)

	resp := a.do(t, http.MethodPost, "/api/invite/accept/"+boardID+"/user/"+user.ID, user.Token,
		handler.InviteTokenRequest{InviteHash: issued.Token})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var contributor handler.ContributorResponse
	decode(t, resp, &contributor)
	return contributor
}
