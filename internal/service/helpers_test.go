package service_test

import (
	"context"
	"testing"
	"time"

	"workflo/internal/auth"
	"workflo/internal/mailer"
	"workflo/internal/model"
	"workflo/internal/service"
	"workflo/internal/service/servicetest"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Redeem(ctx context.Context, id, outcome string, expiresAt time.Time) error {
	args := m.Called(ctx, id, outcome, expiresAt)
	return args.Error(0)
}

func (m *mockLedger) Release(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type fixture struct {
	store        *servicetest.Store
	now          time.Time
	signer       *auth.InviteSigner
	sender       *mockSender
	guard        *service.Guard
	users        *service.UserService
	boards       *service.BoardService
	contributors *service.ContributorService
	tasks        *service.TaskService
	invites      *service.InvitationService
}

func newFixture(t *testing.T, ledger service.RedemptionLedger) *fixture {
	t.Helper()

	logger := zap.NewNop()
	store := servicetest.NewStore()
	f := &fixture{
		store:  store,
		now:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		sender: &mockSender{},
	}
	f.signer = auth.NewInviteSigner("invite-secret", 24*time.Hour).WithClock(func() time.Time { return f.now })

	f.guard = service.NewGuard(store.Contributors)
	f.users = service.NewUserService(store.Users, auth.NewTokenManager("session-secret", time.Hour), logger)
	f.boards = service.NewBoardService(store.Boards, f.guard, logger)
	f.contributors = service.NewContributorService(store.Boards, store.Users, store.Contributors, f.guard, logger)
	f.tasks = service.NewTaskService(store.Boards, store.Tasks, store.Contributors, f.guard, logger)
	f.invites = service.NewInvitationService(
		store.Boards, store.Users, store.Contributors, f.guard,
		f.signer, f.sender, ledger, "http://localhost:3000", logger,
	)
	return f
}

func (f *fixture) signUp(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := f.users.SignUp(context.Background(), service.SignUpInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createBoard(t *testing.T, owner *model.User, title string) *model.Board {
	t.Helper()
	board, err := f.boards.Create(context.Background(), owner.ID, service.CreateBoardInput{Title: title})
	require.NoError(t, err)
	return board
}

// addMember gives user an accepted role on board, acting as admin.
func (f *fixture) addMember(t *testing.T, admin, user *model.User, board *model.Board, role model.Role) *model.Contributor {
	t.Helper()
	ctx := context.Background()
	pending, err := f.contributors.Create(ctx, admin.ID, service.CreateContributorInput{
		BoardID: board.ID,
		UserID:  user.ID,
		Role:    role,
	})
	require.NoError(t, err)
	accepted, err := f.contributors.Respond(ctx, user.ID, pending.ID, true)
	require.NoError(t, err)
	return accepted
}
