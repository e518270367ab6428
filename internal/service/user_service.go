package service

import (
	"context"
	"errors"
	"strings"

	"workflo/internal/model"
	"workflo/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var validate = validator.New()

type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput holds the fields to change; nil leaves a field as is.
type UpdateProfileInput struct {
	Username       *string
	Email          *string
	ProfilePicture *string
}

type UserService struct {
	users  UserStore
	tokens TokenIssuer
	logger *zap.Logger
}

func NewUserService(users UserStore, tokens TokenIssuer, logger *zap.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, logger: logger}
}

func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, errorf(ErrValidation, "username is required")
	}
	if err := checkUsername(username); err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, errorf(ErrValidation, "password must be at least %d characters", minPasswordLength)
	}

	// Хешируем пароль
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, errorf(ErrConflict, "user with this email or username already exists")
		}
		return nil, storeError("create user", err)
	}

	s.logger.Info("User signed up", zap.String("user_id", user.ID.String()))
	return user, nil
}

// SignIn checks the credentials and returns a session token. Unknown logins
// and wrong passwords produce the same error.
func (s *UserService) SignIn(ctx context.Context, login, password string) (string, *model.User, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", nil, errorf(ErrUnauthorized, "invalid credentials")
	}
	if err != nil {
		return "", nil, storeError("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", nil, errorf(ErrUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, actorID, userID uuid.UUID, in UpdateProfileInput) (*model.User, error) {
	if actorID != userID {
		return nil, errorf(ErrForbidden, "you can only update your own profile")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError("get user", err)
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, errorf(ErrValidation, "username cannot be empty")
		}
		if err := checkUsername(username); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.ProfilePicture != nil {
		picture := strings.TrimSpace(*in.ProfilePicture)
		if picture == "" {
			user.ProfilePicture = nil
		} else {
			user.ProfilePicture = &picture
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, errorf(ErrConflict, "email or username is already taken")
		}
		return nil, storeError("update user", err)
	}
	return user, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errorf(ErrValidation, "email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", errorf(ErrValidation, "email is not valid")
	}
	return email, nil
}

// Логин с "@" всегда ищется по email
func checkUsername(username string) error {
	if strings.Contains(username, "@") {
		return errorf(ErrValidation, "username cannot contain @")
	}
	return nil
}
