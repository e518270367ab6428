package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"workflo/internal/model"
)

const inviteAudience = "board-invite"

var ErrInvalidInvite = errors.New("invalid or expired invitation")

// Invite is the content of an invitation token. It is never persisted: the
// signed token is the only copy.
type Invite struct {
	ID         string     `json:"id"`
	BoardID    uuid.UUID  `json:"boardId"`
	BoardName  string     `json:"boardName"`
	Email      string     `json:"email"`
	SenderID   uuid.UUID  `json:"senderId"`
	SenderName string     `json:"senderName"`
	Role       model.Role `json:"role"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}

type inviteClaims struct {
	jwt.RegisteredClaims
	BoardID    string `json:"boardId"`
	BoardName  string `json:"boardName"`
	Email      string `json:"email"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Role       string `json:"role"`
}

// InviteSigner mints and decodes invitation tokens.
type InviteSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewInviteSigner(secret string, ttl time.Duration) *InviteSigner {
	return &InviteSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; used by tests to step past expiry.
func (s *InviteSigner) WithClock(now func() time.Time) *InviteSigner {
	s.now = now
	return s
}

// Sign fills in the token id and expiry and returns the signed token.
func (s *InviteSigner) Sign(inv Invite) (string, Invite, error) {
	issuedAt := s.now()
	inv.ID = uuid.NewString()
	inv.ExpiresAt = issuedAt.Add(s.ttl).Truncate(time.Second)

	claims := inviteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        inv.ID,
			Audience:  jwt.ClaimStrings{inviteAudience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(inv.ExpiresAt),
		},
		BoardID:    inv.BoardID.String(),
		BoardName:  inv.BoardName,
		Email:      inv.Email,
		SenderID:   inv.SenderID.String(),
		SenderName: inv.SenderName,
		Role:       string(inv.Role),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Invite{}, err
	}
	return token, inv, nil
}

// Decode verifies signature, audience and expiry. Any failure is reported as
// ErrInvalidInvite.
func (s *InviteSigner) Decode(tokenStr string) (Invite, error) {
	claims := &inviteClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(inviteAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Invite{}, ErrInvalidInvite
	}

	boardID, err := uuid.Parse(claims.BoardID)
	if err != nil {
		return Invite{}, ErrInvalidInvite
	}
	senderID, err := uuid.Parse(claims.SenderID)
	if err != nil {
		return Invite{}, ErrInvalidInvite
	}
	role := model.Role(claims.Role)
	if !role.Valid() || claims.Email == "" || claims.ID == "" {
		return Invite{}, ErrInvalidInvite
	}

	return Invite{
		ID:         claims.ID,
		BoardID:    boardID,
		BoardName:  claims.BoardName,
		Email:      claims.Email,
		SenderID:   senderID,
		SenderName: claims.SenderName,
		Role:       role,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
