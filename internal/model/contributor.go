package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contributor links a user to a board with a role. There is at most one
// record per (board, user) pair, enforced by uq_contributors_board_user.
type Contributor struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	BoardID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uq_contributors_board_user"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uq_contributors_board_user;index"`
	Role      Role              `gorm:"type:text;not null"`
	Status    ContributorStatus `gorm:"type:text;not null"`
	InvitedBy *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`

	User User `gorm:"foreignKey:UserID"`
}

func (c *Contributor) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Role string

// Роли участников доски
const (
	RoleAdmin  Role = "ADMIN"  // полный доступ
	RoleEditor Role = "EDITOR" // может редактировать
	RoleViewer Role = "VIEWER" // может только просматривать
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

type ContributorStatus string

const (
	StatusPending  ContributorStatus = "PENDING"
	StatusAccepted ContributorStatus = "ACCEPTED"
	StatusDeclined ContributorStatus = "DECLINED"
)
