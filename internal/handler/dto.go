package handler

import (
	"time"

	"workflo/internal/model"
)

// UserResponse is the public profile of a user.
type UserResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type BoardResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	Trashed     bool   `json:"trashed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ContributorResponse struct {
	ID        string       `json:"id"`
	BoardID   string       `json:"board_id"`
	UserID    string       `json:"user_id"`
	Role      string       `json:"role"`
	Status    string       `json:"status"`
	InvitedBy *string      `json:"invited_by,omitempty"`
	User      UserResponse `json:"user"`
	CreatedAt string       `json:"created_at"`
}

type SubtaskResponse struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type TaskResponse struct {
	ID          string            `json:"id"`
	BoardID     string            `json:"board_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	Subtasks    []SubtaskResponse `json:"subtasks"`
	CreatedBy   string            `json:"created_by"`
	CreatorName string            `json:"creator_name"`
	AssignedTo  *string           `json:"assigned_to,omitempty"`
	Assignee    *UserResponse     `json:"assignee,omitempty"`
	Deadline    *string           `json:"deadline,omitempty"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      formatTime(u.CreatedAt),
	}
}

func toBoardResponse(b model.Board) BoardResponse {
	return BoardResponse{
		ID:          b.ID.String(),
		Title:       b.Title,
		Description: b.Description,
		OwnerID:     b.OwnerID.String(),
		Trashed:     b.Trashed,
		CreatedAt:   formatTime(b.CreatedAt),
		UpdatedAt:   formatTime(b.UpdatedAt),
	}
}

func toBoardResponses(boards []model.Board) []BoardResponse {
	resp := make([]BoardResponse, 0, len(boards))
	for _, b := range boards {
		resp = append(resp, toBoardResponse(b))
	}
	return resp
}

func toContributorResponse(c model.Contributor) ContributorResponse {
	resp := ContributorResponse{
		ID:        c.ID.String(),
		BoardID:   c.BoardID.String(),
		UserID:    c.UserID.String(),
		Role:      string(c.Role),
		Status:    string(c.Status),
		User:      toUserResponse(c.User),
		CreatedAt: formatTime(c.CreatedAt),
	}
	if c.InvitedBy != nil {
		invitedBy := c.InvitedBy.String()
		resp.InvitedBy = &invitedBy
	}
	return resp
}

func toContributorResponses(contributors []model.Contributor) []ContributorResponse {
	resp := make([]ContributorResponse, 0, len(contributors))
	for _, c := range contributors {
		resp = append(resp, toContributorResponse(c))
	}
	return resp
}

func toTaskResponse(t model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID.String(),
		BoardID:     t.BoardID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Subtasks:    make([]SubtaskResponse, 0, len(t.Subtasks)),
		CreatedBy:   t.CreatedBy.String(),
		CreatorName: t.Creator.Username,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	for _, s := range t.Subtasks {
		resp.Subtasks = append(resp.Subtasks, SubtaskResponse{Description: s.Description, Completed: s.Completed})
	}
	if t.AssignedTo != nil {
		assignedTo := t.AssignedTo.String()
		resp.AssignedTo = &assignedTo
	}
	if t.Assignee != nil {
		assignee := toUserResponse(*t.Assignee)
		resp.Assignee = &assignee
	}
	if t.Deadline != nil {
		deadline := formatTime(*t.Deadline)
		resp.Deadline = &deadline
	}
	return resp
}

func toTaskResponses(tasks []model.Task) []TaskResponse {
	resp := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	return resp
}
