// Package servicetest provides in-memory stores for exercising services
// without a database. They follow the repository contracts: the same
// sentinel errors, uniqueness rules, ordering and preloaded relations.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"workflo/internal/model"
	"workflo/internal/repository"

	"github.com/google/uuid"
)

// Store holds the shared state behind the per-entity stores.
type Store struct {
	mu           sync.Mutex
	clock        time.Time
	users        map[uuid.UUID]model.User
	boards       map[uuid.UUID]model.Board
	contributors map[uuid.UUID]model.Contributor
	tasks        map[uuid.UUID]model.Task

	Users        *UserStore
	Boards       *BoardStore
	Contributors *ContributorStore
	Tasks        *TaskStore
}

func NewStore() *Store {
	s := &Store{
		clock:        time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		users:        map[uuid.UUID]model.User{},
		boards:       map[uuid.UUID]model.Board{},
		contributors: map[uuid.UUID]model.Contributor{},
		tasks:        map[uuid.UUID]model.Task{},
	}
	s.Users = &UserStore{s}
	s.Boards = &BoardStore{s}
	s.Contributors = &ContributorStore{s}
	s.Tasks = &TaskStore{s}
	return s
}

// tick advances the store clock so timestamps are strictly increasing.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type UserStore struct{ s *Store }

func (u *UserStore) Create(_ context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repository.ErrDuplicateUser
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = u.s.tick()
	user.UpdatedAt = user.CreatedAt
	u.s.users[user.ID] = *user
	return nil
}

func (u *UserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (u *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	email = strings.ToLower(email)
	for _, user := range u.s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (u *UserStore) FindByLogin(_ context.Context, login string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	byEmail := strings.Contains(login, "@")
	for _, user := range u.s.users {
		if (byEmail && user.Email == strings.ToLower(login)) || (!byEmail && user.Username == login) {
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (u *UserStore) Update(_ context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, existing := range u.s.users {
		if id != user.ID && (existing.Email == user.Email || existing.Username == user.Username) {
			return repository.ErrDuplicateUser
		}
	}
	user.UpdatedAt = u.s.tick()
	u.s.users[user.ID] = *user
	return nil
}

type BoardStore struct{ s *Store }

func (b *BoardStore) CreateWithOwner(_ context.Context, board *model.Board, owner *model.Contributor) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}
	board.CreatedAt = b.s.tick()
	board.UpdatedAt = board.CreatedAt
	owner.BoardID = board.ID

	b.s.boards[board.ID] = *board
	if err := b.s.insertContributor(owner); err != nil {
		delete(b.s.boards, board.ID)
		return err
	}
	return nil
}

func (b *BoardStore) GetByID(_ context.Context, id uuid.UUID) (*model.Board, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	board, ok := b.s.boards[id]
	if !ok {
		return nil, repository.ErrBoardNotFound
	}
	return &board, nil
}

func (b *BoardStore) ListForMember(_ context.Context, userID uuid.UUID, filter repository.BoardFilter) ([]model.Board, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	var boards []model.Board
	for _, c := range b.s.contributors {
		if c.UserID != userID || c.Status != model.StatusAccepted {
			continue
		}
		board, ok := b.s.boards[c.BoardID]
		if !ok {
			continue
		}
		if filter.Trashed != nil && board.Trashed != *filter.Trashed {
			continue
		}
		if filter.Query != "" && !contains(board.Title, filter.Query) {
			continue
		}
		boards = append(boards, board)
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].UpdatedAt.After(boards[j].UpdatedAt) })
	return boards, nil
}

func (b *BoardStore) Update(_ context.Context, board *model.Board) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	stored, ok := b.s.boards[board.ID]
	if !ok {
		return repository.ErrBoardNotFound
	}
	stored.Title = board.Title
	stored.Description = board.Description
	stored.UpdatedAt = b.s.tick()
	board.UpdatedAt = stored.UpdatedAt
	b.s.boards[board.ID] = stored
	return nil
}

func (b *BoardStore) SetTrashed(_ context.Context, id uuid.UUID, trashed bool) (*model.Board, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	board, ok := b.s.boards[id]
	if !ok {
		return nil, repository.ErrBoardNotFound
	}
	board.Trashed = trashed
	board.UpdatedAt = b.s.tick()
	b.s.boards[id] = board
	return &board, nil
}

func (b *BoardStore) DeleteCascade(_ context.Context, id uuid.UUID) (*model.Board, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	board, ok := b.s.boards[id]
	if !ok {
		return nil, repository.ErrBoardNotFound
	}
	if !board.Trashed {
		return nil, repository.ErrBoardNotTrashed
	}
	for taskID, task := range b.s.tasks {
		if task.BoardID == id {
			delete(b.s.tasks, taskID)
		}
	}
	for contributorID, c := range b.s.contributors {
		if c.BoardID == id {
			delete(b.s.contributors, contributorID)
		}
	}
	delete(b.s.boards, id)
	return &board, nil
}

type ContributorStore struct{ s *Store }

// insertContributor expects the lock to be held.
func (s *Store) insertContributor(c *model.Contributor) error {
	for _, existing := range s.contributors {
		if existing.BoardID == c.BoardID && existing.UserID == c.UserID {
			return repository.ErrDuplicateContributor
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = s.tick()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	stored.User = model.User{}
	s.contributors[c.ID] = stored
	return nil
}

// withUser expects the lock to be held.
func (s *Store) withUser(c model.Contributor) model.Contributor {
	c.User = s.users[c.UserID]
	return c
}

func (cs *ContributorStore) Create(_ context.Context, contributor *model.Contributor) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	return cs.s.insertContributor(contributor)
}

func (cs *ContributorStore) GetByID(_ context.Context, id uuid.UUID) (*model.Contributor, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	c, ok := cs.s.contributors[id]
	if !ok {
		return nil, repository.ErrContributorNotFound
	}
	c = cs.s.withUser(c)
	return &c, nil
}

func (cs *ContributorStore) FindByUserAndBoard(_ context.Context, userID, boardID uuid.UUID) (*model.Contributor, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	for _, c := range cs.s.contributors {
		if c.UserID == userID && c.BoardID == boardID {
			return &c, nil
		}
	}
	return nil, repository.ErrContributorNotFound
}

func (cs *ContributorStore) ListByBoard(_ context.Context, boardID uuid.UUID, filter repository.ContributorFilter) ([]model.Contributor, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	var contributors []model.Contributor
	for _, c := range cs.s.contributors {
		if c.BoardID != boardID {
			continue
		}
		if filter.Role != "" && c.Role != filter.Role {
			continue
		}
		c = cs.s.withUser(c)
		if filter.Query != "" && !contains(c.User.Username, filter.Query) && !contains(c.User.Email, filter.Query) {
			continue
		}
		contributors = append(contributors, c)
	}
	sort.Slice(contributors, func(i, j int) bool {
		return contributors[i].CreatedAt.After(contributors[j].CreatedAt)
	})
	return contributors, nil
}

func (cs *ContributorStore) SearchForMember(_ context.Context, userID uuid.UUID, query string) ([]model.Contributor, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	boards := make(map[uuid.UUID]bool)
	for _, c := range cs.s.contributors {
		if c.UserID == userID && c.Status == model.StatusAccepted {
			boards[c.BoardID] = true
		}
	}

	var contributors []model.Contributor
	for _, c := range cs.s.contributors {
		if !boards[c.BoardID] {
			continue
		}
		c = cs.s.withUser(c)
		if !contains(c.User.Username, query) && !contains(c.User.Email, query) {
			continue
		}
		contributors = append(contributors, c)
	}
	sort.Slice(contributors, func(i, j int) bool {
		return contributors[i].CreatedAt.After(contributors[j].CreatedAt)
	})
	return contributors, nil
}

func (cs *ContributorStore) UpdateRole(_ context.Context, id uuid.UUID, role model.Role) error {
	return cs.update(id, func(c *model.Contributor) { c.Role = role })
}

func (cs *ContributorStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.ContributorStatus) error {
	return cs.update(id, func(c *model.Contributor) { c.Status = status })
}

func (cs *ContributorStore) update(id uuid.UUID, apply func(*model.Contributor)) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	c, ok := cs.s.contributors[id]
	if !ok {
		return repository.ErrContributorNotFound
	}
	apply(&c)
	c.UpdatedAt = cs.s.tick()
	cs.s.contributors[id] = c
	return nil
}

func (cs *ContributorStore) Delete(_ context.Context, id uuid.UUID) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	if _, ok := cs.s.contributors[id]; !ok {
		return repository.ErrContributorNotFound
	}
	delete(cs.s.contributors, id)
	return nil
}

func (cs *ContributorStore) CountAdmins(_ context.Context, boardID uuid.UUID) (int64, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	var count int64
	for _, c := range cs.s.contributors {
		if c.BoardID == boardID && c.Role == model.RoleAdmin && c.Status == model.StatusAccepted {
			count++
		}
	}
	return count, nil
}

type TaskStore struct{ s *Store }

// withRelations expects the lock to be held.
func (s *Store) withRelations(t model.Task) model.Task {
	t.Creator = s.users[t.CreatedBy]
	t.Assignee = nil
	if t.AssignedTo != nil {
		if assignee, ok := s.users[*t.AssignedTo]; ok {
			t.Assignee = &assignee
		}
	}
	return t
}

func (ts *TaskStore) Create(_ context.Context, task *model.Task) error {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Subtasks == nil {
		task.Subtasks = []model.Subtask{}
	}
	task.CreatedAt = ts.s.tick()
	task.UpdatedAt = task.CreatedAt
	ts.s.tasks[task.ID] = *task
	return nil
}

func (ts *TaskStore) GetByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	task, ok := ts.s.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	task = ts.s.withRelations(task)
	return &task, nil
}

func (ts *TaskStore) ListByBoard(_ context.Context, boardID uuid.UUID, query string) ([]model.Task, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	var tasks []model.Task
	for _, task := range ts.s.tasks {
		if task.BoardID != boardID {
			continue
		}
		if query != "" && !contains(task.Title, query) && !contains(task.Description, query) {
			continue
		}
		tasks = append(tasks, ts.s.withRelations(task))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt) })
	return tasks, nil
}

func (ts *TaskStore) Update(_ context.Context, task *model.Task) error {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	stored, ok := ts.s.tasks[task.ID]
	if !ok {
		return repository.ErrTaskNotFound
	}
	task.BoardID = stored.BoardID
	task.CreatedBy = stored.CreatedBy
	task.CreatedAt = stored.CreatedAt
	task.UpdatedAt = ts.s.tick()
	updated := *task
	updated.Creator = model.User{}
	updated.Assignee = nil
	ts.s.tasks[task.ID] = updated
	return nil
}

func (ts *TaskStore) Delete(_ context.Context, id uuid.UUID) error {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	if _, ok := ts.s.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(ts.s.tasks, id)
	return nil
}
