package service

import (
	"context"
	"fmt"
	"time"

	"collabtask/internal/model"

	"github.com/google/uuid"
)

const (
	unassignedLabel  = "Unassigned"
	unknownUserLabel = "Unknown User"
)

// UserSummary is the public projection of a user. It never carries the
// credential.
type UserSummary struct {
	UserID   string `json:"userID"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type AuthResult struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

type MemberProfile struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type ProjectView struct {
	ProjectID      string          `json:"projectID"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Deadline       *string         `json:"deadline"`
	OwnerID        string          `json:"ownerID"`
	Members        []string        `json:"members"`
	MemberProfiles []MemberProfile `json:"memberProfiles,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type TaskView struct {
	TaskID           string    `json:"taskID"`
	ProjectID        string    `json:"projectID"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	DueDate          *string   `json:"dueDate"`
	Priority         string    `json:"priority"`
	Status           string    `json:"status"`
	AssignedTo       *string   `json:"assignedTo"`
	AssignedUsername string    `json:"assignedUsername"`
	AssignedAvatar   string    `json:"assignedAvatar"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type TaskSummary struct {
	TaskID       string  `json:"taskID"`
	Title        string  `json:"title"`
	DueDate      *string `json:"dueDate"`
	Status       string  `json:"status"`
	CommentCount int64   `json:"commentCount"`
}

type ProjectOverview struct {
	ProjectID   string        `json:"projectID"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Deadline    *string       `json:"deadline"`
	Members     []string      `json:"members"`
	Tasks       []TaskSummary `json:"tasks"`
}

type CommentView struct {
	CommentID string    `json:"commentID"`
	TaskID    string    `json:"taskID"`
	UserID    string    `json:"userID"`
	Message   string    `json:"message"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

type SubtaskView struct {
	SubtaskID        string    `json:"subtaskID"`
	TaskID           string    `json:"taskID"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Status           string    `json:"status"`
	Priority         string    `json:"priority"`
	DueDate          *string   `json:"dueDate"`
	AssignedTo       *string   `json:"assignedTo"`
	AssignedUsername string    `json:"assignedUsername"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func summarizeUser(u model.User) UserSummary {
	return UserSummary{UserID: u.ID.String(), Username: u.Name, Avatar: u.AvatarURL}
}

// userDirectory resolves user IDs to profiles for read-time joins.
type userDirectory map[uuid.UUID]model.User

func loadUsers(ctx context.Context, users UserRepository, ids []uuid.UUID) (userDirectory, error) {
	dir := make(userDirectory, len(ids))
	var missing []uuid.UUID
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return dir, nil
	}
	found, err := users.GetByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range found {
		dir[u.ID] = u
	}
	return dir, nil
}

func projectView(p *model.Project, dir userDirectory) ProjectView {
	view := ProjectView{
		ProjectID:   p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Deadline:    formatDate(p.Deadline),
		OwnerID:     p.OwnerID.String(),
		Members:     make([]string, 0, len(p.Members)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, id := range p.MemberIDs() {
		view.Members = append(view.Members, id.String())
	}
	if dir == nil {
		return view
	}
	view.MemberProfiles = make([]MemberProfile, 0, len(p.Members))
	for _, id := range p.MemberIDs() {
		if u, ok := dir[id]; ok {
			view.MemberProfiles = append(view.MemberProfiles, MemberProfile{
				UserID: id.String(),
				Name:   u.Name,
				Avatar: u.AvatarURL,
			})
		}
	}
	return view
}

func taskView(t *model.Task, dir userDirectory) TaskView {
	view := TaskView{
		TaskID:           t.ID.String(),
		ProjectID:        t.ProjectID.String(),
		Title:            t.Title,
		Description:      t.Description,
		DueDate:          formatDate(t.DueDate),
		Priority:         string(t.Priority),
		Status:           string(t.Status),
		AssignedUsername: unassignedLabel,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	if t.AssignedTo == nil {
		return view
	}
	id := t.AssignedTo.String()
	view.AssignedTo = &id
	if u, ok := dir[*t.AssignedTo]; ok {
		view.AssignedUsername = u.Name
		view.AssignedAvatar = u.AvatarURL
	} else {
		view.AssignedUsername = unknownUserLabel
	}
	return view
}

// taskViews joins assignee profiles onto tasks with one batched lookup.
func taskViews(ctx context.Context, users UserRepository, tasks []model.Task) ([]TaskView, error) {
	var ids []uuid.UUID
	for _, t := range tasks {
		if t.AssignedTo != nil {
			ids = append(ids, *t.AssignedTo)
		}
	}
	dir, err := loadUsers(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, taskView(&tasks[i], dir))
	}
	return views, nil
}

func subtaskViews(ctx context.Context, users UserRepository, subtasks []model.Subtask) ([]SubtaskView, error) {
	var ids []uuid.UUID
	for _, st := range subtasks {
		if st.AssignedTo != nil {
			ids = append(ids, *st.AssignedTo)
		}
	}
	dir, err := loadUsers(ctx, users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]SubtaskView, 0, len(subtasks))
	for _, st := range subtasks {
		view := SubtaskView{
			SubtaskID:        st.ID.String(),
			TaskID:           st.TaskID.String(),
			Title:            st.Title,
			Description:      st.Description,
			Status:           string(st.Status),
			Priority:         string(st.Priority),
			DueDate:          formatDate(st.DueDate),
			AssignedUsername: unassignedLabel,
			CreatedAt:        st.CreatedAt,
			UpdatedAt:        st.UpdatedAt,
		}
		if st.AssignedTo != nil {
			id := st.AssignedTo.String()
			view.AssignedTo = &id
			view.AssignedUsername = unknownUserLabel
			if u, ok := dir[*st.AssignedTo]; ok {
				view.AssignedUsername = u.Name
			}
		}
		views = append(views, view)
	}
	return views, nil
}
