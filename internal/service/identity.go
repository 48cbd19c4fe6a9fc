package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"collabtask/internal/auth"
	"collabtask/internal/model"
	"collabtask/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IdentityService owns accounts: signup, login and public profiles.
type IdentityService struct {
	users  UserRepository
	tokens *auth.TokenManager
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewIdentityService(users UserRepository, tokens *auth.TokenManager, log logrus.FieldLogger) *IdentityService {
	return &IdentityService{users: users, tokens: tokens, log: log, now: now}
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (in *SignupInput) normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
}

func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(1, maxPasswordLength)),
		validation.Field(&in.Name, validation.Required, validation.Length(1, maxNameLength)),
	)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

type ProfileInput struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func (in ProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&in.Avatar, validation.Length(0, 2048)),
	)
}

func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.normalize()
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          in.Email,
		Name:           in.Name,
		HashedPassword: hash,
		CreatedAt:      s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent signup won the unique index.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user signed up")
	return s.authResult(user)
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !auth.CheckPassword(user.HashedPassword, in.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.authResult(user)
}

func (s *IdentityService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, summarizeUser(u))
	}
	return out, nil
}

// UpdateProfile edits name and avatar. When actor is set only the user
// themself may edit.
func (s *IdentityService) UpdateProfile(ctx context.Context, actor, userID string, in ProfileInput) (*UserSummary, error) {
	id, ok := parseID(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	if actor != "" && actor != id.String() {
		return nil, ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Avatar = strings.TrimSpace(in.Avatar)
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.Name = in.Name
	user.AvatarURL = in.Avatar
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	summary := summarizeUser(*user)
	return &summary, nil
}

func (s *IdentityService) authResult(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{
		UserID: user.ID.String(),
		Email:  user.Email,
		Name:   user.Name,
		Token:  token,
	}, nil
}

// now truncates to the precision PostgreSQL stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
