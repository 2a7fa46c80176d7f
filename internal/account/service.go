package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-tasks/internal/apperr"
	"github.com/mind-engage/mindengage-tasks/internal/validate"
)

var (
	ErrUsernameTaken = fmt.Errorf("username already exists: %w", apperr.ErrConflict)
	ErrRollNoTaken   = fmt.Errorf("roll number already exists: %w", apperr.ErrConflict)
)

// TokenIssuer signs a session token for an account.
type TokenIssuer interface {
	IssueJWT(sub, role string) (string, error)
}

type RegisterInput struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"oneof=teacher student"`
	RollNo   string `json:"rollNo" validate:"required_if=Role student"`
	Class    string `json:"class"`
}

type RegisterResult struct {
	Token  string `json:"token"`
	RollNo string `json:"rollNo,omitempty"`
}

type LoginResult struct {
	Token string `json:"token"`
	Profile
}

type Service struct {
	Store      Store
	Tokens     TokenIssuer
	BcryptCost int
}

func NewService(store Store, tokens TokenIssuer) *Service {
	return &Service{Store: store, Tokens: tokens, BcryptCost: bcrypt.DefaultCost}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.RollNo = strings.TrimSpace(in.RollNo)
	if err := validate.Struct("invalid registration", in); err != nil {
		return RegisterResult{}, err
	}
	if in.Role != RoleStudent {
		in.RollNo = ""
	}

	if _, err := s.Store.GetByUsername(ctx, in.Username); err == nil {
		return RegisterResult{}, ErrUsernameTaken
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return RegisterResult{}, err
	}
	if in.RollNo != "" {
		if _, err := s.Store.GetByRollNo(ctx, in.RollNo); err == nil {
			return RegisterResult{}, ErrRollNoTaken
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return RegisterResult{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return RegisterResult{}, err
	}
	a := Account{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
		RollNo:       in.RollNo,
		Class:        in.Class,
		Badges:       []string{},
		CreatedAt:    time.Now().Unix(),
	}
	if err := s.Store.Create(ctx, a); err != nil {
		return RegisterResult{}, err
	}
	tok, err := s.Tokens.IssueJWT(a.ID, string(a.Role))
	if err != nil {
		return RegisterResult{}, fmt.Errorf("issue token: %w", err)
	}
	return RegisterResult{Token: tok, RollNo: a.RollNo}, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	a, err := s.Store.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, apperr.ErrNotFound) {
		return LoginResult{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, apperr.ErrInvalidCredentials
	}
	tok, err := s.Tokens.IssueJWT(a.ID, string(a.Role))
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{Token: tok, Profile: a.Profile()}, nil
}

func (s *Service) Me(ctx context.Context, p Principal) (Profile, error) {
	a, err := s.Store.Get(ctx, p.ID)
	if err != nil {
		return Profile{}, err
	}
	return a.Profile(), nil
}
