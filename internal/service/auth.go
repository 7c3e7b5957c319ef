package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const DefaultTokenTTL = 30 * 24 * time.Hour

type AuthService struct {
	Repo     *repo.GormRepo
	Secret   []byte
	TokenTTL time.Duration
	Events   events.Publisher
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// comparePassword burns a bcrypt comparison even for unknown users so both
// login failures take the same time.
func comparePassword(user *models.User, password string) bool {
	if user == nil {
		dummyHashOnce.Do(func() { dummyHash, _ = hash.HashPassword("storefront-dummy-password") })
		hash.CheckPassword(dummyHash, password)
		return false
	}
	return hash.CheckPassword(user.PasswordHash, password)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) issue(user *models.User) (*transport.AuthResponse, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	token, _, err := tokens.NewAccessToken(s.Secret, user.ID.String(), user.Role, ttl)
	if err != nil {
		return nil, err
	}
	return &transport.AuthResponse{Token: token, User: user}, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := transport.Validate(req); err != nil {
		return nil, newError(ErrValidation, "%s", err.Error())
	}

	if _, err := s.Repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, newError(ErrConflict, "Email already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_error", "status", 500, "reason", "cannot look up email", "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
		Phone:        req.Phone,
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, newError(ErrConflict, "Email already in use")
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	res, err := s.issue(user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUsers, user.ID.String(), events.UserEvent{
		Type:   "user_registered",
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		At:     time.Now().UTC(),
	})

	l.Info("register_success", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, newError(ErrValidation, "email and password are required")
	}

	user, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("login_error", "status", 500, "reason", "cannot look up user", "error", err)
		return nil, err
	}
	if err != nil {
		user = nil
	}

	if !comparePassword(user, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
		return nil, newError(ErrAuth, "Invalid credentials")
	}

	res, err := s.issue(user)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}
	return res, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch transport.ProfilePatch) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_profile")

	for _, f := range []*string{patch.FirstName, patch.LastName, patch.Phone} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if err := transport.Validate(patch); err != nil {
		return nil, newError(ErrValidation, "%s", err.Error())
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.Address != nil {
		user.Address = *patch.Address
	}
	if patch.Password != nil {
		pwHash, err := hash.HashPassword(*patch.Password)
		if err != nil {
			l.Error("update_profile_error", "status", 500, "reason", "cannot hash the password", "error", err)
			return nil, err
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Error("update_profile_error", "status", 500, "reason", "cannot save user", "error", err)
		return nil, err
	}

	l.Info("update_profile_success", "user_id", user.ID)
	return user, nil
}
