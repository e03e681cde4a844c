package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sushishop/internal/apperror"
	"sushishop/internal/model"
	"sushishop/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Address  string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
	Address *string `json:"address"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	GetProfile(ctx context.Context, actor *model.Actor) (*UserResponse, error)
	UpdateProfile(ctx context.Context, actor *model.Actor, req UpdateProfileRequest) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
}

type userService struct {
	repo      repository.UserRepository
	txManager repository.TransactionManager
	audit     AuditRecorder
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewUserService(
	repo repository.UserRepository,
	txManager repository.TransactionManager,
	audit AuditRecorder,
	jwtSecret []byte,
	tokenTTL time.Duration,
) UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &userService{
		repo:      repo,
		txManager: txManager,
		audit:     audit,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

func mapToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Address:   user.Address,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword is shared with the seed command.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
		Password: hashed,
		Role:     model.RoleUser,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// The unique index decides; no pre-check
		if err := s.repo.Create(txCtx, user); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperror.Conflict("Пользователь с таким email уже существует", err)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    &user.ID,
			Action:     model.ActionRegisterUser,
			EntityID:   user.ID.String(),
			EntityName: user.Email,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.Unauthenticated("Неверный email или пароль")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		zerolog.Ctx(ctx).Info().Str("email", user.Email).Msg("failed login attempt")
		return nil, apperror.Unauthenticated("Неверный email или пароль")
	}

	return s.issueToken(user)
}

func (s *userService) issueToken(user *model.User) (*TokenResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"role":  user.Role,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{Token: signed, ExpiresAt: expiresAt, User: mapToUserResponse(user)}, nil
}

func (s *userService) GetProfile(ctx context.Context, actor *model.Actor) (*UserResponse, error) {
	user, err := s.loadActor(ctx, actor)
	if err != nil {
		return nil, err
	}
	res := mapToUserResponse(user)
	return &res, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor *model.Actor, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.loadActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation(map[string]string{"name": "Укажите имя"})
		}
		user.Name = name
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		user.Address = strings.TrimSpace(*req.Address)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	res := mapToUserResponse(user)
	return &res, nil
}

func (s *userService) loadActor(ctx context.Context, actor *model.Actor) (*model.User, error) {
	if actor == nil {
		return nil, apperror.Unauthenticated("Необходима авторизация")
	}
	user, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Пользователь не найден")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, mapToUserResponse(&users[i]))
	}
	return responses, total, nil
}
