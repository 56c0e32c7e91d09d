package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caloriehub/internal/apperr"
	"caloriehub/internal/config"
	"caloriehub/internal/storage"
	"caloriehub/internal/userctx"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every way a bearer token can fail verification.
var ErrInvalidToken = errors.New("invalid token")

const (
	minUsernameLength = 3
	minPasswordLength = 6

	// Accounts younger than this are flagged as recent in the profile view.
	recentAccountDays = 30
)

// Service handles registration, login and account management.
type Service struct {
	config  *config.Config
	storage storage.UsersStorage
	hasher  PasswordHasher
}

func NewService(cfg *config.Config, usersStorage storage.UsersStorage, hasher PasswordHasher) *Service {
	return &Service{
		config:  cfg,
		storage: usersStorage,
		hasher:  hasher,
	}
}

// Register creates a new account and returns it with a fresh token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := normalizeUsername(req.Username)
	if len(username) < minUsernameLength {
		return nil, apperr.BadRequest(fmt.Sprintf("Username must be at least %d characters", minUsernameLength))
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.BadRequest(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	if _, err := s.storage.GetUserByUsername(ctx, username); err == nil {
		return nil, apperr.Conflict("Username already exists")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to process password")
	}

	now := time.Now()
	user := &storage.User{
		ID:        uuid.New(),
		Username:  username,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.UpsertUser(ctx, user); err != nil {
		return nil, apperr.Internal("Failed to create user")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token")
	}

	return &AuthResponse{User: toUserDTO(user), Token: token}, nil
}

// Login verifies credentials and issues a fresh token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	username := normalizeUsername(req.Username)

	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	if err := s.hasher.Compare(user.Password, req.Password); err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token")
	}

	return &AuthResponse{User: toUserDTO(user), Token: token}, nil
}

// ChangePassword swaps the stored hash after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return apperr.BadRequest(fmt.Sprintf("New password must be at least %d characters", minPasswordLength))
	}

	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return apperr.NotFound("User not found")
	}

	if err := s.hasher.Compare(user.Password, req.CurrentPassword); err != nil {
		return apperr.Unauthorized("Current password is incorrect")
	}

	if err := s.hasher.Compare(user.Password, req.NewPassword); err == nil {
		return apperr.BadRequest("New password must be different from current password")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperr.Internal("Failed to process password")
	}

	user.Password = hash
	user.UpdatedAt = time.Now()

	if err := s.storage.UpsertUser(ctx, user); err != nil {
		return apperr.Internal("Failed to update password")
	}

	return nil
}

// UpdateProfile changes the username. Omitted fields keep their values.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}

	if req.Username != nil {
		username := normalizeUsername(*req.Username)
		if len(username) < minUsernameLength {
			return nil, apperr.BadRequest(fmt.Sprintf("Username must be at least %d characters", minUsernameLength))
		}

		if username != user.Username {
			if existing, err := s.storage.GetUserByUsername(ctx, username); err == nil && existing.ID != userID {
				return nil, apperr.Conflict("Username already exists")
			}
			user.Username = username
			user.UpdatedAt = time.Now()

			if err := s.storage.UpsertUser(ctx, user); err != nil {
				return nil, apperr.Internal("Failed to update profile")
			}
		}
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// GetProfile returns the user with derived account age info.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}

	days := int(time.Since(user.CreatedAt).Hours() / 24)
	return &ProfileResponse{
		User: toUserDTO(user),
		AccountInfo: AccountInfo{
			DaysSinceCreation: days,
			IsRecentAccount:   days < recentAccountDays,
		},
	}, nil
}

// VerifyToken classifies a token without failing the request: the result
// always reports either a user or a reason.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) VerifyTokenResult {
	identity, err := s.VerifyJWT(tokenString)
	if err != nil {
		return VerifyTokenResult{IsValid: false, Error: "Invalid or expired token"}
	}

	user, err := s.storage.GetUser(ctx, identity.ID)
	if err != nil {
		return VerifyTokenResult{IsValid: false, Error: "User not found"}
	}

	dto := toUserDTO(user)
	return VerifyTokenResult{IsValid: true, User: &dto}
}

// DeleteAccount verifies the password and hard-deletes the user.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return apperr.NotFound("User not found")
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		return apperr.Unauthorized("Password is incorrect")
	}

	if err := s.storage.DeleteUser(ctx, userID); err != nil {
		return apperr.Internal("Failed to delete account")
	}

	return nil
}

func (s *Service) generateToken(user *storage.User) (string, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.config.JWTTTLMinutes) * time.Minute)

	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"iss":      s.config.JWTIssuer,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT validates the signature and expiry and returns the identity
// carried in the claims.
func (s *Service) VerifyJWT(tokenString string) (userctx.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return userctx.User{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return userctx.User{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return userctx.User{}, ErrInvalidToken
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return userctx.User{}, ErrInvalidToken
	}

	username, _ := claims["username"].(string)
	return userctx.User{ID: id, Username: username}, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func toUserDTO(user *storage.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
