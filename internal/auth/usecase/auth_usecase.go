package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"recordstore/internal/auth/config"
	"recordstore/internal/auth/domain/model"
	"recordstore/internal/auth/domain/repository"
	recordsmodel "recordstore/internal/records/domain/model"
	apperrors "recordstore/internal/shared/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
	ErrTokenInvalid       = errors.New("token is invalid")
)

// Password validation constants
const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*model.User, string, error)
	RefreshToken(ctx context.Context, tokenString string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)

	GrantProject(ctx context.Context, userID, projectID string, tier recordsmodel.Tier) error
	ResolveUserPrincipal(ctx context.Context, userID, projectID string) (recordsmodel.Principal, error)
	ResolveAPIToken(ctx context.Context, secret string) (recordsmodel.Principal, error)

	CreateAPIToken(ctx context.Context, projectID, name string, tier recordsmodel.Tier) (*model.APIToken, string, error)
	ListAPITokens(ctx context.Context, projectID string) ([]*model.APIToken, error)
	RevokeAPIToken(ctx context.Context, projectID, tokenID string) error
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	repo     repository.AuthRepository
	tokenSvc repository.TokenService
	config   *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	repo repository.AuthRepository,
	tokenSvc repository.TokenService,
	cfg *config.Config,
) *AuthUsecase {
	return &AuthUsecase{
		repo:     repo,
		tokenSvc: tokenSvc,
		config:   cfg,
	}
}

var _ AuthUsecaseInterface = (*AuthUsecase)(nil)

// validateEmail validates email format
func (uc *AuthUsecase) validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmailFormat
	}
	return nil
}

// validatePassword validates password strength
func (uc *AuthUsecase) validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account and returns it with a fresh session token.
func (uc *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*model.User, string, error) {
	if err := uc.validateEmail(req.Email); err != nil {
		return nil, "", err
	}
	if err := uc.validatePassword(req.Password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.config.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Grants:       map[string]string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		if apperrors.IsConflict(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*model.User, string, error) {
	user, err := uc.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		// Same failure for unknown email and bad password.
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// RefreshToken rotates a still-valid session token.
func (uc *AuthUsecase) RefreshToken(ctx context.Context, tokenString string) (string, error) {
	return uc.tokenSvc.RefreshToken(ctx, tokenString)
}

// ValidateToken validates a session token and returns its claims.
func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	return uc.tokenSvc.ValidateToken(ctx, tokenString)
}

// GetUserByID returns the stored account.
func (uc *AuthUsecase) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return uc.repo.GetUserByID(ctx, userID)
}

// GrantProject records the tier a user holds on a project.
func (uc *AuthUsecase) GrantProject(ctx context.Context, userID, projectID string, tier recordsmodel.Tier) error {
	return uc.repo.SetGrant(ctx, userID, projectID, string(tier))
}

// ResolveUserPrincipal resolves a user's permission tier on one project from
// their grants. A user with no grant resolves to the none tier, not an error;
// the transport layer turns an insufficient tier into a forbidden response.
func (uc *AuthUsecase) ResolveUserPrincipal(ctx context.Context, userID, projectID string) (recordsmodel.Principal, error) {
	user, err := uc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return recordsmodel.Principal{}, err
	}
	tier, ok := recordsmodel.ParseTier(user.TierFor(projectID))
	if !ok {
		tier = recordsmodel.TierNone
	}
	return recordsmodel.Principal{
		UserID:    userID,
		ProjectID: projectID,
		Tier:      tier,
	}, nil
}

// ResolveAPIToken resolves a presented token secret to the principal the
// token's project scope and fixed tier define.
func (uc *AuthUsecase) ResolveAPIToken(ctx context.Context, secret string) (recordsmodel.Principal, error) {
	token, err := uc.repo.GetAPITokenBySecretHash(ctx, hashSecret(secret))
	if err != nil {
		return recordsmodel.Principal{}, ErrTokenInvalid
	}
	tier, ok := recordsmodel.ParseTier(token.Tier)
	if !ok {
		tier = recordsmodel.TierNone
	}
	return recordsmodel.Principal{
		UserID:    "token:" + token.ID,
		ProjectID: token.ProjectID,
		Tier:      tier,
	}, nil
}

// CreateAPIToken mints a project-scoped token; the opaque secret is returned
// exactly once.
func (uc *AuthUsecase) CreateAPIToken(ctx context.Context, projectID, name string, tier recordsmodel.Tier) (*model.APIToken, string, error) {
	if _, ok := recordsmodel.ParseTier(string(tier)); !ok {
		return nil, "", fmt.Errorf("unknown tier %q", tier)
	}

	secret := uuid.NewString() + uuid.NewString()
	token := &model.APIToken{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Name:       name,
		Tier:       string(tier),
		SecretHash: hashSecret(secret),
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.repo.CreateAPIToken(ctx, token); err != nil {
		return nil, "", fmt.Errorf("failed to create api token: %w", err)
	}
	return token, secret, nil
}

// ListAPITokens lists the tokens of one project (hashes excluded by
// serialization).
func (uc *AuthUsecase) ListAPITokens(ctx context.Context, projectID string) ([]*model.APIToken, error) {
	return uc.repo.ListAPITokens(ctx, projectID)
}

// RevokeAPIToken removes a token of a project.
func (uc *AuthUsecase) RevokeAPIToken(ctx context.Context, projectID, tokenID string) error {
	return uc.repo.DeleteAPIToken(ctx, projectID, tokenID)
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
