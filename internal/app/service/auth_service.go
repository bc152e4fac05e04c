package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"github.com/rbautista/tindahan-backend/pkg/oauth"
	"github.com/rbautista/tindahan-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid account role")
	ErrInvalidOAuthToken  = errors.New("invalid OAuth token")
	ErrOAuthNotConfigured = errors.New("OAuth sign-in is not configured")
)

// OAuthVerifier confirms a provider-issued ID token and returns the
// identity it asserts. Satisfied by oauth.GoogleVerifier.
type OAuthVerifier interface {
	Verify(ctx context.Context, idToken string) (*oauth.Identity, error)
}

type ProfileMutation struct {
	Username  *string
	Address   *string
	AvatarURL *string
}

type AuthService interface {
	Register(email, password, username string, role model.UserRole) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	OAuthLogin(ctx context.Context, idToken string) (*model.User, *util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(userID uint, input ProfileMutation) (*model.User, error)
	TokenExpiry() time.Duration
}

type authService struct {
	userRepo      repository.UserRepository
	oauthVerifier OAuthVerifier // nil when no provider is configured
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	oauthVerifier OAuthVerifier,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		oauthVerifier: oauthVerifier,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// Register creates a shopper or store-owner account. Administrator
// accounts cannot self-register; they are bootstrapped at migration time.
func (s *authService) Register(email, password, username string, role model.UserRole) (*model.User, *util.TokenPair, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email":    email,
		"username": username,
		"role":     role,
	})

	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleOwner {
		return nil, nil, ErrInvalidRole
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Username:     username,
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
	})
	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, tokens, nil
}

// OAuthLogin exchanges a provider ID token for this API's own token
// pair. First-time sign-ins create a shopper account keyed by the
// provider-verified email; returning users get the account they already
// have, regardless of how it was registered.
func (s *authService) OAuthLogin(ctx context.Context, idToken string) (*model.User, *util.TokenPair, error) {
	if s.oauthVerifier == nil {
		return nil, nil, ErrOAuthNotConfigured
	}

	identity, err := s.oauthVerifier.Verify(ctx, idToken)
	if err != nil {
		logger.Warn("OAuth token verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil, ErrInvalidOAuthToken
	}

	user, err := s.userRepo.FindByEmail(identity.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		user, err = s.createOAuthUser(identity)
		if err != nil {
			return nil, nil, err
		}
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in via OAuth", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, tokens, nil
}

func (s *authService) createOAuthUser(identity *oauth.Identity) (*model.User, error) {
	username, err := s.availableUsername(identity)
	if err != nil {
		return nil, err
	}

	// OAuth accounts never log in by password; store a hash of random
	// bytes so the password path can't be brute-forced into them
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, err
	}
	hashedPassword, err := util.HashPassword(hex.EncodeToString(random))
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        identity.Email,
		PasswordHash: hashedPassword,
		Username:     username,
		AvatarURL:    identity.Picture,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create OAuth user", err, map[string]interface{}{
			"email": identity.Email,
		})
		return nil, err
	}

	logger.Info("OAuth user registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}

// availableUsername derives a username from the email local part,
// suffixing a counter when it is already taken.
func (s *authService) availableUsername(identity *oauth.Identity) (string, error) {
	base := identity.Email
	if at := strings.Index(base, "@"); at > 0 {
		base = base[:at]
	}

	candidate := base
	for i := 1; ; i++ {
		_, err := s.userRepo.FindByUsername(candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, input ProfileMutation) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		if _, err := s.userRepo.FindByUsername(*input.Username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *input.Username
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("Profile updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// TokenExpiry exposes the access token lifetime, used to bound the
// blacklist TTL on logout.
func (s *authService) TokenExpiry() time.Duration {
	return s.accessExpiry
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}
