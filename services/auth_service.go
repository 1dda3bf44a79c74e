package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"nba-predictions-go/database"
	"nba-predictions-go/interfaces"
	"nba-predictions-go/logging"
	"nba-predictions-go/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrEmailDomain        = errors.New("email domain is not accepted")
	ErrInvalidUsername    = errors.New("username must be 3-20 letters, digits or underscores")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrNotAuthenticated   = errors.New("not signed in")
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const minPasswordLength = 6

// WelcomeMailer sends the post sign-up email
type WelcomeMailer interface {
	IsConfigured() bool
	SendWelcomeEmail(toEmail, username string) error
}

// AuthConfig holds the settings for AuthService
type AuthConfig struct {
	JWTSecret           string
	TokenTTL            time.Duration
	AllowedEmailDomains []string
}

// AuthService handles authentication operations
type AuthService struct {
	users          interfaces.UserStore
	jwtSecret      []byte
	tokenExpiry    time.Duration
	allowedDomains []string
	mailer         WelcomeMailer
	logger         *logging.Logger
}

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewAuthService creates a new authentication service
func NewAuthService(users interfaces.UserStore, cfg AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	domains := make([]string, 0, len(cfg.AllowedEmailDomains))
	for _, d := range cfg.AllowedEmailDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}
	return &AuthService{
		users:          users,
		jwtSecret:      []byte(cfg.JWTSecret),
		tokenExpiry:    ttl,
		allowedDomains: domains,
		logger:         logging.WithPrefix("Auth"),
	}
}

// SetMailer enables the welcome email on sign-up
func (a *AuthService) SetMailer(mailer WelcomeMailer) {
	a.mailer = mailer
}

// TokenTTL is the lifetime of issued tokens
func (a *AuthService) TokenTTL() time.Duration {
	return a.tokenExpiry
}

// ValidateEmail checks format and the accepted domain list
func (a *AuthService) ValidateEmail(email string) error {
	email = models.NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(a.allowedDomains) == 0 {
		return nil
	}
	_, domain, _ := strings.Cut(email, "@")
	for _, allowed := range a.allowedDomains {
		if domain == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: use one of %s", ErrEmailDomain, strings.Join(a.allowedDomains, ", "))
}

// ValidateUsername checks the username format
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// SignUp registers a new account and returns a signed-in response
func (a *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = models.NormalizeEmail(req.Email)

	if err := a.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if err := a.ensureAvailable(ctx, "", req.Username, req.Email); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    req.Email,
	}
	if err := user.HashPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// lost a race with a concurrent sign-up
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	a.logger.Infof("Created account %s (%s)", user.Username, user.Email)

	if a.mailer != nil && a.mailer.IsConfigured() {
		if err := a.mailer.SendWelcomeEmail(user.Email, user.Username); err != nil {
			a.logger.Warnf("Welcome email to %s failed: %v", user.Email, err)
		}
	}

	return a.respond(user)
}

// SignIn authenticates by username or email
func (a *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = a.users.GetUserByEmail(ctx, identifier)
	} else {
		user, err = a.users.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}
	return a.respond(user)
}

// UpdateAccount changes username and email of the signed-in user
func (a *AuthService) UpdateAccount(ctx context.Context, userID string, req models.UpdateAccountRequest) (*models.User, error) {
	user, err := a.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	username := strings.TrimSpace(req.Username)
	email := models.NormalizeEmail(req.Email)
	if username == "" {
		username = user.Username
	}
	if email == "" {
		email = user.Email
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := a.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := a.ensureAvailable(ctx, user.ID, username, email); err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	if err := a.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	safe := user.ToSafeUser()
	return &safe, nil
}

// IsAvailable reports whether a username or email is free.
// field is "username" or "email".
func (a *AuthService) IsAvailable(ctx context.Context, field, value string) (bool, error) {
	var err error
	switch field {
	case "username":
		_, err = a.users.GetUserByUsername(ctx, strings.TrimSpace(value))
	case "email":
		_, err = a.users.GetUserByEmail(ctx, value)
	default:
		return false, fmt.Errorf("unknown field %q", field)
	}
	if errors.Is(err, database.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// ensureAvailable rejects a username or email owned by someone other than selfID
func (a *AuthService) ensureAvailable(ctx context.Context, selfID, username, email string) error {
	if existing, err := a.users.GetUserByEmail(ctx, email); err == nil && existing.ID != selfID {
		return ErrEmailTaken
	} else if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing, err := a.users.GetUserByUsername(ctx, username); err == nil && existing.ID != selfID {
		return ErrUsernameTaken
	} else if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}

func (a *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := a.GenerateToken(user)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &models.AuthResponse{
		User:  user.ToSafeUser(),
		Token: token,
	}, nil
}

// GenerateToken creates a new JWT token for the user
func (a *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "nba-predictions-go",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GetUserFromToken validates token and returns the user
func (a *AuthService) GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := a.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	return user, nil
}
