package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/storage"
)

type AuthServiceImpl struct {
	logger  zerolog.Logger
	users   storage.UserRepository
	tokens  *TokenIssuer
	welcome WelcomeSender
	compare func(password, hash string) (bool, error)
}

func NewAuthService(
	logger zerolog.Logger,
	users storage.UserRepository,
	tokens *TokenIssuer,
	welcome WelcomeSender,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:  logger,
		users:   users,
		tokens:  tokens,
		welcome: welcome,
		compare: comparePassword,
	}
}

var _ AuthService = (*AuthServiceImpl)(nil)

func (s *AuthServiceImpl) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	v := newValidator()
	v.checkName(params.Name)
	v.checkEmail(params.Email)
	v.checkPassword(params.Password)
	if err := v.err(); err != nil {
		return nil, err
	}

	now := currentTime()
	user := &models.User{
		Name:      params.Name,
		Email:     params.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	passwordHash, err := hashPassword(params.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}
	user.Password = passwordHash

	err = s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.logger.Error().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to create user")
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue token")
		return nil, err
	}

	if s.welcome != nil {
		if err = s.welcome.SendWelcome(ctx, user); err != nil {
			s.logger.Warn().
				Err(err).
				Str("user_id", user.ID).
				Msg("failed to send welcome email")
		}
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return &AuthResult{
		User:           user,
		Token:          token,
		TokenExpiresAt: expiresAt,
	}, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_, _ = s.compare(params.Password, dummyPasswordHash())
			s.logger.Error().
				Str("email", email).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to get user by email")
		return nil, err
	}

	match, err := s.compare(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Error().
			Str("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return &AuthResult{
		User:           user,
		Token:          token,
		TokenExpiresAt: expiresAt,
	}, nil
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("rejected token")
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug().
				Str("user_id", userID).
				Msg("token subject no longer exists")
			return nil, ErrInvalidToken
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to get user by id")
		return nil, err
	}
	return user, nil
}

func (s *AuthServiceImpl) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to get user by id")
		return nil, err
	}
	return user, nil
}
