package service

import (
	"clearpath-signals/dto"
	"clearpath-signals/entities"
	"clearpath-signals/pkg/auth"
	"clearpath-signals/repository"
	"context"
	"errors"
	"fmt"
	"golang.org/x/crypto/bcrypt"
	"strings"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*entities.User, string, error)
	Login(ctx context.Context, req dto.LoginRequest) (*entities.User, string, error)
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*entities.User, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(repo repository.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*entities.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &entities.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*entities.User, string, error) {
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
