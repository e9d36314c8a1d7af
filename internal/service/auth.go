// Package service implements the business rules between the HTTP handlers
// and the repositories: credential checks, the one-vote-per-period rule,
// duplicate detection and cache invalidation.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/repository"
)

// AuthService authenticates students against the configured backend.
type AuthService struct {
	students repository.StudentRepository
	logger   zerolog.Logger
}

func NewAuthService(students repository.StudentRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{students: students, logger: logger}
}

// Login verifies the credentials. It returns (nil, nil) when the
// credentials are simply wrong; repository failures propagate so the
// handler can answer 500 instead of a misleading "wrong password".
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.Student, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.Authentication("Usuario y contraseña son requeridos")
	}

	student, err := s.students.FindByCredentials(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("credential lookup failed")
		return nil, err
	}
	if student == nil {
		return nil, nil
	}
	if !student.CanVote() {
		return nil, nil
	}
	return student, nil
}
