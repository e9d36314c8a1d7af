package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/cache"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/repository"
)

// CandidateService lists and registers nominees.
type CandidateService struct {
	candidates repository.CandidateRepository
	cache      cache.Cache
	logger     zerolog.Logger
}

func NewCandidateService(candidates repository.CandidateRepository, c cache.Cache, logger zerolog.Logger) *CandidateService {
	return &CandidateService{candidates: candidates, cache: c, logger: logger}
}

// List returns the active candidates. Read failures degrade to an empty
// list so the voting page still renders; the error is logged, not served.
func (s *CandidateService) List(ctx context.Context) []model.Candidate {
	candidates, err := s.candidates.FindActive(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("candidate listing failed, serving empty list")
		return []model.Candidate{}
	}
	if candidates == nil {
		candidates = []model.Candidate{}
	}
	return candidates
}

// ListByGradeAndCourse returns the candidates of one course. Degrades to
// empty like List.
func (s *CandidateService) ListByGradeAndCourse(ctx context.Context, grado, curso string) []model.Candidate {
	candidates, err := s.candidates.FindByGradeAndCourse(ctx, grado, curso)
	if err != nil {
		s.logger.Error().Err(err).Str("grado", grado).Str("curso", curso).
			Msg("candidate listing failed, serving empty list")
		return []model.Candidate{}
	}
	if candidates == nil {
		candidates = []model.Candidate{}
	}
	return candidates
}

// Create registers a nominee. Duplicate detection compares trimmed,
// case-insensitive (nombre, apellido) pairs against the active roster;
// grade and course do not disambiguate.
func (s *CandidateService) Create(ctx context.Context, req model.NewCandidateRequest) (*model.Candidate, error) {
	nombre := strings.TrimSpace(req.Nombre)
	apellido := strings.TrimSpace(req.Apellido)
	if nombre == "" || apellido == "" || strings.TrimSpace(req.Grado) == "" || strings.TrimSpace(req.Curso) == "" {
		return nil, domain.Validation("Datos incompletos: nombre, apellido, grado y curso son requeridos")
	}

	existing, err := s.candidates.FindActive(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("duplicate check failed")
		return nil, err
	}
	for _, c := range existing {
		if strings.EqualFold(strings.TrimSpace(c.Nombre), nombre) &&
			strings.EqualFold(strings.TrimSpace(c.Apellido), apellido) {
			return nil, domain.Duplicate("Ya existe un candidato con ese nombre y apellido")
		}
	}

	created, err := s.candidates.Create(ctx, model.NewCandidateRequest{
		Nombre:   nombre,
		Apellido: apellido,
		Grado:    strings.TrimSpace(req.Grado),
		Curso:    strings.TrimSpace(req.Curso),
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, "candidates*"); err != nil {
		s.logger.Warn().Err(err).Msg("candidate cache invalidation failed")
	}
	return created, nil
}
