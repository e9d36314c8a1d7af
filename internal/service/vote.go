package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/cache"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/repository"
	"github.com/FrancoGreca/sistema-votacion-colegio/pkg/period"
)

// VoteService implements the ballot flow: tally reads, casting with the
// one-vote-per-period rule, and the admin clear operations.
type VoteService struct {
	votes      repository.VoteRepository
	candidates repository.CandidateRepository
	students   repository.StudentRepository
	cache      cache.Cache
	demoMode   bool
	logger     zerolog.Logger
}

func NewVoteService(
	repos *repository.Container,
	c cache.Cache,
	demoMode bool,
	logger zerolog.Logger,
) *VoteService {
	return &VoteService{
		votes:      repos.Votes,
		candidates: repos.Candidates,
		students:   repos.Students,
		cache:      c,
		demoMode:   demoMode,
		logger:     logger,
	}
}

// Counts returns votes-per-candidate for the period. Read failures degrade
// to an empty tally; validation failures are the caller's problem.
func (s *VoteService) Counts(ctx context.Context, mes string, ano string) (map[string]int, error) {
	if mes == "" || ano == "" {
		return nil, domain.Validation("Mes y año son requeridos")
	}
	if !period.IsValidMonth(mes) {
		return nil, domain.Voting("Mes inválido")
	}
	year, err := strconv.Atoi(ano)
	if err != nil || !period.IsValidYear(year) {
		return nil, domain.Voting("Año inválido")
	}

	counts, err := s.votes.CountByCandidate(ctx, mes, year)
	if err != nil {
		s.logger.Error().Err(err).Str("mes", mes).Int("ano", year).Msg("vote tally failed, serving empty counts")
		return map[string]int{}, nil
	}
	if counts == nil {
		counts = map[string]int{}
	}
	return counts, nil
}

// Cast records one ballot. An authenticated student can vote once per
// period; an anonymous ballot gets a minted voter id and is not subject to
// the duplicate rule beyond its own id.
func (s *VoteService) Cast(ctx context.Context, req model.VoteRequest) error {
	if req.CandidateID == "" || req.Mes == "" || req.Ano == 0 {
		return domain.Voting("Datos de voto incompletos")
	}
	if !period.IsValidMonth(req.Mes) {
		return domain.Voting("Mes inválido")
	}
	if !period.IsValidYear(req.Ano) {
		return domain.Voting("Año inválido")
	}

	candidate, err := s.candidates.FindByID(ctx, req.CandidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return domain.NotFound("Candidato", req.CandidateID)
	}

	voterID := period.AnonymousID("")
	if req.StudentUsername != "" {
		student, err := s.students.FindByUsername(ctx, req.StudentUsername)
		if err != nil {
			return err
		}
		if student == nil {
			return domain.NotFound("Estudiante", req.StudentUsername)
		}
		if !student.CanVote() {
			return domain.Voting("El estudiante no está habilitado para votar")
		}
		voterID = student.ID

		previous, err := s.votes.FindByStudent(ctx, voterID, req.Mes, req.Ano)
		if err != nil {
			return err
		}
		if previous != nil {
			return domain.AlreadyVoted()
		}
	}

	vote := model.Vote{
		ID:          period.VoteID(voterID, req.CandidateID, req.Mes, req.Ano),
		StudentID:   voterID,
		CandidateID: req.CandidateID,
		Mes:         req.Mes,
		Ano:         req.Ano,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.votes.Save(ctx, vote); err != nil {
		return err
	}

	s.invalidateVoteCaches(ctx)
	s.logger.Info().
		Str("candidate", req.CandidateID).
		Str("mes", req.Mes).
		Int("ano", req.Ano).
		Bool("anonymous", req.StudentUsername == "").
		Msg("vote recorded")
	return nil
}

// HasVoted reports whether the student already voted in the current
// period. An unknown username answers false rather than erroring so the
// frontend poll stays quiet.
func (s *VoteService) HasVoted(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, domain.Validation("El nombre de usuario es requerido")
	}

	student, err := s.students.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if student == nil {
		return false, nil
	}

	vote, err := s.votes.FindByStudent(ctx, student.ID, period.CurrentMonth(), period.CurrentYear())
	if err != nil {
		return false, err
	}
	return vote != nil, nil
}

// ClearPeriod removes every vote from the given period.
func (s *VoteService) ClearPeriod(ctx context.Context, mes string, ano int) (*model.ClearVotesResponse, error) {
	if mes == "" || ano == 0 {
		return nil, domain.Validation("Mes y año son requeridos")
	}
	if !period.IsValidMonth(mes) {
		return nil, domain.Voting("Mes inválido")
	}

	removed, err := s.votes.DeleteByPeriod(ctx, mes, ano)
	if err != nil {
		return nil, err
	}
	s.invalidateVoteCaches(ctx)

	message := fmt.Sprintf("%d votos eliminados exitosamente", removed)
	if removed == 0 {
		message = "No hay votos para eliminar este mes"
	}
	return &model.ClearVotesResponse{Success: true, Message: message, Cleared: removed}, nil
}

// ClearCurrentMonth removes the current period's votes (the admin "reset
// demo" button).
func (s *VoteService) ClearCurrentMonth(ctx context.Context) (*model.ClearVotesResponse, error) {
	removed, err := s.votes.DeleteByPeriod(ctx, period.CurrentMonth(), period.CurrentYear())
	if err != nil {
		return nil, err
	}
	s.invalidateVoteCaches(ctx)

	var message string
	switch {
	case removed == 0:
		message = "No hay votos para eliminar este mes"
	case s.demoMode:
		message = "Votos demo eliminados"
	default:
		message = fmt.Sprintf("%d votos eliminados exitosamente", removed)
	}
	return &model.ClearVotesResponse{Success: true, Message: message, Cleared: removed}, nil
}

// invalidateVoteCaches drops every cached tally and check-vote answer.
// Default-period requests cache under a parameterless key, so the pattern
// is coarse on purpose.
func (s *VoteService) invalidateVoteCaches(ctx context.Context) {
	for _, pattern := range []string{"votes*", "check-vote*"} {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn().Err(err).Str("pattern", pattern).Msg("vote cache invalidation failed")
		}
	}
}
