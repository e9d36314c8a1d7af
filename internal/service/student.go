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

// reservedUsernames can never be registered regardless of backend.
var reservedUsernames = []string{"admin", "test", "demo", "root", "administrator"}

// StudentService lists and registers voters.
type StudentService struct {
	students repository.StudentRepository
	cache    cache.Cache
	logger   zerolog.Logger
}

func NewStudentService(students repository.StudentRepository, c cache.Cache, logger zerolog.Logger) *StudentService {
	return &StudentService{students: students, cache: c, logger: logger}
}

// List returns the active students. Unlike the candidate listing this
// propagates read failures: the admin screen must not mistake an outage
// for an empty roster.
func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	students, err := s.students.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// Create registers a voter after checking the username against the
// reserved list, existing usernames and existing full names.
func (s *StudentService) Create(ctx context.Context, req model.NewStudentRequest) (*model.Student, error) {
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Apellido = strings.TrimSpace(req.Apellido)
	if req.Username == "" || req.Password == "" || req.Nombre == "" || req.Apellido == "" ||
		strings.TrimSpace(req.Grado) == "" || strings.TrimSpace(req.Curso) == "" {
		return nil, domain.Validation("Datos incompletos: todos los campos son requeridos")
	}

	for _, reserved := range reservedUsernames {
		if req.Username == reserved {
			return nil, domain.Duplicate("Nombre de usuario no disponible")
		}
	}

	existing, err := s.students.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Duplicate("El nombre de usuario ya existe")
	}

	all, err := s.students.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range all {
		if strings.EqualFold(strings.TrimSpace(st.Nombre), req.Nombre) &&
			strings.EqualFold(strings.TrimSpace(st.Apellido), req.Apellido) {
			return nil, domain.Duplicate("Ya existe un estudiante con ese nombre y apellido")
		}
	}

	created, err := s.students.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, "students*"); err != nil {
		s.logger.Warn().Err(err).Msg("student cache invalidation failed")
	}
	return created, nil
}
