package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/cache"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/config"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/repository"
	"github.com/FrancoGreca/sistema-votacion-colegio/pkg/period"
)

// Check statuses.
const (
	CheckOK      = "ok"
	CheckWarning = "warning"
	CheckError   = "error"
)

// CheckResult is one probe of the diagnostics battery.
type CheckResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Duration string `json:"duration"`
}

// Report is the full diagnostics answer.
type Report struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Checks     []CheckResult  `json:"checks"`
	Summary    map[string]int `json:"summary"`
	SystemInfo map[string]any `json:"systemInfo"`
}

// DiagnosticsService runs the admin troubleshooting battery: config,
// backend connectivity, cache, candidate roster and current-period votes.
type DiagnosticsService struct {
	cfg     *config.Config
	repos   *repository.Container
	cache   cache.Cache
	logger  zerolog.Logger
	started time.Time
}

func NewDiagnosticsService(cfg *config.Config, repos *repository.Container, c cache.Cache, logger zerolog.Logger) *DiagnosticsService {
	return &DiagnosticsService{
		cfg:     cfg,
		repos:   repos,
		cache:   c,
		logger:  logger,
		started: time.Now(),
	}
}

// Run executes every check and aggregates the overall status: any failing
// check makes the report "error", any degraded check makes it "warning".
func (s *DiagnosticsService) Run(ctx context.Context) *Report {
	checks := []CheckResult{
		s.timed(ctx, "configuracion", s.checkConfig),
		s.timed(ctx, "base_de_datos", s.checkBackend),
		s.timed(ctx, "cache", s.checkCache),
		s.timed(ctx, "candidatos", s.checkCandidates),
		s.timed(ctx, "estudiantes", s.checkStudents),
		s.timed(ctx, "votos", s.checkVotes),
	}

	summary := map[string]int{CheckOK: 0, CheckWarning: 0, CheckError: 0}
	for _, c := range checks {
		summary[c.Status]++
	}

	status := "healthy"
	if summary[CheckWarning] > 0 {
		status = "warning"
	}
	if summary[CheckError] > 0 {
		status = "error"
	}

	return &Report{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
		Summary:   summary,
		SystemInfo: map[string]any{
			"backend":     s.repos.Backend,
			"cacheType":   s.cfg.CacheType,
			"environment": s.cfg.Environment,
			"demoMode":    s.cfg.DemoMode(),
			"goVersion":   runtime.Version(),
			"uptime":      time.Since(s.started).Round(time.Second).String(),
		},
	}
}

// StatusSummary is the collapsed one-line view of the battery.
type StatusSummary struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Checked time.Time `json:"checked"`
}

// Status runs the battery and collapses it to a single status/message pair
// for the admin dashboard badge.
func (s *DiagnosticsService) Status(ctx context.Context) *StatusSummary {
	report := s.Run(ctx)

	message := "Todos los sistemas operativos"
	switch report.Status {
	case "warning":
		message = fmt.Sprintf("%d advertencias detectadas", report.Summary[CheckWarning])
	case "error":
		message = fmt.Sprintf("%d verificaciones fallaron", report.Summary[CheckError])
	}
	return &StatusSummary{
		Status:  report.Status,
		Message: message,
		Checked: report.Timestamp,
	}
}

// timed bounds one probe to 5 seconds on top of whatever deadline or
// cancellation the request context already carries.
func (s *DiagnosticsService) timed(ctx context.Context, name string, probe func(ctx context.Context) (string, string)) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	status, message := probe(ctx)
	return CheckResult{
		Name:     name,
		Status:   status,
		Message:  message,
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}
}

func (s *DiagnosticsService) checkConfig(context.Context) (string, string) {
	if problems := s.cfg.Validate(); len(problems) > 0 {
		return CheckWarning, "Configuración incompleta: " + strings.Join(problems, "; ")
	}
	return CheckOK, "Configuración válida"
}

func (s *DiagnosticsService) checkBackend(ctx context.Context) (string, string) {
	if err := s.repos.Ping(ctx); err != nil {
		return CheckError, fmt.Sprintf("No se pudo conectar al backend %s: %v", s.repos.Backend, err)
	}
	return CheckOK, fmt.Sprintf("Conexión al backend %s establecida", s.repos.Backend)
}

func (s *DiagnosticsService) checkCache(ctx context.Context) (string, string) {
	const key = "diagnostics:probe"
	probe := []byte(time.Now().Format(time.RFC3339Nano))

	if err := s.cache.Set(ctx, key, probe, 10*time.Second); err != nil {
		return CheckWarning, fmt.Sprintf("No se pudo escribir en el cache: %v", err)
	}
	got, err := s.cache.Get(ctx, key)
	if err != nil {
		return CheckWarning, fmt.Sprintf("No se pudo leer del cache: %v", err)
	}
	if string(got) != string(probe) {
		return CheckWarning, "El cache devolvió un valor inesperado"
	}
	return CheckOK, "Cache operativo"
}

func (s *DiagnosticsService) checkCandidates(ctx context.Context) (string, string) {
	candidates, err := s.repos.Candidates.FindActive(ctx)
	if err != nil {
		return CheckError, fmt.Sprintf("No se pudieron leer los candidatos: %v", err)
	}
	if len(candidates) == 0 {
		return CheckWarning, "No hay candidatos cargados"
	}
	return CheckOK, fmt.Sprintf("%d candidatos activos", len(candidates))
}

func (s *DiagnosticsService) checkStudents(ctx context.Context) (string, string) {
	students, err := s.repos.Students.FindAll(ctx)
	if err != nil {
		return CheckError, fmt.Sprintf("No se pudieron leer los estudiantes: %v", err)
	}
	if len(students) == 0 && s.cfg.UseAuth {
		return CheckWarning, "Autenticación activada pero no hay estudiantes registrados"
	}
	return CheckOK, fmt.Sprintf("%d estudiantes activos", len(students))
}

func (s *DiagnosticsService) checkVotes(ctx context.Context) (string, string) {
	mes, ano := period.CurrentMonth(), period.CurrentYear()
	votes, err := s.repos.Votes.FindByPeriod(ctx, mes, ano)
	if err != nil {
		return CheckError, fmt.Sprintf("No se pudieron leer los votos: %v", err)
	}
	return CheckOK, fmt.Sprintf("%d votos registrados en %s %d", len(votes), mes, ano)
}
