// Package repository abstracts persistence for students, candidates and
// votes. Three interchangeable backends exist: the Airtable base the
// school administers, PostgreSQL for self-hosted deployments, and an
// in-memory demo backend with seed data.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/airtable"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/config"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
)

// StudentRepository looks up and registers voters.
type StudentRepository interface {
	FindByID(ctx context.Context, id string) (*model.Student, error)
	FindByUsername(ctx context.Context, username string) (*model.Student, error)
	FindByCredentials(ctx context.Context, username, password string) (*model.Student, error)
	FindAll(ctx context.Context) ([]model.Student, error)
	FindByGradeAndCourse(ctx context.Context, grado, curso string) ([]model.Student, error)
	Create(ctx context.Context, req model.NewStudentRequest) (*model.Student, error)
}

// CandidateRepository looks up and registers nominees.
type CandidateRepository interface {
	FindAll(ctx context.Context) ([]model.Candidate, error)
	FindByID(ctx context.Context, id string) (*model.Candidate, error)
	FindByGradeAndCourse(ctx context.Context, grado, curso string) ([]model.Candidate, error)
	FindActive(ctx context.Context) ([]model.Candidate, error)
	Create(ctx context.Context, req model.NewCandidateRequest) (*model.Candidate, error)
}

// VoteRepository persists ballots. FindByStudent returns (nil, nil) when
// the student has not voted in the period. DeleteByPeriod returns how many
// records were removed.
type VoteRepository interface {
	Save(ctx context.Context, vote model.Vote) error
	FindByPeriod(ctx context.Context, mes string, ano int) ([]model.Vote, error)
	FindByStudent(ctx context.Context, studentID, mes string, ano int) (*model.Vote, error)
	CountByCandidate(ctx context.Context, mes string, ano int) (map[string]int, error)
	DeleteByPeriod(ctx context.Context, mes string, ano int) (int, error)
}

// Container bundles the three repositories built for one backend.
// Pool is only set for the postgres backend; the metrics registry reads
// connection stats from it.
type Container struct {
	Students   StudentRepository
	Candidates CandidateRepository
	Votes      VoteRepository
	Backend    string
	Pool       *pgxpool.Pool

	ping  func(ctx context.Context) error
	close func()
}

// Ping verifies the backing store is reachable.
func (c *Container) Ping(ctx context.Context) error {
	if c.ping == nil {
		return nil
	}
	return c.ping(ctx)
}

// Close releases backend resources (connection pools, snapshot files).
func (c *Container) Close() {
	if c.close != nil {
		c.close()
	}
}

// Build constructs the repository container for the configured backend.
// Selection happens exactly once at startup; misconfigured Airtable
// credentials fall back to the demo backend with a warning rather than
// failing the boot.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	switch cfg.DatabaseType {
	case config.BackendAirtable:
		client := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseID)
		if !client.Configured() {
			logger.Warn().Msg("airtable credentials incomplete, falling back to demo backend")
			return buildMemory(cfg, logger)
		}
		return &Container{
			Students:   NewAirtableStudentRepo(client),
			Candidates: NewAirtableCandidateRepo(client),
			Votes:      NewAirtableVoteRepo(client),
			Backend:    config.BackendAirtable,
			ping: func(ctx context.Context) error {
				_, err := client.ListRecords(ctx, candidatesTable, airtable.ListOptions{MaxRecords: 1})
				return err
			},
		}, nil

	case config.BackendPostgres:
		pool, err := newPostgresPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := ensureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Container{
			Students:   NewPostgresStudentRepo(pool),
			Candidates: NewPostgresCandidateRepo(pool),
			Votes:      NewPostgresVoteRepo(pool),
			Backend:    config.BackendPostgres,
			Pool:       pool,
			ping:       pool.Ping,
			close:      pool.Close,
		}, nil

	case config.BackendMemory:
		return buildMemory(cfg, logger)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}
}

func buildMemory(cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	backend := NewMemoryBackend(cfg.DemoStateFile, logger)
	return &Container{
		Students:   backend.Students(),
		Candidates: backend.Candidates(),
		Votes:      backend.Votes(),
		Backend:    config.BackendMemory,
	}, nil
}
