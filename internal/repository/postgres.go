package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
)

const (
	pgMaxRetries    = 5
	pgRetryInterval = 2 * time.Second
)

func newPostgresPool(ctx context.Context, databaseURL string, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= pgMaxRetries; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				logger.Info().Msg("database connected")
				return pool, nil
			} else {
				pool.Close()
				err = pingErr
			}
		}

		logger.Warn().Err(err).Msgf("database connection attempt %d/%d failed", attempt, pgMaxRetries)
		if attempt < pgMaxRetries {
			time.Sleep(pgRetryInterval)
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", pgMaxRetries, err)
}

// ensureSchema creates the tables on first boot. The unique index on
// (student_id, mes, ano) makes the one-vote-per-period rule atomic on
// this backend.
func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS students (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			nombre        TEXT NOT NULL,
			apellido      TEXT NOT NULL,
			grado         TEXT NOT NULL DEFAULT '',
			curso         TEXT NOT NULL DEFAULT '',
			active        BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS students_username_lower
			ON students (LOWER(username))`,
		`CREATE TABLE IF NOT EXISTS candidates (
			id       TEXT PRIMARY KEY,
			nombre   TEXT NOT NULL,
			apellido TEXT NOT NULL,
			grado    TEXT NOT NULL DEFAULT '',
			curso    TEXT NOT NULL DEFAULT '',
			active   BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			id           TEXT PRIMARY KEY,
			student_id   TEXT NOT NULL,
			candidate_id TEXT NOT NULL,
			mes          TEXT NOT NULL,
			ano          INT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS votes_student_period
			ON votes (student_id, mes, ano)`,
		`CREATE INDEX IF NOT EXISTS votes_period ON votes (mes, ano)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// PostgresStudentRepo stores students in the students table with bcrypt
// password hashes.
type PostgresStudentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresStudentRepo(pool *pgxpool.Pool) *PostgresStudentRepo {
	return &PostgresStudentRepo{pool: pool}
}

const studentColumns = `id, username, nombre, apellido, grado, curso, active`

func scanStudent(row pgx.Row) (*model.Student, error) {
	var s model.Student
	err := row.Scan(&s.ID, &s.Username, &s.Nombre, &s.Apellido, &s.Grado, &s.Curso, &s.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresStudentRepo) FindByID(ctx context.Context, id string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
}

func (r *PostgresStudentRepo) FindByUsername(ctx context.Context, username string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE LOWER(username) = LOWER($1)`, username))
}

func (r *PostgresStudentRepo) FindByCredentials(ctx context.Context, username, password string) (*model.Student, error) {
	var (
		s    model.Student
		hash string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+`, password_hash
		 FROM students
		 WHERE LOWER(username) = LOWER($1) AND active = TRUE`, username).
		Scan(&s.ID, &s.Username, &s.Nombre, &s.Apellido, &s.Grado, &s.Curso, &s.Active, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, nil
	}
	return &s, nil
}

func (r *PostgresStudentRepo) FindAll(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE active = TRUE ORDER BY apellido`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStudents(rows)
}

func (r *PostgresStudentRepo) FindByGradeAndCourse(ctx context.Context, grado, curso string) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+`
		 FROM students
		 WHERE grado = $1 AND curso = $2 AND active = TRUE
		 ORDER BY apellido`, grado, curso)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStudents(rows)
}

func (r *PostgresStudentRepo) Create(ctx context.Context, req model.NewStudentRequest) (*model.Student, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s := model.Student{
		ID:       uuid.NewString(),
		Username: req.Username,
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Grado:    req.Grado,
		Curso:    req.Curso,
		Active:   true,
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO students (id, username, password_hash, nombre, apellido, grado, curso, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`,
		s.ID, s.Username, string(hash), s.Nombre, s.Apellido, s.Grado, s.Curso)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectStudents(rows pgx.Rows) ([]model.Student, error) {
	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Username, &s.Nombre, &s.Apellido, &s.Grado, &s.Curso, &s.Active); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// PostgresCandidateRepo stores candidates in the candidates table.
type PostgresCandidateRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCandidateRepo(pool *pgxpool.Pool) *PostgresCandidateRepo {
	return &PostgresCandidateRepo{pool: pool}
}

const candidateColumns = `id, nombre, apellido, grado, curso`

func (r *PostgresCandidateRepo) FindAll(ctx context.Context) ([]model.Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY apellido`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCandidates(rows)
}

func (r *PostgresCandidateRepo) FindByID(ctx context.Context, id string) (*model.Candidate, error) {
	var c model.Candidate
	err := r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id).
		Scan(&c.ID, &c.Nombre, &c.Apellido, &c.Grado, &c.Curso)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCandidateRepo) FindByGradeAndCourse(ctx context.Context, grado, curso string) ([]model.Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+candidateColumns+`
		 FROM candidates
		 WHERE grado = $1 AND curso = $2
		 ORDER BY apellido`, grado, curso)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCandidates(rows)
}

func (r *PostgresCandidateRepo) FindActive(ctx context.Context) ([]model.Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE active = TRUE ORDER BY apellido`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCandidates(rows)
}

func (r *PostgresCandidateRepo) Create(ctx context.Context, req model.NewCandidateRequest) (*model.Candidate, error) {
	c := model.Candidate{
		ID:       uuid.NewString(),
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Grado:    req.Grado,
		Curso:    req.Curso,
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO candidates (id, nombre, apellido, grado, curso, active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)`,
		c.ID, c.Nombre, c.Apellido, c.Grado, c.Curso)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCandidates(rows pgx.Rows) ([]model.Candidate, error) {
	var candidates []model.Candidate
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Apellido, &c.Grado, &c.Curso); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// PostgresVoteRepo stores ballots. Save is an atomic conditional insert:
// the unique index on (student_id, mes, ano) turns a duplicate into the
// already-voted conflict even under concurrent requests.
type PostgresVoteRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresVoteRepo(pool *pgxpool.Pool) *PostgresVoteRepo {
	return &PostgresVoteRepo{pool: pool}
}

func (r *PostgresVoteRepo) Save(ctx context.Context, vote model.Vote) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO votes (id, student_id, candidate_id, mes, ano, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (student_id, mes, ano) DO NOTHING`,
		vote.ID, vote.StudentID, vote.CandidateID, vote.Mes, vote.Ano, vote.Timestamp)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.AlreadyVoted()
	}
	return nil
}

func (r *PostgresVoteRepo) FindByPeriod(ctx context.Context, mes string, ano int) ([]model.Vote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, candidate_id, mes, ano, created_at
		 FROM votes
		 WHERE mes = $1 AND ano = $2
		 ORDER BY created_at DESC`, mes, ano)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(&v.ID, &v.StudentID, &v.CandidateID, &v.Mes, &v.Ano, &v.Timestamp); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (r *PostgresVoteRepo) FindByStudent(ctx context.Context, studentID, mes string, ano int) (*model.Vote, error) {
	var v model.Vote
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, candidate_id, mes, ano, created_at
		 FROM votes
		 WHERE student_id = $1 AND mes = $2 AND ano = $3`,
		studentID, mes, ano).
		Scan(&v.ID, &v.StudentID, &v.CandidateID, &v.Mes, &v.Ano, &v.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PostgresVoteRepo) CountByCandidate(ctx context.Context, mes string, ano int) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT candidate_id, COUNT(*)
		 FROM votes
		 WHERE mes = $1 AND ano = $2
		 GROUP BY candidate_id`, mes, ano)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			candidateID string
			count       int
		)
		if err := rows.Scan(&candidateID, &count); err != nil {
			return nil, err
		}
		counts[candidateID] = count
	}
	return counts, rows.Err()
}

func (r *PostgresVoteRepo) DeleteByPeriod(ctx context.Context, mes string, ano int) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM votes WHERE mes = $1 AND ano = $2`, mes, ano)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
