package repository

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
)

// demoPassword is accepted for every seeded demo account.
const demoPassword = "123"

// MemoryBackend is the demo store: seeded students and candidates, votes
// kept in memory, optionally snapshotted to a JSON file so a restart does
// not lose demo state.
type MemoryBackend struct {
	mu         sync.RWMutex
	students   []model.Student
	passwords  map[string]string
	candidates []model.Candidate
	votes      []model.Vote

	stateFile string
	logger    zerolog.Logger
}

type memorySnapshot struct {
	Students   []model.Student   `json:"students"`
	Passwords  map[string]string `json:"passwords"`
	Candidates []model.Candidate `json:"candidates"`
	Votes      []model.Vote      `json:"votes"`
}

// NewMemoryBackend builds the demo backend. When stateFile is non-empty an
// existing snapshot replaces the seed data, and every mutation rewrites it.
func NewMemoryBackend(stateFile string, logger zerolog.Logger) *MemoryBackend {
	b := &MemoryBackend{
		students:   seedStudents(),
		passwords:  seedPasswords(),
		candidates: seedCandidates(),
		stateFile:  stateFile,
		logger:     logger,
	}
	if stateFile != "" {
		b.loadSnapshot()
	}
	return b
}

func seedStudents() []model.Student {
	return []model.Student{
		{ID: "student-demo", Username: "demo", Nombre: "Estudiante", Apellido: "Demo", Grado: "1ro", Curso: "Arrayan", Active: true},
		{ID: "student-2", Username: "ana.garcia", Nombre: "Ana", Apellido: "García", Grado: "1ro", Curso: "Ceibo", Active: true},
		{ID: "student-3", Username: "carlos.lopez", Nombre: "Carlos", Apellido: "López", Grado: "2do", Curso: "Arrayan", Active: true},
		{ID: "student-4", Username: "lucia.martinez", Nombre: "Lucía", Apellido: "Martínez", Grado: "3ro", Curso: "Jacarandá", Active: true},
		{ID: "student-5", Username: "maria.fernandez", Nombre: "María", Apellido: "Fernández", Grado: "5to", Curso: "Ceibo", Active: true},
	}
}

func seedPasswords() map[string]string {
	pw := make(map[string]string)
	for _, s := range seedStudents() {
		pw[strings.ToLower(s.Username)] = demoPassword
	}
	return pw
}

func seedCandidates() []model.Candidate {
	return []model.Candidate{
		{ID: "1", Nombre: "Ana", Apellido: "García", Grado: "1ro", Curso: "Arrayan"},
		{ID: "2", Nombre: "Carlos", Apellido: "López", Grado: "1ro", Curso: "Ceibo"},
		{ID: "3", Nombre: "Lucía", Apellido: "Martínez", Grado: "2do", Curso: "Arrayan"},
		{ID: "4", Nombre: "Diego", Apellido: "Rodríguez", Grado: "2do", Curso: "Ceibo"},
		{ID: "5", Nombre: "Valentina", Apellido: "Sánchez", Grado: "3ro", Curso: "Arrayan"},
		{ID: "6", Nombre: "Joaquín", Apellido: "Pérez", Grado: "3ro", Curso: "Ceibo"},
		{ID: "7", Nombre: "Sofía", Apellido: "Ramírez", Grado: "4to", Curso: "Arrayan"},
		{ID: "8", Nombre: "Tomás", Apellido: "Díaz", Grado: "4to", Curso: "Ceibo"},
		{ID: "9", Nombre: "Emma", Apellido: "Torres", Grado: "5to", Curso: "Arrayan"},
		{ID: "10", Nombre: "Mateo", Apellido: "Vargas", Grado: "5to", Curso: "Jacarandá"},
	}
}

func (b *MemoryBackend) loadSnapshot() {
	data, err := os.ReadFile(b.stateFile)
	if err != nil {
		if !os.IsNotExist(err) {
			b.logger.Warn().Err(err).Str("file", b.stateFile).Msg("could not read demo snapshot")
		}
		return
	}
	var snap memorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		b.logger.Warn().Err(err).Str("file", b.stateFile).Msg("corrupt demo snapshot, keeping seed data")
		return
	}
	if len(snap.Students) > 0 {
		b.students = snap.Students
	}
	if len(snap.Passwords) > 0 {
		b.passwords = snap.Passwords
	}
	if len(snap.Candidates) > 0 {
		b.candidates = snap.Candidates
	}
	b.votes = snap.Votes
	b.logger.Info().Str("file", b.stateFile).Int("votes", len(b.votes)).Msg("demo snapshot loaded")
}

// saveSnapshot persists the current state. Callers hold at least a read
// lock. Failures are logged, never surfaced: demo persistence is best
// effort.
func (b *MemoryBackend) saveSnapshot() {
	if b.stateFile == "" {
		return
	}
	snap := memorySnapshot{
		Students:   b.students,
		Passwords:  b.passwords,
		Candidates: b.candidates,
		Votes:      b.votes,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		b.logger.Warn().Err(err).Msg("could not encode demo snapshot")
		return
	}
	if err := os.WriteFile(b.stateFile, data, 0o644); err != nil {
		b.logger.Warn().Err(err).Str("file", b.stateFile).Msg("could not write demo snapshot")
	}
}

// Students returns the student view of the backend.
func (b *MemoryBackend) Students() StudentRepository { return &memoryStudentRepo{b} }

// Candidates returns the candidate view of the backend.
func (b *MemoryBackend) Candidates() CandidateRepository { return &memoryCandidateRepo{b} }

// Votes returns the ballot view of the backend.
func (b *MemoryBackend) Votes() VoteRepository { return &memoryVoteRepo{b} }

type memoryStudentRepo struct {
	b *MemoryBackend
}

func (r *memoryStudentRepo) FindByID(_ context.Context, id string) (*model.Student, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	for _, s := range r.b.students {
		if s.ID == id {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryStudentRepo) FindByUsername(_ context.Context, username string) (*model.Student, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	for _, s := range r.b.students {
		if strings.EqualFold(s.Username, username) {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryStudentRepo) FindByCredentials(_ context.Context, username, password string) (*model.Student, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	stored, ok := r.b.passwords[strings.ToLower(username)]
	if !ok || stored != password {
		return nil, nil
	}
	for _, s := range r.b.students {
		if strings.EqualFold(s.Username, username) && s.Active {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryStudentRepo) FindAll(_ context.Context) ([]model.Student, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	out := make([]model.Student, 0, len(r.b.students))
	for _, s := range r.b.students {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryStudentRepo) FindByGradeAndCourse(_ context.Context, grado, curso string) ([]model.Student, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	var out []model.Student
	for _, s := range r.b.students {
		if s.Active && s.Grado == grado && s.Curso == curso {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryStudentRepo) Create(_ context.Context, req model.NewStudentRequest) (*model.Student, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	s := model.Student{
		ID:       uuid.NewString(),
		Username: req.Username,
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Grado:    req.Grado,
		Curso:    req.Curso,
		Active:   true,
	}
	r.b.students = append(r.b.students, s)
	r.b.passwords[strings.ToLower(req.Username)] = req.Password
	r.b.saveSnapshot()
	return &s, nil
}

type memoryCandidateRepo struct {
	b *MemoryBackend
}

func (r *memoryCandidateRepo) FindAll(_ context.Context) ([]model.Candidate, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	out := make([]model.Candidate, len(r.b.candidates))
	copy(out, r.b.candidates)
	return out, nil
}

func (r *memoryCandidateRepo) FindByID(_ context.Context, id string) (*model.Candidate, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	for _, c := range r.b.candidates {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryCandidateRepo) FindByGradeAndCourse(_ context.Context, grado, curso string) ([]model.Candidate, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	var out []model.Candidate
	for _, c := range r.b.candidates {
		if c.Grado == grado && c.Curso == curso {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCandidateRepo) FindActive(ctx context.Context) ([]model.Candidate, error) {
	return r.FindAll(ctx)
}

func (r *memoryCandidateRepo) Create(_ context.Context, req model.NewCandidateRequest) (*model.Candidate, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	c := model.Candidate{
		ID:       uuid.NewString(),
		Nombre:   strings.TrimSpace(req.Nombre),
		Apellido: strings.TrimSpace(req.Apellido),
		Grado:    req.Grado,
		Curso:    req.Curso,
	}
	r.b.candidates = append(r.b.candidates, c)
	r.b.saveSnapshot()
	return &c, nil
}

type memoryVoteRepo struct {
	b *MemoryBackend
}

func (r *memoryVoteRepo) Save(_ context.Context, vote model.Vote) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	for _, v := range r.b.votes {
		if v.StudentID == vote.StudentID && v.IsFromPeriod(vote.Mes, vote.Ano) {
			return domain.AlreadyVoted()
		}
	}
	if vote.Timestamp.IsZero() {
		vote.Timestamp = time.Now()
	}
	r.b.votes = append(r.b.votes, vote)
	r.b.saveSnapshot()
	return nil
}

func (r *memoryVoteRepo) FindByPeriod(_ context.Context, mes string, ano int) ([]model.Vote, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	var out []model.Vote
	for _, v := range r.b.votes {
		if v.IsFromPeriod(mes, ano) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memoryVoteRepo) FindByStudent(_ context.Context, studentID, mes string, ano int) (*model.Vote, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	for _, v := range r.b.votes {
		if v.StudentID == studentID && v.IsFromPeriod(mes, ano) {
			out := v
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryVoteRepo) CountByCandidate(_ context.Context, mes string, ano int) (map[string]int, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()
	counts := make(map[string]int)
	for _, v := range r.b.votes {
		if v.IsFromPeriod(mes, ano) {
			counts[v.CandidateID]++
		}
	}
	return counts, nil
}

func (r *memoryVoteRepo) DeleteByPeriod(_ context.Context, mes string, ano int) (int, error) {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()
	kept := r.b.votes[:0]
	removed := 0
	for _, v := range r.b.votes {
		if v.IsFromPeriod(mes, ano) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	r.b.votes = kept
	if removed > 0 {
		r.b.saveSnapshot()
	}
	return removed, nil
}
