package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
)

func newTestBackend(t *testing.T) *MemoryBackend {
	t.Helper()
	return NewMemoryBackend("", zerolog.Nop())
}

func TestMemoryStudents_SeededDemoLogin(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	s, err := b.Students().FindByCredentials(ctx, "demo", "123")
	if err != nil {
		t.Fatalf("FindByCredentials: %v", err)
	}
	if s == nil {
		t.Fatal("demo/123 should authenticate")
	}
	if !s.Active {
		t.Fatal("seeded demo student should be active")
	}

	if s, _ := b.Students().FindByCredentials(ctx, "demo", "wrong"); s != nil {
		t.Fatal("wrong password should not authenticate")
	}
	if s, _ := b.Students().FindByCredentials(ctx, "nobody", "123"); s != nil {
		t.Fatal("unknown username should not authenticate")
	}
}

func TestMemoryStudents_UsernameLookupIsCaseInsensitive(t *testing.T) {
	b := newTestBackend(t)

	s, err := b.Students().FindByUsername(context.Background(), "ANA.GARCIA")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if s == nil || s.Username != "ana.garcia" {
		t.Fatalf("FindByUsername = %+v, want ana.garcia", s)
	}
}

func TestMemoryStudents_CreateThenAuthenticate(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	created, err := b.Students().Create(ctx, model.NewStudentRequest{
		Username: "nuevo.alumno",
		Password: "secreto",
		Nombre:   "Nuevo",
		Apellido: "Alumno",
		Grado:    "2do",
		Curso:    "Ceibo",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || !created.Active {
		t.Fatalf("created student malformed: %+v", created)
	}

	s, err := b.Students().FindByCredentials(ctx, "nuevo.alumno", "secreto")
	if err != nil || s == nil {
		t.Fatalf("created student should authenticate, got (%v, %v)", s, err)
	}
}

func TestMemoryCandidates_Seeded(t *testing.T) {
	b := newTestBackend(t)

	candidates, err := b.Candidates().FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(candidates) != 10 {
		t.Fatalf("seeded candidates = %d, want 10", len(candidates))
	}

	c, err := b.Candidates().FindByID(context.Background(), "1")
	if err != nil || c == nil {
		t.Fatalf("FindByID(1) = (%v, %v)", c, err)
	}
	if c.Nombre != "Ana" || c.Apellido != "García" {
		t.Fatalf("candidate 1 = %+v", c)
	}
}

func TestMemoryVotes_SecondVoteSamePeriodConflicts(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	first := model.Vote{ID: "v1", StudentID: "student-demo", CandidateID: "1", Mes: "Enero", Ano: 2025}
	if err := b.Votes().Save(ctx, first); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	second := model.Vote{ID: "v2", StudentID: "student-demo", CandidateID: "2", Mes: "Enero", Ano: 2025}
	if err := b.Votes().Save(ctx, second); err == nil {
		t.Fatal("second vote in same period should conflict")
	}

	// A different period is fine.
	third := model.Vote{ID: "v3", StudentID: "student-demo", CandidateID: "2", Mes: "Febrero", Ano: 2025}
	if err := b.Votes().Save(ctx, third); err != nil {
		t.Fatalf("vote in new period: %v", err)
	}
}

func TestMemoryVotes_CountAndDeleteByPeriod(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	votes := []model.Vote{
		{ID: "v1", StudentID: "student-2", CandidateID: "1", Mes: "Enero", Ano: 2025},
		{ID: "v2", StudentID: "student-3", CandidateID: "1", Mes: "Enero", Ano: 2025},
		{ID: "v3", StudentID: "student-4", CandidateID: "2", Mes: "Enero", Ano: 2025},
		{ID: "v4", StudentID: "student-5", CandidateID: "1", Mes: "Febrero", Ano: 2025},
	}
	for _, v := range votes {
		if err := b.Votes().Save(ctx, v); err != nil {
			t.Fatalf("Save %s: %v", v.ID, err)
		}
	}

	counts, err := b.Votes().CountByCandidate(ctx, "Enero", 2025)
	if err != nil {
		t.Fatalf("CountByCandidate: %v", err)
	}
	if counts["1"] != 2 || counts["2"] != 1 {
		t.Fatalf("counts = %v, want 1:2 2:1", counts)
	}

	removed, err := b.Votes().DeleteByPeriod(ctx, "Enero", 2025)
	if err != nil {
		t.Fatalf("DeleteByPeriod: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}

	left, _ := b.Votes().FindByPeriod(ctx, "Febrero", 2025)
	if len(left) != 1 {
		t.Fatalf("Febrero votes = %d, want 1", len(left))
	}
}

func TestMemoryBackend_SnapshotSurvivesRestart(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "demo-state.json")
	ctx := context.Background()

	b := NewMemoryBackend(stateFile, zerolog.Nop())
	vote := model.Vote{
		ID: "v1", StudentID: "student-demo", CandidateID: "3",
		Mes: "Marzo", Ano: 2025, Timestamp: time.Now(),
	}
	if err := b.Votes().Save(ctx, vote); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := NewMemoryBackend(stateFile, zerolog.Nop())
	got, err := reloaded.Votes().FindByStudent(ctx, "student-demo", "Marzo", 2025)
	if err != nil {
		t.Fatalf("FindByStudent after reload: %v", err)
	}
	if got == nil || got.CandidateID != "3" {
		t.Fatalf("reloaded vote = %+v, want candidate 3", got)
	}
}
