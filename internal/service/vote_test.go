package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/cache"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/domain"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/repository"
	"github.com/FrancoGreca/sistema-votacion-colegio/pkg/period"
)

func newVoteFixture(t *testing.T) (*VoteService, cache.Cache) {
	t.Helper()
	backend := repository.NewMemoryBackend("", zerolog.Nop())
	repos := &repository.Container{
		Students:   backend.Students(),
		Candidates: backend.Candidates(),
		Votes:      backend.Votes(),
		Backend:    "memory",
	}
	c := cache.NewMemory(time.Minute)
	t.Cleanup(func() { c.Close() })
	return NewVoteService(repos, c, true, zerolog.Nop()), c
}

func TestVoteService_CastAndTally(t *testing.T) {
	svc, _ := newVoteFixture(t)
	ctx := context.Background()

	err := svc.Cast(ctx, model.VoteRequest{
		StudentUsername: "demo",
		CandidateID:     "1",
		Mes:             "Enero",
		Ano:             2025,
	})
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}

	counts, err := svc.Counts(ctx, "Enero", "2025")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts["1"] != 1 {
		t.Fatalf("counts = %v, want candidate 1 with 1 vote", counts)
	}
}

func TestVoteService_SecondVoteSameMonthConflicts(t *testing.T) {
	svc, _ := newVoteFixture(t)
	ctx := context.Background()

	req := model.VoteRequest{StudentUsername: "demo", CandidateID: "1", Mes: "Enero", Ano: 2025}
	if err := svc.Cast(ctx, req); err != nil {
		t.Fatalf("first Cast: %v", err)
	}

	req.CandidateID = "2"
	err := svc.Cast(ctx, req)
	var derr *domain.Error
	if !errors.As(err, &derr) {
		t.Fatalf("second Cast error = %v, want *domain.Error", err)
	}
	if derr.Status != 409 || derr.Message != "Ya votaste este mes" {
		t.Fatalf("second Cast = %+v, want 409 already-voted", derr)
	}
}

func TestVoteService_CastValidation(t *testing.T) {
	svc, _ := newVoteFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  model.VoteRequest
		code string
	}{
		{"missing fields", model.VoteRequest{Mes: "Enero"}, domain.CodeVoting},
		{"bad month", model.VoteRequest{CandidateID: "1", Mes: "January", Ano: 2025}, domain.CodeVoting},
		{"bad year", model.VoteRequest{CandidateID: "1", Mes: "Enero", Ano: 1999}, domain.CodeVoting},
		{"unknown candidate", model.VoteRequest{CandidateID: "999", Mes: "Enero", Ano: 2025}, domain.CodeNotFound},
		{"unknown student", model.VoteRequest{StudentUsername: "ghost", CandidateID: "1", Mes: "Enero", Ano: 2025}, domain.CodeNotFound},
	}
	for _, tc := range cases {
		err := svc.Cast(ctx, tc.req)
		var derr *domain.Error
		if !errors.As(err, &derr) {
			t.Fatalf("%s: error = %v, want *domain.Error", tc.name, err)
		}
		if derr.Code != tc.code {
			t.Fatalf("%s: code = %s, want %s", tc.name, derr.Code, tc.code)
		}
	}
}

func TestVoteService_AnonymousVotesDoNotConflict(t *testing.T) {
	svc, _ := newVoteFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := svc.Cast(ctx, model.VoteRequest{CandidateID: "1", Mes: "Enero", Ano: 2025})
		if err != nil {
			t.Fatalf("anonymous Cast %d: %v", i, err)
		}
	}

	counts, _ := svc.Counts(ctx, "Enero", "2025")
	if counts["1"] != 3 {
		t.Fatalf("counts = %v, want 3 anonymous votes", counts)
	}
}

func TestVoteService_CountsValidation(t *testing.T) {
	svc, _ := newVoteFixture(t)
	ctx := context.Background()

	if _, err := svc.Counts(ctx, "", ""); err == nil {
		t.Fatal("missing period should fail")
	}
	if _, err := svc.Counts(ctx, "Enero", "abc"); err == nil {
		t.Fatal("non-numeric year should fail")
	}
	if _, err := svc.Counts(ctx, "Smarch", "2025"); err == nil {
		t.Fatal("invalid month should fail")
	}
}

func TestVoteService_HasVoted(t *testing.T) {
	svc, _ := newVoteFixture(t)
	ctx := context.Background()

	voted, err := svc.HasVoted(ctx, "demo")
	if err != nil || voted {
		t.Fatalf("HasVoted before cast = (%v, %v), want (false, nil)", voted, err)
	}

	err = svc.Cast(ctx, model.VoteRequest{
		StudentUsername: "demo",
		CandidateID:     "1",
		Mes:             period.CurrentMonth(),
		Ano:             period.CurrentYear(),
	})
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}

	voted, err = svc.HasVoted(ctx, "demo")
	if err != nil || !voted {
		t.Fatalf("HasVoted after cast = (%v, %v), want (true, nil)", voted, err)
	}

	// Unknown usernames answer false, they do not error.
	voted, err = svc.HasVoted(ctx, "ghost")
	if err != nil || voted {
		t.Fatalf("HasVoted(ghost) = (%v, %v), want (false, nil)", voted, err)
	}
}

func TestVoteService_ClearCurrentMonth(t *testing.T) {
	svc, _ := newVoteFixture(t)
	ctx := context.Background()

	resp, err := svc.ClearCurrentMonth(ctx)
	if err != nil {
		t.Fatalf("ClearCurrentMonth on empty store: %v", err)
	}
	if resp.Cleared != 0 || resp.Message != "No hay votos para eliminar este mes" {
		t.Fatalf("empty clear = %+v", resp)
	}

	err = svc.Cast(ctx, model.VoteRequest{
		StudentUsername: "demo",
		CandidateID:     "1",
		Mes:             period.CurrentMonth(),
		Ano:             period.CurrentYear(),
	})
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}

	resp, err = svc.ClearCurrentMonth(ctx)
	if err != nil {
		t.Fatalf("ClearCurrentMonth: %v", err)
	}
	if resp.Cleared != 1 || resp.Message != "Votos demo eliminados" {
		t.Fatalf("demo clear = %+v", resp)
	}
}

func TestVoteService_CastInvalidatesCachedTally(t *testing.T) {
	svc, c := newVoteFixture(t)
	ctx := context.Background()

	key := cache.Key("votes", map[string]string{"mes": "Enero", "ano": "2025"})
	if err := c.Set(ctx, key, []byte(`{"1":0}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	err := svc.Cast(ctx, model.VoteRequest{StudentUsername: "demo", CandidateID: "1", Mes: "Enero", Ano: 2025})
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}

	if v, _ := c.Get(ctx, key); v != nil {
		t.Fatal("cached tally should be invalidated after a cast")
	}
}
