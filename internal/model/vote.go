package model

import (
	"errors"
	"time"

	"github.com/FrancoGreca/sistema-votacion-colegio/pkg/period"
)

// Vote is one ballot for a candidate in a given month/year period.
type Vote struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	CandidateID string    `json:"candidateId"`
	Mes         string    `json:"mes"`
	Ano         int       `json:"ano"`
	Timestamp   time.Time `json:"timestamp"`
}

// Validate checks the entity invariants.
func (v *Vote) Validate() error {
	switch {
	case v.ID == "":
		return errors.New("vote id is required")
	case v.StudentID == "":
		return errors.New("vote student id is required")
	case v.CandidateID == "":
		return errors.New("vote candidate id is required")
	case v.Mes == "":
		return errors.New("vote month is required")
	case v.Ano < period.MinYear:
		return errors.New("vote year is out of range")
	}
	return nil
}

// IsFromPeriod reports whether the vote belongs to the given period.
func (v *Vote) IsFromPeriod(mes string, ano int) bool {
	return v.Mes == mes && v.Ano == ano
}

// VoteRequest is the body of POST /api/votes. StudentUsername is empty for
// anonymous ballots.
type VoteRequest struct {
	StudentUsername string `json:"studentUsername,omitempty"`
	CandidateID     string `json:"candidateId"`
	Mes             string `json:"mes"`
	Ano             int    `json:"ano"`
}

// VoteResponse is the reply to POST /api/votes.
type VoteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CheckVoteResponse is the reply to GET /api/check-vote.
type CheckVoteResponse struct {
	HasVoted bool `json:"hasVoted"`
}

// ClearVotesRequest is the body of DELETE /api/votes.
type ClearVotesRequest struct {
	Mes string `json:"mes"`
	Ano int    `json:"ano"`
}

// ClearVotesResponse is the reply to the admin clear endpoints.
type ClearVotesResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Cleared int    `json:"cleared"`
}
