package model

import "errors"

// Candidate is a nominee eligible to receive votes.
type Candidate struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Grado    string `json:"grado"`
	Curso    string `json:"curso"`
}

// Validate checks the entity invariants.
func (c *Candidate) Validate() error {
	switch {
	case c.ID == "":
		return errors.New("candidate id is required")
	case c.Nombre == "":
		return errors.New("candidate first name is required")
	case c.Apellido == "":
		return errors.New("candidate last name is required")
	}
	return nil
}

// FullName returns "Nombre Apellido".
func (c *Candidate) FullName() string {
	return c.Nombre + " " + c.Apellido
}

// NewCandidateRequest is the body of POST /api/candidates.
type NewCandidateRequest struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Grado    string `json:"grado"`
	Curso    string `json:"curso"`
}

// CandidateResponse is the reply to POST /api/candidates.
type CandidateResponse struct {
	Success   bool       `json:"success"`
	Candidate *Candidate `json:"candidate,omitempty"`
	Error     string     `json:"error,omitempty"`
}
