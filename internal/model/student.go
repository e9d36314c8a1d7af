package model

import "errors"

// Student is a registered voter. Field names follow the API contract the
// school frontend speaks (Spanish keys).
type Student struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Grado    string `json:"grado"`
	Curso    string `json:"curso"`
	Active   bool   `json:"active"`
}

// Validate checks the entity invariants.
func (s *Student) Validate() error {
	switch {
	case s.ID == "":
		return errors.New("student id is required")
	case s.Username == "":
		return errors.New("student username is required")
	case s.Nombre == "":
		return errors.New("student first name is required")
	case s.Apellido == "":
		return errors.New("student last name is required")
	}
	return nil
}

// FullName returns "Nombre Apellido".
func (s *Student) FullName() string {
	return s.Nombre + " " + s.Apellido
}

// CanVote reports whether the student is allowed to cast a ballot.
func (s *Student) CanVote() bool {
	return s.Active
}

// LoginRequest is the body of POST /api/auth.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the reply to POST /api/auth. Student is only populated
// on success.
type LoginResponse struct {
	Success bool     `json:"success"`
	Student *Student `json:"student,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// NewStudentRequest is the body of POST /api/students.
type NewStudentRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Grado    string `json:"grado"`
	Curso    string `json:"curso"`
}

// StudentResponse is the reply to POST /api/students.
type StudentResponse struct {
	Success bool     `json:"success"`
	Student *Student `json:"student,omitempty"`
	Error   string   `json:"error,omitempty"`
}
