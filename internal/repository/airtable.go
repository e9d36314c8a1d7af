package repository

import (
	"context"
	"strings"
	"time"

	"github.com/FrancoGreca/sistema-votacion-colegio/internal/airtable"
	"github.com/FrancoGreca/sistema-votacion-colegio/internal/model"
)

// Airtable table names.
const (
	studentsTable   = "Students"
	candidatesTable = "Candidates"
	votesTable      = "Votes"
)

// Airtable field names.
const (
	fieldUsername    = "Username"
	fieldPassword    = "Password"
	fieldNombre      = "Nombre"
	fieldApellido    = "Apellido"
	fieldGrado       = "Grado"
	fieldCurso       = "Curso"
	fieldActive      = "Active"
	fieldVoteID      = "VoteId"
	fieldStudentID   = "StudentId"
	fieldCandidateID = "CandidateId"
	fieldMes         = "Mes"
	fieldAno         = "Ano"
	fieldTimestamp   = "Timestamp"
)

// AirtableStudentRepo maps student lookups onto the Students table.
type AirtableStudentRepo struct {
	client *airtable.Client
}

func NewAirtableStudentRepo(client *airtable.Client) *AirtableStudentRepo {
	return &AirtableStudentRepo{client: client}
}

func studentFromRecord(rec airtable.Record) model.Student {
	return model.Student{
		ID:       rec.ID,
		Username: fieldStr(rec, fieldUsername),
		Nombre:   fieldStr(rec, fieldNombre),
		Apellido: fieldStr(rec, fieldApellido),
		Grado:    fieldStr(rec, fieldGrado),
		Curso:    fieldStr(rec, fieldCurso),
		Active:   fieldBool(rec, fieldActive),
	}
}

func (r *AirtableStudentRepo) FindByID(ctx context.Context, id string) (*model.Student, error) {
	rec, err := r.client.GetRecord(ctx, studentsTable, id)
	if err != nil || rec == nil {
		return nil, err
	}
	s := studentFromRecord(*rec)
	return &s, nil
}

func (r *AirtableStudentRepo) FindByUsername(ctx context.Context, username string) (*model.Student, error) {
	records, err := r.client.ListRecords(ctx, studentsTable, airtable.ListOptions{
		FilterByFormula: airtable.EqLower(fieldUsername, strings.ToLower(username)),
		MaxRecords:      1,
	})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	s := studentFromRecord(records[0])
	return &s, nil
}

func (r *AirtableStudentRepo) FindByCredentials(ctx context.Context, username, password string) (*model.Student, error) {
	records, err := r.client.ListRecords(ctx, studentsTable, airtable.ListOptions{
		FilterByFormula: airtable.And(
			airtable.Eq(fieldUsername, username),
			airtable.Eq(fieldPassword, password),
			airtable.IsTrue(fieldActive),
		),
		MaxRecords: 1,
	})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	s := studentFromRecord(records[0])
	return &s, nil
}

func (r *AirtableStudentRepo) FindAll(ctx context.Context) ([]model.Student, error) {
	records, err := r.client.ListRecords(ctx, studentsTable, airtable.ListOptions{
		FilterByFormula: airtable.IsTrue(fieldActive),
		SortField:       fieldApellido,
	})
	if err != nil {
		return nil, err
	}
	students := make([]model.Student, 0, len(records))
	for _, rec := range records {
		students = append(students, studentFromRecord(rec))
	}
	return students, nil
}

func (r *AirtableStudentRepo) FindByGradeAndCourse(ctx context.Context, grado, curso string) ([]model.Student, error) {
	records, err := r.client.ListRecords(ctx, studentsTable, airtable.ListOptions{
		FilterByFormula: airtable.And(
			airtable.Eq(fieldGrado, grado),
			airtable.Eq(fieldCurso, curso),
			airtable.IsTrue(fieldActive),
		),
		SortField: fieldApellido,
	})
	if err != nil {
		return nil, err
	}
	students := make([]model.Student, 0, len(records))
	for _, rec := range records {
		students = append(students, studentFromRecord(rec))
	}
	return students, nil
}

func (r *AirtableStudentRepo) Create(ctx context.Context, req model.NewStudentRequest) (*model.Student, error) {
	rec, err := r.client.CreateRecord(ctx, studentsTable, map[string]any{
		fieldUsername: req.Username,
		fieldPassword: req.Password,
		fieldNombre:   req.Nombre,
		fieldApellido: req.Apellido,
		fieldGrado:    req.Grado,
		fieldCurso:    req.Curso,
		fieldActive:   true,
	})
	if err != nil {
		return nil, err
	}
	s := studentFromRecord(*rec)
	return &s, nil
}

// AirtableCandidateRepo maps candidate lookups onto the Candidates table.
type AirtableCandidateRepo struct {
	client *airtable.Client
}

func NewAirtableCandidateRepo(client *airtable.Client) *AirtableCandidateRepo {
	return &AirtableCandidateRepo{client: client}
}

func candidateFromRecord(rec airtable.Record) model.Candidate {
	return model.Candidate{
		ID:       rec.ID,
		Nombre:   fieldStr(rec, fieldNombre),
		Apellido: fieldStr(rec, fieldApellido),
		Grado:    fieldStr(rec, fieldGrado),
		Curso:    fieldStr(rec, fieldCurso),
	}
}

func (r *AirtableCandidateRepo) FindAll(ctx context.Context) ([]model.Candidate, error) {
	records, err := r.client.ListRecords(ctx, candidatesTable, airtable.ListOptions{
		SortField: fieldApellido,
	})
	if err != nil {
		return nil, err
	}
	candidates := make([]model.Candidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, candidateFromRecord(rec))
	}
	return candidates, nil
}

func (r *AirtableCandidateRepo) FindByID(ctx context.Context, id string) (*model.Candidate, error) {
	rec, err := r.client.GetRecord(ctx, candidatesTable, id)
	if err != nil || rec == nil {
		return nil, err
	}
	c := candidateFromRecord(*rec)
	return &c, nil
}

func (r *AirtableCandidateRepo) FindByGradeAndCourse(ctx context.Context, grado, curso string) ([]model.Candidate, error) {
	records, err := r.client.ListRecords(ctx, candidatesTable, airtable.ListOptions{
		FilterByFormula: airtable.And(
			airtable.Eq(fieldGrado, grado),
			airtable.Eq(fieldCurso, curso),
		),
		SortField: fieldApellido,
	})
	if err != nil {
		return nil, err
	}
	candidates := make([]model.Candidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, candidateFromRecord(rec))
	}
	return candidates, nil
}

func (r *AirtableCandidateRepo) FindActive(ctx context.Context) ([]model.Candidate, error) {
	records, err := r.client.ListRecords(ctx, candidatesTable, airtable.ListOptions{
		FilterByFormula: airtable.IsTrue(fieldActive),
		SortField:       fieldApellido,
	})
	if err != nil {
		return nil, err
	}
	candidates := make([]model.Candidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, candidateFromRecord(rec))
	}
	return candidates, nil
}

func (r *AirtableCandidateRepo) Create(ctx context.Context, req model.NewCandidateRequest) (*model.Candidate, error) {
	rec, err := r.client.CreateRecord(ctx, candidatesTable, map[string]any{
		fieldNombre:   strings.TrimSpace(req.Nombre),
		fieldApellido: strings.TrimSpace(req.Apellido),
		fieldGrado:    req.Grado,
		fieldCurso:    req.Curso,
		fieldActive:   true,
	})
	if err != nil {
		return nil, err
	}
	c := candidateFromRecord(*rec)
	return &c, nil
}

// AirtableVoteRepo maps ballot operations onto the Votes table. Airtable
// has no conditional writes, so period uniqueness relies on the service's
// read-before-write check.
type AirtableVoteRepo struct {
	client *airtable.Client
}

func NewAirtableVoteRepo(client *airtable.Client) *AirtableVoteRepo {
	return &AirtableVoteRepo{client: client}
}

func voteFromRecord(rec airtable.Record) model.Vote {
	id := fieldStr(rec, fieldVoteID)
	if id == "" {
		id = rec.ID
	}
	ts, err := time.Parse(time.RFC3339, fieldStr(rec, fieldTimestamp))
	if err != nil {
		ts = time.Now()
	}
	return model.Vote{
		ID:          id,
		StudentID:   fieldStr(rec, fieldStudentID),
		CandidateID: fieldStr(rec, fieldCandidateID),
		Mes:         fieldStr(rec, fieldMes),
		Ano:         fieldInt(rec, fieldAno),
		Timestamp:   ts,
	}
}

func (r *AirtableVoteRepo) Save(ctx context.Context, vote model.Vote) error {
	_, err := r.client.CreateRecord(ctx, votesTable, map[string]any{
		fieldVoteID:      vote.ID,
		fieldStudentID:   vote.StudentID,
		fieldCandidateID: vote.CandidateID,
		fieldMes:         vote.Mes,
		fieldAno:         vote.Ano,
		fieldTimestamp:   vote.Timestamp.UTC().Format(time.RFC3339),
	})
	return err
}

func (r *AirtableVoteRepo) FindByPeriod(ctx context.Context, mes string, ano int) ([]model.Vote, error) {
	records, err := r.client.ListRecords(ctx, votesTable, airtable.ListOptions{
		FilterByFormula: airtable.And(
			airtable.Eq(fieldMes, mes),
			airtable.EqInt(fieldAno, ano),
		),
		SortField: fieldTimestamp,
		SortDesc:  true,
	})
	if err != nil {
		return nil, err
	}
	votes := make([]model.Vote, 0, len(records))
	for _, rec := range records {
		votes = append(votes, voteFromRecord(rec))
	}
	return votes, nil
}

func (r *AirtableVoteRepo) FindByStudent(ctx context.Context, studentID, mes string, ano int) (*model.Vote, error) {
	records, err := r.client.ListRecords(ctx, votesTable, airtable.ListOptions{
		FilterByFormula: airtable.And(
			airtable.Eq(fieldStudentID, studentID),
			airtable.Eq(fieldMes, mes),
			airtable.EqInt(fieldAno, ano),
		),
		MaxRecords: 1,
	})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	v := voteFromRecord(records[0])
	return &v, nil
}

func (r *AirtableVoteRepo) CountByCandidate(ctx context.Context, mes string, ano int) (map[string]int, error) {
	votes, err := r.FindByPeriod(ctx, mes, ano)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, v := range votes {
		counts[v.CandidateID]++
	}
	return counts, nil
}

func (r *AirtableVoteRepo) DeleteByPeriod(ctx context.Context, mes string, ano int) (int, error) {
	records, err := r.client.ListRecords(ctx, votesTable, airtable.ListOptions{
		FilterByFormula: airtable.And(
			airtable.Eq(fieldMes, mes),
			airtable.EqInt(fieldAno, ano),
		),
	})
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	if err := r.client.DeleteRecords(ctx, votesTable, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func fieldStr(rec airtable.Record, name string) string {
	if v, ok := rec.Fields[name].(string); ok {
		return v
	}
	return ""
}

func fieldBool(rec airtable.Record, name string) bool {
	if v, ok := rec.Fields[name].(bool); ok {
		return v
	}
	return false
}

func fieldInt(rec airtable.Record, name string) int {
	if v, ok := rec.Fields[name].(float64); ok {
		return int(v)
	}
	return 0
}
