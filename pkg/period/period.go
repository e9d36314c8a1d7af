package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Months holds the Spanish month names in the format stored in the Votes
// table ("Mes" field).
var Months = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MinYear is the earliest year a vote can belong to.
const MinYear = 2020

// CurrentMonth returns the Spanish name of the current month.
func CurrentMonth() string {
	return Months[time.Now().Month()-1]
}

// CurrentYear returns the current year.
func CurrentYear() int {
	return time.Now().Year()
}

// IsValidMonth reports whether name is one of the twelve Spanish month
// names, ignoring case.
func IsValidMonth(name string) bool {
	for _, m := range Months {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// IsValidYear reports whether year falls in the accepted voting range
// (2020 through next year).
func IsValidYear(year int) bool {
	return year >= MinYear && year <= CurrentYear()+1
}

// VoteID derives the identifier for a vote from the voter, the candidate
// and the period. The same (voter, candidate, period) always derives the
// same id.
func VoteID(voterID, candidateID, mes string, ano int) string {
	return fmt.Sprintf("vote-%s-%s-%s-%d", voterID, candidateID, mes, ano)
}

// AnonymousID returns a voter identifier for an unauthenticated ballot.
// A client-supplied name is used as-is; otherwise a random id is minted.
func AnonymousID(name string) string {
	if name != "" {
		return name
	}
	return "anon-" + uuid.NewString()
}
