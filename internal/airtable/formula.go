package airtable

import (
	"fmt"
	"strings"
)

// Formula helpers build filterByFormula expressions for list calls.

// Eq matches a string field exactly.
func Eq(field, value string) string {
	return fmt.Sprintf(`{%s} = "%s"`, field, escape(value))
}

// EqLower matches a string field case-insensitively; the value must
// already be lower-cased.
func EqLower(field, value string) string {
	return fmt.Sprintf(`LOWER({%s}) = "%s"`, field, escape(value))
}

// EqInt matches a numeric field.
func EqInt(field string, value int) string {
	return fmt.Sprintf(`{%s} = %d`, field, value)
}

// IsTrue matches a checked checkbox field.
func IsTrue(field string) string {
	return fmt.Sprintf(`{%s} = TRUE()`, field)
}

// And joins conditions into a conjunction.
func And(conditions ...string) string {
	return "AND(" + strings.Join(conditions, ", ") + ")"
}

func escape(value string) string {
	return strings.ReplaceAll(value, `"`, `\"`)
}
