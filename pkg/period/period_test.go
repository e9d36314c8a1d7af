package period

import (
	"strings"
	"testing"
	"time"
)

func TestCurrentMonth_MatchesCalendar(t *testing.T) {
	got := CurrentMonth()
	want := Months[time.Now().Month()-1]
	if got != want {
		t.Fatalf("CurrentMonth() = %q, want %q", got, want)
	}
}

func TestIsValidMonth_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"Enero", "enero", "ENERO", "Septiembre"} {
		if !IsValidMonth(name) {
			t.Errorf("IsValidMonth(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "January", "Ene"} {
		if IsValidMonth(name) {
			t.Errorf("IsValidMonth(%q) = true, want false", name)
		}
	}
}

func TestIsValidYear_Range(t *testing.T) {
	if IsValidYear(2019) {
		t.Error("2019 should be rejected")
	}
	if !IsValidYear(2020) {
		t.Error("2020 should be accepted")
	}
	if !IsValidYear(CurrentYear()) {
		t.Error("current year should be accepted")
	}
	if !IsValidYear(CurrentYear() + 1) {
		t.Error("next year should be accepted")
	}
	if IsValidYear(CurrentYear() + 2) {
		t.Error("two years ahead should be rejected")
	}
}

func TestVoteID_Deterministic(t *testing.T) {
	a := VoteID("demo", "3", "Enero", 2025)
	b := VoteID("demo", "3", "Enero", 2025)
	if a != b {
		t.Fatalf("same inputs derived different ids: %q vs %q", a, b)
	}
	if a != "vote-demo-3-Enero-2025" {
		t.Fatalf("VoteID = %q, want vote-demo-3-Enero-2025", a)
	}
}

func TestAnonymousID(t *testing.T) {
	if got := AnonymousID("invitado"); got != "invitado" {
		t.Fatalf("AnonymousID with name = %q, want invitado", got)
	}
	got := AnonymousID("")
	if !strings.HasPrefix(got, "anon-") {
		t.Fatalf("AnonymousID(\"\") = %q, want anon- prefix", got)
	}
	if got == AnonymousID("") {
		t.Fatal("two minted anonymous ids should differ")
	}
}
