package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte(`{"a":1}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"a":1}`)) {
		t.Fatalf("Get = %q, want %q", got, `{"a":1}`)
	}
}

func TestMemory_MissReturnsNil(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()

	got, err := m.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("Get on absent key = %q, want nil", got)
	}
}

func TestMemory_EntryExpires(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), 30*time.Millisecond)

	if got, _ := m.Get(ctx, "k"); got == nil {
		t.Fatal("entry should be present before TTL elapses")
	}

	time.Sleep(40 * time.Millisecond)

	if got, _ := m.Get(ctx, "k"); got != nil {
		t.Fatalf("entry should be absent after TTL, got %q", got)
	}
}

func TestMemory_SweepEvictsExpired(t *testing.T) {
	m := NewMemory(20 * time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "old", []byte("v"), 10*time.Millisecond)
	m.Set(ctx, "fresh", []byte("v"), time.Minute)

	time.Sleep(60 * time.Millisecond)

	if m.Len() != 1 {
		t.Fatalf("Len = %d after sweep, want 1", m.Len())
	}
}

func TestMemory_InvalidateGlob(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "votes:Enero:2025", []byte("a"), time.Minute)
	m.Set(ctx, "votes:Enero:2025:extra", []byte("b"), time.Minute)
	m.Set(ctx, "votes:Febrero:2025", []byte("c"), time.Minute)
	m.Set(ctx, "candidates:", []byte("d"), time.Minute)

	if err := m.Invalidate(ctx, "votes:Enero:2025*"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	if got, _ := m.Get(ctx, "votes:Enero:2025"); got != nil {
		t.Error("votes:Enero:2025 should be invalidated")
	}
	if got, _ := m.Get(ctx, "votes:Enero:2025:extra"); got != nil {
		t.Error("votes:Enero:2025:extra should be invalidated")
	}
	if got, _ := m.Get(ctx, "votes:Febrero:2025"); got == nil {
		t.Error("votes:Febrero:2025 should survive")
	}
	if got, _ := m.Get(ctx, "candidates:"); got == nil {
		t.Error("candidates: should survive")
	}
}

func TestMemory_Clear(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "a", []byte("1"), time.Minute)
	m.Set(ctx, "b", []byte("2"), time.Minute)

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d after Clear, want 0", m.Len())
	}
}

func TestKey_SortsParams(t *testing.T) {
	a := Key("votes", map[string]string{"mes": "Enero", "ano": "2025"})
	b := Key("votes", map[string]string{"ano": "2025", "mes": "Enero"})
	if a != b {
		t.Fatalf("keys differ for same params: %q vs %q", a, b)
	}
	if a != "votes:ano=2025&mes=Enero" {
		t.Fatalf("Key = %q, want votes:ano=2025&mes=Enero", a)
	}
}

func TestKey_NoParams(t *testing.T) {
	if got := Key("candidates", nil); got != "candidates:" {
		t.Fatalf("Key = %q, want candidates:", got)
	}
}
