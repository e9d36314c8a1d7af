package cache

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the background sweep evicts expired
// entries.
const DefaultSweepInterval = time.Minute

type memoryEntry struct {
	value  []byte
	expiry time.Time
}

// Memory is an in-process cache with per-entry TTL, lazy expiry on Get and
// a periodic sweep bounding memory. State is lost on restart and not
// shared across processes.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	done    chan struct{}
	once    sync.Once
}

// NewMemory creates a memory cache and starts its sweep goroutine.
func NewMemory(sweepInterval time.Duration) *Memory {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	m := &Memory{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go m.sweep(sweepInterval)
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if time.Now().After(e.expiry) {
		delete(m.entries, key)
		return nil, nil
	}
	return e.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiry: time.Now().Add(ttl)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, pattern string) error {
	re, err := globToRegexp(pattern)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if re.MatchString(key) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry)
	return nil
}

// Close stops the sweep goroutine and drops all entries.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.done) })
	return m.Clear(context.Background())
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, e := range m.entries {
				if now.After(e.expiry) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

// globToRegexp converts a glob pattern to an unanchored regexp where each
// "*" matches any run of characters.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile(strings.Join(parts, ".*"))
}
