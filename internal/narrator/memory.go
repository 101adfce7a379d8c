package narrator

import "sync"

// Entry is one remembered reflection.
type Entry struct {
	Step       int    `yaml:"step"`
	Action     string `yaml:"action"`
	Reason     string `yaml:"reason"`
	Reflection string `yaml:"reflection"`
}

// Memory is the log of failure reflections kept for one simulation.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Add(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

// Entries returns a copy of the log.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Recent returns up to n of the latest entries, oldest first.
func (m *Memory) Recent(n int) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 {
		return nil
	}
	if n > len(m.entries) {
		n = len(m.entries)
	}
	return append([]Entry(nil), m.entries[len(m.entries)-n:]...)
}
