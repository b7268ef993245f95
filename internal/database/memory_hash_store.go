package database

import (
	"context"
	"sort"
	"sync"

	"prompt-server/internal/interfaces"
)

var _ interfaces.HashStore = (*MemoryHashStore)(nil)

// MemoryHashStore - HashStore в памяти процесса (STORE_BACKEND=memory и тесты).
// Одиночные операции атомарны так же, как в Redis.
type MemoryHashStore struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
}

func NewMemoryHashStore() *MemoryHashStore {
	return &MemoryHashStore{hashes: make(map[string]map[string]string)}
}

func (s *MemoryHashStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[key]
	return ok, nil
}

func (s *MemoryHashStore) HGet(_ context.Context, key, field string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.hashes[key][field]
	return val, ok, nil
}

func (s *MemoryHashStore) HSet(_ context.Context, key string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hashLocked(key)
	for field, value := range values {
		h[field] = value
	}
	return nil
}

func (s *MemoryHashStore) HSetNX(_ context.Context, key, field, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hashLocked(key)
	if _, taken := h[field]; taken {
		return false, nil
	}
	h[field] = value
	return true, nil
}

func (s *MemoryHashStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.hashes[key]))
	for field, value := range s.hashes[key] {
		out[field] = value
	}
	return out, nil
}

// HScan делает снимок полей на момент вызова, как один проход курсора.
func (s *MemoryHashStore) HScan(_ context.Context, key string) interfaces.HashIterator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields := make([]string, 0, len(s.hashes[key]))
	for field := range s.hashes[key] {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	values := make([]string, len(fields))
	for i, field := range fields {
		values[i] = s.hashes[key][field]
	}
	return &memoryHashIterator{fields: fields, values: values, pos: -1}
}

func (s *MemoryHashStore) hashLocked(key string) map[string]string {
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	return h
}

type memoryHashIterator struct {
	fields []string
	values []string
	pos    int
	err    error
}

func (i *memoryHashIterator) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		i.err = err
		return false
	}
	if i.pos+1 >= len(i.fields) {
		return false
	}
	i.pos++
	return true
}

func (i *memoryHashIterator) Field() string { return i.fields[i.pos] }
func (i *memoryHashIterator) Value() string { return i.values[i.pos] }
func (i *memoryHashIterator) Err() error    { return i.err }
