package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/JoeShih716/case-common/internal/core/ports"
	"github.com/JoeShih716/case-common/internal/infrastructure/persistence/docquery"
)

// ensure interface compliance
var _ ports.DocumentStore = (*Store)(nil)

// Store 是 in-memory 的 DocumentStore，用於測試與本機開發。
// 以 RWMutex 模擬單一文件與批次的原子性。
type Store struct {
	mu     sync.RWMutex
	docs   map[string]map[string]map[string]any // collection path -> id -> data
	closed bool
}

// NewStore 建立空的 in-memory store
func NewStore() *Store {
	return &Store{
		docs: make(map[string]map[string]map[string]any),
	}
}

func (s *Store) NewID(_ string) string {
	return uuid.NewString()
}

func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := s.NewID(collection)
	if err := s.Set(ctx, collection, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Set(_ context.Context, collection, id string, data map[string]any, merge bool) error {
	w := ports.Write{Kind: ports.WriteSet, Collection: collection, ID: id, Data: data, Merge: merge}
	prepared, err := docquery.Prepare(w)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ports.ErrStoreClosed
	}
	s.applyLocked(prepared)
	return nil
}

func (s *Store) Get(_ context.Context, collection, id string) (ports.Document, bool, error) {
	if err := docquery.ValidateCollection(collection); err != nil {
		return ports.Document{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ports.Document{}, false, ports.ErrStoreClosed
	}
	data, ok := s.docs[collection][id]
	if !ok {
		return ports.Document{}, false, nil
	}
	return ports.Document{ID: id, Data: docquery.Clone(data)}, true, nil
}

func (s *Store) Query(_ context.Context, collection string, filters []ports.Filter) ([]ports.Document, error) {
	if err := docquery.ValidateCollection(collection); err != nil {
		return nil, err
	}
	compiled, err := docquery.Compile(filters)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ports.ErrStoreClosed
	}
	out := make([]ports.Document, 0)
	for id, data := range s.docs[collection] {
		if compiled.Match(data) {
			out = append(out, ports.Document{ID: id, Data: docquery.Clone(data)})
		}
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	w := ports.Write{Kind: ports.WriteDelete, Collection: collection, ID: id}
	prepared, err := docquery.Prepare(w)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ports.ErrStoreClosed
	}
	s.applyLocked(prepared)
	return nil
}

// Commit 先檢查並正規化所有寫入，全部通過後才在同一把鎖內套用
func (s *Store) Commit(_ context.Context, writes []ports.Write) error {
	prepared := make([]ports.Write, 0, len(writes))
	for _, w := range writes {
		p, err := docquery.Prepare(w)
		if err != nil {
			return err
		}
		prepared = append(prepared, p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ports.ErrStoreClosed
	}
	for _, w := range prepared {
		s.applyLocked(w)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Reset 清空所有資料 (測試用)
func (s *Store) Reset() {
	s.mu.Lock()
	s.docs = make(map[string]map[string]map[string]any)
	s.mu.Unlock()
}

// Len 回傳集合中的文件數
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[collection])
}

func (s *Store) applyLocked(w ports.Write) {
	coll := s.docs[w.Collection]
	switch w.Kind {
	case ports.WriteDelete:
		delete(coll, w.ID)
	case ports.WriteSet:
		if coll == nil {
			coll = make(map[string]map[string]any)
			s.docs[w.Collection] = coll
		}
		if w.Merge {
			coll[w.ID] = docquery.Merge(coll[w.ID], w.Data)
			return
		}
		coll[w.ID] = w.Data
	}
}
