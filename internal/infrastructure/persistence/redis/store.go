package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/JoeShih716/case-common/internal/core/ports"
	"github.com/JoeShih716/case-common/internal/infrastructure/persistence/docquery"
	pkgRedis "github.com/JoeShih716/case-common/pkg/redis"
)

const (
	// KeyCollection 每個集合 (含子集合) 一個 hash: field 為文件 ID，value 為 JSON
	KeyCollection = "doc:%s"

	maxTxRetries = 10
)

// ensure interface compliance
var _ ports.DocumentStore = (*Store)(nil)

// Store 以 Redis hash 實作 DocumentStore。
// merge 與批次寫入使用 WATCH/MULTI/EXEC，衝突時自動重試。
type Store struct {
	rds *pkgRedis.Client
}

// NewStore 建立 Redis 文件庫；client 的生命週期由 Store 接管
func NewStore(client *pkgRedis.Client) *Store {
	return &Store{rds: client}
}

func collectionKey(collection string) string {
	return fmt.Sprintf(KeyCollection, collection)
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

func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	w := ports.Write{Kind: ports.WriteSet, Collection: collection, ID: id, Data: data, Merge: merge}
	if !merge {
		p, err := docquery.Prepare(w)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(p.Data)
		if err != nil {
			return err
		}
		return s.rds.HSet(ctx, collectionKey(collection), id, string(raw))
	}
	return s.Commit(ctx, []ports.Write{w})
}

func (s *Store) Get(ctx context.Context, collection, id string) (ports.Document, bool, error) {
	if err := docquery.ValidateCollection(collection); err != nil {
		return ports.Document{}, false, err
	}
	raw, found, err := s.rds.HGet(ctx, collectionKey(collection), id)
	if err != nil || !found {
		return ports.Document{}, false, err
	}
	data, err := decode(raw)
	if err != nil {
		return ports.Document{}, false, fmt.Errorf("document %s: %w", id, err)
	}
	return ports.Document{ID: id, Data: data}, true, nil
}

// Query 讀取整個集合 hash 後在 client 端比對 filters
func (s *Store) Query(ctx context.Context, collection string, filters []ports.Filter) ([]ports.Document, error) {
	if err := docquery.ValidateCollection(collection); err != nil {
		return nil, err
	}
	compiled, err := docquery.Compile(filters)
	if err != nil {
		return nil, err
	}
	all, err := s.rds.HGetAll(ctx, collectionKey(collection))
	if err != nil {
		return nil, err
	}
	out := make([]ports.Document, 0, len(all))
	for id, raw := range all {
		data, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		if compiled.Match(data) {
			out = append(out, ports.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := docquery.Prepare(ports.Write{Kind: ports.WriteDelete, Collection: collection, ID: id}); err != nil {
		return err
	}
	return s.rds.HDel(ctx, collectionKey(collection), id)
}

// docRef 是批次中單一文件的位置
type docRef struct {
	key string
	id  string
}

// Commit 在同一個 MULTI/EXEC 中套用所有寫入。
// merge 需要先讀出現有文件，因此所有涉及的 hash 都會被 WATCH。
func (s *Store) Commit(ctx context.Context, writes []ports.Write) error {
	if len(writes) == 0 {
		return nil
	}
	prepared := make([]ports.Write, 0, len(writes))
	keySet := make(map[string]struct{})
	for _, w := range writes {
		p, err := docquery.Prepare(w)
		if err != nil {
			return err
		}
		prepared = append(prepared, p)
		keySet[collectionKey(p.Collection)] = struct{}{}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	txf := func(tx *pkgRedis.Tx) error {
		// 依序套用到本地狀態，nil 代表刪除
		state := make(map[docRef]map[string]any)
		order := make([]docRef, 0, len(prepared))
		for _, w := range prepared {
			ref := docRef{key: collectionKey(w.Collection), id: w.ID}
			cur, seen := state[ref]
			if !seen {
				order = append(order, ref)
			}
			switch {
			case w.Kind == ports.WriteDelete:
				state[ref] = nil
			case w.Merge:
				if !seen {
					loaded, err := load(ctx, tx, ref)
					if err != nil {
						return err
					}
					cur = loaded
				}
				state[ref] = docquery.Merge(cur, w.Data)
			default:
				state[ref] = w.Data
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe pkgRedis.Pipeliner) error {
			for _, ref := range order {
				data := state[ref]
				if data == nil {
					pipe.HDel(ctx, ref.key, ref.id)
					continue
				}
				raw, err := json.Marshal(data)
				if err != nil {
					return err
				}
				pipe.HSet(ctx, ref.key, ref.id, string(raw))
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rds.Watch(ctx, txf, keys...)
		if errors.Is(err, pkgRedis.ErrTxFailed) {
			continue
		}
		return err
	}
	return fmt.Errorf("commit %d writes: %w", len(writes), pkgRedis.ErrTxFailed)
}

func (s *Store) Close() error {
	return s.rds.Close()
}

func load(ctx context.Context, tx *pkgRedis.Tx, ref docRef) (map[string]any, error) {
	raw, err := tx.HGet(ctx, ref.key, ref.id).Result()
	if pkgRedis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func decode(raw string) (map[string]any, error) {
	return docquery.Decode([]byte(raw))
}
