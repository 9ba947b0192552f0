package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/JoeShih716/case-common/internal/core/domain"
	"github.com/JoeShih716/case-common/internal/core/ports"
)

// Service 提供與記錄型別無關的 CRUD 與批次操作。
// 它不持有任何鎖，原子性完全依賴底層 DocumentStore (單一文件與批次)。
type Service struct {
	store  ports.DocumentStore
	logger *slog.Logger
}

// NewService 建立存取層
//
// 參數:
//
//	store: ports.DocumentStore - 已連線的文件資料庫 (由呼叫端建立並傳入)
//	logger: *slog.Logger - nil 時使用 slog.Default()
func NewService(store ports.DocumentStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Create 以自動產生的 ID 新增文件，成功後把 ID 寫回記錄。
// 只有記錄中已設定的欄位會被寫入。
func (s *Service) Create(ctx context.Context, rec domain.Record) error {
	coll := rec.CollectionName()
	if err := checkWrite(rec, false); err != nil {
		return storeErr(OpCreate, coll, err)
	}
	id, err := s.store.Add(ctx, coll, rec.Fields())
	if err != nil {
		return storeErr(OpCreate, coll, err)
	}
	rec.SetID(id)
	s.logger.DebugContext(ctx, "document created", "collection", coll, "id", id)
	return nil
}

// CreateWithID 以指定 ID 寫入文件；同 ID 的既有文件會被整份覆寫
func (s *Service) CreateWithID(ctx context.Context, id string, rec domain.Record) error {
	coll := rec.CollectionName()
	if err := checkWrite(rec, false); err != nil {
		return docErr(OpCreateWithID, coll, id, err)
	}
	if err := s.store.Set(ctx, coll, id, rec.Fields(), false); err != nil {
		return docErr(OpCreateWithID, coll, id, err)
	}
	rec.SetID(id)
	s.logger.DebugContext(ctx, "document written", "collection", coll, "id", id)
	return nil
}

// Update 以 merge 方式更新文件: 只寫入記錄中已設定的欄位，其餘欄位保持不變。
// 記錄必須處於追蹤狀態 (NewXxx、Decode 或 domain.Partial 取得)，否則回傳 ErrUntrackedRecord。
//
// 回傳值:
//
//	map[string]any: 實際寫入的欄位，並附上 "id"
//	error: *StoreError
func (s *Service) Update(ctx context.Context, id string, rec domain.Record) (map[string]any, error) {
	coll := rec.CollectionName()
	if err := checkWrite(rec, true); err != nil {
		return nil, docErr(OpUpdate, coll, id, err)
	}
	data := rec.Fields()
	if err := s.store.Set(ctx, coll, id, data, true); err != nil {
		return nil, docErr(OpUpdate, coll, id, err)
	}
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out[domain.KeyID] = id
	return out, nil
}

// BatchAdd 為每筆記錄產生 ID 並以單一批次寫入。
// 批次提交成功後才會把 ID 寫回記錄；失敗時沒有任何文件被寫入。
func (s *Service) BatchAdd(ctx context.Context, recs ...domain.Record) error {
	if len(recs) == 0 {
		return nil
	}
	for i, rec := range recs {
		if err := checkWrite(rec, false); err != nil {
			return storeErr(OpBatchAdd, rec.CollectionName(), fmt.Errorf("index %d: %w", i, err))
		}
	}
	ids := make([]string, len(recs))
	writes := make([]ports.Write, 0, len(recs))
	for i, rec := range recs {
		coll := rec.CollectionName()
		ids[i] = s.store.NewID(coll)
		writes = append(writes, ports.Write{
			Kind:       ports.WriteSet,
			Collection: coll,
			ID:         ids[i],
			Data:       rec.Fields(),
		})
	}
	if err := s.store.Commit(ctx, writes); err != nil {
		return storeErr(OpBatchAdd, collectionsOf(recs), err)
	}
	for i, rec := range recs {
		rec.SetID(ids[i])
	}
	s.logger.InfoContext(ctx, "batch add committed", "collection", collectionsOf(recs), "count", len(recs))
	return nil
}

// BatchUpdate 以 merge 方式批次更新。
// 每筆記錄都必須已有 ID，任一筆缺少時在送出任何寫入前就回傳錯誤。
func (s *Service) BatchUpdate(ctx context.Context, recs ...domain.Record) error {
	if len(recs) == 0 {
		return nil
	}
	for i, rec := range recs {
		if rec.GetID() == "" {
			return storeErr(OpBatchUpdate, rec.CollectionName(), fmt.Errorf("%w (index %d)", ErrMissingID, i))
		}
		if err := checkWrite(rec, true); err != nil {
			return docErr(OpBatchUpdate, rec.CollectionName(), rec.GetID(), fmt.Errorf("index %d: %w", i, err))
		}
	}
	writes := make([]ports.Write, 0, len(recs))
	for _, rec := range recs {
		writes = append(writes, ports.Write{
			Kind:       ports.WriteSet,
			Collection: rec.CollectionName(),
			ID:         rec.GetID(),
			Data:       rec.Fields(),
			Merge:      true,
		})
	}
	if err := s.store.Commit(ctx, writes); err != nil {
		return storeErr(OpBatchUpdate, collectionsOf(recs), err)
	}
	s.logger.InfoContext(ctx, "batch update committed", "collection", collectionsOf(recs), "count", len(recs))
	return nil
}

// Close 關閉底層連線
func (s *Service) Close() error {
	return s.store.Close()
}

// checkWrite 在送出寫入前檢查記錄: merge 寫入要求追蹤狀態，所有寫入都驗證即將寫入的欄位
func checkWrite(rec domain.Record, merge bool) error {
	if merge && !rec.Tracked() {
		return ErrUntrackedRecord
	}
	return domain.Validate(rec)
}

// subcollectionPath 組出 {parent}/{parentID}/{child} 路徑
func subcollectionPath(parent, parentID, child string) string {
	return path.Join(parent, parentID, child)
}

func collectionsOf(recs []domain.Record) string {
	seen := make(map[string]struct{}, len(recs))
	names := make([]string, 0, 1)
	for _, rec := range recs {
		name := rec.CollectionName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
