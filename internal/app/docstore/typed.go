package docstore

import (
	"context"
	"fmt"

	"github.com/JoeShih716/case-common/internal/core/domain"
	"github.com/JoeShih716/case-common/internal/core/ports"
)

// RecordPtr 限制型別參數為「指向記錄的指標」，讓泛型函式可以配置新的記錄。
//
//	w, err := docstore.FetchByID[domain.Wallet](ctx, svc, id) // w 為 *domain.Wallet
type RecordPtr[T any] interface {
	*T
	domain.Record
}

// collectionOf 透過零值取得集合名稱
func collectionOf[T any, PT RecordPtr[T]]() string {
	var zero T
	return PT(&zero).CollectionName()
}

func decodeDocs[T any, PT RecordPtr[T]](docs []ports.Document) ([]PT, error) {
	out := make([]PT, 0, len(docs))
	for _, doc := range docs {
		rec := PT(new(T))
		if err := domain.Decode(doc.ID, doc.Data, rec); err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// FetchByID 依 ID 讀取記錄。
//
// 回傳值:
//
//	PT: 文件不存在時為 nil (不是錯誤)
//	error: 連線或解碼失敗時回傳 *StoreError
func FetchByID[T any, PT RecordPtr[T]](ctx context.Context, s *Service, id string) (PT, error) {
	coll := collectionOf[T, PT]()
	doc, found, err := s.store.Get(ctx, coll, id)
	if err != nil {
		return nil, docErr(OpFetchByID, coll, id, err)
	}
	if !found {
		return nil, nil
	}
	rec := PT(new(T))
	if err := domain.Decode(doc.ID, doc.Data, rec); err != nil {
		return nil, docErr(OpFetchByID, coll, id, err)
	}
	return rec, nil
}

// FetchAll 回傳集合中所有符合 filters (AND) 的記錄；沒有 filters 時回傳整個集合。順序不保證
func FetchAll[T any, PT RecordPtr[T]](ctx context.Context, s *Service, filters ...ports.Filter) ([]PT, error) {
	coll := collectionOf[T, PT]()
	return fetchAll[T, PT](ctx, s, coll, OpFetchAll, filters)
}

func fetchAll[T any, PT RecordPtr[T]](ctx context.Context, s *Service, coll string, op Op, filters []ports.Filter) ([]PT, error) {
	docs, err := s.store.Query(ctx, coll, filters)
	if err != nil {
		return nil, storeErr(op, coll, err)
	}
	recs, err := decodeDocs[T, PT](docs)
	if err != nil {
		return nil, storeErr(op, coll, err)
	}
	return recs, nil
}

// FetchOne 查詢至多一筆記錄。
// 沒有符合時回傳 (nil, nil)；超過一筆時回傳包裝 ErrNotUnique 的 *StoreError，不會任意挑選其中一筆。
func FetchOne[T any, PT RecordPtr[T]](ctx context.Context, s *Service, filters ...ports.Filter) (PT, error) {
	coll := collectionOf[T, PT]()
	recs, err := fetchAll[T, PT](ctx, s, coll, OpFetchOne, filters)
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 0:
		return nil, nil
	case 1:
		return recs[0], nil
	default:
		return nil, storeErr(OpFetchOne, coll, fmt.Errorf("%w, but found %d", ErrNotUnique, len(recs)))
	}
}

// Delete 刪除文件；文件不存在時不回傳錯誤
func Delete[T any, PT RecordPtr[T]](ctx context.Context, s *Service, id string) error {
	coll := collectionOf[T, PT]()
	if err := s.store.Delete(ctx, coll, id); err != nil {
		return docErr(OpDelete, coll, id, err)
	}
	s.logger.DebugContext(ctx, "document deleted", "collection", coll, "id", id)
	return nil
}

// BatchDelete 以單一批次刪除多份文件
func BatchDelete[T any, PT RecordPtr[T]](ctx context.Context, s *Service, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	coll := collectionOf[T, PT]()
	writes := make([]ports.Write, 0, len(ids))
	for _, id := range ids {
		writes = append(writes, ports.Write{Kind: ports.WriteDelete, Collection: coll, ID: id})
	}
	if err := s.store.Commit(ctx, writes); err != nil {
		return storeErr(OpBatchDelete, coll, err)
	}
	s.logger.InfoContext(ctx, "batch delete committed", "collection", coll, "count", len(ids))
	return nil
}

// AddToSubcollection 將 child 寫入 {Parent 集合}/{parentID}/{child 集合}，回傳新文件 ID。
// child 的 ID 也會一併寫回。
//
//	id, err := docstore.AddToSubcollection[domain.UserInfo](ctx, svc, userID, inventory)
func AddToSubcollection[P any, PP RecordPtr[P]](ctx context.Context, s *Service, parentID string, child domain.Record) (string, error) {
	coll := subcollectionPath(collectionOf[P, PP](), parentID, child.CollectionName())
	if err := checkWrite(child, false); err != nil {
		return "", storeErr(OpAddToSubcollection, coll, err)
	}
	id, err := s.store.Add(ctx, coll, child.Fields())
	if err != nil {
		return "", storeErr(OpAddToSubcollection, coll, err)
	}
	child.SetID(id)
	return id, nil
}

// FetchSubcollection 讀取 {Parent 集合}/{parentID}/{C 集合} 下符合 filters 的記錄
//
//	items, err := docstore.FetchSubcollection[domain.UserInfo, domain.Inventory](ctx, svc, userID)
func FetchSubcollection[P any, C any, PP RecordPtr[P], PC RecordPtr[C]](ctx context.Context, s *Service, parentID string, filters ...ports.Filter) ([]PC, error) {
	coll := subcollectionPath(collectionOf[P, PP](), parentID, collectionOf[C, PC]())
	return fetchAll[C, PC](ctx, s, coll, OpFetchAll, filters)
}
