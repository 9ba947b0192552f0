package docstore

import (
	"errors"
	"fmt"
)

// Op 標示失敗的存取操作
type Op string

const (
	OpCreate             Op = "create"
	OpCreateWithID       Op = "create_with_id"
	OpFetchByID          Op = "fetch_by_id"
	OpFetchAll           Op = "fetch_all"
	OpFetchOne           Op = "fetch_one"
	OpUpdate             Op = "update"
	OpDelete             Op = "delete"
	OpAddToSubcollection Op = "add_to_subcollection"
	OpBatchAdd           Op = "batch_add"
	OpBatchUpdate        Op = "batch_update"
	OpBatchDelete        Op = "batch_delete"
)

var (
	// ErrNotUnique FetchOne 找到超過一份文件 (呼叫端的查詢條件有誤，不是暫時性錯誤)
	ErrNotUnique = errors.New("expected at most one document")
	// ErrMissingID BatchUpdate 的記錄缺少文件 ID
	ErrMissingID = errors.New("record has no document id")
	// ErrUntrackedRecord 以 struct literal 建立的記錄無法區分「設定為零值」與「沒有設定」，
	// 不能用於 merge 更新；請改用 NewXxx、Decode 或 domain.Partial
	ErrUntrackedRecord = errors.New("record does not track its set fields")
)

// StoreError 是所有存取操作唯一的錯誤型別。
// 訊息一定包含集合名稱與底層原因；可透過 errors.Is / errors.As 取得原因。
type StoreError struct {
	Op         Op
	Collection string
	ID         string // 與單一文件相關時才有值
	Err        error
}

func (e *StoreError) Error() string {
	target := e.Collection
	if e.ID != "" {
		target += "/" + e.ID
	}
	return fmt.Sprintf("docstore: %s %s failed: %v", e.Op, target, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op Op, collection string, err error) error {
	return &StoreError{Op: op, Collection: collection, Err: err}
}

func docErr(op Op, collection, id string, err error) error {
	return &StoreError{Op: op, Collection: collection, ID: id, Err: err}
}
