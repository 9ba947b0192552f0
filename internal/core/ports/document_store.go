package ports

import "context"

// Operator Filter 支援的比較運算子 (與 Firestore 的運算子字串一致)
type Operator string

const (
	OpEqual            Operator = "=="
	OpNotEqual         Operator = "!="
	OpLess             Operator = "<"
	OpLessEqual        Operator = "<="
	OpGreater          Operator = ">"
	OpGreaterEqual     Operator = ">="
	OpIn               Operator = "in"
	OpNotIn            Operator = "not-in"
	OpArrayContains    Operator = "array-contains"
	OpArrayContainsAny Operator = "array-contains-any"
)

// Filter 單一欄位條件；多個 Filter 之間為 AND
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Where 建立 Filter 的簡寫
func Where(field string, op Operator, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Document 從資料庫讀出的一份文件
type Document struct {
	ID   string
	Data map[string]any
}

// WriteKind 批次寫入的動作類型
type WriteKind int

const (
	WriteSet WriteKind = iota
	WriteDelete
)

// Write 批次中的一筆寫入
type Write struct {
	Kind       WriteKind
	Collection string
	ID         string
	Data       map[string]any
	Merge      bool // 只對 WriteSet 有效: true 時只覆寫 Data 中的欄位
}

// DocumentStore 定義文件資料庫的最小操作集合。
// collection 為以斜線分隔的路徑，例如 "users" 或 "users/{id}/inventory"。
//
//go:generate mockgen -destination=../../../test/mocks/core/ports/mock_document_store.go -package=mock_ports github.com/JoeShih716/case-common/internal/core/ports DocumentStore
type DocumentStore interface {
	// NewID 為 collection 產生一個新的文件 ID (不會寫入任何資料)
	NewID(collection string) string

	// Add 以自動產生的 ID 新增文件，回傳該 ID
	Add(ctx context.Context, collection string, data map[string]any) (string, error)

	// Set 寫入指定 ID 的文件。merge 為 false 時整份覆寫；為 true 時只更新 data 中的欄位
	Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error

	// Get 讀取文件；文件不存在時回傳 found=false 且 error 為 nil
	Get(ctx context.Context, collection, id string) (doc Document, found bool, err error)

	// Query 回傳所有符合 filters 的文件；filters 為空時回傳整個 collection。順序不保證
	Query(ctx context.Context, collection string, filters []Filter) ([]Document, error)

	// Delete 刪除文件；文件不存在時不視為錯誤
	Delete(ctx context.Context, collection, id string) error

	// Commit 以單一原子批次套用所有寫入 (全部成功或全部不生效)
	Commit(ctx context.Context, writes []Write) error

	// Close 釋放連線
	Close() error
}
