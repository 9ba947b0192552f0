package domain

import "sort"

// 各記錄類型對應的集合名稱。
// 這些字串是與其他系統共用的儲存結構，不可任意更動。
const (
	CollectionUsers        = "users"
	CollectionLaunchInfo   = "launch_info"
	CollectionWallets      = "wallets"
	CollectionTransactions = "transactions"
	CollectionTopUps       = "topup_requests"
	CollectionGifts        = "gifts"
	CollectionCases        = "cases"
	CollectionCaseOpenings = "case_openings"
	CollectionInventory    = "inventory"
)

// Record 定義可存入文件資料庫的記錄。
//
// CollectionName 必須只依賴型別本身 (以 value receiver 實作且不讀取欄位)，
// 讓 docstore 可以透過零值取得集合名稱。
type Record interface {
	// CollectionName 回傳此型別對應的集合名稱
	CollectionName() string
	// GetID 回傳資料庫指派的文件 ID (尚未寫入時為空字串)
	GetID() string
	// SetID 寫回資料庫指派的文件 ID
	SetID(id string)
	// Fields 回傳要寫入的欄位 (key 即為儲存欄位名稱)
	Fields() map[string]any
	// MarkSet 將欄位標記為已明確設定
	MarkSet(keys ...string)
	// Track 開啟欄位追蹤，之後只有被標記的欄位會寫入
	Track()
	// Tracked 回傳是否處於追蹤狀態
	Tracked() bool
	// IsSet 回傳欄位是否已被標記
	IsSet(key string) bool
}

// Base 是所有記錄共用的部分：文件 ID 與已設定欄位的追蹤。
//
// 直接以 struct literal 建立的記錄處於「未追蹤」狀態，Fields 會輸出所有非 nil 的欄位。
// 經由 NewXxx、Decode 或 Partial 取得的記錄處於「追蹤」狀態，Fields 只輸出被標記的欄位，
// 未碰過的欄位不會留下任何佔位值 (部分更新即依賴這個行為)。
type Base struct {
	ID string

	tracked bool
	set     map[string]struct{}
}

func (b *Base) GetID() string { return b.ID }

func (b *Base) SetID(id string) { b.ID = id }

func (b *Base) Track() { b.tracked = true }

// Tracked 回傳此記錄是否只輸出已標記的欄位
func (b *Base) Tracked() bool { return b.tracked }

func (b *Base) MarkSet(keys ...string) {
	if b.set == nil {
		b.set = make(map[string]struct{}, len(keys))
	}
	for _, k := range keys {
		b.set[k] = struct{}{}
	}
}

// IsSet 回傳欄位是否已被明確設定
func (b *Base) IsSet(key string) bool {
	_, ok := b.set[key]
	return ok
}

// SetKeys 回傳所有已標記欄位 (已排序)
func (b *Base) SetKeys() []string {
	keys := make([]string, 0, len(b.set))
	for k := range b.set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// pick 依追蹤狀態篩選完整欄位表
func (b *Base) pick(all map[string]any) map[string]any {
	out := make(map[string]any, len(all))
	if !b.tracked {
		for k, v := range all {
			if v != nil {
				out[k] = v
			}
		}
		return out
	}
	for k := range b.set {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Partial 開啟記錄的欄位追蹤並回傳同一個記錄，用於建立只含部分欄位的更新。
//
//	patch := domain.Partial(&domain.Wallet{})
//	patch.SetBalance(1500)
//	svc.Update(ctx, walletID, patch) // 只寫入 balance
func Partial[T Record](rec T) T {
	rec.Track()
	return rec
}

// opt 將選填指標欄位轉成可寫入的值，nil 指標輸出為 untyped nil
func opt[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// centsToFloat 將以百分之一為單位的整數轉為顯示用浮點數
func centsToFloat(v int64) float64 {
	if v == 0 {
		return 0.0
	}
	return float64(v) / 100.0
}
