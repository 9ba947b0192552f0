package domain

import "strings"

// Currency 貨幣種類
type Currency string

const (
	CurrencyTON  Currency = "TON"
	CurrencyCoin Currency = "COIN"
	CurrencyXTR  Currency = "XTR"
)

// legacyCurrencyPrefix 舊版資料曾以 "Currency.COIN" 形式寫入，讀取時需去除前綴
const legacyCurrencyPrefix = "Currency."

// Valid 回傳是否為合法的貨幣代碼
func (c Currency) Valid() bool {
	switch c {
	case CurrencyTON, CurrencyCoin, CurrencyXTR:
		return true
	}
	return false
}

// Normalize 去除舊版序列化留下的 "Currency." 前綴
func (c Currency) Normalize() Currency {
	return Currency(strings.TrimPrefix(string(c), legacyCurrencyPrefix))
}

// ParseCurrency 解析貨幣代碼，接受舊版的前綴格式
//
// 參數:
//
//	s: string - 例如 "COIN" 或 "Currency.COIN"
//
// 回傳值:
//
//	Currency: 正規化後的貨幣代碼
//	error: 不在合法集合內時回傳 *ValidationError
func ParseCurrency(s string) (Currency, error) {
	c := Currency(s).Normalize()
	if !c.Valid() {
		return "", &ValidationError{Field: KeyCurrency, Reason: "unknown currency " + s}
	}
	return c, nil
}

// TopUpStatus 儲值請求狀態
type TopUpStatus string

const (
	TopUpPending    TopUpStatus = "PENDING"
	TopUpProcessing TopUpStatus = "PROCESSING"
	TopUpSuccess    TopUpStatus = "SUCCESS"
	TopUpFailed     TopUpStatus = "FAILED"
)

func (s TopUpStatus) Valid() bool {
	switch s {
	case TopUpPending, TopUpProcessing, TopUpSuccess, TopUpFailed:
		return true
	}
	return false
}

// GiftType 決定 Gift.Payload 的實際型別
type GiftType string

const (
	// GiftTypeExternalAsset 外部市集的 NFT 禮物，payload 為 *ExternalAsset
	GiftTypeExternalAsset GiftType = "EXTERNAL_ASSET"
	// GiftTypeBalance 固定金額獎勵，payload 為 *Reward
	GiftTypeBalance GiftType = "BALANCE"
)

func (t GiftType) Valid() bool {
	return t == GiftTypeExternalAsset || t == GiftTypeBalance
}

// CaseOpeningStatus 開箱結果的處理狀態
type CaseOpeningStatus string

const (
	CaseOpeningNew       CaseOpeningStatus = "NEW"
	CaseOpeningRedeemed  CaseOpeningStatus = "REDEEMED"
	CaseOpeningInventory CaseOpeningStatus = "INVENTORY"
)

// legacyTags 是舊版資料寫入、現在已改名的列舉值，只在解碼時對應到新的值
var legacyTags = map[string]string{
	"PORTALS_GIFT": string(GiftTypeExternalAsset),
	"REDEPED":      string(CaseOpeningRedeemed),
}

func (s CaseOpeningStatus) Valid() bool {
	switch s {
	case CaseOpeningNew, CaseOpeningRedeemed, CaseOpeningInventory:
		return true
	}
	return false
}
