package domain

import "time"

// Wallet 使用者在某一貨幣下的錢包。
// Balance 以最小單位 (百分之一) 儲存，顯示時請使用 BalanceF。
type Wallet struct {
	Base `mapstructure:"-"`

	UserID      string     `mapstructure:"user_id"`
	Balance     int64      `mapstructure:"balance,omitempty"`
	Currency    Currency   `mapstructure:"currency" validate:"enum"`
	LastUpdated *time.Time `mapstructure:"last_updated,omitempty"`
}

// NewWallet 建立錢包記錄
//
// 參數:
//
//	userID: string - 使用者 ID
//	currency: Currency - 貨幣 (接受舊版 "Currency.XXX" 格式)
//
// 回傳值:
//
//	*Wallet: 只有 user_id 與 currency 被標記為已設定 (balance 使用預設值 0，不寫入)
//	error: 貨幣不合法時回傳 *ValidationError
func NewWallet(userID string, currency Currency) (*Wallet, error) {
	rec := &Wallet{UserID: userID, Currency: currency.Normalize()}
	if err := prepare(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (Wallet) CollectionName() string { return CollectionWallets }

func (w *Wallet) Fields() map[string]any {
	return w.pick(map[string]any{
		KeyUserID:      w.UserID,
		KeyBalance:     w.Balance,
		KeyCurrency:    string(w.Currency),
		KeyLastUpdated: opt(w.LastUpdated),
	})
}

// BalanceF 回傳顯示用餘額
func (w *Wallet) BalanceF() float64 { return centsToFloat(w.Balance) }

// SetBalance 設定餘額 (最小單位) 並標記欄位
func (w *Wallet) SetBalance(v int64) {
	w.Balance = v
	w.MarkSet(KeyBalance)
}

// SetLastUpdated 設定最後更新時間並標記欄位
func (w *Wallet) SetLastUpdated(t time.Time) {
	w.LastUpdated = &t
	w.MarkSet(KeyLastUpdated)
}

// Transaction 兩個錢包之間的一筆轉帳紀錄
type Transaction struct {
	Base `mapstructure:"-"`

	FromWalletID string    `mapstructure:"from_wallet_id"`
	ToWalletID   string    `mapstructure:"to_wallet_id"`
	Amount       int64     `mapstructure:"amount"` // 最小單位
	Currency     Currency  `mapstructure:"currency" validate:"enum"`
	Timestamp    time.Time `mapstructure:"timestamp,omitempty"`
	Description  string    `mapstructure:"description"`
}

// NewTransaction 建立轉帳紀錄；Timestamp 為零值時使用目前時間
func NewTransaction(t Transaction) (*Transaction, error) {
	rec := &t
	rec.Currency = rec.Currency.Normalize()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if err := prepare(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (Transaction) CollectionName() string { return CollectionTransactions }

func (t *Transaction) Fields() map[string]any {
	return t.pick(map[string]any{
		KeyFromWalletID: t.FromWalletID,
		KeyToWalletID:   t.ToWalletID,
		KeyAmount:       t.Amount,
		KeyCurrency:     string(t.Currency),
		KeyTimestamp:    t.Timestamp,
		KeyDescription:  t.Description,
	})
}

// AmountF 回傳顯示用金額
func (t *Transaction) AmountF() float64 { return centsToFloat(t.Amount) }

// TopUpRequest 透過外部支付提供者的儲值請求
type TopUpRequest struct {
	Base `mapstructure:"-"`

	UserID     string         `mapstructure:"user_id"`
	Amount     int64          `mapstructure:"amount"` // 最小單位
	Provider   string         `mapstructure:"provider"`
	Currency   Currency       `mapstructure:"currency" validate:"enum"`
	ExternalID string         `mapstructure:"external_id"`
	Status     TopUpStatus    `mapstructure:"status" validate:"enum"`
	Payload    *string        `mapstructure:"payload,omitempty"`
	Info       map[string]any `mapstructure:"info,omitempty"`
	CreatedAt  time.Time      `mapstructure:"created_at,omitempty"`
}

// NewTopUpRequest 建立儲值請求；CreatedAt 為零值時使用目前時間
func NewTopUpRequest(r TopUpRequest) (*TopUpRequest, error) {
	rec := &r
	rec.Currency = rec.Currency.Normalize()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := prepare(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (TopUpRequest) CollectionName() string { return CollectionTopUps }

func (r *TopUpRequest) Fields() map[string]any {
	var info any
	if r.Info != nil {
		info = r.Info
	}
	return r.pick(map[string]any{
		KeyUserID:     r.UserID,
		KeyAmount:     r.Amount,
		KeyProvider:   r.Provider,
		KeyCurrency:   string(r.Currency),
		KeyExternalID: r.ExternalID,
		KeyStatus:     string(r.Status),
		KeyPayload:    opt(r.Payload),
		KeyInfo:       info,
		KeyCreatedAt:  r.CreatedAt,
	})
}

// AmountF 回傳顯示用金額
func (r *TopUpRequest) AmountF() float64 { return centsToFloat(r.Amount) }

// SetStatus 更新狀態並標記欄位
func (r *TopUpRequest) SetStatus(s TopUpStatus) {
	r.Status = s
	r.MarkSet(KeyStatus)
}
