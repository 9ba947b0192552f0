package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// GiftPayload 是 Gift 的附加內容，只有兩種實作: *ExternalAsset 與 *Reward。
// 實際型別由 Gift.Type 決定。
type GiftPayload interface {
	GiftType() GiftType
	fields() map[string]any
}

var (
	_ GiftPayload = (*ExternalAsset)(nil)
	_ GiftPayload = (*Reward)(nil)
)

// Attribute NFT 屬性
type Attribute struct {
	Type           string  `mapstructure:"type"`
	Value          string  `mapstructure:"value"`
	RarityPerMille float64 `mapstructure:"rarity_per_mille"`
}

// ExternalAsset 外部市集上架的 NFT 禮物
type ExternalAsset struct {
	ID                       string      `mapstructure:"id"`
	TgID                     string      `mapstructure:"tg_id"`
	CollectionID             string      `mapstructure:"collection_id"`
	ExternalCollectionNumber int64       `mapstructure:"external_collection_number"`
	Name                     string      `mapstructure:"name"`
	PhotoURL                 string      `mapstructure:"photo_url"`
	Price                    *string     `mapstructure:"price,omitempty"`
	Attributes               []Attribute `mapstructure:"attributes,omitempty"`
	ListedAt                 *string     `mapstructure:"listed_at,omitempty"`
	Status                   *string     `mapstructure:"status,omitempty"`
	AnimationURL             *string     `mapstructure:"animation_url,omitempty"`
	EmojiID                  *string     `mapstructure:"emoji_id,omitempty"`
	HasAnimation             *bool       `mapstructure:"has_animation,omitempty"`
	FloorPrice               *string     `mapstructure:"floor_price,omitempty"`
	UnlocksAt                *string     `mapstructure:"unlocks_at,omitempty"`
	IsOwned                  *bool       `mapstructure:"is_owned,omitempty"`
}

func (*ExternalAsset) GiftType() GiftType { return GiftTypeExternalAsset }

// PriceF 回傳價格；價格缺失或不是數字時回傳 0.0 而不是錯誤
func (a *ExternalAsset) PriceF() float64 {
	d, err := a.price()
	if err != nil {
		return 0.0
	}
	f, _ := d.Float64()
	return f
}

func (a *ExternalAsset) price() (decimal.Decimal, error) {
	if a.Price == nil {
		return decimal.Zero, fmt.Errorf("asset %s has no price", a.ID)
	}
	return decimal.NewFromString(strings.TrimSpace(*a.Price))
}

func (a *ExternalAsset) fields() map[string]any {
	attrs := make([]any, 0, len(a.Attributes))
	for _, at := range a.Attributes {
		attrs = append(attrs, map[string]any{
			"type":             at.Type,
			"value":            at.Value,
			"rarity_per_mille": at.RarityPerMille,
		})
	}
	out := map[string]any{
		"id":                         a.ID,
		"tg_id":                      a.TgID,
		"collection_id":              a.CollectionID,
		"external_collection_number": a.ExternalCollectionNumber,
		"name":                       a.Name,
		"photo_url":                  a.PhotoURL,
		"attributes":                 attrs,
	}
	optional := map[string]any{
		"price":         opt(a.Price),
		"listed_at":     opt(a.ListedAt),
		"status":        opt(a.Status),
		"animation_url": opt(a.AnimationURL),
		"emoji_id":      opt(a.EmojiID),
		"has_animation": opt(a.HasAnimation),
		"floor_price":   opt(a.FloorPrice),
		"unlocks_at":    opt(a.UnlocksAt),
		"is_owned":      opt(a.IsOwned),
	}
	for k, v := range optional {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// Reward 固定金額的餘額獎勵
type Reward struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Volume   int64  `mapstructure:"volume"`
	PhotoURL string `mapstructure:"photo_url"`
}

func (*Reward) GiftType() GiftType { return GiftTypeBalance }

func (r *Reward) fields() map[string]any {
	return map[string]any{
		"id":        r.ID,
		"name":      r.Name,
		"volume":    r.Volume,
		"photo_url": r.PhotoURL,
	}
}

// Gift 箱子內可開出的禮物
type Gift struct {
	Base `mapstructure:"-"`

	CaseID   string      `mapstructure:"case_id"`
	Name     string      `mapstructure:"name"`
	Prob     int64       `mapstructure:"prob"`   // 機率，百分之一為單位
	Volume   int64       `mapstructure:"volume"` // 價值，百分之一為單位
	IsActive bool        `mapstructure:"is_active"`
	Type     GiftType    `mapstructure:"type" validate:"enum"`
	Payload  GiftPayload `mapstructure:"-"`
}

// NewGift 建立禮物記錄；Payload 非 nil 時一併標記
func NewGift(g Gift) (*Gift, error) {
	rec := &g
	if err := prepare(rec); err != nil {
		return nil, err
	}
	if rec.Payload != nil {
		rec.MarkSet(KeyPayload)
	}
	return rec, nil
}

func (Gift) CollectionName() string { return CollectionGifts }

func (g *Gift) Fields() map[string]any {
	var payload any
	if g.Payload != nil {
		payload = g.Payload.fields()
	}
	return g.pick(map[string]any{
		KeyCaseID:   g.CaseID,
		KeyName:     g.Name,
		KeyProb:     g.Prob,
		KeyVolume:   g.Volume,
		KeyIsActive: g.IsActive,
		KeyType:     string(g.Type),
		KeyPayload:  payload,
	})
}

// ProbF 回傳機率 (百分比)
func (g *Gift) ProbF() float64 { return centsToFloat(g.Prob) }

// VolumeF 回傳顯示用價值
func (g *Gift) VolumeF() float64 { return centsToFloat(g.Volume) }

// SetIsActive 設定上架狀態並標記欄位
func (g *Gift) SetIsActive(active bool) {
	g.IsActive = active
	g.MarkSet(KeyIsActive)
}

// UpdatePayload 更換禮物內容並依內容重新計算 Volume
//
//   - *ExternalAsset: Volume = price × 100 (以十進位運算，小數部分捨去)
//   - *Reward: Volume = reward.Volume
//
// Type 會一併改為 payload 對應的類型，讓之後的解碼能選到正確的型別。
//
// 回傳值:
//
//	error: payload 為 nil 或資產價格無法解析時回傳包裝 ErrInvalidArgument 的錯誤
func (g *Gift) UpdatePayload(p GiftPayload) error {
	switch v := p.(type) {
	case *ExternalAsset:
		if v == nil {
			return fmt.Errorf("%w: nil external asset payload", ErrInvalidArgument)
		}
		price, err := v.price()
		if err != nil {
			return fmt.Errorf("%w: external asset price: %v", ErrInvalidArgument, err)
		}
		g.Volume = price.Shift(2).IntPart()
	case *Reward:
		if v == nil {
			return fmt.Errorf("%w: nil reward payload", ErrInvalidArgument)
		}
		g.Volume = v.Volume
	default:
		return fmt.Errorf("%w: payload must be an external asset or a reward, got %T", ErrInvalidArgument, p)
	}
	g.Payload = p
	g.Type = p.GiftType()
	g.MarkSet(KeyPayload, KeyVolume, KeyType)
	return nil
}

// decodeExtra 依 Type 解碼 payload
func (g *Gift) decodeExtra(data map[string]any) ([]string, error) {
	raw, ok := data[KeyPayload]
	if !ok {
		return nil, nil
	}
	if raw == nil {
		g.Payload = nil
		return []string{KeyPayload}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &ValidationError{Record: CollectionGifts, Field: KeyPayload, Reason: fmt.Sprintf("expected a map, got %T", raw)}
	}
	var p GiftPayload
	switch g.Type {
	case GiftTypeExternalAsset:
		p = &ExternalAsset{}
	case GiftTypeBalance:
		p = &Reward{}
	default:
		return nil, &ValidationError{Record: CollectionGifts, Field: KeyType, Reason: fmt.Sprintf("unknown gift type %q", g.Type)}
	}
	if _, err := decodeStruct(CollectionGifts, m, p); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.Field = KeyPayload + "." + ve.Field
		}
		return nil, err
	}
	g.Payload = p
	return []string{KeyPayload}, nil
}
