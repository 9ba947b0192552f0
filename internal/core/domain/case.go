package domain

import "time"

// Case 可購買開啟的箱子
type Case struct {
	Base `mapstructure:"-"`

	Name     string `mapstructure:"name"`
	Cost     int64  `mapstructure:"cost"` // 最小單位
	ImageURL string `mapstructure:"image_url"`
	IsActive bool   `mapstructure:"is_active"`
}

func NewCase(name string, cost int64, imageURL string, isActive bool) (*Case, error) {
	rec := &Case{Name: name, Cost: cost, ImageURL: imageURL, IsActive: isActive}
	if err := prepare(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (Case) CollectionName() string { return CollectionCases }

func (c *Case) Fields() map[string]any {
	return c.pick(map[string]any{
		KeyName:     c.Name,
		KeyCost:     c.Cost,
		KeyImageURL: c.ImageURL,
		KeyIsActive: c.IsActive,
	})
}

// CostF 回傳顯示用價格
func (c *Case) CostF() float64 { return centsToFloat(c.Cost) }

// CaseOpening 一次開箱的結果
type CaseOpening struct {
	Base `mapstructure:"-"`

	UserID     string            `mapstructure:"user_id"`
	CaseID     string            `mapstructure:"case_id"`
	GiftID     string            `mapstructure:"gift_id"`
	GiftType   GiftType          `mapstructure:"gift_type" validate:"enum"`
	GiftVolume int64             `mapstructure:"gift_volume"`
	Status     CaseOpeningStatus `mapstructure:"status" validate:"enum"`
	OpenAt     time.Time         `mapstructure:"open_at"`
}

func NewCaseOpening(o CaseOpening) (*CaseOpening, error) {
	rec := &o
	if err := prepare(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (CaseOpening) CollectionName() string { return CollectionCaseOpenings }

func (o *CaseOpening) Fields() map[string]any {
	return o.pick(map[string]any{
		KeyUserID:     o.UserID,
		KeyCaseID:     o.CaseID,
		KeyGiftID:     o.GiftID,
		KeyGiftType:   string(o.GiftType),
		KeyGiftVolume: o.GiftVolume,
		KeyStatus:     string(o.Status),
		KeyOpenAt:     o.OpenAt,
	})
}

// GiftVolumeF 回傳顯示用禮物價值
func (o *CaseOpening) GiftVolumeF() float64 { return centsToFloat(o.GiftVolume) }

// SetStatus 更新處理狀態並標記欄位
func (o *CaseOpening) SetStatus(s CaseOpeningStatus) {
	o.Status = s
	o.MarkSet(KeyStatus)
}

// CaseInfo 提供給前端的箱子摘要，不會寫入資料庫
type CaseInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Cost        int64   `json:"cost"`
	IsValid     bool    `json:"is_valid"`
	Description string  `json:"description"`
	RTP         float64 `json:"rtp"`
}
