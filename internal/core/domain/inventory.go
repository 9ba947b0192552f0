package domain

// Inventory 使用者背包中的一個禮物
type Inventory struct {
	Base `mapstructure:"-"`

	UserID         string `mapstructure:"user_id"`
	GiftID         string `mapstructure:"gift_id"`
	VolumeFixation int64  `mapstructure:"volume_fixation"` // 放入背包當下鎖定的價值
	CreatedAt      string `mapstructure:"created_at"`
}

func NewInventory(userID, giftID string, volumeFixation int64, createdAt string) (*Inventory, error) {
	rec := &Inventory{UserID: userID, GiftID: giftID, VolumeFixation: volumeFixation, CreatedAt: createdAt}
	if err := prepare(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (Inventory) CollectionName() string { return CollectionInventory }

func (i *Inventory) Fields() map[string]any {
	return i.pick(map[string]any{
		KeyUserID:         i.UserID,
		KeyGiftID:         i.GiftID,
		KeyVolumeFixation: i.VolumeFixation,
		KeyCreatedAt:      i.CreatedAt,
	})
}
