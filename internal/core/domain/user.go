package domain

import "time"

// UserInfo 代表一個由 Telegram Web App 登入的使用者。
// 欄位名稱沿用 Telegram initData 的 key (例如 tgWebAppPlatform)。
type UserInfo struct {
	Base `mapstructure:"-"`

	TgID             int64     `mapstructure:"tg_id"`
	Username         string    `mapstructure:"username"`
	FirstName        string    `mapstructure:"first_name"`
	LastName         *string   `mapstructure:"last_name,omitempty"`
	LanguageCode     string    `mapstructure:"language_code"`
	PhotoURL         string    `mapstructure:"photo_url"`
	IsPremium        bool      `mapstructure:"is_premium"`
	TgWebAppPlatform string    `mapstructure:"tgWebAppPlatform"`
	TgWebAppVersion  string    `mapstructure:"tgWebAppVersion"`
	AuthDate         time.Time `mapstructure:"auth_date"`
	ChatInstance     string    `mapstructure:"chat_instance"`
	Signature        string    `mapstructure:"signature"`
	ReferralID       string    `mapstructure:"referral_id,omitempty"` // 邀請此使用者的人，預設為空
}

// NewUserInfo 建立使用者記錄
//
// 參數:
//
//	u: UserInfo - 使用者資料；ReferralID 與 LastName 只有在非零值時才視為已設定
//
// 回傳值:
//
//	*UserInfo: 已追蹤欄位的使用者記錄
//	error: 驗證失敗時回傳 *ValidationError
func NewUserInfo(u UserInfo) (*UserInfo, error) {
	rec := &u
	if err := prepare(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (UserInfo) CollectionName() string { return CollectionUsers }

func (u *UserInfo) Fields() map[string]any {
	return u.pick(map[string]any{
		KeyTgID:             u.TgID,
		KeyUsername:         u.Username,
		KeyFirstName:        u.FirstName,
		KeyLastName:         opt(u.LastName),
		KeyLanguageCode:     u.LanguageCode,
		KeyPhotoURL:         u.PhotoURL,
		KeyIsPremium:        u.IsPremium,
		KeyTgWebAppPlatform: u.TgWebAppPlatform,
		KeyTgWebAppVersion:  u.TgWebAppVersion,
		KeyAuthDate:         u.AuthDate,
		KeyChatInstance:     u.ChatInstance,
		KeySignature:        u.Signature,
		KeyReferralID:       u.ReferralID,
	})
}

// SetReferralID 設定邀請人並標記欄位
func (u *UserInfo) SetReferralID(id string) {
	u.ReferralID = id
	u.MarkSet(KeyReferralID)
}

// LaunchInfo 記錄一次 Web App 啟動
type LaunchInfo struct {
	Base `mapstructure:"-"`

	LaunchDate       time.Time `mapstructure:"launch_date"`
	TgWebAppPlatform string    `mapstructure:"tgWebAppPlatform"`
}

func NewLaunchInfo(launchDate time.Time, platform string) (*LaunchInfo, error) {
	rec := &LaunchInfo{LaunchDate: launchDate, TgWebAppPlatform: platform}
	if err := prepare(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (LaunchInfo) CollectionName() string { return CollectionLaunchInfo }

func (l *LaunchInfo) Fields() map[string]any {
	return l.pick(map[string]any{
		KeyLaunchDate:       l.LaunchDate,
		KeyTgWebAppPlatform: l.TgWebAppPlatform,
	})
}
