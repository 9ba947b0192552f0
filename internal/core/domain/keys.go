package domain

// 儲存欄位名稱。欄位名稱即為資料庫中的 key，沒有任何轉換層。
const (
	KeyID = "id"

	// users / launch_info
	KeyTgID             = "tg_id"
	KeyUsername         = "username"
	KeyFirstName        = "first_name"
	KeyLastName         = "last_name"
	KeyLanguageCode     = "language_code"
	KeyPhotoURL         = "photo_url"
	KeyIsPremium        = "is_premium"
	KeyTgWebAppPlatform = "tgWebAppPlatform"
	KeyTgWebAppVersion  = "tgWebAppVersion"
	KeyAuthDate         = "auth_date"
	KeyChatInstance     = "chat_instance"
	KeySignature        = "signature"
	KeyReferralID       = "referral_id"
	KeyLaunchDate       = "launch_date"

	// wallets / transactions / topup_requests
	KeyUserID       = "user_id"
	KeyBalance      = "balance"
	KeyCurrency     = "currency"
	KeyLastUpdated  = "last_updated"
	KeyFromWalletID = "from_wallet_id"
	KeyToWalletID   = "to_wallet_id"
	KeyAmount       = "amount"
	KeyTimestamp    = "timestamp"
	KeyDescription  = "description"
	KeyProvider     = "provider"
	KeyExternalID   = "external_id"
	KeyStatus       = "status"
	KeyPayload      = "payload"
	KeyInfo         = "info"
	KeyCreatedAt    = "created_at"

	// gifts / cases / case_openings / inventory
	KeyCaseID         = "case_id"
	KeyGiftID         = "gift_id"
	KeyName           = "name"
	KeyProb           = "prob"
	KeyVolume         = "volume"
	KeyIsActive       = "is_active"
	KeyType           = "type"
	KeyCost           = "cost"
	KeyImageURL       = "image_url"
	KeyGiftType       = "gift_type"
	KeyGiftVolume     = "gift_volume"
	KeyOpenAt         = "open_at"
	KeyVolumeFixation = "volume_fixation"
)
