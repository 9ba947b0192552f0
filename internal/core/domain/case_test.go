package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionNames(t *testing.T) {
	tests := []struct {
		rec  Record
		want string
	}{
		{&UserInfo{}, "users"},
		{&LaunchInfo{}, "launch_info"},
		{&Wallet{}, "wallets"},
		{&Transaction{}, "transactions"},
		{&TopUpRequest{}, "topup_requests"},
		{&Gift{}, "gifts"},
		{&Case{}, "cases"},
		{&CaseOpening{}, "case_openings"},
		{&Inventory{}, "inventory"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rec.CollectionName())
	}
}

func TestNewCaseOpening(t *testing.T) {
	openAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	o, err := NewCaseOpening(CaseOpening{
		UserID: "u1", CaseID: "c1", GiftID: "g1",
		GiftType: GiftTypeExternalAsset, GiftVolume: 1999,
		Status: CaseOpeningNew, OpenAt: openAt,
	})
	require.NoError(t, err)
	assert.Equal(t, 19.99, o.GiftVolumeF())
	assert.Equal(t, "NEW", o.Fields()[KeyStatus])

	_, err = NewCaseOpening(CaseOpening{GiftType: GiftTypeBalance, Status: "REDEPED"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, KeyStatus, ve.Field)
}

func TestCaseOpening_SetStatusOnDecoded(t *testing.T) {
	var o CaseOpening
	require.NoError(t, Decode("o1", map[string]any{
		KeyUserID: "u1", KeyCaseID: "c1", KeyGiftID: "g1",
		KeyGiftType: "BALANCE", KeyGiftVolume: int64(500),
		KeyStatus: "NEW", KeyOpenAt: time.Now(),
	}, &o))

	o.SetStatus(CaseOpeningInventory)
	assert.Equal(t, "INVENTORY", o.Fields()[KeyStatus])
	assert.Len(t, o.Fields(), 7)
}

func TestDecode_LegacyTags(t *testing.T) {
	var o CaseOpening
	require.NoError(t, Decode("o1", map[string]any{
		KeyUserID: "u1", KeyCaseID: "c1", KeyGiftID: "g1",
		KeyGiftType: "PORTALS_GIFT", KeyGiftVolume: int64(500),
		KeyStatus: "REDEPED", KeyOpenAt: time.Now(),
	}, &o))
	assert.Equal(t, GiftTypeExternalAsset, o.GiftType)
	assert.Equal(t, CaseOpeningRedeemed, o.Status)
	assert.Equal(t, "REDEEMED", o.Fields()[KeyStatus])

	var g Gift
	require.NoError(t, Decode("g1", map[string]any{
		KeyCaseID: "c1", KeyName: "Pepe", KeyProb: int64(100), KeyVolume: int64(1250),
		KeyIsActive: true, KeyType: "PORTALS_GIFT",
	}, &g))
	assert.Equal(t, GiftTypeExternalAsset, g.Type)
}

func TestNewUserInfo_ReferralDefault(t *testing.T) {
	u, err := NewUserInfo(UserInfo{
		TgID: 42, Username: "neo", FirstName: "Thomas", LanguageCode: "en",
		PhotoURL: "https://t.me/i/neo.jpg", TgWebAppPlatform: "ios", TgWebAppVersion: "8.0",
		AuthDate: time.Now(), ChatInstance: "ci", Signature: "sig",
	})
	require.NoError(t, err)
	fields := u.Fields()
	assert.NotContains(t, fields, KeyReferralID)
	assert.NotContains(t, fields, KeyLastName)
	assert.Equal(t, int64(42), fields[KeyTgID])
	assert.Equal(t, "ios", fields[KeyTgWebAppPlatform])

	u.SetReferralID("ref-1")
	assert.Equal(t, "ref-1", u.Fields()[KeyReferralID])
}

func TestNewInventory(t *testing.T) {
	inv, err := NewInventory("u1", "g1", 1250, "2025-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		KeyUserID:         "u1",
		KeyGiftID:         "g1",
		KeyVolumeFixation: int64(1250),
		KeyCreatedAt:      "2025-01-01T00:00:00Z",
	}, inv.Fields())
}
