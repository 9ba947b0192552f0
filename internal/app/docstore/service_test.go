package docstore_test

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/JoeShih716/case-common/internal/app/docstore"
	"github.com/JoeShih716/case-common/internal/core/domain"
	"github.com/JoeShih716/case-common/internal/core/ports"
	"github.com/JoeShih716/case-common/internal/infrastructure/persistence/memory"
	mock_ports "github.com/JoeShih716/case-common/test/mocks/core/ports"
)

func newMemoryService(t *testing.T) (*docstore.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return docstore.NewService(store, slog.Default()), store
}

func mustWallet(t *testing.T, userID string, c domain.Currency) *domain.Wallet {
	t.Helper()
	w, err := domain.NewWallet(userID, c)
	require.NoError(t, err)
	return w
}

func TestService_CreateAndFetchByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	w := mustWallet(t, "u1", domain.CurrencyTON)
	w.SetBalance(1250)
	require.NoError(t, svc.Create(ctx, w))
	require.NotEmpty(t, w.ID)

	got, err := docstore.FetchByID[domain.Wallet](ctx, svc, w.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, int64(1250), got.Balance)
	assert.Equal(t, 12.5, got.BalanceF())
	assert.Equal(t, domain.CurrencyTON, got.Currency)
}

func TestService_LargeIntegersStayExact(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	w := mustWallet(t, "u1", domain.CurrencyTON)
	w.SetBalance(1<<53 + 1)
	require.NoError(t, svc.Create(ctx, w))

	got, err := docstore.FetchByID[domain.Wallet](ctx, svc, w.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(9007199254740993), got.Balance)
}

func TestService_FetchByIDMissing(t *testing.T) {
	svc, _ := newMemoryService(t)

	got, err := docstore.FetchByID[domain.Case](context.Background(), svc, "does-not-exist")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_CreateWithID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	u, err := domain.NewUserInfo(domain.UserInfo{
		TgID:      12345,
		FirstName: "Ada",
		Username:  "ada",
	})
	require.NoError(t, err)
	require.NoError(t, svc.CreateWithID(ctx, "12345", u))
	assert.Equal(t, "12345", u.ID)

	got, err := docstore.FetchByID[domain.UserInfo](ctx, svc, "12345")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Nil(t, got.LastName)
}

func TestService_FetchOne(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	require.NoError(t, svc.Create(ctx, mustWallet(t, "u1", domain.CurrencyTON)))
	require.NoError(t, svc.Create(ctx, mustWallet(t, "u1", domain.CurrencyCoin)))
	require.NoError(t, svc.Create(ctx, mustWallet(t, "u2", domain.CurrencyTON)))

	t.Run("exactly one", func(t *testing.T) {
		w, err := docstore.FetchOne[domain.Wallet](ctx, svc,
			ports.Where(domain.KeyUserID, ports.OpEqual, "u1"),
			ports.Where(domain.KeyCurrency, ports.OpEqual, string(domain.CurrencyCoin)),
		)
		require.NoError(t, err)
		require.NotNil(t, w)
		assert.Equal(t, domain.CurrencyCoin, w.Currency)
	})

	t.Run("none", func(t *testing.T) {
		w, err := docstore.FetchOne[domain.Wallet](ctx, svc, ports.Where(domain.KeyUserID, ports.OpEqual, "ghost"))
		assert.NoError(t, err)
		assert.Nil(t, w)
	})

	t.Run("more than one", func(t *testing.T) {
		w, err := docstore.FetchOne[domain.Wallet](ctx, svc, ports.Where(domain.KeyUserID, ports.OpEqual, "u1"))
		assert.Nil(t, w)
		require.Error(t, err)
		assert.True(t, errors.Is(err, docstore.ErrNotUnique))

		var storeErr *docstore.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, domain.CollectionWallets, storeErr.Collection)
		assert.Contains(t, err.Error(), "found 2")
	})
}

func TestService_UpdateLeavesOtherFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	w := mustWallet(t, "u1", domain.CurrencyTON)
	w.SetBalance(100)
	require.NoError(t, svc.Create(ctx, w))

	patch := domain.Partial(&domain.Wallet{})
	patch.SetBalance(300)
	written, err := svc.Update(ctx, w.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{domain.KeyBalance: int64(300), domain.KeyID: w.ID}, written)

	got, err := docstore.FetchByID[domain.Wallet](ctx, svc, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), got.Balance)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, domain.CurrencyTON, got.Currency)
}

func TestService_RejectsUnsafeWrites(t *testing.T) {
	ctx := context.Background()
	svc, store := newMemoryService(t)

	w := mustWallet(t, "u1", domain.CurrencyTON)
	w.SetBalance(100)
	require.NoError(t, svc.Create(ctx, w))
	before, _, err := store.Get(ctx, domain.CollectionWallets, w.ID)
	require.NoError(t, err)

	t.Run("Update with a struct literal", func(t *testing.T) {
		_, err := svc.Update(ctx, w.ID, &domain.Wallet{Balance: 500})
		assert.True(t, errors.Is(err, docstore.ErrUntrackedRecord))

		after, _, err := store.Get(ctx, domain.CollectionWallets, w.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Data, after.Data)
	})

	t.Run("BatchUpdate with a struct literal", func(t *testing.T) {
		literal := &domain.Wallet{Base: domain.Base{ID: w.ID}, Balance: 500}
		err := svc.BatchUpdate(ctx, literal)
		assert.True(t, errors.Is(err, docstore.ErrUntrackedRecord))
	})

	t.Run("Create with an invalid enum", func(t *testing.T) {
		bad := &domain.Wallet{UserID: "u9", Currency: "DOGE"}
		err := svc.Create(ctx, bad)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, domain.KeyCurrency, verr.Field)
		assert.Empty(t, bad.ID)
	})

	t.Run("BatchAdd with an invalid enum writes nothing", func(t *testing.T) {
		ok := mustWallet(t, "u2", domain.CurrencyCoin)
		bad := &domain.Wallet{UserID: "u3", Currency: "DOGE"}
		err := svc.BatchAdd(ctx, ok, bad)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, err.Error(), "index 1")
		assert.Empty(t, ok.ID)
	})

	t.Run("Update with an invalid enum on a set field", func(t *testing.T) {
		patch := domain.Partial(&domain.Wallet{Currency: "DOGE"})
		patch.MarkSet(domain.KeyCurrency)
		_, err := svc.Update(ctx, w.ID, patch)
		var verr *domain.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("CreateWithID with a valid literal", func(t *testing.T) {
		literal := &domain.Wallet{UserID: "u4", Currency: domain.CurrencyXTR}
		require.NoError(t, svc.CreateWithID(ctx, "w-literal", literal))
	})

	// 集合中的每一份文件都還能讀取
	all, err := docstore.FetchAll[domain.Wallet](ctx, svc)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	got, err := docstore.FetchByID[domain.Wallet](ctx, svc, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Balance)
	assert.Equal(t, domain.CurrencyTON, got.Currency)
}

func TestService_UpdateDecodedRecord(t *testing.T) {
	ctx := context.Background()
	svc, store := newMemoryService(t)

	require.NoError(t, store.Set(ctx, domain.CollectionTopUps, "t1", map[string]any{
		"user_id":     "u1",
		"amount":      500,
		"provider":    "ton",
		"external_id": "ext-1",
		"currency":    "Currency.TON",
		"status":      "PENDING",
		"created_at":  "2024-05-01T00:00:00Z",
		"info":        map[string]any{"tx": "abc"},
	}, false))

	req, err := docstore.FetchByID[domain.TopUpRequest](ctx, svc, "t1")
	require.NoError(t, err)
	require.NotNil(t, req)
	req.SetStatus(domain.TopUpSuccess)

	_, err = svc.Update(ctx, req.ID, req)
	require.NoError(t, err)

	doc, _, err := store.Get(ctx, domain.CollectionTopUps, "t1")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", doc.Data["status"])
	assert.Equal(t, "TON", doc.Data["currency"])
	assert.Equal(t, map[string]any{"tx": "abc"}, doc.Data["info"])
}

func TestService_BatchAdd(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	recs := []domain.Record{
		mustWallet(t, "u1", domain.CurrencyTON),
		mustWallet(t, "u2", domain.CurrencyTON),
		mustWallet(t, "u3", domain.CurrencyXTR),
	}
	require.NoError(t, svc.BatchAdd(ctx, recs...))

	ids := make(map[string]struct{})
	for _, r := range recs {
		require.NotEmpty(t, r.GetID())
		ids[r.GetID()] = struct{}{}
	}
	assert.Len(t, ids, 3)

	all, err := docstore.FetchAll[domain.Wallet](ctx, svc)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, w := range all {
		_, ok := ids[w.ID]
		assert.True(t, ok, "unexpected id %s", w.ID)
	}

	assert.NoError(t, svc.BatchAdd(ctx))
}

func TestService_BatchUpdateMissingID(t *testing.T) {
	ctx := context.Background()
	svc, store := newMemoryService(t)

	w1 := mustWallet(t, "u1", domain.CurrencyTON)
	require.NoError(t, svc.Create(ctx, w1))
	before, _, err := store.Get(ctx, domain.CollectionWallets, w1.ID)
	require.NoError(t, err)

	w1.SetBalance(999)
	orphan := mustWallet(t, "u2", domain.CurrencyTON)

	err = svc.BatchUpdate(ctx, w1, orphan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, docstore.ErrMissingID))

	after, _, err := store.Get(ctx, domain.CollectionWallets, w1.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Data, after.Data)
	assert.Equal(t, 1, store.Len(domain.CollectionWallets))
}

func TestService_BatchUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	c1, err := domain.NewCase("Bronze", 100, "https://img/bronze.png", true)
	require.NoError(t, err)
	c2, err := domain.NewCase("Silver", 500, "https://img/silver.png", true)
	require.NoError(t, err)
	require.NoError(t, svc.BatchAdd(ctx, c1, c2))

	p1 := domain.Partial(&domain.Case{Base: domain.Base{ID: c1.ID}})
	p1.IsActive = false
	p1.MarkSet(domain.KeyIsActive)
	p2 := domain.Partial(&domain.Case{Base: domain.Base{ID: c2.ID}})
	p2.Cost = 750
	p2.MarkSet(domain.KeyCost)
	require.NoError(t, svc.BatchUpdate(ctx, p1, p2))

	got1, err := docstore.FetchByID[domain.Case](ctx, svc, c1.ID)
	require.NoError(t, err)
	assert.False(t, got1.IsActive)
	assert.Equal(t, "Bronze", got1.Name)

	got2, err := docstore.FetchByID[domain.Case](ctx, svc, c2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), got2.Cost)
	assert.True(t, got2.IsActive)
}

func TestService_DeleteAndBatchDelete(t *testing.T) {
	ctx := context.Background()
	svc, store := newMemoryService(t)

	recs := []domain.Record{
		mustWallet(t, "u1", domain.CurrencyTON),
		mustWallet(t, "u2", domain.CurrencyTON),
		mustWallet(t, "u3", domain.CurrencyTON),
	}
	require.NoError(t, svc.BatchAdd(ctx, recs...))

	require.NoError(t, docstore.Delete[domain.Wallet](ctx, svc, recs[0].GetID()))
	require.NoError(t, docstore.Delete[domain.Wallet](ctx, svc, recs[0].GetID()))
	assert.Equal(t, 2, store.Len(domain.CollectionWallets))

	require.NoError(t, docstore.BatchDelete[domain.Wallet](ctx, svc, []string{recs[1].GetID(), recs[2].GetID()}))
	assert.Equal(t, 0, store.Len(domain.CollectionWallets))
}

func TestService_Subcollection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	item, err := domain.NewInventory("u1", "g1", 1250, "2024-05-01T00:00:00Z")
	require.NoError(t, err)
	id, err := docstore.AddToSubcollection[domain.UserInfo](ctx, svc, "u1", item)
	require.NoError(t, err)
	assert.Equal(t, id, item.ID)

	other, err := domain.NewInventory("u2", "g2", 10, "2024-05-02T00:00:00Z")
	require.NoError(t, err)
	_, err = docstore.AddToSubcollection[domain.UserInfo](ctx, svc, "u2", other)
	require.NoError(t, err)

	items, err := docstore.FetchSubcollection[domain.UserInfo, domain.Inventory](ctx, svc, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "g1", items[0].GiftID)

	top, err := docstore.FetchAll[domain.Inventory](ctx, svc)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestService_FetchAllDecodeFailure(t *testing.T) {
	ctx := context.Background()
	svc, store := newMemoryService(t)
	require.NoError(t, store.Set(ctx, domain.CollectionWallets, "bad", map[string]any{
		"user_id":  "u1",
		"currency": "DOGE",
	}, false))

	_, err := docstore.FetchAll[domain.Wallet](ctx, svc)
	require.Error(t, err)
	var storeErr *docstore.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, docstore.OpFetchAll, storeErr.Op)

	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestService_GiftPayloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	g, err := domain.NewGift(domain.Gift{
		CaseID:   "c1",
		Name:     "Plush Pepe",
		Prob:     250,
		IsActive: true,
		Type:     domain.GiftTypeBalance,
	})
	require.NoError(t, err)
	require.NoError(t, g.UpdatePayload(&domain.Reward{ID: "r1", Name: "500 TON", Volume: 500, PhotoURL: "https://img/r1.png"}))
	require.NoError(t, svc.Create(ctx, g))

	got, err := docstore.FetchByID[domain.Gift](ctx, svc, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(500), got.Volume)
	reward, ok := got.Payload.(*domain.Reward)
	require.True(t, ok)
	assert.Equal(t, "500 TON", reward.Name)
}

func TestService_CaseOpeningsByTime(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		o, err := domain.NewCaseOpening(domain.CaseOpening{
			UserID:     "u1",
			CaseID:     "c1",
			GiftID:     "g1",
			GiftType:   domain.GiftTypeBalance,
			GiftVolume: 100,
			Status:     domain.CaseOpeningNew,
			OpenAt:     base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		require.NoError(t, svc.Create(ctx, o))
	}

	recent, err := docstore.FetchAll[domain.CaseOpening](ctx, svc,
		ports.Where(domain.KeyOpenAt, ports.OpGreater, base.Add(30*time.Minute)))
	require.NoError(t, err)
	require.Len(t, recent, 2)

	times := []time.Time{recent[0].OpenAt, recent[1].OpenAt}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	assert.True(t, times[0].Equal(base.Add(time.Hour)))
}

func TestService_StoreErrors(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mock_ports.NewMockDocumentStore(ctrl)
	svc := docstore.NewService(mockStore, nil)
	boom := errors.New("deadline exceeded")

	t.Run("Create wraps cause with collection", func(t *testing.T) {
		mockStore.EXPECT().Add(gomock.Any(), domain.CollectionCases, gomock.Any()).Return("", boom)

		c, err := domain.NewCase("Gold", 1000, "https://img/gold.png", true)
		require.NoError(t, err)
		err = svc.Create(ctx, c)
		require.Error(t, err)
		assert.True(t, errors.Is(err, boom))
		assert.Contains(t, err.Error(), domain.CollectionCases)
		assert.Empty(t, c.ID)
	})

	t.Run("FetchByID wraps transport failure", func(t *testing.T) {
		mockStore.EXPECT().Get(gomock.Any(), domain.CollectionGifts, "g1").Return(ports.Document{}, false, boom)

		g, err := docstore.FetchByID[domain.Gift](ctx, svc, "g1")
		assert.Nil(t, g)
		var storeErr *docstore.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, docstore.OpFetchByID, storeErr.Op)
		assert.Equal(t, "g1", storeErr.ID)
	})

	t.Run("BatchUpdate never commits when an id is missing", func(t *testing.T) {
		// 沒有設定 Commit 的期望；被呼叫時 gomock 會讓測試失敗
		w := mustWallet(t, "u1", domain.CurrencyTON)
		err := svc.BatchUpdate(ctx, w)
		assert.True(t, errors.Is(err, docstore.ErrMissingID))
	})

	t.Run("BatchAdd leaves ids empty on failed commit", func(t *testing.T) {
		mockStore.EXPECT().NewID(domain.CollectionWallets).Return("id-1")
		mockStore.EXPECT().NewID(domain.CollectionTransactions).Return("id-2")
		mockStore.EXPECT().Commit(gomock.Any(), gomock.Len(2)).Return(boom)

		w := mustWallet(t, "u1", domain.CurrencyTON)
		tx, err := domain.NewTransaction(domain.Transaction{FromWalletID: "w1", ToWalletID: "w2", Amount: 100, Currency: domain.CurrencyTON})
		require.NoError(t, err)

		err = svc.BatchAdd(ctx, w, tx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "transactions,wallets")
		assert.Empty(t, w.ID)
		assert.Empty(t, tx.ID)
	})

	t.Run("Update sends merge write", func(t *testing.T) {
		mockStore.EXPECT().Set(gomock.Any(), domain.CollectionWallets, "w1", map[string]any{domain.KeyBalance: int64(5)}, true).Return(nil)

		patch := domain.Partial(&domain.Wallet{})
		patch.SetBalance(5)
		_, err := svc.Update(ctx, "w1", patch)
		assert.NoError(t, err)
	})

	t.Run("Close delegates", func(t *testing.T) {
		mockStore.EXPECT().Close().Return(nil)
		assert.NoError(t, svc.Close())
	})
}
