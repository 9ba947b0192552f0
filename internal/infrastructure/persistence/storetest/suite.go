// Package storetest 是所有 DocumentStore 後端共用的行為測試。
// 各後端的 _test.go 以自己的建構方式呼叫 Run。
package storetest

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/case-common/internal/core/ports"
)

// Factory 回傳一個空的 store；每個子測試都會呼叫一次
type Factory func(t *testing.T) ports.DocumentStore

// Run 執行共用測試
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("Add then Get", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Add(ctx, "wallets", map[string]any{"user_id": "u1", "balance": int64(1250), "currency": "TON"})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, found, err := s.Get(ctx, "wallets", id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, id, doc.ID)
		assert.Equal(t, "u1", doc.Data["user_id"])
		assert.EqualValues(t, 1250, doc.Data["balance"])
	})

	t.Run("Integers beyond float64 precision round trip", func(t *testing.T) {
		s := newStore(t)
		const big = int64(1<<53 + 1)
		require.NoError(t, s.Set(ctx, "users", "u1", map[string]any{"tg_id": big}, false))
		require.NoError(t, s.Set(ctx, "users", "u1", map[string]any{"username": "pepe"}, true))

		doc, found, err := s.Get(ctx, "users", "u1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, big, doc.Data["tg_id"])

		docs, err := s.Query(ctx, "users", []ports.Filter{ports.Where("tg_id", ports.OpEqual, big)})
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("Get missing document", func(t *testing.T) {
		s := newStore(t)
		_, found, err := s.Get(ctx, "wallets", "nope")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Set overwrites without merge", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "cases", "c1", map[string]any{"name": "Gold", "cost": 500}, false))
		require.NoError(t, s.Set(ctx, "cases", "c1", map[string]any{"name": "Silver"}, false))

		doc, found, err := s.Get(ctx, "cases", "c1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Silver", doc.Data["name"])
		_, hasCost := doc.Data["cost"]
		assert.False(t, hasCost)
	})

	t.Run("Set with merge keeps other fields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "wallets", "w1", map[string]any{
			"user_id": "u1", "balance": 100, "currency": "TON",
		}, false))
		require.NoError(t, s.Set(ctx, "wallets", "w1", map[string]any{"balance": 300}, true))

		doc, _, err := s.Get(ctx, "wallets", "w1")
		require.NoError(t, err)
		assert.EqualValues(t, 300, doc.Data["balance"])
		assert.Equal(t, "u1", doc.Data["user_id"])
		assert.Equal(t, "TON", doc.Data["currency"])
	})

	t.Run("merge on missing document creates it", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "wallets", "fresh", map[string]any{"balance": 1}, true))
		_, found, err := s.Get(ctx, "wallets", "fresh")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("times round trip", func(t *testing.T) {
		s := newStore(t)
		ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
		require.NoError(t, s.Set(ctx, "transactions", "t1", map[string]any{"timestamp": ts}, false))
		doc, _, err := s.Get(ctx, "transactions", "t1")
		require.NoError(t, err)

		// JSON 後端回傳 RFC3339 字串，Firestore 回傳 time.Time
		var got time.Time
		switch v := doc.Data["timestamp"].(type) {
		case string:
			got, err = time.Parse(time.RFC3339Nano, v)
			require.NoError(t, err)
		case time.Time:
			got = v
		default:
			t.Fatalf("unexpected timestamp type %T", v)
		}
		assert.True(t, ts.Equal(got))
	})

	t.Run("Query filters", func(t *testing.T) {
		s := newStore(t)
		seed := []map[string]any{
			{"user_id": "u1", "currency": "TON", "balance": 100},
			{"user_id": "u1", "currency": "COIN", "balance": 500},
			{"user_id": "u2", "currency": "TON", "balance": 900},
		}
		for _, d := range seed {
			_, err := s.Add(ctx, "wallets", d)
			require.NoError(t, err)
		}

		all, err := s.Query(ctx, "wallets", nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		u1, err := s.Query(ctx, "wallets", []ports.Filter{ports.Where("user_id", ports.OpEqual, "u1")})
		require.NoError(t, err)
		assert.Len(t, u1, 2)

		both, err := s.Query(ctx, "wallets", []ports.Filter{
			ports.Where("user_id", ports.OpEqual, "u1"),
			ports.Where("currency", ports.OpEqual, "TON"),
		})
		require.NoError(t, err)
		require.Len(t, both, 1)
		assert.EqualValues(t, 100, both[0].Data["balance"])

		rich, err := s.Query(ctx, "wallets", []ports.Filter{ports.Where("balance", ports.OpGreaterEqual, 500)})
		require.NoError(t, err)
		assert.Equal(t, []string{"u1", "u2"}, userIDs(rich))

		in, err := s.Query(ctx, "wallets", []ports.Filter{ports.Where("currency", ports.OpIn, []string{"COIN", "XTR"})})
		require.NoError(t, err)
		assert.Len(t, in, 1)

		none, err := s.Query(ctx, "wallets", []ports.Filter{ports.Where("user_id", ports.OpEqual, "ghost")})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Query rejects unknown operator", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Query(ctx, "wallets", []ports.Filter{ports.Where("x", ports.Operator("like"), "a")})
		assert.True(t, errors.Is(err, ports.ErrUnsupportedOperator))
	})

	t.Run("subcollections are isolated per parent", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(ctx, "users/u1/inventory", map[string]any{"gift_id": "g1"})
		require.NoError(t, err)
		_, err = s.Add(ctx, "users/u2/inventory", map[string]any{"gift_id": "g2"})
		require.NoError(t, err)

		docs, err := s.Query(ctx, "users/u1/inventory", nil)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "g1", docs[0].Data["gift_id"])

		top, err := s.Query(ctx, "users", nil)
		require.NoError(t, err)
		assert.Empty(t, top)
	})

	t.Run("invalid collection path", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(ctx, "users/u1", map[string]any{"a": 1})
		assert.True(t, errors.Is(err, ports.ErrInvalidPath))
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "gifts", "g1", map[string]any{"name": "x"}, false))
		require.NoError(t, s.Delete(ctx, "gifts", "g1"))
		require.NoError(t, s.Delete(ctx, "gifts", "g1"))
		_, found, err := s.Get(ctx, "gifts", "g1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Commit applies every write", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "gifts", "old", map[string]any{"name": "old"}, false))
		require.NoError(t, s.Set(ctx, "gifts", "keep", map[string]any{"name": "keep", "prob": 5}, false))

		err := s.Commit(ctx, []ports.Write{
			{Kind: ports.WriteSet, Collection: "gifts", ID: s.NewID("gifts"), Data: map[string]any{"name": "new"}},
			{Kind: ports.WriteSet, Collection: "gifts", ID: "keep", Data: map[string]any{"prob": 7}, Merge: true},
			{Kind: ports.WriteDelete, Collection: "gifts", ID: "old"},
		})
		require.NoError(t, err)

		docs, err := s.Query(ctx, "gifts", nil)
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		keep, _, err := s.Get(ctx, "gifts", "keep")
		require.NoError(t, err)
		assert.Equal(t, "keep", keep.Data["name"])
		assert.EqualValues(t, 7, keep.Data["prob"])
	})

	t.Run("Commit is all or nothing on invalid write", func(t *testing.T) {
		s := newStore(t)
		err := s.Commit(ctx, []ports.Write{
			{Kind: ports.WriteSet, Collection: "gifts", ID: "a", Data: map[string]any{"name": "a"}},
			{Kind: ports.WriteSet, Collection: "gifts", ID: "", Data: map[string]any{"name": "b"}},
		})
		require.Error(t, err)

		docs, err := s.Query(ctx, "gifts", nil)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("empty Commit is a no-op", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Commit(ctx, nil))
	})

	t.Run("NewID is unique", func(t *testing.T) {
		s := newStore(t)
		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			id := s.NewID("wallets")
			_, dup := seen[id]
			require.False(t, dup)
			seen[id] = struct{}{}
		}
	})
}

func userIDs(docs []ports.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Data["user_id"].(string))
	}
	sort.Strings(out)
	return out
}
