package docquery

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/case-common/internal/core/ports"
)

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 600, time.FixedZone("UTC+8", 8*3600))
	out, err := Normalize(map[string]any{
		"n":    int64(42),
		"big":  int64(1<<53 + 1),
		"f":    2.5,
		"t":    ts,
		"tp":   &ts,
		"nil":  nil,
		"list": []string{"a", "b"},
		"nested": map[string]any{
			"at": ts,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), out["n"])
	assert.Equal(t, int64(1<<53+1), out["big"])
	assert.Equal(t, 2.5, out["f"])
	assert.Equal(t, "2024-01-01T19:04:05.0000006Z", out["t"])
	assert.Equal(t, out["t"], out["tp"])
	assert.Nil(t, out["nil"])
	assert.Equal(t, []any{"a", "b"}, out["list"])
	assert.Equal(t, "2024-01-01T19:04:05.0000006Z", out["nested"].(map[string]any)["at"])
}

func TestMerge(t *testing.T) {
	dst := map[string]any{
		"name": "a",
		"info": map[string]any{"x": 1.0, "y": 2.0},
		"tags": []any{"old"},
	}
	Merge(dst, map[string]any{
		"info": map[string]any{"y": 3.0, "z": 4.0},
		"tags": []any{"new"},
	})
	assert.Equal(t, map[string]any{
		"name": "a",
		"info": map[string]any{"x": 1.0, "y": 3.0, "z": 4.0},
		"tags": []any{"new"},
	}, dst)

	t.Run("nil dst", func(t *testing.T) {
		got := Merge(nil, map[string]any{"a": 1.0})
		assert.Equal(t, map[string]any{"a": 1.0}, got)
	})

	t.Run("map replaces scalar", func(t *testing.T) {
		got := Merge(map[string]any{"a": "s"}, map[string]any{"a": map[string]any{"b": 1.0}})
		assert.Equal(t, map[string]any{"b": 1.0}, got["a"])
	})
}

func TestValidatePaths(t *testing.T) {
	for _, ok := range []string{"users", "users/u1/inventory", "a/b/c/d/e"} {
		assert.NoError(t, ValidateCollection(ok), ok)
	}
	for _, bad := range []string{"", "users/u1", "users//inventory", "/users", "users/"} {
		assert.True(t, errors.Is(ValidateCollection(bad), ports.ErrInvalidPath), bad)
	}

	assert.NoError(t, ValidateID("abc"))
	assert.True(t, errors.Is(ValidateID(""), ports.ErrInvalidPath))
	assert.True(t, errors.Is(ValidateID("a/b"), ports.ErrInvalidPath))
}

func TestCompiledMatch(t *testing.T) {
	doc, err := Normalize(map[string]any{
		"status":   "NEW",
		"cost":     500,
		"big":      int64(1<<53 + 1),
		"active":   true,
		"tags":     []string{"rare", "blue"},
		"open_at":  "2024-05-01T10:00:00.5Z",
		"payload":  map[string]any{"volume": 1250},
		"optional": nil,
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter ports.Filter
		want   bool
	}{
		{"eq string", ports.Where("status", ports.OpEqual, "NEW"), true},
		{"eq miss", ports.Where("status", ports.OpEqual, "REDEEMED"), false},
		{"eq int", ports.Where("cost", ports.OpEqual, int64(500)), true},
		{"int vs float", ports.Where("cost", ports.OpLess, 500.5), true},
		{"big ints stay exact", ports.Where("big", ports.OpGreater, int64(1<<53)), true},
		{"ne", ports.Where("status", ports.OpNotEqual, "REDEEMED"), true},
		{"ne excludes null", ports.Where("optional", ports.OpNotEqual, "x"), false},
		{"lt", ports.Where("cost", ports.OpLess, 501), true},
		{"le", ports.Where("cost", ports.OpLessEqual, 500), true},
		{"gt", ports.Where("cost", ports.OpGreater, 500), false},
		{"ge", ports.Where("cost", ports.OpGreaterEqual, 500), true},
		{"type mismatch never orders", ports.Where("cost", ports.OpGreater, "100"), false},
		{"bool eq", ports.Where("active", ports.OpEqual, true), true},
		{"in", ports.Where("status", ports.OpIn, []string{"NEW", "INVENTORY"}), true},
		{"not in", ports.Where("status", ports.OpNotIn, []string{"NEW"}), false},
		{"array contains", ports.Where("tags", ports.OpArrayContains, "rare"), true},
		{"array contains any", ports.Where("tags", ports.OpArrayContainsAny, []string{"red", "blue"}), true},
		{"array contains on scalar", ports.Where("status", ports.OpArrayContains, "NEW"), false},
		{"nested field", ports.Where("payload.volume", ports.OpEqual, 1250), true},
		{"missing field", ports.Where("ghost", ports.OpNotEqual, "x"), false},
		{"time compare ignores fraction width", ports.Where("open_at", ports.OpGreater, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile([]ports.Filter{tt.filter})
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Match(doc))
		})
	}

	t.Run("filters are ANDed", func(t *testing.T) {
		c, err := Compile([]ports.Filter{
			ports.Where("status", ports.OpEqual, "NEW"),
			ports.Where("cost", ports.OpGreater, 1000),
		})
		require.NoError(t, err)
		assert.False(t, c.Match(doc))
	})

	t.Run("no filters match everything", func(t *testing.T) {
		c, err := Compile(nil)
		require.NoError(t, err)
		assert.True(t, c.Match(doc))
	})
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile([]ports.Filter{ports.Where("a", ports.Operator("like"), "x")})
	assert.True(t, errors.Is(err, ports.ErrUnsupportedOperator))

	_, err = Compile([]ports.Filter{ports.Where("a", ports.OpIn, "x")})
	assert.Error(t, err)
}
