package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPage struct {
	Titles []string
	Number int
}

func TestLRUCacheExpiry(t *testing.T) {
	c, err := NewLRUCache(8)
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "index:1", cachedPage{Titles: []string{"a", "b"}, Number: 1}, 20*time.Second))

	var got cachedPage
	found, err := c.Get(ctx, "index:1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got.Titles)

	now = now.Add(21 * time.Second)
	found, err = c.Get(ctx, "index:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLRUCacheDelete(t *testing.T) {
	c, err := NewLRUCache(8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedisClient(mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisCache(client, "test:")
	ctx := context.Background()

	var got cachedPage
	found, err := c.Get(ctx, "index:2", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "index:2", cachedPage{Titles: []string{"x"}, Number: 2}, 20*time.Second))
	assert.True(t, mr.Exists("test:index:2"))

	found, err = c.Get(ctx, "index:2", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, got.Number)

	mr.FastForward(21 * time.Second)
	found, err = c.Get(ctx, "index:2", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewPageCacheFallsBackToLRU(t *testing.T) {
	c, err := NewPageCache(context.Background(), "", 4)
	require.NoError(t, err)
	assert.IsType(t, &LRUCache{}, c)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	c, err = NewPageCache(context.Background(), "redis://"+mr.Addr()+"/0", 4)
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, c)
}

func TestTruncateChars(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"короткий", 30, "короткий"},
		{strings.Repeat("я", 30), 30, strings.Repeat("я", 30)},
		{strings.Repeat("я", 31), 30, strings.Repeat("я", 29) + "…"},
		{"abc", 0, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, TruncateChars(tc.in, tc.n))
	}
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"", "0", "-1", "abc", "1.5"} {
		_, ok := ParseID(raw)
		assert.False(t, ok, raw)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("первая строка\nвторая <script>alert(1)</script>"))
	assert.Contains(t, out, "первая строка<br")
	assert.NotContains(t, out, "<script>")

	out = string(RenderMarkdown("https://www.youtube.com/watch?v=abc123"))
	assert.Contains(t, out, `src="https://www.youtube.com/embed/abc123"`)

	out = string(RenderMarkdown("![cat](https://example.com/cat.png)"))
	assert.Contains(t, out, `loading="lazy"`)

	out = string(RenderMarkdown("[сайт](https://example.com/)"))
	assert.Contains(t, out, "nofollow")
	assert.NotContains(t, out, "target=")

	out = string(RenderMarkdown("# Заголовок"))
	assert.NotContains(t, out, "<h1")
	assert.Contains(t, out, "Заголовок")
}

func TestRenderComment(t *testing.T) {
	out := string(RenderComment("смотри ![cat](https://example.com/cat.png) **жирно**"))
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "<strong>жирно</strong>")

	out = string(RenderComment("https://www.youtube.com/watch?v=abc123"))
	assert.NotContains(t, out, "iframe")
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("war-and-peace")
	require.NoError(t, err)
	assert.NotEqual(t, "war-and-peace", hash)
	assert.True(t, CheckPasswordHash("war-and-peace", hash))
	assert.False(t, CheckPasswordHash("anna-karenina", hash))
}
