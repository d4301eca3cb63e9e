package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arsdigest/internal/types"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "digest.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func article(link string) types.Article {
	return types.Article{
		Title:     "Title for " + link,
		Link:      link,
		Published: "Tue, 03 Jun 2025 12:00:00 +0000",
		Summary:   "<p>summary</p>",
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.db")

	s1, err := Open(path)
	require.NoError(t, err)

	_, err = s1.RecordIfNew(context.Background(), article("https://arstechnica.com/?p=1"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// A second open against the same file must not disturb existing rows.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	isNew, err := s2.RecordIfNew(context.Background(), article("https://arstechnica.com/?p=1"))
	require.NoError(t, err)
	assert.False(t, isNew, "record persisted before reopen must still be present")
}

func TestOpenUnwritablePath(t *testing.T) {
	_, err := Open("/nonexistent-dir/sub/digest.db")
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeStorageUnavailable, types.CodeOf(err))
}

func TestRecordIfNew(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	isNew, err := s.RecordIfNew(ctx, article("https://arstechnica.com/?p=100"))
	require.NoError(t, err)
	assert.True(t, isNew)

	// Same link again: no write, not new.
	isNew, err = s.RecordIfNew(ctx, article("https://arstechnica.com/?p=100"))
	require.NoError(t, err)
	assert.False(t, isNew)

	// A different link is unaffected.
	isNew, err = s.RecordIfNew(ctx, article("https://arstechnica.com/?p=200"))
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestUniquenessInvariant(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	link := "https://arstechnica.com/?p=42"
	for i := 0; i < 5; i++ {
		_, err := s.RecordIfNew(ctx, article(link))
		require.NoError(t, err)
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM articles WHERE link = ?", link,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "no two persisted records may share a link")
}

func TestFilterNew(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	a := article("https://arstechnica.com/?p=1")
	b := article("https://arstechnica.com/?p=2")

	fresh, err := s.FilterNew(ctx, []types.Article{a, b})
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, a.Link, fresh[0].Link)
	assert.Equal(t, b.Link, fresh[1].Link)

	// Same feed again: nothing new.
	fresh, err = s.FilterNew(ctx, []types.Article{a, b})
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestFilterNewDuplicateWithinRun(t *testing.T) {
	s, _ := openTestStore(t)

	a := article("https://arstechnica.com/?p=7")
	fresh, err := s.FilterNew(context.Background(), []types.Article{a, a})
	require.NoError(t, err)
	assert.Len(t, fresh, 1, "two entries with the same link in one run must not both be accepted")
}

func TestRecordsAreIdempotentAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.db")
	ctx := context.Background()

	a := article("https://arstechnica.com/?p=9")

	s1, err := Open(path)
	require.NoError(t, err)
	fresh, err := s1.FilterNew(ctx, []types.Article{a})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	require.NoError(t, s1.Close())

	// Simulate the next scheduled invocation.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	fresh, err = s2.FilterNew(ctx, []types.Article{a})
	require.NoError(t, err)
	assert.Empty(t, fresh, "an already-recorded link must be excluded on subsequent runs")
}
