package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arsdigest/internal/types"
)

func testArticles() []types.Article {
	return []types.Article{
		{
			Title:     "Quantum leap for chipmakers",
			Link:      "https://arstechnica.com/index.html?p=111",
			Published: "Tue, 03 Jun 2025 12:00:00 +0000",
			Summary:   "<p>Excerpt <em>one</em>.</p>",
			PrintLink: "http://arstechnica.com?ARS_PDF=111",
		},
		{
			Title:     "Rocket makes <unscheduled> landing",
			Link:      "https://arstechnica.com/index.html?p=222",
			Published: "Tue, 03 Jun 2025 14:30:00 +0000",
			Summary:   "Plain excerpt.",
			PrintLink: "http://arstechnica.com?ARS_PDF=222",
		},
	}
}

func TestRenderContainsAllItems(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	now := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	out, err := r.Render(testArticles(), now)
	require.NoError(t, err)

	assert.Contains(t, out.BodyHTML, "Quantum leap for chipmakers")
	assert.Contains(t, out.BodyHTML, "https://arstechnica.com/index.html?p=111")
	assert.Contains(t, out.BodyHTML, "http://arstechnica.com?ARS_PDF=111")
	assert.Contains(t, out.BodyHTML, "http://arstechnica.com?ARS_PDF=222")

	assert.Contains(t, out.BodyText, "Quantum leap for chipmakers")
	assert.Contains(t, out.BodyText, "http://arstechnica.com?ARS_PDF=222")
}

func TestRenderDateIsLongForm(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	now := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	out, err := r.Render(testArticles(), now)
	require.NoError(t, err)

	assert.Contains(t, out.BodyHTML, "Tuesday, June 03, 2025")
	assert.Contains(t, out.BodyText, "Tuesday, June 03, 2025")
}

func TestRenderSummaryKeptAsMarkup(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(testArticles(), time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// The feed-supplied summary is an HTML excerpt and must land in the
	// document unescaped.
	assert.Contains(t, out.BodyHTML, "<p>Excerpt <em>one</em>.</p>")
}

func TestRenderEscapesTitles(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(testArticles(), time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, out.BodyHTML, "Rocket makes &lt;unscheduled&gt; landing")
	assert.NotContains(t, out.BodyHTML, "Rocket makes <unscheduled> landing")
}

func TestRenderIsDeterministic(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	now := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC)
	first, err := r.Render(testArticles(), now)
	require.NoError(t, err)
	second, err := r.Render(testArticles(), now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
