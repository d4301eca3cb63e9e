// Package feed fetches the remote RSS feed and materializes it into
// domain articles, deriving the secondary print/PDF link for each item.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mmcdole/gofeed"

	"arsdigest/internal/types"
)

// printLinkFormat is the fixed template for the derived print link; the
// article id extracted from the canonical link is substituted in.
const printLinkFormat = "http://arstechnica.com?ARS_PDF=%s"

// articleIDParam is the query parameter on the canonical link that
// carries the article id.
const articleIDParam = "p"

// Fetcher retrieves and parses one RSS feed per call. The sequence it
// returns is finite and fully materialized: everything is read into
// memory before returning.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewFetcher creates a Fetcher using the given HTTP client. The client
// timeout is the only bound on the fetch; the job has no separate
// cancellation path.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: client,
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// Fetch issues a single GET for the feed URL and parses the body into
// articles. A non-2xx response yields a feed_fetch_failed error with
// the status code in Details and no articles, never a partial result.
//
// Items whose canonical link carries no extractable article id are
// skipped with a warning rather than failing the whole run, so one
// malformed item cannot suppress the digest for the rest.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]types.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeFeedFetchFailed,
			"failed to build feed request",
			err,
		)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeFeedFetchFailed,
			"feed request failed",
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeFeedFetchFailed,
			fmt.Sprintf("feed endpoint returned status %d", resp.StatusCode),
			nil,
			map[string]any{"status_code": resp.StatusCode},
		)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeFeedFetchFailed,
			"failed to parse feed body",
			err,
		)
	}

	articles := make([]types.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		printLink, err := derivePrintLink(item.Link)
		if err != nil {
			f.logger.WarnContext(ctx, "skipping item with malformed link",
				"link", item.Link,
				"error", err,
			)
			continue
		}

		articles = append(articles, types.Article{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.Published,
			Summary:   item.Description,
			PrintLink: printLink,
		})
	}

	return articles, nil
}

// derivePrintLink extracts the article id query parameter from the
// canonical link and substitutes it into the print link template.
func derivePrintLink(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeFeedLinkMalformed,
			"article link is not a valid URL",
			err,
		)
	}

	id := parsed.Query().Get(articleIDParam)
	if id == "" {
		return "", types.NewAppError(
			types.ErrCodeFeedLinkMalformed,
			fmt.Sprintf("article link has no %q query parameter", articleIDParam),
			nil,
		)
	}

	return fmt.Sprintf(printLinkFormat, id), nil
}
