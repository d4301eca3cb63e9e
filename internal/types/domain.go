// Package types defines the shared domain types for the digest job:
// feed articles, the email transmission contract, the error taxonomy,
// and the redacted secret type used by configuration.
package types

// Article is one syndication item pulled from the feed.
//
// Link is the canonical URL and the natural key for deduplication: the
// store never holds two records with the same Link. Published and
// Summary are carried verbatim as the feed supplied them; Published is
// deliberately an opaque string, not a parsed time.
type Article struct {
	Title     string
	Link      string
	Published string
	Summary   string

	// PrintLink is derived from the `p` query parameter on Link at
	// fetch time. It is rendered into the digest but never persisted.
	PrintLink string
}

// SendInput defines the contract for email transmission. Content is
// pre-rendered by the caller; providers transmit it as-is.
type SendInput struct {
	To       string
	From     SenderIdentity
	Subject  string
	BodyHTML string
	BodyText string

	// ReferenceID correlates a send with the run that produced it.
	ReferenceID string
}

// SenderIdentity defines the sender for outgoing emails.
type SenderIdentity struct {
	Name    string
	Address string
}
