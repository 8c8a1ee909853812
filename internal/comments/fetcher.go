package comments

import (
	"context"
	"fmt"
)

// Fetcher collects comments and replies from a Source.
type Fetcher struct {
	source           Source
	logger           Logger
	maxPages         int
	replyConcurrency int
	transform        func(string) string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the progress logger.
func WithLogger(l Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMaxPages caps the number of thread pages fetched. Zero means no cap.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// WithReplyConcurrency sets how many reply listings may be in flight at
// once. Values below 1 are treated as 1 (sequential).
func WithReplyConcurrency(n int) Option {
	return func(f *Fetcher) {
		f.replyConcurrency = n
	}
}

// WithTextTransform rewrites every comment and reply text, e.g. to strip
// markup.
func WithTextTransform(fn func(string) string) Option {
	return func(f *Fetcher) {
		f.transform = fn
	}
}

// NewFetcher creates a Fetcher reading from source.
func NewFetcher(source Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:           source,
		logger:           nopLogger{},
		replyConcurrency: 1,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.replyConcurrency < 1 {
		f.replyConcurrency = 1
	}
	return f
}

func (f *Fetcher) text(s string) string {
	if f.transform == nil {
		return s
	}
	return f.transform(s)
}

// FetchAll pages through every comment thread of videoID, starting with an
// empty page token and following NextPageToken until a page has none.
// Comments keep source order. Any page error discards everything fetched.
func (f *Fetcher) FetchAll(ctx context.Context, videoID string) ([]Comment, error) {
	all := make([]Comment, 0)
	pageToken := ""
	pages := 0

	for {
		page, err := f.source.ListThreads(ctx, videoID, pageToken)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch comment page %d: %w", pages+1, err)
		}
		pages++

		for _, c := range page.Comments {
			c.Text = f.text(c.Text)
			if c.RepliesText == nil {
				c.RepliesText = []string{}
			}
			all = append(all, c)
		}
		f.logger.Infof("Fetched comment page %d (%d comments, %d total)", pages, len(page.Comments), len(all))

		if page.NextPageToken == "" {
			break
		}
		if f.maxPages > 0 && pages >= f.maxPages {
			f.logger.Warningf("Stopping after %d pages (max_pages reached), more comments are available", pages)
			break
		}
		pageToken = page.NextPageToken
	}

	return all, nil
}

// Run fetches all comments and, when includeReplies is set, their replies.
func (f *Fetcher) Run(ctx context.Context, videoID string, includeReplies bool) ([]Comment, error) {
	all, err := f.FetchAll(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !includeReplies {
		return all, nil
	}
	return f.Associate(ctx, all)
}
