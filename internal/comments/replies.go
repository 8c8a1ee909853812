package comments

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// WithReplies returns the IDs of comments whose reply count is above zero,
// in input order.
func WithReplies(comments []Comment) []string {
	var ids []string
	for _, c := range comments {
		if c.Replies > 0 {
			ids = append(ids, c.CommentID)
		}
	}
	return ids
}

// SortReplies orders replies by PublishedAt ascending. Equal timestamps
// keep their source order.
func SortReplies(replies []Reply) {
	sort.SliceStable(replies, func(i, j int) bool {
		return replies[i].PublishedAt < replies[j].PublishedAt
	})
}

// AttachReplies appends each batch's reply texts, in batch order, to the
// comment whose ID equals the batch's ParentID. Batches with no matching
// comment are dropped. comments is modified in place and returned.
func AttachReplies(comments []Comment, batches []ReplyBatch) []Comment {
	index := make(map[string]int, len(comments))
	for i, c := range comments {
		index[c.CommentID] = i
	}

	for _, batch := range batches {
		i, ok := index[batch.ParentID]
		if !ok {
			continue
		}
		for _, r := range batch.Replies {
			comments[i].RepliesText = append(comments[i].RepliesText, r.Text)
		}
	}
	return comments
}

// Associate fetches the replies of every comment with a non-zero reply
// count and attaches them. Reply listings run with the configured
// concurrency; batches are joined in comment order either way. Any error
// aborts the whole association.
func (f *Fetcher) Associate(ctx context.Context, comments []Comment) ([]Comment, error) {
	parents := WithReplies(comments)
	if len(parents) == 0 {
		return comments, nil
	}

	f.logger.Infof("Fetching replies for %d comments", len(parents))

	batches := make([]ReplyBatch, len(parents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.replyConcurrency)

	for i, parentID := range parents {
		i, parentID := i, parentID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			batch, err := f.fetchReplies(gctx, parentID)
			if err != nil {
				return err
			}
			batches[i] = batch
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return AttachReplies(comments, batches), nil
}

// fetchReplies lists every page of replies for parentID and returns them
// sorted by publish time.
func (f *Fetcher) fetchReplies(ctx context.Context, parentID string) (ReplyBatch, error) {
	var replies []Reply
	pageToken := ""

	for {
		page, err := f.source.ListReplies(ctx, parentID, pageToken)
		if err != nil {
			return ReplyBatch{}, fmt.Errorf("failed to fetch replies for comment %s: %w", parentID, err)
		}
		for _, r := range page.Replies {
			r.Text = f.text(r.Text)
			replies = append(replies, r)
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	SortReplies(replies)

	batch := ReplyBatch{ParentID: parentID, Replies: replies}
	if len(replies) > 0 && replies[0].ParentID != "" {
		batch.ParentID = replies[0].ParentID
	}
	return batch, nil
}
