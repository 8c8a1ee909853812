// Package comments pages through a video's comment threads and joins
// replies onto their parent comments.
package comments

import "context"

// Comment is one top-level comment as written to the output file.
type Comment struct {
	CommentID       string   `json:"commentId"`
	AuthorChannelID string   `json:"authorChannelId"`
	Text            string   `json:"text"`
	Replies         int      `json:"replies"`
	RepliesText     []string `json:"repliesText"`
}

// Reply is a single reply to a top-level comment. PublishedAt is an
// RFC 3339 timestamp and sorts lexicographically.
type Reply struct {
	ParentID    string
	Text        string
	PublishedAt string
}

// ReplyBatch holds every reply fetched for one parent comment.
type ReplyBatch struct {
	ParentID string
	Replies  []Reply
}

// ThreadPage is one page of comment threads. An empty NextPageToken means
// there are no more pages.
type ThreadPage struct {
	Comments      []Comment
	NextPageToken string
}

// ReplyPage is one page of replies to a single comment.
type ReplyPage struct {
	Replies       []Reply
	NextPageToken string
}

// Source is the paginated comment API.
type Source interface {
	ListThreads(ctx context.Context, videoID, pageToken string) (ThreadPage, error)
	ListReplies(ctx context.Context, parentID, pageToken string) (ReplyPage, error)
}

// Logger receives progress messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Warningf(string, ...interface{}) {}
