// Package youtube adapts the YouTube Data API v3 comment endpoints to
// comments.Source.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/andywolf/ytcomments/internal/comments"
	"github.com/andywolf/ytcomments/internal/version"
)

// maxReplyPageSize is the largest page comments.list accepts.
const maxReplyPageSize = 100

// Options configures the API client.
type Options struct {
	APIKey     string
	Part       []string
	MaxResults int
	Order      string
	Timeout    time.Duration
}

// Client lists comment threads and replies.
type Client struct {
	svc        *ytapi.Service
	threadPart []string
	replyPart  []string
	maxResults int64
	order      string
	timeout    time.Duration
}

// NewClient creates a Client authenticated with opts.APIKey. Extra client
// options (endpoint, HTTP client) are appended after the key.
func NewClient(ctx context.Context, opts Options, clientOpts ...option.ClientOption) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("an API key is required")
	}

	all := append([]option.ClientOption{
		option.WithAPIKey(opts.APIKey),
		option.WithUserAgent(version.UserAgent()),
	}, clientOpts...)

	svc, err := ytapi.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	part := opts.Part
	if len(part) == 0 {
		part = []string{"snippet"}
	}

	return &Client{
		svc:        svc,
		threadPart: part,
		replyPart:  replyPart(part),
		maxResults: int64(opts.MaxResults),
		order:      opts.Order,
		timeout:    opts.Timeout,
	}, nil
}

// replyPart keeps only the parts comments.list understands. "snippet" is
// always requested since replies are useless without it.
func replyPart(part []string) []string {
	out := []string{"snippet"}
	for _, p := range part {
		if p == "id" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// ListThreads returns one page of top-level comment threads for videoID.
func (c *Client) ListThreads(ctx context.Context, videoID, pageToken string) (comments.ThreadPage, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	call := c.svc.CommentThreads.List(c.threadPart).VideoId(videoID)
	if c.maxResults > 0 {
		call = call.MaxResults(c.maxResults)
	}
	if c.order != "" {
		call = call.Order(c.order)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return comments.ThreadPage{}, fmt.Errorf("commentThreads.list for video %s: %w", videoID, err)
	}

	page := comments.ThreadPage{
		Comments:      make([]comments.Comment, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		page.Comments = append(page.Comments, threadToComment(item))
	}
	return page, nil
}

// ListReplies returns one page of replies to parentID.
func (c *Client) ListReplies(ctx context.Context, parentID, pageToken string) (comments.ReplyPage, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	call := c.svc.Comments.List(c.replyPart).ParentId(parentID).MaxResults(maxReplyPageSize)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return comments.ReplyPage{}, fmt.Errorf("comments.list for parent %s: %w", parentID, err)
	}

	page := comments.ReplyPage{
		Replies:       make([]comments.Reply, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		page.Replies = append(page.Replies, toReply(item))
	}
	return page, nil
}

func threadToComment(t *ytapi.CommentThread) comments.Comment {
	c := comments.Comment{
		CommentID:   t.Id,
		RepliesText: []string{},
	}
	if t.Snippet == nil {
		return c
	}
	c.Replies = int(t.Snippet.TotalReplyCount)
	if top := t.Snippet.TopLevelComment; top != nil && top.Snippet != nil {
		c.Text = top.Snippet.TextDisplay
		if top.Snippet.AuthorChannelId != nil {
			c.AuthorChannelID = top.Snippet.AuthorChannelId.Value
		}
	}
	return c
}

func toReply(c *ytapi.Comment) comments.Reply {
	if c.Snippet == nil {
		return comments.Reply{}
	}
	return comments.Reply{
		ParentID:    c.Snippet.ParentId,
		Text:        c.Snippet.TextDisplay,
		PublishedAt: c.Snippet.PublishedAt,
	}
}

// IsQuotaExceeded reports whether err is the API's daily quota error.
func IsQuotaExceeded(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != 403 {
		return false
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "quotaExceeded" || item.Reason == "dailyLimitExceeded" {
			return true
		}
	}
	return false
}

// IsCommentsDisabled reports whether the video has comments turned off.
func IsCommentsDisabled(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != 403 {
		return false
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "commentsDisabled" {
			return true
		}
	}
	return false
}

var _ comments.Source = (*Client)(nil)
