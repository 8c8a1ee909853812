package comments

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestWithReplies(t *testing.T) {
	in := []Comment{comment("c1", 0), comment("c2", 2), comment("c3", 0), comment("c4", 1)}
	got := WithReplies(in)
	want := []string{"c2", "c4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WithReplies() = %v, want %v", got, want)
	}
}

func TestSortReplies_StableByPublishedAt(t *testing.T) {
	replies := []Reply{
		{Text: "late", PublishedAt: "2024-03-01T10:00:00Z"},
		{Text: "tie-first", PublishedAt: "2024-02-01T10:00:00Z"},
		{Text: "early", PublishedAt: "2024-01-01T10:00:00Z"},
		{Text: "tie-second", PublishedAt: "2024-02-01T10:00:00Z"},
	}

	SortReplies(replies)

	var got []string
	for _, r := range replies {
		got = append(got, r.Text)
	}
	want := []string{"early", "tie-first", "tie-second", "late"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortReplies() order = %v, want %v", got, want)
	}
}

func TestAttachReplies(t *testing.T) {
	tests := []struct {
		name    string
		batches []ReplyBatch
		want    map[string][]string
	}{
		{
			name:    "no batches",
			batches: nil,
			want:    map[string][]string{"c1": {}, "c2": {}},
		},
		{
			name: "batch joined by parent id",
			batches: []ReplyBatch{
				{ParentID: "c2", Replies: []Reply{{Text: "a"}, {Text: "b"}}},
			},
			want: map[string][]string{"c1": {}, "c2": {"a", "b"}},
		},
		{
			name: "unknown parent dropped",
			batches: []ReplyBatch{
				{ParentID: "ghost", Replies: []Reply{{Text: "orphan"}}},
				{ParentID: "c1", Replies: []Reply{{Text: "x"}}},
			},
			want: map[string][]string{"c1": {"x"}, "c2": {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []Comment{comment("c1", 1), comment("c2", 2)}
			got := AttachReplies(in, tt.batches)

			if len(got) != 2 {
				t.Fatalf("AttachReplies() returned %d comments, want 2", len(got))
			}
			for _, c := range got {
				if !reflect.DeepEqual(c.RepliesText, tt.want[c.CommentID]) {
					t.Errorf("%s RepliesText = %v, want %v", c.CommentID, c.RepliesText, tt.want[c.CommentID])
				}
			}
		})
	}
}

func TestAttachReplies_UnknownParentLeavesCommentsUntouched(t *testing.T) {
	in := []Comment{comment("c1", 1)}
	before := []Comment{comment("c1", 1)}

	got := AttachReplies(in, []ReplyBatch{{ParentID: "nope", Replies: []Reply{{Text: "r"}}}})
	if !reflect.DeepEqual(got, before) {
		t.Errorf("AttachReplies() = %+v, want %+v", got, before)
	}
}

func TestFetcher_Associate_NoRepliesIsNoop(t *testing.T) {
	src := &fakeSource{}
	in := []Comment{comment("c1", 0), comment("c2", 0)}
	want := []Comment{comment("c1", 0), comment("c2", 0)}

	got, err := NewFetcher(src).Associate(context.Background(), in)
	if err != nil {
		t.Fatalf("Associate() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Associate() = %+v, want %+v", got, want)
	}
	if len(src.replyCalls) != 0 {
		t.Errorf("ListReplies called %v, want no calls", src.replyCalls)
	}
}

func replySource() *fakeSource {
	return &fakeSource{
		replyPages: map[string]map[string]ReplyPage{
			"c1": {
				"": {
					Replies: []Reply{
						{ParentID: "c1", Text: "second", PublishedAt: "2024-01-02T00:00:00Z"},
						{ParentID: "c1", Text: "first", PublishedAt: "2024-01-01T00:00:00Z"},
					},
					NextPageToken: "r2",
				},
				"r2": {
					Replies: []Reply{
						{ParentID: "c1", Text: "zeroth", PublishedAt: "2023-12-31T00:00:00Z"},
					},
				},
			},
			"c3": {
				"": {
					Replies: []Reply{
						{ParentID: "c3", Text: "tie-a", PublishedAt: "2024-05-05T05:05:05Z"},
						{ParentID: "c3", Text: "tie-b", PublishedAt: "2024-05-05T05:05:05Z"},
					},
				},
			},
		},
	}
}

func TestFetcher_Associate(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			src := replySource()
			in := []Comment{comment("c1", 3), comment("c2", 0), comment("c3", 2)}

			got, err := NewFetcher(src, WithReplyConcurrency(concurrency)).Associate(context.Background(), in)
			if err != nil {
				t.Fatalf("Associate() unexpected error: %v", err)
			}

			want := map[string][]string{
				"c1": {"zeroth", "first", "second"},
				"c2": {},
				"c3": {"tie-a", "tie-b"},
			}
			for _, c := range got {
				if !reflect.DeepEqual(c.RepliesText, want[c.CommentID]) {
					t.Errorf("%s RepliesText = %v, want %v", c.CommentID, c.RepliesText, want[c.CommentID])
				}
			}
			if len(src.replyCalls) != 3 {
				t.Errorf("ListReplies calls = %v, want 3 (two pages for c1, one for c3)", src.replyCalls)
			}
		})
	}
}

func TestFetcher_Associate_SequentialOrder(t *testing.T) {
	src := replySource()
	in := []Comment{comment("c1", 3), comment("c3", 2)}

	if _, err := NewFetcher(src).Associate(context.Background(), in); err != nil {
		t.Fatalf("Associate() unexpected error: %v", err)
	}

	want := []string{"c1@", "c1@r2", "c3@"}
	if !reflect.DeepEqual(src.replyCalls, want) {
		t.Errorf("ListReplies calls = %v, want %v", src.replyCalls, want)
	}
}

func TestFetcher_Associate_Error(t *testing.T) {
	src := replySource()
	src.replyErrFor = "c3"
	in := []Comment{comment("c1", 3), comment("c3", 2)}

	got, err := NewFetcher(src).Associate(context.Background(), in)
	if err == nil {
		t.Fatal("Associate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to fetch replies for comment c3") {
		t.Errorf("Associate() error = %q, want parent id in message", err)
	}
	if got != nil {
		t.Errorf("Associate() = %v, want nil on error", got)
	}
}

func TestFetcher_Associate_TransformsReplies(t *testing.T) {
	src := &fakeSource{
		replyPages: map[string]map[string]ReplyPage{
			"c1": {"": {Replies: []Reply{{ParentID: "c1", Text: "hi", PublishedAt: "2024"}}}},
		},
	}

	got, err := NewFetcher(src, WithTextTransform(strings.ToUpper)).Associate(context.Background(), []Comment{comment("c1", 1)})
	if err != nil {
		t.Fatalf("Associate() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got[0].RepliesText, []string{"HI"}) {
		t.Errorf("RepliesText = %v, want [HI]", got[0].RepliesText)
	}
}
