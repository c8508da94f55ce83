package service

import (
	"context"
	"testing"

	"github.com/cagecms/cage/internal/models"
)

func TestCreateCommentAnonymous(t *testing.T) {
	env := newTestEnv(t)
	env.addArticle("hello-world", "writer01")

	comment, err := env.services.Comment.Create(context.Background(), nil, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "nice article",
		Nickname:  "visitor",
		IPAddress: "203.0.113.7",
	}, EventMeta{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if comment.ID == 0 {
		t.Error("comment id not assigned")
	}
	if comment.Reviewed {
		t.Error("anonymous comments start unreviewed when review is required")
	}
	if comment.IsAuthor {
		t.Error("anonymous comment marked as author")
	}
	if comment.IPAddress != "203.0.113.7" {
		t.Errorf("ip = %q", comment.IPAddress)
	}
}

func TestCreateCommentAsAuthor(t *testing.T) {
	env := newTestEnv(t)
	author := env.addUser(t, "writer01", "password123", models.PermAuthor)
	env.addArticle("hello-world", "writer01")

	comment, err := env.services.Comment.Create(context.Background(), author, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "thanks for reading",
		Nickname:  "ignored",
	}, EventMeta{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if !comment.IsAuthor {
		t.Error("author flag not set")
	}
	if !comment.Reviewed {
		t.Error("author comments skip review")
	}
	if comment.Nickname != author.Name {
		t.Errorf("nickname = %q, want the author's name", comment.Nickname)
	}
	if comment.DisplayName() != "[Author]"+author.Name {
		t.Errorf("display name = %q", comment.DisplayName())
	}
}

func TestCreateCommentNotCommentable(t *testing.T) {
	env := newTestEnv(t)
	article := env.addArticle("hello-world", "writer01")
	article.IsCommentable = false

	_, err := env.services.Comment.Create(context.Background(), nil, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "nice article",
		Nickname:  "visitor",
	}, EventMeta{})
	if field := fieldOf(t, err); field != "article_id" {
		t.Errorf("error field = %q, want article_id", field)
	}
}

func TestCreateCommentNeedsNickname(t *testing.T) {
	env := newTestEnv(t)
	env.addArticle("hello-world", "writer01")

	_, err := env.services.Comment.Create(context.Background(), nil, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "nice article",
		Nickname:  "   ",
	}, EventMeta{})
	if field := fieldOf(t, err); field != "nickname" {
		t.Errorf("error field = %q, want nickname", field)
	}
}

func TestCreateReplyParentMustExist(t *testing.T) {
	env := newTestEnv(t)
	env.addArticle("hello-world", "writer01")
	env.addArticle("other-post", "writer01")
	ctx := context.Background()

	parent, err := env.services.Comment.Create(ctx, nil, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "first",
		Nickname:  "visitor",
	}, EventMeta{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Replying across articles is the same as replying to nothing.
	_, err = env.services.Comment.Create(ctx, nil, CreateCommentInput{
		ArticleID: "other-post",
		Content:   "reply",
		Nickname:  "visitor",
		ReferTo:   &parent.ID,
	}, EventMeta{})
	if field := fieldOf(t, err); field != "comment_id" {
		t.Errorf("error field = %q, want comment_id", field)
	}

	reply, err := env.services.Comment.Create(ctx, nil, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "reply",
		Nickname:  "visitor",
		ReferTo:   &parent.ID,
	}, EventMeta{})
	if err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if reply.ReferTo == nil || *reply.ReferTo != parent.ID {
		t.Error("reply does not point at its parent")
	}
}

func TestListCommentsHidesUnreviewed(t *testing.T) {
	env := newTestEnv(t)
	author := env.addUser(t, "writer01", "password123", models.PermAuthor)
	env.addArticle("hello-world", "writer01")
	ctx := context.Background()

	if _, err := env.services.Comment.Create(ctx, nil, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "pending",
		Nickname:  "visitor",
	}, EventMeta{}); err != nil {
		t.Fatal(err)
	}

	visible, _, err := env.services.Comment.List(ctx, nil, "hello-world", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Errorf("unreviewed comment leaked to the public listing: %v", visible)
	}

	mine, _, err := env.services.Comment.List(ctx, author, "hello-world", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 {
		t.Errorf("author should see the pending comment, got %d", len(mine))
	}
}

func TestListCommentsPagination(t *testing.T) {
	env := newTestEnv(t)
	author := env.addUser(t, "writer01", "password123", models.PermAuthor)
	env.addArticle("hello-world", "writer01")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := env.services.Comment.Create(ctx, author, CreateCommentInput{
			ArticleID: "hello-world",
			Content:   "comment body",
		}, EventMeta{}); err != nil {
			t.Fatal(err)
		}
	}

	first, isMore, err := env.services.Comment.List(ctx, nil, "hello-world", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || !isMore {
		t.Errorf("page 0: len=%d isMore=%v", len(first), isMore)
	}

	last, isMore, err := env.services.Comment.List(ctx, nil, "hello-world", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 1 || isMore {
		t.Errorf("page 2: len=%d isMore=%v", len(last), isMore)
	}
}

func TestGetCommentHidesUnreviewed(t *testing.T) {
	env := newTestEnv(t)
	author := env.addUser(t, "writer01", "password123", models.PermAuthor)
	env.addArticle("hello-world", "writer01")
	ctx := context.Background()

	pending, err := env.services.Comment.Create(ctx, nil, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "pending",
		Nickname:  "visitor",
	}, EventMeta{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.services.Comment.Get(ctx, nil, "hello-world", pending.ID); err == nil {
		t.Error("unreviewed comment should be hidden from the public")
	}
	if _, err := env.services.Comment.Get(ctx, author, "hello-world", pending.ID); err != nil {
		t.Errorf("author read failed: %v", err)
	}
}

func TestReviewComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.addUser(t, "writer01", "password123", models.PermAuthor)
	stranger := env.addUser(t, "writer02", "password123", models.PermAuthor)
	env.addArticle("hello-world", "writer01")
	ctx := context.Background()

	pending, err := env.services.Comment.Create(ctx, nil, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "pending",
		Nickname:  "visitor",
	}, EventMeta{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.services.Comment.Review(ctx, stranger, "hello-world", pending.ID, EventMeta{}); err == nil {
		t.Error("only the article's author may review")
	}

	reviewed, err := env.services.Comment.Review(ctx, author, "hello-world", pending.ID, EventMeta{})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if !reviewed.Reviewed {
		t.Error("comment not marked reviewed")
	}

	// Reviewing twice is a no-op, not an error.
	if _, err := env.services.Comment.Review(ctx, author, "hello-world", pending.ID, EventMeta{}); err != nil {
		t.Errorf("second review failed: %v", err)
	}
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	author := env.addUser(t, "writer01", "password123", models.PermAuthor)
	stranger := env.addUser(t, "writer02", "password123", models.PermAuthor)
	env.addArticle("hello-world", "writer01")
	ctx := context.Background()

	comment, err := env.services.Comment.Create(ctx, author, CreateCommentInput{
		ArticleID: "hello-world",
		Content:   "to be removed",
	}, EventMeta{})
	if err != nil {
		t.Fatal(err)
	}

	err = env.services.Comment.Delete(ctx, stranger, "hello-world", comment.ID, EventMeta{})
	if field := fieldOf(t, err); field != "permission" {
		t.Errorf("error field = %q, want permission", field)
	}

	if err := env.services.Comment.Delete(ctx, author, "hello-world", comment.ID, EventMeta{}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := env.services.Comment.Get(ctx, author, "hello-world", comment.ID); err == nil {
		t.Error("comment should be gone")
	}
}
