package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/lectern-dev/lectern/internal/mapper"
	"github.com/lectern-dev/lectern/shared/domain"
	internal_errors "github.com/lectern-dev/lectern/shared/errors"
	"github.com/lectern-dev/lectern/shared/forum"
	"github.com/microcosm-cc/bluemonday"
)

type ContributionService interface {
	Create(ctx context.Context, data domain.ContributionCreationData) (domain.Contribution, error)
	List(ctx context.Context, chapterId domain.ChapterId, typeFilter domain.ContributionType) ([]domain.Contribution, error)
	Count(ctx context.Context, chapterId domain.ChapterId) (int, error)
	Get(ctx context.Context, id domain.ContributionId) (domain.Contribution, error)
	MarkHelpful(ctx context.Context, id domain.ContributionId, userId domain.UserId) (int, bool, error)
	UnmarkHelpful(ctx context.Context, id domain.ContributionId, userId domain.UserId) (int, bool, error)
}

type ContributionStorage interface {
	CreatePost(ctx context.Context, p forum.Post) (forum.Post, error)
	GetPost(ctx context.Context, id string) (forum.Post, error)
	GetThread(ctx context.Context, id string) (forum.Thread, error)
	ListPosts(ctx context.Context, q forum.PostQuery) ([]forum.Post, error)
	AddReaction(ctx context.Context, postId, userId string) (bool, error)
	RemoveReaction(ctx context.Context, postId, userId string) (bool, error)
}

// Contributions manages member-submitted content under chapters.
type Contributions struct {
	storage ContributionStorage
	content *bluemonday.Policy
	title   *bluemonday.Policy
	now     func() time.Time
}

func NewContributions(storage ContributionStorage) *Contributions {
	return &Contributions{
		storage: storage,
		content: bluemonday.UGCPolicy(),
		title:   bluemonday.StrictPolicy(),
		now:     time.Now,
	}
}

func (c *Contributions) Create(ctx context.Context, data domain.ContributionCreationData) (domain.Contribution, error) {
	content := strings.TrimSpace(c.content.Sanitize(data.Content))
	if content == "" {
		return domain.Contribution{}, internal_errors.Validation("Contribution content is required")
	}
	ctype := data.Type
	if ctype == "" {
		ctype = domain.ContributionTakeaway
	}
	if !ctype.Valid() {
		return domain.Contribution{}, internal_errors.Validation("Unknown contribution type")
	}

	// parent must be a chapter thread
	thread, err := c.storage.GetThread(ctx, data.ChapterId)
	if err != nil {
		return domain.Contribution{}, err
	}
	if thread.Attrs.Type() != forum.TypeChapter {
		return domain.Contribution{}, internal_errors.NotFoundError("Chapter")
	}

	contribution := domain.Contribution{
		ChapterId: data.ChapterId,
		Type:      ctype,
		Title:     strings.TrimSpace(c.title.Sanitize(data.Title)),
		Content:   content,
		Anonymous: data.Anonymous,
		AuthorId:  data.AuthorId,
		Link:      strings.TrimSpace(data.Link),
		ImageUrl:  strings.TrimSpace(data.ImageUrl),
		CreatedAt: c.now().UTC().Truncate(time.Second),
	}
	created, err := c.storage.CreatePost(ctx, mapper.PostFromContribution(contribution))
	if err != nil {
		return domain.Contribution{}, err
	}
	contribution.Id = created.Id
	return contribution, nil
}

func (c *Contributions) List(ctx context.Context, chapterId domain.ChapterId, typeFilter domain.ContributionType) ([]domain.Contribution, error) {
	posts, err := c.storage.ListPosts(ctx, forum.PostQuery{ThreadId: chapterId, Type: forum.TypeContribution})
	if err != nil {
		return nil, err
	}
	contributions := make([]domain.Contribution, 0, len(posts))
	for _, p := range posts {
		contribution := mapper.ContributionFromPost(p)
		if typeFilter != "" && contribution.Type != typeFilter {
			continue
		}
		contributions = append(contributions, contribution)
	}
	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].CreatedAt.After(contributions[j].CreatedAt)
	})
	return contributions, nil
}

func (c *Contributions) Count(ctx context.Context, chapterId domain.ChapterId) (int, error) {
	posts, err := c.storage.ListPosts(ctx, forum.PostQuery{ThreadId: chapterId, Type: forum.TypeContribution})
	if err != nil {
		return 0, err
	}
	return len(posts), nil
}

func (c *Contributions) Get(ctx context.Context, id domain.ContributionId) (domain.Contribution, error) {
	post, err := c.storage.GetPost(ctx, id)
	if err != nil {
		return domain.Contribution{}, err
	}
	if post.Attrs.Type() != forum.TypeContribution {
		return domain.Contribution{}, internal_errors.NotFoundError("Contribution")
	}
	return mapper.ContributionFromPost(post), nil
}

// MarkHelpful records a helpful mark from userId. The store primitive is
// conditional on (post, user), so repeated marks without an unmark in
// between do not accumulate. Returns the resulting count and whether the
// mark was newly added.
func (c *Contributions) MarkHelpful(ctx context.Context, id domain.ContributionId, userId domain.UserId) (int, bool, error) {
	if _, err := c.Get(ctx, id); err != nil {
		return 0, false, err
	}
	added, err := c.storage.AddReaction(ctx, id, userId)
	if err != nil {
		return 0, false, err
	}
	post, err := c.storage.GetPost(ctx, id)
	if err != nil {
		return 0, false, err
	}
	return mapper.ContributionFromPost(post).HelpfulCount, added, nil
}

func (c *Contributions) UnmarkHelpful(ctx context.Context, id domain.ContributionId, userId domain.UserId) (int, bool, error) {
	if _, err := c.Get(ctx, id); err != nil {
		return 0, false, err
	}
	removed, err := c.storage.RemoveReaction(ctx, id, userId)
	if err != nil {
		return 0, false, err
	}
	post, err := c.storage.GetPost(ctx, id)
	if err != nil {
		return 0, false, err
	}
	return mapper.ContributionFromPost(post).HelpfulCount, removed, nil
}
