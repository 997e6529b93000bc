package posts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/ports/blob"
	"petora-connect/internal/ports/changefeed"

	"github.com/google/uuid"
)

const (
	bodyMin, bodyMax       = 1, 500
	commentMin, commentMax = 1, 500

	defaultAuthorName = "New User"
)

// ImageSaver guarda la imagen adjunta y devuelve su URL.
type ImageSaver interface {
	Save(ctx context.Context, up blob.Upload) (string, error)
}

type Deps struct {
	Images ImageSaver
	Feed   changefeed.Publisher
	Log    logger.Logger
}

type Service struct {
	repo   Repository
	images ImageSaver
	feed   changefeed.Publisher
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		images: deps.Images,
		feed:   deps.Feed,
		log:    log.With(map[string]any{"module": "posts"}),
		now:    time.Now,
	}
}

type CreateInput struct {
	Body string
}

func (s *Service) Create(ctx context.Context, author Author, in CreateInput, image *blob.Upload) (Post, error) {
	author, err := cleanAuthor(author)
	if err != nil {
		return Post{}, err
	}

	v := &apperr.ValidationError{}
	body := v.Length("body", in.Body, bodyMin, bodyMax)
	if err := v.OrNil(); err != nil {
		return Post{}, err
	}

	p := Post{
		ID:           uuid.NewString(),
		AuthorID:     author.UserID,
		AuthorName:   author.DisplayName,
		AuthorAvatar: author.AvatarURL,
		Body:         body,
	}
	if image != nil {
		if s.images == nil {
			return Post{}, apperr.Invalid("image", "uploads are not enabled")
		}
		u, err := s.images.Save(ctx, *image)
		if err != nil {
			return Post{}, err
		}
		p.ImageURL = u
	}
	p.CreatedAt = s.now().UTC()
	p = p.normalize()

	if err := s.repo.Create(ctx, p); err != nil {
		return Post{}, apperr.Upstream("create post", err)
	}
	s.publish(ctx, changefeed.TopicPosts, changefeed.Created, p.ID, p)
	return p, nil
}

// SetLike es idempotente: repetir el mismo estado no cambia nada ni publica.
func (s *Service) SetLike(ctx context.Context, postID, userID string, liked bool) (Post, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Post{}, apperr.ErrUnauthenticated
	}
	if strings.TrimSpace(postID) == "" {
		return Post{}, fmt.Errorf("post: %w", apperr.ErrNotFound)
	}

	p, changed, err := s.repo.SetLike(ctx, postID, userID, liked)
	if err != nil {
		return Post{}, apperr.Upstream("set like", err)
	}
	p = p.normalize()
	if changed {
		s.publishBoth(ctx, changefeed.Updated, p)
	}
	return p, nil
}

func (s *Service) Comment(ctx context.Context, postID string, author Author, body string) (Comment, error) {
	author, err := cleanAuthor(author)
	if err != nil {
		return Comment{}, err
	}
	if strings.TrimSpace(postID) == "" {
		return Comment{}, fmt.Errorf("post: %w", apperr.ErrNotFound)
	}

	v := &apperr.ValidationError{}
	body = v.Length("body", body, commentMin, commentMax)
	if err := v.OrNil(); err != nil {
		return Comment{}, err
	}

	c := Comment{
		ID:         uuid.NewString(),
		AuthorID:   author.UserID,
		AuthorName: author.DisplayName,
		AvatarURL:  author.AvatarURL,
		Body:       body,
		CreatedAt:  s.now().UTC(),
	}
	p, err := s.repo.AppendComment(ctx, postID, c)
	if err != nil {
		return Comment{}, apperr.Upstream("append comment", err)
	}
	s.publishBoth(ctx, changefeed.Updated, p.normalize())
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	if strings.TrimSpace(id) == "" {
		return Post{}, fmt.Errorf("post: %w", apperr.ErrNotFound)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Post{}, apperr.Upstream("get post", err)
	}
	return p.normalize(), nil
}

func (s *Service) List(ctx context.Context) ([]Post, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list posts", err)
	}
	out := make([]Post, 0, len(items))
	for _, p := range items {
		out = append(out, p.normalize())
	}
	return out, nil
}

// Delete solo para el autor del post.
func (s *Service) Delete(ctx context.Context, postID, requesterID string) error {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return apperr.ErrUnauthenticated
	}
	p, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != requesterID {
		return fmt.Errorf("post %s: not the author: %w", p.ID, apperr.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return apperr.Upstream("delete post", err)
	}
	s.publish(ctx, changefeed.TopicPosts, changefeed.Deleted, p.ID, nil)
	s.publish(ctx, changefeed.Child(changefeed.TopicPosts, p.ID), changefeed.Deleted, p.ID, nil)
	return nil
}

func cleanAuthor(a Author) (Author, error) {
	a.UserID = strings.TrimSpace(a.UserID)
	if a.UserID == "" {
		return Author{}, apperr.ErrUnauthenticated
	}
	a.DisplayName = strings.TrimSpace(a.DisplayName)
	if a.DisplayName == "" {
		a.DisplayName = defaultAuthorName
	}
	a.AvatarURL = strings.TrimSpace(a.AvatarURL)
	return a, nil
}

func (s *Service) publishBoth(ctx context.Context, typ string, p Post) {
	s.publish(ctx, changefeed.TopicPosts, typ, p.ID, p)
	s.publish(ctx, changefeed.Child(changefeed.TopicPosts, p.ID), typ, p.ID, p)
}

func (s *Service) publish(ctx context.Context, topic, typ, id string, doc any) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, changefeed.NewEvent(topic, typ, id, doc, s.now())); err != nil {
		s.log.Warn("publish post change failed", map[string]any{"topic": topic, "id": id, "err": err})
	}
}
