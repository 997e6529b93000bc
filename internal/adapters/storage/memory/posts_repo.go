package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"

	"petora-connect/internal/domain/posts"
)

type postRepo struct {
	mu   sync.RWMutex
	byID map[string]posts.Post
}

func NewPostRepo() posts.Repository {
	return &postRepo{
		byID: make(map[string]posts.Post),
	}
}

func (r *postRepo) Create(ctx context.Context, p posts.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("post id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("post already exists")
	}
	r.byID[p.ID] = clonePost(p)
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (posts.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return posts.Post{}, notFound("post", id)
	}
	return clonePost(p), nil
}

func (r *postRepo) List(ctx context.Context) ([]posts.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]posts.Post, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *postRepo) SetLike(ctx context.Context, postID, userID string, liked bool) (posts.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[postID]
	if !ok {
		return posts.Post{}, false, notFound("post", postID)
	}
	if slices.Contains(p.LikedBy, userID) == liked {
		return clonePost(p), false, nil
	}
	if liked {
		p.LikedBy = append(slices.Clone(p.LikedBy), userID)
	} else {
		p.LikedBy = slices.DeleteFunc(slices.Clone(p.LikedBy), func(id string) bool { return id == userID })
	}
	p.LikeCount = len(p.LikedBy)
	r.byID[postID] = p
	return clonePost(p), true, nil
}

func (r *postRepo) AppendComment(ctx context.Context, postID string, c posts.Comment) (posts.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[postID]
	if !ok {
		return posts.Post{}, notFound("post", postID)
	}
	p.Comments = append(slices.Clone(p.Comments), c)
	r.byID[postID] = p
	return clonePost(p), nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return notFound("post", id)
	}
	delete(r.byID, id)
	return nil
}

func clonePost(p posts.Post) posts.Post {
	p.LikedBy = slices.Clone(p.LikedBy)
	p.Comments = slices.Clone(p.Comments)
	return p
}
