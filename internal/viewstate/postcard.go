package viewstate

import (
	"context"
	"encoding/json"

	"petora-connect/internal/domain/posts"
	"petora-connect/internal/ports/changefeed"
)

// LikeAPI es el lado servidor del like (client.Client lo implementa).
type LikeAPI interface {
	SetLike(ctx context.Context, postID string, liked bool) (posts.Post, error)
}

// PostCard es la tarjeta de un post con su botón de like.
type PostCard struct {
	postID string
	userID string
	api    LikeAPI
	store  *Store[LikeState]
}

func NewPostCard(p posts.Post, userID string, api LikeAPI, n Notifier) *PostCard {
	return &PostCard{
		postID: p.ID,
		userID: userID,
		api:    api,
		store:  NewStore(LikeState{Liked: p.LikedByUser(userID), Count: p.LikeCount}, n),
	}
}

func (c *PostCard) State() LikeState { return c.store.State() }

// ToggleLike manda al servidor el estado deseado (no un toggle), así un reintento no se duplica.
func (c *PostCard) ToggleLike(ctx context.Context) error {
	return c.store.Do(ctx, ToggleLike(c.store.State().Liked), func(ctx context.Context, next LikeState) error {
		_, err := c.api.SetLike(ctx, c.postID, next.Liked)
		return err
	})
}

// Follow converge con el stream del post (posts/<id> o posts).
func (c *PostCard) Follow(ctx context.Context, events <-chan changefeed.Event) error {
	return c.store.Follow(ctx, events, c.reduce)
}

func (c *PostCard) reduce(cur LikeState, ev changefeed.Event) LikeState {
	if ev.ID != c.postID || ev.Type != changefeed.Updated || len(ev.Payload) == 0 {
		return cur
	}
	var p posts.Post
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return cur
	}
	return LikeState{Liked: p.LikedByUser(c.userID), Count: len(p.LikedBy)}
}
