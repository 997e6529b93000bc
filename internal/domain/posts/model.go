package posts

import (
	"slices"
	"time"
)

// Post es una publicación del feed de la comunidad.
// LikedBy es un set (sin duplicados); LikeCount se deriva de él al serializar.
type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	AuthorAvatar string    `json:"authorAvatar"`
	Body         string    `json:"body"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	LikedBy      []string  `json:"likedBy"`
	LikeCount    int       `json:"likeCount"`
	Comments     []Comment `json:"comments"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p Post) LikedByUser(userID string) bool {
	return userID != "" && slices.Contains(p.LikedBy, userID)
}

// normalize deja slices no-nil y el contador alineado con el set.
func (p Post) normalize() Post {
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	p.LikeCount = len(p.LikedBy)
	return p
}

// Comment es append-only: no se edita ni se borra.
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	AvatarURL  string    `json:"avatarUrl"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Author es quien publica o comenta (sale de los claims).
type Author struct {
	UserID      string
	DisplayName string
	AvatarURL   string
}
