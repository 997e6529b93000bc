package groups

import (
	"slices"
	"time"
)

// Group es una comunidad. MemberCount == len(MemberIDs) siempre; el dueño es miembro desde la creación.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	OwnerID     string    `json:"ownerId"`
	MemberCount int       `json:"memberCount"`
	MemberIDs   []string  `json:"memberIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsMember: el dueño cuenta como miembro aunque el set estuviera desfasado.
func (g Group) IsMember(userID string) bool {
	if userID == "" {
		return false
	}
	return g.OwnerID == userID || slices.Contains(g.MemberIDs, userID)
}

// Message es un mensaje del chat del grupo. Append-only; CreatedAt lo pone el servidor.
type Message struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"groupId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	AvatarURL  string    `json:"avatarUrl"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Sender identifica a quien escribe.
type Sender struct {
	UserID      string
	DisplayName string
	AvatarURL   string
}

// PlaceholderImageURL para grupos sin imagen.
const PlaceholderImageURL = "https://placehold.co/600x400/E2E8F0/4A5568?text=Community"
