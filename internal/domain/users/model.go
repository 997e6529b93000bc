package users

import (
	"net/url"
	"time"
)

// Profile es el perfil local de un usuario del IdP. Se crea en su primer request autenticado.
type Profile struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatarUrl"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
}

const DefaultDisplayName = "New User"

// DefaultAvatarURL genera un avatar con las iniciales del nombre.
func DefaultAvatarURL(displayName string) string {
	return "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(displayName)
}
