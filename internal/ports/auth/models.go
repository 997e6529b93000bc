package auth

// Claims representa la información extraída del token.
// DisplayName y AvatarURL son opcionales; el perfil local completa lo que falte.
type Claims struct {
	UserID      string
	Email       string
	DisplayName string
	AvatarURL   string
}
