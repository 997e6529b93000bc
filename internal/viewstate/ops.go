package viewstate

// LikeState es lo que muestra el botón de like de un post.
type LikeState struct {
	Liked bool
	Count int
}

// ToggleLike lleva liked de from a !from y ajusta el contador.
// La inversa deshace solo lo que aplicó Forward y solo mientras el estado
// actual lo siga mostrando: si el stream ya trajo la verdad del servidor, no la toca.
// Cada Op es de un solo uso.
func ToggleLike(from bool) Op[LikeState] {
	target := !from
	delta := 1
	if from {
		delta = -1
	}
	applied := false
	return Op[LikeState]{
		Name: "toggle-like",
		Forward: func(s LikeState) LikeState {
			if s.Liked != from {
				return s
			}
			applied = true
			return LikeState{Liked: target, Count: s.Count + delta}
		},
		Inverse: func(s LikeState) LikeState {
			if !applied || s.Liked != target {
				return s
			}
			return LikeState{Liked: from, Count: s.Count - delta}
		},
	}
}

// MembershipState es la pertenencia del usuario a un grupo.
type MembershipState struct {
	Member bool
	Count  int
}

// Join marca al usuario como miembro. Sobre un miembro no cambia nada.
func Join() Op[MembershipState] {
	return Op[MembershipState]{
		Name: "join-group",
		Forward: func(s MembershipState) MembershipState {
			if s.Member {
				return s
			}
			return MembershipState{Member: true, Count: s.Count + 1}
		},
		Inverse: func(s MembershipState) MembershipState {
			if !s.Member {
				return s
			}
			return MembershipState{Member: false, Count: s.Count - 1}
		},
	}
}
