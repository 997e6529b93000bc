package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/ports/auth"
)

type Deps struct {
	// AdminIDs son los usuarios con rol admin por configuración.
	AdminIDs []string
	Log      logger.Logger
}

type Service struct {
	repo   Repository
	admins map[string]struct{}
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	admins := make(map[string]struct{}, len(deps.AdminIDs))
	for _, id := range deps.AdminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &Service{
		repo:   repo,
		admins: admins,
		log:    log.With(map[string]any{"module": "users"}),
		now:    time.Now,
	}
}

// EnsureProfile crea el perfil si no existe y completa los claims con nombre y avatar del perfil.
func (s *Service) EnsureProfile(ctx context.Context, c auth.Claims) (auth.Claims, error) {
	c.UserID = strings.TrimSpace(c.UserID)
	if c.UserID == "" {
		return c, apperr.ErrUnauthenticated
	}

	name := strings.TrimSpace(c.DisplayName)
	if name == "" {
		name = DefaultDisplayName
	}
	avatar := strings.TrimSpace(c.AvatarURL)
	if avatar == "" {
		avatar = DefaultAvatarURL(name)
	}

	p, created, err := s.repo.CreateIfAbsent(ctx, Profile{
		UserID:      c.UserID,
		DisplayName: name,
		Email:       strings.TrimSpace(c.Email),
		AvatarURL:   avatar,
		IsAdmin:     s.configuredAdmin(c.UserID),
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return c, apperr.Upstream("ensure profile", err)
	}
	if created {
		s.log.Info("profile created", map[string]any{"user_id": p.UserID})
	}

	if strings.TrimSpace(c.DisplayName) == "" {
		c.DisplayName = p.DisplayName
	}
	if strings.TrimSpace(c.AvatarURL) == "" {
		c.AvatarURL = p.AvatarURL
	}
	if strings.TrimSpace(c.Email) == "" {
		c.Email = p.Email
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, fmt.Errorf("profile: %w", apperr.ErrNotFound)
	}
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, apperr.Upstream("get profile", err)
	}
	p.IsAdmin = p.IsAdmin || s.configuredAdmin(p.UserID)
	return p, nil
}

// List es solo para administradores.
func (s *Service) List(ctx context.Context, requesterID string) ([]Profile, error) {
	ok, err := s.IsAdmin(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("admin required: %w", apperr.ErrForbidden)
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list profiles", err)
	}
	for i := range items {
		items[i].IsAdmin = items[i].IsAdmin || s.configuredAdmin(items[i].UserID)
	}
	return items, nil
}

// ContactEmail devuelve el email del perfil; ok=false si no hay perfil o no tiene email.
func (s *Service) ContactEmail(ctx context.Context, userID string) (string, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return "", false, nil
	}
	p, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Upstream("contact lookup", err)
	}
	return p.Email, p.Email != "", nil
}

// IsAdmin: admin por configuración o por el flag persistido en el perfil.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, apperr.ErrUnauthenticated
	}
	if s.configuredAdmin(userID) {
		return true, nil
	}
	p, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Upstream("resolve role", err)
	}
	return p.IsAdmin, nil
}

func (s *Service) configuredAdmin(userID string) bool {
	_, ok := s.admins[userID]
	return ok
}
