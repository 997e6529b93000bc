package groups

import (
	"context"
	"fmt"
	"strings"
	"time"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/ports/blob"
	"petora-connect/internal/ports/changefeed"
	"petora-connect/internal/ports/roles"

	"github.com/google/uuid"
)

const (
	nameMin, nameMax               = 3, 50
	descriptionMin, descriptionMax = 10, 200
	messageMin, messageMax         = 1, 1000
)

// ImageSaver guarda la imagen del grupo y devuelve su URL.
type ImageSaver interface {
	Save(ctx context.Context, up blob.Upload) (string, error)
}

type Deps struct {
	Images ImageSaver
	Roles  roles.Resolver
	Feed   changefeed.Publisher
	Log    logger.Logger
}

type Service struct {
	repo   Repository
	images ImageSaver
	roles  roles.Resolver
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
		roles:  deps.Roles,
		feed:   deps.Feed,
		log:    log.With(map[string]any{"module": "groups"}),
		now:    time.Now,
	}
}

type CreateInput struct {
	Name        string
	Description string
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput, image *blob.Upload) (Group, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Group{}, apperr.ErrUnauthenticated
	}

	v := &apperr.ValidationError{}
	g := Group{
		Name:        v.Length("name", in.Name, nameMin, nameMax),
		Description: v.Length("description", in.Description, descriptionMin, descriptionMax),
		ImageURL:    PlaceholderImageURL,
		OwnerID:     ownerID,
		MemberIDs:   []string{ownerID},
		MemberCount: 1,
	}
	if err := v.OrNil(); err != nil {
		return Group{}, err
	}

	if image != nil {
		if s.images == nil {
			return Group{}, apperr.Invalid("image", "uploads are not enabled")
		}
		u, err := s.images.Save(ctx, *image)
		if err != nil {
			return Group{}, err
		}
		g.ImageURL = u
	}

	g.ID = uuid.NewString()
	g.CreatedAt = s.now().UTC()
	if err := s.repo.Create(ctx, g); err != nil {
		return Group{}, apperr.Upstream("create group", err)
	}
	s.publish(ctx, changefeed.TopicGroups, changefeed.Created, g.ID, g)
	return g, nil
}

// Join es idempotente: si ya era miembro devuelve el grupo sin cambios y joined=false.
func (s *Service) Join(ctx context.Context, groupID, userID string) (Group, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Group{}, false, apperr.ErrUnauthenticated
	}
	if strings.TrimSpace(groupID) == "" {
		return Group{}, false, fmt.Errorf("group: %w", apperr.ErrNotFound)
	}

	g, added, err := s.repo.AddMember(ctx, groupID, userID)
	if err != nil {
		return Group{}, false, apperr.Upstream("join group", err)
	}
	if added {
		s.publish(ctx, changefeed.TopicGroups, changefeed.Updated, g.ID, g)
		s.publish(ctx, changefeed.Child(changefeed.TopicGroups, g.ID), changefeed.Updated, g.ID, g)
	}
	return g, added, nil
}

func (s *Service) Get(ctx context.Context, id string) (Group, error) {
	if strings.TrimSpace(id) == "" {
		return Group{}, fmt.Errorf("group: %w", apperr.ErrNotFound)
	}
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Group{}, apperr.Upstream("get group", err)
	}
	return g, nil
}

func (s *Service) List(ctx context.Context) ([]Group, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list groups", err)
	}
	return items, nil
}

// Delete es solo para administradores y arrastra los mensajes del grupo.
func (s *Service) Delete(ctx context.Context, groupID, requesterID string) error {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return err
	}
	if _, err := s.Get(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, groupID); err != nil {
		return apperr.Upstream("delete group", err)
	}
	s.publish(ctx, changefeed.TopicGroups, changefeed.Deleted, groupID, nil)
	s.publish(ctx, changefeed.Child(changefeed.TopicGroups, groupID), changefeed.Deleted, groupID, nil)
	return nil
}

// PostMessage exige que el remitente sea dueño o miembro.
func (s *Service) PostMessage(ctx context.Context, groupID string, from Sender, text string) (Message, error) {
	g, err := s.authorizeMember(ctx, groupID, from.UserID)
	if err != nil {
		return Message{}, err
	}

	v := &apperr.ValidationError{}
	text = v.Length("text", text, messageMin, messageMax)
	if err := v.OrNil(); err != nil {
		return Message{}, err
	}

	name := strings.TrimSpace(from.DisplayName)
	if name == "" {
		name = "New User"
	}
	m := Message{
		ID:         uuid.NewString(),
		GroupID:    g.ID,
		SenderID:   from.UserID,
		SenderName: name,
		AvatarURL:  strings.TrimSpace(from.AvatarURL),
		Text:       text,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.AppendMessage(ctx, m); err != nil {
		return Message{}, apperr.Upstream("append message", err)
	}
	s.publish(ctx, changefeed.Child(changefeed.TopicGroups, g.ID), changefeed.Created, m.ID, m)
	return m, nil
}

// Messages devuelve el chat en orden cronológico; solo para miembros.
func (s *Service) Messages(ctx context.Context, groupID, requesterID string) ([]Message, error) {
	g, err := s.authorizeMember(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListMessages(ctx, g.ID)
	if err != nil {
		return nil, apperr.Upstream("list messages", err)
	}
	return items, nil
}

// AuthorizeMember lo usa el stream del chat antes de suscribir.
func (s *Service) AuthorizeMember(ctx context.Context, groupID, userID string) error {
	_, err := s.authorizeMember(ctx, groupID, userID)
	return err
}

func (s *Service) authorizeMember(ctx context.Context, groupID, userID string) (Group, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Group{}, apperr.ErrUnauthenticated
	}
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return Group{}, err
	}
	if !g.IsMember(userID) {
		return Group{}, fmt.Errorf("group %s: not a member: %w", g.ID, apperr.ErrForbidden)
	}
	return g, nil
}

func (s *Service) requireAdmin(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperr.ErrUnauthenticated
	}
	if s.roles == nil {
		return fmt.Errorf("no role resolver: %w", apperr.ErrForbidden)
	}
	ok, err := s.roles.IsAdmin(ctx, userID)
	if err != nil {
		return apperr.Upstream("resolve role", err)
	}
	if !ok {
		return fmt.Errorf("admin required: %w", apperr.ErrForbidden)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, topic, typ, id string, doc any) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, changefeed.NewEvent(topic, typ, id, doc, s.now())); err != nil {
		s.log.Warn("publish group change failed", map[string]any{"topic": topic, "id": id, "err": err})
	}
}
