package listings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/platform/optional"
	"petora-connect/internal/ports/blob"
	"petora-connect/internal/ports/changefeed"

	"github.com/google/uuid"
)

// ErrMissingOwner: crear una publicación requiere usuario autenticado.
var ErrMissingOwner = fmt.Errorf("listing owner required: %w", apperr.ErrUnauthenticated)

// ImageSaver guarda la imagen subida y devuelve su URL pública.
// Lo implementa media; se inyecta para evitar ciclos de imports.
type ImageSaver interface {
	Save(ctx context.Context, up blob.Upload) (string, error)
}

// ContactLookup resuelve el email de contacto del dueño.
// ok=false si el usuario no tiene perfil.
type ContactLookup interface {
	ContactEmail(ctx context.Context, userID string) (email string, ok bool, err error)
}

type Deps struct {
	Images   ImageSaver
	Contacts ContactLookup
	Feed     changefeed.Publisher
	Log      logger.Logger
}

type Service struct {
	repo     Repository
	images   ImageSaver
	contacts ContactLookup
	feed     changefeed.Publisher
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		images:   deps.Images,
		contacts: deps.Contacts,
		feed:     deps.Feed,
		log:      log.With(map[string]any{"module": "listings"}),
		now:      time.Now,
	}
}

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	Age         string
	Gender      string
	Location    string
	ListingType string
	Price       *float64
	Description string
}

// StrayReportInput es el reporte público de un animal encontrado.
type StrayReportInput struct {
	Species         string
	Location        string
	Description     string
	ReporterContact string
}

// UpdateInput: cada campo distingue ausente / null / valor.
type UpdateInput struct {
	Name        optional.Field[string]
	Species     optional.Field[string]
	Breed       optional.Field[string]
	Age         optional.Field[string]
	Gender      optional.Field[string]
	Location    optional.Field[string]
	ListingType optional.Field[string]
	Price       optional.Field[float64]
	Description optional.Field[string]
	ImageURL    optional.Field[string]
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput, image *blob.Upload) (Listing, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Listing{}, ErrMissingOwner
	}

	v := &apperr.ValidationError{}
	l := Listing{
		Name:        v.Length("name", in.Name, nameMin, nameMax),
		Species:     validSpecies(v, in.Species),
		Breed:       v.Length("breed", in.Breed, breedMin, breedMax),
		Age:         v.Length("age", in.Age, ageMin, ageMax),
		Gender:      validGender(v, in.Gender),
		Location:    v.Length("location", in.Location, locationMin, locationMax),
		ListingType: validOwnedType(v, in.ListingType),
		Description: v.Length("description", in.Description, descriptionMin, descriptionMax),
		OwnerID:     ownerID,
	}
	if in.Price != nil {
		validPrice(v, *in.Price)
		p := *in.Price
		l.Price = &p
	}
	checkPriceCoupling(v, l.ListingType, l.Price)
	if err := v.OrNil(); err != nil {
		return Listing{}, err
	}

	return s.insert(ctx, l, image)
}

// ReportStray crea un callejero sin dueño. Es público: no requiere usuario.
func (s *Service) ReportStray(ctx context.Context, in StrayReportInput, image *blob.Upload) (Listing, error) {
	v := &apperr.ValidationError{}
	species := SpeciesOther
	if strings.TrimSpace(in.Species) != "" {
		species = validSpecies(v, in.Species)
	}
	l := Listing{
		Name:            StrayName,
		Species:         species,
		Breed:           StrayUnknown,
		Age:             StrayUnknown,
		Gender:          GenderUnknown,
		Location:        v.Length("location", in.Location, locationMin, locationMax),
		ListingType:     TypeStray,
		Description:     v.Length("description", in.Description, descriptionMin, descriptionMax),
		ReporterContact: v.Length("reporterContact", in.ReporterContact, 0, contactMax),
	}
	if err := v.OrNil(); err != nil {
		return Listing{}, err
	}

	return s.insert(ctx, l, image)
}

func (s *Service) insert(ctx context.Context, l Listing, image *blob.Upload) (Listing, error) {
	l.ImageURL = PlaceholderImageURL
	if image != nil {
		if s.images == nil {
			return Listing{}, apperr.Invalid("image", "uploads are not enabled")
		}
		// La imagen se guarda primero; si falla no se crea la publicación.
		u, err := s.images.Save(ctx, *image)
		if err != nil {
			return Listing{}, err
		}
		l.ImageURL = u
	}

	now := s.now().UTC()
	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := s.repo.Create(ctx, l); err != nil {
		return Listing{}, apperr.Upstream("create listing", err)
	}
	s.publish(ctx, changefeed.Created, l.ID, l)
	return l, nil
}

func (s *Service) Update(ctx context.Context, id, requesterID string, in UpdateInput) (Listing, error) {
	current, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return Listing{}, err
	}

	v := &apperr.ValidationError{}
	next := current
	mergeRequired(v, "name", in.Name, &next.Name, nameMin, nameMax)
	mergeRequired(v, "breed", in.Breed, &next.Breed, breedMin, breedMax)
	mergeRequired(v, "age", in.Age, &next.Age, ageMin, ageMax)
	mergeRequired(v, "location", in.Location, &next.Location, locationMin, locationMax)
	mergeRequired(v, "description", in.Description, &next.Description, descriptionMin, descriptionMax)

	if raw, ok := requiredValue(v, "species", in.Species); ok {
		next.Species = validSpecies(v, raw)
	}
	if raw, ok := requiredValue(v, "gender", in.Gender); ok {
		next.Gender = validGender(v, raw)
	}
	if raw, ok := requiredValue(v, "listingType", in.ListingType); ok {
		next.ListingType = validOwnedType(v, raw)
	}

	if in.Price.Set {
		if in.Price.Null {
			next.Price = nil
		} else {
			validPrice(v, in.Price.Value)
			p := in.Price.Value
			next.Price = &p
		}
	}

	if in.ImageURL.Set {
		if in.ImageURL.Null || strings.TrimSpace(in.ImageURL.Value) == "" {
			next.ImageURL = PlaceholderImageURL
		} else {
			next.ImageURL = validImageURL(v, in.ImageURL.Value)
		}
	}

	// El acople tipo/precio se revalida sobre el resultado del merge.
	checkPriceCoupling(v, next.ListingType, next.Price)
	if err := v.OrNil(); err != nil {
		return Listing{}, err
	}

	next.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, next); err != nil {
		return Listing{}, apperr.Upstream("update listing", err)
	}
	s.publish(ctx, changefeed.Updated, next.ID, next)
	return next, nil
}

func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := s.authorize(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Upstream("delete listing", err)
	}
	s.publish(ctx, changefeed.Deleted, id, nil)
	return nil
}

// authorize: solo el dueño muta. Los callejeros no tienen dueño, así que nadie los edita.
func (s *Service) authorize(ctx context.Context, id, requesterID string) (Listing, error) {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return Listing{}, apperr.ErrUnauthenticated
	}
	l, err := s.getByID(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if l.OwnerID == "" || l.OwnerID != requesterID {
		return Listing{}, fmt.Errorf("listing %s: %w", id, apperr.ErrForbidden)
	}
	return l, nil
}

func (s *Service) getByID(ctx context.Context, id string) (Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Listing{}, fmt.Errorf("listing: %w", apperr.ErrNotFound)
	}
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Listing{}, apperr.Upstream("get listing", err)
	}
	return l, nil
}

// Get devuelve la publicación con el contacto del dueño si tiene perfil.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	l, err := s.getByID(ctx, id)
	if err != nil {
		return View{}, err
	}

	view := View{Listing: l}
	if l.OwnerID == "" || s.contacts == nil {
		return view, nil
	}
	email, ok, err := s.contacts.ContactEmail(ctx, l.OwnerID)
	if err != nil {
		// El contacto es accesorio; la publicación se muestra igual.
		s.log.Warn("owner contact lookup failed", map[string]any{"listing_id": l.ID, "owner_id": l.OwnerID, "err": err})
		return view, nil
	}
	if ok {
		view.ContactEmail = email
	}
	return view, nil
}

func (s *Service) List(ctx context.Context, q Query) ([]Listing, error) {
	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperr.Upstream("list listings", err)
	}
	return items, nil
}

func (s *Service) ListStrays(ctx context.Context) ([]Listing, error) {
	return s.List(ctx, Query{ListingType: TypeStray})
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Listing, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	return s.List(ctx, Query{OwnerID: ownerID})
}

func (s *Service) publish(ctx context.Context, typ, id string, doc any) {
	if s.feed == nil {
		return
	}
	ev := changefeed.NewEvent(changefeed.TopicListings, typ, id, doc, s.now())
	if err := s.feed.Publish(ctx, ev); err != nil {
		// La base es la fuente de verdad; un aviso perdido no revierte la escritura.
		s.log.Warn("publish listing change failed", map[string]any{"listing_id": id, "type": typ, "err": err})
	}
}

// requiredValue: ausente => (_, false); null o vacío => error de validación.
func requiredValue(v *apperr.ValidationError, field string, f optional.Field[string]) (string, bool) {
	if !f.Set {
		return "", false
	}
	if f.Null || strings.TrimSpace(f.Value) == "" {
		v.Add(field, "cannot be cleared")
		return "", false
	}
	return f.Value, true
}

func mergeRequired(v *apperr.ValidationError, field string, f optional.Field[string], dst *string, min, max int) {
	raw, ok := requiredValue(v, field, f)
	if !ok {
		return
	}
	*dst = v.Length(field, raw, min, max)
}
