package viewstate

import (
	"context"
	"encoding/json"
	"slices"

	"petora-connect/internal/domain/listings"
	"petora-connect/internal/ports/changefeed"
)

type ListingsAPI interface {
	ListListings(ctx context.Context, f listings.Filter) ([]listings.Listing, error)
}

// BrowserState guarda el conjunto completo y la vista filtrada.
// Visible se recalcula en cada cambio de filtro o de conjunto.
type BrowserState struct {
	All     []listings.Listing
	Filter  listings.Filter
	Visible []listings.Listing
}

func (s BrowserState) recompute() BrowserState {
	s.Visible = s.Filter.Apply(s.All)
	return s
}

// ListingBrowser es la página de búsqueda: trae todo una vez y filtra en local.
type ListingBrowser struct {
	api   ListingsAPI
	store *Store[BrowserState]
}

func NewListingBrowser(api ListingsAPI) *ListingBrowser {
	return &ListingBrowser{api: api, store: NewStore(BrowserState{}.recompute(), nil)}
}

func (b *ListingBrowser) State() BrowserState { return b.store.State() }

func (b *ListingBrowser) Visible() []listings.Listing { return b.store.State().Visible }

func (b *ListingBrowser) Load(ctx context.Context) error {
	items, err := b.api.ListListings(ctx, listings.Filter{})
	if err != nil {
		return err
	}
	b.store.Update(func(s BrowserState) BrowserState {
		s.All = items
		return s.recompute()
	})
	return nil
}

func (b *ListingBrowser) SetFilter(f listings.Filter) []listings.Listing {
	return b.store.Update(func(s BrowserState) BrowserState {
		s.Filter = f
		return s.recompute()
	}).Visible
}

// Follow aplica los cambios del topic listings al conjunto completo.
func (b *ListingBrowser) Follow(ctx context.Context, events <-chan changefeed.Event) error {
	return b.store.Follow(ctx, events, reduceListings)
}

func reduceListings(cur BrowserState, ev changefeed.Event) BrowserState {
	if ev.Topic != changefeed.TopicListings {
		return cur
	}
	idx := slices.IndexFunc(cur.All, func(l listings.Listing) bool { return l.ID == ev.ID })

	switch ev.Type {
	case changefeed.Deleted:
		if idx < 0 {
			return cur
		}
		cur.All = slices.Delete(slices.Clone(cur.All), idx, idx+1)
	case changefeed.Created, changefeed.Updated:
		var l listings.Listing
		if err := json.Unmarshal(ev.Payload, &l); err != nil {
			return cur
		}
		all := slices.Clone(cur.All)
		if idx >= 0 {
			all[idx] = l
		} else {
			// más nuevas primero
			all = append([]listings.Listing{l}, all...)
		}
		cur.All = all
	default:
		return cur
	}
	return cur.recompute()
}
