package listings

import (
	"iter"
	"slices"
	"strings"
)

// Filter es el filtro del catálogo. Valores vacíos no filtran.
// Es puro: no toca el store, así que sirve igual en el handler y en la vista del cliente.
type Filter struct {
	Search      string
	Species     Species
	ListingType ListingType
}

// Match: búsqueda case-insensitive sobre nombre y raza; igualdad en especie y tipo.
func (f Filter) Match(l Listing) bool {
	if f.Species != "" && l.Species != f.Species {
		return false
	}
	if f.ListingType != "" && l.ListingType != f.ListingType {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Name), q) ||
		strings.Contains(strings.ToLower(l.Breed), q)
}

// Seq recorre items filtrados sin copiar; se puede iterar más de una vez.
func (f Filter) Seq(items []Listing) iter.Seq[Listing] {
	return func(yield func(Listing) bool) {
		for _, l := range items {
			if f.Match(l) && !yield(l) {
				return
			}
		}
	}
}

// Apply materializa Seq. Nunca devuelve nil.
func (f Filter) Apply(items []Listing) []Listing {
	out := slices.Collect(f.Seq(items))
	if out == nil {
		out = []Listing{}
	}
	return out
}
