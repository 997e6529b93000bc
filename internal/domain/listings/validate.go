package listings

import (
	"math"
	"net/url"
	"strings"

	"petora-connect/internal/platform/apperr"
)

// Límites de los campos de texto (en runas).
const (
	nameMin, nameMax               = 2, 50
	breedMin, breedMax             = 2, 50
	ageMin, ageMax                 = 1, 30
	locationMin, locationMax       = 2, 100
	descriptionMin, descriptionMax = 10, 500
	contactMax                     = 100
)

func validSpecies(v *apperr.ValidationError, raw string) Species {
	s, ok := ParseSpecies(raw)
	if !ok {
		v.Add("species", "must be one of Dog, Cat, Bird, Rabbit, Other")
	}
	return s
}

func validGender(v *apperr.ValidationError, raw string) Gender {
	g, ok := ParseGender(raw)
	if !ok {
		v.Add("gender", "must be one of Male, Female, Unknown")
	}
	return g
}

// validOwnedType: Stray solo se crea por el reporte anónimo.
func validOwnedType(v *apperr.ValidationError, raw string) ListingType {
	t, ok := ParseListingType(raw)
	if !ok || t == TypeStray {
		v.Add("listingType", "must be one of Adoption, Sale, Foster")
		return ""
	}
	return t
}

func validPrice(v *apperr.ValidationError, p float64) {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		v.Add("price", "must be a non-negative number")
	}
}

// checkPriceCoupling: Sale <=> precio presente.
func checkPriceCoupling(v *apperr.ValidationError, t ListingType, price *float64) {
	if t == "" || v.Has("price") {
		return
	}
	switch {
	case t == TypeSale && price == nil:
		v.Add("price", "is required for Sale listings")
	case t != TypeSale && price != nil:
		v.Add("price", "is only allowed for Sale listings")
	}
}

// validImageURL acepta URLs absolutas http(s) o paths servidos por /images.
func validImageURL(v *apperr.ValidationError, raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "/images/") {
		return s
	}
	u, err := url.ParseRequestURI(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.Add("imageUrl", "must be an http(s) URL or an /images path")
	}
	return s
}
