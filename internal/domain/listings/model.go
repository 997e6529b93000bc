package listings

import (
	"strings"
	"time"
)

// Species define las especies soportadas.
// @Enum Dog, Cat, Bird, Rabbit, Other
type Species string

const (
	SpeciesDog    Species = "Dog"
	SpeciesCat    Species = "Cat"
	SpeciesBird   Species = "Bird"
	SpeciesRabbit Species = "Rabbit"
	SpeciesOther  Species = "Other"
)

var allSpecies = []Species{SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesOther}

// Gender define el sexo declarado.
// @Enum Male, Female, Unknown
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

var allGenders = []Gender{GenderMale, GenderFemale, GenderUnknown}

// ListingType es el tipo de publicación. Sale es el único que lleva precio.
// @Enum Adoption, Sale, Foster, Stray
type ListingType string

const (
	TypeAdoption ListingType = "Adoption"
	TypeSale     ListingType = "Sale"
	TypeFoster   ListingType = "Foster"
	TypeStray    ListingType = "Stray"
)

var allTypes = []ListingType{TypeAdoption, TypeSale, TypeFoster, TypeStray}

// PlaceholderImageURL se usa cuando la publicación no trae imagen.
const PlaceholderImageURL = "https://placehold.co/600x400/E2E8F0/4A5568?text=No+Image"

// Defaults de los reportes de callejeros.
const (
	StrayName    = "Found Stray"
	StrayUnknown = "Unknown"
)

// Listing es una mascota publicada.
// Price solo existe si ListingType == Sale. OwnerID vacío => callejero reportado.
type Listing struct {
	ID string `json:"id"`

	Name        string      `json:"name"`
	Species     Species     `json:"species"`
	Breed       string      `json:"breed"`
	Age         string      `json:"age"`
	Gender      Gender      `json:"gender"`
	Location    string      `json:"location"`
	ListingType ListingType `json:"listingType"`
	Price       *float64    `json:"price,omitempty"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`

	OwnerID         string `json:"ownerId,omitempty"`
	ReporterContact string `json:"reporterContact,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsStray indica si es un reporte anónimo.
func (l Listing) IsStray() bool {
	return l.ListingType == TypeStray
}

// View es lo que ve un visitante: la publicación más el contacto del dueño si existe.
type View struct {
	Listing
	ContactEmail string `json:"contactEmail,omitempty"`
}

// ParseSpecies acepta cualquier capitalización y devuelve el valor canónico.
func ParseSpecies(s string) (Species, bool) {
	for _, v := range allSpecies {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, true
		}
	}
	return "", false
}

func ParseGender(s string) (Gender, bool) {
	for _, v := range allGenders {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, true
		}
	}
	return "", false
}

func ParseListingType(s string) (ListingType, bool) {
	for _, v := range allTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, true
		}
	}
	return "", false
}
