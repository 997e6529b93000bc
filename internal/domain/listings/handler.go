package listings

import (
	"net/http"
	"strconv"
	"strings"

	"petora-connect/internal/middleware"
	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/httpx"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/platform/optional"
	"petora-connect/internal/ports/blob"
	"petora-connect/internal/ports/changefeed"
	"petora-connect/internal/realtime"

	"github.com/go-chi/chi/v5"
)

// HandlerOptions configura los handlers HTTP del módulo.
type HandlerOptions struct {
	Log logger.Logger
	// MaxUploadBytes acota el body multipart (imagen + campos).
	MaxUploadBytes int64
	// Streamer habilita GET /pets/stream; nil lo deshabilita.
	Streamer *realtime.Streamer
}

// imageFields son los nombres aceptados para la parte de archivo.
var imageFields = []string{"image", "petImage", "file"}

func RegisterRoutes(r chi.Router, svc *Service, opts HandlerOptions) {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 6 << 20
	}

	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listListingsHandler(svc, opts))
		pr.Post("/", createListingHandler(svc, opts))
		if opts.Streamer != nil {
			pr.Get("/stream", streamHandler(opts))
		}
		pr.Get("/{petID}", getListingHandler(svc, opts))
		pr.Patch("/{petID}", updateListingHandler(svc, opts))
		pr.Delete("/{petID}", deleteListingHandler(svc, opts))
	})

	// Publicaciones propias (perfil)
	r.Get("/me/pets", listMyListingsHandler(svc, opts))

	r.Route("/strays", func(sr chi.Router) {
		sr.Get("/", listStraysHandler(svc, opts))
		sr.Post("/", reportStrayHandler(svc, opts))
	})
}

type createListingRequest struct {
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Breed       string   `json:"breed"`
	Age         string   `json:"age"`
	Gender      string   `json:"gender"`
	Location    string   `json:"location"`
	ListingType string   `json:"listingType"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
}

// updateListingRequest: cada campo distingue ausente / null / valor.
type updateListingRequest struct {
	Name        optional.Field[string]  `json:"name" swaggertype:"string"`
	Species     optional.Field[string]  `json:"species" swaggertype:"string"`
	Breed       optional.Field[string]  `json:"breed" swaggertype:"string"`
	Age         optional.Field[string]  `json:"age" swaggertype:"string"`
	Gender      optional.Field[string]  `json:"gender" swaggertype:"string"`
	Location    optional.Field[string]  `json:"location" swaggertype:"string"`
	ListingType optional.Field[string]  `json:"listingType" swaggertype:"string"`
	Price       optional.Field[float64] `json:"price" swaggertype:"number"`
	Description optional.Field[string]  `json:"description" swaggertype:"string"`
	ImageURL    optional.Field[string]  `json:"imageUrl" swaggertype:"string"`
}

type strayReportRequest struct {
	Species         string `json:"species"`
	Location        string `json:"location"`
	Description     string `json:"description"`
	ReporterContact string `json:"reporterContact"`
}

// listListingsHandler godoc
// @Summary Listar publicaciones
// @Description Catálogo público, más nuevas primero. Filtros opcionales: búsqueda por nombre/raza, especie y tipo ("All" no filtra).
// @Tags listings
// @Produce json
// @Param search query string false "Texto a buscar en nombre o raza"
// @Param species query string false "Dog, Cat, Bird, Rabbit, Other o All"
// @Param listingType query string false "Adoption, Sale, Foster, Stray o All"
// @Success 200 {array} Listing
// @Failure 400 {object} apperr.ValidationError
// @Router /pets [get]
func listListingsHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := filterFromQuery(r)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}

		items, err := svc.List(r.Context(), Query{})
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, f.Apply(items))
	}
}

// createListingHandler godoc
// @Summary Crear publicación
// @Description Crea una publicación del usuario autenticado. Acepta JSON o multipart/form-data (campo de archivo `image`). Sale exige price; el resto no lo admite. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags listings
// @Accept json,mpfd
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createListingRequest true "Datos de la publicación"
// @Success 201 {object} Listing
// @Failure 400 {object} apperr.ValidationError
// @Failure 401 {string} string "unauthorized"
// @Router /pets [post]
func createListingHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}

		var (
			req   createListingRequest
			image *blob.Upload
		)
		if httpx.IsMultipart(r) {
			if err := httpx.ParseMultipart(w, r, opts.MaxUploadBytes); err != nil {
				httpx.WriteError(w, r, opts.Log, err)
				return
			}
			req, err = createRequestFromForm(r)
			if err != nil {
				httpx.WriteError(w, r, opts.Log, err)
				return
			}
			up, closeFn, err := httpx.FormUpload(r, imageFields...)
			if err != nil {
				httpx.WriteError(w, r, opts.Log, err)
				return
			}
			defer closeFn()
			image = up
		} else if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}

		l, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Age:         req.Age,
			Gender:      req.Gender,
			Location:    req.Location,
			ListingType: req.ListingType,
			Price:       req.Price,
			Description: req.Description,
		}, image)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, l)
	}
}

// getListingHandler godoc
// @Summary Detalle de publicación
// @Description Público. Incluye contactEmail si el dueño tiene perfil.
// @Tags listings
// @Produce json
// @Param petID path string true "ID de la publicación"
// @Success 200 {object} View
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [get]
func getListingHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Get(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, v)
	}
}

// updateListingHandler godoc
// @Summary Editar publicación
// @Description Solo el dueño. Campos ausentes no cambian; `price: null` quita el precio; `imageUrl: null` vuelve al placeholder. Los campos obligatorios no aceptan null ni vacío.
// @Tags listings
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la publicación"
// @Param payload body updateListingRequest true "Campos a modificar"
// @Success 200 {object} Listing
// @Failure 400 {object} apperr.ValidationError
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [patch]
func updateListingHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}

		var req updateListingRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}

		l, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), claims.UserID, UpdateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Age:         req.Age,
			Gender:      req.Gender,
			Location:    req.Location,
			ListingType: req.ListingType,
			Price:       req.Price,
			Description: req.Description,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, l)
	}
}

// deleteListingHandler godoc
// @Summary Borrar publicación
// @Description Solo el dueño. Borrado físico.
// @Tags listings
// @Param petID path string true "ID de la publicación"
// @Success 204
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID} [delete]
func deleteListingHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), claims.UserID); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listMyListingsHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := middleware.RequireClaims(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, items)
	}
}

func listStraysHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListStrays(r.Context())
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, items)
	}
}

// reportStrayHandler godoc
// @Summary Reportar callejero
// @Description Público, sin autenticación. Multipart (campo de archivo `file` o `image`) o JSON.
// @Tags strays
// @Accept json,mpfd
// @Produce json
// @Param payload body strayReportRequest true "Ubicación, descripción y contacto opcional"
// @Success 201 {object} Listing
// @Failure 400 {object} apperr.ValidationError
// @Router /strays [post]
func reportStrayHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			req   strayReportRequest
			image *blob.Upload
		)
		if httpx.IsMultipart(r) {
			if err := httpx.ParseMultipart(w, r, opts.MaxUploadBytes); err != nil {
				httpx.WriteError(w, r, opts.Log, err)
				return
			}
			req = strayReportRequest{
				Species:         r.FormValue("species"),
				Location:        r.FormValue("location"),
				Description:     r.FormValue("description"),
				ReporterContact: r.FormValue("reporterContact"),
			}
			up, closeFn, err := httpx.FormUpload(r, imageFields...)
			if err != nil {
				httpx.WriteError(w, r, opts.Log, err)
				return
			}
			defer closeFn()
			image = up
		} else if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}

		l, err := svc.ReportStray(r.Context(), StrayReportInput{
			Species:         req.Species,
			Location:        req.Location,
			Description:     req.Description,
			ReporterContact: req.ReporterContact,
		}, image)
		if err != nil {
			httpx.WriteError(w, r, opts.Log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, l)
	}
}

func createRequestFromForm(r *http.Request) (createListingRequest, error) {
	req := createListingRequest{
		Name:        r.FormValue("name"),
		Species:     firstNonEmpty(r.FormValue("species"), r.FormValue("type")),
		Breed:       r.FormValue("breed"),
		Age:         r.FormValue("age"),
		Gender:      r.FormValue("gender"),
		Location:    r.FormValue("location"),
		ListingType: r.FormValue("listingType"),
		Description: r.FormValue("description"),
	}
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return createListingRequest{}, apperr.Invalid("price", "must be a number")
		}
		req.Price = &p
	}
	return req, nil
}

// filterFromQuery: "All" o vacío no filtra; valores desconocidos son 400.
func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{Search: q.Get("search")}
	v := &apperr.ValidationError{}

	if raw := strings.TrimSpace(q.Get("species")); raw != "" && !strings.EqualFold(raw, "All") {
		s, ok := ParseSpecies(raw)
		if !ok {
			v.Add("species", "unknown species")
		}
		f.Species = s
	}
	if raw := strings.TrimSpace(q.Get("listingType")); raw != "" && !strings.EqualFold(raw, "All") {
		t, ok := ParseListingType(raw)
		if !ok {
			v.Add("listingType", "unknown listing type")
		}
		f.ListingType = t
	}
	return f, v.OrNil()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// streamHandler godoc
// @Summary Stream de cambios del catálogo
// @Description WebSocket público. Cada mensaje es un evento {topic, type, id, payload, at} del topic listings.
// @Tags listings
// @Success 101 {string} string "switching protocols"
// @Router /pets/stream [get]
func streamHandler(opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts.Streamer.Serve(w, r, changefeed.TopicListings)
	}
}
