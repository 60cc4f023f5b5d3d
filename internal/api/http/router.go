// Package http exposes the web surface of the link shortener: the shorten
// API, the redirect endpoint and supporting routes.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vairamhq/link-shortener/internal/models"
	"github.com/vairamhq/link-shortener/internal/service"
)

// LinkShortener defines the shortening operations consumed by the handlers.
type LinkShortener interface {
	// Shorten creates a new shortened link from the caller-supplied input.
	Shorten(ctx context.Context, input service.ShortenInput) (*models.Link, error)

	// Stats retrieves a link with its click counter, without side effects.
	Stats(ctx context.Context, code string) (*models.Link, error)
}

// LinkResolver turns an incoming code into a redirect decision.
type LinkResolver interface {
	// Resolve returns the link to redirect to, or a classified failure:
	// database.ErrLinkNotFound or service.ErrLinkExpired.
	Resolve(ctx context.Context, code string) (*models.Link, error)
}

// getValidate initializes a validator instance reporting fields by their JSON names.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter assembles the HTTP routes. baseURL is the public origin used to
// build short URLs in responses.
func NewRouter(logger *httplog.Logger, svc LinkShortener, resolver LinkResolver, baseURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	validate := getValidate()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", handlePing)

		r.Route("/shorten", func(r chi.Router) {
			r.Post("/", handleShortenLink(svc, validate, baseURL))
			r.Get("/{code}/stats", handleLinkStats(svc, baseURL))
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	// Plain form clients post to /shorten and follow /{code} links.
	r.Post("/shorten", handleShortenLink(svc, validate, baseURL))
	r.Get("/{code}", handleRedirect(resolver))

	return r
}
