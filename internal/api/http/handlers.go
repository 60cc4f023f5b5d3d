package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vairamhq/link-shortener/internal/database"
	"github.com/vairamhq/link-shortener/internal/models"
	"github.com/vairamhq/link-shortener/internal/service"
	"github.com/vairamhq/link-shortener/pkg/response"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// shortenRequest represents the request payload for creating a shortened link.
// TrackClicks and GenerateQR are accepted for form compatibility but unused.
type shortenRequest struct {
	URL         string `json:"url" validate:"required"`
	CustomAlias string `json:"custom_alias,omitempty"`
	ExpiryDays  *int   `json:"expiry_days,omitempty"`
	Password    string `json:"password,omitempty"`
	TrackClicks bool   `json:"trackClicks,omitempty"`
	GenerateQR  bool   `json:"generateQR,omitempty"`
}

// linkResponse represents the response payload for a shortened link.
type linkResponse struct {
	ShortURL   string     `json:"short_url"`
	ShortCode  string     `json:"short_code"`
	LongURL    string     `json:"long_url"`
	ClickCount int64      `json:"click_count"`
	CreatedAt  time.Time  `json:"created_date"`
	ExpiresAt  *time.Time `json:"expiry_date,omitempty"`
}

// toLinkResponse converts a link model from the business layer into a response payload.
func toLinkResponse(link *models.Link, baseURL string) linkResponse {
	return linkResponse{
		ShortURL:   service.ShortURL(baseURL, link.Code),
		ShortCode:  link.Code,
		LongURL:    link.LongURL,
		ClickCount: link.ClickCount,
		CreatedAt:  link.CreatedAt,
		ExpiresAt:  link.ExpiresAt,
	}
}

// decodeShortenRequest reads the request as JSON or as an HTML form,
// depending on the Content-Type.
func decodeShortenRequest(r *http.Request, req *shortenRequest) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		return render.DecodeJSON(r.Body, req)
	}

	if err := r.ParseForm(); err != nil {
		return err
	}

	req.URL = r.PostFormValue("url")
	req.CustomAlias = r.PostFormValue("custom_alias")
	req.Password = r.PostFormValue("password")
	req.TrackClicks = r.PostFormValue("trackClicks") == "true"
	req.GenerateQR = r.PostFormValue("generateQR") == "true"

	if v := r.PostFormValue("expiry_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid expiry_days: %w", err)
		}
		req.ExpiryDays = &days
	}

	return nil
}

// inputErrorMessage returns the human-readable message for caller-input
// errors, or an empty string when err is not the caller's fault.
func inputErrorMessage(err error) string {
	for _, target := range []error{
		service.ErrInvalidURL,
		service.ErrAliasTooLong,
		service.ErrAliasInvalid,
		service.ErrAliasTaken,
		service.ErrInvalidExpiry,
		service.ErrPasswordTooShort,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}

	return ""
}

// handleShortenLink handles POST requests to shorten a URL.
//
// The request must contain the original URL and may carry a custom alias,
// expiry in days and an access password. The handler validates the input,
// calls the shortening service, and returns the assembled short URL with
// relevant metadata.
func handleShortenLink(svc LinkShortener, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleShortenLink"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

		if err := decodeShortenRequest(r, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		link, err := svc.Shorten(r.Context(), service.ShortenInput{
			LongURL:     req.URL,
			CustomAlias: req.CustomAlias,
			ExpiryDays:  req.ExpiryDays,
			Password:    req.Password,
		})
		if err != nil {
			if msg := inputErrorMessage(err); msg != "" {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ClientErrorResponse(msg))
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(link, baseURL)))
	}
}

// handleRedirect handles GET requests for a short code.
//
// It responds with a 302 redirect to the original URL, 404 when the code is
// unknown and 410 when the link has expired.
func handleRedirect(resolver LinkResolver) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		link, err := resolver.Resolve(r.Context(), code)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}
			if errors.Is(err, service.ErrLinkExpired) {
				render.Status(r, http.StatusGone)
				render.JSON(w, r, response.LinkExpiredResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, link.LongURL, http.StatusFound)
	}
}

// handleLinkStats handles GET requests for link statistics.
//
// The handler fetches the link based on the provided code, returning its
// click count and metadata without affecting the counter.
func handleLinkStats(svc LinkShortener, baseURL string) http.HandlerFunc {
	const op = "api.http.handleLinkStats"
	const successMsg = "The link statistics retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		link, err := svc.Stats(r.Context(), code)
		if err != nil {
			if errors.Is(err, database.ErrLinkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(link, baseURL)))
	}
}
