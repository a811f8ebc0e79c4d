package http

import (
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/imoveis/internal/core/domain"
	"github.com/samirrijal/imoveis/internal/core/usecases"
)

// createListingResponse is the body returned by POST /api/v1/imoveis.
type createListingResponse struct {
	Status  string `json:"status"`
	ID      int64  `json:"id"`
	FotoURL string `json:"foto_url"`
}

// CreateListingHandler stores a listing sent as multipart form data:
// titulo, latitude, longitude, azimute and the foto file.
func CreateListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return errBadRequest(c, "multipart form body is required")
		}

		title, ok := formValue(form, "titulo")
		if !ok || title == "" {
			return errBadRequest(c, "titulo is required")
		}

		lat, err := formFloat(form, "latitude")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lon, err := formFloat(form, "longitude")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		azimuth, err := formFloat(form, "azimute")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		files := form.File["foto"]
		if len(files) == 0 {
			return errBadRequest(c, "foto is required")
		}
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			return errBadRequest(c, "cannot read foto: "+err.Error())
		}
		defer f.Close()

		listing, err := deps.Listings.Create(c.UserContext(), domain.NewListing{
			Title:     title,
			Latitude:  lat,
			Longitude: lon,
			Azimuth:   azimuth,
		}, domain.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(createListingResponse{
			Status:  "sucesso",
			ID:      listing.ID,
			FotoURL: listing.PhotoURL,
		})
	}
}

// NearbyListingsHandler returns listings strictly within raio meters
// (default 2000) of lat/lon.
func NearbyListingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := queryFloat(c, "lat")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lon, err := queryFloat(c, "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		radius := usecases.DefaultRadiusMeters
		if c.Query("raio") != "" {
			if radius, err = queryFloat(c, "raio"); err != nil {
				return errBadRequest(c, err.Error())
			}
		}

		listings, err := deps.Listings.FindNearby(c.UserContext(), lat, lon, radius)
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(listings)
	}
}

// formValue returns the first value of a form field and whether it was sent.
func formValue(form *multipart.Form, name string) (string, bool) {
	vals, ok := form.Value[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func formFloat(form *multipart.Form, name string) (float64, error) {
	raw, ok := formValue(form, name)
	if !ok || raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}
