package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolhub_backend/internals/features/schools/schools/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
	helperOSS "schoolhub_backend/internals/helpers/oss"
)

// LogoKey is schools/<id>/logo_<unix>.webp.
func LogoKey(schoolID uuid.UUID, unix int64) string {
	return fmt.Sprintf("schools/%s/logo_%d.webp", schoolID, unix)
}

// UploadLogo converts the image to a 512px webp, stores it and points the
// school at it. The previous object is removed best-effort.
func (s *SchoolService) UploadLogo(ctx context.Context, store helperOSS.ObjectStore, schoolID uuid.UUID, data []byte, filename string) (*model.SchoolModel, error) {
	if store == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "File storage is not configured")
	}
	prev, err := s.Get(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	webpData, err := helperOSS.ProcessLogo(data, filename)
	if err != nil {
		if errors.Is(err, helperOSS.ErrUnsupportedFormat) || errors.Is(err, helperOSS.ErrEmptyImage) {
			return nil, fiber.NewError(fiber.StatusUnsupportedMediaType, "Unsupported image format, use jpg, png or webp")
		}
		return nil, helper.ErrStorage("encode logo", err)
	}

	key := LogoKey(schoolID, dbtime.Now().Unix())
	url, err := store.PutObject(ctx, key, webpData, "image/webp")
	if err != nil {
		log.Printf("[ERROR] upload logo school=%s key=%s: %v", schoolID, key, err)
		return nil, fiber.NewError(fiber.StatusBadGateway, "Failed to upload logo")
	}

	m, err := s.SetLogo(ctx, schoolID, url, key)
	if err != nil {
		_ = store.DeleteObject(ctx, key)
		return nil, err
	}
	if old := prev.SchoolLogoObjectKey; old != nil && *old != "" && *old != key {
		if err := store.DeleteObject(ctx, *old); err != nil {
			log.Printf("[WARN] delete old logo key=%s: %v", *old, err)
		}
	}
	return m, nil
}
