package handlers

import (
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperr "campus_essentials/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PublicUploadPrefix is the URL prefix the upload directory is served under.
const PublicUploadPrefix = "/uploads"

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// ImageStore saves uploaded images below a root directory and returns the
// public URL of each file.
type ImageStore struct {
	root string
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{root: root}
}

func (s *ImageStore) Root() string { return s.root }

// Save stores fh under sub with a random name. Only .jpg, .jpeg and .png
// files are accepted.
func (s *ImageStore) Save(c *fiber.Ctx, fh *multipart.FileHeader, sub string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return "", apperr.InvalidArg("only .jpg, .jpeg and .png files are allowed")
	}

	dir := filepath.Join(s.root, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Internal("could not prepare upload directory", err)
	}

	filename := uuid.NewString() + ext
	if err := c.SaveFile(fh, filepath.Join(dir, filename)); err != nil {
		return "", apperr.Internal("could not save file", err)
	}
	return path.Join(PublicUploadPrefix, sub, filename), nil
}

// Remove deletes files previously returned by Save. Unknown URLs are ignored.
func (s *ImageStore) Remove(urls ...string) {
	for _, u := range urls {
		rel, ok := strings.CutPrefix(u, PublicUploadPrefix+"/")
		if !ok || strings.Contains(rel, "..") {
			continue
		}
		_ = os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	}
}

// UploadHandler handles file uploads
type UploadHandler struct {
	images *ImageStore
}

func NewUploadHandler(images *ImageStore) *UploadHandler {
	return &UploadHandler{images: images}
}

// UploadImage - POST /api/uploads
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return apperr.InvalidArg("image file is required")
	}

	url, err := h.images.Save(c, file, "listings")
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}
