package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samber/oops"

	"hotel-management/config"
)

const cloudinaryAPI = "https://api.cloudinary.com/v1_1"

var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// AvatarStore persists an uploaded picture and returns its public URL.
type AvatarStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// NewAvatarStore picks Cloudinary when it is configured and the local upload
// directory otherwise.
func NewAvatarStore(cfg *config.Config) AvatarStore {
	if cfg.Cloudinary.Enabled() {
		return NewCloudinaryStore(cfg.Cloudinary, "")
	}
	return NewLocalStore(cfg.UploadDir, "avatars")
}

// CloudinaryStore uploads through the Cloudinary signed upload API.
type CloudinaryStore struct {
	client *resty.Client
	cfg    config.CloudinaryConfig
	now    func() time.Time
}

type cloudinaryUploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

type cloudinaryErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewCloudinaryStore; an empty baseURL means the public API.
func NewCloudinaryStore(cfg config.CloudinaryConfig, baseURL string) *CloudinaryStore {
	if baseURL == "" {
		baseURL = cloudinaryAPI
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/" + cfg.CloudName).
		SetTimeout(30 * time.Second)
	return &CloudinaryStore{client: client, cfg: cfg, now: time.Now}
}

func (s *CloudinaryStore) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if !imageExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return "", ErrUnsupportedImage
	}
	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	form := map[string]string{
		"api_key":   s.cfg.APIKey,
		"timestamp": timestamp,
		"signature": s.sign(map[string]string{"folder": s.cfg.Folder, "timestamp": timestamp}),
	}
	if s.cfg.Folder != "" {
		form["folder"] = s.cfg.Folder
	}

	var result cloudinaryUploadResponse
	var apiErr cloudinaryErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("file", file.Filename, f).
		SetFormData(form).
		SetResult(&result).
		SetError(&apiErr).
		Post("/image/upload")
	if err != nil {
		return "", oops.Code("AVATAR_UPLOAD_FAILED").Wrap(err)
	}
	if resp.IsError() {
		return "", oops.Code("AVATAR_UPLOAD_REJECTED").
			With("status", resp.StatusCode()).
			Errorf("cloudinary: %s", apiErr.Error.Message)
	}
	if result.SecureURL == "" {
		return "", oops.Code("AVATAR_UPLOAD_REJECTED").Errorf("cloudinary: empty secure_url")
	}
	return result.SecureURL, nil
}

// sign follows the Cloudinary scheme: the non-empty params sorted by name,
// joined as k=v with '&', then the API secret appended, SHA-1 hex encoded.
func (s *CloudinaryStore) sign(params map[string]string) string {
	keys := []string{"folder", "timestamp"}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := params[k]; v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + s.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}

// LocalStore writes uploads below the upload directory served at /uploads.
type LocalStore struct {
	root   string
	subdir string
	now    func() time.Time
}

func NewLocalStore(root, subdir string) *LocalStore {
	return &LocalStore{root: root, subdir: subdir, now: time.Now}
}

func (s *LocalStore) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedImage
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.root, s.subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	filename := fmt.Sprintf("%d%s", s.now().UnixNano(), ext)
	dst, err := os.OpenFile(filepath.Join(dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path.Join("/uploads", s.subdir, filename), nil
}
