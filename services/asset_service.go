package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"idcard.link/configs/configslog"
	"idcard.link/pkg/imageutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssetError asset store failures.
type AssetError string

func (e AssetError) Error() string { return string(e) }

const (
	ErrAssetInvalidCategory AssetError = "invalid asset folder"
	ErrAssetInvalidName     AssetError = "invalid file name"
	ErrAssetInvalidImage    AssetError = "invalid image data"
	ErrAssetNotFound        AssetError = "file not found"
	ErrAssetWriteFailed     AssetError = "could not save file"
)

// AssetCategory folder under the storage root.
type AssetCategory string

const (
	CategoryImages    AssetCategory = "Images"
	CategorySignature AssetCategory = "Signature"
)

// AssetCategories every folder a card owns a file in.
var AssetCategories = []AssetCategory{CategoryImages, CategorySignature}

// AssetExtensions lookup order when a key has no extension.
var AssetExtensions = []string{".jpg", ".png"}

const (
	photoMaxSize = 600
	stepRename   = "rename_asset"
	stepDelete   = "delete_asset"
)

var safeName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

func ParseCategory(s string) (AssetCategory, error) {
	for _, c := range AssetCategories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrAssetInvalidCategory, s)
}

func checkName(name string) error {
	if !safeName.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrAssetInvalidName, name)
	}
	return nil
}

// StoreAssetRequest upload body.
type StoreAssetRequest struct {
	Image    string          `json:"image" validate:"required"`
	Folder   string          `json:"folder" validate:"required"`
	Filename string          `json:"filename" validate:"required,max=128"`
	Crop     *imageutil.Rect `json:"crop,omitempty"`
}

// IAssetStore photo and signature files keyed by card number.
type IAssetStore interface {
	Store(ctx context.Context, req StoreAssetRequest) (string, error)
	Fetch(ctx context.Context, category AssetCategory, filename string) ([]byte, string, error)
	Rename(ctx context.Context, oldKey, newKey string) []StepResult
	Delete(ctx context.Context, key string) []StepResult
}

// AssetStore keeps files on the local disk under root/<category>/<name>.
type AssetStore struct {
	root string
}

func NewAssetStore(root string) *AssetStore {
	return &AssetStore{root: root}
}

func (s *AssetStore) path(category AssetCategory, name string) string {
	return filepath.Join(s.root, string(category), name)
}

// Store decodes the image, applies the optional crop, normalizes it and
// writes it atomically. Photos are shrunk to fit 600x600. A file without an
// extension gets .jpg in Images and .png in Signature. Returns the relative path.
func (s *AssetStore) Store(ctx context.Context, req StoreAssetRequest) (string, error) {
	category, err := ParseCategory(req.Folder)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(req.Filename)
	ext := filepath.Ext(name)
	if ext != "" {
		// Stored names only ever end in one of AssetExtensions.
		base := strings.TrimSuffix(name, ext)
		ext = strings.ToLower(ext)
		if ext == ".jpeg" {
			ext = ".jpg"
		}
		name = base + ext
	}
	if ext == "" {
		if category == CategoryImages {
			ext = ".jpg"
		} else {
			ext = ".png"
		}
		name += ext
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	format, ok := imageutil.FormatForExt(ext)
	if !ok {
		return "", fmt.Errorf("%w: unsupported extension %q", ErrAssetInvalidName, ext)
	}

	img, err := imageutil.DecodeDataURL(req.Image)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetInvalidImage, err)
	}
	if req.Crop != nil {
		if img, err = imageutil.Crop(img, *req.Crop); err != nil {
			return "", fmt.Errorf("%w: %v", ErrAssetInvalidImage, err)
		}
	}
	if category == CategoryImages {
		img = imageutil.Fit(img, photoMaxSize, photoMaxSize)
	}

	var buf bytes.Buffer
	if err := imageutil.Encode(&buf, img, format); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetWriteFailed, err)
	}

	dir := filepath.Join(s.root, string(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		configslog.Log.Error("AssetStore.Store: mkdir failed", zap.String("dir", dir), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrAssetWriteFailed, err)
	}
	target := filepath.Join(dir, name)
	if err := writeAtomic(dir, target, buf.Bytes()); err != nil {
		configslog.Log.Error("AssetStore.Store: write failed", zap.String("path", target), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrAssetWriteFailed, err)
	}

	// a card keeps one file per folder; drop the copy saved under the other extension
	base := strings.TrimSuffix(name, ext)
	for _, other := range AssetExtensions {
		if strings.EqualFold(other, ext) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, base+other)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			configslog.Log.Warn("AssetStore.Store: stale copy not removed", zap.String("file", base+other), zap.Error(err))
		}
	}

	return filepath.ToSlash(filepath.Join(string(category), name)), nil
}

func writeAtomic(dir, target string, data []byte) error {
	tmp := filepath.Join(dir, ".upload-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Fetch reads one file. A name without extension is tried with each AssetExtensions entry.
func (s *AssetStore) Fetch(ctx context.Context, category AssetCategory, filename string) ([]byte, string, error) {
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, "", err
	}
	if err := checkName(filename); err != nil {
		return nil, "", err
	}
	candidates := []string{filename}
	if filepath.Ext(filename) == "" {
		candidates = candidates[:0]
		for _, ext := range AssetExtensions {
			candidates = append(candidates, filename+ext)
		}
	}
	for _, name := range candidates {
		data, err := os.ReadFile(s.path(category, name))
		if err == nil {
			return data, contentType(name), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}
	}
	return nil, "", ErrAssetNotFound
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// Rename moves <oldKey>.<ext> to <newKey>.<ext> in every category, first matching extension wins.
// An existing target is never overwritten.
func (s *AssetStore) Rename(ctx context.Context, oldKey, newKey string) []StepResult {
	steps := make([]StepResult, 0, len(AssetCategories))
	for _, category := range AssetCategories {
		target := string(category) + "/" + oldKey
		if err := checkName(oldKey); err != nil {
			steps = append(steps, StepResult{Step: stepRename, Target: target, Status: StepFailed, Error: err.Error()})
			continue
		}
		if err := checkName(newKey); err != nil {
			steps = append(steps, StepResult{Step: stepRename, Target: target, Status: StepFailed, Error: err.Error()})
			continue
		}
		steps = append(steps, s.renameOne(category, oldKey, newKey))
	}
	return steps
}

func (s *AssetStore) renameOne(category AssetCategory, oldKey, newKey string) StepResult {
	for _, ext := range AssetExtensions {
		oldPath := s.path(category, oldKey+ext)
		if _, err := os.Stat(oldPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return StepResult{Step: stepRename, Target: string(category) + "/" + oldKey + ext, Status: StepFailed, Error: err.Error()}
		}
		target := string(category) + "/" + oldKey + ext + " -> " + newKey + ext
		newPath := s.path(category, newKey+ext)
		if _, err := os.Stat(newPath); err == nil {
			return StepResult{Step: stepRename, Target: target, Status: StepFailed, Error: "target already exists"}
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			configslog.Log.Warn("AssetStore.Rename failed", zap.String("from", oldPath), zap.String("to", newPath), zap.Error(err))
			return StepResult{Step: stepRename, Target: target, Status: StepFailed, Error: err.Error()}
		}
		return StepResult{Step: stepRename, Target: target, Status: StepOK}
	}
	return StepResult{Step: stepRename, Target: string(category) + "/" + oldKey, Status: StepAbsent}
}

// Delete removes <key>.<ext> for every extension in every category. Missing files are reported as absent.
func (s *AssetStore) Delete(ctx context.Context, key string) []StepResult {
	steps := make([]StepResult, 0, len(AssetCategories))
	for _, category := range AssetCategories {
		if err := checkName(key); err != nil {
			steps = append(steps, StepResult{Step: stepDelete, Target: string(category) + "/" + key, Status: StepFailed, Error: err.Error()})
			continue
		}
		step := StepResult{Step: stepDelete, Target: string(category) + "/" + key, Status: StepAbsent}
		for _, ext := range AssetExtensions {
			p := s.path(category, key+ext)
			err := os.Remove(p)
			switch {
			case err == nil:
				if step.Status != StepFailed {
					step = StepResult{Step: stepDelete, Target: string(category) + "/" + key + ext, Status: StepOK}
				}
			case errors.Is(err, fs.ErrNotExist):
			default:
				configslog.Log.Warn("AssetStore.Delete failed", zap.String("path", p), zap.Error(err))
				step = StepResult{Step: stepDelete, Target: string(category) + "/" + key + ext, Status: StepFailed, Error: err.Error()}
			}
		}
		steps = append(steps, step)
	}
	return steps
}

var _ IAssetStore = (*AssetStore)(nil)
