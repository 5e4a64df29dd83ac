package services

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"church-service/internal/models"
	"church-service/pkg/common"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ImageService owns uploaded files. The database row is the source of truth;
// the filesystem directories are disposable mirrors kept warm for static
// serving, repopulated on read misses and reconciled by RestoreMirrors.
type ImageService struct {
	DB      *gorm.DB
	Tasks   *asynq.Client // nil = mirror synchronously (tests, CLI)
	primary string
	mirrors []string // secondary mirror dirs, primary excluded
}

const TypeMirrorSync = "images:mirror-sync"

type MirrorSyncPayload struct {
	Filename string `json:"filename"`
}

var allowedExtensions = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true,
	".mp3": true, ".mp4": true, ".pdf": true, ".doc": true, ".docx": true,
}

const MaxUploadSize = 50 << 20 // 50 MB

func NewImageService(db *gorm.DB, tasks *asynq.Client, primaryDir string, mirrorDirs ...string) *ImageService {
	mirrors := make([]string, 0, len(mirrorDirs))
	for _, d := range mirrorDirs {
		if d != "" {
			mirrors = append(mirrors, d)
		}
	}
	return &ImageService{DB: db, Tasks: tasks, primary: primaryDir, mirrors: mirrors}
}

// AllowedExtension reports whether the original filename carries a
// whitelisted extension.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// GenerateFilename builds the stored name: <field>-<epoch-ms>-<4 hex><ext>.
// The random tag exists because burst uploads land in the same millisecond.
func GenerateFilename(field, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	field = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, field)
	return fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixMilli(), common.GenerateFileSuffix(), ext)
}

// Store persists an upload: primary directory first for immediate serving,
// then the durable blob row, then best-effort mirrors. A mirror failure never
// fails the upload.
func (s *ImageService) Store(field, originalName, mimeType string, data []byte) (*models.ImageBlob, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no file content", ErrValidation)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds 50MB limit", ErrValidation)
	}
	if !AllowedExtension(originalName) {
		return nil, fmt.Errorf("%w: file type not allowed", ErrValidation)
	}

	filename := GenerateFilename(field, originalName)

	if err := os.MkdirAll(s.primary, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(s.primary, filename), data, 0o644); err != nil {
		return nil, err
	}

	blob := models.ImageBlob{
		Filename:     filename,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		Data:         data,
	}
	if err := s.DB.Create(&blob).Error; err != nil {
		// keep disk and database consistent on the one failure we can undo
		os.Remove(filepath.Join(s.primary, filename))
		return nil, err
	}

	s.scheduleMirrorSync(filename)
	return &blob, nil
}

func (s *ImageService) scheduleMirrorSync(filename string) {
	if len(s.mirrors) == 0 {
		return
	}
	if s.Tasks == nil {
		if err := s.SyncMirrors(filename); err != nil {
			log.Printf("mirror sync for %s: %v", filename, err)
		}
		return
	}
	payload, err := json.Marshal(MirrorSyncPayload{Filename: filename})
	if err != nil {
		log.Printf("failed to marshal mirror task for %s: %v", filename, err)
		return
	}
	task := asynq.NewTask(TypeMirrorSync, payload)
	if _, err := s.Tasks.Enqueue(task, asynq.TaskID("mirror:"+filename)); err != nil {
		log.Printf("failed to enqueue mirror task for %s: %v", filename, err)
	}
}

// SyncMirrors copies a blob's bytes to every secondary mirror and verifies
// each copy by content hash. Failures are reported but individual mirrors
// never block each other.
func (s *ImageService) SyncMirrors(filename string) error {
	var blob models.ImageBlob
	if err := s.DB.Where("filename = ?", filename).First(&blob).Error; err != nil {
		return fmt.Errorf("%w: image %s", ErrNotFound, filename)
	}

	want := sha256.Sum256(blob.Data)
	var failed []string
	for _, dir := range s.mirrors {
		if err := writeVerified(dir, filename, blob.Data, want); err != nil {
			log.Printf("mirror %s: %v", dir, err)
			failed = append(failed, dir)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("mirror write failed for %s in: %s", filename, strings.Join(failed, ", "))
	}
	return nil
}

func writeVerified(dir, filename string, data []byte, want [32]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	readBack, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if sha256.Sum256(readBack) != want {
		return fmt.Errorf("hash mismatch after copy to %s", path)
	}
	return nil
}

// Read serves an image by filename: blob row first, then the filesystem
// mirrors. A database hit with a cold primary mirror rewarms it on the way
// out.
func (s *ImageService) Read(filename string) ([]byte, string, error) {
	// reject traversal before touching the filesystem
	if filename != filepath.Base(filename) {
		return nil, "", fmt.Errorf("%w: image %s", ErrNotFound, filename)
	}

	var blob models.ImageBlob
	err := s.DB.Where("filename = ?", filename).First(&blob).Error
	if err == nil {
		primary := filepath.Join(s.primary, filename)
		if _, statErr := os.Stat(primary); statErr != nil {
			if mkErr := os.MkdirAll(s.primary, 0o755); mkErr == nil {
				if wrErr := os.WriteFile(primary, blob.Data, 0o644); wrErr != nil {
					log.Printf("failed to rewarm primary mirror for %s: %v", filename, wrErr)
				}
			}
		}
		return blob.Data, blob.MimeType, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	for _, dir := range append([]string{s.primary}, s.mirrors...) {
		data, readErr := os.ReadFile(filepath.Join(dir, filename))
		if readErr == nil {
			return data, mimeFromExtension(filename), nil
		}
	}
	return nil, "", fmt.Errorf("%w: image %s", ErrNotFound, filename)
}

func mimeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

type RestoreReport struct {
	Restored int      `json:"restored"`
	Errors   int      `json:"errors"`
	Total    int      `json:"total"`
	Details  []string `json:"details,omitempty"`
}

// RestoreMirrors walks every blob and rewrites any mirror file that is
// missing or whose size differs from the stored bytes. Size comparison is a
// cheap equality check, not a hash: a corrupted same-size file slips through,
// and that trade-off is accepted for boot-time speed.
func (s *ImageService) RestoreMirrors() RestoreReport {
	report := RestoreReport{}
	dirs := append([]string{s.primary}, s.mirrors...)

	var blobs []models.ImageBlob
	const batch = 50
	s.DB.FindInBatches(&blobs, batch, func(tx *gorm.DB, _ int) error {
		for _, blob := range blobs {
			report.Total++
			wrote := false
			failed := false
			for _, dir := range dirs {
				path := filepath.Join(dir, blob.Filename)
				info, err := os.Stat(path)
				if err == nil && info.Size() == blob.Size {
					continue
				}
				if err := os.MkdirAll(dir, 0o755); err != nil {
					report.Details = append(report.Details, fmt.Sprintf("%s: %v", path, err))
					failed = true
					continue
				}
				if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
					report.Details = append(report.Details, fmt.Sprintf("%s: %v", path, err))
					failed = true
					continue
				}
				wrote = true
			}
			if wrote {
				report.Restored++
			}
			if failed {
				report.Errors++
			}
		}
		return nil
	})
	return report
}

// Purge removes an image permanently: the blob row and every mirror copy.
// Mirror unlinks are best-effort.
func (s *ImageService) Purge(filename string) error {
	res := s.DB.Where("filename = ?", filename).Delete(&models.ImageBlob{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: image %s", ErrNotFound, filename)
	}
	for _, dir := range append([]string{s.primary}, s.mirrors...) {
		if err := os.Remove(filepath.Join(dir, filename)); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to unlink mirror copy %s/%s: %v", dir, filename, err)
		}
	}
	return nil
}

// StartScheduler reconciles mirrors hourly, catching anything the
// asynchronous per-upload sync missed.
func (s *ImageService) StartScheduler() {
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		report := s.RestoreMirrors()
		if report.Restored > 0 || report.Errors > 0 {
			log.Printf("image mirror sweep: restored=%d errors=%d total=%d",
				report.Restored, report.Errors, report.Total)
		}
	})
	if err != nil {
		log.Printf("failed to schedule image mirror sweep: %v", err)
		return
	}
	c.Start()
	log.Println("Image mirror reconcile scheduler started (hourly)")
}
