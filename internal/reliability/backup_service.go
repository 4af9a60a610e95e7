// Package reliability keeps offsite copies of the SQLite stores and runs storage maintenance.
package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/finlit/finlit/internal/events"
	"github.com/rs/zerolog"
)

const (
	archivePrefix   = "finlit-backup-"
	archiveSuffix   = ".tar.gz"
	timestampLayout = "2006-01-02-150405"
	metadataFile    = "backup-metadata.json"
	metadataVersion = "1"
)

// ObjectStore is the remote side of a backup
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64) error
	List(ctx context.Context, prefix string) ([]types.Object, error)
	Delete(ctx context.Context, key string) error
}

// Snapshotter writes a consistent copy of a database to a file
type Snapshotter interface {
	Name() string
	VacuumInto(ctx context.Context, dest string) error
}

// EventEmitter publishes typed and error events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
	EmitError(module string, err error, context map[string]interface{})
}

// BackupMetadata describes the contents of an archive
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes a single database in the archive
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo describes an archive stored remotely
type BackupInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
}

// BackupService snapshots databases into a tar.gz archive and uploads it
type BackupService struct {
	store     ObjectStore
	databases []Snapshotter
	dataDir   string
	retention int
	emitter   EventEmitter
	now       func() time.Time
	log       zerolog.Logger
}

// NewBackupService creates a backup service keeping the newest retention archives. emitter may be nil.
func NewBackupService(
	store ObjectStore,
	databases []Snapshotter,
	dataDir string,
	retention int,
	emitter EventEmitter,
	log zerolog.Logger,
) *BackupService {
	if retention < 1 {
		retention = 1
	}
	return &BackupService{
		store:     store,
		databases: databases,
		dataDir:   dataDir,
		retention: retention,
		emitter:   emitter,
		now:       time.Now,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// Backup uploads a fresh archive, then prunes old ones
func (s *BackupService) Backup(ctx context.Context) (*BackupInfo, error) {
	info, err := s.CreateAndUploadBackup(ctx)
	if err != nil {
		if s.emitter != nil {
			s.emitter.EmitError("reliability", err, map[string]interface{}{"operation": "backup"})
		}
		return nil, err
	}

	pruned, err := s.RotateOldBackups(ctx)
	if err != nil {
		// The new archive is safe; rotation retries on the next run
		s.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	if s.emitter != nil {
		s.emitter.EmitTyped("reliability", &events.BackupCompletedData{
			Key:       info.Key,
			SizeBytes: info.SizeBytes,
			Pruned:    pruned,
		})
	}

	return info, nil
}

// CreateAndUploadBackup creates a backup archive and uploads it
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) (*BackupInfo, error) {
	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	stagingDir, err := os.MkdirTemp(s.dataDir, "backup-staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	timestamp := s.now().UTC()
	metadata := BackupMetadata{
		Timestamp: timestamp,
		Version:   metadataVersion,
		Databases: make([]DatabaseMetadata, 0, len(s.databases)),
	}

	files := make([]string, 0, len(s.databases)+1)
	for _, db := range s.databases {
		filename := db.Name() + ".db"
		dbPath := filepath.Join(stagingDir, filename)

		s.log.Debug().Str("database", db.Name()).Msg("Snapshotting database")
		if err := db.VacuumInto(ctx, dbPath); err != nil {
			return nil, fmt.Errorf("failed to snapshot %s: %w", db.Name(), err)
		}

		stat, err := os.Stat(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s snapshot: %w", db.Name(), err)
		}

		checksum, err := checksumFile(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate checksum for %s: %w", db.Name(), err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      db.Name(),
			Filename:  filename,
			SizeBytes: stat.Size(),
			Checksum:  checksum,
		})
		files = append(files, filename)
	}

	if err := writeMetadata(filepath.Join(stagingDir, metadataFile), metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	files = append(files, metadataFile)

	key := archivePrefix + timestamp.Format(timestampLayout) + archiveSuffix
	archivePath := filepath.Join(stagingDir, key)
	if err := createArchive(archivePath, stagingDir, files); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	stat, err := archive.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	if err := s.store.Upload(ctx, key, archive, stat.Size()); err != nil {
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", key).
		Int64("size_bytes", stat.Size()).
		Msg("Backup completed successfully")

	return &BackupInfo{Key: key, Timestamp: timestamp, SizeBytes: stat.Size()}, nil
}

// ListBackups lists stored archives, newest first. Foreign keys are ignored.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, archivePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}

		key := *obj.Key
		if !strings.HasPrefix(key, archivePrefix) || !strings.HasSuffix(key, archiveSuffix) {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(key, archivePrefix), archiveSuffix)
		timestamp, err := time.Parse(timestampLayout, stamp)
		if err != nil {
			s.log.Warn().Str("key", key).Msg("Failed to parse timestamp from key")
			continue
		}

		var size int64
		if obj.Size != nil {
			size = *obj.Size
		}

		backups = append(backups, BackupInfo{Key: key, Timestamp: timestamp, SizeBytes: size})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// RotateOldBackups deletes all but the newest archives and returns how many were removed
func (s *BackupService) RotateOldBackups(ctx context.Context) (int, error) {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}

	if len(backups) <= s.retention {
		return 0, nil
	}

	deleted := 0
	for _, backup := range backups[s.retention:] {
		if err := s.store.Delete(ctx, backup.Key); err != nil {
			s.log.Error().Err(err).Str("key", backup.Key).Msg("Failed to delete old backup")
			continue
		}
		s.log.Info().Str("key", backup.Key).Time("timestamp", backup.Timestamp).Msg("Deleted old backup")
		deleted++
	}

	return deleted, nil
}

func checksumFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

func createArchive(archivePath, sourceDir string, files []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archiveFile.Close()

	gzipWriter := gzip.NewWriter(archiveFile)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, name := range files {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, name), name); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	return gzipWriter.Close()
}

func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
