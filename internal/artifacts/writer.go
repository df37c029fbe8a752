package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"transcriptor/internal/fileutil"
	"transcriptor/internal/logging"
	"transcriptor/internal/services"
	"transcriptor/internal/transcript"
)

const (
	lockFileName   = ".transcriptor.lock"
	lockRetryDelay = 50 * time.Millisecond
)

// Paths lists the files written for one extraction.
type Paths struct {
	Transcript string
	Metadata   string
}

// Writer persists successful extraction results into a directory.
type Writer struct {
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewWriter returns a writer targeting dir. An empty dir means the current
// working directory.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	return &Writer{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		logger: logging.NewComponentLogger(logger, "artifacts"),
	}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// TranscriptPath returns the transcript file location for a video.
func (w *Writer) TranscriptPath(videoID string) string {
	return filepath.Join(w.dir, videoID+"_transcript.txt")
}

// MetadataPath returns the metadata file location for a video.
func (w *Writer) MetadataPath(videoID string) string {
	return filepath.Join(w.dir, videoID+"_metadata.json")
}

// Write stores the transcript and metadata files for a successful result.
func (w *Writer) Write(ctx context.Context, result transcript.Result) (Paths, error) {
	if !result.Success {
		return Paths{}, services.Wrap(services.ErrValidation, "artifacts", "write", "result is not successful", nil)
	}
	id := string(result.VideoID)
	if id == "" {
		return Paths{}, services.Wrap(services.ErrValidation, "artifacts", "write", "result has no video id", nil)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}

	locked, err := w.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Paths{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return Paths{}, errors.New("output directory is locked by another transcriptor process")
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			logging.WarnWithContext(w.logger, "failed to release output lock", "artifact_unlock_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+w.lock.Path()+" if no transcriptor process is running"),
				logging.String(logging.FieldImpact, "later runs may wait on a stale lock"),
			)
		}
	}()

	metadata, err := json.MarshalIndent(result.Metadata(), "", "  ")
	if err != nil {
		return Paths{}, fmt.Errorf("encode metadata: %w", err)
	}
	paths := Paths{
		Transcript: w.TranscriptPath(id),
		Metadata:   w.MetadataPath(id),
	}
	if err := fileutil.WriteAtomic(paths.Transcript, []byte(result.Transcript), 0o644); err != nil {
		return Paths{}, fmt.Errorf("write transcript: %w", err)
	}
	if err := fileutil.WriteAtomic(paths.Metadata, append(metadata, '\n'), 0o644); err != nil {
		return Paths{}, fmt.Errorf("write metadata: %w", err)
	}
	w.logger.Debug("artefacts written",
		logging.VideoID(id),
		logging.String("transcript_path", paths.Transcript),
		logging.String("metadata_path", paths.Metadata),
	)
	return paths, nil
}
