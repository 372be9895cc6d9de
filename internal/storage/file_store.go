package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"audioverse/internal/audio"
	"audioverse/internal/domain/podcast"

	"github.com/sirupsen/logrus"
)

// FileStore writes downloads into Dir (default ".")
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{Dir: dir}
}

// SaveScript writes {dir}/{title-in-dashes}-script.md and returns the path
func (fs *FileStore) SaveScript(s podcast.Script) (string, error) {
	if err := os.MkdirAll(fs.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", fs.Dir, err)
	}

	path := filepath.Join(fs.Dir, s.ScriptFileName()+".md")
	if err := os.WriteFile(path, []byte(s.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write script %s: %w", path, err)
	}

	logrus.WithField("file", path).Info("Saved script")
	return path, nil
}

// SaveAudio writes {dir}/{title}.{format} and returns the path
func (fs *FileStore) SaveAudio(res *audio.Resource) (string, error) {
	if res == nil {
		return "", audio.ErrReleased
	}
	if err := os.MkdirAll(fs.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", fs.Dir, err)
	}

	ext := res.Format
	if ext == "" {
		ext = audio.FormatMP3
	}
	path := filepath.Join(fs.Dir, fmt.Sprintf("%s.%s", podcast.FileName(res.Title), ext))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	n, err := res.WriteTo(file)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write audio %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"file":  path,
		"bytes": n,
	}).Info("Saved audio")
	return path, nil
}
