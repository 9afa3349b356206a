// Package proofstore persists proof-of-payment images and hands back the
// public URL the ledger stores. The ledger itself only ever sees the URL.
package proofstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store writes uploaded proof images to a local directory served under
// /uploads/.
type Store struct {
	dir     string
	baseURL string
	log     *logrus.Logger
}

// NewStore creates the upload directory if needed
func NewStore(dir, baseURL string, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), log: log}, nil
}

// Dir returns the directory uploads are written to
func (s *Store) Dir() string {
	return s.dir
}

// Save stores the image under a fresh name and returns its public URL
func (s *Store) Save(file io.Reader, originalName string) (string, error) {
	name := uuid.NewString() + imageExt(originalName)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create proof file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write proof file: %w", err)
	}

	url := s.baseURL + "/uploads/" + name
	s.log.Infof("Proof image stored: %s", url)
	return url, nil
}

func imageExt(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ".bin"
	}
}
