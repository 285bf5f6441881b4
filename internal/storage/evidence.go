// Package storage stores uploaded evidence images and hands back the public
// reference URL that trade records carry.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported file type")

type BlobStore interface {
	Save(userID, uploadID, filename string, r io.Reader) (path string, url string, err error)
	Open(path string) (io.ReadCloser, error)
}

// DiskStore keeps evidence on the local filesystem under baseDir and serves
// it from publicBaseURL/uploads/.
type DiskStore struct {
	baseDir       string
	publicBaseURL string
}

func NewDiskStore(baseDir, publicBaseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *DiskStore) Save(userID, uploadID, filename string, r io.Reader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", "", ErrUnsupportedType
	}
	relative := filepath.Join(userID, uploadID+ext)
	full := filepath.Join(s.baseDir, relative)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", "", err
	}
	file, err := os.Create(full)
	if err != nil {
		return "", "", err
	}
	defer file.Close()
	if _, err := io.Copy(file, r); err != nil {
		_ = os.Remove(full)
		return "", "", err
	}
	url := fmt.Sprintf("%s/uploads/%s", s.publicBaseURL, filepath.ToSlash(relative))
	return relative, url, nil
}

func (s *DiskStore) Open(path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.baseDir, path))
}

func (s *DiskStore) Dir() string {
	return s.baseDir
}
