package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DocumentArchive keeps the last uploaded PDF per document.
type DocumentArchive interface {
	Save(documentID string, data []byte) (string, error)
	Path(documentID string) string
	Delete(documentID string) error
	EnsureUploadDir() error
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type fileArchive struct {
	uploadPath string
}

func NewDocumentArchive(uploadPath string) DocumentArchive {
	return &fileArchive{uploadPath: uploadPath}
}

func (s *fileArchive) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// Path maps a document ID to a file under the upload directory. Path
// separators and other unsafe runes are replaced, and a short hash of the
// raw ID keeps IDs that sanitize alike apart.
func (s *fileArchive) Path(documentID string) string {
	name := strings.TrimSuffix(documentID, filepath.Ext(documentID))
	name = unsafeFilename.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "document"
	}
	return filepath.Join(s.uploadPath, name+"-"+PointID(documentID)[:8]+".pdf")
}

// Save replaces any previous file for documentID. The file is written to a
// temp name first and renamed into place.
func (s *fileArchive) Save(documentID string, data []byte) (string, error) {
	if err := s.EnsureUploadDir(); err != nil {
		return "", err
	}

	filePath := s.Path(documentID)
	tmp, err := os.CreateTemp(s.uploadPath, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filePath, nil
}

func (s *fileArchive) Delete(documentID string) error {
	if err := os.Remove(s.Path(documentID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
