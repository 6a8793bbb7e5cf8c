// handlers/file_local.go
package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

const uploadDir = "./uploads" // Local directory for file storage

// storeFileLocal writes an uploaded file under ./uploads and returns the
// storage path and the URL it is served from.
func storeFileLocal(file multipart.File, header *multipart.FileHeader) (path, url string, err error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", "", fmt.Errorf("create upload directory: %w", err)
	}

	// Timestamp prefix avoids collisions between same-named files.
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("%s-%s", timestamp, filepath.Base(header.Filename))
	dstPath := filepath.Join(uploadDir, filename)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", "", fmt.Errorf("save file: %w", err)
	}
	return dstPath, "/uploads/" + filename, nil
}
