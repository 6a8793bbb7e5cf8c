// handlers/file_gcs.go
package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
)

// storeFileGCS writes an uploaded file to the configured Cloud Storage
// bucket and returns the object path and its public URL.
func storeFileGCS(ctx context.Context, file multipart.File, header *multipart.FileHeader) (path, url string, err error) {
	bucket := os.Getenv("GCS_BUCKET")
	if bucket == "" {
		return "", "", fmt.Errorf("GCS_BUCKET not configured")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("storage client: %w", err)
	}
	defer client.Close()

	object := fmt.Sprintf("claims/%s-%s", time.Now().Format("20060102-150405"), filepath.Base(header.Filename))

	ctx, cancel := context.WithTimeout(ctx, 50*time.Second)
	defer cancel()

	wc := client.Bucket(bucket).Object(object).NewWriter(ctx)
	wc.ContentType = header.Header.Get("Content-Type")
	if _, err := io.Copy(wc, file); err != nil {
		return "", "", fmt.Errorf("write object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", "", fmt.Errorf("finalize object: %w", err)
	}

	return object, fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object), nil
}

// useGCS reports whether uploads should go to Cloud Storage. Cloud Run
// sets K_SERVICE; local dev falls back to disk.
func useGCS() bool {
	return os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != ""
}
