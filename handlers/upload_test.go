package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"testing"
)

type failingSeeker struct {
	io.Reader
}

func (failingSeeker) Seek(offset int64, whence int) (int64, error) {
	return 0, errors.New("seek failed")
}

func TestHashUpload(t *testing.T) {
	content := []byte("policy copy bytes")
	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])

	file := bytes.NewReader(content)
	got, err := hashUpload(file)
	if err != nil {
		t.Fatalf("hashUpload: %v", err)
	}
	if got != want {
		t.Errorf("hash = %s, want %s", got, want)
	}

	// The file must be rewound so the stored object is complete.
	rest, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("read after hash: %v", err)
	}
	if !bytes.Equal(rest, content) {
		t.Errorf("file not rewound, %d of %d bytes left", len(rest), len(content))
	}
}

func TestHashUploadRewindFailure(t *testing.T) {
	file := failingSeeker{bytes.NewReader([]byte("content"))}
	if _, err := hashUpload(file); err == nil {
		t.Fatal("a failed rewind must abort the upload, not store a truncated file")
	}
}
