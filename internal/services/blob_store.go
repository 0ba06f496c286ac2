package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
)

// BlobStore keeps uploaded file contents. Keys are owner/document pairs so
// one landlord can never address another's files.
type BlobStore interface {
	// Put stores at most limit bytes and fails with ErrFileTooLarge past it.
	Put(ctx context.Context, owner, id uuid.UUID, r io.Reader, limit int64) (int64, error)
	Open(ctx context.Context, owner, id uuid.UUID) (io.ReadCloser, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type LocalBlobStore struct {
	root string
}

func NewLocalBlobStore(root string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalBlobStore{root: root}, nil
}

func (b *LocalBlobStore) path(owner, id uuid.UUID) string {
	return filepath.Join(b.root, owner.String(), id.String())
}

func (b *LocalBlobStore) Put(ctx context.Context, owner, id uuid.UUID, r io.Reader, limit int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p := b.path(owner, id)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, limit+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	if n > limit {
		return 0, internal_utils.ErrFileTooLarge
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *LocalBlobStore) Open(ctx context.Context, owner, id uuid.UUID) (io.ReadCloser, error) {
	f, err := os.Open(b.path(owner, id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, internal_utils.ErrNotFound
	}
	return f, err
}

func (b *LocalBlobStore) Delete(ctx context.Context, owner, id uuid.UUID) error {
	err := os.Remove(b.path(owner, id))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
