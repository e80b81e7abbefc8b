package services

import (
	"context"
	"log/slog"

	"github.com/AnshRaj112/nits-community-backend/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	MaxUploadFiles    = 8
	MaxUploadFileSize = 12 << 20 // 12 MiB
	uploadParallelism = 4
)

type UploadFile struct {
	Name string
	Data []byte
}

// UploadGateway forwards authenticated upload batches to the object store.
type UploadGateway struct {
	store ObjectStore
}

func NewUploadGateway(store ObjectStore) *UploadGateway {
	return &UploadGateway{store: store}
}

// CheckLimits validates a batch before any transfer begins.
func CheckLimits(count int, sizes func(i int) int64) error {
	if count > MaxUploadFiles {
		return ErrTooManyFiles
	}
	for i := 0; i < count; i++ {
		if sizes(i) > MaxUploadFileSize {
			return ErrFileTooLarge
		}
	}
	return nil
}

// Upload transfers the batch concurrently and returns refs in input order.
// A failed transfer does not roll back the others: on error the refs that did
// upload are still returned (failed slots are dropped) with an *UploadError.
func (g *UploadGateway) Upload(ctx context.Context, identity string, files []UploadFile) ([]models.Media, error) {
	if identity == "" {
		return nil, ErrUnauthorized
	}
	if g.store == nil {
		return nil, ErrNoObjectStore
	}
	if err := CheckLimits(len(files), func(i int) int64 { return int64(len(files[i].Data)) }); err != nil {
		return nil, err
	}

	results := make([]models.Media, len(files))
	done := make([]bool, len(files))

	// Plain errgroup (no derived context) so one failure does not cancel
	// transfers already in flight.
	var eg errgroup.Group
	eg.SetLimit(uploadParallelism)
	for i, f := range files {
		i, f := i, f
		eg.Go(func() error {
			ref, err := g.store.Upload(ctx, f.Name, f.Data)
			if err != nil {
				slog.Error("upload failed", "identity", identity, "filename", f.Name, "error", err)
				return &UploadError{Filename: f.Name, Err: err}
			}
			results[i] = ref
			done[i] = true
			return nil
		})
	}
	err := eg.Wait()

	uploaded := make([]models.Media, 0, len(files))
	for i := range results {
		if done[i] {
			uploaded = append(uploaded, results[i])
		}
	}

	if err != nil {
		return uploaded, err
	}
	slog.Info("uploaded files", "identity", identity, "count", len(uploaded))
	return uploaded, nil
}
