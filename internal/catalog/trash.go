package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"swipetriage/internal/providers"
	"swipetriage/internal/structures"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Resolver maps asset ids to files.
type Resolver interface {
	Resolve(id string) (string, error)
}

// TrashDeleter moves deleted assets into a per-call directory under the trash
// root named by a ULID, so trash directories sort by deletion time. A failed
// move puts every already moved file back.
type TrashDeleter struct {
	trashDir string
	resolver Resolver
	logger   providers.Logger

	mu      sync.Mutex
	entropy *rand.Rand
}

func NewTrashDeleter(conf *structures.Config, resolver Resolver, logger providers.Logger) *TrashDeleter {
	return &TrashDeleter{
		trashDir: conf.Library.TrashDir,
		resolver: resolver,
		logger:   logger,
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (d *TrashDeleter) newID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), d.entropy).String()
}

type move struct {
	from, to string
}

func (d *TrashDeleter) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	sources := make([]string, len(ids))
	for i, id := range ids {
		src, err := d.resolver.Resolve(id)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDeletionFailed, err)
		}
		sources[i] = src
	}

	batchDir := filepath.Join(d.trashDir, d.newID())
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		return fmt.Errorf("%w: create trash dir: %w", ErrDeletionFailed, err)
	}

	done := make([]move, 0, len(ids))
	for i, id := range ids {
		err := ctx.Err()
		dst := filepath.Join(batchDir, filepath.FromSlash(id))
		if err == nil {
			err = os.MkdirAll(filepath.Dir(dst), 0o755)
		}
		if err == nil {
			err = os.Rename(sources[i], dst)
		}
		if err != nil {
			d.rollback(done, batchDir)
			return fmt.Errorf("%w: %s: %w", ErrDeletionFailed, id, err)
		}
		done = append(done, move{from: sources[i], to: dst})
	}

	d.logger.Infof(providers.TypeLibrary, "Moved %d assets to %s", len(done), batchDir)
	return nil
}

func (d *TrashDeleter) rollback(done []move, batchDir string) {
	for i := len(done) - 1; i >= 0; i-- {
		if err := os.Rename(done[i].to, done[i].from); err != nil {
			d.logger.Errorf(providers.TypeLibrary, "Rollback of %s failed: %s", done[i].from, err)
		}
	}
	if err := os.RemoveAll(batchDir); err != nil {
		d.logger.Warnf(providers.TypeLibrary, "Cannot remove %s: %s", batchDir, err)
	}
}
