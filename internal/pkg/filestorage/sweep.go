package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
)

// stagingMaxAge is how long a staged file may wait for promotion before the
// sweeper considers it abandoned by a failed request.
const stagingMaxAge = time.Hour

// ReferencedLister reports the set of file names live certificate records
// point at.
type ReferencedLister interface {
	ListFileRefs(ctx context.Context) ([]string, error)
}

// Sweeper periodically removes abandoned staged files and served files no
// record references. Best-effort maintenance: every failure is logged and
// skipped, nothing is retried.
type Sweeper struct {
	storage  *LocalStorage
	refs     ReferencedLister
	interval time.Duration
}

// NewSweeper creates a sweeper over storage using refs as the source of truth.
func NewSweeper(storage *LocalStorage, refs ReferencedLister, interval time.Duration) *Sweeper {
	return &Sweeper{storage: storage, refs: refs, interval: interval}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", s.interval).Msg("Orphan file sweeper started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Orphan file sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs one sweep pass.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	s.sweepStaging()
	s.sweepOrphans(ctx)
}

func (s *Sweeper) sweepStaging() {
	entries, err := os.ReadDir(s.storage.stagingPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Sweep: failed to read staging directory")
		return
	}

	cutoff := time.Now().Add(-stagingMaxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.storage.stagingPath, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Sweep: failed to remove stale staged file")
			continue
		}
		logger.Info().Str("file", entry.Name()).Msg("Sweep: removed stale staged file")
	}
}

func (s *Sweeper) sweepOrphans(ctx context.Context) {
	refs, err := s.refs.ListFileRefs(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Sweep: failed to list referenced files, skipping orphan pass")
		return
	}

	referenced := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		referenced[filepath.Base(r)] = struct{}{}
	}

	entries, err := os.ReadDir(s.storage.basePath)
	if err != nil {
		logger.Warn().Err(err).Msg("Sweep: failed to read storage directory")
		return
	}

	// Files promoted after the reference snapshot was taken would look
	// unreferenced here, so anything younger than the staging age is left
	// for a later pass.
	cutoff := time.Now().Add(-stagingMaxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := referenced[entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.storage.basePath, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Sweep: failed to remove orphan file")
			continue
		}
		logger.Info().Str("file", entry.Name()).Msg("Sweep: removed orphan file")
	}
}
