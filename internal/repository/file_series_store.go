package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	applogger "LimesMS/pkg/logger"
)

// FileSeriesStore reads series documents from the pipeline's output directory.
type FileSeriesStore struct {
	dir    string
	naming SeriesNaming
	l      *applogger.Logger
}

func NewFileSeriesStore(dir string, naming SeriesNaming, l *applogger.Logger) *FileSeriesStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &FileSeriesStore{dir: dir, naming: naming, l: l}
}

func (s *FileSeriesStore) Load(ctx context.Context, symbol string, kind domrepo.SeriesKind) (*models.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := s.naming.FileName(symbol, kind)
	if name == "" {
		return nil, fmt.Errorf("symbol %q: %w", symbol, domrepo.ErrSeriesNotFound)
	}
	path := filepath.Join(s.dir, name)

	start := time.Now()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, domrepo.ErrSeriesNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	out, err := DecodeSeries(b, symbol, kind)
	if err != nil {
		s.l.Error("series decode failed", applogger.String("file", name), applogger.Error(err))
		return nil, err
	}
	s.l.Debug("series loaded",
		applogger.String("file", name),
		applogger.Int("points", len(out.Points)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

var _ domrepo.SeriesStore = (*FileSeriesStore)(nil)
