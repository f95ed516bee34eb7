package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	svccache "LimesMS/internal/service/cache"
	xhttp "LimesMS/pkg/http"
	applogger "LimesMS/pkg/logger"
)

// HTTPSeriesStore fetches series documents from a static host (the published
// data/ directory) and keeps the raw bytes in a BytesCache for ttl.
type HTTPSeriesStore struct {
	baseURL string
	naming  SeriesNaming
	client  *xhttp.Client
	cache   svccache.BytesCache
	ttl     time.Duration
	l       *applogger.Logger
}

func NewHTTPSeriesStore(baseURL string, naming SeriesNaming, client *xhttp.Client, cache svccache.BytesCache, ttl time.Duration, l *applogger.Logger) *HTTPSeriesStore {
	if l == nil {
		l = applogger.Nop()
	}
	if client == nil {
		client = xhttp.NewClient()
	}
	return &HTTPSeriesStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		naming:  naming,
		client:  client,
		cache:   cache,
		ttl:     ttl,
		l:       l,
	}
}

func (s *HTTPSeriesStore) Load(ctx context.Context, symbol string, kind domrepo.SeriesKind) (*models.Series, error) {
	name := s.naming.FileName(symbol, kind)
	if name == "" {
		return nil, fmt.Errorf("symbol %q: %w", symbol, domrepo.ErrSeriesNotFound)
	}

	if s.cache != nil {
		b, ok, err := s.cache.GetBytes(ctx, name)
		if err != nil {
			s.l.Warn("series cache read failed", applogger.String("file", name), applogger.Error(err))
		} else if ok {
			return DecodeSeries(b, symbol, kind)
		}
	}

	var body []byte
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     s.baseURL + "/" + name,
		Headers: map[string]string{"Cache-Control": "no-store", "Accept": "application/json"},
	}, &body)
	if xhttp.IsStatus(err, http.StatusNotFound) {
		return nil, fmt.Errorf("%s: %w", name, domrepo.ErrSeriesNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}

	out, err := DecodeSeries(body, symbol, kind)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetBytes(ctx, name, body, s.ttl); err != nil {
			s.l.Warn("series cache write failed", applogger.String("file", name), applogger.Error(err))
		}
	}
	return out, nil
}

var _ domrepo.SeriesStore = (*HTTPSeriesStore)(nil)
