// Package source loads the static catalog from a file or an http(s) URL.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aryannaik/sustainify/internal/catalog"
)

const defaultTimeout = 30 * time.Second

type Loader struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewLoader(timeout time.Duration, logger *zap.Logger) *Loader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Load reads the catalog at location. Entries that fail validation are
// skipped; images that are not absolute URLs are dropped.
func (l *Loader) Load(ctx context.Context, location string) ([]catalog.Product, error) {
	if location == "" {
		return nil, fmt.Errorf("no catalog location configured")
	}

	rc, err := l.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var raw []catalog.Product
	if err := json.NewDecoder(rc).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", location, err)
	}

	items := make([]catalog.Product, 0, len(raw))
	for i, p := range raw {
		if err := catalog.Validate(p); err != nil {
			l.logger.Warn("Skipping catalog entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		if p.Image != "" && !catalog.ValidImage(p.Image) {
			p.Image = ""
		}
		p.Kind = catalog.KindCatalog
		items = append(items, p.Normalize())
	}

	l.logger.Info("Catalog loaded", zap.String("location", location), zap.Int("items", len(items)))
	return items, nil
}

func (l *Loader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !isURL(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch catalog: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
