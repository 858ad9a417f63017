package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/estudio/internal/model"
)

// ErrNotFound is returned when no dossier exists for a match
var ErrNotFound = errors.New("dossier not found")

// Source loads match dossiers by id
type Source interface {
	// Name identifies the source in reports and logs
	Name() string
	Load(ctx context.Context, matchID string) (*model.Dossier, error)
}

// DirSource reads <dir>/<id>.json
type DirSource struct {
	dir string
}

// NewDirSource creates a source over a directory of dossier files
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Name returns "dir:<dir>"
func (s *DirSource) Name() string { return "dir:" + s.dir }

// Load reads and decodes the dossier file of matchID
func (s *DirSource) Load(_ context.Context, matchID string) (*model.Dossier, error) {
	path := filepath.Join(s.dir, matchID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
		}
		return nil, fmt.Errorf("read dossier: %w", err)
	}
	return decodeDossier(data, matchID)
}

// HTTPSource fetches <base>/<id>.json through a Fetcher
type HTTPSource struct {
	base    string
	fetcher *Fetcher
}

// NewHTTPSource creates a source served from baseURL
func NewHTTPSource(baseURL string, fetcher *Fetcher) *HTTPSource {
	return &HTTPSource{base: strings.TrimRight(baseURL, "/"), fetcher: fetcher}
}

// Name returns the base URL
func (s *HTTPSource) Name() string { return s.base }

// Load fetches and decodes the dossier of matchID
func (s *HTTPSource) Load(ctx context.Context, matchID string) (*model.Dossier, error) {
	result, err := s.fetcher.FetchWithRetry(ctx, s.base+"/"+url.PathEscape(matchID)+".json")
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch dossier: %w", err)
	}
	return decodeDossier(result.Body, matchID)
}

func decodeDossier(data []byte, matchID string) (*model.Dossier, error) {
	var d model.Dossier
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dossier %s: %w", matchID, err)
	}
	if d.MatchID == "" {
		d.MatchID = matchID
	}
	return &d, nil
}

// NewSource picks HTTPSource when cfg.BaseURL is set and DirSource otherwise
func NewSource(cfg model.SourceConfig, fetcher *Fetcher) Source {
	if cfg.BaseURL != "" {
		return NewHTTPSource(cfg.BaseURL, fetcher)
	}
	return NewDirSource(cfg.Dir)
}
