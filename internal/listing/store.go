package listing

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/estudio/internal/model"
)

// Paging defaults applied to queries
const (
	DefaultLimit = 5
	MaxLimit     = 50
)

// Store reads the match listings document. The file is re-read on every
// call; a missing or corrupt file reads as empty listings.
type Store struct {
	path         string
	defaultLimit int
	maxLimit     int
	log          logrus.FieldLogger

	mu sync.Mutex
}

// NewStore creates a store over the JSON document at path
func NewStore(path string, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		path:         path,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
		log:          log.WithField("listing", path),
	}
}

// WithLimits overrides the default and maximum page sizes
func (s *Store) WithLimits(defaultLimit, maxLimit int) *Store {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// Load returns the current listings
func (s *Store) Load() model.Listings {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := model.Listings{Upcoming: []model.ListingEntry{}, Finished: []model.ListingEntry{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.WithError(err).Warn("read listings")
		}
		return empty
	}

	var doc model.Listings
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.WithError(err).Warn("decode listings")
		return empty
	}
	if doc.Upcoming == nil {
		doc.Upcoming = []model.ListingEntry{}
	}
	if doc.Finished == nil {
		doc.Finished = []model.ListingEntry{}
	}
	return doc
}

// Upcoming returns a page of upcoming matches, earliest first
func (s *Store) Upcoming(q Query) []model.ListingEntry {
	return Select(s.Load().Upcoming, s.clamp(q), false)
}

// Finished returns a page of finished matches, latest first
func (s *Store) Finished(q Query) []model.ListingEntry {
	return Select(s.Load().Finished, s.clamp(q), true)
}

// Options returns the filter options of both sections
func (s *Store) Options() Options {
	doc := s.Load()
	return BuildOptions(doc.Upcoming, doc.Finished)
}

// Find looks up a match by id in both sections
func (s *Store) Find(id string) (model.ListingEntry, bool) {
	doc := s.Load()
	for _, section := range [][]model.ListingEntry{doc.Upcoming, doc.Finished} {
		for _, e := range section {
			if string(e.ID) == id {
				return e, true
			}
		}
	}
	return model.ListingEntry{}, false
}

// clamp applies the default page size and caps it at the maximum
func (s *Store) clamp(q Query) Query {
	if q.Limit <= 0 {
		q.Limit = s.defaultLimit
	}
	if q.Limit > s.maxLimit {
		q.Limit = s.maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
