package search

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
)

// Service handles artist search for the add-to-list picker: server-side
// catalog search with fuzzy ranking, falling back to a local index of
// already-known artists when the backend is unreachable.
type Service struct {
	api    domain.ListAPI
	logger *slog.Logger

	indexMu sync.RWMutex
	index   []domain.Artist
	names   []string // Parallel to index; includes aliases via nameOwners
	owners  []int    // names[i] belongs to index[owners[i]]
}

// NewService creates a new artist search service
func NewService(api domain.ListAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:    api,
		logger: logger,
	}
}

// IndexArtists replaces the local index with the given artists.
func (s *Service) IndexArtists(artists []domain.Artist) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	s.index = artists
	s.names = s.names[:0]
	s.owners = s.owners[:0]
	for i, artist := range artists {
		s.names = append(s.names, artist.Name)
		s.owners = append(s.owners, i)
		for _, alias := range artist.Aliases {
			s.names = append(s.names, alias)
			s.owners = append(s.owners, i)
		}
	}
}

// Search queries the backend catalog, ranking the results fuzzily against
// the query. When the backend is unreachable it falls back to the local
// index so the picker still works offline.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Artist, error) {
	if query == "" {
		return nil, nil
	}

	s.logger.Debug("searching artists", "query", query)

	results, err := s.api.SearchArtists(ctx, query)
	if err != nil {
		s.logger.Warn("catalog search failed, falling back to local index", "error", err)
		return s.SearchLocal(query), nil
	}

	return rankArtists(results, query), nil
}

// SearchLocal matches the query against the local index only.
func (s *Service) SearchLocal(query string) []domain.Artist {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()

	ranks := fuzzy.RankFindNormalizedFold(query, s.names)
	sort.Sort(ranks)

	seen := make(map[int]bool)
	var matched []domain.Artist
	for _, rank := range ranks {
		owner := s.owners[rank.OriginalIndex]
		if seen[owner] {
			continue
		}
		seen[owner] = true
		matched = append(matched, s.index[owner])
	}
	return matched
}

// rankArtists orders server results by fuzzy distance to the query.
func rankArtists(artists []domain.Artist, query string) []domain.Artist {
	type scored struct {
		artist domain.Artist
		rank   int
	}

	items := make([]scored, 0, len(artists))
	for _, artist := range artists {
		rank := fuzzy.RankMatchNormalizedFold(query, artist.Name)
		if rank < 0 {
			// Keep non-matching server results, but after all matches
			rank = 1 << 20
		}
		items = append(items, scored{artist: artist, rank: rank})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].rank < items[j].rank
	})

	ranked := make([]domain.Artist, len(items))
	for i, item := range items {
		ranked[i] = item.artist
	}
	return ranked
}
