package branches

import (
	"context"
	"log/slog"
	"sort"
)

// Service resolves branch names for analytics grouping. Database rows take
// precedence over the configuration fallback map, so deployments without a
// seeded branches table still resolve names.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	fallback map[int64]string
}

func NewService(logger *slog.Logger, repo Repository, fallback map[int64]string) *Service {
	return &Service{logger: logger, repo: repo, fallback: fallback}
}

// List returns all known branches, directory order (id ascending).
func (s *Service) List(ctx context.Context) ([]Branch, error) {
	names, err := s.Names(ctx)
	if err != nil {
		return nil, err
	}
	branches := make([]Branch, 0, len(names))
	for id, name := range names {
		branches = append(branches, Branch{ID: id, Name: name})
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].ID < branches[j].ID })
	return branches, nil
}

// Names returns the merged id-to-name directory. A store failure degrades
// to the configuration fallback rather than failing the caller.
func (s *Service) Names(ctx context.Context) (map[int64]string, error) {
	merged := make(map[int64]string, len(s.fallback))
	for id, name := range s.fallback {
		merged[id] = name
	}

	if s.repo != nil {
		rows, err := s.repo.List(ctx)
		if err != nil {
			s.logger.Warn("branch directory query failed, using fallback", "error", err)
			return merged, nil
		}
		for _, b := range rows {
			merged[b.ID] = b.Name
		}
	}
	return merged, nil
}
