package services

import "github.com/repostore-labs/repostore-cli/internal/core/domain"

// MergePages appends a freshly fetched page onto an existing ordered
// sequence. It is a pure transformer: no network or storage access.
//
// Rules:
//   - The relative order of existing entries never changes; new entries
//     are appended at the tail in upstream rank order.
//   - Entries are de-duplicated by id; the first occurrence kept wins.
//   - Re-applying a page that was already merged is a no-op, detected by
//     the incoming page's next-cursor equalling the current cursor.
func MergePages(
	existing []domain.RepositoryEntry, currentCursor string,
	incoming []domain.RepositoryEntry, incomingCursor string,
) ([]domain.RepositoryEntry, string) {
	if incomingCursor != "" && incomingCursor == currentCursor {
		return existing, currentCursor
	}

	seen := make(map[int64]struct{}, len(existing)+len(incoming))
	merged := make([]domain.RepositoryEntry, 0, len(existing)+len(incoming))
	for _, e := range existing {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		merged = append(merged, e)
	}
	for _, e := range incoming {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		merged = append(merged, e)
	}

	return merged, incomingCursor
}
