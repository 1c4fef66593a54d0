// Package remote reconciles the local engagement store with the upstream
// ERP backend that holds the authoritative copy. It provides the HTTP
// client for the upstream API, the id-keyed merge of a remote snapshot
// into the local list, and the per-resource in-flight guard that keeps
// overlapping fetches from racing.
package remote

import (
	"github.com/washandgo/engagement-api/internal/domain"
)

// Merge combines a remote snapshot with the local engagement list. The
// remote copy wins for every id it knows; local records whose id the
// remote has never seen (created locally, not yet round-tripped) are
// appended in their local order. Merging the same snapshot again over a
// merged result changes nothing, so the operation is safe to repeat.
func Merge(remoteList, localList []domain.Engagement) []domain.Engagement {
	known := make(map[string]struct{}, len(remoteList))
	for i := range remoteList {
		known[remoteList[i].ID] = struct{}{}
	}

	merged := make([]domain.Engagement, 0, len(remoteList)+len(localList))
	merged = append(merged, remoteList...)
	for i := range localList {
		if _, ok := known[localList[i].ID]; ok {
			continue
		}
		merged = append(merged, localList[i])
	}
	return merged
}
