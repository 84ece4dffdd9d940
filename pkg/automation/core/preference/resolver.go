// Package preference merges operator-supplied contact preferences into the
// in-session creator projection.
package preference

import (
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// Resolver folds CreatorContactPreference entries into Creator projections.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Apply sets each creator's contactPreference to the matching preference's
// contactMethod, or NONE when absent. The operation is idempotent; applying
// the same preferences twice yields an identical projection. Preferences for
// creators not present in the projection are ignored, since the operator UI
// may offer a superset of the session's creator set.
func (r *Resolver) Apply(creators []model.Creator, prefs []model.CreatorContactPreference) []model.Creator {
	byCreator := make(map[string]model.ContactMethod, len(prefs))
	for _, p := range prefs {
		byCreator[p.CreatorID] = p.ContactMethod
	}

	out := make([]model.Creator, len(creators))
	copy(out, creators)

	known := make(map[string]struct{}, len(out))
	for i := range out {
		known[out[i].ID] = struct{}{}
		if method, ok := byCreator[out[i].ID]; ok {
			out[i].ContactPreference = method
		} else {
			out[i].ContactPreference = model.ContactMethodNone
		}
	}

	for creatorID := range byCreator {
		if _, ok := known[creatorID]; !ok {
			logger.Debugf("Ignoring contact preference for creator '%s' not present in the session projection.", creatorID)
		}
	}

	return out
}
