package preference_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	preference "github.com/creatorbridge/maestro/pkg/automation/core/preference"
)

func testCreators() []model.Creator {
	return []model.Creator{
		{ID: "cr_1", Name: "Alex"},
		{ID: "cr_2", Name: "Brook"},
		{ID: "cr_3", Name: "Casey"},
	}
}

func TestApply_SetsMatchingPreferenceAndDefaultsToNone(t *testing.T) {
	resolver := preference.NewResolver()
	prefs := []model.CreatorContactPreference{
		{CreatorID: "cr_1", ContactMethod: model.ContactMethodEmail},
		{CreatorID: "cr_2", ContactMethod: model.ContactMethodPhone},
	}

	out := resolver.Apply(testCreators(), prefs)
	assert.Equal(t, model.ContactMethodEmail, out[0].ContactPreference)
	assert.Equal(t, model.ContactMethodPhone, out[1].ContactPreference)
	assert.Equal(t, model.ContactMethodNone, out[2].ContactPreference)
}

func TestApply_IsIdempotent(t *testing.T) {
	resolver := preference.NewResolver()
	prefs := []model.CreatorContactPreference{
		{CreatorID: "cr_1", ContactMethod: model.ContactMethodEmail},
	}

	once := resolver.Apply(testCreators(), prefs)
	twice := resolver.Apply(once, prefs)
	assert.Equal(t, once, twice)
}

func TestApply_IgnoresUnknownCreators(t *testing.T) {
	resolver := preference.NewResolver()
	prefs := []model.CreatorContactPreference{
		{CreatorID: "cr_999", ContactMethod: model.ContactMethodPhone},
	}

	out := resolver.Apply(testCreators(), prefs)
	for _, c := range out {
		assert.Equal(t, model.ContactMethodNone, c.ContactPreference)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	resolver := preference.NewResolver()
	in := testCreators()
	in[0].ContactPreference = model.ContactMethodEmail

	_ = resolver.Apply(in, nil)
	assert.Equal(t, model.ContactMethodEmail, in[0].ContactPreference)
}

func TestApply_LatestPreferenceWins(t *testing.T) {
	resolver := preference.NewResolver()
	first := resolver.Apply(testCreators(), []model.CreatorContactPreference{
		{CreatorID: "cr_1", ContactMethod: model.ContactMethodEmail},
	})
	second := resolver.Apply(first, []model.CreatorContactPreference{
		{CreatorID: "cr_1", ContactMethod: model.ContactMethodPhone},
	})
	assert.Equal(t, model.ContactMethodPhone, second[0].ContactPreference)
}
