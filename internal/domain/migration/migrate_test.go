package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

func boolPtr(b bool) *bool { return &b }

func legacyDocument() Document {
	return Document{
		Apps: []DocumentApp{
			{Name: "Firefox", HotCode: types.StringPtr("KeyF"), IsInstalled: true},
			{Name: "Safari", IsInstalled: false, UserRemoved: boolPtr(true)},
			{Name: "Brave", IsInstalled: true},
		},
		SupportMessage: 1700000000000,
		IsSetup:        true,
		Height:         320,
	}
}

func TestUpgradeDefaultsMissingUserRemoved(t *testing.T) {
	doc := legacyDocument()
	assert.False(t, doc.IsCurrent())

	upgraded := Upgrade(doc)

	require.Len(t, upgraded.Apps, 3)
	assert.True(t, upgraded.IsCurrent())
	assert.Equal(t, false, *upgraded.Apps[0].UserRemoved)
	assert.Equal(t, true, *upgraded.Apps[1].UserRemoved)
	assert.Equal(t, false, *upgraded.Apps[2].UserRemoved)

	// Input left alone
	assert.Nil(t, doc.Apps[0].UserRemoved)
}

func TestUpgradePreservesOrderAndFields(t *testing.T) {
	doc := legacyDocument()
	upgraded := Upgrade(doc)

	for i := range doc.Apps {
		assert.Equal(t, doc.Apps[i].Name, upgraded.Apps[i].Name)
		assert.Equal(t, doc.Apps[i].HotCode, upgraded.Apps[i].HotCode)
		assert.Equal(t, doc.Apps[i].IsInstalled, upgraded.Apps[i].IsInstalled)
	}
	assert.Equal(t, doc.SupportMessage, upgraded.SupportMessage)
	assert.Equal(t, doc.IsSetup, upgraded.IsSetup)
	assert.Equal(t, doc.Height, upgraded.Height)
}

func TestUpgradeIsIdempotent(t *testing.T) {
	once := Upgrade(legacyDocument())
	twice := Upgrade(once)

	assert.Equal(t, once, twice)
}

func TestUpgradeEmptyDocument(t *testing.T) {
	assert.Equal(t, Document{}, Upgrade(Document{}))

	doc := Document{Apps: []DocumentApp{}, Height: 200}
	assert.Equal(t, doc, Upgrade(doc))
}

func TestNormalize(t *testing.T) {
	snap := Normalize(legacyDocument())

	require.Len(t, snap.Apps, 3)
	assert.Equal(t, types.AppEntry{Name: "Firefox", HotCode: types.StringPtr("KeyF"), IsInstalled: true}, snap.Apps[0])
	assert.Equal(t, types.AppEntry{Name: "Safari", UserRemoved: true}, snap.Apps[1])
	assert.Equal(t, types.AppEntry{Name: "Brave", IsInstalled: true}, snap.Apps[2])
	assert.Equal(t, int64(1700000000000), snap.SupportMessage)
	assert.True(t, snap.IsSetup)
	assert.Equal(t, 320, snap.Height)
}

func TestNormalizeNilAppsGivesEmptyList(t *testing.T) {
	snap := Normalize(Document{Height: 200})
	assert.NotNil(t, snap.Apps)
	assert.Empty(t, snap.Apps)
}

func TestFromSnapshotRoundTrip(t *testing.T) {
	snap := Normalize(legacyDocument())
	doc := FromSnapshot(snap)

	assert.True(t, doc.IsCurrent())
	assert.Equal(t, snap, Normalize(doc))
}
