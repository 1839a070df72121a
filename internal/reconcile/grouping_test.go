package reconcile

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func TestFindDuplicateGroups_KeepsActiveOverInactive(t *testing.T) {
	node := testNode(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// The inactive record is newer; active still wins.
	active := Candidate{ID: node.Generate(), Name: "Kampala International School", Active: true, CreatedAt: base}
	inactive := Candidate{ID: node.Generate(), Name: "Kampala Int'l School", Active: false, CreatedAt: base.Add(time.Hour)}

	groups := FindDuplicateGroups([]Candidate{inactive, active}, 0.7, 0.8, 50)
	require.Len(t, groups, 1)
	assert.Equal(t, active.ID, groups[0].Kept.ID)
	require.Len(t, groups[0].Duplicates, 1)
	assert.Equal(t, inactive.ID, groups[0].Duplicates[0].ID)
}

func TestFindDuplicateGroups_PrefersNewerWhenBothActive(t *testing.T) {
	node := testNode(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older := Candidate{ID: node.Generate(), Name: "Mbarara High School", Active: true, CreatedAt: base}
	newer := Candidate{ID: node.Generate(), Name: "Mbarara High School", Active: true, CreatedAt: base.Add(time.Hour)}

	groups := FindDuplicateGroups([]Candidate{older, newer}, 0.7, 0.8, 50)
	require.Len(t, groups, 1)
	assert.Equal(t, newer.ID, groups[0].Kept.ID)
}

func TestFindDuplicateGroups_UnrelatedRecordsUngrouped(t *testing.T) {
	node := testNode(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []Candidate{
		{ID: node.Generate(), Name: "Kampala International School", Active: true, CreatedAt: base},
		{ID: node.Generate(), Name: "Gulu Primary School", Active: true, CreatedAt: base},
	}

	groups := FindDuplicateGroups(records, 0.7, 0.8, 50)
	assert.Empty(t, groups)
}

func TestFindDuplicateGroups_EachRecordJoinsOneGroup(t *testing.T) {
	node := testNode(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := Candidate{ID: node.Generate(), Name: "Jinja College", Active: true, CreatedAt: base}
	b := Candidate{ID: node.Generate(), Name: "Jinja College", Active: true, CreatedAt: base.Add(time.Minute)}
	c := Candidate{ID: node.Generate(), Name: "Jinja College", Active: true, CreatedAt: base.Add(2 * time.Minute)}

	groups := FindDuplicateGroups([]Candidate{a, b, c}, 0.7, 0.8, 50)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Duplicates, 2)
}

func TestFindDuplicateGroups_MaxGroupSizeCapsMembers(t *testing.T) {
	node := testNode(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	records := make([]Candidate, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, Candidate{
			ID:        node.Generate(),
			Name:      "Lira Town Academy",
			Active:    true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	groups := FindDuplicateGroups(records, 0.7, 0.8, 3)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Duplicates, 2)
	assert.Len(t, groups[1].Duplicates, 1)
}
