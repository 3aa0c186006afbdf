package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupPreservesFirstSeenOrder(t *testing.T) {
	resources := []Resource{
		{ResourceID: "b", Service: "ec2"},
		{ResourceID: "a", Service: "ec2"},
		{ResourceID: "b", Service: "ec2", Name: "second-b"},
	}

	got := Dedup(resources)

	assert.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ResourceID)
	assert.Equal(t, "a", got[1].ResourceID)
	assert.Equal(t, "second-b", got[0].Name)
}

func TestDedupLaterWinsOnScalars(t *testing.T) {
	resources := []Resource{
		{ResourceID: "a", Status: "pending", Region: "us-east-1"},
		{ResourceID: "a", Status: "running", Region: "us-east-1"},
	}

	got := Dedup(resources)

	assert.Len(t, got, 1)
	assert.Equal(t, "running", got[0].Status)
}

func TestDedupUnionsTagsAndProperties(t *testing.T) {
	resources := []Resource{
		{
			ResourceID: "a",
			Tags:       map[string]string{"env": "prod", "owner": "team-a"},
			Properties: map[string]any{"size": "small"},
		},
		{
			ResourceID: "a",
			Tags:       map[string]string{"owner": "team-b", "tier": "web"},
			Properties: map[string]any{"state": "running"},
		},
	}

	got := Dedup(resources)

	assert.Len(t, got, 1)
	assert.Equal(t, map[string]string{"env": "prod", "owner": "team-b", "tier": "web"}, got[0].Tags)
	assert.Equal(t, map[string]any{"size": "small", "state": "running"}, got[0].Properties)
}

func TestDedupUnionsRelationshipsDeduped(t *testing.T) {
	resources := []Resource{
		{
			ResourceID: "a",
			Relationships: []Relationship{
				{Type: RelationContains, TargetResourceID: "b"},
				{Type: RelationDependsOn, TargetResourceID: "c"},
			},
		},
		{
			ResourceID: "a",
			Relationships: []Relationship{
				{Type: RelationContains, TargetResourceID: "b"},
				{Type: RelationReferences, TargetResourceID: "d"},
			},
		},
	}

	got := Dedup(resources)

	assert.Len(t, got, 1)
	assert.ElementsMatch(t, []Relationship{
		{Type: RelationContains, TargetResourceID: "b"},
		{Type: RelationDependsOn, TargetResourceID: "c"},
		{Type: RelationReferences, TargetResourceID: "d"},
	}, got[0].Relationships)
}

func TestDedupKeepsNameAndCreatedAtWhenIncomingBlank(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	first := Resource{ResourceID: "a", Name: "original-name", CreatedAt: &created}
	second := Resource{ResourceID: "a"}

	got := Dedup([]Resource{first, second})

	assert.Len(t, got, 1)
	assert.Equal(t, "original-name", got[0].Name)
	assert.Equal(t, &created, got[0].CreatedAt)
}

// TestDedupIsIdempotent checks that re-running Dedup on its own output is a
// no-op, the idempotent re-run property spec.md §8 requires.
func TestDedupIsIdempotent(t *testing.T) {
	resources := []Resource{
		{ResourceID: "a", Tags: map[string]string{"k": "v"}},
		{ResourceID: "b", Tags: map[string]string{"k": "v2"}},
		{ResourceID: "a", Status: "running"},
	}

	once := Dedup(resources)
	twice := Dedup(once)

	assert.Equal(t, once, twice)
}
