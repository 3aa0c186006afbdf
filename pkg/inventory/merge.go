package inventory

// Dedup merges resources by ResourceID, preserving first-seen order of keys
// but letting later entries win on collision. This is the only place merge
// semantics live; the orchestrator calls it once after all scanners for a
// session have finished, so that the service-specific scanners (which run
// after coarse cross-service scanners such as the AWS tagging API scanner)
// supersede the thin view with their richer one.
func Dedup(resources []Resource) []Resource {
	order := make([]string, 0, len(resources))
	byKey := make(map[string]Resource, len(resources))

	for _, incoming := range resources {
		existing, ok := byKey[incoming.ResourceID]
		if !ok {
			order = append(order, incoming.ResourceID)
			byKey[incoming.ResourceID] = incoming
			continue
		}
		byKey[incoming.ResourceID] = mergeResource(existing, incoming)
	}

	out := make([]Resource, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

// mergeResource merges incoming into existing: incoming wins on scalar
// fields, tags and properties are unioned with incoming winning on key
// collision, and relationships are unioned de-duplicated on (type, target).
func mergeResource(existing, incoming Resource) Resource {
	merged := incoming

	merged.Tags = mergeStringMaps(existing.Tags, incoming.Tags)
	merged.Properties = mergeAnyMaps(existing.Properties, incoming.Properties)

	merged.Relationships = nil
	seen := make(map[relKey]struct{})
	for _, rel := range append(append([]Relationship{}, existing.Relationships...), incoming.Relationships...) {
		k := relKey{rel.Type, rel.TargetResourceID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		merged.Relationships = append(merged.Relationships, rel)
	}

	if merged.Name == "" {
		merged.Name = existing.Name
	}
	if merged.CreatedAt == nil {
		merged.CreatedAt = existing.CreatedAt
	}

	return merged
}

type relKey struct {
	t      RelationshipType
	target string
}

func mergeStringMaps(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func mergeAnyMaps(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
