package aws

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

type taggedThing struct {
	key, value *string
}

func strPtr(s string) *string { return &s }

func TestTagsToRecord(t *testing.T) {
	things := []taggedThing{
		{strPtr("env"), strPtr("prod")},
		{strPtr("owner"), strPtr("team-a")},
		{nil, strPtr("dropped")},
		{strPtr("no-value"), nil},
	}

	got := TagsToRecord(things, func(t taggedThing) *string { return t.key }, func(t taggedThing) *string { return t.value })

	assert.Equal(t, map[string]string{
		"env":      "prod",
		"owner":    "team-a",
		"no-value": "",
	}, got)
}

// TestTagsToRecordIsOrderInsensitive checks the round-trip law spec.md §8
// requires: the output map is equal regardless of input slice order.
func TestTagsToRecordIsOrderInsensitive(t *testing.T) {
	forward := []taggedThing{{strPtr("a"), strPtr("1")}, {strPtr("b"), strPtr("2")}}
	reversed := []taggedThing{{strPtr("b"), strPtr("2")}, {strPtr("a"), strPtr("1")}}

	keyOf := func(t taggedThing) *string { return t.key }
	valOf := func(t taggedThing) *string { return t.value }

	assert.Equal(t, TagsToRecord(forward, keyOf, valOf), TagsToRecord(reversed, keyOf, valOf))
}

func TestBaseBuildArn(t *testing.T) {
	var b Base
	ctx := &scanner.Context{Region: "us-east-1", AccountID: "111122223333"}

	got := b.BuildArn(ctx, "ec2", "instance", "i-0abc123")
	assert.Equal(t, "arn:aws:ec2:us-east-1:111122223333:instance/i-0abc123", got)
}

func TestBaseCreateResourceUsesAWSNeutralType(t *testing.T) {
	var b Base
	r := b.CreateResource(scanner.CreateResourceParams{
		NativeType: "AWS::EC2::Instance",
		Service:    "ec2",
	})
	assert.Equal(t, "aws_instance", r.Type)
}
