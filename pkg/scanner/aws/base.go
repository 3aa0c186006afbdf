// Package aws implements ServiceScanner for a representative slice of AWS
// services, grounded on nebula's pkg/links/aws (ARN/region handling) and
// the cloudsift scanner pattern (list-then-describe-then-map, per-call rate
// limiting) from the example pack.
package aws

import (
	awssdk "github.com/aws/aws-sdk-go-v2/aws"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/inventory/typemap"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// Base is embedded by every AWS scanner for ARN construction defaulted to
// the "aws" partition and the AWS neutral-type mapping.
type Base struct {
	scanner.Base
}

// BuildArn constructs an ARN for a resource owned by ctx's account/region.
func (Base) BuildArn(ctx *scanner.Context, service, resourceType, resource string) string {
	return inventory.BuildArn(inventory.ArnParams{
		Partition:    "aws",
		Service:      service,
		Region:       ctx.Region,
		AccountID:    ctx.AccountID,
		ResourceType: resourceType,
		Resource:     resource,
	})
}

// CreateResource delegates to scanner.CreateResource using the AWS neutral
// type map.
func (Base) CreateResource(p scanner.CreateResourceParams) inventory.Resource {
	return scanner.CreateResource(p, typemap.AWSNeutralType)
}

// TagsToRecord normalizes the AWS `[]Tag{Key,Value}` shape into the
// canonical map, regardless of which service package's Tag type is used
// (ec2types.Tag, s3types.Tag, iamtypes.Tag, ... all share the {Key, Value
// *string} shape but are distinct Go types). Entries without a key are
// dropped; absent values become "".
func TagsToRecord[T any](tags []T, keyOf, valueOf func(T) *string) map[string]string {
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		key := awssdk.ToString(keyOf(t))
		if key == "" {
			continue
		}
		out[key] = awssdk.ToString(valueOf(t))
	}
	return out
}
