package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	taggingapi "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/inventory/typemap"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// TaggingScanner is the deliberately coarse cross-service Resource Groups
// Tagging API scanner. It is registered to run before the service-specific
// scanners within a region so the orchestrator's dedup/merge lets the
// richer scanner's view supersede this one, per spec.md §4.5 and §8
// scenario 3.
type TaggingScanner struct {
	Base
}

func NewTaggingScanner() *TaggingScanner { return &TaggingScanner{} }

func (s *TaggingScanner) ServiceName() string     { return "tagging" }
func (s *TaggingScanner) IsGlobal() bool          { return false }
func (s *TaggingScanner) ResourceTypes() []string { return []string{} }

func (s *TaggingScanner) Scan(ctx *scanner.Context) ([]inventory.Resource, []inventory.ScanError) {
	s.ClearErrors()

	client := taggingapi.NewFromConfig(ctx.Credentials.(aws.Config), func(o *taggingapi.Options) {
		o.Region = ctx.Region
	})

	var out []inventory.Resource
	paginator := taggingapi.NewGetResourcesPaginator(client, &taggingapi.GetResourcesInput{})
	for paginator.HasMorePages() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return paginator.NextPage(c)
		})
		if err != nil {
			s.RecordError(s.ServiceName(), ctx.Region, "GetResources", err.Error(), "")
			break
		}
		for _, tm := range result.(*taggingapi.GetResourcesOutput).ResourceTagMappingList {
			if tm.ResourceARN == nil {
				continue
			}
			resourceArn := aws.ToString(tm.ResourceARN)
			parsed, err := inventory.ParseArn(resourceArn)
			if err != nil {
				// Malformed ARN: silently dropped per spec.md §8 scenario 6,
				// no ScanError recorded.
				continue
			}

			nativeType := nativeTypeFromArn(parsed)
			tags := TagsToRecord(tm.Tags, func(t taggingtypes.Tag) *string { return t.Key }, func(t taggingtypes.Tag) *string { return t.Value })

			res := s.CreateResource(scanner.CreateResourceParams{
				ID:         resourceArn,
				ResourceID: resourceArn,
				NativeType: nativeType,
				Service:    s.ServiceName(),
				Region:     ctx.Region,
				Name:       scanner.GetNameFromTags(tags, parsed.ResourceID),
				Tags:       tags,
				Properties: map[string]any{
					"discoveredVia": "tagging-api",
				},
			})
			out = append(out, res)
		}
	}

	return out, s.Errors()
}

// nativeTypeFromArn looks up the ARN-prefix-to-native-type map with the
// `service:resourceType` key the Tagging API's thin ARN-only view requires.
func nativeTypeFromArn(a inventory.ARN) string {
	key := a.Service + ":" + a.ResourceType
	if native, ok := typemap.AWSArnPrefixToNativeType[key]; ok {
		return native
	}
	// S3 buckets carry no resource type segment at all.
	if native, ok := typemap.AWSArnPrefixToNativeType[a.Service+":"]; ok {
		return native
	}
	return key
}
