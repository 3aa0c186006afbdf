package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// S3Scanner enumerates S3 buckets. The bucket list call is global; each
// bucket's region/versioning/tags describe calls are per-item and a failure
// there never drops the bucket (it is still returned, just with a thinner
// properties map or no tags). Location and versioning failures are recorded
// as ScanErrors; a tagging failure is ignored.
type S3Scanner struct {
	Base
}

func NewS3Scanner() *S3Scanner { return &S3Scanner{} }

func (s *S3Scanner) ServiceName() string     { return "s3" }
func (s *S3Scanner) IsGlobal() bool          { return true }
func (s *S3Scanner) ResourceTypes() []string { return []string{"aws_s3_bucket"} }

func (s *S3Scanner) Scan(ctx *scanner.Context) ([]inventory.Resource, []inventory.ScanError) {
	s.ClearErrors()

	client := s3.NewFromConfig(ctx.Credentials.(aws.Config))

	listResult, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
		return client.ListBuckets(c, &s3.ListBucketsInput{})
	})
	if err != nil {
		s.RecordError(s.ServiceName(), ctx.Region, "ListBuckets", err.Error(), "")
		return nil, s.Errors()
	}

	var out []inventory.Resource
	for _, bucket := range listResult.(*s3.ListBucketsOutput).Buckets {
		if bucket.Name == nil {
			continue
		}
		name := aws.ToString(bucket.Name)
		arn := s.BuildArn(ctx, "s3", "", name)

		props := map[string]any{}

		if locResult, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return client.GetBucketLocation(c, &s3.GetBucketLocationInput{Bucket: bucket.Name})
		}); err != nil {
			s.RecordError(s.ServiceName(), ctx.Region, "GetBucketLocation", err.Error(), "")
		} else {
			props["locationConstraint"] = string(locResult.(*s3.GetBucketLocationOutput).LocationConstraint)
		}

		if verResult, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return client.GetBucketVersioning(c, &s3.GetBucketVersioningInput{Bucket: bucket.Name})
		}); err != nil {
			s.RecordError(s.ServiceName(), ctx.Region, "GetBucketVersioning", err.Error(), "")
		} else {
			props["versioning"] = map[string]any{"status": string(verResult.(*s3.GetBucketVersioningOutput).Status)}
		}

		tags := map[string]string{}
		if tagResult, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return client.GetBucketTagging(c, &s3.GetBucketTaggingInput{Bucket: bucket.Name})
		}); err == nil {
			tags = TagsToRecord(tagResult.(*s3.GetBucketTaggingOutput).TagSet,
				func(t s3types.Tag) *string { return t.Key },
				func(t s3types.Tag) *string { return t.Value })
		}

		res := s.CreateResource(scanner.CreateResourceParams{
			ID:         arn,
			ResourceID: arn,
			NativeType: "AWS::S3::Bucket",
			Service:    s.ServiceName(),
			Region:     inventory.GlobalRegion,
			Name:       scanner.GetNameFromTags(tags, name),
			Tags:       tags,
			Properties: props,
		})
		if bucket.CreationDate != nil {
			res.CreatedAt = bucket.CreationDate
		}
		out = append(out, res)
	}

	return out, s.Errors()
}
