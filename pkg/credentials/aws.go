package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/cloudpilot-ai/discoverctl/internal/logs"
)

// AWSProvider resolves AWS credentials via the default credential chain,
// grounded on nebula's internal/helpers.GetAWSCfg/GetAccountId (adaptive
// retry mode, shared-profile support), generalized into the opaque Provider
// interface.
type AWSProvider struct {
	Profile string
	Region  string
}

// NewAWSProvider constructs an AWSProvider for the given shared-config
// profile (may be empty for the default profile) and a region used only to
// resolve credentials/identity, not to scope discovery.
func NewAWSProvider(profile, region string) *AWSProvider {
	if region == "" {
		region = "us-east-1"
	}
	return &AWSProvider{Profile: profile, Region: region}
}

func (p *AWSProvider) loadConfig(ctx context.Context) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(p.Region),
		awsconfig.WithRetryMode(aws.RetryModeAdaptive),
		awsconfig.WithClientLogMode(aws.LogRetries | aws.LogRequestWithBody),
		awsconfig.WithLogger(logs.SDKLogger()),
	}
	if p.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(p.Profile))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// GetCredential returns the loaded aws.Config as the opaque credential.
func (p *AWSProvider) GetCredential(ctx context.Context) (any, error) {
	cfg, err := p.loadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("credentials: load AWS config: %w", err)
	}
	return cfg, nil
}

// GetDefaultAccountID resolves the caller's AWS account id via STS.
func (p *AWSProvider) GetDefaultAccountID(ctx context.Context) (string, error) {
	cfg, err := p.loadConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("credentials: load AWS config: %w", err)
	}
	client := sts.NewFromConfig(cfg)
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("credentials: get caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}

// GetDefaultSubscriptionID is a no-op for AWS.
func (p *AWSProvider) GetDefaultSubscriptionID(ctx context.Context) (string, error) {
	return "", nil
}

// ValidateCredentials round-trips through STS GetCallerIdentity.
func (p *AWSProvider) ValidateCredentials(ctx context.Context) Validation {
	cfg, err := p.loadConfig(ctx)
	if err != nil {
		return Validation{Err: fmt.Errorf("credentials: invalid AWS credentials: %w", err)}
	}
	client := sts.NewFromConfig(cfg)
	if _, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err != nil {
		return Validation{Err: fmt.Errorf("credentials: invalid AWS credentials: %w", err)}
	}
	return Validation{Valid: true, Credential: cfg}
}

// ListRegions enumerates AWS regions via EC2 DescribeRegions, grounded on
// nebula's internal/helpers.getEnabledRegionsFromEC2.
func (p *AWSProvider) ListRegions(ctx context.Context) ([]string, error) {
	cfg, err := p.loadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("credentials: load AWS config: %w", err)
	}
	client := ec2.NewFromConfig(cfg)
	out, err := client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, fmt.Errorf("credentials: describe regions: %w", err)
	}
	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if r.RegionName != nil {
			regions = append(regions, *r.RegionName)
		}
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("credentials: no regions returned by EC2 DescribeRegions")
	}
	return regions, nil
}
