package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// IAMScanner enumerates IAM roles and users. IAM is a global service: the
// orchestrator invokes it only once, in the primary region. Role/user inline
// policy documents are never embedded in Properties, only counts — spec.md
// §4.2's redaction rule for sensitive DTO fields.
type IAMScanner struct {
	Base
}

func NewIAMScanner() *IAMScanner { return &IAMScanner{} }

func (s *IAMScanner) ServiceName() string     { return "iam" }
func (s *IAMScanner) IsGlobal() bool          { return true }
func (s *IAMScanner) ResourceTypes() []string { return []string{"aws_iam_role", "aws_iam_user"} }

func (s *IAMScanner) Scan(ctx *scanner.Context) ([]inventory.Resource, []inventory.ScanError) {
	s.ClearErrors()

	client := iam.NewFromConfig(ctx.Credentials.(aws.Config))

	var out []inventory.Resource
	out = append(out, s.scanRoles(ctx, client)...)
	out = append(out, s.scanUsers(ctx, client)...)
	return out, s.Errors()
}

func (s *IAMScanner) scanRoles(ctx *scanner.Context, client *iam.Client) []inventory.Resource {
	var out []inventory.Resource
	paginator := iam.NewListRolesPaginator(client, &iam.ListRolesInput{})
	for paginator.HasMorePages() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return paginator.NextPage(c)
		})
		if err != nil {
			s.RecordError(s.ServiceName(), inventory.GlobalRegion, "ListRoles", err.Error(), "")
			break
		}
		for _, role := range result.(*iam.ListRolesOutput).Roles {
			if role.Arn == nil {
				continue
			}
			arn := aws.ToString(role.Arn)
			tags := TagsToRecord(role.Tags, func(t iamtypes.Tag) *string { return t.Key }, func(t iamtypes.Tag) *string { return t.Value })

			attached, attErr := s.countAttachedPolicies(ctx, client, aws.ToString(role.RoleName))
			if attErr != nil {
				s.RecordError(s.ServiceName(), inventory.GlobalRegion, "ListAttachedRolePolicies", attErr.Error(), "")
			}

			res := s.CreateResource(scanner.CreateResourceParams{
				ID:         arn,
				ResourceID: arn,
				NativeType: "AWS::IAM::Role",
				Service:    s.ServiceName(),
				Region:     inventory.GlobalRegion,
				Name:       scanner.GetNameFromTags(tags, aws.ToString(role.RoleName)),
				Tags:       tags,
				Properties: map[string]any{
					"path":                  aws.ToString(role.Path),
					"attachedPolicyCount":   attached,
					"assumeRolePolicyDoc":   scanner.Redact(aws.ToString(role.AssumeRolePolicyDocument)),
					"permissionsBoundarySet": role.PermissionsBoundary != nil,
				},
			})
			if role.CreateDate != nil {
				res.CreatedAt = role.CreateDate
			}
			out = append(out, res)
		}
	}
	return out
}

func (s *IAMScanner) countAttachedPolicies(ctx *scanner.Context, client *iam.Client, roleName string) (int, error) {
	result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
		return client.ListAttachedRolePolicies(c, &iam.ListAttachedRolePoliciesInput{RoleName: aws.String(roleName)})
	})
	if err != nil {
		return 0, err
	}
	return len(result.(*iam.ListAttachedRolePoliciesOutput).AttachedPolicies), nil
}

func (s *IAMScanner) scanUsers(ctx *scanner.Context, client *iam.Client) []inventory.Resource {
	var out []inventory.Resource
	paginator := iam.NewListUsersPaginator(client, &iam.ListUsersInput{})
	for paginator.HasMorePages() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return paginator.NextPage(c)
		})
		if err != nil {
			s.RecordError(s.ServiceName(), inventory.GlobalRegion, "ListUsers", err.Error(), "")
			break
		}
		for _, user := range result.(*iam.ListUsersOutput).Users {
			if user.Arn == nil {
				continue
			}
			arn := aws.ToString(user.Arn)
			tags := TagsToRecord(user.Tags, func(t iamtypes.Tag) *string { return t.Key }, func(t iamtypes.Tag) *string { return t.Value })

			res := s.CreateResource(scanner.CreateResourceParams{
				ID:         arn,
				ResourceID: arn,
				NativeType: "AWS::IAM::User",
				Service:    s.ServiceName(),
				Region:     inventory.GlobalRegion,
				Name:       scanner.GetNameFromTags(tags, aws.ToString(user.UserName)),
				Tags:       tags,
				Properties: map[string]any{
					"path": aws.ToString(user.Path),
				},
			})
			if user.CreateDate != nil {
				res.CreatedAt = user.CreateDate
			}
			out = append(out, res)
		}
	}
	return out
}
