package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// EC2Scanner enumerates EC2 instances, security groups, and VPCs. The three
// resource families are independent of one another and are scanned
// concurrently, per spec.md §4.2's "parallelism inside a scanner" rule.
type EC2Scanner struct {
	Base
}

// NewEC2Scanner constructs an EC2Scanner.
func NewEC2Scanner() *EC2Scanner { return &EC2Scanner{} }

func (s *EC2Scanner) ServiceName() string { return "ec2" }
func (s *EC2Scanner) IsGlobal() bool       { return false }
func (s *EC2Scanner) ResourceTypes() []string {
	return []string{"aws_instance", "aws_security_group", "aws_vpc"}
}

func (s *EC2Scanner) Scan(ctx *scanner.Context) ([]inventory.Resource, []inventory.ScanError) {
	s.ClearErrors()

	client := ec2.NewFromConfig(ctx.Credentials.(aws.Config), func(o *ec2.Options) {
		o.Region = ctx.Region
	})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		resources []inventory.Resource
	)

	scan := func(fn func() ([]inventory.Resource, error), operation string) {
		defer wg.Done()
		res, err := fn()
		if err != nil {
			s.RecordError(s.ServiceName(), ctx.Region, operation, err.Error(), "")
			return
		}
		mu.Lock()
		resources = append(resources, res...)
		mu.Unlock()
	}

	wg.Add(3)
	go scan(func() ([]inventory.Resource, error) { return s.scanInstances(ctx, client) }, "DescribeInstances")
	go scan(func() ([]inventory.Resource, error) { return s.scanSecurityGroups(ctx, client) }, "DescribeSecurityGroups")
	go scan(func() ([]inventory.Resource, error) { return s.scanVPCs(ctx, client) }, "DescribeVpcs")
	wg.Wait()

	return resources, s.Errors()
}

func (s *EC2Scanner) scanInstances(ctx *scanner.Context, client *ec2.Client) ([]inventory.Resource, error) {
	var out []inventory.Resource
	paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return paginator.NextPage(c)
		})
		if err != nil {
			return out, fmt.Errorf("describe instances: %w", err)
		}
		page := result.(*ec2.DescribeInstancesOutput)
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				if inst.InstanceId == nil {
					continue
				}
				id := aws.ToString(inst.InstanceId)
				arn := s.BuildArn(ctx, "ec2", "instance", id)
				tags := TagsToRecord(inst.Tags, func(t ec2types.Tag) *string { return t.Key }, func(t ec2types.Tag) *string { return t.Value })

				res := s.CreateResource(scanner.CreateResourceParams{
					ID:         arn,
					ResourceID: arn,
					NativeType: "AWS::EC2::Instance",
					Service:    s.ServiceName(),
					Region:     ctx.Region,
					Name:       scanner.GetNameFromTags(tags, id),
					Tags:       tags,
					Properties: map[string]any{
						"instanceType": string(inst.InstanceType),
						"state":        string(inst.State.Name),
						"privateIp":    aws.ToString(inst.PrivateIpAddress),
					},
				})
				if inst.State != nil {
					res.Status = string(inst.State.Name)
				}
				for _, sg := range inst.SecurityGroups {
					if sg.GroupId == nil {
						continue
					}
					target := s.BuildArn(ctx, "ec2", "security-group", aws.ToString(sg.GroupId))
					res.AddRelationship(inventory.Relationship{
						Type:             inventory.RelationReferences,
						TargetResourceID: target,
						TargetType:       "aws_security_group",
					})
				}
				if inst.VpcId != nil {
					target := s.BuildArn(ctx, "ec2", "vpc", aws.ToString(inst.VpcId))
					res.AddRelationship(inventory.Relationship{
						Type:             inventory.RelationAttachedTo,
						TargetResourceID: target,
						TargetType:       "aws_vpc",
					})
				}
				out = append(out, res)
			}
		}
	}
	return out, nil
}

func (s *EC2Scanner) scanSecurityGroups(ctx *scanner.Context, client *ec2.Client) ([]inventory.Resource, error) {
	var out []inventory.Resource
	paginator := ec2.NewDescribeSecurityGroupsPaginator(client, &ec2.DescribeSecurityGroupsInput{})
	for paginator.HasMorePages() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return paginator.NextPage(c)
		})
		if err != nil {
			return out, fmt.Errorf("describe security groups: %w", err)
		}
		page := result.(*ec2.DescribeSecurityGroupsOutput)
		for _, sg := range page.SecurityGroups {
			if sg.GroupId == nil {
				continue
			}
			id := aws.ToString(sg.GroupId)
			arn := s.BuildArn(ctx, "ec2", "security-group", id)
			tags := TagsToRecord(sg.Tags, func(t ec2types.Tag) *string { return t.Key }, func(t ec2types.Tag) *string { return t.Value })

			res := s.CreateResource(scanner.CreateResourceParams{
				ID:         arn,
				ResourceID: arn,
				NativeType: "AWS::EC2::SecurityGroup",
				Service:    s.ServiceName(),
				Region:     ctx.Region,
				Name:       scanner.GetNameFromTags(tags, aws.ToString(sg.GroupName)),
				Tags:       tags,
				Properties: map[string]any{
					"description": aws.ToString(sg.Description),
				},
			})
			if sg.VpcId != nil {
				target := s.BuildArn(ctx, "ec2", "vpc", aws.ToString(sg.VpcId))
				res.AddRelationship(inventory.Relationship{
					Type:             inventory.RelationContains,
					TargetResourceID: target,
					TargetType:       "aws_vpc",
				})
			}
			out = append(out, res)
		}
	}
	return out, nil
}

func (s *EC2Scanner) scanVPCs(ctx *scanner.Context, client *ec2.Client) ([]inventory.Resource, error) {
	var out []inventory.Resource
	paginator := ec2.NewDescribeVpcsPaginator(client, &ec2.DescribeVpcsInput{})
	for paginator.HasMorePages() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return paginator.NextPage(c)
		})
		if err != nil {
			return out, fmt.Errorf("describe vpcs: %w", err)
		}
		page := result.(*ec2.DescribeVpcsOutput)
		for _, vpc := range page.Vpcs {
			if vpc.VpcId == nil {
				continue
			}
			id := aws.ToString(vpc.VpcId)
			arn := s.BuildArn(ctx, "ec2", "vpc", id)
			tags := TagsToRecord(vpc.Tags, func(t ec2types.Tag) *string { return t.Key }, func(t ec2types.Tag) *string { return t.Value })

			res := s.CreateResource(scanner.CreateResourceParams{
				ID:         arn,
				ResourceID: arn,
				NativeType: "AWS::EC2::VPC",
				Service:    s.ServiceName(),
				Region:     ctx.Region,
				Name:       scanner.GetNameFromTags(tags, id),
				Tags:       tags,
				Properties: map[string]any{
					"cidrBlock": aws.ToString(vpc.CidrBlock),
					"isDefault": aws.ToBool(vpc.IsDefault),
				},
			})
			out = append(out, res)
		}
	}
	return out, nil
}
