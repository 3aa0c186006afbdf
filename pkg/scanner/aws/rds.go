package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// RDSScanner enumerates RDS DB instances, emitting a `contains` relationship
// to each attached VPC security group.
type RDSScanner struct {
	Base
}

func NewRDSScanner() *RDSScanner { return &RDSScanner{} }

func (s *RDSScanner) ServiceName() string     { return "rds" }
func (s *RDSScanner) IsGlobal() bool          { return false }
func (s *RDSScanner) ResourceTypes() []string { return []string{"aws_db_instance"} }

func (s *RDSScanner) Scan(ctx *scanner.Context) ([]inventory.Resource, []inventory.ScanError) {
	s.ClearErrors()

	client := rds.NewFromConfig(ctx.Credentials.(aws.Config), func(o *rds.Options) {
		o.Region = ctx.Region
	})

	var out []inventory.Resource
	paginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return paginator.NextPage(c)
		})
		if err != nil {
			s.RecordError(s.ServiceName(), ctx.Region, "DescribeDBInstances", err.Error(), "")
			break
		}
		page := result.(*rds.DescribeDBInstancesOutput)
		for _, db := range page.DBInstances {
			if db.DBInstanceArn == nil {
				continue
			}
			arn := aws.ToString(db.DBInstanceArn)
			tags := TagsToRecord(db.TagList, func(t rdstypes.Tag) *string { return t.Key }, func(t rdstypes.Tag) *string { return t.Value })

			res := s.CreateResource(scanner.CreateResourceParams{
				ID:         arn,
				ResourceID: arn,
				NativeType: "AWS::RDS::DBInstance",
				Service:    s.ServiceName(),
				Region:     ctx.Region,
				Name:       scanner.GetNameFromTags(tags, aws.ToString(db.DBInstanceIdentifier)),
				Tags:       tags,
				Properties: map[string]any{
					"engine":        aws.ToString(db.Engine),
					"engineVersion": aws.ToString(db.EngineVersion),
					"instanceClass": aws.ToString(db.DBInstanceClass),
					"multiAZ":       aws.ToBool(db.MultiAZ),
				},
			})
			if db.DBInstanceStatus != nil {
				res.Status = aws.ToString(db.DBInstanceStatus)
			}
			if db.InstanceCreateTime != nil {
				res.CreatedAt = db.InstanceCreateTime
			}
			for _, vpcSg := range db.VpcSecurityGroups {
				if vpcSg.VpcSecurityGroupId == nil {
					continue
				}
				target := s.BuildArn(ctx, "ec2", "security-group", aws.ToString(vpcSg.VpcSecurityGroupId))
				res.AddRelationship(inventory.Relationship{
					Type:             inventory.RelationContains,
					TargetResourceID: target,
					TargetType:       "aws_security_group",
				})
			}
			out = append(out, res)
		}
	}

	return out, s.Errors()
}
