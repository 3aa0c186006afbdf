// Package typemap holds the bidirectional native-to-neutral resource type
// tables for each provider, plus the deterministic fallback synthesizer used
// when a native type has no table entry.
package typemap

import "strings"

// AWSNativeToNeutral maps AWS CloudFormation-style type names
// (`AWS::Service::Resource`) to this repository's neutral type vocabulary.
// Lookups are case-sensitive on the native name.
var AWSNativeToNeutral = map[string]string{
	"AWS::EC2::Instance":                  "aws_instance",
	"AWS::EC2::SecurityGroup":             "aws_security_group",
	"AWS::EC2::VPC":                       "aws_vpc",
	"AWS::EC2::Subnet":                    "aws_subnet",
	"AWS::EC2::Volume":                    "aws_ebs_volume",
	"AWS::EC2::KeyPair":                   "aws_key_pair",
	"AWS::EC2::LaunchTemplate":            "aws_launch_template",
	"AWS::S3::Bucket":                     "aws_s3_bucket",
	"AWS::RDS::DBInstance":                "aws_db_instance",
	"AWS::IAM::Role":                      "aws_iam_role",
	"AWS::IAM::User":                      "aws_iam_user",
	"AWS::Lambda::Function":               "aws_lambda_function",
	"AWS::DynamoDB::Table":                "aws_dynamodb_table",
	"AWS::CloudFormation::Stack":          "aws_cloudformation_stack",
	"AWS::ECS::Cluster":                   "aws_ecs_cluster",
	"AWS::ECS::Service":                   "aws_ecs_service",
}

// AWSNeutralToNative is the inverse of AWSNativeToNeutral.
var AWSNeutralToNative = invert(AWSNativeToNeutral)

// AWSArnPrefixToNativeType maps an ARN's `service:resourceType` prefix to an
// AWS native type, for use by the cross-service Tagging scanner which only
// has an ARN, not a CloudFormation type name, to work from.
var AWSArnPrefixToNativeType = map[string]string{
	"ec2:instance":         "AWS::EC2::Instance",
	"ec2:security-group":   "AWS::EC2::SecurityGroup",
	"ec2:vpc":              "AWS::EC2::VPC",
	"ec2:subnet":           "AWS::EC2::Subnet",
	"ec2:volume":           "AWS::EC2::Volume",
	"s3:":                  "AWS::S3::Bucket",
	"rds:db":               "AWS::RDS::DBInstance",
	"iam:role":             "AWS::IAM::Role",
	"iam:user":             "AWS::IAM::User",
	"lambda:function":      "AWS::Lambda::Function",
	"dynamodb:table":       "AWS::DynamoDB::Table",
	"cloudformation:stack": "AWS::CloudFormation::Stack",
	"ecs:cluster":          "AWS::ECS::Cluster",
	"ecs:service":          "AWS::ECS::Service",
}

// AWSNeutralType returns the neutral type for a native AWS type, falling
// back to the deterministic synthesizer when the table has no entry.
func AWSNeutralType(native string) string {
	if neutral, ok := AWSNativeToNeutral[native]; ok {
		return neutral
	}
	return Synthesize(native)
}

// Synthesize deterministically derives a neutral type name from a native
// type string absent from the table: lowercase, replace "::" and "/" with
// "_", and strip the vendor prefix (the leading "aws"/"microsoft" segment).
func Synthesize(native string) string {
	s := strings.ToLower(native)
	s = strings.ReplaceAll(s, "::", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.Trim(s, "_")

	for _, prefix := range []string{"aws_", "microsoft_"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	return s
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
