package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArn(t *testing.T) {
	tests := []struct {
		name     string
		params   ArnParams
		expected string
	}{
		{
			name: "ec2 instance with resource type",
			params: ArnParams{
				Service:      "ec2",
				Region:       "us-east-1",
				AccountID:    "123456789012",
				ResourceType: "instance",
				Resource:     "i-0abc123",
			},
			expected: "arn:aws:ec2:us-east-1:123456789012:instance/i-0abc123",
		},
		{
			name: "s3 bucket without resource type",
			params: ArnParams{
				Service:  "s3",
				Resource: "my-bucket",
			},
			expected: "arn:aws:s3:::my-bucket",
		},
		{
			name: "explicit non-default partition",
			params: ArnParams{
				Partition: "aws-us-gov",
				Service:   "iam",
				AccountID: "123456789012",
				Resource:  "role/my-role",
			},
			expected: "arn:aws-us-gov:iam::123456789012:role/my-role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildArn(tt.params))
		})
	}
}

func TestParseArn(t *testing.T) {
	tests := []struct {
		name     string
		arn      string
		expected ARN
	}{
		{
			name: "slash-separated resource",
			arn:  "arn:aws:ec2:us-east-1:123456789012:instance/i-0abc123",
			expected: ARN{
				Partition:    "aws",
				Service:      "ec2",
				Region:       "us-east-1",
				AccountID:    "123456789012",
				ResourceType: "instance",
				ResourceID:   "i-0abc123",
			},
		},
		{
			name: "colon-separated resource",
			arn:  "arn:aws:lambda:us-east-1:123456789012:function:my-function",
			expected: ARN{
				Partition:    "aws",
				Service:      "lambda",
				Region:       "us-east-1",
				AccountID:    "123456789012",
				ResourceType: "function",
				ResourceID:   "my-function",
			},
		},
		{
			name: "bare resource id, no type separator",
			arn:  "arn:aws:s3:::my-bucket",
			expected: ARN{
				Partition:  "aws",
				Service:    "s3",
				ResourceID: "my-bucket",
			},
		},
		{
			name: "resource containing literal colons rejoins past account id",
			arn:  "arn:aws:logs:us-east-1:123456789012:log-group:/aws/lambda/my-fn:*",
			expected: ARN{
				Partition:    "aws",
				Service:      "logs",
				Region:       "us-east-1",
				AccountID:    "123456789012",
				ResourceType: "log-group",
				ResourceID:   "/aws/lambda/my-fn:*",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArn(tt.arn)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseArnMalformed(t *testing.T) {
	tests := []string{
		"",
		"not-an-arn",
		"arn:aws:ec2",
		"arn:aws:s3::::",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseArn(in)
			assert.ErrorIs(t, err, ErrMalformedARN)
		})
	}
}

// TestArnRoundTrip verifies ParseArn(BuildArn(p)) == p for well-formed
// params whose ResourceType/Resource contain no "/" or ":" separators,
// which is the round-trip law spec.md §8 requires.
func TestArnRoundTrip(t *testing.T) {
	inputs := []ArnParams{
		{Service: "ec2", Region: "us-west-2", AccountID: "111122223333", ResourceType: "instance", Resource: "i-0abc123"},
		{Service: "s3", Resource: "my-bucket"},
		{Service: "iam", AccountID: "111122223333", ResourceType: "role", Resource: "my-role"},
		{Partition: "aws-cn", Service: "rds", Region: "cn-north-1", AccountID: "111122223333", ResourceType: "db", Resource: "mydb"},
	}

	for _, p := range inputs {
		built := BuildArn(p)
		parsed, err := ParseArn(built)
		require.NoError(t, err)

		want := p
		if want.Partition == "" {
			want.Partition = "aws"
		}
		assert.Equal(t, want, parsed.ToArnParams())
	}
}
