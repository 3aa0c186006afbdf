package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseClearErrorsResetsBuffer(t *testing.T) {
	var b Base
	b.RecordError("ec2", "us-east-1", "describe-instances", "boom", "InternalError")
	assert.Len(t, b.Errors(), 1)

	b.ClearErrors()
	assert.Empty(t, b.Errors())
}

func TestBaseRecordErrorAccumulates(t *testing.T) {
	var b Base
	b.RecordError("ec2", "us-east-1", "describe-instances", "first", "")
	b.RecordError("ec2", "us-east-1", "describe-vpcs", "second", "Throttling")

	errs := b.Errors()
	assert.Len(t, errs, 2)
	assert.Equal(t, "first", errs[0].Message)
	assert.Equal(t, "second", errs[1].Message)
	assert.Equal(t, "Throttling", errs[1].Code)
}

func TestBaseErrorsReturnsACopy(t *testing.T) {
	var b Base
	b.RecordError("ec2", "us-east-1", "op", "msg", "")

	errs := b.Errors()
	errs[0].Message = "mutated"

	assert.Equal(t, "msg", b.Errors()[0].Message)
}

func TestCreateResourceDefaultsAndTypeFn(t *testing.T) {
	typeFn := func(native string) string {
		if native == "AWS::EC2::Instance" {
			return "compute_instance"
		}
		return "unknown"
	}

	r := CreateResource(CreateResourceParams{
		ID:         "arn:aws:ec2:us-east-1:111122223333:instance/i-0abc",
		ResourceID: "i-0abc",
		NativeType: "AWS::EC2::Instance",
		Service:    "ec2",
		Region:     "us-east-1",
		Name:       "web-1",
	}, typeFn)

	assert.Equal(t, "compute_instance", r.Type)
	assert.NotNil(t, r.Tags)
	assert.NotNil(t, r.Properties)
	assert.Empty(t, r.Tags)
	assert.Empty(t, r.Properties)
}

func TestCreateResourceExplicitNeutralTypeSkipsTypeFn(t *testing.T) {
	called := false
	typeFn := func(native string) string {
		called = true
		return "should-not-be-used"
	}

	r := CreateResource(CreateResourceParams{
		NativeType:  "AWS::EC2::Instance",
		NeutralType: "compute_instance",
	}, typeFn)

	assert.Equal(t, "compute_instance", r.Type)
	assert.False(t, called)
}

func TestGetNameFromTags(t *testing.T) {
	assert.Equal(t, "web-1", GetNameFromTags(map[string]string{"Name": "web-1"}, "fallback"))
	assert.Equal(t, "fallback", GetNameFromTags(map[string]string{}, "fallback"))
	assert.Equal(t, "fallback", GetNameFromTags(map[string]string{"Name": ""}, "fallback"))
}

func TestRedactAlwaysReturnsSentinel(t *testing.T) {
	assert.Equal(t, "[redacted]", Redact("super-secret-value"))
	assert.Equal(t, "[redacted]", Redact(""))
}
