package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAWSProviderDefaultsRegion(t *testing.T) {
	p := NewAWSProvider("my-profile", "")
	assert.Equal(t, "us-east-1", p.Region)
	assert.Equal(t, "my-profile", p.Profile)
}

func TestNewAWSProviderKeepsExplicitRegion(t *testing.T) {
	p := NewAWSProvider("", "eu-west-1")
	assert.Equal(t, "eu-west-1", p.Region)
}
