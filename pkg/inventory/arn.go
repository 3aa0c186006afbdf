package inventory

import (
	"errors"
	"strings"
)

// ErrMalformedARN is returned by ParseArn when identifier lacks the "arn:"
// prefix, has fewer than the 6 colon-separated segments an ARN requires, or
// has an empty resource id.
var ErrMalformedARN = errors.New("inventory: malformed ARN")

// ARN is the parsed form of an `arn:partition:service:region:account:resource`
// identifier, with the resource part split into type and id when the
// provider's convention (`type/id` or `type:id`) allows it.
type ARN struct {
	Partition    string
	Service      string
	Region       string
	AccountID    string
	ResourceType string
	ResourceID   string
}

// ArnParams is the input to BuildArn.
type ArnParams struct {
	Partition    string // defaults to "aws"
	Service      string
	Region       string
	AccountID    string
	ResourceType string // optional
	Resource     string
}

// BuildArn deterministically constructs an ARN string following
// `arn:{partition}:{service}:{region}:{account}:{resourceType?/}resource`,
// matching the base scanner helper described in spec.md §4.2.
func BuildArn(p ArnParams) string {
	partition := p.Partition
	if partition == "" {
		partition = "aws"
	}
	resourcePart := p.Resource
	if p.ResourceType != "" {
		resourcePart = p.ResourceType + "/" + p.Resource
	}
	return strings.Join([]string{"arn", partition, p.Service, p.Region, p.AccountID, resourcePart}, ":")
}

// ParseArn splits identifier on ":" with resource-part rejoin, distinguishing
// the `type/id` and `type:id` resource forms by whichever separator comes
// first in the resource part. It accepts ARNs with 6 or more
// colon-separated segments (a resource containing literal colons, such as a
// CloudWatch Logs log group ARN, yields more than 6 segments and the
// resource part is rejoined from everything after the account id).
func ParseArn(identifier string) (ARN, error) {
	if !strings.HasPrefix(identifier, "arn:") {
		return ARN{}, ErrMalformedARN
	}

	parts := strings.SplitN(identifier, ":", 6)
	if len(parts) < 6 {
		return ARN{}, ErrMalformedARN
	}

	a := ARN{
		Partition: parts[1],
		Service:   parts[2],
		Region:    parts[3],
		AccountID: parts[4],
	}

	resourcePart := parts[5]
	if resourcePart == "" {
		return ARN{}, ErrMalformedARN
	}

	if idx := strings.IndexAny(resourcePart, "/:"); idx >= 0 {
		a.ResourceType = resourcePart[:idx]
		a.ResourceID = resourcePart[idx+1:]
	} else {
		a.ResourceID = resourcePart
	}
	if a.ResourceID == "" {
		return ARN{}, ErrMalformedARN
	}

	return a, nil
}

// ToArnParams converts a parsed ARN back into the params that would
// reconstruct it, so that ParseArn(BuildArn(p)) == p for all valid p.
func (a ARN) ToArnParams() ArnParams {
	return ArnParams{
		Partition:    a.Partition,
		Service:      a.Service,
		Region:       a.Region,
		AccountID:    a.AccountID,
		ResourceType: a.ResourceType,
		Resource:     a.ResourceID,
	}
}
