// Package scanner defines the ServiceScanner contract every per-service
// scanner implements, plus the shared helpers (resource construction, error
// collection, rate-limited invocation) those scanners use; ARN construction
// and tag normalization live in the provider packages and pkg/inventory.
// There is no inheritance root: ServiceScanner is an interface, and
// Base is a value type embedded by concrete scanners, the same relationship
// nebula's AwsReconLink has to the links that embed it.
package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/ratelimit"
)

// Context carries everything a scanner needs to enumerate one service in
// one region.
type Context struct {
	context.Context

	Region      string
	AccountID   string
	Credentials any
	RateLimiter *ratelimit.Limiter
	Logger      *slog.Logger
}

// WithRateLimit delegates to ctx.RateLimiter.WithBackoff.
func (c *Context) WithRateLimit(op ratelimit.Op) (any, error) {
	return c.RateLimiter.WithBackoff(c.Context, op)
}

// ServiceScanner is the uniform contract every concrete per-service scanner
// implements.
type ServiceScanner interface {
	// ServiceName is a stable identifier, e.g. "ec2".
	ServiceName() string
	// IsGlobal reports whether the service's API surface is not
	// region-partitioned; the orchestrator invokes such scanners only once,
	// in the primary region.
	IsGlobal() bool
	// Scan enumerates resources for the given context. It must never fail
	// fatally: all failures become ScanError entries in the returned slice.
	Scan(ctx *Context) ([]inventory.Resource, []inventory.ScanError)
	// ResourceTypes lists the neutral types this scanner may produce.
	ResourceTypes() []string
}

// Base is embedded by concrete scanners (through the provider packages' own
// Base types) to get a per-scan error buffer. It carries no state
// across invocations beyond the error buffer, which ClearErrors resets at
// the start of every Scan call, per spec.md §5's statefulness rule.
type Base struct {
	mu     sync.Mutex
	errors []inventory.ScanError
}

// ClearErrors resets the per-scan error buffer. Call this first in every
// Scan implementation.
func (b *Base) ClearErrors() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = nil
}

// RecordError appends a ScanError to the per-scan buffer.
func (b *Base) RecordError(service, region, operation, message, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = append(b.errors, inventory.ScanError{
		Service:   service,
		Region:    region,
		Operation: operation,
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	})
}

// Errors returns the accumulated errors for the current scan.
func (b *Base) Errors() []inventory.ScanError {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]inventory.ScanError(nil), b.errors...)
}

// CreateResourceParams is the input to CreateResource.
type CreateResourceParams struct {
	ID            string
	ResourceID    string
	NativeType    string
	NeutralType   string // if empty, derived from NativeType via typeFn
	Service       string
	Region        string
	Name          string
	Tags          map[string]string
	Properties    map[string]any
	ResourceGroup string
}

// TypeFn derives a neutral type from a native type, e.g. typemap.AWSNeutralType.
type TypeFn func(native string) string

// CreateResource constructs a DiscoveredResource, filling Type via typeFn
// when NeutralType is unset, and defaulting empty Tags/Relationships.
func CreateResource(p CreateResourceParams, typeFn TypeFn) inventory.Resource {
	neutral := p.NeutralType
	if neutral == "" && typeFn != nil {
		neutral = typeFn(p.NativeType)
	}
	tags := p.Tags
	if tags == nil {
		tags = map[string]string{}
	}
	props := p.Properties
	if props == nil {
		props = map[string]any{}
	}
	return inventory.Resource{
		ID:            p.ID,
		ResourceID:    p.ResourceID,
		Type:          neutral,
		NativeType:    p.NativeType,
		Service:       p.Service,
		Region:        p.Region,
		Name:          p.Name,
		Tags:          tags,
		Properties:    props,
		Relationships: nil,
		ResourceGroup: p.ResourceGroup,
	}
}

// GetNameFromTags returns the value of the "Name" tag, or fallback if
// absent.
func GetNameFromTags(tags map[string]string, fallback string) string {
	if v, ok := tags["Name"]; ok && v != "" {
		return v
	}
	return fallback
}

const redactionSentinel = "[redacted]"

// Redact replaces a sensitive field value (TLS cert bodies, header values,
// OIDC issuer secrets) with a fixed sentinel, per spec.md §4.2's mapping-phase
// rule.
func Redact(string) string {
	return redactionSentinel
}
