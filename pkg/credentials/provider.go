// Package credentials defines the opaque Provider interface the
// orchestrator depends on, plus AWS and Azure implementations grounded on
// nebula's internal/helpers AWS config/STS and Azure identity/tenant
// helpers.
package credentials

import "context"

// Validation is the result of validating a provider's credentials.
type Validation struct {
	Valid      bool
	Credential any
	Err        error
}

// Provider is the opaque accessor the orchestrator uses for per-provider
// credentials and default account/subscription resolution. Concrete
// implementations hide the provider SDK's credential types behind `any`;
// the orchestrator never inspects Credential itself, only passes it through
// to scanners via scanner.Context.
type Provider interface {
	// GetCredential returns an opaque credential usable with provider
	// clients.
	GetCredential(ctx context.Context) (any, error)
	// GetDefaultAccountID returns the default AWS account id, or "" if the
	// provider has no notion of one (e.g. Azure).
	GetDefaultAccountID(ctx context.Context) (string, error)
	// GetDefaultSubscriptionID returns the default Azure subscription id, or
	// "" if the provider has no notion of one (e.g. AWS).
	GetDefaultSubscriptionID(ctx context.Context) (string, error)
	// ValidateCredentials confirms the credential is usable, round-tripping
	// through an identity check (AWS STS GetCallerIdentity, Azure
	// subscription listing).
	ValidateCredentials(ctx context.Context) Validation
	// ListRegions enumerates the provider's regions for `regions: "all"`.
	ListRegions(ctx context.Context) ([]string, error)
}
