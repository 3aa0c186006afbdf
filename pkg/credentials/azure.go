package credentials

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
)

// subscriptionsClientOptions tags every request this provider sends with an
// application id, the way nebula's Azure clients are constructed with an
// explicit (if empty) *arm.ClientOptions rather than a bare nil, so request
// telemetry can be attributed back to discoverctl instead of showing up as
// an anonymous SDK caller.
func subscriptionsClientOptions() *arm.ClientOptions {
	return &arm.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Telemetry: policy.TelemetryOptions{ApplicationID: "discoverctl"},
		},
	}
}

// AzureProvider resolves Azure credentials via DefaultAzureCredential,
// grounded on nebula's internal/helpers.GetEnvironmentDetails/GetTenantDetails.
type AzureProvider struct {
	SubscriptionID string

	cred *azidentity.DefaultAzureCredential
}

// NewAzureProvider constructs an AzureProvider for the given subscription.
// If subscriptionID is empty, GetDefaultSubscriptionID resolves the first
// subscription visible to the credential.
func NewAzureProvider(subscriptionID string) *AzureProvider {
	return &AzureProvider{SubscriptionID: subscriptionID}
}

func (p *AzureProvider) credential() (*azidentity.DefaultAzureCredential, error) {
	if p.cred != nil {
		return p.cred, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("credentials: load Azure credential: %w", err)
	}
	p.cred = cred
	return cred, nil
}

// GetCredential returns the azidentity.DefaultAzureCredential as the opaque
// credential.
func (p *AzureProvider) GetCredential(ctx context.Context) (any, error) {
	return p.credential()
}

// GetDefaultAccountID is a no-op for Azure.
func (p *AzureProvider) GetDefaultAccountID(ctx context.Context) (string, error) {
	return "", nil
}

// GetDefaultSubscriptionID returns the configured subscription, or the
// first subscription visible to the credential when none was configured.
func (p *AzureProvider) GetDefaultSubscriptionID(ctx context.Context) (string, error) {
	if p.SubscriptionID != "" {
		return p.SubscriptionID, nil
	}
	cred, err := p.credential()
	if err != nil {
		return "", err
	}
	client, err := armsubscriptions.NewClient(cred, subscriptionsClientOptions())
	if err != nil {
		return "", fmt.Errorf("credentials: create subscriptions client: %w", err)
	}
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("credentials: list subscriptions: %w", err)
		}
		for _, sub := range page.Value {
			if sub.SubscriptionID != nil {
				return *sub.SubscriptionID, nil
			}
		}
	}
	return "", fmt.Errorf("credentials: no subscriptions visible to credential")
}

// ValidateCredentials confirms the credential can enumerate subscriptions.
func (p *AzureProvider) ValidateCredentials(ctx context.Context) Validation {
	if _, err := p.GetDefaultSubscriptionID(ctx); err != nil {
		return Validation{Err: fmt.Errorf("credentials: invalid Azure credentials: %w", err)}
	}
	cred, err := p.credential()
	if err != nil {
		return Validation{Err: err}
	}
	client, err := armsubscriptions.NewClient(cred, subscriptionsClientOptions())
	if err != nil {
		return Validation{Err: fmt.Errorf("credentials: invalid Azure credentials: %w", err)}
	}
	if _, err := client.NewListPager(nil).NextPage(ctx); err != nil {
		return Validation{Err: fmt.Errorf("credentials: invalid Azure credentials: %w", err)}
	}
	return Validation{Valid: true, Credential: cred}
}

// ListRegions enumerates Azure locations for the resolved subscription via
// armsubscriptions.Client.NewListLocationsPager, grounded on nebula's
// internal/helpers azure location handling.
func (p *AzureProvider) ListRegions(ctx context.Context) ([]string, error) {
	subID, err := p.GetDefaultSubscriptionID(ctx)
	if err != nil {
		return nil, err
	}
	cred, err := p.credential()
	if err != nil {
		return nil, err
	}
	client, err := armsubscriptions.NewClient(cred, subscriptionsClientOptions())
	if err != nil {
		return nil, fmt.Errorf("credentials: create subscriptions client: %w", err)
	}

	var regions []string
	pager := client.NewListLocationsPager(subID, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("credentials: list locations: %w", err)
		}
		for _, loc := range page.Value {
			if loc.Name != nil {
				regions = append(regions, *loc.Name)
			}
		}
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("credentials: no locations returned for subscription %s", subID)
	}
	return regions, nil
}
