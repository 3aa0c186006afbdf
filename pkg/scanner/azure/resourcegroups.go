package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// ResourceGroupScanner enumerates resource groups. Resource group
// enumeration is a single subscription-wide call with no region
// partitioning, so the scanner declares itself global the way spec.md
// §4.2 defines "global service."
type ResourceGroupScanner struct {
	Base

	SubscriptionID string
}

func NewResourceGroupScanner(subscriptionID string) *ResourceGroupScanner {
	return &ResourceGroupScanner{SubscriptionID: subscriptionID}
}

func (s *ResourceGroupScanner) ServiceName() string     { return "resourcegroups" }
func (s *ResourceGroupScanner) IsGlobal() bool          { return true }
func (s *ResourceGroupScanner) ResourceTypes() []string { return []string{"azurerm_resource_group"} }

func (s *ResourceGroupScanner) Scan(ctx *scanner.Context) ([]inventory.Resource, []inventory.ScanError) {
	s.ClearErrors()

	cred := ctx.Credentials.(*azidentity.DefaultAzureCredential)
	client, err := armresources.NewResourceGroupsClient(s.SubscriptionID, cred, nil)
	if err != nil {
		s.RecordError(s.ServiceName(), inventory.GlobalRegion, "NewResourceGroupsClient", err.Error(), "")
		return nil, s.Errors()
	}

	var out []inventory.Resource
	pager := client.NewListPager(nil)
	for pager.More() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return pager.NextPage(c)
		})
		if err != nil {
			s.RecordError(s.ServiceName(), inventory.GlobalRegion, "ListResourceGroups", err.Error(), "")
			break
		}
		for _, rg := range result.(armresources.ResourceGroupsClientListResponse).Value {
			if rg.ID == nil {
				continue
			}
			tags := map[string]string{}
			for k, v := range rg.Tags {
				if v != nil {
					tags[k] = *v
				}
			}
			location := ""
			if rg.Location != nil {
				location = *rg.Location
			}
			res := s.CreateResource(scanner.CreateResourceParams{
				ID:         *rg.ID,
				ResourceID: *rg.ID,
				NativeType: "Microsoft.Resources/resourceGroups",
				Service:    s.ServiceName(),
				Region:     inventory.GlobalRegion,
				Name:       derefStr(rg.Name),
				Tags:       tags,
				Properties: map[string]any{
					"location":          location,
					"provisioningState": resourceGroupProvisioningState(rg),
				},
				ResourceGroup: derefStr(rg.Name),
			})
			out = append(out, res)
		}
	}

	return out, s.Errors()
}

func resourceGroupProvisioningState(rg *armresources.ResourceGroup) string {
	if rg.Properties == nil || rg.Properties.ProvisioningState == nil {
		return ""
	}
	return *rg.Properties.ProvisioningState
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
