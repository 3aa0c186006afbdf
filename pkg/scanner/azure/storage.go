package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

const storageAccountResourceType = "Microsoft.Storage/storageAccounts"

// StorageScanner enumerates storage accounts. nebula's dependency set
// carries no dedicated storage-account SDK module, so this scanner lists
// through the generic armresources client and filters by resource type,
// the same generic-resource pattern nebula's helpers use for ARG-style
// enumeration.
type StorageScanner struct {
	Base

	SubscriptionID string
}

func NewStorageScanner(subscriptionID string) *StorageScanner {
	return &StorageScanner{SubscriptionID: subscriptionID}
}

func (s *StorageScanner) ServiceName() string     { return "storage" }
func (s *StorageScanner) IsGlobal() bool          { return false }
func (s *StorageScanner) ResourceTypes() []string { return []string{"azurerm_storage_account"} }

func (s *StorageScanner) Scan(ctx *scanner.Context) ([]inventory.Resource, []inventory.ScanError) {
	s.ClearErrors()

	cred := ctx.Credentials.(*azidentity.DefaultAzureCredential)
	client, err := armresources.NewClient(s.SubscriptionID, cred, nil)
	if err != nil {
		s.RecordError(s.ServiceName(), ctx.Region, "NewResourcesClient", err.Error(), "")
		return nil, s.Errors()
	}

	filter := "resourceType eq '" + storageAccountResourceType + "'"
	opts := &armresources.ClientListOptions{Filter: &filter}

	var out []inventory.Resource
	pager := client.NewListPager(opts)
	for pager.More() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return pager.NextPage(c)
		})
		if err != nil {
			s.RecordError(s.ServiceName(), ctx.Region, "ListStorageAccounts", err.Error(), "")
			break
		}
		for _, res := range result.(armresources.ClientListResponse).Value {
			if res.ID == nil || res.Location == nil || !equalFoldRegion(*res.Location, ctx.Region) {
				continue
			}
			tags := map[string]string{}
			for k, v := range res.Tags {
				if v != nil {
					tags[k] = *v
				}
			}

			rec := s.CreateResource(scanner.CreateResourceParams{
				ID:         *res.ID,
				ResourceID: *res.ID,
				NativeType: storageAccountResourceType,
				Service:    s.ServiceName(),
				Region:     *res.Location,
				Name:       scanner.GetNameFromTags(tags, derefStr(res.Name)),
				Tags:       tags,
				Properties: map[string]any{
					"sku":  storageSKU(res),
					"kind": derefStr(res.Kind),
				},
				ResourceGroup: ResourceGroupFromID(*res.ID),
			})
			out = append(out, rec)
		}
	}

	return out, s.Errors()
}

func storageSKU(res *armresources.GenericResourceExpanded) string {
	if res.SKU == nil || res.SKU.Name == nil {
		return ""
	}
	return *res.SKU.Name
}
