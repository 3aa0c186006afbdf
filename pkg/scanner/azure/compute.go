package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// ComputeScanner enumerates virtual machines and records a `contains`
// relationship to each attached managed disk (OS disk and data disks).
type ComputeScanner struct {
	Base

	SubscriptionID string
}

func NewComputeScanner(subscriptionID string) *ComputeScanner {
	return &ComputeScanner{SubscriptionID: subscriptionID}
}

func (s *ComputeScanner) ServiceName() string     { return "compute" }
func (s *ComputeScanner) IsGlobal() bool          { return false }
func (s *ComputeScanner) ResourceTypes() []string { return []string{"azurerm_linux_virtual_machine"} }

func (s *ComputeScanner) Scan(ctx *scanner.Context) ([]inventory.Resource, []inventory.ScanError) {
	s.ClearErrors()

	cred := ctx.Credentials.(*azidentity.DefaultAzureCredential)
	client, err := armcompute.NewVirtualMachinesClient(s.SubscriptionID, cred, nil)
	if err != nil {
		s.RecordError(s.ServiceName(), ctx.Region, "NewVirtualMachinesClient", err.Error(), "")
		return nil, s.Errors()
	}

	var out []inventory.Resource
	pager := client.NewListAllPager(nil)
	for pager.More() {
		result, err := ctx.WithRateLimit(func(c context.Context) (any, error) {
			return pager.NextPage(c)
		})
		if err != nil {
			s.RecordError(s.ServiceName(), ctx.Region, "ListAllVirtualMachines", err.Error(), "")
			break
		}
		for _, vm := range result.(armcompute.VirtualMachinesClientListAllResponse).Value {
			if vm.ID == nil || vm.Location == nil || !equalFoldRegion(*vm.Location, ctx.Region) {
				continue
			}
			tags := map[string]string{}
			for k, v := range vm.Tags {
				if v != nil {
					tags[k] = *v
				}
			}

			res := s.CreateResource(scanner.CreateResourceParams{
				ID:         *vm.ID,
				ResourceID: *vm.ID,
				NativeType: "Microsoft.Compute/virtualMachines",
				Service:    s.ServiceName(),
				Region:     *vm.Location,
				Name:       scanner.GetNameFromTags(tags, derefStr(vm.Name)),
				Tags:       tags,
				Properties: map[string]any{
					"vmSize":            vmSize(vm),
					"provisioningState": vmProvisioningState(vm),
				},
				ResourceGroup: ResourceGroupFromID(*vm.ID),
			})
			if vm.Properties != nil {
				res.Status = vmProvisioningState(vm)
			}

			for _, disk := range vmDiskIDs(vm) {
				res.AddRelationship(inventory.Relationship{
					Type:             inventory.RelationContains,
					TargetResourceID: disk,
					TargetType:       "azurerm_managed_disk",
				})
			}

			out = append(out, res)
		}
	}

	return out, s.Errors()
}

func equalFoldRegion(a, b string) bool {
	return normalizeRegion(a) == normalizeRegion(b)
}

func normalizeRegion(r string) string {
	out := make([]rune, 0, len(r))
	for _, c := range r {
		if c == ' ' || c == '-' || c == '_' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func vmSize(vm *armcompute.VirtualMachine) string {
	if vm.Properties == nil || vm.Properties.HardwareProfile == nil || vm.Properties.HardwareProfile.VMSize == nil {
		return ""
	}
	return string(*vm.Properties.HardwareProfile.VMSize)
}

func vmProvisioningState(vm *armcompute.VirtualMachine) string {
	if vm.Properties == nil || vm.Properties.ProvisioningState == nil {
		return ""
	}
	return *vm.Properties.ProvisioningState
}

func vmDiskIDs(vm *armcompute.VirtualMachine) []string {
	var ids []string
	if vm.Properties == nil || vm.Properties.StorageProfile == nil {
		return ids
	}
	sp := vm.Properties.StorageProfile
	if sp.OSDisk != nil && sp.OSDisk.ManagedDisk != nil && sp.OSDisk.ManagedDisk.ID != nil {
		ids = append(ids, *sp.OSDisk.ManagedDisk.ID)
	}
	for _, d := range sp.DataDisks {
		if d.ManagedDisk != nil && d.ManagedDisk.ID != nil {
			ids = append(ids, *d.ManagedDisk.ID)
		}
	}
	return ids
}
