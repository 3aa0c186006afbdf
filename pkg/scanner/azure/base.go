// Package azure implements ServiceScanner for a representative slice of
// Azure services, grounded on nebula's internal/helpers Azure resource-ID
// parsing and armresources usage.
package azure

import (
	"strings"

	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/inventory/typemap"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
)

// Base is embedded by every Azure scanner for the Azure neutral-type
// mapping and resource-group extraction.
type Base struct {
	scanner.Base
}

// CreateResource delegates to scanner.CreateResource using the Azure
// neutral type map.
func (Base) CreateResource(p scanner.CreateResourceParams) inventory.Resource {
	return scanner.CreateResource(p, typemap.AzureNeutralType)
}

// ResourceGroupFromID extracts the resource group segment from an Azure
// resource id of the form
// `/subscriptions/{sub}/resourceGroups/{rg}/providers/...`.
func ResourceGroupFromID(id string) string {
	parts := strings.Split(id, "/")
	for i, p := range parts {
		if strings.EqualFold(p, "resourceGroups") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
