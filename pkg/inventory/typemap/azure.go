package typemap

// AzureNativeToNeutral maps Azure resource provider type names
// (`Microsoft.Provider/resourceType`) to this repository's neutral type
// vocabulary, matching the naming convention of the Terraform AzureRM
// provider. Lookups are case-sensitive on the native name.
var AzureNativeToNeutral = map[string]string{
	"Microsoft.Storage/storageAccounts":        "azurerm_storage_account",
	"Microsoft.Compute/virtualMachines":        "azurerm_linux_virtual_machine",
	"Microsoft.Compute/disks":                  "azurerm_managed_disk",
	"Microsoft.Network/virtualNetworks":        "azurerm_virtual_network",
	"Microsoft.Network/networkSecurityGroups":  "azurerm_network_security_group",
	"Microsoft.Network/publicIPAddresses":      "azurerm_public_ip",
	"Microsoft.Resources/resourceGroups":       "azurerm_resource_group",
	"Microsoft.Web/sites":                      "azurerm_linux_web_app",
	"Microsoft.Sql/servers":                    "azurerm_mssql_server",
	"Microsoft.KeyVault/vaults":                "azurerm_key_vault",
	"Microsoft.ContainerRegistry/registries":   "azurerm_container_registry",
}

// AzureNeutralToNative is the inverse of AzureNativeToNeutral.
var AzureNeutralToNative = invert(AzureNativeToNeutral)

// AzureNeutralType returns the neutral type for a native Azure resource
// provider type, falling back to the deterministic synthesizer when the
// table has no entry.
func AzureNeutralType(native string) string {
	if neutral, ok := AzureNativeToNeutral[native]; ok {
		return neutral
	}
	return Synthesize(native)
}
