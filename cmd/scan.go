package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudpilot-ai/discoverctl/internal/logs"
	"github.com/cloudpilot-ai/discoverctl/internal/message"
	"github.com/cloudpilot-ai/discoverctl/pkg/credentials"
	"github.com/cloudpilot-ai/discoverctl/pkg/inventory"
	"github.com/cloudpilot-ai/discoverctl/pkg/orchestrator"
	"github.com/cloudpilot-ai/discoverctl/pkg/scanner"
	scanaws "github.com/cloudpilot-ai/discoverctl/pkg/scanner/aws"
	scanazure "github.com/cloudpilot-ai/discoverctl/pkg/scanner/azure"
)

var (
	scanProvider        string
	scanRegions         string
	scanExcludeRegions  string
	scanServices        string
	scanExcludeServices string
	scanAccountID       string
	scanSubscriptionID  string
	scanAWSProfile      string
	scanConcurrency     int
	scanTimeout         time.Duration
	scanOutputPath      string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a discovery session against a cloud provider and print the resulting inventory",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanProvider, "provider", "", "cloud provider: aws or azure (required)")
	scanCmd.Flags().StringVar(&scanRegions, "regions", orchestrator.RegionsAll, "comma-separated region list, or \"all\"")
	scanCmd.Flags().StringVar(&scanExcludeRegions, "exclude-regions", "", "comma-separated regions to exclude")
	scanCmd.Flags().StringVar(&scanServices, "services", "", "comma-separated service names (default: every registered scanner)")
	scanCmd.Flags().StringVar(&scanExcludeServices, "exclude-services", "", "comma-separated service names to exclude")
	scanCmd.Flags().StringVar(&scanAccountID, "account-id", "", "AWS account id override")
	scanCmd.Flags().StringVar(&scanSubscriptionID, "subscription-id", "", "Azure subscription id override")
	scanCmd.Flags().StringVar(&scanAWSProfile, "aws-profile", "", "AWS shared config profile")
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", orchestrator.DefaultConcurrency, "max in-flight API calls")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "wall-clock deadline for the scan, e.g. 5m (0 = no deadline)")
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "", "write the inventory JSON here instead of stdout")
	scanCmd.MarkFlagRequired("provider")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	provider := strings.ToLower(scanProvider)

	registry, creds, err := buildProviderStack(provider)
	if err != nil {
		return err
	}

	logger := logs.NewSessionLogger("pending", provider)
	manager := orchestrator.NewManager(registry, creds, logger)

	cfg := orchestrator.DiscoveryConfig{
		Provider:        provider,
		AccountID:       scanAccountID,
		SubscriptionID:  scanSubscriptionID,
		Regions:         splitCSV(scanRegions),
		ExcludeRegions:  splitCSV(scanExcludeRegions),
		Services:        optionalCSV(scanServices),
		ExcludeServices: splitCSV(scanExcludeServices),
		Concurrency:     scanConcurrency,
		Timeout:         scanTimeout,
	}

	ctx := context.Background()
	sessionID, err := manager.StartDiscovery(ctx, cfg, func(p inventory.Progress) {
		message.Info("region=%s service=%s regionsScanned=%d/%d servicesScanned=%d/%d resources=%d",
			p.CurrentRegion, p.CurrentService, p.RegionsScanned, p.TotalRegions, p.ServicesScanned, p.TotalServices, p.ResourcesFound)
	})
	if err != nil {
		return fmt.Errorf("starting discovery: %w", err)
	}

	message.Section("discoverctl scan: %s", sessionID)

	for {
		progress, err := manager.GetProgress(sessionID)
		if err != nil {
			return err
		}
		if progress.Status == inventory.StatusCompleted || progress.Status == inventory.StatusFailed {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	progress, _ := manager.GetProgress(sessionID)
	if progress.Status == inventory.StatusFailed {
		message.Error("discovery failed after %d/%d regions", progress.RegionsScanned, progress.TotalRegions)
		for _, e := range progress.Errors {
			message.Error("  %s/%s %s: %s", e.Service, e.Region, e.Operation, e.Message)
		}
		return fmt.Errorf("discovery session %s failed", sessionID)
	}

	inv, err := manager.GetInventory(sessionID)
	if err != nil {
		return err
	}

	message.Success("discovered %d resources across %d region(s), %d error(s)",
		inv.Summary.TotalResources, len(inv.Regions), len(inv.Metadata.Errors))

	out, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling inventory: %w", err)
	}

	if scanOutputPath == "" {
		fmt.Println(string(out))
		return nil
	}
	return os.WriteFile(scanOutputPath, out, 0o644)
}

// buildProviderStack constructs the scanner registry and credential provider
// for the named cloud provider.
func buildProviderStack(provider string) (*scanner.Registry, credentials.Provider, error) {
	switch provider {
	case "aws":
		registry := scanner.NewRegistry()
		for _, s := range []scanner.ServiceScanner{
			scanaws.NewTaggingScanner(),
			scanaws.NewEC2Scanner(),
			scanaws.NewS3Scanner(),
			scanaws.NewRDSScanner(),
			scanaws.NewIAMScanner(),
		} {
			if err := registry.Register(s); err != nil {
				return nil, nil, err
			}
		}
		return registry, credentials.NewAWSProvider(scanAWSProfile, ""), nil

	case "azure":
		registry := scanner.NewRegistry()
		for _, s := range []scanner.ServiceScanner{
			scanazure.NewStorageScanner(scanSubscriptionID),
			scanazure.NewComputeScanner(scanSubscriptionID),
			scanazure.NewResourceGroupScanner(scanSubscriptionID),
		} {
			if err := registry.Register(s); err != nil {
				return nil, nil, err
			}
		}
		return registry, credentials.NewAzureProvider(scanSubscriptionID), nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q: must be aws or azure", provider)
	}
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// optionalCSV returns splitCSV's result unchanged: an empty input yields nil,
// which DiscoveryConfig.Services treats as "unset" (every registered
// scanner) rather than an explicit empty list.
func optionalCSV(s string) []string {
	return splitCSV(s)
}
