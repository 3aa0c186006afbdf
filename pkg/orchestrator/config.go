// Package orchestrator drives a discovery session from a DiscoveryConfig to
// an InfrastructureInventory: it resolves regions and services, runs the
// region×service scan matrix, dedups the results, and reports progress.
// Grounded on nebula's pkg/stages chain-of-stages worker loop and
// internal/registry session bookkeeping, generalized to spec.md §4.5's
// single sequential worker per session.
package orchestrator

import (
	"errors"
	"time"
)

// RegionsAll is the sentinel value for DiscoveryConfig.Regions meaning
// "enumerate every region the credential provider reports."
const RegionsAll = "all"

// DefaultConcurrency mirrors ratelimit.DefaultConfig's MaxConcurrent.
const DefaultConcurrency = 10

// DefaultMaxSessionAge is the TTL CleanupSessions sweeps against when the
// caller does not specify one.
const DefaultMaxSessionAge = 24 * time.Hour

// DiscoveryConfig is the input to StartDiscovery, per spec.md §4.5/§6.
type DiscoveryConfig struct {
	// Provider is a caller-supplied label ("aws", "azure") carried through
	// to the resulting Inventory.Provider field. The orchestrator itself is
	// provider-agnostic; it never branches on this value.
	Provider       string
	AccountID      string
	SubscriptionID string

	// Regions is either a literal list of region names or the single
	// element []string{RegionsAll}.
	Regions        []string
	ExcludeRegions []string

	// Services, if nil, defaults to every registered scanner's name.
	Services        []string
	ExcludeServices []string

	// Concurrency overrides the rate limiter's MaxConcurrent. Zero means
	// use the rate limiter's own default.
	Concurrency int

	// Timeout arms a wall-clock deadline on the session. Zero means no
	// deadline; the session's context is not derived from the context
	// passed to StartDiscovery, so that context's deadline does not apply.
	Timeout time.Duration
}

// isRegionsAll reports whether the config requests full region enumeration.
func (c DiscoveryConfig) isRegionsAll() bool {
	return len(c.Regions) == 1 && c.Regions[0] == RegionsAll
}

var (
	// ErrInvalidCredentials is returned by StartDiscovery when the
	// credential provider rejects the configured credential. Fatal at
	// setup; no session is created.
	ErrInvalidCredentials = errors.New("orchestrator: invalid credentials")
	// ErrNoRegions is returned when the resolved region list is empty
	// after exclusions. Fatal at setup; no session is created.
	ErrNoRegions = errors.New("orchestrator: no regions to scan after exclusions")
	// ErrNoAccountOrSubscription is returned when neither the config nor
	// the credential provider's default supplies an account/subscription
	// id.
	ErrNoAccountOrSubscription = errors.New("orchestrator: no account or subscription id available")
	// ErrSessionNotFound is returned by the read/cancel operations for an
	// unknown or expired session id.
	ErrSessionNotFound = errors.New("orchestrator: session not found")
	// ErrSessionNotRunning reports that a session is not in_progress.
	// CancelDiscovery does not return it: cancelling a pending or finished
	// session is a no-op that returns nil.
	ErrSessionNotRunning = errors.New("orchestrator: session is not in progress")
)

func subtract(list, exclude []string) []string {
	if len(exclude) == 0 {
		return append([]string(nil), list...)
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		excluded[e] = struct{}{}
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if _, skip := excluded[v]; !skip {
			out = append(out, v)
		}
	}
	return out
}

func intersectPreservingOrder(wanted, registered []string) []string {
	known := make(map[string]struct{}, len(registered))
	for _, r := range registered {
		known[r] = struct{}{}
	}
	out := make([]string, 0, len(wanted))
	for _, w := range wanted {
		if _, ok := known[w]; ok {
			out = append(out, w)
		}
	}
	return out
}

// taggingServiceName is the coarse cross-service scanner's registered name
// (pkg/scanner/aws.TaggingScanner.ServiceName()). The orchestrator pins it
// to the front of every per-region service run regardless of registration
// or --services order, so Dedup's later-wins-on-scalars rule always lets
// the richer service-specific view supersede its thin one, per spec.md §4.5
// and §8 scenario 3 — this must hold independent of how a caller wires up
// its ScannerRegistry.
const taggingServiceName = "tagging"

// taggingFirst moves taggingServiceName to the front of services, preserving
// the relative order of everything else.
func taggingFirst(services []string) []string {
	out := make([]string, 0, len(services))
	found := false
	for _, s := range services {
		if s == taggingServiceName {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		return out
	}
	return append([]string{taggingServiceName}, out...)
}
