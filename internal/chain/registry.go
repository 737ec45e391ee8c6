package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/feral-file/ff-minter/internal/domain"
)

// Backend is the triple of collaborators serving one client kind
type Backend struct {
	Client      Client
	Custody     CustodyClient
	Marketplace Marketplace
}

// Backends holds one backend per client kind
type Backends struct {
	Default   Backend
	Immutable Backend
}

// Target is everything needed to act on one network
type Target struct {
	Network     domain.Network
	Client      Client
	Custody     CustodyClient
	Marketplace Marketplace
}

// Registry maps logical network names to their back-ends. It is immutable after construction
// and safe for concurrent use.
type Registry struct {
	networks map[string]domain.Network
	backends Backends
}

// NewRegistry validates the descriptors and checks that every client kind in use has a complete backend
func NewRegistry(networks []domain.Network, backends Backends) (*Registry, error) {
	r := &Registry{
		networks: make(map[string]domain.Network, len(networks)),
		backends: backends,
	}

	for _, n := range networks {
		if n.Name == "" {
			return nil, fmt.Errorf("network without name")
		}
		if _, ok := r.networks[n.Name]; ok {
			return nil, fmt.Errorf("duplicate network %q", n.Name)
		}

		b, err := r.backend(n.ClientKind)
		if err != nil {
			return nil, fmt.Errorf("network %q: %w", n.Name, err)
		}
		if b.Client == nil || b.Custody == nil || b.Marketplace == nil {
			return nil, fmt.Errorf("network %q: incomplete backend for client kind %q", n.Name, n.ClientKind)
		}

		r.networks[n.Name] = n
	}

	return r, nil
}

// ResolveNetwork returns the descriptor of a logical network name
func (r *Registry) ResolveNetwork(name string) (domain.Network, error) {
	n, ok := r.networks[name]
	if !ok {
		return domain.Network{}, fmt.Errorf("%w: %q", domain.ErrUnknownNetwork, name)
	}
	return n, nil
}

// Networks returns every descriptor ordered by name
func (r *Registry) Networks() []domain.Network {
	networks := make([]domain.Network, 0, len(r.networks))
	for _, n := range r.networks {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool { return networks[i].Name < networks[j].Name })
	return networks
}

// ClientFor returns the chain client of a client kind
func (r *Registry) ClientFor(kind domain.ClientKind) (Client, error) {
	b, err := r.backend(kind)
	if err != nil {
		return nil, err
	}
	return b.Client, nil
}

// CustodyFor returns the custody client of a client kind
func (r *Registry) CustodyFor(kind domain.ClientKind) (CustodyClient, error) {
	b, err := r.backend(kind)
	if err != nil {
		return nil, err
	}
	return b.Custody, nil
}

// MarketplaceFor returns the marketplace formatter of a client kind
func (r *Registry) MarketplaceFor(kind domain.ClientKind) (Marketplace, error) {
	b, err := r.backend(kind)
	if err != nil {
		return nil, err
	}
	return b.Marketplace, nil
}

// Resolve returns the network descriptor and its back-ends
func (r *Registry) Resolve(name string) (*Target, error) {
	n, err := r.ResolveNetwork(name)
	if err != nil {
		return nil, err
	}

	b, err := r.backend(n.ClientKind)
	if err != nil {
		return nil, err
	}

	return &Target{
		Network:     n,
		Client:      b.Client,
		Custody:     b.Custody,
		Marketplace: b.Marketplace,
	}, nil
}

func (r *Registry) backend(kind domain.ClientKind) (Backend, error) {
	switch kind {
	case domain.ClientKindDefault:
		return r.backends.Default, nil
	case domain.ClientKindImmutable:
		return r.backends.Immutable, nil
	default:
		return Backend{}, fmt.Errorf("%w: %q", domain.ErrUnknownClientKind, string(kind))
	}
}

// MetadataKey returns the blob key of a token metadata document.
// Direct-call contracts resolve token URIs per template; off-chain collections share one prefix per scope.
func MetadataKey(kind domain.ClientKind, scope string, templateShortID uint64, tokenID string) (string, error) {
	switch kind {
	case domain.ClientKindDefault:
		return fmt.Sprintf("games/%s/gameTokens/%d/%s", scope, templateShortID, tokenID), nil
	case domain.ClientKindImmutable:
		return fmt.Sprintf("games/%s/immutable/%s", scope, tokenID), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownClientKind, string(kind))
	}
}

// PublicURL joins a public base URL and a blob key
func PublicURL(baseURL string, key string) string {
	if baseURL == "" {
		return key
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}
