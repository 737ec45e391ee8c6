package marketplace

import (
	"fmt"

	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/domain"
)

// ImmutableX formats URLs and flat metadata for ImmutableX-style marketplaces
type ImmutableX struct {
	baseURL string
}

var _ chain.Marketplace = (*ImmutableX)(nil)

// NewImmutableX creates an ImmutableX-style formatter. The base URL is used as is
// and is expected to end with a slash.
func NewImmutableX(baseURL string) *ImmutableX {
	return &ImmutableX{baseURL: baseURL}
}

// AssetURL returns {base}inventory/{contract}/{token id}
func (m *ImmutableX) AssetURL(_ domain.Network, contract string, tokenID string) string {
	return fmt.Sprintf("%sinventory/%s/%s", m.baseURL, contract, tokenID)
}

// Metadata sets auto-selected defaults as top level keys, then every caller attribute over them.
// An empty caller value still replaces the default.
func (m *ImmutableX) Metadata(name string, image string, schema domain.AttributeSchema, attributes map[string]string) map[string]any {
	metadata := map[string]any{
		"name":  name,
		"image": image,
	}

	for n, opts := range schema {
		if opts.AutoSelected {
			metadata[n] = opts.AutoSelectedValue
		}
	}
	for n, v := range attributes {
		metadata[n] = v
	}

	return metadata
}
