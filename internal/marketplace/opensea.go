package marketplace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/domain"
)

// Trait is one entry of an OpenSea-style attributes list
type Trait struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// OpenSea formats URLs and metadata for OpenSea-style marketplaces
type OpenSea struct {
	baseURL string
}

var _ chain.Marketplace = (*OpenSea)(nil)

// NewOpenSea creates an OpenSea-style formatter rooted at baseURL
func NewOpenSea(baseURL string) *OpenSea {
	return &OpenSea{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// AssetURL returns {base}/assets/{network slug}/{contract}/{token id}
func (m *OpenSea) AssetURL(network domain.Network, contract string, tokenID string) string {
	slug := network.Slug
	if slug == "" {
		slug = network.Name
	}
	return fmt.Sprintf("%s/assets/%s/%s/%s", m.baseURL, slug, contract, tokenID)
}

// Metadata lists auto-selected attributes first, then caller values for the selectable ones.
// Attributes outside the schema are dropped.
func (m *OpenSea) Metadata(name string, image string, schema domain.AttributeSchema, attributes map[string]string) map[string]any {
	names := sortedNames(schema)

	traits := make([]Trait, 0, len(schema))
	for _, n := range names {
		if opts := schema[n]; opts.AutoSelected {
			traits = append(traits, Trait{TraitType: n, Value: opts.AutoSelectedValue})
		}
	}
	for _, n := range names {
		if schema[n].AutoSelected {
			continue
		}
		if v, ok := attributes[n]; ok {
			traits = append(traits, Trait{TraitType: n, Value: v})
		}
	}

	return map[string]any{
		"name":       name,
		"image":      image,
		"attributes": traits,
	}
}

func sortedNames(schema domain.AttributeSchema) []string {
	names := make([]string, 0, len(schema))
	for n := range schema {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
