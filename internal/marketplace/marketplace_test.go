package marketplace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/marketplace"
)

func testSchema() domain.AttributeSchema {
	return domain.AttributeSchema{
		"rarity": {Type: domain.AttributeTypeText, AutoSelected: true, AutoSelectedValue: "common"},
		"color":  {Type: domain.AttributeTypeText, Values: []string{"red", "blue"}},
		"level":  {Type: domain.AttributeTypeRange},
	}
}

func TestOpenSea_AssetURL(t *testing.T) {
	m := marketplace.NewOpenSea("https://opensea.example/")

	url := m.AssetURL(domain.Network{Name: "polygon", Slug: "matic"}, "0xc0", "7")
	assert.Equal(t, "https://opensea.example/assets/matic/0xc0/7", url)

	url = m.AssetURL(domain.Network{Name: "polygon"}, "0xc0", "7")
	assert.Equal(t, "https://opensea.example/assets/polygon/0xc0/7", url)
}

func TestOpenSea_Metadata(t *testing.T) {
	m := marketplace.NewOpenSea("https://opensea.example")

	metadata := m.Metadata("Sword", "https://cdn.example/sword.png", testSchema(), map[string]string{
		"color":   "red",
		"rarity":  "legendary",
		"unknown": "x",
	})

	assert.Equal(t, "Sword", metadata["name"])
	assert.Equal(t, "https://cdn.example/sword.png", metadata["image"])
	assert.Equal(t, []marketplace.Trait{
		{TraitType: "rarity", Value: "common"},
		{TraitType: "color", Value: "red"},
	}, metadata["attributes"])
}

func TestImmutableX_AssetURL(t *testing.T) {
	m := marketplace.NewImmutableX("https://market.example/")
	assert.Equal(t, "https://market.example/inventory/0xc0/7", m.AssetURL(domain.Network{}, "0xc0", "7"))
}

func TestImmutableX_Metadata(t *testing.T) {
	m := marketplace.NewImmutableX("https://market.example/")

	metadata := m.Metadata("Sword", "https://cdn.example/sword.png", testSchema(), map[string]string{
		"rarity": "legendary",
		"level":  "",
		"extra":  "glow",
	})

	assert.Equal(t, map[string]any{
		"name":   "Sword",
		"image":  "https://cdn.example/sword.png",
		"rarity": "legendary",
		"level":  "",
		"extra":  "glow",
	}, metadata)
}

func TestImmutableX_Metadata_EmptyValueReplacesDefault(t *testing.T) {
	m := marketplace.NewImmutableX("https://market.example/")

	metadata := m.Metadata("Sword", "https://cdn.example/sword.png", testSchema(), map[string]string{
		"rarity": "",
	})
	assert.Equal(t, "", metadata["rarity"])

	metadata = m.Metadata("Sword", "https://cdn.example/sword.png", testSchema(), nil)
	assert.Equal(t, "common", metadata["rarity"])
}
