package catalog

import (
	"errors"
	"fmt"
)

// TypeTag identifies a concrete product variant in URLs and cart lines.
type TypeTag string

const (
	TagNotebook   TypeTag = "notebook"
	TagSmartphone TypeTag = "smartphone"
)

var ErrUnknownType = errors.New("unknown product type")

type kind struct {
	tag   TypeTag
	table string
	// slug of the only category products of this kind may be filed under
	category string
	new      func() Variant
}

// registry is the single place a product variant is registered.
var registry = []kind{
	{tag: TagNotebook, table: "notebooks", category: "notebooks", new: func() Variant { return &NoteBook{} }},
	{tag: TagSmartphone, table: "smartphones", category: "smartphones", new: func() Variant { return &Smartphone{HasSDSlot: true} }},
}

func lookup(tag TypeTag) (kind, error) {
	for _, k := range registry {
		if k.tag == tag {
			return k, nil
		}
	}
	return kind{}, fmt.Errorf("%w: %q", ErrUnknownType, tag)
}

func (k kind) newVariant() Variant {
	v := k.new()
	v.Base().Type = k.tag
	return v
}

// Tags returns every registered type tag in registration order.
func Tags() []TypeTag {
	tags := make([]TypeTag, 0, len(registry))
	for _, k := range registry {
		tags = append(tags, k.tag)
	}
	return tags
}

// New returns an empty variant for tag with its defaults applied.
func New(tag TypeTag) (Variant, error) {
	k, err := lookup(tag)
	if err != nil {
		return nil, err
	}
	return k.newVariant(), nil
}

// ProductURL is the canonical detail path of a product.
func ProductURL(tag TypeTag, slug string) string {
	return "/api/products/" + string(tag) + "/" + slug
}
