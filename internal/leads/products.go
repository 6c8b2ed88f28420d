package leads

import (
	"sort"

	"github.com/forkandfield/catersync/internal/tenants"
	"github.com/forkandfield/catersync/pkg/ezmanage"
)

// MappedProduct is one aggregated CRM product line.
type MappedProduct struct {
	ProductID string
	Quantity  int
}

// AggregateResult carries the mapped products plus every menu key that could
// not be resolved. Invalid keys are a diagnostic, never an abort.
type AggregateResult struct {
	Products    []MappedProduct
	InvalidKeys []string
}

// ProductMapper resolves ordered line items against a tenant's CRM product
// catalog, handling composite boxed-lunch items and add-on customizations.
type ProductMapper struct {
	profile *tenants.Profile
}

func NewProductMapper(profile *tenants.Profile) *ProductMapper {
	return &ProductMapper{profile: profile}
}

// Aggregate maps line items to CRM products, summing quantities per resolved
// product id. Composite items are expanded through their salad customizations
// and only applied when the customization quantities account for the whole
// line item; a shortfall discards the item's products and flags every
// candidate key instead, so garbled customization data can't silently
// under-count.
func (m *ProductMapper) Aggregate(lineItems []ezmanage.LineItem) AggregateResult {
	quantities := map[string]int{}
	var invalid []string

	for _, item := range lineItems {
		if item.Name == tenants.CompositeItemName {
			invalid = append(invalid, m.applyComposite(quantities, item)...)
		} else if id, ok := m.profile.ResolveMenuItem(item.Name); ok {
			quantities[id] += item.Quantity
		} else {
			invalid = append(invalid, item.Name)
		}

		for _, custo := range item.Customizations {
			if !m.profile.IsAddOnTarget(custo.TypeName) {
				continue
			}
			if id, ok := m.profile.ResolveAddOn(custo.TypeName); ok {
				quantities[id] += custo.Quantity
			} else {
				invalid = append(invalid, item.Name)
			}
		}
	}

	products := make([]MappedProduct, 0, len(quantities))
	for id, quantity := range quantities {
		products = append(products, MappedProduct{ProductID: id, Quantity: quantity})
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ProductID < products[j].ProductID })

	return AggregateResult{Products: products, InvalidKeys: invalid}
}

// applyComposite resolves a composite item's salad customizations and commits
// them only when their quantities sum to the item's own quantity. Returns the
// invalid keys recorded for this item.
func (m *ProductMapper) applyComposite(quantities map[string]int, item ezmanage.LineItem) []string {
	staged := map[string]int{}
	var candidateKeys []string
	accounted := 0

	for _, custo := range item.Customizations {
		if custo.TypeName != tenants.CompositeTypeName {
			continue
		}
		key := tenants.CompositeCatalogKey(custo.Name)
		candidateKeys = append(candidateKeys, key)
		if id, ok := m.profile.ResolveMenuItem(key); ok {
			staged[id] += custo.Quantity
			accounted += custo.Quantity
		}
	}

	if accounted != item.Quantity {
		return candidateKeys
	}
	for id, quantity := range staged {
		quantities[id] += quantity
	}
	return nil
}
