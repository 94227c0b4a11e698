// Package entities defines the entity types the connector knows about.
//
// Call Default (or NewRegistry with Definitions) once at startup and pass the
// resulting registry to the packages that need it.
package entities

import "github.com/JonMunkholm/sheetlink/internal/core"

// Sheet ordinals of the quote workbook.
const (
	OrdinalCapabilities      = 0
	OrdinalAddresses         = 1
	OrdinalPriceLists        = 2
	OrdinalProducts          = 3
	OrdinalQuotes            = 4
	OrdinalOrders            = 5
	OrdinalPaymentTerms      = 6
	OrdinalPaymentTypes      = 7
	OrdinalDeliveryTerms     = 8
	OrdinalDeliveryTypes     = 9
	OrdinalProductCategories = 10
	OrdinalProductFamilies   = 11
	OrdinalProductTypes      = 12
)

// Definitions returns every entity definition, actors first.
func Definitions() []core.EntityDefinition {
	return []core.EntityDefinition{
		customer(),
		supplier(),
		person(),
		project(),
		product(),
		priceList(),
		address(),
		listType(core.EntityPaymentTerm, "Payment terms", OrdinalPaymentTerms),
		listType(core.EntityPaymentType, "Payment types", OrdinalPaymentTypes),
		listType(core.EntityDeliveryTerm, "Delivery terms", OrdinalDeliveryTerms),
		listType(core.EntityDeliveryType, "Delivery types", OrdinalDeliveryTypes),
		listType(core.EntityProductCategory, "Product categories", OrdinalProductCategories),
		listType(core.EntityProductFamily, "Product families", OrdinalProductFamilies),
		listType(core.EntityProductType, "Product types", OrdinalProductTypes),
	}
}

// NewRegistry builds a registry from Definitions.
func NewRegistry() (*core.Registry, error) {
	return core.NewRegistry(Definitions()...)
}

// Default builds the registry and panics if the static definitions are invalid.
func Default() *core.Registry {
	return core.MustRegistry(Definitions()...)
}
