package entities

import "github.com/JonMunkholm/sheetlink/internal/core"

// Catalog entities are read positionally; their field keys name the columns
// in order.

func product() core.EntityDefinition {
	return core.EntityDefinition{
		Type:    core.EntityProduct,
		Group:   core.GroupCatalog,
		Label:   "Products",
		Ordinal: OrdinalProducts,
		Fields: []core.FieldMetadata{
			{Key: "pricelistKey", DisplayName: "Price list", Type: core.FieldText},
			{Key: "inAssortment", DisplayName: "In assortment", Type: core.FieldCheckbox},
			{Key: "inStock", DisplayName: "In stock", Type: core.FieldDouble},
			{Key: "productKey", DisplayName: "Product key", Type: core.FieldText, Access: core.AccessMandatory},
			{Key: "name", DisplayName: "Name", Type: core.FieldText},
			{Key: "description", DisplayName: "Description", Type: core.FieldText},
			{Key: "code", DisplayName: "Code", Type: core.FieldText},
			{Key: "quantityUnit", DisplayName: "Quantity unit", Type: core.FieldText},
			{Key: "priceUnit", DisplayName: "Price unit", Type: core.FieldText},
			{Key: "itemNumber", DisplayName: "Item number", Type: core.FieldText},
			{Key: "url", DisplayName: "URL", Type: core.FieldText},
			{Key: "categoryKey", DisplayName: "Category", Type: core.FieldList, ListName: "productcategory"},
			{Key: "familyKey", DisplayName: "Family", Type: core.FieldList, ListName: "productfamily"},
			{Key: "typeKey", DisplayName: "Type", Type: core.FieldList, ListName: "producttype"},
			{Key: "rights", DisplayName: "Rights", Type: core.FieldText},
			{Key: "rule", DisplayName: "Rule", Type: core.FieldText},
			{Key: "supplierCode", DisplayName: "Supplier code", Type: core.FieldText},
			{Key: "supplier", DisplayName: "Supplier", Type: core.FieldText},
			{Key: "vatInfo", DisplayName: "VAT info", Type: core.FieldText},
			{Key: "vat", DisplayName: "VAT", Type: core.FieldDouble},
			{Key: "unitCost", DisplayName: "Unit cost", Type: core.FieldDouble},
			{Key: "minimumPrice", DisplayName: "Minimum price", Type: core.FieldDouble},
			{Key: "listPrice", DisplayName: "List price", Type: core.FieldDouble},
			{Key: "thumbnail", DisplayName: "Thumbnail", Type: core.FieldText},
			{Key: "extraInfo", DisplayName: "Extra info", Type: core.FieldText},
			{Key: "extraField1", DisplayName: "Extra field 1", Type: core.FieldText},
			{Key: "extraField2", DisplayName: "Extra field 2", Type: core.FieldText},
			{Key: "extraField3", DisplayName: "Extra field 3", Type: core.FieldText},
			{Key: "extraField4", DisplayName: "Extra field 4", Type: core.FieldText},
			{Key: "extraField5", DisplayName: "Extra field 5", Type: core.FieldText},
			{Key: "image1", DisplayName: "Image 1", Type: core.FieldText},
			{Key: "image2", DisplayName: "Image 2", Type: core.FieldText},
		},
	}
}

func priceList() core.EntityDefinition {
	return core.EntityDefinition{
		Type:    core.EntityPriceList,
		Group:   core.GroupCatalog,
		Label:   "Price lists",
		Ordinal: OrdinalPriceLists,
		Fields: []core.FieldMetadata{
			{Key: "key", DisplayName: "Key", Type: core.FieldText, Access: core.AccessMandatory},
			{Key: "name", DisplayName: "Name", Type: core.FieldText},
			{Key: "description", DisplayName: "Description", Type: core.FieldText},
			{Key: "currency", DisplayName: "Currency", Type: core.FieldText},
			{Key: "validFrom", DisplayName: "Valid from", Type: core.FieldDatetime},
			{Key: "validTo", DisplayName: "Valid to", Type: core.FieldDatetime},
			{Key: "isActive", DisplayName: "Active", Type: core.FieldCheckbox},
		},
	}
}

func address() core.EntityDefinition {
	return core.EntityDefinition{
		Type:    core.EntityAddress,
		Group:   core.GroupCatalog,
		Label:   "Addresses",
		Ordinal: OrdinalAddresses,
		Fields: []core.FieldMetadata{
			{Key: "contactKey", DisplayName: "Contact", Type: core.FieldText, Access: core.AccessMandatory},
			{Key: "type", DisplayName: "Type", Type: core.FieldText},
			{Key: "line1", DisplayName: "Address 1", Type: core.FieldText},
			{Key: "line2", DisplayName: "Address 2", Type: core.FieldText},
			{Key: "line3", DisplayName: "Address 3", Type: core.FieldText},
			{Key: "city", DisplayName: "City", Type: core.FieldText},
			{Key: "zip", DisplayName: "Zip code", Type: core.FieldText},
			{Key: "countryCode", DisplayName: "Country code", Type: core.FieldText},
			{Key: "country", DisplayName: "Country", Type: core.FieldText},
		},
	}
}

func listType(t core.EntityType, label string, ordinal int) core.EntityDefinition {
	return core.EntityDefinition{
		Type:    t,
		Group:   core.GroupCatalog,
		Label:   label,
		Ordinal: ordinal,
		Fields: []core.FieldMetadata{
			{Key: "key", DisplayName: "Key", Type: core.FieldText, Access: core.AccessMandatory},
			{Key: "displayDescription", DisplayName: "Description", Type: core.FieldText},
			{Key: "displayValue", DisplayName: "Value", Type: core.FieldText},
		},
	}
}
