package core

import (
	"fmt"
	"strings"
)

// Well-known column names in actor sheets.
const (
	IDColumn           = "ID"
	LastModifiedColumn = "LastModified"
	ParentIDColumn     = "ParentID"
	ParentTypeColumn   = "ParentType"
)

// Restriction keys that address the parent of a record rather than a field.
const (
	ParentErpKeyAlias    = "PARENT_ERPKEY"
	ParentActorTypeAlias = "PARENT_ACTORTYPE"
)

// FieldType is the declared type of a field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldDouble
	FieldDatetime
	FieldCheckbox
	FieldPassword
	FieldList
	FieldLabel
)

var fieldTypeNames = [...]string{"Text", "Integer", "Double", "Datetime", "Checkbox", "Password", "List", "Label"}

func (t FieldType) String() string {
	if int(t) < 0 || int(t) >= len(fieldTypeNames) {
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
	return fieldTypeNames[t]
}

// MarshalText renders the type name.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts a type name in any case.
func (t *FieldType) UnmarshalText(b []byte) error {
	for i, name := range fieldTypeNames {
		if strings.EqualFold(name, string(b)) {
			*t = FieldType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown field type %q: %w", b, ErrValidation)
}

// Access is how the CRM platform may treat a field.
type Access int

const (
	AccessNormal Access = iota
	AccessReadOnly
	AccessMandatory
)

func (a Access) String() string {
	switch a {
	case AccessReadOnly:
		return "ReadOnly"
	case AccessMandatory:
		return "Mandatory"
	default:
		return "Normal"
	}
}

// MarshalText renders the access name.
func (a Access) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// FieldMetadata describes one field of an entity type.
type FieldMetadata struct {
	Key          string    `json:"key"`
	DisplayName  string    `json:"displayName"`
	Description  string    `json:"description,omitempty"`
	Type         FieldType `json:"type"`
	Access       Access    `json:"access"`
	MaxLength    int       `json:"maxLength,omitempty"`
	ListName     string    `json:"listName,omitempty"`
	DefaultValue string    `json:"defaultValue,omitempty"`
	Rank         int       `json:"rank,omitempty"`
}

// EntityType names a kind of record.
type EntityType string

const (
	EntityCustomer        EntityType = "Customer"
	EntitySupplier        EntityType = "Supplier"
	EntityPerson          EntityType = "Person"
	EntityProject         EntityType = "Project"
	EntityProduct         EntityType = "Product"
	EntityPriceList       EntityType = "PriceList"
	EntityAddress         EntityType = "Address"
	EntityPaymentTerm     EntityType = "PaymentTerm"
	EntityPaymentType     EntityType = "PaymentType"
	EntityDeliveryTerm    EntityType = "DeliveryTerm"
	EntityDeliveryType    EntityType = "DeliveryType"
	EntityProductCategory EntityType = "ProductCategory"
	EntityProductFamily   EntityType = "ProductFamily"
	EntityProductType     EntityType = "ProductType"
)

// Entity groups.
const (
	GroupActor   = "Actor"
	GroupCatalog = "Catalog"
)

// EntityDefinition bundles everything known about one entity type.
type EntityDefinition struct {
	Type  EntityType
	Group string // GroupActor or GroupCatalog
	Label string

	// Sheet is the sheet name for actor types. Catalog types are addressed
	// by Ordinal instead.
	Sheet   string
	Ordinal int

	// Fields are keyed by native column name.
	Fields []FieldMetadata

	// Mapping is the authoring table: native column name -> canonical key.
	// Columns not listed map to themselves.
	Mapping map[string]string

	// NumberColumn receives the allocated id on create, with NumberPrefix
	// prepended (e.g. "PROJ12").
	NumberColumn string
	NumberPrefix string

	// HasParent marks types stored with ParentID/ParentType columns.
	HasParent bool
}

// Actor is a decoded business record as exchanged with the CRM platform.
type Actor struct {
	ActorType       EntityType        `json:"actorType"`
	ErpKey          string            `json:"erpKey"`
	LastModified    string            `json:"lastModified,omitempty"`
	ParentErpKey    string            `json:"parentErpKey,omitempty"`
	ParentActorType string            `json:"parentActorType,omitempty"`
	FieldValues     map[string]string `json:"fieldValues"`
}

// ListItem is one entry of a selection list.
type ListItem struct {
	Key                string `json:"key"`
	DisplayValue       string `json:"displayValue"`
	DisplayDescription string `json:"displayDescription,omitempty"`
}
