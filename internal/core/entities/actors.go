package entities

import "github.com/JonMunkholm/sheetlink/internal/core"

// companyMapping is shared by Customer and Supplier.
func companyMapping() map[string]string {
	return map[string]string{
		"Nm":   "NAME",
		"Ad1":  "POSTALAD1",
		"Ad2":  "POSTALAD2",
		"Zip":  "POSTALZIP",
		"City": "POSTALCITY",
	}
}

func companyFields(numberKey, numberLabel, groupKey, groupList, categoryKey, categoryList string) []core.FieldMetadata {
	return []core.FieldMetadata{
		{Key: numberKey, DisplayName: numberLabel, Type: core.FieldInteger, Access: core.AccessReadOnly, MaxLength: 4},
		{Key: "Nm", DisplayName: "Name", Type: core.FieldText, Access: core.AccessMandatory, MaxLength: 500},
		{Key: "Ad1", DisplayName: "Address 1", Type: core.FieldText, MaxLength: 500},
		{Key: "Ad2", DisplayName: "Address 2", Type: core.FieldText, MaxLength: 500},
		{Key: "Zip", DisplayName: "Zip code", Type: core.FieldText, MaxLength: 20},
		{Key: "City", DisplayName: "City", Type: core.FieldText, MaxLength: 50},
		{Key: groupKey, DisplayName: "Group", Type: core.FieldList, ListName: groupList},
		{Key: "IntField", DisplayName: "Integer field", Type: core.FieldInteger},
		{Key: "DoubleField", DisplayName: "Double field", Type: core.FieldDouble},
		{Key: "DateField", DisplayName: "Date field", Type: core.FieldDatetime},
		{Key: "CheckboxField", DisplayName: "Checkbox field", Type: core.FieldCheckbox},
		{Key: categoryKey, DisplayName: "Category", Type: core.FieldList, ListName: categoryList},
	}
}

func customer() core.EntityDefinition {
	return core.EntityDefinition{
		Type:         core.EntityCustomer,
		Group:        core.GroupActor,
		Label:        "Customer",
		Sheet:        "Customer",
		Ordinal:      -1,
		Fields:       companyFields("CustNo", "Customer number", "CustGr", "CustomerGroup", "CatErp", "CustomerCategory"),
		Mapping:      companyMapping(),
		NumberColumn: "CustNo",
	}
}

func supplier() core.EntityDefinition {
	return core.EntityDefinition{
		Type:         core.EntitySupplier,
		Group:        core.GroupActor,
		Label:        "Supplier",
		Sheet:        "Supplier",
		Ordinal:      -1,
		Fields:       companyFields("SupNo", "Supplier number", "SupGr", "SupplierGroup", "CatSupErp", "SupplierCategory"),
		Mapping:      companyMapping(),
		NumberColumn: "SupNo",
	}
}

func person() core.EntityDefinition {
	return core.EntityDefinition{
		Type:    core.EntityPerson,
		Group:   core.GroupActor,
		Label:   "Person",
		Sheet:   "Person",
		Ordinal: -1,
		Fields: []core.FieldMetadata{
			{Key: "PersonNo", DisplayName: "Person number", Type: core.FieldInteger, Access: core.AccessReadOnly, MaxLength: 4},
			{Key: "FirstName", DisplayName: "First name", Type: core.FieldText, MaxLength: 500},
			{Key: "LastName", DisplayName: "Last name", Type: core.FieldText, MaxLength: 500},
			{Key: "Address", DisplayName: "Address", Type: core.FieldText, MaxLength: 500},
			{Key: "Phone", DisplayName: "Phone", Type: core.FieldText, MaxLength: 50},
			{Key: "PersPos", DisplayName: "Position", Type: core.FieldList, ListName: "PersonPosition"},
			{Key: "PersType", DisplayName: "Type", Type: core.FieldList, ListName: "PersonType"},
		},
		Mapping: map[string]string{
			"FirstName": "FIRSTNAME",
			"LastName":  "LASTNAME",
			"Address":   "POSTALAD1",
			"Phone":     "PHONE_DIRECT",
		},
		NumberColumn: "PersonNo",
		HasParent:    true,
	}
}

func project() core.EntityDefinition {
	return core.EntityDefinition{
		Type:    core.EntityProject,
		Group:   core.GroupActor,
		Label:   "Project",
		Sheet:   "Project",
		Ordinal: -1,
		Fields: []core.FieldMetadata{
			{Key: "ProjNo", DisplayName: "Project number", Type: core.FieldText, Access: core.AccessReadOnly, MaxLength: 4},
			{Key: "Nm", DisplayName: "Name", Type: core.FieldText, Access: core.AccessMandatory, MaxLength: 500},
			{Key: "EndDate", DisplayName: "End date", Type: core.FieldDatetime},
			{Key: "Description", DisplayName: "Description", Type: core.FieldText, MaxLength: 5000},
			{Key: "ProjType", DisplayName: "Type", Type: core.FieldList, ListName: "ProjectType"},
			{Key: "ProjStatus", DisplayName: "Status", Type: core.FieldList, ListName: "ProjectStatus"},
		},
		Mapping: map[string]string{
			"Nm":          "NAME",
			"EndDate":     "ENDDATE",
			"Description": "TEXT",
		},
		NumberColumn: "ProjNo",
		NumberPrefix: "PROJ",
	}
}
