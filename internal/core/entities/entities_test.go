package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()

	assert.Equal(t, []core.EntityType{
		core.EntityCustomer, core.EntitySupplier, core.EntityPerson, core.EntityProject,
	}, reg.Actors())
	assert.Len(t, reg.ByGroup(core.GroupCatalog), 10)
	assert.Equal(t, 14, reg.Len())
}

func TestTranslation(t *testing.T) {
	reg := Default()

	tests := []struct {
		typ       core.EntityType
		native    string
		canonical string
	}{
		{core.EntityCustomer, "Nm", "NAME"},
		{core.EntityCustomer, "City", "POSTALCITY"},
		{core.EntitySupplier, "Ad2", "POSTALAD2"},
		{core.EntityPerson, "Phone", "PHONE_DIRECT"},
		{core.EntityProject, "Description", "TEXT"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.native, func(t *testing.T) {
			assert.Equal(t, tt.canonical, reg.ToCanonical(tt.typ, tt.native))
			assert.Equal(t, tt.native, reg.ToNative(tt.typ, tt.canonical))
		})
	}

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, "Nm", reg.ToNative(core.EntityCustomer, "name"))
		assert.Equal(t, "NAME", reg.ToCanonical(core.EntityCustomer, "NM"))
	})

	t.Run("identity fallback", func(t *testing.T) {
		assert.Equal(t, "CustGr", reg.ToNative(core.EntityCustomer, "CustGr"))
		assert.Equal(t, "Whatever", reg.ToCanonical(core.EntityPerson, "Whatever"))
	})
}

func TestFieldsAreCanonical(t *testing.T) {
	reg := Default()

	fields := reg.Fields(core.EntityCustomer)
	require.Len(t, fields, 12)

	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	assert.Equal(t, []string{
		"CustNo", "NAME", "POSTALAD1", "POSTALAD2", "POSTALZIP", "POSTALCITY",
		"CustGr", "IntField", "DoubleField", "DateField", "CheckboxField", "CatErp",
	}, keys)

	name, ok := reg.Field(core.EntityCustomer, "name")
	require.True(t, ok)
	assert.Equal(t, core.AccessMandatory, name.Access)
	assert.Equal(t, 500, name.MaxLength)

	group, ok := reg.Field(core.EntityCustomer, "custgr")
	require.True(t, ok)
	assert.Equal(t, core.FieldList, group.Type)
	assert.Equal(t, "CustomerGroup", group.ListName)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := core.NewRegistry(customer(), customer())
	assert.Error(t, err)

	def := customer()
	def.Fields = append(def.Fields, core.FieldMetadata{Key: "nm"})
	_, err = core.NewRegistry(def)
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	reg := Default()

	def, ok := reg.Lookup("person")
	require.True(t, ok)
	assert.True(t, def.HasParent)
	assert.Equal(t, "PersonNo", def.NumberColumn)

	_, ok = reg.Lookup("Invoice")
	assert.False(t, ok)
}
