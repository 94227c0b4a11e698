package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/core/entities"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

func customerRecord() *sheet.Record {
	rec := sheet.NewRecord("Customer", 2)
	rec.Set("ID", 7.0)
	rec.Set("CustNo", 7.0)
	rec.Set("Nm", "Smith & Co")
	rec.Set("City", "Oslo")
	rec.Set("CustGr", 2.0)
	rec.Set("IntField", 3.6)
	rec.Set("DoubleField", "2.5")
	rec.Set("DateField", 45366.0)
	rec.Set("CheckboxField", true)
	rec.Set("LastModified", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	return rec
}

func TestDecodeRow(t *testing.T) {
	m := New(entities.Default())

	actor := m.DecodeRow(customerRecord(), core.EntityCustomer, []string{
		"NAME", "POSTALCITY", "CustGr", "IntField", "DoubleField", "DateField", "CheckboxField", "POSTALZIP",
	})
	require.NotNil(t, actor)

	assert.Equal(t, "7", actor.ErpKey)
	assert.Equal(t, "2026-01-02T03:04:05", actor.LastModified)
	assert.Equal(t, map[string]string{
		"NAME":          "Smith & Co",
		"POSTALCITY":    "Oslo",
		"CustGr":        "2",
		"IntField":      "4",
		"DoubleField":   "2.5",
		"DateField":     "2024-03-15T00:00:00",
		"CheckboxField": "1",
	}, actor.FieldValues, "POSTALZIP is not a column so it is left out")
}

func TestDecodeRow_Empty(t *testing.T) {
	m := New(entities.Default())

	assert.Nil(t, m.DecodeRow(nil, core.EntityCustomer, []string{"NAME"}))
	assert.Nil(t, m.DecodeRow(sheet.NewRecord("Customer", 2), core.EntityCustomer, nil))
}

func TestDecodeRow_MissingLastModified(t *testing.T) {
	m := New(entities.Default())

	rec := sheet.NewRecord("Customer", 2)
	rec.Set("ID", 1.0)
	rec.Set("LastModified", "yesterday")

	actor := m.DecodeRow(rec, core.EntityCustomer, nil)
	require.NotNil(t, actor)
	assert.Equal(t, "0001-01-01T00:00:00", actor.LastModified)
	assert.Empty(t, actor.FieldValues)
}

func TestDecodeRow_PersonParent(t *testing.T) {
	m := New(entities.Default())

	rec := sheet.NewRecord("Person", 2)
	rec.Set("ID", 3.0)
	rec.Set("FirstName", "Ada")
	rec.Set("ParentID", 12.0)
	rec.Set("ParentType", "Customer")

	actor := m.DecodeRow(rec, core.EntityPerson, []string{"FIRSTNAME"})
	require.NotNil(t, actor)
	assert.Equal(t, "12", actor.ParentErpKey)
	assert.Equal(t, "Customer", actor.ParentActorType)
	assert.Equal(t, "Ada", actor.FieldValues["FIRSTNAME"])
}

func TestEncodeFields(t *testing.T) {
	m := New(entities.Default())

	got := m.EncodeFields(core.EntityCustomer, map[string]string{
		"NAME":          "Acme",
		"IntField":      "12",
		"DoubleField":   "1.5",
		"CheckboxField": "1",
		"Unknown":       "kept",
	})

	assert.Equal(t, "Acme", got["Nm"])
	assert.Equal(t, 12, got["IntField"])
	assert.Equal(t, 1.5, got["DoubleField"])
	assert.Equal(t, true, got["CheckboxField"])
	assert.Equal(t, "kept", got["Unknown"])
}

func TestFieldsFor_Unknown(t *testing.T) {
	m := New(entities.Default())

	_, err := m.FieldsFor("Invoice")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
