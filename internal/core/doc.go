// Package core holds the domain vocabulary shared by every connector package.
//
// It has no spreadsheet or transport dependencies beyond date-serial
// conversion, so the store, the search engine, the quote connector and the
// HTTP layer can all speak the same types.
//
// # Entity Registry
//
// Entity types (Customer, Supplier, Person, Project and the catalog-only
// types) are described by an [EntityDefinition]. Definitions are collected
// into an immutable [Registry] once at startup and passed to whoever needs
// them:
//
//	reg, err := core.NewRegistry(entities.Definitions()...)
//	def, ok := reg.Get(core.EntityCustomer)
//	native := reg.ToNative(core.EntityCustomer, "NAME") // "Nm"
//
// # Wire Encoding
//
// Values cross the CRM boundary as plain strings. [EncodeCell] turns a raw
// cell value into that string according to the field type and never fails;
// malformed cells degrade to zero values. [DecodeWire] goes the other way
// when writing.
//
// # Results and Errors
//
// Lifecycle operations report their outcome as a [Result] (Ok, OkWithInfo,
// Warning or Error) instead of returning an error. Hard failures wrap one of
// the sentinel errors ([ErrNotFound], [ErrInvalidSchema], [ErrValidation],
// [ErrInjectedFault], [ErrIO]) and are mapped to code-tagged user messages by
// [MapError]:
//
//   - SHEET001-SHEET003: document structure
//   - ROW001: missing record
//   - CONN001-CONN002: connection registry
//   - FILE001-FILE003: document files
//   - VAL001-VAL002: request validation
//   - FAULT001: injected faults
package core
