package fault

import (
	"github.com/JonMunkholm/sheetlink/internal/core"
)

// Operation describes the flags and canned explanations of one gated
// connector operation. An empty flag name means the operation has no such
// flag.
type Operation struct {
	Name   string
	Cannot string
	Fail   string
	Warn   string
	Need   string

	CannotMessage string
	FailUser      string
	FailTech      string
	WarnUser      string
	WarnTech      string
}

// Gated operations.
var (
	OpStart = Operation{
		Name: "Start", Cannot: "cannot_start", Fail: "fail_start", Warn: "warn_start",
		CannotMessage: "Cannot_Start: the Excel connector was told not to start.",
		FailUser:      "Fail_Start: the Excel connector could not start.",
		FailTech:      "Fail_Start: start-up failed because fail_start is set.",
		WarnUser:      "Warn_Start: the Excel connector started with reduced functionality.",
		WarnTech:      "Warn_Start: start-up completed with warn_start set.",
	}
	OpCreateQuote = Operation{
		Name: "CreateQuote", Cannot: "cannot_create", Fail: "fail_create", Warn: "warn_create",
		CannotMessage: "Cannot_Create_Quote: quotes cannot be created in this workbook.",
		FailUser:      "Fail_Create_Quote: the quote could not be registered.",
		FailTech:      "Fail_Create_Quote: quote registration failed because fail_create is set.",
		WarnUser:      "Warn_Create_Quote: the quote was registered with warnings.",
		WarnTech:      "Warn_Create_Quote: warn_create is set.",
	}
	OpCreateVersion = Operation{
		Name: "CreateVersion", Cannot: "cannot_create_version", Fail: "fail_create_version", Warn: "warn_create_version",
		CannotMessage: "Cannot_Create_Version: quote versions cannot be created in this workbook.",
		FailUser:      "Fail_Create_Version: the quote version could not be registered.",
		FailTech:      "Fail_Create_Version: fail_create_version is set.",
		WarnUser:      "Warn_Create_Version: the quote version was registered with warnings.",
		WarnTech:      "Warn_Create_Version: warn_create_version is set.",
	}
	OpCreateAlternative = Operation{
		Name: "CreateAlternative", Cannot: "cannot_create_alternative", Fail: "fail_create_alternative", Warn: "warn_create_alternative",
		CannotMessage: "Cannot_Create_Alternative: alternatives cannot be created in this workbook.",
		FailUser:      "Fail_Create_Alternative: the alternative could not be registered.",
		FailTech:      "Fail_Create_Alternative: fail_create_alternative is set.",
		WarnUser:      "Warn_Create_Alternative: the alternative was registered with warnings.",
		WarnTech:      "Warn_Create_Alternative: warn_create_alternative is set.",
	}
	OpFind = Operation{
		Name: "Find", Cannot: "cannot_find",
		CannotMessage: "Cannot_Find: unable to connect to the product catalog.",
	}
	OpProduct = Operation{
		Name: "Product", Cannot: "cannot_product", Fail: "fail_product", Warn: "warn_product",
		CannotMessage: "Cannot_Product: product details are unavailable.",
		FailUser:      "Fail_Product: the product is not available.",
		FailTech:      "Fail_Product: fail_product is set.",
		WarnUser:      "Warn_Product: the product has limited availability.",
		WarnTech:      "Warn_Product: warn_product is set.",
	}
	OpSave = Operation{
		Name: "Save", Cannot: "cannot_save",
		CannotMessage: "Cannot_Save: the quote cannot be saved to the ERP system.",
	}
	OpDelete = Operation{
		Name: "Delete", Cannot: "cannot_delete",
		CannotMessage: "Cannot_Delete: the quote cannot be deleted in the ERP system.",
	}
	OpRecalc = Operation{
		Name: "Recalc", Cannot: "cannot_recalc", Fail: "fail_recalc", Warn: "warn_recalc",
		CannotMessage: "Cannot_Recalc: the alternative cannot be recalculated.",
		FailUser:      "Fail_Recalc: recalculation failed.",
		FailTech:      "Fail_Recalc: divide by zero while recalculating.",
		WarnUser:      "Warn_Recalc: prices changed during recalculation.",
		WarnTech:      "Warn_Recalc: warn_recalc is set.",
	}
	OpValidateVersion = Operation{
		Name: "ValidateVersion", Cannot: "cannot_validate_ver", Fail: "fail_validate_ver", Warn: "warn_validate_ver", Need: "need_validate_ver",
		CannotMessage: "Cannot_Validate_Version: the quote version cannot be validated.",
		FailUser:      "Fail_Validate_Version: the quote version is not valid.",
		FailTech:      "Fail_Validate_Version: fail_validate_ver is set.",
		WarnUser:      "Warn_Validate_Version: the quote version has warnings.",
		WarnTech:      "Warn_Validate_Version: warn_validate_ver is set.",
	}
	OpValidateAlternative = Operation{
		Name: "ValidateAlternative", Cannot: "cannot_validate_alt", Fail: "fail_validate_alt", Warn: "warn_validate_alt", Need: "need_validate_alt",
		CannotMessage: "Cannot_Validate_Alternative: the alternative cannot be validated.",
		FailUser:      "Fail_Validate_Alternative: the alternative is not valid.",
		FailTech:      "Fail_Validate_Alternative: fail_validate_alt is set.",
		WarnUser:      "Warn_Validate_Alternative: the alternative has warnings.",
		WarnTech:      "Warn_Validate_Alternative: warn_validate_alt is set.",
	}
	OpValidateLine = Operation{
		Name: "ValidateLine", Cannot: "cannot_validate_line", Fail: "fail_validate_line", Warn: "warn_validate_line", Need: "need_validate_line",
		CannotMessage: "Cannot_Validate_Line: the quote line cannot be validated.",
		FailUser:      "Fail_Validate_Line: the quote line is not valid.",
		FailTech:      "Fail_Validate_Line: fail_validate_line is set.",
		WarnUser:      "Warn_Validate_Line: the quote line has warnings.",
		WarnTech:      "Warn_Validate_Line: warn_validate_line is set.",
	}
	OpUpdate = Operation{
		Name: "Update", Cannot: "cannot_update", Fail: "fail_update", Warn: "warn_update",
		CannotMessage: "Cannot_Update: prices cannot be updated.",
		FailUser:      "Fail_Update: updating prices failed.",
		FailTech:      "Fail_Update: fail_update is set.",
		WarnUser:      "Warn_Update: prices were updated with warnings.",
		WarnTech:      "Warn_Update: warn_update is set.",
	}
	OpSendQuote = Operation{
		Name: "SendQuote", Cannot: "cannot_send_quote", Fail: "fail_send_quote", Warn: "warn_send_quote",
		CannotMessage: "Cannot_Send_Quote: the quote cannot be registered as sent.",
		FailUser:      "Fail_Send_Quote: registering the sent quote failed.",
		FailTech:      "Fail_Send_Quote: fail_send_quote is set.",
		WarnUser:      "Warn_Send_Quote: the sent quote was registered with warnings.",
		WarnTech:      "Warn_Send_Quote: warn_send_quote is set.",
	}
	OpPlaceOrder = Operation{
		Name: "PlaceOrder", Cannot: "cannot_place_order", Fail: "fail_place_order",
		CannotMessage: "Cannot_Place_Order: orders cannot be placed.",
		FailUser:      "Fail_Place_Order: the order was rejected.",
		FailTech:      "Fail_Place_Order: fail_place_order is set.",
	}
	OpOrderState = Operation{
		Name: "OrderState", Cannot: "cannot_order_state", Fail: "fail_order_state", Warn: "warn_order_state",
		CannotMessage: "Cannot_Order_State: the order state cannot be read.",
		FailUser:      "Fail_Order_State: reading the order state failed.",
		FailTech:      "Fail_Order_State: fail_order_state is set.",
		WarnUser:      "Warn_Order_State: the order state may be out of date.",
		WarnTech:      "Warn_Order_State: warn_order_state is set.",
	}
)

// Operations lists every gated operation.
func Operations() []Operation {
	return []Operation{
		OpStart, OpCreateQuote, OpCreateVersion, OpCreateAlternative, OpFind, OpProduct,
		OpSave, OpDelete, OpRecalc, OpValidateVersion, OpValidateAlternative, OpValidateLine,
		OpUpdate, OpSendQuote, OpPlaceOrder, OpOrderState,
	}
}

// Fault is the error raised when a cannot_ flag aborts an operation.
type Fault struct {
	Operation string
	Flag      string
	Message   string
}

func (f *Fault) Error() string {
	return f.Message
}

// Is makes errors.Is(err, core.ErrInjectedFault) hold for a *Fault.
func (f *Fault) Is(target error) bool {
	return target == core.ErrInjectedFault
}

// Verdict is the outcome a flag set imposes on an operation's result.
type Verdict int

const (
	Normal Verdict = iota
	Warned
	Failed
)

// Injector gates operations on a capability map.
type Injector struct {
	caps Capabilities
}

// New returns an Injector over caps.
func New(caps Capabilities) *Injector {
	if caps == nil {
		caps = Capabilities{}
	}
	return &Injector{caps: caps}
}

// Capabilities returns the underlying capability map.
func (i *Injector) Capabilities() Capabilities {
	return i.caps
}

// Can reports a capability or flag through the default table.
func (i *Injector) Can(name string) bool {
	return i.caps.Can(name)
}

func (i *Injector) flag(name string) bool {
	return name != "" && i.caps.Can(name)
}

// Enter returns a *Fault when op's cannot flag is set. Call it before any
// side effect.
func (i *Injector) Enter(op Operation) error {
	if !i.flag(op.Cannot) {
		return nil
	}
	return &Fault{Operation: op.Name, Flag: op.Cannot, Message: op.CannotMessage}
}

// Verdict returns what the fail and warn flags of op impose.
func (i *Injector) Verdict(op Operation) Verdict {
	switch {
	case i.flag(op.Fail):
		return Failed
	case i.flag(op.Warn):
		return Warned
	default:
		return Normal
	}
}

// NeedsValidation reports whether op's need flag is set.
func (i *Injector) NeedsValidation(op Operation) bool {
	return i.flag(op.Need)
}

// Apply marks r according to the verdict for op and returns the verdict.
// A Normal verdict leaves r untouched.
func (i *Injector) Apply(op Operation, r *core.Result) Verdict {
	v := i.Verdict(op)
	switch v {
	case Failed:
		*r = core.Fail(op.FailUser, op.FailTech)
	case Warned:
		if r.State != core.StateError {
			*r = core.Warn(op.WarnUser, op.WarnTech)
		}
	}
	return v
}

// Status returns the line/alternative status and reason for op, for results
// that carry a status per item instead of a Result.
func (i *Injector) Status(op Operation) (core.State, string) {
	switch i.Verdict(op) {
	case Failed:
		return core.StateError, op.FailUser
	case Warned:
		return core.StateWarning, op.WarnUser
	default:
		return core.StateOK, ""
	}
}
