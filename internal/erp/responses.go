package erp

import "github.com/JonMunkholm/sheetlink/internal/core"

// FieldsResponse carries a field catalog.
type FieldsResponse struct {
	core.Result
	Fields []core.FieldMetadata `json:"fields"`
}

// StringsResponse carries a list of names or keys.
type StringsResponse struct {
	core.Result
	Items []string `json:"items"`
}

// ActorsResponse carries the actors found by a read or search.
type ActorsResponse struct {
	core.Result
	Actors []*core.Actor `json:"actors"`
}

// ActorResponse carries a single actor.
type ActorResponse struct {
	core.Result
	Actor *core.Actor `json:"actor,omitempty"`
}

// SavedActor is the outcome of saving one actor.
type SavedActor struct {
	Actor  *core.Actor `json:"actor,omitempty"`
	Result core.Result `json:"result"`
}

// SaveResponse carries one outcome per saved actor, in request order.
type SaveResponse struct {
	core.Result
	Actors []SavedActor `json:"actors"`
}

// ListResponse carries list items.
type ListResponse struct {
	core.Result
	Items []core.ListItem `json:"items"`
}

// Closed explanations for a document that could not be opened.
const (
	connectionClosedUser = "Connection closed."
	connectionClosedTech = "Could not open the Excel document of this connection"
)

func closed(err error) core.Result {
	return core.Warn(connectionClosedUser, connectionClosedTech+": "+err.Error())
}
