package erp

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/logging"
	"github.com/JonMunkholm/sheetlink/internal/mapping"
	"github.com/JonMunkholm/sheetlink/internal/search"
	"github.com/JonMunkholm/sheetlink/internal/sheet"
)

// supportedActorTypes is the order actor types are advertised in.
var supportedActorTypes = []core.EntityType{
	core.EntityCustomer,
	core.EntitySupplier,
	core.EntityPerson,
	core.EntityProject,
}

// Connection serves the actor sheets of one workbook.
type Connection struct {
	id     uuid.UUID
	path   string
	mapper *mapping.Mapper
	opts   []sheet.Option
}

// ID returns the connection id.
func (c *Connection) ID() uuid.UUID {
	return c.id
}

// Path returns the workbook path.
func (c *Connection) Path() string {
	return c.path
}

func (c *Connection) open() (*sheet.Document, error) {
	return sheet.Open(c.path, c.opts...)
}

func (c *Connection) scoped(ctx context.Context) context.Context {
	return logging.WithConnection(ctx, c.id.String())
}

// actorFields returns the field catalog of an actor type. Catalog types are
// rejected.
func actorFields(m *mapping.Mapper, t core.EntityType) ([]core.FieldMetadata, error) {
	def, err := m.Definition(t)
	if err != nil {
		return nil, err
	}
	if def.Group != core.GroupActor {
		return nil, fmt.Errorf("unsupported actor type %q: %w", t, core.ErrNotFound)
	}
	return m.FieldsFor(t)
}

// Test opens and closes the workbook.
func (c *Connection) Test(ctx context.Context) core.Result {
	doc, err := c.open()
	if err != nil {
		logging.FromContext(c.scoped(ctx)).Debug("connection test failed", "file", c.path, "error", err)
		return closed(err)
	}
	doc.Close()
	return core.OK()
}

// SupportedActorTypes lists the actor types served.
func (c *Connection) SupportedActorTypes() StringsResponse {
	items := make([]string, len(supportedActorTypes))
	for i, t := range supportedActorTypes {
		items[i] = string(t)
	}
	return StringsResponse{Result: core.OK(), Items: items}
}

// ActorTypeFields returns the field catalog of actorType.
func (c *Connection) ActorTypeFields(actorType core.EntityType) FieldsResponse {
	fields, err := actorFields(c.mapper, actorType)
	if err != nil {
		return FieldsResponse{Result: core.ResultFromError(err), Fields: []core.FieldMetadata{}}
	}
	return FieldsResponse{Result: core.OK(), Fields: fields}
}

// withActors opens the workbook, checks actorType and runs fn on it.
func (c *Connection) withActors(ctx context.Context, op string, actorType core.EntityType, fn func(doc *sheet.Document, def core.EntityDefinition) ([]*core.Actor, error)) ActorsResponse {
	ctx = c.scoped(ctx)
	start := time.Now()

	if _, err := actorFields(c.mapper, actorType); err != nil {
		return ActorsResponse{Result: core.ResultFromError(err), Actors: []*core.Actor{}}
	}
	def, _ := c.mapper.Definition(actorType)

	doc, err := c.open()
	if err != nil {
		return ActorsResponse{Result: closed(err), Actors: []*core.Actor{}}
	}
	defer doc.Close()

	actors, err := fn(doc, def)
	if err != nil {
		logging.FromContext(ctx).Debug(op+" failed", "actor_type", actorType, "error", err)
		return ActorsResponse{Result: core.ResultFromError(err), Actors: []*core.Actor{}}
	}
	if actors == nil {
		actors = []*core.Actor{}
	}

	logging.FromContext(ctx).Debug(op, "actor_type", actorType, "count", len(actors), "duration", time.Since(start))
	return ActorsResponse{Result: core.OK(), Actors: actors}
}

// GetActors returns the actors with the given keys. Unknown keys are skipped.
func (c *Connection) GetActors(ctx context.Context, actorType core.EntityType, erpKeys, fieldKeys []string) ActorsResponse {
	return c.withActors(ctx, "get actors", actorType, func(doc *sheet.Document, def core.EntityDefinition) ([]*core.Actor, error) {
		var actors []*core.Actor
		for _, key := range erpKeys {
			rec, err := doc.GetByID(def.Sheet, key)
			if err != nil {
				return nil, err
			}
			if rec == nil {
				continue
			}
			if a := c.mapper.DecodeRow(rec, actorType, fieldKeys); a != nil {
				actors = append(actors, a)
			}
		}
		return actors, nil
	})
}

// SearchActors returns the actors with any cell matching text.
func (c *Connection) SearchActors(ctx context.Context, actorType core.EntityType, text string, fieldKeys []string) ActorsResponse {
	return c.withActors(ctx, "search actors", actorType, func(doc *sheet.Document, def core.EntityDefinition) ([]*core.Actor, error) {
		records, err := doc.GetAll(def.Sheet)
		if err != nil {
			return nil, err
		}
		return c.mapper.DecodeRows(search.MatchSubstring(records, text, nil), actorType, fieldKeys), nil
	})
}

// SearchActorsAdvanced returns the actors satisfying every restriction. The
// restricted fields are returned along with fieldKeys.
func (c *Connection) SearchActorsAdvanced(ctx context.Context, actorType core.EntityType, restrictions []search.Restriction, fieldKeys []string) ActorsResponse {
	return c.withActors(ctx, "search actors advanced", actorType, func(doc *sheet.Document, def core.EntityDefinition) ([]*core.Actor, error) {
		records, err := doc.GetAll(def.Sheet)
		if err != nil {
			return nil, err
		}
		matched, err := search.MatchRestrictions(c.mapper, actorType, records, restrictions)
		if err != nil {
			return nil, err
		}
		return c.mapper.DecodeRows(matched, actorType, neededKeys(fieldKeys, restrictions)), nil
	})
}

// neededKeys appends the restriction keys missing from fieldKeys.
func neededKeys(fieldKeys []string, restrictions []search.Restriction) []string {
	keys := slices.Clone(fieldKeys)
	for _, k := range search.Keys(restrictions) {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// SearchActorsByParent searches like SearchActors and keeps the actors whose
// parent is parentType/parentKey.
func (c *Connection) SearchActorsByParent(ctx context.Context, actorType core.EntityType, text string, parentType core.EntityType, parentKey string, fieldKeys []string) ActorsResponse {
	return c.withActors(ctx, "search actors by parent", actorType, func(doc *sheet.Document, def core.EntityDefinition) ([]*core.Actor, error) {
		records, err := doc.GetAll(def.Sheet)
		if err != nil {
			return nil, err
		}
		var actors []*core.Actor
		for _, a := range c.mapper.DecodeRows(search.MatchSubstring(records, text, nil), actorType, fieldKeys) {
			if a.ParentActorType == string(parentType) && a.ParentErpKey == parentKey {
				actors = append(actors, a)
			}
		}
		return actors, nil
	})
}

// GetActorsByTimestamp returns the actors modified on or after since. A since
// value that does not parse as a date means the Unix epoch.
func (c *Connection) GetActorsByTimestamp(ctx context.Context, actorType core.EntityType, since string, fieldKeys []string) ActorsResponse {
	cutoff, ok := core.ParseDate(since)
	if !ok {
		cutoff = time.Unix(0, 0).UTC()
	}

	return c.withActors(ctx, "get actors by timestamp", actorType, func(doc *sheet.Document, def core.EntityDefinition) ([]*core.Actor, error) {
		records, err := doc.GetAll(def.Sheet)
		if err != nil {
			return nil, err
		}
		var actors []*core.Actor
		for _, rec := range records {
			if mapping.LastModified(rec).Before(cutoff) {
				continue
			}
			if a := c.mapper.DecodeRow(rec, actorType, fieldKeys); a != nil {
				actors = append(actors, a)
			}
		}
		return actors, nil
	})
}

// cellValues translates an actor's wire values into cell values, adding the
// parent columns for types stored with a parent.
func (c *Connection) cellValues(def core.EntityDefinition, actor *core.Actor) map[string]any {
	values := c.mapper.EncodeFields(def.Type, actor.FieldValues)
	if def.HasParent {
		values[core.ParentIDColumn] = actor.ParentErpKey
		values[core.ParentTypeColumn] = actor.ParentActorType
	}
	return values
}

func fieldKeysOf(actor *core.Actor) []string {
	keys := make([]string, 0, len(actor.FieldValues))
	for k := range actor.FieldValues {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CreateActor inserts actor and returns it as stored. The number column gets
// the new id, prefixed for types that carry a number prefix.
func (c *Connection) CreateActor(ctx context.Context, actor *core.Actor) ActorResponse {
	ctx = c.scoped(ctx)

	if actor == nil {
		return ActorResponse{Result: core.ResultFromError(core.ValidationError{Field: "actor", Message: "no actor to create"})}
	}
	if _, err := actorFields(c.mapper, actor.ActorType); err != nil {
		return ActorResponse{Result: core.ResultFromError(err)}
	}
	def, _ := c.mapper.Definition(actor.ActorType)

	doc, err := c.open()
	if err != nil {
		return ActorResponse{Result: closed(err)}
	}
	defer doc.Close()

	values := c.cellValues(def, actor)
	if def.NumberColumn != "" {
		next, err := doc.NextID(def.Sheet)
		if err != nil {
			return ActorResponse{Result: core.ResultFromError(err)}
		}
		if def.NumberPrefix != "" {
			values[def.NumberColumn] = fmt.Sprintf("%s%d", def.NumberPrefix, next)
		} else {
			values[def.NumberColumn] = next
		}
	}

	id, err := doc.Insert(def.Sheet, values)
	if err != nil {
		return ActorResponse{Result: core.ResultFromError(err)}
	}

	rec, err := doc.GetByID(def.Sheet, fmt.Sprint(id))
	if err != nil {
		return ActorResponse{Result: core.ResultFromError(err)}
	}
	created := c.mapper.DecodeRow(rec, def.Type, fieldKeysOf(actor))

	logging.FromContext(ctx).Debug("actor created", "actor_type", def.Type, "erp_key", id)
	return ActorResponse{Result: core.OK(), Actor: created}
}

// SaveActors updates each actor and returns it as stored. An actor whose key
// does not exist gets its own Error result; the others are still saved.
func (c *Connection) SaveActors(ctx context.Context, actors []*core.Actor) SaveResponse {
	ctx = c.scoped(ctx)

	doc, err := c.open()
	if err != nil {
		return SaveResponse{Result: closed(err), Actors: []SavedActor{}}
	}
	defer doc.Close()

	saved := make([]SavedActor, 0, len(actors))
	failed := 0
	for _, actor := range actors {
		s := c.saveActor(doc, actor)
		if !s.Result.IsOK() {
			failed++
			logging.FromContext(ctx).Debug("actor not saved", "error", s.Result.TechExplanation)
		}
		saved = append(saved, s)
	}

	res := core.OK()
	if failed > 0 {
		res = core.Warn(
			fmt.Sprintf("%d of %d actors could not be saved.", failed, len(actors)),
			"see the result of each actor")
	}
	return SaveResponse{Result: res, Actors: saved}
}

func (c *Connection) saveActor(doc *sheet.Document, actor *core.Actor) SavedActor {
	if actor == nil {
		return SavedActor{Result: core.ResultFromError(core.ValidationError{Field: "actor", Message: "no actor to save"})}
	}
	if _, err := actorFields(c.mapper, actor.ActorType); err != nil {
		return SavedActor{Result: core.ResultFromError(err)}
	}
	def, _ := c.mapper.Definition(actor.ActorType)

	found, err := doc.Update(def.Sheet, actor.ErpKey, c.cellValues(def, actor))
	if err != nil {
		return SavedActor{Result: core.ResultFromError(err)}
	}
	if !found {
		return SavedActor{Result: core.Fail(
			fmt.Sprintf("%s '%s' was not found.", def.Label, actor.ErpKey),
			fmt.Sprintf("no row with ID %q in sheet %s", actor.ErpKey, def.Sheet))}
	}

	rec, err := doc.GetByID(def.Sheet, actor.ErpKey)
	if err != nil {
		return SavedActor{Result: core.ResultFromError(err)}
	}
	return SavedActor{Actor: c.mapper.DecodeRow(rec, def.Type, fieldKeysOf(actor)), Result: core.OK()}
}

// Columns of a list sheet.
const (
	listKeyColumn  = "ID"
	listTextColumn = "Text"
)

// GetList reads the sheet called listName as ID/Text pairs. Rows missing
// either column are skipped.
func (c *Connection) GetList(ctx context.Context, listName string) ListResponse {
	ctx = c.scoped(ctx)

	doc, err := c.open()
	if err != nil {
		return ListResponse{Result: closed(err), Items: []core.ListItem{}}
	}
	defer doc.Close()

	records, err := doc.GetAll(listName)
	if err != nil {
		return ListResponse{Result: core.ResultFromError(err), Items: []core.ListItem{}}
	}

	items := make([]core.ListItem, 0, len(records))
	for _, rec := range records {
		text, ok := rec.Lookup(listTextColumn)
		if !ok {
			continue
		}
		items = append(items, core.ListItem{
			Key:          strings.TrimSpace(rec.String(listKeyColumn)),
			DisplayValue: core.CellString(text),
		})
	}

	logging.FromContext(ctx).Debug("list read", "list", listName, "count", len(items))
	return ListResponse{Result: core.OK(), Items: items}
}

// GetListItems returns the items of listName whose key is in keys.
func (c *Connection) GetListItems(ctx context.Context, listName string, keys []string) ListResponse {
	resp := c.GetList(ctx, listName)
	if !resp.IsOK() {
		return resp
	}
	resp.Items = pick(resp.Items, keys)
	return resp
}
