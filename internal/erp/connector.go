// Package erp serves Customer, Supplier, Person and Project records from the
// workbook registered for a connection.
//
// A Connector owns the connection registry and the connector-level
// configuration. Connection-level operations run on a Connection, which
// re-opens the workbook for every call so that edits made in Excel are seen
// immediately.
package erp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetlink/internal/connections"
	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/logging"
	"github.com/JonMunkholm/sheetlink/internal/mapping"
)

// FilenameField is the connection field holding the workbook path.
const FilenameField = "Filename"

// TestListName is the list served without a connection.
const TestListName = "ConnectorTestList"

var testListItems = []core.ListItem{
	{Key: "item1", DisplayValue: "Listeverdi 1"},
	{Key: "item2", DisplayValue: "Listeverdi 2"},
	{Key: "item3", DisplayValue: "Listeverdi 3"},
	{Key: "item4", DisplayValue: "Listeverdi 4"},
	{Key: "item5", DisplayValue: "Listeverdi 5"},
}

// Settings configures a Connector.
type Settings struct {
	// ResourcesDir anchors relative workbook paths.
	ResourcesDir string
	// TemplateFile is copied to a new connection's path when the workbook
	// does not exist yet. Empty disables the copy.
	TemplateFile string
	// DefaultFilename is offered as the default of the Filename field.
	DefaultFilename string
}

// Connector runs the connector-level operations.
type Connector struct {
	registry connections.Registry
	mapper   *mapping.Mapper
	settings Settings
	now      func() time.Time
}

// NewConnector returns a Connector over registry.
func NewConnector(registry connections.Registry, mapper *mapping.Mapper, settings Settings) *Connector {
	return &Connector{
		registry: registry,
		mapper:   mapper,
		settings: settings,
		now:      time.Now,
	}
}

// Registry returns the connection registry.
func (c *Connector) Registry() connections.Registry {
	return c.registry
}

// ConfigFields returns the fields a connection is configured with.
func (c *Connector) ConfigFields() FieldsResponse {
	return FieldsResponse{
		Result: core.OK(),
		Fields: []core.FieldMetadata{
			{
				Key:          FilenameField,
				DisplayName:  `NO:"Filnavn";US:"File Name"`,
				Description:  `NO:"Filnavn for excel-dokumentet (hele stien)";US:"Filename for excel document (full path)"`,
				Type:         core.FieldText,
				Access:       core.AccessMandatory,
				MaxLength:    500,
				DefaultValue: c.settings.DefaultFilename,
			},
			{
				Key:          "CheckboxField",
				DisplayName:  `NO:"Avkryssningsfelt";US:"Checkbox field test tooltip"`,
				Description:  `NO:"Avkryssningstestfelt";US:"Checkbox field test"`,
				Type:         core.FieldCheckbox,
				MaxLength:    500,
				DefaultValue: "0",
			},
			{
				Key:          "DateField",
				DisplayName:  `NO:"Datotestfelt";US:"Date picker test field"`,
				Description:  `NO:"Datotestfelt";US:"Datepicker test field"`,
				Type:         core.FieldDatetime,
				MaxLength:    500,
				DefaultValue: core.FormatDate(c.now()),
			},
			{Key: "DoubleField", DisplayName: "Doubletestfelt", Description: "Doubletestfelt", Type: core.FieldDouble, MaxLength: 500, DefaultValue: "0"},
			{Key: "IntegerField", DisplayName: "Integertestfelt", Description: "Integertestfelt", Type: core.FieldInteger, MaxLength: 500, DefaultValue: "0"},
			{Key: "PasswordField", DisplayName: "Passordtestfelt", Description: "Passordtestfelt", Type: core.FieldPassword, MaxLength: 500, DefaultValue: "[password]"},
			{Key: "TextField", DisplayName: "Teksttestfelt", Description: "Teksttestfelt", Type: core.FieldText, MaxLength: 500, DefaultValue: "[text]"},
			{Key: "ListField", DisplayName: "Listetestfelt", Description: "Listetestfelt", Type: core.FieldList, MaxLength: 500, ListName: TestListName},
		},
	}
}

// filename validates the Filename field and returns it resolved against the
// resources dir.
func (c *Connector) filename(fields map[string]string) (string, core.Result) {
	name, ok := fields[FilenameField]
	if !ok {
		return "", core.Fail("Filename field not found", "")
	}
	if strings.TrimSpace(name) == "" {
		return "", core.Fail("Filename field can not be empty", "")
	}
	return c.resolvePath(name), core.OK()
}

func (c *Connector) resolvePath(name string) string {
	name = strings.TrimSpace(name)
	if filepath.IsAbs(name) || c.settings.ResourcesDir == "" {
		return name
	}
	return filepath.Join(c.settings.ResourcesDir, name)
}

// TestConfigData checks that fields name an existing workbook.
func (c *Connector) TestConfigData(fields map[string]string) core.Result {
	path, res := c.filename(fields)
	if !res.IsOK() {
		return res
	}
	if _, err := os.Stat(path); err != nil {
		return core.Fail(
			fmt.Sprintf("Excel Filename '%s' does not exist on the ERP Services server.", fields[FilenameField]),
			err.Error())
	}
	return core.OK()
}

// SaveConnection registers the workbook named by fields for id. A missing
// workbook is created from the template when one is configured.
func (c *Connector) SaveConnection(ctx context.Context, id uuid.UUID, fields map[string]string) core.Result {
	path, res := c.filename(fields)
	if !res.IsOK() {
		return res
	}

	if err := c.registry.Save(ctx, id, path); err != nil {
		r := core.ResultFromError(err)
		r.UserExplanation = "Error saving connection info! " + r.UserExplanation
		return r
	}
	logging.FromContext(ctx).Debug("connection saved", "connection_id", id, "file", path)

	if err := c.ensureWorkbook(path); err != nil {
		logging.FromContext(ctx).Warn("template copy failed", "file", path, "error", err)
		return core.Info(
			"Operation succeeded, but could not copy default Excel connection file to destination; needs to be copied manually.",
			err.Error())
	}
	return core.OK()
}

// ensureWorkbook copies the template to path when path does not exist.
func (c *Connector) ensureWorkbook(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if c.settings.TemplateFile == "" {
		return nil
	}

	src, err := os.Open(c.settings.TemplateFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// DeleteConnection forgets id.
func (c *Connector) DeleteConnection(ctx context.Context, id uuid.UUID) core.Result {
	if err := c.registry.Delete(ctx, id); err != nil {
		return core.ResultFromError(err)
	}
	logging.FromContext(ctx).Debug("connection deleted", "connection_id", id)
	return core.OK()
}

// Connection resolves id to an open-per-call Connection.
func (c *Connector) Connection(ctx context.Context, id uuid.UUID) (*Connection, error) {
	path, err := c.registry.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Connection{
		id:     id,
		path:   c.resolvePath(path),
		mapper: c.mapper,
	}, nil
}

// TestConnection reports whether the workbook of id can be opened.
func (c *Connector) TestConnection(ctx context.Context, id uuid.UUID) core.Result {
	conn, err := c.Connection(ctx, id)
	if err != nil {
		return core.ResultFromError(err)
	}
	return conn.Test(ctx)
}

// GetList returns the items of listName. The nil id serves the built-in
// test list.
func (c *Connector) GetList(ctx context.Context, id uuid.UUID, listName string) ListResponse {
	if id == uuid.Nil {
		if strings.EqualFold(listName, TestListName) {
			return ListResponse{Result: core.OK(), Items: append([]core.ListItem(nil), testListItems...)}
		}
		return ListResponse{Result: core.OK(), Items: []core.ListItem{}}
	}

	conn, err := c.Connection(ctx, id)
	if err != nil {
		return ListResponse{Result: core.ResultFromError(err), Items: []core.ListItem{}}
	}
	return conn.GetList(ctx, listName)
}

// GetListItems returns the items of listName whose key is in keys.
func (c *Connector) GetListItems(ctx context.Context, id uuid.UUID, listName string, keys []string) ListResponse {
	resp := c.GetList(ctx, id, listName)
	if !resp.IsOK() {
		return resp
	}
	resp.Items = pick(resp.Items, keys)
	return resp
}

// GetSearchableFields returns the canonical field keys of actorType.
func (c *Connector) GetSearchableFields(ctx context.Context, id uuid.UUID, actorType core.EntityType) StringsResponse {
	if _, err := c.Connection(ctx, id); err != nil {
		return StringsResponse{Result: core.ResultFromError(err), Items: []string{}}
	}

	fields, err := actorFields(c.mapper, actorType)
	if err != nil {
		return StringsResponse{Result: core.ResultFromError(err), Items: []string{}}
	}
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return StringsResponse{Result: core.OK(), Items: keys}
}

// pick keeps the items whose key is in keys, in list order.
func pick(items []core.ListItem, keys []string) []core.ListItem {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	out := []core.ListItem{}
	for _, item := range items {
		if want[item.Key] {
			out = append(out, item)
		}
	}
	return out
}
