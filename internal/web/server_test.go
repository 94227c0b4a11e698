package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetlink/internal/audit"
	"github.com/JonMunkholm/sheetlink/internal/auth"
	"github.com/JonMunkholm/sheetlink/internal/config"
	"github.com/JonMunkholm/sheetlink/internal/connections"
	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/core/entities"
	"github.com/JonMunkholm/sheetlink/internal/erp"
	"github.com/JonMunkholm/sheetlink/internal/mapping"
	"github.com/JonMunkholm/sheetlink/internal/sheet/sheettest"
)

type testServer struct {
	*Server
	cfg   *config.Config
	mem   *audit.MemorySink
	id    uuid.UUID
	book  string
	quote string
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 10 * time.Second,
			MaxConcurrent:  4,
			MaxWaitTime:    time.Second,
		},
		Rate:    config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func clientBook(t *testing.T) string {
	t.Helper()
	return sheettest.Workbook(t,
		sheettest.Sheet{Name: "Customer", Rows: [][]any{
			{"ID", "CustNo", "Nm", "City"},
			{1, 1, "John Smith AS", "Oslo"},
			{2, 2, "Jones Ltd", "Bergen"},
		}},
		sheettest.Sheet{Name: "Supplier", Rows: [][]any{{"ID", "SupNo", "Nm"}}},
		sheettest.Sheet{Name: "Person", Rows: [][]any{{"ID", "PersonNo", "FirstName", "LastName", "ParentID", "ParentType"}}},
		sheettest.Sheet{Name: "Project", Rows: [][]any{{"ID", "ProjNo", "Nm"}}},
	)
}

func quoteBook(t *testing.T, flags map[string]bool) string {
	t.Helper()

	caps := [][]any{{"Name", "Value"}}
	for name, v := range flags {
		caps = append(caps, []any{name, v})
	}
	product := func(key, name string, price float64) []any {
		row := make([]any, 23)
		row[0], row[1], row[3], row[4], row[6], row[22] = "PL1", 1, key, name, "C-"+key, price
		return row
	}
	header := []any{
		"pricelistKey", "inAssortment", "inStock", "productKey", "name", "description", "code",
		"quantityUnit", "priceUnit", "itemNumber", "url", "categoryKey", "familyKey", "typeKey",
		"rights", "rule", "supplierCode", "supplier", "vatInfo", "vat", "unitCost", "minimumPrice",
		"listPrice",
	}

	return sheettest.QuoteBook(t, map[int][][]any{
		entities.OrdinalCapabilities: caps,
		entities.OrdinalPriceLists: {
			{"key", "name", "description", "currency", "validFrom", "validTo", "isActive"},
			{"PL1", "Standard", "", "NOK", nil, nil, 1},
		},
		entities.OrdinalProducts: {
			header,
			product("P1", "Steel beam", 100),
			product("P2", "Copper wire", 12),
		},
	})
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	cfg := testConfig()
	reg := connections.NewFileRegistry(filepath.Join(t.TempDir(), config.RegistryFileName))
	book := clientBook(t)
	id := uuid.New()
	require.NoError(t, reg.Save(context.Background(), id, book))

	mem := audit.NewMemorySink(50)
	if opts.Audit == nil {
		opts.Audit = mem
	}
	connector := erp.NewConnector(reg, mapping.New(entities.Default()), erp.Settings{})
	srv := NewServer(cfg, connector, opts)

	return &testServer{Server: srv, cfg: cfg, mem: mem, id: id, book: book}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (ts *testServer) connPath(suffix string) string {
	return "/api/erp/connections/" + ts.id.String() + suffix
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestConfigFields(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodGet, "/api/erp/config-fields", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[erp.FieldsResponse](t, rec)
	assert.Equal(t, core.StateOK, resp.State)
	assert.Equal(t, erp.FilenameField, resp.Fields[0].Key)
}

func TestTestConfig(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do(t, http.MethodPost, "/api/erp/config/test", configRequest{Fields: map[string]string{erp.FilenameField: ts.book}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.StateOK, decodeBody[core.Result](t, rec).State)

	rec = ts.do(t, http.MethodPost, "/api/erp/config/test", configRequest{Fields: map[string]string{}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.StateError, decodeBody[core.Result](t, rec).State)
}

func TestInvalidConnectionID(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodPost, "/api/erp/connections/not-a-guid/test", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "CONN002", resp.Code)
}

func TestUnknownConnectionIsOutcome(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodPost, "/api/erp/connections/"+uuid.NewString()+"/actors/Customer/get", getActorsRequest{})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[erp.ActorsResponse](t, rec)
	assert.Equal(t, core.StateError, resp.State)
	assert.Equal(t, core.UnknownConnectionCode, resp.Code)
	assert.Empty(t, resp.Actors)
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, ts.connPath("/actors/Customer/search"), strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActorRoutes(t *testing.T) {
	ts := newTestServer(t, Options{})

	t.Run("actor types", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, ts.connPath("/actor-types"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[erp.StringsResponse](t, rec)
		assert.Equal(t, []string{"Customer", "Supplier", "Person", "Project"}, resp.Items)
	})

	t.Run("fields", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, ts.connPath("/actor-types/Customer/fields"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decodeBody[erp.FieldsResponse](t, rec).Fields)
	})

	t.Run("get", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, ts.connPath("/actors/Customer/get"), getActorsRequest{ERPKeys: []string{"2"}})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[erp.ActorsResponse](t, rec)
		require.Len(t, resp.Actors, 1)
		assert.Equal(t, "2", resp.Actors[0].ErpKey)
	})

	t.Run("search", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, ts.connPath("/actors/Customer/search"), searchRequest{Text: "jones"})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[erp.ActorsResponse](t, rec)
		require.Len(t, resp.Actors, 1)
		assert.Equal(t, "2", resp.Actors[0].ErpKey)
	})

	t.Run("create then save", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, ts.connPath("/actors"), core.Actor{
			ActorType:   core.EntityCustomer,
			FieldValues: map[string]string{},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		created := decodeBody[erp.ActorResponse](t, rec)
		require.True(t, created.IsOK(), created.TechExplanation)
		require.NotNil(t, created.Actor)
		assert.Equal(t, "3", created.Actor.ErpKey)

		rec = ts.do(t, http.MethodPut, ts.connPath("/actors"), saveActorsRequest{Actors: []*core.Actor{
			{ActorType: core.EntityCustomer, ErpKey: "99", FieldValues: map[string]string{}},
		}})
		require.Equal(t, http.StatusOK, rec.Code)
		saved := decodeBody[erp.SaveResponse](t, rec)
		require.Len(t, saved.Actors, 1)
		assert.Equal(t, core.StateError, saved.Actors[0].Result.State)
	})
}

func TestTestList(t *testing.T) {
	ts := newTestServer(t, Options{})
	rec := ts.do(t, http.MethodGet, "/api/erp/connections/"+uuid.Nil.String()+"/lists/"+erp.TestListName, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[erp.ListResponse](t, rec).Items, 5)

	rec = ts.do(t, http.MethodPost, "/api/erp/connections/"+uuid.Nil.String()+"/lists/"+erp.TestListName+"/items",
		listItemsRequest{Keys: []string{"item2", "item9"}})
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeBody[erp.ListResponse](t, rec).Items
	require.Len(t, items, 1)
	assert.Equal(t, "item2", items[0].Key)
}

func TestConnectionLifecycle(t *testing.T) {
	ts := newTestServer(t, Options{})
	id := uuid.NewString()

	rec := ts.do(t, http.MethodPut, "/api/erp/connections/"+id, configRequest{Fields: map[string]string{erp.FilenameField: ts.book}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[core.Result](t, rec).IsOK())

	rec = ts.do(t, http.MethodGet, "/api/erp/connections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[connectionsResponse](t, rec).Connections, 2)

	rec = ts.do(t, http.MethodDelete, "/api/erp/connections/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/erp/connections/"+id+"/test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.StateError, decodeBody[core.Result](t, rec).State)
}

func TestAPIKeyRequired(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}

	rec := ts.do(t, http.MethodGet, "/api/erp/config-fields", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/erp/config-fields", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	srv := NewServer(cfg, erp.NewConnector(nil, nil, erp.Settings{}), Options{})
	defer srv.Shutdown(context.Background())

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestWorkbookBusy(t *testing.T) {
	limiter := NewWorkbookLimiter(1, 20*time.Millisecond)
	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()

	ts := newTestServer(t, Options{Limiter: limiter})
	rec := ts.do(t, http.MethodPost, ts.connPath("/test"), nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "WORKBOOK_BUSY", decodeBody[ErrorResponse](t, rec).Code)
}

func TestQuoteOperations(t *testing.T) {
	ts := newTestServer(t, Options{})
	book := quoteBook(t, nil)

	t.Run("check config without file name", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/quote/CheckConfig", quoteRequest{})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[core.Result](t, rec)
		assert.Equal(t, core.StateError, resp.State)
		assert.Equal(t, "File name is empty", resp.TechExplanation)
	})

	t.Run("initialize", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/quote/Initialize", quoteRequest{Filename: book})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, core.StateOK, decodeBody[core.Result](t, rec).State)
	})

	t.Run("find product", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/quote/findProduct", quoteRequest{Filename: book, PriceListKey: "PL1", Input: "steel"})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[struct {
			core.Result
			Data []map[string]any `json:"data"`
		}](t, rec)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "P1", resp.Data[0]["key"])
	})

	t.Run("missing context", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/quote/PlaceOrder", quoteRequest{Filename: book})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown operation", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/quote/Teleport", quoteRequest{Filename: book})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing workbook", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/quote/Initialize", quoteRequest{Filename: filepath.Join(t.TempDir(), "none.xlsx")})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestQuoteInjectedFault(t *testing.T) {
	ts := newTestServer(t, Options{})
	book := quoteBook(t, map[string]bool{"cannot_start": true})

	rec := ts.do(t, http.MethodPost, "/api/quote/Initialize", quoteRequest{Filename: book})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "FAULT001", decodeBody[ErrorResponse](t, rec).Code)

	entries, err := ts.mem.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Initialize", entries[0].Operation)
	assert.Equal(t, core.StateError, entries[0].State)
	assert.Equal(t, book, entries[0].ConnectionID)
}

func TestAuditRoutes(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.do(t, http.MethodPost, ts.connPath("/actors/Customer/get"), getActorsRequest{})
	ts.do(t, http.MethodPost, ts.connPath("/test"), nil)

	rec := ts.do(t, http.MethodGet, "/api/audit?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[auditResponse](t, rec)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "TestConnection", resp.Entries[0].Operation)
	assert.Equal(t, ts.id.String(), resp.Entries[0].ConnectionID)
	assert.Equal(t, "192.0.2.1", resp.Entries[0].ClientIP)

	rec = ts.do(t, http.MethodGet, "/api/audit/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Timestamp,Operation"))
}

func TestAuditNotListable(t *testing.T) {
	ts := newTestServer(t, Options{Audit: audit.NewSlogSink(nil)})
	rec := ts.do(t, http.MethodGet, "/api/audit", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

type fixedValidator struct{ claims auth.Claims }

func (v fixedValidator) Validate(context.Context, string) (auth.Claims, error) {
	return v.claims, nil
}

type echoIssuer struct{}

func (echoIssuer) Issue(_ context.Context, nonce string) (string, error) {
	return "signed-" + nonce, nil
}

func TestTokenExchange(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		ts := newTestServer(t, Options{})
		rec := ts.do(t, http.MethodPost, "/api/auth/token", tokenRequest{Token: "x"})
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	})

	ex := &auth.Exchanger{
		Validator: fixedValidator{claims: auth.Claims{Audience: []string{"spn:app"}, Nonce: "n1"}},
		Issuer:    echoIssuer{},
		ClientID:  "app",
	}

	t.Run("issued", func(t *testing.T) {
		ts := newTestServer(t, Options{Exchanger: ex})
		rec := ts.do(t, http.MethodPost, "/api/auth/token", tokenRequest{Token: "x"})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[tokenResponse](t, rec)
		assert.True(t, resp.IsOK())
		assert.Equal(t, "signed-n1", resp.Token)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := *ex
		other.ClientID = "someone-else"
		ts := newTestServer(t, Options{Exchanger: &other})
		rec := ts.do(t, http.MethodPost, "/api/auth/token", tokenRequest{Token: "x"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, core.StateError, decodeBody[tokenResponse](t, rec).State)
	})
}
