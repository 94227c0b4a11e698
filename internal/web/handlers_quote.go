package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/logging"
	"github.com/JonMunkholm/sheetlink/internal/quote"
	"github.com/JonMunkholm/sheetlink/internal/search"
)

// quoteRequest is the body of POST /api/quote/{operation}. Each operation
// reads only the arguments it needs.
type quoteRequest struct {
	Filename     string                 `json:"filename"`
	Context      *core.QuoteContext     `json:"context,omitempty"`
	Action       core.QuoteAction       `json:"action,omitempty"`
	Alternative  *core.QuoteAlternative `json:"alternative,omitempty"`
	Line         *core.QuoteLine        `json:"line,omitempty"`
	ProductKey   string                 `json:"productKey,omitempty"`
	ProductKeys  []string               `json:"productKeys,omitempty"`
	PriceListKey string                 `json:"priceListKey,omitempty"`
	Input        string                 `json:"input,omitempty"`
	Currency     string                 `json:"currency,omitempty"`
	ListName     string                 `json:"listName,omitempty"`
	Capability   string                 `json:"capability,omitempty"`
	Rank         int                    `json:"rank,omitempty"`
	Restrictions []search.Restriction   `json:"restrictions,omitempty"`
}

func (q *quoteRequest) quoteContext() (*core.QuoteContext, error) {
	if q.Context == nil {
		return nil, core.ValidationError{Field: "context", Message: "a quote context is required"}
	}
	return q.Context, nil
}

func (q *quoteRequest) alternative() (core.QuoteAlternative, error) {
	if q.Alternative == nil {
		return core.QuoteAlternative{}, core.ValidationError{Field: "alternative", Message: "a quote alternative is required"}
	}
	return *q.Alternative, nil
}

func (q *quoteRequest) line() (core.QuoteLine, error) {
	if q.Line == nil {
		return core.QuoteLine{}, core.ValidationError{Field: "line", Message: "a quote line is required"}
	}
	return *q.Line, nil
}

// dataResponse carries the payload of quote operations that have no response
// type of their own.
type dataResponse struct {
	core.Result
	Data any `json:"data"`
}

func ok(data any) dataResponse {
	return dataResponse{Result: core.OK(), Data: data}
}

// quoteOperation runs one quote operation on an opened workbook.
type quoteOperation func(ctx context.Context, c *quote.Connector, req *quoteRequest) (outcome, error)

// withContext adapts an operation on the quote context.
func withContext(fn func(ctx context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error)) quoteOperation {
	return func(ctx context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		qc, err := req.quoteContext()
		if err != nil {
			return nil, err
		}
		return fn(ctx, c, qc)
	}
}

// quoteOperations is keyed by lower-cased operation name.
var quoteOperations = map[string]quoteOperation{
	"initialize": func(ctx context.Context, c *quote.Connector, _ *quoteRequest) (outcome, error) {
		return c.Initialize(ctx)
	},
	"testconnection": func(_ context.Context, c *quote.Connector, _ *quoteRequest) (outcome, error) {
		return c.TestConnection(), nil
	},
	"configurationfields": func(_ context.Context, c *quote.Connector, _ *quoteRequest) (outcome, error) {
		return ok(c.ConfigurationFields()), nil
	},
	"canprovidecapability": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		return ok(c.CanProvideCapability(req.Capability)), nil
	},
	"capabilities": func(_ context.Context, c *quote.Connector, _ *quoteRequest) (outcome, error) {
		return ok(c.Capabilities()), nil
	},
	"getquotelist": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		return ok(c.GetQuoteList(req.ListName)), nil
	},
	"getactivepricelists": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		return ok(c.GetActivePriceLists(req.Currency)), nil
	},
	"getallpricelists": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		return ok(c.GetAllPriceLists(req.Currency)), nil
	},
	"getnumberofactivepricelists": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		return ok(c.GetNumberOfActivePriceLists(req.Currency)), nil
	},
	"getaddresses": withContext(func(_ context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return ok(c.GetAddresses(qc)), nil
	}),

	"onbeforecreatequote": withContext(func(_ context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return c.OnBeforeCreateQuote(qc)
	}),
	"onbeforecreatequoteversion": withContext(func(_ context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return c.OnBeforeCreateQuoteVersion(qc)
	}),
	"onbeforecreatequotealternative": withContext(func(_ context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return c.OnBeforeCreateQuoteAlternative(qc)
	}),
	"onaftersavequote": withContext(func(_ context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return core.OK(), c.OnAfterSaveQuote(qc)
	}),
	"onbeforedeletequote": withContext(func(_ context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return core.OK(), c.OnBeforeDeleteQuote(qc)
	}),
	"onaftersentquoteversion": withContext(func(ctx context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return c.OnAfterSentQuoteVersion(ctx, qc)
	}),
	"placeorder": withContext(func(ctx context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return c.PlaceOrder(ctx, qc)
	}),
	"getorderstate": withContext(func(_ context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return c.GetOrderState(qc)
	}),
	"updatequoteversionprices": withContext(func(_ context.Context, c *quote.Connector, qc *core.QuoteContext) (outcome, error) {
		return c.UpdateQuoteVersionPrices(qc)
	}),
	"validatequoteversion": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		qc, err := req.quoteContext()
		if err != nil {
			return nil, err
		}
		v, err := c.ValidateQuoteVersion(qc, req.Action)
		return ok(v), err
	},
	"validatequotealternative": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		alt, err := req.alternative()
		if err != nil {
			return nil, err
		}
		alt, err = c.ValidateQuoteAlternative(alt)
		return ok(alt), err
	},
	"validatequoteline": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		line, err := req.line()
		if err != nil {
			return nil, err
		}
		line, err = c.ValidateQuoteLine(line)
		return ok(line), err
	},
	"recalculatequotealternative": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		alt, err := req.alternative()
		if err != nil {
			return nil, err
		}
		alt, err = c.RecalculateQuoteAlternative(alt)
		return ok(alt), err
	},
	"onquotelinechanged": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		line, err := req.line()
		if err != nil {
			return nil, err
		}
		return ok(c.OnQuoteLineChanged(line)), nil
	},

	"findproduct": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		products, err := c.FindProduct(req.PriceListKey, req.Input)
		return ok(products), err
	},
	"getproduct": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		p, found, err := c.GetProduct(req.ProductKey)
		if err != nil || !found {
			return ok(nil), err
		}
		return ok(p), nil
	},
	"getproducts": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		products, err := c.GetProducts(req.ProductKeys)
		return ok(products), err
	},
	"getquotelinesfromproduct": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		lines, err := c.GetQuoteLinesFromProduct(req.ProductKey)
		return ok(lines), err
	},
	"getnumberofproductimages": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		return ok(c.GetNumberOfProductImages(req.ProductKey)), nil
	},
	"getproductimage": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		img, found := c.GetProductImage(req.ProductKey, req.Rank)
		if !found {
			return ok(nil), nil
		}
		return ok(img), nil
	},
	"getsearchablefields": func(_ context.Context, c *quote.Connector, _ *quoteRequest) (outcome, error) {
		return ok(c.GetSearchableFields()), nil
	},
	"getsearchresults": func(_ context.Context, c *quote.Connector, req *quoteRequest) (outcome, error) {
		products, err := c.GetSearchResults(req.Restrictions)
		return ok(products), err
	},
}

// handleQuote opens the quote workbook named in the body and runs the
// operation named in the URL on it.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "operation")
	e := s.begin(r, name)

	var req quoteRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, e, err)
		return
	}
	path := s.cfg.Connector.ResolvePath(strings.TrimSpace(req.Filename))
	e.ConnectionID = path

	// CheckConfig reports a bad file name as an outcome, so it runs before
	// the workbook is opened.
	if strings.EqualFold(name, "CheckConfig") {
		s.respond(w, r, e, quote.CheckConfig(path))
		return
	}

	op, found := quoteOperations[strings.ToLower(name)]
	if !found {
		writeError(w, r, http.StatusNotFound, "UNKNOWN_OPERATION", "unknown quote operation '"+name+"'")
		return
	}
	if path == "" {
		s.fail(w, r, e, core.ValidationError{Field: "filename", Message: "a workbook file name is required"})
		return
	}

	ctx := logging.WithConnection(r.Context(), path)
	c, err := quote.Open(path)
	if err != nil {
		s.fail(w, r, e, err)
		return
	}

	logging.FromContext(ctx).Debug("quote operation", "operation", name)
	resp, err := op(ctx, c, &req)
	if err != nil {
		s.fail(w, r, e, err)
		return
	}
	s.respond(w, r, e, resp)
}
