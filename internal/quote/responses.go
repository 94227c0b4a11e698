package quote

import (
	"time"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

// VersionResponse carries a quote version after a hook has run on it.
type VersionResponse struct {
	core.Result
	Version core.QuoteVersion `json:"version"`
}

// AlternativeResponse carries an alternative after a hook has run on it.
type AlternativeResponse struct {
	core.Result
	Alternative core.QuoteAlternative `json:"alternative"`
}

// SentResponse is the outcome of registering a sent quote version.
type SentResponse struct {
	core.Result
	QuoteKey string            `json:"quoteKey,omitempty"`
	Version  core.QuoteVersion `json:"version"`
	URL      string            `json:"url,omitempty"`
}

// OrderResponse is the outcome of placing an order.
type OrderResponse struct {
	core.Result
	OrderKey string `json:"orderKey,omitempty"`
	URL      string `json:"url,omitempty"`
}

// PricesResponse carries a version whose prices were refreshed.
type PricesResponse struct {
	core.Result
	Version          core.QuoteVersion       `json:"version"`
	Alternatives     []core.QuoteAlternative `json:"alternatives"`
	LastRecalculated time.Time               `json:"lastRecalculated"`
}
