package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/sheetlink/internal/auth"
	"github.com/JonMunkholm/sheetlink/internal/core"
)

type tokenRequest struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	core.Result
	Token string `json:"token,omitempty"`
}

// handleTokenExchange trades a platform-signed token for one issued by the
// connector. A rejected token is an outcome, not a transport error.
func (s *Server) handleTokenExchange(w http.ResponseWriter, r *http.Request) {
	e := s.begin(r, "ExchangeToken")
	if !s.exchanger.Configured() {
		writeError(w, r, http.StatusNotImplemented, "AUTH_NOT_CONFIGURED", auth.ErrNotConfigured.Error())
		return
	}

	var req tokenRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, e, err)
		return
	}

	token, err := s.exchanger.Exchange(r.Context(), req.Token)
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		s.respond(w, r, e, tokenResponse{Result: core.Fail("The token could not be validated.", err.Error())})
	case err != nil:
		s.fail(w, r, e, err)
	default:
		s.respond(w, r, e, tokenResponse{Result: core.OK(), Token: token})
	}
}
