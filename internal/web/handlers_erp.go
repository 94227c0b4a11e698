package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetlink/internal/connections"
	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/erp"
	"github.com/JonMunkholm/sheetlink/internal/search"
)

type configRequest struct {
	Fields map[string]string `json:"fields"`
}

type getActorsRequest struct {
	ERPKeys   []string `json:"erpKeys"`
	FieldKeys []string `json:"fieldKeys"`
}

type searchRequest struct {
	Text      string   `json:"text"`
	FieldKeys []string `json:"fieldKeys"`
}

type advancedSearchRequest struct {
	Restrictions []search.Restriction `json:"restrictions"`
	FieldKeys    []string             `json:"fieldKeys"`
}

type parentSearchRequest struct {
	Text       string          `json:"text"`
	ParentType core.EntityType `json:"parentType"`
	ParentKey  string          `json:"parentKey"`
	FieldKeys  []string        `json:"fieldKeys"`
}

type sinceRequest struct {
	Since     string   `json:"since"`
	FieldKeys []string `json:"fieldKeys"`
}

type saveActorsRequest struct {
	Actors []*core.Actor `json:"actors"`
}

type listItemsRequest struct {
	Keys []string `json:"keys"`
}

// connectionsResponse carries the registered connections.
type connectionsResponse struct {
	core.Result
	Connections []connections.Entry `json:"connections"`
}

// handleConfigFields returns the connection configuration fields.
func (s *Server) handleConfigFields(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.begin(r, "GetConfigData"), s.erp.ConfigFields())
}

// handleTestConfig checks connection fields before they are saved.
func (s *Server) handleTestConfig(w http.ResponseWriter, r *http.Request) {
	e := s.begin(r, "TestConfigData")
	var req configRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, e, err)
		return
	}
	s.respond(w, r, e, s.erp.TestConfigData(req.Fields))
}

// handleListConnections lists the registry.
func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	e := s.begin(r, "ListConnections")
	entries, err := s.erp.Registry().List(r.Context())
	if err != nil {
		s.fail(w, r, e, err)
		return
	}
	if entries == nil {
		entries = []connections.Entry{}
	}
	s.respond(w, r, e, connectionsResponse{Result: core.OK(), Connections: entries})
}

func (s *Server) handleSaveConnection(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	serve(s, w, r, "SaveConnection", &req, func(ctx context.Context, id uuid.UUID) core.Result {
		return s.erp.SaveConnection(ctx, id, req.Fields)
	})
}

func (s *Server) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, "DeleteConnection", nil, func(ctx context.Context, id uuid.UUID) core.Result {
		return s.erp.DeleteConnection(ctx, id)
	})
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, "TestConnection", nil, func(ctx context.Context, id uuid.UUID) core.Result {
		return s.erp.TestConnection(ctx, id)
	})
}

func (s *Server) handleActorTypes(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, "GetSupportedActorTypes", nil, onConnection(s, stringsFailed,
		func(_ context.Context, conn *erp.Connection) erp.StringsResponse {
			return conn.SupportedActorTypes()
		}))
}

func (s *Server) handleActorTypeFields(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, "GetActorTypeFields", nil, onConnection(s, fieldsFailed,
		func(_ context.Context, conn *erp.Connection) erp.FieldsResponse {
			return conn.ActorTypeFields(actorType(r))
		}))
}

func (s *Server) handleSearchableFields(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, "GetSearchableFields", nil, func(ctx context.Context, id uuid.UUID) erp.StringsResponse {
		return s.erp.GetSearchableFields(ctx, id, actorType(r))
	})
}

func (s *Server) handleCreateActor(w http.ResponseWriter, r *http.Request) {
	var actor core.Actor
	serve(s, w, r, "CreateActor", &actor, onConnection(s, actorFailed,
		func(ctx context.Context, conn *erp.Connection) erp.ActorResponse {
			return conn.CreateActor(ctx, &actor)
		}))
}

func (s *Server) handleSaveActors(w http.ResponseWriter, r *http.Request) {
	var req saveActorsRequest
	serve(s, w, r, "SaveActors", &req, onConnection(s, saveFailed,
		func(ctx context.Context, conn *erp.Connection) erp.SaveResponse {
			return conn.SaveActors(ctx, req.Actors)
		}))
}

func (s *Server) handleGetActors(w http.ResponseWriter, r *http.Request) {
	var req getActorsRequest
	serve(s, w, r, "GetActors", &req, onConnection(s, actorsFailed,
		func(ctx context.Context, conn *erp.Connection) erp.ActorsResponse {
			return conn.GetActors(ctx, actorType(r), req.ERPKeys, req.FieldKeys)
		}))
}

func (s *Server) handleSearchActors(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	serve(s, w, r, "SearchActors", &req, onConnection(s, actorsFailed,
		func(ctx context.Context, conn *erp.Connection) erp.ActorsResponse {
			return conn.SearchActors(ctx, actorType(r), req.Text, req.FieldKeys)
		}))
}

func (s *Server) handleSearchActorsAdvanced(w http.ResponseWriter, r *http.Request) {
	var req advancedSearchRequest
	serve(s, w, r, "SearchActorsAdvanced", &req, onConnection(s, actorsFailed,
		func(ctx context.Context, conn *erp.Connection) erp.ActorsResponse {
			return conn.SearchActorsAdvanced(ctx, actorType(r), req.Restrictions, req.FieldKeys)
		}))
}

func (s *Server) handleSearchActorsByParent(w http.ResponseWriter, r *http.Request) {
	var req parentSearchRequest
	serve(s, w, r, "SearchActorsByParent", &req, onConnection(s, actorsFailed,
		func(ctx context.Context, conn *erp.Connection) erp.ActorsResponse {
			return conn.SearchActorsByParent(ctx, actorType(r), req.Text, req.ParentType, req.ParentKey, req.FieldKeys)
		}))
}

func (s *Server) handleGetActorsByTimestamp(w http.ResponseWriter, r *http.Request) {
	var req sinceRequest
	serve(s, w, r, "GetActorsByTimestamp", &req, onConnection(s, actorsFailed,
		func(ctx context.Context, conn *erp.Connection) erp.ActorsResponse {
			return conn.GetActorsByTimestamp(ctx, actorType(r), req.Since, req.FieldKeys)
		}))
}

// handleGetList serves a list sheet. The nil connection id serves the
// built-in test list.
func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	list := chi.URLParam(r, "list")
	serve(s, w, r, "GetList", nil, func(ctx context.Context, id uuid.UUID) erp.ListResponse {
		return s.erp.GetList(ctx, id, list)
	})
}

func (s *Server) handleGetListItems(w http.ResponseWriter, r *http.Request) {
	list := chi.URLParam(r, "list")
	var req listItemsRequest
	serve(s, w, r, "GetListItems", &req, func(ctx context.Context, id uuid.UUID) erp.ListResponse {
		return s.erp.GetListItems(ctx, id, list, req.Keys)
	})
}
