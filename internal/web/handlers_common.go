package web

// handlers_common.go holds the request plumbing shared by the API handlers:
// body decoding, connection id parsing and the audit trail of each operation.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetlink/internal/audit"
	"github.com/JonMunkholm/sheetlink/internal/connections"
	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/erp"
	"github.com/JonMunkholm/sheetlink/internal/logging"
)

// outcome is implemented by every response embedding core.Result.
type outcome interface {
	Outcome() core.Result
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: %v: %w", err, core.ErrValidation)
	}
	return nil
}

// begin starts the audit entry of op.
func (s *Server) begin(r *http.Request, op string) audit.Entry {
	e := audit.NewEntry(op, s.now())
	e.EntityType = chi.URLParam(r, "type")
	return e
}

// respond audits resp and writes it with status 200.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, e audit.Entry, resp outcome) {
	e.Finish(resp.Outcome(), s.now())
	audit.Record(r.Context(), s.audit, e)
	writeJSON(w, r, resp)
}

// fail audits err and writes it as a hard error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, e audit.Entry, err error) {
	e.Finish(core.ResultFromError(err), s.now())
	audit.Record(r.Context(), s.audit, e)
	respondError(w, r, err)
}

// serve parses the {id} URL parameter, decodes body when it is not nil and
// answers with fn's response.
func serve[T outcome](s *Server, w http.ResponseWriter, r *http.Request, op string, body any, fn func(ctx context.Context, id uuid.UUID) T) {
	e := s.begin(r, op)

	id, err := connections.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, e, err)
		return
	}
	e.ConnectionID = id.String()

	if body != nil {
		if err := decode(w, r, body); err != nil {
			s.fail(w, r, e, err)
			return
		}
	}

	ctx := logging.WithConnection(r.Context(), e.ConnectionID)
	logging.FromContext(ctx).Debug("operation started", "operation", op)
	s.respond(w, r, e, fn(ctx, id))
}

// onConnection resolves the connection before running fn. A resolution
// failure is folded into the response built by failed.
func onConnection[T outcome](s *Server, failed func(core.Result) T, fn func(ctx context.Context, conn *erp.Connection) T) func(context.Context, uuid.UUID) T {
	return func(ctx context.Context, id uuid.UUID) T {
		conn, err := s.erp.Connection(ctx, id)
		if err != nil {
			return failed(core.ResultFromError(err))
		}
		return fn(ctx, conn)
	}
}

// actorType returns the {type} URL parameter.
func actorType(r *http.Request) core.EntityType {
	return core.EntityType(chi.URLParam(r, "type"))
}

func actorsFailed(res core.Result) erp.ActorsResponse {
	return erp.ActorsResponse{Result: res, Actors: []*core.Actor{}}
}

func actorFailed(res core.Result) erp.ActorResponse {
	return erp.ActorResponse{Result: res}
}

func saveFailed(res core.Result) erp.SaveResponse {
	return erp.SaveResponse{Result: res, Actors: []erp.SavedActor{}}
}

func stringsFailed(res core.Result) erp.StringsResponse {
	return erp.StringsResponse{Result: res, Items: []string{}}
}

func fieldsFailed(res core.Result) erp.FieldsResponse {
	return erp.FieldsResponse{Result: res, Fields: []core.FieldMetadata{}}
}
