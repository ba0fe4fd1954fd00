package http

import (
	"context"
	"net/http"
)

// noun names a resource in error bodies, e.g. "task not found".
type noun string

func (n noun) missing() string { return string(n) + " not found" }

// respond writes res with status, or maps err to its HTTP status.
func respond[T any](w http.ResponseWriter, n noun, status int, res T, err error) {
	if err != nil {
		writeDomainError(w, err, n.missing())
		return
	}
	writeJSON(w, status, res)
}

// handleList serves a collection; an empty result is [] rather than null.
func handleList[T any](n noun, list func(ctx context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if items == nil {
			items = []T{}
		}
		respond(w, n, http.StatusOK, items, err)
	}
}

// handleGet serves the entity named by the {id} path segment.
func handleGet[T any](n noun, get func(ctx context.Context, id string) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := get(r.Context(), urlParam(r, "id"))
		respond(w, n, http.StatusOK, item, err)
	}
}

// handleAction serves a bodiless state change such as a completion toggle.
func handleAction[T any](n noun, act func(ctx context.Context, id string) (*T, error)) http.HandlerFunc {
	return handleGet(n, act)
}

// handleCreate decodes a body of at most limit bytes and answers 201.
func handleCreate[Req, Res any](n noun, limit int64, create func(ctx context.Context, req Req) (*Res, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := readJSON[Req](w, r, limit)
		if !ok {
			return
		}
		res, err := create(r.Context(), req)
		respond(w, n, http.StatusCreated, res, err)
	}
}

// handleUpdate decodes a partial edit for {id}.
func handleUpdate[Req, Res any](n noun, limit int64, update func(ctx context.Context, id string, req Req) (*Res, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := readJSON[Req](w, r, limit)
		if !ok {
			return
		}
		res, err := update(r.Context(), urlParam(r, "id"), req)
		respond(w, n, http.StatusOK, res, err)
	}
}

// handleDelete removes {id} and answers 204.
func handleDelete(n noun, del func(ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := del(r.Context(), urlParam(r, "id")); err != nil {
			writeDomainError(w, err, n.missing())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
