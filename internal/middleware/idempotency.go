package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/cache"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	maxReplayBody        = 1 << 20
	idempotencyPrefix    = "idem:"
)

// replay is a stored response together with the request it answered.
type replay struct {
	Fingerprint string      `json:"fingerprint"`
	Status      int         `json:"status"`
	Header      http.Header `json:"header"`
	Body        []byte      `json:"body"`
}

func (rp *replay) writeTo(w http.ResponseWriter) {
	for k, vals := range rp.Header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(rp.Status)
	_, _ = w.Write(rp.Body)
}

// Idempotency replays the stored response for a repeated write carrying the
// same Idempotency-Key. Keys are scoped to the authenticated user and bound
// to the method, path and body they were first used with; reuse with a
// different request is rejected with 422, and a duplicate that arrives while
// the first is still running gets 409. Only 2xx responses are stored.
func Idempotency(store cache.Cache, ttl time.Duration) func(http.Handler) http.Handler {
	var inflight sync.Map

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerIdempotencyKey)
			if key == "" || !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			scoped := idempotencyPrefix + key
			if u := UserFromContext(ctx); u != nil {
				scoped = idempotencyPrefix + u.ID + ":" + key
			}

			fp, err := fingerprint(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable request body")
				return
			}

			if prev, ok := lookupReplay(r, store, scoped); ok {
				if prev.Fingerprint != fp {
					writeError(w, http.StatusUnprocessableEntity, "idempotency key reused with a different request")
					return
				}
				prev.writeTo(w)
				return
			}

			if _, busy := inflight.LoadOrStore(scoped, struct{}{}); busy {
				writeError(w, http.StatusConflict, "a request with this idempotency key is in progress")
				return
			}
			defer inflight.Delete(scoped)

			rec := &teeWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < 200 || rec.status >= 300 || rec.overflow {
				return
			}
			data, err := json.Marshal(replay{
				Fingerprint: fp,
				Status:      rec.status,
				Header:      w.Header().Clone(),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				return
			}
			if err := store.Set(ctx, scoped, data, ttl); err != nil {
				slog.WarnContext(ctx, "idempotency: store response", "error", err)
			}
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func lookupReplay(r *http.Request, store cache.Cache, key string) (*replay, bool) {
	raw, ok, err := store.Get(r.Context(), key)
	if err != nil {
		slog.WarnContext(r.Context(), "idempotency: lookup", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var rp replay
	if err := json.Unmarshal(raw, &rp); err != nil {
		slog.WarnContext(r.Context(), "idempotency: corrupt entry dropped", "error", err)
		_ = store.Delete(r.Context(), key)
		return nil, false
	}
	return &rp, true
}

// fingerprint hashes method, path and body, then restores the body for the
// handler.
func fingerprint(r *http.Request) (string, error) {
	h := sha256.New()
	io.WriteString(h, r.Method+" "+r.URL.Path+"\n")
	if r.Body != nil && r.Body != http.NoBody {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxReplayBody+1))
		if err != nil {
			return "", err
		}
		_ = r.Body.Close()
		h.Write(body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// teeWriter passes the response through while keeping a copy of up to
// maxReplayBody bytes.
type teeWriter struct {
	http.ResponseWriter
	status   int
	body     bytes.Buffer
	overflow bool
}

func (t *teeWriter) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *teeWriter) Write(b []byte) (int, error) {
	if !t.overflow {
		if t.body.Len()+len(b) > maxReplayBody {
			t.overflow = true
			t.body.Reset()
		} else {
			t.body.Write(b)
		}
	}
	return t.ResponseWriter.Write(b)
}
