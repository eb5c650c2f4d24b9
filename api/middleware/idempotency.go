package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veloraworld/velora-backend/api/responses"
	pkgerrors "github.com/veloraworld/velora-backend/pkg/errors"
	"github.com/veloraworld/velora-backend/pkg/logger"
)

const (
	idempotencyKeyHeader   = "Idempotency-Key"
	replayedHeader         = "X-Idempotency-Replayed"
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour

	statusPending = 0
)

// IdempotencyStore is the slice of the redis client the middleware needs.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

type idempotencyRule struct {
	method  string
	matcher func(pattern string) bool
	ttl     time.Duration
}

// Settlement keys outlive regular ones so a retried checkout replays the
// original order instead of charging the customer twice.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/api/v1/checkout"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/api/v1/cart/items"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/api/v1/admin/products"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/api/v1/admin/coupons"), ttl: defaultIdempotencyTTL},
}

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency deduplicates mutating requests keyed by the Idempotency-Key
// header. The first request runs and its response is stored; retries with
// the same key and payload replay the stored response, while retries that
// change the payload are rejected.
func Idempotency(store IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ttl, required := routeTTL(r)
			if !required || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
			if key == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header is required"))
				return
			}

			requestHash, err := hashBody(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading request body"))
				return
			}

			storageKey := store.IdempotencyKey(buildScope(r), key)

			stored, err := store.Get(ctx, storageKey)
			if err == nil && stored != "" {
				record, decodeErr := decodeRecord(stored)
				if decodeErr != nil {
					logError(ctx, logg, "idempotency record corrupt, proceeding without replay", decodeErr)
				} else {
					if record.RequestHash != requestHash {
						responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different payload"))
						return
					}
					if record.Status == statusPending {
						responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress"))
						return
					}
					writeStoredResponse(w, record)
					return
				}
			}

			pending := idempotencyRecord{Status: statusPending, RequestHash: requestHash}
			pendingPayload, err := json.Marshal(pending)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding idempotency record"))
				return
			}

			acquired, err := store.SetNX(ctx, storageKey, string(pendingPayload), ttl)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserving idempotency key"))
				return
			}
			if !acquired {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress"))
				return
			}

			capture := newResponseCapture(w)
			next.ServeHTTP(capture, r)

			if capture.status >= http.StatusInternalServerError {
				// Let the client retry server failures with the same key.
				if delErr := store.Del(ctx, storageKey); delErr != nil {
					logError(ctx, logg, "releasing idempotency key", delErr)
				}
				return
			}

			record := idempotencyRecord{
				Status:      defaultStatus(capture.status),
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
				Headers:     capture.storedHeaders(),
				RequestHash: requestHash,
			}
			payload, err := json.Marshal(record)
			if err != nil {
				logError(ctx, logg, "encoding idempotency record", err)
				return
			}
			if err := store.Set(ctx, storageKey, string(payload), ttl); err != nil {
				logError(ctx, logg, "storing idempotency record", err)
			}
		})
	}
}

func routeTTL(r *http.Request) (time.Duration, bool) {
	pattern := routePattern(r)
	for _, rule := range idempotencyRules {
		if rule.method == r.Method && rule.matcher(pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

// routePattern prefers the chi pattern but falls back to the raw path;
// middleware runs before the leaf route has matched, so nested mounts only
// expose a wildcard pattern at this point.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "/*") {
			return pattern
		}
	}
	return r.URL.Path
}

// buildScope keys records per caller so two storefront sessions reusing the
// same client-generated key cannot collide.
func buildScope(r *http.Request) string {
	identity := strings.TrimSpace(r.Header.Get(CartSessionHeader))
	if identity == "" {
		identity = AdminIDFromContext(r.Context())
	}
	if identity == "" {
		identity = "anon"
	}
	return strings.Join([]string{identity, r.Method, routePattern(r)}, "|")
}

func hashBody(r *http.Request) (string, error) {
	if r.Body == nil {
		return hex.EncodeToString(sha256.New().Sum(nil)), nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func decodeRecord(raw string) (idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return idempotencyRecord{}, err
	}
	return record, nil
}

func writeStoredResponse(w http.ResponseWriter, record idempotencyRecord) {
	for key, value := range record.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(defaultStatus(record.Status))

	if record.Body == "" {
		return
	}
	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		return
	}
	_, _ = w.Write(body)
}

func defaultStatus(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}

func matchExact(path string) func(string) bool {
	return func(pattern string) bool {
		return pattern == path
	}
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil {
		return
	}
	logg.Error(ctx, msg, err)
}

type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func newResponseCapture(w http.ResponseWriter) *responseCapture {
	return &responseCapture{ResponseWriter: w}
}

func (c *responseCapture) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) storedHeaders() map[string]string {
	headers := map[string]string{}
	for _, key := range []string{"Content-Type"} {
		if value := c.Header().Get(key); value != "" {
			headers[key] = value
		}
	}
	return headers
}
