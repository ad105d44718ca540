package rest

import (
	"mime"
	"net/http"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// OriginMiddleware keeps other web pages from driving the API through the
// user's browser. State changing requests must come from the API's own
// origin and carry a JSON body, which a cross-site form or simple fetch
// cannot send without a preflight.
type OriginMiddleware struct {
	logger outbound.Logger
}

func NewOriginMiddleware(logger outbound.Logger) *OriginMiddleware {
	return &OriginMiddleware{logger: logger}
}

func (m *OriginMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if !sameOrigin(r) {
			m.logger.Warn("Cross-origin request rejected",
				"method", r.Method, "path", r.URL.Path, "origin", r.Header.Get("Origin"))
			writeError(w, http.StatusForbidden, "forbidden_origin", "cross-origin requests are not allowed")
			return
		}

		if !isJSON(r) {
			m.logger.Warn("Non-JSON request rejected",
				"method", r.Method, "path", r.URL.Path, "content_type", r.Header.Get("Content-Type"))
			writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// browsers send Origin; other clients usually do not
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
