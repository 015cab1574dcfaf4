package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/getmockd/shelfd/pkg/apierror"
	"github.com/getmockd/shelfd/pkg/httputil"
)

// Middleware enforces limiter on every request, answering 429 through errs
// when a client runs out of tokens. A nil limiter passes requests through.
func Middleware(limiter *Limiter, errs *httputil.Errors) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		if errs == nil {
			errs = httputil.NewErrors(nil, false)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Allow(limiter.ClientIP(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.RetryAfter, 10))

			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Retry-After", strconv.FormatInt(d.RetryAfter, 10))
			errs.Write(w, r, apierror.New(apierror.KindTooManyRequests, apierror.MsgTooManyRequests))
		})
	}
}
