package httputil

import (
	"io"
	"net/http"

	"github.com/getmockd/shelfd/pkg/apierror"
)

// MaxBodySize caps request bodies read through ReadBody.
const MaxBodySize = 1 << 20

// ReadBody reads the request body, failing with a BadRequest API error when
// it cannot be read or exceeds MaxBodySize.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		return nil, apierror.BadRequest(err)
	}
	return body, nil
}
