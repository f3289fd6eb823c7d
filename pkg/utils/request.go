package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/rewardwallet/internal/domain"
	"github.com/GlebRadaev/rewardwallet/pkg/validate"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON body into dst and checks its validate tags.
// Failures are domain validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.InvalidRequest("request body is empty")
		}
		return domain.InvalidRequest("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return domain.InvalidRequest(err.Error())
	}
	return nil
}

// PathID parses the positive integer URL parameter name.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.InvalidRequest("invalid " + name)
	}
	return id, nil
}

// QueryInt reads an optional integer query parameter, returning def when absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.InvalidRequest("invalid " + name)
	}
	return v, nil
}
