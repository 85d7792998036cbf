package v1

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"storefront/internal/domain"
	"storefront/internal/session"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

const maxBodyBytes = 1 << 20

// writeAppError maps err to a status and writes its user-facing message.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := domain.HTTPStatus(err)
	log := logger.WithContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	utils.WriteErrorCode(w, status, domain.Code(err), domain.Message(err))
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.InvalidInput("invalid request body")
	}
	return nil
}

func owner(r *http.Request) string {
	return session.IDFromContext(r.Context())
}

// variantsFromQuery reads a variant selection from query parameters.
func variantsFromQuery(q url.Values) domain.Variants {
	var v domain.Variants
	for _, attr := range []string{domain.AttrColor, domain.AttrSize, domain.AttrMaterial} {
		if val := strings.TrimSpace(q.Get(attr)); val != "" {
			if v == nil {
				v = domain.Variants{}
			}
			v[attr] = val
		}
	}
	return v
}

// cleanVariants drops blank selections so "" and absent mean the same.
func cleanVariants(v domain.Variants) domain.Variants {
	var out domain.Variants
	for k, val := range v {
		k, val = strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(val)
		if k == "" || val == "" {
			continue
		}
		if out == nil {
			out = domain.Variants{}
		}
		out[k] = val
	}
	return out
}
