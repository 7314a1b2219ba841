// Package http provides HTTP server and handler implementations.
//
// This file implements the request-side helpers: JSON body decoding with
// consistent 400 responses, path id parsing and list filters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/services"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON value from the body into dst. It returns a
// ready-to-write 400 response when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) *ResponseBuilder {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return BadRequestError("Request body must contain a single JSON object")
	}
	return nil
}

func decodeError(err error) *ResponseBuilder {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
		v         *core.ValidationError
	)
	switch {
	case errors.Is(err, io.EOF):
		return BadRequestError("Request body is empty")
	case errors.As(err, &syntaxErr):
		return BadRequestError(fmt.Sprintf("Malformed JSON at offset %d", syntaxErr.Offset))
	case errors.Is(err, io.ErrUnexpectedEOF):
		return BadRequestError("Malformed JSON")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return BadRequestError("Request body must be a JSON object")
		}
		if cause := core.MalformedCause(typeErr.Type); cause != nil {
			return ValidationFailed(core.NewFieldError(field, cause))
		}
		return ValidationFailed(core.NewFieldError(field, fmt.Errorf("must be a %s", typeErr.Type)))
	case errors.As(err, &sizeErr):
		return BadRequestError("Request body too large")
	case errors.As(err, &v):
		return ValidationFailed(v)
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidDate):
		return BadRequestError(err.Error())
	default:
		return BadRequestError("Invalid request body")
	}
}

// parseID reads the {id} path parameter.
func parseID(r *http.Request) (int64, *ResponseBuilder) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, BadRequestError(fmt.Sprintf("Invalid id %q", raw))
	}
	return id, nil
}

// ParseTransactionFilter reads ?category=&type=&from=&to= from a query.
func ParseTransactionFilter(query url.Values) (services.TransactionFilter, error) {
	var f services.TransactionFilter
	v := &core.ValidationError{}

	if c := strings.TrimSpace(query.Get("category")); c != "" {
		f.Category = core.Category(strings.ToLower(c))
	}
	if t := strings.TrimSpace(query.Get("type")); t != "" {
		f.Type = core.TransactionType(strings.ToLower(t))
	}
	for _, p := range []struct {
		key string
		dst **core.Date
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := strings.TrimSpace(query.Get(p.key))
		if raw == "" {
			continue
		}
		d, err := core.ParseDate(raw)
		if err != nil {
			v.Add(p.key, core.ErrInvalidDate)
			continue
		}
		*p.dst = &d
	}
	if err := v.OrNil(); err != nil {
		return services.TransactionFilter{}, err
	}
	return f, f.Validate()
}
