package reekwest

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate     = validator.New()
	queryDecoder = schema.NewDecoder()
	formDecoder  = schema.NewDecoder()
)

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
	formDecoder.IgnoreUnknownKeys(true)
}

// BindJSON decodes the request body into v and validates it with the
// `validate` struct tags. Unknown fields and trailing data are rejected.
func BindJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return NewError(CodeInvalidArgument, "invalid JSON body: "+err.Error())
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return NewError(CodeInvalidArgument, "invalid JSON body: unexpected trailing data")
	}
	return validateStruct(v)
}

// BindQuery decodes the request's query string into v using `schema` struct
// tags, then validates it.
func BindQuery(r *http.Request, v any) error {
	if err := queryDecoder.Decode(v, r.URL.Query()); err != nil {
		return NewError(CodeInvalidArgument, "invalid query parameters: "+err.Error())
	}
	return validateStruct(v)
}

// BindForm decodes the request's form body into v using `schema` struct
// tags, then validates it.
func BindForm(r *http.Request, v any) error {
	if err := r.ParseForm(); err != nil {
		return NewError(CodeInvalidArgument, "invalid form body: "+err.Error())
	}
	if err := formDecoder.Decode(v, r.PostForm); err != nil {
		return NewError(CodeInvalidArgument, "invalid form body: "+err.Error())
	}
	return validateStruct(v)
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return DefaultErrorTransformer(err)
	}
	return nil
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v, nil)
}

// WriteError writes a service error as a JSON response. Plain errors are
// first mapped through DefaultErrorTransformer.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, DefaultErrorTransformer(err), nil)
}
