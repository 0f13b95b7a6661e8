package reekwest

import (
	"net/http"
	"strconv"

	"github.com/http4k/reekwest/contract"
)

// Failure reasons for the fixed 400 body.
const (
	reasonMissing = "Missing"
	reasonInvalid = "Invalid"
)

// ParamFailure is one entry of the fixed 400 body's params list.
type ParamFailure struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Datatype string `json:"datatype"`
	Required bool   `json:"required"`
	Reason   string `json:"reason"`
}

// validateParams checks every declared parameter against the request and
// collects all failures rather than short-circuiting, so one response lists
// every missing or invalid parameter. A parameter the client supplied with
// an empty value is present, not missing; an empty value that cannot carry
// the declared datatype reports Invalid.
func validateParams(r *http.Request, vars map[string]string, params []contract.Parameter) []ParamFailure {
	var failures []ParamFailure
	for _, p := range params {
		value, present := lookupParam(r, vars, p)
		if !present {
			if p.Required {
				failures = append(failures, failure(p, reasonMissing))
			}
			continue
		}
		if !validDatatype(value, p.Datatype) {
			failures = append(failures, failure(p, reasonInvalid))
		}
	}
	return failures
}

func failure(p contract.Parameter, reason string) ParamFailure {
	return ParamFailure{
		Name:     p.Name,
		Type:     string(p.In),
		Datatype: string(p.Datatype),
		Required: p.Required,
		Reason:   reason,
	}
}

func lookupParam(r *http.Request, vars map[string]string, p contract.Parameter) (string, bool) {
	switch p.In {
	case contract.InQuery:
		values, ok := r.URL.Query()[p.Name]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	case contract.InHeader:
		values, ok := r.Header[http.CanonicalHeaderKey(p.Name)]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	case contract.InPath:
		v, ok := vars[p.Name]
		return v, ok
	case contract.InCookie:
		c, err := r.Cookie(p.Name)
		if err != nil {
			return "", false
		}
		return c.Value, true
	default:
		return "", false
	}
}

func validDatatype(value string, datatype contract.Datatype) bool {
	switch datatype {
	case contract.TypeInteger:
		_, err := strconv.ParseInt(value, 10, 64)
		return err == nil
	case contract.TypeNumber:
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	case contract.TypeBoolean:
		return value == "true" || value == "false"
	default:
		return true
	}
}
