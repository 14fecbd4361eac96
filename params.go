package shopapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"time"
)

// Params maps stored-procedure parameter names to scalar values.
//
// Permitted value kinds are nil, string, bool, int64, float64 and time.Time.
// Anything else is rejected by Validate.
type Params map[string]any

// Cache-busting fields added by the mobile client to defeat HTTP caching.
// They never belong to a procedure signature.
var cacheParams = []string{"nocache", "timestamp", "cacheBuster"}

var (
	validParamNameRegex     = regexp.MustCompile(`^@?[A-Za-z_][A-Za-z0-9_]*$`)
	validProcedureNameRegex = regexp.MustCompile(`^(?:(?:\[[A-Za-z_][A-Za-z0-9_]*\]|[A-Za-z_][A-Za-z0-9_]*)\.)?(?:\[[A-Za-z_][A-Za-z0-9_]*\]|[A-Za-z_][A-Za-z0-9_]*)$`)
)

// IsValidParamName reports whether name can be bound as a named parameter.
// A leading "@" is tolerated.
func IsValidParamName(name string) bool {
	return len(name) <= 128 && validParamNameRegex.MatchString(name)
}

// IsValidProcedureName reports whether name is a plain or schema-qualified
// procedure identifier, optionally bracketed: "dbo.proc" or "[dbo].[proc]".
func IsValidProcedureName(name string) bool {
	return validProcedureNameRegex.MatchString(name)
}

// StripCacheParams returns a copy of p without the cache-busting fields.
// The input is left untouched.
func StripCacheParams(p Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, k := range cacheParams {
		delete(out, k)
	}
	return out
}

// Names returns the parameter names in lexical order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate checks every name and value of p.
func (p Params) Validate() error {
	for _, name := range p.Names() {
		if !IsValidParamName(name) {
			return fmt.Errorf("validate params: %w: invalid parameter name %q", ErrInvalidInput, name)
		}
		switch p[name].(type) {
		case nil, string, bool, int64, float64, time.Time:
		default:
			return fmt.Errorf("validate params: %w: parameter %q has unsupported type %T", ErrInvalidInput, name, p[name])
		}
	}
	return nil
}

// ParamsFromQuery converts URL query values. Every value stays a string;
// repeated keys are rejected. Cache-busting fields are dropped.
func ParamsFromQuery(q url.Values) (Params, error) {
	p := make(Params, len(q))
	for k, vs := range q {
		if slices.Contains(cacheParams, k) {
			continue
		}
		if len(vs) > 1 {
			return nil, fmt.Errorf("params from query: %w: parameter %q repeated", ErrInvalidInput, k)
		}
		if len(vs) == 1 {
			p[k] = vs[0]
		} else {
			p[k] = ""
		}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("params from query: %w", err)
	}
	return p, nil
}

// ParamsFromJSON decodes a JSON object body. Integral numbers become int64,
// other numbers float64. Nested objects and arrays are rejected. An empty
// body yields empty Params.
func ParamsFromJSON(r io.Reader) (Params, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Params{}, nil
		}
		return nil, fmt.Errorf("params from json: %w: %v", ErrInvalidInput, err)
	}
	if err := ensureEOF(dec); err != nil {
		return nil, fmt.Errorf("params from json: %w: %v", ErrInvalidInput, err)
	}

	p := make(Params, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case json.Number:
			if i, err := t.Int64(); err == nil {
				p[k] = i
				continue
			}
			f, err := t.Float64()
			if err != nil {
				return nil, fmt.Errorf("params from json: %w: parameter %q: %v", ErrInvalidInput, k, err)
			}
			p[k] = f
		case map[string]any, []any:
			return nil, fmt.Errorf("params from json: %w: parameter %q must be a scalar", ErrInvalidInput, k)
		default:
			p[k] = t
		}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("params from json: %w", err)
	}
	return p, nil
}

func ensureEOF(dec *json.Decoder) error {
	var extra any
	if err := dec.Decode(&extra); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return errors.New("extra data after object")
}
