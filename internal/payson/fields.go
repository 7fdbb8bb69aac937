package payson

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timestampLayout is the layout Payson uses for every timestamp field.
const timestampLayout = "2006-01-02T15:04:05"

// ErrMalformedResponse marks a response field that could not be decoded.
var ErrMalformedResponse = errors.New("malformed payson response")

// Fields is the flat key-value form used on the wire in both directions.
// A key that is not present is absent; blank values are never stored.
type Fields map[string]string

// ParseFields decodes a form-urlencoded body. Only the first value of a
// repeated key is kept and blank values are dropped.
func ParseFields(body string) (Fields, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	f := make(Fields, len(values))
	for k, v := range values {
		if len(v) == 0 || v[0] == "" {
			continue
		}
		f[k] = v[0]
	}
	return f, nil
}

// Encode renders the fields as a form-urlencoded body sorted by key.
func (f Fields) Encode() string {
	values := make(url.Values, len(f))
	for k, v := range f {
		values.Set(k, v)
	}
	return values.Encode()
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Clone returns a copy that does not share storage with f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (f Fields) setString(key, v string) {
	if v != "" {
		f[key] = v
	}
}

func (f Fields) setBool(key string, v *bool) {
	if v == nil {
		return
	}
	if *v {
		f[key] = "true"
		return
	}
	f[key] = "false"
}

func (f Fields) setDecimal(key string, v decimal.Decimal) {
	f[key] = v.String()
}

func (f Fields) setJSON(key string, v any) error {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	f[key] = string(data)
	return nil
}

func (f Fields) decimal(key string) (decimal.Decimal, error) {
	raw, ok := f[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: missing %s", ErrMalformedResponse, key)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s=%q: %v", ErrMalformedResponse, key, raw, err)
	}
	return d, nil
}

func (f Fields) optionalDecimal(key string) (decimal.Decimal, error) {
	if !f.Has(key) {
		return decimal.Zero, nil
	}
	return f.decimal(key)
}

// bool accepts any letter case, so "True" from older endpoints decodes too.
func (f Fields) bool(key string) (*bool, error) {
	raw, ok := f[key]
	if !ok {
		return nil, nil
	}
	var v bool
	if err := json.Unmarshal([]byte(strings.ToLower(raw)), &v); err != nil {
		return nil, fmt.Errorf("%w: %s=%q is not a boolean", ErrMalformedResponse, key, raw)
	}
	return &v, nil
}

func (f Fields) timestamp(key string) (*time.Time, error) {
	raw, ok := f[key]
	if !ok {
		return nil, nil
	}
	t, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q: %v", ErrMalformedResponse, key, raw, err)
	}
	return &t, nil
}

func (f Fields) json(key string) (any, error) {
	raw, ok := f[key]
	if !ok {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %s is not JSON: %v", ErrMalformedResponse, key, err)
	}
	return v, nil
}
