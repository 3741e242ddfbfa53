// Package contenthash derives stable digests from structured content.
//
// Content is first reduced to a canonical JSON form (sorted keys at every
// depth, compact separators, no HTML escaping) so that logically equal values
// hash equally regardless of map iteration order or Go type.
package contenthash

import (
	"bytes"
	"encoding"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"unicode/utf8"

	apperrors "github.com/neetkit/cardforge/internal/platform/errors"
)

// ErrCanonicalization matches every canonicalization failure with errors.Is.
var ErrCanonicalization = apperrors.New(apperrors.CodeCanonicalizationFailed, "content cannot be canonicalized")

var errInvalidUTF8 = stderrors.New("string is not valid utf-8")

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// Canonicalize returns the canonical JSON encoding of v.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, canonicalizationError(v, err)
	}
	// The encoder replaces invalid utf-8 with U+FFFD, which would give
	// distinct inputs the same digest.
	if err := checkUTF8(reflect.ValueOf(v)); err != nil {
		return nil, canonicalizationError(v, err)
	}

	// Round-trip through a generic value so struct field order and map
	// order collapse to the sorted-key order the encoder writes for maps.
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var generic any
	if err := decoder.Decode(&generic); err != nil {
		return nil, canonicalizationError(v, err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(generic); err != nil {
		return nil, canonicalizationError(v, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func canonicalizationError(v any, cause error) error {
	var unsupportedType *json.UnsupportedTypeError
	var unsupportedValue *json.UnsupportedValueError
	reason := "encode"
	switch {
	case stderrors.As(cause, &unsupportedType):
		reason = "unsupported type"
	case stderrors.As(cause, &unsupportedValue):
		reason = "unsupported value"
	case stderrors.Is(cause, errInvalidUTF8):
		reason = "invalid utf-8"
	}
	return apperrors.WrapWithMetadata(
		apperrors.CodeCanonicalizationFailed,
		fmt.Sprintf("canonicalize %T", v),
		map[string]string{"Reason": reason},
		cause,
	)
}

// checkUTF8 walks the values json.Marshal encodes as strings: string values,
// string map keys and exported struct fields. It runs after a successful
// Marshal, so the value graph is known to be acyclic.
func checkUTF8(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	if v.Type().Implements(jsonMarshalerType) || v.Type().Implements(textMarshalerType) {
		return nil
	}
	switch v.Kind() {
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return fmt.Errorf("%w: %q", errInvalidUTF8, v.String())
		}
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return checkUTF8(v.Elem())
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if key := iter.Key(); key.Kind() == reflect.String && !utf8.ValidString(key.String()) {
				return fmt.Errorf("%w: key %q", errInvalidUTF8, key.String())
			}
			if err := checkUTF8(iter.Value()); err != nil {
				return err
			}
		}
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		fallthrough
	case reflect.Array:
		for i := range v.Len() {
			if err := checkUTF8(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			field := t.Field(i)
			if (!field.IsExported() && !field.Anonymous) || field.Tag.Get("json") == "-" {
				continue
			}
			if err := checkUTF8(v.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}
