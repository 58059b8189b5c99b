package codec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrPayloadNotAStruct is returned when the value passed for payload
	// transcoding is not a struct (or pointer to one).
	ErrPayloadNotAStruct = errors.New("event payload must be a struct")

	// ErrInvalidPayloadJSON is returned when stored payload bytes are not valid JSON.
	ErrInvalidPayloadJSON = errors.New("payload json is not valid")
)

// MarshalPayload converts an event struct into its stored JSON form.
// Scalar fields pass through unchanged, registered value types are encoded
// via the registry, and any unregistered non-scalar field type fails with
// ErrNoCodecRegistered before anything is persisted.
func MarshalPayload(r *Registry, event any) ([]byte, error) {
	v := reflect.ValueOf(event)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, errors.Join(ErrPayloadNotAStruct, fmt.Errorf("got %T", event))
	}

	repr, err := encodeStruct(r, v)
	if err != nil {
		return nil, err
	}

	payloadJSON, err := jsoniter.ConfigFastest.Marshal(repr)
	if err != nil {
		return nil, errors.Join(ErrEncodingFailed, err)
	}

	return payloadJSON, nil
}

// UnmarshalPayload rebuilds an event struct from its stored JSON form.
// The target must be a pointer to a struct of the same shape the payload was
// marshaled from; registered value types are decoded via the registry.
func UnmarshalPayload(r *Registry, payloadJSON []byte, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errors.Join(ErrPayloadNotAStruct, fmt.Errorf("target must be a struct pointer, got %T", target))
	}

	var repr map[string]any
	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &repr); err != nil {
		return errors.Join(ErrInvalidPayloadJSON, err)
	}

	return decodeStruct(r, repr, v.Elem())
}

func encodeStruct(r *Registry, v reflect.Value) (map[string]any, error) {
	repr := make(map[string]any, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		if !field.IsExported() {
			continue
		}

		name := fieldName(field)
		if name == "-" {
			continue
		}

		encoded, err := encodeValue(r, v.Field(i))
		if err != nil {
			return nil, errors.Join(err, fmt.Errorf("field %s", field.Name))
		}

		repr[name] = encoded
	}

	return repr, nil
}

func encodeValue(r *Registry, v reflect.Value) (any, error) {
	if c, ok := r.Lookup(v.Type()); ok {
		encoded, err := c.Encode(v.Interface())
		if err != nil {
			return nil, errors.Join(ErrEncodingFailed, err)
		}
		return encoded, nil
	}

	switch v.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v.Interface(), nil

	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		return encodeValue(r, v.Elem())

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}
		elements := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			encoded, err := encodeValue(r, v.Index(i))
			if err != nil {
				return nil, err
			}
			elements[i] = encoded
		}
		return elements, nil

	default:
		// Struct, map, chan, func etc. are value types the storage substrate
		// cannot hold without an explicit codec.
		return nil, errors.Join(ErrNoCodecRegistered, fmt.Errorf("type %s", v.Type()))
	}
}

func decodeStruct(r *Registry, repr map[string]any, v reflect.Value) error {
	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		if !field.IsExported() {
			continue
		}

		name := fieldName(field)
		if name == "-" {
			continue
		}

		stored, ok := repr[name]
		if !ok || stored == nil {
			continue // absent or null keeps the zero value
		}

		if err := decodeValue(r, stored, v.Field(i)); err != nil {
			return errors.Join(err, fmt.Errorf("field %s", field.Name))
		}
	}

	return nil
}

func decodeValue(r *Registry, stored any, v reflect.Value) error {
	if c, ok := r.Lookup(v.Type()); ok {
		decoded, err := c.Decode(stored)
		if err != nil {
			return errors.Join(ErrDecodingFailed, err)
		}

		decodedValue := reflect.ValueOf(decoded)
		if !decodedValue.Type().AssignableTo(v.Type()) {
			return errors.Join(ErrDecodingFailed, fmt.Errorf("codec for %s produced %T", v.Type(), decoded))
		}

		v.Set(decodedValue)

		return nil
	}

	switch v.Kind() {
	case reflect.String:
		s, ok := stored.(string)
		if !ok {
			return errors.Join(ErrDecodingFailed, fmt.Errorf("expected string, got %T", stored))
		}
		v.SetString(s)

	case reflect.Bool:
		b, ok := stored.(bool)
		if !ok {
			return errors.Join(ErrDecodingFailed, fmt.Errorf("expected bool, got %T", stored))
		}
		v.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := storedNumber(stored)
		if err != nil {
			return err
		}
		v.SetInt(int64(n))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := storedNumber(stored)
		if err != nil {
			return err
		}
		v.SetUint(uint64(n))

	case reflect.Float32, reflect.Float64:
		n, err := storedNumber(stored)
		if err != nil {
			return err
		}
		v.SetFloat(n)

	case reflect.Pointer:
		elem := reflect.New(v.Type().Elem())
		if err := decodeValue(r, stored, elem.Elem()); err != nil {
			return err
		}
		v.Set(elem)

	case reflect.Slice:
		elements, ok := stored.([]any)
		if !ok {
			return errors.Join(ErrDecodingFailed, fmt.Errorf("expected array, got %T", stored))
		}
		slice := reflect.MakeSlice(v.Type(), len(elements), len(elements))
		for i, element := range elements {
			if err := decodeValue(r, element, slice.Index(i)); err != nil {
				return err
			}
		}
		v.Set(slice)

	default:
		return errors.Join(ErrNoCodecRegistered, fmt.Errorf("type %s", v.Type()))
	}

	return nil
}

func storedNumber(stored any) (float64, error) {
	switch n := stored.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, errors.Join(ErrDecodingFailed, fmt.Errorf("expected number, got %T", stored))
	}
}

func fieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}

	return name
}
