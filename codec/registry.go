package codec

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leaseworks/rentledger/domain"
)

var (
	// ErrNoCodecRegistered is returned when a value type has no registered codec.
	// It surfaces at encode time so that a bad payload fails the append before
	// anything is persisted, never at decode time.
	ErrNoCodecRegistered = errors.New("no codec registered for type")

	// ErrDecodingFailed is returned when a stored representation cannot be
	// converted back into its domain value type.
	ErrDecodingFailed = errors.New("decoding stored representation failed")

	// ErrEncodingFailed is returned when a domain value cannot be converted
	// into its storage representation.
	ErrEncodingFailed = errors.New("encoding domain value failed")
)

// Codec converts a single domain value type to and from its storage-neutral
// representation. Encode produces a JSON-safe value (string, number, bool,
// slice, or map); Decode is its exact inverse.
type Codec struct {
	Encode func(value any) (any, error)
	Decode func(repr any) (any, error)
}

// Registry maps domain value types to their codecs. Encoding dispatches on
// the value's dynamic type; decoding dispatches on the declared target type.
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[reflect.Type]Codec
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[reflect.Type]Codec)}
}

// NewDefaultRegistry creates a Registry with codecs for the value types the
// domain uses in event payloads: domain.Date, uuid.UUID and time.Time.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()

	RegisterCodec(registry,
		func(d domain.Date) (any, error) {
			return d.String(), nil
		},
		func(repr any) (domain.Date, error) {
			s, ok := repr.(string)
			if !ok {
				return domain.Date{}, fmt.Errorf("expected string, got %T", repr)
			}
			return domain.ParseDate(s)
		},
	)

	RegisterCodec(registry,
		func(id uuid.UUID) (any, error) {
			return id.String(), nil
		},
		func(repr any) (uuid.UUID, error) {
			s, ok := repr.(string)
			if !ok {
				return uuid.Nil, fmt.Errorf("expected string, got %T", repr)
			}
			return uuid.Parse(s)
		},
	)

	RegisterCodec(registry,
		func(t time.Time) (any, error) {
			return t.UTC().Format(time.RFC3339Nano), nil
		},
		func(repr any) (time.Time, error) {
			s, ok := repr.(string)
			if !ok {
				return time.Time{}, fmt.Errorf("expected string, got %T", repr)
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return time.Time{}, err
			}
			return t.UTC(), nil
		},
	)

	return registry
}

// RegisterCodec registers a typed encode/decode pair for T on the registry.
func RegisterCodec[T any](r *Registry, encode func(T) (any, error), decode func(any) (T, error)) {
	r.Register(reflect.TypeOf(*new(T)), Codec{
		Encode: func(value any) (any, error) {
			typed, ok := value.(T)
			if !ok {
				return nil, fmt.Errorf("expected %T, got %T", *new(T), value)
			}
			return encode(typed)
		},
		Decode: func(repr any) (any, error) {
			return decode(repr)
		},
	})
}

// Register adds a codec for the given type, replacing any previous registration.
func (r *Registry) Register(t reflect.Type, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[t] = c
}

// Lookup returns the codec registered for the given type.
func (r *Registry) Lookup(t reflect.Type) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.codecs[t]

	return c, ok
}

// Encode converts a domain value into its storage representation,
// dispatching on the value's dynamic type.
func (r *Registry) Encode(value any) (any, error) {
	c, ok := r.Lookup(reflect.TypeOf(value))
	if !ok {
		return nil, errors.Join(ErrNoCodecRegistered, fmt.Errorf("type %T", value))
	}

	encoded, err := c.Encode(value)
	if err != nil {
		return nil, errors.Join(ErrEncodingFailed, err)
	}

	return encoded, nil
}

// Decode converts a storage representation back into a value of the declared
// target type. It is the exact inverse of Encode for every registered type.
func (r *Registry) Decode(repr any, target reflect.Type) (any, error) {
	c, ok := r.Lookup(target)
	if !ok {
		return nil, errors.Join(ErrNoCodecRegistered, fmt.Errorf("type %s", target))
	}

	decoded, err := c.Decode(repr)
	if err != nil {
		return nil, errors.Join(ErrDecodingFailed, err)
	}

	return decoded, nil
}
