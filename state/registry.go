package state

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrAlreadyRegistered    = errors.New("entity name already registered")
	ErrUnknownEntity        = errors.New("no constructor registered for entity name")
	ErrIncompatibleOverride = errors.New("override does not produce the registered entity shape")
)

// Constructor builds one entity from a raw payload. Payloads reach it
// pre-enriched by the action layer (guild_id, channel_id injected where
// the envelope carries them out-of-band).
type Constructor func(c *Client, data RawData) (Entity, error)

// Registry maps entity-type names to constructors. Every construction
// site in stores and actions goes through it, so an embedding
// application can substitute richer entity types process-wide without
// touching store code. Populate it at startup and leave it alone after;
// reads are lock-cheap.
type Registry struct {
	mu     sync.RWMutex
	ctors  map[string]Constructor
	protos map[string]reflect.Type
}

func NewRegistry() *Registry {
	return &Registry{
		ctors:  make(map[string]Constructor),
		protos: make(map[string]reflect.Type),
	}
}

// Register binds name to fn. proto is an instance of the built-in type;
// overrides must keep producing values that embed it.
func (r *Registry) Register(name string, proto Entity, fn Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.ctors[name] = fn
	r.protos[name] = reflect.TypeOf(proto)
	return nil
}

// Override replaces the constructor for name with wrap(current). The
// replacement must remain a behavioral subtype of the original: it has
// to be constructible the same way and produce a value that is, or
// embeds, the built-in type. Shape is verified on construction.
func (r *Registry) Override(name string, wrap func(Constructor) Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.ctors[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	replacement := wrap(current)
	if replacement == nil {
		return fmt.Errorf("%w: %s", ErrIncompatibleOverride, name)
	}
	r.ctors[name] = replacement
	return nil
}

// New constructs an entity by registered name.
func (r *Registry) New(name string, c *Client, data RawData) (Entity, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[name]
	proto := r.protos[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	e, err := ctor(c, data)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %s returned nil", ErrIncompatibleOverride, name)
	}
	if !conformsTo(reflect.TypeOf(e), proto) {
		return nil, fmt.Errorf("%w: %s built %T", ErrIncompatibleOverride, name, e)
	}
	return e, nil
}

// entityAs extracts the built-in T from a registry product: either the
// value itself, or the embedded built-in an override wrapped around it.
// The registry has already verified the shape, so a miss here means the
// caller asked for the wrong built-in.
func entityAs[T Entity](e Entity) (T, bool) {
	if t, ok := e.(T); ok {
		return t, true
	}
	var zero T
	if v, ok := embeddedValue(reflect.ValueOf(e), reflect.TypeOf(zero)); ok {
		return v.Interface().(T), true
	}
	return zero, false
}

// embeddedValue walks anonymous fields the same way conformsTo walks
// types, returning the first value of the wanted type.
func embeddedValue(v reflect.Value, want reflect.Type) (reflect.Value, bool) {
	if v.Type() == want {
		return v, true
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	for i := 0; i < v.NumField(); i++ {
		if !v.Type().Field(i).Anonymous {
			continue
		}
		f := v.Field(i)
		if f.Type() == want {
			return f, true
		}
		if f.CanAddr() && f.Addr().Type() == want {
			return f.Addr(), true
		}
		if nested, ok := embeddedValue(f, want); ok {
			return nested, true
		}
	}
	return reflect.Value{}, false
}

// conformsTo reports whether got is proto or a struct (transitively)
// embedding proto's element type.
func conformsTo(got, proto reflect.Type) bool {
	if got == proto {
		return true
	}
	if got.Kind() == reflect.Ptr {
		got = got.Elem()
	}
	want := proto
	if want.Kind() == reflect.Ptr {
		want = want.Elem()
	}
	if got == want {
		return true
	}
	if got.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < got.NumField(); i++ {
		f := got.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft == want || conformsTo(ft, want) {
			return true
		}
	}
	return false
}
