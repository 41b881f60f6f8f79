package route

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
)

// Codec encodes response bodies and decodes request bodies.
type Codec interface {
	ContentType() string
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
}

// Discriminator is the JSON member naming the concrete variant of a
// polymorphic body.
const Discriminator = "$type"

// Decoding errors for polymorphic bodies.
var (
	ErrEmptyBody       = errors.New("empty body")
	ErrMissingVariant  = errors.New("missing " + Discriminator + " discriminator")
	ErrUnknownVariant  = errors.New("unknown " + Discriminator + " discriminator")
	ErrVariantMismatch = errors.New("variant does not implement base type")
)

type variants struct {
	byName map[string]reflect.Type
}

// JSONCodec is the default Codec. Interface-typed bodies are supported by
// registering their concrete variants under a discriminator name.
type JSONCodec struct {
	mu       sync.RWMutex
	bases    map[reflect.Type]*variants
	names    map[reflect.Type]string
	disallow bool
}

// NewJSONCodec returns a JSONCodec with no registered variants.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{
		bases: make(map[reflect.Type]*variants),
		names: make(map[reflect.Type]string),
	}
}

// DisallowUnknownFields makes decoding reject objects with unknown members.
func (c *JSONCodec) DisallowUnknownFields() *JSONCodec {
	c.disallow = true
	return c
}

// RegisterVariant registers V as the concrete type decoded for base type B
// when the discriminator equals name. V must implement B.
func RegisterVariant[B, V any](c *JSONCodec, name string) {
	base := reflect.TypeFor[B]()
	v := reflect.TypeFor[V]()
	if !v.AssignableTo(base) {
		panic(fmt.Errorf("%w: %s is not a %s", ErrVariantMismatch, v, base))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.bases[base]
	if !ok {
		set = &variants{byName: make(map[string]reflect.Type)}
		c.bases[base] = set
	}
	set.byName[name] = v
	c.names[v] = name
}

func (*JSONCodec) ContentType() string { return "application/json" }

// Encode writes v as JSON. Registered variants get the discriminator as their
// first member, at the top level and as elements of top-level slices and
// arrays. Variants nested in struct fields or maps are encoded untagged.
func (c *JSONCodec) Encode(w io.Writer, v any) error {
	b, err := c.marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func (c *JSONCodec) marshal(v any) ([]byte, error) {
	if name, ok := c.variantName(v); ok {
		return tagged(v, name)
	}
	if !c.walkable(v) {
		return json.Marshal(v)
	}

	rv := reflect.ValueOf(v)
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := range rv.Len() {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := c.marshal(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// walkable reports whether v is a slice or array whose elements may be
// registered variants.
func (c *JSONCodec) walkable(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(json.Marshaler); ok {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return false
		}
	case reflect.Array:
	default:
		return false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names) > 0
}

func tagged(v any, name string) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 || b[0] != '{' {
		return nil, fmt.Errorf("encode %T: variant must encode as an object", v)
	}

	tag, err := json.Marshal(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"` + Discriminator + `":`)
	buf.Write(tag)
	if !bytes.Equal(b, []byte("{}")) {
		buf.WriteByte(',')
	}
	buf.Write(b[1:])
	return buf.Bytes(), nil
}

// Decode reads JSON into v, which must be a non-nil pointer. When the pointee
// is a registered base type, or a slice of one, the discriminator selects
// the concrete variant before any field is decoded.
func (c *JSONCodec) Decode(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyBody
	}

	target := reflect.ValueOf(v)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("decode into %T: not a pointer", v)
	}
	dst := target.Elem()

	if set := c.variantsOf(dst.Type()); set != nil {
		val, err := c.decodeVariant(data, set)
		if err != nil {
			return err
		}
		dst.Set(val)
		return nil
	}

	if dst.Kind() == reflect.Slice {
		if set := c.variantsOf(dst.Type().Elem()); set != nil {
			return c.decodeVariants(data, dst, set)
		}
	}
	return c.unmarshal(data, v)
}

func (c *JSONCodec) decodeVariants(data []byte, dst reflect.Value, set *variants) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := reflect.MakeSlice(dst.Type(), 0, len(items))
	for i, item := range items {
		val, err := c.decodeVariant(item, set)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out = reflect.Append(out, val)
	}
	dst.Set(out)
	return nil
}

func (c *JSONCodec) decodeVariant(data []byte, set *variants) (reflect.Value, error) {
	var head map[string]json.RawMessage
	if err := json.Unmarshal(data, &head); err != nil {
		return reflect.Value{}, err
	}
	raw, ok := head[Discriminator]
	if !ok {
		return reflect.Value{}, ErrMissingVariant
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %w", ErrMissingVariant, err)
	}
	concrete, ok := set.byName[name]
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}

	delete(head, Discriminator)
	rest, err := json.Marshal(head)
	if err != nil {
		return reflect.Value{}, err
	}

	ptr := reflect.New(concrete)
	if err := c.unmarshal(rest, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

func (c *JSONCodec) unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.disallow {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}

func (c *JSONCodec) variantsOf(t reflect.Type) *variants {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bases[t]
}

func (c *JSONCodec) variantName(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	t := reflect.TypeOf(v)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.names[t]; ok {
		return name, true
	}
	if t.Kind() == reflect.Pointer {
		name, ok := c.names[t.Elem()]
		return name, ok
	}
	return "", false
}
