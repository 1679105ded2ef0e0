// Package introspect implements the PVAccess introspection engine: the
// recursive decoding and encoding of a channel's data-type graph, and
// the per-connection registry of previously-defined types that lets
// repeated references collapse to a 16-bit back-reference on the wire.
package introspect

import (
	"errors"
	"sync"

	"github.com/rcarmo/go-pva/internal/fieldtype"
	"github.com/rcarmo/go-pva/internal/pvabuf"
)

// ErrUnknownTypeID is returned when an Only-ID reference names a type
// id the registry has not seen a Full-ID/Full-Tagged-ID definition for.
var ErrUnknownTypeID = errors.New("introspect: unknown type id")

// ErrMalformedArrayElement is returned when a structure/union Full-ID
// definition carries an array flag other than Scalar but does not
// wrap exactly one element DataObject.
var ErrMalformedArrayElement = errors.New("introspect: array-of-complex definition missing its element")

// Field is one named child of a structure or union DataObject.
type Field struct {
	Name  []byte
	Child *DataObject
}

// DataObject is a decoded or constructed node in an introspection type
// graph: a DataType plus, for structured types, its name and children.
//
// Children are owned by their parent. The registry owns the root of
// every type it registers and hands out the same *DataObject to every
// Only-ID reference, so callers must not mutate a DataObject reached
// through a registry lookup.
type DataObject struct {
	Type fieldtype.DataType
	// Name is the type name for structures, unions, and bounded
	// strings; empty for scalars and variant unions.
	Name []byte
	// Tag carries a Full-Tagged-ID definition's tag string; empty
	// otherwise.
	Tag []byte
	// Size is |Fields| for structures/unions, the bound for a
	// bounded-string or a fixed/bounded array of primitives, and 0
	// for every other scalar.
	Size uint32
	// Fields holds the structure/union's named children. Empty for
	// every other DataType.
	Fields []Field
}

// Registry is the per-connection mapping from 16-bit type id to the
// DataObject it names. A Registry is not safe for concurrent decode
// and encode use on the same connection; PVA sessions are single
// stream, single reader/writer goroutine pair, matching the
// dispatcher's own per-connection state (spec §3 Connection state).
type Registry struct {
	mu     sync.Mutex
	byID   map[uint16]*DataObject
	seen   map[*DataObject]uint16
	nextID uint16
}

// NewRegistry returns an empty per-connection registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[uint16]*DataObject),
		seen: make(map[*DataObject]uint16),
	}
}

// Get resolves a previously registered type id.
func (r *Registry) Get(id uint16) (*DataObject, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.byID[id]
	return obj, ok
}

// register records obj under an id read off the wire (decode path).
func (r *Registry) register(id uint16, obj *DataObject) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = obj
	r.seen[obj] = id
}

// IDFor reports whether obj has already been assigned an id by this
// registry (encode path), and if so, what it is.
func (r *Registry) IDFor(obj *DataObject) (uint16, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.seen[obj]
	return id, ok
}

// Assign allocates the next free id for obj (encode path) and records
// the mapping both ways, the same as a decoded Full-ID definition
// would.
func (r *Registry) Assign(obj *DataObject) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.byID[id] = obj
	r.seen[obj] = id
	return id
}

// Decode reads one field-encoding byte and the type graph it
// introduces, per spec §4.3. A nil, nil result means the wire carried
// NULL ("no type").
func Decode(r *pvabuf.Reader, reg *Registry) (*DataObject, error) {
	b, err := r.U8()
	if err != nil {
		return nil, err
	}

	switch b {
	case fieldtype.EncodingNull:
		return nil, nil

	case fieldtype.EncodingOnlyID:
		id, err := r.U16()
		if err != nil {
			return nil, err
		}
		obj, ok := reg.Get(id)
		if !ok {
			return nil, ErrUnknownTypeID
		}
		return obj, nil

	case fieldtype.EncodingFullID, fieldtype.EncodingFullTaggedID:
		return decodeFullDefinition(r, reg, b == fieldtype.EncodingFullTaggedID)

	default:
		return decodePrimitive(r, b)
	}
}

func decodeFullDefinition(r *pvabuf.Reader, reg *Registry, tagged bool) (*DataObject, error) {
	id, err := r.U16()
	if err != nil {
		return nil, err
	}

	var tag []byte
	if tagged {
		if tag, err = r.String(); err != nil {
			return nil, err
		}
	}

	descByte, err := r.U8()
	if err != nil {
		return nil, err
	}
	dt, err := fieldtype.Decode(descByte)
	if err != nil {
		return nil, err
	}

	switch {
	case dt.Major == fieldtype.Complex && (dt.Sub == fieldtype.Structure || dt.Sub == fieldtype.Union) && dt.Array == fieldtype.Scalar:
		name, err := r.String()
		if err != nil {
			return nil, err
		}
		count, err := r.Size()
		if err != nil {
			return nil, err
		}
		fields := make([]Field, 0, count)
		for i := uint64(0); i < count; i++ {
			fieldName, err := r.String()
			if err != nil {
				return nil, err
			}
			child, err := Decode(r, reg)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: fieldName, Child: child})
		}
		obj := &DataObject{Type: dt, Name: name, Tag: tag, Size: uint32(count), Fields: fields}
		reg.register(id, obj)
		return obj, nil

	case dt.Major == fieldtype.Complex && (dt.Sub == fieldtype.Structure || dt.Sub == fieldtype.Union):
		// Array of structure/union: the definition wraps a single
		// element type and is not itself retained as a node (spec
		// §4.3 step 4) — the returned object is the element, not a
		// wrapper, so the outer array shape is intentionally dropped.
		child, err := Decode(r, reg)
		if err != nil {
			return nil, err
		}
		if child == nil {
			return nil, ErrMalformedArrayElement
		}
		reg.register(id, child)
		return child, nil

	case dt.Major == fieldtype.Complex && dt.Sub == fieldtype.VariantUnion:
		obj := &DataObject{Type: dt, Tag: tag}
		reg.register(id, obj)
		return obj, nil

	case dt.Major == fieldtype.Complex && dt.Sub == fieldtype.BoundedString:
		name, err := r.String()
		if err != nil {
			return nil, err
		}
		bound, err := r.Size()
		if err != nil {
			return nil, err
		}
		obj := &DataObject{Type: dt, Name: name, Tag: tag, Size: uint32(bound)}
		reg.register(id, obj)
		return obj, nil

	default:
		return nil, fieldtype.ErrReserved
	}
}

func decodePrimitive(r *pvabuf.Reader, descByte byte) (*DataObject, error) {
	dt, err := fieldtype.Decode(descByte)
	if err != nil {
		return nil, err
	}
	var size uint32
	if dt.Array == fieldtype.FixedArray || dt.Array == fieldtype.BoundedArray {
		n, err := r.Size()
		if err != nil {
			return nil, err
		}
		size = uint32(n)
	}
	return &DataObject{Type: dt, Size: size}, nil
}

// Encode writes obj's field-encoding byte and, for the first
// occurrence of a complex type, its full definition; every later
// reference to the same *DataObject emits an Only-ID back-reference
// instead of redefining it.
func Encode(w *pvabuf.Writer, obj *DataObject, reg *Registry) error {
	if obj == nil {
		w.U8(fieldtype.EncodingNull)
		return nil
	}

	if obj.Type.Major != fieldtype.Complex {
		w.U8(fieldtype.Encode(obj.Type))
		if obj.Type.Array == fieldtype.FixedArray || obj.Type.Array == fieldtype.BoundedArray {
			w.Size(uint64(obj.Size))
		}
		return nil
	}

	if id, ok := reg.IDFor(obj); ok {
		w.U8(fieldtype.EncodingOnlyID)
		w.U16(id)
		return nil
	}

	id := reg.Assign(obj)
	if len(obj.Tag) > 0 {
		w.U8(fieldtype.EncodingFullTaggedID)
	} else {
		w.U8(fieldtype.EncodingFullID)
	}
	w.U16(id)
	if len(obj.Tag) > 0 {
		w.String(obj.Tag)
	}
	w.U8(fieldtype.Encode(obj.Type))

	switch obj.Type.Sub {
	case fieldtype.Structure, fieldtype.Union:
		w.String(obj.Name)
		w.Size(uint64(len(obj.Fields)))
		for _, f := range obj.Fields {
			w.String(f.Name)
			if err := Encode(w, f.Child, reg); err != nil {
				return err
			}
		}
	case fieldtype.VariantUnion:
		// no further body
	case fieldtype.BoundedString:
		w.String(obj.Name)
		w.Size(uint64(obj.Size))
	}
	return nil
}
