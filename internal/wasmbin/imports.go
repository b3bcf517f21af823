package wasmbin

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// ExternKind is the kind byte of an import or export descriptor.
type ExternKind byte

const (
	ExternFunc   ExternKind = 0x00
	ExternTable  ExternKind = 0x01
	ExternMemory ExternKind = 0x02
	ExternGlobal ExternKind = 0x03
	ExternTag    ExternKind = 0x04
)

func (k ExternKind) String() string {
	switch k {
	case ExternFunc:
		return "func"
	case ExternTable:
		return "table"
	case ExternMemory:
		return "memory"
	case ExternGlobal:
		return "global"
	case ExternTag:
		return "tag"
	default:
		return fmt.Sprintf("extern(0x%02x)", byte(k))
	}
}

// Limits are memory or table limits in pages (or elements).
type Limits struct {
	Min    uint32
	Max    uint32
	HasMax bool
	Shared bool
}

// Import is one entry of a module's import section.
// Limits is set for memory and table imports.
type Import struct {
	Module string
	Name   string
	Kind   ExternKind
	Limits Limits
}

// Info is what the scanner learns about a module without compiling it.
type Info struct {
	Imports  []Import
	HasStart bool
}

// Memory returns the first memory import, if any.
func (i *Info) Memory() (Import, bool) {
	for _, imp := range i.Imports {
		if imp.Kind == ExternMemory {
			return imp, true
		}
	}
	return Import{}, false
}

// Scan walks the section headers of a binary module and decodes the import
// section. It checks framing only; full validation is left to the compiler.
func Scan(bin []byte) (*Info, error) {
	if len(bin) < 8 {
		return nil, errTruncated
	}
	if !bytes.Equal(bin[:4], magic) {
		return nil, fmt.Errorf("invalid magic number")
	}
	if !bytes.Equal(bin[4:8], version) {
		return nil, fmt.Errorf("unsupported version %x", bin[4:8])
	}

	info := &Info{}
	r := &reader{buf: bin, pos: 8}
	for r.pos < len(r.buf) {
		id, err := r.readByte()
		if err != nil {
			return nil, err
		}
		size, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("section 0x%02x size: %w", id, err)
		}
		end := r.pos + int(size)
		if end > len(r.buf) || end < r.pos {
			return nil, fmt.Errorf("section 0x%02x: %w", id, errTruncated)
		}

		switch id {
		case sectionImport:
			sub := &reader{buf: r.buf[:end], pos: r.pos}
			imports, err := sub.imports()
			if err != nil {
				return nil, fmt.Errorf("import section: %w", err)
			}
			if sub.pos != end {
				return nil, fmt.Errorf("import section: %d trailing bytes", end-sub.pos)
			}
			info.Imports = imports
		case sectionStart:
			info.HasStart = true
		}
		r.pos = end
	}
	return info, nil
}

// ParseImports returns the import list of a binary module.
func ParseImports(bin []byte) ([]Import, error) {
	info, err := Scan(bin)
	if err != nil {
		return nil, err
	}
	return info.Imports, nil
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	v, n, err := DecodeULEB128(r.buf[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

func (r *reader) name() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if uint64(r.pos)+uint64(n) > uint64(len(r.buf)) {
		return "", errTruncated
	}
	s := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	if !utf8.Valid(s) {
		return "", fmt.Errorf("name is not valid UTF-8")
	}
	return string(s), nil
}

func (r *reader) limits() (Limits, error) {
	flags, err := r.readByte()
	if err != nil {
		return Limits{}, err
	}
	if flags&^0x03 != 0 {
		return Limits{}, fmt.Errorf("unsupported limits flags 0x%02x", flags)
	}
	var l Limits
	if l.Min, err = r.u32(); err != nil {
		return Limits{}, err
	}
	if flags&0x01 != 0 {
		l.HasMax = true
		if l.Max, err = r.u32(); err != nil {
			return Limits{}, err
		}
	}
	l.Shared = flags&0x02 != 0
	return l, nil
}

func (r *reader) imports() ([]Import, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	// each entry needs at least four bytes
	if uint64(count)*4 > uint64(len(r.buf)-r.pos) {
		return nil, errTruncated
	}

	imports := make([]Import, 0, count)
	for i := uint32(0); i < count; i++ {
		var imp Import
		if imp.Module, err = r.name(); err != nil {
			return nil, fmt.Errorf("import %d module: %w", i, err)
		}
		if imp.Name, err = r.name(); err != nil {
			return nil, fmt.Errorf("import %d name: %w", i, err)
		}
		kind, err := r.readByte()
		if err != nil {
			return nil, err
		}
		imp.Kind = ExternKind(kind)

		switch imp.Kind {
		case ExternFunc:
			if _, err := r.u32(); err != nil {
				return nil, err
			}
		case ExternTable:
			if _, err := r.readByte(); err != nil { // reftype
				return nil, err
			}
			if imp.Limits, err = r.limits(); err != nil {
				return nil, err
			}
		case ExternMemory:
			if imp.Limits, err = r.limits(); err != nil {
				return nil, err
			}
		case ExternGlobal:
			// valtype, mutability
			if _, err := r.readByte(); err != nil {
				return nil, err
			}
			if _, err := r.readByte(); err != nil {
				return nil, err
			}
		case ExternTag:
			if _, err := r.readByte(); err != nil { // attribute
				return nil, err
			}
			if _, err := r.u32(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("import %s.%s: unknown kind 0x%02x", imp.Module, imp.Name, kind)
		}
		imports = append(imports, imp)
	}
	return imports, nil
}
