package wire

import "github.com/arloliu/jlcodec/tag"

// PutString writes s as a STRING/LONG_STRING payload: a length-prefixed
// UTF-8 byte sequence with no canonicalization. Callers that must honor
// the "len(s) > 7 is deduplicated" rule (spec.md §4.2/§4.4) call
// TryBackrefString first and only reach PutString on a fresh string.
func (w *Writer) PutString(s string) error {
	return w.putLengthPrefixed(tag.String, tag.LongString, s)
}

// GetString reads a STRING/LONG_STRING payload given its already-consumed
// tag t.
func (r *Reader) GetString(t tag.Tag) (string, error) {
	return r.getLengthPrefixed(t, tag.String, tag.LongString)
}

// PutSymbol writes s as a symbol: the interned literal tag when s is one
// of tag.InternedSymbols, otherwise a SYMBOL/LONG_SYMBOL length-prefixed
// payload. Unlike plain strings, symbols are always eligible for
// identity back-reference regardless of length (spec.md §4.4); callers
// consult TryBackrefString before falling back to PutSymbol exactly as
// they do for PutString.
func (w *Writer) PutSymbol(s string) error {
	if lit, ok := tag.SymbolLiteral(s); ok {
		return w.EmitAsValue(lit)
	}

	return w.putLengthPrefixed(tag.Symbol, tag.LongSymbol, s)
}

// GetSymbol reads a symbol given its already-consumed tag t, resolving
// interned literal tags before falling back to the length-prefixed form.
func (r *Reader) GetSymbol(t tag.Tag) (string, error) {
	if name, ok := tag.LiteralSymbolName(t); ok {
		return name, nil
	}

	return r.getLengthPrefixed(t, tag.Symbol, tag.LongSymbol)
}

func (w *Writer) putLengthPrefixed(short, long tag.Tag, s string) error {
	b := []byte(s)
	if len(b) < 0x100 {
		if err := w.EmitTag(short); err != nil {
			return err
		}
		if err := w.PutByte(byte(len(b))); err != nil {
			return err
		}

		return w.PutBytes(b)
	}

	if err := w.EmitTag(long); err != nil {
		return err
	}
	if err := w.PutUint32(uint32(len(b))); err != nil {
		return err
	}

	return w.PutBytes(b)
}

func (r *Reader) getLengthPrefixed(t, short, long tag.Tag) (string, error) {
	switch t {
	case short:
		n, err := r.GetByte()
		if err != nil {
			return "", err
		}
		b, err := r.GetBytes(int(n))
		if err != nil {
			return "", err
		}

		return string(b), nil
	case long:
		n, err := r.GetUint32()
		if err != nil {
			return "", err
		}
		b, err := r.GetBytes(int(n))
		if err != nil {
			return "", err
		}

		return string(b), nil
	default:
		return "", errUnexpectedStringTag(t)
	}
}
