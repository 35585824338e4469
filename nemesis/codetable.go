package nemesis

// codeTableEntry is the decoder's per-slot record, stored at the
// left-aligned table index code<<(8-codeBits) per spec §4.8 ("Decoder
// table shape": O(1) decode per bit accumulation, traded for 256 entries
// of trivial size instead of a canonical-code walk).
type codeTableEntry struct {
	present  bool
	codeBits uint8
	value    uint8
	length   uint8
}

// emitCodeTable writes the variable-length code table for every symbol
// with codeBits > 0, in encoder order (value-major, length-minor), followed
// by the 0xFF terminator.
func emitCodeTable(w ByteWriter, table *symbolTable) error {
	lastValue := -1
	for _, idx := range codeTableOrder() {
		r := table[idx]
		if r.codeBits == 0 {
			continue
		}
		sym := symbolFromIndex(idx)
		if int(sym.value) != lastValue {
			if err := wrapWrite(w.WriteByte(0x80 | sym.value)); err != nil {
				return err
			}
			lastValue = int(sym.value)
		}
		entryByte := (sym.length-1)<<4 | r.codeBits
		if err := wrapWrite(w.WriteByte(entryByte)); err != nil {
			return err
		}
		if err := wrapWrite(w.WriteByte(r.code)); err != nil {
			return err
		}
	}
	return wrapWrite(w.WriteByte(0xFF))
}

// parseCodeTable reads a code table terminated by 0xFF, storing each entry
// at its left-aligned index.
func parseCodeTable(r ByteReader) (*[256]codeTableEntry, error) {
	var table [256]codeTableEntry
	var currentValue uint8

	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, wrapRead(err, true)
		}
		if b == 0xFF {
			break
		}
		if b&0x80 != 0 {
			currentValue = b & 0xF
			continue
		}

		lengthMinus1 := (b >> 4) & 7
		codeBits := b & 0xF
		if codeBits < 1 || codeBits > 8 {
			return nil, ErrMalformedCodeTable
		}
		codeByte, err := r.ReadByte()
		if err != nil {
			return nil, wrapRead(err, true)
		}
		if codeByte>>codeBits != 0 {
			// Stray bits above codeBits: a right-aligned codeBits-length
			// code can't have them, and left-aligning such a byte would
			// index outside the 256-entry table.
			return nil, ErrMalformedCodeTable
		}

		idx := int(codeByte) << (8 - codeBits)
		table[idx] = codeTableEntry{
			present:  true,
			codeBits: codeBits,
			value:    currentValue,
			length:   lengthMinus1 + 1,
		}
	}

	return &table, nil
}
