package nemesis

// Decompress consumes a Nemesis bitstream from r and writes the original
// tile bytes to w (spec §4.8).
func Decompress(r ByteReader, w ByteWriter) error {
	headerHi, err := r.ReadByte()
	if err != nil {
		return wrapRead(err, true)
	}
	headerLo, err := r.ReadByte()
	if err != nil {
		return wrapRead(err, true)
	}
	headerWord := uint16(headerHi)<<8 | uint16(headerLo)
	xorMode := headerWord&0x8000 != 0
	tileCount := headerWord & 0x7FFF

	table, err := parseCodeTable(r)
	if err != nil {
		return err
	}

	dec := &decodeState{w: w, xorMode: xorMode}
	br := newBitReader(r)

	nybblesRemaining := uint32(tileCount) * 64
	for nybblesRemaining > 0 {
		value, length, err := decodeOneRun(br, table)
		if err != nil {
			return err
		}
		if uint32(length) > nybblesRemaining {
			return ErrOverlongPayload
		}
		for i := uint8(0); i < length; i++ {
			if err := dec.emitNybble(value); err != nil {
				return err
			}
		}
		nybblesRemaining -= uint32(length)
	}

	return nil
}

// decodeOneRun reads either a coded symbol or an inline-escaped
// (length, value) pair from br, per spec §4.8's payload loop.
func decodeOneRun(br *bitReader, table *[256]codeTableEntry) (value, length uint8, err error) {
	var code uint32
	var codeBits uint8

	for {
		bit, err := br.popBit()
		if err != nil {
			return 0, 0, err
		}
		code = code<<1 | uint32(bit)
		codeBits++

		if codeBits > maxCodeBits {
			return 0, 0, ErrTruncatedPayload
		}

		if codeBits == reservedPrefixBits && code == reservedPrefix {
			lengthMinus1, err := br.popBits(3)
			if err != nil {
				return 0, 0, err
			}
			val, err := br.popBits(4)
			if err != nil {
				return 0, 0, err
			}
			return uint8(val), uint8(lengthMinus1) + 1, nil
		}

		idx := int(code) << (8 - int(codeBits))
		entry := table[idx]
		if entry.present && entry.codeBits == codeBits {
			return entry.value, entry.length, nil
		}
	}
}

// decodeState accumulates decoded nybbles into 32-bit tile rows, applying
// the inverse XOR filter (spec §4.8 "Emit") before writing each row's 4
// bytes.
type decodeState struct {
	w            ByteWriter
	xorMode      bool
	row          uint32
	nybblesInRow uint8
	previousRow  uint32
}

func (d *decodeState) emitNybble(value uint8) error {
	d.row = d.row<<4 | uint32(value)
	d.nybblesInRow++
	if d.nybblesInRow < 8 {
		return nil
	}

	finalRow := d.row
	if d.xorMode {
		finalRow ^= d.previousRow
	}
	for i := 3; i >= 0; i-- {
		b := byte(finalRow >> uint(i*8))
		if err := wrapWrite(d.w.WriteByte(b)); err != nil {
			return err
		}
	}
	d.previousRow = finalRow
	d.row = 0
	d.nybblesInRow = 0
	return nil
}
