package nemesis

import (
	"io"
)

// Mode selects the compressor strategy. Accurate reproduces the historical
// Sega compressor's Fano-coded output byte-for-byte on many inputs; Optimal
// produces length-limited canonical Huffman codes that are never larger.
type Mode int

const (
	Accurate Mode = iota
	Optimal
)

// Compress reads raw tile bytes from r (a whole number of 32-byte tiles, at
// most 0x7FFF of them) and writes a Nemesis bitstream to w, trying both
// regular and XOR-filtered codings and keeping whichever rounds to fewer
// output bytes (spec §4.7).
func Compress(mode Mode, r ByteReader, w ByteWriter) error {
	buf, err := readAll(r)
	if err != nil {
		return err
	}
	if len(buf) == 0 || len(buf)%32 != 0 {
		return ErrInvalidSize
	}
	tileCount := len(buf) / 32
	if tileCount > 0x7FFF {
		return ErrInvalidSize
	}

	regular, err := countOccurrences(buf, false)
	if err != nil {
		return err
	}
	xor, err := countOccurrences(buf, true)
	if err != nil {
		return err
	}

	computeCodes := computeCodesFano
	if mode == Optimal {
		computeCodes = computeCodesHuffman
	}
	computeCodes(regular)
	computeCodes(xor)

	regularBytes := (estimateTotalBits(regular) + 7) / 8
	xorBytes := (estimateTotalBits(xor) + 7) / 8

	chosen, useXor := regular, false
	if xorBytes < regularBytes {
		chosen, useXor = xor, true
	}

	headerWord := uint16(tileCount)
	if useXor {
		headerWord |= 0x8000
	}
	if err := wrapWrite(w.WriteByte(byte(headerWord >> 8))); err != nil {
		return err
	}
	if err := wrapWrite(w.WriteByte(byte(headerWord))); err != nil {
		return err
	}

	if err := emitCodeTable(w, chosen); err != nil {
		return err
	}

	return emitPayload(mode, w, buf, chosen, useXor)
}

// readAll drains r to a byte slice, treating io.EOF as the natural end of
// input (compression's throw_on_eof == false mode).
func readAll(r ByteReader) ([]byte, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return buf, nil
			}
			return nil, wrapRead(err, false)
		}
		buf = append(buf, b)
	}
}

// countOccurrences tokenizes buf (optionally XOR-filtered) and returns a
// symbolTable with occurrences filled in, codes not yet assigned.
func countOccurrences(buf []byte, xorMode bool) (*symbolTable, error) {
	var table symbolTable
	src := newNybbleSource(NewByteSliceReader(buf), xorMode, false)
	err := tokenizeRuns(src, func(value, length uint8) error {
		table[symbolIndex(value, length)].occurrences++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// emitPayload re-tokenizes buf a third time (spec §4.7 step 5) and writes
// each run as its assigned code, or as an inline escape if unqualified,
// then flushes the trailing partial byte.
func emitPayload(mode Mode, w ByteWriter, buf []byte, table *symbolTable, xorMode bool) error {
	bw := newBitWriter(w)
	src := newNybbleSource(NewByteSliceReader(buf), xorMode, false)

	err := tokenizeRuns(src, func(value, length uint8) error {
		r := table[symbolIndex(value, length)]
		if r.codeBits > 0 {
			return bw.writeBits(uint32(r.code), r.codeBits)
		}
		if err := bw.writeBits(reservedPrefix, reservedPrefixBits); err != nil {
			return err
		}
		if err := bw.writeBits(uint32(length-1), 3); err != nil {
			return err
		}
		return bw.writeBits(uint32(value), 4)
	})
	if err != nil {
		return err
	}

	wrotePartial, err := bw.flush()
	if err != nil {
		return err
	}

	// The historical accurate-mode compressor always emits a trailing zero
	// byte when the stream was already byte-aligned (spec §4.7 step 6, §9).
	if mode == Accurate && !wrotePartial {
		return wrapWrite(w.WriteByte(0))
	}
	return nil
}
