package nemesis

import (
	"errors"
	"testing"
)

// TestParseCodeTableRejectsStrayBits exercises a code-table entry whose
// codeBits doesn't account for all set bits in the code byte (codeBits=1,
// codeByte=0xFF): left-aligning it would index far outside the 256-entry
// table. parseCodeTable must report ErrMalformedCodeTable instead of
// panicking.
func TestParseCodeTableRejectsStrayBits(t *testing.T) {
	stream := []byte{
		0x80,       // value marker: value 0
		0x01, 0xFF, // length=1, codeBits=1, codeByte=0xFF (stray low bits)
		0xFF, // terminator
	}
	_, err := parseCodeTable(NewByteSliceReader(stream))
	if !errors.Is(err, ErrMalformedCodeTable) {
		t.Fatalf("parseCodeTable error = %v, want ErrMalformedCodeTable", err)
	}
}

func TestParseCodeTableAcceptsWellFormedEntry(t *testing.T) {
	stream := []byte{
		0x80,       // value marker: value 0
		0x01, 0x00, // length=1, codeBits=1, codeByte=0x00
		0xFF, // terminator
	}
	table, err := parseCodeTable(NewByteSliceReader(stream))
	if err != nil {
		t.Fatalf("parseCodeTable: %v", err)
	}
	entry := table[0]
	if !entry.present || entry.codeBits != 1 || entry.value != 0 || entry.length != 1 {
		t.Fatalf("table[0] = %+v, want present codeBits=1 value=0 length=1", entry)
	}
}
