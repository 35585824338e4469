package nemesis

import "testing"

// buildTableFromCounts is a test helper that fills occurrences directly,
// bypassing the tokenizer, so the code generators can be exercised in
// isolation from the byte/nybble layer.
func buildTableFromCounts(counts map[symbol]uint32) *symbolTable {
	var table symbolTable
	for s, n := range counts {
		table[symbolIndex(s.value, s.length)].occurrences = n
	}
	return &table
}

func checkNoReservedPrefix(t *testing.T, table *symbolTable) {
	t.Helper()
	for i, r := range table {
		if r.codeBits == 0 {
			continue
		}
		if r.codeBits > maxCodeBits {
			t.Errorf("symbol %v: code_bits %d exceeds %d", symbolFromIndex(i), r.codeBits, maxCodeBits)
		}
		if r.codeBits >= reservedPrefixBits {
			top6 := r.code >> (r.codeBits - reservedPrefixBits)
			if top6 == reservedPrefix {
				t.Errorf("symbol %v: code %08b (%d bits) has reserved top-6 bits", symbolFromIndex(i), r.code, r.codeBits)
			}
		} else {
			padded := (uint16(r.code) << (reservedPrefixBits - r.codeBits)) | (1<<(reservedPrefixBits-r.codeBits) - 1)
			if padded == reservedPrefix {
				t.Errorf("symbol %v: code %08b (%d bits) right-padded with 1s equals reserved prefix", symbolFromIndex(i), r.code, r.codeBits)
			}
		}
	}
}

func checkPrefixFree(t *testing.T, table *symbolTable) {
	t.Helper()
	type coded struct {
		code, bits uint8
	}
	var codes []coded
	for _, r := range table {
		if r.codeBits > 0 {
			codes = append(codes, coded{r.code, r.codeBits})
		}
	}
	for i, a := range codes {
		for j, b := range codes {
			if i == j {
				continue
			}
			minBits := a.bits
			if b.bits < minBits {
				minBits = b.bits
			}
			if a.code>>(a.bits-minBits) == b.code>>(b.bits-minBits) {
				t.Errorf("code %08b(%d) is a prefix of, or shares a prefix with, %08b(%d)", a.code, a.bits, b.code, b.bits)
			}
		}
	}
}

func TestFanoInvariants(t *testing.T) {
	counts := map[symbol]uint32{}
	v := uint8(0)
	for i := 0; i < 40; i++ {
		counts[symbol{value: v % 16, length: uint8(i%8) + 1}] = uint32(3 + i)
		v++
	}
	table := buildTableFromCounts(counts)
	computeCodesFano(table)
	checkNoReservedPrefix(t, table)
	checkPrefixFree(t, table)
}

func TestFanoSingleQualifiedSymbol(t *testing.T) {
	table := buildTableFromCounts(map[symbol]uint32{
		{value: 5, length: 3}: 10,
	})
	computeCodesFano(table)
	r := table[symbolIndex(5, 3)]
	if r.codeBits == 0 {
		t.Fatal("sole qualified symbol should receive a code")
	}
	checkNoReservedPrefix(t, table)
}

func TestFanoUnqualifiedSymbolsUncoded(t *testing.T) {
	table := buildTableFromCounts(map[symbol]uint32{
		{value: 1, length: 1}: 1,
		{value: 2, length: 1}: 2,
		{value: 3, length: 1}: 100,
	})
	computeCodesFano(table)
	if table[symbolIndex(1, 1)].codeBits != 0 {
		t.Error("symbol with occurrences < 3 should stay uncoded")
	}
	if table[symbolIndex(3, 1)].codeBits == 0 {
		t.Error("dominant symbol should be coded")
	}
}
