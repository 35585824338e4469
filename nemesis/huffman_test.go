package nemesis

import "testing"

func TestHuffmanInvariants(t *testing.T) {
	counts := map[symbol]uint32{}
	for i := 0; i < 50; i++ {
		counts[symbol{value: uint8(i % 16), length: uint8(i%8) + 1}] = uint32(3 + i*7)
	}
	table := buildTableFromCounts(counts)
	computeCodesHuffman(table)
	checkNoReservedPrefix(t, table)
	checkPrefixFree(t, table)
}

func TestHuffmanLengthLimitedUnderSkew(t *testing.T) {
	counts := map[symbol]uint32{
		{value: 0, length: 1}: 1_000_000,
	}
	for i := 1; i < 10; i++ {
		counts[symbol{value: uint8(i), length: 1}] = uint32(3 + i)
	}
	table := buildTableFromCounts(counts)
	computeCodesHuffman(table)
	for i, r := range table {
		if r.codeBits > maxCodeBits {
			t.Errorf("symbol %v exceeds max code length: %d bits", symbolFromIndex(i), r.codeBits)
		}
	}
	checkNoReservedPrefix(t, table)
	checkPrefixFree(t, table)
}

func TestHuffmanNeverLargerThanFano(t *testing.T) {
	counts := map[symbol]uint32{}
	for i := 0; i < 30; i++ {
		counts[symbol{value: uint8(i % 16), length: uint8(i%8) + 1}] = uint32(3 + (i*13)%200)
	}

	fanoTable := buildTableFromCounts(counts)
	computeCodesFano(fanoTable)
	huffmanTable := buildTableFromCounts(counts)
	computeCodesHuffman(huffmanTable)

	if estimateTotalBits(huffmanTable) > estimateTotalBits(fanoTable) {
		t.Error("package-merge Huffman produced a larger estimate than Fano")
	}
}
