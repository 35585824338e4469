package nemesis

// numValues is the size of the nybble alphabet (a nybble is 0..15).
const numValues = 16

// maxRunLength is the longest run the tokenizer will ever emit; runs are
// capped at 8 identical nybbles.
const maxRunLength = 8

// numSymbols is the size of the (value, length) symbol space: 16 values x
// 8 lengths.
const numSymbols = numValues * maxRunLength

// maxCodeBits is the longest prefix code either code generator may assign.
const maxCodeBits = 8

// reservedPrefix is the 6-bit escape marker 111111, reserved so no assigned
// code may equal or be a prefix of it.
const reservedPrefix = 0x3F

// reservedPrefixBits is the width, in bits, of reservedPrefix.
const reservedPrefixBits = 6

// symbol identifies a (value, length) pair by its position in the flat
// symbol table. Symbols are stored length-major, value-minor:
// index = (length-1)*numValues + value. This is the order the historical
// compressor used for its occurrence-descending stable sort and the
// canonical Huffman sort; it is distinct from the encoder's code-table
// emission order (value-major, length-minor; see codeTableOrder).
type symbol struct {
	value  uint8
	length uint8
}

func symbolIndex(value, length uint8) int {
	return int(length-1)*numValues + int(value)
}

func symbolFromIndex(i int) symbol {
	return symbol{value: uint8(i % numValues), length: uint8(i/numValues) + 1}
}

// record is the per-symbol bookkeeping the code generators and bit writer
// operate on. codeBits == 0 means "no code assigned, emit inline."
type record struct {
	occurrences uint32
	code        uint8
	codeBits    uint8
}

// symbolTable holds one record per symbol, indexed by symbolIndex.
type symbolTable [numSymbols]record

// codeTableOrder returns symbol indices in the encoder's code-table
// emission order: outer loop over value 0..15, inner loop over length 1..8
// (see spec §6, "Encoder order of code-table entries").
func codeTableOrder() [numSymbols]int {
	var order [numSymbols]int
	i := 0
	for value := uint8(0); value < numValues; value++ {
		for length := uint8(1); length <= maxRunLength; length++ {
			order[i] = symbolIndex(value, length)
			i++
		}
	}
	return order
}
