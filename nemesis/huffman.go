package nemesis

import "sort"

// pmNode is a package-merge arena node: either a leaf (leafIdx is the
// symbol's index into symbolTable) or an internal package of two earlier
// nodes. Nodes are referenced by pool index rather than pointer, per the
// node-pool-with-indices convention used throughout this module.
type pmNode struct {
	weight    uint64
	leafIdx   int // >= 0 for a leaf, -1 for a package
	left, right int
}

// mergePoolQueues merges two ascending-weight pool-index lists into one
// ascending list, preferring leaves over packages on a weight tie (this is
// what "ties prefer the leaf" means when expressed as a merge rather than
// a pop-two-smallest loop).
func mergePoolQueues(pool []pmNode, a, b []int) []int {
	merged := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		wa, wb := pool[a[i]].weight, pool[b[j]].weight
		if wa < wb || (wa == wb && pool[a[i]].leafIdx >= 0) {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}

// packageRound pairs up consecutive items of a sorted pool-index list,
// producing one package node per pair and discarding a trailing unpaired
// leftover (spec §4.5: "leftovers - fewer than 2 items - are discarded").
func packageRound(pool *[]pmNode, merged []int) []int {
	var next []int
	for k := 0; k+1 < len(merged); k += 2 {
		a, b := merged[k], merged[k+1]
		idx := len(*pool)
		*pool = append(*pool, pmNode{
			weight: (*pool)[a].weight + (*pool)[b].weight,
			leafIdx: -1,
			left:    a,
			right:   b,
		})
		next = append(next, idx)
	}
	return next
}

// packageMerge runs the 7-round package-merge construction over leaves
// (already sorted ascending by weight, one per included symbol) and
// returns the arena and the final round's package list, whose trees (when
// walked) give each leaf's code length.
func packageMerge(leafSymbols []int, leafWeights []uint64) (pool []pmNode, finalQueue []int) {
	pool = make([]pmNode, 0, numSymbols+numSymbols*maxCodeBits*2)
	leafIdxs := make([]int, len(leafSymbols))
	for i, sym := range leafSymbols {
		leafIdxs[i] = len(pool)
		pool = append(pool, pmNode{weight: leafWeights[i], leafIdx: sym, left: -1, right: -1})
	}

	var internal []int
	for round := 0; round < maxCodeBits-1; round++ {
		merged := mergePoolQueues(pool, leafIdxs, internal)
		internal = packageRound(&pool, merged)
	}
	return pool, internal
}

func walkPackageTree(pool []pmNode, idx int, onLeaf func(symIdx int)) {
	n := pool[idx]
	if n.leafIdx >= 0 {
		onLeaf(n.leafIdx)
		return
	}
	walkPackageTree(pool, n.left, onLeaf)
	walkPackageTree(pool, n.right, onLeaf)
}

// computeCodeLengths runs package-merge over the given included leaves and
// returns each included symbol's resulting code length, with the "bump
// zero-length qualified leaves to 1" correction from spec §4.5 applied.
func computeCodeLengths(leafSymbols []int, leafWeights []uint64) map[int]uint8 {
	pool, finalQueue := packageMerge(leafSymbols, leafWeights)

	lengths := make(map[int]uint8, len(leafSymbols))
	for _, root := range finalQueue {
		walkPackageTree(pool, root, func(symIdx int) {
			lengths[symIdx]++
		})
	}
	for _, sym := range leafSymbols {
		if lengths[sym] == 0 {
			lengths[sym] = 1
		}
	}
	return lengths
}

// estimateTotalBits computes the §4.6 total-bits estimate for the current
// codeBits assignment in table: symbols with codeBits > 0 cost
// occurrences*codeBits plus code-table overhead (24 bits for the first
// coded symbol per value, 16 for each subsequent one sharing that value);
// symbols with codeBits == 0 cost occurrences*13 (inline escape).
func estimateTotalBits(table *symbolTable) uint64 {
	var total uint64
	lastValue := -1
	for _, idx := range codeTableOrder() {
		r := table[idx]
		if r.codeBits > 0 {
			total += uint64(r.occurrences) * uint64(r.codeBits)
			sym := symbolFromIndex(idx)
			if int(sym.value) == lastValue {
				total += 16
			} else {
				total += 24
				lastValue = int(sym.value)
			}
		} else {
			total += uint64(r.occurrences) * 13
		}
	}
	return total
}

// computeCodesHuffman assigns (code, codeBits) to symbols via length-limited
// canonical Huffman coding, brute-forcing the qualification boundary (how
// many of the rarest qualified symbols are worth coding at all) to minimize
// total encoded size, then assigning canonical codes with reserved-prefix
// avoidance.
func computeCodesHuffman(table *symbolTable) {
	order, qualifyCount, _ := qualify(table)
	if qualifyCount == 0 {
		return
	}
	qualified := append([]int(nil), order[:qualifyCount]...)

	// Ascending by occurrence for the leaf queue; tie-break doesn't need to
	// be stable here (the source uses an unspecified-stability qsort).
	sort.Slice(qualified, func(i, j int) bool {
		return table[qualified[i]].occurrences < table[qualified[j]].occurrences
	})

	var bestLengths map[int]uint8
	var bestBits uint64
	first := true

	for startIdx := 0; startIdx <= qualifyCount-2; startIdx++ {
		included := qualified[startIdx:]
		weights := make([]uint64, len(included))
		for i, sym := range included {
			weights[i] = uint64(table[sym].occurrences)
		}
		lengths := computeCodeLengths(included, weights)

		scratch := *table
		for _, sym := range qualified {
			scratch[sym].codeBits = 0
		}
		for sym, l := range lengths {
			scratch[sym].codeBits = l
		}
		bits := estimateTotalBits(&scratch)

		if first || bits < bestBits {
			first = false
			bestBits = bits
			bestLengths = lengths
		}
	}

	for _, sym := range qualified {
		table[sym].codeBits = 0
	}
	for sym, l := range bestLengths {
		table[sym].codeBits = l
	}

	assignCanonicalCodes(table, bestLengths)
}

// assignCanonicalCodes implements spec §4.5's canonical code assignment
// with reserved-prefix avoidance, over exactly the symbols present as keys
// in lengths (those that ended up with codeBits > 0).
func assignCanonicalCodes(table *symbolTable, lengths map[int]uint8) {
	order := make([]int, 0, len(lengths))
	for sym := range lengths {
		order = append(order, sym)
	}
	stableSortIndices(order, func(a, b int) bool {
		if table[a].codeBits != table[b].codeBits {
			return table[a].codeBits < table[b].codeBits
		}
		return table[a].occurrences > table[b].occurrences
	})
	if len(order) == 0 {
		return
	}

	code := -1
	previousBits := table[order[0]].codeBits
	bumped := false

	for _, sym := range order {
		codeBits := table[sym].codeBits
		if bumped {
			// The reserved-prefix correction, once triggered, applies to
			// every subsequent symbol's effective length too.
			codeBits++
		}

		code++
		if codeBits > previousBits {
			code <<= uint(codeBits - previousBits)
		}
		previousBits = codeBits

		if !bumped {
			trigger := false
			if codeBits >= 6 && (uint8(code)>>(codeBits-6)) == 0x3E {
				trigger = true
			} else if codeBits < 6 && code == (1<<codeBits)-1 {
				trigger = true
			}
			if trigger {
				code <<= 1
				codeBits++
				previousBits = codeBits
				bumped = true
			}
		}

		table[sym].codeBits = codeBits
		table[sym].code = uint8(code)
	}
}
