package vm

// mem.go implements COMET II's word-addressable memory: a dense array of 65,536 words. Unlike
// the assembler's sparse image (see package asm), the simulator owns a flat array so that
// fetch/store is O(1) and uninitialized reads are simply zero, as required by the data model.

// Memory is the machine's main store: 65,536 words, word-addressed, wrapping on overflow.
type Memory [AddrSpace]Word

// Load reads the word at addr. Reads never fail; an address past any loaded image reads zero.
func (m *Memory) Load(addr Word) Word {
	return m[addr]
}

// Store writes value at addr.
func (m *Memory) Store(addr, value Word) {
	m[addr] = value
}

// LoadRange copies a contiguous block of memory beginning at addr.
func (m *Memory) LoadRange(addr Word, n int) []Word {
	out := make([]Word, n)
	for i := 0; i < n; i++ {
		out[i] = m[addr+Word(i)]
	}
	return out
}
