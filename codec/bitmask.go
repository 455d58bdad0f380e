package codec

// BitMask tracks which optional fields of a message are present. Bit i
// lives at word i/32, bit i%32 — the ordinal assignment is fixed per
// message schema and identical across every language implementation, so
// it must never be renumbered.
//
// Wire form: int32 word count followed by that many uint32 words,
// little-endian. The word sequence grows on demand when a bit beyond the
// current capacity is set.
type BitMask struct {
	words []uint32
}

// NewBitMask returns a mask with capacity for at least size words.
func NewBitMask(size int) *BitMask {
	if size < 1 {
		size = 1
	}
	return &BitMask{words: make([]uint32, size)}
}

// SetBit sets or clears the bit at the absolute ordinal, growing the word
// sequence as needed.
func (m *BitMask) SetBit(ordinal int, value bool) {
	word := ordinal / 32
	bit := uint(ordinal % 32)

	if word >= len(m.words) {
		grown := make([]uint32, word+1)
		copy(grown, m.words)
		m.words = grown
	}

	if value {
		m.words[word] |= 1 << bit
	} else {
		m.words[word] &^= 1 << bit
	}
}

// GetBit reports whether the bit at the absolute ordinal is set.
// An out-of-range ordinal is false, not an error.
func (m *BitMask) GetBit(ordinal int) bool {
	word := ordinal / 32
	if word >= len(m.words) {
		return false
	}
	return m.words[word]&(1<<uint(ordinal%32)) != 0
}

// Write serializes the mask: word count then the words.
func (m *BitMask) Write(w *Writer) {
	w.WriteInt32(int32(len(m.words)))
	for _, word := range m.words {
		w.WriteUint32(word)
	}
}

// Read replaces the mask contents with the serialized form at r.
func (m *BitMask) Read(r *Reader) error {
	count, err := r.ReadInt32()
	if err != nil {
		return err
	}
	// Each declared word needs 4 bytes of backing data. Check before
	// allocating: the count is attacker-controlled and must never drive
	// an allocation larger than the remaining input.
	if count < 0 || int(count)*4 > r.Remaining() {
		return ErrUnexpectedEndOfStream
	}
	words := make([]uint32, count)
	for i := range words {
		words[i], err = r.ReadUint32()
		if err != nil {
			return err
		}
	}
	m.words = words
	return nil
}
