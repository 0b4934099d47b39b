package compress

// NoOpCompressor bypasses compression. Used when chunk payloads are too small
// to benefit, or for deterministic layouts in tests.
//
// Both directions return the input slice as-is, without copying; callers must
// not modify the input while holding the result.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
