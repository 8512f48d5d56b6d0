package decoder

// DecoderResult is what the decoder recovers from one symbol.
type DecoderResult struct {
	// RawBytes are the corrected data codewords.
	RawBytes []byte
	NumBits  int

	Text         string
	ByteSegments [][]byte
	ECLevel      ErrorCorrectionLevel

	ErrorsCorrected int

	// Structured append position and parity, or -1 when the symbol is not
	// part of a sequence.
	StructuredAppendSequence int
	StructuredAppendParity   int

	// SymbologyModifier is the digit in the "]Qn" symbology identifier.
	SymbologyModifier int

	// Mirrored is set when the symbol was only readable transposed; the
	// caller must swap its result points accordingly.
	Mirrored bool
}

// HasStructuredAppend reports whether the symbol belongs to a sequence.
func (r *DecoderResult) HasStructuredAppend() bool {
	return r.StructuredAppendSequence >= 0 && r.StructuredAppendParity >= 0
}
