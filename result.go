package qrkit

import "time"

// MetadataKey names an entry in Result.Metadata.
type MetadataKey int

const (
	MetadataByteSegments         MetadataKey = iota // [][]byte
	MetadataErrorCorrectionLevel                    // string, "L", "M", "Q" or "H"
	MetadataErrorsCorrected                         // int
	MetadataStructuredAppendSequence
	MetadataStructuredAppendParity
	MetadataSymbologyIdentifier // string such as "]Q1"
	MetadataMirrored            // bool
)

func (k MetadataKey) String() string {
	switch k {
	case MetadataByteSegments:
		return "BYTE_SEGMENTS"
	case MetadataErrorCorrectionLevel:
		return "ERROR_CORRECTION_LEVEL"
	case MetadataErrorsCorrected:
		return "ERRORS_CORRECTED"
	case MetadataStructuredAppendSequence:
		return "STRUCTURED_APPEND_SEQUENCE"
	case MetadataStructuredAppendParity:
		return "STRUCTURED_APPEND_PARITY"
	case MetadataSymbologyIdentifier:
		return "SYMBOLOGY_IDENTIFIER"
	case MetadataMirrored:
		return "MIRRORED"
	}
	return "UNKNOWN"
}

// Result is a decoded QR code.
type Result struct {
	Text      string
	RawBytes  []byte
	NumBits   int
	Points    []ResultPoint
	Metadata  map[MetadataKey]any
	Timestamp time.Time
}

func NewResult(text string, raw []byte, points []ResultPoint) *Result {
	return &Result{
		Text:      text,
		RawBytes:  raw,
		NumBits:   8 * len(raw),
		Points:    points,
		Metadata:  make(map[MetadataKey]any),
		Timestamp: time.Now(),
	}
}

func (r *Result) PutMetadata(key MetadataKey, value any) {
	r.Metadata[key] = value
}
