package qrkit

import "github.com/ericlevine/qrkit/bitutil"

// DecodeOptions tune a decode. The zero value is a reasonable default.
type DecodeOptions struct {
	// PureBarcode declares the image to be an unrotated symbol with only a
	// quiet zone around it, enabling a faster extraction path.
	PureBarcode bool

	// TryHarder scans every row when looking for finder patterns.
	TryHarder bool

	// CharacterSet overrides the default interpretation of byte segments.
	CharacterSet string

	// PointCallback, if set, sees each finder and alignment candidate.
	PointCallback ResultPointCallback
}

// Callback returns the configured callback, tolerating a nil receiver.
func (o *DecodeOptions) Callback() ResultPointCallback {
	if o == nil {
		return nil
	}
	return o.PointCallback
}

// EncodeOptions tune an encode.
type EncodeOptions struct {
	// ErrorCorrection is "L", "M", "Q" or "H". Empty means "L".
	ErrorCorrection string

	// CharacterSet selects the byte mode encoding. Empty means ISO-8859-1.
	CharacterSet string

	// ForceECI emits an ECI header even for the default character set.
	ForceECI bool

	// Margin is the quiet zone in modules. Nil means 4.
	Margin *int

	// Version forces a symbol version (1-40). Zero selects the smallest fit.
	Version int

	// MaskPattern forces a mask (0-7). Nil selects the lowest penalty.
	MaskPattern *int
}

// Reader decodes a QR code from a binary image.
type Reader interface {
	Decode(image *BinaryBitmap, opts *DecodeOptions) (*Result, error)
}

// Writer renders content as a QR code scaled into width x height.
type Writer interface {
	Encode(contents string, width, height int, opts *EncodeOptions) (*bitutil.BitMatrix, error)
}
