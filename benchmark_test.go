package qrkit_test

import (
	"testing"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/binarizer"
	"github.com/ericlevine/qrkit/qrcode"
)

var benchContents = []struct {
	name    string
	content string
	level   string
}{
	{"V1-L", "Hello", "L"},
	{"V4-M", "Hello, World! This is a QR code benchmark test.", "M"},
	{"V10-H", "The quick brown fox jumps over the lazy dog. 0123456789 The quick brown fox.", "H"},
}

func BenchmarkDecode(b *testing.B) {
	for _, tc := range benchContents {
		b.Run(tc.name, func(b *testing.B) {
			img := render(b, tc.content, 400, &qrkit.EncodeOptions{ErrorCorrection: tc.level})
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				// fresh bitmap each time since binarizers cache their matrix
				source := qrkit.NewImageLuminanceSource(img)
				bitmap := qrkit.NewBinaryBitmap(binarizer.NewHybrid(source))
				if _, err := qrcode.NewReader().Decode(bitmap, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	for _, tc := range benchContents {
		b.Run(tc.name, func(b *testing.B) {
			opts := &qrkit.EncodeOptions{ErrorCorrection: tc.level}
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := qrcode.NewWriter().Encode(tc.content, 400, 400, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
