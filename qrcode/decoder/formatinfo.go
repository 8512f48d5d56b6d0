package decoder

import "math/bits"

// FormatInfoMask is XORed over the 15-bit format word before placement.
const FormatInfoMask = 0x5412

// FormatInformation is the error correction level and data mask recovered
// from the format word.
type FormatInformation struct {
	ECLevel  ErrorCorrectionLevel
	DataMask int
}

// formatWords[i] is the masked 15-bit word for the five data bits i:
// two EC level bits followed by three mask bits.
var formatWords = [32]int{
	0x5412, 0x5125, 0x5E7C, 0x5B4B, 0x45F9, 0x40CE, 0x4F97, 0x4AA0,
	0x77C4, 0x72F3, 0x7DAA, 0x789D, 0x662F, 0x6318, 0x6C41, 0x6976,
	0x1689, 0x13BE, 0x1CE7, 0x19D0, 0x0762, 0x0255, 0x0D0C, 0x083B,
	0x355F, 0x3068, 0x3F31, 0x3A06, 0x24B4, 0x2183, 0x2EDA, 0x2BED,
}

// maxFormatErrors is the correction radius of the (15,5) BCH code.
const maxFormatErrors = 3

// DecodeFormatInformation resolves the two redundant copies of the format
// word to the nearest valid entry. Some encoders forget to apply the mask,
// so the unmasked reading is tried as well. It returns nil when no entry is
// within three bits.
func DecodeFormatInformation(word1, word2 int) *FormatInformation {
	if fi := nearestFormat(word1, word2); fi != nil {
		return fi
	}
	return nearestFormat(word1^FormatInfoMask, word2^FormatInfoMask)
}

func nearestFormat(word1, word2 int) *FormatInformation {
	best, bestDist := -1, maxFormatErrors+1
	for data, target := range formatWords {
		d := min(
			bits.OnesCount32(uint32(word1^target)),
			bits.OnesCount32(uint32(word2^target)),
		)
		if d < bestDist {
			best, bestDist = data, d
		}
		if d == 0 {
			break
		}
	}
	if best < 0 {
		return nil
	}
	// the level bits are always valid
	level, _ := ECLevelForBits(best >> 3)
	return &FormatInformation{ECLevel: level, DataMask: best & 0x07}
}
