package decoder

import (
	"fmt"

	"github.com/ericlevine/qrkit"
)

// dataBlock is one Reed-Solomon block: its data codewords followed by its
// EC codewords.
type dataBlock struct {
	numData   int
	codewords []byte
}

// splitBlocks undoes the interleaving of raw codewords. Data codewords are
// interleaved across all blocks first; the longer blocks, which sit at the
// end and hold one extra data codeword, then contribute that codeword; the
// EC codewords follow, interleaved the same way.
func splitBlocks(raw []byte, v *Version, level ErrorCorrectionLevel) ([]dataBlock, error) {
	if len(raw) != v.TotalCodewords() {
		return nil, fmt.Errorf("%w: %d codewords for version %d", qrkit.ErrFormat, len(raw), v.Number)
	}
	ec := v.ECBlocksForLevel(level)
	var blocks []dataBlock
	for _, b := range ec.Blocks {
		for range b.Count {
			blocks = append(blocks, dataBlock{
				numData:   b.DataCodewords,
				codewords: make([]byte, b.DataCodewords+ec.ECCodewordsPerBlock),
			})
		}
	}

	shortData := blocks[0].numData
	firstLong := len(blocks)
	for firstLong > 0 && blocks[firstLong-1].numData > shortData {
		firstLong--
	}

	next := 0
	take := func() byte {
		c := raw[next]
		next++
		return c
	}
	for i := 0; i < shortData; i++ {
		for j := range blocks {
			blocks[j].codewords[i] = take()
		}
	}
	for j := firstLong; j < len(blocks); j++ {
		blocks[j].codewords[shortData] = take()
	}
	for i := 0; i < ec.ECCodewordsPerBlock; i++ {
		for j := range blocks {
			blocks[j].codewords[blocks[j].numData+i] = take()
		}
	}
	return blocks, nil
}
