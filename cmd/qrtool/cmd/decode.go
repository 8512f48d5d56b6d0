package cmd

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/binarizer"
	"github.com/ericlevine/qrkit/qrcode"
)

func newDecodeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [flags] <image>...",
		Short: "Read QR codes from image files",
		Long: `Decode the QR code in each image (PNG, JPEG, GIF, BMP, TIFF, WebP) and
print its text. Several images are decoded in parallel; with more than
one, each line is prefixed by the file name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.decode(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	f := cmd.Flags()
	f.Bool("try-harder", false, "scan every row for finder patterns")
	f.Bool("pure", false, "images hold only an unrotated symbol and its quiet zone")
	f.String("charset", "", "character set for byte segments without an ECI")
	f.String("binarizer", "both", "thresholding (hybrid, histogram, both)")
	f.Int("workers", 0, "images decoded at once (default one per CPU)")

	a.bind("decode.try_harder", f, "try-harder")
	a.bind("decode.pure_barcode", f, "pure")
	a.bind("decode.character_set", f, "charset")
	a.bind("decode.binarizer", f, "binarizer")
	a.bind("decode.workers", f, "workers")
	return cmd
}

type decoded struct {
	path   string
	result *qrkit.Result
	err    error
}

func (a *app) decode(ctx context.Context, w io.Writer, paths []string) error {
	results := make([]decoded, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Decode.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.decodeFile(path)
			results[i] = decoded{path: path, result: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			a.log.Error("decode failed", "file", r.path, "err", r.err)
			continue
		}
		a.log.Info("decoded", "file", r.path,
			"ec_level", r.result.Metadata[qrkit.MetadataErrorCorrectionLevel],
			"errors_corrected", r.result.Metadata[qrkit.MetadataErrorsCorrected])
		if len(paths) > 1 {
			fmt.Fprintf(w, "%s: ", r.path)
		}
		fmt.Fprintln(w, r.result.Text)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be decoded", failed, len(paths))
	}
	return nil
}

func (a *app) decodeFile(path string) (*qrkit.Result, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return a.decodeImage(img)
}

// decodeImage tries each configured binarizer in turn and returns the first
// error if none succeeds.
func (a *app) decodeImage(img image.Image) (result *qrkit.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()

	c := a.cfg.Decode
	src := qrkit.NewImageLuminanceSource(img)
	var binarizers []qrkit.Binarizer
	switch c.Binarizer {
	case "histogram":
		binarizers = append(binarizers, binarizer.NewGlobalHistogram(src))
	case "hybrid":
		binarizers = append(binarizers, binarizer.NewHybrid(src))
	default:
		binarizers = append(binarizers, binarizer.NewGlobalHistogram(src), binarizer.NewHybrid(src))
	}

	opts := &qrkit.DecodeOptions{
		TryHarder:    c.TryHarder,
		PureBarcode:  c.PureBarcode,
		CharacterSet: c.CharacterSet,
	}
	reader := qrcode.NewReader()
	var first error
	for _, b := range binarizers {
		res, err := reader.Decode(qrkit.NewBinaryBitmap(b), opts)
		if err == nil {
			return res, nil
		}
		a.log.Debug("binarizer failed", "binarizer", fmt.Sprintf("%T", b), "err", err)
		if first == nil {
			first = err
		}
	}
	return nil, first
}
