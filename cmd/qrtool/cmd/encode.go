package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/qrcode"
)

func newEncodeCommand(a *app) *cobra.Command {
	var (
		out    string
		invert bool
	)
	cmd := &cobra.Command{
		Use:   "encode [flags] [text]",
		Short: "Write text as a QR code",
		Long: `Encode text as a QR code, read from the argument or, without one, from
standard input. The symbol is saved as an image (format from the file
extension) or drawn on the terminal with half-block characters.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readContent(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return a.encode(cmd.OutOrStdout(), text, out, invert)
		},
	}

	f := cmd.Flags()
	f.StringP("error-correction", "e", "M", "error correction level (L, M, Q, H)")
	f.String("charset", "", "byte mode character set (default ISO-8859-1, UTF-8 when needed)")
	f.Bool("force-eci", false, "always write an ECI header for byte mode")
	f.Int("symbol-version", 0, "force a symbol version 1-40")
	f.Int("mask", -1, "force a mask pattern 0-7")
	f.Int("margin", 4, "quiet zone in modules")
	f.Int("size", 256, "image size in pixels")
	f.String("output", "png", "output kind (png, terminal)")
	f.StringVarP(&out, "out", "o", "qr.png", "image file to write")
	f.BoolVar(&invert, "invert", false, "draw light modules instead of dark ones on the terminal")

	a.bind("encode.error_correction", f, "error-correction")
	a.bind("encode.character_set", f, "charset")
	a.bind("encode.force_eci", f, "force-eci")
	a.bind("encode.version", f, "symbol-version")
	a.bind("encode.mask", f, "mask")
	a.bind("encode.margin", f, "margin")
	a.bind("encode.size", f, "size")
	a.bind("encode.output", f, "output")
	return cmd
}

func readContent(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}

func (a *app) encode(w io.Writer, text, out string, invert bool) error {
	c := a.cfg.Encode
	opts := &qrkit.EncodeOptions{
		ErrorCorrection: c.ErrorCorrection,
		CharacterSet:    c.CharacterSet,
		ForceECI:        c.ForceECI,
		Margin:          &c.Margin,
		Version:         c.Version,
	}
	if c.Mask >= 0 {
		opts.MaskPattern = &c.Mask
	}

	if c.Output == "terminal" {
		m, err := qrcode.NewWriter().Encode(text, 0, 0, opts)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, halfBlocks(m, invert))
		return err
	}

	m, err := qrcode.NewWriter().Encode(text, c.Size, c.Size, opts)
	if err != nil {
		return err
	}
	if m.Width() > c.Size {
		a.log.Warn("symbol does not fit the requested size", "size", c.Size, "actual", m.Width())
	}
	if err := imaging.Save(qrkit.BitMatrixToImage(m), out); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}
	a.log.Info("encoded", "file", out, "pixels", m.Width(), "ec_level", c.ErrorCorrection)
	return nil
}

// halfBlocks draws two rows of modules per line of text.
func halfBlocks(m *bitutil.BitMatrix, invert bool) string {
	var sb strings.Builder
	dark := func(x, y int) bool {
		return y < m.Height() && m.Get(x, y) != invert
	}
	for y := 0; y < m.Height(); y += 2 {
		for x := 0; x < m.Width(); x++ {
			switch top, bottom := dark(x, y), dark(x, y+1); {
			case top && bottom:
				sb.WriteString("█")
			case top:
				sb.WriteString("▀")
			case bottom:
				sb.WriteString("▄")
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
