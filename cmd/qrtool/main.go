// Command qrtool encodes text as QR code images and decodes QR codes from
// image files.
package main

import (
	"os"

	"github.com/ericlevine/qrkit/cmd/qrtool/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
