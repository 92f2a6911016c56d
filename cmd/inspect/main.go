// Command inspect dumps a PNG file's chunk stream: type, length, CRC
// validity and, for recognized types, decoded payload fields.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adpollak/pngforensic"
)

func main() {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	defaultFilePath := filepath.Join(home, "Pictures", "smiley.png")

	var pngPath string
	var ignoreSignature bool
	flag.StringVar(&pngPath, "png", defaultFilePath, "png file to inspect")
	flag.BoolVar(&ignoreSignature, "ignore-signature", false, "parse even if the file doesn't start with the PNG signature")
	flag.Parse()

	png, err := pngforensic.Open(pngPath, ignoreSignature)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("opened %s\n", pngPath)

	chunks, err := png.Chunks()
	if err != nil {
		log.Fatal(err)
	}

	for i, c := range chunks {
		ok, err := c.IsValid()
		status := "valid"
		if err != nil {
			status = fmt.Sprintf("unsupported (%v)", err)
		} else if !ok {
			status = "INVALID PAYLOAD"
		}
		crcOK := "crc ok"
		if !c.CheckCRC() {
			crcOK = "CRC MISMATCH"
		}
		fmt.Printf("[%2d] %s  length=%-6d %s  %s\n", i, c.Type(), c.Length(), status, crcOK)

		if c.IsSupported() {
			fields, err := c.GetPayload(nil)
			if err == nil {
				for k, v := range fields {
					fmt.Printf("       %s = %v\n", k, v)
				}
			}
		}
	}

	if extra, err := png.ExtraData(); err == nil && len(extra) > 0 {
		fmt.Printf("trailer: %d bytes after IEND\n", len(extra))
	}

	width, werr := png.Width()
	height, herr := png.Height()
	if werr == nil && herr == nil {
		fmt.Printf("image size: %dx%d\n", width, height)
	}
}
