package pngforensic

import "github.com/snksoft/crc"

// crc32 computes the standard IEEE CRC-32 over b, matching the table-driven
// checksum the PNG specification requires over a chunk's type and data
// bytes (but never its length header).
func crc32(b []byte) uint32 {
	return uint32(crc.CalculateCRC(crc.CRC32, b))
}
