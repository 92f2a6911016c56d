// Package pngforensic reads, edits and re-serializes PNG files at the chunk
// and scanline level, aimed at steganography and forensic workflows rather
// than ordinary image display.
//
// Unlike a conventional decoder it keeps every byte a normal decoder would
// discard: trailer bytes after IEND, chunks of an unknown type, duplicated
// or misordered chunks, and chunks with a bad CRC or an invalid payload.
// Callers can walk the raw chunk stream, read and write typed fields of the
// recognized chunk types, decode and re-encode the image datastream, and
// edit scanlines (including the filter byte) before writing the file back
// out.
//
// Adam7-interlaced images are not decoded (Png.Scanlines fails with
// ErrUnimplemented), pixel decoding is limited to bit depth 8, and no
// encoder filter heuristic is applied: Png.SetImageData compresses the
// bytes it is given as they are.
package pngforensic
