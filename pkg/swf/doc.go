// Package swf reads and writes the swf container format.
package swf

// File layout.
//
// fileHeader { // 8 bytes, never compressed.
//   signature  3 bytes: "FWS" plain, "CWS" zlib-compressed body
//   version    uint8
//   fileLength uint32 le, uncompressed file size including this header
// }
//
// body { // Inflated in one pass when the signature is "CWS".
//   frameHeader {
//     frameSize  RECT, variable width, in twips
//     frameRate  uint16 le, 8.8 fixed point
//     frameCount uint16 le
//   }
//   tags, each {
//     codeAndLength  uint16 le, top 10 bits code, low 6 bits length
//     extendedLength uint32 le, only when the 6-bit length is 63
//     payload        []byte, exactly length bytes
//   }
// }
//
// The tag stream ends with the end tag, code 0 length 0.
//
// Multi-byte scalars are little-endian. Bit-packed fields are
// most-significant-bit first within each byte.
