package codec

import "hash/crc32"

// CRC32 computes the ISO-HDLC (polynomial 0xEDB88320) checksum spec.md §6
// requires for every snapshot/delta body. That polynomial is exactly Go's
// stdlib crc32.IEEE table, so no third-party CRC implementation is
// needed or appropriate here (see DESIGN.md).
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
