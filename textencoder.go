package sharc

import (
	"encoding/binary"
	"strconv"
)

// AppendText appends a human-readable rendering of a block payload to dst.
// For coded modes, codes below 256 appear as their literal byte and
// dictionary codes appear as <code>. A dual-pass payload is rendered as
// the codes of its outer pass. Copy payloads are appended unchanged.
func AppendText(dst []byte, payload []byte, mode Mode) []byte {
	if mode == ModeCopy {
		return append(dst, payload...)
	}
	for i := 0; i+1 < len(payload); i += 2 {
		code := binary.LittleEndian.Uint16(payload[i:])
		if code < seedCodes {
			dst = append(dst, byte(code))
			continue
		}
		dst = append(dst, '<')
		dst = strconv.AppendUint(dst, uint64(code), 10)
		dst = append(dst, '>')
	}
	if len(payload)%2 != 0 {
		dst = append(dst, "<?>"...)
	}
	return dst
}
