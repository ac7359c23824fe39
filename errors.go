package sharc

import "errors"

var (
	ErrInvalidOptions     = errors.New("sharc: invalid options")
	ErrUnknownHash        = errors.New("sharc: unknown hash function")
	ErrBufferOverflow     = errors.New("sharc: byte buffer overflow")
	ErrUnknownMode        = errors.New("sharc: unknown block mode")
	ErrInvalidCode        = errors.New("sharc: reference to unassigned dictionary code")
	ErrTruncatedCode      = errors.New("sharc: coded payload ends inside a code")
	ErrOutputOverflow     = errors.New("sharc: decoded block does not fit output buffer")
	ErrInvalidMagic       = errors.New("sharc: not a sharc stream")
	ErrUnsupportedVersion = errors.New("sharc: unsupported format version")
	ErrInvalidBufferSize  = errors.New("sharc: invalid buffer size in file header")
	ErrPayloadSize        = errors.New("sharc: block payload size out of range")
	ErrTruncated          = errors.New("sharc: truncated stream")
	ErrClosed             = errors.New("sharc: writer is closed")
)
