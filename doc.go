// Package sharc is a block-based lossless compressor built on an adaptive
// dictionary (LZW) coder.
//
// Input is cut into fixed-size blocks. Each block is coded independently
// with a fresh Dictionary into a stream of 16-bit codes, and stored
// verbatim instead whenever coding would not make it smaller, so no block
// ever grows. A compressed stream is a FileHeader followed by block
// records, each a BlockHeader and its payload.
//
// There are three ways to use it:
//   - Compress and Decompress work on whole byte slices.
//   - Writer and Reader adapt the format to io.Writer and io.Reader.
//   - Stream is a resumable state machine over caller-owned buffers that
//     never blocks, for callers that move data a buffer at a time.
//
// All three produce identical bytes for the same options.
package sharc
