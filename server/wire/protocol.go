// Package wire implements the TCP request/reply protocol of §4.8: a small
// set of length-prefixed-string-and-scalar messages, symmetrical on both
// sides of the socket.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Client -> server command strings.
const (
	CmdLogin      = "LOGIN"
	CmdGetChunk   = "GET_CHUNK"
	CmdGetStats   = "GET_STATS"
	CmdDisconnect = "DISCONNECT"
)

// Server -> client reply strings.
const (
	ReplyLoginOK         = "LOGIN_OK"
	ReplyChunkData       = "CHUNK_DATA"
	ReplyChunkProcedural = "CHUNK_PROCEDURAL"
	ReplyStatsData       = "STATS_DATA"
)

// maxStringLen is the longest string an unsigned 16-bit length prefix can
// describe; writeString rejects anything longer rather than writing a
// wrapped length. No message in the protocol ever needs a string anywhere
// near this size.
const maxStringLen = 1<<16 - 1

// writeString writes a length-prefixed UTF-8 string: an unsigned 16-bit
// big-endian length, then the raw bytes.
func writeString(w io.Writer, s string) error {
	if len(s) > maxStringLen {
		return fmt.Errorf("wire: string too long (%d bytes)", len(s))
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	_, err := w.Write([]byte(s))
	return err
}

// readString reads a length-prefixed UTF-8 string written by writeString.
func readString(r io.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// GetChunkRequest is the payload of a GET_CHUNK command.
type GetChunkRequest struct {
	CX, CY int32
}

// readGetChunkRequest reads the two int32 coordinates following a
// GET_CHUNK command string.
func readGetChunkRequest(r io.Reader) (GetChunkRequest, error) {
	cx, err := readInt32(r)
	if err != nil {
		return GetChunkRequest{}, err
	}
	cy, err := readInt32(r)
	if err != nil {
		return GetChunkRequest{}, err
	}
	return GetChunkRequest{CX: cx, CY: cy}, nil
}

// writeLoginOK writes the LOGIN_OK reply: command string then the world
// seed as an 8-byte big-endian integer.
func writeLoginOK(w io.Writer, seed int64) error {
	if err := writeString(w, ReplyLoginOK); err != nil {
		return err
	}
	return writeInt64(w, seed)
}

// writeChunkProcedural writes the CHUNK_PROCEDURAL reply: command string
// then the chunk coordinates, instructing the client to regenerate the
// chunk locally instead of receiving its bytes.
func writeChunkProcedural(w io.Writer, cx, cy int32) error {
	if err := writeString(w, ReplyChunkProcedural); err != nil {
		return err
	}
	if err := writeInt32(w, cx); err != nil {
		return err
	}
	return writeInt32(w, cy)
}

// writeChunkData writes the CHUNK_DATA reply: command string, payload
// length, then the raw encoded chunk frame.
func writeChunkData(w io.Writer, data []byte) error {
	if err := writeString(w, ReplyChunkData); err != nil {
		return err
	}
	if err := writeInt32(w, int32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// StatsReply is the payload of a STATS_DATA reply.
type StatsReply struct {
	UsedMemBytes  int64
	TotalMemBytes int64
	ActiveThreads int32
	LoadedChunks  int32
}

// writeStatsData writes the STATS_DATA reply.
func writeStatsData(w io.Writer, s StatsReply) error {
	if err := writeString(w, ReplyStatsData); err != nil {
		return err
	}
	if err := writeInt64(w, s.UsedMemBytes); err != nil {
		return err
	}
	if err := writeInt64(w, s.TotalMemBytes); err != nil {
		return err
	}
	if err := writeInt32(w, s.ActiveThreads); err != nil {
		return err
	}
	return writeInt32(w, s.LoadedChunks)
}
