package session

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pierrec/lz4/v4"

	"github.com/lotas/blattwerk/internal/types"
)

// Session file header: 8-byte magic + 4-byte LE uint32 uncompressed
// size, followed by one lz4 block of session JSON.
var sessionMagic = []byte("blwkSes1")

const headerSize = 12

// maxDecodedSize bounds the allocation Decode makes for the declared
// uncompressed size. Real sessions are a few KB; a header claiming more
// than this is a corrupt or hostile file, not a big session.
const maxDecodedSize = 64 << 20

// Encode serializes a session into the compressed file format.
func Encode(s *types.Session) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	dst := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("compress session: %w", err)
	}

	out := make([]byte, 0, headerSize+n)
	out = append(out, sessionMagic...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(raw)))
	out = append(out, dst[:n]...)
	return out, nil
}

// Decode parses the compressed session file format.
func Decode(data []byte) (*types.Session, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("session file too short (%d bytes)", len(data))
	}

	for i := 0; i < len(sessionMagic); i++ {
		if data[i] != sessionMagic[i] {
			return nil, fmt.Errorf("invalid session file magic")
		}
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[8:12])
	if uncompressedSize > maxDecodedSize {
		return nil, fmt.Errorf("session file claims %d uncompressed bytes (max %d)", uncompressedSize, maxDecodedSize)
	}

	raw := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data[headerSize:], raw)
	if err != nil {
		return nil, fmt.Errorf("decompress session: %w", err)
	}

	var s types.Session
	if err := json.Unmarshal(raw[:n], &s); err != nil {
		return nil, fmt.Errorf("parse session JSON: %w", err)
	}
	return &s, nil
}

// WriteFile encodes a session and writes it to path.
func WriteFile(path string, s *types.Session) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// ReadFile reads and decodes a session file.
func ReadFile(path string) (*types.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return Decode(data)
}
