package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteAudio creates a small placeholder file named name under musicRoot
// and returns its absolute path. .wav files get a valid RIFF header with one
// second of silent 8 kHz mono PCM; .mp3 files get an ID3v2 tag header; any
// other extension gets plain text.
func WriteAudio(t testing.TB, musicRoot, name string) string {
	t.Helper()
	path := filepath.Join(musicRoot, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		data = silentWAV(8000)
	case ".mp3":
		data = append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)
	default:
		data = []byte("not audio\n")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// silentWAV encodes samples of 8-bit mono silence at 8 kHz.
func silentWAV(samples int) []byte {
	const sampleRate = 8000
	var buf bytes.Buffer
	le := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	buf.WriteString("RIFF")
	le(uint32(36 + samples))
	buf.WriteString("WAVEfmt ")
	le(uint32(16))         // fmt chunk size
	le(uint16(1))          // PCM
	le(uint16(1))          // mono
	le(uint32(sampleRate)) // sample rate
	le(uint32(sampleRate)) // byte rate
	le(uint16(1))          // block align
	le(uint16(8))          // bits per sample
	buf.WriteString("data")
	le(uint32(samples))
	buf.Write(bytes.Repeat([]byte{0x80}, samples))
	return buf.Bytes()
}
