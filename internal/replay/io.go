package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/raid-kernel/internal/sim"
)

// Compressed reports whether path names a zstd artifact.
func Compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Write stores an artifact as indented JSON, zstd-compressed when the path
// ends in .zst.
func Write(path string, a *Artifact) error {
	if a.Commands == nil {
		cp := *a
		cp.Commands = []sim.Batch{}
		a = &cp
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if Compressed(path) {
		enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		w = enc
	}

	bw := bufio.NewWriterSize(w, 256*1024)
	je := json.NewEncoder(bw)
	je.SetIndent("", "  ")
	if err := je.Encode(a); err != nil {
		return fmt.Errorf("replay: encode %s: %w", filepath.Base(path), err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if enc != nil {
		return enc.Close()
	}
	return nil
}

// Read loads an artifact written by Write, or by hand. The document is
// checked against the artifact schema before decoding.
func Read(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if Compressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(bufio.NewReaderSize(r, 256*1024))
	if err != nil {
		return nil, fmt.Errorf("replay: read %s: %w", filepath.Base(path), err)
	}
	return Decode(data)
}

// Decode validates and parses an artifact document.
func Decode(data []byte) (*Artifact, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("replay: malformed artifact: %w", err)
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("replay: decode artifact: %w", err)
	}
	return &a, nil
}
