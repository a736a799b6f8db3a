package memory

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdLog is an append-only JSONL transcript. Every Save writes the new
// entry as its own zstd frame, so a crash can at worst lose the last line.
type ZstdLog struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
}

func OpenZstdLog(path string) (*ZstdLog, error) {
	if path == "" {
		return nil, fmt.Errorf("empty memory path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &ZstdLog{path: path, f: f, enc: enc}, nil
}

func (z *ZstdLog) Load() ([]Entry, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	f, err := os.Open(z.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if st, err := f.Stat(); err != nil {
		return nil, err
	} else if st.Size() == 0 {
		return nil, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var entries []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", z.path, len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read %s: %w", z.path, err)
	}
	return entries, nil
}

func (z *ZstdLog) Save(_ []Entry, added Entry) error {
	b, err := json.Marshal(added)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	z.mu.Lock()
	defer z.mu.Unlock()
	if z.f == nil {
		return fmt.Errorf("memory log closed")
	}
	z.enc.Reset(z.f)
	if _, err := z.enc.Write(b); err != nil {
		return err
	}
	return z.enc.Close()
}

func (z *ZstdLog) Clear() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.f == nil {
		return fmt.Errorf("memory log closed")
	}
	return z.f.Truncate(0)
}

func (z *ZstdLog) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.f == nil {
		return nil
	}
	err := z.f.Close()
	z.f = nil
	return err
}
