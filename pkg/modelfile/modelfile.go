/*
Package modelfile reads and writes the persisted n-gram model.

A model file is a fixed little-endian header followed by a MessagePack body:

	offset  size  field
	0       8     magic "WPNGRAM\x00"
	8       2     format version (currently 2)
	10      2     model order n
	12      4     body length in bytes
	16      ...   body: {"p": [record...], "l": [record...]}

Each record is {"c": [context...], "t": token, "k": count}. "p" holds the primary
relation, whose contexts are exactly n-1 tokens long; "l" holds the leading
windows from the start of each text, whose contexts are shorter. Records are
written sorted by context, then token, so saving the same model twice yields
identical files. A file with any other magic or version fails Load with
ErrCorrupt instead of being misread.
*/
package modelfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordpredict/pkg/ngram"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// Version is the format version written by Save.
	Version uint16 = 2

	// MaxOrder is the largest order the header can hold.
	MaxOrder = math.MaxUint16

	headerSize = 16
)

// maxBodySize bounds the body both ways: Save refuses to write more and Load
// rejects larger length fields before allocating.
var maxBodySize = 1 << 31

var magic = [8]byte{'W', 'P', 'N', 'G', 'R', 'A', 'M', 0}

// ErrCorrupt marks a file that exists but cannot be a valid model:
// wrong magic, unknown version, truncated or undecodable body, invalid records.
var ErrCorrupt = errors.New("corrupt model file")

// PersistenceError wraps any failure to save or load a model file.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("modelfile %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Header is the fixed-size prefix of a model file.
type Header struct {
	Version  uint16
	Order    int
	BodySize uint32
}

type record struct {
	Context []string `msgpack:"c"`
	Token   string   `msgpack:"t"`
	Count   int      `msgpack:"k"`
}

type modelBody struct {
	Primary []record `msgpack:"p"`
	Leading []record `msgpack:"l"`
}

// Save writes store to path atomically: the snapshot goes to a temporary
// file in the same directory which then replaces path.
func Save(path string, store *ngram.Store) error {
	if store.Order() > MaxOrder {
		return &PersistenceError{Op: "encode", Path: path,
			Err: fmt.Errorf("order %d exceeds the maximum of %d", store.Order(), MaxOrder)}
	}
	body, err := encodeBody(store)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: path, Err: err}
	}
	if len(body) > maxBodySize {
		return &PersistenceError{Op: "encode", Path: path,
			Err: fmt.Errorf("body of %d bytes exceeds the limit of %d", len(body), maxBodySize)}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &PersistenceError{Op: "mkdir", Path: path, Err: err}
	}

	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return &PersistenceError{Op: "create", Path: path, Err: err}
	}

	fail := func(op string, err error) error {
		file.Close()
		_ = os.Remove(tmpPath)
		return &PersistenceError{Op: op, Path: path, Err: err}
	}

	w := bufio.NewWriter(file)
	if err := writeHeader(w, Header{Version: Version, Order: store.Order(), BodySize: uint32(len(body))}); err != nil {
		return fail("write", err)
	}
	if _, err := w.Write(body); err != nil {
		return fail("write", err)
	}
	if err := w.Flush(); err != nil {
		return fail("write", err)
	}
	if err := file.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistenceError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistenceError{Op: "rename", Path: path, Err: err}
	}

	log.Debugf("Model saved to %s: order=%d bytes=%d", path, store.Order(), headerSize+len(body))
	return nil
}

// Load reads the model at path. A missing file yields an error satisfying
// errors.Is(err, fs.ErrNotExist); an unreadable one satisfies
// errors.Is(err, ErrCorrupt).
func Load(path string) (*ngram.Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, &PersistenceError{Op: "stat", Path: path, Err: err}
	}

	r := bufio.NewReader(file)
	header, err := readHeader(r)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	if int64(header.BodySize) != info.Size()-headerSize {
		return nil, &PersistenceError{Op: "load", Path: path,
			Err: fmt.Errorf("%w: body is %d bytes, header says %d", ErrCorrupt, info.Size()-headerSize, header.BodySize)}
	}

	body := make([]byte, header.BodySize)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: fmt.Errorf("%w: truncated body: %v", ErrCorrupt, err)}
	}

	store, err := decodeBody(header.Order, body)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}

	log.Debugf("Model loaded from %s: order=%d records=%d", path, header.Order, store.Stats().NGrams)
	return store, nil
}

// Inspect reads and validates only the header of the model at path.
func Inspect(path string) (Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return Header{}, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	header, err := readHeader(file)
	if err != nil {
		return Header{}, &PersistenceError{Op: "inspect", Path: path, Err: err}
	}
	return header, nil
}

func writeHeader(w io.Writer, h Header) error {
	var buf [headerSize]byte
	copy(buf[:8], magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	binary.LittleEndian.PutUint16(buf[10:12], uint16(h.Order))
	binary.LittleEndian.PutUint32(buf[12:16], h.BodySize)
	_, err := w.Write(buf[:])
	return err
}

func readHeader(r io.Reader) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		return Header{}, err
	}
	if !bytes.Equal(buf[:8], magic[:]) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrCorrupt, buf[:8])
	}

	h := Header{
		Version:  binary.LittleEndian.Uint16(buf[8:10]),
		Order:    int(binary.LittleEndian.Uint16(buf[10:12])),
		BodySize: binary.LittleEndian.Uint32(buf[12:16]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, h.Version)
	}
	if h.Order < ngram.MinOrder {
		return Header{}, fmt.Errorf("%w: invalid order %d", ErrCorrupt, h.Order)
	}
	if int64(h.BodySize) > int64(maxBodySize) {
		return Header{}, fmt.Errorf("%w: body size %d too large", ErrCorrupt, h.BodySize)
	}
	return h, nil
}

func encodeBody(store *ngram.Store) ([]byte, error) {
	return msgpack.Marshal(&modelBody{
		Primary: toRecords(store.Records()),
		Leading: toRecords(store.LeadingRecords()),
	})
}

func toRecords(recs []ngram.Record) []record {
	out := make([]record, len(recs))
	for i, rec := range recs {
		out[i] = record{Context: rec.Context, Token: rec.Token, Count: rec.Count}
	}
	return out
}

func decodeBody(order int, data []byte) (*ngram.Store, error) {
	var body modelBody
	if err := msgpack.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	store := ngram.NewStore(order)
	for i, rec := range body.Primary {
		if len(rec.Context) != order-1 {
			return nil, fmt.Errorf("%w: record %d has %d context tokens, want %d", ErrCorrupt, i, len(rec.Context), order-1)
		}
		if err := checkRecord(i, rec); err != nil {
			return nil, err
		}
		store.Add(rec.Context, rec.Token, rec.Count)
	}
	for i, rec := range body.Leading {
		if len(rec.Context) >= order-1 {
			return nil, fmt.Errorf("%w: leading record %d has %d context tokens, want fewer than %d", ErrCorrupt, i, len(rec.Context), order-1)
		}
		if err := checkRecord(i, rec); err != nil {
			return nil, err
		}
		store.AddLeading(rec.Context, rec.Token, rec.Count)
	}
	return store, nil
}

func checkRecord(i int, rec record) error {
	if rec.Count < 1 {
		return fmt.Errorf("%w: record %d has count %d", ErrCorrupt, i, rec.Count)
	}
	if rec.Token == "" {
		return fmt.Errorf("%w: record %d has an empty token", ErrCorrupt, i)
	}
	return nil
}
