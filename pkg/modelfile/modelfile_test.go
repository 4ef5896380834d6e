package modelfile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bastiangx/wordpredict/pkg/ngram"
	"github.com/bastiangx/wordpredict/pkg/tokenize"
	"github.com/vmihailenco/msgpack/v5"
)

func trained(order int, texts ...string) *ngram.Store {
	s := ngram.NewStore(order)
	ngram.TrainTexts(s, tokenize.Default(), texts)
	return s
}

// withBody builds a file with a valid header around body.
func withBody(t *testing.T, order int, body modelBody) []byte {
	t.Helper()
	data, err := msgpack.Marshal(&body)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := writeHeader(&buf, Header{Version: Version, Order: order, BodySize: uint32(len(data))}); err != nil {
		t.Fatal(err)
	}
	buf.Write(data)
	return buf.Bytes()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "model.bin")

	s := trained(3, "the cat sat on the mat", "the cat ran", "a dog sat")
	if err := Save(path, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("temporary file left behind: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Order() != 3 {
		t.Errorf("expected order 3, got %d", loaded.Order())
	}
	if !reflect.DeepEqual(loaded.Records(), s.Records()) {
		t.Errorf("records differ:\nsaved  %v\nloaded %v", s.Records(), loaded.Records())
	}
	if !reflect.DeepEqual(loaded.LeadingRecords(), s.LeadingRecords()) {
		t.Errorf("leading records differ:\nsaved  %v\nloaded %v", s.LeadingRecords(), loaded.LeadingRecords())
	}
	if loaded.Stats() != s.Stats() {
		t.Errorf("expected stats %+v, got %+v", s.Stats(), loaded.Stats())
	}

	// The back-off index is rebuilt on load, text starts included.
	for _, context := range []string{"unknown cat", "the ", "a "} {
		want := ngram.Predict(s, tokenize.Default(), context, 5)
		got := ngram.Predict(loaded, tokenize.Default(), context, 5)
		if !reflect.DeepEqual(want, got) {
			t.Errorf("Context '%s': expected predictions %v, got %v", context, want, got)
		}
	}
	if got := ngram.Predict(loaded, tokenize.Default(), "a ", 1); len(got) != 1 || got[0].Token != "dog" {
		t.Errorf("expected 'dog' after 'a', got %v", got)
	}
}

func TestSaveIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")

	s1 := trained(2, "x y z", "p q")
	s2 := trained(2, "p q", "x y z")
	if err := Save(a, s1); err != nil {
		t.Fatal(err)
	}
	if err := Save(b, s2); err != nil {
		t.Fatal(err)
	}

	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if !bytes.Equal(da, db) {
		t.Errorf("same model written in different insertion order produced different files")
	}
}

func TestSaveEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := Save(path, ngram.NewStore(4)); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if st := loaded.Stats(); st != (ngram.Stats{Order: 4}) {
		t.Errorf("expected empty order 4 store, got %+v", st)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.bin"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("expected *PersistenceError, got %T", err)
	}
	if errors.Is(err, ErrCorrupt) {
		t.Errorf("missing file must not be reported as corrupt")
	}
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.bin")
	if err := Save(good, trained(3, "the cat sat", "the cat ran")); err != nil {
		t.Fatal(err)
	}
	valid, err := os.ReadFile(good)
	if err != nil {
		t.Fatal(err)
	}

	mutate := func(fn func(b []byte) []byte) []byte {
		return fn(bytes.Clone(valid))
	}

	testCases := []struct {
		description string
		data        []byte
	}{
		{"Empty file", []byte{}},
		{"Short header", valid[:10]},
		{"Bad magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b })},
		{"Unknown version", mutate(func(b []byte) []byte { b[8] = 9; return b })},
		{"Order below minimum", mutate(func(b []byte) []byte { b[10], b[11] = 1, 0; return b })},
		{"Truncated body", valid[:len(valid)-3]},
		{"Trailing bytes", append(bytes.Clone(valid), 0, 0)},
		{"Garbage body", mutate(func(b []byte) []byte {
			for i := headerSize; i < len(b); i++ {
				b[i] = 0xc1
			}
			return b
		})},
		{"Order does not match records", mutate(func(b []byte) []byte { b[10] = 4; return b })},
		{"Leading context too long", withBody(t, 3, modelBody{
			Leading: []record{{Context: []string{"a", "b"}, Token: "c", Count: 1}},
		})},
		{"Zero count", withBody(t, 2, modelBody{
			Primary: []record{{Context: []string{"a"}, Token: "b", Count: 0}},
		})},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			path := filepath.Join(dir, "bad.bin")
			if err := os.WriteFile(path, tc.data, 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bin")
	if err := Save(path, trained(5, "one two three four five six")); err != nil {
		t.Fatal(err)
	}
	h, err := Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	if h.Version != Version || h.Order != 5 || h.BodySize == 0 {
		t.Errorf("unexpected header %+v", h)
	}
}

func TestSaveUnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	err := Save(filepath.Join(blocker, "model.bin"), trained(2, "a b"))
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
}

func TestSaveRejectsOrderAboveHeaderLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bin")
	err := Save(path, ngram.NewStore(MaxOrder+1))
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Op != "encode" {
		t.Fatalf("expected an encode *PersistenceError, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected no file to be written, got %v", err)
	}
}

func TestSaveRejectsOversizedBody(t *testing.T) {
	saved := maxBodySize
	maxBodySize = 8
	t.Cleanup(func() { maxBodySize = saved })

	path := filepath.Join(t.TempDir(), "model.bin")
	err := Save(path, trained(2, "the cat sat on the mat"))
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Op != "encode" {
		t.Fatalf("expected an encode *PersistenceError, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected no file to be written, got %v", err)
	}
}
