package server

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// errMalformed marks a request that could not be decoded but after which the
// stream is still usable.
var errMalformed = errors.New("malformed request")

// Codec reads requests from and writes responses to a byte stream.
type Codec interface {
	// Decode reads the next request. io.EOF ends the session cleanly.
	Decode(req *Request) error
	Encode(resp *Response) error
}

// NewCodec returns the codec registered under name ("msgpack" or "json").
func NewCodec(name string, r io.Reader, w io.Writer) (Codec, error) {
	switch name {
	case "", "msgpack":
		return newMsgpackCodec(r, w), nil
	case "json":
		return newJSONCodec(r, w), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

type msgpackCodec struct {
	dec *msgpack.Decoder
	enc *msgpack.Encoder
	w   *bufio.Writer
}

func newMsgpackCodec(r io.Reader, w io.Writer) *msgpackCodec {
	bw := bufio.NewWriter(w)
	return &msgpackCodec{
		dec: msgpack.NewDecoder(bufio.NewReader(r)),
		enc: msgpack.NewEncoder(bw),
		w:   bw,
	}
}

// Decode fails hard on malformed input: a msgpack stream cannot be resynced.
func (c *msgpackCodec) Decode(req *Request) error {
	*req = Request{}
	return c.dec.Decode(req)
}

func (c *msgpackCodec) Encode(resp *Response) error {
	if err := c.enc.Encode(resp); err != nil {
		return err
	}
	return c.w.Flush()
}

type jsonCodec struct {
	r *bufio.Reader
	w *bufio.Writer
}

func newJSONCodec(r io.Reader, w io.Writer) *jsonCodec {
	return &jsonCodec{r: bufio.NewReader(r), w: bufio.NewWriter(w)}
}

// Decode reads one line. Blank lines are skipped; a line that is not a valid
// request yields errMalformed and the next call continues with the next line.
func (c *jsonCodec) Decode(req *Request) error {
	for {
		line, err := c.r.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if err != nil {
				return err
			}
			continue
		}

		*req = Request{}
		if uerr := json.Unmarshal(line, req); uerr != nil {
			return fmt.Errorf("%w: %v", errMalformed, uerr)
		}
		return nil
	}
}

func (c *jsonCodec) Encode(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := c.w.Write(data); err != nil {
		return err
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return err
	}
	return c.w.Flush()
}
