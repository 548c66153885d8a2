/*
Package decode turns the compressed consolidated dataset blob into a parsed
types.Dataset.

The decompressor feeds the JSON parser incrementally: records are decoded
one at a time off the gzip stream, so peak memory tracks the parsed
structure instead of holding a second full copy of the decompressed text.
*/
package decode

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jvb127/faultserve/types"
)

// Decode reads a gzip-compressed dataset document from r.
//
// Pure function: no shared state, safe to call concurrently. Corrupt
// compressed data, invalid document syntax, a missing or unparseable
// timestamp, or a "data" value that is not an id -> record object all fail
// the decode; no partial Dataset is ever returned.
func Decode(r io.Reader) (*types.Dataset, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer zr.Close()

	ds, err := decodeDocument(json.NewDecoder(zr))
	if err != nil {
		return nil, err
	}

	// Drain to EOF so the gzip checksum is verified: a corrupt trailer must
	// fail the decode even though the JSON value itself parsed.
	if _, err := io.Copy(io.Discard, zr); err != nil {
		return nil, fmt.Errorf("reading gzip trailer: %w", err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip stream: %w", err)
	}
	return ds, nil
}

func decodeDocument(dec *json.Decoder) (*types.Dataset, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("dataset document: %w", err)
	}

	var timestamp string
	data := map[string]map[string]json.RawMessage{}

	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, fmt.Errorf("dataset document key: %w", err)
		}
		switch key {
		case "timestamp":
			if err := dec.Decode(&timestamp); err != nil {
				return nil, fmt.Errorf("dataset timestamp: %w", err)
			}
		case "data":
			if err := decodeData(dec, data); err != nil {
				return nil, err
			}
		default:
			// Unknown top-level fields are tolerated but skipped.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("dataset field %q: %w", key, err)
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("dataset document: %w", err)
	}

	if timestamp == "" {
		return nil, fmt.Errorf("dataset document has no timestamp")
	}
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset timestamp %q: %w", timestamp, err)
	}
	return &types.Dataset{SourceTime: ts, Data: data}, nil
}

// decodeData walks "data": each entity type must map to an object of
// id -> record; records are pulled off the stream one at a time.
func decodeData(dec *json.Decoder, data map[string]map[string]json.RawMessage) error {
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("dataset data section: %w", err)
	}
	for dec.More() {
		entityType, err := stringToken(dec)
		if err != nil {
			return fmt.Errorf("entity type key: %w", err)
		}
		if err := expectDelim(dec, '{'); err != nil {
			return fmt.Errorf("entity type %q: %w", entityType, err)
		}
		records := map[string]json.RawMessage{}
		for dec.More() {
			id, err := stringToken(dec)
			if err != nil {
				return fmt.Errorf("entity id under %q: %w", entityType, err)
			}
			var rec json.RawMessage
			if err := dec.Decode(&rec); err != nil {
				return fmt.Errorf("entity %s/%s: %w", entityType, id, err)
			}
			records[id] = rec
		}
		if err := expectDelim(dec, '}'); err != nil {
			return fmt.Errorf("entity type %q: %w", entityType, err)
		}
		data[entityType] = records
	}
	if err := expectDelim(dec, '}'); err != nil {
		return fmt.Errorf("dataset data section: %w", err)
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %v", tok)
	}
	return s, nil
}

// Encode writes the gzip-compressed wire form of ds to w. It is the inverse
// of Decode and is what the splitter and tests use to produce origin blobs.
func Encode(w io.Writer, ds *types.Dataset) error {
	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(ds); err != nil {
		zw.Close()
		return fmt.Errorf("encoding dataset: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing gzip stream: %w", err)
	}
	return nil
}
