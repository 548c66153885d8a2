// Command fault-split explodes a consolidated compressed dataset into
// per-entity files plus the key index, ready to be served as origin blobs.
//
// Usage:
//
//	fault-split -in dataset.json.gz -out ./origin/entities
package main

import (
	"flag"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/jvb127/faultserve/decode"
	"github.com/jvb127/faultserve/split"
)

func main() {
	in := flag.String("in", "dataset.json.gz", "path of the compressed consolidated dataset")
	out := flag.String("out", "entities", "directory to write per-entity files and the index into")
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))

	f, err := os.Open(*in)
	if err != nil {
		level.Error(logger).Log("msg", "opening dataset", "err", err)
		os.Exit(1)
	}

	ds, err := decode.Decode(f)
	f.Close()
	if err != nil {
		level.Error(logger).Log("msg", "decoding dataset", "err", err)
		os.Exit(1)
	}

	keys, err := split.WriteFiles(ds, *out, logger)
	if err != nil {
		level.Error(logger).Log("msg", "splitting dataset", "err", err)
		os.Exit(1)
	}

	level.Info(logger).Log("msg", "split complete",
		"entities", len(keys), "types", len(ds.Data), "out", *out,
		"source_timestamp", ds.SourceTime)
}
