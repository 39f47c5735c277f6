// Command tabprobe samples the head of a delimited file or URL and prints a
// drafted pipeline config for it: canonical column names, inferred types as
// a contract, and date formats. The draft is a starting point meant to be
// hand-edited.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"tabpipe/internal/datasource"
	"tabpipe/internal/probe"
)

func main() {
	var (
		location  string
		job       string
		delimiter string
		maxBytes  int
		outPath   string
	)

	flag.StringVar(&location, "in", "", "input file path or http(s) URL")
	flag.StringVar(&job, "job", "", "job name used in the drafted config")
	flag.StringVar(&delimiter, "delimiter", ",", "field delimiter")
	flag.IntVar(&maxBytes, "max-bytes", 256<<10, "bytes to sample from the start of the input")
	flag.StringVar(&outPath, "out", "", "write the draft here instead of stdout")
	flag.Parse()

	if location == "" {
		fatalf("usage: tabprobe -in <path-or-url> [-job name] [-delimiter c] [-out file]")
	}

	kind := "file"
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		kind = "http"
	}
	src, err := datasource.New(kind, location)
	if err != nil {
		fatalf("%v", err)
	}

	opt := probe.Options{MaxBytes: maxBytes, Job: job}
	if delimiter != "" {
		opt.Delimiter = []rune(delimiter)[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, err := probe.Probe(ctx, src, opt)
	if err != nil {
		fatalf("probe: %v", err)
	}
	if kind == "file" {
		p.Source.Path = location
	} else {
		p.Source.Kind = "http"
		p.Source.URL = location
	}

	b, err := probe.Render(p)
	if err != nil {
		fatalf("render: %v", err)
	}
	if outPath == "" {
		os.Stdout.Write(b)
		return
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		fatalf("write %s: %v", outPath, err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
