// Command tlsf-bench replays a text trace of allocate/free operations
// against a tlsf.General pool and reports elapsed time.
//
// Trace format: one operation per line, either
//
//	a <id> <size>
//	f <id>
//
// where id links a free back to the allocate that produced it.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joelsiks/jsmalloc/tlsf"
)

type operation struct {
	kind byte
	id   uint64
	size uintptr
}

func readTrace(path string) ([]operation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ops []operation
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing id %q: %w", fields[1], err)
		}

		op := operation{kind: fields[0][0], id: id}
		if op.kind == 'a' {
			if len(fields) < 3 {
				return nil, fmt.Errorf("allocate line missing size: %q", line)
			}
			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing size %q: %w", fields[2], err)
			}
			op.size = uintptr(size)
		}
		ops = append(ops, op)
	}
	return ops, sc.Err()
}

func main() {
	oTrace := flag.String("trace", "", "path to a trace file (required)")
	oPoolSize := flag.Int("pool", 2<<20, "pool size in bytes")
	flag.Parse()

	if *oTrace == "" {
		log.Fatal("tlsf-bench: -trace is required")
	}

	ops, err := readTrace(*oTrace)
	if err != nil {
		log.Fatalf("tlsf-bench: %v", err)
	}

	g := tlsf.NewGeneral(make([]byte, *oPoolSize))
	live := make(map[uint64]uintptr)

	var failures int
	start := time.Now()
	for _, op := range ops {
		switch op.kind {
		case 'a':
			addr, ok := g.Allocate(op.size)
			if !ok {
				failures++
				continue
			}
			live[op.id] = addr
		case 'f':
			if addr, ok := live[op.id]; ok {
				g.Free(addr)
				delete(live, op.id)
			}
		}
	}
	elapsed := time.Since(start)

	stats := g.Stats()
	fmt.Printf("operations: %d\n", len(ops))
	fmt.Printf("failures:   %d\n", failures)
	fmt.Printf("elapsed:    %s\n", elapsed)
	fmt.Printf("header overhead: %.4f\n", stats.HeaderOverhead())
}
