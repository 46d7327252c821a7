// Command tlsf-stress hammers a malloc.Heap from many goroutines at
// once, replaying a text trace of allocation sizes (one integer per
// line) per goroutine, to shake out any externally-synchronized
// concurrent use bugs.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joelsiks/jsmalloc/malloc"
)

func readSizes(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sizes []int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		sizes = append(sizes, n)
	}
	return sizes, sc.Err()
}

func runWorker(h *malloc.Heap, sizes []int, shouldFree bool) {
	var live [][]byte
	for _, size := range sizes {
		if size <= 0 {
			continue
		}
		b, err := h.Malloc(size)
		if err != nil {
			continue
		}
		if shouldFree {
			live = append(live, b)
		}
	}
	for _, b := range live {
		h.Free(b)
	}
}

func main() {
	oTrace := flag.String("trace", "", "path to a newline-delimited allocation-size trace (required)")
	oThreads := flag.Int("threads", 100, "number of concurrent goroutines")
	oPoolSize := flag.Int("pool", 10*1000*1024, "pool size in bytes")
	oFree := flag.Bool("free", true, "free each allocation at the end of its run")
	flag.Parse()

	if *oTrace == "" {
		log.Fatal("tlsf-stress: -trace is required")
	}

	sizes, err := readSizes(*oTrace)
	if err != nil {
		log.Fatalf("tlsf-stress: %v", err)
	}

	h, err := malloc.NewHeap(*oPoolSize)
	if err != nil {
		log.Fatalf("tlsf-stress: %v", err)
	}
	defer h.Close()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *oThreads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runWorker(h, sizes, *oFree)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	log.Printf("threads=%d sizes=%d elapsed=%s", *oThreads, len(sizes), elapsed)
}
