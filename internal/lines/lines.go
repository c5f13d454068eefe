// Package lines shares one input stream between the prompts that read it.
package lines

import (
	"bufio"
	"context"
	"io"
	"sync"
)

type result struct {
	line string
	err  error
}

// Reader hands out lines from a single reading goroutine. A caller whose
// context ends first leaves the line for the next caller.
type Reader struct {
	src  *bufio.Reader
	ch   chan result
	once sync.Once

	mu  sync.Mutex
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(r), ch: make(chan result)}
}

func (r *Reader) run() {
	for {
		line, err := r.src.ReadString('\n')
		r.ch <- result{line, err}
		if err != nil {
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
			close(r.ch)
			return
		}
	}
}

// ReadLine returns the next line including its newline, as bufio.Reader.ReadString
// does. Once the input has ended every call returns the final error.
func (r *Reader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.once.Do(func() { go r.run() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-r.ch:
		if !ok {
			r.mu.Lock()
			defer r.mu.Unlock()
			return "", r.err
		}
		return res.line, res.err
	}
}
