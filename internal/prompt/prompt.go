// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package prompt asks the user yes/no questions.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ErrInterrupted is returned when the user presses Ctrl-C at a prompt
// read in raw mode. It wraps [context.Canceled].
var ErrInterrupted = fmt.Errorf("interrupted: %w", context.Canceled)

// Prompt reads answers from In and writes questions to Out. A Prompt stays
// usable after a canceled Confirm.
type Prompt struct {
	In  io.Reader
	Out io.Writer

	start sync.Once
	lines chan result // closed after a read error
}

// Confirm asks question and returns the answer. An empty answer or end of
// input selects def.
//
// On a terminal a single key press answers the question. Otherwise a line
// is read; unrecognized answers repeat the question.
func (p *Prompt) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(p.Out, "%s %s ", question, hint)
		return p.confirmKey(ctx, f, def)
	}
	for {
		fmt.Fprintf(p.Out, "%s %s ", question, hint)
		line, err := p.readLine(ctx)
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(p.Out)
			return def, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		if answer, ok := parse(line, def); ok {
			return answer, nil
		}
		if errors.Is(err, io.EOF) {
			return def, nil
		}
	}
}

func parse(s string, def bool) (answer, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

type result struct {
	s   string
	err error
}

// readLine returns the next line of In. A single goroutine owns In, so a
// line read after a canceled call is delivered to the next one.
func (p *Prompt) readLine(ctx context.Context) (string, error) {
	p.start.Do(func() {
		p.lines = make(chan result)
		go p.readLines()
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return r.s, r.err
	}
}

func (p *Prompt) readLines() {
	defer close(p.lines)
	br := bufio.NewReader(p.In)
	for {
		s, err := br.ReadString('\n')
		p.lines <- result{s, err}
		if err != nil {
			return
		}
	}
}

func (p *Prompt) confirmKey(ctx context.Context, f *os.File, def bool) (bool, error) {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return false, err
	}
	defer term.Restore(fd, state)

	key := make([]byte, 1)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if _, err := f.Read(key); err != nil {
			return false, err
		}
		var answer bool
		switch key[0] {
		case 'y', 'Y':
			answer = true
		case 'n', 'N':
			answer = false
		case '\r', '\n':
			answer = def
		case 3: // Ctrl-C
			fmt.Fprint(p.Out, "\r\n")
			return false, ErrInterrupted
		default:
			continue
		}
		if answer {
			fmt.Fprint(p.Out, "yes\r\n")
		} else {
			fmt.Fprint(p.Out, "no\r\n")
		}
		return answer, nil
	}
}
