// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package prompt

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.astrophena.name/exzip/testutil"
)

func TestConfirm(t *testing.T) {
	cases := map[string]struct {
		in      string
		def     bool
		want    bool
		wantOut string
	}{
		"yes":             {in: "y\n", want: true, wantOut: "Replace? [y/N] "},
		"YES":             {in: "YES\n", want: true, wantOut: "Replace? [y/N] "},
		"no":              {in: "no\n", def: true, want: false, wantOut: "Replace? [Y/n] "},
		"empty uses def":  {in: "\n", def: true, want: true, wantOut: "Replace? [Y/n] "},
		"eof uses def":    {in: "", want: false, wantOut: "Replace? [y/N] \n"},
		"no newline":      {in: "y", want: true, wantOut: "Replace? [y/N] "},
		"asks again":      {in: "what\nn\n", def: true, want: false, wantOut: "Replace? [Y/n] Replace? [Y/n] "},
		"garbage and eof": {in: "what", want: false, wantOut: "Replace? [y/N] "},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var out strings.Builder
			p := &Prompt{In: strings.NewReader(tc.in), Out: &out}
			got, err := p.Confirm(context.Background(), "Replace?", tc.def)
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertEqual(t, got, tc.want)
			testutil.AssertEqual(t, out.String(), tc.wantOut)
		})
	}
}

func TestConfirmCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Prompt{In: r, Out: io.Discard}
	_, err := p.Confirm(ctx, "Replace?", false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}

	// The answer typed after the cancellation goes to the next question.
	go func() {
		io.WriteString(w, "y\n")
		w.Close()
	}()
	answer, err := p.Confirm(context.Background(), "Replace?", false)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, answer, true)

	// End of input after that answers with the default.
	answer, err = p.Confirm(context.Background(), "Replace?", true)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, answer, true)
}

func TestErrInterrupted(t *testing.T) {
	if !errors.Is(ErrInterrupted, context.Canceled) {
		t.Fatal("ErrInterrupted must wrap context.Canceled")
	}
}
