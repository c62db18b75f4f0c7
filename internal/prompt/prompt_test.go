package prompt

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "Yes", input: "Yes\n", want: true},
		{name: "y", input: "y\n", want: true},
		{name: "spaced out", input: " y e s \n", want: true},
		{name: "windows line ending", input: "oui\r\n", want: true},
		{name: "no trailing newline", input: "da", want: true},
		{name: "every token", input: "YEP\n", want: true},
		{name: "n", input: "n\n", want: false},
		{name: "empty line", input: "\n", want: false},
		{name: "eof", input: "", want: false},
		{name: "nope", input: "nope\n", want: false},
		{name: "only first line counts", input: "no\nyes\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "Overwrite?")
			require.Equal(t, tt.want, got)
			require.Equal(t, "Overwrite? [y/N]: ", out.String())
		})
	}
}

func TestConfirm_AllAffirmativeTokens(t *testing.T) {
	for _, token := range []string{"y", "yes", "ya", "true", "ja", "si", "da", "oui", "yep"} {
		require.True(t, Confirm(strings.NewReader(token+"\n"), &bytes.Buffer{}, "?"), token)
	}
}

// onlyReader hides io.ByteReader so the one-byte Read path is used, like os.Stdin.
type onlyReader struct{ r io.Reader }

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func TestConfirm_ConsumesOneLine(t *testing.T) {
	tests := []struct {
		name string
		in   io.Reader
	}{
		{name: "plain reader", in: onlyReader{strings.NewReader("no\nyes\n\n")}},
		{name: "byte reader", in: bufio.NewReader(strings.NewReader("no\nyes\n\n"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, Confirm(tt.in, io.Discard, "first?"))
			require.True(t, Confirm(tt.in, io.Discard, "second?"))
			require.False(t, Confirm(tt.in, io.Discard, "third?"))
			require.False(t, Confirm(tt.in, io.Discard, "after eof?"))
		})
	}
}
