// Package prompt asks the user yes/no questions on a terminal.
package prompt

import (
	"fmt"
	"io"
	"strings"
)

var affirmative = map[string]bool{
	"y":    true,
	"yes":  true,
	"ya":   true,
	"true": true,
	"ja":   true,
	"si":   true,
	"da":   true,
	"oui":  true,
	"yep":  true,
}

// Confirm writes msg with a [y/N] hint to w, reads one line from r and reports
// whether the answer is affirmative. Spaces are ignored and case does not matter.
// A read error or an empty answer counts as no.
func Confirm(r io.Reader, w io.Writer, msg string) bool {
	fmt.Fprint(w, msg+" [y/N]: ")

	line, err := readLine(r)
	if err != nil && line == "" {
		return false
	}

	ans := strings.ReplaceAll(line, " ", "")
	ans = strings.ToLower(strings.TrimSpace(ans))
	return affirmative[ans]
}

// readLine consumes r up to and including the first '\n' and nothing more,
// so the next caller on the same reader starts at the next line.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	if br, ok := r.(io.ByteReader); ok {
		for {
			c, err := br.ReadByte()
			if err != nil {
				return sb.String(), err
			}
			if c == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(c)
		}
	}

	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return sb.String(), err
		}
	}
}
