package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const knownFinalHash = "5834dc0cf41b5ff95e9b74a1adda9885447c242c54c333013ec8616ba92b7b5e"

func Test_printVerification(t *testing.T) {
	a := assert.New(t)

	var buf bytes.Buffer
	a.NoError(printVerification(&buf, "blackjack", "f00dfacecafebeef", "lucky", 1, 1, 3))
	out := buf.String()
	a.Contains(out, "Final hash:         "+knownFinalHash+"\n")
	a.Contains(out, "Shoe:               11s,12h,7c,7h,13h,12s,6d,13c,")

	buf.Reset()
	a.NoError(printVerification(&buf, "mines", "f00dfacecafebeef", "lucky", 1, 1, 3))
	out = buf.String()
	a.Contains(out, "Mines:              [24 1 9]\n")
	a.True(strings.HasSuffix(out, strings.Join([]string{
		"  . * . . .",
		"  . . . . *",
		"  . . . . .",
		"  . . . . .",
		"  . . . . *",
	}, "\n")+"\n"))

	a.EqualError(printVerification(&buf, "poker", "f00dfacecafebeef", "lucky", 1, 1, 3), "unknown game: poker")
}
