package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var warningPrefix = color.New(color.Bold, color.FgRed)

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a bold red "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	warningPrefix.Fprint(w, "Warning: ")
	printf(w, format, a...)
}
