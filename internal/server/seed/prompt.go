package seed

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the x/term calls.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// ResolvePassword picks the demo password: the flag value when set, else a
// prompt without echo when stdin is a terminal, else DefaultDemoPassword.
// An empty answer at the prompt also selects the default.
func ResolvePassword(flagValue string, w io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return DefaultDemoPassword, nil
	}

	if _, err := fmt.Fprintf(w, "Demo password (empty for %q): ", DefaultDemoPassword); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	if len(pw) == 0 {
		return DefaultDemoPassword, nil
	}
	return string(pw), nil
}
