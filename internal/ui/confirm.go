package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompt streams. Tests swap them.
var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
)

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	return ask(StyleWarning.Render(prompt))
}

// ConfirmDanger is like Confirm but styled with the error color, for
// mainnet transfers and key removal.
func ConfirmDanger(prompt string) bool {
	return ask(StyleError.Render("⚠ " + prompt))
}

func ask(styled string) bool {
	fmt.Fprintf(Stdout, "%s [y/N]: ", styled)
	line, _ := bufio.NewReader(Stdin).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
