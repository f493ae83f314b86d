package helpers

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal checks if the given file is an interactive terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
