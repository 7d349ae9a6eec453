package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/akhil-is-watching/securechain/internal/documents"
	"github.com/akhil-is-watching/securechain/internal/utils"
)

// Formatter renders one kind of CLI value. With color it paints the text;
// without, it wraps the text in prefix and suffix. A positive keep shortens
// the text to its first and last keep characters first.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
	keep   int
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if f.keep > 0 {
		text = utils.Abbreviate(text, f.keep)
	}
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// noColor honors NO_COLOR (https://no-color.org/) and fatih/color's own
// terminal detection.
func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	// Code formats runnable commands, `backticks` without color.
	Code = Formatter{color: color.New(color.FgYellow), prefix: "`", suffix: "`"}

	// Path formats local file names and directories.
	Path = Formatter{color: color.New(color.FgYellow)}

	// Flag formats CLI flags like --to or --force.
	Flag = Formatter{color: color.New(color.FgYellow)}

	Success = Formatter{color: color.New(color.FgGreen)}
	Error   = Formatter{color: color.New(color.FgRed)}
	Warning = Formatter{color: color.New(color.FgYellow)}
	Info    = Formatter{color: color.New(color.FgCyan)}

	// Highlight formats wallet addresses and file names, 'single quotes'
	// without color.
	Highlight = Formatter{color: color.New(color.FgCyan), prefix: "'", suffix: "'"}

	// ID formats document ids, locators and public keys in full. Use it
	// wherever the value is meant to be copied.
	ID = Formatter{color: color.New(color.FgMagenta)}

	// ShortID formats the same values abbreviated for tables.
	ShortID = Formatter{color: color.New(color.FgMagenta), keep: 8}

	// ShortAddress abbreviates wallet addresses to 0x2c75...a65c23.
	ShortAddress = Formatter{color: color.New(color.FgCyan), keep: 6}

	// Muted formats secondary text, (parentheses) without color.
	Muted = Formatter{color: color.New(color.FgHiBlack), prefix: "(", suffix: ")"}
)

// Mark is the status symbol that leads a command's final message.
type Mark int

const (
	MarkDone Mark = iota
	MarkFailed
	MarkNext
	MarkNote
	MarkWarn
)

func (m Mark) String() string {
	switch m {
	case MarkDone:
		return Success.Sprint("✓")
	case MarkFailed:
		return Error.Sprint("✗")
	case MarkNext:
		return Info.Sprint("→")
	case MarkNote:
		return Info.Sprint("ℹ")
	default:
		return Warning.Sprint("⚠")
	}
}

// Role renders the caller's relation to a document.
func Role(r documents.Role) string {
	switch r {
	case documents.RoleOwner:
		return Success.Sprint(r.String())
	case documents.RoleRecipient:
		return Info.Sprint(r.String())
	default:
		return Muted.Sprint(r.String())
	}
}

// Registration renders whether an address has the given key bound.
func Registration(bound, matches bool) string {
	switch {
	case bound && matches:
		return Success.Sprint("registered")
	case bound:
		return Error.Sprint("a different key is registered")
	default:
		return Warning.Sprint("not registered") + " " + Muted.Sprint("run securechain register")
	}
}

// Verification renders a registry answer for a document.
func Verification(recorded bool) string {
	if recorded {
		return Success.Sprint("recorded")
	}
	return Warning.Sprint("not recorded")
}

// FileList renders paths one per line under a leading newline, for log
// output listing matched files.
func FileList(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}
