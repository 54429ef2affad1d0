package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/amp-labs/amp-automata/config"
	"github.com/amp-labs/amp-automata/logger"
)

const (
	boxTopLeft     = "╒"
	boxBottomLeft  = "└"
	boxTopRight    = "╕"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	dividerLeft    = "┠"
	dividerMiddle  = "─"
	dividerRight   = "┨"
	ellipsis       = "…"
)

// Alignment of banner lines.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

const (
	// DefaultTerminalWidth is used when the terminal size is unknown.
	DefaultTerminalWidth = 80

	boxPadding = 2
)

var suppressBanner = sync.OnceValue(func() bool {
	return config.EnvBool("AUTOMATA_NO_BANNER").ValueOrElse(false)
})

func terminalWidth() int {
	_, w, err := TerminalDimensions()
	if err != nil || w == 0 {
		return DefaultTerminalWidth
	}

	return int(w) //nolint:gosec // Terminal width is bounded by screen size
}

// DividerAutoWidth is Divider sized to the terminal.
func DividerAutoWidth() string {
	return Divider(terminalWidth())
}

// BannerAutoWidth is Banner sized to the terminal.
func BannerAutoWidth(s string, a Alignment) string {
	return Banner(s, terminalWidth(), a)
}

// Divider returns a horizontal rule of the given width.
func Divider(width int) string {
	return dividerLeft + strings.Repeat(dividerMiddle, max(width-boxPadding, 0)) + dividerRight + "\n"
}

// Banner draws s in a box. Lines wider than the box are truncated with an
// ellipsis. AUTOMATA_NO_BANNER disables the box.
func Banner(s string, width int, alignment Alignment) string {
	if suppressBanner() {
		return s + "\n"
	}

	if s == "" || width <= boxPadding {
		return ""
	}

	inner := width - boxPadding
	parts := []string{boxTopLeft + strings.Repeat(boxTop, inner) + boxTopRight}

	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		parts = append(parts, boxSide+pad(line, inner, alignment)+boxSide)
	}

	parts = append(parts, boxBottomLeft+strings.Repeat(boxBottom, inner)+boxBottomRight)

	return strings.Join(parts, "\n") + "\n"
}

// pad fits text into width graphic cells.
func pad(text string, width int, alignment Alignment) string {
	length := countGraphic(text)
	if length > width {
		text = truncateGraphic(text, width-1) + ellipsis
		length = width
	}

	diff := width - length

	switch alignment {
	case AlignCenter:
		left := diff / 2 //nolint:mnd

		return strings.Repeat(" ", left) + text + strings.Repeat(" ", diff-left)
	case AlignRight:
		return strings.Repeat(" ", diff) + text
	default:
		return text + strings.Repeat(" ", diff)
	}
}

func countGraphic(s string) int {
	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			count++
		}
	}

	return count
}

// truncateGraphic keeps the first n graphic runes of s.
func truncateGraphic(s string, n int) string {
	var sb strings.Builder

	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			if count == n {
				break
			}

			count++
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

func sttySize() (string, error) {
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return "", err
	}

	defer func() {
		if err := tty.Close(); err != nil {
			logger.Get().Debug("closing /dev/tty", "error", err)
		}
	}()

	// Outputs: "rows columns"
	cmd := exec.Command("stty", "size")
	cmd.Stdin = tty
	out, err := cmd.Output()

	return string(out), err
}

func parseSize(input string) (uint, uint, error) {
	fields := strings.Fields(input)
	if len(fields) != 2 { //nolint:mnd
		return 0, 0, fmt.Errorf("unexpected stty output %q", input) //nolint:err113
	}

	rows, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}

	cols, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, 0, err
	}

	return uint(rows), uint(cols), nil
}

// TerminalDimensions returns (rows, cols, err).
func TerminalDimensions() (uint, uint, error) {
	output, err := sttySize()
	if err != nil {
		return 0, 0, err
	}

	return parseSize(output)
}
