package colors

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	White  = "\033[37m"
	Gray   = "\033[90m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// Output is where console messages go; ErrOutput receives PrintError lines
var (
	Output    io.Writer = os.Stdout
	ErrOutput io.Writer = os.Stderr
)

// Enabled toggles ANSI escapes; it defaults to whether stdout is a terminal
var Enabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func c(code string) string {
	if !Enabled {
		return ""
	}
	return code
}

func line(w io.Writer, icon, iconColor, textColor, format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(w, "%s[%s]%s %s%s%s %s%s%s\n",
		c(Gray), timestamp, c(Reset),
		c(iconColor), icon, c(Reset),
		c(textColor), fmt.Sprintf(format, args...), c(Reset))
}

// PrintInfo prints informational messages with cyan color
func PrintInfo(format string, args ...interface{}) {
	line(Output, "i", Cyan, BrightCyan, format, args...)
}

// PrintSuccess prints success messages with green color
func PrintSuccess(format string, args ...interface{}) {
	line(Output, "✓", Green, BrightGreen, format, args...)
}

// PrintWarning prints warning messages with yellow color
func PrintWarning(format string, args ...interface{}) {
	line(Output, "!", Yellow, BrightYellow, format, args...)
}

// PrintError prints error messages with red color
func PrintError(format string, args ...interface{}) {
	line(ErrOutput, "✗", Red, BrightRed, format, args...)
}

// PrintHeader prints header messages with bold styling
func PrintHeader(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	border := make([]rune, len([]rune(message))+2)
	for i := range border {
		border[i] = '═'
	}
	fmt.Fprintf(Output, "\n%s%s╔%s╗%s\n", c(BrightBlue), c(Bold), string(border), c(Reset))
	fmt.Fprintf(Output, "%s%s║ %s ║%s\n", c(BrightBlue), c(Bold), message, c(Reset))
	fmt.Fprintf(Output, "%s%s╚%s╝%s\n\n", c(BrightBlue), c(Bold), string(border), c(Reset))
}

// PrintSubHeader prints sub-header messages
func PrintSubHeader(format string, args ...interface{}) {
	fmt.Fprintf(Output, "%s%s▶ %s%s\n", c(BrightMagenta), c(Bold), fmt.Sprintf(format, args...), c(Reset))
}

// PrintBanner prints the application banner
func PrintBanner(version string) {
	banner := `
%s%s   ____  _                              
  / ___|(_) __ _ _ __   __ _  __ _  ___ 
  \___ \| |/ _' | '_ \ / _' |/ _' |/ _ \
   ___) | | (_| | | | | (_| | (_| |  __/
  |____/|_|\__, |_| |_|\__,_|\__, |\___|
           |___/             |___/      %s
   %sPlaylists, schedules and screens %s%s
`
	fmt.Fprintf(Output, banner, c(BrightCyan), c(Bold), c(Reset), c(BrightYellow), version, c(Reset))
}

// PrintEndpoint prints API endpoint information
func PrintEndpoint(method, path, description string) {
	var methodColor string
	switch method {
	case "GET":
		methodColor = BrightGreen
	case "POST":
		methodColor = BrightBlue
	case "PUT", "PATCH":
		methodColor = BrightYellow
	case "DELETE":
		methodColor = BrightRed
	default:
		methodColor = White
	}

	fmt.Fprintf(Output, "  %s%-6s%s %s%-40s%s %s%s%s\n",
		c(methodColor), method, c(Reset),
		c(Cyan), path, c(Reset),
		c(Gray), description, c(Reset))
}

// PrintShutdown prints shutdown message
func PrintShutdown() {
	fmt.Fprintf(Output, "\n%s%sSignage server shutdown initiated...%s\n", c(BrightRed), c(Bold), c(Reset))
	fmt.Fprintf(Output, "%s%sGracefully closing connections...%s\n\n", c(Yellow), c(Bold), c(Reset))
}

// PrintStats prints statistics in a formatted way
func PrintStats(label string, value interface{}) {
	fmt.Fprintf(Output, "%s  %-20s:%s %s%v%s\n",
		c(Cyan), label, c(Reset),
		c(BrightWhite), value, c(Reset))
}
