// Package notify writes symbol-prefixed, coloured console messages.
// Colours are dropped when the output is not a terminal.
package notify

import (
	"fmt"
	"io"
	"os"

	fcolor "github.com/fatih/color"
)

// MessageType selects the symbol and colour of a message.
type MessageType int

const (
	// ErrorType is printed red with a ✗ symbol.
	ErrorType MessageType = iota
	// WarningType is printed yellow with a ⚠ symbol.
	WarningType
	// SuccessType is printed green with a ✔ symbol.
	SuccessType
	// InfoType is printed blue with a ℹ symbol.
	InfoType
)

// Message is a single notification.
type Message struct {
	Type    MessageType
	Content string
	Args    []any
	// Writer defaults to os.Stdout.
	Writer io.Writer
}

type style struct {
	symbol string
	color  *fcolor.Color
}

var styles = map[MessageType]style{
	ErrorType:   {symbol: "✗", color: fcolor.New(fcolor.FgRed)},
	WarningType: {symbol: "⚠", color: fcolor.New(fcolor.FgYellow)},
	SuccessType: {symbol: "✔", color: fcolor.New(fcolor.FgGreen)},
	InfoType:    {symbol: "ℹ", color: fcolor.New(fcolor.FgBlue)},
}

// WriteMessage formats and writes msg.
func WriteMessage(msg Message) {
	writer := msg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	content := msg.Content
	if len(msg.Args) > 0 {
		content = fmt.Sprintf(msg.Content, msg.Args...)
	}

	st, ok := styles[msg.Type]
	if !ok {
		_, _ = fmt.Fprintln(writer, content)
		return
	}
	_, _ = st.color.Fprintf(writer, "%s %s\n", st.symbol, content)
}

// Errorf writes an error message to writer.
func Errorf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ErrorType, Content: format, Args: args, Writer: writer})
}

// Warningf writes a warning message to writer.
func Warningf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: WarningType, Content: format, Args: args, Writer: writer})
}

// Successf writes a success message to writer.
func Successf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Writer: writer})
}

// Infof writes an informational message to writer.
func Infof(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: InfoType, Content: format, Args: args, Writer: writer})
}
