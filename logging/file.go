package logging

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileAppender is a ConsoleAppender writing to a size-rotated file.
type FileAppender struct {
	ConsoleAppender
	io.Closer
}

// NewFileAppender returns an appender writing human readable lines to filename. The file is
// rotated once it reaches 100 MB and the three most recent backups are kept compressed. Close
// the appender when done.
func NewFileAppender(filename string) FileAppender {
	out := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 3,
		Compress:   true,
	}
	return FileAppender{
		ConsoleAppender: NewWriterAppender(out),
		Closer:          out,
	}
}
