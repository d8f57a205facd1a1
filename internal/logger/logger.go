package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file created inside the config directory.
const FileName = "stockq.log"

type LoggerService interface {
	Info(msg string)
	Error(msg string, err error)
	Warn(msg string)
	Success(msg string)
	Close() error
}

type service struct {
	logger *log.Logger
	file   *os.File
}

// New opens dir/stockq.log for appending. With debug set, lines are mirrored to stderr.
func New(dir string, debug bool) (LoggerService, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	var out io.Writer = f
	if debug {
		out = io.MultiWriter(os.Stderr, f)
	}

	return &service{
		logger: log.New(out, "", log.LstdFlags),
		file:   f,
	}, nil
}

// NewWriter logs to w without owning it.
func NewWriter(w io.Writer) LoggerService {
	return &service{
		logger: log.New(w, "", log.LstdFlags),
	}
}

// Discard drops every line.
func Discard() LoggerService {
	return NewWriter(io.Discard)
}

func (s *service) Info(msg string) {
	s.write("INFO", msg)
}

func (s *service) Error(msg string, err error) {
	msg = strings.TrimSpace(msg)
	if err != nil {
		if msg == "" {
			msg = err.Error()
		} else {
			msg = msg + ": " + err.Error()
		}
	}
	s.write("ERROR", msg)
}

func (s *service) Warn(msg string) {
	s.write("WARN", msg)
}

func (s *service) Success(msg string) {
	s.write("OK", msg)
}

func (s *service) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *service) write(level, msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	s.logger.Printf("[%s] %s", level, msg)
}
