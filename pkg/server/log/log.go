/* Copyright 2025 Daylily Catalog Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package log writes structured JSON logs for the data service
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const (
	fieldKeyLevel     = "level"
	fieldKeyMessage   = "msg"
	fieldKeyTimestamp = "ts"

	// LevelDebug represents debug log level
	LevelDebug = "debug"
	// LevelInfo represents info log level
	LevelInfo = "info"
	// LevelWarn represents warn log level
	LevelWarn = "warn"
	// LevelError represents error log level
	LevelError = "error"
)

var (
	mu           sync.Mutex
	out          io.Writer = os.Stderr
	currentLevel           = LevelInfo
)

// Fields represents a set of information to be included in the log
type Fields map[string]interface{}

// Entry represents a log entry
type Entry struct {
	Fields    Fields
	Timestamp time.Time
}

// WithFields creates a log entry with the given fields
func WithFields(fields Fields) Entry {
	return Entry{
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

// IsLevel reports whether the given string names a log level
func IsLevel(level string) bool {
	switch level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}

	return false
}

// SetLevel sets the global log level
func SetLevel(level string) {
	mu.Lock()
	currentLevel = level
	mu.Unlock()
}

// GetLevel returns the global log level
func GetLevel() string {
	mu.Lock()
	defer mu.Unlock()

	return currentLevel
}

// SetOutput sets the destination of the logs and returns the previous one
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()

	prev := out
	out = w
	return prev
}

func levelPriority(level string) int {
	switch level {
	case LevelDebug:
		return 0
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

func shouldLog(level string) bool {
	return levelPriority(level) >= levelPriority(GetLevel())
}

// Debug logs the given entry at a debug level
func (e Entry) Debug(msg string) {
	e.write(LevelDebug, msg)
}

// Info logs the given entry at an info level
func (e Entry) Info(msg string) {
	e.write(LevelInfo, msg)
}

// Warn logs the given entry at a warning level
func (e Entry) Warn(msg string) {
	e.write(LevelWarn, msg)
}

// Error logs the given entry at an error level
func (e Entry) Error(msg string) {
	e.write(LevelError, msg)
}

// ErrorWrap logs the given error annotated by the given message
func (e Entry) ErrorWrap(err error, msg string) {
	e.Error(fmt.Sprintf("%s: %v", msg, err))
}

func (e Entry) marshal(level, msg string) ([]byte, error) {
	data := make(Fields, len(e.Fields)+3)
	for k, v := range e.Fields {
		if err, ok := v.(error); ok {
			data[k] = err.Error()
		} else {
			data[k] = v
		}
	}

	data[fieldKeyLevel] = level
	data[fieldKeyMessage] = msg
	data[fieldKeyTimestamp] = e.Timestamp

	return json.Marshal(data)
}

func (e Entry) write(level, msg string) {
	if !shouldLog(level) {
		return
	}

	b, err := e.marshal(level, msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "formatting log entry: %v\n", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if _, err := fmt.Fprintln(out, string(b)); err != nil {
		fmt.Fprintf(os.Stderr, "writing log entry: %v\n", err)
	}
}

// Debug logs a debug message without additional fields
func Debug(msg string) {
	WithFields(Fields{}).Debug(msg)
}

// Info logs an info message without additional fields
func Info(msg string) {
	WithFields(Fields{}).Info(msg)
}

// Warn logs a warning message without additional fields
func Warn(msg string) {
	WithFields(Fields{}).Warn(msg)
}

// Error logs an error message without additional fields
func Error(msg string) {
	WithFields(Fields{}).Error(msg)
}

// ErrorWrap logs the given error annotated by the given message
func ErrorWrap(err error, msg string) {
	WithFields(Fields{}).ErrorWrap(err, msg)
}
