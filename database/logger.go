/*
 * Copyright 2025 tomoncle.
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

package database

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tomoncle/sieve/utils"
)

// Logger is the logging facade used by the connection manager and the
// migration runner. Fields are alternating key/value pairs rendered
// after the message.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

var (
	activeLogger   Logger
	activeLoggerMu sync.RWMutex
)

// InitLogger installs a custom logger. The first installed logger wins,
// so call it before any database initialization.
func InitLogger(log Logger) {
	if log == nil {
		return
	}
	activeLoggerMu.Lock()
	defer activeLoggerMu.Unlock()
	if activeLogger == nil {
		activeLogger = log
	}
}

// GetLogger returns the installed logger, creating the logrus-backed
// default on first use.
func GetLogger() Logger {
	activeLoggerMu.RLock()
	l := activeLogger
	activeLoggerMu.RUnlock()
	if l != nil {
		return l
	}

	activeLoggerMu.Lock()
	defer activeLoggerMu.Unlock()
	if activeLogger == nil {
		activeLogger = &logrusLogger{log: utils.NewLogger("DATABASE")}
	}
	return activeLogger
}

type logrusLogger struct {
	log *utils.Logger
}

func (l *logrusLogger) Debug(msg string, fields ...interface{}) {
	l.log.Debug(joinKV(msg, fields))
}

func (l *logrusLogger) Info(msg string, fields ...interface{}) {
	l.log.Info(joinKV(msg, fields))
}

func (l *logrusLogger) Warn(msg string, fields ...interface{}) {
	l.log.Warn(joinKV(msg, fields))
}

func (l *logrusLogger) Error(msg string, fields ...interface{}) {
	l.log.Error(joinKV(msg, fields))
}

// joinKV appends " k=v" pairs to the message. A trailing unpaired
// field is rendered bare.
func joinKV(msg string, fields []interface{}) string {
	if len(fields) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 == 1 {
		fmt.Fprintf(&b, " %v", fields[len(fields)-1])
	}
	return b.String()
}
