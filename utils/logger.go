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

package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger is the logger type handed out by NewLogger.
type Logger = logrus.Logger

// PathFormat selects how a log entry's caller path is rendered.
type PathFormat int

const (
	PathFormatTruncatedRelative PathFormat = iota
	PathFormatFilenameOnly
	PathFormatShortRelative
	PathFormatFullRelative
)

const (
	timeLayout = "2006-01-02 15:04:05.000"
	dateLayout = "2006-01-02"
)

var (
	defaultConsoleLevel = logrus.DebugLevel
	defaultFileLevel    = logrus.TraceLevel

	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}

	fileLogEnabled    = EnvDefaultBool("SIEVE_FILE_LOG", false)
	fileLogDir        = "logs"
	fileLogMaxAgeDays = 0
	fileLogFormat     = EnvDefaultString("SIEVE_FILE_LOG_FORMAT", "text")
	consoleLogFormat  = EnvDefaultString("SIEVE_CONSOLE_LOG_FORMAT", "text")
)

// NewLogger builds a named logger that prints to stdout, optionally
// mirrors into daily files, and registers itself for level control.
func NewLogger(name string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(maxLevel(defaultConsoleLevel, defaultFileLevel))
	l.SetReportCaller(true)
	fmtr := consoleFormatter(name)
	l.SetFormatter(fmtr)
	l.AddHook(&consoleHook{formatter: fmtr})
	if fileLogEnabled {
		_ = AddDailyRollingFileHook(l, name, fileLogDir, fileLogMaxAgeDays)
	}
	RegisterLogger(name, l)
	return l
}

func consoleFormatter(name string) logrus.Formatter {
	if consoleLogFormat == "json" {
		return jsonFormatter(name)
	}
	return &Log4jColorFormatter{
		LoggerName:      name,
		TimestampFormat: timeLayout,
		PathFmt:         PathFormatTruncatedRelative,
		ColorCaller:     true,
		NameWidth:       10,
		CallerWidth:     25,
	}
}

func fileFormatter(name string) logrus.Formatter {
	if fileLogFormat == "json" {
		return jsonFormatter(name)
	}
	return &Log4jColorFormatter{
		LoggerName:      name,
		TimestampFormat: timeLayout,
		PathFmt:         PathFormatFullRelative,
		NameWidth:       10,
	}
}

func jsonFormatter(name string) logrus.Formatter {
	return &JSONLogFormatter{
		LoggerName:      name,
		TimestampFormat: timeLayout,
		PathFmt:         PathFormatFullRelative,
	}
}

// consoleHook writes formatted entries to stdout. The logger's own
// output stays discarded so console and file levels gate independently.
type consoleHook struct {
	formatter logrus.Formatter
}

func (h *consoleHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *consoleHook) Fire(e *logrus.Entry) error {
	if e.Level > defaultConsoleLevel {
		return nil
	}
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(b)
	return err
}

var logLevelNames = map[string]logrus.Level{
	"trace":   logrus.TraceLevel,
	"debug":   logrus.DebugLevel,
	"info":    logrus.InfoLevel,
	"":        logrus.InfoLevel,
	"warn":    logrus.WarnLevel,
	"warning": logrus.WarnLevel,
	"error":   logrus.ErrorLevel,
	"fatal":   logrus.FatalLevel,
	"panic":   logrus.PanicLevel,
}

// ParseLogLevel maps a level name to a logrus level. Unknown names fall
// back to info.
func ParseLogLevel(s string) logrus.Level {
	if lvl, ok := logLevelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return logrus.InfoLevel
}

// RegisterLogger records l under name for later level adjustment.
func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	loggerRegistry[name] = l
	loggerRegistryMu.Unlock()
}

func eachRegistered(fn func(*logrus.Logger)) {
	loggerRegistryMu.RLock()
	defer loggerRegistryMu.RUnlock()
	for _, lg := range loggerRegistry {
		fn(lg)
	}
}

// SetLoggerLevel adjusts one registered logger and reports whether the
// name was known.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

func SetAllLoggersLevel(lvl logrus.Level) {
	eachRegistered(func(lg *logrus.Logger) { lg.SetLevel(lvl) })
	logrus.SetLevel(lvl)
	defaultConsoleLevel = lvl
	defaultFileLevel = lvl
}

// Registered loggers run at the looser of the console and file levels;
// the hooks narrow each sink back down on their own.
func refreshRegisteredLevels() {
	base := maxLevel(defaultConsoleLevel, defaultFileLevel)
	eachRegistered(func(lg *logrus.Logger) { lg.SetLevel(base) })
	logrus.SetLevel(base)
}

func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	defaultConsoleLevel = lvl
	defaultFileLevel = lvl
	refreshRegisteredLevels()
}

func ConfigureConsoleLogLevel(levelStr string) {
	defaultConsoleLevel = ParseLogLevel(levelStr)
	refreshRegisteredLevels()
}

func ConfigureFileLogLevel(levelStr string) {
	defaultFileLevel = ParseLogLevel(levelStr)
	refreshRegisteredLevels()
}

func maxLevel(a, b logrus.Level) logrus.Level {
	if a > b {
		return a
	}
	return b
}

// ConfigureFileLog sets the directory and retention for file output.
// maxAgeDays of zero keeps only the current day.
func ConfigureFileLog(dir string, maxAgeDays int) {
	if dir != "" {
		fileLogDir = dir
	}
	if maxAgeDays >= 0 {
		fileLogMaxAgeDays = maxAgeDays
	}
}

func ConfigureFileLogFormat(format string) {
	fileLogFormat = normalizeLogFormat(format)
}

func ConfigureConsoleLogFormat(format string) {
	consoleLogFormat = normalizeLogFormat(format)
}

func normalizeLogFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return "json"
	}
	return "text"
}

// AddDailyRollingFileHook attaches per-level file writers to l, writing
// under dir/<date>/<level>.log and rolling over at midnight. Fatal and
// panic entries land in error.log.
func AddDailyRollingFileHook(l *logrus.Logger, name, dir string, maxAgeDays int) error {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	routes := []struct {
		level logrus.Level
		file  string
	}{
		{logrus.TraceLevel, "trace"},
		{logrus.DebugLevel, "debug"},
		{logrus.InfoLevel, "info"},
		{logrus.WarnLevel, "warn"},
		{logrus.ErrorLevel, "error"},
		{logrus.FatalLevel, "error"},
		{logrus.PanicLevel, "error"},
	}
	writers := make(map[logrus.Level]io.Writer, len(routes))
	byFile := make(map[string]io.Writer)
	for _, r := range routes {
		w, ok := byFile[r.file]
		if !ok {
			w = &rollingWriter{dir: dir, name: r.file, keepDays: maxAgeDays}
			byFile[r.file] = w
		}
		writers[r.level] = w
	}
	l.AddHook(&fileHook{formatter: fileFormatter(name), writers: writers})
	return nil
}

type fileHook struct {
	formatter logrus.Formatter
	writers   map[logrus.Level]io.Writer
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	if e.Level > defaultFileLevel {
		return nil
	}
	w := h.writers[e.Level]
	if w == nil {
		return nil
	}
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// rollingWriter appends to dir/<date>/<name>.log, reopening the file
// when the date changes and pruning date directories past keepDays.
type rollingWriter struct {
	dir      string
	name     string
	keepDays int

	mu       sync.Mutex
	openDate string
	f        *os.File
}

func (w *rollingWriter) Write(p []byte) (int, error) {
	today := time.Now().Format(dateLayout)
	w.mu.Lock()
	if w.f == nil || w.openDate != today {
		if err := w.rotate(today); err != nil {
			w.mu.Unlock()
			return 0, err
		}
	}
	f := w.f
	w.mu.Unlock()
	return f.Write(p)
}

func (w *rollingWriter) rotate(today string) error {
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	dir := filepath.Join(w.dir, today)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, w.name+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.f = f
	w.openDate = today
	w.prune()
	return nil
}

// prune removes date directories older than keepDays. Directory names
// in dateLayout order chronologically, so a string compare suffices.
func (w *rollingWriter) prune() {
	if w.keepDays < 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -w.keepDays).Format(dateLayout)
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(dateLayout, e.Name()); err != nil {
			continue
		}
		if e.Name() < cutoff {
			_ = os.RemoveAll(filepath.Join(w.dir, e.Name()))
		}
	}
}

// Log4jColorFormatter renders entries as a single log4j-like line with
// ANSI colors for terminal output.
type Log4jColorFormatter struct {
	LoggerName      string
	TimestampFormat string
	PathFmt         PathFormat
	ColorCaller     bool
	NameWidth       int
	CallerWidth     int
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(entryTime(entry).Format(timestampLayout(f.TimestampFormat)))
	b.WriteByte(' ')
	level := padLeft(strings.ToUpper(entry.Level.String()), 7)
	b.WriteString(paintLevel(level, entry.Level))
	b.WriteByte(' ')
	b.WriteString(magentaColor.Sprintf("%-6d", os.Getpid()))
	b.WriteString(" - ")
	b.WriteString(magentaColor.Sprint("[main]"))
	b.WriteByte(' ')
	b.WriteString(cyanColor.Sprint(padLeft(limitRunes(f.LoggerName, f.NameWidth), f.NameWidth)))
	if entry.Caller != nil {
		loc := f.callerTag(entry.Caller)
		if f.ColorCaller {
			loc = faintColor.Sprint(loc)
		}
		b.WriteByte(' ')
		b.WriteString(loc)
	}
	b.WriteByte(' ')
	b.WriteString(faintColor.Sprint(":"))
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *Log4jColorFormatter) callerTag(c *runtime.Frame) string {
	var loc string
	switch f.PathFmt {
	case PathFormatFilenameOnly, PathFormatShortRelative, PathFormatFullRelative:
		loc = callerLocation(c.File, c.Line, f.PathFmt)
	default:
		rel := moduleRelative(filepath.ToSlash(c.File))
		line := strconv.Itoa(c.Line)
		if f.CallerWidth > 0 {
			if budget := f.CallerWidth - len(line) - 1; budget > 0 {
				rel = dotPathCompact(rel, budget)
			} else {
				rel = ""
			}
		}
		loc = rel + ":" + line
	}
	if f.CallerWidth > 0 {
		loc = padLeftRunes(loc, f.CallerWidth)
	}
	return loc
}

// JSONLogFormatter renders entries as one JSON object per line. Entry
// fields land under "fields" untouched.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
	PathFmt         PathFormat
}

type jsonRecord struct {
	Time    string                 `json:"time"`
	Level   string                 `json:"level"`
	Logger  string                 `json:"logger"`
	Caller  string                 `json:"caller"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	rec := jsonRecord{
		Time:    entryTime(entry).Format(timestampLayout(f.TimestampFormat)),
		Level:   entry.Level.String(),
		Logger:  f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = callerLocation(entry.Caller.File, entry.Caller.Line, f.PathFmt)
	}
	if len(entry.Data) > 0 {
		rec.Fields = maps.Clone(entry.Data)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func entryTime(e *logrus.Entry) time.Time {
	if e.Time.IsZero() {
		return time.Now()
	}
	return e.Time
}

func timestampLayout(s string) string {
	if s == "" {
		return timeLayout
	}
	return s
}

// callerLocation renders file:line for the fixed path formats. The
// truncated format carries a width budget and stays with the caller.
func callerLocation(file string, line int, pf PathFormat) string {
	switch pf {
	case PathFormatFilenameOnly:
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	case PathFormatShortRelative:
		return fmt.Sprintf("%s:%d", shortRelative(file), line)
	case PathFormatFullRelative:
		rel := moduleRelative(filepath.ToSlash(file))
		return fmt.Sprintf("%s:%d", filepath.FromSlash(rel), line)
	default:
		rel := moduleRelative(filepath.ToSlash(file))
		return fmt.Sprintf("%s:%d", filepath.Base(rel), line)
	}
}

var (
	faintColor   = color.New(color.Faint)
	cyanColor    = color.New(color.FgCyan)
	magentaColor = color.New(color.FgMagenta)

	levelColors = map[logrus.Level]*color.Color{
		logrus.PanicLevel: color.New(color.FgRed),
		logrus.FatalLevel: color.New(color.FgRed),
		logrus.ErrorLevel: color.New(color.FgRed),
		logrus.WarnLevel:  color.New(color.FgYellow),
		logrus.InfoLevel:  color.New(color.FgGreen),
		logrus.DebugLevel: color.New(color.FgBlue),
		logrus.TraceLevel: magentaColor,
	}
)

func paintLevel(s string, lvl logrus.Level) string {
	if c, ok := levelColors[lvl]; ok {
		return c.Sprint(s)
	}
	return magentaColor.Sprint(s)
}

var (
	repoRootOnce sync.Once
	repoRoot     string
)

// moduleRelative strips the repository root from an absolute caller
// path. The root is located once by walking up from the first caller
// toward a directory holding go.mod; binaries built away from their
// source fall back to matching the module's base name inside the path.
func moduleRelative(p string) string {
	repoRootOnce.Do(func() { repoRoot = lookupRepoRoot(p) })
	if repoRoot != "" {
		if rel, ok := strings.CutPrefix(p, repoRoot); ok {
			return strings.TrimPrefix(rel, "/")
		}
	}
	if base := binaryModuleBase(); base != "" {
		if i := strings.Index(p, base); i >= 0 {
			return p[i:]
		}
	}
	return p
}

func lookupRepoRoot(p string) string {
	for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.ToSlash(dir)
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

var (
	moduleBaseOnce sync.Once
	moduleBase     string
)

func binaryModuleBase() string {
	moduleBaseOnce.Do(func() {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
			moduleBase = path.Base(info.Main.Path)
		}
	})
	return moduleBase
}

func shortRelative(p string) string {
	parts := strings.Split(moduleRelative(filepath.ToSlash(p)), "/")
	if n := len(parts); n >= 2 {
		return parts[n-2] + "/" + parts[n-1]
	}
	return parts[0]
}

// dotPathCompact rewrites "query/builder.go" as "query.builder.go" and
// shrinks it to at most max characters, first reducing directories to
// single letters and then squeezing the file stem.
func dotPathCompact(p string, max int) string {
	if max <= 0 {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(p), "/")
	out := strings.Join(parts, ".")
	if len(out) <= max {
		return out
	}
	last := len(parts) - 1
	for i := 0; i < last; i++ {
		if r := []rune(parts[i]); len(r) > 1 {
			parts[i] = string(r[:1])
		}
		if out = strings.Join(parts, "."); len(out) <= max {
			return out
		}
	}
	prefix := ""
	if last > 0 {
		prefix = strings.Join(parts[:last], ".") + "."
	}
	out = prefix + squeezeName(parts[last], max-len(prefix))
	if len(out) > max {
		r := []rune(out)
		return string(r[len(r)-max:])
	}
	return out
}

// squeezeName keeps the first stem rune, a ".." marker, as much of the
// stem tail as fits in budget, and the extension. The result may still
// run over a very small budget; callers truncate.
func squeezeName(name string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if len(name) <= budget {
		return name
	}
	stem, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		stem, ext = name[:i], name[i:]
	}
	sr := []rune(stem)
	keep := budget - len(ext) - 3
	if keep < 0 {
		keep = 0
	}
	if keep > len(sr)-1 {
		keep = len(sr) - 1
	}
	return string(sr[0]) + ".." + string(sr[len(sr)-keep:]) + ext
}

func padLeft(s string, width int) string {
	return fmt.Sprintf("%*s", width, s)
}

func padLeftRunes(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(r)) + s
}

func limitRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, _ := strconv.ParseBool(v)
	return b
}
