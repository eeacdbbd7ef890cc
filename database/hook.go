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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

// sqlLogSilenced mutes both hooks process-wide. Migrations switch it on
// while they replay DDL so the log stays readable.
var sqlLogSilenced atomic.Bool

// EnableBunSqlSilent toggles statement logging globally.
func EnableBunSqlSilent(b bool) { sqlLogSilenced.Store(b) }

var (
	queryColors = map[string]*color.Color{
		"SELECT": color.New(color.FgGreen),
		"INSERT": color.New(color.FgBlue),
		"UPDATE": color.New(color.FgYellow),
		"DELETE": color.New(color.FgMagenta),
	}
	fallbackQueryColor = color.New(color.FgRed)

	slowQueryColors = map[string]*color.Color{
		"SELECT": color.New(color.BgGreen, color.FgHiWhite),
		"INSERT": color.New(color.BgBlue, color.FgHiWhite),
		"UPDATE": color.New(color.BgYellow, color.FgHiWhite),
		"DELETE": color.New(color.BgMagenta, color.FgHiWhite),
	}
	fallbackSlowColor = color.New(color.BgRed, color.FgHiWhite)
)

func paintQuery(event *bun.QueryEvent, palette map[string]*color.Color, fallback *color.Color) string {
	if c, ok := palette[event.Operation()]; ok {
		return c.Sprint(event.Query)
	}
	return fallback.Sprint(event.Query)
}

// benignQueryError reports results that are not worth logging as
// failures.
func benignQueryError(err error) bool {
	return err == nil || errors.Is(err, sql.ErrNoRows) || errors.Is(err, sql.ErrTxDone)
}

// QueryHook prints executed statements to a writer with per-operation
// colors. By default only failed statements print; the environment
// variable named by envName overrides the static settings at runtime:
// empty or "0" disables, "2" turns on verbose mode.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

// QueryHookOption configures a QueryHook.
type QueryHookOption func(*QueryHook)

// WithQueryHookVerbose also prints successful statements, not only failed
// ones.
func WithQueryHookVerbose(on bool) QueryHookOption {
	return func(h *QueryHook) { h.verbose = on }
}

// WithQueryHookEnv names the environment variable that overrides the hook
// settings at runtime.
func WithQueryHookEnv(envName string) QueryHookOption {
	return func(h *QueryHook) { h.envName = envName }
}

// WithQueryHookWriter redirects hook output.
func WithQueryHookWriter(w io.Writer) QueryHookOption {
	return func(h *QueryHook) { h.writer = w }
}

// NewQueryHook returns an enabled hook writing to stdout, overridable via
// the SIEVE_SQL_LOG environment variable.
func NewQueryHook(opts ...QueryHookOption) *QueryHook {
	h := &QueryHook{envName: "SIEVE_SQL_LOG", enabled: true, writer: os.Stdout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if sqlLogSilenced.Load() {
		return
	}
	enabled, verbose := h.enabled, h.verbose
	if env, ok := os.LookupEnv(h.envName); ok {
		enabled = env != "" && env != "0"
		verbose = env == "2"
	}
	if !enabled {
		return
	}
	if !verbose && benignQueryError(event.Err) {
		return
	}

	now := time.Now()
	line := fmt.Sprintf("%s %s %17s   %s",
		now.Format("2006-01-02 15:04:05.000"),
		color.CyanString("%8s", "[BUN]"),
		now.Sub(event.StartTime).Round(time.Microsecond),
		paintQuery(event, queryColors, fallbackQueryColor),
	)
	if event.Err != nil {
		line += "\t" + color.New(color.BgRed).Sprintf(" %T: %s ", event.Err, event.Err)
	}
	_, _ = fmt.Fprintln(h.writer, line)
}

// SlowQueryHook prints successful statements that exceed a duration
// threshold. The environment variable named by fromEnv toggles it at
// runtime: "1" enables, anything else disables.
type SlowQueryHook struct {
	fromEnv  string
	enabled  bool
	slowTime time.Duration
	writer   io.Writer
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

// SlowQueryHookOption configures a SlowQueryHook.
type SlowQueryHookOption func(*SlowQueryHook)

// WithSlowQueryHookEnv names the environment variable that toggles the hook
// at runtime.
func WithSlowQueryHookEnv(envName string) SlowQueryHookOption {
	return func(h *SlowQueryHook) { h.fromEnv = envName }
}

// WithSlowQueryHookWriter redirects hook output.
func WithSlowQueryHookWriter(w io.Writer) SlowQueryHookOption {
	return func(h *SlowQueryHook) { h.writer = w }
}

// NewSlowQueryHook returns an enabled hook flagging statements slower than
// slowTime, writing to stdout.
func NewSlowQueryHook(slowTime time.Duration, opts ...SlowQueryHookOption) *SlowQueryHook {
	h := &SlowQueryHook{fromEnv: "SIEVE_SLOW_SQL_LOG", enabled: true, slowTime: slowTime, writer: os.Stdout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if sqlLogSilenced.Load() || event.Err != nil {
		return
	}
	enabled := h.enabled
	if env, ok := os.LookupEnv(h.fromEnv); ok {
		enabled = strings.TrimSpace(env) == "1"
	}
	if !enabled {
		return
	}

	elapsed := time.Since(event.StartTime)
	if elapsed <= h.slowTime {
		return
	}
	_, _ = fmt.Fprintf(h.writer, "%s %s %17s   %s\n",
		time.Now().Format("2006-01-02 15:04:05.000"),
		color.YellowString("%8s", "[SLOW]"),
		elapsed.Round(time.Microsecond),
		paintQuery(event, slowQueryColors, fallbackSlowColor),
	)
}
