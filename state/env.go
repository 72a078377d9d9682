// Package state keeps program wide environment. It travels in context from
// command line hooks to commands.
package state

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"epubr/config"
)

type envKey struct{}

// LocalEnv is configuration, debug report, logger and storage location shared
// by every command.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// resolved location of persistent storage (saved settings, cached books)
	StorageDir string

	started    time.Time
	releaseLog func()
}

// ContextWithEnv returns context carrying fresh environment.
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{started: time.Now()})
}

// EnvFromContext returns environment installed by ContextWithEnv. Commands
// never run without one.
func EnvFromContext(ctx context.Context) *LocalEnv {
	env, ok := ctx.Value(envKey{}).(*LocalEnv)
	if !ok {
		panic("program environment is missing from context")
	}
	return env
}

// Uptime is time since environment was created.
func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.started)
}

// CaptureStdLog sends output of standard library logger (net/http client
// among others) to program log until ReleaseStdLog.
func (e *LocalEnv) CaptureStdLog() {
	if e.Log == nil {
		return
	}
	e.releaseLog = sync.OnceFunc(zap.RedirectStdLog(e.Log))
}

// ReleaseStdLog flushes program log and gives standard logger its output
// back. It is safe to call more than once.
func (e *LocalEnv) ReleaseStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.releaseLog != nil {
		e.releaseLog()
	}
}
