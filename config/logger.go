package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"epubr/misc"
)

type ConsoleLoggerConfig struct {
	Level string `yaml:"level" validate:"required,oneof=none debug normal"`
}

type FileLoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	Console ConsoleLoggerConfig `yaml:"console"`
	File    FileLoggerConfig    `yaml:"file"`
}

func levelEnabler(level string) (zapcore.LevelEnabler, bool) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, true
	case "normal":
		return zapcore.InfoLevel, true
	}
	return nil, false
}

// Prepare returns program logger. Console log always goes to stderr, stdout
// carries book pages and dumps. When report is requested file log is written
// at debug level and becomes part of the report.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	var cores []zapcore.Core

	if lvl, ok := levelEnabler(conf.Console.Level); ok {
		enc := newConsoleEncoder(EnableColorOutput(os.Stderr))
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl))
	}

	file := conf.File
	if rpt != nil {
		file.Level, file.Mode = "debug", "overwrite"
	}

	var redirected string
	if lvl, ok := levelEnabler(file.Level); ok {
		captureCrashes(file, rpt)

		f, err := openLog(file.Destination, file.Mode)
		if err != nil {
			if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err != nil {
				return nil, fmt.Errorf("unable to access file log destination (%s): %w", file.Destination, err)
			}
			redirected = f.Name()
		}
		rpt.Store("logs/"+filepath.Base(f.Name()), f.Name())

		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(f), lvl))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named(misc.GetAppName())
	if len(redirected) > 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log, nil
}

func openLog(name, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(name, flags, 0644)
}

// captureCrashes sends runtime crash output next to file log or, when that is
// not writable, into temporary directory. Failure is ignored.
func captureCrashes(file FileLoggerConfig, rpt *Report) {
	f, err := openLog(filepath.Join(filepath.Dir(file.Destination), misc.GetAppName()+"-panic.log"), file.Mode)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err != nil {
			return
		}
	}
	defer f.Close()

	if err := debug.SetCrashOutput(f, debug.CrashOptions{}); err == nil {
		rpt.Store("logs/panic.log", f.Name())
	}
}

func newConsoleEncoder(color bool) zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}
	return shortErrors{zapcore.NewConsoleEncoder(ec)}
}

// shortErrors prints only error message on console. Error chains with their
// verbose form (multierr lists, fetch causes) end up in file log.
type shortErrors struct {
	zapcore.Encoder
}

func (e shortErrors) Clone() zapcore.Encoder {
	return shortErrors{e.Encoder.Clone()}
}

func (e shortErrors) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	short := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		if err, ok := f.Interface.(error); ok && f.Type == zapcore.ErrorType {
			f.Interface = errors.New(err.Error())
		}
		short[i] = f
	}
	return e.Encoder.EncodeEntry(ent, short)
}
