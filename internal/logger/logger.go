package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 日志输出配置，零值字段取 defaults
type Options struct {
	Level      string
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var defaults = Options{
	Dir:        "logs",
	Filename:   "storefront.log",
	MaxSizeMB:  100,
	MaxBackups: 7,
	MaxAgeDays: 30,
}

// L 全局结构化日志实例，Init 之前为 nil
var L *zap.Logger

var current atomic.Pointer[zap.Logger]

// Init 初始化全局日志并替换 zap 全局实例
func Init(mode string, options Options) *zap.Logger {
	l := New(mode, options)
	L = l
	current.Store(l)
	zap.ReplaceGlobals(l)
	return l
}

// New 按运行模式创建日志实例
// debug 输出彩色控制台；release/test 输出 JSON 到 stdout 并写入滚动文件
func New(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := resolveLevel(options.Level, debug)
	encCfg := encoderConfig()

	if debug {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return build(zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level))
	}

	enc := zapcore.NewJSONEncoder(encCfg)
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)}
	if writer, err := rollingWriter(options); err != nil {
		fmt.Fprintf(os.Stderr, "log file unavailable, stdout only: %v\n", err)
	} else {
		cores = append(cores, zapcore.NewCore(enc, writer, level))
	}
	return build(zapcore.NewTee(cores...))
}

// Z 返回当前日志实例，未初始化时返回控制台实例
func Z() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	l := build(zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stdout), zap.InfoLevel))
	if current.CompareAndSwap(nil, l) {
		return l
	}
	return current.Load()
}

// S 返回 SugaredLogger
func S() *zap.SugaredLogger { return Z().Sugar() }

// SW 返回附带键值对的 SugaredLogger
func SW(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return S()
	}
	return S().With(kv...)
}

// StdLogger 供 http.Server.ErrorLog 使用
func StdLogger() *log.Logger { return zap.NewStdLog(Z()) }

// Sync 进程退出前刷新缓冲
func Sync() { _ = Z().Sync() }

func Debugw(msg string, kv ...interface{}) { S().Debugw(msg, kv...) }
func Infow(msg string, kv ...interface{})  { S().Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { S().Warnw(msg, kv...) }
func Errorw(msg string, kv ...interface{}) { S().Errorw(msg, kv...) }

func build(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func resolveLevel(raw string, debug bool) zap.AtomicLevel {
	if lvl, err := zapcore.ParseLevel(strings.TrimSpace(raw)); err == nil && strings.TrimSpace(raw) != "" {
		return zap.NewAtomicLevelAt(lvl)
	}
	if debug {
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func rollingWriter(options Options) (zapcore.WriteSyncer, error) {
	path, err := logFilePath(options)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(options.MaxSizeMB, defaults.MaxSizeMB),
		MaxBackups: orDefault(options.MaxBackups, defaults.MaxBackups),
		MaxAge:     orDefault(options.MaxAgeDays, defaults.MaxAgeDays),
		Compress:   options.Compress,
	}), nil
}

// logFilePath 解析日志文件路径，并确认文件可写
func logFilePath(options Options) (string, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir: %w", err)
		}
		dir = filepath.Join(wd, defaults.Dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	name := strings.TrimSpace(options.Filename)
	if name == "" {
		name = defaults.Filename
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}
	return path, f.Close()
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
