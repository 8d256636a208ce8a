package diag

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 级别定义
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger 为结构化日志器：单行 JSON 事件，由 zap 编码、写入一个按大小轮转的
// sink。Start/Error/Timer 这套按阶段计时的门面是本仓库自己的约定；底层编码
// 与输出交给 zap 处理。
type Logger struct {
	corrID string
	level  Level
	z      *zap.Logger
	sink   *RotatingFile
}

// NewLogger 通过配置的 level 初始化，并将日志写入默认路径 logs/，10MiB 轮转。
func NewLogger(corrID, level string) *Logger {
	lvl := parseLevel(strings.TrimSpace(level))
	sink := NewRotatingFile("logs", 10*1024*1024)
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:    "ts",
		LevelKey:   "level",
		MessageKey: "msg",
		EncodeTime: zapcore.ISO8601TimeEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(sink), lvl.zapLevel())
	z := zap.New(core).With(zap.String("corr_id", corrID))
	return &Logger{corrID: corrID, level: lvl, z: z, sink: sink}
}

func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// Close flushes the underlying zap core and closes the rotating sink.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.z.Sync()
	if l.sink != nil {
		return l.sink.Close()
	}
	return nil
}

func fields(comp, stage, code, fileID, batch string, count int64, dur time.Duration, kv map[string]string) []zap.Field {
	fs := make([]zap.Field, 0, 8+len(kv))
	fs = append(fs, zap.String("comp", comp), zap.String("stage", stage))
	if code != "" {
		fs = append(fs, zap.String("code", code))
	}
	if fileID != "" {
		fs = append(fs, zap.String("file_id", fileID))
	}
	if batch != "" {
		fs = append(fs, zap.String("batch_id", batch))
	}
	if count != 0 {
		fs = append(fs, zap.Int64("count", count))
	}
	if dur > 0 {
		fs = append(fs, zap.Int64("dur_ms", dur.Milliseconds()))
	}
	for k, v := range kv {
		fs = append(fs, zap.String(k, v))
	}
	return fs
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	l.z.Info(msg, fields(comp, "start", "", "", "", 0, 0, nil)...)
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartWith 记录带 file_id/batch_id 的 start。
func (l *Logger) StartWith(comp, msg, fileID, batch string) *Timer {
	l.z.Info(msg, fields(comp, "start", "", fileID, batch, 0, 0, nil)...)
	return &Timer{l: l, comp: comp, fileID: fileID, batch: batch, t0: time.Now()}
}

// StartWithKV 记录带 file_id/batch_id 与键值的 start。
func (l *Logger) StartWithKV(comp, msg, fileID, batch string, kv map[string]string) *Timer {
	l.z.Info(msg, fields(comp, "start", "", fileID, batch, 0, 0, kv)...)
	return &Timer{l: l, comp: comp, fileID: fileID, batch: batch, t0: time.Now()}
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	var dur time.Duration
	if durSince != nil {
		dur = time.Since(*durSince)
	}
	l.z.Error(msg, fields(comp, "error", code, "", "", 0, dur, nil)...)
}

// ErrorWith 支持 file_id/batch_id。
func (l *Logger) ErrorWith(comp, code, msg string, durSince *time.Time, fileID, batch string) {
	var dur time.Duration
	if durSince != nil {
		dur = time.Since(*durSince)
	}
	l.z.Error(msg, fields(comp, "error", code, fileID, batch, 0, dur, nil)...)
}

// ErrorWithKV 支持附带键值对。
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, fileID, batch string, kv map[string]string) {
	var dur time.Duration
	if durSince != nil {
		dur = time.Since(*durSince)
	}
	l.z.Error(msg, fields(comp, "error", code, fileID, batch, 0, dur, kv)...)
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	l.z.Info(msg, fields(comp, "finish", "", "", "", count, time.Since(start), nil)...)
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l      *Logger
	comp   string
	fileID string
	batch  string
	t0     time.Time
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	t.l.z.Info(msg, fields(t.comp, "finish", "", t.fileID, t.batch, count, time.Since(t.t0), nil)...)
}

// DebugStart 输出调试级别的“start”类事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg, fileID, batch string, kv map[string]string) {
	l.z.Debug(msg, fields(comp, "start", "", fileID, batch, 0, 0, kv)...)
}
