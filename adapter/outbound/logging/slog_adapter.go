package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ajkula/GoBatchPrint/config"
	"github.com/ajkula/GoBatchPrint/domain/model"
)

type LogLevel int32

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// represents a single log entry to be processed asynchronously
type LogMessage struct {
	Level LogLevel
	Msg   string
	Args  []any
	Time  time.Time
}

// implements the Logger interface using Go's structured logging (slog)
// with asynchronous processing so print workers never wait on output
type SlogAdapter struct {
	logger    *slog.Logger
	config    *config.Config
	logChan   chan LogMessage
	ctx       context.Context
	cancel    context.CancelFunc
	slogLevel *slog.LevelVar
	level     atomic.Int32
	dropped   atomic.Uint64
	closer    io.Closer
	done      chan struct{}
	shutdown  sync.Once
	cfgMu     sync.Mutex
}

// NewSlogAdapter builds the process logger from the logging section
func NewSlogAdapter(cfg *config.Config) (model.Logger, error) {
	out, closer, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	adapter := newSlogAdapter(cfg, out)
	adapter.closer = closer
	return adapter, nil
}

func newSlogAdapter(cfg *config.Config, out io.Writer) *SlogAdapter {
	ctx, cancel := context.WithCancel(context.Background())

	// Create a LevelVar for dynamic level changes
	levelVar := &slog.LevelVar{}
	levelVar.Set(parseSlogLevel(initialLevel(cfg)))

	handlerOpts := &slog.HandlerOptions{
		Level: levelVar,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Logging.Format, "text") {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	size := cfg.Logging.ChannelSize
	if size < 1 {
		size = 1
	}

	adapter := &SlogAdapter{
		logger:    slog.New(handler),
		config:    cfg,
		logChan:   make(chan LogMessage, size),
		ctx:       ctx,
		cancel:    cancel,
		slogLevel: levelVar,
		done:      make(chan struct{}),
	}
	adapter.level.Store(int32(parseLevel(initialLevel(cfg))))

	go adapter.processLogs()

	return adapter
}

// general.logLevel wins; logging.level is the fallback
func initialLevel(cfg *config.Config) string {
	if cfg.General.LogLevel != "" {
		return cfg.General.LogLevel
	}
	return cfg.Logging.Level
}

func openOutput(cfg *config.Config) (io.Writer, io.Closer, error) {
	switch strings.ToLower(cfg.Logging.Output) {
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		if cfg.Logging.FilePath == "" {
			return nil, nil, fmt.Errorf("log output is file but no file path specified")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.FilePath), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Logging.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, f, nil
	default:
		return os.Stdout, nil, nil
	}
}

// updates both config and slog level dynamically
func (s *SlogAdapter) UpdateLevel(logLvl string) {
	normalizedLevel := strings.ToLower(logLvl)
	level, ok := levelNames[normalizedLevel]
	if !ok {
		s.Warn("Ignoring unknown log level", "level", logLvl)
		return
	}

	s.cfgMu.Lock()
	s.config.General.LogLevel = normalizedLevel
	s.config.Logging.Level = strings.ToUpper(normalizedLevel)
	s.cfgMu.Unlock()

	s.level.Store(int32(level))
	s.slogLevel.Set(parseSlogLevel(normalizedLevel))

	s.Info("Logger level updated dynamically", "new_level", normalizedLevel)
}

// handles messages asynchronously
func (s *SlogAdapter) processLogs() {
	defer close(s.done)

	for {
		select {
		case msg := <-s.logChan:
			s.writeLog(msg)
		case <-s.ctx.Done():
			for {
				select {
				case msg := <-s.logChan:
					s.writeLog(msg)
				default:
					return
				}
			}
		}
	}
}

var levelNames = map[string]LogLevel{
	"error": LevelError,
	"warn":  LevelWarn,
	"info":  LevelInfo,
	"debug": LevelDebug,
}

// unknown levels fall back to error
func parseLevel(level string) LogLevel {
	if l, ok := levelNames[strings.ToLower(level)]; ok {
		return l
	}
	return LevelError
}

// converts string level to slog.Level
func parseSlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// performs the logging operation
func (s *SlogAdapter) writeLog(msg LogMessage) {
	ctx := context.Background()
	switch msg.Level {
	case LevelError:
		s.logger.Log(ctx, slog.LevelError, msg.Msg, msg.Args...)
	case LevelWarn:
		s.logger.Log(ctx, slog.LevelWarn, msg.Msg, msg.Args...)
	case LevelInfo:
		s.logger.Log(ctx, slog.LevelInfo, msg.Msg, msg.Args...)
	case LevelDebug:
		s.logger.Log(ctx, slog.LevelDebug, msg.Msg, msg.Args...)
	}
}

func (s *SlogAdapter) sendLog(level LogLevel, msg string, args ...any) {
	if s.ctx.Err() != nil {
		return
	}
	select {
	case s.logChan <- LogMessage{
		Level: level,
		Msg:   msg,
		Args:  args,
		Time:  time.Now(),
	}:
	default:
		s.dropped.Add(1)
	}
}

func (s *SlogAdapter) shouldLog(level LogLevel) bool {
	return level <= LogLevel(s.level.Load())
}

// Dropped returns how many messages were discarded on a full channel
func (s *SlogAdapter) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *SlogAdapter) Error(msg string, args ...any) {
	if !s.shouldLog(LevelError) {
		return
	}
	s.sendLog(LevelError, msg, args...)
}

func (s *SlogAdapter) Warn(msg string, args ...any) {
	if !s.shouldLog(LevelWarn) {
		return
	}
	s.sendLog(LevelWarn, msg, args...)
}

func (s *SlogAdapter) Info(msg string, args ...any) {
	if !s.shouldLog(LevelInfo) {
		return
	}
	s.sendLog(LevelInfo, msg, args...)
}

func (s *SlogAdapter) Debug(msg string, args ...any) {
	if !s.shouldLog(LevelDebug) {
		return
	}
	s.sendLog(LevelDebug, msg, args...)
}

// Shutdown flushes queued messages and closes a log file output
func (s *SlogAdapter) Shutdown() {
	s.shutdown.Do(func() {
		if n := s.dropped.Load(); n > 0 {
			s.logger.Warn("Log messages dropped on full channel", "count", n)
		}
		s.cancel()
		<-s.done
		if s.closer != nil {
			_ = s.closer.Close()
		}
	})
}

var _ model.Logger = (*SlogAdapter)(nil)
