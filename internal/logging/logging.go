package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the name of the rotating log file inside the log directory.
const LogFileName = "azdo-flow.log"

// Init initializes the global logger with dual sinks: os.Stderr and a rotating file.
// Every entry carries a run id so concurrent invocations can be told apart in the file.
func Init(verbose bool) string {
	// Init runs before config.Load, so LOGS_FOLDER may only exist in the binary's .env.
	exeDir := ""
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
		_ = godotenv.Load(filepath.Join(exeDir, ".env"))
	}

	logDir := ResolveDir(exeDir)

	fileWriter, ferr := rotatingFile(logDir)
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", ferr)
		os.Exit(1)
	}

	return Setup(verbose, os.Stderr, fileWriter)
}

// ResolveDir picks the log directory: LOGS_FOLDER, else logs under DATA_PATH,
// else logs next to the binary (exeDir) or in the working directory.
func ResolveDir(exeDir string) string {
	if dir := os.Getenv("LOGS_FOLDER"); dir != "" {
		return dir
	}
	base := os.Getenv("DATA_PATH")
	if base == "" {
		base = exeDir
	}
	return filepath.Join(base, "logs")
}

// Setup points the global logger at console and, when non-nil, file.
// It returns the run id attached to every entry.
func Setup(verbose bool, console *os.File, file io.Writer) string {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(console.Fd()) || isatty.IsCygwinTerminal(console.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	writers := []io.Writer{consoleWriter}
	if file != nil {
		writers = append(writers, file)
	}

	runID := uuid.NewString()
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("run", runID).
		Logger()
	return runID
}

func rotatingFile(logDir string) (io.Writer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}

	// MkdirAll succeeds on read-only mounts that already exist.
	testFile := filepath.Join(logDir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return nil, fmt.Errorf("log directory %q is not writable: %w", logDir, err)
	}
	_ = os.Remove(testFile)

	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, LogFileName),
		MaxSize:    16, // megabytes
		MaxBackups: 32,
		MaxAge:     365, // days
		Compress:   true,
	}, nil
}
