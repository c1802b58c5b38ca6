package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/circles/internal/app"
)

// EnvPrefix prefixes the environment variables that supply flag defaults.
const EnvPrefix = "CIRCLES_"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env file.")
	}

	flagSet := flag.NewFlagSet("circles", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Circles - a dataflow graph and ordering engine for audio patches.

Usage:
  circles [options] PATCH_PATH

Arguments:
  PATCH_PATH
    Path to a single .hcl patch file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
		fmt.Fprintf(output, "\nEvery option can also be set as %sNAME, e.g. %sLOG_LEVEL=debug.\n", EnvPrefix, EnvPrefix)
	}

	logFormatFlag := flagSet.String("log-format", envString("log-format", "text"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envString("log-level", "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	portFlag := flagSet.Int("port", envInt("port", 0), "Port for the HTTP server (health, metrics, socket.io). 0 runs the patch once and exits.")
	watchFlag := flagSet.Bool("watch", envBool("watch", false), "Reload the patch when its files change. Needs -port.")
	repairFlag := flagSet.Bool("repair", envBool("repair", false), "Run one rank repair pass after loading the patch.")
	dumpFlag := flagSet.String("dump", envString("dump", app.DumpYAML), "One-shot report format. Options: 'yaml', 'json', 'none'.")
	monitorFlag := flagSet.String("monitor", envString("monitor", ""), "URL of a bridge server to observe, e.g. http://localhost:8080.")
	sampleRateFlag := flagSet.Float64("sample-rate", envFloat("sample-rate", app.DefaultSampleRate), "Sample rate handed to fragments.")
	cacheFlag := flagSet.Int("cache-size", envInt("cache-size", 0), "Composed graph revisions kept for graph:get. 0 uses the default.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := flagSet.Arg(0)
	if path == "" {
		path = os.Getenv(EnvPrefix + "PATCH")
	}
	slog.Debug("Patch path determined.", "path", path)

	if path == "" {
		slog.Debug("No patch path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		PatchPath:  path,
		LogFormat:  strings.ToLower(*logFormatFlag),
		LogLevel:   strings.ToLower(*logLevelFlag),
		Port:       *portFlag,
		Watch:      *watchFlag,
		Repair:     *repairFlag,
		Dump:       strings.ToLower(*dumpFlag),
		Monitor:    *monitorFlag,
		SampleRate: float32(*sampleRateFlag),
		CacheSize:  *cacheFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// envKey turns a flag name into its environment variable.
func envKey(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func envString(name, def string) string {
	if v, ok := os.LookupEnv(envKey(name)); ok {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(envKey(name))); err == nil {
		return v
	}
	return def
}

func envBool(name string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(envKey(name))); err == nil {
		return v
	}
	return def
}

func envFloat(name string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(envKey(name)), 64); err == nil {
		return v
	}
	return def
}
