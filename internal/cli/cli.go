package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rolfedh/adtgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("adt-sequencer", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
adt-sequencer - Runs AsciiDoc DITA-preparation modules in dependency order.

Usage:
  adt-sequencer [options] [DOCS_PATH]

Arguments:
  DOCS_PATH
    Root of the AsciiDoc documentation tree to process.

Options:
`)
		flagSet.PrintDefaults()
	}

	docsFlag := flagSet.String("docs", "", "Root of the documentation tree to process.")
	manifestsFlag := flagSet.String("modules-path", "modules", "Path to the directory containing module manifests.")
	devConfigFlag := flagSet.String("dev-config", ".adt-modules.json", "Path to the developer module configuration document.")
	userConfigFlag := flagSet.String("user-config", "adt-user-config.json", "Path to the optional user override document.")
	statusFlag := flagSet.Bool("status", false, "Report module resolution without executing anything.")
	excludeLegacyFlag := flagSet.Bool("exclude-legacy", false, "Disable legacy-generation modules for this run.")
	deadlineFlag := flagSet.Duration("deadline", 0, "Optional deadline for the whole run. 0 disables it.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	var enable, disable stringList
	flagSet.Var(&enable, "enable", "Enable a module for this invocation (repeatable).")
	flagSet.Var(&disable, "disable", "Disable a module for this invocation (repeatable).")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	docsPath := *docsFlag
	if docsPath == "" && flagSet.NArg() > 0 {
		docsPath = flagSet.Arg(0)
	}
	if docsPath == "" && !*statusFlag {
		slog.Debug("No docs path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *deadlineFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid deadline: must not be negative"}
	}

	for _, name := range enable {
		for _, other := range disable {
			if name == other {
				return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("module %q is both enabled and disabled on the command line", name)}
			}
		}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ManifestsPath:  *manifestsFlag,
		DevConfigPath:  *devConfigFlag,
		UserConfigPath: *userConfigFlag,
		DocsRoot:       docsPath,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
		Enable:         enable,
		Disable:        disable,
		ExcludeLegacy:  *excludeLegacyFlag,
		StatusOnly:     *statusFlag,
		Deadline:       *deadlineFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
