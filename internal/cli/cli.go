package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
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

// Options is the parsed command line.
type Options struct {
	TemplatePath string
	DataPath     string
	ConfigPath   string
	OutputDir    string
	Formats      []string
	Suffix       string
	Title        string
	Sheet        string
	Highlight    bool
	NoLayout     bool
	Interactive  bool
	// Stdout prints the document instead of writing files.
	Stdout bool
	// DumpTree prints the merged data tree as JSON and exits.
	DumpTree bool
	// DataTemplate writes an empty dataset for the template and exits.
	DataTemplate string
	LogFormat    string
	LogLevel     string
}

// Parse processes command-line arguments. It returns the Options, a boolean
// indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("docfill", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
docfill - fill document templates from key/value datasets.

Usage:
  docfill [options] [TEMPLATE [DATA]]

Arguments:
  TEMPLATE
    Template file using {{.path}} placeholders.
  DATA
    Dataset file (.csv, .xlsx, .json, .yaml).

Options:
`)
		flagSet.PrintDefaults()
	}

	templateFlag := flagSet.String("template", "", "Path to the template file.")
	tFlag := flagSet.String("t", "", "Path to the template file (shorthand).")
	dataFlag := flagSet.String("data", "", "Path to the dataset file.")
	dFlag := flagSet.String("d", "", "Path to the dataset file (shorthand).")
	configFlag := flagSet.String("config", "", "Path to a YAML or JSON configuration file.")
	outFlag := flagSet.String("out", "", "Output directory. Defaults to the template's directory.")
	formatFlag := flagSet.String("format", "", "Comma separated output formats, e.g. 'html,pdf'.")
	suffixFlag := flagSet.String("suffix", "", "Label inserted before the extension of every output.")
	titleFlag := flagSet.String("title", "", "Document title.")
	sheetFlag := flagSet.String("sheet", "", "Workbook sheet for .xlsx datasets.")
	highlightFlag := flagSet.Bool("highlight", false, "Highlight imported and missing values.")
	noLayoutFlag := flagSet.Bool("no-layout", false, "Write the filled template without the document shell.")
	interactiveFlag := flagSet.Bool("i", false, "Prompt for missing inputs and field values.")
	stdoutFlag := flagSet.Bool("stdout", false, "Print the document instead of writing files.")
	dumpFlag := flagSet.Bool("dump-tree", false, "Print the merged data tree as JSON and exit.")
	dataTemplateFlag := flagSet.String("data-template", "", "Write an empty dataset (.csv or .xlsx) listing the template's fields and exit.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	opts := &Options{
		TemplatePath: firstSet(*templateFlag, *tFlag, flagSet.Arg(0)),
		DataPath:     firstSet(*dataFlag, *dFlag, flagSet.Arg(1)),
		ConfigPath:   strings.TrimSpace(*configFlag),
		OutputDir:    strings.TrimSpace(*outFlag),
		Formats:      splitList(*formatFlag),
		Suffix:       strings.TrimSpace(*suffixFlag),
		Title:        strings.TrimSpace(*titleFlag),
		Sheet:        strings.TrimSpace(*sheetFlag),
		Highlight:    *highlightFlag,
		NoLayout:     *noLayoutFlag,
		Interactive:  *interactiveFlag,
		Stdout:       *stdoutFlag,
		DumpTree:     *dumpFlag,
		DataTemplate: strings.TrimSpace(*dataTemplateFlag),
		LogFormat:    strings.ToLower(*logFormatFlag),
		LogLevel:     strings.ToLower(*logLevelFlag),
	}

	if flagSet.NArg() > 2 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args()[2:], " "))}
	}
	if opts.TemplatePath == "" && !opts.Interactive {
		flagSet.Usage()
		return nil, true, nil
	}
	if opts.LogFormat != "text" && opts.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if opts.Stdout && opts.DumpTree {
		return nil, false, &ExitError{Code: 2, Message: "-stdout and -dump-tree are mutually exclusive"}
	}
	return opts, false, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
