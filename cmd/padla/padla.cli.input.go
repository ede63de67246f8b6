package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, FilePermissions)
}

// formatFlag registers --format/-F on fs.
func formatFlag(fs *flag.FlagSet, dst *string) {
	fs.StringVar(dst, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(dst, FlagFormatShort, FlagDefaultFormat, "")
}

func checkFormat(format string) error {
	if format != OutputFormatText && format != OutputFormatJSON {
		return errors.New(ErrMsgInvalidFormat)
	}
	return nil
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", FmtJSONIndent)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
