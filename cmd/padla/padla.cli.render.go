package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	engineConfig
	templatePath string
	dataJSON     string
	dataFilePath string
	outputPath   string
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMissingTemplate, err)
		return ExitCodeUsageError
	}

	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	target, err := loadData(cfg.dataJSON, cfg.dataFilePath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidJSON, err)
		return ExitCodeInputError
	}

	engine, err := newEngine(context.Background(), cfg.engineConfig, stderr)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgEngineFailed, err)
		return ExitCodeInputError
	}

	model, err := engine.Parse(string(templateSource))
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgParseTemplateFailed, err)
		return ExitCodeError
	}

	result, err := model.Text(target)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgExecuteFailed, err)
		return ExitCodeError
	}

	if err := writeOutput(cfg.outputPath, []byte(result), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	fs := flag.NewFlagSet(CmdNameRender, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &renderConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.dataJSON, FlagData, "", "")
	fs.StringVar(&cfg.dataJSON, FlagDataShort, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFile, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFileShort, "", "")
	fs.StringVar(&cfg.syntaxPath, FlagSyntax, "", "")
	fs.StringVar(&cfg.syntaxPath, FlagSyntaxShort, "", "")
	fs.StringVar(&cfg.backend, FlagBackend, "", "")
	fs.StringVar(&cfg.backend, FlagBackendShort, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.BoolVar(&cfg.verbose, FlagVerbose, false, "")
	fs.BoolVar(&cfg.verbose, FlagVerboseShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}

	return cfg, nil
}

func loadData(jsonStr, filePath string) (data, error) {
	var jsonData []byte

	if filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		jsonData = content
	} else if jsonStr != "" {
		jsonData = []byte(jsonStr)
	} else {
		return make(data), nil
	}

	var result data
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(data)
	}

	return result, nil
}
