// Command hintcheck checks a YAML value document against a YAML hint
// document and prints either PASS or the located violation.
//
//	hintcheck -hint hint.yaml -value value.yaml
//	hintcheck -hint hint.yaml -value user.yaml -proto user.proto
//
// Exit status: 0 pass, 1 violation, 2 invalid hint/config or internal fault.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/hintcheck/hintcheck/pkg/check"
	"github.com/hintcheck/hintcheck/pkg/hint"
	"github.com/hintcheck/hintcheck/pkg/hinterr"
)

const (
	colorReset = "\x1b[0m"
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
)

type pathList []string

func (p *pathList) String() string { return fmt.Sprint([]string(*p)) }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	hintPath := flag.String("hint", "", "YAML hint document (required)")
	valuePath := flag.String("value", "", "YAML value document (required)")
	configPath := flag.String("config", "", "engine configuration file")
	var protoFiles, importPaths pathList
	flag.Var(&protoFiles, "proto", ".proto file to register (repeatable)")
	flag.Var(&importPaths, "I", "proto import path (repeatable)")
	flag.Parse()

	if *hintPath == "" || *valuePath == "" {
		fmt.Fprintln(os.Stderr, "hintcheck: -hint and -value are required")
		flag.Usage()
		return 2
	}

	cfg := check.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = check.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hintcheck: %v\n", err)
			return 2
		}
	}

	if len(protoFiles) > 0 {
		if len(importPaths) == 0 {
			importPaths = pathList{"."}
		}
		if err := hint.RegisterProtoFiles(importPaths, protoFiles...); err != nil {
			fmt.Fprintf(os.Stderr, "hintcheck: %v\n", err)
			return 2
		}
	}

	hintDoc, err := os.ReadFile(*hintPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hintcheck: %v\n", err)
		return 2
	}
	h, err := hint.FromYAML(hintDoc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hintcheck: %v\n", err)
		return 2
	}

	value, err := loadValue(*valuePath, h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hintcheck: %v\n", err)
		return 2
	}

	engine, err := check.New(check.WithConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "hintcheck: %v\n", err)
		return 2
	}

	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if err := engine.Die(value, h); err != nil {
		if errors.Is(err, hinterr.ErrViolation) {
			printStatus(tty, colorRed, "FAIL")
			fmt.Println(err.Error())
			return 1
		}
		fmt.Fprintf(os.Stderr, "hintcheck: %v\n", err)
		return 2
	}
	printStatus(tty, colorGreen, "PASS")
	return 0
}

// loadValue decodes the value document. When the hint expects a protobuf
// message and the document decodes to a mapping, the mapping is converted
// into a dynamic message through its JSON form, so proto hints are checkable
// from plain YAML input.
func loadValue(path string, h hint.Hint) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decoding value document: %w", err)
	}

	ph, isProto := h.(hint.ProtoHint)
	fields, isMap := value.(map[string]any)
	if !isProto || !isMap {
		return value, nil
	}
	msg, err := hint.NewProtoMessage(ph.Message)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if err := msg.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("value does not decode as %s: %w", ph.Message, err)
	}
	return msg, nil
}

func printStatus(tty bool, color, status string) {
	if tty {
		fmt.Println(color + status + colorReset)
		return
	}
	fmt.Println(status)
}
