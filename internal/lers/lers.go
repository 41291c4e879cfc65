// Package lers reads decision tables in LERS format:
//
//	< a a a d >
//	[ temperature headache nausea flu ]
//	high yes no yes   ! comments run to end of line
//	...
//
// The descriptor line is optional. Names are listed between square brackets
// with the decision last; the remaining tokens are the cases, row-major.
package lers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mlem2/internal/logging"
	"mlem2/internal/table"
)

var (
	ErrNoAttributes       = errors.New("no attribute names found")
	ErrIncompleteCase     = errors.New("trailing case is incomplete")
	ErrDescriptorMismatch = errors.New("descriptor length does not match attribute names")
)

type state int

const (
	stateStart state = iota
	stateDescriptor
	stateNames
	stateValues
)

// ParseFile opens path and parses it.
func ParseFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a LERS-format table from r.
func Parse(r io.Reader) (*table.Table, error) {
	var (
		st         = stateStart
		descriptor []string
		names      []string
		values     []string
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		for _, tok := range tokenize(sc.Text()) {
			if strings.HasPrefix(tok, "!") {
				break
			}
			switch {
			case tok == "<" && st == stateStart:
				st = stateDescriptor
			case tok == ">" && st == stateDescriptor:
				st = stateStart
			case st == stateDescriptor:
				descriptor = append(descriptor, tok)
			case tok == "[" && st == stateStart:
				st = stateNames
			case tok == "]" && st == stateNames:
				st = stateValues
			case st == stateNames:
				names = append(names, tok)
			case st == stateValues:
				values = append(values, tok)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	if len(names) == 0 {
		return nil, ErrNoAttributes
	}
	if len(descriptor) > 0 && len(descriptor) != len(names) {
		return nil, fmt.Errorf("%w: %d descriptors, %d names", ErrDescriptorMismatch, len(descriptor), len(names))
	}
	if len(values)%len(names) != 0 {
		return nil, fmt.Errorf("%w: %d values left over", ErrIncompleteCase, len(values)%len(names))
	}

	rows := make([][]string, 0, len(values)/len(names))
	for i := 0; i < len(values); i += len(names) {
		rows = append(rows, values[i:i+len(names)])
	}

	t, err := table.New(names, rows)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	logger := logging.New("lers")
	symbolic, numeric := t.KindCounts()
	logger.Info("dataset parsed",
		"cases", t.Len(), "attributes", len(t.Attributes()),
		"symbolic", symbolic, "numeric", numeric, "incomplete", t.Incomplete())
	return t, nil
}

// tokenize splits a line on whitespace, detaching brackets glued to names.
func tokenize(line string) []string {
	r := strings.NewReplacer("<", " < ", ">", " > ", "[", " [ ", "]", " ] ")
	return strings.Fields(r.Replace(line))
}
