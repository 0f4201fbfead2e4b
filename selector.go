package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/marcus-crane/depotfinder/resolver"
)

// tableSelector prints the options as a numbered table and reads the choice
// from In.
type tableSelector struct {
	In  *bufio.Reader
	Out io.Writer
}

func (s *tableSelector) Select(ctx context.Context, prompt string, options []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fmt.Fprintf(s.Out, "%s:\n", prompt)
	t := newTable(s.Out)
	t.AppendHeader(table.Row{"#", "Option"})
	for i, option := range options {
		t.AppendRow(table.Row{i + 1, option})
	}
	t.Render()

	fmt.Fprintf(s.Out, "Enter the number of your choice (1-%d): ", len(options))
	line, err := s.In.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return 0, err
	}
	choice := strings.TrimSpace(line)
	idx, err := strconv.Atoi(choice)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", resolver.ErrInvalidSelection, choice)
	}
	return idx, nil
}
