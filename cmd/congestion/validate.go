package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/congestion/internal/config"
)

type ValidateCmd struct {
	File   string `kong:"arg,type='existingfile',help='Scenario file (.hcl, .yaml or .yml)'"`
	Format string `kong:"help='Output format: hcl, yaml or yml (defaults to the input format)'"`
}

func (c *ValidateCmd) Run() error {
	return c.validate(os.Stdout)
}

func (c *ValidateCmd) validate(w io.Writer) error {
	s, err := config.Load(c.File)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%s: %w", c.File, err)
	}

	var format config.Format
	if c.Format == "" {
		format, err = config.FormatFor(c.File)
	} else {
		format, err = config.ParseFormat(c.Format)
	}
	if err != nil {
		return err
	}

	data, err := s.Encode(format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
