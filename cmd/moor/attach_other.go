//go:build !darwin && !linux

package main

import (
	"context"

	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/config"
	clierrors "github.com/moor-dev/moor/internal/errors"
	"github.com/moor-dev/moor/internal/output"
)

func runAttach(context.Context, *output.Writer, config.Host, *agent.Client, string) error {
	return clierrors.New(clierrors.ExitGeneral, "Attach is not supported on this platform")
}

func runLocalAttach(context.Context, *output.Writer, string) error {
	return clierrors.New(clierrors.ExitGeneral, "Local attach is not supported on this platform")
}
