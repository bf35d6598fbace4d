// Package backend selects a native device by name.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/glarray/gpu"
	"github.com/oliverbestmann/glarray/native"
	"github.com/oliverbestmann/glarray/native/gl"
	"github.com/oliverbestmann/glarray/native/soft"
)

// Names lists the supported backends.
var Names = []string{"soft", "gl"}

// Open opens the native device with the given name.
func Open(name string) (native.Device, error) {
	switch name {
	case "", "soft":
		return soft.New(), nil

	case "gl":
		dev, err := gl.Open(nil)
		if err != nil {
			return nil, fmt.Errorf("open gl device: %w", err)
		}

		return dev, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// NewContext opens the configured backend and wraps it into a Context.
func NewContext(conf gpu.Config) (*gpu.Context, error) {
	dev, err := Open(conf.Backend)
	if err != nil {
		return nil, err
	}

	slog.Info("Opened device",
		slog.String("backend", conf.Backend),
		slog.String("gcMode", conf.GCMode.String()),
	)

	return gpu.NewContext(dev, conf.GCMode), nil
}

// NewContextFromEnv is NewContext using the configuration from the environment.
func NewContextFromEnv() (*gpu.Context, error) {
	conf, err := gpu.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return NewContext(conf)
}
