package infra

import "log/slog"

// Options configures the exporter behavior.
type Options struct {
	// EmitTfvars generates terraform.tfvars when true.
	EmitTfvars bool `koanf:"emit_tfvars"`
	// MaxParallel is the max number of resources generated in parallel per tier (0 = default).
	MaxParallel int `koanf:"max_parallel"`
	// Region is used when no region container names one.
	Region string `koanf:"region"`

	Logger *slog.Logger `koanf:"-"`
}

// DefaultOptions returns default exporter options.
func DefaultOptions() Options {
	return Options{
		EmitTfvars:  true,
		MaxParallel: 0, // use runtime.NumCPU in the exporter
	}
}
