// Package options contains flags and options for initializing the Herald server.
package options

import (
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	heraldsvc "github.com/kart-io/herald/internal/herald"
	appopts "github.com/kart-io/herald/pkg/options/app"
	httpopts "github.com/kart-io/herald/pkg/options/http"
	lineopts "github.com/kart-io/herald/pkg/options/line"
	llmopts "github.com/kart-io/herald/pkg/options/llm"
	logopts "github.com/kart-io/herald/pkg/options/logger"
	pgopts "github.com/kart-io/herald/pkg/options/postgres"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// PostgresOptions contains PostgreSQL database configuration.
	PostgresOptions *pgopts.Options `json:"postgres" mapstructure:"postgres"`

	// LineOptions contains LINE Messaging API configuration.
	LineOptions *lineopts.Options `json:"line" mapstructure:"line"`

	// LLMOptions contains LLM gateway configuration.
	LLMOptions *llmopts.GatewayOptions `json:"llm" mapstructure:"llm"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	httpOpts := httpopts.NewOptions()
	httpOpts.Addr = ":8083"

	return &ServerOptions{
		HTTPOptions:     httpOpts,
		LogOptions:      logopts.NewOptions(),
		PostgresOptions: pgopts.NewOptions(),
		LineOptions:     lineopts.NewOptions(),
		LLMOptions:      llmopts.NewGatewayOptions(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss appopts.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.PostgresOptions.AddFlags(fss.FlagSet("postgres"))
	o.LineOptions.AddFlags(fss.FlagSet("line"))
	o.LLMOptions.AddFlags(fss.FlagSet("llm"))

	// misc flags
	fs := fss.FlagSet("misc")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return err
	}
	if err := o.LineOptions.Complete(); err != nil {
		return err
	}
	if err := o.LLMOptions.Complete(); err != nil {
		return err
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 30 * time.Second
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate())
	errs = append(errs, o.LogOptions.Validate())
	errs = append(errs, o.PostgresOptions.Validate())
	errs = append(errs, o.LineOptions.Validate()...)
	errs = append(errs, o.LLMOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

// Config builds a heraldsvc.Config based on ServerOptions.
func (o *ServerOptions) Config() (*heraldsvc.Config, error) {
	return &heraldsvc.Config{
		HTTPOptions:     o.HTTPOptions,
		LogOptions:      o.LogOptions,
		PostgresOptions: o.PostgresOptions,
		LineOptions:     o.LineOptions,
		LLMOptions:      o.LLMOptions,
		ShutdownTimeout: o.ShutdownTimeout,
	}, nil
}
