// Package line provides LINE Messaging API configuration options.
package line

import (
	"fmt"
	"time"

	"github.com/kart-io/herald/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains LINE Messaging API configuration.
type Options struct {
	// ChannelSecret signs and verifies webhook payloads.
	ChannelSecret string `json:"channel-secret" mapstructure:"channel-secret"`
	// ChannelAccessToken authorizes push and reply calls.
	ChannelAccessToken string `json:"channel-access-token" mapstructure:"channel-access-token"`
	// APIBaseURL is the messaging API endpoint.
	APIBaseURL string `json:"api-base-url" mapstructure:"api-base-url"`
	// Timeout bounds each messaging API call.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		APIBaseURL: "https://api.line.me",
		Timeout:    10 * time.Second,
	}
}

// AddFlags adds flags for LINE options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.ChannelSecret, options.Join(prefixes...)+"line.channel-secret", o.ChannelSecret, "LINE channel secret for webhook signature verification.")
	fs.StringVar(&o.ChannelAccessToken, options.Join(prefixes...)+"line.channel-access-token", o.ChannelAccessToken, "LINE channel access token for the Messaging API.")
	fs.StringVar(&o.APIBaseURL, options.Join(prefixes...)+"line.api-base-url", o.APIBaseURL, "LINE Messaging API base URL.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"line.timeout", o.Timeout, "Timeout for Messaging API calls.")
}

// Validate validates the LINE options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.APIBaseURL == "" {
		errs = append(errs, fmt.Errorf("line.api-base-url cannot be empty"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("line.timeout must be positive"))
	}
	return errs
}

// Complete completes the LINE options with defaults.
func (o *Options) Complete() error {
	return nil
}
