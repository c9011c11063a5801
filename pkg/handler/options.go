package handler

import (
	"github.com/rs/zerolog"

	"github.com/keshon/botframe/pkg/cmd"
)

const (
	DefaultPrefix        = "!"
	DefaultMaxInterfaces = 50
	DefaultSendWorkers   = 4

	// minInterfaces is the smallest accepted interface cache size.
	minInterfaces = 3
)

// DefaultIgnoredCodes are Discord codes for missing access, missing
// permissions and unknown message.
var DefaultIgnoredCodes = []int{50001, 50013, 10008}

// Braces delimit an inline replacer invocation, e.g. |upper text|.
type Braces struct {
	Open  string
	Close string
}

// DefaultBraces is |...|.
var DefaultBraces = Braces{Open: "|", Close: "|"}

// Options configure a Core. Zero values fall back to the defaults above.
type Options struct {
	Name   string
	Prefix string
	// OwnerID is accepted as owner in addition to Client.IsOwner.
	OwnerID string
	Braces  Braces
	// IgnoredCodes are provider error codes turned into ignored deliveries.
	// A nil slice means DefaultIgnoredCodes; an empty one ignores nothing.
	IgnoredCodes  []int
	MaxInterfaces int
	// AllowBots lets messages from other bot accounts dispatch.
	AllowBots bool
	// SendWorkers bounds concurrent sends of one response.
	SendWorkers int
	Middlewares []cmd.Middleware
	Logger      *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "botframe"
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.Braces.Open == "" || o.Braces.Close == "" {
		o.Braces = DefaultBraces
	}
	if o.IgnoredCodes == nil {
		o.IgnoredCodes = DefaultIgnoredCodes
	}
	if o.MaxInterfaces <= 0 {
		o.MaxInterfaces = DefaultMaxInterfaces
	}
	if o.MaxInterfaces < minInterfaces {
		o.MaxInterfaces = minInterfaces
	}
	if o.SendWorkers <= 0 {
		o.SendWorkers = DefaultSendWorkers
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}
