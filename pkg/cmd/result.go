package cmd

import (
	"time"

	"github.com/keshon/botframe/pkg/platform"
)

// Result is what an action returns: Text, *Response or Responses. The set is
// closed; handlers flatten it with Normalize.
type Result interface {
	responses() []*Response
}

// Text is shorthand for a response with only content.
type Text string

func (t Text) responses() []*Response {
	return []*Response{{Content: string(t)}}
}

// Response is one structured reply.
type Response struct {
	Content string
	Embed   *platform.Embed
	File    *platform.File
	Options Options
}

func (r *Response) responses() []*Response {
	if r == nil {
		return nil
	}
	return []*Response{r}
}

// Outgoing converts the response into a send payload.
func (r *Response) Outgoing() *platform.Outgoing {
	return &platform.Outgoing{Content: r.Content, Embed: r.Embed, File: r.File}
}

// Responses is a list of replies, sent in order.
type Responses []*Response

func (rs Responses) responses() []*Response {
	out := make([]*Response, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Options control where a response goes and what happens after it is sent.
type Options struct {
	// Channels overrides the destination; empty means the originating channel.
	Channels []string
	// Awaits are armed once the response is delivered.
	Awaits []*Await
	// Interface is bound to every delivered copy of the response.
	Interface *Interface
	// DeleteAfter deletes every delivered copy after the duration.
	DeleteAfter time.Duration
}

// Normalize flattens r into its responses. A nil result yields none.
func Normalize(r Result) []*Response {
	if r == nil {
		return nil
	}
	return r.responses()
}
