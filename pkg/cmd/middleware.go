package cmd

// Middleware wraps an action (e.g. logging, guild checks, history).
type Middleware func(next Action) Action

// Apply wraps a with mws; the first in the list is the outermost.
func Apply(a Action, mws ...Middleware) Action {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			a = mws[i](a)
		}
	}
	return a
}
