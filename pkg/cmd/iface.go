package cmd

import "slices"

// Button is one emoji of an Interface. Restriction is resolved when the
// interface is built, so a ReactCommand shared by several interfaces is never
// mutated.
type Button struct {
	Command    *ReactCommand
	Restricted bool
}

// Emoji is the reaction that presses the button.
func (b Button) Emoji() string { return b.Command.ID }

// Interface is a set of buttons bound to one sent message. It is immutable
// once built.
type Interface struct {
	buttons        []Button
	restricted     bool
	designated     []string
	deleteAfterUse bool
	removeAfterUse bool
}

// InterfaceOption configures an Interface at construction.
type InterfaceOption func(*Interface)

// RestrictInterface restricts every button.
func RestrictInterface() InterfaceOption {
	return func(i *Interface) { i.restricted = true }
}

// DesignatedUsers limits restricted buttons to the given users instead of the
// user the interface was sent to.
func DesignatedUsers(ids ...string) InterfaceOption {
	return func(i *Interface) { i.designated = append(i.designated, ids...) }
}

// DeleteAfterUse deletes the bound message after any button is pressed.
func DeleteAfterUse() InterfaceOption {
	return func(i *Interface) { i.deleteAfterUse = true }
}

// RemoveReactionAfterUse removes the user's reaction after a button is pressed.
func RemoveReactionAfterUse() InterfaceOption {
	return func(i *Interface) { i.removeAfterUse = true }
}

// NewInterface builds an interface from commands, in button order. Nil
// commands and repeated emoji are skipped.
func NewInterface(cmds []*ReactCommand, opts ...InterfaceOption) *Interface {
	iface := &Interface{}
	for _, opt := range opts {
		opt(iface)
	}

	seen := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		if c == nil || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		iface.buttons = append(iface.buttons, Button{
			Command:    c,
			Restricted: iface.restricted || c.Restricted,
		})
	}
	return iface
}

// Buttons returns the buttons in order.
func (i *Interface) Buttons() []Button {
	return slices.Clone(i.buttons)
}

// Button finds the button for emoji.
func (i *Interface) Button(emoji string) (Button, bool) {
	for _, b := range i.buttons {
		if b.Command.ID == emoji {
			return b, true
		}
	}
	return Button{}, false
}

func (i *Interface) DeletesAfterUse() bool         { return i.deleteAfterUse }
func (i *Interface) RemovesReactionAfterUse() bool { return i.removeAfterUse }
func (i *Interface) Designated() []string          { return slices.Clone(i.designated) }

// Allowed reports whether userID may press b. Without designated users a
// restricted button is limited to recipientID.
func (i *Interface) Allowed(b Button, userID, recipientID string) bool {
	if !b.Restricted {
		return true
	}
	if len(i.designated) > 0 {
		return slices.Contains(i.designated, userID)
	}
	return userID == recipientID
}
