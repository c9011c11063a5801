package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/platform"
)

const (
	voteYes   = "👍"
	voteNo    = "👎"
	closePoll = "🛑"
	trashCan  = "🗑"
)

// tally holds the votes of one poll, one per user.
type tally struct {
	mu     sync.Mutex
	votes  map[string]string
	closed bool
}

func (t *tally) vote(user, choice string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.votes[user] = choice
	}
}

// close ends the poll and counts the votes. ok is false when it was already
// closed.
func (t *tally) close() (yes, no int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, 0, false
	}
	t.closed = true
	for _, v := range t.votes {
		if v == voteYes {
			yes++
		} else {
			no++
		}
	}
	return yes, no, true
}

// poll posts a question with vote buttons. Only the author of the poll can
// close it.
func poll() *cmd.Command {
	return cmd.NewCommand("poll", "Start a yes/no poll",
		func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			question := inv.Args.String(0)
			t := &tally{votes: make(map[string]string)}

			voter := func(choice string) *cmd.ReactCommand {
				return cmd.NewReactCommand(choice, "vote "+choice,
					func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
						t.vote(inv.UserID(), choice)
						return nil, nil
					})
			}
			closer := cmd.NewReactCommand(closePoll, "close the poll",
				func(context.Context, *cmd.Invocation) (cmd.Result, error) {
					yes, no, ok := t.close()
					if !ok {
						return nil, nil
					}
					return &cmd.Response{Embed: &platform.Embed{
						Title:       "Poll closed",
						Description: question,
						Color:       embedColor,
						Fields: []platform.EmbedField{
							{Name: voteYes, Value: fmt.Sprint(yes), Inline: true},
							{Name: voteNo, Value: fmt.Sprint(no), Inline: true},
						},
					}}, nil
				}, cmd.Restricted())

			return &cmd.Response{
				Embed: &platform.Embed{
					Title:       "📊 " + question,
					Description: fmt.Sprintf("Vote with %s or %s. The author closes with %s.", voteYes, voteNo, closePoll),
					Color:       embedColor,
				},
				Options: cmd.Options{
					Interface: cmd.NewInterface([]*cmd.ReactCommand{voter(voteYes), voter(voteNo), closer}),
				},
			}, nil
		}, cmd.GuildOnly(), cmd.WithArgs(cmd.Arg{Name: "question", Mandatory: true}))
}

// trash deletes a bot message reacted with 🗑.
func trash() *cmd.ReactCommand {
	return cmd.NewReactCommand(trashCan, "delete this bot message",
		func(ctx context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			r := inv.Reaction
			if r == nil || r.MessageAuthorID != inv.Client.SelfID() {
				return nil, nil
			}
			return nil, inv.Client.DeleteMessage(ctx, r.ChannelID, r.MessageID)
		}, cmd.Restricted())
}
