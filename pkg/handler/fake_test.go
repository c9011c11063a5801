package handler

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/keshon/botframe/pkg/platform"
)

const (
	botID   = "bot"
	ownerID = "owner"
	maxLen  = 2000
)

type sent struct {
	ChannelID string
	Out       *platform.Outgoing
}

// fakeClient records everything sent through it. Unknown channels default to
// sendable text channels.
type fakeClient struct {
	mu        sync.Mutex
	channels  map[string]*platform.ChannelInfo
	missing   map[string]bool
	sendErr   map[string]error
	sent      []sent
	deleted   []string
	added     []string
	removed   []string
	nextID    int
	attempts  int
	failSends bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		channels: make(map[string]*platform.ChannelInfo),
		missing:  make(map[string]bool),
		sendErr:  make(map[string]error),
	}
}

func (f *fakeClient) SelfID() string { return botID }
func (f *fakeClient) IsOwner(userID string) bool { return userID == ownerID }

func (f *fakeClient) Channel(_ context.Context, id string) (*platform.ChannelInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[id] {
		return nil, platform.ErrUnknownChannel
	}
	if info, ok := f.channels[id]; ok {
		return info, nil
	}
	return &platform.ChannelInfo{ID: id, Text: true, CanSend: true}, nil
}

func (f *fakeClient) Send(_ context.Context, channelID string, out *platform.Outgoing) (*platform.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failSends {
		return nil, errors.New("gateway down")
	}
	if err := f.sendErr[channelID]; err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(out.Content) > maxLen {
		return nil, platform.ErrContentTooLong
	}
	f.nextID++
	f.sent = append(f.sent, sent{ChannelID: channelID, Out: out})
	return &platform.Message{
		ID:        "m" + strconv.Itoa(f.nextID),
		ChannelID: channelID,
		GuildID:   "g",
		AuthorID:  botID,
		AuthorBot: true,
		Content:   out.Content,
	}, nil
}

func (f *fakeClient) DeleteMessage(_ context.Context, _, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeClient) AddReaction(_ context.Context, _, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, messageID+":"+emoji)
	return nil
}

func (f *fakeClient) RemoveReaction(_ context.Context, _, messageID, emoji, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, messageID+":"+emoji+":"+userID)
	return nil
}

func (f *fakeClient) sentContents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.Out.Content)
	}
	return out
}

func (f *fakeClient) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func message(author, content string) *platform.Message {
	return &platform.Message{ID: "in", ChannelID: "c", GuildID: "g", AuthorID: author, Content: content}
}
