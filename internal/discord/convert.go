package discord

import (
	"bytes"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/botframe/pkg/platform"
)

// maxContent is the Discord message size limit in characters.
const maxContent = 2000

// codeUnknownChannel is the Discord JSON error code for a missing channel.
const codeUnknownChannel = 10003

func fromMessage(m *discordgo.Message) *platform.Message {
	if m == nil {
		return nil
	}
	msg := &platform.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorBot = m.Author.Bot
	}
	return msg
}

func fromReaction(r *discordgo.MessageReaction, authorID string) *platform.Reaction {
	return &platform.Reaction{
		MessageID:       r.MessageID,
		ChannelID:       r.ChannelID,
		GuildID:         r.GuildID,
		UserID:          r.UserID,
		Emoji:           r.Emoji.APIName(),
		MessageAuthorID: authorID,
	}
}

// channelInfo describes ch without the permission check.
func channelInfo(ch *discordgo.Channel) *platform.ChannelInfo {
	info := &platform.ChannelInfo{ID: ch.ID}
	switch ch.Type {
	case discordgo.ChannelTypeDM, discordgo.ChannelTypeGroupDM:
		info.Text = true
		info.Direct = true
		info.CanSend = true
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		info.Text = true
	}
	return info
}

// messageSend builds a fresh payload; file readers are single use so every
// attempt needs its own.
func messageSend(out *platform.Outgoing) *discordgo.MessageSend {
	ms := &discordgo.MessageSend{Content: out.Content}
	if out.Embed != nil {
		ms.Embeds = []*discordgo.MessageEmbed{embed(out.Embed)}
	}
	if out.File != nil {
		ms.Files = []*discordgo.File{{
			Name:   out.File.Name,
			Reader: bytes.NewReader(out.File.Data),
		}}
	}
	return ms
}

func embed(e *platform.Embed) *discordgo.MessageEmbed {
	me := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		URL:         e.URL,
		Color:       e.Color,
	}
	if e.Footer != "" {
		me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	for _, f := range e.Fields {
		me.Fields = append(me.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return me
}
