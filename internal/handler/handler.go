// Package handler provides Discord command handlers.
package handler

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// reply sends a plain message to the channel a command came from.
func reply(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		log.Error().Err(err).Str("channel_id", channelID).Msg("Failed to send reply")
	}
}

// replyTo sends a message referencing the triggering message.
func replyTo(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		log.Error().Err(err).Str("channel_id", m.ChannelID).Msg("Failed to send reply")
	}
}

// mention renders a user mention.
func mention(userID string) string {
	return "<@" + userID + ">"
}

// parseUserID extracts a user ID from a raw mention (<@123> or <@!123>) or a
// bare snowflake.
func parseUserID(arg string) (string, bool) {
	id := strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}
