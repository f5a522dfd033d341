package bot

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/guildstats/recordbot/internal/pagination"
)

// Button custom IDs look like "ranking:next:<session id>"
const navPrefix = "ranking"

func navigation(sessionID string, disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "⬅️ 이전",
					Style:    discordgo.SecondaryButton,
					CustomID: navCustomID(pagination.Prev, sessionID),
					Disabled: disabled,
				},
				discordgo.Button{
					Label:    "➡️ 다음",
					Style:    discordgo.SecondaryButton,
					CustomID: navCustomID(pagination.Next, sessionID),
					Disabled: disabled,
				},
			},
		},
	}
}

func navCustomID(dir pagination.Direction, sessionID string) string {
	return navPrefix + ":" + dir.String() + ":" + sessionID
}

func parseNavCustomID(customID string) (pagination.Direction, string, bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != navPrefix || parts[2] == "" {
		return 0, "", false
	}
	switch parts[1] {
	case "prev":
		return pagination.Prev, parts[2], true
	case "next":
		return pagination.Next, parts[2], true
	}
	return 0, "", false
}

func (b *Bot) handleComponent(i *discordgo.Interaction) {
	dir, sessionID, ok := parseNavCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	page, changed, err := b.pages.Navigate(sessionID, dir)
	if errors.Is(err, pagination.ErrSessionNotFound) {
		b.logger.Debugw("Navigation on expired session", "session", sessionID, "direction", dir.String())
	}

	// No-ops and expired sessions are acknowledged without touching the message
	if err != nil || !changed {
		b.ack(i)
		return
	}

	err = b.discord.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pageEmbed(page)},
			Components: navigation(sessionID, false),
		},
	})
	if err != nil {
		b.logger.Errorw("Failed to update ranking page", "session", sessionID, "page", page.Index, "error", err)
	}
}

func (b *Bot) ack(i *discordgo.Interaction) {
	err := b.discord.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		b.logger.Warnw("Failed to acknowledge component", "interaction", i.ID, "error", err)
	}
}

// onSessionExpired disables the buttons of the message the session drove
func (b *Bot) onSessionExpired(s *pagination.Session) {
	v, ok := b.takeView(s.ID)
	if !ok {
		return
	}

	components := navigation(s.ID, true)
	_, err := b.discord.FollowupMessageEdit(v.interaction, v.messageID, &discordgo.WebhookEdit{
		Components: &components,
	})
	if err != nil {
		b.logger.Warnw("Failed to disable ranking buttons", "session", s.ID, "message", v.messageID, "error", err)
	}
}
