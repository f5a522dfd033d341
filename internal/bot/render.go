package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/guildstats/recordbot/internal/logic"
	"github.com/guildstats/recordbot/internal/models"
)

// Embed colors
const (
	colorBlue  = 0x3498db
	colorGreen = 0x2ecc71
)

func summaryEmbed(s *models.UserSummary) *discordgo.MessageEmbed {
	title, body := logic.RenderSummary(s)
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: body,
		Color:       colorBlue,
	}
}

func pageEmbed(p models.Page) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Body,
		Color:       colorGreen,
	}
}
