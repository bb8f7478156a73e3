package notify

import (
	"fmt"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/dustin/go-humanize"
	"github.com/starshine-sys/bcr"
	"github.com/starshine-sys/clipbot/twitch"
)

// ClipEmbed returns the announcement embed for a new clip.
func ClipEmbed(c twitch.Clip) discord.Embed {
	e := discord.Embed{
		Title:       c.Title,
		URL:         c.URL,
		Description: fmt.Sprintf("New clip by **%v**!", c.CreatorName),
		Color:       bcr.ColourPurple,
		Fields: []discord.EmbedField{
			{
				Name:   "Views",
				Value:  humanize.Comma(int64(c.ViewCount)),
				Inline: true,
			},
			{
				Name:   "Duration",
				Value:  (time.Duration(c.Duration * float64(time.Second))).Round(time.Second).String(),
				Inline: true,
			},
		},
		Footer: &discord.EmbedFooter{
			Text: "Clip ID: " + c.ID,
		},
	}

	if e.Title == "" {
		e.Title = "New clip"
	}

	if c.ThumbnailURL != "" {
		e.Image = &discord.EmbedImage{URL: c.ThumbnailURL}
	}

	if !c.CreatedAt.IsZero() {
		e.Timestamp = discord.NewTimestamp(c.CreatedAt)
	}

	return e
}

// WelcomeEmbed returns the direct message sent to new members.
func WelcomeEmbed(u discord.User) discord.Embed {
	return discord.Embed{
		Title:       "Welcome!",
		Description: fmt.Sprintf("Hi %v, welcome to the server!", u.Username),
		Color:       bcr.ColourGreen,
		Thumbnail: &discord.EmbedThumbnail{
			URL: u.AvatarURL(),
		},
		Timestamp: discord.NowTimestamp(),
	}
}

// InfoEmbed returns the bot information card.
func InfoEmbed(guilds, users int, prefix, requestedBy string) discord.Embed {
	return discord.Embed{
		Title:       "Bot Information",
		Description: "A simple Discord bot that keeps an eye on Twitch clips.",
		Color:       bcr.ColourBlue,
		Fields: []discord.EmbedField{
			{
				Name:   "Server Count",
				Value:  humanize.Comma(int64(guilds)),
				Inline: true,
			},
			{
				Name:   "User Count",
				Value:  humanize.Comma(int64(users)),
				Inline: true,
			},
			{
				Name:   "Prefix",
				Value:  prefix,
				Inline: true,
			},
		},
		Footer: &discord.EmbedFooter{
			Text: "Requested by " + requestedBy,
		},
	}
}
