package bot

import (
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/session/shard"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/starshine-sys/bcr"
)

// Session wraps the router's shards with the subset of calls the notifier and command handler need.
// REST calls are shared between shards, so they go through the first one.
type Session struct {
	Router *bcr.Router
}

func (s Session) state(guildID discord.GuildID) *state.State {
	st, _ := s.Router.StateFromGuildID(guildID)
	return st
}

// Guilds returns the cached guilds of every shard.
func (s Session) Guilds() (guilds []discord.Guild, err error) {
	s.Router.ShardManager.ForEach(func(sh shard.Shard) {
		if err != nil {
			return
		}

		gs, gErr := sh.(*state.State).GuildStore.Guilds()
		if gErr != nil {
			err = gErr
			return
		}
		guilds = append(guilds, gs...)
	})
	return guilds, err
}

func (s Session) Channels(guildID discord.GuildID) ([]discord.Channel, error) {
	return s.state(guildID).Channels(guildID)
}

func (s Session) SendEmbeds(channelID discord.ChannelID, embeds ...discord.Embed) (*discord.Message, error) {
	return s.state(0).SendEmbeds(channelID, embeds...)
}

func (s Session) SendMessage(channelID discord.ChannelID, content string, embeds ...discord.Embed) (*discord.Message, error) {
	return s.state(0).SendMessageComplex(channelID, api.SendMessageData{
		Content:         content,
		Embeds:          embeds,
		AllowedMentions: s.Router.DefaultMentions,
	})
}

func (s Session) CreatePrivateChannel(userID discord.UserID) (*discord.Channel, error) {
	return s.state(0).CreatePrivateChannel(userID)
}
