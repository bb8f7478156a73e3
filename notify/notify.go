// Package notify sends clip announcements, welcome messages and info cards to Discord.
package notify

import (
	"net/http"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/ReneKroon/ttlcache/v2"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
	"github.com/starshine-sys/clipbot/common"
	"github.com/starshine-sys/clipbot/twitch"
)

// DefaultChannelName is the channel clips are posted to if none is configured.
const DefaultChannelName = "clips"

// ErrDirectMessagesDisabled is returned by Welcome if the member doesn't accept direct messages.
const ErrDirectMessagesDisabled = errors.Sentinel("member has direct messages disabled")

// Discord's "Cannot send messages to this user"
const codeCannotMessageUser = 50007

// Session is the subset of the Discord state the dispatcher uses.
type Session interface {
	Guilds() ([]discord.Guild, error)
	Channels(discord.GuildID) ([]discord.Channel, error)
	SendEmbeds(discord.ChannelID, ...discord.Embed) (*discord.Message, error)
	CreatePrivateChannel(discord.UserID) (*discord.Channel, error)
}

// Dispatcher formats and sends messages.
type Dispatcher struct {
	Session     Session
	ChannelName string

	channels *ttlcache.Cache
}

// New creates a Dispatcher posting clips to every channel called channelName.
func New(s Session, channelName string) *Dispatcher {
	if channelName == "" {
		channelName = DefaultChannelName
	}

	d := &Dispatcher{
		Session:     s,
		ChannelName: strings.TrimPrefix(channelName, "#"),
		channels:    ttlcache.NewCache(),
	}
	d.channels.SetTTL(10 * time.Minute)

	return d
}

// Close stops the channel cache.
func (d *Dispatcher) Close() error {
	return d.channels.Close()
}

// AnnounceClip posts the clip to the clip channel in every guild that has one.
// Guilds without the channel are skipped, and failed sends are only logged.
func (d *Dispatcher) AnnounceClip(c twitch.Clip) error {
	log := common.Log.Named("notify")

	guilds, err := d.Session.Guilds()
	if err != nil {
		return errors.Wrap(err, "listing guilds")
	}

	e := ClipEmbed(c)
	for _, g := range guilds {
		chID, ok := d.channel(g.ID)
		if !ok {
			continue
		}

		_, err := d.Session.SendEmbeds(chID, e)
		if err != nil {
			log.Warnf("Error announcing clip %v in %v (%v): %v", c.ID, g.Name, g.ID, err)
			_ = d.channels.Remove(g.ID.String())
			continue
		}

		log.Debugf("Announced clip %v in %v (%v)", c.ID, g.Name, g.ID)
	}
	return nil
}

// Welcome sends the welcome message to u in a direct message.
func (d *Dispatcher) Welcome(u discord.User) error {
	ch, err := d.Session.CreatePrivateChannel(u.ID)
	if err != nil {
		return dmError(err)
	}

	_, err = d.Session.SendEmbeds(ch.ID, WelcomeEmbed(u))
	return dmError(err)
}

func dmError(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *httputil.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusForbidden || httpErr.Code == codeCannotMessageUser {
			return ErrDirectMessagesDisabled
		}
	}
	return errors.Wrap(err, "sending direct message")
}

// channel returns the clip channel in the given guild.
func (d *Dispatcher) channel(guildID discord.GuildID) (discord.ChannelID, bool) {
	key := guildID.String()

	if v, err := d.channels.Get(key); err == nil {
		if id, ok := v.(discord.ChannelID); ok {
			return id, true
		}
	}

	channels, err := d.Session.Channels(guildID)
	if err != nil {
		common.Log.Named("notify").Debugf("Error getting channels for %v: %v", guildID, err)
		return 0, false
	}

	for _, ch := range channels {
		if ch.Type != discord.GuildText && ch.Type != discord.GuildNews {
			continue
		}

		if strings.EqualFold(ch.Name, d.ChannelName) {
			_ = d.channels.Set(key, ch.ID)
			return ch.ID, true
		}
	}
	return 0, false
}
