package commands

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session/shard"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/starshine-sys/bcr"
	"github.com/starshine-sys/clipbot/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChannel = discord.ChannelID(100)
	testDM      = discord.ChannelID(101)
	testGuild   = discord.GuildID(200)
	testAdmin   = discord.RoleID(201)
	testUser    = discord.UserID(300)
	testOwner   = discord.UserID(400)
)

type sentMessage struct {
	channelID discord.ChannelID
	content   string
	embeds    []discord.Embed
}

type fakeSession struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (s *fakeSession) SendMessage(ch discord.ChannelID, content string, embeds ...discord.Embed) (*discord.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{ch, content, embeds})
	return &discord.Message{ChannelID: ch, Content: content}, nil
}

func (s *fakeSession) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type fakeReporter struct {
	errs []error
}

func (r *fakeReporter) ReportError(_ discord.UserID, err error) string {
	r.errs = append(r.errs, err)
	return "code"
}

type fakeStats struct {
	latency       time.Duration
	guilds, users int
}

func (s fakeStats) Latency() time.Duration { return s.latency }
func (s fakeStats) Counts() (int, int)     { return s.guilds, s.users }

// newTestRouter returns a router whose only shard never connects.
// Its cabinet holds one guild text channel and one DM channel, so contexts are built without any REST calls.
func newTestRouter(t *testing.T) *bcr.Router {
	t.Helper()

	id := gateway.DefaultIdentifier("Bot test")
	id.Shard = gateway.DefaultShard

	mgr, err := shard.NewIdentifiedManagerWithURL("wss://gateway.invalid", id, state.NewShardFunc(func(_ *shard.Manager, s *state.State) {
		s.AddIntents(gateway.IntentGuilds | gateway.IntentDirectMessages)
	}))
	require.NoError(t, err)

	r := bcr.New(mgr, nil, []string{"!"})
	st, _ := r.StateFromGuildID(0)

	require.NoError(t, st.Cabinet.GuildSet(&discord.Guild{ID: testGuild, OwnerID: testOwner}, false))
	require.NoError(t, st.Cabinet.RoleSet(testGuild, &discord.Role{
		ID:          discord.RoleID(testGuild),
		Name:        "@everyone",
		Permissions: discord.PermissionSendMessages | discord.PermissionViewChannel,
	}, false))
	require.NoError(t, st.Cabinet.RoleSet(testGuild, &discord.Role{
		ID:          testAdmin,
		Name:        "admin",
		Position:    1,
		Permissions: discord.PermissionManageGuild,
	}, false))
	require.NoError(t, st.Cabinet.ChannelSet(&discord.Channel{
		ID:      testChannel,
		GuildID: testGuild,
		Type:    discord.GuildText,
	}, false))
	require.NoError(t, st.Cabinet.ChannelSet(&discord.Channel{
		ID:           testDM,
		Type:         discord.DirectMessage,
		DMRecipients: []discord.User{{ID: testUser}},
	}, false))

	return r
}

func newTestBot(t *testing.T, stats fakeStats) (*Bot, *fakeSession, *dashboard.Store, *fakeReporter) {
	t.Helper()

	s := &fakeSession{}
	store := dashboard.NewStore()
	rep := &fakeReporter{}

	b := Init(newTestRouter(t), s, stats)
	b.History = store
	b.Reporter = rep
	return b, s, store, rep
}

func message(content string) *gateway.MessageCreateEvent {
	return &gateway.MessageCreateEvent{
		Message: discord.Message{
			ID:        1,
			ChannelID: testChannel,
			GuildID:   testGuild,
			Content:   content,
			Author:    discord.User{ID: testUser, Username: "tester"},
		},
		Member: &discord.Member{},
	}
}

func dm(content string) *gateway.MessageCreateEvent {
	ev := message(content)
	ev.ChannelID = testDM
	ev.GuildID = 0
	ev.Member = nil
	return ev
}

func lastReply(t *testing.T, s *fakeSession) sentMessage {
	t.Helper()
	msgs := s.messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func TestIgnoredMessages(t *testing.T) {
	b, s, store, _ := newTestBot(t, fakeStats{})

	botMsg := message("!hello")
	botMsg.Author.Bot = true

	for _, ev := range []*gateway.MessageCreateEvent{
		message("hello"),
		message("?hello"),
		message("!"),
		message("!   "),
		message(""),
		botMsg,
	} {
		b.MessageCreate(ev)
	}

	assert.Empty(t, s.messages())
	assert.Empty(t, store.History())
}

func TestHello(t *testing.T) {
	b, s, _, _ := newTestBot(t, fakeStats{})

	b.MessageCreate(message("!hello"))

	reply := lastReply(t, s)
	assert.Equal(t, testChannel, reply.channelID)
	assert.Equal(t, "Hello <@300>!", reply.content)
}

func TestHelloInDM(t *testing.T) {
	b, s, _, _ := newTestBot(t, fakeStats{})

	b.MessageCreate(dm("!hello"))

	reply := lastReply(t, s)
	assert.Equal(t, testDM, reply.channelID)
	assert.Equal(t, "Hello <@300>!", reply.content)
}

func TestCaseInsensitive(t *testing.T) {
	b, s, _, _ := newTestBot(t, fakeStats{})

	b.MessageCreate(message("!HeLLo"))
	assert.Equal(t, "Hello <@300>!", lastReply(t, s).content)
}

func TestPing(t *testing.T) {
	tests := []struct {
		latency time.Duration
		want    string
	}{
		{42 * time.Millisecond, "Pong! Latency: 42ms"},
		{1500 * time.Microsecond, "Pong! Latency: 2ms"},
		{0, "Pong! Latency: 0ms"},
		{-3 * time.Second, "Pong! Latency: 0ms"},
	}

	for _, tt := range tests {
		t.Run(tt.latency.String(), func(t *testing.T) {
			b, s, _, _ := newTestBot(t, fakeStats{latency: tt.latency})

			b.MessageCreate(message("!ping"))
			assert.Equal(t, tt.want, lastReply(t, s).content)
		})
	}
}

func TestInfo(t *testing.T) {
	b, s, _, _ := newTestBot(t, fakeStats{guilds: 3, users: 1234})

	ev := message("!info")
	ev.Member = &discord.Member{Nick: "Nickname"}
	b.MessageCreate(ev)

	reply := lastReply(t, s)
	require.Len(t, reply.embeds, 1)

	e := reply.embeds[0]
	assert.Equal(t, "Bot Information", e.Title)
	require.Len(t, e.Fields, 3)
	assert.Equal(t, "3", e.Fields[0].Value)
	assert.Equal(t, "1,234", e.Fields[1].Value)
	assert.Equal(t, "!", e.Fields[2].Value)
	require.NotNil(t, e.Footer)
	assert.Equal(t, "Requested by Nickname", e.Footer.Text)

	b.MessageCreate(dm("!info"))
	reply = lastReply(t, s)
	require.Len(t, reply.embeds, 1)
	assert.Equal(t, "Requested by tester", reply.embeds[0].Footer.Text)
}

func TestHelpListsCommands(t *testing.T) {
	b, s, _, _ := newTestBot(t, fakeStats{})

	b.MessageCreate(message("!help"))

	reply := lastReply(t, s)
	require.Len(t, reply.embeds, 1)
	for _, name := range []string{"hello", "ping", "info", "help"} {
		assert.Contains(t, reply.embeds[0].Description, "`!"+name)
	}
}

func TestHelpSingleCommand(t *testing.T) {
	b, s, _, _ := newTestBot(t, fakeStats{})

	b.MessageCreate(message("!help ping"))
	reply := lastReply(t, s)
	require.Len(t, reply.embeds, 1)
	assert.Equal(t, "!ping", reply.embeds[0].Title)

	b.MessageCreate(message("!help nonexistent"))
	assert.Equal(t, `No command called "nonexistent" found.`, lastReply(t, s).content)
}

func TestCommandHelpArgument(t *testing.T) {
	b, s, _, _ := newTestBot(t, fakeStats{})

	// "<command> help" is answered through Session too
	b.MessageCreate(message("!ping HELP"))
	reply := lastReply(t, s)
	require.Len(t, reply.embeds, 1)
	assert.Equal(t, "!ping", reply.embeds[0].Title)
}

func TestCommandNotFound(t *testing.T) {
	b, s, store, rep := newTestBot(t, fakeStats{})

	b.MessageCreate(message("!doesnotexist"))

	assert.Equal(t, "Command not found. Use !help to see available commands.", lastReply(t, s).content)
	assert.Empty(t, store.History())
	assert.Empty(t, rep.errs)
}

func TestMissingArgument(t *testing.T) {
	b, s, _, rep := newTestBot(t, fakeStats{})

	var ran bool
	b.AddCommand(&bcr.Command{
		Name:  "echo",
		Usage: "<text> <count> [suffix]",
		Command: func(ctx *bcr.Context) error {
			ran = true
			return nil
		},
	})

	b.MessageCreate(message("!echo"))
	assert.Equal(t, "Missing required argument: text", lastReply(t, s).content)

	b.MessageCreate(message("!echo hi"))
	assert.Equal(t, "Missing required argument: count", lastReply(t, s).content)
	assert.False(t, ran)
	assert.Empty(t, rep.errs)

	b.MessageCreate(message("!echo hi 2"))
	assert.True(t, ran)
}

func TestMissingPermissions(t *testing.T) {
	b, s, _, _ := newTestBot(t, fakeStats{})

	var ran int
	b.AddPermissionCommand(&bcr.Command{
		Name: "admin",
		Command: func(ctx *bcr.Context) error {
			ran++
			return nil
		},
	}, discord.PermissionManageGuild)

	b.MessageCreate(message("!admin"))
	assert.Equal(t, "You don't have permission to use this command.", lastReply(t, s).content)
	assert.Zero(t, ran)

	b.MessageCreate(dm("!admin"))
	assert.Equal(t, "You don't have permission to use this command.", lastReply(t, s).content)
	assert.Zero(t, ran)

	withRole := message("!admin")
	withRole.Member = &discord.Member{RoleIDs: []discord.RoleID{testAdmin}}
	b.MessageCreate(withRole)
	assert.Equal(t, 1, ran)

	owner := message("!admin")
	owner.Author.ID = testOwner
	b.MessageCreate(owner)
	assert.Equal(t, 2, ran)
}

func TestInternalErrors(t *testing.T) {
	b, s, _, rep := newTestBot(t, fakeStats{})
	b.AddCommand(&bcr.Command{
		Name:    "fail",
		Command: func(ctx *bcr.Context) error { return errors.New("something broke") },
	})
	b.AddCommand(&bcr.Command{
		Name:    "panic",
		Command: func(ctx *bcr.Context) error { panic("oh no") },
	})

	b.MessageCreate(message("!fail"))
	assert.Equal(t, "An error occurred: something broke", lastReply(t, s).content)

	assert.NotPanics(t, func() {
		b.MessageCreate(message("!panic"))
	})
	assert.Equal(t, "An error occurred: oh no", lastReply(t, s).content)

	assert.Len(t, rep.errs, 2)
}

func TestCommandsAreLogged(t *testing.T) {
	b, _, store, _ := newTestBot(t, fakeStats{})

	b.MessageCreate(message("!hello there  friend"))
	b.MessageCreate(dm("!ping"))

	history := store.History()
	require.Len(t, history, 2)

	var hello, ping dashboard.CommandEntry
	for _, e := range history {
		switch e.Command {
		case "hello":
			hello = e
		case "ping":
			ping = e
		}
	}

	assert.Equal(t, "300", hello.UserID)
	assert.Equal(t, "there  friend", hello.Context["args"])
	assert.Equal(t, "100", hello.Context["channel"])
	assert.Equal(t, "200", hello.Context["guild"])

	assert.Equal(t, "101", ping.Context["channel"])
	assert.NotContains(t, ping.Context, "guild")

	assert.Equal(t, uint64(2), store.Stats().TotalCommands)
}

func TestRequiredArgs(t *testing.T) {
	tests := []struct {
		usage string
		want  []string
	}{
		{"", nil},
		{"[command]", nil},
		{"<text>", []string{"text"}},
		{"<user> [reason]", []string{"user"}},
		{"<channel> <text...>", []string{"channel", "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.usage, func(t *testing.T) {
			assert.Equal(t, tt.want, requiredArgs(tt.usage))
		})
	}
}
