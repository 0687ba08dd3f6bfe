package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/music"
	"github.com/sirupsen/logrus"
)

//HandleMusicCommand handles the /play, /skip, /stop and /queue commands.
func (b *HibikiBot) HandleMusicCommand(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	switch data.Name {
	case "play":
		b.playTrack(i, data)
	case "skip":
		b.respond(i, b.skipTrack(i))
	case "stop":
		b.respond(i, b.stopPlayback(i))
	case "queue":
		b.respond(i, b.showQueue(i))
	}
}

func (b *HibikiBot) playTrack(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	command := "/play"
	opts := optionMap(data.Options)
	query, ok := stringOption(opts, "query")
	if !ok || query == "" {
		b.respond(i, ResponseDenied{command: command, reason: "You need to give me something to play", timestamp: time.Now()})
		return
	}

	voiceChannelID := b.memberVoiceChannel(i)
	if voiceChannelID == "" {
		b.respond(i, ResponseDenied{command: command, reason: "You need to be in a voice channel first", timestamp: time.Now()})
		return
	}

	//Track lookups can be slow, so acknowledge before searching.
	err := b.deferResponse(i, false)
	if err != nil {
		return
	}

	//Joining (or moving to) the channel triggers a voice server update, which
	//forwards fresh credentials to the audio sidecar.
	err = b.DiscordSession().ChannelVoiceJoinManual(i.GuildID, voiceChannelID, false, true)
	if err != nil {
		logrus.Warnf("Failed to join voice channel %v in guild %v due to error %v", voiceChannelID, i.GuildID, err)
		b.editResponse(i, "I couldn't join your voice channel. Please try again later.")
		return
	}

	ctx, cancel := handlerContext()
	defer cancel()
	track, queued, err := b.Music.Play(ctx, i.GuildID, query)
	if errors.Is(err, music.ErrNoMatches) {
		b.editResponse(i, "I couldn't find anything matching that query.")
		return
	}
	if err != nil {
		logrus.Warnf("Failed to start playback in guild %v due to error %v", i.GuildID, err)
		b.editResponse(i, "Oops! I encountered an unexpected error whilst running your /play command. Please try again later.")
		return
	}
	if queued {
		b.editResponse(i, fmt.Sprintf("Queued **%v** by %v (%v)", track.Info.Title, track.Info.Author, track.Info.DisplayLength()))
		return
	}
	b.editResponse(i, fmt.Sprintf("Now playing **%v** by %v (%v)", track.Info.Title, track.Info.Author, track.Info.DisplayLength()))
}

func (b *HibikiBot) skipTrack(i *discordgo.InteractionCreate) Response {
	command := "/skip"
	ctx, cancel := handlerContext()
	defer cancel()
	next, err := b.Music.Skip(ctx, i.GuildID)
	if errors.Is(err, music.ErrNothingPlaying) {
		return ResponseDenied{command: command, reason: "Nothing is playing right now", timestamp: time.Now()}
	}
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	if next == nil {
		return ResponseSuccess{command: command, description: "Skipped. The queue is now empty.", timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Skipped. Now playing **%v** by %v", next.Info.Title, next.Info.Author),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) stopPlayback(i *discordgo.InteractionCreate) Response {
	command := "/stop"
	ctx, cancel := handlerContext()
	defer cancel()
	err := b.Music.Stop(ctx, i.GuildID)
	if errors.Is(err, music.ErrNothingPlaying) {
		return ResponseDenied{command: command, reason: "Nothing is playing right now", timestamp: time.Now()}
	}
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{command: command, description: "Stopped playback and cleared the queue", timestamp: time.Now()}
}

func (b *HibikiBot) showQueue(i *discordgo.InteractionCreate) Response {
	command := "/queue"
	nowPlaying, upNext := b.Music.Queue(i.GuildID)
	if nowPlaying == nil {
		return ResponseSuccess{command: command, description: "Nothing is playing right now", ephemeral: true, timestamp: time.Now()}
	}
	lines := []string{fmt.Sprintf("Now playing: **%v** by %v (%v)", nowPlaying.Info.Title, nowPlaying.Info.Author, nowPlaying.Info.DisplayLength())}
	for n, track := range upNext {
		lines = append(lines, fmt.Sprintf("%d. **%v** by %v (%v)", n+1, track.Info.Title, track.Info.Author, track.Info.DisplayLength()))
	}
	return ResponseSuccess{
		command:     command,
		description: strings.Join(lines, "\n"),
		ephemeral:   true,
		timestamp:   time.Now(),
	}
}

//memberVoiceChannel returns the voice channel the invoking member currently
//sits in, or empty if they are not in one.
func (b *HibikiBot) memberVoiceChannel(i *discordgo.InteractionCreate) string {
	if i.Member == nil || i.Member.User == nil {
		return ""
	}
	voiceState, err := b.DiscordSession().State.VoiceState(i.GuildID, i.Member.User.ID)
	if err != nil || voiceState == nil {
		return ""
	}
	return voiceState.ChannelID
}

//HandleVoiceServerUpdate forwards fresh voice credentials to the audio
//sidecar. The session ID comes from the bot's own tracked voice state.
func (b *HibikiBot) HandleVoiceServerUpdate(v *discordgo.VoiceServerUpdate) {
	session := b.DiscordSession()
	voiceState, err := session.State.VoiceState(v.GuildID, session.State.User.ID)
	if err != nil || voiceState == nil {
		logrus.Warnf("Got voice server update for guild %v but have no own voice state to pair it with", v.GuildID)
		return
	}
	ctx, cancel := handlerContext()
	defer cancel()
	b.Music.HandleVoiceServerUpdate(ctx, v.GuildID, voiceState.SessionID, v.Token, v.Endpoint)
}
