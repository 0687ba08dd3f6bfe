package bot

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const discordDevUIDEnvVar string = "HIBIKI_DISCORD_DEV_UID"
const handlerTimeout = 15 * time.Second

//handlerContext returns the context used for one interaction's database and
//sidecar calls.
func handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

//respond sends a Response back to whoever triggered an interaction.
func (b *HibikiBot) respond(i *discordgo.InteractionCreate, result Response) {
	result.WriteToLog()
	err := b.DiscordSession().InteractionRespond(i.Interaction, result.InteractionResponse())
	if err != nil {
		logrus.Errorf("Failed to send response to command due to error %v", err)
	}
}

//deferResponse acknowledges an interaction so a slow handler can follow up
//later via editResponse.
func (b *HibikiBot) deferResponse(i *discordgo.InteractionCreate, ephemeral bool) error {
	data := discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.DiscordSession().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &data,
	})
	if err != nil {
		logrus.Errorf("Failed to defer response to command due to error %v", err)
	}
	return err
}

//editResponse replaces a deferred acknowledgement with the final reply.
func (b *HibikiBot) editResponse(i *discordgo.InteractionCreate, content string) {
	_, err := b.DiscordSession().InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	if err != nil {
		logrus.Errorf("Failed to edit deferred response due to error %v", err)
	}
}

//isFromAdmin reports whether an interaction came from someone allowed to run
//admin commands: the dev override, the guild owner, anyone with the
//administrator permission, or a holder of one of the guild's stored admin
//roles.
func (b *HibikiBot) isFromAdmin(i *discordgo.InteractionCreate) (bool, error) {
	member := i.Member
	if member == nil || member.User == nil {
		return false, nil
	}
	//Works if from dev
	if isDev(member.User.ID) {
		return true, nil
	}
	//Works if the member carries the administrator permission bit
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true, nil
	}
	//Works if from server owner
	guild, err := b.DiscordSession().Guild(i.GuildID)
	if err != nil {
		logrus.Warnf("Failed to fetch guild object from Discord API when checking if user %v is admin for server %v", member.User.ID, i.GuildID)
		return false, err
	} else if guild.OwnerID == member.User.ID {
		return true, nil
	}
	//Works if user has an admin role
	ctx, cancel := handlerContext()
	defer cancel()
	localGuild, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		logrus.Warnf("Failed to fetch guild object from Database when checking if user %v is admin for server %v", member.User.ID, i.GuildID)
		return false, err
	}
	for _, adminRole := range localGuild.AdminRoles {
		for _, senderRole := range member.Roles {
			if adminRole == senderRole {
				return true, nil
			}
		}
	}
	return false, nil
}

func isDev(userID string) bool {
	devUID, exists := os.LookupEnv(discordDevUIDEnvVar)
	if !exists {
		return false
	}
	return userID == devUID
}

//This is kind of a mess and waay too greedy but the symbol other category doesn't seem to work with RE2 so eh ¯\_(ツ)_/¯
const unicodeEmojiRegex = `(\S{1,4})`

var emojiRegex = regexp.MustCompile(`(<(a?):([^:]+):(\d+)>)|` + unicodeEmojiRegex)

//interpretEmoji turns user emoji input into the name or name:id form the API
//expects, or nil if the input is not an emoji.
func interpretEmoji(emojiStr string) *string {
	matches := emojiRegex.FindStringSubmatch(emojiStr)
	switch {
	case matches == nil:
		return nil
	case matches[1] != "":
		//Discord guild emoji
		name := matches[3]
		id := matches[4]
		apiName := fmt.Sprintf("%v:%v", name, id)
		return &apiName
	case matches[5] != "":
		//Unicode emoji
		return &matches[5]
	default:
		return nil
	}
}

//attribution builds the audit record stamped onto menu documents.
func attribution(i *discordgo.InteractionCreate) (userID, username string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, i.Member.User.Username
	}
	if i.User != nil {
		return i.User.ID, i.User.Username
	}
	return "", ""
}

//subcommand unpacks the invoked subcommand name and its options.
func subcommand(data discordgo.ApplicationCommandInteractionData) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(data.Options) == 0 {
		return "", nil
	}
	sub := data.Options[0]
	return sub.Name, sub.Options
}

//optionMap indexes interaction options by name.
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	opt, ok := opts[name]
	if !ok {
		return "", false
	}
	return opt.StringValue(), true
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (int, bool) {
	opt, ok := opts[name]
	if !ok {
		return 0, false
	}
	return int(opt.IntValue()), true
}

func boolOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (bool, bool) {
	opt, ok := opts[name]
	if !ok {
		return false, false
	}
	return opt.BoolValue(), true
}

func roleOption(s *discordgo.Session, guildID string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.Role {
	opt, ok := opts[name]
	if !ok {
		return nil
	}
	return opt.RoleValue(s, guildID)
}

func channelOption(s *discordgo.Session, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.Channel {
	opt, ok := opts[name]
	if !ok {
		return nil
	}
	return opt.ChannelValue(s)
}
