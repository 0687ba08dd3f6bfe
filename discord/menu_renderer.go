package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/guildmodels"
	"github.com/karashiin/hibiki/rolemenu"
	"github.com/sirupsen/logrus"
)

//PostMenu posts a fresh role menu message to the config's channel and returns
//the new message ID. Button identifiers encode the message ID, which is not
//known until the message exists, so the message is posted embed-first and then
//edited to attach its buttons.
func (d *EventSource) PostMenu(config *guildmodels.RoleMenuConfig) (string, error) {
	msg, err := d.discordClient.ChannelMessageSendEmbed(config.ChannelID, rolemenu.BuildEmbed(config))
	if err != nil {
		logrus.Warnf("Failed to post role menu message in channel %v due to error %v", config.ChannelID, err)
		return "", err
	}
	config.MessageID = msg.ID
	err = d.RenderMenu(config)
	if err != nil {
		//Roll the post back so a menu without working buttons is not left behind
		delErr := d.discordClient.ChannelMessageDelete(config.ChannelID, msg.ID)
		if delErr != nil {
			logrus.Warnf("Failed to remove half-posted role menu message %v due to error %v", msg.ID, delErr)
		}
		return "", err
	}
	return msg.ID, nil
}

//RenderMenu re-renders the posted menu message in place from its config.
func (d *EventSource) RenderMenu(config *guildmodels.RoleMenuConfig) error {
	embeds := []*discordgo.MessageEmbed{rolemenu.BuildEmbed(config)}
	components := rolemenu.BuildComponents(config)
	edit := discordgo.NewMessageEdit(config.ChannelID, config.MessageID)
	edit.Embeds = &embeds
	edit.Components = &components
	_, err := d.discordClient.ChannelMessageEditComplex(edit)
	if err != nil {
		logrus.Warnf("Failed to edit role menu message %v due to error %v", config.MessageID, err)
	}
	return err
}

//DeleteMenuMessage removes the posted menu message.
func (d *EventSource) DeleteMenuMessage(config *guildmodels.RoleMenuConfig) error {
	err := d.discordClient.ChannelMessageDelete(config.ChannelID, config.MessageID)
	if err != nil {
		logrus.Warnf("Failed to delete role menu message %v due to error %v", config.MessageID, err)
	}
	return err
}
