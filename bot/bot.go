package bot

import (
	"net/url"

	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/chat"
	"github.com/karashiin/hibiki/db"
	"github.com/karashiin/hibiki/discord"
	"github.com/karashiin/hibiki/music"
	"github.com/karashiin/hibiki/rolemenu"
	"github.com/sirupsen/logrus"
)

//HibikiBot represents an instance of the discord bot, containing handles to the various external connections.
type HibikiBot struct {
	DiscordConnection *discord.EventSource
	DBConnection      *db.Connection
	RoleMenus         *rolemenu.Coordinator
	Chat              *chat.Client
	Music             *music.Manager
}

//Init creates a new HibikiBot instance
func Init() (*HibikiBot, error) {
	var res HibikiBot
	//Start database connection
	dbConn, err := db.Init()
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing database connection: %v", err)
		return nil, err
	}

	//Start discord connection
	disc, err := discord.StartDiscordListener(&res)
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing discord connection: %v", err)
		return nil, err
	}

	//Start chat-completion client
	chatClient, err := chat.Init()
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing chat client: %v", err)
		return nil, err
	}

	//Start audio sidecar client
	lavalink, err := music.InitLavalink()
	if err != nil {
		logrus.Errorf("Cannot start bot due to error initializing audio sidecar client: %v", err)
		return nil, err
	}

	res.DiscordConnection = disc
	res.DBConnection = dbConn
	res.RoleMenus = rolemenu.NewCoordinator(disc, dbConn, disc)
	res.Chat = chatClient
	res.Music = music.NewManager(lavalink)

	err = res.RegisterCommands()
	if err != nil {
		logrus.Errorf("Cannot start bot due to error registering slash commands: %v", err)
		return nil, err
	}

	return &res, nil
}

//BotAddURL generates a URL that can be used to add the bot to a server
func (b *HibikiBot) BotAddURL() (*url.URL, error) {
	return b.DiscordConnection.BotAddURL()
}

//DiscordSession returns a handle to the underlying discord session
func (b *HibikiBot) DiscordSession() *discordgo.Session {
	return b.DiscordConnection.Session()
}

//Close cleanly terminates the bot instance
func (b *HibikiBot) Close() {
	logrus.Info("Terminating bot...")
	b.Chat.Close()
	b.DiscordConnection.Close()
	b.DBConnection.Close()
}
