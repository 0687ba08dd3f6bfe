package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/karashiin/hibiki/guildmodels"
	"github.com/karashiin/hibiki/rolemenu"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

//FindByMessage fetches the role menu document posted as the given message.
//Returns rolemenu.ErrNotFound if no menu exists for that message.
func (db *Connection) FindByMessage(ctx context.Context, messageID string) (*guildmodels.RoleMenuConfig, error) {
	var config guildmodels.RoleMenuConfig
	err := db.database.Collection(roleMenusCollection).FindOne(ctx, bson.M{"message_id": messageID}).Decode(&config)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, rolemenu.ErrNotFound
	}
	if err != nil {
		logrus.Warnf("Failed to look up role menu for message %v due to error %v", messageID, err)
		return nil, fmt.Errorf("failed to look up role menu for message %v: %w", messageID, err)
	}
	return &config, nil
}

//Save persists a role menu document with a compare-and-swap on its version
//field. The document is written with version expectedVersion+1; if the stored
//version no longer matches expectedVersion the write is refused with
//rolemenu.ErrVersionMismatch. On success config.Version holds the new version.
func (db *Connection) Save(ctx context.Context, config *guildmodels.RoleMenuConfig, expectedVersion int64) error {
	coll := db.database.Collection(roleMenusCollection)
	config.Version = expectedVersion + 1
	res, err := coll.ReplaceOne(ctx, bson.M{"message_id": config.MessageID, "version": expectedVersion}, config)
	if err != nil {
		config.Version = expectedVersion
		logrus.Warnf("Failed to save role menu for message %v due to error %v", config.MessageID, err)
		return fmt.Errorf("failed to save role menu for message %v: %w", config.MessageID, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	//Nothing matched: either this is a fresh document or someone else moved
	//the version on.
	if expectedVersion == 0 {
		_, err = coll.InsertOne(ctx, config)
		if mongo.IsDuplicateKeyError(err) {
			config.Version = expectedVersion
			return rolemenu.ErrVersionMismatch
		}
		if err != nil {
			config.Version = expectedVersion
			logrus.Warnf("Failed to insert role menu for message %v due to error %v", config.MessageID, err)
			return fmt.Errorf("failed to insert role menu for message %v: %w", config.MessageID, err)
		}
		return nil
	}
	config.Version = expectedVersion
	return rolemenu.ErrVersionMismatch
}

//Delete removes the role menu document for the given message.
func (db *Connection) Delete(ctx context.Context, messageID string) error {
	res, err := db.database.Collection(roleMenusCollection).DeleteOne(ctx, bson.M{"message_id": messageID})
	if err != nil {
		logrus.Warnf("Failed to delete role menu for message %v due to error %v", messageID, err)
		return fmt.Errorf("failed to delete role menu for message %v: %w", messageID, err)
	}
	if res.DeletedCount == 0 {
		return rolemenu.ErrNotFound
	}
	return nil
}

//ListByGuild returns every role menu document belonging to the given guild.
func (db *Connection) ListByGuild(ctx context.Context, guildID string) ([]guildmodels.RoleMenuConfig, error) {
	cursor, err := db.database.Collection(roleMenusCollection).Find(ctx, bson.M{"guild_id": guildID})
	if err != nil {
		logrus.Warnf("Failed to list role menus for guild %v due to error %v", guildID, err)
		return nil, fmt.Errorf("failed to list role menus for guild %v: %w", guildID, err)
	}
	var configs []guildmodels.RoleMenuConfig
	err = cursor.All(ctx, &configs)
	if err != nil {
		logrus.Warnf("Failed to decode role menus for guild %v due to error %v", guildID, err)
		return nil, fmt.Errorf("failed to decode role menus for guild %v: %w", guildID, err)
	}
	return configs, nil
}
