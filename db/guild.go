package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/karashiin/hibiki/guildmodels"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//GetOrCreateGuild fetches a guild with a given ID from the database, creating a new one if it does not exist.
func (db *Connection) GetOrCreateGuild(ctx context.Context, id string) (*guildmodels.GuildConfig, error) {
	coll := db.database.Collection(guildsCollection)
	var guildObj guildmodels.GuildConfig
	err := coll.FindOne(ctx, bson.M{"guild_id": id}).Decode(&guildObj)
	if err == nil {
		return &guildObj, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		logrus.Errorf("Failed to query database for guild %v because: %v.", id, err)
		return nil, fmt.Errorf("failed to query database for guild %v because: %v", id, err)
	}
	//Create new guild object
	logrus.Infof("Inserting new guild id %v into database.", id)
	guildObj = guildmodels.DefaultGuild(id)
	_, err = coll.InsertOne(ctx, guildObj)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		logrus.Errorf("Failed to insert new guild with id %v because: %v.", id, err)
		return nil, fmt.Errorf("failed to insert new guild with id %v because: %v", id, err)
	}
	return &guildObj, nil
}

//UpdateGuild replaces the stored configuration document for a guild.
func (db *Connection) UpdateGuild(ctx context.Context, guild *guildmodels.GuildConfig) error {
	opts := options.Replace().SetUpsert(true)
	_, err := db.database.Collection(guildsCollection).ReplaceOne(ctx, bson.M{"guild_id": guild.GuildID}, guild, opts)
	if err != nil {
		logrus.Warnf("Failed to update guild %v due to error %v", guild.GuildID, err)
		return fmt.Errorf("failed to update guild %v: %w", guild.GuildID, err)
	}
	return nil
}

//AddAdminRole adds a roleID to the list of AdminRoles for the given guild. It returns the number of updated
//entries as well as any errors
func (db *Connection) AddAdminRole(ctx context.Context, gid string, roleID string) (int, error) {
	res, err := db.database.Collection(guildsCollection).UpdateOne(ctx,
		bson.M{"guild_id": gid},
		bson.M{"$addToSet": bson.M{"admin_roles": roleID}},
	)
	if err != nil {
		logrus.Warnf("Encountered error appending admin role to DB: %v", err)
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

//NextTicketNumber atomically claims the next ticket number for a guild.
func (db *Connection) NextTicketNumber(ctx context.Context, gid string) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before).SetUpsert(true)
	var guildObj guildmodels.GuildConfig
	err := db.database.Collection(guildsCollection).FindOneAndUpdate(ctx,
		bson.M{"guild_id": gid},
		bson.M{"$inc": bson.M{"tickets.next_number": 1}},
		opts,
	).Decode(&guildObj)
	if errors.Is(err, mongo.ErrNoDocuments) {
		//Upserted a fresh guild document; the first ticket is number 1
		return 1, nil
	}
	if err != nil {
		logrus.Warnf("Failed to claim ticket number for guild %v due to error %v", gid, err)
		return 0, fmt.Errorf("failed to claim ticket number for guild %v: %w", gid, err)
	}
	if guildObj.Tickets.NextNumber == 0 {
		return 1, nil
	}
	return guildObj.Tickets.NextNumber, nil
}
