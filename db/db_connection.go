package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const dbURIEnvVar string = "HIBIKI_MONGO_URI"
const dbNameDefault string = "hibiki"
const dbNameEnvVar string = "HIBIKI_DB_NAME"
const connectTimeout = 10 * time.Second

const guildsCollection string = "guilds"
const roleMenusCollection string = "rolemenus"
const ticketsCollection string = "tickets"

//Connection contains a handle to the database
type Connection struct {
	client   *mongo.Client
	database *mongo.Database
}

//Init creates a new connection pool for the database at the address provided by the relevant environment variable
func Init() (*Connection, error) {
	//Get DB name from env
	dbName, exists := os.LookupEnv(dbNameEnvVar)
	if !exists {
		logrus.Warnf("DB name was not provided, falling back to default `%v`", dbNameDefault)
		dbName = dbNameDefault
	}
	//Get DB address from env
	mongoURI, exists := os.LookupEnv(dbURIEnvVar)
	if !exists {
		logrus.Errorf("`%v` env variable was not set.", dbURIEnvVar)
		return nil, fmt.Errorf("`%v` env variable was not set", dbURIEnvVar)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logrus.Errorf("Failed to create connection to mongodb instance at %v because %v.", mongoURI, err)
		return nil, fmt.Errorf("failed to create connection to mongodb instance because %v", err)
	}
	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		logrus.Errorf("Failed to reach mongodb instance at %v because %v.", mongoURI, err)
		return nil, fmt.Errorf("failed to reach mongodb instance because %v", err)
	}

	res := Connection{
		client:   client,
		database: client.Database(dbName),
	}

	res.ensureIndexes(ctx)

	return &res, nil
}

//Close cleanly terminates the database connection
func (db *Connection) Close() {
	logrus.Info("Terminating DB connection...")
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	_ = db.client.Disconnect(ctx)
}

//ensureIndexes creates the unique and lookup indexes the collections rely on.
func (db *Connection) ensureIndexes(ctx context.Context) {
	_, err := db.database.Collection(guildsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "guild_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logrus.Warnf("Failed to create guilds index due to error %v", err)
	}
	_, err = db.database.Collection(roleMenusCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "message_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logrus.Warnf("Failed to create role menus index due to error %v", err)
	}
	_, err = db.database.Collection(ticketsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "guild_id", Value: 1}, {Key: "channel_id", Value: 1}},
	})
	if err != nil {
		logrus.Warnf("Failed to create tickets index due to error %v", err)
	}
}
