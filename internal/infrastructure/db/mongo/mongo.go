package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const defaultTimeout = 10 * time.Second

// ErrTransactionsUnsupported is returned by Connect when the deployment is a
// standalone server. Sale commits need multi-document transactions.
var ErrTransactionsUnsupported = errors.New("mongo deployment does not support transactions: use a replica set or sharded cluster")

// Config captures the settings required to establish a MongoDB connection.
type Config struct {
	URI         string
	Database    string
	Timeout     time.Duration
	MaxPoolSize uint64
}

// Connect establishes a MongoDB client, verifies connectivity and transaction
// support, and returns both the client and the selected database. Reads and
// writes default to majority so committed sales survive a primary failover.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout).
		SetAppName("pos-system").
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority())
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	if err := checkTransactions(connectCtx, client); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, err
	}

	return client, client.Database(cfg.Database), nil
}

// helloReply holds the fields of the hello command that reveal topology.
type helloReply struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

func checkTransactions(ctx context.Context, client *mongo.Client) error {
	var reply helloReply
	err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&reply)
	if err != nil {
		return fmt.Errorf("mongo hello: %w", err)
	}
	if !supportsTransactions(reply) {
		return ErrTransactionsUnsupported
	}
	return nil
}

// supportsTransactions reports whether the server is a replica set member or
// a mongos router.
func supportsTransactions(r helloReply) bool {
	return r.SetName != "" || r.Msg == "isdbgrid"
}
