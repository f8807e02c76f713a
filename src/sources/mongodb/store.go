// Package mongodb is the entity store on a MongoDB replica set. Operations that run inside
// RunInTransaction share one session transaction.
package mongodb

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

var log *zap.Logger

func init() {
	log, _ = zap.NewProduction()
	log = log.With(zap.String("logger", "srcMongo"))
}

const (
	configCollection   = "vault_config"
	projectCollection  = "vault_projects"
	managerCollection  = "vault_managers"
	orderCollection    = "vault_orders"
	configDocumentID   = "config"
	defaultConnTimeout = 10 * time.Second
)

// Connect dials the replica set. local connects directly to a single node.
func Connect(ctx context.Context, url string, local bool, connectTimeout time.Duration) (*mongo.Client, error) {
	if connectTimeout == 0 {
		connectTimeout = defaultConnTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().SetDirect(local).
		SetReadPreference(readpref.Primary()).
		SetWriteConcern(writeconcern.New(writeconcern.WMajority())).
		SetRetryWrites(true).
		SetReplicaSet("rs0").
		SetConnectTimeout(connectTimeout).ApplyURI(url))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "mongo ping")
	}
	return client, nil
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// RunInTransaction commits when fn returns nil and aborts otherwise. A nested call joins
// the session already in ctx. Transient failures are not retried: fn may have submitted
// a settlement.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	return mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(); err != nil {
			return errors.Wrap(err, "start transaction")
		}
		if err := fn(sc); err != nil {
			if abortErr := session.AbortTransaction(sc); abortErr != nil {
				log.Warn("abort transaction", zap.Error(abortErr))
			}
			return err
		}
		if err := session.CommitTransaction(sc); err != nil {
			log.Error("commit after settlement failed", zap.Error(err))
			return errors.Wrap(err, "commit transaction")
		}
		return nil
	})
}

func (s *Store) find(ctx context.Context, collection string, id string, what string, into interface{}) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(into)
	if err == mongo.ErrNoDocuments {
		return errcode.Newf(errcode.AccountNotFound, "%s %s", what, id)
	}
	return errors.Wrapf(err, "find %s %s", what, id)
}

func (s *Store) replace(ctx context.Context, collection string, id string, doc interface{}) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "save %s %s", collection, id)
}

func (s *Store) GetConfig(ctx context.Context) (*models.Config, error) {
	var doc configDocument
	if err := s.find(ctx, configCollection, configDocumentID, "config", &doc); err != nil {
		return nil, err
	}
	return doc.model()
}

// SaveConfig keeps the singleton under a fixed id; the PDA address is a field.
func (s *Store) SaveConfig(ctx context.Context, config *models.Config) error {
	return s.replace(ctx, configCollection, configDocumentID, fromConfig(config))
}

func (s *Store) GetProject(ctx context.Context, address solana.PublicKey) (*models.Project, error) {
	var doc projectDocument
	if err := s.find(ctx, projectCollection, address.String(), "project", &doc); err != nil {
		return nil, err
	}
	return doc.model()
}

func (s *Store) SaveProject(ctx context.Context, project *models.Project) error {
	doc := fromProject(project)
	return s.replace(ctx, projectCollection, doc.ID, doc)
}

func (s *Store) GetManager(ctx context.Context, address solana.PublicKey) (*models.Manager, error) {
	var doc managerDocument
	if err := s.find(ctx, managerCollection, address.String(), "manager", &doc); err != nil {
		return nil, err
	}
	return doc.model()
}

func (s *Store) SaveManager(ctx context.Context, manager *models.Manager) error {
	doc := fromManager(manager)
	return s.replace(ctx, managerCollection, doc.ID, doc)
}

func (s *Store) GetOrder(ctx context.Context, address solana.PublicKey) (*models.Order, error) {
	var doc orderDocument
	if err := s.find(ctx, orderCollection, address.String(), "order", &doc); err != nil {
		return nil, err
	}
	return doc.model()
}

func (s *Store) SaveOrder(ctx context.Context, order *models.Order) error {
	doc := fromOrder(order)
	return s.replace(ctx, orderCollection, doc.ID, doc)
}

func (s *Store) DeleteOrder(ctx context.Context, address solana.PublicKey) error {
	res, err := s.db.Collection(orderCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: address.String()}})
	if err != nil {
		return errors.Wrapf(err, "delete order %s", address)
	}
	if res.DeletedCount == 0 {
		return errcode.Newf(errcode.AccountNotFound, "order %s", address)
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context, manager solana.PublicKey) ([]*models.Order, error) {
	cur, err := s.db.Collection(orderCollection).Find(ctx,
		bson.D{{Key: "manager", Value: manager.String()}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "list orders of %s", manager)
	}
	defer cur.Close(ctx)

	var orders []*models.Order
	for cur.Next(ctx) {
		var doc orderDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode order")
		}
		order, err := doc.model()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, errors.Wrap(cur.Err(), "iterate orders")
}
