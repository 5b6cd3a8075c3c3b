package store

import (
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kart-io/herald/internal/model"
	genericoptions "github.com/kart-io/herald/pkg/options/postgres"
)

var (
	clientFactory Factory
	once          sync.Once
)

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

// NewFactory wraps an existing gorm connection. Tests use this with an
// in-memory database.
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// GetFactory opens the PostgreSQL connection described by opts and returns
// the shared storage factory.
func GetFactory(opts *genericoptions.Options) (Factory, error) {
	var err error

	once.Do(func() {
		var db *gorm.DB

		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			opts.Host, opts.Port, opts.Username, opts.Password, opts.Database, opts.SSLMode)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.LogLevel(opts.LogLevel)),
		})
		if err != nil {
			return
		}

		raw, rerr := db.DB()
		if rerr != nil {
			err = rerr
			return
		}
		raw.SetMaxIdleConns(opts.MaxIdleConnections)
		raw.SetMaxOpenConns(opts.MaxOpenConnections)
		raw.SetConnMaxLifetime(opts.MaxConnectionLifeTime)

		ds := &datastore{db: db}
		if err = ds.AutoMigrate(); err != nil {
			return
		}
		clientFactory = ds
	})

	if clientFactory == nil || err != nil {
		return nil, fmt.Errorf("failed to get postgres factory: %w", err)
	}

	return clientFactory, nil
}

// Items returns the raw item store.
func (ds *datastore) Items() ItemStore {
	return newItems(ds.db)
}

// Sources returns the feed source store.
func (ds *datastore) Sources() SourceStore {
	return newSources(ds.db)
}

// Translations returns the translation store.
func (ds *datastore) Translations() TranslationStore {
	return newTranslations(ds.db)
}

// Users returns the LINE user store.
func (ds *datastore) Users() UserStore {
	return newUsers(ds.db)
}

// Quotas returns the daily quota store.
func (ds *datastore) Quotas() QuotaStore {
	return newQuotas(ds.db)
}

// Queries returns the user query store.
func (ds *datastore) Queries() QueryStore {
	return newQueries(ds.db)
}

// Pushes returns the push message store.
func (ds *datastore) Pushes() PushStore {
	return newPushes(ds.db)
}

// WebhookEvents returns the webhook event store.
func (ds *datastore) WebhookEvents() WebhookEventStore {
	return newWebhookEvents(ds.db)
}

// AgentRuns returns the agent run store.
func (ds *datastore) AgentRuns() AgentRunStore {
	return newAgentRuns(ds.db)
}

// RAGSpaces returns the tenant retrieval space store.
func (ds *datastore) RAGSpaces() RAGSpaceStore {
	return newRAGSpaces(ds.db)
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.Source{},
		&model.RawItem{},
		&model.ItemTranslation{},
		&model.User{},
		&model.DailyQuotaUsage{},
		&model.UserQuery{},
		&model.PushMessage{},
		&model.WebhookEvent{},
		&model.AgentRun{},
		&model.RAGSpace{},
	)
}

// Close closes the factory and underlying connections.
func (ds *datastore) Close() error {
	raw, err := ds.db.DB()
	if err != nil {
		return err
	}
	return raw.Close()
}
