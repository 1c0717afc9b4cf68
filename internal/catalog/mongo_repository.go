package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

// menuItemDoc is the BSON shape; prices are stored as strings so no float
// precision is lost in the database.
type menuItemDoc struct {
	ID          string     `bson:"_id"`
	Name        string     `bson:"name"`
	Description string     `bson:"description,omitempty"`
	Price       string     `bson:"price"`
	Category    string     `bson:"category,omitempty"`
	AddOns      []addOnDoc `bson:"add_ons,omitempty"`
	Available   bool       `bson:"available"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

type addOnDoc struct {
	Name  string `bson:"name"`
	Price string `bson:"price"`
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{collection: db.Collection("menu_items")}
}

// ConnectMongoDB opens and pings a mongo connection.
func ConnectMongoDB(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client.Database(dbName), nil
}

func (m *mongoRepository) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	var doc menuItemDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}

	item, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (m *mongoRepository) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	cursor, err := m.collection.Find(ctx, bson.M{"available": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.MenuItem
	for cursor.Next(ctx) {
		var doc menuItemDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode menu item: %w", err)
		}
		item, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return items, nil
}

func (d menuItemDoc) toDomain() (*domain.MenuItem, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price for menu item %s: %w", d.ID, err)
	}

	addOns := make([]domain.AddOn, 0, len(d.AddOns))
	for _, a := range d.AddOns {
		p, err := decimal.NewFromString(a.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid add-on price for menu item %s: %w", d.ID, err)
		}
		addOns = append(addOns, domain.AddOn{Name: a.Name, Price: p})
	}
	if len(addOns) == 0 {
		addOns = nil
	}

	return &domain.MenuItem{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Category:    d.Category,
		AddOns:      addOns,
		Available:   d.Available,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}
