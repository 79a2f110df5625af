package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sistema-pedidos/orders-api/internal/core/domain"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

const sequenceItems = "itens_pedido"

// OrderRepository implements ports.OrderStore on a single collection with
// embedded line items. InTx needs a replica set or sharded cluster.
type OrderRepository struct {
	client *mongo.Client
	db     *mongo.Database
	coll   *mongo.Collection
}

func NewOrderRepository(client *mongo.Client, db *mongo.Database) *OrderRepository {
	return &OrderRepository{client: client, db: db, coll: db.Collection(collectionOrders)}
}

type itemDoc struct {
	ID        int64                `bson:"id"`
	Quantity  int                  `bson:"quantidade"`
	Flavor    string               `bson:"sabor"`
	Size      string               `bson:"tamanho"`
	UnitPrice primitive.Decimal128 `bson:"preco_unitario"`
}

type orderDoc struct {
	ID        int64                `bson:"_id"`
	Status    string               `bson:"status"`
	OwnerID   int64                `bson:"usuario"`
	Price     primitive.Decimal128 `bson:"preco"`
	CreatedAt time.Time            `bson:"created_at"`
	Items     []itemDoc            `bson:"itens"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("%w: amount %s exceeds decimal128 precision", domain.ErrValidation, d)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode decimal %s: %w", v, err)
	}
	return d, nil
}

func itemToDoc(it *domain.LineItem) (itemDoc, error) {
	price, err := toDecimal128(it.UnitPrice)
	if err != nil {
		return itemDoc{}, err
	}
	return itemDoc{
		ID:        it.ID,
		Quantity:  it.Quantity,
		Flavor:    it.Flavor,
		Size:      it.Size,
		UnitPrice: price,
	}, nil
}

func (d itemDoc) toDomain(orderID int64) (domain.LineItem, error) {
	price, err := fromDecimal128(d.UnitPrice)
	if err != nil {
		return domain.LineItem{}, err
	}
	return domain.LineItem{
		ID:        d.ID,
		OrderID:   orderID,
		Quantity:  d.Quantity,
		Flavor:    d.Flavor,
		Size:      d.Size,
		UnitPrice: price,
	}, nil
}

func (d orderDoc) toDomain() (*domain.Order, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	items := make([]domain.LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		item, err := it.toDomain(d.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &domain.Order{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Status:    domain.OrderStatus(d.Status),
		Price:     price,
		Items:     items,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

// InTx runs fn inside a session transaction. The context handed to fn carries
// the session, so every call made with it joins the transaction.
func (r *OrderRepository) InTx(ctx context.Context, fn func(ctx context.Context, repo ports.OrderRepository) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx, r)
	})
	return err
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionOrders)
	if err != nil {
		return err
	}
	price, err := toDecimal128(order.Price)
	if err != nil {
		return err
	}

	doc := orderDoc{
		ID:        id,
		Status:    order.Status.String(),
		OwnerID:   order.OwnerID,
		Price:     price,
		CreatedAt: order.CreatedAt,
		Items:     []itemDoc{},
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	order.ID = id
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain()
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) FindByOwner(ctx context.Context, ownerID int64) ([]*domain.Order, error) {
	return r.find(ctx, bson.M{"usuario": ownerID})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	orders := make([]*domain.Order, 0)
	for cur.Next(ctx) {
		var doc orderDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		order, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) FindItem(ctx context.Context, itemID int64) (*domain.LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDoc
	opts := options.FindOne().SetProjection(bson.M{"itens": bson.M{"$elemMatch": bson.M{"id": itemID}}})
	if err := r.coll.FindOne(ctx, bson.M{"itens.id": itemID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	for _, it := range doc.Items {
		if it.ID == itemID {
			item, err := it.toDomain(doc.ID)
			if err != nil {
				return nil, err
			}
			return &item, nil
		}
	}
	return nil, domain.ErrItemNotFound
}

func (r *OrderRepository) InsertItem(ctx context.Context, item *domain.LineItem) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, sequenceItems)
	if err != nil {
		return err
	}
	item.ID = id

	doc, err := itemToDoc(item)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": item.OrderID}, bson.M{"$push": bson.M{"itens": doc}})
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) DeleteItem(ctx context.Context, itemID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"itens.id": itemID},
		bson.M{"$pull": bson.M{"itens": bson.M{"id": itemID}}},
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	return r.set(ctx, orderID, "status", status.String())
}

func (r *OrderRepository) UpdatePrice(ctx context.Context, orderID int64, price decimal.Decimal) error {
	v, err := toDecimal128(price)
	if err != nil {
		return err
	}
	return r.set(ctx, orderID, "preco", v)
}

func (r *OrderRepository) set(ctx context.Context, orderID int64, field string, value any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("update order %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// Delete removes the order document; its embedded items go with it.
func (r *OrderRepository) Delete(ctx context.Context, orderID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": orderID})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Total  int64  `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}

	counts := make(map[domain.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.OrderStatus(row.Status)] = row.Total
	}
	return counts, nil
}

var _ ports.OrderStore = (*OrderRepository)(nil)
