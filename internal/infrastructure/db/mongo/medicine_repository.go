package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

const collectionMedicines = "medicines"

type MedicineRepository struct {
	col *mongo.Collection
}

func NewMedicineRepository(db *mongo.Database) *MedicineRepository {
	return &MedicineRepository{col: db.Collection(collectionMedicines)}
}

func (r *MedicineRepository) Create(ctx context.Context, m *domain.Medicine) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid.Hex()
	}
	return nil
}

func (r *MedicineRepository) FindByMedicineID(ctx context.Context, medicineID string) (*domain.Medicine, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m domain.Medicine
	if err := r.col.FindOne(ctx, bson.M{"medicine_id": medicineID}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMedicineNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Update rewrites the mutable fields of m. Identity and creation time stay.
func (r *MedicineRepository) Update(ctx context.Context, m *domain.Medicine) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":                  m.Name,
		"description":           m.Description,
		"category":              m.Category,
		"company_id":            m.CompanyID,
		"price":                 m.Price,
		"stock":                 m.Stock,
		"stock_status":          m.StockStatus,
		"dosage":                m.Dosage,
		"side_effects":          m.SideEffects,
		"expiry_date":           m.ExpiryDate,
		"batch_number":          m.BatchNumber,
		"prescription_required": m.PrescriptionRequired,
		"updated_at":            m.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"medicine_id": m.MedicineID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrMedicineNotFound
	}
	return nil
}

func (r *MedicineRepository) Delete(ctx context.Context, medicineID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"medicine_id": medicineID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrMedicineNotFound
	}
	return nil
}

// List returns medicines matching f sorted by name.
func (r *MedicineRepository) List(ctx context.Context, f ports.MedicineFilter) ([]*domain.Medicine, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, medicineQuery(f), options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	medicines := make([]*domain.Medicine, 0)
	if err := cur.All(ctx, &medicines); err != nil {
		return nil, err
	}
	return medicines, nil
}

func (r *MedicineRepository) Count(ctx context.Context, f ports.MedicineFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, medicineQuery(f))
}

// DecrementStock takes qty units in a single conditional update so two
// concurrent fills cannot drive stock negative.
func (r *MedicineRepository) DecrementStock(ctx context.Context, medicineID string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.adjustStock(ctx, bson.M{"medicine_id": medicineID, "stock": bson.M{"$gte": qty}}, medicineID, -qty)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.col.CountDocuments(ctx, bson.M{"medicine_id": medicineID})
		if cerr != nil {
			return cerr
		}
		if n == 0 {
			return domain.ErrMedicineNotFound
		}
		return domain.ErrInsufficientStock
	}
	return err
}

func (r *MedicineRepository) IncrementStock(ctx context.Context, medicineID string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.adjustStock(ctx, bson.M{"medicine_id": medicineID}, medicineID, qty)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrMedicineNotFound
	}
	return err
}

// adjustStock applies delta to the matched medicine and refreshes its
// derived stock status.
func (r *MedicineRepository) adjustStock(ctx context.Context, filter bson.M, medicineID string, delta int) error {
	var m domain.Medicine
	err := r.col.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$inc": bson.M{"stock": delta}, "$set": bson.M{"updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return err
	}

	_, err = r.col.UpdateOne(ctx,
		bson.M{"medicine_id": medicineID},
		bson.M{"$set": bson.M{"stock_status": domain.StockStatusFor(m.Stock)}},
	)
	return err
}

// EnsureIndexes creates necessary indexes on the medicines collection.
func (r *MedicineRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "medicine_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "stock_status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func medicineQuery(f ports.MedicineFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if len(f.StockStatuses) > 0 {
		filter["stock_status"] = bson.M{"$in": f.StockStatuses}
	}
	if f.PrescriptionRequired != nil {
		filter["prescription_required"] = *f.PrescriptionRequired
	}
	if f.Keyword != "" {
		rx := containsIgnoreCase(f.Keyword)
		filter["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"category": rx},
			bson.M{"description": rx},
		}
	}
	return filter
}

// containsIgnoreCase matches s literally anywhere in a field.
func containsIgnoreCase(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
