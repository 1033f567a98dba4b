package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hospital/pharmacy-api/internal/core/domain"
)

const collectionPrescriptions = "prescriptions"

type PrescriptionRepository struct {
	col *mongo.Collection
}

func NewPrescriptionRepository(db *mongo.Database) *PrescriptionRepository {
	return &PrescriptionRepository{col: db.Collection(collectionPrescriptions)}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *domain.Prescription) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert prescription: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

// FindByID looks a prescription up by its business identifier.
func (r *PrescriptionRepository) FindByID(ctx context.Context, id string) (*domain.Prescription, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Prescription
	if err := r.col.FindOne(ctx, bson.M{"prescription_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrescriptionNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByStatus returns prescriptions in status, oldest first.
func (r *PrescriptionRepository) ListByStatus(ctx context.Context, status domain.PrescriptionStatus) ([]*domain.Prescription, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"status": status}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	prescriptions := make([]*domain.Prescription, 0)
	if err := cur.All(ctx, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (r *PrescriptionRepository) CountByStatus(ctx context.Context, status domain.PrescriptionStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"status": status})
}

// MarkFilled only matches ACTIVE documents, so a prescription cannot be
// filled twice even under concurrent requests.
func (r *PrescriptionRepository) MarkFilled(ctx context.Context, p *domain.Prescription) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"prescription_id": p.PrescriptionID, "status": domain.PrescriptionActive},
		bson.M{"$set": bson.M{
			"status":     p.Status,
			"filled_by":  p.FilledBy,
			"filled_at":  p.FilledAt,
			"updated_at": p.UpdatedAt,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, p.PrescriptionID); err != nil {
			return err
		}
		return domain.ErrPrescriptionNotActive
	}
	return nil
}

func (r *PrescriptionRepository) Reopen(ctx context.Context, prescriptionID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"prescription_id": prescriptionID, "status": domain.PrescriptionCompleted},
		bson.M{
			"$set":   bson.M{"status": domain.PrescriptionActive, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"filled_by": "", "filled_at": ""},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPrescriptionNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the prescriptions collection.
func (r *PrescriptionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "prescription_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
