package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

const (
	collectionCompanies    = "companies"
	collectionDistributors = "distributors"
)

// partnerStore holds the collection plumbing shared by companies and
// distributors, which are both addressed by their Mongo ObjectID.
type partnerStore struct {
	col      *mongo.Collection
	notFound error
}

func (s partnerStore) insert(ctx context.Context, doc any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s partnerStore) findByID(ctx context.Context, id string, out any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return s.notFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return s.notFound
		}
		return err
	}
	return nil
}

func (s partnerStore) update(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return s.notFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.notFound
	}
	return nil
}

func (s partnerStore) list(ctx context.Context, f ports.PartnerFilter, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = containsIgnoreCase(f.Name)
	}
	if f.Region != "" {
		filter["region"] = f.Region
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

func (s partnerStore) count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return s.col.CountDocuments(ctx, bson.M{})
}

type CompanyRepository struct {
	store partnerStore
}

func NewCompanyRepository(db *mongo.Database) *CompanyRepository {
	return &CompanyRepository{store: partnerStore{
		col:      db.Collection(collectionCompanies),
		notFound: domain.ErrCompanyNotFound,
	}}
}

func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	id, err := r.store.insert(ctx, c)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	c.ID = id
	return nil
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*domain.Company, error) {
	var c domain.Company
	if err := r.store.findByID(ctx, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) Update(ctx context.Context, c *domain.Company) error {
	return r.store.update(ctx, c.ID, bson.M{
		"name":           c.Name,
		"contact_person": c.ContactPerson,
		"email":          c.Email,
		"phone":          c.Phone,
		"address":        c.Address,
		"status":         c.Status,
		"updated_at":     c.UpdatedAt,
	})
}

func (r *CompanyRepository) List(ctx context.Context, f ports.PartnerFilter) ([]*domain.Company, error) {
	companies := make([]*domain.Company, 0)
	if err := r.store.list(ctx, f, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *CompanyRepository) Count(ctx context.Context) (int64, error) {
	return r.store.count(ctx)
}

type DistributorRepository struct {
	store partnerStore
}

func NewDistributorRepository(db *mongo.Database) *DistributorRepository {
	return &DistributorRepository{store: partnerStore{
		col:      db.Collection(collectionDistributors),
		notFound: domain.ErrDistributorNotFound,
	}}
}

func (r *DistributorRepository) Create(ctx context.Context, d *domain.Distributor) error {
	id, err := r.store.insert(ctx, d)
	if err != nil {
		return fmt.Errorf("insert distributor: %w", err)
	}
	d.ID = id
	return nil
}

func (r *DistributorRepository) FindByID(ctx context.Context, id string) (*domain.Distributor, error) {
	var d domain.Distributor
	if err := r.store.findByID(ctx, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DistributorRepository) Update(ctx context.Context, d *domain.Distributor) error {
	return r.store.update(ctx, d.ID, bson.M{
		"name":           d.Name,
		"contact_person": d.ContactPerson,
		"email":          d.Email,
		"phone":          d.Phone,
		"region":         d.Region,
		"status":         d.Status,
		"updated_at":     d.UpdatedAt,
	})
}

func (r *DistributorRepository) List(ctx context.Context, f ports.PartnerFilter) ([]*domain.Distributor, error) {
	distributors := make([]*domain.Distributor, 0)
	if err := r.store.list(ctx, f, &distributors); err != nil {
		return nil, err
	}
	return distributors, nil
}

func (r *DistributorRepository) Count(ctx context.Context) (int64, error) {
	return r.store.count(ctx)
}
