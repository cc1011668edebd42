package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/model"
)

// SurveyRepo handles MongoDB operations for surveys
type SurveyRepo interface {
	Create(ctx context.Context, survey *model.Survey) error
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	List(ctx context.Context) ([]model.SurveyListItem, error)
	Replace(ctx context.Context, survey *model.Survey) error
	Delete(ctx context.Context, id string) error
}

type surveyRepo struct {
	collection *mongo.Collection
}

// NewSurveyRepo creates a new survey repository
func NewSurveyRepo(db *mongo.Database) SurveyRepo {
	return &surveyRepo{
		collection: db.Collection("surveys"),
	}
}

func (r *surveyRepo) Create(ctx context.Context, survey *model.Survey) error {
	now := time.Now().UTC()
	survey.CreatedAt = now
	survey.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, survey)
	return err
}

func (r *surveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	var survey model.Survey
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&survey)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *surveyRepo) List(ctx context.Context) ([]model.SurveyListItem, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "title": 1}).
		SetSort(bson.D{{Key: "title", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []model.SurveyListItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Replace overwrites the whole document, creating it if needed
func (r *surveyRepo) Replace(ctx context.Context, survey *model.Survey) error {
	survey.UpdatedAt = time.Now().UTC()
	if survey.CreatedAt.IsZero() {
		survey.CreatedAt = survey.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": survey.ID}, survey, opts)
	return err
}

func (r *surveyRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
