package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/model"
)

// ResponseRepo handles MongoDB operations for submitted responses
type ResponseRepo interface {
	Upsert(ctx context.Context, response *model.Response) error
	GetByID(ctx context.Context, id string) (*model.Response, error)
	GetBySurveyAndUser(ctx context.Context, surveyID, userID string) (*model.Response, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]model.Response, error)
	DeleteBySurvey(ctx context.Context, surveyID string) (int64, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

// Upsert replaces the user's previous submission; no history is kept
func (r *responseRepo) Upsert(ctx context.Context, response *model.Response) error {
	response.ID = model.ResponseID(response.SurveyID, response.UserID)

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": response.ID}, response, opts)
	return err
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*model.Response, error) {
	var response model.Response
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&response)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepo) GetBySurveyAndUser(ctx context.Context, surveyID, userID string) (*model.Response, error) {
	return r.GetByID(ctx, model.ResponseID(surveyID, userID))
}

func (r *responseRepo) ListBySurvey(ctx context.Context, surveyID string) ([]model.Response, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"surveyId": surveyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	responses := []model.Response{}
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) DeleteBySurvey(ctx context.Context, surveyID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"surveyId": surveyID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
