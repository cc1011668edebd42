package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"surveyflow/internal/config"
	"surveyflow/internal/engine"
	"surveyflow/internal/logger"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
	"surveyflow/internal/service"
)

const (
	seedSurveyID = "survey_smartphone_feedback"
	seedAdminID  = "admin_dev"
	seedUserID   = "user_dev"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Log.Level, cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		zapLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.Mongo.Database)
	repository.EnsureIndexes(ctx, db, zapLogger)

	survey := sampleSurvey()
	if err := engine.ValidateSurvey(survey); err != nil {
		zapLogger.Fatal("Seed survey is invalid", zap.Error(err))
	}
	if err := repository.NewSurveyRepo(db).Replace(ctx, survey); err != nil {
		zapLogger.Fatal("Failed to store survey", zap.Error(err))
	}

	userRepo := repository.NewUserRepo(db)
	authSvc := service.NewAuthService(cfg.Auth, userRepo, zapLogger)

	if _, err := userRepo.Ensure(ctx, seedUserID, "user@example.com"); err != nil {
		zapLogger.Fatal("Failed to create user", zap.Error(err))
	}
	if _, err := userRepo.Ensure(ctx, seedAdminID, "admin@example.com"); err != nil {
		zapLogger.Fatal("Failed to create admin", zap.Error(err))
	}

	// The admin role rides on the token so no profile edit is needed
	adminToken, err := authSvc.IssueToken(seedAdminID, "admin@example.com", model.RoleAdmin)
	if err != nil {
		zapLogger.Fatal("Failed to issue admin token", zap.Error(err))
	}
	userToken, err := authSvc.IssueToken(seedUserID, "user@example.com", model.RoleUser)
	if err != nil {
		zapLogger.Fatal("Failed to issue user token", zap.Error(err))
	}

	fmt.Printf("Seeded survey '%s' (%s)\n\n", survey.Title, survey.ID)
	fmt.Printf("Admin token (%s):\n%s\n\n", seedAdminID, adminToken)
	fmt.Printf("User token (%s):\n%s\n", seedUserID, userToken)
}

func sampleSurvey() *model.Survey {
	now := time.Now().UTC()
	return &model.Survey{
		ID:        seedSurveyID,
		Title:     "Smartphone Launch Feedback",
		CreatedBy: seedAdminID,
		CreatedAt: now,
		UpdatedAt: now,
		Pages: []model.Page{
			{
				Title: "About You",
				Questions: []model.Question{
					{
						ID:              "customerName",
						Label:           "Customer Name",
						Type:            model.QuestionTypeText,
						Options:         []string{},
						BackgroundColor: model.BackgroundDefault,
					},
					{
						ID:              "model",
						Label:           "Which model did you purchase?",
						Type:            model.QuestionTypeDropdown,
						Options:         []string{"Standard", "Plus", "Pro"},
						BackgroundColor: model.BackgroundDefault,
					},
					{
						ID:              "issues",
						Label:           "Did you run into any problems?",
						Type:            model.QuestionTypeRadio,
						Options:         []string{"Yes", "No"},
						BackgroundColor: model.BackgroundYellow,
					},
					{
						ID:              "issueAreas",
						Label:           "Where were the problems?",
						Description:     "Select **all** that apply",
						Type:            model.QuestionTypeCheckbox,
						Options:         []string{"Battery", "Camera", "Screen", "Software"},
						BackgroundColor: model.BackgroundRed,
						VisibleIf:       &model.VisibleIf{QuestionID: "issues", Value: model.TextValue("Yes")},
					},
					{
						ID:              "issueDetails",
						Label:           "Tell us what happened",
						Type:            model.QuestionTypeTextarea,
						Options:         []string{},
						BackgroundColor: model.BackgroundRed,
						VisibleIf: &model.VisibleIf{
							Operator: model.OperatorAnd,
							Conditions: []model.Condition{
								{QuestionID: "issues", Value: model.TextValue("Yes")},
								{QuestionID: "model", Value: model.TextValue("Pro")},
							},
						},
					},
				},
			},
			{
				Title: "Wrap Up",
				Questions: []model.Question{
					{
						ID:              "thanks",
						Label:           "Almost done",
						Description:     "*Thank you* for helping us improve.\nOne last question.",
						Type:            model.QuestionTypeNone,
						Options:         []string{},
						BackgroundColor: model.BackgroundGreen,
					},
					{
						ID:              "improve",
						Label:           "What is one thing you would change?",
						Type:            model.QuestionTypeTextarea,
						Options:         []string{},
						BackgroundColor: model.BackgroundDefault,
					},
				},
			},
		},
	}
}
