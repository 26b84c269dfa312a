package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"managme-project/backend/logging"
	"managme-project/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectService struct {
	projectsCollection *mongo.Collection
	taskService        *TaskService
}

func NewProjectService(projectsCollection *mongo.Collection, taskService *TaskService) *ProjectService {
	return &ProjectService{
		projectsCollection: projectsCollection,
		taskService:        taskService,
	}
}

// CreateProject stores a new project owned by the given user.
func (s *ProjectService) CreateProject(ctx context.Context, name, description string, ownerID primitive.ObjectID) (*models.Project, error) {
	project := &models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.projectsCollection.InsertOne(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %v", err)
	}
	return project, nil
}

func (s *ProjectService) GetAllProjects(ctx context.Context) ([]models.Project, error) {
	cursor, err := s.projectsCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve projects: %v", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %v", err)
	}
	return projects, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.projectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve project: %v", err)
	}
	return &project, nil
}

// UpdateProject edits a project's name and description. Owner and
// creation time are immutable.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID primitive.ObjectID, name, description string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	update := bson.M{"$set": bson.M{"name": name, "description": description}}
	result, err := s.projectsCollection.UpdateOne(ctx, bson.M{"_id": projectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrProjectNotFound
	}
	return s.GetProjectByID(ctx, projectID)
}

// DeleteProject removes a project together with its tasks.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID primitive.ObjectID) error {
	result, err := s.projectsCollection.DeleteOne(ctx, bson.M{"_id": projectID})
	if err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrProjectNotFound
	}

	deleted, err := s.taskService.DeleteTasksByProject(ctx, projectID.Hex())
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_TASK_CLEANUP_FAILED, Description: Project %s deleted but task cleanup failed: %v", projectID.Hex(), err)
		return nil
	}
	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Deleted project %s and %d tasks", projectID.Hex(), deleted)
	return nil
}
