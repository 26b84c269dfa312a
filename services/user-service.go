package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"managme-project/backend/logging"
	"managme-project/backend/models"
	"managme-project/backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type UserService struct {
	usersCollection *mongo.Collection

	mu          sync.Mutex
	subscribers map[int]func(*models.User)
	nextSubID   int
}

func NewUserService(usersCollection *mongo.Collection) *UserService {
	return &UserService{
		usersCollection: usersCollection,
		subscribers:     make(map[int]func(*models.User)),
	}
}

// Register stores a new user with a hashed password. Unknown or missing
// roles default to guest, the read-only role.
func (s *UserService) Register(ctx context.Context, user models.User, password string) (*models.User, error) {
	if user.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if !user.Role.IsValid() {
		user.Role = models.RoleGuest
	}

	count, err := s.usersCollection.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %v", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("user with email %s already exists", user.Email)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}
	user.ID = primitive.NewObjectID()
	user.Password = hash

	if _, err := s.usersCollection.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: Registered user %s with role %s", user.Email, user.Role)
	return &user, nil
}

// Authenticate checks credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.findUsers(ctx, bson.M{})
}

// GetAssignableUsers returns the users eligible as task assignees.
func (s *UserService) GetAssignableUsers(ctx context.Context) ([]models.User, error) {
	filter := bson.M{"role": bson.M{"$in": []models.UserRole{models.RoleDeveloper, models.RoleDevOps}}}
	return s.findUsers(ctx, filter)
}

func (s *UserService) findUsers(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := s.usersCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %v", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}
	return users, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %v", err)
	}
	return &user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %v", err)
	}
	return &user, nil
}

// GetOrCreateProfile resolves a session email to its profile. A valid
// session whose profile row is gone (for example a user deleted after
// the token was issued) degrades to a minimal read-only guest profile
// instead of locking the caller out.
func (s *UserService) GetOrCreateProfile(ctx context.Context, email string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		logging.Logger.Warnf("Event ID: PROFILE_MISSING, Description: No profile found for %s, using minimal guest profile", email)
		return models.NewGuestProfile(email), nil
	}
	return user, err
}

// UpdateProfile edits a user's name and notifies profile subscribers.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, firstName, lastName string) (*models.User, error) {
	update := bson.M{"$set": bson.M{"firstName": firstName, "lastName": lastName}}
	result, err := s.usersCollection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.notifySubscribers(user)
	return user, nil
}

// Subscribe registers a callback invoked after every profile update. The
// returned function removes the subscription.
func (s *UserService) Subscribe(callback func(*models.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = callback
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *UserService) notifySubscribers(user *models.User) {
	s.mu.Lock()
	callbacks := make([]func(*models.User), 0, len(s.subscribers))
	for _, cb := range s.subscribers {
		callbacks = append(callbacks, cb)
	}
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(user)
	}
}
