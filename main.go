package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"managme-project/backend/handlers"
	"managme-project/backend/logging"
	"managme-project/backend/middleware"
	"managme-project/backend/services"
	"managme-project/backend/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting ManagMe backend...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "managme"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	tasksCollection := db.Collection("tasks")
	projectsCollection := db.Collection("projects")
	usersCollection := db.Collection("users")

	httpClient := utils.NewHTTPClient()
	notificationsBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notifications-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	notifier := services.NewNotifier(httpClient, notificationsBreaker, os.Getenv("NOTIFICATIONS_SERVICE_URL"))

	taskService := services.NewTaskService(tasksCollection, usersCollection, notifier)
	projectService := services.NewProjectService(projectsCollection, taskService)
	userService := services.NewUserService(usersCollection)

	taskHandler := handlers.NewTaskHandler(taskService, userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	userHandler := handlers.NewUserHandler(userService)
	loginHandler := handlers.NewLoginHandler(userService)

	r := mux.NewRouter()

	// Public auth routes.
	r.HandleFunc("/api/login", loginHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/register", loginHandler.Register).Methods(http.MethodPost)

	// Everything else requires a valid session.
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.JWTAuthMiddleware(userService))

	protected.HandleFunc("/users", userHandler.GetAllUsers).Methods(http.MethodGet)
	protected.HandleFunc("/users/assignable", userHandler.GetAssignableUsers).Methods(http.MethodGet)
	protected.HandleFunc("/users/me", userHandler.GetCurrentUser).Methods(http.MethodGet)
	protected.HandleFunc("/users/me", userHandler.UpdateProfile).Methods(http.MethodPut)

	protected.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	protected.HandleFunc("/projects", projectHandler.GetAllProjects).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{projectID}", projectHandler.GetProjectByID).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{projectID}", projectHandler.UpdateProject).Methods(http.MethodPut)
	protected.HandleFunc("/projects/{projectID}", projectHandler.DeleteProject).Methods(http.MethodDelete)

	protected.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/project/{projectId}", taskHandler.GetTasksByProject).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/project/{projectId}/board", taskHandler.GetKanbanBoard).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/status", taskHandler.ChangeTaskStatus).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/drop", taskHandler.DropTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{taskID}", taskHandler.GetTaskByID).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{taskID}", taskHandler.UpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	protected.HandleFunc("/tasks/{taskID}/move-right", taskHandler.MoveTaskRight).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{taskID}/assign", taskHandler.AssignUser).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{taskID}/worked-hours", taskHandler.SetWorkedHours).Methods(http.MethodPost)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
