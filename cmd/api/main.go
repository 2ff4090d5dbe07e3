package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/vantagecrm/api/internal/activity"
	"github.com/vantagecrm/api/internal/auth"
	"github.com/vantagecrm/api/internal/client"
	"github.com/vantagecrm/api/internal/config"
	"github.com/vantagecrm/api/internal/database"
	"github.com/vantagecrm/api/internal/deal"
	"github.com/vantagecrm/api/internal/document"
	"github.com/vantagecrm/api/internal/lead"
	"github.com/vantagecrm/api/internal/meeting"
	"github.com/vantagecrm/api/internal/middleware"
	"github.com/vantagecrm/api/internal/note"
	"github.com/vantagecrm/api/internal/task"
	"github.com/vantagecrm/api/internal/user"
)

func main() {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	auth.Configure(cfg.JWTSecret, cfg.AccessTTL)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&user.User{},
		&lead.Lead{},
		&client.Client{},
		&deal.Deal{},
		&activity.Activity{},
		&note.Note{},
		&task.Task{},
		&meeting.Meeting{},
		&document.Document{},
	); err != nil {
		log.Fatal("auto-migration failed", zap.Error(err))
	}

	userHandler := user.NewHandler(db, log)
	leadHandler := lead.NewHandler(lead.NewService(db, log))
	clientHandler := client.NewHandler(db, log)
	dealHandler := deal.NewHandler(deal.NewService(db, log))
	noteHandler := note.NewHandler(db, log)
	taskHandler := task.NewHandler(db, log)
	meetingHandler := meeting.NewHandler(db, log)
	documentHandler := document.NewHandler(db, log)

	r := mux.NewRouter()
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger(log))

	// Public routes
	r.HandleFunc("/auth/login", userHandler.Login).Methods("POST")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Authenticated routes
	api := r.NewRoute().Subrouter()
	api.Use(auth.Middleware)

	// Users
	api.HandleFunc("/users", userHandler.List).Methods("GET")
	api.HandleFunc("/users/{id}", userHandler.Get).Methods("GET")
	api.HandleFunc("/users/{id}", userHandler.Update).Methods("PUT")
	api.HandleFunc("/users/me/password", userHandler.ChangePassword).Methods("PUT")

	// Leads
	api.HandleFunc("/leads", leadHandler.Create).Methods("POST")
	api.HandleFunc("/leads", leadHandler.List).Methods("GET")
	api.HandleFunc("/leads/stats", leadHandler.Stats).Methods("GET")
	api.HandleFunc("/leads/{id}", leadHandler.Get).Methods("GET")
	api.HandleFunc("/leads/{id}", leadHandler.Update).Methods("PUT")
	api.HandleFunc("/leads/{id}", leadHandler.Delete).Methods("DELETE")
	api.HandleFunc("/leads/{id}/convert", leadHandler.Convert).Methods("POST")
	api.HandleFunc("/leads/{id}/activities", leadHandler.Activities).Methods("GET")

	// Clients
	api.HandleFunc("/clients", clientHandler.Create).Methods("POST")
	api.HandleFunc("/clients", clientHandler.List).Methods("GET")
	api.HandleFunc("/clients/{id}", clientHandler.Get).Methods("GET")
	api.HandleFunc("/clients/{id}", clientHandler.Update).Methods("PUT")
	api.HandleFunc("/clients/{id}/activities", clientHandler.ListActivities).Methods("GET")

	// Deals
	api.HandleFunc("/clients/{id}/deals", dealHandler.Create).Methods("POST")
	api.HandleFunc("/deals", dealHandler.List).Methods("GET")
	api.HandleFunc("/deals/{id}", dealHandler.Get).Methods("GET")
	api.HandleFunc("/deals/{id}", dealHandler.Update).Methods("PUT")
	api.HandleFunc("/deals/{id}", dealHandler.SoftDelete).Methods("DELETE")
	api.HandleFunc("/deals/{id}/restore", dealHandler.Restore).Methods("POST")

	// Notes
	api.HandleFunc("/leads/{id}/notes", noteHandler.CreateForLead).Methods("POST")
	api.HandleFunc("/leads/{id}/notes", noteHandler.ListForLead).Methods("GET")
	api.HandleFunc("/clients/{id}/notes", noteHandler.CreateForClient).Methods("POST")
	api.HandleFunc("/clients/{id}/notes", noteHandler.ListForClient).Methods("GET")
	api.HandleFunc("/notes/{id}", noteHandler.Delete).Methods("DELETE")

	// Tasks
	api.HandleFunc("/leads/{id}/tasks", taskHandler.CreateForLead).Methods("POST")
	api.HandleFunc("/leads/{id}/tasks", taskHandler.ListForLead).Methods("GET")
	api.HandleFunc("/clients/{id}/tasks", taskHandler.CreateForClient).Methods("POST")
	api.HandleFunc("/clients/{id}/tasks", taskHandler.ListForClient).Methods("GET")
	api.HandleFunc("/tasks/{id}", taskHandler.Delete).Methods("DELETE")

	// Meetings
	api.HandleFunc("/leads/{id}/meetings", meetingHandler.CreateForLead).Methods("POST")
	api.HandleFunc("/leads/{id}/meetings", meetingHandler.ListForLead).Methods("GET")
	api.HandleFunc("/clients/{id}/meetings", meetingHandler.CreateForClient).Methods("POST")
	api.HandleFunc("/clients/{id}/meetings", meetingHandler.ListForClient).Methods("GET")
	api.HandleFunc("/meetings/{id}", meetingHandler.Delete).Methods("DELETE")

	// Documents
	api.HandleFunc("/leads/{id}/documents", documentHandler.CreateForLead).Methods("POST")
	api.HandleFunc("/leads/{id}/documents", documentHandler.ListForLead).Methods("GET")
	api.HandleFunc("/clients/{id}/documents", documentHandler.CreateForClient).Methods("POST")
	api.HandleFunc("/clients/{id}/documents", documentHandler.ListForClient).Methods("GET")
	api.HandleFunc("/documents/{id}", documentHandler.Delete).Methods("DELETE")

	// Admin-only routes
	admin := r.NewRoute().Subrouter()
	admin.Use(auth.Middleware, auth.RequireAdmin)
	admin.HandleFunc("/users", userHandler.Create).Methods("POST")
	admin.HandleFunc("/clients/{id}/lifetime-value", clientHandler.OverrideLifetimeValue).Methods("PUT")

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
	}).Handler(r)

	log.Info("server listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
