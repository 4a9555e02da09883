package main

import (
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/checkin-api/internal/cache"
	"github.com/yukikurage/checkin-api/internal/config"
	"github.com/yukikurage/checkin-api/internal/constants"
	"github.com/yukikurage/checkin-api/internal/database"
	"github.com/yukikurage/checkin-api/internal/handlers"
	"github.com/yukikurage/checkin-api/internal/middleware"
	"github.com/yukikurage/checkin-api/internal/repository"
	"github.com/yukikurage/checkin-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	log.SetFormatter(&log.JSONFormatter{})
	if cfg.GinMode != "release" {
		log.SetLevel(log.DebugLevel)
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,              // Redis pool size
		"tcp",           // network type
		cfg.RedisAddr(), // Redis address from config
		"",              // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Project snapshot mirror shares the session Redis instance.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	snapshots := cache.NewRedisSnapshotStore(redisClient, 24*time.Hour)

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	checkInRepo := repository.NewCheckInRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo, snapshots)
	checkInService := services.NewCheckInService(checkInRepo, snapshots)
	membershipService := services.NewMembershipService(projectRepo, userRepo, membershipRepo, snapshots)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	checkInHandler := handlers.NewCheckInHandler(checkInService, projectService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Team Check-In API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.PATCH("/me", middleware.RequireAuth(), authHandler.UpdateProfile)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/public", projectHandler.ListPublicProjects)
			projects.POST("/join", projectHandler.JoinByInviteCode)
			projects.POST("/:id/join", projectHandler.JoinPublicProject)
			projects.POST("/:id/join-requests", membershipHandler.RequestToJoin)
			projects.GET("/:id/join-requests/me", membershipHandler.GetMyJoinRequest)

			member := projects.Group("/:id")
			member.Use(middleware.RequireProjectAccess())
			{
				member.GET("", projectHandler.GetProject)
				member.GET("/snapshot", projectHandler.GetProjectSnapshot)
				member.POST("/leave", projectHandler.LeaveProject)

				member.POST("/checkins", checkInHandler.CreateCheckIn)
				member.GET("/checkins", checkInHandler.ListCheckIns)
				member.DELETE("/checkins/today", checkInHandler.CancelTodayCheckIn)
				member.GET("/streak", checkInHandler.GetStreak)

				member.POST("/invitations", membershipHandler.InviteMember)
				member.DELETE("/invitations/:invitation_id", membershipHandler.CancelInvitation)

				owner := member.Group("")
				owner.Use(middleware.RequireProjectOwner())
				{
					owner.PATCH("", projectHandler.UpdateProject)
					owner.DELETE("", projectHandler.DeleteProject)
					owner.POST("/archive", projectHandler.ArchiveProject)
					owner.POST("/restore", projectHandler.RestoreProject)
					owner.POST("/regenerate-code", projectHandler.RegenerateInviteCode)
					owner.DELETE("/members/:user_id", projectHandler.RemoveMember)
					owner.POST("/stats/snapshot", checkInHandler.MaterializeDailyStat)
					owner.GET("/join-requests", membershipHandler.ListJoinRequests)
					owner.POST("/join-requests/:request_id/approve", membershipHandler.ApproveJoinRequest)
					owner.POST("/join-requests/:request_id/reject", membershipHandler.RejectJoinRequest)
					owner.GET("/invitation-history", membershipHandler.ListInvitationHistory)
				}
			}
		}

		// Invitation routes addressed to the current user
		invitations := api.Group("/invitations")
		invitations.Use(middleware.RequireAuth())
		{
			invitations.GET("", membershipHandler.ListMyInvitations)
			invitations.POST("/:invitation_id/accept", membershipHandler.AcceptInvitation)
		}
	}

	// Start server
	log.Infof("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
