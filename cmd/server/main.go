package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blogify/backend/internal/auth"
	"github.com/blogify/backend/internal/comment"
	"github.com/blogify/backend/internal/config"
	"github.com/blogify/backend/internal/middleware"
	"github.com/blogify/backend/internal/post"
	"github.com/blogify/backend/internal/store"
	"github.com/blogify/backend/internal/user"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	db := mongoClient.Database(cfg.MongoDB)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("mongo indexes: %v", err)
	}
	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	comments := store.NewCommentStore(db)

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()

	// ── MinIO ────────────────────────────────────────────────
	images, err := store.NewImageStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Fatalf("minio connect: %v", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	authHandler := auth.NewHandler(auth.NewService(users, tokens, logger))
	userHandler := user.NewHandler(users, logger)
	postHandler := post.NewHandler(posts, images, logger)
	commentHandler := comment.NewHandler(comments, logger)

	requireAuth := middleware.RequireAuth(tokens)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public, rate-limited)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(rdb, 10, time.Minute, logger))
		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
	})

	// User routes
	r.Route("/api/user", func(r chi.Router) {
		r.Post("/signout", authHandler.Signout)
		r.With(requireAuth, middleware.RequireAdmin).Get("/getusers", userHandler.GetUsers)
		r.With(requireAuth).Put("/update/{userId}", userHandler.Update)
		r.With(requireAuth).Delete("/delete/{userId}", userHandler.Delete)
		r.Get("/{userId}", userHandler.Get)
	})

	// Post routes
	r.Route("/api/post", func(r chi.Router) {
		r.Get("/getposts", postHandler.GetPosts)
		r.Get("/image/{key}", postHandler.Image)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireAdmin)
			r.Post("/create", postHandler.Create)
			r.Post("/upload", postHandler.UploadImage)
			r.Put("/updatepost/{postId}/{userId}", postHandler.Update)
			r.Delete("/deletepost/{postId}/{userId}", postHandler.Delete)
		})
	})

	// Comment routes
	r.Route("/api/comment", func(r chi.Router) {
		r.Get("/getPostComments/{postId}", commentHandler.GetPostComments)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/create", commentHandler.Create)
			r.Put("/likeComment/{commentId}", commentHandler.Like)
			r.Put("/editComment/{commentId}", commentHandler.Edit)
			r.Delete("/deleteComment/{commentId}", commentHandler.Delete)
			r.With(middleware.RequireAdmin).Get("/getcomments", commentHandler.GetComments)
		})
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("API listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
