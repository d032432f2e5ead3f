package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/mindengage-progression/internal/api/http"
	auth "github.com/mind-engage/mindengage-progression/internal/auth/middleware"
	"github.com/mind-engage/mindengage-progression/internal/certificate"
	"github.com/mind-engage/mindengage-progression/internal/config"
	"github.com/mind-engage/mindengage-progression/internal/course"
	"github.com/mind-engage/mindengage-progression/internal/db"
	"github.com/mind-engage/mindengage-progression/internal/progress"
	"github.com/mind-engage/mindengage-progression/internal/quiz"
	"github.com/mind-engage/mindengage-progression/internal/rbac"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.Load()

	// --- DB ---
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	cancel()
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	// --- Domain ---
	catalog := course.NewSQLCatalog(dbh)
	answers := quiz.NewSQLStore(dbh, nil)
	certs := certificate.NewService(catalog, certificate.NewSQLStore(dbh), cfg.CertificateBaseURL, nil)
	svc := progress.NewService(catalog, answers, certs)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL)
	users := auth.NewSQLUsers(dbh)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Local login (enabled in offline mode by default; can be enabled online via env)
	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, users))
	}

	// Public: QR code target printed on certificates
	r.Get("/certificates/{number}/verify", api.VerifyCertificateHandler(certs))

	// Protected API (JWT → role from DB → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(users, cfg.Mode == config.ModeOffline))

		// Activity quizzes
		pr.With(rbac.Require(rbac.PermProgressView)).
			Get("/activities/{activityID}/quiz/status", api.ActivityQuizStatusHandler(svc))
		pr.With(rbac.Require(rbac.PermQuizAnswer)).
			Delete("/activities/{activityID}/quiz/answers", api.ClearActivityAnswersHandler(svc))
		pr.With(rbac.Require(rbac.PermQuizAnswer)).
			Post("/quiz/answers", api.SaveQuizAnswerHandler(svc))

		// Final exam
		pr.With(rbac.Require(rbac.PermProgressView)).
			Get("/courses/{courseID}/final-exam/status", api.FinalExamStatusHandler(svc))
		pr.With(rbac.Require(rbac.PermExamAnswer)).
			Post("/final-exam/answers", api.SubmitFinalExamAnswerHandler(svc))

		// Progression and certification
		pr.With(rbac.Require(rbac.PermProgressView)).
			Get("/courses/{courseID}/progression", api.ProgressionHandler(svc))
		pr.With(rbac.Require(rbac.PermCertificateView)).
			Get("/courses/{courseID}/certification", api.CertificationHandler(svc))
		pr.With(rbac.Require(rbac.PermCertificateView)).
			Get("/courses/{courseID}/certificate", api.CertificateHandler(svc))

		pr.With(rbac.Require(rbac.PermChangePassword)).
			Post("/users/change-password", auth.ChangePasswordHandler(users))
	})

	r.Get("/healthz", api.HealthHandler())
	r.Get("/readyz", api.ReadyHandler(dbh))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()
	go func() {
		<-stop.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http: %v", err)
	}
}
