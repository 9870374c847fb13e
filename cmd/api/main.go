package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yamilyscapa/skyhr-sub000/internal/config"
	appHTTP "github.com/Yamilyscapa/skyhr-sub000/internal/handler/http"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/cron"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/database"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/face"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/jwt"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/token"
	"github.com/Yamilyscapa/skyhr-sub000/internal/repository/postgresql"
	attendanceService "github.com/Yamilyscapa/skyhr-sub000/internal/service/attendance"
	scheduleService "github.com/Yamilyscapa/skyhr-sub000/internal/service/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	eventRepo := postgresql.NewAttendanceRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	geofenceRepo := postgresql.NewGeofenceRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db, cfg.Attendance.DefaultTimezone)
	membershipRepo := postgresql.NewMembershipRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	codec, err := token.NewCodec(cfg.Attendance.TokenSecret)
	if err != nil {
		log.Fatal("Failed to initialize token codec:", err)
	}

	recognizer := face.NewClient(cfg.Face.APIURL, cfg.Face.APIKey, cfg.Face.Timeout)
	verifier := face.NewVerifier(recognizer, face.Thresholds{
		MatchThreshold:    cfg.Face.MatchThreshold,
		MinSharpness:      cfg.Face.MinSharpness,
		BrightnessMin:     cfg.Face.BrightnessMin,
		BrightnessMax:     cfg.Face.BrightnessMax,
		LivenessThreshold: cfg.Face.LivenessThreshold,
	})

	resolver := scheduleService.NewResolver(scheduleRepo)
	attendanceSvc := attendanceService.NewAttendanceService(
		eventRepo,
		membershipRepo,
		geofenceRepo,
		settingsRepo,
		resolver,
		codec,
		verifier,
		cfg.Attendance.DefaultTimezone,
	)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	router := appHTTP.NewRouter(JWTService, attendanceHandler)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, db).RegisterJobs(scheduler)
	scheduler.Start()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Println("Forced shutdown:", err)
	}
}
