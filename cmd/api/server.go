package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rosterly/internal/api/handlers/invitations"
	"rosterly/internal/api/handlers/organizations"
	"rosterly/internal/api/handlers/users"
	mw "rosterly/internal/api/middlewares"
	"rosterly/internal/api/routers"
	"rosterly/internal/repositories/sqlconnect"
	"rosterly/internal/services"
	"rosterly/internal/store"
	cronjobs "rosterly/pkg/cron"
	"rosterly/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Warn("No .env file found, relying on process environment")
	}

	utils.InitLogger()

	if err := sqlconnect.ConnectDb(); err != nil {
		utils.Logger.Fatal("DB connection failed: ", err)
	}
	db := sqlconnect.DB

	st := store.NewMySQL(db)

	membershipService := services.NewMembershipService(st, utils.Logger)

	// When MEMBERSHIP_SERVICE_URL is set the propagator crosses the service
	// boundary over HTTP; otherwise it admits members in-process. Either way
	// the admission call is the same idempotent operation.
	var members services.MembershipCaller = membershipService
	if os.Getenv("MEMBERSHIP_SERVICE_URL") != "" {
		client, err := services.NewMembershipClient()
		if err != nil {
			utils.Logger.Fatal("Membership client setup failed: ", err)
		}
		members = client
	}

	propagator := services.NewAcceptancePropagator(members, st, st, services.MailEscalationNotifier{}, utils.Logger)
	invitationService := services.NewInvitationService(st, propagator, utils.Logger)

	router := routers.MainRouter(
		invitations.NewHandler(invitationService),
		organizations.NewHandler(db, membershipService),
		users.NewHandler(db),
	)
	secureMux := mw.RequestLogger(mw.SecurityHeaders(router))

	scheduler := cronjobs.StartCronJobs(invitationService, propagator)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = ":8080"
	}

	server := &http.Server{
		Addr:    port,
		Handler: secureMux,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	go func() {
		cert := os.Getenv("CERT_FILE")
		key := os.Getenv("KEY_FILE")

		var err error
		if cert != "" && key != "" {
			utils.Logger.Infof("Server is running on port %s (TLS)", port)
			err = server.ListenAndServeTLS(cert, key)
		} else {
			utils.Logger.Infof("Server is running on port %s", port)
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("Error starting the server: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	utils.Logger.Info("Shutting down...")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		utils.Logger.Errorf("Server shutdown failed: %v", err)
	}

	if err := db.Close(); err != nil {
		utils.Logger.Errorf("DB close failed: %v", err)
	}
}
