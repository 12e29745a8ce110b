package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"makao/bootstrap"
	btsConfig "makao/config"
	"makao/pkg/config"
	"makao/pkg/queue"
	"makao/pkg/reconcile"
	"makao/pkg/schedule"

	"github.com/gin-gonic/gin"
)

// load the configuration sections
func init() {
	btsConfig.Initialize()
}

// App application context, used for graceful shutdown.
type App struct {
	server    *http.Server
	worker    *queue.Worker
	scheduler *schedule.Scheduler
}

func main() {
	env := parseFlags()

	app, err := setupApplication(env)
	if err != nil {
		log.Fatalf("application setup failed: %v", err)
	}

	app.start()
}

// parseFlags returns the environment suffix from the command line.
func parseFlags() string {
	var env string
	flag.StringVar(&env, "env", "", "load an .env file, e.g. --env=testing loads .env.testing")
	flag.Parse()
	return env
}

// setupApplication initializes every component in dependency order.
func setupApplication(env string) (*App, error) {
	config.InitConfig(env)

	bootstrap.SetupLogger()
	bootstrap.SetupDB()
	bootstrap.SetupRedis()

	notifications := bootstrap.SetupQueue()

	var app App
	var notifier reconcile.Notifier
	if notifications != nil {
		app.worker = notifications.Worker
		notifier = notifications.Notifier
	}

	stack := bootstrap.SetupPayment(notifier)
	app.scheduler = bootstrap.SetupScheduler(stack, notifications)

	router := setupServer(stack)
	app.server = &http.Server{
		Addr:    ":" + config.Get("app.port"),
		Handler: router,
	}

	return &app, nil
}

// setupServer configures the Gin engine.
func setupServer(stack *bootstrap.PaymentStack) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	bootstrap.SetupRoute(router, stack.Controller, stack.Callbacks)

	return router
}

// start runs the server and handles graceful shutdown.
func (a *App) start() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server starting on %s\n", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}

	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.worker != nil {
		a.worker.Stop()
	}

	log.Println("server stopped")
}
