package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"projectflow-api/internal/database"
	"projectflow-api/internal/realtime"
	"projectflow-api/internal/routes"
)

func main() {
	// Init database
	database.InitDB()

	// Start the realtime gateway (websocket registry + heartbeat monitor)
	gateway := realtime.NewGateway(realtime.DefaultConfig())
	gateway.Start()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(gateway)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: ginRoutes,
	}

	go func() {
		log.Printf("Server starting on port :%s", port)
		log.Printf("WebSocket endpoint: ws://localhost:%s/ws", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt, then close websocket connections before the listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	gateway.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
