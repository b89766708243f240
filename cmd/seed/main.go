// Command main fills a development database with sample AU Connect data.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"auconnect/internal/config"
	"auconnect/internal/database"
	"auconnect/internal/middleware"
	"auconnect/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	comments := flag.Int("comments", 8, "Comments per post")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	clean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	middleware.ConfigureLogger(os.Stdout, cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if _, err := seed.Run(context.Background(), db, seed.Options{
		Users:           *numUsers,
		Posts:           *numPosts,
		CommentsPerPost: *comments,
		Seed:            *seedValue,
		Clean:           *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
