package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/loopline-app/loopline-api/config"
	"github.com/loopline-app/loopline-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@loopline.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, about, email_verified)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (email) DO UPDATE SET first_name=EXCLUDED.first_name, last_name=EXCLUDED.last_name
		RETURNING id
	`, email, hash, "Demo", "User", "Seeded demo account").Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	// Give the feed something to render on a fresh database
	var postCount int
	if err := db.QueryRow(`SELECT count(*) FROM posts WHERE author_id = $1`, id).Scan(&postCount); err != nil {
		log.Fatalf("failed to count posts: %v", err)
	}
	if postCount == 0 {
		var postID string
		if err := db.QueryRow(`
			INSERT INTO posts (author_id, content, images)
			VALUES ($1, $2, '[]')
			RETURNING id
		`, id, "Welcome to Loopline! This is the first post on your feed.").Scan(&postID); err != nil {
			log.Fatalf("failed to seed post: %v", err)
		}
		fmt.Printf("seeded post: id=%s\n", postID)
	}
}
