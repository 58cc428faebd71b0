package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/fekuna/omnipos-catalog-service/config"
)

var dir = flag.String("dir", "migrations", "directory with migration files")

func main() {
	flag.Parse()
	args := flag.Args()
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	_ = godotenv.Load()
	cfg := config.LoadEnv()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User,
		cfg.Postgres.Password, cfg.Postgres.DBName, cfg.Postgres.SSLMode,
	)

	db, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		log.Fatalf("migrate: open database: %v", err)
	}
	defer db.Close()

	if err := goose.Run(command, db, *dir, args[1:]...); err != nil {
		log.Fatalf("migrate: goose %s: %v", command, err)
	}
}
