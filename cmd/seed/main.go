package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/seed"
)

func main() {

	cfg := config.LoadConfig()

	var password string
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	fs.StringVar(&password, "password", "", "demo user password")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-password", "--password"}))

	password, err := seed.ResolvePassword(password, os.Stdout)
	if err != nil {
		log.Fatalf("password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if _, err := seed.NewSeeder(db, m, os.Stdout).Run(ctx, password); err != nil {
		log.Printf("seed failed: %v", err)
		return
	}

	log.Println("Database seeded successfully")
}
