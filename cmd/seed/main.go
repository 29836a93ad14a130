package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/bomberos-dev/guardias/backend/internal/config"
	"github.com/bomberos-dev/guardias/backend/internal/repository"
	"github.com/bomberos-dev/guardias/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var withSchema bool
	var withDemo bool

	flag.BoolVar(&withSchema, "schema", true, "crear el esquema (tablas, índices y restricción de exclusión)")
	flag.BoolVar(&withDemo, "demo", false, "cargar grupos, bomberos y una semana de guardias de demostración")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuración", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("no se pudo crear el pool de conexiones", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not connect; ping to fail fast on a bad DSN
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("no se pudo conectar a la base de datos", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	if withSchema {
		if err := seed.CreateSchema(dbpool); err != nil {
			logger.Error("no se pudo crear el esquema", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("esquema creado")
	}

	if withDemo {
		if err := seed.InsertDemoData(dbpool, repo); err != nil {
			logger.Error("no se pudieron cargar los datos de demostración", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("datos de demostración cargados")
	}
}
