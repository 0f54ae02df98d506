package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/agenda/internal/agenda"
	"github.com/alexanderramin/agenda/internal/cli"
	"github.com/alexanderramin/agenda/internal/config"
	"github.com/alexanderramin/agenda/internal/db"
	"github.com/alexanderramin/agenda/internal/repository"
	"github.com/alexanderramin/agenda/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	sched, err := cfg.Scheduler()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Prefer ./templates during development when no directory is configured.
	templateDir := cfg.TemplatesDir
	if os.Getenv("AGENDA_TEMPLATES") == "" {
		if stat, err := os.Stat("./templates"); err == nil && stat.IsDir() {
			templateDir = "./templates"
		}
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	itemRepo := repository.NewSQLiteItemRepo(database)
	historyRepo := repository.NewSQLiteHistoryRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	agendaSvc := service.NewAgendaService(itemRepo, historyRepo, uow, agenda.Options{
		Scheduler:     sched,
		HistoryLimit:  cfg.HistoryLimit,
		AutosaveDelay: cfg.AutosaveDelay(),
		Actor:         cfg.Actor,
	}, observers...)

	app := &cli.App{
		Agenda:    agendaSvc,
		Templates: service.NewTemplateService(templateDir, agendaSvc, observers...),
		Location:  sched.Location,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}
