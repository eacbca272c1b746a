package main

import (
	"log"

	"shearzone/config"
	telegram "shearzone/internal/api"
	"shearzone/internal/container"
	"shearzone/internal/infrastructure/imageio"
	"shearzone/internal/infrastructure/morphology"
	"shearzone/internal/infrastructure/report"
	"shearzone/internal/infrastructure/segmentation"
	"shearzone/internal/infrastructure/storage"
	"shearzone/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Config: %v (defaults are used)", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	images := imageio.NewProcessor()

	quantifier, err := morphology.NewQuantifier(morphology.DefaultConnectivity)
	if err != nil {
		log.Fatalf("Failed to create quantifier: %v", err)
	}

	projects, err := storage.NewFileProjectStore(cfg.ProjectDir, images)
	if err != nil {
		log.Fatalf("Failed to open project store: %v", err)
	}

	// Собираем сервисы приложения
	appContainer := container.New(container.Deps{
		Sessions:   storage.NewMemorySessionRepository(cfg.SessionDefaults()),
		Images:     images,
		Analyzer:   segmentation.NewCombiner(),
		Registrar:  vision.NewRegistrar(),
		Quantifier: quantifier,
		Reporter:   report.NewReporter(10),
		Projects:   projects,
	})

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, cfg.PreviewMaxSide)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	log.Println("Bot is running...")
	if err := bot.Run(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
