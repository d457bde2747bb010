package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"fear-maze/internal/app"
	"fear-maze/internal/config"
	"fear-maze/internal/logger"
	"fear-maze/internal/persistence"
)

var (
	configPath = flag.String("config", "", "путь к файлу конфигурации")
	seed       = flag.Int64("seed", 0, "сид первого уровня, 0 - случайный")
	skipCalib  = flag.Bool("skip-calibration", false, "начать сразу с уровня")
	history    = flag.Int("history", 0, "показать последние N забегов и выйти")
)

func main() {
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Не удалось загрузить конфигурацию: %v. Используется конфигурация по умолчанию.\n", err)
		cfg = config.DefaultConfig()
	}
	if *seed != 0 {
		cfg.Level.Seed = *seed
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	if *history > 0 {
		if err := printHistory(cfg.Storage.Path, *history); err != nil {
			fmt.Fprintf(os.Stderr, "Ошибка чтения архива: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Создаем игру
	game, err := app.NewGame(cfg, !*skipCalib)
	if err != nil {
		logger.Log.WithError(err).Error("Ошибка создания игры")
		os.Exit(1)
	}

	// Запускаем игру
	if err := game.Run(); err != nil {
		logger.Log.WithError(err).Error("Ошибка во время игры")
		os.Exit(1)
	}
}

// printHistory выводит последние забеги из архива
func printHistory(path string, limit int) error {
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	stats, err := db.Stats()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	fmt.Printf("%s runs, %s victories, best score %s\n\n",
		humanize.Comma(int64(stats.Runs)), humanize.Comma(int64(stats.Victories)), humanize.Comma(int64(stats.BestScore)))
	for _, r := range runs {
		fmt.Printf("%-16s %-15s keys %d/%d  %6.0fs  score %7s  seed %d\n",
			humanize.Time(r.Created()), r.Outcome, r.KeysFound, r.KeysRequired,
			r.Elapsed, humanize.Comma(int64(r.Score)), r.Seed)
	}
	return nil
}
