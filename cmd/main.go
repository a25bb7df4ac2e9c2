package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"crypto-alerts-bot/config"
	"crypto-alerts-bot/internal/database"
	"crypto-alerts-bot/internal/engine"
	"crypto-alerts-bot/internal/metrics"
	"crypto-alerts-bot/internal/price"
	"crypto-alerts-bot/internal/telegram"
	"crypto-alerts-bot/internal/watch"
	"crypto-alerts-bot/lib/translation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func init() {
	config.InitConfig()
	setupLogging()
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("starting crypto alerts bot...")
}

func main() {
	translation.Configure(config.GetString("lang"))

	db, err := database.Open(config.GetString("db_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	feed := price.NewBinanceFeed(config.GetString("binance_api_url"))
	eng := engine.New(db, feed)

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          config.GetString("telegram_bot_token"),
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
	}, eng, feed, db)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		s := <-sig
		log.Infof("received %s, shutting down...", s)
		cancel()
	}()

	errGroup, errCtx := errgroup.WithContext(ctx)

	errGroup.Go(func() error {
		return watch.NewWatcher(eng, feed, bot).Run(errCtx)
	})
	errGroup.Go(func() error {
		return watch.NewBroadcaster(db, feed, bot).Run(errCtx)
	})
	errGroup.Go(func() error {
		go func() {
			<-errCtx.Done()
			bot.StopReceivingUpdates()
		}()
		handleUpdates(errCtx, bot)
		return nil
	})

	go func() {
		if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
			log.Errorf("metrics and health server stopped: %v", err)
		}
	}()

	if err := errGroup.Wait(); err != nil {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Info("bot stopped")
}

func handleUpdates(ctx context.Context, bot *telegram.Bot) {
	for update := range bot.GetUpdatesChannel() {
		if update.CallbackQuery != nil {
			bot.HandleCallbackQuery(ctx, update.CallbackQuery)
			continue
		}

		if update.Message == nil || !update.Message.IsCommand() {
			log.Debug("received non-command update")
			continue
		}

		handleCommand(ctx, bot, update)
	}
}

func handleCommand(ctx context.Context, bot *telegram.Bot, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	text := bot.HandleUpdate(ctx, update)
	if text == "" {
		metrics.CommandsProcessed.Inc()
		return
	}

	err := bot.SendMessage(telegram.Message{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		MessageID: update.Message.MessageID,
	})
	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	} else {
		metrics.CommandsProcessed.Inc()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}
