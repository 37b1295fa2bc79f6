package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/collegeos/internal/assignments"
	"github.com/collegeos/internal/attendance"
	"github.com/collegeos/internal/authentication"
	"github.com/collegeos/internal/avatars"
	"github.com/collegeos/internal/calendars"
	httpx "github.com/collegeos/internal/http"
	"github.com/collegeos/internal/keys"
	"github.com/collegeos/internal/sessions"
	"github.com/collegeos/internal/statistics"
	"github.com/collegeos/internal/students"
	"github.com/collegeos/internal/telegram"
	"github.com/collegeos/internal/timetable"
	"github.com/collegeos/internal/timezone"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("[ERROR] load .env: %s", err)
	}

	addr := flag.String("address", ":http", "http address to listen to")
	dbPath := flag.String("database-path", "collegeos.db", "path to the database")
	key := flag.String("encryption-key", "please-change-me", "encryption key for session cookies")
	schedule := flag.String("schedule", "config.xml", "path or http(s) url of the timetable document")
	googleClientID := flag.String("google-client-id", "", "oauth client id accepted as id token audience")
	emailDomain := flag.String("email-domain", "rjit.ac.in", "email domain allowed to sign in, empty allows any")
	institutePrefix := flag.String("institute-prefix", "0902", "enrollment number prefix")
	sectionEven := flag.String("section-even", "A", "section of enrollment numbers ending with an even digit")
	sectionOdd := flag.String("section-odd", "B", "section of enrollment numbers ending with an odd digit")
	zone := flag.String("timezone", "Asia/Kolkata", "campus time zone")
	telegramToken := flag.String("telegram-token", "", "telegram bot token, empty disables the bot")
	telegramAdminChat := flag.Int64("telegram-admin-chat", 0, "telegram chat receiving warning and error logs, 0 disables")
	flag.Parse()

	overrideFromEnv("ENCRYPTION_KEY", key)
	overrideFromEnv("SCHEDULE", schedule)
	overrideFromEnv("GOOGLE_CLIENT_ID", googleClientID)
	overrideFromEnv("TELEGRAM_TOKEN", telegramToken)
	if env := os.Getenv("TELEGRAM_ADMIN_CHAT"); env != "" {
		chatID, err := strconv.ParseInt(env, 10, 64)
		if err != nil {
			log.Fatalf("[ERROR] TELEGRAM_ADMIN_CHAT: %s", err)
		}
		*telegramAdminChat = chatID
	}

	encryptionKey, err := keys.ParseKey([]byte(*key))
	if err != nil {
		log.Fatalf("[ERROR] encryption-key: %s", err)
	}

	clock, err := timezone.NewClock(*zone)
	if err != nil {
		log.Fatalf("[ERROR] timezone: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: new(slog.LevelVar),
	}))

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithLogger(nil))
	if err != nil {
		log.Fatalf("[ERROR] db: %s", err)
	}
	defer db.Close()

	var telegramAPI *tgbotapi.BotAPI
	if *telegramToken != "" {
		telegramAPI, err = tgbotapi.NewBotAPI(*telegramToken)
		if err != nil {
			log.Fatalf("[ERROR] telegram: %s", err)
		}
		if *telegramAdminChat != 0 {
			notifier := telegram.NewNotifier(telegramAPI, *telegramAdminChat)
			logger = slog.New(telegram.NewSlogHandler(notifier, logger.Handler()))
		}
	}
	slog.SetDefault(logger)

	timetables := timetable.NewProvider(logger, timetable.NewLoader(logger, *schedule))
	// A failed load is logged and leaves the empty timetable in place.
	_ = timetables.Reload(ctx)
	go reloadOnHangup(ctx, timetables)

	if telegramAPI != nil {
		bot := telegram.NewBot(telegramAPI, telegram.NewStore(db), timetables, clock)
		go func() {
			if err := bot.Listen(ctx); err != nil {
				logger.Error("telegram listen", "error", err)
			}
		}()
	}

	studentsStore := students.NewStore(db)
	parser := students.NewParser(
		*emailDomain,
		*institutePrefix,
		students.ParityRule{Even: *sectionEven, Odd: *sectionOdd},
		clock.Now,
	)
	authenticationService := authentication.NewService(
		logger,
		authentication.NewGoogleVerifier(*googleClientID),
		parser,
		studentsStore,
		sessions.NewStore(db),
	)
	attendanceService := attendance.NewService(logger, studentsStore, timetables, clock)
	assignmentsService := assignments.NewService(logger, assignments.NewStore(db), timetables)
	calendarsService := calendars.NewService(calendars.NewStore(db), studentsStore, timetables, clock)
	statisticsService := statistics.NewService(timetables, clock)

	handler := httpx.Handler(
		logger,
		encryptionKey,
		clock,
		timetables,
		authenticationService,
		attendanceService,
		assignmentsService,
		avatars.NewStore(db),
		calendarsService,
		statisticsService,
	)

	httpServer := http.Server{
		Handler: handler,
	}

	// Wait for shut down in a separate goroutine.
	errCh := make(chan error)
	go func() {
		shutdownCh := make(chan os.Signal, 1)
		signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdownCh

		logger.Info("shutting down", "signal", sig.String())
		cancel()

		shutdownTimeout := 15 * time.Second
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		errCh <- httpServer.Shutdown(shutdownCtx)
	}()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("[ERROR] tcp: %s", err)
	}
	logger.Info("listening", "address", ln.Addr().String())

	if err := httpServer.Serve(ln); err != http.ErrServerClosed {
		logger.Error("http serve", "error", err)
	}

	if err := <-errCh; err != nil {
		logger.Error("shutdown", "error", err)
	}

	logger.Info("application stopped")
}

func overrideFromEnv(name string, value *string) {
	if env := os.Getenv(name); env != "" {
		*value = env
	}
}

// reloadOnHangup reloads the timetable document on SIGHUP.
func reloadOnHangup(ctx context.Context, timetables *timetable.Provider) {
	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hupCh:
			_ = timetables.Reload(ctx)
		}
	}
}
