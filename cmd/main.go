package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/cancel_booking"
	createBlackoutHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/create_blackout"
	createBookingHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/create_booking"
	deleteBlackoutHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/delete_blackout"
	getAvailableSlotsHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/get_customer_bookings"
	getDayBookingsHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/get_day_bookings"
	getScheduleHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/get_schedule"
	getSubscriptionUsageHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/get_subscription_usage"
	updateBookingStatusHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/update_booking_status"
	updateScheduleHandler "github.com/pawly/PGS-BookingService/internal/api/handlers/update_schedule"
	"github.com/pawly/PGS-BookingService/internal/api/middleware"
	"github.com/pawly/PGS-BookingService/internal/config"
	bookingRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/booking"
	catalogRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/catalog"
	scheduleRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/schedule"
	subscriptionRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/subscription"
	bookingsService "github.com/pawly/PGS-BookingService/internal/service/bookings"
	scheduleService "github.com/pawly/PGS-BookingService/internal/service/schedule"
	createBookingUC "github.com/pawly/PGS-BookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/pawly/PGS-BookingService/internal/usecase/get_available_slots"
	getSubscriptionUsageUC "github.com/pawly/PGS-BookingService/internal/usecase/get_subscription_usage"
	"github.com/pawly/PGS-BookingService/pkg/dbmetrics"
	"github.com/pawly/PGS-BookingService/pkg/logger"
	"github.com/pawly/PGS-BookingService/pkg/metrics"
	"github.com/pawly/PGS-BookingService/pkg/simpletxmanager"
	"github.com/pawly/PGS-BookingService/pkg/txmanager"
)

// runMigrations применяет goose миграции из каталога migrations
func runMigrations(dsn string, log *logger.Logger) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return err
	}

	log.Info("Database migrations applied")
	return nil
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting PGS-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Референсная таймзона салона: в ней парсятся даты и вычисляется день недели
	salonLocation, err := cfg.Salon.Location()
	if err != nil {
		log.Fatal("Failed to load salon timezone: %v", err)
	}
	log.Info("Salon timezone: %s", salonLocation)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Применяем миграции до открытия основного пула
	if err := runMigrations(cfg.Database.DSN(), log); err != nil {
		log.Fatal("Failed to run migrations: %v", err)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository      *bookingRepo.Repository
		scheduleRepository     *scheduleRepo.Repository
		subscriptionRepository *subscriptionRepo.Repository
		catalogRepository      *catalogRepo.Repository
	)

	// Интерфейс transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		subscriptionRepository = subscriptionRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		subscriptionRepository = subscriptionRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	scheduleSvc := scheduleService.NewService(scheduleRepository, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		subscriptionRepository,
		catalogRepository,
		txMgr,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		scheduleRepository,
		bookingRepository,
		log,
	)

	getSubscriptionUsageUseCase := getSubscriptionUsageUC.NewUseCase(
		subscriptionRepository,
		catalogRepository,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, salonLocation, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, salonLocation, log)
	getSubscriptionUsage := getSubscriptionUsageHandler.NewHandler(getSubscriptionUsageUseCase, salonLocation, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getDayBookings := getDayBookingsHandler.NewHandler(bookingSvc, salonLocation, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)
	createBlackout := createBlackoutHandler.NewHandler(scheduleSvc, log)
	deleteBlackout := deleteBlackoutHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Сквозной request id для трассировки
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты на дату
	api.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Недельное расписание салона
	api.HandleFunc("/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Рабочий журнал дня (регистрируется до /bookings/{bookingId})
	protected.HandleFunc("/bookings/day", getDayBookings.Handle).Methods(http.MethodGet)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Переход статуса (начать обслуживание / завершить / no-show)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// --- Клиенты ---
	// История бронирований клиента
	protected.HandleFunc("/customers/{customerId}/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)

	// Отчет о потреблении абонемента
	protected.HandleFunc("/customers/{customerId}/subscription-usage", getSubscriptionUsage.Handle).Methods(http.MethodGet)

	// --- Управление расписанием (для сотрудников) ---
	// Замена шаблона дня недели
	protected.HandleFunc("/schedule/{weekday}", updateSchedule.Handle).Methods(http.MethodPut)

	// Блэкауты
	protected.HandleFunc("/blackouts", createBlackout.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/blackouts/{id}", deleteBlackout.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
