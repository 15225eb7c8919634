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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	activateSubscriptionHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/activate_subscription"
	cancelBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_booking"
	createServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_service"
	deleteServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_service"
	expireSubscriptionHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/expire_subscription"
	getBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking"
	getCompanyAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_company_availability"
	getServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_service"
	getTimeSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_time_slots"
	listAdminServicesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_admin_services"
	listCompanyBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_company_bookings"
	listMyBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_my_bookings"
	listServicesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_services"
	rescheduleBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_booking"
	setServiceAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/set_service_availability"
	todayBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/today_bookings"
	toggleServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/toggle_service"
	updateBookingStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_booking_status"
	updateServiceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_service"
	upsertCompanyAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/upsert_company_availability"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/slotlock"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	availabilityService "github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	catalogService "github.com/m04kA/SMC-AppointmentService/internal/service/catalog"
	subscriptionsService "github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions"
	createBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	getTimeSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_time_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// lockWait сколько запрос ждет занятую блокировку слота, прежде чем вернуть 409
const lockWait = 2 * time.Second

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load(config.DefaultPath)
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

	log.Info("Starting SMC-AppointmentService...")

	// Инициализируем метрики (если включены)
	// nil *metrics.Metrics безопасен: все методы Observe* его проверяют
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
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

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Обёртка считает метрики запросов; без метрик работает как прокси
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	availabilityRepository := availabilityRepo.NewRepository(wrappedDB)
	customerRepository := customerRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)

	// Блокировка слотов
	var locker slotlock.Locker = slotlock.NoopLocker{}
	if cfg.Redis.Enabled {
		redisClient, err := slotlock.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		locker = slotlock.NewRedisLocker(redisClient, time.Duration(cfg.Redis.LockTTLSeconds)*time.Second, lockWait)
		log.Info("Slot lock enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.LockTTLSeconds)
	} else {
		log.Warn("Slot lock disabled, relying on unique index and serializable transactions")
	}

	// Уведомления
	var senders []notifier.Sender
	if cfg.Notifications.SMTP.Enabled {
		smtp := cfg.Notifications.SMTP
		senders = append(senders, notifier.NewEmailSender(
			smtp.Host, smtp.Port, smtp.Username, smtp.Password, smtp.From, cfg.Notifications.AdminEmail,
		))
	}
	if cfg.Notifications.Kafka.Enabled {
		kafka := notifier.NewKafkaPublisher(cfg.Notifications.Kafka.Brokers, cfg.Notifications.Kafka.Topic)
		defer kafka.Close()
		senders = append(senders, kafka)
	}
	dispatcher := notifier.NewDispatcher(
		senders,
		cfg.Notifications.Workers,
		cfg.Notifications.QueueSize,
		log,
		metricsCollector,
	)
	dispatcher.Start()

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		customerRepository,
		txMgr,
		dispatcher,
		metricsCollector,
		log,
	)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		serviceRepository,
		customerRepository,
		log,
	)
	catalogSvc := catalogService.NewService(
		serviceRepository,
		customerRepository,
		txMgr,
		log,
	)
	subscriptionsSvc := subscriptionsService.NewService(
		customerRepository,
		cfg.Subscriptions.FreeBookingLimit,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		availabilityRepository,
		customerRepository,
		txMgr,
		locker,
		dispatcher,
		metricsCollector,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		availabilityRepository,
		txMgr,
		locker,
		dispatcher,
		metricsCollector,
		log,
	)
	getTimeSlotsUseCase := getTimeSlotsUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		availabilityRepository,
		log,
	)

	// Инициализируем handlers
	listServices := listServicesHandler.NewHandler(catalogSvc, log)
	listAdminServices := listAdminServicesHandler.NewHandler(catalogSvc, log)
	getService := getServiceHandler.NewHandler(catalogSvc, log)
	createService := createServiceHandler.NewHandler(catalogSvc, log)
	updateService := updateServiceHandler.NewHandler(catalogSvc, log)
	toggleService := toggleServiceHandler.NewHandler(catalogSvc, log)
	deleteService := deleteServiceHandler.NewHandler(catalogSvc, log)

	getTimeSlots := getTimeSlotsHandler.NewHandler(getTimeSlotsUseCase, log)
	getCompanyAvailability := getCompanyAvailabilityHandler.NewHandler(availabilitySvc, log)
	upsertCompanyAvailability := upsertCompanyAvailabilityHandler.NewHandler(availabilitySvc, log)
	setServiceAvailability := setServiceAvailabilityHandler.NewHandler(availabilitySvc, log)

	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(appointmentsSvc, log)
	listMyBookings := listMyBookingsHandler.NewHandler(appointmentsSvc, log)
	listCompanyBookings := listCompanyBookingsHandler.NewHandler(appointmentsSvc, log)
	todayBookings := todayBookingsHandler.NewHandler(appointmentsSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(appointmentsSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(appointmentsSvc, log)

	activateSubscription := activateSubscriptionHandler.NewHandler(subscriptionsSvc, log)
	expireSubscription := expireSubscriptionHandler.NewHandler(subscriptionsSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/services", listServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId:[0-9]+}", getService.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId:[0-9]+}/time-slots", getTimeSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/companies/{companyId}/availability", getCompanyAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// INTERNAL ROUTES (платежный сервис, закрыты на уровне сети)
	// ============================================================

	internal := api.PathPrefix("/internal").Subrouter()
	internal.HandleFunc("/customers/{userId}/subscription", activateSubscription.Handle).Methods(http.MethodPost)
	internal.HandleFunc("/customers/{userId}/subscription", expireSubscription.Handle).Methods(http.MethodDelete)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Каталог услуг (администратор) ---
	protected.HandleFunc("/admin/services", listAdminServices.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/services/bulk", createService.HandleBulk).Methods(http.MethodPost)
	protected.HandleFunc("/services/{serviceId:[0-9]+}", updateService.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/services/{serviceId:[0-9]+}", deleteService.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/services/{serviceId:[0-9]+}/toggle", toggleService.Handle).Methods(http.MethodPatch)

	// --- Расписание (администратор) ---
	protected.HandleFunc("/companies/{companyId}/availability", upsertCompanyAvailability.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/services/{serviceId:[0-9]+}/availability", setServiceAvailability.Handle).Methods(http.MethodPut)

	// --- Записи ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", listCompanyBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/my", listMyBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/today", todayBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся отправки уведомлений из очереди
	dispatcher.Stop(shutdownCtx)

	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
