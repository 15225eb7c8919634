package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

var serviceNames = []string{
	"Consultation",
	"Haircut",
	"Massage",
	"Manicure",
	"Dental check-up",
	"Physiotherapy",
	"Yoga class",
	"Car inspection",
}

type seeder struct {
	db           *dbmetrics.DB
	txManager    *txmanager.TransactionManager
	customers    *customerRepo.Repository
	services     *serviceRepo.Repository
	availability *availabilityRepo.Repository
	freeLimit    int
	log          *logger.Logger
}

func main() {
	companies := flag.Int("companies", 3, "number of companies")
	customersPerCompany := flag.Int("customers", 20, "customers per company")
	servicesPerCompany := flag.Int("services", 5, "services per company")
	flag.Parse()

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("", cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	stopCh := make(chan struct{})
	defer close(stopCh)
	wrappedDB := dbmetrics.WrapWithDefault(db, nil, cfg.Metrics.ServiceName, stopCh)

	s := &seeder{
		db:           wrappedDB,
		txManager:    txmanager.NewTransactionManager(wrappedDB),
		customers:    customerRepo.NewRepository(wrappedDB),
		services:     serviceRepo.NewRepository(wrappedDB),
		availability: availabilityRepo.NewRepository(wrappedDB),
		freeLimit:    cfg.Subscriptions.FreeBookingLimit,
		log:          log,
	}

	gofakeit.Seed(time.Now().UnixNano())

	log.Info("seed starting: companies=%d customers=%d services=%d", *companies, *customersPerCompany, *servicesPerCompany)
	for i := 0; i < *companies; i++ {
		err := s.txManager.Do(ctx, func(ctx context.Context) error {
			return s.seedCompany(ctx, *customersPerCompany, *servicesPerCompany)
		})
		if err != nil {
			log.Fatal("seed company %d: %v", i+1, err)
		}
	}
	log.Info("seed complete")
}

// seedCompany создает компанию с администратором, клиентами, услугами и расписанием
func (s *seeder) seedCompany(ctx context.Context, customers, services int) error {
	companyID, err := s.createCompany(ctx, gofakeit.Company())
	if err != nil {
		return err
	}

	admin, err := s.customers.Create(ctx, &domain.User{
		CompanyID:          companyID,
		Name:               gofakeit.Name(),
		Email:              gofakeit.Email(),
		Role:               domain.RoleAdmin,
		PlanType:           domain.PlanYearly,
		SubscriptionStatus: domain.SubscriptionActive,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	for i := 0; i < customers; i++ {
		limit := s.freeLimit
		if _, err := s.customers.Create(ctx, &domain.User{
			CompanyID:          companyID,
			Name:               gofakeit.Name(),
			Email:              gofakeit.Email(),
			Role:               domain.RoleCustomer,
			PlanType:           domain.PlanFree,
			SubscriptionStatus: domain.SubscriptionActive,
			BookingLimit:       &limit,
		}); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
	}

	for i := 0; i < services; i++ {
		if _, err := s.services.Create(ctx, &domain.Service{
			CompanyID:       companyID,
			Name:            serviceNames[gofakeit.Number(0, len(serviceNames)-1)],
			Description:     gofakeit.Adjective() + " " + gofakeit.Noun(),
			DurationMinutes: 15 * gofakeit.Number(2, 6),
			Price:           gofakeit.Price(10, 200),
			Status:          domain.ServiceStatusActive,
		}); err != nil {
			return fmt.Errorf("create service: %w", err)
		}
	}

	if _, err := s.availability.Upsert(ctx, &domain.AvailabilityConfig{
		CompanyID:   companyID,
		WorkingDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		StartTime:   "09:00",
		EndTime:     "18:00",
		Breaks:      []domain.Break{{Start: "13:00", End: "14:00"}},
		BookingOpen: true,
	}); err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}

	s.log.Info("company=%d seeded (admin=%d)", companyID, admin.ID)
	return nil
}

func (s *seeder) createCompany(ctx context.Context, name string) (int64, error) {
	query, args, err := psqlbuilder.Insert("companies").
		Columns("name").
		Values(name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build company insert: %w", err)
	}

	var id int64
	executor := dbmetrics.GetExecutor(ctx, s.db)
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert company: %w", err)
	}
	return id, nil
}
