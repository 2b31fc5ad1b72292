package testutils

import (
	"io"
	"log"
	"testing"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/payments"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Error creating the SQL mock connection: %s", err)
	}

	newLogger := logger.New(
		log.New(io.Discard, "", log.LstdFlags),
		logger.Config{
			LogLevel: logger.Silent,
		},
	)

	dialector := postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Error opening the GORM connection: %s", err)
	}

	originalDB := db.DB
	db.DB = gormDB

	cleanup := func() {
		db.DB = originalDB
		sqlDB.Close()
	}

	return gormDB, mock, cleanup
}

func SetupTestRouter() *gin.Engine {
	r := gin.New()
	return r
}

func InitTestMain() {
	gin.SetMode(gin.TestMode)
}

// FakeProvider implements payments.Provider without talking to Stripe.
type FakeProvider struct {
	Session      *payments.CheckoutSession
	CreateErr    error
	Event        stripe.Event
	ConstructErr error

	// CreateCalls records the params of each CreateCheckoutSession call
	CreateCalls []payments.CheckoutParams
}

func (f *FakeProvider) CreateCheckoutSession(params payments.CheckoutParams) (*payments.CheckoutSession, error) {
	f.CreateCalls = append(f.CreateCalls, params)
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if f.Session != nil {
		return f.Session, nil
	}
	return &payments.CheckoutSession{
		ID:  "cs_test_" + params.IdempotencyKey,
		URL: "https://checkout.stripe.com/pay/cs_test_" + params.IdempotencyKey,
	}, nil
}

func (f *FakeProvider) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	if f.ConstructErr != nil {
		return stripe.Event{}, f.ConstructErr
	}
	return f.Event, nil
}
