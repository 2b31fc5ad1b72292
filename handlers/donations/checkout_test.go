package donations

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/skairipa08/FundEd2/lock"
	"github.com/skairipa08/FundEd2/models"
	"github.com/skairipa08/FundEd2/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func newCheckoutRouter(provider *testutils.FakeProvider) *gin.Engine {
	r := testutils.SetupTestRouter()
	handler := New(provider, lock.NoopLocker{})
	r.POST("/donations/checkout", handler.CreateCheckout)
	return r
}

func postCheckout(r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, "/donations/checkout", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func activeCampaignRows(id string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "title", "target_amount", "raised_amount", "donor_count", "status"}).
		AddRow(id, "student_1", "Tuition for final year", 5000, 1200, 14, string(models.CampaignActive))
}

func TestCreateCheckout_InvalidAmount(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := newCheckoutRouter(&testutils.FakeProvider{})

	for _, amount := range []float64{0, -5, 100001} {
		resp := postCheckout(r, map[string]interface{}{
			"campaignId": "camp_1",
			"amount":     amount,
			"originUrl":  "https://funded.example",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)

		var body map[string]interface{}
		json.Unmarshal(resp.Body.Bytes(), &body)
		assert.Equal(t, "Amount must be between $0.01 and $100,000", body["error"])
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_MissingOriginURL(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := newCheckoutRouter(&testutils.FakeProvider{})
	resp := postCheckout(r, map[string]interface{}{
		"campaignId": "camp_1",
		"amount":     25,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_CampaignNotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "donations" WHERE idempotency_key = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`SELECT (.+) FROM "campaigns" WHERE id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	r := newCheckoutRouter(&testutils.FakeProvider{})
	resp := postCheckout(r, map[string]interface{}{
		"campaignId":     "camp_missing",
		"amount":         25,
		"originUrl":      "https://funded.example",
		"idempotencyKey": "key_1",
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "Campaign not found", body["error"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_CampaignNotActive(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "donations" WHERE idempotency_key = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`SELECT (.+) FROM "campaigns" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "target_amount", "status"}).
			AddRow("camp_1", "Tuition", 5000, string(models.CampaignSuspended)))

	provider := &testutils.FakeProvider{}
	r := newCheckoutRouter(provider)
	resp := postCheckout(r, map[string]interface{}{
		"campaignId":     "camp_1",
		"amount":         25,
		"originUrl":      "https://funded.example",
		"idempotencyKey": "key_1",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "Campaign is not accepting donations", body["error"])

	// the provider is never reached for a closed campaign
	assert.Len(t, provider.CreateCalls, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "donations" WHERE idempotency_key = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`SELECT (.+) FROM "campaigns" WHERE id = \$1`).
		WillReturnRows(activeCampaignRows("camp_1"))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "donations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("don_1"))
	mock.ExpectCommit()

	provider := &testutils.FakeProvider{}
	r := newCheckoutRouter(provider)
	resp := postCheckout(r, map[string]interface{}{
		"campaignId":     "camp_1",
		"amount":         25,
		"donorName":      "Jordan",
		"originUrl":      "https://funded.example",
		"idempotencyKey": "key_1",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Data struct {
			URL       string `json:"url"`
			SessionID string `json:"sessionId"`
		} `json:"data"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "cs_test_key_1", body.Data.SessionID)
	assert.NotEmpty(t, body.Data.URL)

	// the client key is forwarded to the provider untouched
	assert.Len(t, provider.CreateCalls, 1)
	params := provider.CreateCalls[0]
	assert.Equal(t, "key_1", params.IdempotencyKey)
	assert.Equal(t, "camp_1", params.CampaignID)
	assert.Contains(t, params.SuccessURL, "https://funded.example/donate/success?session_id={CHECKOUT_SESSION_ID}")
	assert.Contains(t, params.SuccessURL, "campaign_id=camp_1")
	assert.Equal(t, "https://funded.example/campaign/camp_1", params.CancelURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_SynthesizesIdempotencyKey(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "donations" WHERE idempotency_key = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`SELECT (.+) FROM "campaigns" WHERE id = \$1`).
		WillReturnRows(activeCampaignRows("camp_1"))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "donations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("don_1"))
	mock.ExpectCommit()

	provider := &testutils.FakeProvider{}
	r := newCheckoutRouter(provider)
	resp := postCheckout(r, map[string]interface{}{
		"campaignId": "camp_1",
		"amount":     25,
		"originUrl":  "https://funded.example",
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, provider.CreateCalls, 1)

	// campaignId, amount, then a random suffix
	key := provider.CreateCalls[0].IdempotencyKey
	assert.True(t, strings.HasPrefix(key, "camp_1_25_"), "unexpected key %q", key)
	assert.Len(t, strings.TrimPrefix(key, "camp_1_25_"), 16)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_IdempotentReplay(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "donations" WHERE idempotency_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stripe_session_id", "checkout_url", "payment_status"}).
			AddRow("don_1", "cs_original", "https://checkout.stripe.com/pay/cs_original", string(models.PaymentPending)))

	provider := &testutils.FakeProvider{}
	r := newCheckoutRouter(provider)
	resp := postCheckout(r, map[string]interface{}{
		"campaignId":     "camp_1",
		"amount":         25,
		"originUrl":      "https://funded.example",
		"idempotencyKey": "key_1",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Message string `json:"message"`
		Data    struct {
			URL       string `json:"url"`
			SessionID string `json:"sessionId"`
		} `json:"data"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "Existing checkout session returned", body.Message)
	assert.Equal(t, "cs_original", body.Data.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_original", body.Data.URL)

	// no second session is created
	assert.Len(t, provider.CreateCalls, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_DuplicateKeyRace(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "donations" WHERE idempotency_key = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`SELECT (.+) FROM "campaigns" WHERE id = \$1`).
		WillReturnRows(activeCampaignRows("camp_1"))

	// a concurrent request inserted the same key between lookup and insert
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "donations"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	mock.ExpectQuery(`SELECT (.+) FROM "donations" WHERE idempotency_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stripe_session_id", "checkout_url", "payment_status"}).
			AddRow("don_1", "cs_winner", "https://checkout.stripe.com/pay/cs_winner", string(models.PaymentPending)))

	provider := &testutils.FakeProvider{}
	r := newCheckoutRouter(provider)
	resp := postCheckout(r, map[string]interface{}{
		"campaignId":     "camp_1",
		"amount":         25,
		"originUrl":      "https://funded.example",
		"idempotencyKey": "key_1",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Data struct {
			SessionID string `json:"sessionId"`
		} `json:"data"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "cs_winner", body.Data.SessionID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_ProviderError(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "donations" WHERE idempotency_key = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`SELECT (.+) FROM "campaigns" WHERE id = \$1`).
		WillReturnRows(activeCampaignRows("camp_1"))

	provider := &testutils.FakeProvider{CreateErr: errors.New("stripe unavailable")}
	r := newCheckoutRouter(provider)
	resp := postCheckout(r, map[string]interface{}{
		"campaignId":     "camp_1",
		"amount":         25,
		"originUrl":      "https://funded.example",
		"idempotencyKey": "key_1",
	})

	assert.Equal(t, http.StatusBadGateway, resp.Code)

	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "Payment provider error, please retry", body["error"])

	// nothing was written for the failed attempt
	assert.NoError(t, mock.ExpectationsWereMet())
}
