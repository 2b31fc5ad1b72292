package students

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

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

func postProfile(r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, "/students/profile", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func profileRouter(userID string) *gin.Engine {
	r := testutils.SetupTestRouter()
	r.POST("/students/profile", func(c *gin.Context) {
		c.Set("user_id", userID)
		CreateProfile(c)
	})
	r.GET("/students/profile", func(c *gin.Context) {
		c.Set("user_id", userID)
		GetProfile(c)
	})
	return r
}

func TestCreateProfile_MissingFields(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := profileRouter("user_1")
	resp := postProfile(r, map[string]interface{}{"country": "France"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProfile_AlreadyExists(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).
			AddRow("user_1", "alex@univ.edu", string(models.StudentRole)))

	r := profileRouter("user_1")
	resp := postProfile(r, map[string]interface{}{
		"country":      "France",
		"fieldOfStudy": "Computer Science",
		"university":   "Sorbonne",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "Student profile already exists", body["error"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProfile_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).
			AddRow("user_1", "alex@univ.edu", string(models.DonorRole)))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := profileRouter("user_1")
	resp := postProfile(r, map[string]interface{}{
		"country":      "France",
		"fieldOfStudy": "Computer Science",
		"university":   "Sorbonne",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)

	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "Student profile created. Awaiting verification.", body["message"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_NotAStudent(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1 AND role = \$2`).
		WillReturnError(gorm.ErrRecordNotFound)

	r := profileRouter("user_1")

	req, _ := http.NewRequest(http.MethodGet, "/students/profile", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1 AND role = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "country", "field_of_study", "university", "verification_status"}).
			AddRow("user_1", "alex@univ.edu", string(models.StudentRole), "France", "Computer Science", "Sorbonne", string(models.VerificationVerified)))

	r := profileRouter("user_1")

	req, _ := http.NewRequest(http.MethodGet, "/students/profile", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Profile struct {
			Country            string `json:"country"`
			VerificationStatus string `json:"verificationStatus"`
		} `json:"profile"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.Equal(t, "France", body.Profile.Country)
	assert.Equal(t, string(models.VerificationVerified), body.Profile.VerificationStatus)

	assert.NoError(t, mock.ExpectationsWereMet())
}
