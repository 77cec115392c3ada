package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/database"
	"github.com/javajoker/uni402-backend/internal/i18n"
	"github.com/javajoker/uni402-backend/internal/models"
	"github.com/javajoker/uni402-backend/internal/router"
	"github.com/javajoker/uni402-backend/internal/utils"
)

type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	config *config.Config
	router *gin.Engine
	lesson *models.Lesson
}

func testConfig(staticDir, uploadsDir string) *config.Config {
	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Port: "3000", BaseURL: "http://localhost:3000"},
		JWT: config.JWTConfig{
			SecretKey:      "api-test-secret",
			AccessPassTTL:  1,
			AccessPassName: "uni402-test",
		},
		Redis: config.RedisConfig{TTL: 60},
		Payment: config.PaymentConfig{
			RecipientAddress:  "Hx402UniPayCreatorAddress123456789",
			AssetSymbol:       "USDC",
			AssetMint:         "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			AssetDecimals:     6,
			Network:           "solana",
			AmountTolerance:   0.001,
			MinLessonPrice:    0.01,
			MaxLessonPrice:    0.05,
			MaxTimeoutSeconds: 300,
		},
		Static:    config.StaticConfig{Dir: staticDir, UploadsDir: uploadsDir},
		I18n:      config.I18nConfig{DefaultLocale: "en"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}
}

func (suite *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize("en"))
}

func (suite *APITestSuite) SetupTest() {
	db, err := database.Initialize(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(database.RunMigrations(db))
	suite.db = db

	staticDir := suite.T().TempDir()
	suite.Require().NoError(os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<h1>Uni402</h1>"), 0o644))
	suite.Require().NoError(os.WriteFile(filepath.Join(staticDir, "lesson.html"), []byte("<h1>Lesson</h1>"), 0o644))

	suite.config = testConfig(staticDir, suite.T().TempDir())
	suite.router = router.Initialize(suite.db, suite.config, nil)

	suite.lesson = &models.Lesson{
		Title:       "Introduction to Blockchain",
		Description: "Fundamentals of blockchain technology",
		Price:       0.02,
		ContentType: models.ContentTypeText,
		ContentData: "# Introduction to Blockchain",
	}
	suite.Require().NoError(suite.db.Create(suite.lesson).Error)
}

func (suite *APITestSuite) TearDownTest() {
	database.Close(suite.db)
}

func (suite *APITestSuite) request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		jsonData, _ := json.Marshal(body)
		reader = bytes.NewBuffer(jsonData)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func signature(seed byte) string {
	var sig solana.Signature
	for i := range sig {
		sig[i] = seed + byte(i)
	}
	return sig.String()
}

func (suite *APITestSuite) verify(sig, wallet string, amount interface{}) *httptest.ResponseRecorder {
	return suite.request("POST", "/api/payments/verify", map[string]interface{}{
		"lessonId":    suite.lesson.ID.String(),
		"txSignature": sig,
		"amount":      amount,
		"fromAddress": wallet,
	}, nil)
}

func (suite *APITestSuite) TestHealth() {
	for _, path := range []string{"/health", "/api/health"} {
		w := suite.request("GET", path, nil, nil)
		assert.Equal(suite.T(), http.StatusOK, w.Code)

		response := suite.decode(w)
		assert.Equal(suite.T(), "healthy", response["status"])
		assert.Equal(suite.T(), "Uni402 Platform", response["service"])
		assert.Equal(suite.T(), "1.0.0", response["version"])
		assert.NotEmpty(suite.T(), response["timestamp"])
	}
}

func (suite *APITestSuite) TestListLessonsHidesContent() {
	w := suite.request("GET", "/api/lessons", nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.NotContains(suite.T(), w.Body.String(), "content_data")

	response := suite.decode(w)
	assert.True(suite.T(), response["success"].(bool))
	lessons := response["data"].([]interface{})
	suite.Require().Len(lessons, 1)
	assert.Equal(suite.T(), suite.lesson.Title, lessons[0].(map[string]interface{})["title"])
	assert.Equal(suite.T(), "1", w.Header().Get("X-Total-Count"))

	w = suite.request("GET", "/api/lessons/"+suite.lesson.ID.String(), nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.NotContains(suite.T(), w.Body.String(), "content_data")

	w = suite.request("GET", "/api/lessons/"+uuid.NewString(), nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestCreateLesson() {
	w := suite.request("POST", "/api/lessons", map[string]interface{}{
		"title":        "Solana Basics",
		"description":  "Learn about Solana network architecture",
		"price":        "0.03",
		"content_data": "# Solana Basics",
	}, nil)
	assert.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	data := suite.decode(w)["data"].(map[string]interface{})
	lessonID := data["lesson_id"].(string)
	assert.Equal(suite.T(), "/lesson.html?id="+lessonID, data["lesson_url"])

	var stored models.Lesson
	suite.Require().NoError(suite.db.First(&stored, "id = ?", lessonID).Error)
	assert.InDelta(suite.T(), 0.03, stored.Price, 1e-9)
}

func (suite *APITestSuite) TestCreateLessonRejectsBadInput() {
	tests := []map[string]interface{}{
		{"title": "Too expensive", "price": 0.1, "content_data": "body"},
		{"title": "Too cheap", "price": 0.001, "content_data": "body"},
		{"title": "No content", "price": 0.02},
		{"content_data": "No title", "price": 0.02},
		{"title": "Bad price", "price": "abc", "content_data": "body"},
		{"title": "NaN price", "price": "NaN", "content_data": "body"},
		{"title": "Infinite price", "price": "+Inf", "content_data": "body"},
		{"title": "Bad type", "price": 0.02, "content_data": "body", "content_type": "audio"},
	}

	for _, body := range tests {
		w := suite.request("POST", "/api/lessons", body, nil)
		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, body)
	}

	var count int64
	suite.db.Model(&models.Lesson{}).Count(&count)
	assert.EqualValues(suite.T(), 1, count)
}

func (suite *APITestSuite) TestCreateLessonRequiresAPIKey() {
	hash, err := utils.HashAPIKey("admin-key")
	suite.Require().NoError(err)
	suite.config.Admin.APIKeyHash = hash
	suite.router = router.Initialize(suite.db, suite.config, nil)

	body := map[string]interface{}{"title": "Locked", "price": 0.02, "content_data": "body"}

	w := suite.request("POST", "/api/lessons", body, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.request("POST", "/api/lessons", body, map[string]string{"X-API-Key": "nope"})
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	w = suite.request("POST", "/api/lessons", body, map[string]string{"X-API-Key": "admin-key"})
	assert.Equal(suite.T(), http.StatusCreated, w.Code)
}

func (suite *APITestSuite) TestAccessWithoutPaymentReturnsChallenge() {
	w := suite.request("GET", "/api/lesson/"+suite.lesson.ID.String()+"/access", nil, nil)
	assert.Equal(suite.T(), http.StatusPaymentRequired, w.Code)
	assert.NotContains(suite.T(), w.Body.String(), suite.lesson.ContentData)

	challenge := suite.decode(w)
	assert.Equal(suite.T(), 0.02, challenge["price"])
	assert.Equal(suite.T(), "USDC", challenge["token"])
	assert.Equal(suite.T(), suite.config.Payment.RecipientAddress, challenge["address"])
	assert.Equal(suite.T(), suite.lesson.ID.String(), challenge["lesson_id"])
	assert.Equal(suite.T(), suite.config.Payment.AssetMint, challenge["usdc_mint"])
	assert.Equal(suite.T(), "x402 payment required for lesson access", challenge["message"])
	assert.Len(suite.T(), challenge["accepts"], 1)

	w = suite.request("GET", "/api/lesson/"+suite.lesson.ID.String()+"/access", nil, map[string]string{"Accept-Language": "zh-TW"})
	assert.Equal(suite.T(), http.StatusPaymentRequired, w.Code)
	assert.NotEqual(suite.T(), "x402 payment required for lesson access", suite.decode(w)["message"])

	w = suite.request("GET", "/api/lesson/"+uuid.NewString()+"/access", nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestPaymentUnlocksLesson() {
	wallet := solana.NewWallet().PublicKey().String()
	sig := signature(1)
	base := "/api/lesson/" + suite.lesson.ID.String()

	w := suite.request("GET", base+"/check-access?wallet="+wallet, nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.False(suite.T(), suite.decode(w)["data"].(map[string]interface{})["has_access"].(bool))

	w = suite.verify(sig, wallet, 0.02)
	assert.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	data := suite.decode(w)["data"].(map[string]interface{})
	assert.True(suite.T(), data["success"].(bool))
	assert.Equal(suite.T(), "Payment verified and recorded", data["message"])
	pass := data["access_pass"].(string)

	w = suite.request("GET", base+"/check-access?wallet="+wallet, nil, nil)
	assert.True(suite.T(), suite.decode(w)["data"].(map[string]interface{})["has_access"].(bool))

	w = suite.request("GET", base+"/access?tx="+sig+"&wallet="+wallet, nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	content := suite.decode(w)["data"].(map[string]interface{})
	assert.Equal(suite.T(), suite.lesson.ContentData, content["content_data"])
	assert.True(suite.T(), content["unlocked"].(bool))

	w = suite.request("GET", base+"/access", nil, map[string]string{"Authorization": "Bearer " + pass})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// the pass does not open other lessons
	other := &models.Lesson{Title: "Other", Price: 0.01, ContentData: "secret"}
	suite.Require().NoError(suite.db.Create(other).Error)
	w = suite.request("GET", "/api/lesson/"+other.ID.String()+"/access", nil, map[string]string{"Authorization": "Bearer " + pass})
	assert.Equal(suite.T(), http.StatusPaymentRequired, w.Code)

	w = suite.request("GET", "/api/payments?wallet="+wallet, nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), suite.decode(w)["data"], 1)
}

func (suite *APITestSuite) TestDuplicatePaymentIsAlreadyProcessed() {
	wallet := solana.NewWallet().PublicKey().String()
	sig := signature(2)

	w := suite.verify(sig, wallet, "0.02")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.verify(sig, wallet, "0.02")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	data := suite.decode(w)["data"].(map[string]interface{})
	assert.True(suite.T(), data["already_processed"].(bool))
	assert.Equal(suite.T(), "Payment already processed", data["message"])

	var count int64
	suite.db.Model(&models.Payment{}).Where("tx_signature = ?", sig).Count(&count)
	assert.EqualValues(suite.T(), 1, count)
}

func (suite *APITestSuite) TestVerifyPaymentErrors() {
	wallet := solana.NewWallet().PublicKey().String()

	w := suite.verify(signature(3), wallet, 0.03)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "Payment amount mismatch", suite.decode(w)["error"].(map[string]interface{})["message"])

	w = suite.verify(signature(5), wallet, "NaN")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "Payment amount mismatch", suite.decode(w)["error"].(map[string]interface{})["message"])

	w = suite.verify(signature(6), "two words", 0.02)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "Invalid payer address", suite.decode(w)["error"].(map[string]interface{})["message"])

	w = suite.verify("short", wallet, 0.02)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "Invalid transaction signature", suite.decode(w)["error"].(map[string]interface{})["message"])

	w = suite.request("POST", "/api/payments/verify", map[string]interface{}{"lessonId": suite.lesson.ID.String()}, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "Missing required fields", suite.decode(w)["error"].(map[string]interface{})["message"])

	w = suite.request("POST", "/api/payments/verify", map[string]interface{}{
		"lessonId":    uuid.NewString(),
		"txSignature": signature(4),
		"amount":      0.02,
		"fromAddress": wallet,
	}, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	var count int64
	suite.db.Model(&models.Payment{}).Count(&count)
	assert.Zero(suite.T(), count)

	w = suite.request("GET", "/api/payments", nil, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestUploadLessonFile() {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	suite.Require().NoError(writer.WriteField("content_type", "pdf"))
	part, err := writer.CreateFormFile("file", "guide.pdf")
	suite.Require().NoError(err)
	_, err = part.Write([]byte("%PDF-1.4"))
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	req, _ := http.NewRequest("POST", "/api/lessons/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	data := suite.decode(w)["data"].(map[string]interface{})
	key := data["content_data"].(string)
	assert.FileExists(suite.T(), filepath.Join(suite.config.Static.UploadsDir, filepath.FromSlash(key)))
}

func (suite *APITestSuite) TestLocalFilesRequirePaidLink() {
	key := "pdfs/20260101_" + uuid.NewString() + ".pdf"
	filePath := filepath.Join(suite.config.Static.UploadsDir, filepath.FromSlash(key))
	suite.Require().NoError(os.MkdirAll(filepath.Dir(filePath), 0o755))
	suite.Require().NoError(os.WriteFile(filePath, []byte("PAID CONTENT"), 0o644))

	pdf := &models.Lesson{Title: "Guide", Price: 0.02, ContentType: models.ContentTypePDF, ContentData: key}
	suite.Require().NoError(suite.db.Create(pdf).Error)

	// the bare path is refused
	w := suite.request("GET", "/uploads/"+key, nil, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.NotContains(suite.T(), w.Body.String(), "PAID CONTENT")

	w = suite.request("GET", "/uploads/"+key+"?token=forged", nil, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	wallet := solana.NewWallet().PublicKey().String()
	sig := signature(40)
	w = suite.request("POST", "/api/payments/verify", map[string]interface{}{
		"lessonId":    pdf.ID.String(),
		"txSignature": sig,
		"amount":      0.02,
		"fromAddress": wallet,
	}, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request("GET", "/api/lesson/"+pdf.ID.String()+"/access?tx="+sig+"&wallet="+wallet, nil, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	contentURL := suite.decode(w)["data"].(map[string]interface{})["content_url"].(string)
	link := strings.TrimPrefix(contentURL, suite.config.Server.BaseURL)
	assert.True(suite.T(), strings.HasPrefix(link, "/uploads/"+key+"?token="), link)

	w = suite.request("GET", link, nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "PAID CONTENT", w.Body.String())

	// the link does not open other files
	other := strings.Replace(link, key, "pdfs/other.pdf", 1)
	w = suite.request("GET", other, nil, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *APITestSuite) TestStaticPagesAndFallback() {
	w := suite.request("GET", "/", nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Uni402")

	w = suite.request("GET", "/lesson.html", nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request("GET", "/does-not-exist", nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Uni402")

	w = suite.request("GET", "/api/does-not-exist", nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.False(suite.T(), suite.decode(w)["success"].(bool))
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
