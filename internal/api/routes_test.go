package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cobol-converter/backend/internal/convert"
	"github.com/cobol-converter/backend/internal/jobs"
	"github.com/cobol-converter/backend/internal/models"
	"github.com/cobol-converter/backend/internal/storage"
	"github.com/cobol-converter/backend/internal/testutil"
	"github.com/cobol-converter/backend/internal/web"
)

const testCobol = "       01 WS-TOTAL PIC 9(4) VALUE 10.\n       PROCEDURE DIVISION.\n           STOP RUN.\n"

type testServer struct {
	e       *echo.Echo
	files   *testutil.MockStorage
	records *testutil.MockRecords
	jobs    *jobs.Manager
}

func newTestServer(t *testing.T, allowDeletion bool) *testServer {
	t.Helper()
	files := testutil.NewMockStorage()
	recs := testutil.NewMockRecords()
	converter := convert.NewConverter(nil, nil)
	mgr := jobs.NewManager(files, recs, converter, 2, 0)
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	require.NoError(t, SetupMiddleware(e, false))
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Store:             files,
		Records:           recs,
		Jobs:              mgr,
		Renderer:          renderer,
		AllowedExtensions: []string{".cbl", ".cob", ".cpy", ".txt"},
		AllowDeletion:     allowDeletion,
		Rules:             converter.RulesInfo("builtin"),
		Version:           "test",
	}))
	return &testServer{e: e, files: files, records: recs, jobs: mgr}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// uploadRequest builds a multipart request. An empty name sends only a
// plain form field, like a browser submitting without a selected file.
func uploadRequest(t *testing.T, target, name string, data []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	if name == "" {
		require.NoError(t, writer.WriteField("note", "no file"))
	} else {
		part, err := writer.CreateFormFile(FormFileField, name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHome_RendersIdlePage(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	doc := parseHTML(t, rec)
	assert.Equal(t, "Convert", doc.Find("#convertBtn").Text())
	assert.Contains(t, doc.Find("#progressOverlay").AttrOr("style", ""), "display: none")
	assert.Equal(t, ".cbl,.cob,.cpy,.txt", doc.Find(`input[type="file"]`).AttrOr("accept", ""))
}

func TestConvertPage_MissingFile(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(uploadRequest(t, "/", "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, "Please select a COBOL file first.", doc.Find(".form-errors li").Text())
	assert.Equal(t, "Convert", doc.Find("#convertBtn").Text())
	assert.Equal(t, 0, s.files.GetFileCount())
}

func TestConvertPage_RejectsExtension(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(uploadRequest(t, "/", "report.pdf", []byte("%PDF")))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	doc := parseHTML(t, rec)
	assert.Contains(t, doc.Find(".form-errors li").Text(), `Unsupported file type ".pdf"`)
	assert.Equal(t, 0, s.files.GetFileCount())
}

func TestConvertPage_EmptySource(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(uploadRequest(t, "/", "blank.cbl", []byte("   ")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, "The uploaded file is empty.", doc.Find(".form-errors li").Text())

	files, err := s.files.List(0)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, models.FileStatusError, files[0].Status)
}

func TestConvertPage_Success(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(uploadRequest(t, "/", "total.cbl", []byte(testCobol)))

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 0, doc.Find(".form-errors").Length())
	assert.Contains(t, doc.Find("#javaCode").Text(), "private int ws_total = 10;")
	assert.Equal(t, testCobol, doc.Find("#cobolCode").Text())
	assert.Equal(t, "Convert", doc.Find("#convertBtn").Text())
	assert.Equal(t, 1, doc.Find("#recentConversions li").Length())
	assert.Equal(t, 1, s.records.Count())
}

func TestConvertPage_TooLarge(t *testing.T) {
	s := newTestServer(t, true)
	s.files.SaveErr = storage.ErrTooLarge

	rec := s.do(uploadRequest(t, "/", "big.cbl", []byte(testCobol)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "The uploaded file is too large.", parseHTML(t, rec).Find(".form-errors li").Text())
}

func TestAPIConvert(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(uploadRequest(t, "/api/convert", "total.cob", []byte(testCobol)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var conv models.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "total.cob", conv.FileName)
	assert.Equal(t, models.MethodRules, conv.Method)
	assert.Contains(t, conv.JavaCode, "public class ConvertedCobol {")
	assert.NotEmpty(t, conv.Logs)
}

func TestAPIConvert_MissingFile(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(uploadRequest(t, "/api/convert", "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decodeAPIError(t, rec)
	assert.Equal(t, "MISSING_FILE", apiErr.Code)
	assert.Equal(t, "Please select a COBOL file first.", apiErr.Message)
}

func TestAPIConvert_InvalidEncoding(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(uploadRequest(t, "/api/convert", "bin.cbl", []byte{0xff, 0xfe, 0x00}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The uploaded file is not UTF-8 text.", decodeAPIError(t, rec).Message)
}

func TestAPIJobs(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(uploadRequest(t, "/api/jobs", "job.cbl", []byte(testCobol)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var started struct {
		JobID     string `json:"jobId"`
		Status    string `json:"status"`
		StatusURL string `json:"statusUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	require.NotEmpty(t, started.JobID)
	assert.Equal(t, "queued", started.Status)
	assert.Equal(t, "/api/jobs/"+started.JobID, started.StatusURL)

	s.jobs.Wait()

	rec = s.do(httptest.NewRequest(http.MethodGet, started.StatusURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var job jobs.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, jobs.StatusComplete, job.Status)
	assert.NotEmpty(t, job.ConversionID)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/jobs/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeAPIError(t, rec).Code)
}

func convertOne(t *testing.T, s *testServer) models.Conversion {
	t.Helper()
	rec := s.do(uploadRequest(t, "/api/convert", "one.cbl", []byte(testCobol)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var conv models.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	return conv
}

func TestConversions_ListAndGet(t *testing.T) {
	s := newTestServer(t, true)
	conv := convertOne(t, s)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/conversions?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.ConversionSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, conv.ID, list[0].ID)
	assert.NotContains(t, rec.Body.String(), "javaCode")

	for _, bad := range []string{"0", "-3", "abc", "1000"} {
		rec = s.do(httptest.NewRequest(http.MethodGet, "/api/conversions?limit="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", bad)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/conversions/"+conv.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cobolCode"`)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/conversions/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversions_DownloadJava(t *testing.T) {
	s := newTestServer(t, true)
	conv := convertOne(t, s)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/conversions/"+conv.ID+"/java", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="ConvertedCobol.java"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/x-java-source"))
	assert.Equal(t, conv.JavaCode, rec.Body.String())
}

func TestConversions_Msgpack(t *testing.T) {
	s := newTestServer(t, true)
	conv := convertOne(t, s)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/conversions/"+conv.ID+"/msgpack", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))
	var decoded models.Conversion
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, conv.ID, decoded.ID)
	assert.Equal(t, conv.JavaCode, decoded.JavaCode)
	assert.Equal(t, conv.Logs, decoded.Logs)
}

func TestConversions_Delete(t *testing.T) {
	s := newTestServer(t, true)
	conv := convertOne(t, s)

	rec := s.do(httptest.NewRequest(http.MethodDelete, "/api/conversions/"+conv.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.records.Count())
	assert.Equal(t, 0, s.files.GetFileCount())

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/conversions/"+conv.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversions_DeleteDisabled(t *testing.T) {
	s := newTestServer(t, false)
	conv := convertOne(t, s)

	rec := s.do(httptest.NewRequest(http.MethodDelete, "/api/conversions/"+conv.ID, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, 1, s.records.Count())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, "disabled", body["ai"])
	rules, ok := body["rules"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ConvertedCobol", rules["className"])
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		showDetails bool
		wantStatus  int
		wantCode    string
		wantDetails string
	}{
		{"api error", NewNotFoundError("conversion", "x"), false, http.StatusNotFound, "NOT_FOUND", ""},
		{"wrapped api error", errors.Join(errors.New("ctx"), NewForbiddenError("no")), false, http.StatusForbidden, "FORBIDDEN", ""},
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "brew"), false, http.StatusTeapot, "HTTP_ERROR", ""},
		{"unknown hidden", errors.New("boom"), false, http.StatusInternalServerError, "UNKNOWN_ERROR", ""},
		{"unknown shown", errors.New("boom"), true, http.StatusInternalServerError, "UNKNOWN_ERROR", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)

			NewErrorHandler(tt.showDetails)(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			apiErr := decodeAPIError(t, rec)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantDetails, apiErr.Details)
		})
	}
}
