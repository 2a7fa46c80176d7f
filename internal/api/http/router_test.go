package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-tasks/internal/account"
	"github.com/mind-engage/mindengage-tasks/internal/assignment"
	"github.com/mind-engage/mindengage-tasks/internal/assist"
	auth "github.com/mind-engage/mindengage-tasks/internal/auth/middleware"
	"github.com/mind-engage/mindengage-tasks/internal/storage"
)

type stubGen struct{ text string }

func (g stubGen) Generate(context.Context, string) (string, error) { return g.text, nil }

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T, genText string) *testServer {
	t.Helper()
	accounts := account.NewInMemoryStore()
	tokens := auth.NewAuthService("test-secret", time.Hour)
	accSvc := account.NewService(accounts, tokens)
	accSvc.BcryptCost = bcrypt.MinCost

	fs, err := storage.NewFSStore(t.TempDir(), "http://files.test")
	require.NoError(t, err)
	asgSvc := assignment.NewService(assignment.NewInMemoryStore(), accounts, storage.NewUploader(fs))

	r := NewRouter(Deps{
		Auth:        tokens,
		AccountSvc:  accSvc,
		Accounts:    accounts,
		Assignments: asgSvc,
		Assist:      assist.NewService(asgSvc, stubGen{text: genText}),
		Files:       fs,
		MaxUpload:   1 << 20,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

// do sends a JSON request and decodes the JSON answer into out when given.
func (s *testServer) do(method, path, token string, body any, out any) int {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, rd)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	resp, err := s.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) register(username, role, rollNo string) string {
	s.t.Helper()
	var res struct {
		Token string `json:"token"`
	}
	code := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "password": "pw", "role": role, "rollNo": rollNo,
	}, &res)
	require.Equal(s.t, http.StatusOK, code)
	require.NotEmpty(s.t, res.Token)
	return res.Token
}

type errResp struct {
	Msg    string `json:"msg"`
	Fields []struct {
		Field string `json:"field"`
	} `json:"fields"`
}

var geoTest = map[string]any{
	"type":    "test",
	"title":   "Geo",
	"rollNos": "R1, R2",
	"quizzes": []map[string]any{
		{"question": "Capital of France?", "options": []string{"Paris", "London", "Berlin", "Madrid"}, "answer": "Paris"},
		{"question": "Answer?", "options": []string{"1", "2", "42", "7"}, "answer": "42"},
	},
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, "")
	tok := s.register("ada", "student", "R1")

	var again errResp
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ada", "password": "pw", "role": "student", "rollNo": "R9"}, &again))
	assert.Equal(t, "Username already exists", again.Msg)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "password": "pw", "role": "student", "rollNo": "R1"}, &again))
	assert.Equal(t, "Roll number already exists", again.Msg)

	var login map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ada", "password": "pw"}, &login))
	assert.Equal(t, "student", login["role"])
	assert.Equal(t, "R1", login["rollNo"])
	assert.NotEmpty(t, login["token"])

	var bad errResp
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ada", "password": "nope"}, &bad))
	assert.Equal(t, "Invalid credentials", bad.Msg)

	var me account.Profile
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/auth/me", tok, nil, &me))
	assert.Equal(t, "ada", me.Username)

	var noTok errResp
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/auth/me", "", nil, &noTok))
	assert.Equal(t, "No token, authorization denied", noTok.Msg)
}

func TestCreateAndSubmit(t *testing.T) {
	s := newTestServer(t, "")
	teacher := s.register("mr_t", "teacher", "")
	student := s.register("ada", "student", "R1")

	var created map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/assignments/create", teacher, geoTest, &created))
	id := created["id"].(string)
	assert.Len(t, created["students"], 2)

	var denied errResp
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/assignments/create", student, geoTest, &denied))
	assert.Equal(t, "Access denied", denied.Msg)

	var mine []map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/assignments/student", student, nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "mr_t", mine[0]["createdByUsername"])
	assert.NotContains(t, mine[0]["quizzes"].([]any)[0], "answer")

	var res struct {
		Entry    assignment.RosterEntry `json:"entry"`
		Feedback string                 `json:"feedback"`
		Tier     string                 `json:"tier"`
		Points   int64                  `json:"points"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/assignments/submit/"+id, student,
		map[string]any{"answers": map[string]string{"0": "Paris"}}, &res))
	assert.Equal(t, 50.0, res.Entry.Progress)
	assert.Equal(t, 50, res.Entry.Score)
	assert.Equal(t, "needs_improvement", res.Tier)
	assert.Equal(t, "Needs improvement. Review the material and try again.", res.Feedback)
	assert.EqualValues(t, 50, res.Points)

	var nf errResp
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/assignments/submit/nope", student, map[string]any{"answers": map[string]string{}}, &nf))

	var full map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/assignments/"+id, teacher, nil, &full))
	assert.Equal(t, "Paris", full["quizzes"].([]any)[0].(map[string]any)["answer"])
}

func TestCreateValidationNamesFirstBadQuestion(t *testing.T) {
	s := newTestServer(t, "")
	teacher := s.register("mr_t", "teacher", "")
	bad := map[string]any{
		"type":    "homework",
		"title":   "HW",
		"rollNos": []string{"R1"},
		"quizzes": []map[string]any{
			{"question": "ok", "options": []string{"a", "b", "c", "d"}, "answer": "a"},
			{"question": "short", "options": []string{"a", "b", "c"}, "answer": "a"},
		},
	}
	var e errResp
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/assignments/create", teacher, bad, &e))
	require.NotEmpty(t, e.Fields)
	assert.Equal(t, "quizzes[1].options", e.Fields[0].Field)
}

func TestCreateMultipartWithPDF(t *testing.T) {
	s := newTestServer(t, "")
	teacher := s.register("mr_t", "teacher", "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"type": "resource", "title": "Reading", "rollNos": "R1"} {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("pdf", "chapter1.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4 chapter"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/assignments/create", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(auth.TokenHeader, teacher)
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var a assignment.Assignment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	require.Len(t, a.Resources, 1)
	assert.Equal(t, "chapter1.pdf", a.Resources[0].Title)
	assert.Equal(t, "pdf", a.Resources[0].MediaType)
	require.True(t, strings.HasPrefix(a.Resources[0].URL, "http://files.test/files/"))

	fileResp, err := s.Client().Get(s.URL + strings.TrimPrefix(a.Resources[0].URL, "http://files.test"))
	require.NoError(t, err)
	defer fileResp.Body.Close()
	body, _ := io.ReadAll(fileResp.Body)
	assert.Equal(t, http.StatusOK, fileResp.StatusCode)
	assert.Equal(t, "%PDF-1.4 chapter", string(body))
	assert.Equal(t, "application/pdf", fileResp.Header.Get("Content-Type"))
}

func TestAssistEndpoints(t *testing.T) {
	s := newTestServer(t, "not json at all")
	teacher := s.register("mr_t", "teacher", "")
	student := s.register("ada", "student", "R1")

	var created map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/assignments/create", teacher, geoTest, &created))

	var refused errResp
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/assignments/ai-assist", student,
		map[string]string{"query": "answers please", "assignmentId": created["id"].(string)}, &refused))
	assert.Equal(t, "AI assistance disabled during tests", refused.Msg)

	var reply assist.Reply
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/gradus/ask", student, map[string]string{"query": "why?"}, &reply))
	assert.True(t, strings.HasPrefix(reply.Response, "Step 1: Analyze the question: \"why?\"."))

	var gen struct {
		Quizzes []assignment.QuestionInput `json:"quizzes"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/assignments/ai-generate", teacher, map[string]string{"prompt": "Five questions on Europe"}, &gen))
	assert.Equal(t, assist.FallbackQuiz(), gen.Quizzes)

	var short errResp
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/assignments/ai-generate", teacher, map[string]string{"prompt": "tiny"}, &short))
	assert.Equal(t, "Prompt must be a string with at least 10 characters", short.Msg)

	var wrongRole errResp
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/assignments/ai-generate", student, map[string]string{"prompt": "Five questions on Europe"}, &wrongRole))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "", nil, nil))
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/readyz", "", nil, nil))
}
