package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"copydesk/internal/config"
	"copydesk/internal/core"
	"copydesk/internal/publish"
)

type fakeTopics struct {
	report core.BatchReport
	calls  int
}

func (f *fakeTopics) Run(ctx context.Context, categoryKey string, targetCount int) (core.BatchReport, error) {
	f.calls++
	return f.report, nil
}

type fakeStock struct {
	counts map[string]int
}

func (f *fakeStock) CountUnused(ctx context.Context, categoryKey string) (int, error) {
	return f.counts[categoryKey], nil
}

type fakeContents struct {
	content core.Content
}

func (f *fakeContents) Get(ctx context.Context, id string) (core.Content, error) {
	return f.content, nil
}

func (f *fakeContents) List(ctx context.Context, categoryKey string, status core.ContentStatus) ([]core.Content, error) {
	return []core.Content{f.content}, nil
}

type fakeUsageReader struct{}

func (fakeUsageReader) Current(ctx context.Context) (core.UsageSummary, error) {
	return core.UsageSummary{Month: "2026-08", TopicCount: 12}, nil
}

func (fakeUsageReader) History(ctx context.Context, limit int) ([]core.UsageSummary, error) {
	return []core.UsageSummary{{Month: "2026-08"}}, nil
}

type fakeCRM struct {
	created []core.Lead
}

func (f *fakeCRM) CreateLead(ctx context.Context, lead core.Lead) (core.Lead, error) {
	lead.ID = "lead1"
	lead.Status = core.LeadStatusNew
	f.created = append(f.created, lead)
	return lead, nil
}

func (f *fakeCRM) ListLeads(ctx context.Context, status core.LeadStatus, limit int) ([]core.Lead, error) {
	return f.created, nil
}

func (f *fakeCRM) UpdateLeadStatus(ctx context.Context, id string, status core.LeadStatus) (core.Lead, error) {
	return core.Lead{ID: id, Status: status}, nil
}

func (f *fakeCRM) CreateContract(ctx context.Context, contract core.Contract) (core.Contract, error) {
	contract.ID = "con1"
	return contract, nil
}

func (f *fakeCRM) ListContracts(ctx context.Context, status core.ContractStatus, limit int) ([]core.Contract, error) {
	return nil, nil
}

func (f *fakeCRM) UpdateContractStatus(ctx context.Context, id string, status core.ContractStatus) (core.Contract, error) {
	return core.Contract{ID: id, Status: status}, nil
}

func newTestServer(deps Deps) *Server {
	cfg := config.Server{
		Host:       "127.0.0.1",
		Port:       0,
		CronSecret: "sekrit",
	}
	return New(deps, cfg, "https://example.co.kr")
}

func doRequest(t *testing.T, s *Server, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(Deps{})
	rec := doRequest(t, s, http.MethodGet, "/health", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse health response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Expected ok status, got %q", resp.Status)
	}
}

func TestAdminRejectsMissingBearer(t *testing.T) {
	topics := &fakeTopics{}
	s := newTestServer(Deps{Topics: topics})

	rec := doRequest(t, s, http.MethodPost, "/api/admin/topics/generate", "", `{"category": "meta-ads"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	if topics.calls != 0 {
		t.Error("Expected no pipeline work before auth")
	}
}

func TestAdminRejectsWrongBearer(t *testing.T) {
	topics := &fakeTopics{}
	s := newTestServer(Deps{Topics: topics})

	rec := doRequest(t, s, http.MethodPost, "/api/admin/topics/generate", "wrong", `{"category": "meta-ads"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	if topics.calls != 0 {
		t.Error("Expected no pipeline work on bad token")
	}
}

func TestGenerateTopicsReturnsReport(t *testing.T) {
	topics := &fakeTopics{report: core.BatchReport{
		Category:  "meta-ads",
		Requested: 30,
		Batches:   2,
		Generated: 50,
		Valid:     40,
		Invalid:   10,
		Duplicate: 10,
		Added:     30,
	}}
	s := newTestServer(Deps{Topics: topics})

	rec := doRequest(t, s, http.MethodPost, "/api/admin/topics/generate", "sekrit", `{"category": "meta-ads", "count": 30}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp GenerateTopicsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success true")
	}
	if resp.Added != 30 || resp.Batches != 2 {
		t.Errorf("Unexpected report: %+v", resp)
	}
	if resp.InvalidTopics == nil || resp.DuplicateTopics == nil {
		t.Error("Expected sample arrays to be non-null in JSON")
	}
}

func TestGenerateTopicsRejectsUnknownCategory(t *testing.T) {
	topics := &fakeTopics{}
	s := newTestServer(Deps{Topics: topics})

	rec := doRequest(t, s, http.MethodPost, "/api/admin/topics/generate", "sekrit", `{"category": "crypto"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if topics.calls != 0 {
		t.Error("Expected no run for unknown category")
	}
}

func TestTopicStockWithCategory(t *testing.T) {
	s := newTestServer(Deps{TopicStock: &fakeStock{counts: map[string]int{"faq": 7}}})

	rec := doRequest(t, s, http.MethodGet, "/api/admin/topics/generate?category=faq", "sekrit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Category    string `json:"category"`
		UnusedCount int    `json:"unusedCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Category != "faq" || resp.UnusedCount != 7 {
		t.Errorf("Unexpected stock response: %+v", resp)
	}
}

func TestTopicStockOverview(t *testing.T) {
	s := newTestServer(Deps{
		TopicStock: &fakeStock{counts: map[string]int{"meta-ads": 3, "faq": 7}},
		Usage:      fakeUsageReader{},
	})

	rec := doRequest(t, s, http.MethodGet, "/api/admin/topics/generate", "sekrit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		CurrentStock        map[string]int `json:"currentStock"`
		AvailableCategories []string       `json:"availableCategories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.CurrentStock["faq"] != 7 {
		t.Errorf("Unexpected stock: %+v", resp.CurrentStock)
	}
	if len(resp.AvailableCategories) != 5 {
		t.Errorf("Expected 5 categories, got %v", resp.AvailableCategories)
	}
}

func TestUsageEndpoint(t *testing.T) {
	s := newTestServer(Deps{Usage: fakeUsageReader{}})

	rec := doRequest(t, s, http.MethodGet, "/api/admin/usage", "sekrit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var summary core.UsageSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to parse usage: %v", err)
	}
	if summary.Month != "2026-08" || summary.TopicCount != 12 {
		t.Errorf("Unexpected usage summary: %+v", summary)
	}
}

func TestLeadCaptureIsPublic(t *testing.T) {
	crm := &fakeCRM{}
	s := newTestServer(Deps{CRM: crm})

	body := `{"name": "김담당", "phone": "010-1234-5678", "source": "landing-a"}`
	rec := doRequest(t, s, http.MethodPost, "/api/leads", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 without auth, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(crm.created) != 1 || crm.created[0].Name != "김담당" {
		t.Errorf("Unexpected created leads: %+v", crm.created)
	}
}

func TestContentPreviewRendersHTML(t *testing.T) {
	contents := &fakeContents{content: core.Content{
		ID:    "rec1",
		Title: "메타 광고 예산 설정 가이드",
		Body:  "## 서론\n\n본문입니다.",
	}}
	s := newTestServer(Deps{Contents: contents})

	rec := doRequest(t, s, http.MethodGet, "/api/admin/contents/rec1/preview", "sekrit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected HTML content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<h2") {
		t.Errorf("Expected rendered heading, got %s", rec.Body.String())
	}
}

func TestDisabledServiceReturns503(t *testing.T) {
	s := newTestServer(Deps{})

	rec := doRequest(t, s, http.MethodPost, "/api/admin/topics/generate", "sekrit", `{"category": "meta-ads"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 when topics service missing, got %d", rec.Code)
	}
}

type publishFake struct {
	calls int
}

func (p *publishFake) Publish(ctx context.Context, id string, opts publish.Options) (publish.Result, error) {
	p.calls++
	return publish.Result{PublishedURL: "https://example.co.kr/blog/" + id}, nil
}

func TestPublishEndpoint(t *testing.T) {
	pub := &publishFake{}
	s := newTestServer(Deps{Publisher: pub})

	rec := doRequest(t, s, http.MethodPost, "/api/admin/contents/rec1/publish", "sekrit", `{"withThumbnail": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if pub.calls != 1 {
		t.Errorf("Expected one publish call, got %d", pub.calls)
	}
}
