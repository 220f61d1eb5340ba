package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"copydesk/internal/core"
	"copydesk/internal/records"
)

func newTestRepo(t *testing.T, handler http.HandlerFunc) *Repo {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := records.NewClient("key", "base", srv.URL, 5*time.Second)
	return NewRepo(client, "Leads", "Contracts")
}

func TestCreateLeadValidation(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected validation to fail before any request")
	})

	cases := []struct {
		name string
		lead core.Lead
	}{
		{"missing name", core.Lead{Phone: "010-1234-5678"}},
		{"missing contact", core.Lead{Name: "김담당"}},
		{"bad status", core.Lead{Name: "김담당", Phone: "010-1234-5678", Status: "vip"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := repo.CreateLead(context.Background(), tc.lead); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestCreateLeadDefaultsStatusNew(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Records []struct {
				Fields map[string]any `json:"fields"`
			} `json:"records"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if got := body.Records[0].Fields["Status"]; got != "new" {
			t.Errorf("Expected default status new, got %v", got)
		}
		fmt.Fprint(w, `{"records": [{"id": "lead1", "fields": {"Name": "김담당", "Status": "new"}}]}`)
	})

	lead, err := repo.CreateLead(context.Background(), core.Lead{Name: "김담당", Phone: "010-1234-5678"})
	if err != nil {
		t.Fatalf("CreateLead failed: %v", err)
	}
	if lead.ID != "lead1" || lead.Status != core.LeadStatusNew {
		t.Errorf("Unexpected created lead: %+v", lead)
	}
}

func TestListLeadsFiltersByStatus(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		formula := r.URL.Query().Get("filterByFormula")
		if !strings.Contains(formula, "'contacted'") {
			t.Errorf("Expected status filter, got %q", formula)
		}
		fmt.Fprint(w, `{"records": []}`)
	})

	if _, err := repo.ListLeads(context.Background(), core.LeadStatusContacted, 10); err != nil {
		t.Fatalf("ListLeads failed: %v", err)
	}
}

func TestListLeadsOmitsSortParameter(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sort[0][field]"); got != "" {
			t.Errorf("Expected no sort field, got %q", got)
		}
		fmt.Fprint(w, `{"records": []}`)
	})

	if _, err := repo.ListLeads(context.Background(), "", 10); err != nil {
		t.Fatalf("ListLeads failed: %v", err)
	}
}

func TestListContractsSortsByStartDate(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("sort[0][field]"); got != "StartsAt" {
			t.Errorf("Expected sort by StartsAt, got %q", got)
		}
		if got := q.Get("sort[0][direction]"); got != "desc" {
			t.Errorf("Expected descending sort, got %q", got)
		}
		fmt.Fprint(w, `{"records": []}`)
	})

	if _, err := repo.ListContracts(context.Background(), "", 10); err != nil {
		t.Fatalf("ListContracts failed: %v", err)
	}
}

func TestListLeadsRejectsBadStatus(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected no request for invalid status")
	})
	if _, err := repo.ListLeads(context.Background(), "vip", 10); err == nil {
		t.Error("Expected invalid status to fail")
	}
}

func TestUpdateLeadStatus(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("Expected PATCH, got %s", r.Method)
		}
		fmt.Fprint(w, `{"id": "lead1", "fields": {"Name": "김담당", "Status": "converted"}}`)
	})

	lead, err := repo.UpdateLeadStatus(context.Background(), "lead1", core.LeadStatusConverted)
	if err != nil {
		t.Fatalf("UpdateLeadStatus failed: %v", err)
	}
	if lead.Status != core.LeadStatusConverted {
		t.Errorf("Expected converted, got %s", lead.Status)
	}
}

func TestCreateContractValidation(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected validation to fail before any request")
	})

	if _, err := repo.CreateContract(context.Background(), core.Contract{Plan: "basic"}); err == nil {
		t.Error("Expected missing client id to fail")
	}
	if _, err := repo.CreateContract(context.Background(), core.Contract{ClientID: "c1", Status: "WEIRD"}); err == nil {
		t.Error("Expected invalid status to fail")
	}
}

func TestCreateContractDefaultsPending(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Records []struct {
				Fields map[string]any `json:"fields"`
			} `json:"records"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if got := body.Records[0].Fields["Status"]; got != "PENDING" {
			t.Errorf("Expected default status PENDING, got %v", got)
		}
		fmt.Fprint(w, `{"records": [{"id": "con1", "fields": {"ClientID": "c1", "Status": "PENDING"}}]}`)
	})

	contract, err := repo.CreateContract(context.Background(), core.Contract{ClientID: "c1", Plan: "basic"})
	if err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	if contract.Status != core.ContractStatusPending {
		t.Errorf("Expected PENDING, got %s", contract.Status)
	}
}

func TestContractTimeFieldsRoundTrip(t *testing.T) {
	starts := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Records []struct {
				Fields map[string]any `json:"fields"`
			} `json:"records"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if got := body.Records[0].Fields["StartsAt"]; got != "2026-09-01T00:00:00Z" {
			t.Errorf("Expected RFC3339 start, got %v", got)
		}
		fmt.Fprint(w, `{"records": [{"id": "con1", "fields": {"ClientID": "c1", "Status": "PENDING", "StartsAt": "2026-09-01T00:00:00Z"}}]}`)
	})

	contract, err := repo.CreateContract(context.Background(), core.Contract{ClientID: "c1", StartsAt: starts})
	if err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	if !contract.StartsAt.Equal(starts) {
		t.Errorf("Expected start %v, got %v", starts, contract.StartsAt)
	}
}
