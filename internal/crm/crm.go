// Package crm stores captured leads and client contracts in the record
// store and enforces their status vocabularies.
package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"copydesk/internal/core"
	"copydesk/internal/records"
)

const (
	fieldName     = "Name"
	fieldCompany  = "Company"
	fieldPhone    = "Phone"
	fieldEmail    = "Email"
	fieldMessage  = "Message"
	fieldSource   = "Source"
	fieldStatus   = "Status"
	fieldClientID = "ClientID"
	fieldPlan     = "Plan"
	fieldStartsAt = "StartsAt"
	fieldEndsAt   = "EndsAt"
)

// Repo provides lead and contract persistence.
type Repo struct {
	client         *records.Client
	leadsTable     string
	contractsTable string
}

// NewRepo creates a CRM repository over the given tables.
func NewRepo(client *records.Client, leadsTable, contractsTable string) *Repo {
	return &Repo{client: client, leadsTable: leadsTable, contractsTable: contractsTable}
}

// CreateLead validates and persists a new lead. Status defaults to new.
func (r *Repo) CreateLead(ctx context.Context, lead core.Lead) (core.Lead, error) {
	if strings.TrimSpace(lead.Name) == "" {
		return core.Lead{}, fmt.Errorf("lead name is required")
	}
	if strings.TrimSpace(lead.Phone) == "" && strings.TrimSpace(lead.Email) == "" {
		return core.Lead{}, fmt.Errorf("lead requires a phone number or email")
	}
	if lead.Status == "" {
		lead.Status = core.LeadStatusNew
	}
	if !core.ValidLeadStatus(lead.Status) {
		return core.Lead{}, fmt.Errorf("invalid lead status %q", lead.Status)
	}

	created, err := r.client.Create(ctx, r.leadsTable, []map[string]any{leadFields(lead)})
	if err != nil {
		return core.Lead{}, fmt.Errorf("failed to create lead: %w", err)
	}
	if len(created) == 0 {
		return core.Lead{}, fmt.Errorf("record store returned no created lead")
	}
	return toLead(created[0]), nil
}

// ListLeads returns leads in record order, optionally filtered by status.
// The record store only sorts by plain fields and leads carry no date
// field, so ordering is left to the store.
func (r *Repo) ListLeads(ctx context.Context, status core.LeadStatus, limit int) ([]core.Lead, error) {
	opts := records.ListOptions{
		MaxRecords: limit,
	}
	if status != "" {
		if !core.ValidLeadStatus(status) {
			return nil, fmt.Errorf("invalid lead status %q", status)
		}
		opts.FilterByFormula = fmt.Sprintf("{%s} = '%s'", fieldStatus, records.EscapeFormulaString(string(status)))
	}

	recs, err := r.client.List(ctx, r.leadsTable, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	leads := make([]core.Lead, 0, len(recs))
	for _, rec := range recs {
		leads = append(leads, toLead(rec))
	}
	return leads, nil
}

// UpdateLeadStatus transitions a lead to the given status.
func (r *Repo) UpdateLeadStatus(ctx context.Context, id string, status core.LeadStatus) (core.Lead, error) {
	if !core.ValidLeadStatus(status) {
		return core.Lead{}, fmt.Errorf("invalid lead status %q", status)
	}
	rec, err := r.client.Update(ctx, r.leadsTable, id, map[string]any{fieldStatus: string(status)})
	if err != nil {
		return core.Lead{}, fmt.Errorf("failed to update lead %s: %w", id, err)
	}
	return toLead(rec), nil
}

// CreateContract validates and persists a new contract. Status defaults
// to PENDING.
func (r *Repo) CreateContract(ctx context.Context, contract core.Contract) (core.Contract, error) {
	if strings.TrimSpace(contract.ClientID) == "" {
		return core.Contract{}, fmt.Errorf("contract client id is required")
	}
	if contract.Status == "" {
		contract.Status = core.ContractStatusPending
	}
	if !core.ValidContractStatus(contract.Status) {
		return core.Contract{}, fmt.Errorf("invalid contract status %q", contract.Status)
	}

	created, err := r.client.Create(ctx, r.contractsTable, []map[string]any{contractFields(contract)})
	if err != nil {
		return core.Contract{}, fmt.Errorf("failed to create contract: %w", err)
	}
	if len(created) == 0 {
		return core.Contract{}, fmt.Errorf("record store returned no created contract")
	}
	return toContract(created[0]), nil
}

// ListContracts returns contracts sorted by start date descending,
// optionally filtered by status.
func (r *Repo) ListContracts(ctx context.Context, status core.ContractStatus, limit int) ([]core.Contract, error) {
	opts := records.ListOptions{
		SortField:  fieldStartsAt,
		SortDesc:   true,
		MaxRecords: limit,
	}
	if status != "" {
		if !core.ValidContractStatus(status) {
			return nil, fmt.Errorf("invalid contract status %q", status)
		}
		opts.FilterByFormula = fmt.Sprintf("{%s} = '%s'", fieldStatus, records.EscapeFormulaString(string(status)))
	}

	recs, err := r.client.List(ctx, r.contractsTable, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	contracts := make([]core.Contract, 0, len(recs))
	for _, rec := range recs {
		contracts = append(contracts, toContract(rec))
	}
	return contracts, nil
}

// UpdateContractStatus transitions a contract to the given status.
func (r *Repo) UpdateContractStatus(ctx context.Context, id string, status core.ContractStatus) (core.Contract, error) {
	if !core.ValidContractStatus(status) {
		return core.Contract{}, fmt.Errorf("invalid contract status %q", status)
	}
	rec, err := r.client.Update(ctx, r.contractsTable, id, map[string]any{fieldStatus: string(status)})
	if err != nil {
		return core.Contract{}, fmt.Errorf("failed to update contract %s: %w", id, err)
	}
	return toContract(rec), nil
}

func leadFields(lead core.Lead) map[string]any {
	fields := map[string]any{
		fieldName:   lead.Name,
		fieldStatus: string(lead.Status),
	}
	if lead.Company != "" {
		fields[fieldCompany] = lead.Company
	}
	if lead.Phone != "" {
		fields[fieldPhone] = lead.Phone
	}
	if lead.Email != "" {
		fields[fieldEmail] = lead.Email
	}
	if lead.Message != "" {
		fields[fieldMessage] = lead.Message
	}
	if lead.Source != "" {
		fields[fieldSource] = lead.Source
	}
	return fields
}

func contractFields(contract core.Contract) map[string]any {
	fields := map[string]any{
		fieldClientID: contract.ClientID,
		fieldStatus:   string(contract.Status),
	}
	if contract.Plan != "" {
		fields[fieldPlan] = contract.Plan
	}
	if !contract.StartsAt.IsZero() {
		fields[fieldStartsAt] = contract.StartsAt.Format(time.RFC3339)
	}
	if !contract.EndsAt.IsZero() {
		fields[fieldEndsAt] = contract.EndsAt.Format(time.RFC3339)
	}
	return fields
}

func toLead(rec records.Record) core.Lead {
	return core.Lead{
		ID:        rec.ID,
		Name:      rec.String(fieldName),
		Company:   rec.String(fieldCompany),
		Phone:     rec.String(fieldPhone),
		Email:     rec.String(fieldEmail),
		Message:   rec.String(fieldMessage),
		Source:    rec.String(fieldSource),
		Status:    core.LeadStatus(rec.String(fieldStatus)),
		CreatedAt: rec.CreatedTime,
	}
}

func toContract(rec records.Record) core.Contract {
	contract := core.Contract{
		ID:        rec.ID,
		ClientID:  rec.String(fieldClientID),
		Plan:      rec.String(fieldPlan),
		Status:    core.ContractStatus(rec.String(fieldStatus)),
		CreatedAt: rec.CreatedTime,
	}
	if t, err := time.Parse(time.RFC3339, rec.String(fieldStartsAt)); err == nil {
		contract.StartsAt = t
	}
	if t, err := time.Parse(time.RFC3339, rec.String(fieldEndsAt)); err == nil {
		contract.EndsAt = t
	}
	return contract
}
