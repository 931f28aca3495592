package crm

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aperturesearch/portfolio/internal/metrics"
)

const (
	searchObject  = "searches"
	companyObject = "companies"

	// notes created by the publisher carry this title prefix so a later
	// publish can find and replace its own note.
	noteTitlePrefix = "Portfolio:"
)

// Payload is everything the publisher needs for one upsert.
type Payload struct {
	CompanyName string
	CompanyURL  string
	RoleTitle   string
	Markdown    string
	Metrics     metrics.Metrics
}

// Result reports what the publish did.
type Result struct {
	RecordID         string `json:"record_id"`
	IsNewRecord      bool   `json:"is_new_record"`
	CollectionLinked bool   `json:"collection_linked"`
	CollectionName   string `json:"collection_name,omitempty"`
	Message          string `json:"message"`
	URL              string `json:"url"`
}

// Publisher performs the idempotent CRM upsert.
type Publisher struct {
	client    *Client
	workspace string
	log       *slog.Logger

	now func() time.Time
}

func NewPublisher(client *Client, workspace string, log *slog.Logger) *Publisher {
	return &Publisher{
		client:    client,
		workspace: workspace,
		log:       log,
		now:       time.Now,
	}
}

// Publish upserts a search record keyed by a fuzzy company-name match:
// find or create the company, find or create the parent search, update its
// structured fields, replace the portfolio note on both records, and
// best-effort-link a matching collection. Note and collection failures are
// logged, never fatal; a failed field update is.
func (p *Publisher) Publish(ctx context.Context, payload Payload) (Result, error) {
	if payload.CompanyName == "" {
		return Result{}, fmt.Errorf("company name is required")
	}

	searchID, companyID, err := p.findExistingSearch(ctx, payload.CompanyName)
	if err != nil {
		return Result{}, err
	}

	isNew := false
	if searchID == "" {
		isNew = true
		companyID, err = p.findOrCreateCompany(ctx, payload)
		if err != nil {
			return Result{}, err
		}
		searchID, err = p.createSearch(ctx, payload, companyID)
		if err != nil {
			return Result{}, err
		}
	}

	if err := p.updateStructuredFields(ctx, searchID, payload); err != nil {
		return Result{}, err
	}

	if payload.Markdown != "" {
		p.replaceNote(ctx, searchObject, searchID, payload)
		if companyID != "" {
			p.replaceNote(ctx, companyObject, companyID, payload)
		}
	}

	linked, collectionName := p.linkCollection(ctx, searchID, payload.CompanyName)

	verb := "Updated existing"
	if isNew {
		verb = "Created new"
	}
	message := fmt.Sprintf("%s search and pushed portfolio", verb)
	if linked {
		message += fmt.Sprintf(" (linked to %q collection)", collectionName)
	}

	return Result{
		RecordID:         searchID,
		IsNewRecord:      isNew,
		CollectionLinked: linked,
		CollectionName:   collectionName,
		Message:          message,
		URL:              fmt.Sprintf("https://app.attio.com/%s/searches/%s", p.workspace, searchID),
	}, nil
}

// findExistingSearch returns the matched search record and, when the search
// carries a company link, the linked company record.
func (p *Publisher) findExistingSearch(ctx context.Context, companyName string) (searchID, companyID string, err error) {
	records, err := p.client.QueryRecordsByName(ctx, searchObject, companyName, 1)
	if err != nil {
		return "", "", fmt.Errorf("query searches: %w", err)
	}
	if len(records) == 0 {
		return "", "", nil
	}
	searchID = records[0].ID.RecordID
	companyID = records[0].LinkedRecordID("client_2")
	if companyID == "" {
		companies, err := p.client.QueryRecordsByName(ctx, companyObject, companyName, 1)
		if err != nil {
			return "", "", fmt.Errorf("query companies: %w", err)
		}
		if len(companies) > 0 {
			companyID = companies[0].ID.RecordID
		}
	}
	return searchID, companyID, nil
}

func (p *Publisher) findOrCreateCompany(ctx context.Context, payload Payload) (string, error) {
	companies, err := p.client.QueryRecordsByName(ctx, companyObject, payload.CompanyName, 1)
	if err != nil {
		return "", fmt.Errorf("query companies: %w", err)
	}
	if len(companies) > 0 {
		return companies[0].ID.RecordID, nil
	}

	values := map[string]any{
		"name": []map[string]any{{"value": payload.CompanyName}},
	}
	if host := hostnameOf(payload.CompanyURL); host != "" {
		values["domains"] = []map[string]any{{"domain": host}}
	}
	id, err := p.client.CreateRecord(ctx, companyObject, values)
	if err != nil {
		return "", fmt.Errorf("create company: %w", err)
	}
	return id, nil
}

func (p *Publisher) createSearch(ctx context.Context, payload Payload, companyID string) (string, error) {
	today := p.now().Format("2006-01-02")
	values := map[string]any{
		"name":                     []map[string]any{{"value": payload.CompanyName + " - " + payload.RoleTitle}},
		"position":                 []map[string]any{{"value": payload.RoleTitle}},
		"kickoff_date":             []map[string]any{{"value": today}},
		"company_url":              []map[string]any{{"value": payload.CompanyURL}},
		"portfolio_generated_date": []map[string]any{{"value": today}},
	}
	if companyID != "" {
		values["client_2"] = []map[string]any{{
			"target_object":    companyObject,
			"target_record_id": companyID,
		}}
	}
	id, err := p.client.CreateRecord(ctx, searchObject, values)
	if err != nil {
		return "", fmt.Errorf("create search: %w", err)
	}
	return id, nil
}

// updateStructuredFields patches the filterable fields; the full markdown
// goes in a note instead, where Attio renders it.
func (p *Publisher) updateStructuredFields(ctx context.Context, searchID string, payload Payload) error {
	m := payload.Metrics
	values := map[string]any{
		"position":               []map[string]any{{"value": payload.RoleTitle}},
		"company_url":            []map[string]any{{"value": payload.CompanyURL}},
		"portfolio_last_updated": []map[string]any{{"value": p.now().Format("2006-01-02")}},
	}
	if m.FundingStage != nil {
		values["funding_stage"] = []map[string]any{{"option": MapFundingStage(*m.FundingStage)}}
	}
	if m.TotalFundingMillions != nil {
		if amount, ok := ParseCurrency(metrics.FormatFunding(*m.TotalFundingMillions)); ok {
			values["total_funding"] = []map[string]any{{"currency_value": amount}}
		}
	}
	if m.ValuationMillions != nil {
		if amount, ok := ParseCurrency(metrics.FormatFunding(*m.ValuationMillions)); ok {
			values["valuation"] = []map[string]any{{"currency_value": amount}}
		}
	}
	if m.EmployeeCount != nil {
		values["employee_count"] = []map[string]any{{"value": *m.EmployeeCount}}
	}
	if m.FoundedYear != nil {
		values["founded_year"] = []map[string]any{{"value": *m.FoundedYear}}
	}
	if m.Headquarters != nil {
		values["headquarters"] = []map[string]any{{"value": *m.Headquarters}}
	}
	if len(m.TopCompetitors) > 0 {
		values["top_competitors"] = []map[string]any{{"value": strings.Join(m.TopCompetitors, ", ")}}
	}

	if err := p.client.UpdateRecord(ctx, searchObject, searchID, values); err != nil {
		return fmt.Errorf("update search fields: %w", err)
	}
	return nil
}

// replaceNote deletes the previous portfolio note on the record, if any,
// and attaches a fresh one.
func (p *Publisher) replaceNote(ctx context.Context, parentObject, parentRecordID string, payload Payload) {
	title := fmt.Sprintf("%s %s - %s", noteTitlePrefix, payload.CompanyName, payload.RoleTitle)

	notes, err := p.client.ListNotes(ctx, parentObject, parentRecordID)
	if err != nil {
		p.log.Warn("listing notes failed", "parent", parentObject, "error", err)
	}
	for _, note := range notes {
		if strings.HasPrefix(note.Title, noteTitlePrefix) {
			if err := p.client.DeleteNote(ctx, note.ID.NoteID); err != nil {
				p.log.Warn("deleting stale note failed", "note_id", note.ID.NoteID, "error", err)
			}
			break
		}
	}

	if err := p.client.CreateNote(ctx, parentObject, parentRecordID, title, payload.Markdown); err != nil {
		p.log.Warn("creating note failed", "parent", parentObject, "error", err)
	}
}

// linkCollection looks for a collection whose name contains the company
// name, or vice versa, and records the link on the search. Best effort.
func (p *Publisher) linkCollection(ctx context.Context, searchID, companyName string) (bool, string) {
	lists, err := p.client.ListLists(ctx)
	if err != nil {
		p.log.Warn("listing collections failed", "error", err)
		return false, ""
	}

	lowerCompany := strings.ToLower(companyName)
	for _, list := range lists {
		lowerName := strings.ToLower(list.Name)
		if lowerName == "" {
			continue
		}
		if !strings.Contains(lowerName, lowerCompany) && !strings.Contains(lowerCompany, lowerName) {
			continue
		}
		values := map[string]any{
			"list_id":  []map[string]any{{"value": list.ID.ListID}},
			"list_url": []map[string]any{{"value": fmt.Sprintf("https://app.attio.com/%s/collection/%s", p.workspace, list.ID.ListID)}},
		}
		if err := p.client.UpdateRecord(ctx, searchObject, searchID, values); err != nil {
			p.log.Warn("linking collection failed", "collection", list.Name, "error", err)
			return false, ""
		}
		return true, list.Name
	}
	return false, ""
}

func hostnameOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
