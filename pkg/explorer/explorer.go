package explorer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mwantia/screener/pkg/log"
	"github.com/mwantia/screener/pkg/query"
	"github.com/mwantia/screener/pkg/record"
	"github.com/mwantia/screener/pkg/savedquery"
)

var ErrLoading = errors.New("records are still loading")

const (
	DeleteConfirmation = "Are you sure you want to delete this saved query?"

	DefaultResultsPath = "/query-result"
	DefaultSavePath    = "/save-query"
)

type Options struct {
	ResultsPath string
	SavePath    string
	Now         func() time.Time
}

// Explorer is one interactive session over a record set: the current view,
// the saved queries and the side effects that follow user actions.
type Explorer struct {
	mutex sync.Mutex
	view  query.View

	records *record.Store
	source  record.Source
	repo    *savedquery.Repository
	address AddressBarSync
	log     log.LoggerService

	resultsPath string
	savePath    string
	now         func() time.Time
}

func New(records *record.Store, source record.Source, repo *savedquery.Repository, address AddressBarSync, logger log.LoggerService, opts Options) *Explorer {
	if opts.ResultsPath == "" {
		opts.ResultsPath = DefaultResultsPath
	}
	if opts.SavePath == "" {
		opts.SavePath = DefaultSavePath
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if address == nil {
		address = &Location{}
	}

	return &Explorer{
		view:        query.NewView(nil, nil),
		records:     records,
		source:      source,
		repo:        repo,
		address:     address,
		log:         logger,
		resultsPath: opts.ResultsPath,
		savePath:    opts.SavePath,
		now:         opts.Now,
	}
}

// Page is what the results view shows.
type Page struct {
	Rows        []record.Record   `json:"rows"`
	ResultCount int               `json:"resultCount"`
	TotalCount  int               `json:"totalCount"`
	Columns     []string          `json:"columns"`
	TextColumns []string          `json:"textColumns"`
	Filters     query.FilterState `json:"filters"`
	Sort        *query.SortKey    `json:"sortConfig"`
}

// Open navigates to location: its parameters become the filters, the sort
// is reset and the record set is fetched again. A failed fetch leaves an
// empty record set and is returned.
func (e *Explorer) Open(ctx context.Context, location string) error {
	raw := location
	if _, params, ok := strings.Cut(location, "?"); ok {
		raw = params
	} else if strings.HasPrefix(location, "/") {
		raw = ""
	}

	e.mutex.Lock()
	e.view = query.NewView(query.Decode(raw), nil)
	e.mutex.Unlock()

	return e.Reload(ctx)
}

// Reload fetches the record set without touching the view.
func (e *Explorer) Reload(ctx context.Context) error {
	return e.records.Load(ctx, e.source)
}

func (e *Explorer) View() query.View {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.view
}

// Location is the address-bar form of the current view.
func (e *Explorer) Location() string {
	return e.View().Location(e.resultsPath)
}

func (e *Explorer) SetFilter(column, value string) query.View {
	return e.update(func(v query.View) query.View {
		return v.WithFilter(column, value)
	}, true)
}

func (e *Explorer) ClearFilters() query.View {
	return e.update(query.View.ClearFilters, true)
}

// ToggleSort applies a header click. Sort is not part of the location.
func (e *Explorer) ToggleSort(column string) query.View {
	return e.update(func(v query.View) query.View {
		return v.ToggleSort(column)
	}, false)
}

func (e *Explorer) update(transition func(query.View) query.View, replace bool) query.View {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.view = transition(e.view)
	if replace {
		e.address.Replace(e.view.Location(e.resultsPath))
	}
	return e.view
}

// Result evaluates the current view. It fails with ErrLoading until the
// record set has been loaded.
func (e *Explorer) Result() (Page, error) {
	view := e.View()
	result, err := e.apply(view)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Rows:        result.Rows,
		ResultCount: result.ResultCount,
		TotalCount:  result.TotalCount,
		Columns:     e.records.Columns(),
		TextColumns: e.records.TextColumns(),
		Filters:     view.Filters(),
		Sort:        view.Sort(),
	}, nil
}

func (e *Explorer) apply(view query.View) (query.Result, error) {
	records, ready := e.records.Records()
	if !ready {
		return query.Result{}, ErrLoading
	}
	return view.Apply(records), nil
}

// Export hands the current result as CSV to dl. An empty result returns
// query.ErrNothingToExport and downloads nothing.
func (e *Explorer) Export(ctx context.Context, dl FileDownloader) (query.ExportFile, error) {
	result, err := e.apply(e.View())
	if err != nil {
		return query.ExportFile{}, err
	}

	file, err := query.NewExport(result.Rows, e.now())
	if err != nil {
		return query.ExportFile{}, err
	}
	if err := dl.Download(ctx, file); err != nil {
		return query.ExportFile{}, fmt.Errorf("failed to download %s: %w", file.Name, err)
	}

	e.log.Info("Exported %d rows to %s", result.ResultCount, file.Name)
	return file, nil
}

// Snapshot freezes the current view and returns the location of the save
// view carrying it.
func (e *Explorer) Snapshot() (string, error) {
	view := e.View()
	result, err := e.apply(view)
	if err != nil {
		return "", err
	}

	transfer, err := query.EncodeTransfer(view.Snapshot(result, e.now().UTC()))
	if err != nil {
		return "", err
	}
	return e.savePath + "?" + transfer, nil
}

// Draft is the prefilled save form.
type Draft struct {
	Snapshot *query.Snapshot `json:"snapshot"`
	Name     string          `json:"name"`
	Tags     []string        `json:"tags"`
}

// PrepareSave reads the transfer payload of a save view location. A missing
// or unreadable payload yields an empty draft.
func (e *Explorer) PrepareSave(location string) Draft {
	draft := Draft{Tags: savedquery.Vocabulary()}

	snapshot, err := query.DecodeTransfer(location)
	if err != nil {
		e.log.Warn("Error parsing query data: %v", err)
		return draft
	}
	if snapshot == nil {
		return draft
	}

	draft.Snapshot = snapshot
	draft.Name = savedquery.AutoName(snapshot.Filters, e.now())
	return draft
}

// SaveForm is the user input of the save view.
type SaveForm struct {
	Transfer    string   `json:"data"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// SaveQuery stores the snapshot carried by the form's transfer payload.
func (e *Explorer) SaveQuery(ctx context.Context, form SaveForm) (savedquery.SavedQuery, error) {
	draft := e.PrepareSave(form.Transfer)
	if draft.Snapshot == nil {
		return savedquery.SavedQuery{}, query.NewValidationError("data", "no query to save")
	}

	return e.repo.Save(ctx, savedquery.Candidate{
		Name:        form.Name,
		Description: form.Description,
		Tags:        form.Tags,
		Snapshot:    *draft.Snapshot,
	})
}

// SaveCurrent stores the current view directly, without a transfer payload.
func (e *Explorer) SaveCurrent(ctx context.Context, name, description string, tags []string) (savedquery.SavedQuery, error) {
	view := e.View()
	result, err := e.apply(view)
	if err != nil {
		return savedquery.SavedQuery{}, err
	}

	return e.repo.Save(ctx, savedquery.Candidate{
		Name:        name,
		Description: description,
		Tags:        tags,
		Snapshot:    view.Snapshot(result, e.now().UTC()),
	})
}

func (e *Explorer) SavedQueries(ctx context.Context) ([]savedquery.SavedQuery, error) {
	return e.repo.List(ctx)
}

func (e *Explorer) CountQueries(ctx context.Context) (int, error) {
	return e.repo.Count(ctx)
}

func (e *Explorer) RecentQueries(ctx context.Context, n int) ([]savedquery.SavedQuery, error) {
	return e.repo.Recent(ctx, n)
}

// DeleteQuery removes a saved query once prompt confirms it. It reports
// whether the query was deleted.
func (e *Explorer) DeleteQuery(ctx context.Context, id string, prompt ConfirmationPrompt) (bool, error) {
	ok, err := prompt.Confirm(ctx, DeleteConfirmation)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := e.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// LoadQuery restores the filters and sort of a saved query and navigates to
// its location.
func (e *Explorer) LoadQuery(ctx context.Context, id string) (string, error) {
	saved, err := e.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.view = query.NewView(saved.Filters.Active(), saved.Sort)
	location := e.view.Location(e.resultsPath)
	e.address.Push(location)
	return location, nil
}

// SearchLocation builds the results location of the search view. The query
// text is passed on as an opaque "query" parameter next to the company name.
// Active filters win over both.
func (e *Explorer) SearchLocation(queryText, company string, filters query.FilterState) (string, error) {
	queryText = strings.TrimSpace(queryText)
	company = strings.TrimSpace(company)
	if queryText == "" && company == "" {
		return "", query.NewValidationError("query", "please enter a search query or company name")
	}

	params := query.FilterState{}
	if company != "" {
		params["Name"] = company
	}
	if queryText != "" {
		params["query"] = queryText
	}
	for column, value := range filters.Active() {
		params[column] = value
	}
	return query.Location(e.resultsPath, params), nil
}
