package extractor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/GoogleCloudPlatform/db-dump-context/internal/config"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/database"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/metadata"
)

type fakeAdapter struct {
	mu             sync.Mutex
	tables         []string
	columns        map[string][]database.ColumnInfo
	samples        map[string][]string
	listErr        error
	sampleFailures int
	sampleCalls    int
}

func (f *fakeAdapter) ListTables() ([]string, error) { return f.tables, nil }

func (f *fakeAdapter) ListColumns(tableName string) ([]database.ColumnInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.columns[tableName], nil
}

func (f *fakeAdapter) SampleColumnValues(ctx context.Context, tableName, columnName string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampleCalls++
	if f.sampleFailures > 0 {
		f.sampleFailures--
		return nil, errors.New("transient query failure")
	}
	return f.samples[tableName+"."+columnName], nil
}

func (f *fakeAdapter) Ping(ctx context.Context) error   { return nil }
func (f *fakeAdapter) Close() error                     { return nil }
func (f *fakeAdapter) GetConfig() config.DatabaseConfig { return config.DatabaseConfig{} }

type fakeLLM struct {
	flagPII bool
}

func (f *fakeLLM) ScreenSampleValues(ctx context.Context, tableName, columnName, dataType string, sampleValues []string) ([]string, bool, error) {
	if f.flagPII {
		return []string{"synthetic1", "synthetic2"}, true, nil
	}
	return sampleValues, false, nil
}

func (f *fakeLLM) IsAPIKeyValid(ctx context.Context) error { return nil }
func (f *fakeLLM) Close() error                            { return nil }

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		tables: []string{"incidents", "officers"},
		columns: map[string][]database.ColumnInfo{
			"incidents": {
				{Name: "id", DataType: "int(11)"},
				{Name: "offense", DataType: "varchar(64)"},
			},
			"officers": {
				{Name: "badge", DataType: "int(11)"},
				{Name: "precinct", DataType: "varchar(32)"},
			},
		},
		samples: map[string][]string{
			"incidents.offense": {"ROBBERY", "BURGLARY", "BURGLARY"},
			"officers.precinct": {"NORTH", "SOUTH"},
		},
	}
}

func TestExtractFromLive(t *testing.T) {
	svc := NewService(newFakeAdapter(), nil)
	records, err := svc.ExtractFromLive(context.Background(), nil, Config{SchemaLabel: "public", ValueCap: 150})
	if err != nil {
		t.Fatalf("ExtractFromLive returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// Records come back sorted by table name.
	if records[0].Table != "incidents" || records[1].Table != "officers" {
		t.Errorf("unexpected record order: %s, %s", records[0].Table, records[1].Table)
	}

	offense := records[0].Columns["offense"]
	if offense.IsNumeric {
		t.Error("offense should not be classified numeric")
	}
	want := []string{"BURGLARY", "ROBBERY"}
	if len(offense.UniqueValues) != len(want) {
		t.Fatalf("expected %v, got %v", want, offense.UniqueValues)
	}
	for i := range want {
		if offense.UniqueValues[i] != want[i] {
			t.Errorf("value %d: expected %s, got %s", i, want[i], offense.UniqueValues[i])
		}
	}

	id := records[0].Columns["id"]
	if !id.IsNumeric {
		t.Error("id should be classified numeric")
	}
	if len(id.UniqueValues) != 0 {
		t.Errorf("numeric column should carry no values, got %v", id.UniqueValues)
	}
}

func TestExtractFromLiveWithTargetFilter(t *testing.T) {
	svc := NewService(newFakeAdapter(), nil)
	records, err := svc.ExtractFromLive(context.Background(), map[string]bool{"officers": true}, Config{SchemaLabel: "public", ValueCap: 150})
	if err != nil {
		t.Fatalf("ExtractFromLive returned error: %v", err)
	}
	if len(records) != 1 || records[0].Table != "officers" {
		t.Fatalf("expected only officers, got %v", records)
	}
}

func TestExtractFromLiveRetriesTransientSampleFailure(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.tables = []string{"officers"}
	adapter.sampleFailures = 1

	svc := NewService(adapter, nil)
	svc.retryOpts.InitialBackoff = 0
	records, err := svc.ExtractFromLive(context.Background(), nil, Config{SchemaLabel: "public", ValueCap: 150})
	if err != nil {
		t.Fatalf("ExtractFromLive returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	precinct := records[0].Columns["precinct"]
	want := []string{"NORTH", "SOUTH"}
	if len(precinct.UniqueValues) != len(want) {
		t.Fatalf("expected values after retry, got %v", precinct.UniqueValues)
	}
	if adapter.sampleCalls != 2 {
		t.Errorf("expected 2 sampling calls (failure then retry), got %d", adapter.sampleCalls)
	}
}

func TestExtractFromLiveListColumnsError(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.listErr = errors.New("boom")
	svc := NewService(adapter, nil)
	_, err := svc.ExtractFromLive(context.Background(), nil, Config{SchemaLabel: "public", ValueCap: 150})
	if err == nil {
		t.Fatal("expected error when listing columns fails")
	}
}

func TestExtractFromLiveNoAdapter(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.ExtractFromLive(context.Background(), nil, Config{}); err == nil {
		t.Fatal("expected error without a database adapter")
	}
}

func TestScreenRecordsReplacesFlaggedValues(t *testing.T) {
	svc := NewService(nil, &fakeLLM{flagPII: true})
	records := []*metadata.TableMetadata{
		{
			Schema: "public",
			Table:  "users",
			Columns: map[string]metadata.ColumnMetadata{
				"email": {DataType: "varchar(255)", UniqueValues: []string{"a@b.com", "c@d.com"}},
				"id":    {DataType: "int(11)", IsNumeric: true},
			},
		},
	}
	svc.screenRecords(context.Background(), records)

	email := records[0].Columns["email"]
	if len(email.UniqueValues) != 2 || email.UniqueValues[0] != "synthetic1" {
		t.Errorf("expected synthetic values, got %v", email.UniqueValues)
	}
	if records[0].Columns["id"].UniqueValues != nil {
		t.Error("column without samples should be untouched")
	}
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), DefaultRetryOptions, func(ctx context.Context) (string, error) {
		calls++
		return "", &ErrInvalidInput{Msg: "bad input"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call for non-retryable error, got %d", calls)
	}
}

func TestWithRetryRetriesQueryErrors(t *testing.T) {
	opts := DefaultRetryOptions
	opts.InitialBackoff = 0
	calls := 0
	result, err := withRetry(context.Background(), opts, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &ErrQueryExecution{Msg: "transient"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if result != "ok" || calls != 3 {
		t.Errorf("expected ok after 3 calls, got %q after %d", result, calls)
	}
}
