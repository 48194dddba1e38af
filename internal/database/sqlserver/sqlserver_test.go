package sqlserver

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/database"
)

func TestSQLServerListColumns(t *testing.T) {
	tests := []struct {
		name          string
		tableName     string
		expectedCols  []database.ColumnInfo
		expectedError string
		mockSetup     func(sqlmock.Sqlmock)
	}{
		{
			name:      "Success with columns in ordinal order",
			tableName: "incidents",
			expectedCols: []database.ColumnInfo{
				{Name: "id", DataType: "int"},
				{Name: "offense", DataType: "nvarchar"},
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE"}).
					AddRow("id", "int").
					AddRow("offense", "nvarchar")
				mock.ExpectQuery(`SELECT COLUMN_NAME, DATA_TYPE\s+FROM INFORMATION_SCHEMA\.COLUMNS`).WithArgs("incidents").WillReturnRows(rows)
			},
		},
		{
			name:          "Database query error",
			tableName:     "missing",
			expectedError: "error querying columns for table missing",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COLUMN_NAME, DATA_TYPE\s+FROM INFORMATION_SCHEMA\.COLUMNS`).WithArgs("missing").WillReturnError(errors.New("connection lost"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("Failed to create mock database: %v", err)
			}
			defer mockDB.Close()

			tt.mockSetup(mock)

			db := &database.DB{Pool: mockDB}
			handler := sqlServerHandler{}
			result, err := handler.ListColumns(db, tt.tableName)

			if tt.expectedError != "" {
				if err == nil {
					t.Errorf("Expected error containing '%s', but got nil", tt.expectedError)
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, but got: %v", err)
				}
				if len(result) != len(tt.expectedCols) {
					t.Errorf("Expected %d columns, got %d", len(tt.expectedCols), len(result))
				} else {
					for i, expected := range tt.expectedCols {
						if result[i] != expected {
							t.Errorf("Column %d mismatch. Expected: %+v, Got: %+v", i, expected, result[i])
						}
					}
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unfulfilled mock expectations: %v", err)
			}
		})
	}
}

func TestSQLServerSampleColumnValues(t *testing.T) {
	tests := []struct {
		name           string
		expectedValues []string
		expectedError  string
		mockSetup      func(sqlmock.Sqlmock)
	}{
		{
			name:           "Success with distinct values",
			expectedValues: []string{"BURGLARY", "ROBBERY"},
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"value"}).
					AddRow("BURGLARY").
					AddRow("ROBBERY")
				mock.ExpectQuery(`SELECT DISTINCT TOP 150 CAST\(\[offense\] AS NVARCHAR\(MAX\)\) FROM \[incidents\] WHERE \[offense\] IS NOT NULL`).WillReturnRows(rows)
			},
		},
		{
			name:          "Database query error",
			expectedError: "failed to sample values for incidents.offense",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT DISTINCT TOP 150 CAST\(\[offense\] AS NVARCHAR\(MAX\)\) FROM \[incidents\] WHERE \[offense\] IS NOT NULL`).WillReturnError(errors.New("table gone"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("Failed to create mock database: %v", err)
			}
			defer mockDB.Close()

			tt.mockSetup(mock)

			db := &database.DB{Pool: mockDB}
			handler := sqlServerHandler{}
			result, err := handler.SampleColumnValues(context.Background(), db, "incidents", "offense", 150)

			if tt.expectedError != "" {
				if err == nil {
					t.Errorf("Expected error containing '%s', but got nil", tt.expectedError)
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, but got: %v", err)
				}
				if len(result) != len(tt.expectedValues) {
					t.Errorf("Expected %d values, got %d: %v", len(tt.expectedValues), len(result), result)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unfulfilled mock expectations: %v", err)
			}
		})
	}
}

func TestSQLServerQuoteIdentifier(t *testing.T) {
	handler := sqlServerHandler{}
	if got := handler.QuoteIdentifier("incidents"); got != "[incidents]" {
		t.Errorf("QuoteIdentifier(incidents) = %q, want [incidents]", got)
	}
}
