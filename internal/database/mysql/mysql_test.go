package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/database"
)

func TestMySQLListColumns(t *testing.T) {
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
				{Name: "id", DataType: "int(11)"},
				{Name: "offense", DataType: "varchar(64)"},
				{Name: "hour_occ", DataType: "varchar(8)"},
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"COLUMN_NAME", "COLUMN_TYPE"}).
					AddRow("id", "int(11)").
					AddRow("offense", "varchar(64)").
					AddRow("hour_occ", "varchar(8)")
				mock.ExpectQuery(`SELECT COLUMN_NAME, COLUMN_TYPE\s+FROM information_schema\.COLUMNS`).WithArgs("incidents").WillReturnRows(rows)
			},
		},
		{
			name:          "Database query error",
			tableName:     "missing",
			expectedError: "error querying columns for table missing",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COLUMN_NAME, COLUMN_TYPE\s+FROM information_schema\.COLUMNS`).WithArgs("missing").WillReturnError(errors.New("connection lost"))
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
			handler := mysqlHandler{}
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

func TestMySQLSampleColumnValues(t *testing.T) {
	tests := []struct {
		name           string
		columnName     string
		expectedValues []string
		expectedError  string
		mockSetup      func(sqlmock.Sqlmock)
	}{
		{
			name:           "Success with distinct values",
			columnName:     "offense",
			expectedValues: []string{"BURGLARY", "ROBBERY"},
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"value"}).
					AddRow("BURGLARY").
					AddRow("ROBBERY")
				mock.ExpectQuery("SELECT DISTINCT CAST\\(`offense` AS CHAR\\) FROM `incidents` WHERE `offense` IS NOT NULL LIMIT 150").WillReturnRows(rows)
			},
		},
		{
			name:           "NULL and empty values are skipped",
			columnName:     "offense",
			expectedValues: []string{"THEFT"},
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"value"}).
					AddRow(nil).
					AddRow("").
					AddRow("THEFT")
				mock.ExpectQuery("SELECT DISTINCT CAST\\(`offense` AS CHAR\\) FROM `incidents` WHERE `offense` IS NOT NULL LIMIT 150").WillReturnRows(rows)
			},
		},
		{
			name:          "Database query error",
			columnName:    "offense",
			expectedError: "failed to sample values for incidents.offense",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT DISTINCT CAST\\(`offense` AS CHAR\\) FROM `incidents` WHERE `offense` IS NOT NULL LIMIT 150").WillReturnError(errors.New("table gone"))
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
			handler := mysqlHandler{}
			result, err := handler.SampleColumnValues(context.Background(), db, "incidents", tt.columnName, 150)

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
				} else {
					for i, expected := range tt.expectedValues {
						if result[i] != expected {
							t.Errorf("Value %d mismatch. Expected: %s, Got: %s", i, expected, result[i])
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

func TestMySQLQuoteIdentifier(t *testing.T) {
	handler := mysqlHandler{}
	tests := []struct {
		input    string
		expected string
	}{
		{"incidents", "`incidents`"},
		{"odd`name", "`odd``name`"},
	}
	for _, tt := range tests {
		if got := handler.QuoteIdentifier(tt.input); got != tt.expected {
			t.Errorf("QuoteIdentifier(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
