package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/zinrai/netenum-go/internal/infrastructure/db"
)

func TestRanges(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer mockDB.Close()

	ctx := context.Background()

	t.Run("List all networks", func(t *testing.T) {
		repo := NewRangeRepository(db.NewDB(mockDB))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT cidr::text FROM networks ORDER BY id")).
			WillReturnRows(sqlmock.NewRows([]string{"cidr"}).
				AddRow("192.168.1.0/24").
				AddRow("2001:db8::/120"))

		ranges, err := repo.Ranges(ctx)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(ranges) != 2 || ranges[0] != "192.168.1.0/24" || ranges[1] != "2001:db8::/120" {
			t.Errorf("unexpected ranges: %v", ranges)
		}
	})

	t.Run("Filter by network id", func(t *testing.T) {
		repo := NewRangeRepository(db.NewDB(mockDB), 1, 2)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT cidr::text FROM networks WHERE id = ANY($1) ORDER BY id")).
			WithArgs("{1,2}").
			WillReturnRows(sqlmock.NewRows([]string{"cidr"}).AddRow("10.0.0.0/8"))

		ranges, err := repo.Ranges(ctx)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(ranges) != 1 || ranges[0] != "10.0.0.0/8" {
			t.Errorf("unexpected ranges: %v", ranges)
		}
	})

	t.Run("No networks", func(t *testing.T) {
		repo := NewRangeRepository(db.NewDB(mockDB))

		mock.ExpectQuery("SELECT cidr::text FROM networks").
			WillReturnRows(sqlmock.NewRows([]string{"cidr"}))

		ranges, err := repo.Ranges(ctx)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(ranges) != 0 {
			t.Errorf("expected no ranges, got %v", ranges)
		}
	})

	t.Run("Database error when listing", func(t *testing.T) {
		repo := NewRangeRepository(db.NewDB(mockDB))

		mock.ExpectQuery("SELECT cidr::text FROM networks").
			WillReturnError(fmt.Errorf("database error"))

		_, err := repo.Ranges(ctx)
		if err == nil {
			t.Error("expected an error, got nil")
		}
	})

	t.Run("Row error", func(t *testing.T) {
		repo := NewRangeRepository(db.NewDB(mockDB))

		mock.ExpectQuery("SELECT cidr::text FROM networks").
			WillReturnRows(sqlmock.NewRows([]string{"cidr"}).
				AddRow("192.168.1.0/24").
				AddRow("192.168.2.0/24").
				RowError(1, fmt.Errorf("connection reset")))

		_, err := repo.Ranges(ctx)
		if err == nil {
			t.Error("expected an error, got nil")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
