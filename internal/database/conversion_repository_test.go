package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/jonesrussell/affiliate-tracker/internal/database"
	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// conversionColumns lists the columns returned by conversion SELECT queries.
var conversionColumns = []string{
	"id", "external_id", "attributed_click_id", "fingerprint", "amount", "occurred_at", "created_at",
}

func TestConversionRepository_Insert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := database.NewConversionRepository(db)

	occurredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createdAt := occurredAt.Add(time.Second)
	clickID := int64(55)
	amount := 19.99

	mock.ExpectQuery("INSERT INTO conversion_events").
		WithArgs("order-1001", clickID, "fp-one", amount, occurredAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), createdAt))

	event := &domain.ConversionEvent{
		ExternalID:        "order-1001",
		AttributedClickID: &clickID,
		Fingerprint:       "fp-one",
		Amount:            &amount,
		OccurredAt:        occurredAt,
	}

	inserted, err := repo.Insert(context.Background(), event)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if !inserted {
		t.Fatal("Insert() inserted = false, want true")
	}
	if event.ID != 9 {
		t.Errorf("Insert() id = %d, want 9", event.ID)
	}

	expectationsMet(t, mock)
}

func TestConversionRepository_Insert_DuplicateExternalID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := database.NewConversionRepository(db)
	occurredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// ON CONFLICT DO NOTHING swallows the row, so RETURNING yields nothing.
	mock.ExpectQuery("INSERT INTO conversion_events").
		WithArgs("order-1001", nil, "fp-one", nil, occurredAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	event := &domain.ConversionEvent{
		ExternalID:  "order-1001",
		Fingerprint: "fp-one",
		OccurredAt:  occurredAt,
	}

	inserted, err := repo.Insert(context.Background(), event)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if inserted {
		t.Fatal("Insert() inserted = true, want false for duplicate external_id")
	}

	expectationsMet(t, mock)
}

func TestConversionRepository_Insert_ClickAlreadyAttributed(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := database.NewConversionRepository(db)

	occurredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clickID := int64(55)

	mock.ExpectQuery("INSERT INTO conversion_events").
		WithArgs("order-1002", clickID, "fp-one", nil, occurredAt).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_conversion_events_click"})

	event := &domain.ConversionEvent{
		ExternalID:        "order-1002",
		AttributedClickID: &clickID,
		Fingerprint:       "fp-one",
		OccurredAt:        occurredAt,
	}

	_, err := repo.Insert(context.Background(), event)
	if !errors.Is(err, domain.ErrClickAttributed) {
		t.Fatalf("Insert() error = %v, want ErrClickAttributed", err)
	}

	expectationsMet(t, mock)
}

func TestConversionRepository_GetByExternalID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := database.NewConversionRepository(db)

	occurredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clickID := int64(55)

	mock.ExpectQuery("SELECT (.+) FROM conversion_events WHERE external_id").
		WithArgs("order-1001").
		WillReturnRows(sqlmock.NewRows(conversionColumns).AddRow(
			int64(9), "order-1001", clickID, "fp-one", 19.99, occurredAt, occurredAt.Add(time.Second),
		))

	event, err := repo.GetByExternalID(context.Background(), "order-1001")
	if err != nil {
		t.Fatalf("GetByExternalID() error = %v", err)
	}
	if !event.Attributed() {
		t.Error("GetByExternalID() attributed = false, want true")
	}
	if *event.AttributedClickID != clickID {
		t.Errorf("GetByExternalID() click id = %d, want %d", *event.AttributedClickID, clickID)
	}

	expectationsMet(t, mock)
}

func TestConversionRepository_GetByExternalID_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := database.NewConversionRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM conversion_events WHERE external_id").
		WithArgs("order-missing").
		WillReturnRows(sqlmock.NewRows(conversionColumns))

	_, err := repo.GetByExternalID(context.Background(), "order-missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByExternalID() error = %v, want ErrNotFound", err)
	}

	expectationsMet(t, mock)
}
