package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeRuleRepositoryLookup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewFeeRuleRepository(db)
	rows := sqlmock.NewRows([]string{"id", "program", "semester", "per_subject_fee", "late_fee", "last_date"}).
		AddRow("rule-1", "BTECH-CS", 6, 500, 100, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, program, semester, per_subject_fee, late_fee, last_date")).
		WithArgs("BTECH-CS", 6).
		WillReturnRows(rows)

	rule, err := repo.Lookup(context.Background(), "BTECH-CS", 6)
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, 500, rule.PerSubjectFee)
	assert.Equal(t, 100, rule.LateFee)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRuleRepositoryLookupMissingIsNotAnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewFeeRuleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, program, semester, per_subject_fee, late_fee, last_date")).
		WithArgs("MBA", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "program", "semester", "per_subject_fee", "late_fee", "last_date"}))

	rule, err := repo.Lookup(context.Background(), "MBA", 2)
	require.NoError(t, err)
	assert.Nil(t, rule)
	require.NoError(t, mock.ExpectationsWereMet())
}
