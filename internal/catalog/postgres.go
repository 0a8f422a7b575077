package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/niveshhub/fundsearch/internal/fund"
	"github.com/niveshhub/fundsearch/pkg/postgres"
)

// PostgresSource streams scheme rows from the distributor's catalog table.
// Rows are read through a cursor, so memory stays bounded regardless of
// catalog size.
type PostgresSource struct {
	client *postgres.Client
	table  string
	logger *slog.Logger
}

// NewPostgresSource creates a PostgresSource reading from the given table.
func NewPostgresSource(client *postgres.Client, table string) *PostgresSource {
	return &PostgresSource{
		client: client,
		table:  table,
		logger: slog.Default().With("component", "catalog-postgres"),
	}
}

// Stream selects all scheme rows and emits one raw record per row. Rows with
// NULL scheme code or name are emitted as-is and dropped downstream by the
// document builder, matching the file source's best-effort policy.
func (s *PostgresSource) Stream(ctx context.Context, emit EmitFunc) (Stats, error) {
	var stats Stats

	query := fmt.Sprintf(
		`SELECT scheme_code, scheme_name, nav, aum, expense_ratio FROM %s ORDER BY scheme_code`,
		pq.QuoteIdentifier(s.table),
	)
	rows, err := s.client.DB.QueryContext(ctx, query)
	if err != nil {
		return stats, fmt.Errorf("querying catalog table %s: %w", s.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			code    sql.NullInt64
			name    sql.NullString
			nav     sql.NullFloat64
			aum     sql.NullFloat64
			expense sql.NullFloat64
		)
		if err := rows.Scan(&code, &name, &nav, &aum, &expense); err != nil {
			stats.Malformed++
			s.logger.Debug("dropping unscannable catalog row", "error", err)
			continue
		}
		rec := fund.RawRecord{
			SchemeCode: code.Int64,
			SchemeName: name.String,
		}
		if nav.Valid {
			rec.NAV = &nav.Float64
		}
		if aum.Valid {
			rec.AUM = &aum.Float64
		}
		if expense.Valid {
			rec.ExpenseRatio = &expense.Float64
		}
		if err := emit(rec); err != nil {
			return stats, err
		}
		stats.Emitted++
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterating catalog table %s: %w", s.table, err)
	}

	s.logger.Info("catalog stream complete",
		"table", s.table,
		"emitted", stats.Emitted,
		"malformed", stats.Malformed,
	)
	return stats, nil
}
