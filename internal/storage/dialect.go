package storage

import "fmt"

// dialect captures the handful of statements and expressions that differ
// between sqlite and mysql. Everything else in the store is portable
// ?-placeholder SQL.
type dialect struct {
	name      string
	driver    string // database/sql driver name
	monthExpr string // extracts 1-12 from a date column
	yearExpr  string // extracts the year from a date column
	upsert    string // budget insert-or-update on (category_id, month, year)
}

var sqliteDialect = dialect{
	name:      BackendSQLite,
	driver:    "sqlite",
	monthExpr: "CAST(strftime('%%m', %s) AS INTEGER)",
	yearExpr:  "CAST(strftime('%%Y', %s) AS INTEGER)",
	upsert: `INSERT INTO budgets (category_id, amount_cents, month, year)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (category_id, month, year) DO UPDATE SET amount_cents = excluded.amount_cents`,
}

var mysqlDialect = dialect{
	name:      BackendMySQL,
	driver:    "mysql",
	monthExpr: "MONTH(%s)",
	yearExpr:  "YEAR(%s)",
	upsert: `INSERT INTO budgets (category_id, amount_cents, month, year)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE amount_cents = VALUES(amount_cents)`,
}

func dialectFor(backend string) (dialect, error) {
	switch backend {
	case BackendSQLite:
		return sqliteDialect, nil
	case BackendMySQL:
		return mysqlDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported storage backend: %q", backend)
	}
}

func (d dialect) month(col string) string {
	return fmt.Sprintf(d.monthExpr, col)
}

func (d dialect) year(col string) string {
	return fmt.Sprintf(d.yearExpr, col)
}

// queries holds the dialect-sensitive statements, built once at Open.
type queries struct {
	upsertBudget    string
	monthlyTrend    string
	budgetsForMonth string
}

func newQueries(d dialect) queries {
	return queries{
		upsertBudget: d.upsert,
		monthlyTrend: fmt.Sprintf(`
			SELECT %s AS yr, %s AS mon,
			       COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			       COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
			FROM transactions
			WHERE transaction_date >= ?
			GROUP BY yr, mon
			ORDER BY yr, mon`,
			d.year("transaction_date"), d.month("transaction_date")),
		budgetsForMonth: fmt.Sprintf(`
			SELECT c.name,
			       COALESCE(b.amount_cents, 0),
			       COALESCE(spent.total_cents, 0)
			FROM categories c
			LEFT JOIN budgets b
			       ON c.id = b.category_id AND b.month = ? AND b.year = ?
			LEFT JOIN (
			        SELECT category_id, SUM(amount_cents) AS total_cents
			        FROM transactions
			        WHERE type = 'expense' AND %s = ? AND %s = ?
			        GROUP BY category_id
			) spent ON c.id = spent.category_id
			WHERE c.kind = 'spending'
			ORDER BY c.name`,
			d.month("transaction_date"), d.year("transaction_date")),
	}
}
