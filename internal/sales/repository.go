package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/platform/db"
	"github.com/meridian-crm/meridian-crm/internal/schedule"
)

var (
	// ErrNotFound indicates the sale does not exist.
	ErrNotFound = errors.New("sale not found")
	// ErrDuplicate indicates the external sale id is already tracked.
	ErrDuplicate = errors.New("sale already exists")
)

// Repository persists and queries sale records.
type Repository interface {
	Create(ctx context.Context, sale Sale) (*Sale, error)
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, filters ListFilters) ([]Sale, error)
	ListAll(ctx context.Context) ([]Sale, error)
	Update(ctx context.Context, id int64, patch Patch) error
	RegenerateSchedule(ctx context.Context, id int64, rebuild func(Sale) (Patch, bool)) (*Sale, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository wires a sale repository over a pgx pool.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const saleColumns = `id, sale_id, lead_id, client_id, company_id, client_name, client_phone, master_name,
	total_cost, purchase_date, is_installment, total_payments, payments_made, next_payment_date,
	next_payment_amount, is_fully_paid, status, overdue_days, is_underpaid, underpaid_amount,
	is_frozen, is_refund, refund_amount, is_booked, booked_date, comments, contract_number,
	payment_schedule, payment_history, created_at, updated_at`

func (r *repository) Create(ctx context.Context, sale Sale) (*Sale, error) {
	scheduleJSON, err := encodeJSONColumn(sale.PaymentSchedule)
	if err != nil {
		return nil, fmt.Errorf("encode payment_schedule: %w", err)
	}
	historyJSON, err := encodeJSONColumn(sale.PaymentHistory)
	if err != nil {
		return nil, fmt.Errorf("encode payment_history: %w", err)
	}

	query := `INSERT INTO sales (
		sale_id, lead_id, client_id, company_id, client_name, client_phone, master_name,
		total_cost, purchase_date, is_installment, total_payments, payments_made, next_payment_date,
		next_payment_amount, is_fully_paid, status, overdue_days, is_underpaid, underpaid_amount,
		is_frozen, is_refund, refund_amount, is_booked, booked_date, comments, contract_number,
		payment_schedule, payment_history
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
		$20, $21, $22, $23, $24, $25, $26, $27, $28)
	RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		sale.SaleID, sale.LeadID, sale.ClientID, sale.CompanyID, sale.ClientName, sale.ClientPhone, sale.MasterName,
		sale.TotalCost, sale.PurchaseDate, sale.IsInstallment, sale.TotalPayments, sale.PaymentsMade, sale.NextPaymentDate,
		sale.NextPaymentAmount, sale.IsFullyPaid, sale.Status, sale.OverdueDays, sale.IsUnderpaid, sale.UnderpaidAmount,
		sale.IsFrozen, sale.IsRefund, sale.RefundAmount, sale.IsBooked, sale.BookedDate, sale.Comments, sale.ContractNumber,
		scheduleJSON, historyJSON,
	).Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &sale, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	sale, err := scanSale(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	next := func() string {
		argCount++
		return "$" + strconv.Itoa(argCount)
	}

	if filters.Search != "" {
		if saleID, err := strconv.ParseInt(filters.Search, 10, 64); err == nil {
			query += ` AND (client_phone LIKE ` + next()
			args = append(args, "%"+filters.Search+"%")
			query += ` OR sale_id = ` + next() + `)`
			args = append(args, saleID)
		} else {
			query += ` AND client_phone LIKE ` + next()
			args = append(args, "%"+filters.Search+"%")
		}
	}
	if filters.Status != nil {
		query += ` AND status = ` + next()
		args = append(args, *filters.Status)
	}
	if filters.CompanyID != nil {
		query += ` AND company_id = ` + next()
		args = append(args, *filters.CompanyID)
	}
	if filters.ClientName != "" {
		query += ` AND client_name ILIKE ` + next()
		args = append(args, "%"+filters.ClientName+"%")
	}
	if filters.MasterName != "" {
		query += ` AND master_name ILIKE ` + next()
		args = append(args, "%"+filters.MasterName+"%")
	}
	if filters.PurchaseDateFrom != nil {
		query += ` AND purchase_date >= ` + next()
		args = append(args, *filters.PurchaseDateFrom)
	}
	if filters.PurchaseDateTo != nil {
		query += ` AND purchase_date <= ` + next()
		args = append(args, *filters.PurchaseDateTo)
	}
	if filters.NextPaymentDateFrom != nil {
		query += ` AND next_payment_date >= ` + next()
		args = append(args, *filters.NextPaymentDateFrom)
	}
	if filters.NextPaymentDateTo != nil {
		query += ` AND next_payment_date <= ` + next()
		args = append(args, *filters.NextPaymentDateTo)
	}
	if filters.IsFrozen != nil {
		query += ` AND is_frozen = ` + next()
		args = append(args, *filters.IsFrozen)
	}
	if filters.IsRefund != nil {
		query += ` AND is_refund = ` + next()
		args = append(args, *filters.IsRefund)
	}
	if filters.IsBooked != nil {
		query += ` AND is_booked = ` + next()
		args = append(args, *filters.IsBooked)
	}

	query += ` ORDER BY ` + sortClause(filters.SortBy, filters.SortOrder)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

func (r *repository) ListAll(ctx context.Context) ([]Sale, error) {
	return r.List(ctx, ListFilters{})
}

func (r *repository) Update(ctx context.Context, id int64, patch Patch) error {
	return execPatch(ctx, r.db, id, patch)
}

// RegenerateSchedule reloads the sale under a row lock, asks rebuild for the
// replacement patch, and applies it within the same transaction so concurrent
// schedule edits cannot be lost.
func (r *repository) RegenerateSchedule(ctx context.Context, id int64, rebuild func(Sale) (Patch, bool)) (*Sale, bool, error) {
	var (
		updated     *Sale
		regenerated bool
	)
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
		sale, err := scanSale(tx.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		patch, ok := rebuild(*sale)
		if !ok {
			updated = sale
			return nil
		}
		if err := execPatch(ctx, tx, id, patch); err != nil {
			return err
		}

		updated, err = scanSale(tx.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
		if err != nil {
			return err
		}
		regenerated = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return updated, regenerated, nil
}

// executor is satisfied by both *pgxpool.Pool and pgx.Tx.
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func execPatch(ctx context.Context, ex executor, id int64, patch Patch) error {
	cols := patch.columns()
	if len(cols) == 0 {
		return nil
	}

	sets := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols)+1)
	for _, col := range cols {
		value := col.value
		switch col.name {
		case "payment_schedule", "payment_history":
			encoded, err := encodeJSONColumn(value)
			if err != nil {
				return fmt.Errorf("encode %s: %w", col.name, err)
			}
			value = encoded
		}
		args = append(args, value)
		sets = append(sets, col.name+" = $"+strconv.Itoa(len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := `UPDATE sales SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))
	tag, err := ex.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func sortClause(sortBy, sortOrder string) string {
	dir := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		dir = "DESC"
	}
	switch sortBy {
	case "purchase_date":
		return "purchase_date " + dir
	case "total_cost":
		return "total_cost " + dir
	case "next_payment_date":
		return "next_payment_date " + dir + " NULLS LAST"
	case "overdue_days":
		return "overdue_days " + dir
	case "client_name":
		return "client_name " + dir + " NULLS LAST"
	case "created_at":
		return "created_at " + dir
	default:
		// Unrecognized sort fields silently fall back.
		return "purchase_date DESC"
	}
}

func encodeJSONColumn(v interface{}) (*string, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	var scheduleRaw, historyRaw *string
	err := row.Scan(
		&s.ID, &s.SaleID, &s.LeadID, &s.ClientID, &s.CompanyID, &s.ClientName, &s.ClientPhone, &s.MasterName,
		&s.TotalCost, &s.PurchaseDate, &s.IsInstallment, &s.TotalPayments, &s.PaymentsMade, &s.NextPaymentDate,
		&s.NextPaymentAmount, &s.IsFullyPaid, &s.Status, &s.OverdueDays, &s.IsUnderpaid, &s.UnderpaidAmount,
		&s.IsFrozen, &s.IsRefund, &s.RefundAmount, &s.IsBooked, &s.BookedDate, &s.Comments, &s.ContractNumber,
		&scheduleRaw, &historyRaw, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.PaymentSchedule = []schedule.Entry{}
	if raw := trimmed(scheduleRaw); raw != "" {
		var entries []schedule.Entry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			// Corrupt column: recover to empty but tell the client.
			s.Warnings = append(s.Warnings, "payment_schedule unreadable")
		} else {
			s.PaymentSchedule = schedule.Normalize(entries)
		}
	}
	if raw := trimmed(historyRaw); raw != "" {
		var history []HistoryEntry
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			s.Warnings = append(s.Warnings, "payment_history unreadable")
		} else {
			s.PaymentHistory = history
		}
	}
	return &s, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
