/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements ledger.OwnerStore, planning.Store and payout.Store using
  SQLite. The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

APPEND-ONLY ENFORCEMENT:
  The transfers table is append-only: no UPDATE and no DELETE statements
  exist for it. Payout factors are likewise only ever appended.

KEY TABLES:
  accounts:            Account identities and type tags
  transfers:           Immutable double-entry log
  members/companies:   Account owners
  plans/plan_drafts:   The plan lifecycle records
  cooperations:        Cooperation records with their clearing account
  certificate_payouts: One row per paid-out active day of a plan
  payout_factors:      Append-only factor history

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block, single writer at a time, better crash recovery.

TIME PREDICATES:
  Expiration arithmetic lives in planning.Plan, in exactly one place.
  The time-filtered plan queries select candidate rows by SQL and refine
  with the same predicates the rest of the system uses.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/payout"
	"github.com/commonplan/certeconomy/planning"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Gateway implements all storage interfaces using SQLite.
type Gateway struct {
	db *sql.DB
	mu sync.RWMutex
}

// Interface checks
var (
	_ ledger.OwnerStore = (*Gateway)(nil)
	_ planning.Store    = (*Gateway)(nil)
	_ payout.Store      = (*Gateway)(nil)
)

// New creates a new SQLite gateway with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Gateway, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	g := &Gateway{db: db}
	if err := g.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return g, nil
}

// Close closes the database connection.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// migrate creates the database schema.
func (g *Gateway) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		account_type TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Transfers (append-only double-entry log)
	CREATE TABLE IF NOT EXISTS transfers (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		debit_account TEXT NOT NULL,
		credit_account TEXT NOT NULL,
		value TEXT NOT NULL,
		transfer_type TEXT NOT NULL,
		purpose TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_debit
		ON transfers(debit_account, date);
	CREATE INDEX IF NOT EXISTS idx_transfers_credit
		ON transfers(credit_account, date);

	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		account TEXT NOT NULL,
		registered_on TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		means_account TEXT NOT NULL,
		resources_account TEXT NOT NULL,
		labour_account TEXT NOT NULL,
		product_account TEXT NOT NULL,
		registered_on TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS company_workers (
		company TEXT NOT NULL,
		member TEXT NOT NULL,
		PRIMARY KEY (company, member)
	);

	CREATE TABLE IF NOT EXISTS social_accounting (
		id TEXT PRIMARY KEY,
		account TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plan_drafts (
		id TEXT PRIMARY KEY,
		planner TEXT NOT NULL,
		product_name TEXT NOT NULL,
		description TEXT,
		production_unit TEXT,
		amount INTEGER NOT NULL,
		labour_cost TEXT NOT NULL,
		means_cost TEXT NOT NULL,
		resource_cost TEXT NOT NULL,
		timeframe INTEGER NOT NULL,
		is_public_service BOOLEAN NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		planner TEXT NOT NULL,
		product_name TEXT NOT NULL,
		description TEXT,
		production_unit TEXT,
		amount INTEGER NOT NULL,
		labour_cost TEXT NOT NULL,
		means_cost TEXT NOT NULL,
		resource_cost TEXT NOT NULL,
		timeframe INTEGER NOT NULL,
		is_public_service BOOLEAN NOT NULL,
		created_at TEXT NOT NULL,
		approved_at TEXT,
		rejected_at TEXT,
		activated_at TEXT,
		cooperation TEXT,
		requested_cooperation TEXT,
		hidden_by_user BOOLEAN NOT NULL DEFAULT FALSE,
		last_certificate_payout_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_plans_planner ON plans(planner);
	CREATE INDEX IF NOT EXISTS idx_plans_cooperation ON plans(cooperation);
	CREATE INDEX IF NOT EXISTS idx_plans_activated ON plans(activated_at);

	CREATE TABLE IF NOT EXISTS cooperations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		definition TEXT,
		coordinator TEXT NOT NULL,
		account TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS coordination_transfer_requests (
		id TEXT PRIMARY KEY,
		cooperation TEXT NOT NULL,
		candidate TEXT NOT NULL,
		requested_at TEXT NOT NULL,
		accepted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS certificate_payouts (
		plan TEXT NOT NULL,
		transfer TEXT NOT NULL,
		PRIMARY KEY (plan, transfer)
	);

	CREATE INDEX IF NOT EXISTS idx_certificate_payouts_plan
		ON certificate_payouts(plan);

	-- Payout factors (append-only history)
	CREATE TABLE IF NOT EXISTS payout_factors (
		calculated_at TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := g.db.Exec(schema)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func scanNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func scanNullUUID(s sql.NullString) *uuid.UUID {
	if !s.Valid {
		return nil
	}
	id, err := uuid.Parse(s.String)
	if err != nil {
		return nil
	}
	return &id
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// ACCOUNTS AND TRANSFERS (ledger.Store)
// =============================================================================

func (g *Gateway) CreateAccount(ctx context.Context, account ledger.Account) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO accounts (id, account_type, created_at) VALUES (?, ?, ?)`,
		account.ID.String(), account.Type, formatTime(account.CreatedAt))
	return err
}

func (g *Gateway) AccountByID(ctx context.Context, id uuid.UUID) (ledger.Account, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var (
		accountType string
		createdAt   string
	)
	err := g.db.QueryRowContext(ctx,
		`SELECT account_type, created_at FROM accounts WHERE id = ?`, id.String(),
	).Scan(&accountType, &createdAt)
	if err == sql.ErrNoRows {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return ledger.Account{
		ID:        id,
		Type:      ledger.AccountType(accountType),
		CreatedAt: parseTime(createdAt),
	}, nil
}

// AppendTransfer writes a transfer. The transfers table has no UPDATE
// and no DELETE path.
func (g *Gateway) AppendTransfer(ctx context.Context, transfer ledger.Transfer) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO transfers (id, date, debit_account, credit_account, value, transfer_type, purpose)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		transfer.ID.String(),
		formatTime(transfer.Date),
		transfer.DebitAccount.String(),
		transfer.CreditAccount.String(),
		transfer.Value.String(),
		transfer.Type,
		transfer.Purpose,
	)
	if err != nil {
		return fmt.Errorf("failed to append transfer: %w", err)
	}
	return nil
}

func (g *Gateway) TransfersByAccount(ctx context.Context, account uuid.UUID) ([]ledger.Transfer, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rows, err := g.db.QueryContext(ctx, `
		SELECT id, date, debit_account, credit_account, value, transfer_type, purpose
		FROM transfers
		WHERE debit_account = ? OR credit_account = ?
		ORDER BY date ASC`,
		account.String(), account.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var result []ledger.Transfer
	for rows.Next() {
		var (
			id, date, debit, credit, value, transferType string
			purpose                                      sql.NullString
		)
		if err := rows.Scan(&id, &date, &debit, &credit, &value, &transferType, &purpose); err != nil {
			return nil, err
		}
		result = append(result, ledger.Transfer{
			ID:            uuid.MustParse(id),
			Date:          parseTime(date),
			DebitAccount:  uuid.MustParse(debit),
			CreditAccount: uuid.MustParse(credit),
			Value:         mustDecimal(value),
			Type:          ledger.TransferType(transferType),
			Purpose:       purpose.String,
		})
	}
	return result, rows.Err()
}

// =============================================================================
// OWNERS (ledger.OwnerStore)
// =============================================================================

func (g *Gateway) CreateMember(ctx context.Context, member ledger.Member) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO members (id, name, account, registered_on) VALUES (?, ?, ?, ?)`,
		member.ID.String(), member.Name, member.Account.String(), formatTime(member.RegisteredOn))
	return err
}

func (g *Gateway) MemberByID(ctx context.Context, id uuid.UUID) (ledger.Member, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var name, account, registeredOn string
	err := g.db.QueryRowContext(ctx,
		`SELECT name, account, registered_on FROM members WHERE id = ?`, id.String(),
	).Scan(&name, &account, &registeredOn)
	if err == sql.ErrNoRows {
		return ledger.Member{}, ledger.ErrMemberNotFound
	}
	if err != nil {
		return ledger.Member{}, err
	}
	return ledger.Member{
		ID:           id,
		Name:         name,
		Account:      uuid.MustParse(account),
		RegisteredOn: parseTime(registeredOn),
	}, nil
}

func (g *Gateway) CreateCompany(ctx context.Context, company ledger.Company) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, means_account, resources_account, labour_account, product_account, registered_on)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		company.ID.String(), company.Name,
		company.MeansAccount.String(), company.ResourcesAccount.String(),
		company.LabourAccount.String(), company.ProductAccount.String(),
		formatTime(company.RegisteredOn))
	return err
}

func (g *Gateway) CompanyByID(ctx context.Context, id uuid.UUID) (ledger.Company, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var name, means, resources, labour, product, registeredOn string
	err := g.db.QueryRowContext(ctx, `
		SELECT name, means_account, resources_account, labour_account, product_account, registered_on
		FROM companies WHERE id = ?`, id.String(),
	).Scan(&name, &means, &resources, &labour, &product, &registeredOn)
	if err == sql.ErrNoRows {
		return ledger.Company{}, ledger.ErrCompanyNotFound
	}
	if err != nil {
		return ledger.Company{}, err
	}
	return ledger.Company{
		ID:               id,
		Name:             name,
		MeansAccount:     uuid.MustParse(means),
		ResourcesAccount: uuid.MustParse(resources),
		LabourAccount:    uuid.MustParse(labour),
		ProductAccount:   uuid.MustParse(product),
		RegisteredOn:     parseTime(registeredOn),
	}, nil
}

// SocialAccounting creates the singleton with its account on first use.
func (g *Gateway) SocialAccounting(ctx context.Context) (ledger.SocialAccounting, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var id, account string
	err := g.db.QueryRowContext(ctx,
		`SELECT id, account FROM social_accounting LIMIT 1`,
	).Scan(&id, &account)
	if err == nil {
		return ledger.SocialAccounting{
			ID:      uuid.MustParse(id),
			Account: uuid.MustParse(account),
		}, nil
	}
	if err != sql.ErrNoRows {
		return ledger.SocialAccounting{}, err
	}

	accounting := ledger.SocialAccounting{ID: uuid.New(), Account: uuid.New()}
	now := formatTime(time.Now())
	if _, err := g.db.ExecContext(ctx,
		`INSERT INTO accounts (id, account_type, created_at) VALUES (?, ?, ?)`,
		accounting.Account.String(), ledger.AccountSocialAccounting, now); err != nil {
		return ledger.SocialAccounting{}, err
	}
	if _, err := g.db.ExecContext(ctx,
		`INSERT INTO social_accounting (id, account) VALUES (?, ?)`,
		accounting.ID.String(), accounting.Account.String()); err != nil {
		return ledger.SocialAccounting{}, err
	}
	return accounting, nil
}

func (g *Gateway) WorkerIsAtCompany(ctx context.Context, company, member uuid.UUID) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var count int
	err := g.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM company_workers WHERE company = ? AND member = ?`,
		company.String(), member.String()).Scan(&count)
	return count > 0, err
}

func (g *Gateway) RegisterWorker(ctx context.Context, company, member uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO company_workers (company, member) VALUES (?, ?)`,
		company.String(), member.String())
	return err
}

// =============================================================================
// DRAFTS (planning.Store)
// =============================================================================

func (g *Gateway) CreateDraft(ctx context.Context, draft planning.PlanDraft) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO plan_drafts
		(id, planner, product_name, description, production_unit, amount,
		 labour_cost, means_cost, resource_cost, timeframe, is_public_service, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.ID.String(), draft.Planner.String(),
		draft.ProductName, draft.Description, draft.ProductionUnit, draft.Amount,
		draft.Costs.Labour.String(), draft.Costs.Means.String(), draft.Costs.Resource.String(),
		draft.Timeframe, draft.IsPublicService, formatTime(draft.CreatedAt))
	return err
}

func (g *Gateway) DraftByID(ctx context.Context, id uuid.UUID) (planning.PlanDraft, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var (
		planner, productName, labour, means, resource, createdAt string
		description, productionUnit                              sql.NullString
		amount                                                   int64
		timeframe                                                int
		isPublicService                                          bool
	)
	err := g.db.QueryRowContext(ctx, `
		SELECT planner, product_name, description, production_unit, amount,
		       labour_cost, means_cost, resource_cost, timeframe, is_public_service, created_at
		FROM plan_drafts WHERE id = ?`, id.String(),
	).Scan(&planner, &productName, &description, &productionUnit, &amount,
		&labour, &means, &resource, &timeframe, &isPublicService, &createdAt)
	if err == sql.ErrNoRows {
		return planning.PlanDraft{}, planning.ErrDraftNotFound
	}
	if err != nil {
		return planning.PlanDraft{}, err
	}
	return planning.PlanDraft{
		ID:              id,
		Planner:         uuid.MustParse(planner),
		ProductName:     productName,
		Description:     description.String,
		ProductionUnit:  productionUnit.String,
		Amount:          amount,
		Costs:           planning.ProductionCosts{Labour: mustDecimal(labour), Means: mustDecimal(means), Resource: mustDecimal(resource)},
		Timeframe:       timeframe,
		IsPublicService: isPublicService,
		CreatedAt:       parseTime(createdAt),
	}, nil
}

func (g *Gateway) UpdateDraft(ctx context.Context, draft planning.PlanDraft) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	result, err := g.db.ExecContext(ctx, `
		UPDATE plan_drafts SET
			product_name = ?, description = ?, production_unit = ?, amount = ?,
			labour_cost = ?, means_cost = ?, resource_cost = ?, timeframe = ?, is_public_service = ?
		WHERE id = ?`,
		draft.ProductName, draft.Description, draft.ProductionUnit, draft.Amount,
		draft.Costs.Labour.String(), draft.Costs.Means.String(), draft.Costs.Resource.String(),
		draft.Timeframe, draft.IsPublicService, draft.ID.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return planning.ErrDraftNotFound
	}
	return nil
}

func (g *Gateway) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx, `DELETE FROM plan_drafts WHERE id = ?`, id.String())
	return err
}

// =============================================================================
// PLANS (planning.Store)
// =============================================================================

const planColumns = `id, planner, product_name, description, production_unit, amount,
	labour_cost, means_cost, resource_cost, timeframe, is_public_service, created_at,
	approved_at, rejected_at, activated_at, cooperation, requested_cooperation,
	hidden_by_user, last_certificate_payout_at`

func (g *Gateway) CreatePlan(ctx context.Context, plan planning.Plan) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID.String(), plan.Planner.String(),
		plan.ProductName, plan.Description, plan.ProductionUnit, plan.Amount,
		plan.Costs.Labour.String(), plan.Costs.Means.String(), plan.Costs.Resource.String(),
		plan.Timeframe, plan.IsPublicService, formatTime(plan.CreatedAt),
		nullTime(plan.ApprovedAt), nullTime(plan.RejectedAt), nullTime(plan.ActivatedAt),
		nullUUID(plan.Cooperation), nullUUID(plan.RequestedCooperation),
		plan.HiddenByUser, nullTime(plan.LastCertificatePayoutAt))
	return err
}

func (g *Gateway) PlanByID(ctx context.Context, id uuid.UUID) (planning.Plan, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	row := g.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE id = ?`, id.String())
	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return planning.Plan{}, planning.ErrPlanNotFound
	}
	return plan, err
}

func (g *Gateway) UpdatePlan(ctx context.Context, plan planning.Plan) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	result, err := g.db.ExecContext(ctx, `
		UPDATE plans SET
			approved_at = ?, rejected_at = ?, activated_at = ?,
			cooperation = ?, requested_cooperation = ?,
			hidden_by_user = ?, last_certificate_payout_at = ?
		WHERE id = ?`,
		nullTime(plan.ApprovedAt), nullTime(plan.RejectedAt), nullTime(plan.ActivatedAt),
		nullUUID(plan.Cooperation), nullUUID(plan.RequestedCooperation),
		plan.HiddenByUser, nullTime(plan.LastCertificatePayoutAt),
		plan.ID.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return planning.ErrPlanNotFound
	}
	return nil
}

func (g *Gateway) DeletePlan(ctx context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id.String())
	return err
}

func (g *Gateway) PlansByPlanner(ctx context.Context, planner uuid.UUID) ([]planning.Plan, error) {
	return g.queryPlans(ctx,
		`SELECT `+planColumns+` FROM plans WHERE planner = ? ORDER BY created_at ASC`,
		nil, planner.String())
}

func (g *Gateway) PlansByCooperation(ctx context.Context, cooperation uuid.UUID) ([]planning.Plan, error) {
	return g.queryPlans(ctx,
		`SELECT `+planColumns+` FROM plans WHERE cooperation = ? ORDER BY created_at ASC`,
		nil, cooperation.String())
}

func (g *Gateway) ApprovedPlansAwaitingActivation(ctx context.Context) ([]planning.Plan, error) {
	return g.queryPlans(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE approved_at IS NOT NULL AND rejected_at IS NULL AND activated_at IS NULL
		ORDER BY created_at ASC`, nil)
}

func (g *Gateway) ActivePlans(ctx context.Context, now time.Time) ([]planning.Plan, error) {
	return g.queryPlans(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE activated_at IS NOT NULL
		ORDER BY created_at ASC`,
		func(p planning.Plan) bool { return p.IsActiveAsOf(now) })
}

func (g *Gateway) ExpiredPlans(ctx context.Context, now time.Time) ([]planning.Plan, error) {
	return g.queryPlans(ctx, `
		SELECT `+planColumns+` FROM plans
		WHERE activated_at IS NOT NULL
		ORDER BY created_at ASC`,
		func(p planning.Plan) bool { return p.IsExpiredAsOf(now) })
}

func (g *Gateway) queryPlans(ctx context.Context, query string, keep func(planning.Plan) bool, args ...any) ([]planning.Plan, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var result []planning.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(plan) {
			result = append(result, plan)
		}
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (planning.Plan, error) {
	var (
		id, planner, productName, labour, means, resource, createdAt   string
		description, productionUnit                                    sql.NullString
		amount                                                         int64
		timeframe                                                      int
		isPublicService, hidden                                        bool
		approvedAt, rejectedAt, activatedAt, lastPayout, coop, reqCoop sql.NullString
	)
	err := row.Scan(&id, &planner, &productName, &description, &productionUnit, &amount,
		&labour, &means, &resource, &timeframe, &isPublicService, &createdAt,
		&approvedAt, &rejectedAt, &activatedAt, &coop, &reqCoop,
		&hidden, &lastPayout)
	if err != nil {
		return planning.Plan{}, err
	}
	return planning.Plan{
		ID:                      uuid.MustParse(id),
		Planner:                 uuid.MustParse(planner),
		Costs:                   planning.ProductionCosts{Labour: mustDecimal(labour), Means: mustDecimal(means), Resource: mustDecimal(resource)},
		ProductName:             productName,
		Description:             description.String,
		ProductionUnit:          productionUnit.String,
		Amount:                  amount,
		Timeframe:               timeframe,
		IsPublicService:         isPublicService,
		CreatedAt:               parseTime(createdAt),
		ApprovedAt:              scanNullTime(approvedAt),
		RejectedAt:              scanNullTime(rejectedAt),
		ActivatedAt:             scanNullTime(activatedAt),
		Cooperation:             scanNullUUID(coop),
		RequestedCooperation:    scanNullUUID(reqCoop),
		HiddenByUser:            hidden,
		LastCertificatePayoutAt: scanNullTime(lastPayout),
	}, nil
}

// =============================================================================
// COOPERATIONS (planning.Store)
// =============================================================================

func (g *Gateway) CreateCooperation(ctx context.Context, coop planning.Cooperation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO cooperations (id, name, definition, coordinator, account, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		coop.ID.String(), coop.Name, coop.Definition,
		coop.Coordinator.String(), coop.Account.String(), formatTime(coop.CreatedAt))
	return err
}

func (g *Gateway) CooperationByID(ctx context.Context, id uuid.UUID) (planning.Cooperation, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var (
		name, coordinator, account, createdAt string
		definition                            sql.NullString
	)
	err := g.db.QueryRowContext(ctx, `
		SELECT name, definition, coordinator, account, created_at
		FROM cooperations WHERE id = ?`, id.String(),
	).Scan(&name, &definition, &coordinator, &account, &createdAt)
	if err == sql.ErrNoRows {
		return planning.Cooperation{}, planning.ErrCooperationNotFound
	}
	if err != nil {
		return planning.Cooperation{}, err
	}
	return planning.Cooperation{
		ID:          id,
		Name:        name,
		Definition:  definition.String,
		Coordinator: uuid.MustParse(coordinator),
		Account:     uuid.MustParse(account),
		CreatedAt:   parseTime(createdAt),
	}, nil
}

func (g *Gateway) UpdateCooperation(ctx context.Context, coop planning.Cooperation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	result, err := g.db.ExecContext(ctx, `
		UPDATE cooperations SET name = ?, definition = ?, coordinator = ? WHERE id = ?`,
		coop.Name, coop.Definition, coop.Coordinator.String(), coop.ID.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return planning.ErrCooperationNotFound
	}
	return nil
}

func (g *Gateway) CreateCoordinationTransferRequest(ctx context.Context, request planning.CoordinationTransferRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO coordination_transfer_requests (id, cooperation, candidate, requested_at, accepted_at)
		VALUES (?, ?, ?, ?, ?)`,
		request.ID.String(), request.Cooperation.String(), request.Candidate.String(),
		formatTime(request.RequestedAt), nullTime(request.AcceptedAt))
	return err
}

func (g *Gateway) CoordinationTransferRequestByID(ctx context.Context, id uuid.UUID) (planning.CoordinationTransferRequest, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var (
		cooperation, candidate, requestedAt string
		acceptedAt                          sql.NullString
	)
	err := g.db.QueryRowContext(ctx, `
		SELECT cooperation, candidate, requested_at, accepted_at
		FROM coordination_transfer_requests WHERE id = ?`, id.String(),
	).Scan(&cooperation, &candidate, &requestedAt, &acceptedAt)
	if err == sql.ErrNoRows {
		return planning.CoordinationTransferRequest{}, planning.ErrCooperationNotFound
	}
	if err != nil {
		return planning.CoordinationTransferRequest{}, err
	}
	return planning.CoordinationTransferRequest{
		ID:          id,
		Cooperation: uuid.MustParse(cooperation),
		Candidate:   uuid.MustParse(candidate),
		RequestedAt: parseTime(requestedAt),
		AcceptedAt:  scanNullTime(acceptedAt),
	}, nil
}

func (g *Gateway) UpdateCoordinationTransferRequest(ctx context.Context, request planning.CoordinationTransferRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx, `
		UPDATE coordination_transfer_requests SET accepted_at = ? WHERE id = ?`,
		nullTime(request.AcceptedAt), request.ID.String())
	return err
}

// =============================================================================
// CERTIFICATE PAYOUTS AND PAYOUT FACTORS
// =============================================================================

func (g *Gateway) RecordCertificatePayout(ctx context.Context, plan, transfer uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO certificate_payouts (plan, transfer) VALUES (?, ?)`,
		plan.String(), transfer.String())
	return err
}

func (g *Gateway) CountCertificatePayouts(ctx context.Context, plan uuid.UUID) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var count int
	err := g.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM certificate_payouts WHERE plan = ?`,
		plan.String()).Scan(&count)
	return count, err
}

func (g *Gateway) StorePayoutFactor(ctx context.Context, factor payout.PayoutFactor) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO payout_factors (calculated_at, value) VALUES (?, ?)`,
		formatTime(factor.CalculatedAt), factor.Value.String())
	return err
}

func (g *Gateway) LatestPayoutFactor(ctx context.Context) (payout.PayoutFactor, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var calculatedAt, value string
	err := g.db.QueryRowContext(ctx,
		`SELECT calculated_at, value FROM payout_factors ORDER BY calculated_at DESC LIMIT 1`,
	).Scan(&calculatedAt, &value)
	if err == sql.ErrNoRows {
		return payout.PayoutFactor{}, false, nil
	}
	if err != nil {
		return payout.PayoutFactor{}, false, err
	}
	return payout.PayoutFactor{
		Value:        mustDecimal(value),
		CalculatedAt: parseTime(calculatedAt),
	}, true, nil
}
