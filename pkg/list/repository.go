package list

import (
	"context"
	"errors"
	"fmt"

	"github.com/g3tech/donation-engine/pkg/allocation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrListNotFound = errors.New("list not found")

type Repository interface {
	FindByUser(ctx context.Context, userUid string) (allocation.List, error)
	CreateDefault(ctx context.Context, list allocation.List) (allocation.List, error)
	// Save stores the budget and replaces the categories and entries of the user's list.
	Save(ctx context.Context, list allocation.List) (allocation.List, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) FindByUser(ctx context.Context, userUid string) (allocation.List, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return allocation.List{}, err
	}
	defer tx.Rollback(ctx)

	listId, err := r.findListId(ctx, tx, userUid)
	if err != nil {
		return allocation.List{}, err
	}

	budget, err := r.getBudget(ctx, tx, listId)
	if err != nil {
		return allocation.List{}, err
	}

	categories, err := r.getCategories(ctx, tx, listId)
	if err != nil {
		return allocation.List{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return allocation.List{}, fmt.Errorf("could not commit transaction: %w", err)
	}
	return allocation.List{Id: listId, UserId: userUid, Budget: budget, Categories: categories}, nil
}

func (r *RepositoryImpl) CreateDefault(ctx context.Context, list allocation.List) (allocation.List, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return allocation.List{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `INSERT INTO list (user_id) VALUES ($1) RETURNING id`, list.UserId).Scan(&list.Id)
	if err != nil {
		err := fmt.Errorf("could not create list: %w", err)
		log.Error(err)
		return allocation.List{}, err
	}

	query := `INSERT INTO budget (list_id, total_value, donation_percent, value_override)
				VALUES ($1, $2::numeric, $3::numeric, $4::numeric) RETURNING id`
	err = tx.QueryRow(ctx, query,
		list.Id,
		list.Budget.TotalValue.String(),
		list.Budget.DonationPercent.String(),
		optionalText(list.Budget.ValueOverride),
	).Scan(&list.Budget.Id)
	if err != nil {
		err := fmt.Errorf("could not create budget: %w", err)
		log.Error(err)
		return allocation.List{}, err
	}
	list.Budget.ListId = list.Id

	if err := tx.Commit(ctx); err != nil {
		return allocation.List{}, fmt.Errorf("could not commit transaction: %w", err)
	}
	return list, nil
}

func (r *RepositoryImpl) Save(ctx context.Context, list allocation.List) (allocation.List, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return allocation.List{}, err
	}
	defer tx.Rollback(ctx)

	listId, err := r.findListId(ctx, tx, list.UserId)
	if err != nil {
		return allocation.List{}, err
	}
	list.Id = listId
	list.Budget.ListId = listId

	query := `UPDATE budget SET
					total_value = $1::numeric,
					donation_percent = $2::numeric,
					value_override = $3::numeric
				WHERE list_id = $4 RETURNING id`
	err = tx.QueryRow(ctx, query,
		list.Budget.TotalValue.String(),
		list.Budget.DonationPercent.String(),
		optionalText(list.Budget.ValueOverride),
		listId,
	).Scan(&list.Budget.Id)
	if err != nil {
		err := fmt.Errorf("could not update budget: %w", err)
		log.Error(err)
		return allocation.List{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM category WHERE list_id = $1`, listId); err != nil {
		err := fmt.Errorf("could not delete categories: %w", err)
		log.Error(err)
		return allocation.List{}, err
	}

	for i := range list.Categories {
		if err := r.insertCategory(ctx, tx, listId, i, &list.Categories[i]); err != nil {
			return allocation.List{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return allocation.List{}, fmt.Errorf("could not commit transaction: %w", err)
	}
	return list, nil
}

func (r *RepositoryImpl) insertCategory(ctx context.Context, tx pgx.Tx, listId int, position int, category *allocation.Category) error {
	query := `INSERT INTO category (list_id, name, multiplier, percent_override, value_override, enabled, position)
				VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6, $7) RETURNING id`
	err := tx.QueryRow(ctx, query,
		listId,
		category.Name,
		category.Multiplier.String(),
		optionalText(category.PercentOverride),
		optionalText(category.ValueOverride),
		category.Enabled,
		position,
	).Scan(&category.Id)
	if err != nil {
		err := fmt.Errorf("could not insert category %q: %w", category.Name, err)
		log.Error(err)
		return err
	}
	category.ListId = listId

	entryQuery := `INSERT INTO entry (category_id, ein, multiplier, percent_override, value_override, enabled, position)
				VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6, $7) RETURNING id`
	for i := range category.Entries {
		entry := &category.Entries[i]
		err := tx.QueryRow(ctx, entryQuery,
			category.Id,
			entry.Ein,
			entry.Multiplier.String(),
			optionalText(entry.PercentOverride),
			optionalText(entry.ValueOverride),
			entry.Enabled,
			i,
		).Scan(&entry.Id)
		if err != nil {
			err := fmt.Errorf("could not insert entry %s: %w", entry.Ein, err)
			log.Error(err)
			return err
		}
		entry.CategoryId = category.Id
	}
	return nil
}

func (r *RepositoryImpl) findListId(ctx context.Context, tx pgx.Tx, userUid string) (int, error) {
	var listId int
	err := tx.QueryRow(ctx, `SELECT id FROM list WHERE user_id = $1`, userUid).Scan(&listId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debugf("no list found for user %s", userUid)
			return 0, ErrListNotFound
		}
		err := fmt.Errorf("could not find list: %w", err)
		log.Error(err)
		return 0, err
	}
	return listId, nil
}

func (r *RepositoryImpl) getBudget(ctx context.Context, tx pgx.Tx, listId int) (allocation.Budget, error) {
	query := `SELECT id, total_value::text, donation_percent::text, value_override::text
				FROM budget WHERE list_id = $1`
	var (
		budget          = allocation.Budget{ListId: listId}
		totalValue      string
		donationPercent string
		valueOverride   *string
	)
	err := tx.QueryRow(ctx, query, listId).Scan(&budget.Id, &totalValue, &donationPercent, &valueOverride)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return allocation.Budget{}, ErrListNotFound
		}
		err := fmt.Errorf("could not query budget: %w", err)
		log.Error(err)
		return allocation.Budget{}, err
	}

	if budget.TotalValue, err = decimal.NewFromString(totalValue); err != nil {
		return allocation.Budget{}, fmt.Errorf("invalid total value %q: %w", totalValue, err)
	}
	if budget.DonationPercent, err = decimal.NewFromString(donationPercent); err != nil {
		return allocation.Budget{}, fmt.Errorf("invalid donation percent %q: %w", donationPercent, err)
	}
	if budget.ValueOverride, err = parseOptional(valueOverride); err != nil {
		return allocation.Budget{}, err
	}
	return budget, nil
}

// getCategories loads the categories of a list together with their entries, both in position order.
func (r *RepositoryImpl) getCategories(ctx context.Context, tx pgx.Tx, listId int) ([]allocation.Category, error) {
	query := `SELECT
				c.id, c.name, c.multiplier::text, c.percent_override::text, c.value_override::text, c.enabled,
				e.id, e.ein, e.multiplier::text, e.percent_override::text, e.value_override::text, e.enabled
			  FROM category c
			  LEFT JOIN entry e ON e.category_id = c.id
			  WHERE c.list_id = $1
			  ORDER BY c.position, c.id, e.position, e.id`
	rows, err := tx.Query(ctx, query, listId)
	if err != nil {
		err := fmt.Errorf("could not query categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	categories := make([]allocation.Category, 0)
	for rows.Next() {
		var (
			c categoryRow
			e entryRow
		)
		if err := rows.Scan(
			&c.id, &c.name, &c.multiplier, &c.percentOverride, &c.valueOverride, &c.enabled,
			&e.id, &e.ein, &e.multiplier, &e.percentOverride, &e.valueOverride, &e.enabled,
		); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}

		if len(categories) == 0 || categories[len(categories)-1].Id != c.id {
			category, err := c.toCategory(listId)
			if err != nil {
				return nil, err
			}
			categories = append(categories, category)
		}

		// LEFT JOIN: a category without entries yields a single row with NULL entry columns
		if e.id == nil {
			continue
		}
		entry, err := e.toEntry(c.id)
		if err != nil {
			return nil, err
		}
		last := &categories[len(categories)-1]
		last.Entries = append(last.Entries, entry)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return categories, nil
}

type categoryRow struct {
	id              int
	name            string
	multiplier      string
	percentOverride *string
	valueOverride   *string
	enabled         bool
}

func (c categoryRow) toCategory(listId int) (allocation.Category, error) {
	category := allocation.Category{Id: c.id, ListId: listId, Name: c.name, Enabled: c.enabled}
	var err error
	if category.Multiplier, err = decimal.NewFromString(c.multiplier); err != nil {
		return allocation.Category{}, fmt.Errorf("invalid multiplier of category %d: %w", c.id, err)
	}
	if category.PercentOverride, err = parseOptional(c.percentOverride); err != nil {
		return allocation.Category{}, err
	}
	if category.ValueOverride, err = parseOptional(c.valueOverride); err != nil {
		return allocation.Category{}, err
	}
	return category, nil
}

type entryRow struct {
	id              *int
	ein             *string
	multiplier      *string
	percentOverride *string
	valueOverride   *string
	enabled         *bool
}

func (e entryRow) toEntry(categoryId int) (allocation.Entry, error) {
	entry := allocation.Entry{Id: *e.id, CategoryId: categoryId}
	if e.ein != nil {
		entry.Ein = *e.ein
	}
	if e.enabled != nil {
		entry.Enabled = *e.enabled
	}
	multiplier, err := parseOptional(e.multiplier)
	if err != nil {
		return allocation.Entry{}, err
	}
	entry.Multiplier = decimal.NewFromInt(1)
	if multiplier != nil {
		entry.Multiplier = *multiplier
	}
	if entry.PercentOverride, err = parseOptional(e.percentOverride); err != nil {
		return allocation.Entry{}, err
	}
	if entry.ValueOverride, err = parseOptional(e.valueOverride); err != nil {
		return allocation.Entry{}, err
	}
	return entry, nil
}

func parseOptional(value *string) (*decimal.Decimal, error) {
	if value == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*value)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", *value, err)
	}
	return &d, nil
}

func optionalText(value *decimal.Decimal) *string {
	if value == nil {
		return nil
	}
	s := value.String()
	return &s
}
