package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/productlabel/productlabel-server/internal/domain"
	"github.com/productlabel/productlabel-server/internal/store"
)

// labelColumns is the ordered list of columns selected in label queries.
// Must match the scan order in scanLabel.
const labelColumns = `product_label_id, name, is_active, attribute_id, option_id, image, alt,
	position_category_list, position_product_view, display_on, created_at, updated_at`

// relationDiff records the relation rows a sync removed and added.
type relationDiff struct {
	Deleted  domain.StoreSet
	Inserted domain.StoreSet
}

// scanLabel scans a sql.Row (or sql.Rows via its Scan method) into a domain.Label.
// Stores is left nil; callers load relations separately when they need them.
func scanLabel(scanner interface{ Scan(dest ...any) error }) (*domain.Label, error) {
	var l domain.Label

	var (
		active    int
		displayOn string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&l.ID,
		&l.Name,
		&active,
		&l.AttributeID,
		&l.OptionID,
		&l.Image,
		&l.Alt,
		&l.PositionCategoryList,
		&l.PositionProductView,
		&displayOn,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Active = active != 0
	// Tokens are validated on write; anything unknown in old rows is dropped.
	l.DisplayOn, _ = domain.ParseDisplaySet(displayOn)

	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// SaveLabel creates (ID == 0) or updates a label and synchronizes its store
// relations to l.Stores in the same transaction. The label row is written
// first so the transaction holds the write lock while uniqueness is checked.
// On a uniqueness conflict nothing is persisted and l is left unchanged.
func (s *Store) SaveLabel(ctx context.Context, l *domain.Label) error {
	requested := domain.NewStoreSet(l.Stores...)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	labelID := l.ID
	if labelID == 0 {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO product_labels (
				name, is_active, attribute_id, option_id, image, alt,
				position_category_list, position_product_view, display_on,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.Name,
			boolToInt(l.Active),
			l.AttributeID,
			l.OptionID,
			l.Image,
			l.Alt,
			l.PositionCategoryList,
			l.PositionProductView,
			l.DisplayOn.String(),
			formatTime(createdAt),
			formatTime(now),
		)
		if err != nil {
			return fmt.Errorf("insert label: %w", err)
		}
		labelID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert label id: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			UPDATE product_labels SET
				name = ?, is_active = ?, attribute_id = ?, option_id = ?, image = ?, alt = ?,
				position_category_list = ?, position_product_view = ?, display_on = ?,
				updated_at = ?
			WHERE product_label_id = ?`,
			l.Name,
			boolToInt(l.Active),
			l.AttributeID,
			l.OptionID,
			l.Image,
			l.Alt,
			l.PositionCategoryList,
			l.PositionProductView,
			l.DisplayOn.String(),
			formatTime(now),
			labelID,
		)
		if err != nil {
			return fmt.Errorf("update label: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrLabelNotFound
		}
	}

	diff, err := s.syncStoreRelations(ctx, tx, labelID, l.AttributeID, l.OptionID, requested)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit label: %w", err)
	}

	l.ID = labelID
	l.Stores = requested
	l.CreatedAt = createdAt
	l.UpdatedAt = now

	s.logger.Debug("label saved",
		"label_id", labelID,
		"attribute_id", l.AttributeID,
		"option_id", l.OptionID,
		"stores_deleted", diff.Deleted.String(),
		"stores_inserted", diff.Inserted.String(),
	)
	return nil
}

// SyncStoreRelations replaces the store relations of an existing label with
// requested. The uniqueness check runs against the persisted attribute and
// option of the label before any relation row is touched.
func (s *Store) SyncStoreRelations(ctx context.Context, l *domain.Label, requested domain.StoreSet) error {
	_, err := s.syncLabelStores(ctx, l, requested)
	return err
}

// syncLabelStores is SyncStoreRelations returning the applied diff.
func (s *Store) syncLabelStores(ctx context.Context, l *domain.Label, requested domain.StoreSet) (relationDiff, error) {
	requested = domain.NewStoreSet(requested...)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return relationDiff{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Touch the label first to take the write lock.
	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`UPDATE product_labels SET updated_at = ? WHERE product_label_id = ?`,
		formatTime(now), l.ID)
	if err != nil {
		return relationDiff{}, fmt.Errorf("touch label: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return relationDiff{}, err
	}
	if n == 0 {
		return relationDiff{}, store.ErrLabelNotFound
	}

	var attributeID, optionID int64
	err = tx.QueryRowContext(ctx,
		`SELECT attribute_id, option_id FROM product_labels WHERE product_label_id = ?`,
		l.ID).Scan(&attributeID, &optionID)
	if err != nil {
		return relationDiff{}, fmt.Errorf("load label: %w", err)
	}

	diff, err := s.syncStoreRelations(ctx, tx, l.ID, attributeID, optionID, requested)
	if err != nil {
		return relationDiff{}, err
	}

	if err := tx.Commit(); err != nil {
		return relationDiff{}, fmt.Errorf("commit store relations: %w", err)
	}

	l.Stores = requested
	l.UpdatedAt = now
	return diff, nil
}

// syncStoreRelations checks uniqueness for requested and then applies only
// the difference against the persisted relation rows.
func (s *Store) syncStoreRelations(ctx context.Context, tx *sql.Tx, labelID, attributeID, optionID int64, requested domain.StoreSet) (relationDiff, error) {
	oldStores, err := queryStoreIDs(ctx, tx, labelID)
	if err != nil {
		return relationDiff{}, err
	}

	if err := s.checkUnicity(ctx, tx, labelID, attributeID, optionID, requested); err != nil {
		return relationDiff{}, err
	}

	diff := relationDiff{
		Deleted:  oldStores.Difference(requested),
		Inserted: requested.Difference(oldStores),
	}

	if len(diff.Deleted) > 0 {
		in, args := inClause(diff.Deleted)
		_, err := tx.ExecContext(ctx,
			`DELETE FROM product_label_stores WHERE product_label_id = ? AND store_id IN (`+in+`)`,
			append([]any{labelID}, args...)...)
		if err != nil {
			return relationDiff{}, fmt.Errorf("delete store relations: %w", err)
		}
	}

	if len(diff.Inserted) > 0 {
		values := make([]string, len(diff.Inserted))
		args := make([]any, 0, len(diff.Inserted)*2)
		for i, storeID := range diff.Inserted {
			values[i] = "(?, ?)"
			args = append(args, labelID, storeID)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_label_stores (product_label_id, store_id) VALUES `+strings.Join(values, ","),
			args...)
		if err != nil {
			switch {
			case strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
				return relationDiff{}, store.ErrStoreNotFound
			case strings.Contains(err.Error(), "UNIQUE constraint failed"):
				return relationDiff{}, store.ErrAlreadyExists
			}
			return relationDiff{}, fmt.Errorf("insert store relations: %w", err)
		}
	}

	return diff, nil
}

// checkUnicity fails when another label with the same attribute and option
// is bound to an overlapping store scope. Store 0 overlaps every store.
func (s *Store) checkUnicity(ctx context.Context, tx *sql.Tx, labelID, attributeID, optionID int64, requested domain.StoreSet) error {
	query := `
		SELECT pls.store_id
		FROM product_labels pl
		JOIN product_label_stores pls ON pls.product_label_id = pl.product_label_id
		WHERE pl.attribute_id = ? AND pl.option_id = ? AND pl.product_label_id <> ?`
	args := []any{attributeID, optionID, labelID}

	isDefaultScope := s.IsSingleStoreMode() || requested.IncludesDefault()
	if !isDefaultScope {
		in, inArgs := inClause(requested.With(domain.DefaultStoreID))
		query += ` AND pls.store_id IN (` + in + `)`
		args = append(args, inArgs...)
	}
	query += ` ORDER BY pls.store_id LIMIT 1`

	var storeID int64
	err := tx.QueryRowContext(ctx, query, args...).Scan(&storeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check label unicity: %w", err)
	}
	return store.LabelConflict(attributeID, optionID, storeID)
}

// GetLabel retrieves a label with its store relations.
// Returns store.ErrLabelNotFound if the label does not exist.
func (s *Store) GetLabel(ctx context.Context, id int64) (*domain.Label, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+labelColumns+` FROM product_labels WHERE product_label_id = ?`, id)

	l, err := scanLabel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLabelNotFound
	}
	if err != nil {
		return nil, err
	}

	l.Stores, err = queryStoreIDs(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLabels returns labels matching filter ordered by id, with store relations.
func (s *Store) ListLabels(ctx context.Context, filter store.LabelFilter) ([]*domain.Label, error) {
	var (
		where []string
		args  []any
	)
	if filter.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if filter.AttributeID != 0 {
		where = append(where, "attribute_id = ?")
		args = append(args, filter.AttributeID)
	}
	if filter.StoreID != nil {
		where = append(where,
			"product_label_id IN (SELECT product_label_id FROM product_label_stores WHERE store_id = ?)")
		args = append(args, *filter.StoreID)
	}

	query := `SELECT ` + labelColumns + ` FROM product_labels`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY product_label_id ASC`

	labels, err := s.queryLabels(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if err := s.attachStores(ctx, labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// ListActiveLabels returns the active labels bound to storeID or to the
// default store, ordered by id. Store relations are not loaded.
func (s *Store) ListActiveLabels(ctx context.Context, storeID int64) ([]*domain.Label, error) {
	return s.queryLabels(ctx, `
		SELECT `+labelColumns+`
		FROM product_labels
		WHERE is_active = 1
		  AND product_label_id IN (
			SELECT product_label_id FROM product_label_stores WHERE store_id IN (?, ?)
		  )
		ORDER BY product_label_id ASC`,
		domain.DefaultStoreID, storeID)
}

// DeleteLabel removes a label. Its store relations are removed by cascade.
// Returns store.ErrLabelNotFound if the label does not exist.
func (s *Store) DeleteLabel(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM product_labels WHERE product_label_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrLabelNotFound
	}
	return nil
}

// DeleteLabels removes the given labels in one statement and returns how
// many existed. Unknown ids are ignored.
func (s *Store) DeleteLabels(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	in, args := inClause(ids)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM product_labels WHERE product_label_id IN (`+in+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete labels: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// GetStoreIDs returns the stores a label is bound to. Unknown labels have none.
func (s *Store) GetStoreIDs(ctx context.Context, labelID int64) (domain.StoreSet, error) {
	return queryStoreIDs(ctx, s.db, labelID)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryStoreIDs(ctx context.Context, q queryer, labelID int64) (domain.StoreSet, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT store_id FROM product_label_stores WHERE product_label_id = ? ORDER BY store_id`,
		labelID)
	if err != nil {
		return nil, fmt.Errorf("query store ids: %w", err)
	}
	defer rows.Close()

	ids := domain.StoreSet{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) queryLabels(ctx context.Context, query string, args ...any) ([]*domain.Label, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []*domain.Label{}
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// attachStores loads the store relations of all labels in one query.
func (s *Store) attachStores(ctx context.Context, labels []*domain.Label) error {
	if len(labels) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Label, len(labels))
	ids := make([]int64, len(labels))
	for i, l := range labels {
		l.Stores = domain.StoreSet{}
		byID[l.ID] = l
		ids[i] = l.ID
	}

	in, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_label_id, store_id FROM product_label_stores
		WHERE product_label_id IN (`+in+`)
		ORDER BY product_label_id, store_id`, args...)
	if err != nil {
		return fmt.Errorf("query store relations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var labelID, storeID int64
		if err := rows.Scan(&labelID, &storeID); err != nil {
			return err
		}
		if l, ok := byID[labelID]; ok {
			l.Stores = append(l.Stores, storeID)
		}
	}
	return rows.Err()
}
