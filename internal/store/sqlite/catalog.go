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

const storeColumns = `id, code, name`

func scanStore(scanner interface{ Scan(dest ...any) error }) (*domain.Store, error) {
	var st domain.Store
	if err := scanner.Scan(&st.ID, &st.Code, &st.Name); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetStore retrieves a store by id.
// Returns store.ErrStoreNotFound if the store does not exist.
func (s *Store) GetStore(ctx context.Context, id int64) (*domain.Store, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = ?`, id)
	st, err := scanStore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrStoreNotFound
	}
	return st, err
}

// GetStoreByCode retrieves a store by its code.
// Returns store.ErrStoreNotFound if the store does not exist.
func (s *Store) GetStoreByCode(ctx context.Context, code string) (*domain.Store, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE code = ?`, code)
	st, err := scanStore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrStoreNotFound
	}
	return st, err
}

// ListStores returns all stores ordered by id, the default store first.
func (s *Store) ListStores(ctx context.Context) ([]*domain.Store, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := []*domain.Store{}
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, st)
	}
	return stores, rows.Err()
}

// CreateStore inserts a store with an explicit id.
// Returns store.ErrAlreadyExists on duplicate id or code.
func (s *Store) CreateStore(ctx context.Context, st *domain.Store) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stores (id, code, name) VALUES (?, ?, ?)`,
		st.ID, st.Code, st.Name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// AttributeByID returns the code and frontend label of an attribute.
// Returns store.ErrAttributeNotFound if the attribute does not exist.
func (s *Store) AttributeByID(ctx context.Context, id int64) (*domain.Attribute, error) {
	var a domain.Attribute
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, frontend_label FROM eav_attributes WHERE id = ?`, id,
	).Scan(&a.ID, &a.Code, &a.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrAttributeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAttribute inserts an attribute definition and assigns its id.
// Returns store.ErrAlreadyExists on duplicate code.
func (s *Store) CreateAttribute(ctx context.Context, a *domain.Attribute) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO eav_attributes (code, frontend_label) VALUES (?, ?)`,
		a.Code, a.Label)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

// CreateProduct inserts a product and assigns its id. Values are written
// as store 0 attribute values; attribute codes must already exist.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO products (sku, created_at) VALUES (?, ?)`,
		p.SKU, formatTime(time.Now()))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	productID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for code, values := range p.Values {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO product_attribute_values (product_id, attribute_id, store_id, value)
			SELECT ?, id, ?, ? FROM eav_attributes WHERE code = ?`,
			productID, domain.DefaultStoreID, strings.Join(values, ","), code)
		if err != nil {
			return fmt.Errorf("insert attribute value %s: %w", code, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("attribute %s: %w", code, store.ErrAttributeNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	p.ID = productID
	return nil
}

// SetProductAttributeValue writes the raw value of an attribute for a
// product in a store, replacing any previous value for that store.
func (s *Store) SetProductAttributeValue(ctx context.Context, productID, attributeID, storeID int64, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO product_attribute_values (product_id, attribute_id, store_id, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (product_id, attribute_id, store_id) DO UPDATE SET value = excluded.value`,
		productID, attributeID, storeID, value)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// LoadProduct returns the product as seen from storeID: store-specific
// attribute values override the store 0 values.
// Returns store.ErrProductNotFound if the product does not exist.
func (s *Store) LoadProduct(ctx context.Context, productID, storeID int64) (*domain.Product, error) {
	p := &domain.Product{ID: productID, StoreID: storeID, Values: map[string]domain.OptionValues{}}

	err := s.db.QueryRowContext(ctx, `SELECT sku FROM products WHERE id = ?`, productID).Scan(&p.SKU)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	// Default-scope rows sort first so store rows overwrite them.
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.code, v.value
		FROM product_attribute_values v
		JOIN eav_attributes a ON a.id = v.attribute_id
		WHERE v.product_id = ? AND v.store_id IN (?, ?)
		ORDER BY v.store_id ASC`,
		productID, domain.DefaultStoreID, storeID)
	if err != nil {
		return nil, fmt.Errorf("query attribute values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, value string
		if err := rows.Scan(&code, &value); err != nil {
			return nil, err
		}
		p.Values[code] = domain.ParseOptionValues(value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
