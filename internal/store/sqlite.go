package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/shared"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// demoUserMaxID marks the seeded accounts that DeleteUser refuses to remove.
const demoUserMaxID = 3

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	hashCost int
}

// Option configures NewSQLite.
type Option func(*SQLiteStore)

// WithPasswordCost sets the bcrypt cost used for new password hashes.
// Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func WithPasswordCost(cost int) Option {
	return func(s *SQLiteStore) {
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			cost = bcrypt.DefaultCost
		}
		s.hashCost = cost
	}
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string, opts ...Option) (Repository, error) {
	s, err := newSQLiteStore(dbPath, bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func newSQLiteStore(dbPath string, hashCost int) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, hashCost: hashCost}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS brands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		brand_id INTEGER REFERENCES brands(id),
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		price INTEGER NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL CHECK (stock >= 0),
		supplier_id INTEGER,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS purchases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		product_name TEXT NOT NULL,
		price INTEGER NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		purchased_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id, purchased_at);

	CREATE TABLE IF NOT EXISTS favorites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		product_name TEXT NOT NULL,
		price INTEGER NOT NULL,
		UNIQUE (user_id, product_id)
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		feedback TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// withRetry runs op, retrying with exponential backoff on SQLITE_BUSY errors.
func withRetry(ctx context.Context, name string, op func() error) error {
	maxRetries := 3
	baseDelay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = op()
		if err == nil || !shared.IsSQLiteConflictError(err) {
			return err
		}
		if i == maxRetries-1 {
			break
		}

		delay := baseDelay * time.Duration(1<<i) // exponential backoff: 50ms, 100ms
		slog.Debug("Database locked, retrying", "op", name, "attempt", i+1, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, maxRetries, err)
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "query", what, "error", err)
	}
}

// --- users ---

// CreateUser registers a new account.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		username, string(hash), string(role), now.Unix(),
	)
	if shared.IsSQLiteUniqueError(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}

	return &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Unix(now.Unix(), 0),
	}, nil
}

// VerifyUser checks a username and password.
func (s *SQLiteStore) VerifyUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`,
		strings.TrimSpace(username),
	))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidLogin
	}
	return user, nil
}

// GetUser retrieves a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE id = ?`, id,
	))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var role string
	var createdAt int64

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.Role = domain.ParseRole(role)
	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}

// ListUsers returns all non-admin users.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, role, created_at FROM users WHERE role != ? ORDER BY id`, string(domain.RoleAdmin))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer closeRows(rows, "users")

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var role string
		var createdAt int64
		if err := rows.Scan(&u.ID, &u.Username, &role, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.Role = domain.ParseRole(role)
		u.CreatedAt = time.Unix(createdAt, 0)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// DeleteUser removes a user. Seeded demo accounts are protected.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	if id <= demoUserMaxID {
		return ErrProtectedUser
	}
	return withRetry(ctx, "delete user", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return requireRow(res)
	})
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// --- catalog ---

const productColumns = `
	SELECT p.id, p.name, COALESCE(b.name, ''), p.category, p.price, p.stock
	FROM products p
	LEFT JOIN brands b ON p.brand_id = b.id`

// ListProducts returns all products ordered by id.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.queryProducts(ctx, productColumns+` ORDER BY p.id`)
}

// TopProducts returns the most expensive products.
func (s *SQLiteStore) TopProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.queryProducts(ctx, productColumns+` ORDER BY p.price DESC, p.id LIMIT ?`, limit)
}

func (s *SQLiteStore) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer closeRows(rows, "products")

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Price, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// AddProduct inserts a product, creating its brand if needed.
func (s *SQLiteStore) AddProduct(ctx context.Context, np domain.NewProduct) (*domain.Product, error) {
	np.Brand = strings.TrimSpace(np.Brand)
	np.Name = strings.TrimSpace(np.Name)
	if np.Brand == "" || np.Name == "" || np.Price < 0 || np.Stock < 0 {
		return nil, fmt.Errorf("%w: brand, name, non-negative price and stock are required", ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin add product: %w", err)
	}
	defer rollback(tx)

	now := time.Now().Unix()
	var brandID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM brands WHERE name = ?`, np.Brand).Scan(&brandID)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx, `INSERT INTO brands (name, created_at) VALUES (?, ?)`, np.Brand, now)
		if err != nil {
			return nil, fmt.Errorf("insert brand: %w", err)
		}
		if brandID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("brand id: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("lookup brand: %w", err)
	}

	var supplier any
	if np.SupplierID != 0 {
		supplier = np.SupplierID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO products (brand_id, name, category, price, stock, supplier_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		brandID, np.Name, np.Category, np.Price, np.Stock, supplier, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("product id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add product: %w", err)
	}

	return &domain.Product{
		ID:       id,
		Name:     np.Name,
		Brand:    np.Brand,
		Category: np.Category,
		Price:    np.Price,
		Stock:    np.Stock,
	}, nil
}

// UpdateStock sets the stock quantity of a product.
func (s *SQLiteStore) UpdateStock(ctx context.Context, productID int64, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	return withRetry(ctx, "update stock", func() error {
		res, err := s.db.ExecContext(ctx, `UPDATE products SET stock = ? WHERE id = ?`, qty, productID)
		if err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		return requireRow(res)
	})
}

// DeleteProduct removes a product.
func (s *SQLiteStore) DeleteProduct(ctx context.Context, productID int64) error {
	return withRetry(ctx, "delete product", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, productID)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return requireRow(res)
	})
}

// CategoryCounts returns the number of products per category.
func (s *SQLiteStore) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM products GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer closeRows(rows, "categories")

	var counts []domain.CategoryCount
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return counts, nil
}

// --- metrics ---

// DashboardMetrics returns aggregate totals over products and purchases.
func (s *SQLiteStore) DashboardMetrics(ctx context.Context) (domain.Metrics, error) {
	var m domain.Metrics
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM purchases),
			(SELECT COUNT(DISTINCT user_id) FROM purchases),
			(SELECT COALESCE(SUM(price * quantity), 0) FROM purchases)`,
	).Scan(&m.ProductCount, &m.OrderCount, &m.ActiveCustomers, &m.Revenue)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("query dashboard metrics: %w", err)
	}
	return m, nil
}

// MonthlySales returns revenue per month for the most recent months, oldest first.
func (s *SQLiteStore) MonthlySales(ctx context.Context, limit int) ([]domain.MonthlySales, error) {
	if limit <= 0 {
		limit = 6
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT month, sales FROM (
			SELECT strftime('%Y-%m', purchased_at, 'unixepoch') AS month,
			       SUM(price * quantity) AS sales
			FROM purchases
			GROUP BY month
			ORDER BY month DESC
			LIMIT ?
		) ORDER BY month`, limit)
	if err != nil {
		return nil, fmt.Errorf("query monthly sales: %w", err)
	}
	defer closeRows(rows, "monthly sales")

	var out []domain.MonthlySales
	for rows.Next() {
		var month string
		var sales int64
		if err := rows.Scan(&month, &sales); err != nil {
			return nil, fmt.Errorf("scan monthly sales row: %w", err)
		}
		if t, err := time.Parse("2006-01", month); err == nil {
			month = t.Format("Jan 2006")
		}
		out = append(out, domain.MonthlySales{Month: month, Sales: sales})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly sales: %w", err)
	}
	return out, nil
}

// --- purchases ---

// PurchaseProduct records a purchase at the current catalog price and
// decrements stock. The stock check and decrement happen in one transaction.
func (s *SQLiteStore) PurchaseProduct(ctx context.Context, userID, productID int64, qty int) (*domain.Purchase, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	var purchase *domain.Purchase
	err := withRetry(ctx, "purchase product", func() error {
		var err error
		purchase, err = s.purchaseOnce(ctx, userID, productID, qty)
		return err
	})
	return purchase, err
}

func (s *SQLiteStore) purchaseOnce(ctx context.Context, userID, productID int64, qty int) (*domain.Purchase, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin purchase: %w", err)
	}
	defer rollback(tx)

	var name string
	var price int64
	var stock int
	err = tx.QueryRowContext(ctx, `SELECT name, price, stock FROM products WHERE id = ?`, productID).
		Scan(&name, &price, &stock)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	if stock < qty {
		return nil, ErrInsufficientStock
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`, qty, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	if err := requireRow(res); errors.Is(err, ErrNotFound) {
		return nil, ErrInsufficientStock
	} else if err != nil {
		return nil, err
	}

	now := time.Now()
	res, err = tx.ExecContext(ctx,
		`INSERT INTO purchases (user_id, product_id, product_name, price, quantity, purchased_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, productID, name, price, qty, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("purchase id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	remaining := stock - qty
	return &domain.Purchase{
		ID:             id,
		UserID:         userID,
		ProductID:      productID,
		ProductName:    name,
		Price:          price,
		Quantity:       qty,
		PurchasedAt:    time.Unix(now.Unix(), 0),
		RemainingStock: &remaining,
	}, nil
}

// PurchaseHistory returns the user's purchases, newest first.
func (s *SQLiteStore) PurchaseHistory(ctx context.Context, userID int64) ([]domain.Purchase, error) {
	return s.queryPurchases(ctx, `
		SELECT id, user_id, product_id, product_name, price, quantity, purchased_at
		FROM purchases WHERE user_id = ?
		ORDER BY purchased_at DESC, id DESC`, userID)
}

// AllPurchases returns every purchase, newest first.
func (s *SQLiteStore) AllPurchases(ctx context.Context) ([]domain.Purchase, error) {
	return s.queryPurchases(ctx, `
		SELECT id, user_id, product_id, product_name, price, quantity, purchased_at
		FROM purchases ORDER BY purchased_at DESC, id DESC`)
}

func (s *SQLiteStore) queryPurchases(ctx context.Context, query string, args ...any) ([]domain.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer closeRows(rows, "purchases")

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		var purchasedAt int64
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProductID, &p.ProductName, &p.Price, &p.Quantity, &purchasedAt); err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		p.PurchasedAt = time.Unix(purchasedAt, 0)
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return purchases, nil
}

// --- favorites ---

// ListFavorites returns a user's favorites.
func (s *SQLiteStore) ListFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, product_id, product_name, price FROM favorites WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer closeRows(rows, "favorites")

	var favorites []domain.Favorite
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.UserID, &f.ProductID, &f.ProductName, &f.Price); err != nil {
			return nil, fmt.Errorf("scan favorite row: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return favorites, nil
}

// AddFavorite bookmarks a product. Adding an existing favorite is a no-op.
func (s *SQLiteStore) AddFavorite(ctx context.Context, userID, productID int64) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO favorites (user_id, product_id, product_name, price)
		SELECT ?, id, name, price FROM products WHERE id = ?`, userID, productID)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// Either already a favorite or the product does not exist.
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, productID).Scan(&exists); err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// RemoveFavorite removes a bookmark.
func (s *SQLiteStore) RemoveFavorite(ctx context.Context, userID, productID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND product_id = ?`, userID, productID); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// IsFavorite reports whether the product is bookmarked by the user.
func (s *SQLiteStore) IsFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND product_id = ?)`, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query favorite: %w", err)
	}
	return exists, nil
}

// --- feedback & messages ---

// SaveFeedback stores a rating between 1 and 5 with a comment.
func (s *SQLiteStore) SaveFeedback(ctx context.Context, userID int64, rating int, text string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (user_id, rating, feedback, created_at) VALUES (?, ?, ?, ?)`,
		userID, rating, text, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// SendMessage posts to the team message board.
func (s *SQLiteStore) SendMessage(ctx context.Context, sender, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender, message, created_at) VALUES (?, ?, ?)`,
		sender, body, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages returns messages, newest first.
func (s *SQLiteStore) ListMessages(ctx context.Context) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender, message, created_at FROM messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer closeRows(rows, "messages")

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.Sender, &m.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// ClearMessages deletes every message.
func (s *SQLiteStore) ClearMessages(ctx context.Context) error {
	return withRetry(ctx, "clear messages", func() error {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
			return fmt.Errorf("clear messages: %w", err)
		}
		return nil
	})
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Warn("failed to roll back transaction", "error", err)
	}
}
