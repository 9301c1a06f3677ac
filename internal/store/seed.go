package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashureev/stockflow/internal/domain"
)

type demoUser struct {
	username string
	password string
	role     domain.Role
}

// Demo accounts get ids 1..3 on a fresh database and are protected from deletion.
var demoUsers = []demoUser{
	{username: "admin", password: "admin123", role: domain.RoleAdmin},
	{username: "employee", password: "emp123", role: domain.RoleEmployee},
	{username: "customer", password: "cust123", role: domain.RoleCustomer},
}

var demoCatalog = []domain.NewProduct{
	{Brand: "Apple", Name: "iPhone 15 Pro", Category: "Mobile", Price: 129999, Stock: 12},
	{Brand: "Samsung", Name: "Galaxy S24 Ultra", Category: "Mobile", Price: 89999, Stock: 25},
	{Brand: "Apple", Name: "MacBook Pro 14", Category: "Laptop", Price: 199999, Stock: 8},
	{Brand: "Sony", Name: "Sony Bravia 55 TV", Category: "TV", Price: 149999, Stock: 4},
	{Brand: "Canon", Name: "Canon EOS R5 Camera", Category: "Camera", Price: 329999, Stock: 3},
	{Brand: "Lenovo", Name: "ThinkPad X1 Carbon Laptop", Category: "Laptop", Price: 134999, Stock: 15},
	{Brand: "ASUS", Name: "ROG Zephyrus G14", Category: "Laptop", Price: 149999, Stock: 0},
	{Brand: "Samsung", Name: "Samsung Galaxy Tab S9", Category: "Tablet", Price: 72999, Stock: 18},
	{Brand: "LG", Name: "LG OLED C3 TV", Category: "TV", Price: 139999, Stock: 6},
	{Brand: "Dell", Name: "Dell XPS 13 Laptop", Category: "Laptop", Price: 114999, Stock: 11},
	{Brand: "Xiaomi", Name: "Redmi Note 13", Category: "Mobile", Price: 17999, Stock: 40},
	{Brand: "Whirlpool", Name: "Whirlpool Refrigerator", Category: "Appliance", Price: 45999, Stock: 9},
}

// Seed inserts demo users and a demo catalog when the tables are empty.
func (s *SQLiteStore) Seed(ctx context.Context) error {
	var users int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if users == 0 {
		for _, u := range demoUsers {
			if _, err := s.CreateUser(ctx, u.username, u.password, u.role); err != nil {
				return fmt.Errorf("seed user %s: %w", u.username, err)
			}
		}
		slog.Info("Seeded demo users", "count", len(demoUsers))
	}

	var products int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&products); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if products == 0 {
		for _, p := range demoCatalog {
			if _, err := s.AddProduct(ctx, p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}
		slog.Info("Seeded demo catalog", "count", len(demoCatalog))
	}

	return nil
}
