// Command seed creates and populates the commerce tables the structured-data
// capability queries. Re-running it drops and recreates the fixture data.
package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	configx "github.com/supportflow-ai/supportflow/pkg/config"
	_ "github.com/supportflow-ai/supportflow/pkg/logger/autoload"
)

type SeedConfig struct {
	PostgresDSN string `envconfig:"POSTGRES_DSN" split_words:"true" required:"true"`
}

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Name       string    `bun:"name,notnull"`
	Email      string    `bun:"email,notnull,unique"`
	City       string    `bun:"city"`
	SignedUpAt time.Time `bun:"signed_up_at,notnull"`
}

type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID         int64  `bun:"id,pk,autoincrement"`
	Name       string `bun:"name,notnull"`
	Category   string `bun:"category,notnull"`
	PriceCents int64  `bun:"price_cents,notnull"`
	Stock      int64  `bun:"stock,notnull"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID         int64     `bun:"id,pk,autoincrement"`
	CustomerID int64     `bun:"customer_id,notnull"`
	ProductID  int64     `bun:"product_id,notnull"`
	Quantity   int64     `bun:"quantity,notnull"`
	TotalCents int64     `bun:"total_cents,notnull"`
	Status     string    `bun:"status,notnull"`
	OrderedAt  time.Time `bun:"ordered_at,notnull"`
}

type Review struct {
	bun.BaseModel `bun:"table:reviews"`

	ID         int64     `bun:"id,pk,autoincrement"`
	ProductID  int64     `bun:"product_id,notnull"`
	CustomerID int64     `bun:"customer_id,notnull"`
	Rating     int64     `bun:"rating,notnull"`
	Comment    string    `bun:"comment"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

type Return struct {
	bun.BaseModel `bun:"table:returns"`

	ID          int64     `bun:"id,pk,autoincrement"`
	OrderID     int64     `bun:"order_id,notnull"`
	Reason      string    `bun:"reason,notnull"`
	Status      string    `bun:"status,notnull"`
	RequestedAt time.Time `bun:"requested_at,notnull"`
}

func main() {
	ctx := context.Background()
	cfg := configx.MustNew[SeedConfig]("AGENT")

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	if err := seed(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("seed complete")
}

func seed(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Customer)(nil),
		(*Product)(nil),
		(*Order)(nil),
		(*Review)(nil),
		(*Return)(nil),
	}

	for i := len(models) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).Exec(ctx); err != nil {
			return err
		}
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, rows := range []any{&customers, &products, &orders, &reviews, &returns} {
			if _, err := tx.NewInsert().Model(rows).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func day(offset int) time.Time {
	base := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

var customers = []Customer{
	{Name: "Ava Patel", Email: "ava.patel@example.com", City: "Austin", SignedUpAt: day(-120)},
	{Name: "Ben Okafor", Email: "ben.okafor@example.com", City: "Seattle", SignedUpAt: day(-95)},
	{Name: "Carla Mendes", Email: "carla.mendes@example.com", City: "Miami", SignedUpAt: day(-60)},
	{Name: "Dmitri Volkov", Email: "dmitri.volkov@example.com", City: "Chicago", SignedUpAt: day(-30)},
	{Name: "Elena Rossi", Email: "elena.rossi@example.com", City: "Boston", SignedUpAt: day(-10)},
}

var products = []Product{
	{Name: "AeroBuds Pro", Category: "earbuds", PriceCents: 14999, Stock: 42},
	{Name: "AeroBuds Lite", Category: "earbuds", PriceCents: 7999, Stock: 108},
	{Name: "PulseWatch 2", Category: "smartwatch", PriceCents: 24999, Stock: 31},
	{Name: "PulseWatch SE", Category: "smartwatch", PriceCents: 17999, Stock: 57},
	{Name: "VoltCharger 65W", Category: "accessories", PriceCents: 4999, Stock: 200},
}

var orders = []Order{
	{CustomerID: 1, ProductID: 1, Quantity: 1, TotalCents: 14999, Status: "delivered", OrderedAt: day(-45)},
	{CustomerID: 1, ProductID: 5, Quantity: 2, TotalCents: 9998, Status: "delivered", OrderedAt: day(-44)},
	{CustomerID: 2, ProductID: 3, Quantity: 1, TotalCents: 24999, Status: "shipped", OrderedAt: day(-7)},
	{CustomerID: 3, ProductID: 2, Quantity: 1, TotalCents: 7999, Status: "delivered", OrderedAt: day(-20)},
	{CustomerID: 3, ProductID: 4, Quantity: 1, TotalCents: 17999, Status: "cancelled", OrderedAt: day(-18)},
	{CustomerID: 4, ProductID: 1, Quantity: 1, TotalCents: 14999, Status: "pending", OrderedAt: day(-1)},
	{CustomerID: 5, ProductID: 5, Quantity: 3, TotalCents: 14997, Status: "delivered", OrderedAt: day(-5)},
}

var reviews = []Review{
	{ProductID: 1, CustomerID: 1, Rating: 5, Comment: "Noise cancellation is excellent.", CreatedAt: day(-40)},
	{ProductID: 2, CustomerID: 3, Rating: 4, Comment: "Great value for the price.", CreatedAt: day(-15)},
	{ProductID: 3, CustomerID: 2, Rating: 3, Comment: "Battery drains faster than advertised.", CreatedAt: day(-3)},
	{ProductID: 5, CustomerID: 5, Rating: 5, Comment: "Charges my laptop and phone at once.", CreatedAt: day(-2)},
}

var returns = []Return{
	{OrderID: 4, Reason: "left earbud stopped pairing", Status: "refunded", RequestedAt: day(-12)},
	{OrderID: 2, Reason: "ordered wrong wattage", Status: "approved", RequestedAt: day(-40)},
}
