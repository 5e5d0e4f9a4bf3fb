package sqlagent

// DefaultSchema describes the commerce tables the generator may query.
// It must stay in sync with the models seeded by cmd/seed.
const DefaultSchema = `Table customers: id (bigint, pk), name (text), email (text), city (text), signed_up_at (timestamptz).
Table products: id (bigint, pk), name (text), category (text), price_cents (bigint), stock (bigint).
Table orders: id (bigint, pk), customer_id (bigint, fk customers.id), product_id (bigint, fk products.id), quantity (bigint), total_cents (bigint), status (text: pending|shipped|delivered|cancelled), ordered_at (timestamptz).
Table reviews: id (bigint, pk), product_id (bigint, fk products.id), customer_id (bigint, fk customers.id), rating (bigint, 1-5), comment (text), created_at (timestamptz).
Table returns: id (bigint, pk), order_id (bigint, fk orders.id), reason (text), status (text: requested|approved|refunded|rejected), requested_at (timestamptz).`
