package supabase

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"storefront/internal/domain"
)

// Repository serves every backend port from Postgres.
type Repository struct {
	db DBTX
}

func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

const productColumns = `p.id::text, p.name, COALESCE(p.description, ''), p.price::text, p.stock,
	COALESCE(p.images, '{}'), COALESCE(p.category, ''), p.shop_id::text,
	COALESCE((SELECT s.name FROM shops s WHERE s.id = p.shop_id), ''),
	COALESCE(p.rating, 0)::float8, p.created_at`

var productSort = map[string]string{
	domain.SortCreatedAt: "p.created_at",
	domain.SortPrice:     "p.price",
	domain.SortName:      "p.name",
	domain.SortRating:    "p.rating",
}

var shopSort = map[string]string{
	domain.SortCreatedAt: "s.created_at",
	domain.SortName:      "s.name",
	domain.SortRating:    "s.rating",
}

func productWhere(f domain.ListingFilter) []sq.Sqlizer {
	preds := []sq.Sqlizer{sq.Expr("p.is_active = true")}
	if f.Category != "" {
		preds = append(preds, sq.Expr("p.category = ?", f.Category))
	}
	if f.ShopID != "" {
		preds = append(preds, sq.Expr("p.shop_id::text = ?", f.ShopID))
	}
	if f.SearchQuery != "" {
		pattern := containsPattern(f.SearchQuery)
		preds = append(preds, sq.Expr("(p.name ILIKE ? OR p.description ILIKE ?)", pattern, pattern))
	}
	if f.MinPrice != nil {
		preds = append(preds, sq.Expr("p.price >= ?::numeric", f.MinPrice.String()))
	}
	if f.MaxPrice != nil {
		preds = append(preds, sq.Expr("p.price <= ?::numeric", f.MaxPrice.String()))
	}
	if f.InStockOnly {
		preds = append(preds, sq.Expr("p.stock > 0"))
	}
	return preds
}

func (r *Repository) ListProducts(ctx context.Context, f domain.ListingFilter) (domain.Page[domain.Product], error) {
	preds := productWhere(f)

	countSQL, countArgs, err := filtered(psql.Select("COUNT(*)").From("products p"), preds).ToSql()
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("supabase.ListProducts build count: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("supabase.ListProducts count: %w", err)
	}
	if total == 0 {
		return domain.NewPage[domain.Product](nil, f.Page, f.Limit, 0), nil
	}

	col, ok := productSort[f.SortBy]
	if !ok {
		col = productSort[domain.SortCreatedAt]
	}
	q := filtered(psql.Select(productColumns).From("products p"), preds)
	query, args, err := paginate(orderBy(q, col, "p.id", f.Descending()), f.Limit, f.Offset()).ToSql()
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("supabase.ListProducts build: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("supabase.ListProducts: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, max(f.Limit, 0))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return domain.Page[domain.Product]{}, fmt.Errorf("supabase.ListProducts scan: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("supabase.ListProducts: %w", err)
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return domain.NewPage(products, f.Page, f.Limit, total), nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products p WHERE p.id::text = $1 AND p.is_active = true", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("product")
		}
		return nil, fmt.Errorf("supabase.GetProduct: %w", err)
	}

	products := []domain.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *Repository) attachVariants(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.db.Query(ctx, `
		SELECT id::text, product_id::text, COALESCE(color, ''), COALESCE(size, ''), COALESCE(material, ''),
			stock, COALESCE(price_adjustment, 0)::text
		FROM product_variants
		WHERE product_id::text = ANY($1)
		ORDER BY product_id, id`, ids)
	if err != nil {
		return fmt.Errorf("supabase.variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v          domain.Variant
			productID  string
			adjustment string
		)
		if err := rows.Scan(&v.ID, &productID, &v.Color, &v.Size, &v.Material, &v.Stock, &adjustment); err != nil {
			return fmt.Errorf("supabase.variants scan: %w", err)
		}
		if v.PriceAdjustment, err = parseNumeric(adjustment); err != nil {
			return fmt.Errorf("supabase.variants price_adjustment: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return rows.Err()
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Stock,
		&p.Images, &p.Category, &p.ShopID, &p.ShopName, &p.Rating, &p.CreatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	if p.Price, err = parseNumeric(price); err != nil {
		return domain.Product{}, fmt.Errorf("price: %w", err)
	}
	return p, nil
}

const shopColumns = `s.id::text, s.name, COALESCE(s.description, ''), COALESCE(s.logo, ''), s.owner_id::text,
	COALESCE(s.rating, 0)::float8,
	(SELECT COUNT(*) FROM products p WHERE p.shop_id = s.id AND p.is_active = true),
	s.created_at`

func (r *Repository) ListShops(ctx context.Context, f domain.ListingFilter) (domain.Page[domain.Shop], error) {
	preds := []sq.Sqlizer{sq.Expr("s.is_active = true")}
	if f.SearchQuery != "" {
		preds = append(preds, sq.Expr("s.name ILIKE ?", containsPattern(f.SearchQuery)))
	}

	countSQL, countArgs, err := filtered(psql.Select("COUNT(*)").From("shops s"), preds).ToSql()
	if err != nil {
		return domain.Page[domain.Shop]{}, fmt.Errorf("supabase.ListShops build count: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return domain.Page[domain.Shop]{}, fmt.Errorf("supabase.ListShops count: %w", err)
	}
	if total == 0 {
		return domain.NewPage[domain.Shop](nil, f.Page, f.Limit, 0), nil
	}

	col, ok := shopSort[f.SortBy]
	if !ok {
		col = shopSort[domain.SortCreatedAt]
	}
	q := filtered(psql.Select(shopColumns).From("shops s"), preds)
	query, args, err := paginate(orderBy(q, col, "s.id", f.Descending()), f.Limit, f.Offset()).ToSql()
	if err != nil {
		return domain.Page[domain.Shop]{}, fmt.Errorf("supabase.ListShops build: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return domain.Page[domain.Shop]{}, fmt.Errorf("supabase.ListShops: %w", err)
	}
	defer rows.Close()

	shops := make([]domain.Shop, 0, max(f.Limit, 0))
	for rows.Next() {
		var s domain.Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Logo, &s.OwnerID, &s.Rating, &s.ProductCount, &s.CreatedAt); err != nil {
			return domain.Page[domain.Shop]{}, fmt.Errorf("supabase.ListShops scan: %w", err)
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Shop]{}, fmt.Errorf("supabase.ListShops: %w", err)
	}
	return domain.NewPage(shops, f.Page, f.Limit, total), nil
}

func (r *Repository) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, title, COALESCE(message, ''), COALESCE(image, ''), COALESCE(link, ''),
			is_active, start_at, end_at
		FROM promotions
		WHERE is_active = true
		ORDER BY start_at NULLS FIRST, id`)
	if err != nil {
		return nil, fmt.Errorf("supabase.ListPromotions: %w", err)
	}
	defer rows.Close()

	var promos []domain.Promotion
	for rows.Next() {
		var p domain.Promotion
		if err := rows.Scan(&p.ID, &p.Title, &p.Message, &p.Image, &p.Link, &p.IsActive, &p.StartAt, &p.EndAt); err != nil {
			return nil, fmt.Errorf("supabase.ListPromotions scan: %w", err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}
