package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"storefront/internal/domain"
)

func (r *Repository) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.MutationResult[domain.Order], error) {
	var shipping *string
	if req.Address != nil {
		raw, err := json.Marshal(req.Address)
		if err != nil {
			return domain.MutationResult[domain.Order]{}, fmt.Errorf("supabase.CreateOrder: marshal address: %w", err)
		}
		s := string(raw)
		shipping = &s
	}

	order, err := withTx(ctx, r.db, func(tx pgx.Tx) (domain.Order, error) {
		o := domain.Order{
			UserID:        req.UserID,
			Status:        domain.OrderStatusPending,
			Subtotal:      req.Subtotal,
			Discount:      req.Discount,
			TotalAmount:   req.Total,
			CouponCode:    req.CouponCode,
			PaymentMethod: req.PaymentMethod,
			AddressID:     req.AddressID,
			Items:         req.Items,
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (user_id, status, subtotal, discount, total_amount, coupon_code, payment_method, address_id, shipping_address)
			VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, NULLIF($6, ''), $7, NULLIF($8, '')::uuid, $9::jsonb)
			RETURNING id::text, created_at`,
			req.UserID, o.Status, req.Subtotal.String(), req.Discount.String(), req.Total.String(),
			req.CouponCode, req.PaymentMethod, req.AddressID, shipping,
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return o, fmt.Errorf("insert order: %w", err)
		}

		for _, it := range req.Items {
			if err := reserveStock(ctx, tx, it); err != nil {
				return o, err
			}
			variants, err := json.Marshal(it.Variants)
			if err != nil {
				return o, fmt.Errorf("marshal variants: %w", err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, shop_id, name, variants, quantity, price)
				VALUES ($1::uuid, $2::uuid, NULLIF($3, '')::uuid, $4, $5::jsonb, $6, $7::numeric)`,
				o.ID, it.ProductID, it.ShopID, it.Name, string(variants), it.Quantity, it.Price.String())
			if err != nil {
				return o, fmt.Errorf("insert order item: %w", err)
			}
		}

		if req.CouponCode != "" {
			tag, err := tx.Exec(ctx, `
				UPDATE coupons SET used_count = used_count + 1
				WHERE upper(code) = upper($1) AND (usage_limit = 0 OR used_count < usage_limit)`,
				req.CouponCode)
			if err != nil {
				return o, fmt.Errorf("redeem coupon: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return o, reject("coupon is no longer available")
			}
		}
		return o, nil
	})
	if err != nil {
		if msg, ok := asRejection(err); ok {
			return domain.Failed[domain.Order](msg), nil
		}
		return domain.MutationResult[domain.Order]{}, fmt.Errorf("supabase.CreateOrder: %w", err)
	}
	return domain.Succeeded(order), nil
}

// reserveStock decrements stock for one order line, variant-level when a variant was picked.
func reserveStock(ctx context.Context, tx pgx.Tx, it domain.OrderItem) error {
	var tagRows int64
	if len(it.Variants) > 0 {
		tag, err := tx.Exec(ctx, `
			UPDATE product_variants SET stock = stock - $1
			WHERE product_id::text = $2
				AND COALESCE(color, '') = $3 AND COALESCE(size, '') = $4 AND COALESCE(material, '') = $5
				AND stock >= $1`,
			it.Quantity, it.ProductID,
			it.Variants[domain.AttrColor], it.Variants[domain.AttrSize], it.Variants[domain.AttrMaterial])
		if err != nil {
			return fmt.Errorf("reserve variant stock: %w", err)
		}
		tagRows = tag.RowsAffected()
	} else {
		tag, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $1 WHERE id::text = $2 AND stock >= $1`,
			it.Quantity, it.ProductID)
		if err != nil {
			return fmt.Errorf("reserve stock: %w", err)
		}
		tagRows = tag.RowsAffected()
	}
	if tagRows == 0 {
		return reject(fmt.Sprintf("insufficient stock for %s", it.Name))
	}
	return nil
}

func (r *Repository) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, user_id::text, status, subtotal::text, discount::text, total_amount::text,
			COALESCE(coupon_code, ''), payment_method, COALESCE(address_id::text, ''), created_at
		FROM orders
		WHERE user_id::text = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("supabase.ListOrders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	index := map[string]int{}
	for rows.Next() {
		var (
			o                         domain.Order
			subtotal, discount, total string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &subtotal, &discount, &total,
			&o.CouponCode, &o.PaymentMethod, &o.AddressID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("supabase.ListOrders scan: %w", err)
		}
		if o.Subtotal, err = parseNumeric(subtotal); err != nil {
			return nil, fmt.Errorf("supabase.ListOrders subtotal: %w", err)
		}
		if o.Discount, err = parseNumeric(discount); err != nil {
			return nil, fmt.Errorf("supabase.ListOrders discount: %w", err)
		}
		if o.TotalAmount, err = parseNumeric(total); err != nil {
			return nil, fmt.Errorf("supabase.ListOrders total: %w", err)
		}
		o.Items = []domain.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("supabase.ListOrders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	itemRows, err := r.db.Query(ctx, `
		SELECT order_id::text, product_id::text, COALESCE(shop_id::text, ''), name, COALESCE(variants, '{}')::text, quantity, price::text
		FROM order_items
		WHERE order_id::text = ANY($1)
		ORDER BY order_id, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("supabase.ListOrders items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			it              domain.OrderItem
			orderID, rawVar string
			price           string
		)
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.ShopID, &it.Name, &rawVar, &it.Quantity, &price); err != nil {
			return nil, fmt.Errorf("supabase.ListOrders items scan: %w", err)
		}
		if err := json.Unmarshal([]byte(rawVar), &it.Variants); err != nil {
			return nil, fmt.Errorf("supabase.ListOrders variants: %w", err)
		}
		if it.Price, err = parseNumeric(price); err != nil {
			return nil, fmt.Errorf("supabase.ListOrders price: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, itemRows.Err()
}

func (r *Repository) ValidateCoupon(ctx context.Context, code string) (domain.MutationResult[domain.Coupon], error) {
	var (
		c               domain.Coupon
		value, minSpend string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id::text, code, type, value::text, COALESCE(min_spend, 0)::text,
			COALESCE(usage_limit, 0), used_count, start_at, expires_at, is_active
		FROM coupons
		WHERE upper(code) = upper($1)`, code).
		Scan(&c.ID, &c.Code, &c.Type, &value, &minSpend, &c.UsageLimit, &c.UsedCount, &c.StartAt, &c.ExpiresAt, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Failed[domain.Coupon]("coupon not found"), nil
		}
		return domain.MutationResult[domain.Coupon]{}, fmt.Errorf("supabase.ValidateCoupon: %w", err)
	}
	if c.Value, err = parseNumeric(value); err != nil {
		return domain.MutationResult[domain.Coupon]{}, fmt.Errorf("supabase.ValidateCoupon value: %w", err)
	}
	if c.MinSpend, err = parseNumeric(minSpend); err != nil {
		return domain.MutationResult[domain.Coupon]{}, fmt.Errorf("supabase.ValidateCoupon min_spend: %w", err)
	}
	return domain.Succeeded(c), nil
}

func (r *Repository) CreateReview(ctx context.Context, review domain.Review) (domain.MutationResult[domain.Review], error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO reviews (product_id, user_id, rating, comment)
		VALUES ($1::uuid, $2::uuid, $3, $4)
		ON CONFLICT (product_id, user_id) DO NOTHING
		RETURNING id::text, created_at`,
		review.ProductID, review.UserID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Failed[domain.Review]("you have already reviewed this product"), nil
		}
		return domain.MutationResult[domain.Review]{}, fmt.Errorf("supabase.CreateReview: %w", err)
	}
	return domain.Succeeded(review), nil
}

func (r *Repository) SaveAddress(ctx context.Context, addr domain.Address) (domain.MutationResult[domain.Address], error) {
	saved, err := withTx(ctx, r.db, func(tx pgx.Tx) (domain.Address, error) {
		if addr.IsDefault {
			if _, err := tx.Exec(ctx, `UPDATE addresses SET is_default = false WHERE user_id::text = $1`, addr.UserID); err != nil {
				return addr, fmt.Errorf("reset default address: %w", err)
			}
		}

		if addr.ID == "" {
			err := tx.QueryRow(ctx, `
				INSERT INTO addresses (user_id, label, first_name, last_name, phone, address_line, city, region, postal_code, country, is_default)
				VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				RETURNING id::text, created_at`,
				addr.UserID, addr.Label, addr.FirstName, addr.LastName, addr.Phone,
				addr.AddressLine, addr.City, addr.Region, addr.PostalCode, addr.Country, addr.IsDefault).
				Scan(&addr.ID, &addr.CreatedAt)
			if err != nil {
				return addr, fmt.Errorf("insert address: %w", err)
			}
			return addr, nil
		}

		tag, err := tx.Exec(ctx, `
			UPDATE addresses SET label = $3, first_name = $4, last_name = $5, phone = $6, address_line = $7,
				city = $8, region = $9, postal_code = $10, country = $11, is_default = $12
			WHERE id::text = $1 AND user_id::text = $2`,
			addr.ID, addr.UserID, addr.Label, addr.FirstName, addr.LastName, addr.Phone,
			addr.AddressLine, addr.City, addr.Region, addr.PostalCode, addr.Country, addr.IsDefault)
		if err != nil {
			return addr, fmt.Errorf("update address: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return addr, reject("address not found")
		}
		return addr, nil
	})
	if err != nil {
		if msg, ok := asRejection(err); ok {
			return domain.Failed[domain.Address](msg), nil
		}
		return domain.MutationResult[domain.Address]{}, fmt.Errorf("supabase.SaveAddress: %w", err)
	}
	return domain.Succeeded(saved), nil
}

func (r *Repository) DeleteAddress(ctx context.Context, userID, id string) (domain.MutationResult[domain.Address], error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id::text = $1 AND user_id::text = $2`, id, userID)
	if err != nil {
		return domain.MutationResult[domain.Address]{}, fmt.Errorf("supabase.DeleteAddress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Failed[domain.Address]("address not found"), nil
	}
	return domain.Succeeded(domain.Address{ID: id, UserID: userID}), nil
}

func (r *Repository) OpenTicket(ctx context.Context, ticket domain.Ticket) (domain.MutationResult[domain.Ticket], error) {
	ticket.Status = domain.TicketStatusOpen
	err := r.db.QueryRow(ctx, `
		INSERT INTO support_tickets (user_id, subject, message, order_id, status)
		VALUES ($1::uuid, $2, $3, NULLIF($4, '')::uuid, $5)
		RETURNING id::text, created_at`,
		ticket.UserID, ticket.Subject, ticket.Message, ticket.OrderID, ticket.Status).
		Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		return domain.MutationResult[domain.Ticket]{}, fmt.Errorf("supabase.OpenTicket: %w", err)
	}
	return domain.Succeeded(ticket), nil
}

var _ domain.Backend = (*Repository)(nil)
