package service

import (
	"context"
	"fmt"
	"time"

	"ordersync/internal/database"
)

type StatsService struct {
	db *database.DB
}

func NewStatsService(db *database.DB) *StatsService {
	return &StatsService{db: db}
}

type Stats struct {
	TotalOrders     int `json:"total_orders"`
	TodayOrders     int `json:"today_orders"`
	ThisMonthOrders int `json:"this_month_orders"`
}

// Get counts orders overall, placed on the day of now, and placed since
// the first of now's month.
func (s *StatsService) Get(ctx context.Context, now time.Time) (*Stats, error) {
	today := now.Format("2006-01-02")
	monthStart := now.Format("2006-01") + "-01"

	var st Stats
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN order_date = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN order_date >= ? THEN 1 ELSE 0 END), 0)
		FROM customer_orders`),
		today, monthStart,
	).Scan(&st.TotalOrders, &st.TodayOrders, &st.ThisMonthOrders)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &st, nil
}
